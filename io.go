/*
Copyright © 2024 the SimPlot authors.
This file is part of SimPlot.

SimPlot is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

SimPlot is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with SimPlot.  If not, see <http://www.gnu.org/licenses/>.
*/

package simplot

import (
	"fmt"
	"io/ioutil"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/Knetic/govaluate"
	"github.com/ctessum/geom"
	"github.com/ctessum/geom/encoding/shp"
	goshp "github.com/jonas-p/go-shp"
)

// LoadPolygons reads the source polygons from a polygon shapefile, taking
// feature identifiers from the attribute column idField. Multipolygon
// features contribute only their first polygon. Features with missing or
// degenerate geometry are passed through so that plot generation can
// record them as failures.
func LoadPolygons(filename, idField string) ([]*SourcePolygon, error) {
	d, err := shp.NewDecoder(filename)
	if err != nil {
		return nil, fmt.Errorf("simplot: opening polygon file %s: %v", filename, err)
	}
	defer d.Close()
	var polys []*SourcePolygon
	seen := make(map[string]struct{})
	for {
		g, fields, more := d.DecodeRowFields(idField)
		if !more || d.Error() != nil {
			break
		}
		id := strings.Trim(fields[idField], "\x00* ")
		if _, ok := seen[id]; ok {
			return nil, fmt.Errorf("simplot: duplicate polygon ID '%s' in %s", id, filename)
		}
		seen[id] = struct{}{}
		poly, err := polygonOf(g)
		if err != nil {
			return nil, fmt.Errorf("simplot: reading polygon '%s' from %s: %v", id, filename, err)
		}
		polys = append(polys, &SourcePolygon{ID: id, Polygon: poly})
	}
	if err := d.Error(); err != nil {
		return nil, fmt.Errorf("simplot: reading polygon file %s: %v", filename, err)
	}
	return polys, nil
}

// polygonOf extracts a polygon from a decoded shapefile geometry. Null
// shapes come back as a nil polygon rather than an error so that they can
// be recorded as per-feature failures downstream.
func polygonOf(g geom.Geom) (geom.Polygon, error) {
	switch t := g.(type) {
	case nil:
		return nil, nil
	case geom.Polygon:
		return t, nil
	case geom.Polygonal:
		pp := t.Polygons()
		if len(pp) == 0 {
			return nil, nil
		}
		return pp[0], nil
	default:
		return nil, fmt.Errorf("geometry must be a polygon, not %T", g)
	}
}

// plotOutputFuncs are the functions available in derived output field
// expressions.
var plotOutputFuncs = map[string]govaluate.ExpressionFunction{
	"exp": func(arg ...interface{}) (interface{}, error) {
		if len(arg) != 1 {
			return nil, fmt.Errorf("simplot: got %d arguments for function 'exp', but needs 1", len(arg))
		}
		return (float64)(math.Exp(arg[0].(float64))), nil
	},
	"log": func(arg ...interface{}) (interface{}, error) {
		if len(arg) != 1 {
			return nil, fmt.Errorf("simplot: got %d arguments for function 'log', but needs 1", len(arg))
		}
		return (float64)(math.Log(arg[0].(float64))), nil
	},
	"sqrt": func(arg ...interface{}) (interface{}, error) {
		if len(arg) != 1 {
			return nil, fmt.Errorf("simplot: got %d arguments for function 'sqrt', but needs 1", len(arg))
		}
		return (float64)(math.Sqrt(arg[0].(float64))), nil
	},
}

// plotBaseFields are the attribute columns written for every plot, after
// the identifier column.
var plotBaseFields = []string{"a", "b", "alpha", "perc", "ishp"}

// Output column names are limited to 10 characters by the DBF format.
const maxFieldLen = 10

// Statistic columns append _min, _max, or _mean to the value field name,
// so the name itself is cut shorter.
const maxStatPrefixLen = 5

// truncField shortens a user-supplied attribute name to fit the column
// name limit of the output format.
func truncField(name string, max int) string {
	if len(name) > max {
		return name[:max]
	}
	return name
}

// WriteShapefile saves the plots in ps as a polygon shapefile. Every plot
// gets the attributes a and b (the plot dimensions), alpha (the rotation
// in degrees), perc (the overlap score as a percentage), and ishp (the
// source polygon shape index), after the identifier column idField.
//
// extra maps additional field names to expressions over the base
// attributes, for example "ratio": "a / b". Expressions may use the
// functions exp, log, and sqrt. Field names are limited to 10 characters
// by the output format.
//
// Polygons recorded as failures are skipped; they are reported in the
// plot set's Failures map.
func (ps *PlotSet) WriteShapefile(filename, idField string, extra map[string]string) error {
	derived := make([]string, 0, len(extra))
	for name := range extra {
		derived = append(derived, name)
	}
	sort.Strings(derived)

	exprs := make(map[string]*govaluate.EvaluableExpression, len(extra))
	for _, name := range derived {
		if len(name) > maxFieldLen {
			return fmt.Errorf("simplot: output field name %s exceeds %d characters", name, maxFieldLen)
		}
		ex, err := govaluate.NewEvaluableExpressionWithFunctions(extra[name], plotOutputFuncs)
		if err != nil {
			return fmt.Errorf("simplot: parsing expression for output field %s: %v", name, err)
		}
		exprs[name] = ex
	}

	fields := make([]goshp.Field, 0, 1+len(plotBaseFields)+len(derived))
	fields = append(fields, goshp.StringField(idField, 64))
	for _, name := range plotBaseFields {
		fields = append(fields, goshp.FloatField(name, 14, 8))
	}
	for _, name := range derived {
		fields = append(fields, goshp.FloatField(name, 14, 8))
	}

	fileBase := strings.TrimSuffix(filename, filepath.Ext(filename))
	e, err := shp.NewEncoderFromFields(fileBase+".shp", goshp.POLYGON, fields...)
	if err != nil {
		return fmt.Errorf("simplot: creating plot file %s: %v", filename, err)
	}
	for _, id := range ps.IDs {
		r, ok := ps.Results[id]
		if !ok {
			continue
		}
		params := map[string]interface{}{
			"a":     r.Plot.A,
			"b":     r.Plot.B,
			"alpha": r.Plot.Rotation * 180 / math.Pi,
			"perc":  100 * r.Score,
			"ishp":  r.ShapeIndex,
		}
		vals := make([]interface{}, 0, len(fields))
		vals = append(vals, id)
		for _, name := range plotBaseFields {
			vals = append(vals, params[name])
		}
		for _, name := range derived {
			v, err := exprs[name].Evaluate(params)
			if err != nil {
				return fmt.Errorf("simplot: evaluating output field %s for plot %s: %v", name, id, err)
			}
			f, ok := v.(float64)
			if !ok {
				return fmt.Errorf("simplot: output field %s for plot %s is not a number", name, id)
			}
			vals = append(vals, f)
		}
		if err := e.EncodeFields(r.Plot.Polygon(), vals...); err != nil {
			return fmt.Errorf("simplot: writing plot %s to %s: %v", id, filename, err)
		}
	}
	e.Close()
	return nil
}

// ReadPlots reads simulation plots back from a plot shapefile created by
// WriteShapefile, converting the stored rotation from degrees back to
// radians.
func ReadPlots(filename, idField string) ([]*PlotFeature, error) {
	d, err := shp.NewDecoder(filename)
	if err != nil {
		return nil, fmt.Errorf("simplot: opening plot file %s: %v", filename, err)
	}
	defer d.Close()
	var feats []*PlotFeature
	for {
		g, fields, more := d.DecodeRowFields(append([]string{idField}, plotBaseFields...)...)
		if !more || d.Error() != nil {
			break
		}
		id := strings.Trim(fields[idField], "\x00* ")
		poly, err := polygonOf(g)
		if err != nil {
			return nil, fmt.Errorf("simplot: reading plot '%s' from %s: %v", id, filename, err)
		}
		attrs := make(map[string]float64, len(plotBaseFields))
		for _, name := range plotBaseFields {
			v, err := s2f(fields[name])
			if err != nil {
				return nil, fmt.Errorf("simplot: plot '%s' in %s has an invalid %s value: %v", id, filename, name, err)
			}
			attrs[name] = v
		}
		feats = append(feats, &PlotFeature{
			ID:         id,
			A:          attrs["a"],
			B:          attrs["b"],
			Rotation:   attrs["alpha"] * math.Pi / 180,
			Score:      attrs["perc"],
			ShapeIndex: attrs["ishp"],
			Polygon:    poly,
		})
	}
	if err := d.Error(); err != nil {
		return nil, fmt.Errorf("simplot: reading plot file %s: %v", filename, err)
	}
	return feats, nil
}

// WritePoints saves a point grid as a point shapefile with the plot
// identifier and the 1-based row and column indices of each point.
func WritePoints(filename, idField string, pts []GridPoint) error {
	fields := []goshp.Field{
		goshp.StringField(idField, 64),
		goshp.NumberField("row", 10),
		goshp.NumberField("column", 10),
	}
	fileBase := strings.TrimSuffix(filename, filepath.Ext(filename))
	e, err := shp.NewEncoderFromFields(fileBase+".shp", goshp.POINT, fields...)
	if err != nil {
		return fmt.Errorf("simplot: creating point file %s: %v", filename, err)
	}
	for i := range pts {
		pt := &pts[i]
		if err := e.EncodeFields(pt.Point, pt.ID, pt.Row, pt.Col); err != nil {
			return fmt.Errorf("simplot: writing point %d of plot %s to %s: %v", i, pt.ID, filename, err)
		}
	}
	e.Close()
	return nil
}

// ReadPoints reads a plot point grid back from a point shapefile created
// by WritePoints. The Inside flag is not stored in point files; it is set
// to true on read.
func ReadPoints(filename, idField string) ([]GridPoint, error) {
	d, err := shp.NewDecoder(filename)
	if err != nil {
		return nil, fmt.Errorf("simplot: opening point file %s: %v", filename, err)
	}
	defer d.Close()
	var pts []GridPoint
	for {
		g, fields, more := d.DecodeRowFields(idField, "row", "column")
		if !more || d.Error() != nil {
			break
		}
		p, ok := g.(geom.Point)
		if !ok {
			return nil, fmt.Errorf("simplot: point file %s contains %T, not points", filename, g)
		}
		id := strings.Trim(fields[idField], "\x00* ")
		row, err := s2f(fields["row"])
		if err != nil {
			return nil, fmt.Errorf("simplot: point of plot '%s' in %s has an invalid row value: %v", id, filename, err)
		}
		col, err := s2f(fields["column"])
		if err != nil {
			return nil, fmt.Errorf("simplot: point of plot '%s' in %s has an invalid column value: %v", id, filename, err)
		}
		pts = append(pts, GridPoint{
			Point:  p,
			ID:     id,
			Row:    int(row),
			Col:    int(col),
			Inside: true,
		})
	}
	if err := d.Error(); err != nil {
		return nil, fmt.Errorf("simplot: reading point file %s: %v", filename, err)
	}
	return pts, nil
}

// WritePointValues saves a point grid together with the value sampled at
// each point. The value column is named after valueField, shortened to at
// most 5 characters so that it matches the plot statistic columns derived
// from the same name. Points without a valid sample get NaN.
func WritePointValues(filename, idField, valueField string, pts []GridPoint, vals []float64, valid []bool) error {
	if len(vals) != len(pts) || len(valid) != len(pts) {
		return fmt.Errorf("simplot: %d points but %d values and %d validity flags", len(pts), len(vals), len(valid))
	}
	name := truncField(valueField, maxStatPrefixLen)
	fields := []goshp.Field{
		goshp.StringField(idField, 64),
		goshp.NumberField("row", 10),
		goshp.NumberField("column", 10),
		goshp.FloatField(name, 14, 8),
	}
	fileBase := strings.TrimSuffix(filename, filepath.Ext(filename))
	e, err := shp.NewEncoderFromFields(fileBase+".shp", goshp.POINT, fields...)
	if err != nil {
		return fmt.Errorf("simplot: creating point file %s: %v", filename, err)
	}
	for i := range pts {
		pt := &pts[i]
		v := math.NaN()
		if valid[i] {
			v = vals[i]
		}
		if err := e.EncodeFields(pt.Point, pt.ID, pt.Row, pt.Col, v); err != nil {
			return fmt.Errorf("simplot: writing point %d of plot %s to %s: %v", i, pt.ID, filename, err)
		}
	}
	e.Close()
	return nil
}

// WritePlotValues saves plot features together with summary statistics of
// the values sampled at their grid points. For a value field named v the
// statistics appear in the columns v_min, v_max, and v_mean, with v
// shortened to at most 5 characters. Plots without any valid samples get
// NaN statistics.
func WritePlotValues(filename, idField, valueField string, feats []*PlotFeature, sums map[string]ValueSummary) error {
	prefix := truncField(valueField, maxStatPrefixLen)
	extra := []string{prefix + "_min", prefix + "_max", prefix + "_mean"}
	return writePlotFeatures(filename, idField, feats, extra, func(f *PlotFeature) []interface{} {
		s, ok := sums[f.ID]
		if !ok {
			nan := math.NaN()
			return []interface{}{nan, nan, nan}
		}
		return []interface{}{s.Min, s.Max, s.Mean}
	})
}

// WriteCentroidValues saves plot features together with the value sampled
// at each plot centroid, in a column named after valueField shortened to
// the 10 character column limit. Plots without a valid sample get NaN.
func WriteCentroidValues(filename, idField, valueField string, feats []*PlotFeature, vals map[string]float64) error {
	name := truncField(valueField, maxFieldLen)
	return writePlotFeatures(filename, idField, feats, []string{name}, func(f *PlotFeature) []interface{} {
		if v, ok := vals[f.ID]; ok {
			return []interface{}{v}
		}
		return []interface{}{math.NaN()}
	})
}

// writePlotFeatures writes plot features with their base attributes plus
// the given extra columns.
func writePlotFeatures(filename, idField string, feats []*PlotFeature, extra []string, extraVals func(*PlotFeature) []interface{}) error {
	fields := make([]goshp.Field, 0, 1+len(plotBaseFields)+len(extra))
	fields = append(fields, goshp.StringField(idField, 64))
	for _, name := range plotBaseFields {
		fields = append(fields, goshp.FloatField(name, 14, 8))
	}
	for _, name := range extra {
		fields = append(fields, goshp.FloatField(name, 14, 8))
	}
	fileBase := strings.TrimSuffix(filename, filepath.Ext(filename))
	e, err := shp.NewEncoderFromFields(fileBase+".shp", goshp.POLYGON, fields...)
	if err != nil {
		return fmt.Errorf("simplot: creating plot file %s: %v", filename, err)
	}
	for _, f := range feats {
		vals := make([]interface{}, 0, len(fields))
		vals = append(vals, f.ID, f.A, f.B, f.Rotation*180/math.Pi, f.Score, f.ShapeIndex)
		vals = append(vals, extraVals(f)...)
		if err := e.EncodeFields(f.Polygon, vals...); err != nil {
			return fmt.Errorf("simplot: writing plot %s to %s: %v", f.ID, filename, err)
		}
	}
	e.Close()
	return nil
}

// DeleteShapefile deletes the named shapefile together with its sidecar
// files. Missing sidecars are not an error.
func DeleteShapefile(filename string) error {
	base := strings.TrimSuffix(filename, filepath.Ext(filename))
	for _, ext := range []string{".shp", ".shx", ".dbf", ".prj"} {
		if err := os.Remove(base + ext); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}

// CopyProjection copies the .prj sidecar file accompanying the shapefile
// src to the one for dst, keeping outputs georeferenced without
// interpreting the coordinate reference system. A missing source .prj is
// not an error.
func CopyProjection(src, dst string) error {
	b, err := ioutil.ReadFile(strings.TrimSuffix(src, filepath.Ext(src)) + ".prj")
	if os.IsNotExist(err) {
		return nil
	} else if err != nil {
		return fmt.Errorf("simplot: reading projection for %s: %v", src, err)
	}
	dstPrj := strings.TrimSuffix(dst, filepath.Ext(dst)) + ".prj"
	if err := ioutil.WriteFile(dstPrj, b, 0644); err != nil {
		return fmt.Errorf("simplot: writing projection for %s: %v", dst, err)
	}
	return nil
}

// s2f converts a shapefile attribute value to a number, treating null
// values as zero.
func s2f(s string) (float64, error) {
	s = strings.Trim(s, "\x00* ")
	if s == "" {
		// null value
		return 0., nil
	}
	f, err := strconv.ParseFloat(s, 64)
	return f, err
}
