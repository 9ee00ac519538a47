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

// Package raster samples gridded environmental data at simulation plot
// locations. Rasters are read from NetCDF files holding a 2-D variable
// in (y, x) order together with the global attributes x0, y0, dx, and dy
// describing the grid georeference, and optionally nodata marking cells
// without a valid value.
package raster

import (
	"fmt"
	"math"

	"github.com/ctessum/cdf"
	"github.com/ctessum/geom"
	"github.com/ctessum/sparse"
)

// A Sampler returns raster values at point locations.
type Sampler interface {
	// Sample returns the value at point p and whether the value is
	// valid. Points outside the raster extent and cells holding the
	// no-data marker are invalid.
	Sample(p geom.Point) (float64, bool)
}

// Grid is a regular raster grid backed by a dense array.
type Grid struct {
	// Data holds the cell values in row-major (y, x) order.
	Data *sparse.DenseArray

	// X0 and Y0 are the coordinates of the lower-left corner of the
	// grid, and Dx and Dy are the cell sizes. Both cell sizes must be
	// positive, so row 0 is the southern edge.
	X0, Y0, Dx, Dy float64

	// NoData marks cells without a valid value when HasNoData is set.
	// NaN cells are always invalid.
	NoData    float64
	HasNoData bool
}

// Sample returns the value of the cell containing p.
func (g *Grid) Sample(p geom.Point) (float64, bool) {
	ny, nx := g.Data.Shape[0], g.Data.Shape[1]
	col := int(math.Floor((p.X - g.X0) / g.Dx))
	row := int(math.Floor((p.Y - g.Y0) / g.Dy))
	if col < 0 || col >= nx || row < 0 || row >= ny {
		return 0, false
	}
	v := g.Data.Get(row, col)
	if math.IsNaN(v) || (g.HasNoData && v == g.NoData) {
		return 0, false
	}
	return v, true
}

// Bounds returns the grid extent.
func (g *Grid) Bounds() *geom.Bounds {
	ny, nx := g.Data.Shape[0], g.Data.Shape[1]
	return &geom.Bounds{
		Min: geom.Point{X: g.X0, Y: g.Y0},
		Max: geom.Point{X: g.X0 + g.Dx*float64(nx), Y: g.Y0 + g.Dy*float64(ny)},
	}
}

// ReadNetCDF reads the raster grid stored in variable v of a NetCDF
// file. If v is empty, the file must contain exactly one 2-D variable,
// which is used.
func ReadNetCDF(rw cdf.ReaderWriterAt, v string) (*Grid, error) {
	f, err := cdf.Open(rw)
	if err != nil {
		return nil, fmt.Errorf("raster: opening file: %v", err)
	}
	if v == "" {
		for _, name := range f.Header.Variables() {
			if len(f.Header.Lengths(name)) != 2 {
				continue
			}
			if v != "" {
				return nil, fmt.Errorf("raster: file contains more than one 2-D variable; specify one of %v", f.Header.Variables())
			}
			v = name
		}
		if v == "" {
			return nil, fmt.Errorf("raster: file contains no 2-D variable")
		}
	}
	dims := f.Header.Lengths(v)
	if dims == nil {
		return nil, fmt.Errorf("raster: file does not contain variable %s; it contains %v", v, f.Header.Variables())
	}
	if len(dims) != 2 {
		return nil, fmt.Errorf("raster: variable %s has %d dimensions but must have 2", v, len(dims))
	}
	ny, nx := dims[0], dims[1]
	if ny < 1 || nx < 1 {
		return nil, fmt.Errorf("raster: variable %s has an empty dimension", v)
	}

	g := &Grid{Data: sparse.ZerosDense(ny, nx)}
	if g.X0, err = attrFloat(f.Header, "x0"); err != nil {
		return nil, err
	}
	if g.Y0, err = attrFloat(f.Header, "y0"); err != nil {
		return nil, err
	}
	if g.Dx, err = attrFloat(f.Header, "dx"); err != nil {
		return nil, err
	}
	if g.Dy, err = attrFloat(f.Header, "dy"); err != nil {
		return nil, err
	}
	if !(g.Dx > 0) || !(g.Dy > 0) {
		return nil, fmt.Errorf("raster: cell sizes must be positive but are %g and %g", g.Dx, g.Dy)
	}
	if nd, err := attrFloat(f.Header, "nodata"); err == nil {
		g.NoData = nd
		g.HasNoData = true
	}

	r := f.Reader(v, nil, nil)
	buf := r.Zero(nx * ny)
	if _, err := r.Read(buf); err != nil {
		return nil, fmt.Errorf("raster: reading variable %s: %v", v, err)
	}
	switch b := buf.(type) {
	case []float64:
		copy(g.Data.Elements, b)
	case []float32:
		for i, val := range b {
			g.Data.Elements[i] = float64(val)
		}
	case []int32:
		for i, val := range b {
			g.Data.Elements[i] = float64(val)
		}
	case []int16:
		for i, val := range b {
			g.Data.Elements[i] = float64(val)
		}
	case []uint8:
		for i, val := range b {
			g.Data.Elements[i] = float64(val)
		}
	default:
		return nil, fmt.Errorf("raster: variable %s has unsupported type %T", v, buf)
	}
	return g, nil
}

// attrFloat reads a numeric global attribute.
func attrFloat(h *cdf.Header, name string) (float64, error) {
	switch a := h.GetAttribute("", name).(type) {
	case []float64:
		if len(a) > 0 {
			return a[0], nil
		}
	case []float32:
		if len(a) > 0 {
			return float64(a[0]), nil
		}
	case []int32:
		if len(a) > 0 {
			return float64(a[0]), nil
		}
	case []int16:
		if len(a) > 0 {
			return float64(a[0]), nil
		}
	}
	return 0, fmt.Errorf("raster: global attribute %s is missing or not a number", name)
}
