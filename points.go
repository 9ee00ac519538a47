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
	"math"

	"github.com/ctessum/geom"
	"gonum.org/v1/gonum/floats"
)

// pointClipBuffer is the fraction of the long plot side by which the
// plot boundary is expanded when deciding whether a grid point still
// counts as inside the plot.
const pointClipBuffer = 0.005

// A GridPoint is one node of the regular sampling grid laid out inside
// a simulation plot.
type GridPoint struct {
	Point geom.Point

	// ID is the identifier of the plot this point belongs to.
	ID string

	// Row and Col are 1-based grid indices. Rows count downward from the
	// top edge of the unrotated plot and columns rightward from its left
	// edge.
	Row, Col int

	// Inside reports whether the point lies within the plot boundary
	// expanded by pointClipBuffer times the long plot side.
	Inside bool
}

// A PlotFeature is a simulation plot read back from a plot shapefile.
// It carries the attributes needed to regenerate the plot grid and to
// attach additional per-plot values.
type PlotFeature struct {
	ID string

	// A and B are the long and short side lengths (or axis lengths)
	// of the plot.
	A, B float64

	// Rotation is the plot rotation in radians counterclockwise.
	Rotation float64

	// Score is the fraction of the source polygon covered by the plot,
	// in percent, as stored in the shapefile.
	Score float64

	// ShapeIndex is the shape complexity index of the source polygon.
	ShapeIndex float64

	Polygon geom.Polygon
}

// A ValueSummary summarizes the raster values sampled at the grid points
// of one plot.
type ValueSummary struct {
	// N is the number of points with valid values.
	N int

	Min, Max, Mean float64
}

// PointGrid lays out the sampling grid for the plot held by r.
// The grid has n points along the shorter plot side, spaced equally in
// both directions and aligned with the plot rotation. If clip is true,
// points outside the slightly buffered plot boundary are dropped;
// otherwise they are kept and marked with Inside == false.
func (r *Result) PointGrid(n int, clip bool) ([]GridPoint, error) {
	p := r.Plot
	return pointGrid(r.ID, p.Polygon(), p.A, p.B, p.Rotation, n, clip)
}

// PointGrid lays out the sampling grid for plot feature f; see
// Result.PointGrid.
func (f *PlotFeature) PointGrid(n int, clip bool) ([]GridPoint, error) {
	return pointGrid(f.ID, f.Polygon, f.A, f.B, f.Rotation, n, clip)
}

// pointGrid generates the point grid for one plot. The grid spacing is
// the short side length divided by n-1, so that exactly n points span
// the short side. Along the long side, points are added while they stay
// within half a spacing of the far edge. The grid is constructed on the
// axis-aligned rectangle centered on the plot centroid and then rotated
// by alpha about the centroid.
func pointGrid(id string, poly geom.Polygon, a, b, alpha float64, n int, clip bool) ([]GridPoint, error) {
	if n < 2 {
		return nil, fmt.Errorf("simplot: point grid requires at least 2 points per side but got %d", n)
	}
	if len(poly) == 0 {
		return nil, fmt.Errorf("simplot: plot %s has no geometry", id)
	}
	if a < b {
		a, b = b, a
	}
	if !(b > 0) || math.IsInf(a, 0) {
		return nil, fmt.Errorf("simplot: point grid requires positive finite plot sides but got %g and %g", a, b)
	}
	cen := poly.Centroid()
	d := b / float64(n-1)
	steps := math.Floor(a/d + 0.5)
	if steps > 1e7 {
		return nil, fmt.Errorf("simplot: point grid for plot %s would have %g columns; the side ratio is too large", id, steps+1)
	}
	nLong := int(steps) + 1

	// Before rotation the long side runs along x and the short side
	// along y, with rows counted from the top edge down.
	ys := floats.Span(make([]float64, n), cen.Y+b/2, cen.Y-b/2)
	x0 := cen.X - a/2
	sin, cos := math.Sincos(alpha)
	buf := pointClipBuffer * a

	var pts []GridPoint
	for j := 0; j < nLong; j++ {
		x := x0 + float64(j)*d
		for i, y := range ys {
			pt := rotateAbout(geom.Point{X: x, Y: y}, cen, sin, cos)
			inside := withinDistance(pt, poly, buf)
			if clip && !inside {
				continue
			}
			pts = append(pts, GridPoint{
				Point:  pt,
				ID:     id,
				Row:    i + 1,
				Col:    j + 1,
				Inside: inside,
			})
		}
	}
	return pts, nil
}
