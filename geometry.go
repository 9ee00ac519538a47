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
	"math"

	"github.com/ctessum/geom"
)

// ellipseSegments is the number of vertices used to approximate circular
// and elliptical plot boundaries.
const ellipseSegments = 100

// source holds a polygon together with the derived attributes the
// optimizer needs. The attributes are computed once per polygon and are
// read-only afterwards.
type source struct {
	poly      geom.Polygon
	area      float64
	perimeter float64
	centroid  geom.Point
	meanXY    geom.Point
	bounds    *geom.Bounds
}

// prepareSource validates p and computes its derived attributes,
// returning ErrInvalidGeometry for degenerate input.
func prepareSource(p geom.Polygon) (*source, error) {
	if len(p) == 0 || distinctVertices(p[0]) < 3 {
		return nil, ErrInvalidGeometry
	}
	a := p.Area()
	if math.IsNaN(a) || math.IsInf(a, 0) || a <= 0 {
		return nil, ErrInvalidGeometry
	}
	m, err := meanCoordinate(p)
	if err != nil {
		return nil, err
	}
	return &source{
		poly:      p,
		area:      a,
		perimeter: perimeter(p),
		centroid:  p.Centroid(),
		meanXY:    m,
		bounds:    p.Bounds(),
	}, nil
}

// anchor returns the initial plot position for the given position mode.
func (s *source) anchor(pos Position) geom.Point {
	switch pos {
	case PositionCentroid:
		return s.centroid
	case PositionMeanXY:
		return s.meanXY
	default:
		return boundsCenter(s.bounds)
	}
}

// distinctVertices counts the vertices of r that differ from their
// predecessor, not counting a closing vertex that repeats the first.
func distinctVertices(r []geom.Point) int {
	if len(r) == 0 {
		return 0
	}
	n := 1
	for i := 1; i < len(r); i++ {
		if r[i] != r[i-1] {
			n++
		}
	}
	if n > 1 && r[len(r)-1] == r[0] {
		n--
	}
	return n
}

// perimeter returns the total boundary length of p. Unclosed rings are
// treated as closed.
func perimeter(p geom.Polygon) float64 {
	var l float64
	for _, r := range p {
		if len(r) < 2 {
			continue
		}
		for i := 0; i < len(r)-1; i++ {
			l += math.Hypot(r[i+1].X-r[i].X, r[i+1].Y-r[i].Y)
		}
		if r[0] != r[len(r)-1] {
			l += math.Hypot(r[0].X-r[len(r)-1].X, r[0].Y-r[len(r)-1].Y)
		}
	}
	return l
}

// meanCoordinate returns the arithmetic mean of the vertices of p. A
// closing vertex that repeats the first vertex of its ring is not counted
// twice. This differs from the centroid when the vertex density is uneven.
func meanCoordinate(p geom.Polygon) (geom.Point, error) {
	var sx, sy float64
	var n int
	for _, r := range p {
		if len(r) == 0 {
			continue
		}
		m := len(r)
		if m > 1 && r[0] == r[m-1] {
			m--
		}
		for _, pt := range r[:m] {
			sx += pt.X
			sy += pt.Y
		}
		n += m
	}
	if n == 0 {
		return geom.Point{}, ErrInvalidGeometry
	}
	return geom.Point{X: sx / float64(n), Y: sy / float64(n)}, nil
}

// boundsCenter returns the center of b.
func boundsCenter(b *geom.Bounds) geom.Point {
	return geom.Point{
		X: (b.Min.X + b.Max.X) / 2,
		Y: (b.Min.Y + b.Max.Y) / 2,
	}
}

// rectRing returns a closed axis-aligned rectangular ring centered at c
// with width a and height b.
func rectRing(c geom.Point, a, b float64) geom.Polygon {
	x0, x1 := c.X-a/2, c.X+a/2
	y0, y1 := c.Y-b/2, c.Y+b/2
	return geom.Polygon{{
		{X: x0, Y: y0},
		{X: x1, Y: y0},
		{X: x1, Y: y1},
		{X: x0, Y: y1},
		{X: x0, Y: y0},
	}}
}

// ellipseRing returns a closed ring approximating an axis-aligned ellipse
// centered at c with full axis lengths a and b. Circles are the equal-axis
// case.
func ellipseRing(c geom.Point, a, b float64) geom.Polygon {
	r := make([]geom.Point, ellipseSegments+1)
	for i := 0; i < ellipseSegments; i++ {
		angle := 2 * math.Pi * float64(i) / ellipseSegments
		r[i] = geom.Point{
			X: c.X + a/2*math.Cos(angle),
			Y: c.Y + b/2*math.Sin(angle),
		}
	}
	r[ellipseSegments] = r[0]
	return geom.Polygon{r}
}

// rotateAbout rotates pt about c using a precomputed sine and cosine of
// the rotation angle.
func rotateAbout(pt, c geom.Point, sin, cos float64) geom.Point {
	x := pt.X - c.X
	y := pt.Y - c.Y
	return geom.Point{
		X: c.X + x*cos - y*sin,
		Y: c.Y + x*sin + y*cos,
	}
}

// transform returns a copy of p rotated counterclockwise by rot radians
// about its own centroid, then translated by (dx, dy), then scaled by
// scale about the moved centroid, in that fixed order.
func transform(p geom.Polygon, dx, dy, rot, scale float64) geom.Polygon {
	c := p.Centroid()
	sin, cos := math.Sincos(rot)
	o := make(geom.Polygon, len(p))
	for i, r := range p {
		or := make([]geom.Point, len(r))
		for j, pt := range r {
			x := pt.X - c.X
			y := pt.Y - c.Y
			or[j] = geom.Point{
				X: c.X + dx + scale*(x*cos-y*sin),
				Y: c.Y + dy + scale*(x*sin+y*cos),
			}
		}
		o[i] = or
	}
	return o
}

// withinDistance reports whether pt lies inside p or within distance d of
// its boundary. It is the containment test for the slightly buffered plot
// boundary used when clipping grid points.
func withinDistance(pt geom.Point, p geom.Polygon, d float64) bool {
	if pt.Within(p) != geom.Outside {
		return true
	}
	d2 := d * d
	for _, r := range p {
		for i := 0; i < len(r)-1; i++ {
			if pointSegmentDistSq(pt, r[i], r[i+1]) <= d2 {
				return true
			}
		}
		if len(r) > 1 && r[0] != r[len(r)-1] {
			if pointSegmentDistSq(pt, r[len(r)-1], r[0]) <= d2 {
				return true
			}
		}
	}
	return false
}

// verticesWithin reports whether every vertex of p lies inside q or on
// its boundary.
func verticesWithin(p, q geom.Polygon) bool {
	for _, r := range p {
		for _, pt := range r {
			if pt.Within(q) == geom.Outside {
				return false
			}
		}
	}
	return true
}

// pointSegmentDistSq returns the squared distance from pt to the segment
// between a and b.
func pointSegmentDistSq(pt, a, b geom.Point) float64 {
	abx := b.X - a.X
	aby := b.Y - a.Y
	apx := pt.X - a.X
	apy := pt.Y - a.Y
	l2 := abx*abx + aby*aby
	if l2 == 0 {
		return apx*apx + apy*apy
	}
	t := (apx*abx + apy*aby) / l2
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	dx := apx - t*abx
	dy := apy - t*aby
	return dx*dx + dy*dy
}
