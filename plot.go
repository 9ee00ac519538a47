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
	"math/rand"

	"github.com/ctessum/geom"
)

// A Plot is a candidate simulation plot: a regularly shaped region whose
// area equals the area of its source polygon. The polygon approximation of
// the plot boundary is rebuilt from the parameters after every change, so
// the area-preservation constraint holds under any sequence of moves.
type Plot struct {
	// Shape is the geometric form of the plot.
	Shape Shape

	// Anchor is the initial plot position.
	Anchor geom.Point

	// Offset is the accumulated translation away from Anchor.
	Offset geom.Point

	// Rotation is the accumulated rotation in radians, counterclockwise.
	Rotation float64

	// Scale is the uniform scale factor. It stays 1 under the
	// area-preservation constraint; the aspect ratio is varied through
	// the dimensions instead.
	Scale float64

	// A and B are the plot dimensions: side lengths for squares and
	// rectangles, full axis lengths for circles and ellipses, with
	// A >= B.
	A, B float64

	ring geom.Polygon
}

// newPlot constructs the initial plot of the given shape for s, anchored
// according to pos, with dimensions chosen so that the plot area equals
// the source polygon area. Rectangle and ellipse dimensions additionally
// reproduce the source perimeter where possible, subject to the ratioMax
// cap on the side ratio.
func newPlot(s *source, shape Shape, pos Position, ratioMax float64) (*Plot, error) {
	p := &Plot{
		Shape:  shape,
		Anchor: s.anchor(pos),
		Scale:  1,
	}
	switch shape {
	case ShapeSquare:
		p.A = math.Sqrt(s.area)
		p.B = p.A
	case ShapeCircle:
		p.A = 2 * math.Sqrt(s.area/math.Pi)
		p.B = p.A
	case ShapeRectangle:
		d := discriminant(s.perimeter, s.area)
		p.A = (s.perimeter + d) / 4
		p.B = (s.perimeter - d) / 4
		if !(p.A/p.B <= ratioMax) {
			p.B = math.Sqrt(s.area / ratioMax)
			p.A = s.area / p.B
		}
	case ShapeEllipse:
		d := discriminant(s.perimeter, s.area)
		r := 1.0
		if d > 0 {
			r = (s.perimeter + d) / (s.perimeter - d)
		}
		sa := math.Sqrt(r * s.area / math.Pi)
		sb := sa / r
		if !(sa/sb <= ratioMax) {
			sa = math.Sqrt(ratioMax * s.area / math.Pi)
			sb = sa / ratioMax
		}
		p.A = 2 * sa
		p.B = 2 * sb
	default:
		return nil, fmt.Errorf("simplot: cannot construct a plot of shape '%s'", shape)
	}
	if !(p.A > 0) || !(p.B > 0) || math.IsInf(p.A, 0) || math.IsInf(p.B, 0) {
		return nil, ErrNoFeasiblePlacement
	}
	p.rebuild()
	if !(p.ring.Area() > 0) {
		// The dimensions vanish at double precision at this location.
		return nil, ErrNoFeasiblePlacement
	}
	return p, nil
}

// discriminant returns sqrt(max(P²-16A, 0)), the term that splits a
// perimeter P into the side lengths of a rectangle with area A.
func discriminant(p, a float64) float64 {
	d := p*p - 16*a
	if d > 0 {
		return math.Sqrt(d)
	}
	return 0
}

// Polygon returns the vertex ring approximating the plot boundary.
func (p *Plot) Polygon() geom.Polygon {
	return p.ring
}

// Center returns the current plot center.
func (p *Plot) Center() geom.Point {
	return geom.Point{X: p.Anchor.X + p.Offset.X, Y: p.Anchor.Y + p.Offset.Y}
}

// rebuild reconstructs the boundary ring from the plot parameters.
func (p *Plot) rebuild() {
	var base geom.Polygon
	switch p.Shape {
	case ShapeCircle, ShapeEllipse:
		base = ellipseRing(p.Anchor, p.A, p.B)
	default:
		base = rectRing(p.Anchor, p.A, p.B)
	}
	p.ring = transform(base, p.Offset.X, p.Offset.Y, p.Rotation, p.Scale)
}

// clone returns a copy of p. The boundary ring is shared until the copy is
// next rebuilt; rings are never modified in place.
func (p *Plot) clone() *Plot {
	c := *p
	return &c
}

// translate moves the plot by (dx, dy).
func (p *Plot) translate(dx, dy float64) {
	p.Offset.X += dx
	p.Offset.Y += dy
	p.rebuild()
}

// rotate turns the plot counterclockwise by rot radians about its center.
// Rotating a circle has no effect.
func (p *Plot) rotate(rot float64) {
	if p.Shape == ShapeCircle {
		return
	}
	p.Rotation += rot
	p.rebuild()
}

// resize trades the plot dimensions against each other, keeping the area
// fixed. The move is rejected if it would push the side ratio beyond
// ratioMax. Resizing a square or a circle has no effect.
func (p *Plot) resize(perc, ratioMax float64) {
	if p.Shape == ShapeSquare || p.Shape == ShapeCircle {
		return
	}
	a := p.A * (1 + perc)
	b := p.B / (1 + perc)
	if a < b {
		a, b = b, a
	}
	if a/b <= ratioMax {
		p.A = a
		p.B = b
		p.rebuild()
	}
}

// randomTranslate moves the plot by a uniform random offset of up to frac
// times the rotated plot dimensions in each direction.
func (p *Plot) randomTranslate(rng *rand.Rand, frac float64) {
	sin, cos := math.Sincos(p.Rotation)
	dx := p.A*sin + p.B*cos
	dy := p.A*cos + p.B*sin
	tx := frac * dx * (2*rng.Float64() - 1)
	ty := frac * dy * (2*rng.Float64() - 1)
	p.translate(tx, ty)
}

// randomRotate turns the plot by a uniform random angle within ±max
// radians.
func (p *Plot) randomRotate(rng *rand.Rand, max float64) {
	p.rotate(max * (2*rng.Float64() - 1))
}

// randomResize changes the plot aspect ratio by a uniform random
// percentage within ±frac.
func (p *Plot) randomResize(rng *rand.Rand, frac, ratioMax float64) {
	p.resize(frac*(2*rng.Float64()-1), ratioMax)
}
