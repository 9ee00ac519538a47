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
	"math/rand"
	"reflect"
	"testing"

	"github.com/ctessum/geom"
)

func TestNewPlotDimensions(t *testing.T) {
	tests := []struct {
		name  string
		poly  geom.Polygon
		shape Shape
		a, b  float64
	}{
		{"square of unit square", testRect(1, 1), ShapeSquare, 1, 1},
		{"circle of unit square", testRect(1, 1), ShapeCircle, 1.1283791670955126, 1.1283791670955126},
		{"rectangle of unit square", testRect(1, 1), ShapeRectangle, 1, 1},
		{"ellipse of unit square", testRect(1, 1), ShapeEllipse, 1.1283791670955126, 1.1283791670955126},
		{"rectangle reproducing perimeter", testRect(4, 1), ShapeRectangle, 4, 1},
		{"ellipse reproducing perimeter", testRect(4, 1), ShapeEllipse, 4.51351666838205, 1.1283791670955126},
		{"rectangle at the ratio cap", testRect(9, 1), ShapeRectangle, 6, 1.5},
		{"ellipse at the ratio cap", testRect(9, 1), ShapeEllipse, 6.770275002573076, 1.692568750643269},
		{"square of quadrilateral", testQuad(), ShapeSquare, 2.8284271247461903, 2.8284271247461903},
		{"circle of quadrilateral", testQuad(), ShapeCircle, 3.1915382432114616, 3.1915382432114616},
	}
	for _, test := range tests {
		s, err := prepareSource(test.poly)
		if err != nil {
			t.Fatalf("%s: %v", test.name, err)
		}
		p, err := newPlot(s, test.shape, PositionBBox, DefaultConfig().SideRatioMax)
		if err != nil {
			t.Fatalf("%s: %v", test.name, err)
		}
		if absDifferent(p.A, test.a) || absDifferent(p.B, test.b) {
			t.Errorf("%s: want %g x %g but have %g x %g", test.name, test.a, test.b, p.A, p.B)
		}
		if p.A < p.B {
			t.Errorf("%s: dimension A %g is below B %g", test.name, p.A, p.B)
		}
		if p.Scale != 1 || p.Rotation != 0 || p.Offset.X != 0 || p.Offset.Y != 0 {
			t.Errorf("%s: plot is not at its initial placement: %+v", test.name, p)
		}
	}
}

func TestNewPlotAnchor(t *testing.T) {
	s, err := prepareSource(testQuad())
	if err != nil {
		t.Fatal(err)
	}
	for _, pos := range []Position{PositionBBox, PositionCentroid, PositionMeanXY} {
		p, err := newPlot(s, ShapeSquare, pos, 4)
		if err != nil {
			t.Fatal(err)
		}
		want := s.anchor(pos)
		if p.Anchor != want {
			t.Errorf("%s: want anchor %+v but have %+v", pos, want, p.Anchor)
		}
		c := p.Polygon().Centroid()
		if absDifferent(c.X, want.X) || absDifferent(c.Y, want.Y) {
			t.Errorf("%s: want center %+v but have %+v", pos, want, c)
		}
	}
}

func TestNewPlotInvalidShape(t *testing.T) {
	s, err := prepareSource(testRect(1, 1))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := newPlot(s, Shape(99), PositionBBox, 4); err == nil {
		t.Error("want an error for an unknown shape")
	}
}

func TestNewPlotVanishingDimensions(t *testing.T) {
	// A polygon far enough from the origin that the plot dimensions are
	// smaller than the coordinate spacing of float64.
	far := geom.Polygon{{
		geom.Point{X: 1e300, Y: 0},
		geom.Point{X: 1.000001e300, Y: 0},
		geom.Point{X: 1e300, Y: 1e6},
		geom.Point{X: 1e300, Y: 0},
	}}
	s, err := prepareSource(far)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := newPlot(s, ShapeSquare, PositionBBox, 4); err != ErrNoFeasiblePlacement {
		t.Errorf("want ErrNoFeasiblePlacement but have %v", err)
	}
}

// TestPlotArea checks that every move preserves the plot area.
func TestPlotArea(t *testing.T) {
	s, err := prepareSource(testQuad())
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		shape Shape
		area  float64 // ring area; below 8 for the inscribed rings
	}{
		{ShapeSquare, 8},
		{ShapeRectangle, 8},
		{ShapeCircle, 7.994737249918731},
		{ShapeEllipse, 7.994737249918731},
	}
	for _, test := range tests {
		p, err := newPlot(s, test.shape, PositionCentroid, 4)
		if err != nil {
			t.Fatal(err)
		}
		if a := p.Polygon().Area(); different(a, test.area, testTolerance) {
			t.Errorf("%s: want initial area %g but have %g", test.shape, test.area, a)
		}
		p.translate(3, -1.5)
		p.rotate(0.7)
		p.resize(-0.1, 4)
		if a := p.Polygon().Area(); different(a, test.area, testTolerance) {
			t.Errorf("%s: want area %g after moving but have %g", test.shape, test.area, a)
		}
	}
}

func TestPlotTranslate(t *testing.T) {
	s, err := prepareSource(testQuad())
	if err != nil {
		t.Fatal(err)
	}
	p, err := newPlot(s, ShapeSquare, PositionBBox, 4)
	if err != nil {
		t.Fatal(err)
	}
	p.translate(1, -0.5)
	c := p.Center()
	if absDifferent(c.X, 3) || absDifferent(c.Y, 1) {
		t.Errorf("want center (3, 1) but have %+v", c)
	}
	rc := p.Polygon().Centroid()
	if absDifferent(rc.X, 3) || absDifferent(rc.Y, 1) {
		t.Errorf("want ring centroid (3, 1) but have %+v", rc)
	}
}

func TestPlotRotate(t *testing.T) {
	s, err := prepareSource(testRect(4, 1))
	if err != nil {
		t.Fatal(err)
	}
	p, err := newPlot(s, ShapeRectangle, PositionBBox, 4)
	if err != nil {
		t.Fatal(err)
	}
	p.rotate(0.3)
	p.rotate(0.2)
	if absDifferent(p.Rotation, 0.5) {
		t.Errorf("want rotation 0.5 but have %g", p.Rotation)
	}
	p.rotate(math.Pi/2 - 0.5)
	b := p.Polygon().Bounds()
	if absDifferent(b.Max.X-b.Min.X, 1) || absDifferent(b.Max.Y-b.Min.Y, 4) {
		t.Errorf("want a 1 x 4 extent after a quarter turn but have %+v", b)
	}

	// Rotating a circle changes nothing.
	c, err := newPlot(s, ShapeCircle, PositionBBox, 4)
	if err != nil {
		t.Fatal(err)
	}
	ring := c.Polygon()
	c.rotate(1)
	if c.Rotation != 0 {
		t.Errorf("circle rotation: want 0 but have %g", c.Rotation)
	}
	if !reflect.DeepEqual(ring, c.Polygon()) {
		t.Error("rotating a circle changed its ring")
	}
}

func TestPlotResize(t *testing.T) {
	s, err := prepareSource(testRect(4, 1))
	if err != nil {
		t.Fatal(err)
	}

	p, err := newPlot(s, ShapeRectangle, PositionBBox, 4)
	if err != nil {
		t.Fatal(err)
	}
	p.resize(-0.25, 4)
	if absDifferent(p.A, 3) || absDifferent(p.B, 4./3) {
		t.Errorf("want 3 x %g but have %g x %g", 4./3, p.A, p.B)
	}

	// A move beyond the ratio cap is rejected.
	p, err = newPlot(s, ShapeRectangle, PositionBBox, 4)
	if err != nil {
		t.Fatal(err)
	}
	p.resize(0.5, 4)
	if p.A != 4 || p.B != 1 {
		t.Errorf("want the move rejected but have %g x %g", p.A, p.B)
	}

	// Shrinking A below B swaps the dimensions.
	p, err = newPlot(s, ShapeRectangle, PositionBBox, 4)
	if err != nil {
		t.Fatal(err)
	}
	p.resize(-0.6, 4)
	if absDifferent(p.A, 2.5) || absDifferent(p.B, 1.6) {
		t.Errorf("want 2.5 x 1.6 but have %g x %g", p.A, p.B)
	}

	// Squares and circles do not resize.
	for _, shape := range []Shape{ShapeSquare, ShapeCircle} {
		p, err = newPlot(s, shape, PositionBBox, 4)
		if err != nil {
			t.Fatal(err)
		}
		a, b := p.A, p.B
		p.resize(0.1, 4)
		if p.A != a || p.B != b {
			t.Errorf("%s: want %g x %g but have %g x %g", shape, a, b, p.A, p.B)
		}
	}
}

// TestRandomMoveDraws checks that moves without an effect still consume
// their random draws, so that the position in the random stream depends
// only on the iteration count.
func TestRandomMoveDraws(t *testing.T) {
	s, err := prepareSource(testRect(1, 1))
	if err != nil {
		t.Fatal(err)
	}
	sq, err := newPlot(s, ShapeSquare, PositionBBox, 4)
	if err != nil {
		t.Fatal(err)
	}
	ci, err := newPlot(s, ShapeCircle, PositionBBox, 4)
	if err != nil {
		t.Fatal(err)
	}

	rng1 := rand.New(rand.NewSource(42))
	rng2 := rand.New(rand.NewSource(42))
	rng2.Float64()
	sq.randomResize(rng1, 0.15, 4)
	if rng1.Float64() != rng2.Float64() {
		t.Error("resizing a square must consume one draw")
	}

	rng1 = rand.New(rand.NewSource(42))
	rng2 = rand.New(rand.NewSource(42))
	rng2.Float64()
	ci.randomRotate(rng1, 0.5)
	if rng1.Float64() != rng2.Float64() {
		t.Error("rotating a circle must consume one draw")
	}
}
