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
	"strings"
	"testing"
)

func TestParseShape(t *testing.T) {
	shapes := []Shape{ShapeSquare, ShapeRectangle, ShapeCircle, ShapeEllipse, ShapeBest}
	for _, want := range shapes {
		have, err := ParseShape(want.String())
		if err != nil {
			t.Fatal(err)
		}
		if have != want {
			t.Errorf("want %s but have %s", want, have)
		}
	}
	if s, err := ParseShape(" Ellipse "); err != nil || s != ShapeEllipse {
		t.Errorf("have %s, %v", s, err)
	}
	if _, err := ParseShape("pentagon"); err == nil ||
		!strings.Contains(err.Error(), "invalid plot shape 'pentagon'") {
		t.Errorf("have %v", err)
	}
}

func TestParsePosition(t *testing.T) {
	positions := []Position{PositionBBox, PositionCentroid, PositionMeanXY}
	for _, want := range positions {
		have, err := ParsePosition(want.String())
		if err != nil {
			t.Fatal(err)
		}
		if have != want {
			t.Errorf("want %s but have %s", want, have)
		}
	}
	if p, err := ParsePosition("bounding box"); err != nil || p != PositionBBox {
		t.Errorf("have %s, %v", p, err)
	}
	if p, err := ParsePosition("Mean Coordinates"); err != nil || p != PositionMeanXY {
		t.Errorf("have %s, %v", p, err)
	}
	if _, err := ParsePosition("corner"); err == nil ||
		!strings.Contains(err.Error(), "invalid plot position 'corner'") {
		t.Errorf("have %v", err)
	}
}

func TestParsePlacement(t *testing.T) {
	placements := []Placement{
		PlacementFixed, PlacementTranslated, PlacementRotated,
		PlacementResized, PlacementOptimized,
	}
	for _, want := range placements {
		have, err := ParsePlacement(want.String())
		if err != nil {
			t.Fatal(err)
		}
		if have != want {
			t.Errorf("want %s but have %s", want, have)
		}
	}
	if p, err := ParsePlacement("FIXED"); err != nil || p != PlacementFixed {
		t.Errorf("have %s, %v", p, err)
	}
	if _, err := ParsePlacement("loose"); err == nil ||
		!strings.Contains(err.Error(), "invalid plot placement 'loose'") {
		t.Errorf("have %v", err)
	}
}

func TestConfigValid(t *testing.T) {
	if err := DefaultConfig().valid(); err != nil {
		t.Error(err)
	}

	c := DefaultConfig()
	c.MaxIterations = 0 // a zero-iteration search keeps the initial placement
	if err := c.valid(); err != nil {
		t.Error(err)
	}

	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"bad shape", func(c *Config) { c.Shape = Shape(17) }},
		{"bad position", func(c *Config) { c.Position = Position(-1) }},
		{"bad placement", func(c *Config) { c.Placement = Placement(9) }},
		{"negative iterations", func(c *Config) { c.MaxIterations = -1 }},
		{"negative translation", func(c *Config) { c.TranslateFrac = -0.1 }},
		{"negative rotation", func(c *Config) { c.MaxRotate = -0.1 }},
		{"negative resize", func(c *Config) { c.ResizeFrac = -0.1 }},
		{"side ratio below 1", func(c *Config) { c.SideRatioMax = 0.5 }},
		{"zero step decay", func(c *Config) { c.StepDecay = 0 }},
		{"step decay above 1", func(c *Config) { c.StepDecay = 1.1 }},
		{"negative tolerance", func(c *Config) { c.ConvergenceTol = -1e-9 }},
		{"zero window", func(c *Config) { c.ConvergenceWindow = 0 }},
		{"zero restarts", func(c *Config) { c.Restarts = 0 }},
	}
	for _, test := range tests {
		c := DefaultConfig()
		test.modify(&c)
		if err := c.valid(); err == nil {
			t.Errorf("%s: want an error", test.name)
		}
	}
}
