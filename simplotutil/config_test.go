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

package simplotutil

import (
	"math"
	"os"
	"reflect"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/spatialmodel/simplot"
)

func TestGeneratorConfig(t *testing.T) {
	c, err := generatorConfig(Cfg)
	if err != nil {
		t.Fatal(err)
	}
	if want := simplot.DefaultConfig(); !reflect.DeepEqual(c, want) {
		t.Errorf("have %+v, want %+v", c, want)
	}

	Cfg.Set("Shape", "ellipse")
	Cfg.Set("MaxRotate", 90.0)
	c, err = generatorConfig(Cfg)
	if err != nil {
		t.Fatal(err)
	}
	if c.Shape != simplot.ShapeEllipse {
		t.Errorf("shape: have %v, want %v", c.Shape, simplot.ShapeEllipse)
	}
	if c.MaxRotate != math.Pi/2 {
		t.Errorf("rotation limit: have %g, want %g", c.MaxRotate, math.Pi/2)
	}
	Cfg.Set("Shape", "square")
	Cfg.Set("MaxRotate", 25.0)

	Cfg.Set("Placement", "sideways")
	if _, err := generatorConfig(Cfg); err == nil ||
		!strings.Contains(err.Error(), "invalid plot placement 'sideways'") {
		t.Errorf("invalid placement: have %v", err)
	}
	Cfg.Set("Placement", "optimized")
}

func TestCheckInputFile(t *testing.T) {
	want := `you need to specify the PolygonFile configuration variable (for example: PolygonFile="input.shp")`
	if _, err := checkInputFile("", "PolygonFile"); err == nil || err.Error() != want {
		t.Errorf("unspecified file: have %v", err)
	}

	if _, err := checkInputFile("testNoSuchFile.shp", "PolygonFile"); err == nil ||
		!strings.Contains(err.Error(), "doesn't exist") {
		t.Errorf("missing file: have %v", err)
	}

	f, err := os.Create("testInput.tmp")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	os.Setenv("SIMPLOT_TEST_INPUT", "testInput.tmp")
	have, err := checkInputFile("$SIMPLOT_TEST_INPUT", "PolygonFile")
	if err != nil {
		t.Error(err)
	}
	if have != "testInput.tmp" {
		t.Errorf("have %s, want testInput.tmp", have)
	}
	os.Remove("testInput.tmp")
}

func TestCheckOutputFile(t *testing.T) {
	want := `you need to specify the PlotFile configuration variable (for example: PlotFile="output.shp")`
	if _, err := checkOutputFile("", "PlotFile"); err == nil || err.Error() != want {
		t.Errorf("unspecified file: have %v", err)
	}

	if _, err := checkOutputFile("testNoSuchDir/plots.shp", "PlotFile"); err == nil ||
		!strings.Contains(err.Error(), "directory doesn't exist") {
		t.Errorf("missing directory: have %v", err)
	}

	have, err := checkOutputFile("testPlots.shp", "PlotFile")
	if err != nil {
		t.Error(err)
	}
	if have != "testPlots.shp" {
		t.Errorf("have %s, want testPlots.shp", have)
	}
}

func TestGetStringMapString(t *testing.T) {
	if have := GetStringMapString("OutputVariables", Cfg); len(have) != 0 {
		t.Errorf("default: have %v, want an empty map", have)
	}

	want := map[string]string{"ratio": "a / b"}

	Cfg.Set("OutputVariables", map[string]string{"ratio": "a / b"})
	if have := GetStringMapString("OutputVariables", Cfg); !reflect.DeepEqual(have, want) {
		t.Errorf("string map: have %v, want %v", have, want)
	}

	Cfg.Set("OutputVariables", map[string]interface{}{"ratio": "a / b"})
	if have := GetStringMapString("OutputVariables", Cfg); !reflect.DeepEqual(have, want) {
		t.Errorf("interface map: have %v, want %v", have, want)
	}

	Cfg.Set("OutputVariables", `{"ratio": "a / b"}`)
	if have := GetStringMapString("OutputVariables", Cfg); !reflect.DeepEqual(have, want) {
		t.Errorf("json string: have %v, want %v", have, want)
	}

	Cfg.Set("OutputVariables", "{}")
}

func TestQuiet(t *testing.T) {
	Cfg.Set("Quiet", true)
	if err := setConfig(); err != nil {
		t.Fatal(err)
	}
	if logrus.GetLevel() != logrus.WarnLevel {
		t.Errorf("log level: want %v but have %v", logrus.WarnLevel, logrus.GetLevel())
	}
	Cfg.Set("Quiet", false)
	logrus.SetLevel(logrus.InfoLevel)
}
