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
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/lnashier/viper"
	"github.com/spf13/cast"

	"github.com/spatialmodel/simplot"
)

// generatorConfig assembles the plot generator configuration from cfg,
// converting the rotation limit from degrees to radians.
func generatorConfig(cfg *viper.Viper) (simplot.Config, error) {
	c := simplot.DefaultConfig()
	var err error
	if c.Shape, err = simplot.ParseShape(cfg.GetString("Shape")); err != nil {
		return c, err
	}
	if c.Position, err = simplot.ParsePosition(cfg.GetString("Position")); err != nil {
		return c, err
	}
	if c.Placement, err = simplot.ParsePlacement(cfg.GetString("Placement")); err != nil {
		return c, err
	}
	c.MaxIterations = cfg.GetInt("MaxIterations")
	c.TranslateFrac = cfg.GetFloat64("TranslateFrac")
	c.MaxRotate = cfg.GetFloat64("MaxRotate") * math.Pi / 180
	c.ResizeFrac = cfg.GetFloat64("ResizeFrac")
	c.SideRatioMax = cfg.GetFloat64("SideRatioMax")
	c.StepDecay = cfg.GetFloat64("StepDecay")
	c.ConvergenceTol = cfg.GetFloat64("ConvergenceTol")
	c.ConvergenceWindow = cfg.GetInt("ConvergenceWindow")
	c.Restarts = cfg.GetInt("Restarts")
	c.RandomSeed = cfg.GetInt64("RandomSeed")
	return c, nil
}

// checkInputFile makes sure that the input file specified by the
// configuration variable name exists, expanding any environment
// variables.
func checkInputFile(f, name string) (string, error) {
	if f == "" {
		return "", fmt.Errorf(`you need to specify the %s configuration variable (for example: %s="input.shp")`, name, name)
	}
	f = os.ExpandEnv(f)
	if _, err := os.Stat(f); err != nil {
		return f, fmt.Errorf("simplot: the %s file doesn't exist: %v", name, err)
	}
	return f, nil
}

// checkOutputFile makes sure that the output file is specified and its
// directory exists, and expands any environment variables.
func checkOutputFile(f, name string) (string, error) {
	if f == "" {
		return "", fmt.Errorf(`you need to specify the %s configuration variable (for example: %s="output.shp")`, name, name)
	}
	f = os.ExpandEnv(f)
	outdir := filepath.Dir(f)
	if _, err := os.Stat(outdir); err != nil {
		return f, fmt.Errorf("simplot: the %s directory doesn't exist: %v", name, err)
	}
	return f, nil
}

// GetStringMapString returns a map[string]string from a viper
// configuration, accounting for the fact that it might be a json object
// if it was set from a command line argument.
func GetStringMapString(varName string, cfg *viper.Viper) map[string]string {
	i := cfg.Get(varName)
	switch i.(type) {
	case map[string]string:
		return i.(map[string]string)
	case map[string]interface{}:
		return cast.ToStringMapString(i)
	case string:
		b := bytes.NewBuffer(([]byte)(i.(string)))
		d := json.NewDecoder(b)
		o := make(map[string]string)
		if err := d.Decode(&o); err != nil {
			panic(err)
		}
		return o
	default:
		panic(fmt.Errorf("invalid type for GetStringMapString variable %s: %#v", varName, i))
	}
}
