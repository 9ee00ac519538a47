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

// Package simplotutil provides the configuration layer and the commands
// of the simplot program.
package simplotutil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/lnashier/viper"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/spatialmodel/simplot"
)

// Cfg holds configuration information.
var Cfg *viper.Viper

var options []struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

func init() {
	// Options are the configuration options available to SimPlot.
	options = []struct {
		name, usage, shorthand string
		defaultVal             interface{}
		flagsets               []*pflag.FlagSet
	}{
		{
			name: "config",
			usage: `
              config specifies the configuration file location.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "Quiet",
			usage: `
              Quiet silences informational log output, leaving warnings
              and errors.`,
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "PolygonFile",
			usage: `
              PolygonFile is the path to the shapefile holding the source
              polygons that plots are generated for.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{plotsCmd.Flags(), tuneCmd.Flags()},
		},
		{
			name: "IDField",
			usage: `
              IDField is the name of the attribute column identifying
              features in the polygon, plot, and point files.`,
			defaultVal: "id",
			flagsets: []*pflag.FlagSet{plotsCmd.Flags(), pointsCmd.Flags(),
				valuesCmd.Flags(), centroidCmd.Flags(), tuneCmd.Flags()},
		},
		{
			name: "PlotFile",
			usage: `
              PlotFile is the path to the shapefile holding the simulation
              plots: the output of the plots command and the input of the
              points, values, and centroid commands.`,
			defaultVal: "",
			flagsets: []*pflag.FlagSet{plotsCmd.Flags(), pointsCmd.Flags(),
				valuesCmd.Flags(), centroidCmd.Flags()},
		},
		{
			name: "Shape",
			usage: `
              Shape is the simulation plot shape: square, rectangle,
              circle, ellipse, or best. With best, all four shapes are
              optimized and the highest-scoring one is kept.`,
			defaultVal: "square",
			flagsets:   []*pflag.FlagSet{plotsCmd.Flags(), tuneCmd.Flags()},
		},
		{
			name: "Position",
			usage: `
              Position places the initial plot on the bounding box center
              (bbox), the polygon centroid (centroid), or the mean of the
              polygon vertices (meanxy).`,
			defaultVal: "bbox",
			flagsets:   []*pflag.FlagSet{plotsCmd.Flags(), tuneCmd.Flags()},
		},
		{
			name: "Placement",
			usage: `
              Placement selects how plots are fitted: fixed, translated,
              rotated, resized, or optimized. Optimized combines
              translation, rotation, and resizing.`,
			defaultVal: "optimized",
			flagsets:   []*pflag.FlagSet{plotsCmd.Flags(), tuneCmd.Flags()},
		},
		{
			name: "MaxIterations",
			usage: `
              MaxIterations is the number of random search iterations per
              polygon.`,
			defaultVal: 750,
			flagsets:   []*pflag.FlagSet{plotsCmd.Flags()},
		},
		{
			name: "TranslateFrac",
			usage: `
              TranslateFrac is the fraction of the plot dimensions used as
              the range of random translations.`,
			defaultVal: 0.1,
			flagsets:   []*pflag.FlagSet{plotsCmd.Flags()},
		},
		{
			name: "MaxRotate",
			usage: `
              MaxRotate is the limit of a single random rotation step, in
              degrees.`,
			defaultVal: 25.0,
			flagsets:   []*pflag.FlagSet{plotsCmd.Flags()},
		},
		{
			name: "ResizeFrac",
			usage: `
              ResizeFrac is the limit of a single random aspect ratio
              change.`,
			defaultVal: 0.15,
			flagsets:   []*pflag.FlagSet{plotsCmd.Flags()},
		},
		{
			name: "SideRatioMax",
			usage: `
              SideRatioMax is the largest allowed ratio between the long
              and the short side of rectangle and ellipse plots.`,
			defaultVal: 4.0,
			flagsets:   []*pflag.FlagSet{plotsCmd.Flags(), tuneCmd.Flags()},
		},
		{
			name: "StepDecay",
			usage: `
              StepDecay is the factor the random search step scale is
              multiplied by after every rejected candidate.`,
			defaultVal: 0.95,
			flagsets:   []*pflag.FlagSet{plotsCmd.Flags(), tuneCmd.Flags()},
		},
		{
			name: "ConvergenceTol",
			usage: `
              ConvergenceTol is the smallest score improvement per
              convergence window that keeps the search running.`,
			defaultVal: 1e-9,
			flagsets:   []*pflag.FlagSet{plotsCmd.Flags(), tuneCmd.Flags()},
		},
		{
			name: "ConvergenceWindow",
			usage: `
              ConvergenceWindow is the number of iterations between
              convergence checks.`,
			defaultVal: 25,
			flagsets:   []*pflag.FlagSet{plotsCmd.Flags(), tuneCmd.Flags()},
		},
		{
			name: "Restarts",
			usage: `
              Restarts is the number of independent searches per polygon
              in optimized placement; the best result is kept.`,
			defaultVal: 4,
			flagsets:   []*pflag.FlagSet{plotsCmd.Flags(), tuneCmd.Flags()},
		},
		{
			name: "RandomSeed",
			usage: `
              RandomSeed seeds the random search. Repeated runs with the
              same seed and inputs give identical results.`,
			defaultVal: 1,
			flagsets:   []*pflag.FlagSet{plotsCmd.Flags(), tuneCmd.Flags()},
		},
		{
			name: "OutputVariables",
			usage: `
              OutputVariables maps additional plot attribute columns to
              expressions over the base attributes, for example
              {"ratio": "a / b"}. Expressions may use the functions exp,
              log, and sqrt.`,
			defaultVal: map[string]string{},
			flagsets:   []*pflag.FlagSet{plotsCmd.Flags()},
		},
		{
			name: "PointsFile",
			usage: `
              PointsFile is the path to the shapefile holding the plot
              sampling points: the output of the points command and the
              input of the values command.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{pointsCmd.Flags(), valuesCmd.Flags()},
		},
		{
			name: "GridPoints",
			usage: `
              GridPoints is the number of sampling points along the
              shorter plot side.`,
			defaultVal: 5,
			flagsets:   []*pflag.FlagSet{pointsCmd.Flags()},
		},
		{
			name: "Clip",
			usage: `
              Clip drops sampling points that fall outside the plot
              boundary.`,
			defaultVal: true,
			flagsets:   []*pflag.FlagSet{pointsCmd.Flags()},
		},
		{
			name: "RasterFile",
			usage: `
              RasterFile is the path to the NetCDF file holding the
              environmental raster to sample.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{valuesCmd.Flags(), centroidCmd.Flags()},
		},
		{
			name: "RasterVar",
			usage: `
              RasterVar is the name of the raster variable to sample. If
              empty, the file must contain exactly one 2-D variable.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{valuesCmd.Flags(), centroidCmd.Flags()},
		},
		{
			name: "ValueField",
			usage: `
              ValueField is the attribute column name for sampled values.
              The values command shortens it to 5 characters and appends
              _min, _max, and _mean for the plot statistics; the centroid
              command shortens it to 10 characters.`,
			defaultVal: "value",
			flagsets:   []*pflag.FlagSet{valuesCmd.Flags(), centroidCmd.Flags()},
		},
		{
			name: "RangeFile",
			usage: `
              RangeFile is the path to a TOML file bounding the
              hyperparameter search ranges. Missing entries keep their
              default ranges.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{tuneCmd.Flags()},
		},
		{
			name: "Trials",
			usage: `
              Trials is the number of random hyperparameter draws to
              test.`,
			defaultVal: 100,
			flagsets:   []*pflag.FlagSet{tuneCmd.Flags()},
		},
		{
			name: "TuneLog",
			usage: `
              TuneLog is the path of the semicolon-separated file the
              tuning results are appended to.`,
			defaultVal: "tuning.csv",
			flagsets:   []*pflag.FlagSet{tuneCmd.Flags()},
		},
		{
			name: "TunePlotBase",
			usage: `
              TunePlotBase, if set, saves the plots of every tuning trial
              to shapefiles named by appending the trial number and .shp
              to it.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{tuneCmd.Flags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("SIMPLOT")

	for _, option := range options {
		for i, set := range option.flagsets {
			if i != 0 { // We don't want to create the same flag twice.
				set.AddFlag(option.flagsets[0].Lookup(option.name))
				continue
			}
			switch option.defaultVal.(type) {
			case string:
				if option.shorthand == "" {
					set.String(option.name, option.defaultVal.(string), option.usage)
				} else {
					set.StringP(option.name, option.shorthand, option.defaultVal.(string), option.usage)
				}
			case bool:
				if option.shorthand == "" {
					set.Bool(option.name, option.defaultVal.(bool), option.usage)
				} else {
					set.BoolP(option.name, option.shorthand, option.defaultVal.(bool), option.usage)
				}
			case int:
				if option.shorthand == "" {
					set.Int(option.name, option.defaultVal.(int), option.usage)
				} else {
					set.IntP(option.name, option.shorthand, option.defaultVal.(int), option.usage)
				}
			case float64:
				if option.shorthand == "" {
					set.Float64(option.name, option.defaultVal.(float64), option.usage)
				} else {
					set.Float64P(option.name, option.shorthand, option.defaultVal.(float64), option.usage)
				}
			case map[string]string:
				b := bytes.NewBuffer(nil)
				e := json.NewEncoder(b)
				e.Encode(option.defaultVal)
				s := string(b.Bytes())
				if option.shorthand == "" {
					set.String(option.name, s, option.usage)
				} else {
					set.StringP(option.name, option.shorthand, s, option.usage)
				}
			default:
				panic("invalid argument type")
			}
			Cfg.BindPFlag(option.name, set.Lookup(option.name))
		}
	}
}

func init() {
	// Link the commands together.
	Root.AddCommand(versionCmd)
	Root.AddCommand(plotsCmd)
	Root.AddCommand(pointsCmd)
	Root.AddCommand(valuesCmd)
	Root.AddCommand(centroidCmd)
	Root.AddCommand(tuneCmd)
}

// setConfig finds and reads in the configuration file, if there is one,
// and applies the logging options.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(cfgpath)
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("simplot: problem reading configuration file: %v", err)
		}
	}
	if Cfg.GetBool("Quiet") {
		logrus.SetLevel(logrus.WarnLevel)
	}
	return nil
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "simplot",
	Short: "A simulation plot generator.",
	Long: `SimPlot generates geometrically optimized simulation plots from polygon
datasets and samples environmental variables inside them.
Use the subcommands specified below to access the functionality.

Configuration can be changed by using a configuration file (and providing
the path to the file using the --config flag), by using command-line
arguments, or by setting environment variables in the format 'SIMPLOT_var'
where 'var' is the name of the variable to be set.
Refer to https://github.com/spf13/viper for additional configuration
information.`,
	DisableAutoGenTag: true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of SimPlot.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("SimPlot v%s\n", simplot.Version)
	},
	DisableAutoGenTag: true,
}

var plotsCmd = &cobra.Command{
	Use:   "plots",
	Short: "Generate simulation plots.",
	Long: `plots reads the source polygons from PolygonFile and generates one
equal-area simulation plot per polygon, searching over plot position,
rotation, and aspect ratio to maximize the overlap with the polygon.
The plots are saved to PlotFile.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := generatorConfig(Cfg)
		if err != nil {
			return err
		}
		polygonFile, err := checkInputFile(Cfg.GetString("PolygonFile"), "PolygonFile")
		if err != nil {
			return err
		}
		plotFile, err := checkOutputFile(Cfg.GetString("PlotFile"), "PlotFile")
		if err != nil {
			return err
		}
		return Plots(context.Background(), c, polygonFile,
			Cfg.GetString("IDField"), plotFile,
			GetStringMapString("OutputVariables", Cfg))
	},
	DisableAutoGenTag: true,
}

var pointsCmd = &cobra.Command{
	Use:   "points",
	Short: "Generate plot sampling point grids.",
	Long: `points reads the simulation plots from PlotFile and lays out a regular
grid of sampling points inside each plot, with GridPoints points along
the shorter plot side. The points are saved to PointsFile.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		plotFile, err := checkInputFile(Cfg.GetString("PlotFile"), "PlotFile")
		if err != nil {
			return err
		}
		pointsFile, err := checkOutputFile(Cfg.GetString("PointsFile"), "PointsFile")
		if err != nil {
			return err
		}
		return Points(plotFile, Cfg.GetString("IDField"), pointsFile,
			Cfg.GetInt("GridPoints"), Cfg.GetBool("Clip"))
	},
	DisableAutoGenTag: true,
}

var valuesCmd = &cobra.Command{
	Use:   "values",
	Short: "Sample a raster at the plot points.",
	Long: `values samples the raster in RasterFile at every point in PointsFile,
writes the sampled values back to the points file, and attaches the
minimum, maximum, and mean of each plot's point values to the plots in
PlotFile.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		plotFile, err := checkInputFile(Cfg.GetString("PlotFile"), "PlotFile")
		if err != nil {
			return err
		}
		pointsFile, err := checkInputFile(Cfg.GetString("PointsFile"), "PointsFile")
		if err != nil {
			return err
		}
		rasterFile, err := checkInputFile(Cfg.GetString("RasterFile"), "RasterFile")
		if err != nil {
			return err
		}
		return Values(plotFile, Cfg.GetString("IDField"), pointsFile,
			rasterFile, Cfg.GetString("RasterVar"), Cfg.GetString("ValueField"))
	},
	DisableAutoGenTag: true,
}

var centroidCmd = &cobra.Command{
	Use:   "centroid",
	Short: "Sample a raster at the plot centroids.",
	Long: `centroid samples the raster in RasterFile at the centroid of every plot
in PlotFile and attaches the sampled value to the plots.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		plotFile, err := checkInputFile(Cfg.GetString("PlotFile"), "PlotFile")
		if err != nil {
			return err
		}
		rasterFile, err := checkInputFile(Cfg.GetString("RasterFile"), "RasterFile")
		if err != nil {
			return err
		}
		return Centroid(plotFile, Cfg.GetString("IDField"), rasterFile,
			Cfg.GetString("RasterVar"), Cfg.GetString("ValueField"))
	},
	DisableAutoGenTag: true,
}

var tuneCmd = &cobra.Command{
	Use:   "tune",
	Short: "Search generator hyperparameters.",
	Long: `tune repeatedly generates plots for the polygons in PolygonFile with
randomly drawn iteration counts, translation fractions, rotation limits,
and resize fractions, and appends the overlap score statistics of every
trial to TuneLog.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := generatorConfig(Cfg)
		if err != nil {
			return err
		}
		polygonFile, err := checkInputFile(Cfg.GetString("PolygonFile"), "PolygonFile")
		if err != nil {
			return err
		}
		return Tune(context.Background(), c, polygonFile,
			Cfg.GetString("IDField"), Cfg.GetString("RangeFile"),
			Cfg.GetInt("Trials"), Cfg.GetString("TuneLog"),
			Cfg.GetString("TunePlotBase"))
	},
	DisableAutoGenTag: true,
}
