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
	"fmt"
	"os"

	"github.com/spatialmodel/simplot"
	"github.com/spatialmodel/simplot/raster"
)

// Values samples the raster in rasterFile at every point in pointsFile,
// rewrites the points file with the sampled values, and attaches the
// minimum, maximum, and mean of each plot's point values to the plots in
// plotFile.
func Values(plotFile, idField, pointsFile, rasterFile, rasterVar, valueField string) error {
	feats, err := simplot.ReadPlots(plotFile, idField)
	if err != nil {
		return err
	}
	pts, err := simplot.ReadPoints(pointsFile, idField)
	if err != nil {
		return err
	}
	grid, err := openRaster(rasterFile, rasterVar)
	if err != nil {
		return err
	}
	vals, valid := raster.PointValues(grid, pts)
	if err := simplot.WritePointValues(pointsFile, idField, valueField, pts, vals, valid); err != nil {
		return err
	}
	sums := raster.Summarize(pts, vals, valid)
	return simplot.WritePlotValues(plotFile, idField, valueField, feats, sums)
}

// Centroid samples the raster in rasterFile at the centroid of every plot
// in plotFile and rewrites the plots file with the sampled values.
func Centroid(plotFile, idField, rasterFile, rasterVar, valueField string) error {
	feats, err := simplot.ReadPlots(plotFile, idField)
	if err != nil {
		return err
	}
	grid, err := openRaster(rasterFile, rasterVar)
	if err != nil {
		return err
	}
	vals := raster.CentroidValues(grid, feats)
	return simplot.WriteCentroidValues(plotFile, idField, valueField, feats, vals)
}

// openRaster reads the raster grid stored in a NetCDF file.
func openRaster(filename, variable string) (*raster.Grid, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("simplot: opening raster file: %v", err)
	}
	defer f.Close()
	return raster.ReadNetCDF(f, variable)
}
