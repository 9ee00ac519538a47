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
	"context"
	"fmt"

	"github.com/spatialmodel/simplot"
)

// Tune randomly searches the generator hyperparameters for the polygons
// in polygonFile and appends the score statistics of every trial to
// logFile. If rangeFile is not empty it bounds the search ranges; if
// plotBase is not empty the plots of trial i are saved to the shapefile
// plotBase + i + ".shp".
func Tune(ctx context.Context, c simplot.Config, polygonFile, idField, rangeFile string, trials int, logFile, plotBase string) error {
	polys, err := simplot.LoadPolygons(polygonFile, idField)
	if err != nil {
		return err
	}
	t := simplot.NewTuner(c)
	if trials > 0 {
		t.Trials = trials
	}
	if rangeFile != "" {
		if t.Ranges, err = simplot.LoadRanges(rangeFile); err != nil {
			return err
		}
	}
	if plotBase != "" {
		t.Observe = func(trial int, ps *simplot.PlotSet) error {
			name := fmt.Sprintf("%s%d.shp", plotBase, trial)
			if err := ps.WriteShapefile(name, idField, nil); err != nil {
				return err
			}
			return simplot.CopyProjection(polygonFile, name)
		}
	}
	results, err := t.Run(ctx, polys)
	if err != nil {
		return err
	}
	return t.AppendLog(logFile, polygonFile, results)
}
