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
	"github.com/spatialmodel/simplot"
)

// Points lays out sampling point grids for the plots in plotFile, with n
// points along the shorter side of each plot, and saves the points to
// pointsFile.
func Points(plotFile, idField, pointsFile string, n int, clip bool) error {
	feats, err := simplot.ReadPlots(plotFile, idField)
	if err != nil {
		return err
	}
	var pts []simplot.GridPoint
	for _, f := range feats {
		p, err := f.PointGrid(n, clip)
		if err != nil {
			return err
		}
		pts = append(pts, p...)
	}
	if err := simplot.WritePoints(pointsFile, idField, pts); err != nil {
		return err
	}
	return simplot.CopyProjection(plotFile, pointsFile)
}
