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

	"github.com/spatialmodel/simplot"
)

// Plots generates simulation plots for the polygons in polygonFile and
// saves them to plotFile, together with any extra attribute columns
// defined by expressions over the base attributes.
func Plots(ctx context.Context, c simplot.Config, polygonFile, idField, plotFile string, extra map[string]string) error {
	polys, err := simplot.LoadPolygons(polygonFile, idField)
	if err != nil {
		return err
	}
	g := simplot.NewGenerator(c)
	ps, err := g.Generate(ctx, polys)
	if err != nil {
		return err
	}
	if err := ps.WriteShapefile(plotFile, idField, extra); err != nil {
		return err
	}
	return simplot.CopyProjection(polygonFile, plotFile)
}
