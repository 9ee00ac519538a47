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

package raster

import (
	"github.com/GaryBoone/GoStats/stats"

	"github.com/spatialmodel/simplot"
)

// PointValues samples s at every grid point, returning the sampled values
// and a validity flag for each point.
func PointValues(s Sampler, pts []simplot.GridPoint) (vals []float64, valid []bool) {
	vals = make([]float64, len(pts))
	valid = make([]bool, len(pts))
	for i := range pts {
		vals[i], valid[i] = s.Sample(pts[i].Point)
	}
	return vals, valid
}

// Summarize aggregates sampled point values into per-plot statistics,
// skipping invalid samples. Plots without any valid samples are left out
// of the returned map.
func Summarize(pts []simplot.GridPoint, vals []float64, valid []bool) map[string]simplot.ValueSummary {
	acc := make(map[string]*stats.Stats)
	for i := range pts {
		if !valid[i] {
			continue
		}
		a, ok := acc[pts[i].ID]
		if !ok {
			a = &stats.Stats{}
			acc[pts[i].ID] = a
		}
		a.Update(vals[i])
	}
	out := make(map[string]simplot.ValueSummary, len(acc))
	for id, a := range acc {
		out[id] = simplot.ValueSummary{
			N:    a.Count(),
			Min:  a.Min(),
			Max:  a.Max(),
			Mean: a.Mean(),
		}
	}
	return out
}

// CentroidValues samples s at the centroid of each plot, keyed by plot
// ID. Plots without geometry or without a valid sample are left out of
// the returned map.
func CentroidValues(s Sampler, feats []*simplot.PlotFeature) map[string]float64 {
	out := make(map[string]float64, len(feats))
	for _, f := range feats {
		if len(f.Polygon) == 0 {
			continue
		}
		if v, ok := s.Sample(f.Polygon.Centroid()); ok {
			out[f.ID] = v
		}
	}
	return out
}
