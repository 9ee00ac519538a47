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
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/ctessum/geom"
	"github.com/sirupsen/logrus"
)

// A SourcePolygon is one input polygon that a simulation plot is
// generated for. It is read-only during plot generation.
type SourcePolygon struct {
	// ID identifies the polygon in the input dataset. IDs must be unique
	// within one batch.
	ID string

	// Polygon is the polygon geometry.
	Polygon geom.Polygon
}

// A Result holds the winning simulation plot for one source polygon.
type Result struct {
	// ID is the source polygon identifier.
	ID string

	// Plot is the best candidate plot found.
	Plot *Plot

	// Score is the overlap score of Plot against the source polygon,
	// in [0, 1].
	Score float64

	// SourceArea is the source polygon area.
	SourceArea float64

	// ShapeIndex is the source polygon perimeter divided by the square
	// root of its area, a measure of boundary complexity.
	ShapeIndex float64

	// Iterations is the number of optimizer iterations that were run.
	Iterations int
}

// A PlotSet holds the output of one Generate run.
type PlotSet struct {
	// IDs lists the polygon IDs that have an entry in Results or
	// Failures, in input order.
	IDs []string

	// Results maps polygon IDs to their winning plots.
	Results map[string]*Result

	// Failures maps the IDs of skipped polygons to the reason they were
	// skipped.
	Failures map[string]error
}

// Generator creates simulation plots for collections of source polygons.
type Generator struct {
	// Config holds the plot generation settings.
	Config Config

	// Log receives progress information.
	Log logrus.FieldLogger
}

// NewGenerator creates a Generator with the given settings that logs to
// the default logger.
func NewGenerator(c Config) *Generator {
	return &Generator{
		Config: c,
		Log:    logrus.StandardLogger(),
	}
}

// Generate runs the optimizer for every polygon in polys and assembles
// the resulting plots. The polygons are processed in parallel; each
// polygon is optimized with a random stream seeded from Config.RandomSeed
// and the polygon index, so the output does not depend on scheduling.
// Degenerate polygons and infeasible placements are recorded in the
// returned PlotSet's Failures and do not abort the batch. If ctx is
// canceled mid-batch, Generate returns the plots computed so far together
// with the context error.
func (g *Generator) Generate(ctx context.Context, polys []*SourcePolygon) (*PlotSet, error) {
	if err := g.Config.valid(); err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(polys))
	for _, p := range polys {
		if _, ok := seen[p.ID]; ok {
			return nil, fmt.Errorf("simplot: duplicate polygon ID '%s'", p.ID)
		}
		seen[p.ID] = struct{}{}
	}

	g.Log.WithFields(logrus.Fields{
		"polygons":  len(polys),
		"shape":     g.Config.Shape.String(),
		"position":  g.Config.Position.String(),
		"placement": g.Config.Placement.String(),
	}).Info("simplot generating plots")

	results := make([]*Result, len(polys))
	errs := make([]error, len(polys))
	nprocs := runtime.GOMAXPROCS(0)
	var wg sync.WaitGroup
	wg.Add(nprocs)
	for pp := 0; pp < nprocs; pp++ {
		go func(pp int) {
			defer wg.Done()
			for i := pp; i < len(polys); i += nprocs {
				if ctx.Err() != nil {
					return
				}
				c := g.Config
				c.RandomSeed += int64(i)
				results[i], errs[i] = Optimize(ctx, polys[i], c)
			}
		}(pp)
	}
	wg.Wait()

	ps := &PlotSet{
		Results:  make(map[string]*Result),
		Failures: make(map[string]error),
	}
	for i, p := range polys {
		switch {
		case results[i] != nil:
			ps.IDs = append(ps.IDs, p.ID)
			ps.Results[p.ID] = results[i]
		case errs[i] == ErrInvalidGeometry || errs[i] == ErrNoFeasiblePlacement:
			ps.IDs = append(ps.IDs, p.ID)
			ps.Failures[p.ID] = errs[i]
			g.Log.WithFields(logrus.Fields{
				"id": p.ID,
			}).WithError(errs[i]).Warn("simplot skipping polygon")
		}
	}
	if err := ctx.Err(); err != nil {
		return ps, err
	}
	g.Log.WithFields(logrus.Fields{
		"plots":    len(ps.Results),
		"failures": len(ps.Failures),
	}).Info("simplot finished generating plots")
	return ps, nil
}
