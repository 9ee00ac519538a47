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
	"math"
	"math/rand"

	"github.com/ctessum/geom"
)

// areaEpsilon is the relative intersection area below which overlap is
// treated as zero, so that floating-point noise cannot drive the search.
const areaEpsilon = 1e-9

// overlapScore returns the fraction of the source polygon area covered by
// the candidate ring, in [0, 1]. The score is 1 when the candidate
// contains the source polygon and 0 when they are disjoint.
func overlapScore(candidate geom.Polygon, s *source) float64 {
	if !candidate.Bounds().Overlaps(s.bounds) {
		return 0
	}
	// Plot rings are convex, so a candidate that holds every source
	// vertex contains the whole source polygon.
	if verticesWithin(s.poly, candidate) {
		return 1
	}
	a := candidate.Intersection(s.poly).Area()
	if a < areaEpsilon*s.area {
		return 0
	}
	if score := a / s.area; score < 1 {
		return score
	}
	return 1
}

// search hill-climbs from the starting plot, accepting only candidates
// that strictly improve the overlap score. The perturbation neighborhood
// shrinks by c.StepDecay after every non-improving iteration. The search
// stops after c.MaxIterations iterations, when a perfect score is
// reached, or when the score has improved by less than c.ConvergenceTol
// over the last c.ConvergenceWindow iterations. It returns the best plot,
// its score, and the number of iterations run.
func search(ctx context.Context, s *source, start *Plot, c Config, rng *rand.Rand) (*Plot, float64, int, error) {
	best := start
	bestScore := overlapScore(start.ring, s)
	checkScore := bestScore
	stepScale := 1.0
	n := 0
	for n < c.MaxIterations && bestScore < 1 {
		if err := ctx.Err(); err != nil {
			return nil, 0, n, err
		}
		n++
		cand := best.clone()
		switch c.Placement {
		case PlacementTranslated:
			cand.randomTranslate(rng, c.TranslateFrac*stepScale)
		case PlacementRotated:
			cand.randomRotate(rng, c.MaxRotate*stepScale)
		case PlacementResized:
			cand.randomResize(rng, c.ResizeFrac*stepScale, c.SideRatioMax)
		default:
			cand.randomResize(rng, c.ResizeFrac*stepScale, c.SideRatioMax)
			cand.randomTranslate(rng, c.TranslateFrac*stepScale)
			cand.randomRotate(rng, c.MaxRotate*stepScale)
		}
		if score := overlapScore(cand.ring, s); score > bestScore {
			best = cand
			bestScore = score
		} else {
			stepScale *= c.StepDecay
		}
		if n%c.ConvergenceWindow == 0 {
			if bestScore-checkScore < c.ConvergenceTol {
				break
			}
			checkScore = bestScore
		}
	}
	return best, bestScore, n, nil
}

// optimizeShape runs the configured search for a single shape. In
// optimized placement it runs c.Restarts independent searches, each
// after the first beginning from a random rotation, and keeps the best
// result; an earlier restart wins ties.
func optimizeShape(ctx context.Context, s *source, shape Shape, c Config, rng *rand.Rand) (*Plot, float64, int, error) {
	pl, err := newPlot(s, shape, c.Position, c.SideRatioMax)
	if err != nil {
		return nil, 0, 0, err
	}
	if c.Placement == PlacementFixed {
		return pl, overlapScore(pl.ring, s), 0, nil
	}
	restarts := 1
	if c.Placement == PlacementOptimized {
		restarts = c.Restarts
	}
	var best *Plot
	var bestScore float64
	var evals int
	for r := 0; r < restarts; r++ {
		start := pl
		if r > 0 {
			start = pl.clone()
			if shape != ShapeCircle {
				start.Rotation = rng.Float64() * math.Pi
				start.rebuild()
			}
		}
		res, score, n, err := search(ctx, s, start, c, rng)
		evals += n
		if err != nil {
			return nil, 0, evals, err
		}
		if best == nil || score > bestScore {
			best = res
			bestScore = score
		}
	}
	return best, bestScore, evals, nil
}

// bestShapes is the order in which shapes are tried in best-shape mode.
// Earlier shapes have fewer free parameters and win ties.
var bestShapes = [...]Shape{ShapeSquare, ShapeRectangle, ShapeCircle, ShapeEllipse}

// optimizeBest runs an optimized-placement search for every shape and
// keeps the shape with the highest overlap score.
func optimizeBest(ctx context.Context, s *source, c Config, rng *rand.Rand) (*Plot, float64, int, error) {
	c.Placement = PlacementOptimized
	var best *Plot
	var bestScore float64
	var evals int
	for _, shape := range bestShapes {
		pl, score, n, err := optimizeShape(ctx, s, shape, c, rng)
		evals += n
		if err != nil {
			return nil, 0, evals, err
		}
		if best == nil || score > bestScore {
			best = pl
			bestScore = score
		}
	}
	return best, bestScore, evals, nil
}

// Optimize searches for the simulation plot that maximizes overlap with
// the source polygon sp under the settings in c. All randomness comes
// from c.RandomSeed, so repeated calls with equal inputs return identical
// results. Degenerate source polygons give ErrInvalidGeometry. A search
// that never improves on the initial placement returns that placement
// with its score; that is not an error.
func Optimize(ctx context.Context, sp *SourcePolygon, c Config) (*Result, error) {
	if err := c.valid(); err != nil {
		return nil, err
	}
	s, err := prepareSource(sp.Polygon)
	if err != nil {
		return nil, err
	}
	rng := rand.New(rand.NewSource(c.RandomSeed))
	var pl *Plot
	var score float64
	var evals int
	if c.Shape == ShapeBest {
		pl, score, evals, err = optimizeBest(ctx, s, c, rng)
	} else {
		pl, score, evals, err = optimizeShape(ctx, s, c.Shape, c, rng)
	}
	if err != nil {
		return nil, err
	}
	return &Result{
		ID:         sp.ID,
		Plot:       pl,
		Score:      score,
		SourceArea: s.area,
		ShapeIndex: s.perimeter / math.Sqrt(s.area),
		Iterations: evals,
	}, nil
}
