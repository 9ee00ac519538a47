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
	"encoding/csv"
	"fmt"
	"math"
	"math/rand"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/GaryBoone/GoStats/stats"
	"github.com/sirupsen/logrus"
)

// Ranges bounds the hyperparameter random search performed by a Tuner.
// Rotation limits are in degrees.
type Ranges struct {
	MinIterations int
	MaxIterations int

	MinTranslateFrac float64
	MaxTranslateFrac float64

	MinRotate float64
	MaxRotate float64

	MinResizeFrac float64
	MaxResizeFrac float64
}

// DefaultRanges returns the default search ranges.
func DefaultRanges() Ranges {
	return Ranges{
		MinIterations:    25,
		MaxIterations:    1000,
		MinTranslateFrac: 0.01,
		MaxTranslateFrac: 0.25,
		MinRotate:        1,
		MaxRotate:        45,
		MinResizeFrac:    0.01,
		MaxResizeFrac:    0.33,
	}
}

// LoadRanges reads search ranges from a TOML file. Fields not present in
// the file keep their default values.
func LoadRanges(filename string) (Ranges, error) {
	r := DefaultRanges()
	f, err := os.Open(filename)
	if err != nil {
		return r, fmt.Errorf("simplot: opening range file: %v", err)
	}
	defer f.Close()
	if _, err := toml.DecodeReader(f, &r); err != nil {
		return r, fmt.Errorf("simplot: parsing range file %s: %v", filename, err)
	}
	return r, nil
}

func (r Ranges) valid() error {
	if r.MinIterations < 1 || r.MaxIterations < r.MinIterations {
		return fmt.Errorf("simplot: tuning iteration range [%d, %d] is invalid", r.MinIterations, r.MaxIterations)
	}
	if !(0 < r.MinTranslateFrac && r.MinTranslateFrac <= r.MaxTranslateFrac) {
		return fmt.Errorf("simplot: tuning translation range [%g, %g] is invalid", r.MinTranslateFrac, r.MaxTranslateFrac)
	}
	if !(0 <= r.MinRotate && r.MinRotate <= r.MaxRotate) {
		return fmt.Errorf("simplot: tuning rotation range [%g, %g] is invalid", r.MinRotate, r.MaxRotate)
	}
	if !(0 < r.MinResizeFrac && r.MinResizeFrac <= r.MaxResizeFrac) {
		return fmt.Errorf("simplot: tuning resize range [%g, %g] is invalid", r.MinResizeFrac, r.MaxResizeFrac)
	}
	return nil
}

// A Trial records the hyperparameters of one tuning run together with
// the overlap score statistics it achieved, in percent.
type Trial struct {
	// Polygons is the number of successfully generated plots.
	Polygons int

	Iterations    int
	TranslateFrac float64
	// MaxRotate is in degrees.
	MaxRotate  float64
	ResizeFrac float64

	Duration time.Duration

	MinScore    float64
	MaxScore    float64
	MeanScore   float64
	StdDevScore float64
}

// A Tuner searches randomly over hyperparameter ranges, generating plots
// for the same polygons with each candidate setting and recording the
// overlap scores achieved.
type Tuner struct {
	// Config supplies the fixed parameters: shape, position, placement,
	// side ratio limit, and random seed. The iteration count, translation
	// fraction, rotation limit, and resize fraction are drawn from Ranges
	// for every trial.
	Config Config

	Ranges Ranges

	// Trials is the number of random draws to test.
	Trials int

	// Observe, if non-nil, is called with the plot set of each completed
	// trial, for example to save the plots.
	Observe func(trial int, ps *PlotSet) error

	Log logrus.FieldLogger
}

// NewTuner creates a Tuner with default ranges and 100 trials.
func NewTuner(c Config) *Tuner {
	return &Tuner{
		Config: c,
		Ranges: DefaultRanges(),
		Trials: 100,
		Log:    logrus.StandardLogger(),
	}
}

// Run executes the random search over the given polygons. Hyperparameters
// are drawn uniformly from t.Ranges, with the iteration count drawn
// inclusive of both bounds. It returns one Trial per completed run; on
// cancellation the trials completed so far are returned together with the
// context error.
func (t *Tuner) Run(ctx context.Context, polys []*SourcePolygon) ([]Trial, error) {
	if err := t.Ranges.valid(); err != nil {
		return nil, err
	}
	if t.Trials < 1 {
		return nil, fmt.Errorf("simplot: number of tuning trials must be positive but is %d", t.Trials)
	}
	rng := rand.New(rand.NewSource(t.Config.RandomSeed))
	trials := make([]Trial, 0, t.Trials)
	for i := 0; i < t.Trials; i++ {
		tr := Trial{
			Iterations:    t.Ranges.MinIterations + rng.Intn(t.Ranges.MaxIterations-t.Ranges.MinIterations+1),
			TranslateFrac: t.Ranges.MinTranslateFrac + rng.Float64()*(t.Ranges.MaxTranslateFrac-t.Ranges.MinTranslateFrac),
			MaxRotate:     t.Ranges.MinRotate + rng.Float64()*(t.Ranges.MaxRotate-t.Ranges.MinRotate),
			ResizeFrac:    t.Ranges.MinResizeFrac + rng.Float64()*(t.Ranges.MaxResizeFrac-t.Ranges.MinResizeFrac),
		}
		c := t.Config
		c.MaxIterations = tr.Iterations
		c.TranslateFrac = tr.TranslateFrac
		c.MaxRotate = tr.MaxRotate * math.Pi / 180
		c.ResizeFrac = tr.ResizeFrac

		t.Log.WithFields(logrus.Fields{
			"trial":         i + 1,
			"trials":        t.Trials,
			"iterations":    tr.Iterations,
			"translatefrac": tr.TranslateFrac,
			"maxrotate":     tr.MaxRotate,
			"resizefrac":    tr.ResizeFrac,
		}).Info("simplot tuning trial")

		g := NewGenerator(c)
		g.Log = t.Log
		start := time.Now()
		ps, err := g.Generate(ctx, polys)
		if err != nil {
			return trials, err
		}
		tr.Duration = time.Since(start)

		var acc stats.Stats
		for _, r := range ps.Results {
			acc.Update(100 * r.Score)
		}
		tr.Polygons = acc.Count()
		if tr.Polygons == 0 {
			tr.MinScore = math.NaN()
			tr.MaxScore = math.NaN()
			tr.MeanScore = math.NaN()
			tr.StdDevScore = math.NaN()
		} else {
			tr.MinScore = acc.Min()
			tr.MaxScore = acc.Max()
			tr.MeanScore = acc.Mean()
			tr.StdDevScore = acc.PopulationStandardDeviation()
		}
		trials = append(trials, tr)

		if t.Observe != nil {
			if err := t.Observe(i+1, ps); err != nil {
				return trials, err
			}
		}
	}
	return trials, nil
}

// trialLogHeader lists the columns of the tuning log.
var trialLogHeader = []string{
	"ShpFN", "nPolygons", "position", "placement", "shape",
	"randomIterations", "percTranslate", "maxAlpha", "maxResizePerc",
	"duration", "minPerc", "maxPerc", "avgPerc", "stdDevPerc",
}

// AppendLog appends the trials to a semicolon-separated log file,
// creating the file with a header row first when necessary. source labels
// the polygon dataset the trials ran on.
func (t *Tuner) AppendLog(filename, source string, trials []Trial) error {
	header := false
	if fi, err := os.Stat(filename); os.IsNotExist(err) || (err == nil && fi.Size() == 0) {
		header = true
	}
	f, err := os.OpenFile(filename, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("simplot: opening tuning log: %v", err)
	}
	defer f.Close()
	w := csv.NewWriter(f)
	w.Comma = ';'
	if header {
		if err := w.Write(trialLogHeader); err != nil {
			return fmt.Errorf("simplot: writing tuning log header: %v", err)
		}
	}
	for _, tr := range trials {
		rec := []string{
			source,
			strconv.Itoa(tr.Polygons),
			t.Config.Position.String(),
			t.Config.Placement.String(),
			t.Config.Shape.String(),
			strconv.Itoa(tr.Iterations),
			formatFloat(tr.TranslateFrac),
			formatFloat(tr.MaxRotate),
			formatFloat(tr.ResizeFrac),
			formatFloat(tr.Duration.Seconds()),
			formatFloat(tr.MinScore),
			formatFloat(tr.MaxScore),
			formatFloat(tr.MeanScore),
			formatFloat(tr.StdDevScore),
		}
		if err := w.Write(rec); err != nil {
			return fmt.Errorf("simplot: writing tuning log: %v", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("simplot: writing tuning log: %v", err)
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
