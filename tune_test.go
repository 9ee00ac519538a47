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
	"io/ioutil"
	"os"
	"reflect"
	"strings"
	"testing"
	"time"
)

const testRangesFilename = "testRanges.toml"

func TestRangesValid(t *testing.T) {
	if err := DefaultRanges().valid(); err != nil {
		t.Error(err)
	}

	r := DefaultRanges()
	r.MinRotate = 0 // rotation may be disabled entirely
	if err := r.valid(); err != nil {
		t.Error(err)
	}

	tests := []struct {
		name   string
		modify func(*Ranges)
		msg    string
	}{
		{"zero iterations", func(r *Ranges) { r.MinIterations = 0 }, "iteration range"},
		{"reversed iterations", func(r *Ranges) { r.MaxIterations = r.MinIterations - 1 }, "iteration range"},
		{"zero translation", func(r *Ranges) { r.MinTranslateFrac = 0 }, "translation range"},
		{"reversed translation", func(r *Ranges) { r.MaxTranslateFrac = 0.001 }, "translation range"},
		{"negative rotation", func(r *Ranges) { r.MinRotate = -1 }, "rotation range"},
		{"reversed rotation", func(r *Ranges) { r.MaxRotate = 0.5 }, "rotation range"},
		{"zero resize", func(r *Ranges) { r.MinResizeFrac = 0 }, "resize range"},
		{"reversed resize", func(r *Ranges) { r.MaxResizeFrac = 0.001 }, "resize range"},
	}
	for _, test := range tests {
		r := DefaultRanges()
		test.modify(&r)
		err := r.valid()
		if err == nil || !strings.Contains(err.Error(), test.msg) {
			t.Errorf("%s: have %v", test.name, err)
		}
	}
}

func TestLoadRanges(t *testing.T) {
	f, err := os.Create(testRangesFilename)
	if err != nil {
		t.Fatal(err)
	}
	fmt.Fprint(f, `
MinIterations = 5
MaxIterations = 10
MaxRotate = 30
`)
	f.Close()

	have, err := LoadRanges(testRangesFilename)
	if err != nil {
		t.Fatal(err)
	}
	want := Ranges{
		MinIterations:    5,
		MaxIterations:    10,
		MinTranslateFrac: 0.01,
		MaxTranslateFrac: 0.25,
		MinRotate:        1,
		MaxRotate:        30,
		MinResizeFrac:    0.01,
		MaxResizeFrac:    0.33,
	}
	if !reflect.DeepEqual(have, want) {
		t.Errorf("have %+v, want %+v", have, want)
	}
	os.Remove(testRangesFilename)

	if _, err := LoadRanges(testRangesFilename); err == nil ||
		!strings.Contains(err.Error(), "opening range file") {
		t.Errorf("missing file: have %v", err)
	}

	f, err = os.Create(testRangesFilename)
	if err != nil {
		t.Fatal(err)
	}
	fmt.Fprint(f, "MinIterations = [")
	f.Close()
	if _, err := LoadRanges(testRangesFilename); err == nil ||
		!strings.Contains(err.Error(), "parsing range file") {
		t.Errorf("bad file: have %v", err)
	}
	os.Remove(testRangesFilename)
}

func TestTunerRun(t *testing.T) {
	polys := []*SourcePolygon{{ID: "strip", Polygon: testRect(4, 1)}}
	ranges := Ranges{
		MinIterations:    2,
		MaxIterations:    4,
		MinTranslateFrac: 0.05,
		MaxTranslateFrac: 0.1,
		MinRotate:        0,
		MaxRotate:        10,
		MinResizeFrac:    0.01,
		MaxResizeFrac:    0.02,
	}
	c := DefaultConfig()
	c.Placement = PlacementFixed

	newTestTuner := func() *Tuner {
		tu := NewTuner(c)
		tu.Ranges = ranges
		tu.Trials = 3
		tu.Log = discardLogger()
		return tu
	}

	tu := newTestTuner()
	var observed []int
	tu.Observe = func(trial int, ps *PlotSet) error {
		if len(ps.Results) != 1 {
			t.Errorf("trial %d: want 1 result but have %d", trial, len(ps.Results))
		}
		observed = append(observed, trial)
		return nil
	}
	trials, err := tu.Run(context.Background(), polys)
	if err != nil {
		t.Fatal(err)
	}
	if len(trials) != 3 {
		t.Fatalf("want 3 trials but have %d", len(trials))
	}
	if !reflect.DeepEqual(observed, []int{1, 2, 3}) {
		t.Errorf("observed trials %v", observed)
	}
	for i, tr := range trials {
		if tr.Iterations < ranges.MinIterations || tr.Iterations > ranges.MaxIterations {
			t.Errorf("trial %d: iterations %d outside [%d, %d]",
				i, tr.Iterations, ranges.MinIterations, ranges.MaxIterations)
		}
		if tr.TranslateFrac < ranges.MinTranslateFrac || tr.TranslateFrac > ranges.MaxTranslateFrac {
			t.Errorf("trial %d: translation fraction %g outside range", i, tr.TranslateFrac)
		}
		if tr.MaxRotate < ranges.MinRotate || tr.MaxRotate > ranges.MaxRotate {
			t.Errorf("trial %d: rotation limit %g outside range", i, tr.MaxRotate)
		}
		if tr.ResizeFrac < ranges.MinResizeFrac || tr.ResizeFrac > ranges.MaxResizeFrac {
			t.Errorf("trial %d: resize fraction %g outside range", i, tr.ResizeFrac)
		}
		if tr.Polygons != 1 {
			t.Errorf("trial %d: want 1 polygon but have %d", i, tr.Polygons)
		}
		// The fixed placement scores 50 percent regardless of the
		// hyperparameters.
		if tr.MinScore != 50 || tr.MaxScore != 50 || tr.MeanScore != 50 {
			t.Errorf("trial %d: want all scores 50 but have %+v", i, tr)
		}
		if tr.StdDevScore != 0 {
			t.Errorf("trial %d: want standard deviation 0 but have %g", i, tr.StdDevScore)
		}
	}

	// The same seed draws the same hyperparameters.
	again, err := newTestTuner().Run(context.Background(), polys)
	if err != nil {
		t.Fatal(err)
	}
	for i := range trials {
		a, b := trials[i], again[i]
		a.Duration, b.Duration = 0, 0
		if !reflect.DeepEqual(a, b) {
			t.Errorf("trial %d: have %+v, want %+v", i, b, a)
		}
	}
}

func TestTunerRunErrors(t *testing.T) {
	polys := []*SourcePolygon{{ID: "strip", Polygon: testRect(4, 1)}}

	tu := NewTuner(DefaultConfig())
	tu.Log = discardLogger()
	tu.Trials = 0
	if _, err := tu.Run(context.Background(), polys); err == nil ||
		!strings.Contains(err.Error(), "must be positive") {
		t.Errorf("zero trials: have %v", err)
	}

	tu = NewTuner(DefaultConfig())
	tu.Log = discardLogger()
	tu.Ranges.MinResizeFrac = 0
	if _, err := tu.Run(context.Background(), polys); err == nil ||
		!strings.Contains(err.Error(), "resize range") {
		t.Errorf("invalid ranges: have %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	tu = NewTuner(DefaultConfig())
	tu.Log = discardLogger()
	trials, err := tu.Run(ctx, polys)
	if err != context.Canceled {
		t.Errorf("canceled: have %v", err)
	}
	if len(trials) != 0 {
		t.Errorf("canceled: want no trials but have %d", len(trials))
	}
}

func TestTunerAppendLog(t *testing.T) {
	const testLogFilename = "testTuneLog.csv"

	tu := NewTuner(DefaultConfig())
	trials := []Trial{{
		Polygons:      2,
		Iterations:    100,
		TranslateFrac: 0.1,
		MaxRotate:     20,
		ResizeFrac:    0.05,
		Duration:      1500 * time.Millisecond,
		MinScore:      40,
		MaxScore:      90,
		MeanScore:     65,
		StdDevScore:   12.5,
	}}
	if err := tu.AppendLog(testLogFilename, "polys.shp", trials); err != nil {
		t.Fatal(err)
	}
	// Appending must not repeat the header.
	if err := tu.AppendLog(testLogFilename, "polys.shp", trials); err != nil {
		t.Fatal(err)
	}

	b, err := ioutil.ReadFile(testLogFilename)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	if len(lines) != 3 {
		t.Fatalf("want 3 lines but have %d", len(lines))
	}
	if want := strings.Join(trialLogHeader, ";"); lines[0] != want {
		t.Errorf("header: have %s, want %s", lines[0], want)
	}
	wantRec := "polys.shp;2;bbox;optimized;square;100;0.1;20;0.05;1.5;40;90;65;12.5"
	for i, line := range lines[1:] {
		if line != wantRec {
			t.Errorf("record %d: have %s, want %s", i, line, wantRec)
		}
	}
	os.Remove(testLogFilename)
}
