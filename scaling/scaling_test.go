// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package scaling

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/pdelab/scaling/artifact"
)

func run(dir string, fields map[string]interface{}) *artifact.Run {
	return &artifact.Run{Dir: dir, Fields: fields}
}

func points(pairs ...float64) []*Point {
	var ps []*Point
	for i := 0; i+1 < len(pairs); i += 2 {
		ps = append(ps, &Point{Threads: int(pairs[i]), WallTime: pairs[i+1], Runs: 1})
	}
	return ps
}

type curve struct {
	Threads    []int
	Speedup    []float64
	Efficiency []float64
}

func curveOf(ps []*Point) curve {
	var c curve
	for _, p := range ps {
		c.Threads = append(c.Threads, p.Threads)
		c.Speedup = append(c.Speedup, p.Speedup)
		c.Efficiency = append(c.Efficiency, p.Efficiency)
	}
	return c
}

func TestDerive(t *testing.T) {
	// Deliberately out of order.
	ps := points(4, 3.2, 1, 10.0, 2, 6.0)
	if err := Derive(ps); err != nil {
		t.Fatalf("Derive: %v", err)
	}
	want := curve{
		Threads:    []int{1, 2, 4},
		Speedup:    []float64{1, 1.667, 3.125},
		Efficiency: []float64{1, 0.833, 0.781},
	}
	if diff := cmp.Diff(want, curveOf(ps), cmpopts.EquateApprox(0, 0.0005)); diff != "" {
		t.Errorf("Derive mismatch (-want +got):\n%s", diff)
	}
	for _, p := range ps {
		if !p.Derived() {
			t.Errorf("point with %d threads not marked derived", p.Threads)
		}
	}
}

func TestDeriveBaselineEfficiency(t *testing.T) {
	for _, wall := range []float64{10, 0.1, 1e-9, 3e7, math.Pi} {
		ps := points(1, wall, 8, wall/5)
		if err := Derive(ps); err != nil {
			t.Fatal(err)
		}
		if ps[0].Efficiency != 1 || ps[0].Speedup != 1 {
			t.Errorf("baseline wall=%g: speedup %v efficiency %v, want exactly 1", wall, ps[0].Speedup, ps[0].Efficiency)
		}
	}
}

func TestDeriveEqualWallTime(t *testing.T) {
	ps := points(1, 12, 2, 4, 3, 4, 6, 4)
	if err := Derive(ps); err != nil {
		t.Fatal(err)
	}
	for _, p := range ps[1:] {
		if p.Speedup != ps[1].Speedup {
			t.Errorf("threads=%d speedup %v, want %v for equal wall time", p.Threads, p.Speedup, ps[1].Speedup)
		}
	}
}

func TestDeriveIdempotent(t *testing.T) {
	ps := points(1, 10, 2, 6, 4, 3.2, 8, 2.1)
	if err := Derive(ps); err != nil {
		t.Fatal(err)
	}
	first := curveOf(ps)
	if err := Derive(ps); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(first, curveOf(ps)); diff != "" {
		t.Errorf("second Derive changed values (-first +second):\n%s", diff)
	}
}

func TestDeriveMissingBaseline(t *testing.T) {
	ps := points(2, 6, 4, 3.2)
	err := Derive(ps)
	var mb *MissingBaselineError
	if !errors.As(err, &mb) {
		t.Fatalf("Derive error = %v, want *MissingBaselineError", err)
	}
	if diff := cmp.Diff([]int{2, 4}, mb.Threads); diff != "" {
		t.Errorf("MissingBaselineError.Threads mismatch (-want +got):\n%s", diff)
	}
	for _, p := range ps {
		if p.Derived() || p.Speedup != 0 || p.Efficiency != 0 {
			t.Errorf("threads=%d was modified despite the error: %+v", p.Threads, p)
		}
	}

	if err := Derive(nil); !errors.As(err, &mb) {
		t.Errorf("Derive(nil) error = %v, want *MissingBaselineError", err)
	}
}

func TestDeriveDuplicateBaseline(t *testing.T) {
	ps := []*Point{
		{Run: run("run_a", nil), Threads: 1, WallTime: 10},
		{Run: run("run_b", nil), Threads: 1, WallTime: 11},
		{Run: run("run_c", nil), Threads: 2, WallTime: 6},
	}
	err := Derive(ps)
	var db *DuplicateBaselineError
	if !errors.As(err, &db) {
		t.Fatalf("Derive error = %v, want *DuplicateBaselineError", err)
	}
	if diff := cmp.Diff([]string{"run_a", "run_b"}, db.Dirs); diff != "" {
		t.Errorf("DuplicateBaselineError.Dirs mismatch (-want +got):\n%s", diff)
	}
}

func TestDeriveInvalidMeasurement(t *testing.T) {
	for _, wall := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		ps := points(1, 10, 2, wall)
		err := Derive(ps)
		var im *InvalidMeasurementError
		if !errors.As(err, &im) {
			t.Errorf("wall=%v: Derive error = %v, want *InvalidMeasurementError", wall, err)
			continue
		}
		if ps[0].Derived() {
			t.Errorf("wall=%v: baseline derived despite the error", wall)
		}
	}

	ps := []*Point{{Threads: 0, WallTime: 1}, {Threads: 1, WallTime: 1}}
	var im *InvalidMeasurementError
	if err := Derive(ps); !errors.As(err, &im) {
		t.Errorf("zero threads: Derive error = %v, want *InvalidMeasurementError", err)
	}
}

func TestExtract(t *testing.T) {
	runs := []*artifact.Run{
		run("run_1", map[string]interface{}{"threads": 1.0, "wallTimeSeconds": 10.0}),
		run("run_2", map[string]interface{}{"threads": "2", "wallTimeSeconds": "6.5"}),
		run("run_4", map[string]interface{}{"env": map[string]interface{}{"availableProcessors": 4.0}, "threads": 4.0, "wallTimeSeconds": 3.2}),
	}
	ps, err := Extract(runs, DefaultFields)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	var got [][2]float64
	for _, p := range ps {
		got = append(got, [2]float64{float64(p.Threads), p.WallTime})
		if p.Runs != 1 {
			t.Errorf("%s: Runs = %d, want 1", p.Run.Dir, p.Runs)
		}
	}
	want := [][2]float64{{1, 10}, {2, 6.5}, {4, 3.2}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Extract mismatch (-want +got):\n%s", diff)
	}

	nested, err := Extract(runs[2:], Fields{Threads: "env.availableProcessors", WallTime: "wallTimeSeconds"})
	if err != nil || nested[0].Threads != 4 {
		t.Errorf("Extract with nested threads field = %v, %v; want 4 threads", nested, err)
	}
}

func TestExtractInvalid(t *testing.T) {
	for _, test := range []struct {
		fields map[string]interface{}
		want   string
	}{
		{map[string]interface{}{"wallTimeSeconds": 1.0}, "threads is missing"},
		{map[string]interface{}{"threads": 1.5, "wallTimeSeconds": 1.0}, "not a positive integer"},
		{map[string]interface{}{"threads": 0.0, "wallTimeSeconds": 1.0}, "not a positive integer"},
		{map[string]interface{}{"threads": 1e19, "wallTimeSeconds": 1.0}, "not a positive integer"},
		{map[string]interface{}{"threads": "4294967296", "wallTimeSeconds": 1.0}, "not a positive integer"},
		{map[string]interface{}{"threads": true, "wallTimeSeconds": 1.0}, "not a number"},
		{map[string]interface{}{"threads": "four", "wallTimeSeconds": 1.0}, "not a number"},
		{map[string]interface{}{"threads": 2.0}, "wallTimeSeconds is missing"},
		{map[string]interface{}{"threads": 2.0, "wallTimeSeconds": 0.0}, "not positive"},
		{map[string]interface{}{"threads": 2.0, "wallTimeSeconds": -3.0}, "not positive"},
		{map[string]interface{}{"threads": 2.0, "wallTimeSeconds": map[string]interface{}{}}, "not a number"},
	} {
		_, err := Extract([]*artifact.Run{run("run_x", test.fields)}, DefaultFields)
		var im *InvalidMeasurementError
		if !errors.As(err, &im) {
			t.Errorf("%v: Extract error = %v, want *InvalidMeasurementError", test.fields, err)
			continue
		}
		if msg := err.Error(); !strings.HasPrefix(msg, "run_x: ") || !strings.Contains(msg, test.want) {
			t.Errorf("%v: error %q, want it to name run_x and contain %q", test.fields, msg, test.want)
		}
	}
}

func TestAggregate(t *testing.T) {
	ps := []*Point{
		{Run: run("run_a", nil), Threads: 2, WallTime: 6.0, Runs: 1},
		{Run: run("run_b", nil), Threads: 1, WallTime: 10.4, Runs: 1},
		{Run: run("run_c", nil), Threads: 2, WallTime: 9.0, Runs: 1},
		{Run: run("run_d", nil), Threads: 1, WallTime: 9.6, Runs: 1},
		{Run: run("run_e", nil), Threads: 1, WallTime: 10.0, Runs: 1},
		{Run: run("run_f", nil), Threads: 2, WallTime: 5.0, Runs: 1},
		{Run: run("run_g", nil), Threads: 4, WallTime: 3.2, Runs: 1},
		{Run: run("run_h", nil), Threads: 4, WallTime: 3.0, Runs: 1},
	}
	agg := Aggregate(ps)

	type row struct {
		Dir      string
		Threads  int
		WallTime float64
		Runs     int
	}
	var got []row
	for _, p := range agg {
		got = append(got, row{p.Run.Dir, p.Threads, p.WallTime, p.Runs})
	}
	want := []row{
		{"run_b", 1, 10.0, 3},
		{"run_a", 2, 6.0, 3},
		{"run_g", 4, 3.1, 2},
	}
	if diff := cmp.Diff(want, got, cmpopts.EquateApprox(0, 1e-12)); diff != "" {
		t.Errorf("Aggregate mismatch (-want +got):\n%s", diff)
	}

	if err := Derive(agg); err != nil {
		t.Fatalf("Derive after Aggregate: %v", err)
	}
	if agg[1].Speedup != 10.0/6.0 {
		t.Errorf("aggregated speedup at 2 threads = %v, want %v", agg[1].Speedup, 10.0/6.0)
	}
}
