// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package scaling derives strong-scaling metrics from benchmark runs.
//
// For a fixed problem size run at several thread counts, the speedup
// of a run is the single-thread wall time divided by the run's wall
// time, and its parallel efficiency is its speedup divided by its
// thread count. An efficiency of 1 is ideal linear scaling.
package scaling

import (
	"fmt"
	"math"
	"sort"

	"github.com/spf13/cast"

	"github.com/pdelab/scaling/artifact"
)

// A Point is one measurement on a scaling curve.
type Point struct {
	// Run is the run this point was extracted from. For an
	// aggregated point, it is the first run of the group.
	Run *artifact.Run

	// Threads is the number of worker threads of the run.
	Threads int

	// WallTime is the wall-clock time of the run, in whatever unit
	// the run reported it.
	WallTime float64

	// Runs is the number of runs folded into this point by
	// Aggregate. It is 1 for a point that was not aggregated.
	Runs int

	// Speedup and Efficiency are set by Derive.
	Speedup    float64
	Efficiency float64

	derived bool
}

// Derived reports whether Derive has set p's Speedup and Efficiency.
func (p *Point) Derived() bool {
	return p.derived
}

// Fields names the run fields holding a point's coordinates. Each is
// a path as accepted by artifact.Run.Lookup.
type Fields struct {
	Threads  string
	WallTime string
}

// DefaultFields are the fields of the harness's scaling runs.
var DefaultFields = Fields{
	Threads:  "threads",
	WallTime: "wallTimeSeconds",
}

// Extract returns one Point per run, in the order of runs.
//
// It fails with an *InvalidMeasurementError if a run's thread count
// is missing or is not a positive integer, or if its wall time is
// missing or is not a positive finite number.
func Extract(runs []*artifact.Run, f Fields) ([]*Point, error) {
	points := make([]*Point, 0, len(runs))
	for _, run := range runs {
		threads, err := threadsOf(run, f.Threads)
		if err != nil {
			return nil, err
		}
		wall, err := wallTimeOf(run, f.WallTime)
		if err != nil {
			return nil, err
		}
		points = append(points, &Point{Run: run, Threads: threads, WallTime: wall, Runs: 1})
	}
	return points, nil
}

func threadsOf(run *artifact.Run, field string) (int, error) {
	v, ok := run.Lookup(field)
	if !ok {
		return 0, &InvalidMeasurementError{Dir: run.Dir, Field: field, Reason: "missing"}
	}
	x, err := toFloat(v)
	if err != nil {
		return 0, &InvalidMeasurementError{Dir: run.Dir, Field: field, Value: v, Reason: "not a number"}
	}
	if x < 1 || x > math.MaxInt32 || x != math.Trunc(x) {
		return 0, &InvalidMeasurementError{Dir: run.Dir, Field: field, Value: v, Reason: "not a positive integer"}
	}
	return int(x), nil
}

func wallTimeOf(run *artifact.Run, field string) (float64, error) {
	v, ok := run.Lookup(field)
	if !ok {
		return 0, &InvalidMeasurementError{Dir: run.Dir, Field: field, Reason: "missing"}
	}
	x, err := toFloat(v)
	if err != nil {
		return 0, &InvalidMeasurementError{Dir: run.Dir, Field: field, Value: v, Reason: "not a number"}
	}
	if reason := checkWallTime(x); reason != "" {
		return 0, &InvalidMeasurementError{Dir: run.Dir, Field: field, Value: v, Reason: reason}
	}
	return x, nil
}

// toFloat converts a JSON value to a number. Numeric strings are
// accepted; booleans are not.
func toFloat(v interface{}) (float64, error) {
	if _, ok := v.(bool); ok {
		return 0, fmt.Errorf("boolean %v", v)
	}
	return cast.ToFloat64E(v)
}

// checkWallTime returns why x is not a usable wall time, or "".
func checkWallTime(x float64) string {
	switch {
	case math.IsNaN(x) || math.IsInf(x, 0):
		return "not finite"
	case x <= 0:
		return "not positive"
	}
	return ""
}

// Sort sorts points by ascending thread count. Points with equal
// thread counts keep their relative order.
func Sort(points []*Point) {
	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Threads < points[j].Threads
	})
}

// Derive sorts points by thread count and sets the Speedup and
// Efficiency of every point relative to the single-thread baseline.
//
// Derive fails without modifying any Speedup or Efficiency if a
// point's thread count is not positive, if its wall time is not
// positive and finite, or if there is not
// exactly one point with one thread. Deriving already-derived points
// again gives the same values.
func Derive(points []*Point) error {
	Sort(points)

	var baselines []*Point
	for _, p := range points {
		if p.Threads < 1 {
			return &InvalidMeasurementError{Dir: dirOf(p), Field: "threads", Value: p.Threads, Reason: "not a positive integer"}
		}
		if reason := checkWallTime(p.WallTime); reason != "" {
			return &InvalidMeasurementError{Dir: dirOf(p), Threads: p.Threads, Value: p.WallTime, Reason: reason}
		}
		if p.Threads == 1 {
			baselines = append(baselines, p)
		}
	}
	switch len(baselines) {
	case 0:
		e := &MissingBaselineError{}
		for _, p := range points {
			e.Threads = append(e.Threads, p.Threads)
		}
		return e
	case 1:
	default:
		e := &DuplicateBaselineError{}
		for _, p := range baselines {
			e.Dirs = append(e.Dirs, dirOf(p))
		}
		return e
	}

	base := baselines[0].WallTime
	for _, p := range points {
		p.Speedup = base / p.WallTime
		p.Efficiency = p.Speedup / float64(p.Threads)
		p.derived = true
	}
	return nil
}

// Ideal returns the speedup of perfect linear scaling at the given
// thread count.
func Ideal(threads int) float64 {
	return float64(threads)
}

func dirOf(p *Point) string {
	if p.Run == nil {
		return ""
	}
	return p.Run.Dir
}
