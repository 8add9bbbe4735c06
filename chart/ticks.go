// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package chart

import (
	"sort"
	"strconv"

	"gonum.org/v1/plot"

	"github.com/pdelab/scaling/scaling"
)

// Ticks places one labeled tick at every measured thread count.
type Ticks struct {
	ticks []plot.Tick
}

func threadTicks(points []*scaling.Point) Ticks {
	seen := make(map[int]bool)
	var threads []int
	for _, p := range points {
		if !seen[p.Threads] {
			seen[p.Threads] = true
			threads = append(threads, p.Threads)
		}
	}
	sort.Ints(threads)

	var t Ticks
	for _, n := range threads {
		t.ticks = append(t.ticks, plot.Tick{Value: float64(n), Label: strconv.Itoa(n)})
	}
	return t
}

// Ticks implements plot.Ticker.
func (t Ticks) Ticks(min, max float64) []plot.Tick {
	var out []plot.Tick
	for _, tick := range t.ticks {
		if tick.Value >= min && tick.Value <= max {
			out = append(out, tick)
		}
	}
	return out
}
