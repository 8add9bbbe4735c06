// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package export writes scaling results as CSV, console tables and
// HTML reports.
package export

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/pdelab/scaling/scaling"
)

// Names of the columns computed from points rather than read from
// runs.
const (
	Speedup    = "speedup"
	Efficiency = "efficiency"
	Runs       = "runs"
)

// Options controls which columns are written and how measurements
// are resolved.
type Options struct {
	// Fields names the measurement fields. A column with one of
	// these names takes the point's value, which differs from
	// the run's when runs were aggregated.
	Fields scaling.Fields

	// Aggregated adds the runs column.
	Aggregated bool
}

// value returns the text of column name for p and whether p has it.
func value(p *scaling.Point, name string, opts *Options) (string, bool) {
	switch name {
	case opts.Fields.Threads:
		return strconv.Itoa(p.Threads), true
	case opts.Fields.WallTime:
		return formatFloat(p.WallTime), true
	}
	if s, ok := computed(p, name); ok {
		return s, true
	}
	if p.Run != nil {
		if v, ok := p.Run.Lookup(name); ok {
			return formatValue(v), true
		}
	}
	return "", false
}

// computed returns the value of a column that comes from the point
// itself.
func computed(p *scaling.Point, name string) (string, bool) {
	switch name {
	case Speedup:
		if p.Derived() {
			return formatFloat(p.Speedup), true
		}
	case Efficiency:
		if p.Derived() {
			return formatFloat(p.Efficiency), true
		}
	case Runs:
		return strconv.Itoa(p.Runs), true
	}
	return "", false
}

func formatFloat(x float64) string {
	return strconv.FormatFloat(x, 'g', -1, 64)
}

// formatValue formats a decoded JSON value. Objects and arrays are
// written back as JSON.
func formatValue(v interface{}) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return formatFloat(v)
	case bool:
		return strconv.FormatBool(v)
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}

// numeric reports whether a formatted value reads as a number.
func numeric(s string) bool {
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

func allDerived(points []*scaling.Point) bool {
	for _, p := range points {
		if !p.Derived() {
			return false
		}
	}
	return len(points) > 0
}
