// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package scaling

import (
	"fmt"
	"strings"
)

// A MissingBaselineError reports that no run used exactly one thread,
// so there is nothing to normalize speedups against.
type MissingBaselineError struct {
	// Threads lists the thread counts that were present.
	Threads []int
}

func (e *MissingBaselineError) Error() string {
	if len(e.Threads) == 0 {
		return "no single-thread baseline: no runs"
	}
	counts := make([]string, len(e.Threads))
	for i, t := range e.Threads {
		counts[i] = fmt.Sprint(t)
	}
	return fmt.Sprintf("no single-thread baseline among runs with threads %s", strings.Join(counts, ","))
}

// A DuplicateBaselineError reports that more than one run used
// exactly one thread. Repeated runs can be folded with Aggregate
// before deriving.
type DuplicateBaselineError struct {
	Dirs []string
}

func (e *DuplicateBaselineError) Error() string {
	return fmt.Sprintf("%d single-thread baselines (%s); aggregate repeated runs first", len(e.Dirs), strings.Join(e.Dirs, ", "))
}

// An InvalidMeasurementError reports a thread count or wall time that
// cannot be used to compute speedups.
type InvalidMeasurementError struct {
	Dir     string      // run directory, if known
	Field   string      // field path, if known
	Threads int         // thread count, if known
	Value   interface{} // offending value, if any
	Reason  string
}

func (e *InvalidMeasurementError) Error() string {
	var b strings.Builder
	if e.Dir != "" {
		fmt.Fprintf(&b, "%s: ", e.Dir)
	} else if e.Threads != 0 {
		fmt.Fprintf(&b, "threads=%d: ", e.Threads)
	}
	if e.Field != "" {
		fmt.Fprintf(&b, "%s ", e.Field)
	} else {
		b.WriteString("wall time ")
	}
	if e.Value != nil {
		fmt.Fprintf(&b, "%v ", e.Value)
	}
	fmt.Fprintf(&b, "is %s", e.Reason)
	return b.String()
}
