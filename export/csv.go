// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package export

import (
	"encoding/csv"
	"io"
	"sort"

	"github.com/pdelab/scaling/scaling"
)

// Header returns the CSV columns for points: the sorted union of the
// runs' top-level fields, then speedup and efficiency if the points
// are derived, then runs if opts.Aggregated.
func Header(points []*scaling.Point, opts Options) []string {
	derived := allDerived(points)
	computed := map[string]bool{
		Speedup:    derived,
		Efficiency: derived,
		Runs:       opts.Aggregated,
	}

	seen := make(map[string]bool)
	var hdr []string
	for _, p := range points {
		if p.Run == nil {
			continue
		}
		for _, k := range p.Run.Keys() {
			if !seen[k] && !computed[k] {
				seen[k] = true
				hdr = append(hdr, k)
			}
		}
	}
	sort.Strings(hdr)

	for _, k := range []string{Speedup, Efficiency, Runs} {
		if computed[k] {
			hdr = append(hdr, k)
		}
	}
	return hdr
}

// WriteCSV writes one row per point, in order, under Header. A run
// without a column's field gets an empty cell. If points is empty,
// WriteCSV writes nothing.
func WriteCSV(w io.Writer, points []*scaling.Point, opts Options) error {
	if len(points) == 0 {
		return nil
	}
	hdr := Header(points, opts)
	cw := csv.NewWriter(w)
	if err := cw.Write(hdr); err != nil {
		return err
	}
	row := make([]string, len(hdr))
	for _, p := range points {
		for i, col := range hdr {
			row[i], _ = csvValue(p, col, &opts)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// csvValue resolves only top-level fields, so a dotted key is never
// mistaken for a path.
func csvValue(p *scaling.Point, col string, opts *Options) (string, bool) {
	switch col {
	case Speedup, Efficiency, Runs:
		return computed(p, col)
	case opts.Fields.Threads, opts.Fields.WallTime:
		return value(p, col, opts)
	}
	if p.Run == nil {
		return "", false
	}
	v, ok := p.Run.Fields[col]
	if !ok {
		return "", false
	}
	return formatValue(v), true
}
