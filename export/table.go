// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package export

import (
	"io"

	"github.com/pdelab/scaling/internal/texttab"
	"github.com/pdelab/scaling/scaling"
)

// WriteTable writes a console summary of points with the given
// columns. A column may be a run field path or one of Speedup,
// Efficiency and Runs. Cells a point lacks are left blank.
func WriteTable(w io.Writer, points []*scaling.Point, columns []string, opts Options) error {
	if len(points) == 0 || len(columns) == 0 {
		return nil
	}
	var tab texttab.Table
	tab.Row()
	for _, col := range columns {
		tab.Cell(col, texttab.Left)
	}
	tab.Rule()
	for _, p := range points {
		tab.Row()
		for i, col := range columns {
			s, ok := value(p, col, &opts)
			if !ok {
				continue
			}
			a := texttab.Left
			if numeric(s) {
				a = texttab.Right
			}
			tab.Col(i).Cell(s, a)
		}
	}
	return tab.Format(w)
}
