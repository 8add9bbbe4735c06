// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package texttab lays out plain-text tables for terminals.
package texttab

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// Table accumulates cells row by row and lays them out in aligned
// columns separated by a single space.
//
// Row, Col and Cell return the Table so that a row can be built in
// one chained expression.
type Table struct {
	rows  [][]cell
	rules map[int]bool
	cols  int

	curCol int
}

type cell struct {
	value string
	align Align
}

// Align positions a value within its column.
type Align int

const (
	Left Align = iota
	Right
)

func (a Align) pad(s string, w int) string {
	n := w - utf8.RuneCountInString(s)
	if n <= 0 {
		return s
	}
	if a == Right {
		return strings.Repeat(" ", n) + s
	}
	return s + strings.Repeat(" ", n)
}

// Row starts a new row.
func (t *Table) Row() *Table {
	t.rows = append(t.rows, nil)
	t.curCol = 0
	return t
}

// Rule adds a row of dashes as wide as the table.
func (t *Table) Rule() *Table {
	t.Row()
	if t.rules == nil {
		t.rules = make(map[int]bool)
	}
	t.rules[len(t.rows)-1] = true
	return t
}

// Col skips to column col of the current row. Columns are numbered
// from 0.
func (t *Table) Col(col int) *Table {
	if col < t.curCol {
		panic(fmt.Sprintf("cannot move from column %d to earlier column %d", t.curCol, col))
	}
	t.curCol = col
	return t
}

// Cell adds a cell at the current column of the current row and
// advances to the next column.
func (t *Table) Cell(value string, a Align) *Table {
	if len(t.rows) == 0 {
		t.Row()
	}
	r := len(t.rows) - 1
	for len(t.rows[r]) <= t.curCol {
		t.rows[r] = append(t.rows[r], cell{})
	}
	t.rows[r][t.curCol] = cell{value, a}
	t.curCol++
	if t.curCol > t.cols {
		t.cols = t.curCol
	}
	return t
}

// Format writes the laid-out table to w. Lines carry no trailing
// spaces.
func (t *Table) Format(w io.Writer) error {
	ws := make([]int, t.cols)
	for _, row := range t.rows {
		for col, c := range row {
			if n := utf8.RuneCountInString(c.value); n > ws[col] {
				ws[col] = n
			}
		}
	}
	total := 0
	for col, w := range ws {
		if col > 0 {
			total++
		}
		total += w
	}

	var line strings.Builder
	for r, row := range t.rows {
		line.Reset()
		if t.rules[r] {
			line.WriteString(strings.Repeat("-", total))
		} else {
			for col, c := range row {
				if col > 0 {
					line.WriteByte(' ')
				}
				line.WriteString(c.align.pad(c.value, ws[col]))
			}
		}
		if _, err := fmt.Fprintln(w, strings.TrimRight(line.String(), " ")); err != nil {
			return err
		}
	}
	return nil
}
