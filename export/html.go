// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package export

import (
	"io"

	"github.com/google/safehtml/template"

	"github.com/pdelab/scaling/scaling"
)

// A Report is an HTML summary of one analysis.
type Report struct {
	Title string

	// Chart is the URL of the chart image, relative to the
	// report. If empty, the report has no image.
	Chart string

	// Columns are the table columns, as for WriteTable.
	Columns []string

	Points  []*scaling.Point
	Options Options
}

type htmlRow struct {
	Cells []htmlCell
}

type htmlCell struct {
	Text    string
	Numeric bool
}

var htmlTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: sans-serif; margin: 2em; }
table.scaling { border-collapse: collapse; }
table.scaling th, table.scaling td { padding: 0.2em 0.8em; border-bottom: 1px solid #ddd; }
table.scaling td.num { text-align: right; font-variant-numeric: tabular-nums; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
{{- if .Chart}}
<p><img src="{{.Chart}}" alt="scaling chart"></p>
{{- end}}
{{- if .Rows}}
<table class="scaling">
<tr>{{range .Columns}}<th>{{.}}</th>{{end}}</tr>
{{- range .Rows}}
<tr>{{range .Cells}}{{if .Numeric}}<td class="num">{{.Text}}</td>{{else}}<td>{{.Text}}</td>{{end}}{{end}}</tr>
{{- end}}
</table>
{{- else}}
<p>No runs found.</p>
{{- end}}
</body>
</html>
`))

// WriteHTML writes r as a standalone HTML page.
func WriteHTML(w io.Writer, r *Report) error {
	title := r.Title
	if title == "" {
		title = "Scaling"
	}
	data := struct {
		Title   string
		Chart   string
		Columns []string
		Rows    []htmlRow
	}{Title: title, Chart: r.Chart, Columns: r.Columns}

	for _, p := range r.Points {
		var row htmlRow
		for _, col := range r.Columns {
			s, _ := value(p, col, &r.Options)
			row.Cells = append(row.Cells, htmlCell{s, numeric(s)})
		}
		data.Rows = append(data.Rows, row)
	}
	return htmlTemplate.Execute(w, data)
}
