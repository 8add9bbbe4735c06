// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package artifact reads the per-run artifacts written by the PDE
// benchmark harness.
//
// Each run of the harness leaves one directory containing a
// configuration document and a metrics document, both JSON objects.
// A Reader walks the run directories under a base directory and
// yields one Run per directory, with the two documents merged into a
// single set of fields.
package artifact

import (
	"sort"
	"strconv"
	"strings"

	"github.com/PaesslerAG/jsonpath"
)

// A Run is the merged configuration and metrics of a single harness
// run.
type Run struct {
	// Dir is the directory the run was read from. It identifies
	// the run in diagnostics only.
	Dir string

	// Fields is the union of the top-level keys of the
	// configuration and metrics documents. See Merge.
	Fields map[string]interface{}
}

func (*Run) isRecord() {}

// Merge returns the union of the top-level keys of config and
// metrics. When both documents carry the same key, the value from
// metrics wins: a run's measured values always take precedence over
// the values it was configured with.
//
// Merge does not modify either argument and does not merge nested
// objects; a nested object in metrics replaces the one in config
// wholesale.
func Merge(config, metrics map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(config)+len(metrics))
	for k, v := range config {
		out[k] = v
	}
	for k, v := range metrics {
		out[k] = v
	}
	return out
}

// Keys returns the field names of r in sorted order.
func (r *Run) Keys() []string {
	keys := make([]string, 0, len(r.Fields))
	for k := range r.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Lookup returns the value of the field at path.
//
// path is either the name of a top-level field, a dotted path into
// nested objects such as "env.availableProcessors", or a JSONPath
// expression beginning with "$".
func (r *Run) Lookup(path string) (interface{}, bool) {
	if path == "" {
		return nil, false
	}
	if !strings.HasPrefix(path, "$") {
		if v, ok := r.Fields[path]; ok {
			return v, true
		}
		if !strings.Contains(path, ".") {
			return nil, false
		}
		path = dottedPath(path)
	}
	v, err := jsonpath.Get(path, map[string]interface{}(r.Fields))
	if err != nil {
		return nil, false
	}
	return v, true
}

// dottedPath converts "a.b.c" into the JSONPath `$["a"]["b"]["c"]`.
func dottedPath(path string) string {
	var b strings.Builder
	b.WriteString("$")
	for _, elt := range strings.Split(path, ".") {
		b.WriteString("[")
		b.WriteString(strconv.Quote(elt))
		b.WriteString("]")
	}
	return b.String()
}
