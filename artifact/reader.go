// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package artifact

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

// A Layout describes how a harness lays out its run directories.
type Layout struct {
	// Pattern is a filepath.Match pattern selecting run
	// directories among the immediate children of the base
	// directory, such as "run_*".
	Pattern string

	// ConfigFile is the name of the configuration document in
	// each run directory. If empty, runs have no configuration
	// document and their fields come from MetricsFile alone.
	ConfigFile string

	// MetricsFile is the name of the metrics document in each run
	// directory.
	MetricsFile string

	// Probe restricts candidate directories to those containing
	// MetricsFile. Other directories are ignored silently instead
	// of being reported as malformed.
	Probe bool
}

// DefaultLayout is the layout of the harness's scaling runs.
var DefaultLayout = Layout{
	Pattern:     "run_*",
	ConfigFile:  "config.json",
	MetricsFile: "metrics.json",
}

// A Record is either a *Run or a *MalformedError.
type Record interface {
	isRecord()
}

// A MalformedError reports a run directory whose artifacts are
// missing or cannot be parsed.
type MalformedError struct {
	Dir  string // run directory
	File string // offending document, if any
	Err  error
}

func (*MalformedError) isRecord() {}

func (e *MalformedError) Error() string {
	if e.File == "" {
		return fmt.Sprintf("%s: %v", e.Dir, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Dir, e.File, e.Err)
}

func (e *MalformedError) Unwrap() error { return e.Err }

// A BaseDirNotFoundError reports that the directory holding the run
// directories does not exist.
type BaseDirNotFoundError struct {
	Dir string
}

func (e *BaseDirNotFoundError) Error() string {
	return fmt.Sprintf("artifact directory %s not found", e.Dir)
}

// A Reader reads runs from the run directories under a base
// directory.
//
// Its API is modeled on bufio.Scanner. Scan advances to the next run
// directory; Result returns what was read from it.
type Reader struct {
	// Require lists field paths (see Run.Lookup) every run must
	// carry. A run missing one of them is malformed.
	Require []string

	base   string
	layout Layout

	// dirs is the queue of remaining run directories, or nil if
	// the Reader has not started yet.
	dirs   []string
	result Record
	err    error
}

// NewReader returns a Reader over the run directories in base.
func NewReader(base string, layout Layout) *Reader {
	return &Reader{base: base, layout: layout}
}

// init lists the candidate run directories.
func (r *Reader) init() {
	r.dirs = []string{}

	info, err := os.Stat(r.base)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			r.err = &BaseDirNotFoundError{r.base}
		} else {
			r.err = err
		}
		return
	}
	if !info.IsDir() {
		r.err = fmt.Errorf("%s is not a directory", r.base)
		return
	}

	pattern := r.layout.Pattern
	if pattern == "" {
		pattern = "*"
	}
	if _, err := filepath.Match(pattern, ""); err != nil {
		r.err = fmt.Errorf("run directory pattern %q: %w", pattern, err)
		return
	}
	// The pattern applies to entry names only; base may hold
	// glob metacharacters.
	entries, err := os.ReadDir(r.base)
	if err != nil {
		r.err = err
		return
	}
	for _, e := range entries {
		if ok, _ := filepath.Match(pattern, e.Name()); !ok {
			continue
		}
		m := filepath.Join(r.base, e.Name())
		if info, err := os.Stat(m); err != nil || !info.IsDir() {
			continue
		}
		if r.layout.Probe {
			if _, err := os.Stat(filepath.Join(m, r.layout.MetricsFile)); err != nil {
				continue
			}
		}
		r.dirs = append(r.dirs, m)
	}
	sort.Strings(r.dirs)
}

// Scan advances the Reader to the next run directory and reports
// whether there was one. The caller should use Result to get what
// was read. When Scan returns false, Err reports any error that
// prevented listing the base directory.
func (r *Reader) Scan() bool {
	if r.err != nil {
		return false
	}
	if r.dirs == nil {
		r.init()
		if r.err != nil {
			return false
		}
	}
	if len(r.dirs) == 0 {
		return false
	}
	dir := r.dirs[0]
	r.dirs = r.dirs[1:]
	r.result = r.read(dir)
	return true
}

// Result returns the record read by the last call to Scan. It is a
// *Run if the directory held valid artifacts and a *MalformedError
// otherwise.
func (r *Reader) Result() Record {
	return r.result
}

// Err returns the error that stopped Scan, if any. Malformed run
// directories are not errors; they are returned by Result.
func (r *Reader) Err() error {
	return r.err
}

func (r *Reader) read(dir string) Record {
	var config map[string]interface{}
	if r.layout.ConfigFile != "" {
		doc, err := readDoc(filepath.Join(dir, r.layout.ConfigFile))
		if err != nil {
			return &MalformedError{dir, r.layout.ConfigFile, err}
		}
		config = doc
	}
	metrics, err := readDoc(filepath.Join(dir, r.layout.MetricsFile))
	if err != nil {
		return &MalformedError{dir, r.layout.MetricsFile, err}
	}

	run := &Run{Dir: dir, Fields: Merge(config, metrics)}
	for _, path := range r.Require {
		if _, ok := run.Lookup(path); !ok {
			return &MalformedError{dir, "", fmt.Errorf("missing field %q", path)}
		}
	}
	return run
}

// readDoc reads the JSON object in file.
func readDoc(file string) (map[string]interface{}, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		var pe *fs.PathError
		if errors.As(err, &pe) {
			// The caller already names the file.
			return nil, pe.Err
		}
		return nil, err
	}
	var doc map[string]interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, errors.New("document is not a JSON object")
	}
	return doc, nil
}
