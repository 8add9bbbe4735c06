// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package artifact

import "errors"

// A Loader collects the valid runs under a base directory.
type Loader struct {
	Layout Layout

	// Require is passed to the Reader. See Reader.Require.
	Require []string

	// Warn is called for each diagnostic: once per skipped run
	// directory and once if the base directory does not exist.
	// If nil, diagnostics are dropped.
	Warn func(format string, args ...interface{})

	// Skipped and Missing describe the last call to Load: the
	// number of run directories left out and whether the base
	// directory was absent.
	Skipped int
	Missing bool
}

// Load returns the runs under base in directory-name order.
//
// Malformed run directories are reported through Warn and left out
// of the result. If base does not exist, Load reports that through
// Warn and returns no runs and a nil error. Any other failure to list
// base is returned as an error.
func (l *Loader) Load(base string) ([]*Run, error) {
	r := NewReader(base, l.Layout)
	r.Require = l.Require
	l.Skipped, l.Missing = 0, false

	var runs []*Run
	for r.Scan() {
		switch rec := r.Result().(type) {
		case *Run:
			runs = append(runs, rec)
		case *MalformedError:
			l.Skipped++
			l.warn("skipping run %v", rec)
		}
	}
	if err := r.Err(); err != nil {
		var nf *BaseDirNotFoundError
		if errors.As(err, &nf) {
			l.Missing = true
			l.warn("%v", nf)
			return nil, nil
		}
		return nil, err
	}
	return runs, nil
}

func (l *Loader) warn(format string, args ...interface{}) {
	if l.Warn != nil {
		l.Warn(format, args...)
	}
}
