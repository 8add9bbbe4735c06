// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package sqlite3 registers the sqlite3 driver for db.OpenSQL.
// Import it for its side effect:
//
//	import _ "github.com/pdelab/scaling/storage/db/sqlite3"
package sqlite3

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdelab/scaling/storage/db"
)

func init() {
	db.RegisterOpenHook("sqlite3", func(d *sql.DB) error {
		// Every connection to ":memory:" opens a different
		// database, and the foreign_keys pragma is per connection.
		d.SetMaxOpenConns(1)
		_, err := d.Exec("PRAGMA foreign_keys = ON")
		return err
	})
}
