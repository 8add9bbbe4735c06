// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package db stores analyzed scaling series in a SQL database so that
// curves from different machines and revisions can be compared later.
package db

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/pdelab/scaling/artifact"
	"github.com/pdelab/scaling/scaling"
)

// DB is a high-level interface to a scaling database. It's safe for
// concurrent use by multiple goroutines.
type DB struct {
	sql *sql.DB // underlying database connection
	// prepared statements
	insertSeries *sql.Stmt
	insertPoint  *sql.Stmt
}

// OpenSQL creates a DB backed by a SQL database. The parameters are
// the same as the parameters for sql.Open. Only mysql and sqlite3 are
// explicitly supported; other database engines will receive MySQL
// query syntax which may or may not be compatible.
func OpenSQL(driverName, dataSourceName string) (*DB, error) {
	db, err := sql.Open(driverName, dataSourceName)
	if err != nil {
		return nil, err
	}
	if hook := openHooks[driverName]; hook != nil {
		if err := hook(db); err != nil {
			db.Close()
			return nil, err
		}
	}
	d := &DB{sql: db}
	if err := d.createTables(driverName); err != nil {
		db.Close()
		return nil, err
	}
	if err := d.prepareStatements(); err != nil {
		db.Close()
		return nil, err
	}
	return d, nil
}

var openHooks = make(map[string]func(*sql.DB) error)

// RegisterOpenHook registers a hook to be called after opening a
// connection to driverName. It must be called from an init function.
func RegisterOpenHook(driverName string, hook func(*sql.DB) error) {
	openHooks[driverName] = hook
}

// createTmpl is the template used to prepare the CREATE statements
// for the database. It is evaluated with . as a map containing one
// entry whose key is the driver name.
var createTmpl = template.Must(template.New("create").Parse(`
CREATE TABLE IF NOT EXISTS Series (
	SeriesID {{if .sqlite3}}INTEGER PRIMARY KEY AUTOINCREMENT{{else}}SERIAL PRIMARY KEY AUTO_INCREMENT{{end}},
	Label VARCHAR(255),
	Profile VARCHAR(255),
	Unit VARCHAR(32),
	Derived BOOLEAN,
	Created BIGINT
{{- if not .sqlite3}},
	Index (Label(100)){{end}}
);
CREATE TABLE IF NOT EXISTS Points (
	SeriesID BIGINT UNSIGNED,
	PointID BIGINT UNSIGNED,
	Dir VARCHAR(1024),
	Threads INT,
	WallTime DOUBLE,
	Runs INT,
	Speedup DOUBLE,
	Efficiency DOUBLE,
	Fields BLOB,
	PRIMARY KEY (SeriesID, PointID),
	FOREIGN KEY (SeriesID) REFERENCES Series(SeriesID) ON UPDATE CASCADE ON DELETE CASCADE
);
{{if .sqlite3}}
CREATE INDEX IF NOT EXISTS SeriesLabel ON Series(Label);
{{end}}
`))

// createTables creates any missing tables on the connection in
// db.sql. driverName is the same driver name passed to sql.Open and
// is used to select the correct syntax.
func (db *DB) createTables(driverName string) error {
	var buf bytes.Buffer
	if err := createTmpl.Execute(&buf, map[string]bool{driverName: true}); err != nil {
		return err
	}
	for _, q := range strings.Split(buf.String(), ";") {
		if strings.TrimSpace(q) == "" {
			continue
		}
		if _, err := db.sql.Exec(q); err != nil {
			return fmt.Errorf("create table: %v", err)
		}
	}
	return nil
}

// prepareStatements calls db.sql.Prepare on reusable SQL statements.
func (db *DB) prepareStatements() error {
	var err error
	db.insertSeries, err = db.sql.Prepare("INSERT INTO Series(Label, Profile, Unit, Derived, Created) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		return err
	}
	db.insertPoint, err = db.sql.Prepare("INSERT INTO Points(SeriesID, PointID, Dir, Threads, WallTime, Runs, Speedup, Efficiency, Fields) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)")
	if err != nil {
		return err
	}
	return nil
}

// A Series describes one stored scaling curve.
type Series struct {
	// ID is assigned by SaveSeries.
	ID int64

	// Label identifies the curve to people, such as a machine
	// name or a revision.
	Label string

	// Profile and Unit record how the curve was analyzed.
	Profile string
	Unit    string

	// Derived reports whether the points carry speedup and
	// efficiency.
	Derived bool

	// Created is set by SaveSeries.
	Created time.Time
}

// now is overridden by tests.
var now = time.Now

// SaveSeries stores s and its points in a single transaction and
// sets s.ID and s.Created.
func (db *DB) SaveSeries(ctx context.Context, s *Series, points []*scaling.Point) (err error) {
	tx, err := db.sql.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	created := now().UTC().Truncate(time.Second)
	res, err := tx.StmtContext(ctx, db.insertSeries).ExecContext(ctx, s.Label, s.Profile, s.Unit, s.Derived, created.Unix())
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}

	insert := tx.StmtContext(ctx, db.insertPoint)
	for i, p := range points {
		var dir string
		var fields []byte
		if p.Run != nil {
			dir = p.Run.Dir
			if fields, err = json.Marshal(p.Run.Fields); err != nil {
				return fmt.Errorf("%s: %v", dir, err)
			}
		}
		var speedup, efficiency sql.NullFloat64
		if p.Derived() {
			speedup = sql.NullFloat64{Float64: p.Speedup, Valid: true}
			efficiency = sql.NullFloat64{Float64: p.Efficiency, Valid: true}
		}
		if _, err := insert.ExecContext(ctx, id, i, dir, p.Threads, p.WallTime, p.Runs, speedup, efficiency, fields); err != nil {
			return err
		}
	}

	s.ID = id
	s.Created = created
	return nil
}

// ListSeries returns the stored series with the given label, or all
// series if label is empty, newest first.
func (db *DB) ListSeries(ctx context.Context, label string) ([]*Series, error) {
	q := "SELECT SeriesID, Label, Profile, Unit, Derived, Created FROM Series"
	var args []interface{}
	if label != "" {
		q += " WHERE Label = ?"
		args = append(args, label)
	}
	q += " ORDER BY SeriesID DESC"
	rows, err := db.sql.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []*Series
	for rows.Next() {
		s, err := scanSeries(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanSeries(row scanner) (*Series, error) {
	var s Series
	var created int64
	if err := row.Scan(&s.ID, &s.Label, &s.Profile, &s.Unit, &s.Derived, &created); err != nil {
		return nil, err
	}
	s.Created = time.Unix(created, 0).UTC()
	return &s, nil
}

// ErrNoSeries is returned by Points for an unknown series ID.
var ErrNoSeries = errors.New("no such series")

// Points returns the points of series id in their stored order. The
// points of a derived series are derived again, which reproduces the
// stored speedup and efficiency.
func (db *DB) Points(ctx context.Context, id int64) ([]*scaling.Point, error) {
	s, err := scanSeries(db.sql.QueryRowContext(ctx, "SELECT SeriesID, Label, Profile, Unit, Derived, Created FROM Series WHERE SeriesID = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("series %d: %w", id, ErrNoSeries)
	} else if err != nil {
		return nil, err
	}

	rows, err := db.sql.QueryContext(ctx, "SELECT Dir, Threads, WallTime, Runs, Fields FROM Points WHERE SeriesID = ? ORDER BY PointID", id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var points []*scaling.Point
	for rows.Next() {
		run := &artifact.Run{}
		p := &scaling.Point{Run: run}
		var fields []byte
		if err := rows.Scan(&run.Dir, &p.Threads, &p.WallTime, &p.Runs, &fields); err != nil {
			return nil, err
		}
		if len(fields) > 0 {
			if err := json.Unmarshal(fields, &run.Fields); err != nil {
				return nil, fmt.Errorf("series %d: %s: %v", id, run.Dir, err)
			}
		}
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if s.Derived && len(points) > 0 {
		if err := scaling.Derive(points); err != nil {
			return nil, fmt.Errorf("series %d: %w", id, err)
		}
	}
	return points, nil
}

// CountSeries returns the number of stored series.
func (db *DB) CountSeries(ctx context.Context) (int, error) {
	var n int
	err := db.sql.QueryRowContext(ctx, "SELECT COUNT(*) FROM Series").Scan(&n)
	return n, err
}

// Close closes the database connections, releasing any open resources.
func (db *DB) Close() error {
	if err := db.insertSeries.Close(); err != nil {
		return err
	}
	if err := db.insertPoint.Close(); err != nil {
		return err
	}
	return db.sql.Close()
}
