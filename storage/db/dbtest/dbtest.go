// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package dbtest opens scratch scaling databases for tests.
//
// By default each test gets a private in-memory sqlite3 database.
// With -mysql, each test gets a freshly created database on that
// MySQL server instead, which is dropped when the test ends. The
// server may be a Cloud SQL instance:
//
//	go test ./storage/... -mysql 'root:@cloudsql(project:region:instance)/'
package dbtest

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"flag"
	"strings"
	"testing"

	_ "github.com/GoogleCloudPlatform/cloudsql-proxy/proxy/dialers/mysql"
	_ "github.com/go-sql-driver/mysql"

	"github.com/pdelab/scaling/storage/db"
	_ "github.com/pdelab/scaling/storage/db/sqlite3"
)

var mysqlServer = flag.String("mysql", "", "run storage tests against scratch databases on the MySQL server with this `DSN` (ending in /)")

// scratchMySQL creates an empty database on the -mysql server and
// returns its DSN. The database is dropped when t ends.
func scratchMySQL(t *testing.T) string {
	server := *mysqlServer
	if !strings.HasSuffix(server, "/") {
		t.Fatalf("-mysql %q: DSN must end in / and name no database", server)
	}
	conn, err := sql.Open("mysql", server)
	if err != nil {
		t.Fatal(err)
	}

	suffix := make([]byte, 4)
	if _, err := rand.Read(suffix); err != nil {
		conn.Close()
		t.Fatal(err)
	}
	name := "scaling_test_" + hex.EncodeToString(suffix)
	if _, err := conn.Exec("CREATE DATABASE " + name); err != nil {
		conn.Close()
		t.Fatalf("creating scratch database: %v", err)
	}
	t.Logf("scratch database %s", name)

	t.Cleanup(func() {
		if _, err := conn.Exec("DROP DATABASE " + name); err != nil {
			t.Errorf("dropping scratch database %s: %v", name, err)
		}
		conn.Close()
	})
	return server + name
}

// NewDB opens an empty scaling database for t and closes it when t
// ends.
func NewDB(t *testing.T) *db.DB {
	t.Helper()
	driver, dsn := "sqlite3", ":memory:"
	if *mysqlServer != "" {
		driver, dsn = "mysql", scratchMySQL(t)
	}
	d, err := db.OpenSQL(driver, dsn)
	if err != nil {
		t.Fatalf("opening %s database: %v", driver, err)
	}
	// Registered after scratchMySQL's cleanup, so it runs first.
	t.Cleanup(func() { d.Close() })

	n, err := d.CountSeries(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Fatalf("new %s database holds %d series, want 0", driver, n)
	}
	return d
}

