// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package sink opens output destinations by name. A name is either a
// local file path or a Google Cloud Storage object written as
// gs://bucket/object.
package sink

import (
	"context"
	"fmt"
	"io"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"

	"cloud.google.com/go/storage"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
)

const gcsPrefix = "gs://"

// ParseGCS splits a gs://bucket/object name. ok is false if name is
// not a Cloud Storage name.
func ParseGCS(name string) (bucket, object string, ok bool, err error) {
	if !strings.HasPrefix(name, gcsPrefix) {
		return "", "", false, nil
	}
	bucket, object, _ = strings.Cut(strings.TrimPrefix(name, gcsPrefix), "/")
	if bucket == "" || object == "" || strings.HasSuffix(object, "/") {
		return "", "", true, fmt.Errorf("%s: want gs://bucket/object", name)
	}
	return bucket, object, true, nil
}

// Create opens name for writing, replacing any existing content. The
// content is complete once Close returns without error. Parent
// directories of a local file are created as needed.
func Create(ctx context.Context, name string) (io.WriteCloser, error) {
	bucket, object, isGCS, err := ParseGCS(name)
	if err != nil {
		return nil, err
	}
	if !isGCS {
		if dir := filepath.Dir(name); dir != "." {
			if err := os.MkdirAll(dir, 0o777); err != nil {
				return nil, err
			}
		}
		return os.Create(name)
	}

	client, err := newClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	w := client.Bucket(bucket).Object(object).NewWriter(ctx)
	w.ContentType = mime.TypeByExtension(path.Ext(object))
	return &gcsWriter{Writer: w, client: client, name: name}, nil
}

// newClient connects to Cloud Storage with the application default
// credentials. It is a variable for tests.
var newClient = func(ctx context.Context) (*storage.Client, error) {
	creds, err := google.FindDefaultCredentials(ctx, storage.ScopeReadWrite)
	if err != nil {
		return nil, err
	}
	return storage.NewClient(ctx, option.WithTokenSource(creds.TokenSource))
}

type gcsWriter struct {
	*storage.Writer
	client *storage.Client
	name   string
}

func (w *gcsWriter) Close() error {
	err := w.Writer.Close()
	if cerr := w.client.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("%s: %w", w.name, err)
	}
	return nil
}

// IsLocal reports whether name is a local file path.
func IsLocal(name string) bool {
	return !strings.HasPrefix(name, gcsPrefix)
}
