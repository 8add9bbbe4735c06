// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Scalingplot summarizes and charts the strong scaling of a parallel
// solver from the artifacts of its benchmark runs.
//
// Usage:
//
//	scalingplot [flags]
//
// Each run of the solver leaves a directory holding a JSON metrics
// document and, depending on the harness, a JSON config document.
// Scalingplot reads every run directory under the artifact directory,
// computes speedup and parallel efficiency relative to the
// single-thread run, prints a summary table, and writes a chart and
// optionally CSV and HTML summaries.
//
// Which directories are read, which fields hold the thread count and
// wall time, and what is written are described by a profile. The
// built-in profiles are:
//
//	strong   run_* directories under artifacts/scaling with config.json
//	         and metrics.json; speedup and efficiency charts
//	harness  any directory under artifacts with a metrics.json; wall
//	         time against env.availableProcessors
//
// -config reads a YAML profile that starts from one of these and
// overrides some of its settings. Flags override the profile.
//
// With -driver and -dsn, the analyzed series is also stored in a
// sqlite3 or MySQL database. A mysql DSN may name a Cloud SQL
// instance as "user@cloudsql(project:region:instance)/dbname".
//
// Output names may be gs://bucket/object to write to Google Cloud
// Storage with the application default credentials.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/pdelab/scaling/artifact"
	"github.com/pdelab/scaling/chart"
	"github.com/pdelab/scaling/export"
	"github.com/pdelab/scaling/internal/sink"
	"github.com/pdelab/scaling/profile"
	"github.com/pdelab/scaling/scaling"
	"github.com/pdelab/scaling/storage/db"

	_ "github.com/GoogleCloudPlatform/cloudsql-proxy/proxy/dialers/mysql"
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/pdelab/scaling/storage/db/sqlite3"
)

func main() {
	log.SetPrefix("scalingplot: ")
	log.SetFlags(0)
	if err := scalingplot(os.Stdout, os.Stderr, os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		log.Fatal(err)
	}
}

// logTime controls timestamps in log lines.
var logTime = true

func scalingplot(w, wErr io.Writer, args []string) error {
	fs := flag.NewFlagSet("scalingplot", flag.ContinueOnError)
	fs.SetOutput(wErr)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: scalingplot [flags]\n")
		fs.PrintDefaults()
	}
	flagProfile := fs.String("profile", profile.DefaultPreset, "use built-in `profile` ("+strings.Join(profile.Presets(), ", ")+")")
	flagConfig := fs.String("config", "", "read the profile from YAML `file`")
	flagDir := fs.String("dir", "", "read runs from artifact `directory`")
	flagOut := fs.String("o", "", "write the chart to `file`; the extension selects png, svg, pdf, eps, jpg or tif")
	flagCSV := fs.String("csv", "", "write the CSV summary to `file`")
	flagHTML := fs.String("html", "", "write an HTML report to `file`")
	flagCharts := fs.String("charts", "", "comma-separated `list` of charts: speedup, efficiency, walltime")
	flagAggregate := fs.Bool("aggregate", false, "fold repeated runs at a thread count into their median")
	flagDriver := fs.String("driver", "", "store the series in a database using `driver` sqlite3 or mysql")
	flagDSN := fs.String("dsn", "", "database `source` name for -driver")
	flagLabel := fs.String("label", "", "store the series under `label` (default host name)")
	flagVerbose := fs.Bool("v", false, "log debug messages")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		fs.Usage()
		return fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}
	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	level := hclog.Info
	if *flagVerbose {
		level = hclog.Debug
	}
	logger := hclog.New(&hclog.LoggerOptions{
		Name:        "scalingplot",
		Level:       level,
		Output:      wErr,
		DisableTime: !logTime,
	})

	// Assemble the profile: preset or file, then flags.
	var p *profile.Profile
	var err error
	switch {
	case set["config"] && set["profile"]:
		return errors.New("-profile and -config are exclusive; name the preset as base: in the file")
	case set["config"]:
		p, err = profile.Load(*flagConfig)
	default:
		p, err = profile.Preset(*flagProfile)
	}
	if err != nil {
		return err
	}
	if set["dir"] {
		p.Dir = *flagDir
	}
	if set["o"] {
		p.Output.Chart = *flagOut
	}
	if set["csv"] {
		p.Output.CSV = *flagCSV
	}
	if set["html"] {
		p.Output.HTML = *flagHTML
	}
	if set["charts"] {
		p.Charts = []string{*flagCharts}
	}
	if set["aggregate"] {
		p.Aggregate = *flagAggregate
	}
	if err := p.Validate(); err != nil {
		return fmt.Errorf("profile %s: %w", p.Name, err)
	}
	if *flagDriver != "" && *flagDSN == "" {
		return errors.New("-driver requires -dsn")
	}
	logger.Debug("using profile", "profile", p.Name, "dir", p.Dir, "threads", p.Fields.Threads, "wall_time", p.Fields.WallTime)

	// Load.
	loader := &artifact.Loader{
		Layout:  p.ArtifactLayout(),
		Require: p.Require(),
		Warn: func(format string, args ...interface{}) {
			logger.Warn(fmt.Sprintf(format, args...))
		},
	}
	runs, err := loader.Load(p.Dir)
	if err != nil {
		return err
	}
	logger.Debug("loaded runs", "runs", len(runs), "skipped", loader.Skipped)
	if len(runs) == 0 {
		if !loader.Missing {
			logger.Warn("no runs found", "dir", p.Dir)
		}
		return nil
	}

	// Analyze.
	points, err := scaling.Extract(runs, p.ScalingFields())
	if err != nil {
		return err
	}
	if p.Aggregate {
		points = scaling.Aggregate(points)
		logger.Debug("aggregated runs", "runs", len(runs), "points", len(points))
	}
	if p.Derive {
		if err := scaling.Derive(points); err != nil {
			return err
		}
	} else {
		scaling.Sort(points)
	}

	// Report.
	opts := export.Options{Fields: p.ScalingFields(), Aggregated: p.Aggregate}
	if err := export.WriteTable(w, points, p.Columns, opts); err != nil {
		return err
	}

	ctx := context.Background()
	if name := p.Output.CSV; name != "" {
		err := writeTo(ctx, name, func(w io.Writer) error {
			return export.WriteCSV(w, points, opts)
		})
		if err != nil {
			return err
		}
		logger.Info("wrote summary", "file", name)
	}
	if name := p.Output.Chart; name != "" {
		chartOpts, err := p.ChartOptions()
		if err != nil {
			return err
		}
		if sink.IsLocal(name) {
			err = chart.Save(name, points, chartOpts)
		} else {
			err = writeTo(ctx, name, func(w io.Writer) error {
				return chart.Render(w, chart.Format(name), points, chartOpts)
			})
		}
		if err != nil {
			return err
		}
		logger.Info("wrote chart", "file", name)
	}
	if name := p.Output.HTML; name != "" {
		title := p.Title
		if title == "" {
			title = "Scaling: " + p.Name
		}
		report := &export.Report{
			Title:   title,
			Chart:   chartURL(name, p.Output.Chart),
			Columns: reportColumns(p),
			Points:  points,
			Options: opts,
		}
		err := writeTo(ctx, name, func(w io.Writer) error {
			return export.WriteHTML(w, report)
		})
		if err != nil {
			return err
		}
		logger.Info("wrote report", "file", name)
	}

	// Store.
	if *flagDriver != "" {
		label := *flagLabel
		if label == "" {
			label, _ = os.Hostname()
		}
		id, err := store(ctx, *flagDriver, *flagDSN, &db.Series{
			Label:   label,
			Profile: p.Name,
			Unit:    p.Unit,
			Derived: p.Derive,
		}, points)
		if err != nil {
			return err
		}
		logger.Info("stored series", "id", id, "label", label)
	}
	return nil
}

// writeTo creates name and fills it with write. If write fails, a
// partially written local file is removed.
func writeTo(ctx context.Context, name string, write func(io.Writer) error) error {
	f, err := sink.Create(ctx, name)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		if sink.IsLocal(name) {
			os.Remove(name)
		}
		return fmt.Errorf("%s: %w", name, err)
	}
	return f.Close()
}

// chartURL returns the address of the chart relative to the report,
// or "" if there is no chart.
func chartURL(report, chartName string) string {
	if chartName == "" {
		return ""
	}
	if bucket, object, isGCS, err := sink.ParseGCS(chartName); isGCS {
		if err != nil {
			return ""
		}
		return "https://storage.googleapis.com/" + bucket + "/" + object
	}
	if !sink.IsLocal(report) {
		return ""
	}
	rel, err := filepath.Rel(filepath.Dir(report), chartName)
	if err != nil {
		return ""
	}
	return filepath.ToSlash(rel)
}

// reportColumns adds the derived columns to the console columns.
func reportColumns(p *profile.Profile) []string {
	cols := append([]string(nil), p.Columns...)
	if p.Derive {
		cols = append(cols, export.Speedup, export.Efficiency)
	}
	if p.Aggregate {
		cols = append(cols, export.Runs)
	}
	return cols
}

func store(ctx context.Context, driver, dsn string, s *db.Series, points []*scaling.Point) (int64, error) {
	d, err := db.OpenSQL(driver, dsn)
	if err != nil {
		return 0, err
	}
	defer d.Close()
	if err := d.SaveSeries(ctx, s, points); err != nil {
		return 0, err
	}
	return s.ID, nil
}
