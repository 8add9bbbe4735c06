// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package profile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"gonum.org/v1/plot/vg"

	"github.com/pdelab/scaling/artifact"
	"github.com/pdelab/scaling/chart"
	"github.com/pdelab/scaling/scaling"
)

func TestPresets(t *testing.T) {
	if diff := cmp.Diff([]string{"harness", "strong"}, Presets()); diff != "" {
		t.Errorf("Presets mismatch (-want +got):\n%s", diff)
	}
	for _, name := range Presets() {
		p, err := Preset(name)
		if err != nil {
			t.Fatal(err)
		}
		if err := p.Validate(); err != nil {
			t.Errorf("preset %s: %v", name, err)
		}
	}
	if _, err := Preset("weak"); err == nil {
		t.Error("Preset(weak) succeeded, want error")
	}
}

func TestPresetIsCopy(t *testing.T) {
	p, _ := Preset("strong")
	p.Charts[0] = "walltime"
	p.Dir = "elsewhere"
	q, _ := Preset("strong")
	if q.Charts[0] != "speedup" || q.Dir != "artifacts/scaling" {
		t.Errorf("modifying a preset leaked into the next copy: %+v", q)
	}
}

func TestStrong(t *testing.T) {
	p, _ := Preset("strong")
	if diff := cmp.Diff(artifact.Layout{Pattern: "run_*", ConfigFile: "config.json", MetricsFile: "metrics.json"}, p.ArtifactLayout()); diff != "" {
		t.Errorf("layout mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(scaling.DefaultFields, p.ScalingFields()); diff != "" {
		t.Errorf("fields mismatch (-want +got):\n%s", diff)
	}
	opts, err := p.ChartOptions()
	if err != nil {
		t.Fatal(err)
	}
	want := chart.Options{
		Panels: []chart.Panel{chart.Speedup, chart.Efficiency},
		Unit:   "s",
		Width:  12 * vg.Inch,
		Height: 5 * vg.Inch,
		DPI:    300,
	}
	if diff := cmp.Diff(want, opts); diff != "" {
		t.Errorf("chart options mismatch (-want +got):\n%s", diff)
	}
}

func TestParse(t *testing.T) {
	p, err := Parse([]byte(`
base: harness
name: nightly
dir: results/nightly
fields:
  wall_time: timing.totalMs
charts: [walltime]
output:
  chart: results/nightly/walltime.svg
  csv: results/nightly/summary.csv
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	want, _ := Preset("harness")
	want.Name = "nightly"
	want.Base = "harness"
	want.Dir = "results/nightly"
	want.Fields.WallTime = "timing.totalMs"
	want.Output = Output{Chart: "results/nightly/walltime.svg", CSV: "results/nightly/summary.csv"}
	if diff := cmp.Diff(want, p); diff != "" {
		t.Errorf("Parse mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"env.availableProcessors", "timing.totalMs"}, p.Require()); diff != "" {
		t.Errorf("Require mismatch (-want +got):\n%s", diff)
	}
}

func TestParseDefaultBase(t *testing.T) {
	p, err := Parse([]byte("aggregate: true\n"))
	if err != nil {
		t.Fatal(err)
	}
	if p.Base != DefaultPreset || !p.Aggregate || !p.Derive {
		t.Errorf("Parse(aggregate only) = %+v, want the %s preset with aggregation", p, DefaultPreset)
	}

	if p, err := Parse(nil); err != nil || p.Name != "strong" {
		t.Errorf("Parse(empty) = %+v, %v; want the strong preset", p, err)
	}
}

func TestParseErrors(t *testing.T) {
	for _, test := range []struct {
		yaml string
		want string
	}{
		{"base: weak\n", "unknown profile"},
		{"colums: [threads]\n", "colums"},
		{"dir: ''\n", "dir is empty"},
		{"fields: {threads: ''}\n", "fields.threads"},
		{"layout: {metrics_file: ''}\n", "metrics_file"},
		{"charts: [speedup, latency]\n", "latency"},
		{"charts: []\n", "no charts"},
		{"derive: false\n", "needs derive"},
		{"geometry: {width: 0}\n", "geometry"},
		{"geometry: {dpi: -1}\n", "dpi"},
		{"dir: [a, b]\n", "cannot unmarshal"},
	} {
		_, err := Parse([]byte(test.yaml))
		if err == nil || !strings.Contains(err.Error(), test.want) {
			t.Errorf("Parse(%q) error = %v, want error containing %q", test.yaml, err, test.want)
		}
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scaling.yaml")
	if err := os.WriteFile(path, []byte("base: strong\ndir: out\nbogus: 1\n"), 0o666); err != nil {
		t.Fatal(err)
	}
	_, err := Load(path)
	if err == nil || !strings.HasPrefix(err.Error(), path+": ") {
		t.Errorf("Load error = %v, want one naming %s", err, path)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); !os.IsNotExist(err) {
		t.Errorf("Load(missing) error = %v, want not-exist", err)
	}
}
