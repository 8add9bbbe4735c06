// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package profile describes where a family of scaling runs lives,
// which of their fields hold the measurements, and what to produce
// from them.
//
// Profiles are YAML documents. A profile names a built-in preset as
// its base and overrides some of its settings:
//
//	base: harness
//	dir: results/nightly
//	fields:
//	  wall_time: timing.totalMs
//	output:
//	  chart: results/nightly/walltime.svg
package profile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"gonum.org/v1/plot/vg"
	"gopkg.in/yaml.v3"

	"github.com/pdelab/scaling/artifact"
	"github.com/pdelab/scaling/chart"
	"github.com/pdelab/scaling/scaling"
)

// A Profile configures one analysis.
type Profile struct {
	// Name identifies the profile in diagnostics.
	Name string `yaml:"name"`

	// Base is the preset this profile starts from. It is only
	// meaningful in a profile file.
	Base string `yaml:"base,omitempty"`

	// Title prefixes chart titles.
	Title string `yaml:"title,omitempty"`

	// Dir is the artifact base directory.
	Dir string `yaml:"dir"`

	Layout Layout `yaml:"layout"`
	Fields Fields `yaml:"fields"`

	// Unit labels wall times. Values are never converted.
	Unit string `yaml:"unit"`

	// Derive enables speedup and efficiency.
	Derive bool `yaml:"derive"`

	// Aggregate folds repeated runs at a thread count into their
	// median before deriving.
	Aggregate bool `yaml:"aggregate"`

	// Charts lists the chart panels, left to right.
	Charts []string `yaml:"charts"`

	// Columns lists the fields printed in the console summary.
	Columns []string `yaml:"columns"`

	Output   Output   `yaml:"output"`
	Geometry Geometry `yaml:"geometry"`
}

// Layout is the YAML form of artifact.Layout.
type Layout struct {
	Pattern     string `yaml:"pattern"`
	ConfigFile  string `yaml:"config_file"`
	MetricsFile string `yaml:"metrics_file"`
	Probe       bool   `yaml:"probe"`
}

// Fields is the YAML form of scaling.Fields.
type Fields struct {
	Threads  string `yaml:"threads"`
	WallTime string `yaml:"wall_time"`
}

// Output names the files an analysis writes. An empty path disables
// that output.
type Output struct {
	Chart string `yaml:"chart"`
	CSV   string `yaml:"csv"`
	HTML  string `yaml:"html"`
}

// Geometry is the chart size in inches and its raster resolution.
type Geometry struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
	DPI    int     `yaml:"dpi"`
}

// ArtifactLayout returns p's layout for artifact.NewReader.
func (p *Profile) ArtifactLayout() artifact.Layout {
	return artifact.Layout{
		Pattern:     p.Layout.Pattern,
		ConfigFile:  p.Layout.ConfigFile,
		MetricsFile: p.Layout.MetricsFile,
		Probe:       p.Layout.Probe,
	}
}

// ScalingFields returns the measurement fields of p.
func (p *Profile) ScalingFields() scaling.Fields {
	return scaling.Fields{Threads: p.Fields.Threads, WallTime: p.Fields.WallTime}
}

// Require returns the fields a run must have to be analyzed.
func (p *Profile) Require() []string {
	return []string{p.Fields.Threads, p.Fields.WallTime}
}

// Panels parses p's chart list.
func (p *Profile) Panels() ([]chart.Panel, error) {
	var panels []chart.Panel
	for _, c := range p.Charts {
		ps, err := chart.ParsePanels(c)
		if err != nil {
			return nil, err
		}
		panels = append(panels, ps...)
	}
	if len(panels) == 0 {
		return nil, errors.New("no charts selected")
	}
	return panels, nil
}

// ChartOptions returns the rendering options of p.
func (p *Profile) ChartOptions() (chart.Options, error) {
	panels, err := p.Panels()
	if err != nil {
		return chart.Options{}, err
	}
	return chart.Options{
		Panels: panels,
		Title:  p.Title,
		Unit:   p.Unit,
		Width:  vg.Length(p.Geometry.Width) * vg.Inch,
		Height: vg.Length(p.Geometry.Height) * vg.Inch,
		DPI:    p.Geometry.DPI,
	}, nil
}

// Validate checks that p describes a runnable analysis.
func (p *Profile) Validate() error {
	if p.Dir == "" {
		return errors.New("dir is empty")
	}
	if p.Layout.MetricsFile == "" {
		return errors.New("layout.metrics_file is empty")
	}
	if p.Fields.Threads == "" {
		return errors.New("fields.threads is empty")
	}
	if p.Fields.WallTime == "" {
		return errors.New("fields.wall_time is empty")
	}
	panels, err := p.Panels()
	if err != nil {
		return fmt.Errorf("charts: %w", err)
	}
	if !p.Derive {
		for _, panel := range panels {
			if panel != chart.WallTime {
				return fmt.Errorf("chart %s needs derive: true", panel)
			}
		}
	}
	g := p.Geometry
	if g.Width <= 0 || g.Height <= 0 {
		return fmt.Errorf("geometry %gx%g in is not positive", g.Width, g.Height)
	}
	if g.DPI <= 0 {
		return fmt.Errorf("geometry.dpi %d is not positive", g.DPI)
	}
	return nil
}

var presets = map[string]func() *Profile{
	"strong":  strong,
	"harness": harness,
}

// strong analyzes the solver's strong-scaling sweep: one run_*
// directory per thread count, each with the run's config.json and
// metrics.json.
func strong() *Profile {
	return &Profile{
		Name: "strong",
		Dir:  "artifacts/scaling",
		Layout: Layout{
			Pattern:     "run_*",
			ConfigFile:  "config.json",
			MetricsFile: "metrics.json",
		},
		Fields:  Fields{Threads: "threads", WallTime: "wallTimeSeconds"},
		Unit:    "s",
		Derive:  true,
		Charts:  []string{"speedup", "efficiency"},
		Columns: []string{"threads", "wallTimeSeconds", "totalPcgIters", "errorL2"},
		Output: Output{
			Chart: "artifacts/scaling_plot.png",
			CSV:   "artifacts/scaling_summary.csv",
		},
		Geometry: Geometry{Width: 12, Height: 5, DPI: 300},
	}
}

// harness plots the raw wall time of every artifact directory that
// holds a metrics.json, keyed by the processors the JVM saw.
func harness() *Profile {
	return &Profile{
		Name: "harness",
		Dir:  "artifacts",
		Layout: Layout{
			Pattern:     "*",
			MetricsFile: "metrics.json",
			Probe:       true,
		},
		Fields:  Fields{Threads: "env.availableProcessors", WallTime: "totalWallTimeMs"},
		Unit:    "ms",
		Charts:  []string{"walltime"},
		Columns: []string{"env.availableProcessors", "totalWallTimeMs"},
		Output: Output{
			Chart: "scaling_plot.png",
		},
		Geometry: Geometry{Width: 8, Height: 6, DPI: 100},
	}
}

// DefaultPreset is the preset used when none is named.
const DefaultPreset = "strong"

// Preset returns a new copy of the named built-in profile.
func Preset(name string) (*Profile, error) {
	f, ok := presets[name]
	if !ok {
		return nil, fmt.Errorf("unknown profile %q (want one of %v)", name, Presets())
	}
	return f(), nil
}

// Presets returns the names of the built-in profiles.
func Presets() []string {
	var names []string
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Load reads a profile file.
func Load(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	p, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// Parse parses a YAML profile over the preset it names and validates
// the result. Unknown keys are errors.
func Parse(data []byte) (*Profile, error) {
	var head struct {
		Base string `yaml:"base"`
	}
	if err := yaml.Unmarshal(data, &head); err != nil {
		return nil, err
	}
	base := head.Base
	if base == "" {
		base = DefaultPreset
	}
	p, err := Preset(base)
	if err != nil {
		return nil, err
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(p); err != nil && err != io.EOF {
		return nil, err
	}
	p.Base = base
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}
