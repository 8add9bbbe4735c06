// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package chart renders scaling curves as images.
package chart

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	// Vector formats for Render.
	_ "gonum.org/v1/plot/vg/vgeps"
	_ "gonum.org/v1/plot/vg/vgpdf"
	_ "gonum.org/v1/plot/vg/vgsvg"

	"github.com/pdelab/scaling/scaling"
)

// A Panel selects one of the charts drawn side by side in an image.
type Panel string

const (
	// Speedup plots measured speedup against thread count, over
	// the ideal linear speedup.
	Speedup Panel = "speedup"

	// Efficiency plots parallel efficiency against thread count.
	Efficiency Panel = "efficiency"

	// WallTime plots raw wall time against thread count.
	WallTime Panel = "walltime"
)

// ParsePanels parses a comma-separated list of panel names.
func ParsePanels(s string) ([]Panel, error) {
	var panels []Panel
	for _, name := range strings.Split(s, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		switch p := Panel(strings.ToLower(name)); p {
		case Speedup, Efficiency, WallTime:
			panels = append(panels, p)
		default:
			return nil, fmt.Errorf("unknown chart %q (want speedup, efficiency or walltime)", name)
		}
	}
	if len(panels) == 0 {
		return nil, errors.New("no charts selected")
	}
	return panels, nil
}

// ErrNotDerived is returned when a speedup or efficiency panel is
// requested for points that scaling.Derive has not processed.
var ErrNotDerived = errors.New("speedup and efficiency charts need derived points")

// Options configures a rendered image.
type Options struct {
	// Panels lists the panels to draw, left to right. If empty,
	// Speedup and Efficiency are drawn.
	Panels []Panel

	// Title, if set, prefixes the title of every panel.
	Title string

	// Unit labels the wall-time axis, such as "s" or "ms".
	Unit string

	// Width and Height give the size of the whole image. If
	// zero, each panel is 6 by 5 inches.
	Width, Height vg.Length

	// DPI is the resolution of raster formats. If zero, 300.
	DPI int

	// EfficiencyMax is the top of the efficiency axis, which
	// always starts at 0. If zero, 1.1, which leaves room for
	// measurement noise above ideal scaling.
	EfficiencyMax float64
}

func (o *Options) panels() []Panel {
	if len(o.Panels) == 0 {
		return []Panel{Speedup, Efficiency}
	}
	return o.Panels
}

func (o *Options) size() (w, h vg.Length) {
	w, h = o.Width, o.Height
	if w == 0 {
		w = 6 * vg.Inch * vg.Length(len(o.panels()))
	}
	if h == 0 {
		h = 5 * vg.Inch
	}
	return
}

func (o *Options) dpi() int {
	if o.DPI == 0 {
		return 300
	}
	return o.DPI
}

var (
	measuredColor   = color.NRGBA{0x1f, 0x77, 0xb4, 0xff}
	efficiencyColor = color.NRGBA{0xff, 0x7f, 0x0e, 0xff}
	idealColor      = color.Black
)

// Plots builds one plot per panel of opts.
func Plots(points []*scaling.Point, opts Options) ([]*plot.Plot, error) {
	var plots []*plot.Plot
	for _, panel := range opts.panels() {
		if panel != WallTime {
			for _, p := range points {
				if !p.Derived() {
					return nil, ErrNotDerived
				}
			}
		}
		pl, err := newPanel(panel, points, &opts)
		if err != nil {
			return nil, err
		}
		plots = append(plots, pl)
	}
	return plots, nil
}

func newPanel(panel Panel, points []*scaling.Point, opts *Options) (*plot.Plot, error) {
	pl := plot.New()
	pl.X.Label.Text = "threads"
	pl.X.Tick.Marker = threadTicks(points)
	grid := plotter.NewGrid()
	pl.Add(grid)

	xy := func(y func(p *scaling.Point) float64) plotter.XYs {
		xys := make(plotter.XYs, len(points))
		for i, p := range points {
			xys[i].X = float64(p.Threads)
			xys[i].Y = y(p)
		}
		return xys
	}

	var title string
	switch panel {
	case Speedup:
		title = "Strong scaling (speedup)"
		pl.Y.Label.Text = "speedup"

		line, pts, err := plotter.NewLinePoints(xy(func(p *scaling.Point) float64 { return p.Speedup }))
		if err != nil {
			return nil, err
		}
		line.Color = measuredColor
		pts.Color = measuredColor
		pts.Shape = draw.CircleGlyph{}

		ideal, err := plotter.NewLine(xy(func(p *scaling.Point) float64 { return scaling.Ideal(p.Threads) }))
		if err != nil {
			return nil, err
		}
		ideal.Color = idealColor
		ideal.Dashes = []vg.Length{vg.Points(6), vg.Points(4)}

		pl.Add(ideal, line, pts)
		pl.Legend.Add("measured", line, pts)
		pl.Legend.Add("ideal", ideal)
		pl.Legend.Top = true
		pl.Legend.Left = true

	case Efficiency:
		title = "Parallel efficiency"
		pl.Y.Label.Text = "efficiency"

		line, pts, err := plotter.NewLinePoints(xy(func(p *scaling.Point) float64 { return p.Efficiency }))
		if err != nil {
			return nil, err
		}
		line.Color = efficiencyColor
		pts.Color = efficiencyColor
		pts.Shape = draw.BoxGlyph{}
		pl.Add(line, pts)

		max := opts.EfficiencyMax
		if max == 0 {
			max = 1.1
		}
		pl.Y.Min, pl.Y.Max = 0, max

	case WallTime:
		title = "Wall time"
		pl.Y.Label.Text = "wall time"
		if opts.Unit != "" {
			pl.Y.Label.Text += " (" + opts.Unit + ")"
		}

		line, pts, err := plotter.NewLinePoints(xy(func(p *scaling.Point) float64 { return p.WallTime }))
		if err != nil {
			return nil, err
		}
		line.Color = measuredColor
		pts.Color = measuredColor
		pts.Shape = draw.CircleGlyph{}
		pl.Add(line, pts)
		pl.Y.Min = 0

	default:
		return nil, fmt.Errorf("unknown chart %q", panel)
	}

	if opts.Title != "" {
		title = opts.Title + ": " + title
	}
	pl.Title.Text = title
	return pl, nil
}

// Render draws the panels of opts for points side by side and writes
// the image to w in the given format ("png", "svg", "pdf", ...).
// If points is empty, Render writes nothing.
func Render(w io.Writer, format string, points []*scaling.Point, opts Options) error {
	if len(points) == 0 {
		return nil
	}
	plots, err := Plots(points, opts)
	if err != nil {
		return err
	}

	width, height := opts.size()
	var c vg.CanvasWriterTo
	switch strings.ToLower(format) {
	case "png":
		c = vgimg.PngCanvas{Canvas: newImage(width, height, opts.dpi())}
	case "jpg", "jpeg":
		c = vgimg.JpegCanvas{Canvas: newImage(width, height, opts.dpi())}
	case "tif", "tiff":
		c = vgimg.TiffCanvas{Canvas: newImage(width, height, opts.dpi())}
	default:
		c, err = draw.NewFormattedCanvas(width, height, strings.ToLower(format))
		if err != nil {
			return err
		}
	}

	tiles := draw.Tiles{
		Rows:      1,
		Cols:      len(plots),
		PadX:      vg.Millimeter * 4,
		PadTop:    vg.Millimeter * 2,
		PadBottom: vg.Millimeter * 2,
		PadLeft:   vg.Millimeter * 2,
		PadRight:  vg.Millimeter * 4,
	}
	canvases := plot.Align([][]*plot.Plot{plots}, tiles, draw.New(c))
	for i, pl := range plots {
		pl.Draw(canvases[0][i])
	}
	_, err = c.WriteTo(w)
	return err
}

func newImage(w, h vg.Length, dpi int) *vgimg.Canvas {
	return vgimg.NewWith(vgimg.UseWH(w, h), vgimg.UseDPI(dpi), vgimg.UseBackgroundColor(color.White))
}

// Save renders points to the image file path, creating its parent
// directories. The format is taken from the file extension. If points
// is empty, Save does not create the file. If rendering fails, the
// partial file is removed.
func Save(path string, points []*scaling.Point, opts Options) (err error) {
	if len(points) == 0 {
		return nil
	}
	format := Format(path)
	// Build the plots first so that a bad request leaves no
	// empty file behind.
	if _, err := Plots(points, opts); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o777); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			os.Remove(path)
		}
	}()
	return Render(f, format, points, opts)
}

// Format returns the image format implied by the extension of path,
// defaulting to "png".
func Format(path string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if ext == "" {
		return "png"
	}
	return ext
}
