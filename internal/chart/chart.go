// Package chart turns figures into HTML-embeddable markup bound to a page
// container. The ECharts renderer emits the chart option as JSON for the
// hosted echarts script; the SVG (gonum/plot) and PNG (go-chart) renderers
// draw the chart up front and need no external script.
package chart

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
)

var (
	ErrLengthMismatch  = errors.New("x and y must have the same length")
	ErrNoData          = errors.New("no plottable points")
	ErrUnknownRenderer = errors.New("unknown renderer")
)

// Layout is the presentational metadata of one chart.
type Layout struct {
	Title      string
	XAxisTitle string
	YAxisTitle string
}

// Trace is one data series drawn as markers.
type Trace struct {
	Name string
	X    []float64
	Y    []float64
}

// Figure pairs one layout with one or more traces.
type Figure struct {
	Layout Layout
	Traces []Trace
	// Trend adds a least-squares line fitted over every trace's points.
	Trend bool
}

// Renderer produces embeddable markup for a figure.
type Renderer interface {
	Name() string
	// Scripts are the external script URLs the markup depends on.
	Scripts() []string
	Render(fig Figure, containerID string) (string, error)
}

// Options configures the built-in renderers.
type Options struct {
	// ScriptURL is the hosted echarts bundle.
	ScriptURL string
	// Width and Height are the chart size in CSS pixels.
	Width  int
	Height int
}

const (
	RendererECharts = "echarts"
	RendererSVG     = "svg"
	RendererPNG     = "png"

	DefaultScriptURL = "https://go-echarts.github.io/go-echarts-assets/assets/echarts.min.js"
	DefaultWidth     = 900
	DefaultHeight    = 500
)

func (o Options) withDefaults() Options {
	if o.ScriptURL == "" {
		o.ScriptURL = DefaultScriptURL
	}
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.Height <= 0 {
		o.Height = DefaultHeight
	}
	return o
}

// ContainerStyle is the inline style a page should give each container so
// the rendered chart has room.
func (o Options) ContainerStyle() string {
	o = o.withDefaults()
	return fmt.Sprintf("width:%dpx;height:%dpx;", o.Width, o.Height)
}

// ByName returns the renderer registered under name. Empty selects echarts.
func ByName(name string, opt Options) (Renderer, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", RendererECharts:
		return NewECharts(opt), nil
	case RendererSVG:
		return NewSVG(opt), nil
	case RendererPNG:
		return NewPNG(opt), nil
	default:
		return nil, fmt.Errorf("%w: %s (use %s, %s or %s)", ErrUnknownRenderer, name, RendererECharts, RendererSVG, RendererPNG)
	}
}

// RenderScatter renders a single-trace scatter figure.
func RenderScatter(r Renderer, x, y []float64, layout Layout, containerID string) (string, error) {
	return r.Render(Figure{Layout: layout, Traces: []Trace{{Name: layout.Title, X: x, Y: y}}}, containerID)
}

// Validate checks that every trace is well formed and at least one finite
// point exists overall.
func (f Figure) Validate() error {
	total := 0
	for i, t := range f.Traces {
		xs, _, err := t.Points()
		if err != nil {
			return fmt.Errorf("trace %d (%s): %w", i, t.Name, err)
		}
		total += len(xs)
	}
	if total == 0 {
		return ErrNoData
	}
	return nil
}

// Points returns the trace's coordinates with non-finite pairs removed.
func (t Trace) Points() ([]float64, []float64, error) {
	if len(t.X) != len(t.Y) {
		return nil, nil, fmt.Errorf("%w: %d vs %d", ErrLengthMismatch, len(t.X), len(t.Y))
	}
	xs := make([]float64, 0, len(t.X))
	ys := make([]float64, 0, len(t.Y))
	for i := range t.X {
		if !finite(t.X[i]) || !finite(t.Y[i]) {
			continue
		}
		xs = append(xs, t.X[i])
		ys = append(ys, t.Y[i])
	}
	return xs, ys, nil
}

func (f Figure) allPoints() ([]float64, []float64) {
	var xs, ys []float64
	for _, t := range f.Traces {
		x, y, err := t.Points()
		if err != nil {
			continue
		}
		xs = append(xs, x...)
		ys = append(ys, y...)
	}
	return xs, ys
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

// jsString encodes s as a JavaScript string literal safe inside <script>.
func jsString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}
