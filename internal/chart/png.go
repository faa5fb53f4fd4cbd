package chart

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"html"
	"math"

	gochart "github.com/wcharczuk/go-chart/v2"
)

// PNG rasterises figures with go-chart and embeds them as data URIs, for
// pages that must survive mail clients and other script-free viewers.
type PNG struct {
	opt Options
}

func NewPNG(opt Options) *PNG { return &PNG{opt: opt.withDefaults()} }

func (p *PNG) Name() string { return RendererPNG }

func (p *PNG) Scripts() []string { return nil }

func (p *PNG) Render(fig Figure, containerID string) (string, error) {
	if err := fig.Validate(); err != nil {
		return "", err
	}
	img, err := p.Image(fig)
	if err != nil {
		return "", err
	}
	tag := fmt.Sprintf(`<img alt="%s" width="%d" height="%d" src="data:image/png;base64,%s">`,
		html.EscapeString(fig.Layout.Title), p.opt.Width, p.opt.Height, base64.StdEncoding.EncodeToString(img))
	return fmt.Sprintf("<script type=\"text/javascript\">\n    document.getElementById(%s).innerHTML = %s;\n</script>",
		jsString(containerID), jsString(tag)), nil
}

// Image returns the encoded PNG for fig.
func (p *PNG) Image(fig Figure) ([]byte, error) {
	graph := gochart.Chart{
		Title:  fig.Layout.Title,
		Width:  p.opt.Width,
		Height: p.opt.Height,
		Background: gochart.Style{
			Padding: gochart.Box{Top: 40, Left: 20, Right: 20, Bottom: 10},
		},
		XAxis: gochart.XAxis{Name: fig.Layout.XAxisTitle},
		YAxis: gochart.YAxis{Name: fig.Layout.YAxisTitle},
	}

	for i, t := range fig.Traces {
		xs, ys, err := t.Points()
		if err != nil {
			return nil, err
		}
		if len(xs) == 0 {
			continue
		}
		graph.Series = append(graph.Series, gochart.ContinuousSeries{
			Name: t.Name,
			Style: gochart.Style{
				StrokeWidth: gochart.Disabled,
				DotWidth:    4,
				DotColor:    gochart.GetDefaultColor(i),
			},
			XValues: xs,
			YValues: ys,
		})
	}
	if fig.Trend {
		if l, ok := Trend(fig.allPoints()); ok {
			graph.Series = append(graph.Series, gochart.ContinuousSeries{
				Name: "trend",
				Style: gochart.Style{
					StrokeWidth:     1.5,
					StrokeDashArray: []float64{5, 3},
					StrokeColor:     gochart.GetDefaultColor(len(fig.Traces)),
				},
				XValues: []float64{l.X0, l.X1},
				YValues: []float64{l.At(l.X0), l.At(l.X1)},
			})
		}
	}
	if len(graph.Series) > 1 {
		graph.Elements = []gochart.Renderable{gochart.Legend(&graph)}
	}

	// go-chart refuses zero-width ranges, which a single point or a
	// constant column would produce.
	xs, ys := fig.allPoints()
	if r, ok := paddedRange(xs); ok {
		graph.XAxis.Range = r
	}
	if r, ok := paddedRange(ys); ok {
		graph.YAxis.Range = r
	}

	var buf bytes.Buffer
	if err := graph.Render(gochart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render png: %w", err)
	}
	return buf.Bytes(), nil
}

func paddedRange(vals []float64) (*gochart.ContinuousRange, bool) {
	if len(vals) == 0 {
		return nil, false
	}
	lo, hi := vals[0], vals[0]
	for _, v := range vals[1:] {
		lo, hi = min(lo, v), max(hi, v)
	}
	if lo != hi {
		return nil, false
	}
	pad := 1.0
	if lo != 0 {
		pad = math.Abs(lo) / 10
	}
	return &gochart.ContinuousRange{Min: lo - pad, Max: hi + pad}, true
}
