package chart

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// ECharts renders figures as an ECharts option object initialised by an
// inline script against the page container.
type ECharts struct {
	opt Options
}

func NewECharts(opt Options) *ECharts { return &ECharts{opt: opt.withDefaults()} }

func (e *ECharts) Name() string { return RendererECharts }

func (e *ECharts) Scripts() []string { return []string{e.opt.ScriptURL} }

func (e *ECharts) Render(fig Figure, containerID string) (string, error) {
	if err := fig.Validate(); err != nil {
		return "", err
	}
	option, err := e.Option(fig, containerID)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	b.WriteString("<script type=\"text/javascript\">\n")
	fmt.Fprintf(&b, "    echarts.init(document.getElementById(%s)).setOption(%s);\n", jsString(containerID), option)
	b.WriteString("</script>")
	return b.String(), nil
}

// Option returns the chart option JSON for fig.
func (e *ECharts) Option(fig Figure, containerID string) ([]byte, error) {
	sc := charts.NewScatter()
	sc.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			ChartID: containerID,
			Width:   fmt.Sprintf("%dpx", e.opt.Width),
			Height:  fmt.Sprintf("%dpx", e.opt.Height),
		}),
		charts.WithTitleOpts(opts.Title{Title: fig.Layout.Title}),
		charts.WithXAxisOpts(opts.XAxis{Name: fig.Layout.XAxisTitle, Type: "value"}),
		charts.WithYAxisOpts(opts.YAxis{Name: fig.Layout.YAxisTitle, Type: "value"}),
	)
	for _, t := range fig.Traces {
		xs, ys, err := t.Points()
		if err != nil {
			return nil, err
		}
		data := make([]opts.ScatterData, len(xs))
		for i := range xs {
			data[i] = opts.ScatterData{Value: []float64{xs[i], ys[i]}}
		}
		sc.AddSeries(t.Name, data)
	}
	if fig.Trend {
		if l, ok := Trend(fig.allPoints()); ok {
			line := charts.NewLine()
			line.AddSeries("trend", []opts.LineData{
				{Value: []float64{l.X0, l.At(l.X0)}},
				{Value: []float64{l.X1, l.At(l.X1)}},
			})
			sc.Overlap(line)
		}
	}
	out, err := json.Marshal(sc.JSON())
	if err != nil {
		return nil, fmt.Errorf("encode chart option: %w", err)
	}
	return out, nil
}
