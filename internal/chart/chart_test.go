package chart_test

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/multiplot/internal/chart"
)

func TestFigureValidate(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		fig chart.Figure
		err error
	}{
		"ok": {
			fig: chart.Figure{Traces: []chart.Trace{{X: []float64{1, 2}, Y: []float64{3, 4}}}},
		},
		"length mismatch": {
			fig: chart.Figure{Traces: []chart.Trace{{X: []float64{1, 2}, Y: []float64{3}}}},
			err: chart.ErrLengthMismatch,
		},
		"no traces": {
			fig: chart.Figure{},
			err: chart.ErrNoData,
		},
		"only non-finite": {
			fig: chart.Figure{Traces: []chart.Trace{{X: []float64{math.NaN(), 1}, Y: []float64{2, math.Inf(1)}}}},
			err: chart.ErrNoData,
		},
	}
	for name, tc := range tcs {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			err := tc.fig.Validate()
			if tc.err == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tc.err)
		})
	}
}

func TestTracePointsDropsNonFinite(t *testing.T) {
	t.Parallel()

	xs, ys, err := chart.Trace{
		X: []float64{1, math.NaN(), 3, 4},
		Y: []float64{10, 20, math.Inf(-1), 40},
	}.Points()
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 4}, xs)
	assert.Equal(t, []float64{10, 40}, ys)
}

func TestTrend(t *testing.T) {
	t.Parallel()

	l, ok := chart.Trend([]float64{1, 2, 3, 4}, []float64{3, 5, 7, 9})
	require.True(t, ok)
	assert.InDelta(t, 1.0, l.Intercept, 1e-9)
	assert.InDelta(t, 2.0, l.Slope, 1e-9)
	assert.Equal(t, 1.0, l.X0)
	assert.Equal(t, 4.0, l.X1)
	assert.InDelta(t, 11.0, l.At(5), 1e-9)

	_, ok = chart.Trend([]float64{2, 2, 2}, []float64{1, 2, 3})
	assert.False(t, ok, "no spread in x")
	_, ok = chart.Trend([]float64{1}, []float64{1})
	assert.False(t, ok, "single point")
}

func TestByName(t *testing.T) {
	t.Parallel()

	for name, want := range map[string]string{
		"":        chart.RendererECharts,
		"ECharts": chart.RendererECharts,
		" svg ":   chart.RendererSVG,
		"PNG":     chart.RendererPNG,
	} {
		r, err := chart.ByName(name, chart.Options{})
		require.NoError(t, err, name)
		assert.Equal(t, want, r.Name())
	}

	_, err := chart.ByName("plotly", chart.Options{})
	require.ErrorIs(t, err, chart.ErrUnknownRenderer)
}

func TestOptionsContainerStyle(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "width:900px;height:500px;", chart.Options{}.ContainerStyle())
	assert.Equal(t, "width:640px;height:480px;", chart.Options{Width: 640, Height: 480}.ContainerStyle())
}

type echartsOption struct {
	Title struct {
		Text string `json:"text"`
	} `json:"title"`
	XAxis []struct {
		Name string `json:"name"`
		Type string `json:"type"`
	} `json:"xAxis"`
	YAxis []struct {
		Name string `json:"name"`
	} `json:"yAxis"`
	Series []struct {
		Name string `json:"name"`
		Type string `json:"type"`
		Data []struct {
			Value []float64 `json:"value"`
		} `json:"data"`
	} `json:"series"`
}

func TestEChartsOption(t *testing.T) {
	t.Parallel()

	e := chart.NewECharts(chart.Options{})
	fig := chart.Figure{
		Layout: chart.Layout{Title: "American League Wins vs BA", XAxisTitle: "Batting Average", YAxisTitle: "Wins"},
		Traces: []chart.Trace{{Name: "AL", X: []float64{0.25, math.NaN(), 0.27}, Y: []float64{70, 80, 90}}},
		Trend:  true,
	}
	raw, err := e.Option(fig, "plot1")
	require.NoError(t, err)

	var got echartsOption
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, "American League Wins vs BA", got.Title.Text)
	require.Len(t, got.XAxis, 1)
	assert.Equal(t, "Batting Average", got.XAxis[0].Name)
	assert.Equal(t, "value", got.XAxis[0].Type)
	require.Len(t, got.YAxis, 1)
	assert.Equal(t, "Wins", got.YAxis[0].Name)

	require.Len(t, got.Series, 2)
	assert.Equal(t, "scatter", got.Series[0].Type)
	require.Len(t, got.Series[0].Data, 2)
	assert.Equal(t, []float64{0.25, 70}, got.Series[0].Data[0].Value)
	assert.Equal(t, []float64{0.27, 90}, got.Series[0].Data[1].Value)
	assert.Equal(t, "line", got.Series[1].Type)
	assert.Equal(t, "trend", got.Series[1].Name)
}

func TestEChartsRenderEmbedsContainer(t *testing.T) {
	t.Parallel()

	e := chart.NewECharts(chart.Options{ScriptURL: "https://cdn.example/echarts.js"})
	assert.Equal(t, []string{"https://cdn.example/echarts.js"}, e.Scripts())

	markup, err := chart.RenderScatter(e, []float64{1, 2}, []float64{3, 4}, chart.Layout{Title: "</script>"}, "plot2")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(markup, "<script type=\"text/javascript\">"))
	assert.True(t, strings.HasSuffix(markup, "</script>"))
	assert.Contains(t, markup, `echarts.init(document.getElementById("plot2")).setOption(`)
	assert.Equal(t, 1, strings.Count(markup, "</script>"), "title must not close the script early")

	_, err = e.Render(chart.Figure{}, "plot3")
	require.ErrorIs(t, err, chart.ErrNoData)
}

func TestSVGRender(t *testing.T) {
	t.Parallel()

	s := chart.NewSVG(chart.Options{Width: 480, Height: 320})
	assert.Empty(t, s.Scripts())

	fig := chart.Figure{
		Layout: chart.Layout{Title: "NL", XAxisTitle: "BA", YAxisTitle: "W"},
		Traces: []chart.Trace{
			{Name: "NL", X: []float64{0.25, 0.26, 0.27}, Y: []float64{81, 94, 61}},
			{Name: "AL", X: []float64{0.24, 0.28}, Y: []float64{69, 93}},
		},
		Trend: true,
	}
	doc, err := s.Document(fig)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(doc, "<svg"))
	assert.NotContains(t, doc, "<?xml")
	assert.Contains(t, doc, "</svg>")

	markup, err := s.Render(fig, "plot1")
	require.NoError(t, err)
	assert.Contains(t, markup, `document.getElementById("plot1").innerHTML = "`)
	assert.NotContains(t, markup, "<svg", "svg is carried as an escaped string")
	assert.Equal(t, 1, strings.Count(markup, "</script>"))

	_, err = s.Render(chart.Figure{Traces: []chart.Trace{{X: []float64{1}}}}, "plot1")
	require.ErrorIs(t, err, chart.ErrLengthMismatch)
}

func TestPNGRender(t *testing.T) {
	t.Parallel()

	p := chart.NewPNG(chart.Options{Width: 400, Height: 300})
	assert.Empty(t, p.Scripts())

	fig := chart.Figure{
		Layout: chart.Layout{Title: "AL", XAxisTitle: "OBP", YAxisTitle: "W"},
		Traces: []chart.Trace{{Name: "AL", X: []float64{0.311, 0.315, 0.318, 0.324}, Y: []float64{93, 69, 85, 68}}},
		Trend:  true,
	}
	img, err := p.Image(fig)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(img, []byte("\x89PNG")))

	markup, err := p.Render(fig, "plot4")
	require.NoError(t, err)
	assert.Contains(t, markup, `document.getElementById("plot4").innerHTML = "`)
	assert.Equal(t, 1, strings.Count(markup, "</script>"))

	_, enc, ok := strings.Cut(markup, "base64,")
	require.True(t, ok)
	enc, _, ok = strings.Cut(enc, `\"`)
	require.True(t, ok)
	raw, err := base64.StdEncoding.DecodeString(enc)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(raw, []byte("\x89PNG")))
}

func TestPNGConstantColumn(t *testing.T) {
	t.Parallel()

	p := chart.NewPNG(chart.Options{})
	_, err := p.Image(chart.Figure{Traces: []chart.Trace{{X: []float64{1, 1, 1}, Y: []float64{2, 2, 2}}}})
	require.NoError(t, err)
}
