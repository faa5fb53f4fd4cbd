package chart

import (
	"bytes"
	"fmt"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgsvg"
)

// SVG draws figures with gonum/plot and injects the resulting SVG into the
// container, so the page works offline.
type SVG struct {
	opt Options
}

func NewSVG(opt Options) *SVG { return &SVG{opt: opt.withDefaults()} }

func (s *SVG) Name() string { return RendererSVG }

func (s *SVG) Scripts() []string { return nil }

func (s *SVG) Render(fig Figure, containerID string) (string, error) {
	if err := fig.Validate(); err != nil {
		return "", err
	}
	doc, err := s.Document(fig)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("<script type=\"text/javascript\">\n    document.getElementById(%s).innerHTML = %s;\n</script>",
		jsString(containerID), jsString(doc)), nil
}

// Document returns the standalone <svg> element for fig.
func (s *SVG) Document(fig Figure) (string, error) {
	p := plot.New()
	p.Title.Text = fig.Layout.Title
	p.X.Label.Text = fig.Layout.XAxisTitle
	p.Y.Label.Text = fig.Layout.YAxisTitle
	p.Add(plotter.NewGrid())

	for i, t := range fig.Traces {
		xs, ys, err := t.Points()
		if err != nil {
			return "", err
		}
		if len(xs) == 0 {
			continue
		}
		pts := make(plotter.XYs, len(xs))
		for j := range xs {
			pts[j].X, pts[j].Y = xs[j], ys[j]
		}
		sc, err := plotter.NewScatter(pts)
		if err != nil {
			return "", fmt.Errorf("trace %s: %w", t.Name, err)
		}
		sc.GlyphStyle.Color = plotutil.Color(i)
		sc.GlyphStyle.Shape = draw.CircleGlyph{}
		sc.GlyphStyle.Radius = vg.Points(3)
		p.Add(sc)
		if len(fig.Traces) > 1 {
			p.Legend.Add(t.Name, sc)
		}
	}

	if fig.Trend {
		if l, ok := Trend(fig.allPoints()); ok {
			ln, err := plotter.NewLine(plotter.XYs{{X: l.X0, Y: l.At(l.X0)}, {X: l.X1, Y: l.At(l.X1)}})
			if err != nil {
				return "", fmt.Errorf("trend: %w", err)
			}
			ln.LineStyle.Dashes = []vg.Length{vg.Points(5), vg.Points(3)}
			p.Add(ln)
			p.Legend.Add("trend", ln)
		}
	}

	// CSS pixels are 1/96 inch.
	w := vg.Length(s.opt.Width) * vg.Inch / 96
	h := vg.Length(s.opt.Height) * vg.Inch / 96
	c := vgsvg.New(w, h)
	p.Draw(draw.New(c))
	var buf bytes.Buffer
	if _, err := c.WriteTo(&buf); err != nil {
		return "", fmt.Errorf("write svg: %w", err)
	}
	return stripProlog(buf.String()), nil
}

// stripProlog drops the XML declaration and comments preceding <svg> so the
// document can be inlined into HTML.
func stripProlog(doc string) string {
	if i := strings.Index(doc, "<svg"); i > 0 {
		return doc[i:]
	}
	return doc
}
