// Package multiplot wires the table, chart, page and display packages into
// the single operation behind every command: load a table, split it by a
// categorical column, draw one scatter chart per group and publish the
// composed page.
package multiplot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/KaramelBytes/multiplot/internal/chart"
	"github.com/KaramelBytes/multiplot/internal/display"
	"github.com/KaramelBytes/multiplot/internal/page"
	"github.com/KaramelBytes/multiplot/internal/table"
)

const (
	DefaultOutput      = "multiplot.html"
	DefaultTitleFormat = "{group}: {y} vs {x}"
)

var (
	ErrInvalidRequest = errors.New("invalid request")
	ErrNoRenderer     = errors.New("pipeline has no renderer")
	ErrNoSink         = errors.New("pipeline has no sink")
)

// GroupSpec selects one group by key and optionally overrides its chart title.
type GroupSpec struct {
	Key   string
	Title string
}

// Request describes one multi-plot page.
type Request struct {
	DataPath  string
	Sheet     string
	Delimiter rune

	GroupBy string
	X       string
	Y       string
	XTitle  string
	YTitle  string

	PageTitle string
	// Groups, when set, selects and orders the charted groups by key.
	// Otherwise every group is charted in first-encountered order.
	Groups      []GroupSpec
	TitleFormat string
	// ExpectGroups fails the request when fewer groups exist.
	ExpectGroups int

	Output string
	Trend  bool
}

// Validate reports every missing field at once.
func (r Request) Validate() error {
	var merr *multierror.Error
	if strings.TrimSpace(r.DataPath) == "" {
		merr = multierror.Append(merr, errors.New("data path is required"))
	}
	if strings.TrimSpace(r.GroupBy) == "" {
		merr = multierror.Append(merr, errors.New("group-by column is required"))
	}
	if strings.TrimSpace(r.X) == "" {
		merr = multierror.Append(merr, errors.New("x column is required"))
	}
	if strings.TrimSpace(r.Y) == "" {
		merr = multierror.Append(merr, errors.New("y column is required"))
	}
	if r.ExpectGroups < 0 {
		merr = multierror.Append(merr, fmt.Errorf("expect groups must not be negative: %d", r.ExpectGroups))
	}
	seen := map[string]bool{}
	for _, g := range r.Groups {
		if seen[g.Key] {
			merr = multierror.Append(merr, fmt.Errorf("group %q listed twice", g.Key))
		}
		seen[g.Key] = true
	}
	if err := merr.ErrorOrNil(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	return nil
}

// ChartTitle expands the title format for one group.
func (r Request) ChartTitle(key string) string {
	format := r.TitleFormat
	if format == "" {
		format = DefaultTitleFormat
	}
	return strings.NewReplacer(
		"{group}", key,
		"{x}", r.xTitle(),
		"{y}", r.yTitle(),
	).Replace(format)
}

func (r Request) xTitle() string {
	if r.XTitle != "" {
		return r.XTitle
	}
	return r.X
}

func (r Request) yTitle() string {
	if r.YTitle != "" {
		return r.YTitle
	}
	return r.Y
}

func (r Request) output() string {
	if r.Output != "" {
		return r.Output
	}
	return DefaultOutput
}

// Result summarises a finished run.
type Result struct {
	Output       string
	Groups       []string
	ContainerIDs []string
	Bytes        int
	// LaunchErr is set when the page was written but could not be opened.
	LaunchErr error
}

// Pipeline holds the collaborators of a run.
type Pipeline struct {
	Renderer chart.Renderer
	Sink     display.Sink
	// Launcher is optional.
	Launcher       display.Launcher
	Logger         *slog.Logger
	ContainerStyle string
}

// Page is the composed document and the groups it charts.
type Page struct {
	HTML         string
	Groups       []string
	ContainerIDs []string
}

// Run composes the page for req, writes it and opens it. A write failure is
// returned; a launch failure is only recorded in the result.
func (p *Pipeline) Run(ctx context.Context, req Request) (*Result, error) {
	if p.Sink == nil {
		return nil, ErrNoSink
	}
	pg, err := p.Compose(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := req.output()
	if err := p.Sink.WriteFile(out, pg.HTML); err != nil {
		return nil, err
	}
	res := &Result{
		Output:       out,
		Groups:       pg.Groups,
		ContainerIDs: pg.ContainerIDs,
		Bytes:        len(pg.HTML),
	}
	p.logger().Info("page written", "path", out, "charts", len(pg.Groups), "bytes", res.Bytes)

	if p.Launcher != nil {
		if err := p.Launcher.Open(out); err != nil {
			p.logger().Warn("could not open page", "path", out, "err", err)
			res.LaunchErr = err
		}
	}
	return res, nil
}

// Compose builds the page for req without writing it.
func (p *Pipeline) Compose(ctx context.Context, req Request) (*Page, error) {
	if p.Renderer == nil {
		return nil, ErrNoRenderer
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	log := p.logger()

	t, err := table.Load(req.DataPath, table.LoadOptions{
		Delimiter:     req.Delimiter,
		Sheet:         req.Sheet,
		StringColumns: []string{req.GroupBy},
	})
	if err != nil {
		return nil, err
	}
	log.Debug("table loaded", "name", t.Name(), "rows", t.Rows(), "columns", len(t.Names()))
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	groups, err := t.SplitOn(req.GroupBy)
	if err != nil {
		return nil, err
	}
	if req.ExpectGroups > 0 {
		if err := groups.Require(req.ExpectGroups); err != nil {
			return nil, err
		}
	}
	selected, titles, err := selectGroups(groups, req)
	if err != nil {
		return nil, err
	}
	log.Debug("groups selected", "by", req.GroupBy, "found", groups.Keys(), "charted", len(selected))

	b := page.NewBuilder(page.Options{
		Title:          req.PageTitle,
		Scripts:        p.Renderer.Scripts(),
		ContainerStyle: p.ContainerStyle,
	})
	keys := make([]string, 0, len(selected))
	for i, g := range selected {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		xs, err := g.Table.Numbers(req.X)
		if err != nil {
			return nil, err
		}
		ys, err := g.Table.Numbers(req.Y)
		if err != nil {
			return nil, err
		}
		id := b.Allocate()
		markup, err := p.Renderer.Render(chart.Figure{
			Layout: chart.Layout{Title: titles[i], XAxisTitle: req.xTitle(), YAxisTitle: req.yTitle()},
			Traces: []chart.Trace{{Name: g.Key, X: xs, Y: ys}},
			Trend:  req.Trend,
		}, id)
		if err != nil {
			return nil, fmt.Errorf("render group %q: %w", g.Key, err)
		}
		if err := b.Add(page.Chart{Markup: markup, ContainerID: id}); err != nil {
			return nil, err
		}
		keys = append(keys, g.Key)
		log.Debug("chart rendered", "group", g.Key, "container", id, "renderer", p.Renderer.Name(), "points", len(xs))
	}

	doc, err := b.Build()
	if err != nil {
		return nil, err
	}
	return &Page{HTML: doc, Groups: keys, ContainerIDs: b.IDs()}, nil
}

func selectGroups(groups table.Groups, req Request) (table.Groups, []string, error) {
	if len(req.Groups) == 0 {
		titles := make([]string, len(groups))
		for i, g := range groups {
			titles[i] = req.ChartTitle(g.Key)
		}
		return groups, titles, nil
	}
	out := make(table.Groups, 0, len(req.Groups))
	titles := make([]string, 0, len(req.Groups))
	for _, spec := range req.Groups {
		g, err := groups.Lookup(spec.Key)
		if err != nil {
			return nil, nil, err
		}
		out = append(out, g)
		title := spec.Title
		if title == "" {
			title = req.ChartTitle(spec.Key)
		}
		titles = append(titles, title)
	}
	return out, titles, nil
}

func (p *Pipeline) logger() *slog.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return slog.Default()
}
