package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/multiplot/internal/chart"
	cfgpkg "github.com/KaramelBytes/multiplot/internal/config"
	"github.com/KaramelBytes/multiplot/internal/display"
	"github.com/KaramelBytes/multiplot/internal/multiplot"
)

var (
	plotGroupBy      string
	plotX            string
	plotY            string
	plotXTitle       string
	plotYTitle       string
	plotTitle        string
	plotTitleFormat  string
	plotGroups       []string
	plotExpectGroups int
	plotOutput       string
	plotRenderer     string
	plotNoOpen       bool
	plotTrend        bool
	plotSheet        string
	plotDelimiter    string
)

var plotCmd = &cobra.Command{
	Use:   "plot <data-file>",
	Short: "Render one scatter chart per group into a single HTML page",
	Example: `  multiplot plot baseball.csv --group-by League -x BA -y W \
    --x-title "Batting Average" --y-title Wins \
    --group AL="American League Wins vs BA" --group NL="National League Wins vs BA"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		groups, err := parseGroupFlags(plotGroups)
		if err != nil {
			return err
		}
		s := settings()
		req := multiplot.Request{
			DataPath:     args[0],
			Sheet:        plotSheet,
			Delimiter:    s.DelimiterRune(),
			GroupBy:      plotGroupBy,
			X:            plotX,
			Y:            plotY,
			XTitle:       plotXTitle,
			YTitle:       plotYTitle,
			PageTitle:    firstNonEmpty(plotTitle, s.PageTitle),
			Groups:       groups,
			TitleFormat:  plotTitleFormat,
			ExpectGroups: plotExpectGroups,
			Output:       firstNonEmpty(plotOutput, s.Output),
			Trend:        plotTrend,
		}
		if plotDelimiter != "" {
			req.Delimiter = cfgpkg.ParseDelimiter(plotDelimiter)
		}
		p, err := newPipeline(firstNonEmpty(plotRenderer, s.Renderer), s.OpenBrowser && !plotNoOpen)
		if err != nil {
			return err
		}
		return runPipeline(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), p, req)
	},
}

func init() {
	rootCmd.AddCommand(plotCmd)
	f := plotCmd.Flags()
	f.StringVarP(&plotGroupBy, "group-by", "g", "", "categorical column to split on (required)")
	f.StringVarP(&plotX, "x", "x", "", "numeric column for the x axis (required)")
	f.StringVarP(&plotY, "y", "y", "", "numeric column for the y axis (required)")
	f.StringVar(&plotXTitle, "x-title", "", "x axis title (defaults to the column name)")
	f.StringVar(&plotYTitle, "y-title", "", "y axis title (defaults to the column name)")
	f.StringVar(&plotTitle, "title", "", "page title (overrides config page_title)")
	f.StringVar(&plotTitleFormat, "title-format", multiplot.DefaultTitleFormat, "chart title template; placeholders {group}, {x}, {y}")
	f.StringArrayVar(&plotGroups, "group", nil, "chart only this group, as KEY or KEY=Title (repeatable, keeps order)")
	f.IntVar(&plotExpectGroups, "expect-groups", 0, "fail unless at least this many groups exist")
	f.StringVarP(&plotOutput, "output", "o", "", "output HTML path (overrides config output)")
	f.StringVar(&plotRenderer, "renderer", "", "chart renderer: echarts|svg|png (overrides config renderer)")
	f.BoolVar(&plotNoOpen, "no-open", false, "do not open the page in a browser")
	f.BoolVar(&plotTrend, "trend", false, "add a least-squares trend line to every chart")
	f.StringVar(&plotSheet, "sheet", "", "XLSX: sheet name (default first sheet)")
	f.StringVar(&plotDelimiter, "delimiter", "", "CSV delimiter: ',' | ';' | 'tab' (auto by extension if omitted)")
	_ = plotCmd.MarkFlagRequired("group-by")
	_ = plotCmd.MarkFlagRequired("x")
	_ = plotCmd.MarkFlagRequired("y")
}

func newPipeline(renderer string, open bool) (*multiplot.Pipeline, error) {
	opt := settings().ChartOptions()
	r, err := chart.ByName(renderer, opt)
	if err != nil {
		return nil, err
	}
	var l display.Launcher = display.NopLauncher{}
	if open {
		l = display.Browser{}
	}
	return &multiplot.Pipeline{
		Renderer:       r,
		Sink:           display.FileSink{},
		Launcher:       l,
		Logger:         slog.Default(),
		ContainerStyle: opt.ContainerStyle(),
	}, nil
}

func runPipeline(ctx context.Context, stdout, stderr io.Writer, p *multiplot.Pipeline, req multiplot.Request) error {
	res, err := p.Run(ctx, req)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "✓ Wrote %s (%d charts: %s, renderer %s)\n",
		res.Output, len(res.Groups), strings.Join(res.Groups, ", "), p.Renderer.Name())
	if res.LaunchErr != nil {
		fmt.Fprintf(stderr, "⚠ Warning: %v\n", res.LaunchErr)
	}
	return nil
}

// parseGroupFlags turns KEY or KEY=Title values into group specs.
func parseGroupFlags(vals []string) ([]multiplot.GroupSpec, error) {
	out := make([]multiplot.GroupSpec, 0, len(vals))
	for _, v := range vals {
		key, title, _ := strings.Cut(v, "=")
		key = strings.TrimSpace(key)
		if key == "" {
			return nil, fmt.Errorf("invalid --group %q: key is empty", v)
		}
		out = append(out, multiplot.GroupSpec{Key: key, Title: strings.TrimSpace(title)})
	}
	return out, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
