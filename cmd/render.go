package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"sync"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/KaramelBytes/multiplot/internal/manifest"
	"github.com/KaramelBytes/multiplot/internal/utils"
	"github.com/KaramelBytes/multiplot/internal/watch"
)

var (
	renderNoOpen bool
	renderAll    bool
	renderDir    string
	renderJobs   int
	renderWatch  bool
)

var renderCmd = &cobra.Command{
	Use:   "render [manifest.yaml...]",
	Short: "Render the pages described by manifests",
	Long: `Render the pages described by one or more manifests. Without an argument the
nearest multiplot.yaml in the current directory or one of its parents is used;
with --all every manifest in the manifests directory is rendered.

With --watch the pages are rendered again whenever a manifest or its data file
changes, until interrupted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		paths, err := renderPaths(cmd, args)
		if err != nil {
			return err
		}
		stdout := &lockedWriter{w: cmd.OutOrStdout()}
		stderr := &lockedWriter{w: cmd.ErrOrStderr()}
		open := settings().OpenBrowser && !renderNoOpen

		watched, err := renderManifests(cmd.Context(), stdout, stderr, paths, open)
		if err != nil || !renderWatch {
			return err
		}

		fmt.Fprintf(stdout, "… Watching %d files, press Ctrl+C to stop\n", len(watched))
		w := &watch.Watcher{Logger: slog.Default()}
		return w.Run(cmd.Context(), watched, func(ctx context.Context) error {
			// The browser was opened by the first render; reload it there.
			_, err := renderManifests(ctx, stdout, stderr, paths, false)
			if err != nil {
				fmt.Fprintln(stderr, "✗ Error:", err)
			}
			return err
		})
	},
}

func init() {
	rootCmd.AddCommand(renderCmd)
	f := renderCmd.Flags()
	f.BoolVar(&renderNoOpen, "no-open", false, "do not open the pages in a browser")
	f.BoolVar(&renderAll, "all", false, "render every manifest in the manifests directory")
	f.StringVarP(&renderDir, "dir", "d", "", "manifests directory for --all (default manifests_dir from config)")
	f.IntVarP(&renderJobs, "jobs", "j", runtime.NumCPU(), "number of pages rendered in parallel")
	f.BoolVarP(&renderWatch, "watch", "w", false, "render again when a manifest or its data changes")
}

func renderPaths(cmd *cobra.Command, args []string) ([]string, error) {
	switch {
	case renderAll && len(args) > 0:
		return nil, errors.New("--all cannot be combined with manifest arguments")
	case renderAll:
		dir, err := manifestsDir(renderDir)
		if err != nil {
			return nil, err
		}
		ms, err := manifest.Discover(dir)
		var merr *multierror.Error
		if errors.As(err, &merr) {
			fmt.Fprintf(cmd.ErrOrStderr(), "⚠ Warning: skipped unreadable manifests: %v\n", merr)
		} else if err != nil {
			return nil, err
		}
		if len(ms) == 0 {
			return nil, fmt.Errorf("no manifests in %s", dir)
		}
		paths := make([]string, len(ms))
		for i, m := range ms {
			paths[i] = m.Path()
		}
		return paths, nil
	case len(args) > 0:
		return args, nil
	default:
		found, err := utils.FindUp("", manifest.DefaultFileName)
		if err != nil {
			return nil, fmt.Errorf("no manifest given: %w", err)
		}
		return []string{found}, nil
	}
}

// renderManifests renders every manifest, at most renderJobs at a time, and
// returns the files a watch should follow. The first failure cancels the
// renders that have not started yet.
func renderManifests(ctx context.Context, stdout, stderr io.Writer, paths []string, open bool) ([]string, error) {
	var (
		mu      sync.Mutex
		watched []string
	)
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(max(renderJobs, 1))
	for _, path := range paths {
		path := path
		g.Go(func() error {
			m, err := manifest.Load(path)
			if err != nil {
				return err
			}
			req, err := m.Request()
			if err != nil {
				return err
			}
			mu.Lock()
			watched = append(watched, path, req.DataPath)
			mu.Unlock()

			s := settings()
			if req.PageTitle == "" {
				req.PageTitle = s.PageTitle
			}
			p, err := newPipeline(firstNonEmpty(m.Renderer, s.Renderer), open)
			if err != nil {
				return err
			}
			if err := runPipeline(gCtx, stdout, stderr, p, req); err != nil {
				return fmt.Errorf("%s: %w", m.Name, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return watched, nil
}

// lockedWriter serialises status lines from concurrent renders.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}
