// Package display persists composed pages and hands them to the user's
// browser.
package display

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/browser"

	"github.com/KaramelBytes/multiplot/internal/utils"
)

var (
	ErrWrite  = errors.New("write output")
	ErrLaunch = errors.New("open in browser")
)

// Sink persists page contents at a path.
type Sink interface {
	WriteFile(path, contents string) error
}

// Launcher presents a written page to the user.
type Launcher interface {
	Open(path string) error
}

// FileSink writes pages to the local filesystem, replacing existing files.
type FileSink struct{}

func (FileSink) WriteFile(path, contents string) (err error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := utils.EnsureDir(dir); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrWrite, dir, err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("%w: close: %w", ErrWrite, cerr))
		}
	}()
	if _, err := io.WriteString(f, contents); err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	return nil
}

// Browser opens pages with the platform's default browser.
type Browser struct{}

func (Browser) Open(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrLaunch, err)
	}
	if err := browser.OpenFile(abs); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrLaunch, abs, err)
	}
	return nil
}

// NopLauncher leaves the page on disk.
type NopLauncher struct{}

func (NopLauncher) Open(string) error { return nil }
