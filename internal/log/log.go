// Package log builds the slog handler used across multiplot.
package log

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

const (
	TextFormat   = "text"
	JSONFormat   = "json"
	LogfmtFormat = "logfmt"
)

var (
	ErrUnknownLevel  = errors.New("unknown log level")
	ErrUnknownFormat = errors.New("unknown log format")
)

// CreateHandler creates a [slog.Handler] writing to w.
func CreateHandler(w io.Writer, logLevel, logFormat string) (slog.Handler, error) {
	level, err := GetLevel(logLevel)
	if err != nil {
		return nil, err
	}
	formatter, err := GetFormatter(logFormat)
	if err != nil {
		return nil, err
	}
	return log.NewWithOptions(w, log.Options{
		Level:           level,
		Formatter:       formatter,
		ReportTimestamp: formatter != log.TextFormatter,
		TimeFormat:      time.RFC3339,
	}), nil
}

func GetLevel(level string) (log.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "error":
		return log.ErrorLevel, nil
	case "warn", "warning", "":
		return log.WarnLevel, nil
	case "info":
		return log.InfoLevel, nil
	case "debug", "trace":
		return log.DebugLevel, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownLevel, level)
	}
}

func GetFormatter(format string) (log.Formatter, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case TextFormat, "":
		return log.TextFormatter, nil
	case JSONFormat:
		return log.JSONFormatter, nil
	case LogfmtFormat:
		return log.LogfmtFormatter, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}
