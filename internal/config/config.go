package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/multiplot/internal/chart"
	"github.com/KaramelBytes/multiplot/internal/utils"
)

var (
	ErrUnknownKey   = errors.New("unknown key")
	ErrInvalidValue = errors.New("invalid value")
)

// Global configuration structure.
type Global struct {
	Output       string `mapstructure:"output" yaml:"output"`
	Renderer     string `mapstructure:"renderer" yaml:"renderer"`
	ScriptURL    string `mapstructure:"script_url" yaml:"script_url"`
	Width        int    `mapstructure:"width" yaml:"width"`
	Height       int    `mapstructure:"height" yaml:"height"`
	PageTitle    string `mapstructure:"page_title" yaml:"page_title"`
	OpenBrowser  bool   `mapstructure:"open_browser" yaml:"open_browser"`
	Delimiter    string `mapstructure:"delimiter" yaml:"delimiter"`
	ManifestsDir string `mapstructure:"manifests_dir" yaml:"manifests_dir"`

	LogLevel  string `mapstructure:"log_level" yaml:"log_level"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format"`
}

// Keys lists the settable configuration keys in display order.
var Keys = []string{
	"output", "renderer", "script_url", "width", "height", "page_title",
	"open_browser", "delimiter", "manifests_dir", "log_level", "log_format",
}

// DefaultPath is ~/.multiplot/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".multiplot", "config.yaml"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to DefaultPath, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return err
		}
		path = p
	}
	if err := utils.EnsureDir(filepath.Dir(path)); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := utils.SafeWriteFile(path, b); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: env > config file > defaults. Flags are applied by callers.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("MULTIPLOT")
	v.AutomaticEnv()

	v.SetDefault("output", "multiplot.html")
	v.SetDefault("renderer", chart.RendererECharts)
	v.SetDefault("script_url", chart.DefaultScriptURL)
	v.SetDefault("width", chart.DefaultWidth)
	v.SetDefault("height", chart.DefaultHeight)
	v.SetDefault("page_title", "Multi-plot")
	v.SetDefault("open_browser", true)
	v.SetDefault("delimiter", "")
	v.SetDefault("manifests_dir", ".")
	v.SetDefault("log_level", "warn")
	// empty picks text on a terminal and logfmt otherwise
	v.SetDefault("log_format", "")

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir: %w", err)
		}
		v.AddConfigPath(filepath.Join(home, ".multiplot"))
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read
	_ = v.ReadInConfig()

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, nil
}

// Set assigns a single key from its string form.
func (c *Global) Set(key, val string) error {
	switch key {
	case "output":
		c.Output = val
	case "renderer":
		if _, err := chart.ByName(val, chart.Options{}); err != nil {
			return fmt.Errorf("%w for renderer: %w", ErrInvalidValue, err)
		}
		c.Renderer = strings.ToLower(strings.TrimSpace(val))
	case "script_url":
		c.ScriptURL = val
	case "width", "height":
		i, err := strconv.Atoi(val)
		if err != nil || i <= 0 {
			return fmt.Errorf("%w for %s: %q (want a positive int)", ErrInvalidValue, key, val)
		}
		if key == "width" {
			c.Width = i
		} else {
			c.Height = i
		}
	case "page_title":
		c.PageTitle = val
	case "open_browser":
		b, err := strconv.ParseBool(val)
		if err != nil {
			return fmt.Errorf("%w for open_browser: %w", ErrInvalidValue, err)
		}
		c.OpenBrowser = b
	case "delimiter":
		if len([]rune(val)) > 1 && val != `\t` {
			return fmt.Errorf("%w for delimiter: %q (want a single character)", ErrInvalidValue, val)
		}
		c.Delimiter = val
	case "manifests_dir":
		c.ManifestsDir = val
	case "log_level":
		c.LogLevel = val
	case "log_format":
		c.LogFormat = val
	default:
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	return nil
}

// Get returns the string form of key.
func (c *Global) Get(key string) (string, error) {
	switch key {
	case "output":
		return c.Output, nil
	case "renderer":
		return c.Renderer, nil
	case "script_url":
		return c.ScriptURL, nil
	case "width":
		return strconv.Itoa(c.Width), nil
	case "height":
		return strconv.Itoa(c.Height), nil
	case "page_title":
		return c.PageTitle, nil
	case "open_browser":
		return strconv.FormatBool(c.OpenBrowser), nil
	case "delimiter":
		return c.Delimiter, nil
	case "manifests_dir":
		return c.ManifestsDir, nil
	case "log_level":
		return c.LogLevel, nil
	case "log_format":
		return c.LogFormat, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
}

// ChartOptions maps the renderer settings onto chart.Options.
func (c *Global) ChartOptions() chart.Options {
	return chart.Options{ScriptURL: c.ScriptURL, Width: c.Width, Height: c.Height}
}

// DelimiterRune returns the configured delimiter, or 0 to auto-detect.
func (c *Global) DelimiterRune() rune {
	return ParseDelimiter(c.Delimiter)
}

// ParseDelimiter accepts a single character or the escape `\t`.
func ParseDelimiter(s string) rune {
	switch s {
	case "":
		return 0
	case `\t`, "tab":
		return '\t'
	}
	return []rune(s)[0]
}
