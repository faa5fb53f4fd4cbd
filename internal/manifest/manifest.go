// Package manifest stores multi-plot page definitions as YAML files so a
// page can be re-rendered without repeating its flags.
package manifest

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/multiplot/internal/chart"
	"github.com/KaramelBytes/multiplot/internal/config"
	"github.com/KaramelBytes/multiplot/internal/multiplot"
	"github.com/KaramelBytes/multiplot/internal/utils"
)

const DefaultFileName = "multiplot.yaml"

var (
	ErrNotFound = errors.New("manifest not found")
	ErrInvalid  = errors.New("invalid manifest")
)

// Manifest describes one page persisted on disk.
type Manifest struct {
	ID           string    `yaml:"id"`
	Name         string    `yaml:"name"`
	Title        string    `yaml:"title,omitempty"`
	Data         string    `yaml:"data"`
	Sheet        string    `yaml:"sheet,omitempty"`
	Delimiter    string    `yaml:"delimiter,omitempty"`
	GroupBy      string    `yaml:"group_by"`
	X            string    `yaml:"x"`
	Y            string    `yaml:"y"`
	XTitle       string    `yaml:"x_title,omitempty"`
	YTitle       string    `yaml:"y_title,omitempty"`
	TitleFormat  string    `yaml:"title_format,omitempty"`
	Groups       []Group   `yaml:"groups,omitempty"`
	ExpectGroups int       `yaml:"expect_groups,omitempty"`
	Renderer     string    `yaml:"renderer,omitempty"`
	Output       string    `yaml:"output,omitempty"`
	Trend        bool      `yaml:"trend,omitempty"`
	CreatedAt    time.Time `yaml:"created_at"`
	UpdatedAt    time.Time `yaml:"updated_at"`

	// Not serialized: on-disk location of the manifest
	path string `yaml:"-"`
}

// Group selects one chart by group key.
type Group struct {
	Key   string `yaml:"key"`
	Title string `yaml:"title,omitempty"`
}

// New constructs an in-memory manifest. Call Save() to persist.
func New(name, path string) *Manifest {
	now := time.Now().UTC().Truncate(time.Second)
	return &Manifest{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
		path:      path,
	}
}

// Load reads a manifest file.
func Load(path string) (*Manifest, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w at %s: %w", ErrNotFound, path, err)
		}
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var m Manifest
	if err := yaml.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", filepath.Base(path), err)
	}
	m.path = path
	return &m, nil
}

// Path returns the on-disk manifest location.
func (m *Manifest) Path() string { return m.path }

// Dir is the directory relative paths are resolved against.
func (m *Manifest) Dir() string { return filepath.Dir(m.path) }

// Save writes the manifest using atomic write.
func (m *Manifest) Save() error {
	if m.path == "" {
		return errors.New("manifest path not set")
	}
	if err := utils.EnsureDir(m.Dir()); err != nil {
		return fmt.Errorf("ensure dir: %w", err)
	}
	m.UpdatedAt = time.Now().UTC().Truncate(time.Second)
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	return utils.SafeWriteFile(m.path, data)
}

// Validate reports every problem in the manifest at once.
func (m *Manifest) Validate() error {
	var merr *multierror.Error
	if _, err := uuid.Parse(m.ID); err != nil {
		merr = multierror.Append(merr, fmt.Errorf("id: %w", err))
	}
	required := []struct{ field, val string }{
		{"name", m.Name},
		{"data", m.Data},
		{"group_by", m.GroupBy},
		{"x", m.X},
		{"y", m.Y},
	}
	for _, r := range required {
		if strings.TrimSpace(r.val) == "" {
			merr = multierror.Append(merr, fmt.Errorf("%s is required", r.field))
		}
	}
	seen := map[string]bool{}
	for i, g := range m.Groups {
		switch {
		case g.Key == "":
			merr = multierror.Append(merr, fmt.Errorf("groups[%d]: key is required", i))
		case seen[g.Key]:
			merr = multierror.Append(merr, fmt.Errorf("groups[%d]: duplicate key %q", i, g.Key))
		}
		seen[g.Key] = true
	}
	if m.ExpectGroups < 0 {
		merr = multierror.Append(merr, errors.New("expect_groups must not be negative"))
	}
	if _, err := chart.ByName(m.Renderer, chart.Options{}); err != nil {
		merr = multierror.Append(merr, err)
	}
	if len([]rune(m.Delimiter)) > 1 && m.Delimiter != `\t` {
		merr = multierror.Append(merr, fmt.Errorf("delimiter must be a single character: %q", m.Delimiter))
	}
	if err := merr.ErrorOrNil(); err != nil {
		return fmt.Errorf("%w %s: %w", ErrInvalid, m.Name, err)
	}
	return nil
}

// Request converts the manifest into a pipeline request. Relative data and
// output paths are resolved against the manifest's directory.
func (m *Manifest) Request() (multiplot.Request, error) {
	if err := m.Validate(); err != nil {
		return multiplot.Request{}, err
	}
	groups := make([]multiplot.GroupSpec, len(m.Groups))
	for i, g := range m.Groups {
		groups[i] = multiplot.GroupSpec{Key: g.Key, Title: g.Title}
	}
	output := m.Output
	if output == "" {
		output = strings.TrimSuffix(filepath.Base(m.path), filepath.Ext(m.path)) + ".html"
	}
	return multiplot.Request{
		DataPath:     m.resolve(m.Data),
		Sheet:        m.Sheet,
		Delimiter:    config.ParseDelimiter(m.Delimiter),
		GroupBy:      m.GroupBy,
		X:            m.X,
		Y:            m.Y,
		XTitle:       m.XTitle,
		YTitle:       m.YTitle,
		PageTitle:    m.Title,
		Groups:       groups,
		TitleFormat:  m.TitleFormat,
		ExpectGroups: m.ExpectGroups,
		Output:       m.resolve(output),
		Trend:        m.Trend,
	}, nil
}

func (m *Manifest) resolve(p string) string {
	if p == "" || filepath.IsAbs(p) || m.path == "" {
		return p
	}
	return filepath.Join(m.Dir(), p)
}

// Discover loads every manifest in dir. Files that do not parse are reported
// in the returned error while the rest are still returned, sorted by name.
func Discover(dir string) ([]*Manifest, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}
	var (
		out  []*Manifest
		merr *multierror.Error
	)
	for _, e := range entries {
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if e.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		m, err := Load(filepath.Join(dir, e.Name()))
		if err != nil {
			merr = multierror.Append(merr, err)
			continue
		}
		// other YAML files in the directory
		if m.ID == "" {
			continue
		}
		out = append(out, m)
	}
	slices.SortFunc(out, func(a, b *Manifest) int { return strings.Compare(a.Name, b.Name) })
	return out, merr.ErrorOrNil()
}
