package page

import (
	"errors"
	"fmt"
	"html"
	"strconv"
	"strings"
)

var (
	// ErrUnknownContainer indicates a chart targets an id the builder never allocated.
	ErrUnknownContainer = errors.New("unknown container id")
	// ErrDuplicateContainer indicates a second chart for an already filled container.
	ErrDuplicateContainer = errors.New("container already has a chart")
	// ErrEmptyContainer indicates an allocated container without a chart at build time.
	ErrEmptyContainer = errors.New("container has no chart")
)

const (
	DefaultTitle    = "Multi-plot"
	DefaultIDPrefix = "plot"
)

// Options controls the generated page skeleton.
type Options struct {
	Title string
	// Scripts are emitted as <script src> tags in <head>, in order.
	Scripts []string
	// ContainerStyle is an optional inline style for every container div.
	ContainerStyle string
	// IDPrefix is followed by a 1-based counter; defaults to "plot".
	IDPrefix string
}

// Builder allocates container ids and assembles a page whose header is
// guaranteed to declare every container a chart is added for.
type Builder struct {
	opt    Options
	ids    []string
	charts map[string]Chart
}

// NewBuilder returns an empty builder.
func NewBuilder(opt Options) *Builder {
	if opt.Title == "" {
		opt.Title = DefaultTitle
	}
	if opt.IDPrefix == "" {
		opt.IDPrefix = DefaultIDPrefix
	}
	return &Builder{opt: opt, charts: make(map[string]Chart)}
}

// Allocate reserves the next container id (plot1, plot2, ...).
func (b *Builder) Allocate() string {
	id := b.opt.IDPrefix + strconv.Itoa(len(b.ids)+1)
	b.ids = append(b.ids, id)
	return id
}

// IDs returns the allocated container ids in allocation order.
func (b *Builder) IDs() []string {
	out := make([]string, len(b.ids))
	copy(out, b.ids)
	return out
}

// Add attaches a rendered chart to a previously allocated container.
func (b *Builder) Add(c Chart) error {
	if !b.allocated(c.ContainerID) {
		return fmt.Errorf("add chart %q: %w", c.ContainerID, ErrUnknownContainer)
	}
	if _, ok := b.charts[c.ContainerID]; ok {
		return fmt.Errorf("add chart %q: %w", c.ContainerID, ErrDuplicateContainer)
	}
	b.charts[c.ContainerID] = c
	return nil
}

func (b *Builder) allocated(id string) bool {
	for _, have := range b.ids {
		if have == id {
			return true
		}
	}
	return false
}

// Skeleton renders the header and footer for the containers allocated so far.
func (b *Builder) Skeleton() Skeleton {
	var sb strings.Builder
	sb.WriteString("<html>\n")
	sb.WriteString("<head>\n")
	sb.WriteString("    <meta charset=\"utf-8\">\n")
	sb.WriteString("    <title>")
	sb.WriteString(html.EscapeString(b.opt.Title))
	sb.WriteString("</title>\n")
	for _, src := range b.opt.Scripts {
		if strings.TrimSpace(src) == "" {
			continue
		}
		sb.WriteString("    <script src=\"")
		sb.WriteString(html.EscapeString(src))
		sb.WriteString("\"></script>\n")
	}
	sb.WriteString("</head>\n")
	sb.WriteString("<body>\n")
	for _, id := range b.ids {
		sb.WriteString("<div id='")
		sb.WriteString(id)
		sb.WriteString("'")
		if b.opt.ContainerStyle != "" {
			sb.WriteString(" style=\"")
			sb.WriteString(html.EscapeString(b.opt.ContainerStyle))
			sb.WriteString("\"")
		}
		sb.WriteString("></div>\n")
	}
	return Skeleton{
		Header: sb.String(),
		Footer: "</body>\n</html>",
	}
}

// Build composes the page. Charts appear in container allocation order.
func (b *Builder) Build() (string, error) {
	charts := make([]Chart, 0, len(b.ids))
	for _, id := range b.ids {
		c, ok := b.charts[id]
		if !ok {
			return "", fmt.Errorf("build page: %q: %w", id, ErrEmptyContainer)
		}
		charts = append(charts, c)
	}
	s := b.Skeleton()
	if err := Validate(s.Header, charts); err != nil {
		return "", fmt.Errorf("build page: %w", err)
	}
	return s.Compose(charts), nil
}
