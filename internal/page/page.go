package page

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"
)

// Chart is one pre-rendered chart fragment and the element it attaches to.
type Chart struct {
	// Markup is embedded verbatim; usually a <script> block.
	Markup      string
	ContainerID string
}

// Skeleton is the fixed page frame the charts are placed into.
type Skeleton struct {
	Header string
	Footer string
}

// ErrMissingContainer indicates a chart refers to an element id the header does not declare.
var ErrMissingContainer = errors.New("container not declared in page header")

// Compose concatenates header, every chart's markup in input order and footer.
// Each chart is preceded by a newline and a newline closes the last chart, so
// an empty chart list yields exactly header+footer. Compose never validates.
func Compose(header, footer string, charts []Chart) string {
	var sb strings.Builder
	n := len(header) + len(footer) + len(charts) + 1
	for _, c := range charts {
		n += len(c.Markup)
	}
	sb.Grow(n)
	sb.WriteString(header)
	for _, c := range charts {
		sb.WriteByte('\n')
		sb.WriteString(c.Markup)
	}
	if len(charts) > 0 {
		sb.WriteByte('\n')
	}
	sb.WriteString(footer)
	return sb.String()
}

// Compose renders the skeleton around charts.
func (s Skeleton) Compose(charts []Chart) string {
	return Compose(s.Header, s.Footer, charts)
}

// Validate reports every chart whose container id is not declared in header
// as an id='...' (or id="...") attribute.
func Validate(header string, charts []Chart) error {
	var merr *multierror.Error
	for i, c := range charts {
		if !DeclaresContainer(header, c.ContainerID) {
			merr = multierror.Append(merr, fmt.Errorf("chart %d: %q: %w", i, c.ContainerID, ErrMissingContainer))
		}
	}
	return merr.ErrorOrNil()
}

// DeclaresContainer reports whether header carries an element id equal to id.
func DeclaresContainer(header, id string) bool {
	if id == "" {
		return false
	}
	return strings.Contains(header, "id='"+id+"'") || strings.Contains(header, `id="`+id+`"`)
}
