package analysis

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/KaramelBytes/multiplot/internal/table"
)

// DefaultOutlierThreshold is the robust z-score above which a value counts as an outlier.
const DefaultOutlierThreshold = 3.5

var ErrNoColumns = errors.New("no columns to describe")

// Report summarises numeric columns per group.
type Report struct {
	Name             string        `json:"name,omitempty"`
	GroupBy          string        `json:"group_by,omitempty"`
	Columns          []string      `json:"columns"`
	Groups           []GroupResult `json:"groups"`
	Corr             []PairCorr    `json:"correlations,omitempty"`
	OutlierThreshold float64       `json:"outlier_threshold"`
	Warnings         []string      `json:"warnings,omitempty"`
}

// GroupResult holds the metrics of one group, in column order.
type GroupResult struct {
	Key     string       `json:"key"`
	Size    int          `json:"size"`
	Metrics []NumSummary `json:"metrics"`
}

type NumSummary struct {
	Column   string  `json:"column"`
	Count    int     `json:"count"`
	Missing  int     `json:"missing"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Mean     float64 `json:"mean"`
	Std      float64 `json:"std"`
	Outliers int     `json:"outliers"`
}

// PairCorr is the Pearson correlation of two columns within one group.
type PairCorr struct {
	Group string  `json:"group"`
	A     string  `json:"a"`
	B     string  `json:"b"`
	R     float64 `json:"r"`
	N     int     `json:"n"`
}

// Describe computes count, min, max, mean and sample standard deviation of
// each column within each group, plus the Pearson correlation between the
// first two columns. Groups keep their input order.
func Describe(groups table.Groups, columns []string) (*Report, error) {
	if len(columns) == 0 {
		return nil, ErrNoColumns
	}
	rep := &Report{Columns: slices.Clone(columns), OutlierThreshold: DefaultOutlierThreshold}
	for _, g := range groups {
		gr := GroupResult{Key: g.Key, Size: g.Table.Rows()}
		cols := make([][]float64, len(columns))
		for i, c := range columns {
			vals, err := g.Table.Numbers(c)
			if err != nil {
				return nil, fmt.Errorf("group %q: %w", g.Key, err)
			}
			cols[i] = vals
			gr.Metrics = append(gr.Metrics, summarize(c, vals, rep.OutlierThreshold))
		}
		rep.Groups = append(rep.Groups, gr)

		if len(columns) < 2 {
			continue
		}
		xs, ys := completePairs(cols[0], cols[1])
		if len(xs) < 2 {
			rep.Warnings = append(rep.Warnings, fmt.Sprintf("%s: too few complete rows to correlate %s and %s", g.Key, columns[0], columns[1]))
			continue
		}
		r := stat.Correlation(xs, ys, nil)
		if math.IsNaN(r) || math.IsInf(r, 0) {
			rep.Warnings = append(rep.Warnings, fmt.Sprintf("%s: %s or %s is constant, correlation undefined", g.Key, columns[0], columns[1]))
			continue
		}
		rep.Corr = append(rep.Corr, PairCorr{Group: g.Key, A: columns[0], B: columns[1], R: clamp(r), N: len(xs)})
	}
	return rep, nil
}

func summarize(column string, vals []float64, threshold float64) NumSummary {
	s := NumSummary{Column: column}
	clean := make([]float64, 0, len(vals))
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			s.Missing++
			continue
		}
		clean = append(clean, v)
	}
	s.Count = len(clean)
	if s.Count == 0 {
		return s
	}
	s.Min = floats.Min(clean)
	s.Max = floats.Max(clean)
	if s.Count == 1 {
		s.Mean = clean[0]
		return s
	}
	s.Mean, s.Std = stat.MeanStdDev(clean, nil)
	if s.Count >= 8 {
		s.Outliers = robustOutliers(clean, threshold)
	}
	return s
}

// robustOutliers counts values whose MAD-based z-score exceeds threshold.
func robustOutliers(vals []float64, threshold float64) int {
	sorted := slices.Clone(vals)
	slices.Sort(sorted)
	median := stat.Quantile(0.5, stat.LinInterp, sorted, nil)
	dev := make([]float64, len(sorted))
	for i, v := range sorted {
		dev[i] = math.Abs(v - median)
	}
	slices.Sort(dev)
	mad := stat.Quantile(0.5, stat.LinInterp, dev, nil)
	if mad == 0 {
		return 0
	}
	n := 0
	for _, v := range vals {
		if math.Abs(0.6745*(v-median)/mad) > threshold {
			n++
		}
	}
	return n
}

func completePairs(a, b []float64) ([]float64, []float64) {
	var xs, ys []float64
	for i, n := 0, min(len(a), len(b)); i < n; i++ {
		if math.IsNaN(a[i]) || math.IsNaN(b[i]) || math.IsInf(a[i], 0) || math.IsInf(b[i], 0) {
			continue
		}
		xs = append(xs, a[i])
		ys = append(ys, b[i])
	}
	return xs, ys
}

func clamp(r float64) float64 {
	return math.Max(-1, math.Min(1, r))
}

// Markdown renders a compact report suitable for standalone docs.
func (r *Report) Markdown() string {
	var b strings.Builder
	b.WriteString("[GROUP-BY SUMMARY]\n")
	if r.Name != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", r.Name))
	}
	if r.GroupBy != "" {
		b.WriteString(fmt.Sprintf("Grouped by: %s (%d groups)\n", r.GroupBy, len(r.Groups)))
	}
	for _, g := range r.Groups {
		b.WriteString(fmt.Sprintf("- %s (n=%d)\n", safeVal(g.Key), g.Size))
		for _, m := range g.Metrics {
			if m.Count == 0 {
				b.WriteString(fmt.Sprintf("  • %s: no values\n", m.Column))
				continue
			}
			b.WriteString(fmt.Sprintf("  • %s: mean %.4g (min %.4g, max %.4g, std %.4g)", m.Column, m.Mean, m.Min, m.Max, m.Std))
			if m.Missing > 0 {
				b.WriteString(fmt.Sprintf("; missing %d", m.Missing))
			}
			if m.Outliers > 0 {
				b.WriteString(fmt.Sprintf("; outliers: %d above |z|>%.1f", m.Outliers, r.OutlierThreshold))
			}
			b.WriteString("\n")
		}
	}
	if len(r.Corr) > 0 {
		b.WriteString("\n[CORRELATIONS]\n")
		for _, p := range r.Corr {
			b.WriteString(fmt.Sprintf("- %s: %s ~ %s: r=%.3f (n=%d)\n", safeVal(p.Group), p.A, p.B, p.R, p.N))
		}
	}
	if len(r.Warnings) > 0 {
		b.WriteString("\n[NOTES]\n")
		for _, w := range r.Warnings {
			b.WriteString("- ")
			b.WriteString(w)
			b.WriteString("\n")
		}
	}
	return b.String()
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
