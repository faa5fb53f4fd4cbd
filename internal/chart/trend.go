package chart

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/stat"
)

// Line is a fitted y = Intercept + Slope*x segment spanning [X0, X1].
type Line struct {
	Intercept float64
	Slope     float64
	X0, X1    float64
}

// At evaluates the line.
func (l Line) At(x float64) float64 { return l.Intercept + l.Slope*x }

// Trend fits an ordinary least-squares line. It reports false when fewer
// than two points exist or x has no spread.
func Trend(x, y []float64) (Line, bool) {
	if len(x) < 2 || len(x) != len(y) {
		return Line{}, false
	}
	lo, hi := slices.Min(x), slices.Max(x)
	if lo == hi {
		return Line{}, false
	}
	alpha, beta := stat.LinearRegression(x, y, nil, false)
	if math.IsNaN(alpha) || math.IsNaN(beta) {
		return Line{}, false
	}
	return Line{Intercept: alpha, Slope: beta, X0: lo, X1: hi}, true
}
