package render

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/jedib0t/go-pretty/v6/text"

	"GlyphCore/internal/domain/models"
	domsvc "GlyphCore/internal/domain/service"
	"GlyphCore/internal/services/features"
)

const (
	MinWidth  = 20
	MinHeight = 8

	headerRows = 2
	footerRows = 1
)

const (
	glyphPoint  = '●'
	glyphFill   = '·'
	glyphFlat   = '─'
	glyphAxis   = '│'
	glyphTick   = '┤'
	glyphFull   = "█"
	glyphEmpty  = "░"
	placeholder = "N/A"
)

// TUI draws a Signal on a fixed width x height character canvas.
type TUI struct {
	width  int
	height int
}

// NewTUI clamps the canvas up to MinWidth x MinHeight.
func NewTUI(width, height int) *TUI {
	if width < MinWidth {
		width = MinWidth
	}
	if height < MinHeight {
		height = MinHeight
	}
	return &TUI{width: width, height: height}
}

func (r *TUI) Width() int  { return r.width }
func (r *TUI) Height() int { return r.height }

// Render returns exactly height lines joined by "\n", none wider than width.
func (r *TUI) Render(sig models.Signal) string {
	lines := make([]string, 0, r.height)
	lines = append(lines, r.fit(headline(sig)))
	lines = append(lines, r.fit(scoreline(sig, r.width)))

	values := sig.Values()
	if !features.Finite(values) {
		values = nil
	}
	lo, hi := features.Bounds(values)

	rows := r.height - headerRows - footerRows
	top, bottom := "", ""
	if len(values) > 0 {
		top, bottom = formatValue(hi), formatValue(lo)
	}
	gutter := max(text.RuneWidthWithoutEscSequences(top), text.RuneWidthWithoutEscSequences(bottom))
	if limit := r.width / 3; gutter > limit {
		gutter = limit
	}
	plotW := r.width - gutter - 1

	grid := plot(values, lo, hi, plotW, rows)
	for i, row := range grid {
		label, axis := "", glyphAxis
		switch i {
		case 0:
			label, axis = top, glyphTick
		case rows - 1:
			label, axis = bottom, glyphTick
		}
		label = text.AlignRight.Apply(text.Trim(label, gutter), gutter)
		lines = append(lines, r.fit(label+string(axis)+string(row)))
	}

	lines = append(lines, r.fit(strings.Repeat(" ", gutter+1)+axisLabels(sig.Labels(), plotW)))
	return strings.Join(lines, "\n")
}

func (r *TUI) fit(s string) string {
	return text.Pad(text.Trim(s, r.width), r.width, ' ')
}

func headline(sig models.Signal) string {
	dir, regime, mom := placeholder, placeholder, placeholder
	if sig.Direction.IsValid() {
		dir = string(sig.Direction)
	}
	if sig.Regime.IsValid() {
		regime = string(sig.Regime)
	}
	if sig.Momentum.IsValid() {
		mom = string(sig.Momentum)
	}
	return fmt.Sprintf("%s %s · %s · %s  (%d pts)", sig.Direction.Arrow(), dir, regime, mom, sig.Len())
}

func scoreline(sig models.Signal, width int) string {
	barW := (width - 26) / 2
	switch {
	case barW < 3:
		barW = 3
	case barW > 20:
		barW = 20
	}
	return fmt.Sprintf("strength %s %.2f  confidence %s %.2f",
		bar(sig.Strength, barW), clampScore(sig.Strength),
		bar(sig.Confidence, barW), clampScore(sig.Confidence))
}

func bar(score float64, width int) string {
	filled := int(math.Round(clampScore(score) * float64(width)))
	return strings.Repeat(glyphFull, filled) + strings.Repeat(glyphEmpty, width-filled)
}

func clampScore(x float64) float64 {
	if math.IsNaN(x) || x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

// plot rasterizes values onto a rows x cols grid, row 0 at the top.
func plot(values []float64, lo, hi float64, cols, rows int) [][]rune {
	grid := make([][]rune, rows)
	for i := range grid {
		grid[i] = []rune(strings.Repeat(" ", cols))
	}
	n := len(values)
	if n == 0 || cols <= 0 || rows <= 0 {
		return grid
	}

	// Scaled by the largest magnitude so hi-lo stays finite near MaxFloat64.
	s := math.Max(math.Abs(hi), math.Abs(lo))
	rowOf := func(v float64) int {
		if hi == lo || s == 0 {
			return (rows - 1) / 2
		}
		span := hi/s - lo/s
		r := math.Round((hi/s - v/s) / span * float64(rows-1))
		if math.IsNaN(r) {
			return (rows - 1) / 2
		}
		return min(max(int(r), 0), rows-1)
	}

	if n == 1 {
		grid[rowOf(values[0])][cols/2] = glyphPoint
		return grid
	}

	if hi == lo {
		mid := (rows - 1) / 2
		for c := 0; c < cols; c++ {
			grid[mid][c] = glyphFlat
		}
		return grid
	}

	if n > cols {
		plotDense(grid, values, cols, rowOf)
		return grid
	}
	plotSparse(grid, values, cols, rowOf)
	return grid
}

// plotDense keeps cols evenly spaced samples, first and last included, and
// bridges vertical jumps between neighbouring columns.
func plotDense(grid [][]rune, values []float64, cols int, rowOf func(float64) int) {
	n := len(values)
	prev := -1
	for c := 0; c < cols; c++ {
		idx := 0
		if cols > 1 {
			idx = int(math.Round(float64(c) * float64(n-1) / float64(cols-1)))
		}
		row := rowOf(values[idx])
		if prev >= 0 {
			bridge(grid, c, prev, row)
		}
		grid[row][c] = glyphPoint
		prev = row
	}
}

// plotSparse spreads points evenly across the width and fills the columns
// between them by linear interpolation.
func plotSparse(grid [][]rune, values []float64, cols int, rowOf func(float64) int) {
	n := len(values)
	xs := make([]int, n)
	for i := range xs {
		xs[i] = int(math.Round(float64(i) * float64(cols-1) / float64(n-1)))
	}
	for i := 0; i < n-1; i++ {
		x0, x1 := xs[i], xs[i+1]
		for c := x0 + 1; c < x1; c++ {
			f := float64(c-x0) / float64(x1-x0)
			v := values[i]*(1-f) + values[i+1]*f
			grid[rowOf(v)][c] = glyphFill
		}
	}
	for i, x := range xs {
		grid[rowOf(values[i])][x] = glyphPoint
	}
}

func bridge(grid [][]rune, col, from, to int) {
	if from > to {
		from, to = to, from
	}
	for row := from + 1; row < to; row++ {
		if grid[row][col] == ' ' {
			grid[row][col] = glyphFill
		}
	}
}

// axisLabels puts the first label on the left, the last on the right and the
// middle one centered when there is room for all three.
func axisLabels(labels []string, width int) string {
	if width <= 0 || len(labels) == 0 {
		return ""
	}
	slot := width / 3
	first := text.Trim(cleanLabel(labels[0]), slot)
	if len(labels) == 1 {
		return text.AlignCenter.Apply(first, width)
	}
	last := text.Trim(cleanLabel(labels[len(labels)-1]), slot)

	line := []rune(strings.Repeat(" ", width))
	place(line, 0, first)
	place(line, width-text.RuneWidthWithoutEscSequences(last), last)

	if len(labels) > 2 {
		mid := text.Trim(cleanLabel(labels[(len(labels)-1)/2]), slot)
		mw := text.RuneWidthWithoutEscSequences(mid)
		start := (width - mw) / 2
		fw := text.RuneWidthWithoutEscSequences(first)
		lw := text.RuneWidthWithoutEscSequences(last)
		if start > fw+1 && start+mw < width-lw-1 {
			place(line, start, mid)
		}
	}
	return string(line)
}

// cleanLabel turns runes that would break the grid (line breaks, tabs, other
// controls and zero-width marks) into spaces.
func cleanLabel(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) || unicode.In(r, unicode.Mn, unicode.Me, unicode.Cf) {
			return ' '
		}
		return r
	}, s)
}

func place(line []rune, at int, s string) {
	for i, ch := range []rune(s) {
		if at+i >= 0 && at+i < len(line) {
			line[at+i] = ch
		}
	}
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'g', 6, 64)
}

var _ domsvc.Renderer = (*TUI)(nil)
