package render

import (
	"strings"
	"testing"
	"unicode/utf8"

	"GlyphCore/internal/domain/models"
)

func signalOf(values []float64, labels []string) models.Signal {
	sig := models.Signal{
		Direction:  models.DirectionUp,
		Strength:   0.5,
		Momentum:   models.MomentumSteady,
		Regime:     models.RegimeTrending,
		Confidence: 0.75,
	}
	return sig.WithSeries(values, labels)
}

func checkCanvas(t *testing.T, out string, w, h int) []string {
	t.Helper()
	lines := strings.Split(out, "\n")
	if len(lines) != h {
		t.Fatalf("got %d lines want %d", len(lines), h)
	}
	for i, l := range lines {
		if n := utf8.RuneCountInString(l); n > w {
			t.Fatalf("line %d is %d runes wide, limit %d: %q", i, n, w, l)
		}
	}
	return lines
}

func countRune(lines []string, r rune) int {
	total := 0
	for _, l := range lines {
		total += strings.Count(l, string(r))
	}
	return total
}

func TestRenderShapeAcrossSizes(t *testing.T) {
	series := [][]float64{
		{42},
		{45000, 45000, 45000},
		{42000, 43000, 48000, 45500, 46000},
		{1, -1, 1, -1, 1, -1, 1, -1, 1, -1, 1, -1, 1, -1, 1, -1, 1, -1, 1, -1, 1, -1, 1, -1, 1, -1, 1, -1, 1},
	}
	sizes := [][2]int{{20, 8}, {60, 15}, {70, 18}, {80, 24}, {133, 41}}
	for _, values := range series {
		for _, sz := range sizes {
			r := NewTUI(sz[0], sz[1])
			checkCanvas(t, r.Render(signalOf(values, nil)), sz[0], sz[1])
		}
	}
}

func TestRenderClampsSmallCanvas(t *testing.T) {
	r := NewTUI(5, 3)
	if r.Width() != MinWidth || r.Height() != MinHeight {
		t.Fatalf("got %dx%d", r.Width(), r.Height())
	}
	checkCanvas(t, r.Render(signalOf([]float64{1, 2, 3}, nil)), MinWidth, MinHeight)
}

func TestRenderHeaderAndAxes(t *testing.T) {
	lines := checkCanvas(t, NewTUI(20, 8).Render(signalOf([]float64{1, 2, 3}, []string{"a", "b", "c"})), 20, 8)

	if !strings.HasPrefix(lines[0], "▲ UP") {
		t.Fatalf("unexpected headline %q", lines[0])
	}
	top := []rune(lines[2])
	if !strings.HasPrefix(lines[2], "3┤") || top[len(top)-1] != glyphPoint {
		t.Fatalf("top row should carry the max label and the last point: %q", lines[2])
	}
	bottom := []rune(lines[6])
	if !strings.HasPrefix(lines[6], "1┤") || bottom[2] != glyphPoint {
		t.Fatalf("bottom row should carry the min label and the first point: %q", lines[6])
	}
	if got := strings.Fields(lines[7]); len(got) != 3 || got[0] != "a" || got[1] != "b" || got[2] != "c" {
		t.Fatalf("axis labels: %q", lines[7])
	}
	if n := countRune(lines[2:7], glyphPoint); n != 3 {
		t.Fatalf("expected 3 data points, got %d", n)
	}
	if countRune(lines[2:7], glyphFill) == 0 {
		t.Fatalf("gaps between points should be interpolated")
	}
}

func TestRenderFlatline(t *testing.T) {
	lines := checkCanvas(t, NewTUI(60, 15).Render(signalOf([]float64{7, 7, 7, 7}, nil)), 60, 15)
	found := -1
	for i, l := range lines[2:14] {
		if strings.Count(l, string(glyphFlat)) > 40 {
			found = i
		}
	}
	if found != (12-1)/2 {
		t.Fatalf("flat line should sit on the middle row, found at %d", found)
	}
}

func TestRenderSinglePoint(t *testing.T) {
	lines := checkCanvas(t, NewTUI(80, 24).Render(signalOf([]float64{42}, []string{"only"})), 80, 24)
	if n := countRune(lines[2:23], glyphPoint); n != 1 {
		t.Fatalf("expected one marker, got %d", n)
	}
	if !strings.Contains(lines[23], "only") {
		t.Fatalf("label missing: %q", lines[23])
	}
}

func TestRenderDecimatesLongSeries(t *testing.T) {
	values := make([]float64, 500)
	for i := range values {
		values[i] = float64(i) * 1.5
	}
	lines := checkCanvas(t, NewTUI(40, 12).Render(signalOf(values, nil)), 40, 12)
	plotW := 40 - len("748.5") - 1
	if n := countRune(lines[2:11], glyphPoint); n != plotW {
		t.Fatalf("one sample per column expected: got %d want %d", n, plotW)
	}
}

func TestRenderZeroSignal(t *testing.T) {
	lines := checkCanvas(t, NewTUI(30, 10).Render(models.Signal{}), 30, 10)
	if !strings.Contains(lines[0], placeholder) {
		t.Fatalf("zero signal headline: %q", lines[0])
	}
	if countRune(lines, glyphPoint) != 0 {
		t.Fatalf("zero signal should not plot anything")
	}
}

func TestBar(t *testing.T) {
	if got := bar(0.5, 4); got != "██░░" {
		t.Fatalf("got %q", got)
	}
	if got := bar(7, 3); got != "███" {
		t.Fatalf("got %q", got)
	}
	if got := bar(-1, 3); got != "░░░" {
		t.Fatalf("got %q", got)
	}
}

func TestRenderControlCharsInLabels(t *testing.T) {
	labels := []string{"a\nb", "\t", "z\r\nq"}
	lines := checkCanvas(t, NewTUI(40, 10).Render(signalOf([]float64{1, 2, 3}, labels)), 40, 10)
	last := lines[9]
	if strings.ContainsAny(last, "\t\r\n") {
		t.Fatalf("control characters leaked onto the axis: %q", last)
	}
	if !strings.HasPrefix(strings.TrimSpace(last), "a b") || !strings.HasSuffix(last, "z  q") {
		t.Fatalf("labels should keep their text with breaks blanked: %q", last)
	}
}

func TestRenderExtremeRange(t *testing.T) {
	lines := checkCanvas(t, NewTUI(40, 10).Render(signalOf([]float64{-1e308, 1e308}, nil)), 40, 10)
	top, bottom := lines[2], lines[8]
	if !strings.ContainsRune(top, glyphPoint) || !strings.ContainsRune(bottom, glyphPoint) {
		t.Fatalf("endpoints should sit on the outer rows:\n%s", strings.Join(lines, "\n"))
	}
	if strings.IndexRune(bottom, glyphPoint) > strings.IndexRune(top, glyphPoint) {
		t.Fatalf("rising series drawn falling:\n%s", strings.Join(lines, "\n"))
	}
}
