package render

import (
	"bytes"
	"strings"
	"testing"
)

func TestHTMLExport(t *testing.T) {
	var buf bytes.Buffer
	sig := signalOf([]float64{1, 3, 2}, []string{"mon", "tue", "wed"})
	if err := NewHTML(0, 0).Export(&buf, sig); err != nil {
		t.Fatalf("export: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"<html", "echarts", "tue", "TRENDING"} {
		if !strings.Contains(out, want) {
			t.Fatalf("html output missing %q", want)
		}
	}
}

func TestSummaryTable(t *testing.T) {
	out := Summary(signalOf([]float64{1, 2}, nil))
	for _, want := range []string{"direction", "UP", "TRENDING", "0.750"} {
		if !strings.Contains(out, want) {
			t.Fatalf("summary missing %q:\n%s", want, out)
		}
	}
}
