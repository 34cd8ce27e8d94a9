package render

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"GlyphCore/internal/domain/models"
	domsvc "GlyphCore/internal/domain/service"
)

// HTML exports a Signal as a standalone echarts line chart page.
type HTML struct {
	width  int // px
	height int // px
}

func NewHTML(width, height int) *HTML {
	if width <= 0 {
		width = 960
	}
	if height <= 0 {
		height = 480
	}
	return &HTML{width: width, height: height}
}

func (h *HTML) Export(w io.Writer, sig models.Signal) error {
	values := sig.Values()
	labels := sig.Labels()
	if len(labels) != len(values) {
		labels = make([]string, len(values))
		for i := range labels {
			labels[i] = fmt.Sprint(i)
		}
	}

	data := make([]opts.LineData, len(values))
	for i, v := range values {
		data[i] = opts.LineData{Value: v}
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: "glyph signal",
			Width:     fmt.Sprintf("%dpx", h.width),
			Height:    fmt.Sprintf("%dpx", h.height),
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    fmt.Sprintf("%s %s", sig.Direction.Arrow(), sig.Direction),
			Subtitle: fmt.Sprintf("%s · %s · strength %.2f · confidence %.2f", sig.Regime, sig.Momentum, sig.Strength, sig.Confidence),
		}),
	)
	line.SetXAxis(labels).AddSeries("value", data)

	if err := line.Render(w); err != nil {
		return fmt.Errorf("render html chart: %w", err)
	}
	return nil
}

var _ domsvc.ChartExporter = (*HTML)(nil)
