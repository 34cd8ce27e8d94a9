package service

import (
	"io"

	"GlyphCore/internal/domain/models"
)

// Analyzer classifies a series into a Signal. Implementations are pure:
// the same input always yields the same Signal.
type Analyzer interface {
	Analyze(values []float64, labels []string) (models.Signal, error)
}

// Renderer draws a Signal as a fixed-size text canvas.
type Renderer interface {
	Render(sig models.Signal) string
}

// ChartExporter writes a Signal as a standalone document (HTML).
type ChartExporter interface {
	Export(w io.Writer, sig models.Signal) error
}
