// Package engine is the entry point of the signal core: build an Engine with
// a canvas size, Analyze a series, RenderTUI the result.
package engine

import (
	"fmt"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"

	"GlyphCore/internal/domain/models"
	"GlyphCore/internal/services/analytics"
	"GlyphCore/internal/services/render"
)

var (
	ErrInvalidInput   = models.ErrInvalidInput
	ErrLengthMismatch = models.ErrLengthMismatch
	ErrConfiguration  = models.ErrConfiguration
)

const (
	MinWidth  = render.MinWidth
	MinHeight = render.MinHeight
)

// Config is the immutable engine configuration.
type Config struct {
	Width      int `default:"80" validate:"gt=0"`
	Height     int `default:"24" validate:"gt=0"`
	Thresholds analytics.Thresholds
}

type Option func(*Config)

func WithWidth(w int) Option { return func(c *Config) { c.Width = w } }

func WithHeight(h int) Option { return func(c *Config) { c.Height = h } }

func WithThresholds(th analytics.Thresholds) Option {
	return func(c *Config) { c.Thresholds = th }
}

// Engine is safe for concurrent use; it keeps no state between calls.
type Engine struct {
	cfg      Config
	analyzer *analytics.Analyzer
	tui      *render.TUI
}

var validate = validator.New()

// New builds an Engine. Unset fields take defaults (80x24 and the default
// thresholds), non-positive dimensions fail with ErrConfiguration and sizes
// under MinWidth x MinHeight are raised to the minimum.
func New(opts ...Option) (*Engine, error) {
	var cfg Config
	if err := defaults.Set(&cfg); err != nil {
		return nil, fmt.Errorf("engine defaults: %w", err)
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("engine: width=%d height=%d: %v: %w", cfg.Width, cfg.Height, err, ErrConfiguration)
	}

	tui := render.NewTUI(cfg.Width, cfg.Height)
	cfg.Width, cfg.Height = tui.Width(), tui.Height()

	a := analytics.NewAnalyzer(cfg.Thresholds)
	cfg.Thresholds = a.Thresholds()

	return &Engine{cfg: cfg, analyzer: a, tui: tui}, nil
}

// MustNew is New for fixed, known-good options.
func MustNew(opts ...Option) *Engine {
	e, err := New(opts...)
	if err != nil {
		panic(err)
	}
	return e
}

func (e *Engine) Width() int  { return e.cfg.Width }
func (e *Engine) Height() int { return e.cfg.Height }

func (e *Engine) Config() Config { return e.cfg }

// Analyze classifies values into a Signal. labels may be nil.
func (e *Engine) Analyze(values []float64, labels []string) (models.Signal, error) {
	return e.analyzer.Analyze(values, labels)
}

// RenderTUI draws sig on the engine's canvas: exactly Height lines of at most
// Width characters.
func (e *Engine) RenderTUI(sig models.Signal) string {
	return e.tui.Render(sig)
}
