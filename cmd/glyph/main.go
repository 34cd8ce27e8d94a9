// Command glyph classifies a series read from a file or stdin and prints the
// signal as a text chart, a JSON document or an HTML page.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"GlyphCore/internal/domain/models"
	"GlyphCore/internal/engine"
	"GlyphCore/internal/services/render"
	"GlyphCore/pkg/config"
	applogger "GlyphCore/pkg/logger"
	"GlyphCore/pkg/util"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("glyph", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		configPath = fs.String("config", "", "config file for canvas and analyzer thresholds")
		width      = fs.Int("width", 0, "canvas width (default from config, 80)")
		height     = fs.Int("height", 0, "canvas height (default from config, 24)")
		htmlPath   = fs.String("html", "", "also write an HTML chart to this path")
		asJSON     = fs.Bool("json", false, "print the signal as JSON instead of a chart")
		verbose    = fs.Bool("v", false, "debug logging to stderr")
	)
	if err := fs.Parse(args); err != nil {
		return 2
	}

	level := "warn"
	if *verbose {
		level = "debug"
	}
	l := applogger.NewWriter(stderr, level)

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			l.Error("config load failed", applogger.Error(err))
			return 1
		}
	}
	if *width != 0 {
		cfg.Canvas.Width = *width
	}
	if *height != 0 {
		cfg.Canvas.Height = *height
	}

	eng, err := engine.New(
		engine.WithWidth(cfg.Canvas.Width),
		engine.WithHeight(cfg.Canvas.Height),
		engine.WithThresholds(cfg.Analyzer),
	)
	if err != nil {
		l.Error("engine init failed", applogger.Error(err))
		return 1
	}

	in := stdin
	if fs.NArg() > 0 && fs.Arg(0) != "-" {
		f, err := os.Open(fs.Arg(0))
		if err != nil {
			l.Error("open input failed", applogger.Error(err))
			return 1
		}
		defer f.Close()
		in = f
	}

	values, labels, err := readSeries(in)
	if err != nil {
		l.Error("parse input failed", applogger.Error(err))
		return 1
	}
	labels = util.ShortenTimeLabels(labels)
	l.Debug("series loaded", applogger.Int("points", len(values)), applogger.Bool("labeled", labels != nil))

	sig, err := eng.Analyze(values, labels)
	if err != nil {
		l.Error("analyze failed", applogger.Error(err))
		return 1
	}

	if *htmlPath != "" {
		if err := writeHTML(*htmlPath, sig); err != nil {
			l.Error("html export failed", applogger.Error(err))
			return 1
		}
	}

	if *asJSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(sig); err != nil {
			l.Error("encode failed", applogger.Error(err))
			return 1
		}
		return 0
	}

	fmt.Fprintln(stdout, eng.RenderTUI(sig))
	fmt.Fprintln(stdout, render.Summary(sig))
	return 0
}

func writeHTML(path string, sig models.Signal) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := render.NewHTML(0, 0).Export(f, sig); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
