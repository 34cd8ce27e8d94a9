package main

import (
	"flag"
	"log"
	"os"

	"GlyphCore/internal/di"
	"GlyphCore/pkg/config"
)

func main() {
	// Parse flags
	configPath := flag.String("config", "", "config file path (.yaml or .toml); empty uses defaults")
	flag.Parse()

	// Load config
	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	log.Printf("env=%s canvas=%dx%d cache=%s kafka=%t",
		cfg.Environment, cfg.Canvas.Width, cfg.Canvas.Height, cfg.Cache.Backend, cfg.Kafka.Enabled)

	// Wire DI: Initialize all dependencies
	app, err := di.InitializeApp(cfg)
	if err != nil {
		log.Fatalf("app initialization failed: %v", err)
	}

	// Run application (blocks until signal)
	if err := app.Run(); err != nil {
		log.Printf("app error: %v", err)
		os.Exit(1)
	}
}
