package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(body), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

func TestDefault(t *testing.T) {
	c := Default()
	if c.Canvas.Width != 80 || c.Canvas.Height != 24 {
		t.Fatalf("canvas defaults: %+v", c.Canvas)
	}
	if c.Server.Port != 8080 || c.Server.ReadTimeout != 10*time.Second {
		t.Fatalf("server defaults: %+v", c.Server)
	}
	if c.Analyzer.FlatEpsilon != 0.1 || c.Analyzer.VolatileThreshold != 0.02 {
		t.Fatalf("analyzer defaults: %+v", c.Analyzer)
	}
	if c.Log.Level != "info" || c.Log.Format != "json" {
		t.Fatalf("log defaults: %+v", c.Log)
	}
	if err := c.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestLoadYAML(t *testing.T) {
	p := writeFile(t, "glyph.yaml", `
environment: production
server:
  port: 9090
  cors: false
  read_timeout: 3s
canvas:
  width: 60
  height: 15
analyzer:
  flat_epsilon: 0.2
cache:
  backend: none
`)
	c, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Environment != "production" || c.Server.Port != 9090 || c.Server.CORS {
		t.Fatalf("server section not applied: %+v", c.Server)
	}
	if len(c.Server.CORSOrigins) != 1 || c.Server.CORSOrigins[0] != "*" {
		t.Fatalf("cors origins default: %v", c.Server.CORSOrigins)
	}
	if c.Server.ReadTimeout != 3*time.Second || c.Server.WriteTimeout != 10*time.Second {
		t.Fatalf("timeouts: %v %v", c.Server.ReadTimeout, c.Server.WriteTimeout)
	}
	if c.Canvas.Width != 60 || c.Canvas.Height != 15 {
		t.Fatalf("canvas: %+v", c.Canvas)
	}
	if c.Analyzer.FlatEpsilon != 0.2 || c.Analyzer.TrendMove != 0.03 {
		t.Fatalf("analyzer: %+v", c.Analyzer)
	}
}

func TestLoadTOML(t *testing.T) {
	p := writeFile(t, "glyph.toml", `
environment = "test"

[canvas]
width = 70
height = 18

[kafka]
enabled = true
brokers = ["localhost:9092"]
`)
	c, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Environment != "test" || c.Canvas.Width != 70 || c.Canvas.Height != 18 {
		t.Fatalf("unexpected config %+v", c)
	}
	if !c.Kafka.Enabled || len(c.Kafka.Brokers) != 1 || c.Kafka.SignalTopic != "glyph.signals" {
		t.Fatalf("kafka: %+v", c.Kafka)
	}
}

func TestLoadRejects(t *testing.T) {
	cases := map[string]string{
		"bad.yaml":   "canvas:\n  width: -5\n",
		"env.yaml":   "environment: moon\n",
		"kafka.yaml": "kafka:\n  enabled: true\n",
		"log.yaml":   "log:\n  format: xml\n",
		"eps.yaml":   "analyzer:\n  flat_epsilon: 3\n",
		"conf.ini":   "width=1\n",
	}
	for name, body := range cases {
		if _, err := Load(writeFile(t, name, body)); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("missing file should fail")
	}
}

func TestLoadWithEnvOverrides(t *testing.T) {
	t.Setenv("GLYPH_PORT", "7000")
	t.Setenv("GLYPH_CANVAS_WIDTH", "100")
	t.Setenv("GLYPH_KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("GLYPH_LOG_LEVEL", "debug")
	t.Setenv("GLYPH_CORS_ORIGINS", "https://a.example,https://b.example")

	c, err := LoadWithEnv("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Server.Port != 7000 || c.Canvas.Width != 100 || c.Log.Level != "debug" {
		t.Fatalf("overrides not applied: port=%d width=%d level=%s", c.Server.Port, c.Canvas.Width, c.Log.Level)
	}
	if !c.Kafka.Enabled || len(c.Kafka.Brokers) != 2 {
		t.Fatalf("kafka override: %+v", c.Kafka)
	}
	if len(c.Server.CORSOrigins) != 2 || c.Server.CORSOrigins[1] != "https://b.example" {
		t.Fatalf("cors override: %v", c.Server.CORSOrigins)
	}

	t.Setenv("GLYPH_CANVAS_HEIGHT", "tall")
	if _, err := LoadWithEnv(""); err == nil {
		t.Fatalf("non-numeric height should fail")
	}
}
