package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"GlyphCore/internal/services/analytics"
	applogger "GlyphCore/pkg/logger"
)

type Config struct {
	Environment string `yaml:"environment" toml:"environment" default:"development" validate:"oneof=development staging production test"`

	Server struct {
		Host            string        `yaml:"host" toml:"host" default:"0.0.0.0"`
		Port            int           `yaml:"port" toml:"port" default:"8080" validate:"gt=0,lte=65535"`
		ReadTimeout     time.Duration `yaml:"read_timeout" toml:"read_timeout" default:"10s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" toml:"write_timeout" default:"10s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" toml:"shutdown_timeout" default:"10s"`
		SlowThreshold   time.Duration `yaml:"slow_threshold" toml:"slow_threshold" default:"500ms"`
		CORS            bool          `yaml:"cors" toml:"cors" default:"true"`
		CORSOrigins     []string      `yaml:"cors_origins" toml:"cors_origins" default:"[\"*\"]"`
	} `yaml:"server" toml:"server"`

	Log applogger.Config `yaml:"log" toml:"log"`

	LogCollect struct {
		Topic     string        `yaml:"topic" toml:"topic"`
		Interval  time.Duration `yaml:"interval" toml:"interval" default:"30s"`
		Threshold int           `yaml:"threshold" toml:"threshold" default:"100"`
	} `yaml:"log_collect" toml:"log_collect"`

	Metrics struct {
		Enabled bool   `yaml:"enabled" toml:"enabled" default:"true"`
		Path    string `yaml:"path" toml:"path" default:"/metrics"`
	} `yaml:"metrics" toml:"metrics"`

	Canvas struct {
		Width  int `yaml:"width" toml:"width" default:"80" validate:"gt=0"`
		Height int `yaml:"height" toml:"height" default:"24" validate:"gt=0"`
	} `yaml:"canvas" toml:"canvas"`

	Analyzer analytics.Thresholds `yaml:"analyzer" toml:"analyzer"`

	Cache struct {
		Backend   string        `yaml:"backend" toml:"backend" default:"memory" validate:"oneof=none memory redis layered"`
		TTL       time.Duration `yaml:"ttl" toml:"ttl" default:"5m"`
		MaxItems  int           `yaml:"max_items" toml:"max_items" default:"1000" validate:"gt=0"`
		RedisAddr string        `yaml:"redis_addr" toml:"redis_addr" default:"localhost:6379"`
		RedisPass string        `yaml:"redis_password" toml:"redis_password"`
		RedisDB   int           `yaml:"redis_db" toml:"redis_db"`
		Prefix    string        `yaml:"prefix" toml:"prefix" default:"glyph"`
	} `yaml:"cache" toml:"cache"`

	RateLimit struct {
		Capacity     float64 `yaml:"capacity" toml:"capacity" default:"20"`
		RefillPerSec float64 `yaml:"refill_per_sec" toml:"refill_per_sec" default:"10"`
	} `yaml:"ratelimit" toml:"ratelimit"`

	Stream struct {
		Window      int           `yaml:"window" toml:"window" default:"120" validate:"gte=2"`
		MinInterval time.Duration `yaml:"min_interval" toml:"min_interval" default:"100ms"`
		PingPeriod  time.Duration `yaml:"ping_period" toml:"ping_period" default:"30s"`
	} `yaml:"stream" toml:"stream"`

	Kafka struct {
		Enabled      bool     `yaml:"enabled" toml:"enabled"`
		Brokers      []string `yaml:"brokers" toml:"brokers"`
		RequestTopic string   `yaml:"request_topic" toml:"request_topic" default:"glyph.series"`
		SignalTopic  string   `yaml:"signal_topic" toml:"signal_topic" default:"glyph.signals"`
		RequiredAcks int      `yaml:"required_acks" toml:"required_acks" default:"-1"`
		Compression  string   `yaml:"compression" toml:"compression" default:"snappy" validate:"oneof=gzip snappy lz4 zstd"`
		Producer     struct {
			MaxAttempts  int           `yaml:"max_attempts" toml:"max_attempts" default:"3"`
			Linger       time.Duration `yaml:"linger" toml:"linger" default:"50ms"`
			BatchSize    int           `yaml:"batch_size" toml:"batch_size" default:"100"`
			WriteTimeout time.Duration `yaml:"write_timeout" toml:"write_timeout" default:"10s"`
			Async        bool          `yaml:"async" toml:"async"`
		} `yaml:"producer" toml:"producer"`
		Consumer struct {
			GroupID    string        `yaml:"group_id" toml:"group_id" default:"glyph-worker"`
			Workers    int           `yaml:"workers" toml:"workers" default:"4"`
			BufferSize int           `yaml:"buffer_size" toml:"buffer_size" default:"64"`
			RetryMax   int           `yaml:"retry_max" toml:"retry_max" default:"3"`
			BackoffMin time.Duration `yaml:"backoff_min" toml:"backoff_min" default:"50ms"`
			BackoffMax time.Duration `yaml:"backoff_max" toml:"backoff_max" default:"2s"`
			DLQTopic   string        `yaml:"dlq_topic" toml:"dlq_topic"`
		} `yaml:"consumer" toml:"consumer"`
	} `yaml:"kafka" toml:"kafka"`
}

var validate = validator.New()

// Default returns a config with every default applied and nothing loaded.
func Default() *Config {
	var c Config
	_ = defaults.Set(&c)
	return &c
}

// Load reads a YAML (.yaml, .yml) or TOML (.toml) file over the defaults and
// validates the result.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	// defaults first so explicit zero values in the file win
	c := Default()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		err = toml.Unmarshal(b, c)
	case ".yaml", ".yml", "":
		err = yaml.Unmarshal(b, c)
	default:
		return nil, fmt.Errorf("unsupported config format %q", filepath.Ext(path))
	}
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// LoadWithEnv loads .env (if present) into the process environment, then the
// config file, then applies GLYPH_* overrides. An empty path means defaults.
func LoadWithEnv(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	var (
		c   *Config
		err error
	)
	if path == "" {
		c = Default()
	} else if c, err = Load(path); err != nil {
		return nil, err
	}

	if v := os.Getenv("GLYPH_ENV"); v != "" {
		c.Environment = v
	}
	if v := os.Getenv("GLYPH_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("GLYPH_REDIS_ADDR"); v != "" {
		c.Cache.RedisAddr = v
	}
	if v := os.Getenv("GLYPH_CORS_ORIGINS"); v != "" {
		c.Server.CORSOrigins = strings.Split(v, ",")
	}
	if v := os.Getenv("GLYPH_KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
		c.Kafka.Enabled = true
	}
	for env, dst := range map[string]*int{
		"GLYPH_PORT":          &c.Server.Port,
		"GLYPH_CANVAS_WIDTH":  &c.Canvas.Width,
		"GLYPH_CANVAS_HEIGHT": &c.Canvas.Height,
	} {
		v := os.Getenv(env)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", env, err)
		}
		*dst = n
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// Validate checks if the configuration is usable.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
	}
	if (c.Cache.Backend == "redis" || c.Cache.Backend == "layered") && c.Cache.RedisAddr == "" {
		return fmt.Errorf("cache.redis_addr is required for backend %q", c.Cache.Backend)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("log.format must be 'json' or 'console', got '%s'", c.Log.Format)
	}
	return nil
}
