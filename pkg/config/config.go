package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const envPrefix = "CHATVIEW_"

// Load reads .env (if present) into the environment, then the YAML file at path
// (missing is fine), applies CHATVIEW_* overrides and defaults, and validates.
func Load(path string) (*Config, error) {
	_ = godotenv.Load(".env")

	cfg := &Config{}
	if path != "" {
		fc, err := LoadFile(path)
		switch {
		case err == nil:
			cfg = fc
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, err
		}
	}
	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func LoadFile(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &cfg, nil
}

// ApplyEnv overlays every non-empty CHATVIEW_* variable onto c.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	str := func(key string, dst *string) {
		if v := strings.TrimSpace(getenv(envPrefix + key)); v != "" {
			*dst = v
		}
	}
	var errs []error
	num := func(key string, dst *int) {
		v := strings.TrimSpace(getenv(envPrefix + key))
		if v == "" {
			return
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s%s: %w", envPrefix, key, err))
			return
		}
		*dst = n
	}
	dur := func(key string, dst *Duration) {
		v := strings.TrimSpace(getenv(envPrefix + key))
		if v == "" {
			return
		}
		d, err := parseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s%s: %w", envPrefix, key, err))
			return
		}
		*dst = d
	}
	flag := func(key string, dst *bool) {
		switch strings.ToLower(strings.TrimSpace(getenv(envPrefix + key))) {
		case "1", "true", "yes":
			*dst = true
		case "0", "false", "no":
			*dst = false
		}
	}

	str("SERVICE", &c.Service)
	str("LOG_LEVEL", &c.LogLevel)
	str("LOCATION", &c.Location)
	str("HTTP_ADDR", &c.HTTP.Addr)

	str("RABBITMQ_URL", &c.Rabbit.URL)
	str("RABBITMQ_PRODUCER", &c.Rabbit.Producer)
	str("RABBITMQ_RENDER_QUEUE", &c.Rabbit.RenderQueue)
	num("RABBITMQ_POOL_SIZE", &c.Rabbit.PoolSize)
	num("RABBITMQ_PREFETCH", &c.Rabbit.Prefetch)
	num("RABBITMQ_DIAL_ATTEMPTS", &c.Rabbit.DialAttempts)
	flag("RABBITMQ_PUBLISHER_CONFIRMS", &c.Rabbit.PublisherConfirms)
	flag("RABBITMQ_RETRY_ENABLED", &c.Rabbit.Retry.Enabled)

	str("REDIS_ADDR", &c.Redis.Addr)
	str("REDIS_PASSWORD", &c.Redis.Password)
	num("REDIS_DB", &c.Redis.DB)
	dur("REDIS_TIMEOUT", &c.Redis.Timeout)

	num("WORKER_CONCURRENCY", &c.Worker.Concurrency)
	dur("WORKER_JOB_TIMEOUT", &c.Worker.JobTimeout)
	dur("WORKER_PAID_TEXT_TIMEOUT", &c.Worker.PaidTextTimeout)
	dur("WORKER_DOWNLOAD_TIMEOUT", &c.Worker.DownloadTimeout)

	return errors.Join(errs...)
}

func (c *Config) SetDefaults() {
	if c.Service == "" {
		c.Service = "chatview-worker"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Location == "" {
		c.Location = "UTC"
	}
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = ":9090"
	}
	if c.Rabbit.Producer == "" {
		c.Rabbit.Producer = c.Service
	}
	if c.Rabbit.RenderQueue == "" {
		c.Rabbit.RenderQueue = "chatview.render"
	}
	if c.Rabbit.DialAttempts <= 0 {
		c.Rabbit.DialAttempts = 5
	}
	if c.Rabbit.DialDelay <= 0 {
		c.Rabbit.DialDelay = Duration(time.Second)
	}
	if c.Rabbit.Retry.Enabled {
		if c.Rabbit.Retry.TTL <= 0 {
			c.Rabbit.Retry.TTL = Duration(10 * time.Second)
		}
		if c.Rabbit.Retry.MaxAttempts <= 0 {
			c.Rabbit.Retry.MaxAttempts = 5
		}
	}
	if c.Redis.Timeout <= 0 {
		c.Redis.Timeout = Duration(500 * time.Millisecond)
	}
	if c.Worker.Concurrency <= 0 {
		c.Worker.Concurrency = 8
	}
	if c.Worker.JobTimeout <= 0 {
		c.Worker.JobTimeout = Duration(30 * time.Second)
	}
	if c.Worker.PaidTextTimeout <= 0 {
		c.Worker.PaidTextTimeout = Duration(5 * time.Second)
	}
	if c.Worker.DownloadTimeout <= 0 {
		c.Worker.DownloadTimeout = Duration(5 * time.Second)
	}
}

func (c *Config) Validate() error {
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log_level %q", c.LogLevel)
	}
	if _, err := time.LoadLocation(c.Location); err != nil {
		return fmt.Errorf("invalid location: %w", err)
	}
	if c.Worker.Concurrency > 256 {
		return fmt.Errorf("worker.concurrency %d exceeds 256", c.Worker.Concurrency)
	}
	if c.Redis.DB < 0 {
		return fmt.Errorf("redis.db must not be negative")
	}
	return nil
}

// Loc resolves Location. Validate has already checked it.
func (c *Config) Loc() *time.Location {
	loc, err := time.LoadLocation(c.Location)
	if err != nil {
		return time.UTC
	}
	return loc
}
