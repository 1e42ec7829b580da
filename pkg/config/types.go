package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Service  string `yaml:"service"`
	LogLevel string `yaml:"log_level"`
	// Location is the IANA zone used for rendered timestamps.
	Location string `yaml:"location"`

	HTTP   HTTPConfig   `yaml:"http"`
	Rabbit RabbitConfig `yaml:"rabbitmq"`
	Redis  RedisConfig  `yaml:"redis"`
	Worker WorkerConfig `yaml:"worker"`
}

type HTTPConfig struct {
	Addr string `yaml:"addr"`
}

// RabbitConfig configures the broker. An empty URL switches publishing to the
// log-only fallback and disables consuming.
type RabbitConfig struct {
	URL               string   `yaml:"url"`
	Producer          string   `yaml:"producer"`
	PoolSize          int      `yaml:"pool_size"`
	Prefetch          int      `yaml:"prefetch"`
	PublisherConfirms bool     `yaml:"publisher_confirms"`
	DialAttempts      int      `yaml:"dial_attempts"`
	DialDelay         Duration `yaml:"dial_delay"`
	ConnTimeout       Duration `yaml:"conn_timeout"`

	RenderQueue string      `yaml:"render_queue"`
	Retry       RetryConfig `yaml:"retry"`
}

type RetryConfig struct {
	Enabled     bool     `yaml:"enabled"`
	TTL         Duration `yaml:"ttl"`
	MaxAttempts int      `yaml:"max_attempts"`
}

// RedisConfig configures the sender and paid text caches. An empty Addr disables them.
type RedisConfig struct {
	Addr     string   `yaml:"addr"`
	Password string   `yaml:"password"`
	DB       int      `yaml:"db"`
	Timeout  Duration `yaml:"timeout"`
}

type WorkerConfig struct {
	// Concurrency bounds how many holders of one request are built at once.
	Concurrency     int      `yaml:"concurrency"`
	JobTimeout      Duration `yaml:"job_timeout"`
	PaidTextTimeout Duration `yaml:"paid_text_timeout"`
	DownloadTimeout Duration `yaml:"download_timeout"`
}

// Duration accepts "250ms"-style strings or plain numbers of seconds.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	raw := strings.TrimSpace(node.Value)
	if raw == "" {
		*d = 0
		return nil
	}
	parsed, err := parseDuration(raw)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d Duration) Duration() time.Duration { return time.Duration(d) }

func parseDuration(raw string) (Duration, error) {
	if td, err := time.ParseDuration(raw); err == nil {
		return Duration(td), nil
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return Duration(time.Duration(f * float64(time.Second))), nil
	}
	return 0, fmt.Errorf("invalid duration value: %q", raw)
}
