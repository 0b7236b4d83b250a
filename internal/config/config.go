package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// Config holds application configuration values
type Config struct {
	// Logging
	LogLevel string `yaml:"log_level"`
	JSONLog  bool   `yaml:"json_log"`

	// HTTP/Scraping
	HTTPTimeout time.Duration `yaml:"timeout"`
	UserAgent   string        `yaml:"user_agent"`
	Proxies     []string      `yaml:"proxies"`

	// Rate Limiting
	RateLimitRPS   float64 `yaml:"rate_limit_rps"`
	RateLimitBurst int     `yaml:"rate_limit_burst"`

	// Caching
	CacheTTL          time.Duration `yaml:"cache_ttl"`
	CacheMaxSizeBytes int64         `yaml:"cache_max_size_bytes"`

	// Crawling
	MaxPages    int           `yaml:"max_pages"`
	Retries     int           `yaml:"retries"`
	Backoff     time.Duration `yaml:"backoff"`
	MaxBackoff  time.Duration `yaml:"max_backoff"`
	Concurrency int           `yaml:"concurrency"`
}

// Default returns a Config populated with the package defaults
func Default() *Config {
	return &Config{
		LogLevel:          DefaultLogLevel,
		JSONLog:           DefaultJSONLog,
		HTTPTimeout:       DefaultHTTPTimeout,
		UserAgent:         DefaultUserAgent,
		RateLimitRPS:      DefaultRateLimitRPS,
		RateLimitBurst:    DefaultRateLimitBurst,
		CacheTTL:          DefaultCacheTTL,
		CacheMaxSizeBytes: DefaultCacheMaxSizeBytes,
		MaxPages:          DefaultMaxPages,
		Retries:           DefaultRetries,
		Backoff:           DefaultBackoff,
		MaxBackoff:        DefaultMaxBackoff,
		Concurrency:       DefaultConcurrency,
	}
}

// Load builds a Config by combining defaults, an optional YAML file, environment variables, and CLI flags.
// Caller should pass the executing *cobra.Command so both local and inherited flags can be read.
func Load(cmd *cobra.Command) (*Config, error) {
	cfg := Default()

	path := os.Getenv("SCRAPE_CONFIG")
	if cmd != nil {
		if f := cmd.Flags().Lookup("config"); f != nil && f.Value.String() != "" {
			path = f.Value.String()
		}
	}
	if path != "" {
		if err := loadFile(cfg, path); err != nil {
			return nil, err
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	if cmd != nil {
		if err := applyFlags(cfg, cmd); err != nil {
			return nil, err
		}
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// loadFile overlays the YAML document at path onto cfg. Keys absent from the file keep their current value.
func loadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("SCRAPE_USER_AGENT"); v != "" {
		cfg.UserAgent = v
	}
	if v := os.Getenv("SCRAPE_PROXY"); v != "" {
		cfg.Proxies = splitList(v)
	}
	if v := os.Getenv("SCRAPE_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("SCRAPE_TIMEOUT: %w", err)
		}
		cfg.HTTPTimeout = d
	}
	if v := os.Getenv("SCRAPE_MAX_PAGES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("SCRAPE_MAX_PAGES: %w", err)
		}
		cfg.MaxPages = n
	}
	if v := os.Getenv("SCRAPE_RETRIES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("SCRAPE_RETRIES: %w", err)
		}
		cfg.Retries = n
	}
	return nil
}

func applyFlags(cfg *Config, cmd *cobra.Command) error {
	flags := cmd.Flags()

	if f := flags.Lookup("user-agent"); f != nil {
		if s := f.Value.String(); s != "" {
			cfg.UserAgent = s
		}
	}
	if f := flags.Lookup("proxy"); f != nil && f.Changed {
		proxies, err := flags.GetStringArray("proxy")
		if err != nil {
			return err
		}
		cfg.Proxies = proxies
	}
	if f := flags.Lookup("timeout"); f != nil {
		if s := f.Value.String(); s != "" {
			d, err := time.ParseDuration(s)
			if err != nil {
				return fmt.Errorf("--timeout: %w", err)
			}
			cfg.HTTPTimeout = d
		}
	}
	if f := flags.Lookup("backoff"); f != nil {
		if s := f.Value.String(); s != "" {
			d, err := time.ParseDuration(s)
			if err != nil {
				return fmt.Errorf("--backoff: %w", err)
			}
			cfg.Backoff = d
		}
	}
	if f := flags.Lookup("json"); f != nil {
		if f.Value.String() == "true" {
			cfg.JSONLog = true
		}
	}
	if f := flags.Lookup("quiet"); f != nil {
		if f.Value.String() == "true" {
			cfg.LogLevel = "error"
		}
	}
	if f := flags.Lookup("verbose"); f != nil {
		if f.Value.String() == "true" {
			cfg.LogLevel = "debug"
		}
	}

	for name, dst := range map[string]*int{
		"max-pages":   &cfg.MaxPages,
		"retries":     &cfg.Retries,
		"concurrency": &cfg.Concurrency,
	} {
		f := flags.Lookup(name)
		if f == nil || !f.Changed {
			continue
		}
		n, err := strconv.Atoi(f.Value.String())
		if err != nil {
			return fmt.Errorf("--%s: %w", name, err)
		}
		*dst = n
	}

	return nil
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
