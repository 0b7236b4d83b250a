package config

import "time"

// Default constants for application configuration
const (
	DefaultLogLevel          = "info"
	DefaultJSONLog           = false
	DefaultUserAgent         = "" // empty picks from the built-in pool per request
	DefaultCacheTTL          = 5 * time.Minute
	DefaultHTTPTimeout       = 30 * time.Second
	DefaultRateLimitRPS      = 5.0
	DefaultRateLimitBurst    = 10
	DefaultCacheMaxSizeBytes = 100 * 1024 * 1024 // 100MB
	DefaultMaxPages          = 5
	DefaultRetries           = 3
	DefaultBackoff           = 0
	DefaultMaxBackoff        = 30 * time.Second
	DefaultConcurrency       = 4
	DefaultMaxConcurrency    = 32
)
