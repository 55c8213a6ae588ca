// Package config provides centralized configuration management for the service.
// It loads configuration from environment variables with sensible defaults and
// validates all settings on startup to fail fast on misconfiguration.
package config

import (
	"strconv"
	"time"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server    ServerConfig
	Upload    UploadConfig
	Output    OutputConfig
	DNS       DNSConfig
	Providers ProviderConfig
	Rate      RateLimitConfig
	Security  SecurityConfig
	Logging   LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading request body (default: 15s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`

	// WriteTimeout is the maximum duration for writing response (default: 0, unlimited)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"0s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout bounds a whole request including every MX lookup (default: 120s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"120s"`
}

// UploadConfig holds upload gatekeeping and run concurrency settings.
type UploadConfig struct {
	// MaxFileSize is the maximum declared file size in bytes (default: 5000000)
	MaxFileSize int64 `env:"UPLOAD_MAX_FILE_SIZE" default:"5000000"`

	// AllowedExtensions lists accepted file extensions without the dot
	AllowedExtensions []string `env:"UPLOAD_ALLOWED_EXTENSIONS" default:"xlsx,xls,csv"`

	// TempDir is where uploads are copied for the duration of a run (default: os.TempDir)
	TempDir string `env:"UPLOAD_TEMP_DIR"`

	// MaxConcurrent is the maximum number of pipeline runs in flight (default: 4)
	MaxConcurrent int `env:"UPLOAD_MAX_CONCURRENT" default:"4"`

	// MaxWaitTime is how long a request waits for a run slot (default: 30s)
	MaxWaitTime time.Duration `env:"UPLOAD_MAX_WAIT_TIME" default:"30s"`
}

// OutputConfig holds settings for the per-group output documents.
type OutputConfig struct {
	// Format is the spreadsheet format of each group file: xlsx or csv (default: xlsx)
	Format string `env:"OUTPUT_FORMAT" default:"xlsx"`
}

// DNSConfig selects and tunes the MX lookup backend.
type DNSConfig struct {
	// Backend is "system" (Go resolver) or "dns" (direct wire queries) (default: system)
	Backend string `env:"DNS_BACKEND" default:"system"`

	// Nameserver is host:port queried by the dns backend; empty uses /etc/resolv.conf
	Nameserver string `env:"DNS_NAMESERVER"`

	// Timeout overrides the backend's own timeout; 0 keeps the library default
	Timeout time.Duration `env:"DNS_TIMEOUT" default:"0s"`
}

// ProviderConfig holds provider-family classification settings.
type ProviderConfig struct {
	// RulesFile is an optional YAML file replacing the built-in provider rules
	RulesFile string `env:"PROVIDER_RULES_FILE"`
}

// RateLimitConfig holds per-IP rate limiting settings.
type RateLimitConfig struct {
	// Enabled controls whether rate limiting is active (default: true)
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute is the sustained rate per IP (default: 60)
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"60"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of trusted proxy CIDRs
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	// EnableCSP enables Content-Security-Policy headers (default: true)
	EnableCSP bool `env:"SECURITY_ENABLE_CSP" default:"true"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}
