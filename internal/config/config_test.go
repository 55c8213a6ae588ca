package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Server.Host = %q, want %q", cfg.Server.Host, "0.0.0.0")
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, 8080)
	}
	if cfg.Upload.MaxFileSize != 5000000 {
		t.Errorf("Upload.MaxFileSize = %d, want %d", cfg.Upload.MaxFileSize, 5000000)
	}
	wantExt := []string{"xlsx", "xls", "csv"}
	if strings.Join(cfg.Upload.AllowedExtensions, ",") != strings.Join(wantExt, ",") {
		t.Errorf("Upload.AllowedExtensions = %v, want %v", cfg.Upload.AllowedExtensions, wantExt)
	}
	if cfg.Output.Format != "xlsx" {
		t.Errorf("Output.Format = %q, want %q", cfg.Output.Format, "xlsx")
	}
	if cfg.DNS.Backend != "system" {
		t.Errorf("DNS.Backend = %q, want %q", cfg.DNS.Backend, "system")
	}
	if cfg.DNS.Timeout != 0 {
		t.Errorf("DNS.Timeout = %v, want 0", cfg.DNS.Timeout)
	}
	if cfg.Rate.RequestsPerMinute != 60 {
		t.Errorf("Rate.RequestsPerMinute = %d, want %d", cfg.Rate.RequestsPerMinute, 60)
	}
}

func TestLoad_OverrideDefaults(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("UPLOAD_MAX_CONCURRENT", "10")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("DNS_BACKEND", "dns")
	t.Setenv("DNS_NAMESERVER", "1.1.1.1:53")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, 9090)
	}
	if cfg.Upload.MaxConcurrent != 10 {
		t.Errorf("Upload.MaxConcurrent = %d, want %d", cfg.Upload.MaxConcurrent, 10)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "debug")
	}
	if cfg.DNS.Backend != "dns" || cfg.DNS.Nameserver != "1.1.1.1:53" {
		t.Errorf("DNS = %+v, want dns backend at 1.1.1.1:53", cfg.DNS)
	}
}

func TestLoad_Duration(t *testing.T) {
	t.Setenv("SERVER_READ_TIMEOUT", "45s")
	t.Setenv("UPLOAD_MAX_WAIT_TIME", "1m30s")
	t.Setenv("DNS_TIMEOUT", "3s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.ReadTimeout != 45*time.Second {
		t.Errorf("Server.ReadTimeout = %v, want %v", cfg.Server.ReadTimeout, 45*time.Second)
	}
	if cfg.Upload.MaxWaitTime != 90*time.Second {
		t.Errorf("Upload.MaxWaitTime = %v, want %v", cfg.Upload.MaxWaitTime, 90*time.Second)
	}
	if cfg.DNS.Timeout != 3*time.Second {
		t.Errorf("DNS.Timeout = %v, want %v", cfg.DNS.Timeout, 3*time.Second)
	}
}

func TestLoad_CommaSeparatedSlice(t *testing.T) {
	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8, 172.16.0.0/12 , 192.168.0.0/16")
	t.Setenv("UPLOAD_ALLOWED_EXTENSIONS", "csv, xlsx")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	expected := []string{"10.0.0.0/8", "172.16.0.0/12", "192.168.0.0/16"}
	if len(cfg.Security.TrustedProxies) != len(expected) {
		t.Fatalf("TrustedProxies length = %d, want %d", len(cfg.Security.TrustedProxies), len(expected))
	}
	for i, v := range expected {
		if cfg.Security.TrustedProxies[i] != v {
			t.Errorf("TrustedProxies[%d] = %q, want %q", i, cfg.Security.TrustedProxies[i], v)
		}
	}
	if got := strings.Join(cfg.Upload.AllowedExtensions, ","); got != "csv,xlsx" {
		t.Errorf("AllowedExtensions = %q, want %q", got, "csv,xlsx")
	}
}

func TestLoad_InvalidValue(t *testing.T) {
	t.Setenv("SERVER_PORT", "not-a-number")

	if _, err := Load(); err == nil {
		t.Fatal("Load() expected error for non-numeric SERVER_PORT")
	}
}

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{Port: 8080, ShutdownTimeout: time.Second, RequestTimeout: time.Minute},
		Upload: UploadConfig{
			MaxFileSize:       5000000,
			AllowedExtensions: []string{"xlsx", "xls", "csv"},
			MaxConcurrent:     1,
			MaxWaitTime:       time.Second,
		},
		Output:  OutputConfig{Format: "xlsx"},
		DNS:     DNSConfig{Backend: "system"},
		Rate:    RateLimitConfig{Enabled: true, RequestsPerMinute: 60},
		Logging: LoggingConfig{Level: "info", Format: "text"},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid config", mutate: func(*Config) {}},
		{
			name:    "invalid port",
			mutate:  func(c *Config) { c.Server.Port = 99999 },
			wantErr: "SERVER_PORT",
		},
		{
			name:    "unsupported extension",
			mutate:  func(c *Config) { c.Upload.AllowedExtensions = []string{"xlsx", "pdf"} },
			wantErr: "UPLOAD_ALLOWED_EXTENSIONS",
		},
		{
			name:    "unknown output format",
			mutate:  func(c *Config) { c.Output.Format = "ods" },
			wantErr: "OUTPUT_FORMAT",
		},
		{
			name:    "unknown dns backend",
			mutate:  func(c *Config) { c.DNS.Backend = "doh" },
			wantErr: "DNS_BACKEND",
		},
		{
			name:    "invalid log level",
			mutate:  func(c *Config) { c.Logging.Level = "verbose" },
			wantErr: "LOG_LEVEL",
		},
		{
			name:    "rate limit without rate",
			mutate:  func(c *Config) { c.Rate.RequestsPerMinute = 0 },
			wantErr: "RATE_LIMIT_REQUESTS_PER_MINUTE",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() expected error mentioning %s", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want mention of %s", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := validConfig()
	cfg.Server.Port = 0
	cfg.Upload.MaxFileSize = 0
	cfg.Logging.Format = "xml"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() expected error")
	}
	for _, want := range []string{"SERVER_PORT", "UPLOAD_MAX_FILE_SIZE", "LOG_FORMAT"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("Validate() error missing %s: %v", want, err)
		}
	}
}

func TestServerConfig_Addr(t *testing.T) {
	tests := []struct {
		host string
		port int
		want string
	}{
		{"0.0.0.0", 8080, "0.0.0.0:8080"},
		{"", 9000, ":9000"},
	}
	for _, tt := range tests {
		c := ServerConfig{Host: tt.host, Port: tt.port}
		if got := c.Addr(); got != tt.want {
			t.Errorf("Addr() = %q, want %q", got, tt.want)
		}
	}
}
