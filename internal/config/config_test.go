package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"API_BASE_URL", "REQUEST_TIMEOUT", "SQLITE_DB_PATH", "RECENT_COUNT"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	if cfg.APIBaseURL != "http://localhost:8081/api" {
		t.Errorf("APIBaseURL = %q", cfg.APIBaseURL)
	}
	if cfg.RequestTimeout != 10*time.Second {
		t.Errorf("RequestTimeout = %v", cfg.RequestTimeout)
	}
	if cfg.SQLiteDBPath != "./data/spendtrack.db" {
		t.Errorf("SQLiteDBPath = %q", cfg.SQLiteDBPath)
	}
	if cfg.RecentCount != 5 {
		t.Errorf("RecentCount = %d", cfg.RecentCount)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("API_BASE_URL", "https://expenses.example.com/api")
	t.Setenv("REQUEST_TIMEOUT", "30s")
	t.Setenv("RECENT_COUNT", "10")

	cfg := Load()

	if cfg.APIBaseURL != "https://expenses.example.com/api" {
		t.Errorf("APIBaseURL = %q", cfg.APIBaseURL)
	}
	if cfg.RequestTimeout != 30*time.Second {
		t.Errorf("RequestTimeout = %v", cfg.RequestTimeout)
	}
	if cfg.RecentCount != 10 {
		t.Errorf("RecentCount = %d", cfg.RecentCount)
	}
}

func TestLoadIgnoresUnparseableEnv(t *testing.T) {
	t.Setenv("REQUEST_TIMEOUT", "not-a-duration")
	t.Setenv("RECENT_COUNT", "not-a-number")

	cfg := Load()

	if cfg.RequestTimeout != 10*time.Second {
		t.Errorf("RequestTimeout = %v, want default", cfg.RequestTimeout)
	}
	if cfg.RecentCount != 5 {
		t.Errorf("RecentCount = %d, want default", cfg.RecentCount)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			APIBaseURL:     "http://localhost:8081/api",
			RequestTimeout: 10 * time.Second,
			SQLiteDBPath:   "spendtrack.db",
			RecentCount:    5,
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid config",
			mutate: func(c *Config) {},
		},
		{
			name:    "bad URL scheme",
			mutate:  func(c *Config) { c.APIBaseURL = "ftp://example.com/api" },
			wantErr: "invalid API base URL scheme",
		},
		{
			name:    "timeout too short",
			mutate:  func(c *Config) { c.RequestTimeout = 500 * time.Millisecond },
			wantErr: "must be at least 1 second",
		},
		{
			name:    "timeout too long",
			mutate:  func(c *Config) { c.RequestTimeout = 10 * time.Minute },
			wantErr: "must be at most 5 minutes",
		},
		{
			name:    "empty db path",
			mutate:  func(c *Config) { c.SQLiteDBPath = "" },
			wantErr: "SQLite database path cannot be empty",
		},
		{
			name:    "recent count too low",
			mutate:  func(c *Config) { c.RecentCount = 0 },
			wantErr: "must be at least 1",
		},
		{
			name:    "recent count too high",
			mutate:  func(c *Config) { c.RecentCount = 500 },
			wantErr: "must be at most 100",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() = nil, want error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not contain %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestValidateCollectsAllErrors(t *testing.T) {
	cfg := &Config{
		APIBaseURL:     "ftp://example.com",
		RequestTimeout: 0,
		SQLiteDBPath:   "",
		RecentCount:    0,
	}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	for _, want := range []string{
		"invalid API base URL scheme",
		"must be at least 1 second",
		"cannot be empty",
		"must be at least 1",
	} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error does not mention %q:\n%s", want, err.Error())
		}
	}
}
