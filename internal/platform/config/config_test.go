package config

import (
	"testing"
	"time"
)

func validConfig() Config {
	return Config{
		DatabaseURL:        "postgres://localhost/rrhh",
		JWTSecret:          "secret",
		JWTExpiresIn:       24 * time.Hour,
		Environment:        "development",
		MaxBodyBytes:       1048576,
		RateLimitPerMinute: 60,
		WorkStartTime:      "08:00",
		LateToleranceMin:   15,
		PayrollMonthHours:  240,
		IESSRate:           0.0945,
		SMTPPort:           587,
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "missing database", mutate: func(c *Config) { c.DatabaseURL = "" }, wantErr: true},
		{name: "missing secret", mutate: func(c *Config) { c.JWTSecret = " " }, wantErr: true},
		{name: "bad start time", mutate: func(c *Config) { c.WorkStartTime = "8am" }, wantErr: true},
		{name: "iess out of range", mutate: func(c *Config) { c.IESSRate = 1.2 }, wantErr: true},
		{name: "production seed without password", mutate: func(c *Config) {
			c.Environment = "production"
			c.RunSeed = true
		}, wantErr: true},
		{name: "small body limit", mutate: func(c *Config) { c.MaxBodyBytes = 10 }, wantErr: true},
		{name: "production without encryption key", mutate: func(c *Config) {
			c.Environment = "production"
			c.SeedAdminPassword = "s3cret"
		}, wantErr: true},
		{name: "email without host", mutate: func(c *Config) { c.EmailEnabled = true }, wantErr: true},
		{name: "bad smtp port", mutate: func(c *Config) { c.SMTPPort = 0 }, wantErr: true},
		{name: "scheduler disabled", mutate: func(c *Config) { c.VacationSyncInterval = 0 }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.wantErr && err == nil {
				t.Fatal("expected validation error")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestGetEnvDurationShorthand(t *testing.T) {
	t.Setenv("JWT_EXPIRES_IN", "7d")
	if got := getEnvDuration("JWT_EXPIRES_IN", time.Hour); got != 7*24*time.Hour {
		t.Fatalf("expected 168h, got %v", got)
	}

	t.Setenv("JWT_EXPIRES_IN", "90m")
	if got := getEnvDuration("JWT_EXPIRES_IN", time.Hour); got != 90*time.Minute {
		t.Fatalf("expected 90m, got %v", got)
	}

	t.Setenv("JWT_EXPIRES_IN", "soon")
	if got := getEnvDuration("JWT_EXPIRES_IN", time.Hour); got != time.Hour {
		t.Fatalf("expected fallback, got %v", got)
	}
}

func TestGetEnvList(t *testing.T) {
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, ,http://b.test")
	got := getEnvList("CORS_ALLOWED_ORIGINS", nil)
	if len(got) != 2 || got[0] != "http://a.test" || got[1] != "http://b.test" {
		t.Fatalf("unexpected origins: %v", got)
	}
}

func TestLocationFallsBackToUTC(t *testing.T) {
	cfg := Config{Timezone: "Nowhere/Invalid"}
	if cfg.Location() != time.UTC {
		t.Fatal("expected UTC fallback")
	}
}
