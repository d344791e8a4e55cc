package config

import "testing"

func validBase(env string) Config {
	return Config{
		App:     AppConfig{Env: env, Port: 8080},
		DB:      DBConfig{Host: "localhost", Port: 5432, User: "postgres", Password: "x", Name: "ceartscore", SSLMode: "disable"},
		Redis:   RedisConfig{Host: "localhost", Port: 6379},
		Copilot: CopilotConfig{APIKey: "key"},
	}
}

func TestValidate_ReportsMissingRequired(t *testing.T) {
	c := Config{}
	if err := c.Validate(); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestValidate_ProductionRequiresSSLMode(t *testing.T) {
	c := validBase("production")
	c.DB.SSLMode = ""
	if err := c.Validate(); err == nil {
		t.Fatalf("expected error for production without DB_SSLMODE")
	}
}

func TestValidate_LocalDefaultsSSLMode(t *testing.T) {
	c := validBase("local")
	c.DB.SSLMode = ""
	if err := c.Validate(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if c.DB.SSLMode != "disable" {
		t.Fatalf("expected sslmode disable default, got %q", c.DB.SSLMode)
	}
}

func TestValidate_EnforcingEnvRequiresAPIKey(t *testing.T) {
	c := validBase("production")
	c.Copilot.APIKey = ""
	if err := c.Validate(); err == nil {
		t.Fatalf("expected error for production without COPILOT_API_KEY")
	}

	c = validBase("local")
	c.Copilot.APIKey = ""
	if err := c.Validate(); err != nil {
		t.Fatalf("expected local to pass without api key, got %v", err)
	}
}

func TestValidate_AppliesAuthAndUploadDefaults(t *testing.T) {
	c := validBase("production")
	if err := c.Validate(); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if c.Auth.RateLimitAttempts != 10 || c.Auth.RateLimitMaxStore != 10_000 {
		t.Fatalf("unexpected rate limit defaults: %+v", c.Auth)
	}
	if c.Auth.RateLimitBackend != "memory" {
		t.Fatalf("expected memory backend default, got %q", c.Auth.RateLimitBackend)
	}
	if c.Upload.MaxBytes != 100<<20 {
		t.Fatalf("expected 100 MiB upload ceiling, got %d", c.Upload.MaxBytes)
	}
}

func TestValidate_RejectsUnknownRateLimitBackend(t *testing.T) {
	c := validBase("production")
	c.Auth.RateLimitBackend = "dynamo"
	if err := c.Validate(); err == nil {
		t.Fatalf("expected error for unknown backend")
	}
}

func TestValidationPolicy_OnlyLocalAndDevBypass(t *testing.T) {
	cases := map[string]bool{
		"local":      false,
		"dev":        false,
		"staging":    true,
		"production": true,
	}
	for env, enforce := range cases {
		p := validBase(env).ValidationPolicy()
		if p.Enforce != enforce {
			t.Fatalf("env %q: expected enforce=%v, got %v", env, enforce, p.Enforce)
		}
		if p.Environment != env {
			t.Fatalf("env %q: expected environment echoed, got %q", env, p.Environment)
		}
	}
}
