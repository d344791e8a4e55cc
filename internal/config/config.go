package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration required by the API process.
// All values must come from env (or env-file loaded by the process runner).
// No business logic should depend on raw environment variables.
type Config struct {
	App     AppConfig
	DB      DBConfig
	Redis   RedisConfig
	Copilot CopilotConfig
	Auth    AuthConfig
	Upload  UploadConfig
}

type AppConfig struct {
	Env  string
	Port int
}

type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string

	// SSLMode is kept explicit for AWS-ready posture.
	// Accepts: disable, require, verify-ca, verify-full
	SSLMode string
}

type RedisConfig struct {
	Host string
	Port int
}

// CopilotConfig configures the workspace-retrieval vendor API.
type CopilotConfig struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

type AuthConfig struct {
	// MaxTokenAge bounds session lifetime regardless of the token's own exp.
	MaxTokenAge time.Duration

	// Throttling of validation attempts per client IP.
	// Backend "memory" is process-local; "redis" shares counters across replicas.
	RateLimitBackend  string
	RateLimitWindow   time.Duration
	RateLimitAttempts int
	RateLimitMaxStore int
	CleanupInterval   time.Duration
}

type UploadConfig struct {
	MaxBytes int64
}

// ValidationPolicy is the single switch deciding whether token validation is
// enforced. It is resolved exactly once at startup from APP_ENV and passed
// by value; nothing else in the process may re-derive bypass behavior from
// ambient state.
type ValidationPolicy struct {
	Enforce     bool
	Environment string
}

func Load() (Config, error) {
	c := Config{}
	var parseErrs []error

	c.App.Env = strings.TrimSpace(os.Getenv("APP_ENV"))
	{
		n, err := mustInt("APP_PORT")
		n, parseErrs = appendParseErr(parseErrs, n, err)
		c.App.Port = n
	}

	c.DB.Host = strings.TrimSpace(os.Getenv("DB_HOST"))
	{
		n, err := mustInt("DB_PORT")
		n, parseErrs = appendParseErr(parseErrs, n, err)
		c.DB.Port = n
	}
	c.DB.User = strings.TrimSpace(os.Getenv("DB_USER"))
	c.DB.Password = os.Getenv("DB_PASSWORD")
	c.DB.Name = strings.TrimSpace(os.Getenv("DB_NAME"))
	c.DB.SSLMode = strings.TrimSpace(os.Getenv("DB_SSLMODE"))

	c.Redis.Host = strings.TrimSpace(os.Getenv("REDIS_HOST"))
	{
		n, err := mustInt("REDIS_PORT")
		n, parseErrs = appendParseErr(parseErrs, n, err)
		c.Redis.Port = n
	}

	c.Copilot.APIKey = os.Getenv("COPILOT_API_KEY")
	c.Copilot.BaseURL = strings.TrimSpace(os.Getenv("COPILOT_BASE_URL"))
	c.Copilot.Timeout = optDuration("COPILOT_TIMEOUT")

	// All optional; defaults applied in Validate().
	c.Auth.RateLimitBackend = strings.TrimSpace(os.Getenv("AUTH_RATE_LIMIT_BACKEND"))
	c.Auth.MaxTokenAge = optDuration("AUTH_MAX_TOKEN_AGE")
	c.Auth.RateLimitWindow = optDuration("AUTH_RATE_LIMIT_WINDOW")
	c.Auth.RateLimitAttempts = optInt("AUTH_RATE_LIMIT_ATTEMPTS")
	c.Auth.RateLimitMaxStore = optInt("AUTH_RATE_LIMIT_MAX_STORE")
	c.Auth.CleanupInterval = optDuration("AUTH_CLEANUP_INTERVAL")

	c.Upload.MaxBytes = int64(optInt("UPLOAD_MAX_BYTES"))

	if err := joinErrors(parseErrs); err != nil {
		return Config{}, err
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c *Config) Validate() error {
	var errs []error

	if c.App.Env == "" {
		errs = append(errs, errors.New("APP_ENV is required"))
	} else if !isValidEnv(c.App.Env) {
		errs = append(errs, fmt.Errorf("APP_ENV must be one of local, dev, staging, production, got %q", c.App.Env))
	}
	if c.App.Port <= 0 || c.App.Port > 65535 {
		errs = append(errs, fmt.Errorf("APP_PORT must be a valid port, got %d", c.App.Port))
	}

	if c.DB.Host == "" {
		errs = append(errs, errors.New("DB_HOST is required"))
	}
	if c.DB.Port <= 0 || c.DB.Port > 65535 {
		errs = append(errs, fmt.Errorf("DB_PORT must be a valid port, got %d", c.DB.Port))
	}
	if c.DB.User == "" {
		errs = append(errs, errors.New("DB_USER is required"))
	}
	if c.DB.Name == "" {
		errs = append(errs, errors.New("DB_NAME is required"))
	}
	if c.DB.SSLMode == "" {
		if c.IsProduction() {
			errs = append(errs, errors.New("DB_SSLMODE is required in production"))
		} else {
			// Local-friendly default; production must be explicit.
			c.DB.SSLMode = "disable"
		}
	}
	if c.DB.SSLMode != "" && !isValidSSLMode(c.DB.SSLMode) {
		errs = append(errs, fmt.Errorf("DB_SSLMODE must be one of disable, require, verify-ca, verify-full, got %q", c.DB.SSLMode))
	}

	if c.Redis.Host == "" {
		errs = append(errs, errors.New("REDIS_HOST is required"))
	}
	if c.Redis.Port <= 0 || c.Redis.Port > 65535 {
		errs = append(errs, fmt.Errorf("REDIS_PORT must be a valid port, got %d", c.Redis.Port))
	}

	// The vendor API key is only a hard requirement where validation is
	// enforced; local and dev run against the unverified decoder.
	if c.ValidationPolicy().Enforce && c.Copilot.APIKey == "" {
		errs = append(errs, errors.New("COPILOT_API_KEY is required when validation is enforced"))
	}
	if c.Copilot.BaseURL == "" {
		c.Copilot.BaseURL = "https://api.copilot.app"
	}
	if c.Copilot.Timeout <= 0 {
		c.Copilot.Timeout = 10 * time.Second
	}

	if c.Auth.RateLimitBackend == "" {
		c.Auth.RateLimitBackend = "memory"
	}
	if c.Auth.RateLimitBackend != "memory" && c.Auth.RateLimitBackend != "redis" {
		errs = append(errs, fmt.Errorf("AUTH_RATE_LIMIT_BACKEND must be memory or redis, got %q", c.Auth.RateLimitBackend))
	}
	if c.Auth.MaxTokenAge <= 0 {
		c.Auth.MaxTokenAge = 7 * 24 * time.Hour
	}
	if c.Auth.RateLimitWindow <= 0 {
		c.Auth.RateLimitWindow = time.Minute
	}
	if c.Auth.RateLimitAttempts <= 0 {
		c.Auth.RateLimitAttempts = 10
	}
	if c.Auth.RateLimitMaxStore <= 0 {
		c.Auth.RateLimitMaxStore = 10_000
	}
	if c.Auth.CleanupInterval <= 0 {
		c.Auth.CleanupInterval = 10 * time.Minute
	}

	if c.Upload.MaxBytes <= 0 {
		c.Upload.MaxBytes = 100 << 20 // 100 MiB
	}

	return joinErrors(errs)
}

func (c Config) IsProduction() bool {
	return c.App.Env == "production"
}

// ValidationPolicy resolves the enforcement switch from the environment.
// Only local and dev bypass; staging and production always enforce.
func (c Config) ValidationPolicy() ValidationPolicy {
	enforce := true
	switch c.App.Env {
	case "local", "dev":
		enforce = false
	}
	return ValidationPolicy{Enforce: enforce, Environment: c.App.Env}
}

func (c Config) HTTPAddr() string {
	return fmt.Sprintf(":%d", c.App.Port)
}

func (c Config) PostgresDSN() string {
	// Avoid logging this string; it contains secrets.
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.DB.Host,
		c.DB.Port,
		c.DB.User,
		c.DB.Password,
		c.DB.Name,
		c.DB.SSLMode,
	)
}

func (c Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}

func mustInt(key string) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return 0, fmt.Errorf("%s is required", key)
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", key, v)
	}
	return n, nil
}

func optInt(key string) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}

func optDuration(key string) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return 0
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0
	}
	return d
}

func appendParseErr(errs []error, n int, err error) (int, []error) {
	if err != nil {
		errs = append(errs, err)
	}
	return n, errs
}

func isValidEnv(v string) bool {
	switch v {
	case "local", "dev", "staging", "production":
		return true
	default:
		return false
	}
}

func isValidSSLMode(v string) bool {
	switch v {
	case "disable", "require", "verify-ca", "verify-full":
		return true
	default:
		return false
	}
}

func joinErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	if len(errs) == 1 {
		return errs[0]
	}
	var b strings.Builder
	b.WriteString("config errors:\n")
	for _, e := range errs {
		b.WriteString("- ")
		b.WriteString(e.Error())
		b.WriteString("\n")
	}
	return errors.New(strings.TrimSpace(b.String()))
}
