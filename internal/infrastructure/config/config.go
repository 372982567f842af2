package config

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`
	LogFile  string `env:"LOG_FILE"`

	Mongo    MongoConfig
	Redis    RedisConfig
	Session  SessionConfig
	Password PasswordConfig
	Google   GoogleConfig

	AuditWorkers int `env:"AUDIT_WORKERS, default=4"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=userhub"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR, default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,   default=0"`
}

type SessionConfig struct {
	Store        string        `env:"SESSION_STORE,           default=redis"`
	Secret       string        `env:"SESSION_SECRET"`
	TTL          time.Duration `env:"SESSION_TTL,             default=24h"`
	CookieName   string        `env:"SESSION_COOKIE_NAME,     default=userhub_session"`
	CookieSecure bool          `env:"SESSION_COOKIE_SECURE,   default=false"`
	SameSite     string        `env:"SESSION_COOKIE_SAMESITE, default=lax"`
}

type PasswordConfig struct {
	Scheme     string `env:"PASSWORD_SCHEME, default=plaintext"`
	BcryptCost int    `env:"BCRYPT_COST,     default=10"`
}

type GoogleConfig struct {
	ClientID        string `env:"GOOGLE_CLIENT_ID"`
	ClientSecret    string `env:"GOOGLE_CLIENT_SECRET"`
	CallbackURL     string `env:"GOOGLE_CALLBACK_URL"`
	SuccessRedirect string `env:"GOOGLE_SUCCESS_REDIRECT, default=/assignment/index.html#!/profile"`
	FailureRedirect string `env:"GOOGLE_FAILURE_REDIRECT, default=/assignment/index.html#!/login"`
}

// Enabled reports whether the Google strategy has every required field.
func (g GoogleConfig) Enabled() bool {
	return g.ClientID != "" && g.ClientSecret != "" && g.CallbackURL != ""
}

// IsProduction reports whether ENV selects production behaviour.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// Load reads configuration from environment variables using go-envconfig
// and validates it.
func Load(ctx context.Context) (*Config, error) {
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects unknown enum values and settings that cannot work together.
func (c *Config) Validate() error {
	var errs []error

	switch c.Session.Store {
	case "redis":
	case "cookie":
		if c.Session.Secret == "" {
			errs = append(errs, errors.New("SESSION_SECRET is required when SESSION_STORE=cookie"))
		}
	default:
		errs = append(errs, fmt.Errorf("SESSION_STORE must be redis or cookie, got %q", c.Session.Store))
	}

	switch strings.ToLower(c.Session.SameSite) {
	case "lax", "strict", "none":
	default:
		errs = append(errs, fmt.Errorf("SESSION_COOKIE_SAMESITE must be lax, strict or none, got %q", c.Session.SameSite))
	}

	switch c.Password.Scheme {
	case "plaintext", "bcrypt":
	default:
		errs = append(errs, fmt.Errorf("PASSWORD_SCHEME must be plaintext or bcrypt, got %q", c.Password.Scheme))
	}

	if c.Session.TTL <= 0 {
		errs = append(errs, errors.New("SESSION_TTL must be positive"))
	}
	if c.AuditWorkers < 1 {
		errs = append(errs, errors.New("AUDIT_WORKERS must be at least 1"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}
