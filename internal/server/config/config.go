// Package config handles configuration for the server component:
// defaults, JSON overlay, environment (optionally seeded from a .env file)
// and command-line flags, followed by fail-fast validation.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Storage backends.
const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

var supportedAlgorithms = map[string]struct{}{
	"HS256": {},
	"HS384": {},
	"HS512": {},
}

// Config holds runtime settings for the scriptkeeper server. It is built
// once at startup and treated as read-only afterwards.
//
// Fields:
//   - HTTPAddr: bind address for the public HTTP API.
//   - Storage: "postgres" (default) or "memory".
//   - DatabaseDSN: PostgreSQL DSN (pgx). When empty it is assembled from the DB* fields.
//   - SecretKey: HMAC secret for signing JWTs. Required.
//   - JWTAlgorithm: one of HS256, HS384, HS512.
//   - AccessTokenValidityDuration / RefreshTokenValidityDuration: token lifetimes.
//   - BcryptCost: work factor of the password hasher.
type Config struct {
	HTTPAddr                     string
	Storage                      string
	DatabaseDSN                  string
	DBHost                       string
	DBPort                       string
	DBUser                       string
	DBPassword                   string
	DBName                       string
	SecretKey                    string
	JWTAlgorithm                 string
	AccessTokenValidityDuration  time.Duration
	RefreshTokenValidityDuration time.Duration
	BcryptCost                   int
	LogLevel                     string
	LogFormat                    string
	ShutdownTimeout              time.Duration
}

// LoadDefaults populates Config with development defaults. SecretKey and
// the database credentials are deliberately left empty.
func (c *Config) LoadDefaults() {
	c.HTTPAddr = ":8000"
	c.Storage = StoragePostgres
	c.DBHost = "localhost"
	c.DBPort = "5432"
	c.JWTAlgorithm = "HS256"
	c.AccessTokenValidityDuration = 5 * time.Minute
	c.RefreshTokenValidityDuration = 30 * time.Minute
	c.BcryptCost = bcrypt.DefaultCost
	c.LogLevel = "info"
	c.LogFormat = "json"
	c.ShutdownTimeout = 10 * time.Second
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file, the environment and finally command-line
// flags. args are the process arguments without the program name.
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseJSON(cfg, args); err != nil {
		return nil, fmt.Errorf("json config: %w", err)
	}
	if err := parseEnv(cfg, args); err != nil {
		return nil, fmt.Errorf("env config: %w", err)
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, fmt.Errorf("flags: %w", err)
	}

	if cfg.Storage == StoragePostgres && cfg.DatabaseDSN == "" {
		cfg.DatabaseDSN = cfg.buildPostgresDSN()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports the first missing or inconsistent setting.
func (c *Config) Validate() error {
	var errs []error

	if c.SecretKey == "" {
		errs = append(errs, errors.New("secret key is required (SECRET_KEY)"))
	}
	if _, ok := supportedAlgorithms[c.JWTAlgorithm]; !ok {
		errs = append(errs, fmt.Errorf("unsupported JWT algorithm %q", c.JWTAlgorithm))
	}
	if c.AccessTokenValidityDuration < 0 {
		errs = append(errs, errors.New("access token validity must not be negative"))
	}
	if c.RefreshTokenValidityDuration < 0 {
		errs = append(errs, errors.New("refresh token validity must not be negative"))
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		errs = append(errs, fmt.Errorf("bcrypt cost %d out of range [%d, %d]", c.BcryptCost, bcrypt.MinCost, bcrypt.MaxCost))
	}
	if c.HTTPAddr == "" {
		errs = append(errs, errors.New("http address is required"))
	}

	switch c.Storage {
	case StorageMemory:
	case StoragePostgres:
		if c.DatabaseDSN == "" {
			errs = append(errs, errors.New("database DSN is required for postgres storage (DATABASE_DSN or DB_NAME/DB_USER)"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown storage backend %q", c.Storage))
	}

	return errors.Join(errs...)
}

// buildPostgresDSN assembles a URL DSN from the DB* fields. It returns ""
// when the mandatory parts are missing so that Validate can complain.
func (c *Config) buildPostgresDSN() string {
	if c.DBName == "" || c.DBUser == "" {
		return ""
	}
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.DBUser, c.DBPassword),
		Host:   c.DBHost + ":" + c.DBPort,
		Path:   "/" + strings.TrimPrefix(c.DBName, "/"),
	}
	return u.String()
}
