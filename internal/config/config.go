package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Supported key store drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// KeyGen holds all configuration for the key generation service.
type KeyGen struct {
	// debug, info, warn or error
	LogLevel string `yaml:"log_level"`

	Store StoreConfig `yaml:"store"`

	// Hex-encoded Blowfish key (1..56 bytes) sealing private exponents at rest
	SealKey string `yaml:"seal_key"`

	// Generation
	CacheSize   int          `yaml:"cache_size"`
	Concurrency int          `yaml:"concurrency"`
	Keys        []KeyRequest `yaml:"keys"`

	// Delete stored keys whose label is no longer listed in Keys
	Prune bool `yaml:"prune"`
}

// StoreConfig selects and parameterizes the key store backend.
type StoreConfig struct {
	Driver         string         `yaml:"driver"`
	SQLitePath     string         `yaml:"sqlite_path"`
	Database       DatabaseConfig `yaml:"database"`
	ConnectTimeout time.Duration  `yaml:"connect_timeout"`
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// DSN returns the connection string for the configured driver.
func (s StoreConfig) DSN() string {
	if s.Driver == DriverSQLite {
		return s.SQLitePath
	}
	return s.Database.DSN()
}

// KeyRequest is one key pair to generate: two primes and a public exponent.
type KeyRequest struct {
	Label string `yaml:"label"`
	P     int64  `yaml:"p"`
	Q     int64  `yaml:"q"`
	E     int64  `yaml:"e"`
}

// DefaultKeyGen returns KeyGen config with sensible defaults.
func DefaultKeyGen() KeyGen {
	return KeyGen{
		LogLevel: "info",
		Store: StoreConfig{
			Driver:         DriverSQLite,
			SQLitePath:     "textrsa.db",
			ConnectTimeout: 30 * time.Second,
			Database: DatabaseConfig{
				Host:     "127.0.0.1",
				Port:     5432,
				User:     "textrsa",
				Password: "textrsa",
				DBName:   "textrsa",
				SSLMode:  "disable",
			},
		},
		SealKey:     hex.EncodeToString([]byte("textrsa-dev-seal")),
		CacheSize:   128,
		Concurrency: 4,
		Keys: []KeyRequest{
			{Label: "demo", P: 61, Q: 67, E: 17},
		},
	}
}

// LoadKeyGen loads key generation config from a YAML file.
// If the file doesn't exist, returns defaults.
func LoadKeyGen(path string) (KeyGen, error) {
	cfg := DefaultKeyGen()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("validating config %s: %w", path, err)
	}

	return cfg, nil
}

// Validate checks values that would otherwise fail late at runtime.
func (c KeyGen) Validate() error {
	var errs []error

	switch c.Store.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		errs = append(errs, fmt.Errorf("store.driver: unknown driver %q", c.Store.Driver))
	}
	if c.Store.Driver == DriverSQLite && c.Store.SQLitePath == "" {
		errs = append(errs, errors.New("store.sqlite_path: required for sqlite driver"))
	}
	if _, err := c.SealKeyBytes(); err != nil {
		errs = append(errs, err)
	}
	if c.CacheSize < 1 {
		errs = append(errs, fmt.Errorf("cache_size: must be positive, got %d", c.CacheSize))
	}
	if c.Concurrency < 1 {
		errs = append(errs, fmt.Errorf("concurrency: must be positive, got %d", c.Concurrency))
	}

	labels := make(map[string]struct{}, len(c.Keys))
	for i, k := range c.Keys {
		if k.Label == "" {
			errs = append(errs, fmt.Errorf("keys[%d].label: required", i))
			continue
		}
		if _, dup := labels[k.Label]; dup {
			errs = append(errs, fmt.Errorf("keys[%d].label: duplicate %q", i, k.Label))
		}
		labels[k.Label] = struct{}{}
	}

	return errors.Join(errs...)
}

// SealKeyBytes decodes the hex seal key.
func (c KeyGen) SealKeyBytes() ([]byte, error) {
	key, err := hex.DecodeString(c.SealKey)
	if err != nil {
		return nil, fmt.Errorf("seal_key: %w", err)
	}
	if len(key) < 1 || len(key) > 56 {
		return nil, fmt.Errorf("seal_key: must be 1..56 bytes, got %d", len(key))
	}
	return key, nil
}

// SlogLevel maps LogLevel onto slog. Unknown values fall back to info.
func (c KeyGen) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
