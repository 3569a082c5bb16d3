// Package config assembles runtime settings. Sources are applied in order:
// built-in defaults, an optional JSON file (-c / -config), environment
// variables prefixed with RECIPEKEEPER_ (optionally read from a .env file)
// and finally short command-line flags. Later sources win.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/recipekeeper/internal/blobstore"
	"github.com/dmitrijs2005/recipekeeper/internal/repositories/repomanager"
)

// Config holds runtime settings for the server and the CLI.
//
// Fields:
//   - HTTPAddr: bind address of the HTTP API.
//   - StorageBackend: sqlite, ledger, postgres or memory.
//   - DataDir: directory of the SQLite database or the JSON ledger.
//   - DatabaseDSN: PostgreSQL DSN (pgx), used by the postgres backend.
//   - ContentBackend / ContentRoot: where attachment bytes go (disk or s3).
//   - SecretKey: HMAC secret for session tokens. Empty means a random key per process.
//   - SessionValidityDuration: lifetime of a session token.
//   - MaxUploadBytes: upper bound of one multipart contribution.
//   - S3*: object storage settings of the s3 content backend.
type Config struct {
	HTTPAddr                string
	StorageBackend          string
	DataDir                 string
	DatabaseDSN             string
	ContentBackend          string
	ContentRoot             string
	SecretKey               string
	SessionValidityDuration time.Duration
	MaxUploadBytes          int64
	LogLevel                string
	AllowedOrigins          []string
	S3Bucket                string
	S3Region                string
	S3Endpoint              string
	S3AccessKey             string
	S3SecretKey             string
	S3PathStyle             bool
	S3Prefix                string
}

// LoadDefaults populates Config with development defaults.
func (c *Config) LoadDefaults() {
	c.HTTPAddr = ":8080"
	c.StorageBackend = repomanager.BackendSQLite
	c.DataDir = "data"
	c.ContentBackend = blobstore.BackendDisk
	c.ContentRoot = "data/content"
	c.SessionValidityDuration = 24 * time.Hour
	c.MaxUploadBytes = 64 << 20
	c.LogLevel = "info"
	c.AllowedOrigins = []string{"*"}
	c.S3Region = "us-east-1"
	c.S3PathStyle = true
}

// Validate reports settings that cannot work together.
func (c *Config) Validate() error {
	var errs []error

	switch c.StorageBackend {
	case repomanager.BackendSQLite, repomanager.BackendLedger, repomanager.BackendMemory:
	case repomanager.BackendPostgres:
		if c.DatabaseDSN == "" {
			errs = append(errs, errors.New("postgres storage requires a database dsn"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown storage backend %q", c.StorageBackend))
	}

	switch c.ContentBackend {
	case blobstore.BackendDisk:
		if c.ContentRoot == "" {
			errs = append(errs, errors.New("disk content backend requires a content root"))
		}
	case blobstore.BackendS3:
		if c.S3Bucket == "" {
			errs = append(errs, errors.New("s3 content backend requires a bucket"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown content backend %q", c.ContentBackend))
	}

	if c.MaxUploadBytes <= 0 {
		errs = append(errs, errors.New("max upload size must be positive"))
	}
	if c.SessionValidityDuration <= 0 {
		errs = append(errs, errors.New("session validity must be positive"))
	}

	return errors.Join(errs...)
}

// RepositoryOptions maps the storage settings for repomanager.New.
func (c *Config) RepositoryOptions() repomanager.Options {
	return repomanager.Options{Backend: c.StorageBackend, DataDir: c.DataDir, DSN: c.DatabaseDSN}
}

// BlobOptions maps the content settings for blobstore.New.
func (c *Config) BlobOptions() blobstore.Options {
	return blobstore.Options{
		Backend: c.ContentBackend,
		Root:    c.ContentRoot,
		S3: blobstore.S3Options{
			Bucket:    c.S3Bucket,
			Region:    c.S3Region,
			Endpoint:  c.S3Endpoint,
			AccessKey: c.S3AccessKey,
			SecretKey: c.S3SecretKey,
			PathStyle: c.S3PathStyle,
			Prefix:    c.S3Prefix,
		},
	}
}

// LoadConfig builds a Config from defaults, the JSON file named by -c in
// args, the process environment and the flags in args.
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseJSON(cfg, args); err != nil {
		return nil, err
	}

	lookup, err := envLookup(envFile())
	if err != nil {
		return nil, err
	}
	if err := parseEnv(cfg, lookup); err != nil {
		return nil, err
	}

	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
