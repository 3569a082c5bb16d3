package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/recipekeeper/internal/flagx"
	"github.com/dmitrijs2005/recipekeeper/internal/timex"
)

// JSONConfig is the on-disk shape of the configuration file. Durations accept
// Go duration strings ("12h") or integer nanoseconds. Absent fields keep the
// value set by earlier sources.
type JSONConfig struct {
	HTTPAddr                string          `json:"http_addr"`
	StorageBackend          string          `json:"storage_backend"`
	DataDir                 string          `json:"data_dir"`
	DatabaseDSN             string          `json:"database_dsn"`
	ContentBackend          string          `json:"content_backend"`
	ContentRoot             string          `json:"content_root"`
	SecretKey               string          `json:"secret_key"`
	SessionValidityDuration *timex.Duration `json:"session_validity_duration"`
	MaxUploadBytes          int64           `json:"max_upload_bytes"`
	LogLevel                string          `json:"log_level"`
	AllowedOrigins          []string        `json:"allowed_origins"`
	S3Bucket                string          `json:"s3_bucket"`
	S3Region                string          `json:"s3_region"`
	S3Endpoint              string          `json:"s3_endpoint"`
	S3AccessKey             string          `json:"s3_access_key"`
	S3SecretKey             string          `json:"s3_secret_key"`
	S3PathStyle             *bool           `json:"s3_path_style"`
	S3Prefix                string          `json:"s3_prefix"`
}

func parseJSON(cfg *Config, args []string) error {
	path := flagx.ConfigFileFlag(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	c := &JSONConfig{}
	if err := json.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	setString(&cfg.HTTPAddr, c.HTTPAddr)
	setString(&cfg.StorageBackend, c.StorageBackend)
	setString(&cfg.DataDir, c.DataDir)
	setString(&cfg.DatabaseDSN, c.DatabaseDSN)
	setString(&cfg.ContentBackend, c.ContentBackend)
	setString(&cfg.ContentRoot, c.ContentRoot)
	setString(&cfg.SecretKey, c.SecretKey)
	if c.SessionValidityDuration != nil {
		cfg.SessionValidityDuration = c.SessionValidityDuration.Duration
	}
	if c.MaxUploadBytes != 0 {
		cfg.MaxUploadBytes = c.MaxUploadBytes
	}
	setString(&cfg.LogLevel, c.LogLevel)
	if c.AllowedOrigins != nil {
		cfg.AllowedOrigins = c.AllowedOrigins
	}
	setString(&cfg.S3Bucket, c.S3Bucket)
	setString(&cfg.S3Region, c.S3Region)
	setString(&cfg.S3Endpoint, c.S3Endpoint)
	setString(&cfg.S3AccessKey, c.S3AccessKey)
	setString(&cfg.S3SecretKey, c.S3SecretKey)
	if c.S3PathStyle != nil {
		cfg.S3PathStyle = *c.S3PathStyle
	}
	setString(&cfg.S3Prefix, c.S3Prefix)

	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
