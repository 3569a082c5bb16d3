package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "RECIPEKEEPER_"

// envFile names the optional dotenv file; RECIPEKEEPER_ENV_FILE overrides
// the default ".env".
func envFile() string {
	if p := os.Getenv(EnvPrefix + "ENV_FILE"); p != "" {
		return p
	}
	return ".env"
}

// envLookup resolves variables from the process environment first and from
// the dotenv file at path second. A missing file is not an error.
func envLookup(path string) (func(string) (string, bool), error) {
	fileVars, err := godotenv.Read(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read env file %s: %w", path, err)
		}
		fileVars = map[string]string{}
	}

	return func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := fileVars[key]
		return v, ok
	}, nil
}

func parseEnv(cfg *Config, lookup func(string) (string, bool)) error {
	get := func(name string) (string, bool) {
		v, ok := lookup(EnvPrefix + name)
		return strings.TrimSpace(v), ok && strings.TrimSpace(v) != ""
	}

	strs := map[string]*string{
		"HTTP_ADDR":       &cfg.HTTPAddr,
		"STORAGE_BACKEND": &cfg.StorageBackend,
		"DATA_DIR":        &cfg.DataDir,
		"DATABASE_DSN":    &cfg.DatabaseDSN,
		"CONTENT_BACKEND": &cfg.ContentBackend,
		"CONTENT_ROOT":    &cfg.ContentRoot,
		"SECRET_KEY":      &cfg.SecretKey,
		"LOG_LEVEL":       &cfg.LogLevel,
		"S3_BUCKET":       &cfg.S3Bucket,
		"S3_REGION":       &cfg.S3Region,
		"S3_ENDPOINT":     &cfg.S3Endpoint,
		"S3_ACCESS_KEY":   &cfg.S3AccessKey,
		"S3_SECRET_KEY":   &cfg.S3SecretKey,
		"S3_PREFIX":       &cfg.S3Prefix,
	}
	for name, dst := range strs {
		if v, ok := get(name); ok {
			*dst = v
		}
	}

	if v, ok := get("SESSION_VALIDITY"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%sSESSION_VALIDITY: %w", EnvPrefix, err)
		}
		cfg.SessionValidityDuration = d
	}
	if v, ok := get("MAX_UPLOAD_BYTES"); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%sMAX_UPLOAD_BYTES: %w", EnvPrefix, err)
		}
		cfg.MaxUploadBytes = n
	}
	if v, ok := get("S3_PATH_STYLE"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%sS3_PATH_STYLE: %w", EnvPrefix, err)
		}
		cfg.S3PathStyle = b
	}
	if v, ok := get("ALLOWED_ORIGINS"); ok {
		cfg.AllowedOrigins = splitList(v)
	}

	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
