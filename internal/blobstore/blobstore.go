// Package blobstore keeps attachment content. Keys are content-root relative
// paths of the form "<kind>/<name>". Stores never overwrite: writing an
// existing key fails with common.ErrorStorageWrite.
package blobstore

import (
	"context"
	"fmt"
	"path"
	"strings"
)

// Supported backends.
const (
	BackendDisk = "disk"
	BackendS3   = "s3"
)

type Store interface {
	// Put writes data under key and returns once it is durable.
	Put(ctx context.Context, key string, data []byte, contentType string) error
	// Get returns common.ErrorNotFound for unknown keys.
	Get(ctx context.Context, key string) ([]byte, error)
}

type Options struct {
	Backend string
	// Root is the content root directory of the disk backend.
	Root string
	S3   S3Options
}

// New builds the store named by opts.Backend.
func New(ctx context.Context, opts Options) (Store, error) {
	switch opts.Backend {
	case BackendDisk, "":
		s, err := NewDiskStore(opts.Root)
		if err != nil {
			return nil, err
		}
		return s, nil
	case BackendS3:
		s, err := NewS3Store(ctx, opts.S3)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown content backend %q", opts.Backend)
	}
}

// ValidateKey accepts "<dir>/<name>" keys made of clean relative segments.
func ValidateKey(key string) error {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, "\\") {
		return fmt.Errorf("invalid key %q", key)
	}
	if path.Clean(key) != key {
		return fmt.Errorf("invalid key %q", key)
	}
	dir, name := path.Split(key)
	if dir == "" || name == "" || strings.Contains(strings.TrimSuffix(dir, "/"), "/") {
		return fmt.Errorf("invalid key %q", key)
	}
	for _, seg := range []string{strings.TrimSuffix(dir, "/"), name} {
		if seg == "." || seg == ".." {
			return fmt.Errorf("invalid key %q", key)
		}
	}
	return nil
}
