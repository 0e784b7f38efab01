// Package storage reads and writes whole presentation archives across
// storage backends selected by URI scheme: plain file paths, mem:// for
// in-process storage, redis://, mongodb://, and s3://.
package storage

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/deckforge/deckforge/pkg/errors"
)

// Store is a byte-addressed storage backend. Keys are backend-specific:
// file paths, redis keys, mongo document ids, or S3 object keys.
type Store interface {
	// ReadBytes returns the full contents stored under key.
	ReadBytes(ctx context.Context, key string) ([]byte, error)

	// WriteBytes replaces the contents stored under key.
	WriteBytes(ctx context.Context, key string, data []byte) error

	// Close releases backend connections. Safe to call on every store.
	Close() error
}

// Config carries backend settings that a URI cannot express.
type Config struct {
	// RedisTTL expires redis-backed archives after the given duration.
	// Zero keeps them indefinitely.
	RedisTTL time.Duration

	// S3Region overrides the SDK default region.
	S3Region string

	// S3Endpoint points at an S3-compatible service (MinIO, Localstack).
	S3Endpoint string

	// S3ForcePathStyle uses path-style addressing, required by most
	// S3-compatible services.
	S3ForcePathStyle bool
}

// Resolve parses a storage URI into a backend store and the key within
// it. URIs without a scheme are treated as local file paths.
//
//	deck.potx
//	file:///data/deck.potx
//	mem://scratch/deck.potx
//	redis://localhost:6379/0/decks/deck.potx
//	mongodb://localhost:27017/deckforge/archives/deck.potx
//	s3://bucket/decks/deck.potx
func Resolve(ctx context.Context, uri string, cfg Config) (Store, string, error) {
	if !strings.Contains(uri, "://") {
		return NewFileStore(), uri, nil
	}

	u, err := url.Parse(uri)
	if err != nil {
		return nil, "", errors.Wrap(errors.ErrCodeInvalidInput, err, "parse storage uri %q", uri)
	}

	switch u.Scheme {
	case "file":
		return NewFileStore(), u.Path, nil

	case "mem":
		key := strings.TrimPrefix(u.Host+u.Path, "/")
		if key == "" {
			return nil, "", errors.New(errors.ErrCodeInvalidInput, "mem uri needs a key: %q", uri)
		}
		return sharedMemStore, key, nil

	case "redis", "rediss":
		return resolveRedis(u, cfg)

	case "mongodb", "mongodb+srv":
		return resolveMongo(ctx, u)

	case "s3":
		return resolveS3(ctx, u, cfg)
	}

	return nil, "", errors.New(errors.ErrCodeUnsupported, "unsupported storage scheme %q", u.Scheme)
}

// ReadBytes resolves uri and reads the archive it names.
func ReadBytes(ctx context.Context, uri string, cfg Config) ([]byte, error) {
	store, key, err := Resolve(ctx, uri, cfg)
	if err != nil {
		return nil, err
	}
	defer store.Close()
	return store.ReadBytes(ctx, key)
}

// WriteBytes resolves uri and writes the archive it names.
func WriteBytes(ctx context.Context, uri string, data []byte, cfg Config) error {
	store, key, err := Resolve(ctx, uri, cfg)
	if err != nil {
		return err
	}
	defer store.Close()
	return store.WriteBytes(ctx, key, data)
}

// splitPath breaks a URI path into its non-empty segments.
func splitPath(p string) []string {
	var segs []string
	for _, seg := range strings.Split(p, "/") {
		if seg != "" {
			segs = append(segs, seg)
		}
	}
	return segs
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	_, err := strconv.Atoi(s)
	return err == nil
}
