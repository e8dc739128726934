// Package cache provides a TTL cache-aside layer for key lookups.
//
// Values are encoded with gob into a small envelope; payloads above a
// configurable threshold are gzip-compressed before storage so large key
// material does not dominate cache memory. The cache is strictly an
// optimization: every read path must fall back to the store on a miss, and
// every mutation of a key must invalidate the user's entry before returning.
package cache

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"

	"github.com/allisson/keyring/internal/errors"
)

// Cache defines TTL-based storage for encoded values.
//
// Implementations must be safe for concurrent use. Get returns
// errors.ErrNotFound when the key is absent or its entry has expired.
type Cache interface {
	// Get retrieves and decodes the value stored under key into dst.
	Get(key string, dst any) error

	// Set encodes value and stores it under key with the cache's default TTL.
	Set(key string, value any) error

	// Delete removes the entry stored under key. Deleting an absent key is
	// not an error.
	Delete(key string)
}

// envelope is the stored representation of a cached value. The Compressed
// flag keeps the decode path independent of the writer's threshold setting.
type envelope struct {
	Compressed bool
	Payload    []byte
}

// encode gob-encodes value and gzip-compresses the payload when it exceeds
// threshold bytes.
func encode(value any, threshold int) ([]byte, error) {
	var payload bytes.Buffer
	if err := gob.NewEncoder(&payload).Encode(value); err != nil {
		return nil, errors.Wrap(err, "failed to encode cache value")
	}

	env := envelope{Payload: payload.Bytes()}
	if payload.Len() > threshold {
		var compressed bytes.Buffer
		gz := gzip.NewWriter(&compressed)
		if _, err := gz.Write(payload.Bytes()); err != nil {
			return nil, errors.Wrap(err, "failed to compress cache value")
		}
		if err := gz.Close(); err != nil {
			return nil, errors.Wrap(err, "failed to compress cache value")
		}
		env.Compressed = true
		env.Payload = compressed.Bytes()
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(env); err != nil {
		return nil, errors.Wrap(err, "failed to encode cache envelope")
	}
	return buf.Bytes(), nil
}

// decode reverses encode into dst.
func decode(data []byte, dst any) error {
	var env envelope
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&env); err != nil {
		return errors.Wrap(err, "failed to decode cache envelope")
	}

	payload := env.Payload
	if env.Compressed {
		gz, err := gzip.NewReader(bytes.NewReader(env.Payload))
		if err != nil {
			return errors.Wrap(err, "failed to decompress cache value")
		}
		defer func() { _ = gz.Close() }()

		payload, err = io.ReadAll(gz)
		if err != nil {
			return errors.Wrap(err, "failed to decompress cache value")
		}
	}

	if err := gob.NewDecoder(bytes.NewReader(payload)).Decode(dst); err != nil {
		return errors.Wrap(err, "failed to decode cache value")
	}
	return nil
}

// UserKeyCacheKey returns the cache key for a user's active key entry.
func UserKeyCacheKey(userID int64) string {
	return fmt.Sprintf("keys:active:%d", userID)
}
