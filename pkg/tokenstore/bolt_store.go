package tokenstore

import (
	"context"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	bolt "go.etcd.io/bbolt"
)

const (
	sessionBucket    = "session"
	accessTokenKey   = "access_token"
	expiryValueBytes = 8
)

// boltStore implements a Store backed by BoltDB. The value is the big-endian
// unix expiry followed by the token bytes.
type boltStore struct {
	db  *bolt.DB
	ttl time.Duration
	now func() time.Time
}

// openBolt initializes a BoltDB-backed Store.
func openBolt(path string, opts Options) (Store, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("create token storage directory: %w", err)
		}
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bbolt db: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(sessionBucket))
		return err
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("init bucket: %w", err)
	}

	return &boltStore{db: db, ttl: opts.TTL, now: time.Now}, nil
}

// Close closes the BoltDB store.
func (b *boltStore) Close() error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Close()
}

// Token returns the stored token, deleting it once expired.
func (b *boltStore) Token(context.Context) (string, error) {
	if b == nil || b.db == nil {
		return "", nil
	}

	var token string
	err := b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(sessionBucket))
		if bucket == nil {
			return fmt.Errorf("session bucket missing")
		}

		key := []byte(accessTokenKey)
		value := bucket.Get(key)
		if value == nil {
			return nil
		}

		expiry, raw, ok := decodeEntry(value)
		if !ok || !expiry.After(b.now()) {
			return bucket.Delete(key)
		}
		token = raw
		return nil
	})
	return token, err
}

// SetToken stores token, replacing any previous one.
func (b *boltStore) SetToken(_ context.Context, token string) error {
	if b == nil || b.db == nil {
		return nil
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return fmt.Errorf("token must not be empty")
	}

	expiry := tokenExpiry(token, b.now(), b.ttl)
	return b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(sessionBucket))
		if bucket == nil {
			return fmt.Errorf("session bucket missing")
		}
		return bucket.Put([]byte(accessTokenKey), encodeEntry(expiry, token))
	})
}

// Clear removes the stored token.
func (b *boltStore) Clear(context.Context) error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(sessionBucket))
		if bucket == nil {
			return fmt.Errorf("session bucket missing")
		}
		return bucket.Delete([]byte(accessTokenKey))
	})
}

func encodeEntry(expiry time.Time, token string) []byte {
	buf := make([]byte, expiryValueBytes+len(token))
	binary.BigEndian.PutUint64(buf, uint64(expiry.Unix()))
	copy(buf[expiryValueBytes:], token)
	return buf
}

// decodeEntry splits a stored value into expiry and token.
func decodeEntry(value []byte) (time.Time, string, bool) {
	if len(value) <= expiryValueBytes {
		return time.Time{}, "", false
	}
	unix := int64(binary.BigEndian.Uint64(value[:expiryValueBytes]))
	if unix <= 0 {
		return time.Time{}, "", false
	}
	return time.Unix(unix, 0), string(value[expiryValueBytes:]), true
}
