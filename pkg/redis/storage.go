package redis

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultScanBatchSize = 500

// Storage is a key/value view of a Redis database confined to one key prefix.
// Every key it reads or writes is namespaced, so Reset never touches foreign data.
type Storage struct {
	db            redis.UniversalClient
	prefix        string
	scanBatchSize int64
}

// NewStorage wraps client. An empty prefix scopes the storage to the whole database.
func NewStorage(client redis.UniversalClient, prefix string) *Storage {
	return &Storage{
		db:            client,
		prefix:        prefix,
		scanBatchSize: defaultScanBatchSize,
	}
}

// NewStorageFromConfig applies the scan batch size from cfg.
func NewStorageFromConfig(client redis.UniversalClient, prefix string, cfg Config) *Storage {
	s := NewStorage(client, prefix)
	if cfg.ScanBatchSize > 0 {
		s.scanBatchSize = int64(cfg.ScanBatchSize)
	}
	return s
}

// Get returns nil, nil for empty keys and missing values.
func (s *Storage) Get(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, nil
	}
	val, err := s.db.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Join(ErrStorageOperation, err)
	}
	return val, nil
}

// Set stores val under key. Zero exp means no expiration.
func (s *Storage) Set(ctx context.Context, key string, val []byte, exp time.Duration) error {
	if key == "" || len(val) == 0 {
		return nil
	}
	if err := s.db.Set(ctx, s.prefix+key, val, exp).Err(); err != nil {
		return errors.Join(ErrStorageOperation, err)
	}
	return nil
}

// Delete removes key. Empty keys are ignored.
func (s *Storage) Delete(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}
	if err := s.db.Del(ctx, s.prefix+key).Err(); err != nil {
		return errors.Join(ErrStorageOperation, err)
	}
	return nil
}

// Keys lists the keys under the prefix, with the prefix stripped.
// SCAN is used so large databases are not blocked.
func (s *Storage) Keys(ctx context.Context) ([]string, error) {
	raw, err := s.scan(ctx)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(raw))
	for _, k := range raw {
		keys = append(keys, strings.TrimPrefix(k, s.prefix))
	}
	return keys, nil
}

// Reset deletes every key under the prefix.
func (s *Storage) Reset(ctx context.Context) error {
	raw, err := s.scan(ctx)
	if err != nil {
		return err
	}
	if len(raw) == 0 {
		return nil
	}
	if err := s.db.Del(ctx, raw...).Err(); err != nil {
		return errors.Join(ErrStorageOperation, err)
	}
	return nil
}

// Conn returns the underlying Redis client for advanced operations.
func (s *Storage) Conn() redis.UniversalClient {
	return s.db
}

func (s *Storage) scan(ctx context.Context) ([]string, error) {
	var (
		keys   []string
		cursor uint64
	)
	for {
		batch, next, err := s.db.Scan(ctx, cursor, s.prefix+"*", s.scanBatchSize).Result()
		if err != nil {
			return nil, errors.Join(ErrStorageOperation, err)
		}
		keys = append(keys, batch...)
		if next == 0 {
			return keys, nil
		}
		cursor = next
	}
}
