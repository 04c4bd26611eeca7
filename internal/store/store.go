// Package store caches the latest account summary per account in Redis so
// operators and sibling services can read it without a transport
// subscription. The cache is advisory; failures never affect the dispatcher.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Checker-Finance/adapters/vertex-adapter/pkg/model"
)

// ErrNotFound is returned when no summary has been recorded for an account.
var ErrNotFound = errors.New("account summary not found")

// summaryTTL bounds how long a stale summary stays readable.
const summaryTTL = 10 * time.Minute

// Store defines the contract for caching account summaries.
type Store interface {
	RecordAccountSummary(ctx context.Context, summary model.AccountSummary) error
	GetAccountSummary(ctx context.Context, account string) (*model.AccountSummary, error)
	HealthCheck(ctx context.Context) error
	Close() error
}

// RedisStore is the Redis-backed Store.
type RedisStore struct {
	rdb    *redis.Client
	logger *zap.Logger
}

// NewRedis connects to Redis and verifies the connection.
func NewRedis(addr string, db int, logger *zap.Logger) (Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return &RedisStore{rdb: rdb, logger: logger}, nil
}

func summaryKey(account string) string {
	return "vertex:account_summary:" + account
}

// RecordAccountSummary overwrites the cached summary for the account.
func (s *RedisStore) RecordAccountSummary(ctx context.Context, summary model.AccountSummary) error {
	data, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}
	return s.rdb.Set(ctx, summaryKey(summary.Account), data, summaryTTL).Err()
}

// GetAccountSummary reads the cached summary for an account.
func (s *RedisStore) GetAccountSummary(ctx context.Context, account string) (*model.AccountSummary, error) {
	data, err := s.rdb.Get(ctx, summaryKey(account)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var summary model.AccountSummary
	if err := json.Unmarshal(data, &summary); err != nil {
		return nil, fmt.Errorf("unmarshal summary: %w", err)
	}
	return &summary, nil
}

// HealthCheck pings Redis.
func (s *RedisStore) HealthCheck(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

// Close releases the Redis connection.
func (s *RedisStore) Close() error {
	return s.rdb.Close()
}
