package database

import (
	"context"
	"crypto/tls"
	"errors"

	"github.com/fenilmodi00/farcaster-gateway/config"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// RedisStore keeps cache entries as plain Redis strings without expiry
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore builds a client from cfg. It does not connect; call Ping to check reachability.
func NewRedisStore(cfg config.CacheConfig) *RedisStore {
	options := &redis.Options{
		Addr:         cfg.RedisAddr(),
		Username:     cfg.RedisUsername,
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		DialTimeout:  cfg.Timeout,
		ReadTimeout:  cfg.Timeout,
		WriteTimeout: cfg.Timeout,
	}
	if cfg.RedisProtocol == "rediss" {
		options.TLSConfig = &tls.Config{
			MinVersion: tls.VersionTLS12,
			ServerName: cfg.RedisHost,
		}
	}

	logrus.WithFields(logrus.Fields{
		"component": "RedisStore",
		"addr":      options.Addr,
		"db":        options.DB,
		"tls":       options.TLSConfig != nil,
	}).Info("Configured Redis cache")

	return &RedisStore{client: redis.NewClient(options)}
}

// NewRedisStoreWithClient wraps an existing client
func NewRedisStoreWithClient(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Get returns the value stored under key
func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return value, true, nil
}

// Set stores value under key with no expiry
func (s *RedisStore) Set(ctx context.Context, key string, value []byte) error {
	return s.client.Set(ctx, key, value, 0).Err()
}

// Ping checks the connection
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the client
func (s *RedisStore) Close() error {
	return s.client.Close()
}
