package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"media-pipeline/internal/config"
	"media-pipeline/internal/core/domain"

	"github.com/redis/go-redis/v9"
)

// Store keeps the credential under a single redis key so several workers share it
type Store struct {
	client *redis.Client
	key    string
}

// NewClient connects to redis and checks the connection
func NewClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	var opts *redis.Options
	if cfg.URL != "" {
		parsed, err := redis.ParseURL(cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse redis url: %w", err)
		}
		opts = parsed
	} else {
		opts = &redis.Options{
			Addr:     cfg.Address,
			Password: cfg.Password,
			DB:       cfg.DB,
		}
	}
	opts.DialTimeout = cfg.DialTimeout
	opts.ReadTimeout = cfg.ReadTimeout
	opts.WriteTimeout = cfg.WriteTimeout

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return client, nil
}

// NewStore returns a Store using key
func NewStore(client *redis.Client, key string) *Store {
	return &Store{client: client, key: key}
}

// Load reads the credential, domain.ErrNotAuthenticated when the key is absent
func (s *Store) Load(ctx context.Context) (domain.Credential, error) {
	raw, err := s.client.Get(ctx, s.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.Credential{}, domain.ErrNotAuthenticated
		}
		return domain.Credential{}, fmt.Errorf("failed to get credential: %w", err)
	}

	var cred domain.Credential
	if err := json.Unmarshal(raw, &cred); err != nil {
		return domain.Credential{}, fmt.Errorf("failed to decode credential: %w", err)
	}
	if cred.IsZero() {
		return domain.Credential{}, domain.ErrNotAuthenticated
	}
	return cred, nil
}

// Save stores the credential without expiry, the refresh token outlives the access token
func (s *Store) Save(ctx context.Context, cred domain.Credential) error {
	raw, err := json.Marshal(cred)
	if err != nil {
		return fmt.Errorf("failed to encode credential: %w", err)
	}
	if err := s.client.Set(ctx, s.key, raw, 0).Err(); err != nil {
		return fmt.Errorf("failed to set credential: %w", err)
	}
	return nil
}
