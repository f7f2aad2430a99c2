package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/agencyos/enrich-api/internal/entity"
)

const keyPrefix = "enrich:contact:"

type Config struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// ProfileCache stores enrichment profiles as JSON strings with a TTL.
type ProfileCache struct {
	client redis.Cmdable
	ttl    time.Duration
	logger *zap.Logger
}

func NewProfileCache(cfg Config, ttl time.Duration, logger *zap.Logger) (*ProfileCache, *redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("Redis connected",
		zap.String("addr", fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)),
		zap.Int("db", cfg.DB),
		zap.Duration("ttl", ttl),
	)

	return NewProfileCacheWithClient(client, ttl, logger), client, nil
}

func NewProfileCacheWithClient(client redis.Cmdable, ttl time.Duration, logger *zap.Logger) *ProfileCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProfileCache{client: client, ttl: ttl, logger: logger}
}

// Key is case-sensitive: providers may derive profile fields from the email's casing.
func Key(email string) string {
	return keyPrefix + strings.TrimSpace(email)
}

func (c *ProfileCache) Get(ctx context.Context, email string) (*entity.EnrichmentProfile, bool, error) {
	key := Key(email)
	value, err := c.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache get %s: %w", key, err)
	}

	var profile entity.EnrichmentProfile
	if err := json.Unmarshal([]byte(value), &profile); err != nil {
		// Drop the corrupt entry so the next request refills it.
		c.logger.Warn("Cache entry corrupt, deleting", zap.String("key", key), zap.Error(err))
		c.client.Del(ctx, key)
		return nil, false, nil
	}
	return &profile, true, nil
}

func (c *ProfileCache) Set(ctx context.Context, email string, profile *entity.EnrichmentProfile) error {
	data, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("cache marshal: %w", err)
	}
	key := Key(email)
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set %s: %w", key, err)
	}
	return nil
}
