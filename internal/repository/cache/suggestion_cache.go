// Package cache stores category suggestions in Redis.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/redis/rueidis"
)

const (
	defaultKeyPrefix = "finora:suggest:"
	defaultTTL       = 30 * 24 * time.Hour
)

// SuggestionCache keeps classifier answers keyed by transaction type and
// normalized description
type SuggestionCache struct {
	client    rueidis.Client
	keyPrefix string
	ttl       time.Duration
}

// Config holds the Redis connection settings
type Config struct {
	Addr        string
	Username    string
	Password    string
	DB          int
	KeyPrefix   string
	TTL         time.Duration
	DialTimeout time.Duration
}

// NewSuggestionCache connects to Redis and verifies the connection
func NewSuggestionCache(cfg Config) (*SuggestionCache, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("redis: no address configured")
	}
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = defaultKeyPrefix
	}
	if cfg.TTL <= 0 {
		cfg.TTL = defaultTTL
	}
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = 5 * time.Second
	}

	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:   []string{cfg.Addr},
		Username:      cfg.Username,
		Password:      cfg.Password,
		SelectDB:      cfg.DB,
		MaxFlushDelay: 100 * time.Microsecond,
	})
	if err != nil {
		return nil, fmt.Errorf("redis: failed to create client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.DialTimeout)
	defer cancel()

	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis: failed to ping server: %w", err)
	}

	return &SuggestionCache{
		client:    client,
		keyPrefix: cfg.KeyPrefix,
		ttl:       cfg.TTL,
	}, nil
}

// Key builds the cache key for a description. Descriptions are lowercased and
// hashed so arbitrary user text stays out of key names.
func Key(txType, description string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(description))))
	return txType + ":" + hex.EncodeToString(sum[:])
}

// Get returns the cached label. The boolean is false on a miss.
func (c *SuggestionCache) Get(ctx context.Context, key string) (string, bool, error) {
	resp := c.client.Do(ctx, c.client.B().Get().Key(c.keyPrefix+key).Build())
	if err := resp.Error(); err != nil {
		if rueidis.IsRedisNil(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("redis get: %w", err)
	}
	label, err := resp.ToString()
	if err != nil {
		return "", false, fmt.Errorf("redis get: failed to read response: %w", err)
	}
	return label, true, nil
}

// Set stores a label with the configured TTL
func (c *SuggestionCache) Set(ctx context.Context, key, label string) error {
	cmd := c.client.B().Set().Key(c.keyPrefix + key).Value(label).Ex(c.ttl).Build()
	if err := c.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Close releases the client
func (c *SuggestionCache) Close() {
	c.client.Close()
}
