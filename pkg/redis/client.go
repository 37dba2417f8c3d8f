package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/roster-sheets/pkg/config"
	"github.com/angelmondragon/roster-sheets/pkg/logger"
	"github.com/redis/go-redis/v9"
)

const (
	keyNamespace = "roster"
	rangePrefix  = "range"
)

var errNotInitialized = errors.New("redis client not initialized")

type cmdable interface {
	Ping(context.Context) *redis.StatusCmd
	Set(context.Context, string, any, time.Duration) *redis.StatusCmd
	Get(context.Context, string) *redis.StringCmd
	Del(context.Context, ...string) *redis.IntCmd
}

// Client caches full-range sheet reads. Entries expire after ttl and are
// dropped explicitly whenever the owning store writes.
type Client struct {
	store cmdable
	raw   *redis.Client
	ttl   time.Duration
	logg  *logger.Logger
}

// New connects to Redis and verifies connectivity.
func New(ctx context.Context, cfg config.CacheConfig, logg *logger.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.RedisURL) == "" {
		return nil, errors.New("redis url is required")
	}
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	raw := redis.NewClient(opts)
	if err := raw.Ping(ctx).Err(); err != nil {
		_ = raw.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	if logg == nil {
		logg = logger.Nop()
	}
	logg.Info(ctx, "redis range cache connected")
	return &Client{store: raw, raw: raw, ttl: cfg.TTL, logg: logg}, nil
}

// RangeKey returns the namespaced key for one spreadsheet range.
func (c *Client) RangeKey(spreadsheetID, rng string) string {
	return c.buildKey(rangePrefix, spreadsheetID, rng)
}

// GetRows returns the cached rows for key. A miss is reported with ok=false
// and a nil error.
func (c *Client) GetRows(ctx context.Context, key string) ([][]string, bool, error) {
	if c == nil || c.store == nil {
		return nil, false, errNotInitialized
	}
	raw, err := c.store.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var rows [][]string
	if err := json.Unmarshal([]byte(raw), &rows); err != nil {
		// A corrupt entry is treated as a miss and dropped.
		c.logg.Warn(c.logg.WithField(ctx, "key", key), "discarding undecodable cache entry")
		_ = c.store.Del(ctx, key).Err()
		return nil, false, nil
	}
	return rows, true, nil
}

// SetRows stores rows under key with the configured TTL.
func (c *Client) SetRows(ctx context.Context, key string, rows [][]string) error {
	if c == nil || c.store == nil {
		return errNotInitialized
	}
	payload, err := json.Marshal(rows)
	if err != nil {
		return fmt.Errorf("encoding cached rows: %w", err)
	}
	return c.store.Set(ctx, key, payload, c.ttl).Err()
}

// Invalidate removes the provided keys.
func (c *Client) Invalidate(ctx context.Context, keys ...string) error {
	if c == nil || c.store == nil {
		return errNotInitialized
	}
	if len(keys) == 0 {
		return nil
	}
	return c.store.Del(ctx, keys...).Err()
}

// Ping verifies the connection.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil || c.store == nil {
		return errNotInitialized
	}
	return c.store.Ping(ctx).Err()
}

// Close shuts down the underlying client if available.
func (c *Client) Close() error {
	if c == nil || c.raw == nil {
		return nil
	}
	return c.raw.Close()
}

func (c *Client) buildKey(parts ...string) string {
	clean := []string{keyNamespace}
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		clean = append(clean, part)
	}
	return strings.Join(clean, ":")
}
