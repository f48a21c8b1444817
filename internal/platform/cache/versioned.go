package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	versionKey     = "claimsight:cache:version"
	datasetKey     = "claimsight:dataset:checksum"
	DefaultChannel = "claimsight.bump"
)

// Versioned wraps Redis with a global version folded into every key. Bumping
// the version orphans all entries at once; they then expire by TTL. A nil
// receiver or client degrades to calling loaders directly.
type Versioned struct {
	client *redis.Client
	ttl    time.Duration
}

// NewVersioned instantiates the cache helper.
func NewVersioned(client *redis.Client, ttl time.Duration) *Versioned {
	return &Versioned{client: client, ttl: ttl}
}

// Enabled reports whether a Redis client is attached.
func (c *Versioned) Enabled() bool { return c != nil && c.client != nil }

// Version returns the current cache version, initialising when missing.
func (c *Versioned) Version(ctx context.Context) (int64, error) {
	if !c.Enabled() {
		return 0, nil
	}
	ver, err := c.client.Get(ctx, versionKey).Int64()
	if errors.Is(err, redis.Nil) {
		if err := c.client.SetNX(ctx, versionKey, 1, 0).Err(); err != nil {
			return 0, err
		}
		return c.client.Get(ctx, versionKey).Int64()
	}
	if err != nil {
		return 0, err
	}
	if ver <= 0 {
		ver = 1
		if err := c.client.Set(ctx, versionKey, ver, 0).Err(); err != nil {
			return 0, err
		}
	}
	return ver, nil
}

// BuildKey composes the cache key with the current version.
func (c *Versioned) BuildKey(ctx context.Context, parts ...string) (string, error) {
	joined := strings.Join(append([]string{"claimsight"}, parts...), ":")
	if !c.Enabled() {
		return joined, nil
	}
	ver, err := c.Version(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s:v%d", joined, ver), nil
}

// FetchJSON loads a cached value or populates it using the loader.
func (c *Versioned) FetchJSON(ctx context.Context, key string, dest interface{}, loader func(context.Context) (interface{}, error)) error {
	if loader == nil {
		return errors.New("cache: loader required")
	}
	raw, err := c.FetchBytes(ctx, key, func(ctx context.Context) ([]byte, error) {
		value, err := loader(ctx)
		if err != nil {
			return nil, err
		}
		return json.Marshal(value)
	})
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dest)
}

// FetchBytes is FetchJSON for opaque payloads such as rendered images.
func (c *Versioned) FetchBytes(ctx context.Context, key string, loader func(context.Context) ([]byte, error)) ([]byte, error) {
	if loader == nil {
		return nil, errors.New("cache: loader required")
	}
	if !c.Enabled() {
		return loader(ctx)
	}
	payload, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		return payload, nil
	}
	if !errors.Is(err, redis.Nil) {
		return nil, err
	}
	payload, err = loader(ctx)
	if err != nil {
		return nil, err
	}
	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		return nil, err
	}
	return payload, nil
}

// Put stores a payload unconditionally.
func (c *Versioned) Put(ctx context.Context, key string, payload []byte) error {
	if !c.Enabled() {
		return nil
	}
	return c.client.Set(ctx, key, payload, c.ttl).Err()
}

// Bump invalidates the cache by incrementing the global version and publishing an event.
func (c *Versioned) Bump(ctx context.Context) (int64, error) {
	if !c.Enabled() {
		return 0, nil
	}
	ver, err := c.client.Incr(ctx, versionKey).Result()
	if err != nil {
		return 0, err
	}
	return ver, c.client.Publish(ctx, DefaultChannel, strconv.FormatInt(ver, 10)).Err()
}

// SyncDataset records the checksum of the dataset being served and bumps the
// version when it differs from the last one seen.
func (c *Versioned) SyncDataset(ctx context.Context, checksum string) (bool, error) {
	if !c.Enabled() {
		return false, nil
	}
	prev, err := c.client.GetSet(ctx, datasetKey, checksum).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return false, err
	}
	if prev == checksum {
		return false, nil
	}
	if _, err := c.Bump(ctx); err != nil {
		return false, err
	}
	return true, nil
}

// ListenForInvalidation subscribes to version bump notifications published
// by other processes. The subscription ends with ctx.
func (c *Versioned) ListenForInvalidation(ctx context.Context, channel string, onBump func(int64)) error {
	if !c.Enabled() {
		return nil
	}
	if channel == "" {
		channel = DefaultChannel
	}
	pubsub := c.client.Subscribe(ctx, channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return err
	}
	go func() {
		defer func() { _ = pubsub.Close() }()
		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				ver, err := strconv.ParseInt(msg.Payload, 10, 64)
				if err != nil {
					continue
				}
				if onBump != nil {
					onBump(ver)
				}
			}
		}
	}()
	return nil
}
