package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/turtacn/druglike/internal/domain/molecule"
	"github.com/turtacn/druglike/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/druglike/pkg/errors"
)

const (
	DefaultKeyPrefix     = "druglike:"
	DefaultDescriptorTTL = 24 * time.Hour

	// descriptorKeyVersion changes whenever the descriptor algorithms do, so
	// a redeploy never serves values computed by older code.
	descriptorKeyVersion = "desc:v1:"
)

var (
	ErrCacheMiss           = errors.New(errors.ErrCodeNotFound, "cache miss")
	ErrSerializationFailed = errors.New(errors.ErrCodeSerialization, "serialization failed")
)

// Cache is a JSON value cache with a shared key prefix.
type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	Exists(ctx context.Context, key string) (bool, error)
	Ping(ctx context.Context) error
}

type redisCache struct {
	client     *Client
	logger     logging.Logger
	prefix     string
	defaultTTL time.Duration
	jitter     float64
}

type CacheOption func(*redisCache)

func WithPrefix(prefix string) CacheOption {
	return func(c *redisCache) { c.prefix = prefix }
}

func WithDefaultTTL(ttl time.Duration) CacheOption {
	return func(c *redisCache) { c.defaultTTL = ttl }
}

// WithJitter spreads expirations by +/- fraction of the TTL.  Zero disables
// it.
func WithJitter(fraction float64) CacheOption {
	return func(c *redisCache) {
		if fraction >= 0 && fraction < 1 {
			c.jitter = fraction
		}
	}
}

func NewRedisCache(client *Client, log logging.Logger, opts ...CacheOption) Cache {
	return newRedisCache(client, log, opts...)
}

func newRedisCache(client *Client, log logging.Logger, opts ...CacheOption) *redisCache {
	c := &redisCache{
		client:     client,
		logger:     logging.OrNop(log),
		prefix:     DefaultKeyPrefix,
		defaultTTL: DefaultDescriptorTTL,
		jitter:     0.1,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *redisCache) fullKey(key string) string {
	return c.prefix + key
}

func (c *redisCache) jitterTTL(ttl time.Duration) time.Duration {
	if ttl <= 0 || c.jitter == 0 {
		return ttl
	}
	delta := float64(ttl) * c.jitter * (rand.Float64()*2 - 1)
	return ttl + time.Duration(delta)
}

func (c *redisCache) Get(ctx context.Context, key string, dest interface{}) error {
	data, err := c.client.Get(ctx, c.fullKey(key)).Bytes()
	if err == redis.Nil {
		return ErrCacheMiss
	}
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "failed to get from cache")
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to decode cached value")
	}
	return nil
}

func (c *redisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if ttl == 0 {
		ttl = c.defaultTTL
	}
	data, err := json.Marshal(value)
	if err != nil {
		return ErrSerializationFailed
	}
	if err := c.client.Set(ctx, c.fullKey(key), data, c.jitterTTL(ttl)).Err(); err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "failed to write to cache")
	}
	return nil
}

func (c *redisCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = c.fullKey(k)
	}
	return c.client.Del(ctx, full...).Err()
}

func (c *redisCache) Exists(ctx context.Context, key string) (bool, error) {
	n, err := c.client.Exists(ctx, c.fullKey(key)).Result()
	return n > 0, err
}

func (c *redisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx)
}

// DescriptorCache stores computed descriptor sets keyed by SMILES.  Values
// are the five numbers in molecule.Kinds order; parse failures are never
// written, so every cached entry is finite.
type DescriptorCache struct {
	cache *redisCache
	ttl   time.Duration
}

// NewDescriptorCache builds a DescriptorCache on client.  A zero ttl falls
// back to the client's configured TTL.
func NewDescriptorCache(client *Client, log logging.Logger, ttl time.Duration, opts ...CacheOption) *DescriptorCache {
	cfg := client.Config()
	if ttl == 0 {
		ttl = cfg.TTL
	}
	base := []CacheOption{WithDefaultTTL(ttl)}
	if cfg.KeyPrefix != "" {
		base = append(base, WithPrefix(cfg.KeyPrefix))
	}
	return &DescriptorCache{
		cache: newRedisCache(client, log, append(base, opts...)...),
		ttl:   ttl,
	}
}

// DescriptorKey derives the cache key for smiles.  SMILES strings are hashed
// so keys stay short and free of glob metacharacters.
func DescriptorKey(smiles string) string {
	sum := sha256.Sum256([]byte(smiles))
	return descriptorKeyVersion + hex.EncodeToString(sum[:])
}

func (d *DescriptorCache) GetDescriptors(ctx context.Context, smiles string) (molecule.Descriptors, bool, error) {
	var vals []float64
	err := d.cache.Get(ctx, DescriptorKey(smiles), &vals)
	if err == ErrCacheMiss {
		return molecule.Descriptors{}, false, nil
	}
	if err != nil {
		return molecule.Descriptors{}, false, err
	}
	if len(vals) != len(molecule.Kinds) {
		d.cache.logger.Warn("Discarding malformed descriptor entry",
			logging.String("key", DescriptorKey(smiles)),
			logging.Int("values", len(vals)))
		return molecule.Descriptors{}, false, nil
	}
	return molecule.Descriptors{
		MolWt:          vals[0],
		LogP:           vals[1],
		HBondDonors:    vals[2],
		HBondAcceptors: vals[3],
		RotatableBonds: vals[4],
	}, true, nil
}

func (d *DescriptorCache) SetDescriptors(ctx context.Context, smiles string, desc molecule.Descriptors) error {
	if desc.IsMissing() {
		return nil
	}
	vals := make([]float64, len(molecule.Kinds))
	for i, k := range molecule.Kinds {
		vals[i], _ = desc.Get(k)
	}
	return d.cache.Set(ctx, DescriptorKey(smiles), vals, d.ttl)
}

func (d *DescriptorCache) Ping(ctx context.Context) error {
	return d.cache.Ping(ctx)
}
