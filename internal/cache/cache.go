// Package cache stores computed schedules keyed by their loan parameters.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/iwvelando/loan-analyzer/pkg/constants"
	"github.com/iwvelando/loan-analyzer/pkg/loans"
	"go.uber.org/zap"
)

// Cache is a byte-oriented key/value store.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
}

// Config selects and sizes the cache backend.
type Config struct {
	Backend       string `yaml:"backend"`
	MaxEntries    int    `yaml:"maxEntries"`
	TTLSeconds    int    `yaml:"ttlSeconds"`
	RedisAddr     string `yaml:"redisAddr"`
	RedisPassword string `yaml:"redisPassword"`
	RedisDB       int    `yaml:"redisDB"`
}

// TTL is the configured entry lifetime.
func (c Config) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}

// New builds the backend named by cfg.Backend. An empty backend means memory.
func New(cfg Config, logger *zap.Logger) (Cache, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	backend := strings.ToLower(strings.TrimSpace(cfg.Backend))
	switch backend {
	case "", constants.CacheBackendMemory:
		entries := cfg.MaxEntries
		if entries <= 0 {
			entries = constants.DefaultCacheEntries
		}
		logger.Debug("using in-memory schedule cache",
			zap.String("op", "cache.New"),
			zap.Int("maxEntries", entries),
		)
		return NewMemoryCache(entries, cfg.TTL()), nil
	case constants.CacheBackendRedis:
		if cfg.RedisAddr == "" {
			return nil, fmt.Errorf("redis cache requires redisAddr")
		}
		logger.Debug("using redis schedule cache",
			zap.String("op", "cache.New"),
			zap.String("addr", cfg.RedisAddr),
		)
		return NewRedisCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.TTL()), nil
	case constants.CacheBackendNone:
		return Nop{}, nil
	default:
		return nil, fmt.Errorf("unsupported cache backend %q", cfg.Backend)
	}
}

// MemoryCache adapts LRUCache to the Cache interface.
type MemoryCache struct {
	lru *LRUCache[[]byte]
}

// NewMemoryCache creates an in-process cache holding at most maxEntries values.
func NewMemoryCache(maxEntries int, ttl time.Duration) *MemoryCache {
	return &MemoryCache{lru: NewLRUCache[[]byte](maxEntries, ttl)}
}

// Get implements Cache.
func (m *MemoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	val, ok := m.lru.Get(key)
	return val, ok, nil
}

// Set implements Cache.
func (m *MemoryCache) Set(_ context.Context, key string, value []byte) error {
	m.lru.Set(key, value)
	return nil
}

// Size is the number of live entries.
func (m *MemoryCache) Size() int {
	return m.lru.Size()
}

// Nop never stores anything.
type Nop struct{}

// Get implements Cache.
func (Nop) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }

// Set implements Cache.
func (Nop) Set(context.Context, string, []byte) error { return nil }

// Key derives the cache key of a schedule from its parameters.
func Key(params loans.LoanParameters) string {
	canonical := strings.Join([]string{
		strconv.FormatFloat(params.Principal, 'g', -1, 64),
		strconv.FormatFloat(params.DownPayment, 'g', -1, 64),
		strconv.FormatFloat(params.AnnualRate, 'g', -1, 64),
		strconv.Itoa(params.TermYears),
		strconv.FormatFloat(params.ExtraPayment, 'g', -1, 64),
	}, "|")
	return fmt.Sprintf("schedule:%016x", xxhash.Sum64String(canonical))
}

// ScheduleCache computes schedules through a Cache. Cache failures are logged
// and the schedule is computed directly.
type ScheduleCache struct {
	cache     Cache
	generator *loans.ScheduleGenerator
	logger    *zap.Logger
}

// NewScheduleCache wraps c. A nil cache disables caching.
func NewScheduleCache(c Cache, logger *zap.Logger) *ScheduleCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	if c == nil {
		c = Nop{}
	}
	return &ScheduleCache{cache: c, generator: loans.NewScheduleGenerator(logger), logger: logger}
}

// Schedule returns the schedule for params and whether it came from the cache.
func (s *ScheduleCache) Schedule(ctx context.Context, params loans.LoanParameters) (loans.Result, bool, error) {
	key := Key(params)

	if data, ok, err := s.cache.Get(ctx, key); err != nil {
		s.logger.Warn("schedule cache read failed",
			zap.String("op", "cache.Schedule"),
			zap.String("key", key),
			zap.Error(err),
		)
	} else if ok {
		var result loans.Result
		if err := json.Unmarshal(data, &result); err == nil {
			return result, true, nil
		}
		s.logger.Warn("discarding undecodable cache entry",
			zap.String("op", "cache.Schedule"),
			zap.String("key", key),
		)
	}

	result, err := s.generator.GenerateSchedule(params)
	if err != nil {
		return loans.Result{}, false, err
	}

	data, err := json.Marshal(result)
	if err != nil {
		return result, false, nil
	}
	if err := s.cache.Set(ctx, key, data); err != nil {
		s.logger.Warn("schedule cache write failed",
			zap.String("op", "cache.Schedule"),
			zap.String("key", key),
			zap.Error(err),
		)
	}
	return result, false, nil
}

// Compute is Schedule without the cache-hit flag.
func (s *ScheduleCache) Compute(ctx context.Context, params loans.LoanParameters) (loans.Result, error) {
	result, _, err := s.Schedule(ctx, params)
	return result, err
}
