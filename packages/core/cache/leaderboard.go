package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"kicker-api/packages/core/models"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// LeaderboardCache stores leaderboard reads per kicker. Implementations
// treat every backend failure as a miss.
//
// Get returns the kicker's generation along with the lookup. Set must be
// given the generation its caller observed before reading the store; an
// entry whose generation was invalidated in between is never served.
type LeaderboardCache interface {
	Get(ctx context.Context, kickerID uint, mode models.MatchMode, limit int) (players []models.Player, gen int64, ok bool)
	Set(ctx context.Context, kickerID uint, gen int64, mode models.MatchMode, limit int, players []models.Player)
	Invalidate(ctx context.Context, kickerID uint)
}

// noGeneration marks a lookup whose generation is unknown; Set ignores it.
const noGeneration = -1

type NopLeaderboardCache struct{}

func (NopLeaderboardCache) Get(context.Context, uint, models.MatchMode, int) ([]models.Player, int64, bool) {
	return nil, noGeneration, false
}

func (NopLeaderboardCache) Set(context.Context, uint, int64, models.MatchMode, int, []models.Player) {}

func (NopLeaderboardCache) Invalidate(context.Context, uint) {}

// RedisLeaderboardCache keys entries by a per-kicker generation counter so
// that invalidation is a single INCR instead of a key scan.
type RedisLeaderboardCache struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewRedisLeaderboardCache(rdb *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisLeaderboardCache {
	return &RedisLeaderboardCache{rdb: rdb, ttl: ttl, logger: logger}
}

// NewRedisClient parses a redis:// URL and pings the server.
func NewRedisClient(ctx context.Context, rawURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

func generationKey(kickerID uint) string {
	return fmt.Sprintf("kicker:%d:leaderboard:gen", kickerID)
}

func entryKey(kickerID uint, gen int64, mode models.MatchMode, limit int) string {
	return fmt.Sprintf("kicker:%d:leaderboard:%d:%s:%d", kickerID, gen, mode, limit)
}

func (c *RedisLeaderboardCache) generation(ctx context.Context, kickerID uint) (int64, error) {
	gen, err := c.rdb.Get(ctx, generationKey(kickerID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

func (c *RedisLeaderboardCache) Get(ctx context.Context, kickerID uint, mode models.MatchMode, limit int) ([]models.Player, int64, bool) {
	gen, err := c.generation(ctx, kickerID)
	if err != nil {
		c.logger.Warn("leaderboard cache generation lookup failed", zap.Uint("kicker_id", kickerID), zap.Error(err))
		return nil, noGeneration, false
	}
	raw, err := c.rdb.Get(ctx, entryKey(kickerID, gen, mode, limit)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, gen, false
	}
	if err != nil {
		c.logger.Warn("leaderboard cache read failed", zap.Uint("kicker_id", kickerID), zap.Error(err))
		return nil, gen, false
	}
	var players []models.Player
	if err := json.Unmarshal(raw, &players); err != nil {
		return nil, gen, false
	}
	return players, gen, true
}

// Set writes under the caller's generation. After an invalidation that key
// is no longer read, so a stale write is left to expire.
func (c *RedisLeaderboardCache) Set(ctx context.Context, kickerID uint, gen int64, mode models.MatchMode, limit int, players []models.Player) {
	if gen < 0 {
		return
	}
	raw, err := json.Marshal(players)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, entryKey(kickerID, gen, mode, limit), raw, c.ttl).Err(); err != nil {
		c.logger.Warn("leaderboard cache write failed", zap.Uint("kicker_id", kickerID), zap.Error(err))
	}
}

func (c *RedisLeaderboardCache) Invalidate(ctx context.Context, kickerID uint) {
	if err := c.rdb.Incr(ctx, generationKey(kickerID)).Err(); err != nil {
		c.logger.Warn("leaderboard cache invalidation failed", zap.Uint("kicker_id", kickerID), zap.Error(err))
	}
}

// MemoryLeaderboardCache is a process-local cache used when no redis is
// configured.
type MemoryLeaderboardCache struct {
	mu          sync.RWMutex
	entries     map[uint]map[string][]models.Player
	generations map[uint]int64
}

func NewMemoryLeaderboardCache() *MemoryLeaderboardCache {
	return &MemoryLeaderboardCache{
		entries:     make(map[uint]map[string][]models.Player),
		generations: make(map[uint]int64),
	}
}

func memoryKey(mode models.MatchMode, limit int) string {
	return fmt.Sprintf("%s:%d", mode, limit)
}

func (c *MemoryLeaderboardCache) Get(_ context.Context, kickerID uint, mode models.MatchMode, limit int) ([]models.Player, int64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	players, ok := c.entries[kickerID][memoryKey(mode, limit)]
	return players, c.generations[kickerID], ok
}

// Set drops the write when the kicker was invalidated after gen was read.
func (c *MemoryLeaderboardCache) Set(_ context.Context, kickerID uint, gen int64, mode models.MatchMode, limit int, players []models.Player) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generations[kickerID] {
		return
	}
	if c.entries[kickerID] == nil {
		c.entries[kickerID] = make(map[string][]models.Player)
	}
	c.entries[kickerID][memoryKey(mode, limit)] = players
}

func (c *MemoryLeaderboardCache) Invalidate(_ context.Context, kickerID uint) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generations[kickerID]++
	delete(c.entries, kickerID)
}
