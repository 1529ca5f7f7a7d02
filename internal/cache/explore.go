package cache

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// ExploreKey is the sorted set holding the newest project ids,
	// scored by creation timestamp.
	ExploreKey = "explore:projects"

	// ExploreCap is the maximum number of project ids kept in the index
	ExploreCap = 500

	// ExploreTTL expires an index that hasn't been touched in a day;
	// the read path rebuilds it from the database.
	ExploreTTL = 24 * time.Hour
)

// ProjectScore pairs a project id with its creation timestamp score.
type ProjectScore struct {
	ProjectID string
	Timestamp int64 // Unix timestamp
}

// ExploreCache is a read-side index over the newest projects. It is purely an
// acceleration: every operation is best-effort and callers fall back to the
// database when it is cold or unavailable.
type ExploreCache interface {
	// Add inserts a project into the index, trimming to the cap.
	Add(ctx context.Context, projectID string, timestamp int64) error

	// Remove drops a project from the index.
	Remove(ctx context.Context, projectID string) error

	// Recent returns up to limit project ids, newest first.
	// An empty result means the index is cold and needs warming.
	Recent(ctx context.Context, limit int) ([]string, error)

	// Warm bulk-loads the index from database rows.
	Warm(ctx context.Context, projects []ProjectScore) error

	// Size returns the number of project ids in the index.
	Size(ctx context.Context) (int64, error)
}

// RedisExploreCache implements ExploreCache on a Redis sorted set.
type RedisExploreCache struct {
	client *redis.Client
}

// NewExploreCache creates an ExploreCache backed by Redis.
func NewExploreCache(client *redis.Client) ExploreCache {
	return &RedisExploreCache{client: client}
}

// Add inserts a project id with a pipeline: ZADD + ZREMRANGEBYRANK (trim to
// cap) + EXPIRE (refresh TTL).
func (c *RedisExploreCache) Add(ctx context.Context, projectID string, timestamp int64) error {
	pipe := c.client.Pipeline()

	pipe.ZAdd(ctx, ExploreKey, redis.Z{
		Score:  float64(timestamp),
		Member: projectID,
	})

	// Keep the ExploreCap highest scores (newest), drop the rest
	pipe.ZRemRangeByRank(ctx, ExploreKey, 0, int64(-ExploreCap-1))

	pipe.Expire(ctx, ExploreKey, ExploreTTL)

	if _, err := pipe.Exec(ctx); err != nil {
		log.Printf("[ExploreCache] Add FAILED: project=%s err=%v", projectID, err)
		return fmt.Errorf("add project to explore index: %w", err)
	}
	return nil
}

func (c *RedisExploreCache) Remove(ctx context.Context, projectID string) error {
	if err := c.client.ZRem(ctx, ExploreKey, projectID).Err(); err != nil {
		log.Printf("[ExploreCache] Remove FAILED: project=%s err=%v", projectID, err)
		return fmt.Errorf("remove project from explore index: %w", err)
	}
	return nil
}

// Recent returns up to limit project ids ordered newest first.
func (c *RedisExploreCache) Recent(ctx context.Context, limit int) ([]string, error) {
	ids, err := c.client.ZRevRange(ctx, ExploreKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("read explore index: %w", err)
	}
	return ids, nil
}

// Warm bulk-loads the index with pipelined ZADDs plus a trim and TTL refresh.
func (c *RedisExploreCache) Warm(ctx context.Context, projects []ProjectScore) error {
	if len(projects) == 0 {
		return nil
	}

	pipe := c.client.Pipeline()
	for _, p := range projects {
		pipe.ZAdd(ctx, ExploreKey, redis.Z{
			Score:  float64(p.Timestamp),
			Member: p.ProjectID,
		})
	}
	pipe.ZRemRangeByRank(ctx, ExploreKey, 0, int64(-ExploreCap-1))
	pipe.Expire(ctx, ExploreKey, ExploreTTL)

	if _, err := pipe.Exec(ctx); err != nil {
		log.Printf("[ExploreCache] Warm FAILED: count=%d err=%v", len(projects), err)
		return fmt.Errorf("warm explore index: %w", err)
	}

	log.Printf("[ExploreCache] Warm OK: count=%d", len(projects))
	return nil
}

func (c *RedisExploreCache) Size(ctx context.Context) (int64, error) {
	size, err := c.client.ZCard(ctx, ExploreKey).Result()
	if err != nil {
		return 0, fmt.Errorf("explore index size: %w", err)
	}
	return size, nil
}
