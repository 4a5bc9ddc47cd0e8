package services

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"rada-learning/internal/learning"
	"rada-learning/internal/metrics"
	"rada-learning/internal/models"
)

// CachedContent is a read-through Redis cache in front of another content
// source. Redis failures fall through to the source; misses are not cached.
type CachedContent struct {
	next  learning.ContentSource
	redis *redis.Client
	ttl   time.Duration
}

func NewCachedContent(next learning.ContentSource, redisClient *redis.Client, ttl time.Duration) *CachedContent {
	return &CachedContent{next: next, redis: redisClient, ttl: ttl}
}

func (c *CachedContent) ListModules(ctx context.Context) ([]models.Module, error) {
	return cached(ctx, c, "content:modules", func() ([]models.Module, error) {
		return c.next.ListModules(ctx)
	})
}

func (c *CachedContent) GetModule(ctx context.Context, id string) (*models.Module, error) {
	return cached(ctx, c, "content:module:"+id, func() (*models.Module, error) {
		return c.next.GetModule(ctx, id)
	})
}

func (c *CachedContent) GetModuleQuizzes(ctx context.Context, moduleID string) ([]models.Quiz, error) {
	return cached(ctx, c, "content:module-quizzes:"+moduleID, func() ([]models.Quiz, error) {
		return c.next.GetModuleQuizzes(ctx, moduleID)
	})
}

func (c *CachedContent) GetQuiz(ctx context.Context, id string) (*models.Quiz, error) {
	return cached(ctx, c, "content:quiz:"+id, func() (*models.Quiz, error) {
		return c.next.GetQuiz(ctx, id)
	})
}

// Invalidate drops every cached content key, used after a seed import.
func (c *CachedContent) Invalidate(ctx context.Context) error {
	iter := c.redis.Scan(ctx, 0, "content:*", 100).Iterator()
	for iter.Next(ctx) {
		if err := c.redis.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

func cached[T any](ctx context.Context, c *CachedContent, key string, load func() (T, error)) (T, error) {
	raw, err := c.redis.Get(ctx, key).Bytes()
	if err == nil {
		var v T
		if err := json.Unmarshal(raw, &v); err == nil {
			metrics.ContentCache.WithLabelValues("hit").Inc()
			return v, nil
		}
		log.Printf("Content cache: dropping undecodable entry %s", key)
	} else if !errors.Is(err, redis.Nil) {
		metrics.ContentCache.WithLabelValues("error").Inc()
		log.Printf("Content cache: read %s failed: %v", key, err)
	} else {
		metrics.ContentCache.WithLabelValues("miss").Inc()
	}

	v, err := load()
	if err != nil {
		return v, err
	}

	data, err := json.Marshal(v)
	if err == nil {
		if err := c.redis.Set(ctx, key, data, c.ttl).Err(); err != nil {
			log.Printf("Content cache: write %s failed: %v", key, err)
		}
	}
	return v, nil
}
