package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/d60-Lab/quote-inbox/internal/repository"
	"github.com/d60-Lab/quote-inbox/pkg/logger"
)

// UnreadCache 在 Redis 中按 (角色, 用户, 线程) 缓存未读摘要，短 TTL，允许轻微过期。
// Redis 不可用时直接回源。
type UnreadCache struct {
	inner  repository.UnreadReader
	client *redis.Client
	ttl    time.Duration

	hits   atomic.Int64
	misses atomic.Int64
}

func NewUnreadCache(inner repository.UnreadReader, client *redis.Client, ttl time.Duration) *UnreadCache {
	if ttl <= 0 {
		ttl = 15 * time.Second
	}
	return &UnreadCache{inner: inner, client: client, ttl: ttl}
}

func (c *UnreadCache) key(viewer repository.UnreadViewer, quoteID string) string {
	return fmt.Sprintf("inbox:unread:%s:%s:%s", viewer.Role, viewer.UserID, quoteID)
}

func (c *UnreadCache) Summaries(ctx context.Context, viewer repository.UnreadViewer, quoteIDs []string) (map[string]repository.UnreadSummary, error) {
	out := make(map[string]repository.UnreadSummary, len(quoteIDs))
	if len(quoteIDs) == 0 {
		return out, nil
	}

	keys := make([]string, len(quoteIDs))
	for i, id := range quoteIDs {
		keys[i] = c.key(viewer, id)
	}

	missing := quoteIDs
	if vals, err := c.client.MGet(ctx, keys...).Result(); err == nil {
		missing = make([]string, 0, len(quoteIDs))
		for i, v := range vals {
			str, ok := v.(string)
			if !ok {
				missing = append(missing, quoteIDs[i])
				continue
			}
			var s repository.UnreadSummary
			if uErr := json.Unmarshal([]byte(str), &s); uErr != nil {
				missing = append(missing, quoteIDs[i])
				continue
			}
			out[quoteIDs[i]] = s
		}
	} else {
		logger.Warn("unread cache read failed", zap.Error(err), zap.Int("thread_count", len(quoteIDs)))
	}
	c.hits.Add(int64(len(quoteIDs) - len(missing)))
	c.misses.Add(int64(len(missing)))

	if len(missing) == 0 {
		return out, nil
	}

	fresh, err := c.inner.Summaries(ctx, viewer, missing)
	if err != nil {
		return nil, err
	}

	pipe := c.client.Pipeline()
	for _, id := range missing {
		// 没有消息的线程也缓存空摘要，避免重复回源
		s := fresh[id]
		if payload, mErr := json.Marshal(s); mErr == nil {
			pipe.Set(ctx, c.key(viewer, id), payload, c.ttl)
		}
		if _, ok := fresh[id]; ok {
			out[id] = s
		}
	}
	if _, err := pipe.Exec(ctx); err != nil {
		logger.Warn("unread cache write failed", zap.Error(err), zap.Int("thread_count", len(missing)))
	}
	return out, nil
}

// CacheCounters 命中统计
type CacheCounters struct {
	Hits   int64
	Misses int64
}

func (c *UnreadCache) Counters() CacheCounters {
	return CacheCounters{Hits: c.hits.Load(), Misses: c.misses.Load()}
}

// ResetCounters 清零统计
func (c *UnreadCache) ResetCounters() {
	c.hits.Store(0)
	c.misses.Store(0)
}
