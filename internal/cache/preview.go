// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cache

import (
	"context"
	"errors"
	"log/slog"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/redis/go-redis/v9"
)

const (
	// previewKeyPrefix is the Valkey key prefix for cached documents.
	previewKeyPrefix = "preview:"

	// DefaultPreviewTTL is how long a document stays in Valkey.
	DefaultPreviewTTL = 10 * time.Minute

	// DefaultL1Size is the number of documents kept in process.
	DefaultL1Size = 512
)

// PreviewCache keeps synthesized preview documents in an in-process LRU
// (L1) backed by Valkey (L2). A nil Valkey client leaves only L1. Errors
// from Valkey are logged and treated as misses.
type PreviewCache struct {
	l1     *lru.Cache[string, []byte]
	client *redis.Client
	ttl    time.Duration
}

// NewPreviewCache creates a preview cache. size <= 0 and ttl == 0 select
// the defaults.
func NewPreviewCache(client *redis.Client, size int, ttl time.Duration) (*PreviewCache, error) {
	if size <= 0 {
		size = DefaultL1Size
	}
	if ttl == 0 {
		ttl = DefaultPreviewTTL
	}
	l1, err := lru.New[string, []byte](size)
	if err != nil {
		return nil, err
	}
	return &PreviewCache{l1: l1, client: client, ttl: ttl}, nil
}

// Get returns the cached document for key. An L2 hit is promoted to L1.
func (c *PreviewCache) Get(ctx context.Context, key string) ([]byte, bool) {
	if doc, ok := c.l1.Get(key); ok {
		slog.Debug("preview cache hit", "key", key, "level", 1)
		return doc, true
	}
	if c.client == nil {
		return nil, false
	}

	doc, err := c.client.Get(ctx, previewKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		slog.Warn("preview cache get error", "key", key, "error", err)
		return nil, false
	}
	slog.Debug("preview cache hit", "key", key, "level", 2)
	c.l1.Add(key, doc)
	return doc, true
}

// Set stores doc under key in both levels.
func (c *PreviewCache) Set(ctx context.Context, key string, doc []byte) {
	c.l1.Add(key, doc)
	if c.client == nil {
		return
	}
	if err := c.client.Set(ctx, previewKeyPrefix+key, doc, c.ttl).Err(); err != nil {
		slog.Warn("preview cache set error", "key", key, "error", err)
	}
}

// Invalidate removes key from both levels.
func (c *PreviewCache) Invalidate(ctx context.Context, key string) {
	c.l1.Remove(key)
	if c.client == nil {
		return
	}
	if err := c.client.Del(ctx, previewKeyPrefix+key).Err(); err != nil {
		slog.Warn("preview cache invalidate error", "key", key, "error", err)
	}
	slog.Debug("preview cache invalidated", "key", key)
}

// Len returns the number of documents held in L1.
func (c *PreviewCache) Len() int {
	return c.l1.Len()
}
