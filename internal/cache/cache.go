// SPDX-License-Identifier: MIT

// Package cache stores solve results keyed by puzzle and strategy, so
// repeated requests for the same board skip the simulation entirely.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync"
	"time"

	"github.com/qsolv/qsudoku/internal/board"
	"github.com/qsolv/qsudoku/internal/metrics"
	"github.com/qsolv/qsudoku/internal/solver"
)

// Cache stores solve results with expiration.
type Cache interface {
	// Get returns the cached result for key, or false when absent or expired.
	Get(ctx context.Context, key string) (*solver.Result, bool)
	// Set stores a result under key.
	Set(ctx context.Context, key string, res *solver.Result)
	// Delete removes a key.
	Delete(ctx context.Context, key string)
	// Close releases any backing resources.
	Close() error
}

// Key derives a stable cache key from the puzzle contents and the
// strategy that will solve it.
func Key(b *board.Board, strategy solver.Strategy) string {
	var sb strings.Builder
	_ = b.WriteCSV(&sb)
	sum := sha256.Sum256([]byte(string(strategy) + "\n" + sb.String()))
	return "solve:" + hex.EncodeToString(sum[:16])
}

type entry struct {
	res     *solver.Result
	expires time.Time
}

// MemoryCache is an in-process Cache with TTL and periodic cleanup.
type MemoryCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]entry
	stop    chan struct{}
	done    chan struct{}
}

// NewMemory returns a memory cache whose entries expire after ttl. A
// background janitor evicts expired entries every ttl interval.
func NewMemory(ttl time.Duration) *MemoryCache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	c := &MemoryCache{
		ttl:     ttl,
		entries: make(map[string]entry),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go c.janitor()
	return c
}

func (c *MemoryCache) Get(ctx context.Context, key string) (*solver.Result, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok || time.Now().After(e.expires) {
		metrics.RecordCacheRequest("miss")
		return nil, false
	}
	metrics.RecordCacheRequest("hit")
	cp := *e.res
	return &cp, true
}

func (c *MemoryCache) Set(ctx context.Context, key string, res *solver.Result) {
	cp := *res
	c.mu.Lock()
	c.entries[key] = entry{res: &cp, expires: time.Now().Add(c.ttl)}
	c.mu.Unlock()
}

func (c *MemoryCache) Delete(ctx context.Context, key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// Close stops the janitor.
func (c *MemoryCache) Close() error {
	close(c.stop)
	<-c.done
	return nil
}

func (c *MemoryCache) janitor() {
	defer close(c.done)
	ticker := time.NewTicker(c.ttl)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			now := time.Now()
			c.mu.Lock()
			for k, e := range c.entries {
				if now.After(e.expires) {
					delete(c.entries, k)
				}
			}
			c.mu.Unlock()
		case <-c.stop:
			return
		}
	}
}

// NoOp is a Cache that stores nothing. It backs deployments without a
// cache configured.
type NoOp struct{}

func (NoOp) Get(ctx context.Context, key string) (*solver.Result, bool) {
	metrics.RecordCacheRequest("miss")
	return nil, false
}
func (NoOp) Set(ctx context.Context, key string, res *solver.Result) {}
func (NoOp) Delete(ctx context.Context, key string)                  {}
func (NoOp) Close() error                                            { return nil }

var (
	_ Cache = (*MemoryCache)(nil)
	_ Cache = NoOp{}
)
