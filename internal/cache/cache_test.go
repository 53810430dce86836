// SPDX-License-Identifier: MIT
package cache

import (
	"context"
	"testing"
	"time"

	"github.com/qsolv/qsudoku/internal/board"
	"github.com/qsolv/qsudoku/internal/solver"
)

func testResult() *solver.Result {
	return &solver.Result{
		Grid:     [][]int{{1, 2}, {2, 1}},
		Strategy: solver.StrategyPairs,
		Shots:    1024,
		Outcome:  "01",
	}
}

func TestKeyStableAndStrategySensitive(t *testing.T) {
	b, err := board.New(1, 2, 2, 1)
	if err != nil {
		t.Fatal(err)
	}
	if err := b.Set(0, 0, 1); err != nil {
		t.Fatal(err)
	}

	k1 := Key(b, solver.StrategyPairs)
	k2 := Key(b, solver.StrategyPairs)
	if k1 != k2 {
		t.Fatalf("key not stable: %q vs %q", k1, k2)
	}
	if k1 == Key(b, solver.StrategyCoverSimple) {
		t.Fatal("strategy not part of the key")
	}

	other := b.Clone()
	if err := other.Set(0, 1, 2); err != nil {
		t.Fatal(err)
	}
	if k1 == Key(other, solver.StrategyPairs) {
		t.Fatal("board contents not part of the key")
	}
}

func TestMemoryCacheSetGet(t *testing.T) {
	c := NewMemory(time.Minute)
	defer func() { _ = c.Close() }()
	ctx := context.Background()

	if _, ok := c.Get(ctx, "missing"); ok {
		t.Fatal("empty cache returned a hit")
	}

	c.Set(ctx, "k", testResult())
	got, ok := c.Get(ctx, "k")
	if !ok {
		t.Fatal("stored result not found")
	}
	if got.Outcome != "01" || got.Grid[1][0] != 2 {
		t.Fatalf("cached result = %+v", got)
	}

	// mutating the returned copy must not change the cached value
	got.Outcome = "changed"
	again, ok := c.Get(ctx, "k")
	if !ok || again.Outcome != "01" {
		t.Fatalf("cache entry aliased: %+v", again)
	}

	c.Delete(ctx, "k")
	if _, ok := c.Get(ctx, "k"); ok {
		t.Fatal("deleted key still present")
	}
}

func TestMemoryCacheExpiry(t *testing.T) {
	c := NewMemory(10 * time.Millisecond)
	defer func() { _ = c.Close() }()
	ctx := context.Background()

	c.Set(ctx, "k", testResult())
	time.Sleep(30 * time.Millisecond)
	if _, ok := c.Get(ctx, "k"); ok {
		t.Fatal("expired entry returned")
	}
}

func TestNoOpCache(t *testing.T) {
	var c Cache = NoOp{}
	ctx := context.Background()
	c.Set(ctx, "k", testResult())
	if _, ok := c.Get(ctx, "k"); ok {
		t.Fatal("noop cache returned a hit")
	}
}
