package cache

import (
	"context"
	"testing"

	"kicker-api/packages/core/models"
)

func TestMemoryLeaderboardCache(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryLeaderboardCache()

	_, gen, ok := c.Get(ctx, 1, models.ModeOneOnOne, 10)
	if ok {
		t.Fatal("empty cache reported a hit")
	}

	players := []models.Player{{ID: 1, Name: "ana", Mmr: 1016}}
	c.Set(ctx, 1, gen, models.ModeOneOnOne, 10, players)
	c.Set(ctx, 2, gen, models.ModeOneOnOne, 10, players)

	got, _, ok := c.Get(ctx, 1, models.ModeOneOnOne, 10)
	if !ok || len(got) != 1 || got[0].Mmr != 1016 {
		t.Fatalf("Get = %v, %v", got, ok)
	}
	if _, _, ok := c.Get(ctx, 1, models.ModeTwoOnTwo, 10); ok {
		t.Error("mode is part of the key")
	}

	c.Invalidate(ctx, 1)
	if _, _, ok := c.Get(ctx, 1, models.ModeOneOnOne, 10); ok {
		t.Error("invalidated kicker still cached")
	}
	if _, _, ok := c.Get(ctx, 2, models.ModeOneOnOne, 10); !ok {
		t.Error("invalidation leaked into another kicker")
	}
}

func TestMemoryLeaderboardCacheDropsWriteAfterInvalidate(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryLeaderboardCache()

	// A reader misses, a match ends and invalidates, then the reader stores
	// what it loaded before the match ended.
	_, gen, _ := c.Get(ctx, 1, models.ModeOneOnOne, 10)
	c.Invalidate(ctx, 1)
	c.Set(ctx, 1, gen, models.ModeOneOnOne, 10, []models.Player{{ID: 1, Mmr: 1000}})

	if got, _, ok := c.Get(ctx, 1, models.ModeOneOnOne, 10); ok {
		t.Fatalf("stale leaderboard cached: %v", got)
	}

	_, gen, _ = c.Get(ctx, 1, models.ModeOneOnOne, 10)
	c.Set(ctx, 1, gen, models.ModeOneOnOne, 10, []models.Player{{ID: 1, Mmr: 1016}})
	got, _, ok := c.Get(ctx, 1, models.ModeOneOnOne, 10)
	if !ok || got[0].Mmr != 1016 {
		t.Fatalf("Get after fresh Set = %v, %v", got, ok)
	}
}

func TestNopLeaderboardCacheNeverHits(t *testing.T) {
	ctx := context.Background()
	var c NopLeaderboardCache
	_, gen, _ := c.Get(ctx, 1, models.ModeOneOnOne, 10)
	c.Set(ctx, 1, gen, models.ModeOneOnOne, 10, []models.Player{{ID: 1}})
	if _, _, ok := c.Get(ctx, 1, models.ModeOneOnOne, 10); ok {
		t.Error("nop cache reported a hit")
	}
}

func TestEntryKeyIncludesGeneration(t *testing.T) {
	if entryKey(3, 0, models.ModeOneOnOne, 10) == entryKey(3, 1, models.ModeOneOnOne, 10) {
		t.Error("generation must change the key")
	}
}
