package gamification

import (
	"context"
	"sync"

	"github.com/hamdel-app/hamdel/internal/collab"
)

// Fetcher reads the gamification state from the collaborator.
type Fetcher interface {
	Gamification(ctx context.Context) (*collab.GamificationSnapshot, error)
}

// Default is the snapshot of a fresh session: level 1, no experience, no badges.
func Default() collab.GamificationSnapshot {
	return collab.GamificationSnapshot{Level: 1, Badges: []string{}}
}

// Cache is a read-through cache of the collaborator's level/xp/badge state.
// The snapshot is only ever replaced wholesale; nothing is mutated locally.
type Cache struct {
	fetcher Fetcher

	mu   sync.Mutex
	snap collab.GamificationSnapshot
}

func NewCache(fetcher Fetcher) *Cache {
	return &Cache{fetcher: fetcher, snap: Default()}
}

// Refresh replaces the entire snapshot with the collaborator's current state.
func (c *Cache) Refresh(ctx context.Context) error {
	snap, err := c.fetcher.Gamification(ctx)
	if err != nil {
		return err
	}
	next := *snap
	if next.Badges == nil {
		next.Badges = []string{}
	}

	c.mu.Lock()
	c.snap = next
	c.mu.Unlock()
	return nil
}

// Store replaces the snapshot with an already-fetched value.
func (c *Cache) Store(snap collab.GamificationSnapshot) {
	if snap.Badges == nil {
		snap.Badges = []string{}
	}
	c.mu.Lock()
	c.snap = snap
	c.mu.Unlock()
}

// Current returns the cached snapshot.
func (c *Cache) Current() collab.GamificationSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snap
}

// Reset restores the default snapshot.
func (c *Cache) Reset() {
	c.mu.Lock()
	c.snap = Default()
	c.mu.Unlock()
}

// Progress reports experience gathered within the current level and the
// amount needed to reach the next one. Levels advance every 100 XP.
func Progress(snap collab.GamificationSnapshot) (have, need int) {
	return snap.XP % 100, 100
}
