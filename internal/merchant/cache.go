package merchant

import (
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/ballsdex/merchant-service/internal/domain"
)

// entryCache caches a rotation's entries for the read-heavy view and
// autocomplete paths. Entries are fixed at rotation creation, so a hit is
// always consistent; the TTL only evicts superseded rotations.
type entryCache struct {
	lru *expirable.LRU[uuid.UUID, []domain.RotationEntry]
}

func newEntryCache(size int, ttl time.Duration) *entryCache {
	return &entryCache{
		lru: expirable.NewLRU[uuid.UUID, []domain.RotationEntry](size, nil, ttl),
	}
}

func (c *entryCache) Get(rotationID uuid.UUID) ([]domain.RotationEntry, bool) {
	return c.lru.Get(rotationID)
}

func (c *entryCache) Set(rotationID uuid.UUID, entries []domain.RotationEntry) {
	c.lru.Add(rotationID, entries)
}
