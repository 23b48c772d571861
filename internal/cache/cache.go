package cache

import (
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Default TTLs per entity type. Staleness is bounded by these windows;
// writes invalidate eagerly via DeletePattern.
var entityTTLs = map[string]time.Duration{
	"inventory_item": 60 * time.Second,
	"category":       15 * time.Minute,
	"stats":          5 * time.Minute,
}

const defaultTTL = 2 * time.Minute

// Cache is an in-process TTL cache keyed by organization and entity
// type, so one tenant's writes never evict another tenant's entries.
type Cache struct {
	store *gocache.Cache
}

func New() *Cache {
	return &Cache{
		store: gocache.New(defaultTTL, 10*time.Minute),
	}
}

func key(orgID, entityType, id string) string {
	return orgID + ":" + entityType + ":" + id
}

func (c *Cache) Get(orgID, entityType, id string) (interface{}, bool) {
	return c.store.Get(key(orgID, entityType, id))
}

func (c *Cache) Set(orgID, entityType, id string, value interface{}) {
	ttl := defaultTTL
	if d, ok := entityTTLs[entityType]; ok {
		ttl = d
	}
	c.store.Set(key(orgID, entityType, id), value, ttl)
}

func (c *Cache) Delete(orgID, entityType, id string) {
	c.store.Delete(key(orgID, entityType, id))
}

// DeletePattern drops every entry of the entity type belonging to the
// organization.
func (c *Cache) DeletePattern(orgID, entityType string) {
	prefix := orgID + ":" + entityType + ":"
	for k := range c.store.Items() {
		if strings.HasPrefix(k, prefix) {
			c.store.Delete(k)
		}
	}
}
