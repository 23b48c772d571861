package cache_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/chimbuka/mabuku/internal/cache"
)

func TestCacheScopesByOrganization(t *testing.T) {
	c := cache.New()

	c.Set("org-1", "category", "hierarchy", "tree-1")
	c.Set("org-2", "category", "hierarchy", "tree-2")

	v, ok := c.Get("org-1", "category", "hierarchy")
	assert.True(t, ok)
	assert.Equal(t, "tree-1", v)

	c.DeletePattern("org-1", "category")

	_, ok = c.Get("org-1", "category", "hierarchy")
	assert.False(t, ok)

	v, ok = c.Get("org-2", "category", "hierarchy")
	assert.True(t, ok)
	assert.Equal(t, "tree-2", v)
}

func TestCacheDeleteSingleEntry(t *testing.T) {
	c := cache.New()

	c.Set("org-1", "inventory_item", "item-1", 5)
	c.Set("org-1", "inventory_item", "item-2", 7)
	c.Delete("org-1", "inventory_item", "item-1")

	_, ok := c.Get("org-1", "inventory_item", "item-1")
	assert.False(t, ok)
	_, ok = c.Get("org-1", "inventory_item", "item-2")
	assert.True(t, ok)
}
