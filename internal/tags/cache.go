package tags

import "sync"

// Cache holds definitions fetched or preloaded from the store.
// It also remembers codes the store reported as missing so repeated
// renders do not refetch them. Safe for concurrent use.
type Cache struct {
	mu      sync.RWMutex
	defs    map[string]Definition
	missing map[string]struct{}
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{
		defs:    make(map[string]Definition),
		missing: make(map[string]struct{}),
	}
}

// Get returns the cached definition for code.
func (c *Cache) Get(code string) (Definition, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	d, ok := c.defs[code]
	return d, ok
}

// Put stores d, replacing any previous entry for its code.
func (c *Cache) Put(d Definition) {
	if d.Code == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.defs[d.Code] = d
	delete(c.missing, d.Code)
}

// Preload stores every definition, overwriting stale entries.
func (c *Cache) Preload(defs []Definition) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, d := range defs {
		if d.Code == "" {
			continue
		}
		c.defs[d.Code] = d
		delete(c.missing, d.Code)
	}
}

// MarkMissing records that the store has no definition for code.
func (c *Cache) MarkMissing(code string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.defs[code]; !ok {
		c.missing[code] = struct{}{}
	}
}

// Missing reports whether code was recorded as missing.
func (c *Cache) Missing(code string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.missing[code]
	return ok
}

// Invalidate empties the cache.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.defs = make(map[string]Definition)
	c.missing = make(map[string]struct{})
}

// Len returns the number of cached definitions.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.defs)
}
