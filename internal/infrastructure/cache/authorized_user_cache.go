package cache

import "sync"

// AuthorizedUserCache is a process-wide read-through cache of authorization flags.
// Both positive and negative answers are kept. Many readers may query it while
// an authorization transition writes.
type AuthorizedUserCache struct {
	mu    sync.RWMutex
	flags map[int64]bool
}

// NewAuthorizedUserCache creates an empty cache
func NewAuthorizedUserCache() *AuthorizedUserCache {
	return &AuthorizedUserCache{flags: make(map[int64]bool)}
}

// Get returns the cached flag and whether the user is cached at all
func (c *AuthorizedUserCache) Get(userID int64) (authorized, found bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	authorized, found = c.flags[userID]
	return authorized, found
}

// Set stores the flag of one user
func (c *AuthorizedUserCache) Set(userID int64, authorized bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.flags[userID] = authorized
}

// Replace drops every entry and caches the given users as authorized
func (c *AuthorizedUserCache) Replace(authorizedIDs []int64) {
	flags := make(map[int64]bool, len(authorizedIDs))
	for _, id := range authorizedIDs {
		flags[id] = true
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.flags = flags
}
