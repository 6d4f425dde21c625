package auth

import (
	"sync"

	"golang.org/x/oauth2"
)

// TokenCache holds the most recent client-credentials token in memory.
// Tokens never leave the process.
type TokenCache struct {
	mu    sync.RWMutex
	token *oauth2.Token
}

// NewTokenCache creates an empty TokenCache.
func NewTokenCache() *TokenCache {
	return &TokenCache{}
}

// Load returns the cached token if it is still valid, or nil otherwise.
// Validity follows [oauth2.Token.Valid], which treats tokens close to expiry as expired.
func (c *TokenCache) Load() *oauth2.Token {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.token.Valid() {
		return nil
	}
	return c.token
}

// Save replaces the cached token. A nil token clears the cache.
func (c *TokenCache) Save(token *oauth2.Token) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// Delete clears the cached token.
func (c *TokenCache) Delete() {
	c.Save(nil)
}
