package clients

import (
	"context"
	"sync"
	"time"
)

// Token is a bearer credential with its absolute expiry.
type Token struct {
	Value     string
	ExpiresAt time.Time
}

// TokenCache holds one access token and refreshes it through the supplied
// fetch function once it is within skew of expiring. Safe for concurrent use;
// concurrent callers share a single fetch.
type TokenCache struct {
	mu   sync.Mutex
	now  func() time.Time
	skew time.Duration
	tok  Token
}

func NewTokenCache(now func() time.Time, skew time.Duration) *TokenCache {
	if now == nil {
		now = time.Now
	}
	return &TokenCache{now: now, skew: skew}
}

func (c *TokenCache) Get(ctx context.Context, fetch func(context.Context) (Token, error)) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.tok.Value != "" && c.now().Add(c.skew).Before(c.tok.ExpiresAt) {
		return c.tok.Value, nil
	}
	tok, err := fetch(ctx)
	if err != nil {
		return "", err
	}
	c.tok = tok
	return tok.Value, nil
}

// Invalidate drops the cached token, e.g. after the API answered 401.
func (c *TokenCache) Invalidate() {
	c.mu.Lock()
	c.tok = Token{}
	c.mu.Unlock()
}
