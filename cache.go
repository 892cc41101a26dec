package omsbridge

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"time"

	"golang.org/x/crypto/blake2b"

	"github.com/opengovern/oms-bridge/cache"
)

// responseCache serves cacheable GETs out of a cache.Store for maxAge.
type responseCache struct {
	store  cache.Store
	maxAge time.Duration
}

type cachedResponse struct {
	StatusCode int               `json:"status"`
	Headers    map[string]string `json:"headers"`
	Data       []byte            `json:"data"`
}

func newResponseCache(store cache.Store, maxAge time.Duration) *responseCache {
	if store == nil {
		store = cache.NewMemoryStore()
	}
	return &responseCache{store: store, maxAge: maxAge}
}

func (c *responseCache) enabled() bool {
	return c != nil && c.maxAge > 0
}

// cacheKey hashes the full request signature: method, URL with its
// serialized query string, and the bearer token. The URL carries the OMS
// instance and the token scopes entries to one login, so a store shared
// between processes never serves one user's response to another.
func cacheKey(method, fullURL, token string) string {
	sum := blake2b.Sum256([]byte(method + " " + fullURL + "\x00" + token))
	return hex.EncodeToString(sum[:])
}

func (c *responseCache) get(ctx context.Context, key string) (*Response, bool) {
	b, ok, err := c.store.Get(ctx, key)
	if err != nil || !ok {
		return nil, false
	}
	var cr cachedResponse
	if err := json.Unmarshal(b, &cr); err != nil {
		return nil, false
	}
	return &Response{StatusCode: cr.StatusCode, Headers: cr.Headers, Data: cr.Data, Cached: true}, true
}

func (c *responseCache) put(ctx context.Context, key string, resp *Response) error {
	b, err := json.Marshal(cachedResponse{StatusCode: resp.StatusCode, Headers: resp.Headers, Data: resp.Data})
	if err != nil {
		return err
	}
	return c.store.Set(ctx, key, b, c.maxAge)
}
