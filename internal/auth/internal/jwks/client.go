package jwks

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// maxJWKSSize bounds the key set document read from the remote endpoint.
const maxJWKSSize = 1 << 20

// minMissRefresh is the shortest interval between two fetches triggered by
// unknown kids. The kid comes from the unverified token.
const minMissRefresh = 30 * time.Second

// Client resolves keys from a remote JWKS document, caching every key of
// the set after each fetch. Concurrent misses share one fetch, and a miss
// within the refresh interval of the last successful fetch is answered
// from the cache alone.
type Client struct {
	uri        string
	httpClient *http.Client
	cache      *Cache
	group      singleflight.Group
	missWait   time.Duration
	now        func() time.Time

	mu        sync.Mutex
	lastFetch time.Time
}

// NewClient creates a client for the key set served at uri. A nil
// httpClient uses a client with a 10 second timeout.
func NewClient(uri string, ttl time.Duration, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		uri:        uri,
		httpClient: httpClient,
		cache:      NewCache(ttl),
		missWait:   min(minMissRefresh, ttl),
		now:        time.Now,
	}
}

// GetKey returns the key for kid. An empty kid resolves only when the set
// holds exactly one key.
//
// The fetch outlives ctx so one cancelled caller does not fail the others
// waiting on it; the HTTP client timeout bounds it instead.
func (c *Client) GetKey(ctx context.Context, kid string) (any, error) {
	if key := c.cache.Get(kid); key != nil {
		return key, nil
	}
	if c.fetchedRecently() {
		return nil, fmt.Errorf("%w: kid %q", ErrKeyNotFound, kid)
	}

	fetchCtx := context.WithoutCancel(ctx)
	_, err, _ := c.group.Do(c.uri, func() (any, error) {
		return nil, c.refresh(fetchCtx)
	})
	if err != nil {
		return nil, err
	}

	if key := c.cache.Get(kid); key != nil {
		return key, nil
	}
	return nil, fmt.Errorf("%w: kid %q", ErrKeyNotFound, kid)
}

func (c *Client) fetchedRecently() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.lastFetch.IsZero() && c.now().Sub(c.lastFetch) < c.missWait
}

// Refresh drops cached keys and fetches the set again.
func (c *Client) Refresh(ctx context.Context) error {
	c.cache.Clear()
	return c.refresh(ctx)
}

func (c *Client) refresh(ctx context.Context) error {
	set, err := c.fetch(ctx)
	if err != nil {
		return err
	}

	c.cache.Cleanup()
	var only any
	usable := 0
	for i := range set.Keys {
		key, err := set.Keys[i].ToKey()
		if err != nil {
			continue
		}
		usable++
		only = key
		if set.Keys[i].KeyID != "" {
			c.cache.Set(set.Keys[i].KeyID, key)
		}
	}
	if usable == 1 {
		c.cache.Set("", only)
	}

	c.mu.Lock()
	c.lastFetch = c.now()
	c.mu.Unlock()
	return nil
}

func (c *Client) fetch(ctx context.Context) (*JWKS, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.uri, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s returned status %d", ErrFetch, c.uri, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxJWKSSize))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}

	var set JWKS
	if err := json.Unmarshal(body, &set); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrFetch, err)
	}
	return &set, nil
}
