package cache

import (
	"sync"
	"time"

	"focusai-rest-api/internal/model"
)

// Options tunes the over-fetch cache. Defaults match one upstream call
// covering the first display plus two refills.
type Options struct {
	DisplayCount int
	FetchCount   int
	TTL          time.Duration
}

// DefaultOptions returns the production defaults.
func DefaultOptions() Options {
	return Options{
		DisplayCount: 6,
		FetchCount:   18,
		TTL:          30 * time.Minute,
	}
}

// entry holds the unconsumed surplus from the last upstream fetch for one
// (kind, profession) pair. items never exceeds FetchCount - DisplayCount.
type entry struct {
	items     []model.ContentItem
	fetchedAt time.Time
	seed      int
}

// ContentCache buffers surplus content items per (kind, profession) so a
// page refresh can be served without another paid search/LLM round trip.
// Reads are destructive: a popped slice is never handed out twice.
//
// Construct one instance at process start and inject it; the zero value is
// not usable.
type ContentCache struct {
	mu      sync.Mutex
	opts    Options
	entries map[string]*entry

	now func() time.Time // overridable in tests
}

// NewContentCache creates an empty cache with the given options.
func NewContentCache(opts Options) *ContentCache {
	if opts.DisplayCount <= 0 || opts.FetchCount <= 0 || opts.TTL <= 0 {
		opts = DefaultOptions()
	}
	return &ContentCache{
		opts:    opts,
		entries: make(map[string]*entry),
		now:     time.Now,
	}
}

func cacheKey(kind model.Kind, profession string) string {
	return string(kind) + "\x00" + profession
}

// Get pops the next DisplayCount items for (kind, profession).
// needFetch is true when the caller must restock via the batch producer:
// no entry, expired entry, or fewer buffered items than one display page.
func (c *ContentCache) Get(kind model.Kind, profession string) (items []model.ContentItem, needFetch bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := c.entries[cacheKey(kind, profession)]
	if e == nil || c.now().Sub(e.fetchedAt) > c.opts.TTL {
		// Expired entries stay in the map so the seed keeps advancing
		// across restocks instead of resetting.
		return nil, true
	}
	if len(e.items) < c.opts.DisplayCount {
		return nil, true
	}

	items = make([]model.ContentItem, c.opts.DisplayCount)
	copy(items, e.items[:c.opts.DisplayCount])
	e.items = e.items[c.opts.DisplayCount:]
	return items, false
}

// Set replaces the buffered surplus for (kind, profession) unconditionally
// (last restock wins) and stamps the fetch time. Callers pass only the items
// that were not already shown; an empty surplus is legal.
func (c *ContentCache) Set(kind model.Kind, profession string, items []model.ContentItem, seed int) {
	buffered := make([]model.ContentItem, len(items))
	copy(buffered, items)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[cacheKey(kind, profession)] = &entry{
		items:     buffered,
		fetchedAt: c.now(),
		seed:      seed,
	}
}

// NextSeed returns the seed for the next upstream fetch: one past the seed
// of the last restock for this key, starting at 0 for a fresh key. The seed
// only varies the outbound query template; wrap-around is harmless.
func (c *ContentCache) NextSeed(kind model.Kind, profession string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e := c.entries[cacheKey(kind, profession)]; e != nil {
		return e.seed + 1
	}
	return 0
}

// DisplayCount reports how many items one request returns.
func (c *ContentCache) DisplayCount() int { return c.opts.DisplayCount }

// FetchCount reports how many items one upstream call asks for.
func (c *ContentCache) FetchCount() int { return c.opts.FetchCount }

// Stats is a point-in-time snapshot for the admin endpoint.
type Stats struct {
	Entries       int            `json:"entries"`
	BufferedItems int            `json:"buffered_items"`
	ByKind        map[string]int `json:"by_kind"`
}

// Stats counts live (non-expired) entries and their buffered items.
func (c *ContentCache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	stats := Stats{ByKind: make(map[string]int)}
	now := c.now()
	for key, e := range c.entries {
		if now.Sub(e.fetchedAt) > c.opts.TTL {
			continue
		}
		stats.Entries++
		stats.BufferedItems += len(e.items)
		for i := 0; i < len(key); i++ {
			if key[i] == '\x00' {
				stats.ByKind[key[:i]] += len(e.items)
				break
			}
		}
	}
	return stats
}
