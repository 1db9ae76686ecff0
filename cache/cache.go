// Package cache remembers recent captures by URL so a repeated request
// within its max age is answered from the stored article.
package cache

import (
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/use-agent/newsgrab/models"
)

// defaultTTL bounds how long any entry is kept regardless of max age.
const defaultTTL = time.Hour

type entry struct {
	article   *models.ArticleSummary
	createdAt time.Time
}

// Cache is an in-memory URL → capture summary cache. It is safe for
// concurrent use.
type Cache struct {
	mu         sync.RWMutex
	store      map[string]*entry
	maxEntries int
	ttl        time.Duration
	now        func() time.Time

	stop chan struct{}
	done chan struct{}
}

// New creates a Cache holding at most maxEntries captures. A background
// goroutine evicts entries older than an hour; Close stops it.
func New(maxEntries int) *Cache {
	c := &Cache{
		store:      make(map[string]*entry),
		maxEntries: maxEntries,
		ttl:        defaultTTL,
		now:        time.Now,
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
	}
	go c.cleanupLoop(5 * time.Minute)
	return c
}

// Key normalizes rawURL: scheme and host are lowercased and the fragment
// dropped. The query is kept since it identifies the story.
func Key(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return rawURL
	}
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""
	return u.String()
}

// Get returns the capture of rawURL if it is younger than maxAge. A
// non-positive maxAge disables the lookup.
func (c *Cache) Get(rawURL string, maxAge time.Duration) (*models.ArticleSummary, bool) {
	if maxAge <= 0 || c.maxEntries <= 0 {
		return nil, false
	}

	c.mu.RLock()
	e, ok := c.store[Key(rawURL)]
	c.mu.RUnlock()
	if !ok || c.now().Sub(e.createdAt) > maxAge {
		return nil, false
	}
	return e.article, true
}

// Set records the capture of rawURL, evicting the oldest entry when full.
func (c *Cache) Set(rawURL string, article *models.ArticleSummary) {
	if c.maxEntries <= 0 {
		return
	}
	key := Key(rawURL)

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.store[key]; !exists && len(c.store) >= c.maxEntries {
		var oldestKey string
		var oldest time.Time
		for k, e := range c.store {
			if oldestKey == "" || e.createdAt.Before(oldest) {
				oldestKey, oldest = k, e.createdAt
			}
		}
		delete(c.store, oldestKey)
	}
	c.store[key] = &entry{article: article, createdAt: c.now()}
}

// Len returns the number of cached captures.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.store)
}

// Close stops the cleanup goroutine. It is safe to call more than once.
func (c *Cache) Close() {
	select {
	case <-c.stop:
	default:
		close(c.stop)
	}
	<-c.done
}

func (c *Cache) cleanupLoop(interval time.Duration) {
	defer close(c.done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.evictExpired()
		}
	}
}

func (c *Cache) evictExpired() {
	cutoff := c.now().Add(-c.ttl)
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, e := range c.store {
		if e.createdAt.Before(cutoff) {
			delete(c.store, k)
		}
	}
}
