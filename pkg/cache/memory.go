package cache

import (
	"container/list"
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/mess-ledger/backend/internal/types"
	"github.com/ryanuber/go-glob"
)

// Memory is an in-process LRU cache with a TTL per entry.
//
// Values are stored JSON encoded, Get always decodes a fresh copy.
type Memory struct {
	mu      sync.Mutex
	maxSize int
	ttl     time.Duration
	items   map[string]*list.Element
	lru     *list.List
	now     func() time.Time
}

type memoryItem struct {
	key       string
	data      []byte
	expiresAt time.Time
}

// NewMemory creates a new LRU cache holding at most maxSize entries for ttl each.
func NewMemory(maxSize int, ttl time.Duration) *Memory {
	return &Memory{
		maxSize: maxSize,
		ttl:     ttl,
		items:   make(map[string]*list.Element),
		lru:     list.New(),
		now:     time.Now,
	}
}

// WithClock replaces the clock used for expiry.
func (c *Memory) WithClock(now func() time.Time) *Memory {
	c.now = now
	return c
}

// Get retrieves a value from the cache
func (c *Memory) Get(_ context.Context, key string, dest any) (bool, error) {
	c.mu.Lock()
	elem, exists := c.items[key]
	if !exists {
		c.mu.Unlock()
		return false, nil
	}

	item := elem.Value.(*memoryItem)

	if c.now().After(item.expiresAt) {
		c.removeElement(elem)
		c.mu.Unlock()
		return false, nil
	}

	// Move to front (most recently used)
	c.lru.MoveToFront(elem)
	data := item.data
	c.mu.Unlock()

	if err := json.Unmarshal(data, dest); err != nil {
		return false, err
	}
	return true, nil
}

// Set stores a value in the cache
func (c *Memory) Set(_ context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	item := &memoryItem{
		key:       key,
		data:      data,
		expiresAt: c.now().Add(c.ttl),
	}

	if elem, exists := c.items[key]; exists {
		elem.Value = item
		c.lru.MoveToFront(elem)
		return nil
	}

	elem := c.lru.PushFront(item)
	c.items[key] = elem

	// Evict if over capacity
	if c.lru.Len() > c.maxSize {
		if oldest := c.lru.Back(); oldest != nil {
			c.removeElement(oldest)
		}
	}

	return nil
}

// Invalidate removes all entries of the month.
func (c *Memory) Invalidate(_ context.Context, month types.Month) error {
	pattern := monthPattern(month)

	c.mu.Lock()
	defer c.mu.Unlock()

	for key, elem := range c.items {
		if glob.Glob(pattern, key) {
			c.removeElement(elem)
		}
	}

	return nil
}

// Flush removes all entries.
func (c *Memory) Flush(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]*list.Element)
	c.lru.Init()
	return nil
}

// Len returns the current number of entries, expired ones included.
func (c *Memory) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

func (c *Memory) removeElement(elem *list.Element) {
	item := elem.Value.(*memoryItem)
	delete(c.items, item.key)
	c.lru.Remove(elem)
}
