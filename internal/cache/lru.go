package cache

import (
	"container/list"
	"sync"
	"sync/atomic"

	"github.com/hupe1980/recgo/resource"
)

// LRU is a single shard: a bounded, reference counted LRU of record copies.
type LRU struct {
	mu        sync.Mutex
	capacity  int
	bytes     int64
	items     map[uint32]*list.Element
	evictList *list.List
	rc        *resource.Controller

	hits      atomic.Int64
	misses    atomic.Int64
	evictions atomic.Int64
}

// NewLRU creates a shard holding at most capacity entries.
// If rc is provided, entry buffers are charged against its memory budget.
func NewLRU(capacity int, rc *resource.Controller) *LRU {
	if capacity < 1 {
		capacity = 1
	}
	return &LRU{
		capacity:  capacity,
		items:     make(map[uint32]*list.Element, capacity),
		evictList: list.New(),
		rc:        rc,
	}
}

// Acquire pins and returns the entry for key if it is resident.
func (c *LRU) Acquire(key uint32) (*Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ent, ok := c.items[key]; ok {
		c.hits.Add(1)
		c.evictList.MoveToFront(ent)
		e := ent.Value.(*Entry)
		e.refs.Add(1)
		return e, true
	}
	c.misses.Add(1)
	return nil, false
}

// Insert copies data into an entry for key and returns it pinned.
//
// If another caller inserted key first, the resident entry is pinned and
// returned instead. When the shard is full the least recently used unpinned
// entry is evicted and its buffer reused. ErrExhausted is returned if every
// entry is pinned.
func (c *LRU) Insert(key uint32, data []byte) (*Entry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ent, ok := c.items[key]; ok {
		c.evictList.MoveToFront(ent)
		e := ent.Value.(*Entry)
		e.refs.Add(1)
		return e, nil
	}

	var buf []byte
	if c.evictList.Len() >= c.capacity {
		victim := c.victim()
		if victim == nil {
			return nil, ErrExhausted
		}
		buf = c.removeElement(victim).data
	}

	if cap(buf) < len(data) {
		grow := int64(len(data) - cap(buf))
		if err := c.rc.AcquireMemory(grow); err != nil {
			// Give back the recycled buffer we are not going to use.
			c.rc.ReleaseMemory(int64(cap(buf)))
			return nil, err
		}
		buf = make([]byte, len(data))
	} else if cap(buf) > 0 {
		// Shrinking is not returned to the controller; the buffer keeps its
		// capacity and stays charged until it is dropped.
		buf = buf[:len(data)]
	} else {
		buf = buf[:0]
	}
	copy(buf, data)

	e := &Entry{key: key, data: buf}
	e.refs.Store(1)
	c.items[key] = c.evictList.PushFront(e)
	c.bytes += int64(cap(buf))
	return e, nil
}

// Release unpins an entry previously returned by Acquire or Insert.
func (c *LRU) Release(e *Entry) {
	if e.refs.Add(-1) < 0 {
		panic("cache: entry released more times than acquired")
	}
}

// victim returns the least recently used unpinned element, or nil.
func (c *LRU) victim() *list.Element {
	for el := c.evictList.Back(); el != nil; el = el.Prev() {
		if el.Value.(*Entry).refs.Load() == 0 {
			return el
		}
	}
	return nil
}

// removeElement unlinks el. The buffer is still charged to the controller;
// callers either reuse it or release it.
func (c *LRU) removeElement(el *list.Element) *Entry {
	c.evictList.Remove(el)
	e := el.Value.(*Entry)
	delete(c.items, e.key)
	c.bytes -= int64(cap(e.data))
	c.evictions.Add(1)
	return e
}

// Clear drops every entry and returns their memory to the controller.
// Pinned entries are dropped as well; callers must not hold any.
func (c *LRU) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.rc.ReleaseMemory(c.bytes)
	c.bytes = 0
	c.items = make(map[uint32]*list.Element, c.capacity)
	c.evictList.Init()
}

// Keys calls fn for every resident key, most recently used first.
func (c *LRU) Keys(fn func(key uint32)) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for el := c.evictList.Front(); el != nil; el = el.Next() {
		fn(el.Value.(*Entry).key)
	}
}

// Capacity returns the maximum number of entries.
func (c *LRU) Capacity() int {
	return c.capacity
}

// Len returns the number of resident entries.
func (c *LRU) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.evictList.Len()
}

// Stats returns the shard counters.
func (c *LRU) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	pinned := 0
	for el := c.evictList.Front(); el != nil; el = el.Next() {
		if el.Value.(*Entry).refs.Load() > 0 {
			pinned++
		}
	}
	return Stats{
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: c.evictions.Load(),
		Entries:   c.evictList.Len(),
		Pinned:    pinned,
		Bytes:     c.bytes,
	}
}
