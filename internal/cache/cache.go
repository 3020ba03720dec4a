// Package cache holds the client's most recently confirmed snapshot of every entity.
//
// Writes from remote fetches go through tickets: Begin hands out a sequence
// number, and Commit applies the response only if no newer write has landed for
// that key in the meantime. Set is unconditional and supersedes every ticket
// issued before it.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/okian/reelrank/pkg/logger"
	"github.com/okian/reelrank/pkg/metrics"
)

// State is the load state of one key.
type State int

const (
	Unloaded State = iota
	Loading
	Loaded
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	default:
		return "unloaded"
	}
}

// Snapshot is a point-in-time copy of an entry.
type Snapshot struct {
	Key       Key
	Value     any
	Seq       uint64
	Stale     bool
	UpdatedAt time.Time
}

// EventKind tells subscribers what changed.
type EventKind int

const (
	EventWrite EventKind = iota
	EventInvalidate
	EventDelete
)

// Event is delivered to subscribers after a change.
type Event struct {
	Kind     EventKind
	Snapshot Snapshot
}

// Ticket is an in-flight fetch for one key.
type Ticket struct {
	Key Key
	Seq uint64
}

type entry struct {
	value     any
	has       bool
	applied   uint64
	stale     bool
	updatedAt time.Time
	inflight  map[uint64]struct{}
}

// Cache is safe for concurrent use. The zero value is not usable; call New.
type Cache struct {
	mu      sync.RWMutex
	entries map[Key]*entry
	seq     uint64

	subMu   sync.RWMutex
	subs    map[int]func(Event)
	nextSub int

	log logger.Logger
	now func() time.Time
}

// Option configures the Cache.
type Option func(*Cache)

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Cache) {
		if l != nil {
			c.log = l
		}
	}
}

// WithClock overrides time.Now for UpdatedAt stamps.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		if now != nil {
			c.now = now
		}
	}
}

// New creates an empty Cache.
func New(opts ...Option) *Cache {
	c := &Cache{
		entries: make(map[Key]*entry),
		subs:    make(map[int]func(Event)),
		log:     logger.Nop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the current snapshot for key.
func (c *Cache) Get(key Key) (Snapshot, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	if !ok || !e.has {
		c.mu.RUnlock()
		metrics.RecordCacheLookup("miss")
		return Snapshot{Key: key}, false
	}
	snap := e.snapshot(key)
	c.mu.RUnlock()

	if snap.Stale {
		metrics.RecordCacheLookup("stale")
	} else {
		metrics.RecordCacheLookup("hit")
	}
	return snap, true
}

// Lookup is a typed Get. ok is false if the key is absent or holds another type.
func Lookup[T any](c *Cache, key Key) (T, Snapshot, bool) {
	var zero T
	snap, ok := c.Get(key)
	if !ok {
		return zero, snap, false
	}
	v, ok := snap.Value.(T)
	if !ok {
		return zero, snap, false
	}
	return v, snap, true
}

// Set overwrites key unconditionally. Tickets issued before the call can no longer commit.
func (c *Cache) Set(key Key, value any) {
	c.Update(key, func(any, bool) any { return value })
}

// Update is Set with the value derived from the previous one under the lock.
func (c *Cache) Update(key Key, fn func(prev any, ok bool) any) {
	c.mu.Lock()
	e := c.entry(key)
	c.seq++
	e.store(fn(e.value, e.has), c.seq, c.now())
	snap := e.snapshot(key)
	n := len(c.entries)
	c.mu.Unlock()

	metrics.RecordCacheWrite("set")
	metrics.UpdateCacheEntries(n)
	c.notify(Event{Kind: EventWrite, Snapshot: snap})
}

// Amend rewrites the value key already holds. fn returns the new value and
// whether anything changed; nothing is written when key has no value or fn
// reports no change. The stale flag is kept. Like Update, an applied Amend
// supersedes every ticket issued before it.
func (c *Cache) Amend(key Key, fn func(prev any) (any, bool)) bool {
	c.mu.Lock()
	e, ok := c.entries[key]
	if !ok || !e.has {
		c.mu.Unlock()
		return false
	}
	v, changed := fn(e.value)
	if !changed {
		c.mu.Unlock()
		return false
	}
	stale := e.stale
	c.seq++
	e.store(v, c.seq, c.now())
	e.stale = stale
	snap := e.snapshot(key)
	c.mu.Unlock()

	metrics.RecordCacheWrite("amended")
	c.notify(Event{Kind: EventWrite, Snapshot: snap})
	return true
}

// Invalidate marks key stale until its next write. Unknown keys are ignored.
func (c *Cache) Invalidate(key Key) {
	c.mu.Lock()
	e, ok := c.entries[key]
	if !ok || !e.has {
		c.mu.Unlock()
		return
	}
	e.stale = true
	snap := e.snapshot(key)
	c.mu.Unlock()

	metrics.RecordCacheInvalidation()
	c.log.Debug(context.Background(), "cache key invalidated", logger.String("key", string(key)))
	c.notify(Event{Kind: EventInvalidate, Snapshot: snap})
}

// Delete drops key and cancels its in-flight tickets.
func (c *Cache) Delete(key Key) {
	c.mu.Lock()
	_, ok := c.entries[key]
	delete(c.entries, key)
	n := len(c.entries)
	c.mu.Unlock()

	if !ok {
		return
	}
	metrics.UpdateCacheEntries(n)
	c.notify(Event{Kind: EventDelete, Snapshot: Snapshot{Key: key}})
}

// Begin registers an in-flight fetch for key.
func (c *Cache) Begin(key Key) Ticket {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := c.entry(key)
	c.seq++
	e.inflight[c.seq] = struct{}{}
	return Ticket{Key: key, Seq: c.seq}
}

// Commit stores value if t is newer than the last applied write for its key.
// It reports whether the value was applied. The ticket is finished either way.
func (c *Cache) Commit(t Ticket, value any) bool {
	return c.CommitWith(t, func(any, bool) any { return value })
}

// CommitWith is Commit with the value derived from the previous one under the lock.
// fn is not called when the ticket is outdated.
func (c *Cache) CommitWith(t Ticket, fn func(prev any, ok bool) any) bool {
	c.mu.Lock()
	e, ok := c.entries[t.Key]
	if !ok {
		c.mu.Unlock()
		c.discarded(t, "entry deleted")
		return false
	}
	_, live := e.inflight[t.Seq]
	delete(e.inflight, t.Seq)
	if !live || t.Seq <= e.applied {
		c.mu.Unlock()
		c.discarded(t, "superseded")
		return false
	}
	e.store(fn(e.value, e.has), t.Seq, c.now())
	snap := e.snapshot(t.Key)
	n := len(c.entries)
	c.mu.Unlock()

	metrics.RecordCacheWrite("applied")
	metrics.UpdateCacheEntries(n)
	c.notify(Event{Kind: EventWrite, Snapshot: snap})
	return true
}

// Abort finishes t without writing.
func (c *Cache) Abort(t Ticket) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[t.Key]
	if !ok {
		return
	}
	delete(e.inflight, t.Seq)
	if !e.has && len(e.inflight) == 0 {
		delete(c.entries, t.Key)
	}
}

// State reports the load state of key.
func (c *Cache) State(key Key) State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	switch {
	case !ok:
		return Unloaded
	case len(e.inflight) > 0:
		return Loading
	case e.has:
		return Loaded
	default:
		return Unloaded
	}
}

// Keys returns the keys holding a value, in no particular order.
func (c *Cache) Keys() []Key {
	c.mu.RLock()
	defer c.mu.RUnlock()
	keys := make([]Key, 0, len(c.entries))
	for k, e := range c.entries {
		if e.has {
			keys = append(keys, k)
		}
	}
	return keys
}

// Len returns the number of keys holding a value.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	n := 0
	for _, e := range c.entries {
		if e.has {
			n++
		}
	}
	return n
}

// Subscribe registers fn for every change. Callbacks run outside the cache lock
// on the writer's goroutine, so when writers race on one key their events can
// arrive out of order. Subscribers that render the latest state should keep
// the event with the highest Snapshot.Seq per key, or re-read with Get.
// Call the returned func to unsubscribe.
func (c *Cache) Subscribe(fn func(Event)) (cancel func()) {
	c.subMu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	c.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.subMu.Lock()
			delete(c.subs, id)
			c.subMu.Unlock()
		})
	}
}

func (c *Cache) notify(ev Event) {
	c.subMu.RLock()
	fns := make([]func(Event), 0, len(c.subs))
	for _, fn := range c.subs {
		fns = append(fns, fn)
	}
	c.subMu.RUnlock()

	for _, fn := range fns {
		fn(ev)
	}
}

func (c *Cache) discarded(t Ticket, reason string) {
	metrics.RecordCacheWrite("discarded")
	c.log.Debug(context.Background(), "stale response discarded",
		logger.String("key", string(t.Key)),
		logger.Uint64("seq", t.Seq),
		logger.String("reason", reason),
	)
}

// entry must be called with mu held.
func (c *Cache) entry(key Key) *entry {
	e, ok := c.entries[key]
	if !ok {
		e = &entry{inflight: make(map[uint64]struct{})}
		c.entries[key] = e
	}
	return e
}

func (e *entry) store(v any, seq uint64, at time.Time) {
	e.value = v
	e.has = true
	e.applied = seq
	e.stale = false
	e.updatedAt = at
}

func (e *entry) snapshot(key Key) Snapshot {
	return Snapshot{Key: key, Value: e.value, Seq: e.applied, Stale: e.stale, UpdatedAt: e.updatedAt}
}
