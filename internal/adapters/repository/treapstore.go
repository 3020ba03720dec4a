package repository

import (
	"context"
	"hash/fnv"
	"sync"
	"time"

	"github.com/okian/reelrank/internal/domain/types"
	"github.com/okian/reelrank/pkg/metrics"
)

// Treap-based, in-memory Store implementation.
//
// Ordering: total DESC, then userID ASC (deterministic).
// "less" means ranks earlier, so in-order traversal yields the ranking from
// first to last. Nodes carry subtree sizes for O(log n) rank and offset lookups.

const defaultMetricsUpdateInterval = 5 * time.Second

type node struct {
	id    string
	score float64
	prio  uint64
	left  *node
	right *node
	size  int
}

func nsize(n *node) int {
	if n == nil {
		return 0
	}
	return n.size
}

func fix(n *node) {
	if n != nil {
		n.size = 1 + nsize(n.left) + nsize(n.right)
	}
}

// less returns true if (aScore, aID) should appear before (bScore, bID).
func less(aScore float64, aID string, bScore float64, bID string) bool {
	if aScore != bScore {
		return aScore > bScore
	}
	return aID < bID
}

func rotateRight(y *node) *node {
	x := y.left
	y.left = x.right
	x.right = y
	fix(y)
	fix(x)
	return x
}

func rotateLeft(x *node) *node {
	y := x.right
	x.right = y.left
	y.left = x
	fix(x)
	fix(y)
	return y
}

// priority hashes the id so the tree shape does not depend on insertion order or on ties.
func priority(id string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(id))
	return h.Sum64()
}

func insert(n *node, id string, score float64) *node {
	if n == nil {
		return &node{id: id, score: score, prio: priority(id), size: 1}
	}
	if less(score, id, n.score, n.id) {
		n.left = insert(n.left, id, score)
		if n.left.prio > n.prio {
			n = rotateRight(n)
		}
	} else {
		n.right = insert(n.right, id, score)
		if n.right.prio > n.prio {
			n = rotateLeft(n)
		}
	}
	fix(n)
	return n
}

func deleteNode(n *node, id string, score float64) *node {
	if n == nil {
		return nil
	}
	switch {
	case score == n.score && id == n.id:
		if n.left == nil {
			return n.right
		}
		if n.right == nil {
			return n.left
		}
		if n.left.prio > n.right.prio {
			n = rotateRight(n)
			n.right = deleteNode(n.right, id, score)
		} else {
			n = rotateLeft(n)
			n.left = deleteNode(n.left, id, score)
		}
	case less(score, id, n.score, n.id):
		n.left = deleteNode(n.left, id, score)
	default:
		n.right = deleteNode(n.right, id, score)
	}
	fix(n)
	return n
}

// position returns the 1-based in-order index of (id, score).
func position(n *node, id string, score float64) int {
	pos := 0
	for n != nil {
		switch {
		case n.id == id && n.score == score:
			return pos + nsize(n.left) + 1
		case less(score, id, n.score, n.id):
			n = n.left
		default:
			pos += nsize(n.left) + 1
			n = n.right
		}
	}
	return 0
}

// collectRange appends up to limit entries starting at the zero-based in-order offset.
// base is the in-order index of n's leftmost descendant.
func collectRange(n *node, base, offset, limit int, out *[]types.Entry) {
	if n == nil || len(*out) >= limit {
		return
	}
	idx := base + nsize(n.left)
	if offset < idx {
		collectRange(n.left, base, offset, limit, out)
	}
	if idx >= offset && len(*out) < limit {
		*out = append(*out, types.Entry{Rank: idx + 1, UserID: n.id, Score: n.score})
	}
	if len(*out) < limit {
		collectRange(n.right, idx+1, offset, limit, out)
	}
}

// TreapStore is the default in-memory Store.
type TreapStore struct {
	mu   sync.RWMutex
	root *node
	byID map[string]float64

	metricsUpdateInterval time.Duration

	wg       sync.WaitGroup
	stopChan chan struct{}
	stopOnce sync.Once
}

var _ Store = (*TreapStore)(nil)

// NewTreapStore constructs a treap store. The metrics updater stops when ctx
// is done or Close is called.
func NewTreapStore(ctx context.Context, opts ...Option) *TreapStore {
	s := &TreapStore{
		byID:                  make(map[string]float64),
		metricsUpdateInterval: defaultMetricsUpdateInterval,
		stopChan:              make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.startMetricsUpdater(ctx)
	return s
}

// Close stops the background metrics updater.
func (s *TreapStore) Close() error {
	s.stopOnce.Do(func() { close(s.stopChan) })
	s.wg.Wait()
	return nil
}

// Add implements Store.Add in O(log n) expected time.
func (s *TreapStore) Add(_ context.Context, userID string, delta float64) (float64, error) {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryUpdateLatency(float64(time.Since(start).Microseconds()) / 1000.0)
	}()

	s.mu.Lock()
	old, ok := s.byID[userID]
	if ok {
		if delta == 0 {
			s.mu.Unlock()
			return old, nil
		}
		s.root = deleteNode(s.root, userID, old)
	}
	total := old + delta
	s.byID[userID] = total
	s.root = insert(s.root, userID, total)
	count := len(s.byID)
	s.mu.Unlock()

	if !ok {
		metrics.UpdateRankedUsers(count)
	}
	return total, nil
}

// Rank returns the position and total for a user in O(log n).
func (s *TreapStore) Rank(_ context.Context, userID string) (types.Entry, error) {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryQueryLatency(float64(time.Since(start).Microseconds()) / 1000.0)
	}()

	s.mu.RLock()
	defer s.mu.RUnlock()

	score, ok := s.byID[userID]
	if !ok {
		metrics.RecordErrorByComponent("repository", "not_found")
		return types.Entry{}, ErrNotFound
	}
	return types.Entry{Rank: position(s.root, userID, score), UserID: userID, Score: score}, nil
}

// Range returns up to limit entries from offset in O(log n + limit).
func (s *TreapStore) Range(_ context.Context, offset, limit int) ([]types.Entry, error) {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryQueryLatency(float64(time.Since(start).Microseconds()) / 1000.0)
	}()

	if limit < 1 {
		metrics.RecordErrorByComponent("repository", "invalid_limit")
		return nil, ErrInvalidLimit
	}
	if offset < 0 {
		metrics.RecordErrorByComponent("repository", "invalid_offset")
		return nil, ErrInvalidOffset
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if offset >= len(s.byID) {
		return []types.Entry{}, nil
	}
	n := limit
	if rest := len(s.byID) - offset; rest < n {
		n = rest
	}
	out := make([]types.Entry, 0, n)
	collectRange(s.root, 0, offset, limit, &out)
	return out, nil
}

// TopN returns the first n entries.
func (s *TreapStore) TopN(ctx context.Context, n int) ([]types.Entry, error) {
	return s.Range(ctx, 0, n)
}

// Count returns the number of ranked users.
func (s *TreapStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}

// startMetricsUpdater periodically publishes the ranked user count.
func (s *TreapStore) startMetricsUpdater(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.metricsUpdateInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopChan:
				return
			case <-ticker.C:
				metrics.UpdateRankedUsers(s.Count(ctx))
			}
		}
	}()
}
