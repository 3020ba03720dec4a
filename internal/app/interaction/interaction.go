// Package interaction reconciles per-item scores and comments with the authority.
//
// The aggregate shown for an item is always the one the authority returned;
// nothing is averaged locally.
package interaction

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/okian/reelrank/internal/adapters/transport"
	"github.com/okian/reelrank/internal/cache"
	"github.com/okian/reelrank/internal/domain/model"
	"github.com/okian/reelrank/internal/domain/types"
	"github.com/okian/reelrank/pkg/logger"
	"github.com/okian/reelrank/pkg/metrics"
)

// Operation names used in errors.
const (
	OpLoadAggregate = "interaction.LoadAggregate"
	OpSubmitScore   = "interaction.SubmitScore"
	OpSubmitComment = "interaction.SubmitComment"
)

// Aggregator owns the item snapshots in the cache.
type Aggregator struct {
	remote transport.Interactions
	cache  *cache.Cache
	log    logger.Logger
	now    func() time.Time
	loads  singleflight.Group
}

// Option configures the Aggregator.
type Option func(*Aggregator)

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(a *Aggregator) {
		if l != nil {
			a.log = l
		}
	}
}

// WithClock overrides time.Now for viewer score timestamps.
func WithClock(now func() time.Time) Option {
	return func(a *Aggregator) {
		if now != nil {
			a.now = now
		}
	}
}

// New creates an Aggregator over remote that stores snapshots in c.
func New(remote transport.Interactions, c *cache.Cache, opts ...Option) *Aggregator {
	a := &Aggregator{
		remote: remote,
		cache:  c,
		log:    logger.Nop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// LoadAggregate fetches the average and the comments of itemID and stores them.
// Concurrent loads of the same item share one round trip; the first caller's
// context governs it. On failure the previous snapshot is kept.
func (a *Aggregator) LoadAggregate(ctx context.Context, itemID string) (model.ItemSnapshot, error) {
	if err := model.ValidateID("item id", itemID); err != nil {
		return model.ItemSnapshot{}, a.reject(OpLoadAggregate, err)
	}

	v, err, _ := a.loads.Do(itemID, func() (any, error) {
		return a.load(ctx, itemID)
	})
	if err != nil {
		return model.ItemSnapshot{}, err
	}
	return v.(model.ItemSnapshot).Clone(), nil
}

func (a *Aggregator) load(ctx context.Context, itemID string) (model.ItemSnapshot, error) {
	key := cache.ItemKey(itemID)
	ticket := a.cache.Begin(key)

	var (
		agg      model.AggregateScore
		comments []model.Comment
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		agg, err = a.remote.ScoreAverage(gctx, itemID)
		return err
	})
	g.Go(func() error {
		var err error
		comments, err = a.remote.Comments(gctx, itemID)
		return err
	})
	if err := g.Wait(); err != nil {
		a.cache.Abort(ticket)
		a.log.Warn(ctx, "item load failed", logger.String("item_id", itemID), logger.Error(err))
		return model.ItemSnapshot{}, types.Wrap(OpLoadAggregate, err)
	}

	snap := model.ItemSnapshot{ItemID: itemID, Aggregate: agg, Comments: comments, LoadedAt: a.now()}
	applied := a.cache.CommitWith(ticket, func(prev any, _ bool) any {
		if old, ok := prev.(model.ItemSnapshot); ok {
			snap.Viewer = old.Viewer
		}
		return snap
	})

	if !applied {
		// A write that landed while we were fetching keeps its aggregate, but
		// the comments fetched here may be newer than the ones it carried.
		a.mergeComments(key, comments)
		if cur, _, ok := cache.Lookup[model.ItemSnapshot](a.cache, key); ok {
			snap = cur
		}
	}
	a.log.Debug(ctx, "item loaded",
		logger.String("item_id", itemID),
		logger.Int("count", agg.Count),
		logger.Int("comments", len(comments)),
	)
	return snap, nil
}

// SubmitScore upserts authorID's score on itemID. value must be an integer in
// [1,5]; anything else is rejected before the network is touched. On success
// the cached aggregate is replaced by the one the authority returned.
func (a *Aggregator) SubmitScore(ctx context.Context, itemID, authorID string, value float64) (model.AggregateScore, error) {
	if err := model.ValidateID("item id", itemID); err != nil {
		return model.AggregateScore{}, a.reject(OpSubmitScore, err)
	}
	if err := model.ValidateID("author id", authorID); err != nil {
		return model.AggregateScore{}, a.reject(OpSubmitScore, err)
	}
	score, err := model.ValidateScore(value)
	if err != nil {
		return model.AggregateScore{}, a.reject(OpSubmitScore, err)
	}

	key := cache.ItemKey(itemID)
	pending := a.cache.Begin(key)
	defer a.cache.Abort(pending)

	agg, err := a.remote.SubmitScore(ctx, itemID, score)
	if err != nil {
		a.log.Warn(ctx, "score submit failed", logger.String("item_id", itemID), logger.Error(err))
		return model.AggregateScore{}, types.Wrap(OpSubmitScore, err)
	}

	viewer := &model.ScoreEntry{AuthorID: authorID, Value: score, CreatedAt: a.now()}
	partial := false
	a.cache.Update(key, func(prev any, _ bool) any {
		snap, ok := prev.(model.ItemSnapshot)
		if !ok {
			partial = true
			snap = model.ItemSnapshot{ItemID: itemID, Comments: []model.Comment{}, LoadedAt: a.now()}
		} else {
			snap = snap.Clone()
		}
		snap.Aggregate = agg
		snap.Viewer = viewer
		return snap
	})
	if partial {
		// Comments were never fetched; the next read has to load them.
		a.cache.Invalidate(key)
	}

	a.log.Debug(ctx, "score submitted",
		logger.String("item_id", itemID),
		logger.String("author_id", authorID),
		logger.Int("value", score),
		logger.Float64("mean", agg.Mean),
		logger.Int("count", agg.Count),
	)
	return agg, nil
}

// SubmitComment posts text on itemID and then re-reads the full comment list.
// Blank text is rejected before the network is touched. If the post succeeds
// but the re-read fails, the item is invalidated and the re-read error returned.
func (a *Aggregator) SubmitComment(ctx context.Context, itemID, authorID, text string) ([]model.Comment, error) {
	if err := model.ValidateID("item id", itemID); err != nil {
		return nil, a.reject(OpSubmitComment, err)
	}
	if err := model.ValidateID("author id", authorID); err != nil {
		return nil, a.reject(OpSubmitComment, err)
	}
	if err := model.ValidateCommentText(text); err != nil {
		return nil, a.reject(OpSubmitComment, err)
	}

	key := cache.ItemKey(itemID)
	pending := a.cache.Begin(key)
	defer a.cache.Abort(pending)

	if _, err := a.remote.SubmitComment(ctx, itemID, text); err != nil {
		a.log.Warn(ctx, "comment submit failed", logger.String("item_id", itemID), logger.Error(err))
		return nil, types.Wrap(OpSubmitComment, err)
	}

	refresh := a.cache.Begin(key)
	comments, err := a.remote.Comments(ctx, itemID)
	if err != nil {
		a.cache.Abort(refresh)
		a.cache.Invalidate(key)
		a.log.Warn(ctx, "comment list refresh failed", logger.String("item_id", itemID), logger.Error(err))
		return nil, types.Wrap(OpSubmitComment, err)
	}

	partial := false
	applied := a.cache.CommitWith(refresh, func(prev any, _ bool) any {
		snap, ok := prev.(model.ItemSnapshot)
		if !ok {
			partial = true
			snap = model.ItemSnapshot{ItemID: itemID, LoadedAt: a.now()}
		} else {
			snap = snap.Clone()
		}
		snap.Comments = comments
		return snap
	})
	if !applied {
		// A score submit overtook the refresh; it carried the comments from
		// before this post.
		a.mergeComments(key, comments)
	}
	if partial {
		// The aggregate was never fetched.
		a.cache.Invalidate(key)
	}

	out := make([]model.Comment, len(comments))
	copy(out, comments)
	return out, nil
}

// mergeComments stores comments in the cached snapshot of key unless it
// already holds a longer list. Comments are never removed, so the longer
// list is the newer one.
func (a *Aggregator) mergeComments(key cache.Key, comments []model.Comment) {
	a.cache.Amend(key, func(prev any) (any, bool) {
		snap, ok := prev.(model.ItemSnapshot)
		if !ok || len(comments) < len(snap.Comments) {
			return prev, false
		}
		snap = snap.Clone()
		snap.Comments = append([]model.Comment(nil), comments...)
		return snap, true
	})
}

// Aggregate returns the cached snapshot of itemID, loading it when absent or stale.
func (a *Aggregator) Aggregate(ctx context.Context, itemID string) (model.ItemSnapshot, error) {
	if snap, meta, ok := cache.Lookup[model.ItemSnapshot](a.cache, cache.ItemKey(itemID)); ok && !meta.Stale {
		return snap.Clone(), nil
	}
	return a.LoadAggregate(ctx, itemID)
}

// State reports the load state of itemID.
func (a *Aggregator) State(itemID string) cache.State {
	return a.cache.State(cache.ItemKey(itemID))
}

func (a *Aggregator) reject(op string, err error) error {
	metrics.RecordValidationRejection(op)
	verr := types.Validation(op, err.Error())
	verr.Err = err
	return verr
}
