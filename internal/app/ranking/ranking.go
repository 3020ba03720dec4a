// Package ranking projects the authority's leaderboard into paginated views.
//
// Pages are not isolated from each other: the ranking may change between two
// page fetches, so a user can appear on two pages or on none.
package ranking

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/okian/reelrank/internal/adapters/transport"
	"github.com/okian/reelrank/internal/cache"
	"github.com/okian/reelrank/internal/domain/model"
	"github.com/okian/reelrank/internal/domain/types"
	"github.com/okian/reelrank/internal/session"
	"github.com/okian/reelrank/pkg/logger"
	"github.com/okian/reelrank/pkg/metrics"
)

// Defaults.
const (
	DefaultMaxPageSize = 100
	DefaultConcurrency = 4
)

// Operation names used in errors.
const (
	OpFetchPage = "ranking.FetchPage"
	OpFetchSelf = "ranking.FetchSelf"
	OpFetchUser = "ranking.FetchUser"
	OpFetchTop  = "ranking.FetchTop"
	OpFetchAll  = "ranking.FetchAll"
)

// Page is one page of standings.
type Page = types.Page[model.UserStanding]

// Projector owns the ranking keys in the cache.
type Projector struct {
	remote      transport.Rankings
	session     session.Provider
	cache       *cache.Cache
	log         logger.Logger
	maxPageSize int
	concurrency int
}

// Option configures the Projector.
type Option func(*Projector)

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(p *Projector) {
		if l != nil {
			p.log = l
		}
	}
}

// WithMaxPageSize caps the accepted page size.
func WithMaxPageSize(n int) Option {
	return func(p *Projector) {
		if n > 0 {
			p.maxPageSize = n
		}
	}
}

// WithConcurrency bounds parallel page fetches in FetchAll.
func WithConcurrency(n int) Option {
	return func(p *Projector) {
		if n > 0 {
			p.concurrency = n
		}
	}
}

// New creates a Projector.
func New(remote transport.Rankings, sess session.Provider, c *cache.Cache, opts ...Option) *Projector {
	p := &Projector{
		remote:      remote,
		session:     sess,
		cache:       c,
		log:         logger.Nop(),
		maxPageSize: DefaultMaxPageSize,
		concurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// FetchPage loads one page and makes it the current page. pageNumber starts at 1.
// A page past the last one comes back with no items and no error. On failure
// the current page is left as it was.
func (p *Projector) FetchPage(ctx context.Context, pageNumber, pageSize int) (Page, error) {
	if err := p.validatePage(OpFetchPage, pageNumber, pageSize); err != nil {
		return Page{}, err
	}
	return p.fetchPage(ctx, OpFetchPage, pageNumber, pageSize, true)
}

func (p *Projector) fetchPage(ctx context.Context, op string, pageNumber, pageSize int, current bool) (Page, error) {
	pageTicket := p.cache.Begin(cache.PageKey(pageNumber, pageSize))
	var curTicket cache.Ticket
	if current {
		curTicket = p.cache.Begin(cache.CurrentPageKey)
	}
	abort := func() {
		p.cache.Abort(pageTicket)
		if current {
			p.cache.Abort(curTicket)
		}
	}

	resp, err := p.remote.Ranking(ctx, pageSize, types.Offset(pageNumber, pageSize))
	if err != nil {
		abort()
		p.log.Warn(ctx, "ranking page fetch failed",
			logger.Int("page", pageNumber),
			logger.Int("size", pageSize),
			logger.Error(err),
		)
		return Page{}, types.Wrap(op, err)
	}

	page := types.NewPage(resp.Items, pageNumber, pageSize, resp.Total)
	if resp.TotalPages > 0 {
		page.TotalPages = resp.TotalPages
	}
	if page.Beyond() {
		page.Items = []model.UserStanding{}
	}

	p.cache.Commit(pageTicket, page)
	if current {
		p.cache.Commit(curTicket, page)
	}
	p.log.Debug(ctx, "ranking page loaded",
		logger.Int("page", pageNumber),
		logger.Int("items", len(page.Items)),
		logger.Int("total", page.Total),
	)
	return page, nil
}

// FetchSelf loads the authenticated user's standing. Without a session it fails
// with a validation error and no request is made.
func (p *Projector) FetchSelf(ctx context.Context) (model.UserStanding, error) {
	if p.session == nil || !p.session.IsAuthenticated() {
		metrics.RecordValidationRejection(OpFetchSelf)
		return model.UserStanding{}, types.Validation(OpFetchSelf, "not authenticated")
	}
	return p.fetchStanding(ctx, OpFetchSelf, cache.SelfKey, p.remote.RankingSelf)
}

// FetchUser loads another user's standing.
func (p *Projector) FetchUser(ctx context.Context, userID string) (model.UserStanding, error) {
	if err := model.ValidateID("user id", userID); err != nil {
		metrics.RecordValidationRejection(OpFetchUser)
		return model.UserStanding{}, types.Validation(OpFetchUser, err.Error())
	}
	return p.fetchStanding(ctx, OpFetchUser, cache.UserKey(userID), func(ctx context.Context) (model.UserStanding, error) {
		return p.remote.RankingUser(ctx, userID)
	})
}

func (p *Projector) fetchStanding(ctx context.Context, op string, key cache.Key, get func(context.Context) (model.UserStanding, error)) (model.UserStanding, error) {
	t := p.cache.Begin(key)
	st, err := get(ctx)
	if err != nil {
		p.cache.Abort(t)
		return model.UserStanding{}, types.Wrap(op, err)
	}
	p.cache.Commit(t, st)
	if cur, _, ok := cache.Lookup[model.UserStanding](p.cache, key); ok {
		st = cur
	}
	return st, nil
}

// FetchTop returns the first n standings. Nothing is cached.
func (p *Projector) FetchTop(ctx context.Context, n int) ([]model.UserStanding, error) {
	if n < 1 || n > p.maxPageSize {
		metrics.RecordValidationRejection(OpFetchTop)
		return nil, types.Validation(OpFetchTop, fmt.Sprintf("limit must be between 1 and %d", p.maxPageSize))
	}
	top, err := p.remote.RankingTop(ctx, n)
	if err != nil {
		return nil, types.Wrap(OpFetchTop, err)
	}
	return top, nil
}

// FetchAll walks every page of pageSize and concatenates them in page order.
// Page 1 sizes the walk; the rest are fetched concurrently. The current page is
// not changed.
func (p *Projector) FetchAll(ctx context.Context, pageSize int) ([]model.UserStanding, error) {
	if err := p.validatePage(OpFetchAll, 1, pageSize); err != nil {
		return nil, err
	}

	first, err := p.fetchPage(ctx, OpFetchAll, 1, pageSize, false)
	if err != nil {
		return nil, err
	}
	if first.TotalPages <= 1 {
		return first.Items, nil
	}

	pages := make([]Page, first.TotalPages)
	pages[0] = first

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)
	for n := 2; n <= first.TotalPages; n++ {
		g.Go(func() error {
			page, err := p.fetchPage(gctx, OpFetchAll, n, pageSize, false)
			if err != nil {
				return err
			}
			pages[n-1] = page
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]model.UserStanding, 0, first.Total)
	for _, page := range pages {
		out = append(out, page.Items...)
	}
	return out, nil
}

// Current returns the page last made current by FetchPage.
func (p *Projector) Current() (Page, bool) {
	page, _, ok := cache.Lookup[Page](p.cache, cache.CurrentPageKey)
	return page, ok
}

// Self returns the cached standing of the authenticated user.
func (p *Projector) Self() (model.UserStanding, bool) {
	st, _, ok := cache.Lookup[model.UserStanding](p.cache, cache.SelfKey)
	return st, ok
}

func (p *Projector) validatePage(op string, pageNumber, pageSize int) error {
	switch {
	case pageNumber < 1:
		metrics.RecordValidationRejection(op)
		return types.Validation(op, "page number must be at least 1")
	case pageSize < 1 || pageSize > p.maxPageSize:
		metrics.RecordValidationRejection(op)
		return types.Validation(op, fmt.Sprintf("page size must be between 1 and %d", p.maxPageSize))
	}
	return nil
}
