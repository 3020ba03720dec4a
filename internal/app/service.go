// Package service assembles the client-side synchronization layer: session,
// transport, cache, item aggregator and ranking projector behind one Client.
package service

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/okian/reelrank/internal/adapters/transport"
	"github.com/okian/reelrank/internal/app/interaction"
	"github.com/okian/reelrank/internal/app/ranking"
	"github.com/okian/reelrank/internal/cache"
	"github.com/okian/reelrank/internal/config"
	"github.com/okian/reelrank/internal/domain/model"
	"github.com/okian/reelrank/internal/domain/types"
	"github.com/okian/reelrank/internal/session"
	"github.com/okian/reelrank/pkg/logger"
)

// Operation names used in errors.
const (
	OpLogin      = "service.Login"
	OpCreateItem = "service.CreateItem"
	OpListItems  = "service.ListItems"
)

// Client is one user's view of the authority. Each Client owns its cache.
type Client struct {
	// Configuration
	baseURL     string
	httpClient  *http.Client
	timeout     time.Duration
	pageSize    int
	maxPageSize int
	concurrency int
	userID      string
	token       string

	// Core components
	session      *session.Store
	remote       *transport.Client
	cache        *cache.Cache
	interactions *interaction.Aggregator
	rankings     *ranking.Projector

	logger logger.Logger
}

// Option applies a configuration option to the Client.
type Option func(*Client)

// WithBaseURL sets the authority address.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.baseURL = u
		}
	}
}

// WithHTTPClient replaces the transport's http.Client. WithTimeout is then ignored.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithPageSize sets the page size used by FetchPage and FetchAll.
func WithPageSize(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.pageSize = n
		}
	}
}

// WithMaxPageSize caps accepted page sizes.
func WithMaxPageSize(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxPageSize = n
		}
	}
}

// WithConcurrency bounds parallel page fetches.
func WithConcurrency(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.concurrency = n
		}
	}
}

// WithCredentials starts the client with an existing session.
func WithCredentials(userID, token string) Option {
	return func(c *Client) {
		c.userID = userID
		c.token = token
	}
}

// WithLogger sets a custom logger for the client and its components.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithConfig applies the client-related settings of cfg.
func WithConfig(cfg *config.Config) Option {
	return func(c *Client) {
		if cfg == nil {
			return
		}
		WithBaseURL(cfg.BaseURL)(c)
		WithTimeout(cfg.RequestTimeout())(c)
		WithPageSize(cfg.PageSize)(c)
		WithMaxPageSize(cfg.MaxPageSize)(c)
		WithConcurrency(cfg.FetchConcurrency)(c)
		if cfg.Token != "" {
			WithCredentials(cfg.UserID, cfg.Token)(c)
		}
	}
}

// New constructs a Client with default configuration.
func New(opts ...Option) (*Client, error) {
	defaults := config.New()
	c := &Client{
		baseURL:     defaults.BaseURL,
		timeout:     defaults.RequestTimeout(),
		pageSize:    defaults.PageSize,
		maxPageSize: defaults.MaxPageSize,
		concurrency: defaults.FetchConcurrency,
		logger:      logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.pageSize > c.maxPageSize {
		return nil, fmt.Errorf("page size %d exceeds max page size %d", c.pageSize, c.maxPageSize)
	}

	c.session = session.New(session.WithCredentials(c.userID, c.token))

	topts := []transport.Option{
		transport.WithSession(c.session),
		transport.WithLogger(c.logger.Named("transport")),
	}
	if c.httpClient != nil {
		topts = append(topts, transport.WithHTTPClient(c.httpClient))
	} else {
		topts = append(topts, transport.WithTimeout(c.timeout))
	}
	remote, err := transport.New(c.baseURL, topts...)
	if err != nil {
		return nil, err
	}
	c.remote = remote

	c.cache = cache.New(cache.WithLogger(c.logger.Named("cache")))
	c.interactions = interaction.New(c.remote, c.cache,
		interaction.WithLogger(c.logger.Named("interaction")),
	)
	c.rankings = ranking.New(c.remote, c.session, c.cache,
		ranking.WithLogger(c.logger.Named("ranking")),
		ranking.WithMaxPageSize(c.maxPageSize),
		ranking.WithConcurrency(c.concurrency),
	)
	return c, nil
}

// Login authenticates userID with the authority and stores the issued token.
func (c *Client) Login(ctx context.Context, userID, displayName string) error {
	if err := model.ValidateID("user id", userID); err != nil {
		return types.Validation(OpLogin, err.Error())
	}
	resp, err := c.remote.Login(ctx, userID, displayName)
	if err != nil {
		return err
	}
	prev := c.session.UserID()
	c.session.Login(userID, resp.AccessToken)
	if prev != userID {
		c.forgetViewer()
	}
	c.logger.Info(ctx, "logged in", logger.String("userID", userID))
	return nil
}

// Logout revokes the token remotely and clears the local session even when
// the authority cannot be reached.
func (c *Client) Logout(ctx context.Context) error {
	var err error
	if c.session.IsAuthenticated() {
		err = c.remote.Logout(ctx)
	}
	c.session.Logout()
	c.forgetViewer()
	return err
}

// forgetViewer drops what the cache knows about the previous user: the own
// standing and the viewer score on every cached item.
func (c *Client) forgetViewer() {
	c.cache.Delete(cache.SelfKey)
	for _, key := range c.cache.Keys() {
		if !key.IsItem() {
			continue
		}
		c.cache.Amend(key, func(prev any) (any, bool) {
			snap, ok := prev.(model.ItemSnapshot)
			if !ok || snap.Viewer == nil {
				return prev, false
			}
			snap = snap.Clone()
			snap.Viewer = nil
			return snap, true
		})
	}
}

// Session exposes the session capability.
func (c *Client) Session() session.Provider { return c.session }

// Cache exposes the client's state cache for observers.
func (c *Client) Cache() *cache.Cache { return c.cache }

// Subscribe registers fn for every cache change.
func (c *Client) Subscribe(fn func(cache.Event)) (cancel func()) {
	return c.cache.Subscribe(fn)
}

// Token returns the current access token, empty when logged out.
func (c *Client) Token() string { return c.session.Token() }

// PageSize returns the configured page size.
func (c *Client) PageSize() int { return c.pageSize }

// CreateItem publishes an item as the logged-in user.
func (c *Client) CreateItem(ctx context.Context, req model.ItemRequest) (model.ContentItem, error) {
	if !c.session.IsAuthenticated() {
		return model.ContentItem{}, types.Validation(OpCreateItem, "login required")
	}
	return c.remote.CreateItem(ctx, req)
}

// Item fetches item metadata.
func (c *Client) Item(ctx context.Context, itemID string) (model.ContentItem, error) {
	return c.remote.Item(ctx, itemID)
}

// ListItems returns one page of published items, newest first. A non-empty
// authorID lists only that user's items. Pages are not cached.
func (c *Client) ListItems(ctx context.Context, authorID string, pageNumber, pageSize int) (types.Page[model.ContentItem], error) {
	if pageNumber < 1 {
		return types.Page[model.ContentItem]{}, types.Validation(OpListItems, "page number must be at least 1")
	}
	if pageSize < 1 || pageSize > c.maxPageSize {
		return types.Page[model.ContentItem]{}, types.Validation(OpListItems,
			fmt.Sprintf("page size must be between 1 and %d", c.maxPageSize))
	}
	page, err := c.remote.Items(ctx, authorID, pageSize, types.Offset(pageNumber, pageSize))
	if err != nil {
		return types.Page[model.ContentItem]{}, types.Wrap(OpListItems, err)
	}
	return types.NewPage(page.Items, pageNumber, pageSize, page.Total), nil
}

// LoadAggregate refreshes an item's score and comments.
func (c *Client) LoadAggregate(ctx context.Context, itemID string) (model.ItemSnapshot, error) {
	return c.interactions.LoadAggregate(ctx, itemID)
}

// Aggregate returns the cached item snapshot, loading it when missing or stale.
func (c *Client) Aggregate(ctx context.Context, itemID string) (model.ItemSnapshot, error) {
	return c.interactions.Aggregate(ctx, itemID)
}

// ItemState reports the load state of an item.
func (c *Client) ItemState(itemID string) cache.State {
	return c.interactions.State(itemID)
}

// SubmitScore rates itemID as the logged-in user.
func (c *Client) SubmitScore(ctx context.Context, itemID string, value float64) (model.AggregateScore, error) {
	return c.interactions.SubmitScore(ctx, itemID, c.session.UserID(), value)
}

// SubmitComment comments on itemID as the logged-in user.
func (c *Client) SubmitComment(ctx context.Context, itemID, text string) ([]model.Comment, error) {
	return c.interactions.SubmitComment(ctx, itemID, c.session.UserID(), text)
}

// FetchPage loads ranking page pageNumber with the configured page size.
func (c *Client) FetchPage(ctx context.Context, pageNumber int) (ranking.Page, error) {
	return c.rankings.FetchPage(ctx, pageNumber, c.pageSize)
}

// FetchPageSize loads ranking page pageNumber with an explicit page size.
func (c *Client) FetchPageSize(ctx context.Context, pageNumber, pageSize int) (ranking.Page, error) {
	return c.rankings.FetchPage(ctx, pageNumber, pageSize)
}

// CurrentPage returns the last page loaded by FetchPage.
func (c *Client) CurrentPage() (ranking.Page, bool) { return c.rankings.Current() }

// FetchSelf loads the logged-in user's standing.
func (c *Client) FetchSelf(ctx context.Context) (model.UserStanding, error) {
	return c.rankings.FetchSelf(ctx)
}

// FetchUser loads another user's standing.
func (c *Client) FetchUser(ctx context.Context, userID string) (model.UserStanding, error) {
	return c.rankings.FetchUser(ctx, userID)
}

// FetchTop returns the first n standings.
func (c *Client) FetchTop(ctx context.Context, n int) ([]model.UserStanding, error) {
	return c.rankings.FetchTop(ctx, n)
}

// FetchAll walks the whole ranking with the configured page size.
func (c *Client) FetchAll(ctx context.Context) ([]model.UserStanding, error) {
	return c.rankings.FetchAll(ctx, c.pageSize)
}
