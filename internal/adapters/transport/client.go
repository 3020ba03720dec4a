package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/okian/reelrank/internal/domain/model"
	"github.com/okian/reelrank/internal/domain/types"
	"github.com/okian/reelrank/internal/session"
	"github.com/okian/reelrank/pkg/logger"
	"github.com/okian/reelrank/pkg/metrics"
)

const (
	defaultTimeout = 10 * time.Second
	maxBodyBytes   = 4 << 20
)

// Operation names used for errors, logs and metrics.
const (
	OpSubmitScore   = "score_submit"
	OpScoreAverage  = "score_average"
	OpSubmitComment = "comment_submit"
	OpComments      = "comments"
	OpRanking       = "ranking"
	OpRankingSelf   = "ranking_self"
	OpRankingUser   = "ranking_user"
	OpRankingTop    = "ranking_top"
	OpLogin         = "login"
	OpLogout        = "logout"
	OpCreateItem    = "item_create"
	OpItem          = "item"
	OpItems         = "items"
)

// Client is the HTTP implementation of Interactions, Rankings and Accounts.
type Client struct {
	base    *url.URL
	http    *http.Client
	session session.Provider
	log     logger.Logger
}

var (
	_ Interactions = (*Client)(nil)
	_ Rankings     = (*Client)(nil)
	_ Accounts     = (*Client)(nil)
)

// Option configures the Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout sets the per-request timeout of the default http.Client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithSession attaches a bearer token from p to every request when authenticated.
func WithSession(p session.Provider) Option {
	return func(c *Client) { c.session = p }
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// New creates a Client for the authority at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(strings.TrimSpace(baseURL), "/"))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidBaseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: unsupported scheme %q", ErrInvalidBaseURL, u.Scheme)
	}
	c := &Client{
		base: u,
		http: &http.Client{Timeout: defaultTimeout},
		log:  logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// SubmitScore upserts the caller's score on itemID and returns the new aggregate.
func (c *Client) SubmitScore(ctx context.Context, itemID string, value int) (model.AggregateScore, error) {
	var out model.AggregateScore
	err := c.do(ctx, OpSubmitScore, http.MethodPost, "/scores/"+url.PathEscape(itemID), nil,
		model.ScoreRequest{Value: value}, &out)
	return out, err
}

// ScoreAverage returns the aggregate score of itemID.
func (c *Client) ScoreAverage(ctx context.Context, itemID string) (model.AggregateScore, error) {
	var out model.AggregateScore
	err := c.do(ctx, OpScoreAverage, http.MethodGet, "/scores/"+url.PathEscape(itemID), nil, nil, &out)
	return out, err
}

// SubmitComment posts a comment on itemID.
func (c *Client) SubmitComment(ctx context.Context, itemID, text string) (model.Comment, error) {
	var out model.Comment
	err := c.do(ctx, OpSubmitComment, http.MethodPost, "/comments/"+url.PathEscape(itemID), nil,
		model.CommentRequest{Text: text}, &out)
	return out, err
}

// Comments returns all comments on itemID in creation order.
func (c *Client) Comments(ctx context.Context, itemID string) ([]model.Comment, error) {
	var out []model.Comment
	if err := c.do(ctx, OpComments, http.MethodGet, "/comments/"+url.PathEscape(itemID), nil, nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []model.Comment{}
	}
	return out, nil
}

// Ranking returns one window of the leaderboard.
func (c *Client) Ranking(ctx context.Context, limit, offset int) (model.RankingPage, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	q.Set("offset", strconv.Itoa(offset))
	var out model.RankingPage
	if err := c.do(ctx, OpRanking, http.MethodGet, "/ranking", q, nil, &out); err != nil {
		return model.RankingPage{}, err
	}
	if out.Items == nil {
		out.Items = []model.UserStanding{}
	}
	return out, nil
}

// RankingSelf returns the authenticated user's standing.
func (c *Client) RankingSelf(ctx context.Context) (model.UserStanding, error) {
	var out model.UserStanding
	err := c.do(ctx, OpRankingSelf, http.MethodGet, "/ranking/me", nil, nil, &out)
	return out, err
}

// RankingUser returns userID's standing.
func (c *Client) RankingUser(ctx context.Context, userID string) (model.UserStanding, error) {
	var out model.UserStanding
	err := c.do(ctx, OpRankingUser, http.MethodGet, "/ranking/users/"+url.PathEscape(userID), nil, nil, &out)
	return out, err
}

// RankingTop returns the first limit standings.
func (c *Client) RankingTop(ctx context.Context, limit int) ([]model.UserStanding, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	var out []model.UserStanding
	if err := c.do(ctx, OpRankingTop, http.MethodGet, "/ranking/top", q, nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []model.UserStanding{}
	}
	return out, nil
}

// Login exchanges a user id for a bearer token.
func (c *Client) Login(ctx context.Context, userID, displayName string) (model.LoginResponse, error) {
	var out model.LoginResponse
	err := c.do(ctx, OpLogin, http.MethodPost, "/auth/login", nil,
		model.LoginRequest{UserID: userID, DisplayName: displayName}, &out)
	return out, err
}

// Logout revokes the current bearer token.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, OpLogout, http.MethodPost, "/auth/logout", nil, nil, nil)
}

// CreateItem publishes a content item owned by the authenticated user.
func (c *Client) CreateItem(ctx context.Context, req model.ItemRequest) (model.ContentItem, error) {
	var out model.ContentItem
	err := c.do(ctx, OpCreateItem, http.MethodPost, "/items", nil, req, &out)
	return out, err
}

// Item returns a content item.
func (c *Client) Item(ctx context.Context, itemID string) (model.ContentItem, error) {
	var out model.ContentItem
	err := c.do(ctx, OpItem, http.MethodGet, "/items/"+url.PathEscape(itemID), nil, nil, &out)
	return out, err
}

// Items lists published items newest first; a blank authorID lists everyone's.
func (c *Client) Items(ctx context.Context, authorID string, limit, offset int) (model.ItemPage, error) {
	q := url.Values{}
	if authorID != "" {
		q.Set("author", authorID)
	}
	q.Set("limit", strconv.Itoa(limit))
	q.Set("offset", strconv.Itoa(offset))
	var out model.ItemPage
	if err := c.do(ctx, OpItems, http.MethodGet, "/items", q, nil, &out); err != nil {
		return model.ItemPage{}, err
	}
	if out.Items == nil {
		out.Items = []model.ContentItem{}
	}
	return out, nil
}

// do performs one request. A nil out means the response body is ignored.
func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, in, out any) error {
	start := time.Now()
	err := c.roundTrip(ctx, op, method, path, query, in, out)
	elapsed := time.Since(start)

	metrics.RecordClientRequest(op, outcome(err), float64(elapsed.Microseconds())/1000.0)
	if err != nil {
		c.log.Debug(ctx, "authority request failed",
			logger.String("op", op),
			logger.String("method", method),
			logger.String("path", path),
			logger.Duration("took", elapsed),
			logger.Error(err),
		)
	}
	return err
}

func (c *Client) roundTrip(ctx context.Context, op, method, path string, query url.Values, in, out any) error {
	u := *c.base
	u.RawPath = c.base.EscapedPath() + path
	unescaped, err := url.PathUnescape(u.RawPath)
	if err != nil {
		return types.Wrap(op, err)
	}
	u.Path = unescaped
	if query != nil {
		u.RawQuery = query.Encode()
	}

	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return types.Wrap(op, err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return types.Wrap(op, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.session != nil && c.session.IsAuthenticated() {
		req.Header.Set("Authorization", "Bearer "+c.session.Token())
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return types.Network(op, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return types.Network(op, err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return types.NotFound(op, errorMessage(data, resp.StatusCode))
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return types.Server(op, resp.StatusCode, errorMessage(data, resp.StatusCode))
	}

	if out == nil {
		return nil
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return types.Server(op, resp.StatusCode, "empty response body")
	}
	if err := json.Unmarshal(data, out); err != nil {
		e := types.Server(op, resp.StatusCode, "malformed response body")
		e.Err = err
		return e
	}
	return nil
}

// errorMessage picks the first non-empty of "error", "msg" and "message" from a
// JSON body, falling back to "Error <status>: <status text>".
func errorMessage(body []byte, status int) string {
	var fields map[string]any
	if json.Unmarshal(body, &fields) == nil {
		for _, key := range []string{"error", "msg", "message"} {
			if s, ok := fields[key].(string); ok && strings.TrimSpace(s) != "" {
				return s
			}
		}
	}
	return fmt.Sprintf("Error %d: %s", status, http.StatusText(status))
}

func outcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeOK
	case errors.Is(err, types.ErrNotFound):
		return metrics.OutcomeNotFound
	case errors.Is(err, types.ErrNetwork):
		return metrics.OutcomeNetwork
	case errors.Is(err, types.ErrValidation):
		return metrics.OutcomeValidation
	default:
		return metrics.OutcomeServer
	}
}
