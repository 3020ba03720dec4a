// Package authority is the reference remote authority: it owns items, score
// entries, comments, sessions and the user ranking that clients synchronize
// against.
package authority

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/reelrank/internal/adapters/repository"
	"github.com/okian/reelrank/internal/domain/model"
	"github.com/okian/reelrank/internal/domain/types"
	"github.com/okian/reelrank/pkg/logger"
	"github.com/okian/reelrank/pkg/metrics"
)

// DefaultMaxPageSize caps ranking windows when WithMaxPageSize is not given.
const DefaultMaxPageSize = 100

// TokenType is returned with every issued access token.
const TokenType = "bearer"

type itemState struct {
	item     model.ContentItem
	scores   map[string]model.ScoreEntry
	sum      int
	comments []model.Comment
}

func (st *itemState) aggregate() model.AggregateScore {
	n := len(st.scores)
	if n == 0 {
		return model.AggregateScore{}
	}
	return model.AggregateScore{Mean: float64(st.sum) / float64(n), Count: n}
}

type account struct {
	id           string
	displayName  string
	publications int
	// received counts live score entries on the user's items; the store holds their sum.
	received int
}

// Service implements the authority's operations over an in-memory catalogue
// and a pluggable ranking store.
type Service struct {
	mu sync.RWMutex

	store       repository.Store
	items       map[string]*itemState
	accounts    map[string]*account
	tokens      map[string]string
	maxPageSize int

	now   func() time.Time
	newID func() string

	started bool
	logger  logger.Logger
}

// New constructs a Service. Call Start before use.
func New(opts ...Option) *Service {
	s := &Service{
		items:       make(map[string]*itemState),
		accounts:    make(map[string]*account),
		tokens:      make(map[string]string),
		maxPageSize: DefaultMaxPageSize,
		now:         time.Now,
		newID:       uuid.NewString,
		logger:      logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start prepares the ranking store.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.store == nil {
		s.store = repository.NewTreapStore(ctx)
		s.logger.Info(ctx, "using treap store")
	}
	s.started = true
	s.logger.Info(ctx, "authority started", logger.Int("maxPageSize", s.maxPageSize))
	return nil
}

// Stop closes the ranking store.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	if err := s.store.Close(); err != nil {
		s.logger.Warn(context.Background(), "closing ranking store", logger.Error(err))
	}
	s.started = false
	s.logger.Info(context.Background(), "authority stopped")
}

// Login registers userID on first use and issues a new access token.
func (s *Service) Login(ctx context.Context, userID, displayName string) (model.LoginResponse, error) {
	userID = strings.TrimSpace(userID)
	if err := model.ValidateID("user_id", userID); err != nil {
		return model.LoginResponse{}, fmt.Errorf("%w: %v", ErrInvalidUser, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return model.LoginResponse{}, ErrNotStarted
	}

	acc := s.accountLocked(userID)
	if name := strings.TrimSpace(displayName); name != "" {
		acc.displayName = name
	}
	token := s.newID()
	s.tokens[token] = userID
	metrics.UpdateActiveSessions(len(s.tokens))

	s.logger.Debug(ctx, "login", logger.String("userID", userID))
	return model.LoginResponse{AccessToken: token, TokenType: TokenType}, nil
}

// Logout revokes token. Unknown tokens are ignored.
func (s *Service) Logout(_ context.Context, token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, token)
	metrics.UpdateActiveSessions(len(s.tokens))
}

// Authenticate resolves a bearer token to its user.
func (s *Service) Authenticate(token string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	userID, ok := s.tokens[token]
	if !ok || token == "" {
		return "", ErrUnauthorized
	}
	return userID, nil
}

// CreateItem publishes an item for authorID, who becomes ranked from then on.
func (s *Service) CreateItem(ctx context.Context, authorID string, req model.ItemRequest) (model.ContentItem, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return model.ContentItem{}, fmt.Errorf("%w: title must not be empty", ErrInvalidItem)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return model.ContentItem{}, ErrNotStarted
	}

	if _, err := s.store.Add(ctx, authorID, 0); err != nil {
		return model.ContentItem{}, fmt.Errorf("%w: %v", ErrStoreFailure, err)
	}
	acc := s.accountLocked(authorID)
	acc.publications++

	item := model.ContentItem{
		ID:          s.newID(),
		Title:       title,
		Description: req.Description,
		MediaRef:    req.MediaRef,
		AuthorID:    authorID,
		CreatedAt:   s.now().UTC(),
	}
	s.items[item.ID] = &itemState{item: item, scores: make(map[string]model.ScoreEntry)}
	metrics.RecordItemCreated()

	s.logger.Debug(ctx, "item created",
		logger.String("itemID", item.ID),
		logger.String("authorID", authorID),
	)
	return item, nil
}

// Item returns a published item.
func (s *Service) Item(_ context.Context, itemID string) (model.ContentItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.items[itemID]
	if !ok {
		return model.ContentItem{}, ErrItemNotFound
	}
	return st.item, nil
}

// Items lists published items newest first, starting at offset. A non-empty
// authorID restricts the list to that user's items.
func (s *Service) Items(_ context.Context, authorID string, limit, offset int) (model.ItemPage, error) {
	if limit < 1 || limit > s.maxPageSize || offset < 0 {
		return model.ItemPage{}, fmt.Errorf("%w: limit=%d offset=%d", ErrInvalidPage, limit, offset)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return model.ItemPage{}, ErrNotStarted
	}

	all := make([]model.ContentItem, 0, len(s.items))
	for _, st := range s.items {
		if authorID == "" || st.item.AuthorID == authorID {
			all = append(all, st.item)
		}
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].ID < all[j].ID
	})

	total := len(all)
	window := []model.ContentItem{}
	if offset < total {
		window = append(window, all[offset:min(offset+limit, total)]...)
	}
	return model.ItemPage{
		Items:       window,
		Total:       total,
		TotalPages:  types.TotalPages(total, limit),
		CurrentPage: offset/limit + 1,
	}, nil
}

// SubmitScore upserts authorID's entry on itemID and returns the new aggregate.
// The item author's total moves by the difference between the new and the
// replaced value.
func (s *Service) SubmitScore(ctx context.Context, itemID, authorID string, value int) (model.AggregateScore, error) {
	if value < model.MinScore || value > model.MaxScore {
		return model.AggregateScore{}, fmt.Errorf("%w: %d not in [%d,%d]", ErrInvalidScore, value, model.MinScore, model.MaxScore)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return model.AggregateScore{}, ErrNotStarted
	}

	st, ok := s.items[itemID]
	if !ok {
		return model.AggregateScore{}, ErrItemNotFound
	}

	prev, replaced := st.scores[authorID]
	delta := value - prev.Value
	if _, err := s.store.Add(ctx, st.item.AuthorID, float64(delta)); err != nil {
		return model.AggregateScore{}, fmt.Errorf("%w: %v", ErrStoreFailure, err)
	}

	st.scores[authorID] = model.ScoreEntry{AuthorID: authorID, Value: value, CreatedAt: s.now().UTC()}
	st.sum += delta
	if !replaced {
		s.accountLocked(st.item.AuthorID).received++
	}
	metrics.RecordScoreUpsert(replaced)

	agg := st.aggregate()
	s.logger.Debug(ctx, "score stored",
		logger.String("itemID", itemID),
		logger.String("authorID", authorID),
		logger.Int("value", value),
		logger.Bool("replaced", replaced),
		logger.Float64("mean", agg.Mean),
		logger.Int("count", agg.Count),
	)
	return agg, nil
}

// ScoreAverage returns the aggregate of all live entries on itemID.
func (s *Service) ScoreAverage(_ context.Context, itemID string) (model.AggregateScore, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.items[itemID]
	if !ok {
		return model.AggregateScore{}, ErrItemNotFound
	}
	return st.aggregate(), nil
}

// SubmitComment appends a comment to itemID.
func (s *Service) SubmitComment(ctx context.Context, itemID, authorID, text string) (model.Comment, error) {
	if err := model.ValidateCommentText(text); err != nil {
		return model.Comment{}, fmt.Errorf("%w: %v", ErrInvalidComment, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.items[itemID]
	if !ok {
		return model.Comment{}, ErrItemNotFound
	}
	c := model.Comment{
		ID:        s.newID(),
		AuthorID:  authorID,
		Text:      strings.TrimSpace(text),
		CreatedAt: s.now().UTC(),
	}
	st.comments = append(st.comments, c)
	metrics.RecordCommentCreated()

	s.logger.Debug(ctx, "comment stored",
		logger.String("itemID", itemID),
		logger.String("commentID", c.ID),
	)
	return c, nil
}

// Comments returns itemID's comments ordered by creation.
func (s *Service) Comments(_ context.Context, itemID string) ([]model.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.items[itemID]
	if !ok {
		return nil, ErrItemNotFound
	}
	out := make([]model.Comment, len(st.comments))
	copy(out, st.comments)
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// Ranking returns up to limit standings starting at offset.
func (s *Service) Ranking(ctx context.Context, limit, offset int) (model.RankingPage, error) {
	if limit < 1 || limit > s.maxPageSize || offset < 0 {
		return model.RankingPage{}, fmt.Errorf("%w: limit=%d offset=%d", ErrInvalidPage, limit, offset)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return model.RankingPage{}, ErrNotStarted
	}

	entries, err := s.store.Range(ctx, offset, limit)
	if err != nil {
		return model.RankingPage{}, fmt.Errorf("%w: %v", ErrStoreFailure, err)
	}
	total := s.store.Count(ctx)
	return model.RankingPage{
		Items:       s.standingsLocked(entries),
		Total:       total,
		TotalPages:  types.TotalPages(total, limit),
		CurrentPage: offset/limit + 1,
	}, nil
}

// Standing returns userID's ranking entry.
func (s *Service) Standing(ctx context.Context, userID string) (model.UserStanding, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return model.UserStanding{}, ErrNotStarted
	}

	e, err := s.store.Rank(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.UserStanding{}, ErrUserNotFound
		}
		return model.UserStanding{}, fmt.Errorf("%w: %v", ErrStoreFailure, err)
	}
	return s.standingLocked(e), nil
}

// Top returns the first n standings.
func (s *Service) Top(ctx context.Context, n int) ([]model.UserStanding, error) {
	if n < 1 || n > s.maxPageSize {
		return nil, fmt.Errorf("%w: limit=%d", ErrInvalidPage, n)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, ErrNotStarted
	}

	entries, err := s.store.TopN(ctx, n)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreFailure, err)
	}
	return s.standingsLocked(entries), nil
}

// Stats returns counters for monitoring.
func (s *Service) Stats(ctx context.Context) map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":     s.started,
		"items":       len(s.items),
		"accounts":    len(s.accounts),
		"sessions":    len(s.tokens),
		"maxPageSize": s.maxPageSize,
	}
	if s.started {
		ranked := s.store.Count(ctx)
		stats["rankedUsers"] = ranked
		metrics.UpdateRankedUsers(ranked)
		metrics.UpdateActiveSessions(len(s.tokens))
	}
	return stats
}

func (s *Service) accountLocked(userID string) *account {
	acc, ok := s.accounts[userID]
	if !ok {
		acc = &account{id: userID}
		s.accounts[userID] = acc
	}
	return acc
}

func (s *Service) standingsLocked(entries []types.Entry) []model.UserStanding {
	out := make([]model.UserStanding, 0, len(entries))
	for _, e := range entries {
		out = append(out, s.standingLocked(e))
	}
	return out
}

func (s *Service) standingLocked(e types.Entry) model.UserStanding {
	st := model.UserStanding{
		UserID:     e.UserID,
		TotalScore: e.Score,
		Position:   e.Rank,
	}
	if acc, ok := s.accounts[e.UserID]; ok {
		st.DisplayName = acc.displayName
		st.Publications = acc.publications
		if acc.received > 0 {
			st.AverageScore = e.Score / float64(acc.received)
		}
	}
	return st
}
