package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

	"github.com/okian/reelrank/internal/domain/model"
)

// RankingDependencies defines the ranking read operations.
type RankingDependencies interface {
	Ranking(ctx context.Context, limit, offset int) (model.RankingPage, error)
	Standing(ctx context.Context, userID string) (model.UserStanding, error)
	Top(ctx context.Context, n int) ([]model.UserStanding, error)
}

// RankingHandler handles ranking requests.
type RankingHandler struct {
	deps     RankingDependencies
	maxLimit int
}

// NewRankingHandler creates a new ranking handler.
func NewRankingHandler(deps RankingDependencies, maxLimit int) *RankingHandler {
	return &RankingHandler{
		deps:     deps,
		maxLimit: maxLimit,
	}
}

// queryInt reads a non-negative integer query parameter, or def when absent.
func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %s must be a non-negative integer", ErrBadRequest, name)
	}
	return n, nil
}

// queryLimit reads the limit parameter and checks it against maxLimit.
func queryLimit(r *http.Request, maxLimit int) (int, error) {
	n, err := queryInt(r, "limit", defaultRankingSize)
	if err != nil {
		return 0, err
	}
	if n < 1 || n > maxLimit {
		return 0, fmt.Errorf("%w: limit must be between 1 and %d", ErrBadRequest, maxLimit)
	}
	return n, nil
}

func (h *RankingHandler) limit(r *http.Request) (int, error) {
	return queryLimit(r, h.maxLimit)
}

// HandleGetRanking handles GET /ranking?limit=N&offset=M.
func (h *RankingHandler) HandleGetRanking(w http.ResponseWriter, r *http.Request) {
	limit, err := h.limit(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	page, err := h.deps.Ranking(r.Context(), limit, offset)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	page.Items = nonNil(page.Items)
	writeJSON(w, http.StatusOK, page)
}

// HandleGetTop handles GET /ranking/top?limit=N.
func (h *RankingHandler) HandleGetTop(w http.ResponseWriter, r *http.Request) {
	limit, err := h.limit(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	top, err := h.deps.Top(r.Context(), limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(top))
}

// HandleGetSelf handles GET /ranking/me.
func (h *RankingHandler) HandleGetSelf(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserFromContext(r.Context())
	h.writeStanding(w, r, userID)
}

// HandleGetUser handles GET /ranking/users/{userID}.
func (h *RankingHandler) HandleGetUser(w http.ResponseWriter, r *http.Request) {
	h.writeStanding(w, r, chi.URLParam(r, "userID"))
}

func (h *RankingHandler) writeStanding(w http.ResponseWriter, r *http.Request, userID string) {
	st, err := h.deps.Standing(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}
