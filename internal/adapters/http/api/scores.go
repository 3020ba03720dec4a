package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi"

	"github.com/okian/reelrank/internal/domain/model"
)

// ScoreDependencies defines the score operations.
type ScoreDependencies interface {
	SubmitScore(ctx context.Context, itemID, authorID string, value int) (model.AggregateScore, error)
	ScoreAverage(ctx context.Context, itemID string) (model.AggregateScore, error)
}

// ScoresHandler handles score requests.
type ScoresHandler struct {
	deps ScoreDependencies
}

// NewScoresHandler creates a new scores handler.
func NewScoresHandler(deps ScoreDependencies) *ScoresHandler {
	return &ScoresHandler{deps: deps}
}

// HandleSubmit handles POST /scores/{itemID} with {"value": n}.
func (h *ScoresHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserFromContext(r.Context())
	var req model.ScoreRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	agg, err := h.deps.SubmitScore(r.Context(), chi.URLParam(r, "itemID"), userID, req.Value)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, agg)
}

// HandleGetAverage handles GET /scores/{itemID}.
func (h *ScoresHandler) HandleGetAverage(w http.ResponseWriter, r *http.Request) {
	agg, err := h.deps.ScoreAverage(r.Context(), chi.URLParam(r, "itemID"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, agg)
}
