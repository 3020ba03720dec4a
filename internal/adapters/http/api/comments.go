package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi"

	"github.com/okian/reelrank/internal/domain/model"
)

// CommentDependencies defines the comment operations.
type CommentDependencies interface {
	SubmitComment(ctx context.Context, itemID, authorID, text string) (model.Comment, error)
	Comments(ctx context.Context, itemID string) ([]model.Comment, error)
}

// CommentsHandler handles comment requests.
type CommentsHandler struct {
	deps CommentDependencies
}

// NewCommentsHandler creates a new comments handler.
func NewCommentsHandler(deps CommentDependencies) *CommentsHandler {
	return &CommentsHandler{deps: deps}
}

// HandleSubmit handles POST /comments/{itemID} with {"text": "..."}.
func (h *CommentsHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserFromContext(r.Context())
	var req model.CommentRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	c, err := h.deps.SubmitComment(r.Context(), chi.URLParam(r, "itemID"), userID, req.Text)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

// HandleList handles GET /comments/{itemID}.
func (h *CommentsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	list, err := h.deps.Comments(r.Context(), chi.URLParam(r, "itemID"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(list))
}
