package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi"

	"github.com/okian/reelrank/internal/domain/model"
)

// ItemDependencies defines the item catalogue operations.
type ItemDependencies interface {
	CreateItem(ctx context.Context, authorID string, req model.ItemRequest) (model.ContentItem, error)
	Item(ctx context.Context, itemID string) (model.ContentItem, error)
	Items(ctx context.Context, authorID string, limit, offset int) (model.ItemPage, error)
}

// ItemsHandler handles item requests.
type ItemsHandler struct {
	deps     ItemDependencies
	maxLimit int
}

// NewItemsHandler creates a new items handler.
func NewItemsHandler(deps ItemDependencies, maxLimit int) *ItemsHandler {
	return &ItemsHandler{deps: deps, maxLimit: maxLimit}
}

// HandleCreate handles POST /items.
func (h *ItemsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserFromContext(r.Context())
	var req model.ItemRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	item, err := h.deps.CreateItem(r.Context(), userID, req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

// HandleGet handles GET /items/{itemID}.
func (h *ItemsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	item, err := h.deps.Item(r.Context(), chi.URLParam(r, "itemID"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// HandleList handles GET /items?author=ID&limit=N&offset=M.
func (h *ItemsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	limit, err := queryLimit(r, h.maxLimit)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	page, err := h.deps.Items(r.Context(), r.URL.Query().Get("author"), limit, offset)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	page.Items = nonNil(page.Items)
	writeJSON(w, http.StatusOK, page)
}
