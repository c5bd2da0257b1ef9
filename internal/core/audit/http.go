package audit

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/booruoss/booru/internal/platform/request"
	"github.com/booruoss/booru/internal/platform/respond"
	"github.com/booruoss/booru/pkg/pagination"
)

// Handler exposes read-only access to the post change history. Rows are
// populated exclusively by database triggers, so this package has no
// write routes.
type Handler struct {
	repo Repository
}

func NewHandler(repo Repository) *Handler {
	return &Handler{repo: repo}
}

func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/posts/{postId}", h.listForPost)
}

func (h *Handler) listForPost(w http.ResponseWriter, r *http.Request) {
	postID, err := strconv.Atoi(requestutil.Param(r, "postId"))
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	params := pagination.FromRequest(r)
	entries, err := h.repo.ListForPost(r.Context(), postID, params.Limit, params.Offset())
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.OK(w, entries)
}
