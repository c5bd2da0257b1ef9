package duplicate

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/booruoss/booru/internal/platform/request"
	"github.com/booruoss/booru/internal/platform/respond"
)

// Handler exposes duplicate-group listing and the resolution operations of
// [Resolver] over HTTP (§4.7).
type Handler struct {
	resolver *Resolver
}

func NewHandler(resolver *Resolver) *Handler {
	return &Handler{resolver: resolver}
}

func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/", h.list)
	router.Get("/{id}", h.get)

	router.Post("/resolve-all-exact", h.resolveAllExact)
	router.Post("/resolve-all", h.resolveAll)
	router.Post("/resolve-all-same-folder", h.resolveAllSameFolder)
	router.Post("/mark-all-unresolved", h.markAllUnresolved)

	router.Post("/{id}/keep-one", h.keepOne)
	router.Post("/{id}/exclude-one", h.excludeOne)
	router.Post("/{id}/delete-one", h.deleteOne)
	router.Post("/{id}/resolve-same-folder", h.resolveSameFolder)
	router.Post("/{id}/keep-all", h.keepAll)
	router.Post("/{id}/mark-unresolved", h.markUnresolved)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	var resolved *bool
	if v := r.URL.Query().Get("resolved"); v != "" {
		b := v == "true"
		resolved = &b
	}
	var groupType *GroupType
	if v := r.URL.Query().Get("type"); v != "" {
		t := GroupType(v)
		groupType = &t
	}

	groups, err := h.resolver.List(r.Context(), resolved, groupType)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.OK(w, groups)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	g, err := h.resolver.Get(r.Context(), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.OK(w, g)
}

type postIDRequest struct {
	PostID int `json:"post_id"`
}

func (h *Handler) keepOne(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	var req postIDRequest
	if err := requestutil.DecodeJSON(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}
	if err := h.resolver.KeepOne(r.Context(), id, req.PostID); err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.NoContent(w)
}

func (h *Handler) excludeOne(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	var req postIDRequest
	if err := requestutil.DecodeJSON(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}
	if err := h.resolver.ExcludeOne(r.Context(), id, req.PostID); err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.NoContent(w)
}

func (h *Handler) deleteOne(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	var req postIDRequest
	if err := requestutil.DecodeJSON(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}
	if err := h.resolver.DeleteOneWithFile(r.Context(), id, req.PostID); err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.NoContent(w)
}

func (h *Handler) resolveSameFolder(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	if err := h.resolver.ResolveSameFolderGroup(r.Context(), id); err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.NoContent(w)
}

func (h *Handler) keepAll(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	if err := h.resolver.KeepAll(r.Context(), id); err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.NoContent(w)
}

func (h *Handler) markUnresolved(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	if err := h.resolver.MarkUnresolved(r.Context(), id); err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.NoContent(w)
}

func (h *Handler) resolveAllExact(w http.ResponseWriter, r *http.Request) {
	count, err := h.resolver.ResolveAllExact(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.OK(w, map[string]int{"resolved": count})
}

func (h *Handler) resolveAll(w http.ResponseWriter, r *http.Request) {
	count, err := h.resolver.ResolveAll(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.OK(w, map[string]int{"resolved": count})
}

func (h *Handler) resolveAllSameFolder(w http.ResponseWriter, r *http.Request) {
	exactOnly := r.URL.Query().Get("exact_only") == "true"
	count, err := h.resolver.ResolveAllSameFolder(r.Context(), exactOnly)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.OK(w, map[string]int{"resolved": count})
}

func (h *Handler) markAllUnresolved(w http.ResponseWriter, r *http.Request) {
	if err := h.resolver.MarkAllUnresolved(r.Context()); err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.NoContent(w)
}

func idParam(r *http.Request) (int, error) {
	return strconv.Atoi(requestutil.ID(r, "id"))
}
