package library

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/booruoss/booru/internal/platform/request"
	"github.com/booruoss/booru/internal/platform/respond"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/", h.list)
	router.Post("/", h.create)
	router.Get("/{id}", h.get)
	router.Put("/{id}", h.update)
	router.Delete("/{id}", h.delete)

	router.Get("/{id}/ignored-prefixes", h.listIgnoredPrefixes)
	router.Post("/{id}/ignored-prefixes", h.addIgnoredPrefix)
	router.Delete("/{id}/ignored-prefixes", h.removeIgnoredPrefix)
}

type createLibraryRequest struct {
	Name              string `json:"name"`
	Path              string `json:"path"`
	ScanIntervalHours int    `json:"scan_interval_hours"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	libs, err := h.service.List(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.OK(w, libs)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createLibraryRequest
	if err := requestutil.DecodeJSON(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	created, err := h.service.Create(r.Context(), req.Name, req.Path, req.ScanIntervalHours)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.Created(w, created)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	lib, err := h.service.Get(r.Context(), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.OK(w, lib)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var req createLibraryRequest
	if err := requestutil.DecodeJSON(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	lib := &Library{ID: id, Name: req.Name, Path: req.Path, ScanIntervalHours: req.ScanIntervalHours}
	if err := h.service.Update(r.Context(), lib); err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.NoContent(w)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.NoContent(w)
}

type ignoredPrefixRequest struct {
	RelativePath string `json:"relative_path"`
}

func (h *Handler) listIgnoredPrefixes(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	prefixes, err := h.service.ListIgnoredPrefixes(r.Context(), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.OK(w, prefixes)
}

func (h *Handler) addIgnoredPrefix(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var req ignoredPrefixRequest
	if err := requestutil.DecodeJSON(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	if err := h.service.AddIgnoredPrefix(r.Context(), id, req.RelativePath); err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.NoContent(w)
}

func (h *Handler) removeIgnoredPrefix(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var req ignoredPrefixRequest
	if err := requestutil.DecodeJSON(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	if err := h.service.RemoveIgnoredPrefix(r.Context(), id, req.RelativePath); err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.NoContent(w)
}

func idParam(r *http.Request) (int, error) {
	return strconv.Atoi(requestutil.ID(r, "id"))
}
