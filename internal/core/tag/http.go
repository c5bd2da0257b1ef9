package tag

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

	router.Get("/categories", h.listCategories)
	router.Post("/categories", h.createCategory)
}

type createTagRequest struct {
	Name          string `json:"name"`
	TagCategoryID *int   `json:"tag_category_id"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	tags, err := h.service.List(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.OK(w, tags)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createTagRequest
	if err := requestutil.DecodeJSON(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	created, err := h.service.Create(r.Context(), req.Name, req.TagCategoryID)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.Created(w, created)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(requestutil.ID(r, "id"))
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	t, err := h.service.Get(r.Context(), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.OK(w, t)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(requestutil.ID(r, "id"))
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var req createTagRequest
	if err := requestutil.DecodeJSON(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	if err := h.service.Update(r.Context(), id, req.Name, req.TagCategoryID); err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.NoContent(w)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(requestutil.ID(r, "id"))
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

func (h *Handler) listCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.service.ListCategories(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.OK(w, cats)
}

type createCategoryRequest struct {
	Name      string `json:"name"`
	Color     string `json:"color"`
	SortOrder int    `json:"sort_order"`
}

func (h *Handler) createCategory(w http.ResponseWriter, r *http.Request) {
	var req createCategoryRequest
	if err := requestutil.DecodeJSON(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	created, err := h.service.CreateCategory(r.Context(), &TagCategory{Name: req.Name, Color: req.Color, SortOrder: req.SortOrder})
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.Created(w, created)
}
