package jobs

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/booruoss/booru/internal/platform/request"
	"github.com/booruoss/booru/internal/platform/respond"
	"github.com/booruoss/booru/pkg/pagination"
)

// Handler exposes the job engine's control surface over HTTP, a thin
// wrapper that performs no orchestration of its own.
type Handler struct {
	engine *Engine
}

func NewHandler(engine *Engine) *Handler {
	return &Handler{engine: engine}
}

func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/", h.available)
	router.Get("/active", h.active)
	router.Get("/history", h.history)
	router.Post("/{key}/start", h.start)
	router.Post("/executions/{executionId}/cancel", h.cancel)
}

func (h *Handler) available(w http.ResponseWriter, r *http.Request) {
	respond.OK(w, h.engine.GetAvailableJobs())
}

func (h *Handler) active(w http.ResponseWriter, r *http.Request) {
	respond.OK(w, h.engine.GetActiveJobs())
}

func (h *Handler) history(w http.ResponseWriter, r *http.Request) {
	params := pagination.FromRequest(r)

	executions, total, err := h.engine.GetJobHistory(r.Context(), params.Page, params.Limit)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.Paginated(w, executions, pagination.NewMeta(params.Page, params.Limit, total))
}

type startJobRequest struct {
	Mode Mode `json:"mode"`
}

func (h *Handler) start(w http.ResponseWriter, r *http.Request) {
	key := requestutil.Param(r, "key")

	var req startJobRequest
	_ = requestutil.DecodeJSON(r, &req)
	if req.Mode == "" {
		req.Mode = ModeMissing
	}

	executionID, err := h.engine.StartJob(r.Context(), key, req.Mode)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.Created(w, map[string]string{"execution_id": executionID})
}

func (h *Handler) cancel(w http.ResponseWriter, r *http.Request) {
	executionID := requestutil.Param(r, "executionId")
	h.engine.CancelJob(executionID)
	respond.NoContent(w)
}
