// Package api wires together the HTTP router, middleware chain, and all
// domain handlers into a runnable [http.Server].
package api

import (
	"log/slog"
	"net/http"

	"github.com/booruoss/booru/internal/platform/constants"
	"github.com/booruoss/booru/internal/platform/respond"
)

// HealthDependencies holds the injectable dependency checkers for the
// liveness/readiness probes.
type HealthDependencies struct {
	// CheckDatabase performs a shallow ping of the PostgreSQL pool.
	CheckDatabase func() error
}

type healthHandler struct {
	dependencies HealthDependencies
	logger       *slog.Logger
}

// NewHealthHandlers constructs the liveness and readiness [http.HandlerFunc] pair.
func NewHealthHandlers(deps HealthDependencies, logger *slog.Logger) (liveness, readiness http.HandlerFunc) {
	handler := &healthHandler{dependencies: deps, logger: logger}
	return handler.liveness, handler.readiness
}

// liveness handles GET /healthz: confirms the process is alive.
func (handler *healthHandler) liveness(w http.ResponseWriter, _ *http.Request) {
	respond.OK(w, map[string]string{
		constants.FieldStatus:  "ok",
		constants.FieldApp:     constants.AppName,
		constants.FieldVersion: constants.AppVersion,
	})
}

// readiness handles GET /readyz: verifies the database is reachable.
func (handler *healthHandler) readiness(w http.ResponseWriter, r *http.Request) {
	if handler.dependencies.CheckDatabase == nil {
		respond.OK(w, map[string]string{constants.FieldStatus: "ready"})
		return
	}

	if err := handler.dependencies.CheckDatabase(); err != nil {
		handler.logger.ErrorContext(r.Context(), "readiness_check_failed",
			slog.String("dependency", "postgres"), slog.Any("error", err))
		respond.JSON(w, http.StatusServiceUnavailable, map[string]string{constants.FieldStatus: "degraded"})
		return
	}

	respond.OK(w, map[string]string{constants.FieldStatus: "ready"})
}
