// Package analytichttp exposes the reporting endpoints.
package analytichttp

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/printhart/printhart/internal/analytics"
	"github.com/printhart/printhart/internal/analytics/export"
	"github.com/printhart/printhart/internal/platform/httpx"
)

// Handler wires HTTP endpoints for reports.
type Handler struct {
	logger  *slog.Logger
	service *analytics.Service
	csv     *export.Writer
}

// NewHandler constructs the reports handler.
func NewHandler(logger *slog.Logger, service *analytics.Service) *Handler {
	return &Handler{logger: logger, service: service, csv: export.NewWriter()}
}

// MountRoutes registers report routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/summary", h.handleSummary)
	r.Get("/delivered.csv", h.handleDeliveredCSV)
}

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Summary(r.Context())
	if err != nil {
		h.logger.Error("compute summary", slog.String("error", err.Error()))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, summary)
}

func (h *Handler) handleDeliveredCSV(w http.ResponseWriter, r *http.Request) {
	rows, err := h.service.DeliveredOrders(r.Context())
	if err != nil {
		h.logger.Error("load delivered orders", slog.String("error", err.Error()))
		httpx.RespondError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="pedidos_entregados.csv"`)
	if err := h.csv.WriteDelivered(w, rows); err != nil {
		h.logger.Error("write delivered csv", slog.String("error", err.Error()))
	}
}
