package inventory

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/printhart/printhart/internal/platform/httpx"
)

// Handler wires HTTP endpoints for the inventory module.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs the inventory handler.
func NewHandler(logger *slog.Logger, service *Service, validate *validator.Validate) *Handler {
	return &Handler{logger: logger, service: service, validate: validate}
}

// MountRoutes registers inventory routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.handleList)
	r.Post("/", h.handleCreate)
	r.Get("/{id}", h.handleGet)
	r.Patch("/{id}", h.handleUpdate)
	r.Delete("/{id}", h.handleDelete)
	r.Get("/write-offs", h.handleListWriteOffs)
	r.Post("/write-offs", h.handleWriteOff)
	r.Get("/write-offs/totals", h.handleWriteOffTotals)
	r.Patch("/write-offs/{id}", h.handleUpdateWriteOff)
}

type listItemsResponse struct {
	Items []Item `json:"items"`
}

type listWriteOffsResponse struct {
	WriteOffs []WriteOff `json:"write_offs"`
	Total     int        `json:"total"`
}

type writeOffTotalsResponse struct {
	Totals []WriteOffTotal `json:"totals"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	var req ListItemsRequest
	if v := r.URL.Query().Get("in_stock"); v != "" {
		inStock, err := strconv.ParseBool(v)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "in_stock must be true or false")
			return
		}
		req.InStock = inStock
	}

	items, err := h.service.ListItems(r.Context(), req)
	if err != nil {
		h.logger.Error("list items", slog.String("error", err.Error()))
		httpx.RespondError(w, err)
		return
	}
	if items == nil {
		items = []Item{}
	}
	httpx.JSON(w, http.StatusOK, listItemsResponse{Items: items})
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateItemRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	item, err := h.service.CreateItem(r.Context(), req)
	if err != nil {
		h.logger.Error("create item", slog.String("error", err.Error()))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, item)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	item, err := h.service.GetItem(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, item)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	var req UpdateItemRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	item, err := h.service.UpdateItem(r.Context(), id, req)
	if err != nil {
		h.logger.Error("update item", slog.Int64("item_id", id), slog.String("error", err.Error()))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, item)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	if err := h.service.DeleteItem(r.Context(), id); err != nil {
		h.logger.Error("delete item", slog.Int64("item_id", id), slog.String("error", err.Error()))
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleWriteOff(w http.ResponseWriter, r *http.Request) {
	var req CreateWriteOffRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	wo, err := h.service.WriteOff(r.Context(), req)
	if err != nil {
		h.logger.Error("write off material",
			slog.String("material", req.Material),
			slog.String("error", err.Error()))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, wo)
}

func (h *Handler) handleUpdateWriteOff(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	var req UpdateWriteOffRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	wo, err := h.service.UpdateWriteOff(r.Context(), id, req)
	if err != nil {
		h.logger.Error("update write-off", slog.Int64("write_off_id", id), slog.String("error", err.Error()))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, wo)
}

func (h *Handler) handleListWriteOffs(w http.ResponseWriter, r *http.Request) {
	var req ListWriteOffsRequest
	q := r.URL.Query()
	if v := q.Get("material"); v != "" {
		req.Material = &v
	}
	if v := q.Get("limit"); v != "" {
		req.Limit, _ = strconv.Atoi(v)
	}
	if v := q.Get("offset"); v != "" {
		req.Offset, _ = strconv.Atoi(v)
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	writeOffs, total, err := h.service.ListWriteOffs(r.Context(), req)
	if err != nil {
		h.logger.Error("list write-offs", slog.String("error", err.Error()))
		httpx.RespondError(w, err)
		return
	}
	if writeOffs == nil {
		writeOffs = []WriteOff{}
	}
	httpx.JSON(w, http.StatusOK, listWriteOffsResponse{WriteOffs: writeOffs, Total: total})
}

func (h *Handler) handleWriteOffTotals(w http.ResponseWriter, r *http.Request) {
	totals, err := h.service.WriteOffTotalsByMaterial(r.Context())
	if err != nil {
		h.logger.Error("write-off totals", slog.String("error", err.Error()))
		httpx.RespondError(w, err)
		return
	}
	if totals == nil {
		totals = []WriteOffTotal{}
	}
	httpx.JSON(w, http.StatusOK, writeOffTotalsResponse{Totals: totals})
}

func (h *Handler) parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid item id")
		return 0, false
	}
	return id, true
}
