package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"remitguard/internal/lists"
	"remitguard/internal/lists/models"
	"remitguard/pkg/domain"
	"remitguard/pkg/platform/httputil"
	"remitguard/pkg/requestcontext"
)

// Service defines the list operations the handler needs.
type Service interface {
	Upsert(ctx context.Context, req lists.UpsertRequest) (*models.Entry, error)
	List(ctx context.Context, listType *domain.ListType) ([]*models.Entry, error)
}

// Handler wires list administration endpoints to the list service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a list handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts list endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/v1/lists/entries", h.HandleUpsert)
	r.Get("/v1/lists/entries", h.HandleList)
}

// HandleUpsert handles POST /v1/lists/entries.
func (h *Handler) HandleUpsert(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, ok := httputil.DecodeJSON[UpsertEntryRequest](w, r, h.logger)
	if !ok {
		return
	}

	entry, err := h.service.Upsert(ctx, req.ToServiceRequest())
	if err != nil {
		h.logger.ErrorContext(ctx, "list entry upsert failed",
			"request_id", requestcontext.RequestID(ctx),
			"list_type", req.Type,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, FromEntry(entry))
}

// HandleList handles GET /v1/lists/entries?type=.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	listType, err := ParseListQuery(r.URL.Query())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	entries, err := h.service.List(ctx, listType)
	if err != nil {
		h.logger.ErrorContext(ctx, "list entries failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, ListResponse{Entries: FromEntries(entries)})
}
