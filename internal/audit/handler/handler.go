package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"remitguard/internal/audit"
	"remitguard/pkg/platform/httputil"
	"remitguard/pkg/requestcontext"
)

// Service defines the audit read operations the handler needs.
type Service interface {
	Query(ctx context.Context, filter audit.Filter) ([]*audit.Entry, error)
}

// Handler exposes the read-only audit trail. There are no write endpoints:
// audit rows are created only by the precheck flow.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts audit endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/v1/audit", h.HandleQuery)
}

// HandleQuery handles GET /v1/audit?decisionId=&from=&to=.
func (h *Handler) HandleQuery(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	filter, err := ParseQuery(r.URL.Query())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	entries, err := h.service.Query(ctx, filter)
	if err != nil {
		h.logger.ErrorContext(ctx, "audit query failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, ListResponse{Entries: FromEntries(entries)})
}
