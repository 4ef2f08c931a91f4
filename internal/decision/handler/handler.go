package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"remitguard/internal/audit"
	"remitguard/internal/decision"
	"remitguard/pkg/domain"
	"remitguard/pkg/platform/httputil"
	"remitguard/pkg/requestcontext"
)

// Service defines the decision operations the handler needs.
type Service interface {
	Precheck(ctx context.Context, input decision.PrecheckInput) (*decision.PrecheckResult, error)
	VerifyToken(ctx context.Context, token string) (*decision.VerifyResult, error)
	Get(ctx context.Context, id domain.DecisionID) (*decision.Record, []*audit.Entry, error)
}

// Handler maps the precheck API onto the decision service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts decision endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/v1/precheck", h.HandlePrecheck)
	r.Post("/v1/verify-decision-token", h.HandleVerifyToken)
	r.Get("/v1/decisions/{id}", h.HandleGetDecision)
}

// HandlePrecheck handles POST /v1/precheck.
func (h *Handler) HandlePrecheck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeJSON[PrecheckRequest](w, r, h.logger)
	if !ok {
		return
	}

	result, err := h.service.Precheck(ctx, req.ToInput())
	if err != nil {
		h.logger.ErrorContext(ctx, "precheck failed",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, FromPrecheckResult(result))
}

// HandleVerifyToken handles POST /v1/verify-decision-token.
func (h *Handler) HandleVerifyToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, ok := httputil.DecodeJSON[VerifyTokenRequest](w, r, h.logger)
	if !ok {
		return
	}

	result, err := h.service.VerifyToken(ctx, req.Token)
	if err != nil {
		if errors.Is(err, decision.ErrInvalidToken) {
			h.logger.InfoContext(ctx, "decision token rejected",
				"request_id", requestcontext.RequestID(ctx),
			)
			httputil.WriteJSON(w, http.StatusUnauthorized, InvalidTokenResponse{
				Valid: false,
				Error: "Invalid or expired token",
			})
			return
		}
		h.logger.ErrorContext(ctx, "token verification failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, FromVerifyResult(result))
}

// HandleGetDecision handles GET /v1/decisions/{id}.
func (h *Handler) HandleGetDecision(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	rawID := chi.URLParam(r, "id")

	id, err := ParseDecisionIDParam(rawID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	record, entries, err := h.service.Get(ctx, id)
	if err != nil {
		if errors.Is(err, decision.ErrDecisionNotFound) {
			httputil.WriteJSON(w, http.StatusNotFound, NotFoundResponse{
				Error: "Decision not found",
				ID:    rawID,
			})
			return
		}
		h.logger.ErrorContext(ctx, "decision lookup failed",
			"request_id", requestcontext.RequestID(ctx),
			"decision_id", rawID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, FromDecision(record, entries))
}
