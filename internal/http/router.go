// Package httpapi assembles the public HTTP surface.
package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"remitguard/internal/platform/metrics"
	"remitguard/pkg/platform/httputil"
	"remitguard/pkg/platform/middleware/admin"
	"remitguard/pkg/platform/middleware/metadata"
	request "remitguard/pkg/platform/middleware/request"
	"remitguard/pkg/platform/middleware/requesttime"
)

// Registrar mounts a handler's routes.
type Registrar interface {
	Register(r chi.Router)
}

// Deps carries everything the router mounts.
type Deps struct {
	Logger     *slog.Logger
	Metrics    *metrics.Metrics
	AdminToken string

	Decisions Registrar
	Lists     Registrar
	Audit     Registrar
}

// NewRouter wires middleware and every endpoint. List administration sits
// behind the admin token guard.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(request.RequestID)
	r.Use(request.Recovery(d.Logger))
	r.Use(request.Logger(d.Logger))
	r.Use(metadata.ClientMetadata)
	r.Use(requesttime.Middleware)
	if d.Metrics != nil {
		r.Use(d.Metrics.Middleware)
		r.Method(http.MethodGet, "/metrics", d.Metrics.Handler())
	}

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteJSON(w, http.StatusNotFound, map[string]string{"error": "Not Found"})
	})

	d.Decisions.Register(r)
	d.Audit.Register(r)
	r.Group(func(r chi.Router) {
		r.Use(admin.RequireAdminToken(d.AdminToken, d.Logger))
		d.Lists.Register(r)
	})

	return otelhttp.NewHandler(r, "remitguard.http")
}
