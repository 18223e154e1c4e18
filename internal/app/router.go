package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Directoryofsites/Finaxis-sub003/internal/cxc"
	"github.com/Directoryofsites/Finaxis-sub003/internal/observability"
	"github.com/Directoryofsites/Finaxis-sub003/internal/platform/httpx"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger     *slog.Logger
	Config     *Config
	CXCHandler *cxc.Handler
	Metrics    *observability.Metrics
}

// NewRouter constructs the chi.Router with Finaxis defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	r.Route("/cxc", func(r chi.Router) {
		params.CXCHandler.MountRoutes(r)
	})

	return r
}
