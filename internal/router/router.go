package router

import (
	"context"
	"encoding/json"
	"net/http"

	_ "prescription-reminder/docs"
	"prescription-reminder/internal/domain/reminders"
	"prescription-reminder/internal/domain/scans"
	"prescription-reminder/internal/middleware"
	"prescription-reminder/internal/notify"
	"prescription-reminder/internal/platform/logger"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Options struct {
	Reminders  *reminders.Service
	Scans      *scans.Service
	Hub        *notify.Hub
	Permission *notify.Permission

	// Opcional: si es nil no se expone /metrics.
	Gatherer prometheus.Gatherer

	// Armed reporta timers activos en /health; puede ser nil.
	Armed func() int

	Log logger.Logger

	// Ctx acota la vida de los websockets; nil => context.Background().
	Ctx context.Context
}

func NewRouter(opts Options) http.Handler {
	log := opts.Log
	if log == nil {
		log = logger.Nop()
	}
	ctx := opts.Ctx
	if ctx == nil {
		ctx = context.Background()
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.Recover(log))

	r.Get("/health", healthHandler(opts.Armed))

	if opts.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	}
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	// Rutas por módulo
	if opts.Reminders != nil {
		reminders.RegisterRoutes(r, opts.Reminders)
	}
	if opts.Scans != nil {
		scans.RegisterRoutes(r, opts.Scans)
	}
	if opts.Hub != nil {
		perm := opts.Permission
		if perm == nil {
			perm = notify.NewPermission(false)
		}
		notify.RegisterRoutes(ctx, r, opts.Hub, perm)
	}

	return r
}

func healthHandler(armed func() int) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		body := map[string]any{"status": "ok"}
		if armed != nil {
			body["timers"] = armed()
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(body)
	}
}
