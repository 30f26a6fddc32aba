package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/juniorISO69960/schema.autobot.tf/internal/health"
	"github.com/juniorISO69960/schema.autobot.tf/internal/httputil"
	"github.com/juniorISO69960/schema.autobot.tf/internal/metrics"
	"github.com/juniorISO69960/schema.autobot.tf/internal/query"
	"github.com/juniorISO69960/schema.autobot.tf/internal/refresh"
	"github.com/juniorISO69960/schema.autobot.tf/internal/schema"
)

// Refresher is the part of refresh.Coordinator the HTTP layer uses.
type Refresher interface {
	Trigger(ctx context.Context) (refresh.Result, error)
	State() refresh.Status
}

// Options configures the HTTP server.
type Options struct {
	Addr string
	// WriteTimeout must cover a synchronous refresh, so it is derived from
	// the fetch timeout by the caller.
	WriteTimeout time.Duration
	// OpenAPI is served at /docs/openapi.yaml.
	OpenAPI []byte
	// TrustProxy takes the client address from forwarding headers.
	TrustProxy bool
}

// Server holds the HTTP server and its dependencies.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

type handlers struct {
	logger    *slog.Logger
	store     *schema.Store
	facade    *query.Facade
	refresher Refresher
	items     *itemValidator
	openapi   []byte
	trusted   bool
}

// NewServer creates a configured HTTP server.
func NewServer(opts Options, logger *slog.Logger, store *schema.Store, refresher Refresher) (*Server, error) {
	items, err := newItemValidator()
	if err != nil {
		return nil, err
	}
	h := &handlers{
		logger:    logger,
		store:     store,
		facade:    query.New(store),
		refresher: refresher,
		items:     items,
		openapi:   opts.OpenAPI,
		trusted:   opts.TrustProxy,
	}

	writeTimeout := opts.WriteTimeout
	if writeTimeout <= 0 {
		writeTimeout = 30 * time.Second
	}

	return &Server{
		httpServer: &http.Server{
			Addr:              opts.Addr,
			Handler:           h.router(),
			ReadTimeout:       10 * time.Second,
			ReadHeaderTimeout: 5 * time.Second,
			WriteTimeout:      writeTimeout,
			IdleTimeout:       120 * time.Second,
		},
		logger: logger,
	}, nil
}

// HTTPServer returns the underlying *http.Server for external control (e.g. shutdown).
func (s *Server) HTTPServer() *http.Server {
	return s.httpServer
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// router builds the middleware chain metrics -> request id -> client ip ->
// logging -> recoverer -> routes.
func (h *handlers) router() http.Handler {
	r := chi.NewRouter()
	r.Use(metrics.Middleware)
	r.Use(middleware.RequestID)
	r.Use(httputil.RemoteIP(h.trusted))
	r.Use(loggingMiddleware(h.logger))
	r.Use(middleware.Recoverer)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		failure(w, http.StatusNotFound, fmt.Sprintf("Route %s:%s not found", r.Method, r.URL.Path), nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		failure(w, http.StatusMethodNotAllowed, fmt.Sprintf("Method %s not allowed on %s", r.Method, r.URL.Path), nil)
	})

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/docs/openapi.yaml", http.StatusFound)
	})
	r.Get("/healthz", health.Healthz)
	r.Get("/readyz", health.Readyz(h.store.Ready))
	r.Method(http.MethodGet, "/metrics", metrics.Handler())
	r.Get("/docs/openapi.yaml", h.openAPI)

	r.Get("/schema", h.schemaDocument)
	r.Get("/schema/download", h.schemaDownload)
	r.Patch("/schema/refresh", h.schemaRefresh)
	r.Get("/schema/status", h.schemaStatus)

	for _, p := range query.Properties {
		r.Get("/properties/"+string(p), h.property(p))
	}
	r.Get("/properties/craftWeaponsByClass/{classChar}", h.classWeapons)

	r.Post("/getName/fromItemObject", h.nameFromItem)
	r.Post("/getName/fromSku", h.nameFromSKU)
	r.Post("/getSku/fromItemObject", h.skuFromItem)
	r.Post("/getSku/fromName", h.skuFromName)
	r.Post("/getItemObject/fromName", h.itemFromName)
	r.Post("/getItemObject/fromSku", h.itemFromSKU)
	r.Post("/getItem/fromDefindex", h.entryFromDefindex)
	r.Post("/getItem/fromName", h.entryFromName)
	r.Post("/getItem/fromSku", h.entryFromSKU)

	r.Get("/raw/schema/{key}", h.rawValue(schema.SectionSchema))
	r.Get("/raw/items_game/{key}", h.rawValue(schema.SectionItemsGame))

	return r
}

// probePath returns true for health/readiness probe paths that should not log at INFO.
func probePath(path string) bool {
	return path == "/healthz" || path == "/readyz" || path == "/metrics"
}

func loggingMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			level := slog.LevelInfo
			if probePath(r.URL.Path) {
				level = slog.LevelDebug
			}

			logger.Log(r.Context(), level, "request",
				"component", "api",
				"method", r.Method,
				"path", r.URL.Path,
				"route", chi.RouteContext(r.Context()).RoutePattern(),
				"status", strconv.Itoa(status),
				"duration_ms", time.Since(start).Milliseconds(),
				"remote_ip", r.RemoteAddr,
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}
