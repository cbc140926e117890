package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimid "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/rejoanahmed/starter-template-sub001/internal/infrastructure/http/handlers"
	"github.com/rejoanahmed/starter-template-sub001/internal/infrastructure/http/middleware"
)

// APIVersion is reported in the X-API-Version header.
const APIVersion = "1"

type RouterConfig struct {
	IssuesHandler *handlers.IssuesHandler
	LabelsHandler *handlers.LabelsHandler
	HealthHandler *handlers.HealthHandler
	// Auth resolves the bearer token into a user id; requests without one continue anonymously.
	Auth          func(http.Handler) http.Handler
	Log           zerolog.Logger
	Secure        func(http.Handler) http.Handler
	CORS          func(http.Handler) http.Handler
	IPRateLimit   func(http.Handler) http.Handler
	UserRateLimit func(http.Handler) http.Handler
	Metrics       bool // expose /metrics
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(chimid.RequestID)
	r.Use(chimid.RealIP)
	r.Use(middleware.EchoRequestID)
	r.Use(loggerMiddleware(cfg.Log))
	r.Use(chimid.Recoverer)
	if cfg.Metrics {
		r.Use(middleware.PrometheusMiddleware)
	}
	if cfg.Secure != nil {
		r.Use(cfg.Secure)
	}
	if cfg.CORS != nil {
		r.Use(cfg.CORS)
	}
	r.Use(middleware.APIVersion(APIVersion))
	r.Use(chimid.AllowContentType("application/json"))
	if cfg.IPRateLimit != nil {
		r.Use(cfg.IPRateLimit)
	}

	if cfg.HealthHandler != nil {
		r.Get("/health", cfg.HealthHandler.ServeHTTP)
	} else {
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"status":"ok"}`))
		})
	}
	if cfg.Metrics {
		r.Handle("/metrics", promhttp.Handler())
	}

	r.Route("/organizations/{orgID}", func(r chi.Router) {
		if cfg.Auth != nil {
			r.Use(cfg.Auth)
		}
		if cfg.UserRateLimit != nil {
			r.Use(cfg.UserRateLimit)
		}
		r.Get("/issues/mine", cfg.IssuesHandler.ListMine)
		r.Route("/teams/{teamID}", func(r chi.Router) {
			r.Route("/issues", func(r chi.Router) {
				r.Get("/", cfg.IssuesHandler.List)
				r.Post("/", cfg.IssuesHandler.Create)
				r.Get("/{issueID}", cfg.IssuesHandler.Get)
				r.Patch("/{issueID}", cfg.IssuesHandler.Update)
				r.Delete("/{issueID}", cfg.IssuesHandler.Delete)
			})
			r.Get("/labels", cfg.LabelsHandler.List)
			r.Post("/labels", cfg.LabelsHandler.Create)
		})
	})

	return r
}

func loggerMiddleware(log zerolog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimid.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)

			ev := log.Info()
			if ww.Status() >= http.StatusInternalServerError {
				ev = log.Error()
			}
			ev.
				Str("request_id", chimid.GetReqID(r.Context())).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Int("bytes", ww.BytesWritten()).
				Dur("duration", time.Since(start)).
				Msg("request")
		})
	}
}
