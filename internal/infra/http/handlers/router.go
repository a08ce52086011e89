package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/xavierca1/agency-funnel/internal/infra/http/middleware"
)

type RouterConfig struct {
	Leads          *LeadHandler
	MQLs           *MQLHandler
	SQLs           *SQLHandler
	Health         *HealthHandler
	Logger         *zap.Logger
	AllowedOrigins []string

	// TrustProxy takes the client IP from X-Forwarded-For / X-Real-IP.
	// Only enable it behind a proxy that overwrites those headers.
	TrustProxy bool
}

func NewRouter(cfg RouterConfig) http.Handler {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	if cfg.TrustProxy {
		r.Use(chimw.RealIP)
	}
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))
	r.Use(optionsOK)

	if cfg.Health != nil {
		r.Get("/health", cfg.Health.Handle)
	}
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/leads", func(r chi.Router) {
		r.Get("/", cfg.Leads.ListLeads)
		r.Post("/", cfg.Leads.CaptureLead)
		r.Get("/{id}", cfg.Leads.GetLead)
		r.Put("/{id}", cfg.Leads.UpdateStatus)
	})
	r.Route("/mqls", func(r chi.Router) {
		r.Get("/", cfg.MQLs.ListMQLs)
		r.Put("/{id}", cfg.MQLs.UpdateStatus)
	})
	r.Route("/sqls", func(r chi.Router) {
		r.Get("/", cfg.SQLs.ListSQLs)
		r.Put("/{id}", cfg.SQLs.UpdateStatus)
	})

	return r
}

// optionsOK answers any OPTIONS request that is not a CORS preflight with
// an empty 200, whatever the path.
func optionsOK(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
