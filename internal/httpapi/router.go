package httpapi

import (
	"net/http"
	"os"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"slidecast/internal/httpapi/handlers"
	"slidecast/internal/httpkit"
	"slidecast/internal/pkg/logger"
	"slidecast/internal/pkg/middleware"
	"slidecast/internal/ports"
	"slidecast/internal/render"
)

type Deps struct {
	Pipeline *render.Pipeline
	Jobs     ports.JobStore
	Pool     *pgxpool.Pool
	RDB      *redis.Client
	SP       ports.StorageProvider
	Log      *logger.Logger
}

func NewRouter(d Deps) http.Handler {
	log := d.Log
	if log == nil {
		log = logger.NewDefault()
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logging(log))
	r.Use(middleware.Recovery(log))

	// ---- CORS (Swagger UI + Frontend futuro) ----
	allowedOrigins := envCSV("CORS_ALLOWED_ORIGINS", []string{
		"http://localhost:8081",
		"http://localhost:5173",
	})
	r.Use(httpkit.CORS(httpkit.CORSOptions{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: false,
		MaxAgeSeconds:    600,
	}))

	h := handlers.New(handlers.Deps{
		Pipeline: d.Pipeline,
		Jobs:     d.Jobs,
		Pool:     d.Pool,
		RDB:      d.RDB,
		SP:       d.SP,
		Log:      log,
	})

	// ---- HEALTH ----
	r.Get("/health", h.Health)

	// ---- RENDER ----
	// Dos entry points, un solo pipeline compartido
	r.Post("/render", h.PostRender)
	r.Post("/jobs/{jobId}/render", h.PostRenderJob)

	return r
}

func envCSV(key string, def []string) []string {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
