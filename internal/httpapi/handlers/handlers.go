package handlers

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"slidecast/internal/pkg/logger"
	"slidecast/internal/ports"
	"slidecast/internal/render"
)

type Deps struct {
	Pipeline *render.Pipeline
	// Jobs resuelve render-by-reference; en nil el endpoint responde 503.
	Jobs ports.JobStore
	// Pool y RDB solo se usan para el deep health check.
	Pool *pgxpool.Pool
	RDB  *redis.Client
	// SP archiva el video final cuando está configurado.
	SP  ports.StorageProvider
	Log *logger.Logger
}

type Handler struct {
	pipeline *render.Pipeline
	jobs     ports.JobStore
	pool     *pgxpool.Pool
	rdb      *redis.Client
	sp       ports.StorageProvider
	log      *logger.Logger
}

func New(d Deps) *Handler {
	log := d.Log
	if log == nil {
		log = logger.NewDefault()
	}
	return &Handler{
		pipeline: d.Pipeline,
		jobs:     d.Jobs,
		pool:     d.Pool,
		rdb:      d.RDB,
		sp:       d.SP,
		log:      log.WithComponent("handlers"),
	}
}
