package redispub

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Publisher publica el avance del encode en un canal pub/sub por job.
// Los clientes pueden suscribirse a "<prefix>:<job_id>" para observar progreso.
type Publisher struct {
	rdb    *redis.Client
	prefix string
}

func New(rdb *redis.Client, prefix string) *Publisher {
	if prefix == "" {
		prefix = "slidecast:progress"
	}
	return &Publisher{rdb: rdb, prefix: prefix}
}

// Publish nunca bloquea al orquestador: el publish corre con timeout corto
// y los errores se descartan (el progreso es best-effort).
func (p *Publisher) Publish(ctx context.Context, jobID string, fraction float64) {
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	defer cancel()

	channel := p.prefix + ":" + jobID
	payload := strconv.FormatFloat(fraction, 'f', 4, 64)
	_ = p.rdb.Publish(pubCtx, channel, payload).Err()
}
