package ports

import "context"

// ProgressSink recibe el avance fraccional (0..1) del encode.
// Las implementaciones no deben bloquear al orquestador.
type ProgressSink interface {
	Publish(ctx context.Context, jobID string, fraction float64)
}

// ProgressFunc adapta una función como ProgressSink.
type ProgressFunc func(ctx context.Context, jobID string, fraction float64)

func (f ProgressFunc) Publish(ctx context.Context, jobID string, fraction float64) {
	f(ctx, jobID, fraction)
}
