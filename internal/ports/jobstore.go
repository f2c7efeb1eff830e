package ports

import "context"

// CaptionRecord es un subtítulo almacenado junto al job.
type CaptionRecord struct {
	Text    string
	StartMS int64
	EndMS   int64
}

// JobRecord es lo mínimo que el pipeline necesita para renderizar por referencia:
// la narración, las imágenes ordenadas y los subtítulos opcionales.
type JobRecord struct {
	ID           string
	AudioRef     string
	ImageRefs    []string
	Captions     []CaptionRecord
	ShowCaptions bool
}

// JobStore: lookup de jobs en un data store externo (postgres hoy).
// El pipeline nunca escribe; el estado del job vive fuera de este servicio.
type JobStore interface {
	GetJob(ctx context.Context, jobID string) (*JobRecord, error)
}
