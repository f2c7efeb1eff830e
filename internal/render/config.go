package render

import (
	"time"

	"slidecast/internal/pkg/errors"
)

// Config agrupa los knobs del pipeline. Todo se inyecta en la construcción;
// nada se lee de estado global.
type Config struct {
	// WorkRoot es la raíz bajo la cual cada job crea su session dir.
	WorkRoot string
	// FetchTimeout acota cada descarga individual.
	FetchTimeout time.Duration
	// MaxConcurrentFetches acota el fan-out de imágenes.
	MaxConcurrentFetches int
	// FallbackSeconds: si > 0 y el probe de duración falla, se usa esta
	// duración fija en lugar de fallar. En 0 el probe es estricto.
	FallbackSeconds float64
}

func (c Config) validate() error {
	if c.WorkRoot == "" {
		return errors.Config("work root is required")
	}
	if c.FallbackSeconds < 0 {
		return errors.Configf("negative fallback duration: %f", c.FallbackSeconds)
	}
	return nil
}
