package render

import (
	"fmt"
	"strings"

	"slidecast/internal/pkg/errors"
)

// Entry es una imagen con su tiempo de pantalla en segundos.
type Entry struct {
	Path    string
	Seconds float64
}

// Timeline es el schedule ordenado de imágenes que cubre la narración.
type Timeline struct {
	Entries []Entry
}

// BuildTimeline reparte totalSeconds en partes iguales entre las imágenes,
// preservando el orden de entrada. Con N=0 falla acá aunque el fetcher
// ya haya fallado antes con INSUFFICIENT_ASSETS.
func BuildTimeline(images []Asset, totalSeconds float64) (*Timeline, error) {
	if len(images) == 0 {
		return nil, errors.New(errors.CodeEmptyTimeline, "no images to build timeline")
	}
	if totalSeconds <= 0 {
		return nil, errors.Newf(errors.CodeEmptyTimeline, "non-positive total duration: %f", totalSeconds)
	}

	share := totalSeconds / float64(len(images))
	entries := make([]Entry, len(images))
	for i, img := range images {
		entries[i] = Entry{Path: img.LocalPath, Seconds: share}
	}
	return &Timeline{Entries: entries}, nil
}

// TotalSeconds suma los tiempos de pantalla de todas las entries.
func (t *Timeline) TotalSeconds() float64 {
	var sum float64
	for _, e := range t.Entries {
		sum += e.Seconds
	}
	return sum
}

// Manifest genera el input del concat demuxer: cada entry lleva su path y
// duration, y el path de la última imagen se repite al final SIN duration.
// Esa repetición terminal es obligatoria: marca el fin del último frame.
func (t *Timeline) Manifest() string {
	var b strings.Builder
	for _, e := range t.Entries {
		fmt.Fprintf(&b, "file '%s'\n", e.Path)
		fmt.Fprintf(&b, "duration %.3f\n", e.Seconds)
	}
	fmt.Fprintf(&b, "file '%s'\n", t.Entries[len(t.Entries)-1].Path)
	return b.String()
}
