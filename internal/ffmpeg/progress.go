package ffmpeg

import (
	"bufio"
	"context"
	"io"
	"strconv"
	"strings"
	"sync"
)

// scanProgress lee el stream key=value de `-progress pipe:1` y entrega el
// avance fraccional (0..1). Emite solo cuando la fracción avanza, para no
// inundar el sink.
func scanProgress(ctx context.Context, r io.Reader, totalSeconds float64, emit func(float64)) {
	scanner := bufio.NewScanner(r)
	last := -1.0

	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}

		key, value, ok := strings.Cut(strings.TrimSpace(scanner.Text()), "=")
		if !ok {
			continue
		}

		switch key {
		case "out_time_us", "out_time_ms":
			// Ambos campos llegan en microsegundos.
			us, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
			if err != nil || totalSeconds <= 0 {
				continue
			}
			fraction := clamp01(float64(us) / 1e6 / totalSeconds)
			if fraction > last {
				last = fraction
				emit(fraction)
			}
		case "progress":
			if strings.TrimSpace(value) == "end" && last < 1.0 {
				last = 1.0
				emit(1.0)
			}
		}
	}
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

// tailBuffer retiene los últimos max bytes escritos. Se usa para capturar
// el final del stderr de ffmpeg, que es donde aparece el error real.
type tailBuffer struct {
	mu  sync.Mutex
	buf []byte
	max int
}

func newTailBuffer(max int) *tailBuffer {
	return &tailBuffer{max: max}
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.buf = append(t.buf, p...)
	if len(t.buf) > t.max {
		t.buf = t.buf[len(t.buf)-t.max:]
	}
	return len(p), nil
}

func (t *tailBuffer) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return string(t.buf)
}
