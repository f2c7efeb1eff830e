package render

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"slidecast/internal/pkg/logger"
)

// Session es el workspace exclusivo de un render: un directorio propio,
// nunca compartido entre jobs, destruido al terminar (éxito o fallo).
type Session struct {
	ID        string
	Dir       string
	CreatedAt time.Time

	cleanupOnce sync.Once
}

// NewSession crea el directorio de trabajo keyed por un uuid fresco.
// El path se resuelve a absoluto porque el manifest del concat demuxer
// exige rutas absolutas.
func NewSession(workRoot string) (*Session, error) {
	id := uuid.NewString()

	dir, err := filepath.Abs(filepath.Join(workRoot, "sessions", id))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve session dir: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create session dir: %w", err)
	}

	return &Session{
		ID:        id,
		Dir:       dir,
		CreatedAt: time.Now().UTC(),
	}, nil
}

func (s *Session) AudioPath(ext string) string {
	if ext == "" {
		ext = ".mp3"
	}
	return filepath.Join(s.Dir, "narration"+ext)
}

func (s *Session) ImagePath(index int, ext string) string {
	if ext == "" {
		ext = ".jpg"
	}
	return filepath.Join(s.Dir, fmt.Sprintf("image_%03d%s", index, ext))
}

func (s *Session) ManifestPath() string {
	return filepath.Join(s.Dir, "timeline.txt")
}

func (s *Session) SubtitlePath() string {
	return filepath.Join(s.Dir, "captions.srt")
}

func (s *Session) OutputPath() string {
	return filepath.Join(s.Dir, "output.mp4")
}

// Cleanup borra el directorio completo de la sesión, exactamente una vez.
// Los fallos de limpieza se loggean y nunca escalan al caller.
func (s *Session) Cleanup(log *logger.Logger) {
	s.cleanupOnce.Do(func() {
		if err := os.RemoveAll(s.Dir); err != nil {
			if log != nil {
				log.Warn("session cleanup failed",
					"session_id", s.ID,
					"dir", s.Dir,
					"error", err.Error(),
				)
			}
			return
		}
		if log != nil {
			log.Debug("session cleaned up", "session_id", s.ID)
		}
	})
}
