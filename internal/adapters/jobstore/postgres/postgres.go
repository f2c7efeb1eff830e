package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"slidecast/internal/ports"
)

var ErrJobNotFound = errors.New("render job not found")

// Store implements ports.JobStore sobre postgres.
// El pipeline solo lee; el estado del job lo maneja el servicio dueño de la tabla.
type Store struct {
	db *pgxpool.Pool
}

func New(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

func (s *Store) GetJob(ctx context.Context, jobID string) (*ports.JobRecord, error) {
	var (
		audioRef     string
		imageRefsRaw string
		showCaptions bool
	)

	err := s.db.QueryRow(ctx, `
		SELECT audio_ref, image_refs_json, COALESCE(show_captions, false)
		FROM render_jobs
		WHERE id=$1 AND deleted_at IS NULL
	`, jobID).Scan(&audioRef, &imageRefsRaw, &showCaptions)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrJobNotFound
		}
		return nil, err
	}

	var imageRefs []string
	if err := json.Unmarshal([]byte(imageRefsRaw), &imageRefs); err != nil {
		return nil, err
	}

	// Normalizar: refs vacías no aportan nada al timeline
	refs := make([]string, 0, len(imageRefs))
	for _, r := range imageRefs {
		if r = strings.TrimSpace(r); r != "" {
			refs = append(refs, r)
		}
	}

	captions, err := s.fetchCaptions(ctx, jobID)
	if err != nil {
		return nil, err
	}

	return &ports.JobRecord{
		ID:           jobID,
		AudioRef:     strings.TrimSpace(audioRef),
		ImageRefs:    refs,
		Captions:     captions,
		ShowCaptions: showCaptions,
	}, nil
}

func (s *Store) fetchCaptions(ctx context.Context, jobID string) ([]ports.CaptionRecord, error) {
	rows, err := s.db.Query(ctx, `
		SELECT text, start_ms, end_ms
		FROM render_captions
		WHERE job_id=$1
		ORDER BY idx ASC
	`, jobID)
	if err != nil {
		// La tabla de captions es opcional en instalaciones viejas
		if isUndefinedTable(err) {
			return nil, nil
		}
		return nil, err
	}
	defer rows.Close()

	var out []ports.CaptionRecord
	for rows.Next() {
		var c ports.CaptionRecord
		if err := rows.Scan(&c.Text, &c.StartMS, &c.EndMS); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
