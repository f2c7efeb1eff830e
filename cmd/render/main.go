// Command render composes a single slideshow video from a JSON job
// description and writes the mp4 to disk. Useful for local testing and
// batch scripts; the HTTP API wraps the same pipeline.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"slidecast/internal/ffmpeg"
	"slidecast/internal/pkg/env"
	"slidecast/internal/pkg/logger"
	"slidecast/internal/ports"
	"slidecast/internal/render"
)

type jobSpec struct {
	JobID        string           `json:"job_id"`
	AudioRef     string           `json:"audio_ref"`
	ImageRefs    []string         `json:"image_refs"`
	Captions     []render.Caption `json:"captions"`
	ShowCaptions bool             `json:"show_captions"`
	TotalSeconds float64          `json:"total_seconds"`
}

func main() {
	specPath := flag.String("spec", "", "path to JSON job description (default: stdin)")
	outPath := flag.String("out", "output.mp4", "path for the rendered video")
	flag.Parse()

	log := logger.New(logger.Config{
		Level:       env.Str("LOG_LEVEL", "info"),
		Format:      env.Str("LOG_FORMAT", "text"),
		ServiceName: "slidecast-render",
		AddSource:   false,
	})

	var raw []byte
	var err error
	if *specPath == "" {
		raw, err = readAll(os.Stdin)
	} else {
		raw, err = os.ReadFile(*specPath)
	}
	if err != nil {
		log.LogFatal("failed to read job description", err)
	}

	var job jobSpec
	if err := json.Unmarshal(raw, &job); err != nil {
		log.LogFatal("failed to parse job description", err)
	}

	enc, err := ffmpeg.NewEncoder(ffmpeg.Config{
		FFmpegPath:    env.Str("FFMPEG_PATH", "ffmpeg"),
		FFprobePath:   env.Str("FFPROBE_PATH", "ffprobe"),
		CanvasWidth:   env.Int("CANVAS_WIDTH", 0),
		CanvasHeight:  env.Int("CANVAS_HEIGHT", 0),
		Preset:        env.Str("RENDER_PRESET", ""),
		SubtitleStyle: env.Str("SUBTITLE_STYLE", ""),
		EncodeTimeout: env.Duration("ENCODE_TIMEOUT", 10*time.Minute),
	}, log)
	if err != nil {
		log.LogFatal("failed to initialize encoder", err)
	}

	pipeline, err := render.New(render.Deps{
		Encoder: enc,
		Config: render.Config{
			WorkRoot:             env.Str("WORK_ROOT", os.TempDir()),
			FetchTimeout:         env.Duration("FETCH_TIMEOUT", 30*time.Second),
			MaxConcurrentFetches: env.Int("MAX_CONCURRENT_FETCHES", 4),
			FallbackSeconds:      env.Float("FALLBACK_SECONDS", 0),
		},
		Progress: progressLogger(log),
		Log:      log,
	})
	if err != nil {
		log.LogFatal("failed to initialize render pipeline", err)
	}

	// Ctrl-C cancela el render y dispara el cleanup de la sesión.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	result, err := pipeline.Render(ctx, render.Request{
		JobID:        job.JobID,
		AudioRef:     job.AudioRef,
		ImageRefs:    job.ImageRefs,
		Captions:     job.Captions,
		ShowCaptions: job.ShowCaptions,
		TotalSeconds: job.TotalSeconds,
	})
	if err != nil {
		log.LogFatal("render failed", err)
	}

	if err := os.WriteFile(*outPath, result.Video, 0o644); err != nil {
		log.LogFatal("failed to write output", err)
	}
	log.Info("render complete", "path", *outPath, "size", result.Size)
}

func progressLogger(log *logger.Logger) ports.ProgressSink {
	return ports.ProgressFunc(func(ctx context.Context, jobID string, fraction float64) {
		log.Info("render progress", "job_id", jobID, "progress", fmt.Sprintf("%.0f%%", fraction*100))
	})
}

func readAll(f *os.File) ([]byte, error) {
	info, err := f.Stat()
	if err == nil && info.Mode()&os.ModeCharDevice != 0 {
		return nil, fmt.Errorf("no job description on stdin; use -spec")
	}
	return io.ReadAll(f)
}
