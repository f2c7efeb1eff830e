// Package ffmpeg wraps the external ffmpeg/ffprobe binaries used by the
// render pipeline. Tool paths and output policy are injected via Config;
// nothing is read from ambient global state.
package ffmpeg

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"slidecast/internal/pkg/errors"
	"slidecast/internal/pkg/logger"
	"slidecast/internal/ports"
)

// Preset tiers for the encode step.
const (
	PresetFast    = "fast"
	PresetQuality = "quality"
)

// DefaultSubtitleStyle es el estilo fijo para el burn-in de subtítulos.
const DefaultSubtitleStyle = "FontName=Arial,FontSize=24,PrimaryColour=&H00FFFFFF,OutlineColour=&H00000000,BorderStyle=1,Outline=2,Shadow=1,MarginV=30"

// Config holds encoder construction options.
type Config struct {
	// FFmpegPath and FFprobePath are the binaries to invoke.
	FFmpegPath  string
	FFprobePath string
	// CanvasWidth and CanvasHeight define the output canvas.
	CanvasWidth  int
	CanvasHeight int
	// Preset selects the encode tier (fast or quality).
	Preset string
	// SubtitleStyle is the force_style string for burned-in captions.
	SubtitleStyle string
	// EncodeTimeout bounds a single compose invocation (0 = unbounded).
	EncodeTimeout time.Duration
}

// Encoder drives ffmpeg subprocess invocations.
type Encoder struct {
	cfg Config
	log *logger.Logger
}

// NewEncoder validates the configuration and returns an Encoder.
// Missing or unresolvable tool paths fail with CONFIG_ERROR before any work.
func NewEncoder(cfg Config, log *logger.Logger) (*Encoder, error) {
	if log == nil {
		log = logger.NewDefault()
	}
	log = log.WithComponent("ffmpeg")

	if cfg.FFmpegPath == "" {
		return nil, errors.Config("ffmpeg path is required")
	}
	if cfg.FFprobePath == "" {
		return nil, errors.Config("ffprobe path is required")
	}
	if _, err := exec.LookPath(cfg.FFmpegPath); err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeConfig, "ffmpeg.new", "ffmpeg binary not found")
	}
	if _, err := exec.LookPath(cfg.FFprobePath); err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeConfig, "ffmpeg.new", "ffprobe binary not found")
	}

	if cfg.CanvasWidth <= 0 {
		cfg.CanvasWidth = 1280
	}
	if cfg.CanvasHeight <= 0 {
		cfg.CanvasHeight = 1080
	}
	if cfg.Preset == "" {
		cfg.Preset = PresetFast
	}
	if cfg.Preset != PresetFast && cfg.Preset != PresetQuality {
		return nil, errors.Configf("unknown encode preset: %s", cfg.Preset)
	}
	if cfg.SubtitleStyle == "" {
		cfg.SubtitleStyle = DefaultSubtitleStyle
	}

	return &Encoder{cfg: cfg, log: log}, nil
}

// ComposeInput describes a single slideshow encode.
type ComposeInput struct {
	JobID        string
	ManifestPath string
	AudioPath    string
	// SubtitlePath vacío => sin burn-in
	SubtitlePath string
	OutputPath   string
	// TotalDuration en segundos; se usa para calcular el progreso fraccional.
	TotalDuration float64
	Progress      ports.ProgressSink
}

// Compose invokes ffmpeg with the concat-demuxer manifest and the audio
// track, burning in subtitles when a subtitle file is supplied. Progress is
// parsed from ffmpeg's -progress stream and delivered to in.Progress without
// blocking the encode. Process failure returns ENCODE_ERROR carrying the
// captured stderr tail. Cancellation terminates the subprocess.
func (e *Encoder) Compose(ctx context.Context, in ComposeInput) error {
	log := e.log.FromContext(ctx)

	if e.cfg.EncodeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.cfg.EncodeTimeout)
		defer cancel()
	}

	args := e.composeArgs(in)
	log.Debug("invoking ffmpeg", "args", args)

	cmd := exec.CommandContext(ctx, e.cfg.FFmpegPath, args...)

	stderr := newTailBuffer(4096)
	cmd.Stderr = stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return errors.WrapWithCode(err, errors.CodeEncode, "ffmpeg.compose", "failed to open progress pipe")
	}

	if err := cmd.Start(); err != nil {
		return errors.WrapWithCode(err, errors.CodeEncode, "ffmpeg.compose", "failed to start ffmpeg")
	}

	// El scanner corre aparte: el encode nunca espera al sink.
	done := make(chan struct{})
	go func() {
		defer close(done)
		scanProgress(ctx, stdout, in.TotalDuration, func(fraction float64) {
			if in.Progress != nil {
				in.Progress.Publish(ctx, in.JobID, fraction)
			}
		})
	}()

	err = cmd.Wait()
	<-done

	if err != nil {
		if ctx.Err() != nil {
			return errors.WrapWithCode(ctx.Err(), errors.CodeEncode, "ffmpeg.compose", "encode canceled").
				WithField("stderr", stderr.String())
		}
		return errors.WrapWithCode(err, errors.CodeEncode, "ffmpeg.compose", "ffmpeg exited with error").
			WithField("stderr", stderr.String())
	}

	if in.Progress != nil {
		in.Progress.Publish(ctx, in.JobID, 1.0)
	}
	return nil
}

// composeArgs construye la línea de comandos completa del encode.
func (e *Encoder) composeArgs(in ComposeInput) []string {
	args := []string{
		"-y",
		"-f", "concat",
		"-safe", "0",
		"-i", in.ManifestPath,
		"-i", in.AudioPath,
		"-vf", e.videoFilter(in.SubtitlePath),
		"-c:v", "libx264",
	}

	switch e.cfg.Preset {
	case PresetQuality:
		args = append(args, "-preset", "medium", "-b:a", "192k")
	default:
		args = append(args, "-preset", "veryfast", "-crf", "23", "-b:a", "128k")
	}

	args = append(args,
		"-c:a", "aac",
		"-pix_fmt", "yuv420p",
		"-movflags", "+faststart",
		"-progress", "pipe:1",
		"-nostats",
		in.OutputPath,
	)
	return args
}

// videoFilter arma la cadena scale+pad (letterbox centrado) y, si hay
// archivo de subtítulos, agrega el burn-in con estilo fijo.
func (e *Encoder) videoFilter(subtitlePath string) string {
	w, h := e.cfg.CanvasWidth, e.cfg.CanvasHeight
	vf := fmt.Sprintf(
		"scale=%d:%d:force_original_aspect_ratio=decrease,pad=%d:%d:(ow-iw)/2:(oh-ih)/2",
		w, h, w, h,
	)
	if subtitlePath != "" {
		vf += fmt.Sprintf(",subtitles=%s:force_style='%s'", subtitlePath, e.cfg.SubtitleStyle)
	}
	return vf
}

// Probe inspects the audio container metadata and returns the exact
// duration in seconds without decoding. Failure returns PROBE_ERROR.
func (e *Encoder) Probe(ctx context.Context, mediaPath string) (float64, error) {
	cmd := exec.CommandContext(ctx, e.cfg.FFprobePath,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		mediaPath,
	)

	out, err := cmd.Output()
	if err != nil {
		return 0, errors.WrapWithCode(err, errors.CodeProbe, "ffmpeg.probe", "ffprobe failed")
	}

	seconds, err := parseProbeDuration(string(out))
	if err != nil {
		return 0, errors.WrapWithCode(err, errors.CodeProbe, "ffmpeg.probe", "invalid ffprobe duration")
	}
	return seconds, nil
}

func parseProbeDuration(raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	if s == "" || s == "N/A" {
		return 0, fmt.Errorf("no duration in probe output")
	}
	seconds, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if seconds <= 0 {
		return 0, fmt.Errorf("non-positive duration: %f", seconds)
	}
	return seconds, nil
}
