package render

import (
	"context"
	"os"

	"golang.org/x/sync/errgroup"

	"slidecast/internal/ffmpeg"
	"slidecast/internal/pkg/errors"
	"slidecast/internal/pkg/logger"
	"slidecast/internal/ports"
)

// Deps son las dependencias del pipeline.
type Deps struct {
	Encoder  *ffmpeg.Encoder
	Config   Config
	Progress ports.ProgressSink
	Log      *logger.Logger
}

// Pipeline compone un slideshow con narración a partir de un Request.
// Es el núcleo compartido detrás de los dos entry points (render explícito
// y render por job id); no maneja colas ni persistencia.
type Pipeline struct {
	enc      *ffmpeg.Encoder
	cfg      Config
	progress ports.ProgressSink
	fetcher  *Fetcher
	log      *logger.Logger
}

func New(d Deps) (*Pipeline, error) {
	if d.Encoder == nil {
		return nil, errors.Config("encoder is required")
	}
	if err := d.Config.validate(); err != nil {
		return nil, err
	}

	log := d.Log
	if log == nil {
		log = logger.NewDefault()
	}
	log = log.WithComponent("pipeline")

	return &Pipeline{
		enc:      d.Encoder,
		cfg:      d.Config,
		progress: d.Progress,
		fetcher:  NewFetcher(d.Config.FetchTimeout, d.Config.MaxConcurrentFetches, log),
		log:      log,
	}, nil
}

// job lleva el estado de ciclo de vida de una invocación.
type job struct {
	id     string
	status Status
}

func (p *Pipeline) transition(log *logger.Logger, j *job, next Status) {
	log.Debug("job transition", "from", string(j.status), "to", string(next))
	j.status = next
}

func (p *Pipeline) fail(log *logger.Logger, j *job, terminal Status, cause error) error {
	p.transition(log, j, terminal)

	var appErr *errors.Error
	if errors.As(cause, &appErr) {
		log.Error("render failed",
			"code", string(appErr.Code),
			"op", appErr.Op,
			"message", appErr.Message,
		)
	} else {
		log.Error("render failed", "error", cause.Error())
	}
	return cause
}

// Render ejecuta el flujo completo. Un solo outcome terminal: Result o error.
func (p *Pipeline) Render(ctx context.Context, req Request) (*Result, error) {
	log := p.log.FromContext(ctx)

	// 1. Validar el request antes de tocar disco o red
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	// 2. Session exclusiva + cleanup garantizado en todo exit path
	sess, err := NewSession(p.cfg.WorkRoot)
	if err != nil {
		return nil, errors.Wrap(err, "render.session", "failed to create session")
	}
	defer sess.Cleanup(log)

	jobID := req.JobID
	if jobID == "" {
		jobID = sess.ID
	}
	log = log.WithJobID(jobID)
	j := &job{id: jobID, status: StatusCreated}

	// 3. Fan-out: audio e imágenes en paralelo, join antes del timeline
	p.transition(log, j, StatusFetchingAssets)

	var (
		audio  *Asset
		images []Asset
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a, err := p.fetcher.FetchAudio(gctx, sess, req.AudioRef)
		if err != nil {
			return errors.Wrap(err, "render.fetch", "audio fetch failed")
		}
		audio = a
		return nil
	})
	g.Go(func() error {
		imgs, err := p.fetcher.FetchImages(gctx, sess, req.ImageRefs)
		if err != nil {
			return err
		}
		images = imgs
		return nil
	})
	if err := g.Wait(); err != nil {
		if errors.IsCode(err, errors.CodeInsufficientAssets) {
			return nil, p.fail(log, j, StatusInsufficientAssets, err)
		}
		return nil, p.fail(log, j, StatusFailed, err)
	}
	p.transition(log, j, StatusAssetsReady)

	// 4. Duración autoritativa de la narración
	totalSeconds := req.TotalSeconds
	if totalSeconds <= 0 {
		totalSeconds, err = p.resolveDuration(ctx, log, audio.LocalPath)
		if err != nil {
			return nil, p.fail(log, j, StatusFailed, err)
		}
	}

	// 5. Timeline + manifest
	p.transition(log, j, StatusBuildingTimeline)
	timeline, err := BuildTimeline(images, totalSeconds)
	if err != nil {
		return nil, p.fail(log, j, StatusFailed, err)
	}
	if err := os.WriteFile(sess.ManifestPath(), []byte(timeline.Manifest()), 0o644); err != nil {
		return nil, p.fail(log, j, StatusFailed, errors.Wrap(err, "render.manifest", "failed to write manifest"))
	}

	// 6. Subtítulos: solo si hay captions Y el flag está activo
	subtitlePath := ""
	if req.ShowCaptions && len(req.Captions) > 0 {
		if err := os.WriteFile(sess.SubtitlePath(), EncodeSubtitles(req.Captions), 0o644); err != nil {
			return nil, p.fail(log, j, StatusFailed, errors.Wrap(err, "render.subtitles", "failed to write subtitle track"))
		}
		subtitlePath = sess.SubtitlePath()
		p.transition(log, j, StatusSubtitlesEncoded)
	} else {
		p.transition(log, j, StatusSubtitlesSkipped)
	}

	// 7. Encode
	p.transition(log, j, StatusEncoding)
	log.Info("starting encode",
		"images", len(images),
		"duration_s", totalSeconds,
		"captions", subtitlePath != "",
	)
	err = p.enc.Compose(ctx, ffmpeg.ComposeInput{
		JobID:         jobID,
		ManifestPath:  sess.ManifestPath(),
		AudioPath:     audio.LocalPath,
		SubtitlePath:  subtitlePath,
		OutputPath:    sess.OutputPath(),
		TotalDuration: totalSeconds,
		Progress:      p.progress,
	})
	if err != nil {
		return nil, p.fail(log, j, StatusFailed, err)
	}

	// 8. Recolectar el artefacto antes de que el cleanup borre la sesión
	result, err := collectOutput(sess.OutputPath())
	if err != nil {
		return nil, p.fail(log, j, StatusFailed, errors.Wrap(err, "render.collect", "failed to collect output"))
	}

	p.transition(log, j, StatusSucceeded)
	log.Info("render completed", "size_bytes", result.Size)
	return result, nil
}

// resolveDuration probea el container del audio. Con FallbackSeconds
// configurado el fallo de probe degrada a la duración fija; si no, es fatal.
func (p *Pipeline) resolveDuration(ctx context.Context, log *logger.Logger, audioPath string) (float64, error) {
	seconds, err := p.enc.Probe(ctx, audioPath)
	if err != nil {
		if p.cfg.FallbackSeconds > 0 {
			log.Warn("audio probe failed, using fallback duration",
				"fallback_s", p.cfg.FallbackSeconds,
				"error", err.Error(),
			)
			return p.cfg.FallbackSeconds, nil
		}
		return 0, err
	}
	return seconds, nil
}

func validateRequest(req Request) error {
	if req.AudioRef == "" {
		return errors.ValidationField("audio_ref", "audio reference is required")
	}
	if len(req.ImageRefs) == 0 {
		return errors.ValidationField("image_refs", "at least one image reference is required")
	}
	for i, c := range req.Captions {
		if c.StartMS >= c.EndMS {
			return errors.Validationf("caption %d: start must be before end", i)
		}
	}
	return nil
}
