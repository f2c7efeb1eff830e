package render

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"slidecast/internal/pkg/errors"
	"slidecast/internal/pkg/logger"
)

// Fetcher resuelve referencias (data URI o URL remota) a bytes locales.
type Fetcher struct {
	client      *http.Client
	maxParallel int
	log         *logger.Logger
}

func NewFetcher(timeout time.Duration, maxParallel int, log *logger.Logger) *Fetcher {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	if maxParallel <= 0 {
		maxParallel = 4
	}
	if log == nil {
		log = logger.NewDefault()
	}
	return &Fetcher{
		client:      &http.Client{Timeout: timeout},
		maxParallel: maxParallel,
		log:         log.WithComponent("fetcher"),
	}
}

// Fetch materializa una referencia en destination. Data URIs se decodifican
// sin tocar la red; el resto va por HTTP GET.
func (f *Fetcher) Fetch(ctx context.Context, ref, destination string) error {
	if strings.HasPrefix(ref, "data:") {
		return f.decodeInline(ref, destination)
	}
	return f.fetchRemote(ctx, ref, destination)
}

func (f *Fetcher) decodeInline(ref, destination string) error {
	_, body, ok := splitDataURI(ref)
	if !ok {
		return errors.New(errors.CodeDecode, "malformed data URI")
	}

	raw, err := base64.StdEncoding.DecodeString(body)
	if err != nil {
		return errors.WrapWithCode(err, errors.CodeDecode, "fetch.inline", "invalid base64 payload")
	}

	if err := os.WriteFile(destination, raw, 0o644); err != nil {
		return fmt.Errorf("failed to write inline asset: %w", err)
	}
	return nil
}

func (f *Fetcher) fetchRemote(ctx context.Context, ref, destination string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return errors.WrapWithCode(err, errors.CodeNetwork, "fetch.remote", "invalid asset URL")
	}

	res, err := f.client.Do(req)
	if err != nil {
		return errors.WrapWithCode(err, errors.CodeNetwork, "fetch.remote", "asset download failed")
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return errors.Newf(errors.CodeNetwork, "asset download returned http %d", res.StatusCode).
			WithField("status", res.StatusCode)
	}

	out, err := os.Create(destination)
	if err != nil {
		return fmt.Errorf("failed to create asset file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, res.Body); err != nil {
		return errors.WrapWithCode(err, errors.CodeNetwork, "fetch.remote", "asset download interrupted")
	}
	return nil
}

// FetchAudio descarga la narración. Cualquier fallo acá es fatal para el job.
func (f *Fetcher) FetchAudio(ctx context.Context, sess *Session, ref string) (*Asset, error) {
	dest := sess.AudioPath(extFromRef(ref))
	if err := f.Fetch(ctx, ref, dest); err != nil {
		return nil, err
	}
	return &Asset{Ref: ref, Kind: AssetAudio, LocalPath: dest}, nil
}

// FetchImages hace fan-out acotado sobre las imágenes y espera a que TODOS
// los intentos resuelvan antes de seguir. Las que fallan se descartan con
// log; solo si fallan todas el job muere con INSUFFICIENT_ASSETS.
// El orden de entrada se preserva en el resultado.
func (f *Fetcher) FetchImages(ctx context.Context, sess *Session, refs []string) ([]Asset, error) {
	results := make([]*Asset, len(refs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.maxParallel)

	for i, ref := range refs {
		i, ref := i, ref // go.mod declares go 1.21: loop vars are per-loop, not per-iteration
		g.Go(func() error {
			dest := sess.ImagePath(i, extFromRef(ref))
			if err := f.Fetch(gctx, ref, dest); err != nil {
				// No fatal: se loggea y la imagen queda fuera del timeline.
				f.log.Warn("image fetch failed, dropping",
					"session_id", sess.ID,
					"index", i,
					"error", err.Error(),
				)
				return nil
			}
			results[i] = &Asset{Ref: ref, Kind: AssetImage, LocalPath: dest}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	assets := make([]Asset, 0, len(refs))
	for _, a := range results {
		if a != nil {
			assets = append(assets, *a)
		}
	}

	if len(assets) == 0 {
		return nil, errors.Newf(errors.CodeInsufficientAssets, "all %d image fetches failed", len(refs))
	}

	if len(assets) < len(refs) {
		f.log.Info("proceeding with partial image set",
			"session_id", sess.ID,
			"requested", len(refs),
			"usable", len(assets),
		)
	}
	return assets, nil
}
