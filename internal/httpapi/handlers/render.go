package handlers

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"slidecast/internal/adapters/jobstore/postgres"
	"slidecast/internal/httpkit"
	"slidecast/internal/pkg/errors"
	"slidecast/internal/ports"
	"slidecast/internal/render"
)

type RenderRequest struct {
	AudioRef     string           `json:"audio_ref"`
	ImageRefs    []string         `json:"image_refs"`
	TotalSeconds float64          `json:"total_seconds,omitempty"`
	Captions     []render.Caption `json:"captions,omitempty"`
	ShowCaptions bool             `json:"show_captions,omitempty"`
}

type RenderResponse struct {
	Video       string `json:"video"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
	// ObjectKey aparece solo cuando el video se archivó en storage.
	ObjectKey string `json:"object_key,omitempty"`
}

// PostRender renderiza con parámetros explícitos: un adapter fino sobre el
// pipeline compartido.
func (h *Handler) PostRender(w http.ResponseWriter, r *http.Request) {
	var req RenderRequest
	if err := httpkit.DecodeJSON(r, &req); err != nil {
		httpkit.WriteErr(w, 400, string(errors.CodeValidation), "invalid json body", nil)
		return
	}

	h.runRender(w, r, render.Request{
		AudioRef:     req.AudioRef,
		ImageRefs:    req.ImageRefs,
		TotalSeconds: req.TotalSeconds,
		Captions:     req.Captions,
		ShowCaptions: req.ShowCaptions,
	})
}

// PostRenderJob renderiza por referencia: resuelve el job contra el data
// store externo y delega en el mismo pipeline.
func (h *Handler) PostRenderJob(w http.ResponseWriter, r *http.Request) {
	if h.jobs == nil {
		httpkit.WriteErr(w, 503, string(errors.CodeUnavailable), "job store not configured", nil)
		return
	}

	jobID := chi.URLParam(r, "jobId")
	rec, err := h.jobs.GetJob(r.Context(), jobID)
	if err != nil {
		if errors.Is(err, postgres.ErrJobNotFound) {
			httpkit.WriteErr(w, 404, string(errors.CodeNotFound), "render job not found", map[string]any{"job_id": jobID})
			return
		}
		h.log.FromContext(r.Context()).Error("job lookup failed", "job_id", jobID, "error", err.Error())
		httpkit.WriteErr(w, 500, string(errors.CodeInternal), "job lookup failed", nil)
		return
	}

	h.runRender(w, r, render.Request{
		JobID:        rec.ID,
		AudioRef:     rec.AudioRef,
		ImageRefs:    rec.ImageRefs,
		Captions:     toCaptions(rec.Captions),
		ShowCaptions: rec.ShowCaptions,
	})
}

func (h *Handler) runRender(w http.ResponseWriter, r *http.Request, req render.Request) {
	ctx := r.Context()
	log := h.log.FromContext(ctx)

	result, err := h.pipeline.Render(ctx, req)
	if err != nil {
		// Un solo outcome terminal: el mensaje descriptivo y nada más
		httpkit.WriteErr(w, errors.GetHTTPStatus(err), string(errors.GetCode(err)), err.Error(), errors.GetFields(err))
		return
	}

	resp := RenderResponse{
		Video:       base64.StdEncoding.EncodeToString(result.Video),
		ContentType: result.ContentType,
		Size:        result.Size,
	}

	if h.sp != nil {
		if key, err := h.archive(ctx, req.JobID, result); err != nil {
			// El archivado es best-effort: el render ya salió bien
			log.Warn("output archival failed", "error", err.Error())
		} else {
			resp.ObjectKey = key
		}
	}

	httpkit.WriteJSON(w, 200, resp)
}

func (h *Handler) archive(ctx context.Context, jobID string, result *render.Result) (string, error) {
	if jobID == "" {
		jobID = "adhoc"
	}
	key := fmt.Sprintf("renders/%s/slideshow.mp4", jobID)

	out, err := h.sp.PutObject(ctx, ports.PutObjectInput{
		ObjectKey:   key,
		ContentType: result.ContentType,
		Reader:      bytes.NewReader(result.Video),
		Size:        result.Size,
	})
	if err != nil {
		return "", err
	}
	return out.ObjectKey, nil
}

func toCaptions(records []ports.CaptionRecord) []render.Caption {
	if len(records) == 0 {
		return nil
	}
	out := make([]render.Caption, len(records))
	for i, c := range records {
		out[i] = render.Caption{Text: c.Text, StartMS: c.StartMS, EndMS: c.EndMS}
	}
	return out
}
