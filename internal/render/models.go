package render

// Status es el estado de ciclo de vida de un RenderJob.
type Status string

const (
	StatusCreated            Status = "CREATED"
	StatusFetchingAssets     Status = "FETCHING_ASSETS"
	StatusAssetsReady        Status = "ASSETS_READY"
	StatusInsufficientAssets Status = "INSUFFICIENT_ASSETS"
	StatusBuildingTimeline   Status = "BUILDING_TIMELINE"
	StatusSubtitlesSkipped   Status = "SUBTITLES_SKIPPED"
	StatusSubtitlesEncoded   Status = "SUBTITLES_ENCODED"
	StatusEncoding           Status = "ENCODING"
	StatusSucceeded          Status = "SUCCEEDED"
	StatusFailed             Status = "FAILED"
)

// AssetKind distingue audio de imagen.
type AssetKind string

const (
	AssetAudio AssetKind = "audio"
	AssetImage AssetKind = "image"
)

// Asset es una referencia (URL remota o data URI) ya resuelta a bytes locales.
// Pertenece en exclusiva a la Session que lo descargó.
type Asset struct {
	Ref       string
	Kind      AssetKind
	LocalPath string
}

// Caption es un subtítulo con offsets en milisegundos. start < end.
// Se respeta el orden de entrada; no se corrigen solapamientos.
type Caption struct {
	Text    string `json:"text"`
	StartMS int64  `json:"start_ms"`
	EndMS   int64  `json:"end_ms"`
}

// Request describe un render completo. TotalSeconds en 0 significa
// "resolver la duración probeando el audio".
type Request struct {
	JobID        string
	AudioRef     string
	ImageRefs    []string
	Captions     []Caption
	ShowCaptions bool
	TotalSeconds float64
}

// Result es el artefacto final. Inmutable; la propiedad pasa al caller.
type Result struct {
	Video       []byte
	ContentType string
	Size        int64
}
