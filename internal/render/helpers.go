package render

import (
	"net/url"
	"path"
	"strings"
)

// ExtFromMime retorna la extensión de archivo apropiada para un MIME type
func ExtFromMime(mime string) string {
	mime = strings.ToLower(strings.TrimSpace(mime))
	if i := strings.Index(mime, ";"); i >= 0 {
		mime = mime[:i]
	}
	switch mime {
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	case "audio/mpeg", "audio/mp3":
		return ".mp3"
	case "audio/wav", "audio/x-wav":
		return ".wav"
	case "audio/mp4", "audio/m4a", "audio/x-m4a":
		return ".m4a"
	case "audio/aac":
		return ".aac"
	case "audio/ogg":
		return ".ogg"
	case "video/mp4":
		return ".mp4"
	default:
		return ""
	}
}

// extFromRef deduce la extensión de una referencia: para data URIs usa el
// media type; para URLs, la extensión del path.
func extFromRef(ref string) string {
	if strings.HasPrefix(ref, "data:") {
		mediaType, _, ok := splitDataURI(ref)
		if !ok {
			return ""
		}
		return ExtFromMime(mediaType)
	}

	u, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	ext := strings.ToLower(path.Ext(u.Path))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".webp", ".gif",
		".mp3", ".wav", ".m4a", ".aac", ".ogg", ".mp4":
		if ext == ".jpeg" {
			return ".jpg"
		}
		return ext
	}
	return ""
}

// splitDataURI separa "data:<mediatype>;base64,<body>" en sus partes.
// ok=false cuando la referencia no es un data URI bien formado.
func splitDataURI(ref string) (mediaType, body string, ok bool) {
	rest, found := strings.CutPrefix(ref, "data:")
	if !found {
		return "", "", false
	}

	meta, body, found := strings.Cut(rest, ",")
	if !found {
		return "", "", false
	}

	mediaType, found = strings.CutSuffix(meta, ";base64")
	if !found {
		// Solo soportamos payloads base64; texto plano no es un asset válido.
		return "", "", false
	}
	return mediaType, body, true
}
