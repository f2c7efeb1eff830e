package render

import (
	"fmt"
	"strings"
)

// EncodeSubtitles serializa los captions como track SRT. La salida es
// determinística: la misma lista produce bytes idénticos.
func EncodeSubtitles(captions []Caption) []byte {
	var b strings.Builder
	for i, c := range captions {
		fmt.Fprintf(&b, "%d\n", i+1)
		fmt.Fprintf(&b, "%s --> %s\n", srtTimestamp(c.StartMS), srtTimestamp(c.EndMS))
		fmt.Fprintf(&b, "%s\n\n", c.Text)
	}
	return []byte(b.String())
}

// srtTimestamp formatea milisegundos como HH:MM:SS,mmm.
func srtTimestamp(ms int64) string {
	totalSeconds := ms / 1000
	hours := totalSeconds / 3600
	minutes := (totalSeconds % 3600) / 60
	seconds := totalSeconds % 60
	millis := ms % 1000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, seconds, millis)
}
