package render

import (
	"fmt"
	"os"
)

// collectOutput lee el artefacto producido y lo envuelve como Result.
func collectOutput(outputPath string) (*Result, error) {
	video, err := os.ReadFile(outputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read encoder output: %w", err)
	}
	if len(video) == 0 {
		return nil, fmt.Errorf("encoder produced an empty file")
	}

	return &Result{
		Video:       video,
		ContentType: "video/mp4",
		Size:        int64(len(video)),
	}, nil
}
