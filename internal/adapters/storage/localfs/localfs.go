package localfs

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"slidecast/internal/ports"
)

// Archive implements ports.StorageProvider on the local filesystem.
// Rendered videos land under root, mirroring the object key as a path.
type Archive struct {
	root string
}

func New(root string) *Archive {
	return &Archive{root: root}
}

func (a *Archive) Provider() string { return "localfs" }

func (a *Archive) PutObject(ctx context.Context, in ports.PutObjectInput) (ports.PutObjectOutput, error) {
	if in.ObjectKey == "" {
		return ports.PutObjectOutput{}, fmt.Errorf("object_key is required")
	}

	dst := filepath.Join(a.root, filepath.FromSlash(in.ObjectKey))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return ports.PutObjectOutput{}, err
	}

	// Escribir a un temporal y renombrar: nunca queda un mp4 a medias
	// visible bajo el key final.
	tmp, err := os.CreateTemp(filepath.Dir(dst), ".archive-*")
	if err != nil {
		return ports.PutObjectOutput{}, err
	}

	n, err := io.Copy(tmp, in.Reader)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmp.Name())
		return ports.PutObjectOutput{}, err
	}

	if err := os.Rename(tmp.Name(), dst); err != nil {
		os.Remove(tmp.Name())
		return ports.PutObjectOutput{}, err
	}

	return ports.PutObjectOutput{ObjectKey: in.ObjectKey, Size: n}, nil
}
