package ports

import (
	"context"
	"io"
)

type PutObjectInput struct {
	ObjectKey   string
	ContentType string
	Reader      io.Reader
	Size        int64
}

type PutObjectOutput struct {
	// En localfs será el mismo object_key.
	// En gdrive será el fileId real que asignó Drive.
	ObjectKey string
	Size      int64
}

// StorageProvider archiva el video final que produce el pipeline.
// Es write-only a propósito: la API responde el video inline y el
// archivo queda como copia durable (localfs, gdrive, s3, etc.).
type StorageProvider interface {
	Provider() string
	PutObject(ctx context.Context, in PutObjectInput) (PutObjectOutput, error)
}
