package gdrive

import (
	"context"
	"fmt"

	"slidecast/internal/ports"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
)

// Archive implements ports.StorageProvider backed by Google Drive.
// The object key becomes the Drive file name; the returned key is the
// fileId Drive assigned, which is what later tooling needs to locate it.
type Archive struct {
	srv      *drive.Service
	folderID string
}

func New(srv *drive.Service, folderID string) *Archive {
	return &Archive{srv: srv, folderID: folderID}
}

func (a *Archive) Provider() string { return "gdrive" }

func (a *Archive) PutObject(ctx context.Context, in ports.PutObjectInput) (ports.PutObjectOutput, error) {
	if in.ObjectKey == "" {
		return ports.PutObjectOutput{}, fmt.Errorf("object_key is required")
	}

	file := &drive.File{Name: in.ObjectKey}
	if a.folderID != "" {
		file.Parents = []string{a.folderID}
	}

	contentType := in.ContentType
	if contentType == "" {
		contentType = "video/mp4"
	}

	created, err := a.srv.Files.Create(file).
		Media(in.Reader, googleapi.ContentType(contentType)).
		Context(ctx).
		Do()
	if err != nil {
		return ports.PutObjectOutput{}, fmt.Errorf("gdrive upload failed: %w", err)
	}

	return ports.PutObjectOutput{ObjectKey: created.Id, Size: in.Size}, nil
}
