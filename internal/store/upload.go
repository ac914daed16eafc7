package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dmorgan81/seedream/internal/log"
)

type UploadParams struct {
	Name        string
	Data        []byte
	ContentType string
	Metadata    map[string]string
}

// Uploader stores a named blob and returns where it ended up.
type Uploader interface {
	Upload(context.Context, UploadParams) (string, error)
}

// FileUploader writes into Dir, creating it on first use.
type FileUploader struct {
	Dir string
}

func (u *FileUploader) Upload(ctx context.Context, params UploadParams) (string, error) {
	if err := os.MkdirAll(u.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	path, err := filepath.Abs(filepath.Join(u.Dir, filepath.Base(params.Name)))
	if err != nil {
		return "", err
	}

	log := log.FromContextOrDiscard(ctx).WithGroup("file")
	log.Info("writing", "file", path, "bytes", len(params.Data))
	if err := os.WriteFile(path, params.Data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}
