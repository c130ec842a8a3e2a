package media

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Store persists a decoded blob and returns the URL it will be served
// from.
type Store interface {
	Store(data []byte, name string) (string, error)
}

// DiskStore writes blobs under <dir>/media_files/<uuid>/<name>. Each
// blob gets its own directory because decoded attachments all share the
// synthesized file.<ext> name.
type DiskStore struct {
	dir     string
	baseURL string
	logger  *slog.Logger
}

func NewDiskStore(dir, baseURL string, logger *slog.Logger) *DiskStore {
	return &DiskStore{dir: dir, baseURL: baseURL, logger: logger}
}

func (s *DiskStore) Store(data []byte, name string) (string, error) {
	id := uuid.New().String()
	blobDir := filepath.Join(s.dir, "media_files", id)
	if err := os.MkdirAll(blobDir, 0o755); err != nil {
		return "", fmt.Errorf("creating blob directory: %w", err)
	}

	path := filepath.Join(blobDir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing blob: %w", err)
	}

	url := fmt.Sprintf("%s/media_files/%s/%s", s.baseURL, id, name)
	s.logger.Debug("stored media blob", "path", path, "url", url, "bytes", len(data))
	return url, nil
}
