package files

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/cuongbtq/hirenest-be/internal/api/model"
	"github.com/google/uuid"
)

// DiskStore keeps uploads on the local filesystem and serves them under a public base URL
type DiskStore struct {
	dir     string
	baseURL string
}

func NewDiskStore(dir, baseURL string) *DiskStore {
	return &DiskStore{
		dir:     dir,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// Dir returns the root directory, for mounting as a static route
func (s *DiskStore) Dir() string {
	return s.dir
}

func (s *DiskStore) Save(ctx context.Context, folder string, upload *Upload) (model.StorageRef, error) {
	if err := ctx.Err(); err != nil {
		return model.StorageRef{}, err
	}

	target := filepath.Join(s.dir, folder)
	if err := os.MkdirAll(target, 0o755); err != nil {
		return model.StorageRef{}, fmt.Errorf("failed to create upload folder: %w", err)
	}

	name := uuid.New().String() + strings.ToLower(filepath.Ext(upload.Filename))
	if err := os.WriteFile(filepath.Join(target, name), upload.Data, 0o644); err != nil {
		return model.StorageRef{}, fmt.Errorf("failed to write upload: %w", err)
	}

	publicID := path.Join(folder, name)
	return model.StorageRef{
		URL:      s.baseURL + "/" + publicID,
		PublicID: publicID,
	}, nil
}

// ViewURL returns the public link of a stored file
func (s *DiskStore) ViewURL(publicID string) string {
	if publicID == "" {
		return ""
	}
	return s.baseURL + "/" + strings.TrimLeft(publicID, "/")
}
