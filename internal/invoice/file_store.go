package invoice

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"parking-service/internal/model"
)

// FileStore writes rendered invoices as plain-text files, one per exit.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create invoice dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Save writes the invoice and returns its path.
func (s *FileStore) Save(_ context.Context, inv model.Invoice) (string, error) {
	path := filepath.Join(s.dir, inv.Filename())
	if err := os.WriteFile(path, []byte(inv.Render()), 0o644); err != nil {
		return "", fmt.Errorf("write invoice %s: %w", path, err)
	}
	return path, nil
}
