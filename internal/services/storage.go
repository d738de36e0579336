package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// DocumentStorage keeps uploaded CVs. Save returns a reference that Delete accepts.
type DocumentStorage interface {
	Save(ctx context.Context, filename string, data []byte) (string, error)
	Delete(ctx context.Context, ref string) error
}

// StoredName builds a collision-free object name that keeps the upload's extension.
func StoredName(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	return fmt.Sprintf("cv_%s%s", uuid.New().String(), ext)
}

type localStorage struct {
	uploadPath string
}

func NewLocalStorage(uploadPath string) (DocumentStorage, error) {
	s := &localStorage{uploadPath: uploadPath}
	if err := s.ensureUploadDir(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *localStorage) ensureUploadDir() error {
	if err := os.MkdirAll(s.uploadPath, 0755); err != nil {
		return fmt.Errorf("failed to create upload directory: %w", err)
	}
	return nil
}

// Save implements DocumentStorage. The reference is the file path on disk.
func (s *localStorage) Save(ctx context.Context, filename string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	filePath := filepath.Join(s.uploadPath, StoredName(filename))
	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return "", fmt.Errorf("failed to save file: %w", err)
	}

	return filePath, nil
}

// Delete implements DocumentStorage. Deleting a missing file is not an error.
func (s *localStorage) Delete(ctx context.Context, ref string) error {
	if err := os.Remove(ref); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}
