package storage

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	apperrors "github.com/spec-kit/rescue-report-service/pkg/util"
)

// PhotoStore writes uploaded photos into the content area served at
// /uploads. Names are generated; the original filename survives only as a
// sanitized suffix.
type PhotoStore struct {
	dir      string
	maxBytes int
}

// NewPhotoStore ensures the target directory exists.
func NewPhotoStore(dir string, maxBytes int) (*PhotoStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create uploads dir: %w", err)
	}
	return &PhotoStore{dir: dir, maxBytes: maxBytes}, nil
}

// Dir returns the root of the content area, for static serving.
func (s *PhotoStore) Dir() string {
	return s.dir
}

// Save persists the photo bytes under a generated name and returns the
// stored filename.
func (s *PhotoStore) Save(originalName string, data []byte) (string, error) {
	if s.maxBytes > 0 && len(data) > s.maxBytes {
		return "", apperrors.NewDomainError(
			"PAYLOAD_TOO_LARGE",
			"la foto excede el tamaño permitido",
			http.StatusRequestEntityTooLarge,
			map[string]any{"foto": originalName, "max_bytes": s.maxBytes},
		)
	}

	name := uuid.NewString() + "-" + sanitizeName(originalName)
	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write photo: %w", err)
	}
	return name, nil
}

// URLPath resolves the display path for a stored filename.
func URLPath(filename string) string {
	return "/uploads/" + filename
}

func sanitizeName(name string) string {
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, " ", "_")
	if name == "" || name == "." {
		name = "foto"
	}
	return name
}
