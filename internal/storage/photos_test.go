package storage

import (
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/spec-kit/rescue-report-service/pkg/util"
)

func TestSaveWritesUnderGeneratedName(t *testing.T) {
	store, err := NewPhotoStore(t.TempDir(), 1024)
	require.NoError(t, err)

	name, err := store.Save("mi foto.jpg", []byte("img"))
	require.NoError(t, err)
	assert.Contains(t, name, "mi_foto.jpg")
	assert.Equal(t, "/uploads/"+name, URLPath(name))

	data, err := os.ReadFile(filepath.Join(store.Dir(), name))
	require.NoError(t, err)
	assert.Equal(t, []byte("img"), data)
}

func TestSaveRejectsOversizedPhoto(t *testing.T) {
	store, err := NewPhotoStore(t.TempDir(), 4)
	require.NoError(t, err)

	_, err = store.Save("grande.jpg", []byte("too big"))
	require.Error(t, err)

	domainErr := apperrors.ToDomainError(err)
	assert.Equal(t, "PAYLOAD_TOO_LARGE", domainErr.Code)
	assert.Equal(t, http.StatusRequestEntityTooLarge, domainErr.HTTPStatus)
	assert.Equal(t, "grande.jpg", domainErr.Details["foto"])
}
