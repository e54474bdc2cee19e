package util

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToDomainErrorPassthrough(t *testing.T) {
	original := NewConflict("report is not pending", map[string]any{"id": "r1"})

	got := ToDomainError(original)
	require.NotNil(t, got)
	assert.Equal(t, "CONFLICT", got.Code)
	assert.Equal(t, http.StatusConflict, got.HTTPStatus)
	assert.Equal(t, "r1", got.Details["id"])
}

func TestToDomainErrorWrappedDomainError(t *testing.T) {
	wrapped := fmt.Errorf("handler: %w", NewForbidden("admin role required"))

	got := ToDomainError(wrapped)
	assert.Equal(t, "FORBIDDEN", got.Code)
	assert.Equal(t, http.StatusForbidden, got.HTTPStatus)
}

func TestToDomainErrorNoRows(t *testing.T) {
	got := ToDomainError(fmt.Errorf("query: %w", pgx.ErrNoRows))
	assert.Equal(t, "NOT_FOUND", got.Code)
	assert.Equal(t, http.StatusNotFound, got.HTTPStatus)
}

func TestToDomainErrorUnknownCollapsesToInternal(t *testing.T) {
	cause := errors.New("connection reset")

	got := ToDomainError(cause)
	assert.Equal(t, "INTERNAL_ERROR", got.Code)
	assert.Equal(t, http.StatusInternalServerError, got.HTTPStatus)
	// The cause stays attached for logging but the message is generic.
	assert.Equal(t, "internal server error", got.Message)
	assert.ErrorIs(t, got, cause)
}

func TestToDomainErrorNil(t *testing.T) {
	assert.Nil(t, ToDomainError(nil))
}

func TestDomainErrorError(t *testing.T) {
	plain := NewDomainError("VALIDATION_FAILED", "faltan campos obligatorios", http.StatusBadRequest, nil)
	assert.Equal(t, "faltan campos obligatorios", plain.Error())

	withCause := &DomainError{Message: "internal server error", Err: errors.New("boom")}
	assert.Equal(t, "internal server error: boom", withCause.Error())
}
