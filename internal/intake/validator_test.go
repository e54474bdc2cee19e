package intake

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/rescue-report-service/internal/classifier"
	"github.com/spec-kit/rescue-report-service/internal/domain"
	"github.com/spec-kit/rescue-report-service/internal/observability"
	apperrors "github.com/spec-kit/rescue-report-service/pkg/util"
)

type fakeDetector struct {
	detections []classifier.Detection
	err        error
	calls      int
}

func (f *fakeDetector) Detect(_ context.Context, _ []byte) ([]classifier.Detection, error) {
	f.calls++
	return f.detections, f.err
}

func validSubmission() Submission {
	return Submission{
		Species:  domain.SpeciesDog,
		Comments: []string{"perro herido cerca del parque"},
		Location: &domain.Location{Lat: 8.1001, Lng: -80.9831},
		Photos:   []Photo{{Name: "foto.jpg", Data: []byte("fake-image")}},
	}
}

func TestValidateConfidenceBoundary(t *testing.T) {
	cases := []struct {
		name  string
		score float64
		label string
		ok    bool
	}{
		{"below threshold", 0.69, "dog", false},
		{"exactly at threshold", 0.70, "dog", true},
		{"above threshold", 0.95, "dog", true},
		{"high confidence wrong species", 0.95, "cat", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			detector := &fakeDetector{detections: []classifier.Detection{{Label: tc.label, Score: tc.score}}}
			v := NewValidator(detector, 0.70, nil)

			err := v.Validate(context.Background(), validSubmission())
			if tc.ok {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				domainErr := apperrors.ToDomainError(err)
				assert.Equal(t, "VALIDATION_FAILED", domainErr.Code)
			}
		})
	}
}

func TestValidateNoAnimalDetected(t *testing.T) {
	detector := &fakeDetector{detections: []classifier.Detection{
		{Label: "person", Score: 0.99},
		{Label: "bicycle", Score: 0.88},
	}}
	v := NewValidator(detector, 0.70, nil)

	err := v.Validate(context.Background(), validSubmission())
	require.Error(t, err)
	domainErr := apperrors.ToDomainError(err)
	assert.Equal(t, "VALIDATION_FAILED", domainErr.Code)
	assert.Equal(t, "foto.jpg", domainErr.Details["photo"])
}

func TestValidatePicksHighestAnimalScore(t *testing.T) {
	// The person detection outscores both animals but must be ignored; the
	// best animal label decides.
	detector := &fakeDetector{detections: []classifier.Detection{
		{Label: "person", Score: 0.99},
		{Label: "cat", Score: 0.60},
		{Label: "dog", Score: 0.85},
	}}
	v := NewValidator(detector, 0.70, nil)

	assert.NoError(t, v.Validate(context.Background(), validSubmission()))
}

func TestValidateMissingFields(t *testing.T) {
	detector := &fakeDetector{}
	v := NewValidator(detector, 0.70, nil)

	sub := Submission{}
	err := v.Validate(context.Background(), sub)
	require.Error(t, err)

	domainErr := apperrors.ToDomainError(err)
	assert.Equal(t, "VALIDATION_FAILED", domainErr.Code)
	assert.Contains(t, domainErr.Details, "especie")
	assert.Contains(t, domainErr.Details, "comentarios")
	assert.Contains(t, domainErr.Details, "ubicacion")
	assert.Contains(t, domainErr.Details, "fotos")

	// The detector is never consulted when required fields are missing.
	assert.Equal(t, 0, detector.calls)
}

func TestValidateBlankCommentRejected(t *testing.T) {
	v := NewValidator(&fakeDetector{}, 0.70, nil)

	sub := validSubmission()
	sub.Comments = []string{"   "}
	err := v.Validate(context.Background(), sub)
	require.Error(t, err)
	assert.Contains(t, apperrors.ToDomainError(err).Details, "comentarios")
}

func TestValidateCountsRejectionsByReason(t *testing.T) {
	metrics := observability.NewMetrics()
	detector := &fakeDetector{detections: []classifier.Detection{{Label: "cat", Score: 0.95}}}
	v := NewValidator(detector, 0.70, metrics)

	require.Error(t, v.Validate(context.Background(), Submission{}))
	require.Error(t, v.Validate(context.Background(), validSubmission()))

	assert.Equal(t, int64(1), metrics.IntakeRejections("missing_fields"))
	assert.Equal(t, int64(1), metrics.IntakeRejections("species_mismatch"))
	assert.Zero(t, metrics.IntakeRejections("low_confidence"))
}

func TestValidateDetectorFailureIsServerFault(t *testing.T) {
	detector := &fakeDetector{err: errors.New("detector offline")}
	v := NewValidator(detector, 0.70, nil)

	err := v.Validate(context.Background(), validSubmission())
	require.Error(t, err)
	assert.Equal(t, "INTERNAL_ERROR", apperrors.ToDomainError(err).Code)
}
