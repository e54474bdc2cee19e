package intake

import (
	"context"
	"fmt"
	"strings"

	"github.com/spec-kit/rescue-report-service/internal/classifier"
	"github.com/spec-kit/rescue-report-service/internal/domain"
	"github.com/spec-kit/rescue-report-service/internal/observability"
	apperrors "github.com/spec-kit/rescue-report-service/pkg/util"
)

// Photo is a submitted image awaiting validation.
type Photo struct {
	Name string
	Data []byte
}

// Submission is the candidate report checked before it is admitted to the
// store.
type Submission struct {
	Species  domain.Species
	Comments []string
	Location *domain.Location
	Photos   []Photo
}

// Validator gates report creation: required fields first, then the
// classifier verdict on the primary photo. There is no bypass path.
type Validator struct {
	detector      classifier.Detector
	minConfidence float64
	metrics       *observability.Metrics
}

// NewValidator constructs the intake gate. metrics may be nil.
func NewValidator(detector classifier.Detector, minConfidence float64, metrics *observability.Metrics) *Validator {
	if minConfidence <= 0 {
		minConfidence = 0.70
	}
	return &Validator{detector: detector, minConfidence: minConfidence, metrics: metrics}
}

var labelSpecies = map[string]domain.Species{
	"dog": domain.SpeciesDog,
	"cat": domain.SpeciesCat,
}

// Validate runs the full gate. The confidence threshold is inclusive: a
// score exactly at the minimum passes.
func (v *Validator) Validate(ctx context.Context, sub Submission) error {
	if err := checkRequiredFields(sub); err != nil {
		v.metrics.RecordIntakeRejection("missing_fields")
		return err
	}

	primary := sub.Photos[0]
	detections, err := v.detector.Detect(ctx, primary.Data)
	if err != nil {
		return apperrors.NewInternalError(fmt.Errorf("classify photo %s: %w", primary.Name, err))
	}

	best, found := bestAnimalDetection(detections)
	if !found {
		v.metrics.RecordIntakeRejection("no_detection")
		return apperrors.NewValidationError(
			"no se detectó un perro o gato en la foto",
			map[string]any{"photo": primary.Name},
		)
	}

	if best.Score < v.minConfidence {
		v.metrics.RecordIntakeRejection("low_confidence")
		return apperrors.NewValidationError(
			"confianza insuficiente, vuelve a tomar la foto",
			map[string]any{"photo": primary.Name, "confidence": best.Score},
		)
	}

	if labelSpecies[strings.ToLower(best.Label)] != sub.Species {
		v.metrics.RecordIntakeRejection("species_mismatch")
		return apperrors.NewValidationError(
			"la especie detectada no coincide con la declarada",
			map[string]any{"declared": sub.Species, "detected": best.Label},
		)
	}

	return nil
}

func checkRequiredFields(sub Submission) error {
	missing := map[string]any{}
	if sub.Species != domain.SpeciesDog && sub.Species != domain.SpeciesCat {
		missing["especie"] = "required"
	}
	if firstNonEmpty(sub.Comments) == "" {
		missing["comentarios"] = "required"
	}
	if !sub.Location.Valid() {
		missing["ubicacion"] = "required"
	}
	if len(sub.Photos) == 0 {
		missing["fotos"] = "required"
	}
	if len(missing) > 0 {
		return apperrors.NewValidationError("faltan campos obligatorios", missing)
	}
	return nil
}

// bestAnimalDetection keeps only cat/dog labels and picks the highest score.
func bestAnimalDetection(detections []classifier.Detection) (classifier.Detection, bool) {
	var best classifier.Detection
	found := false
	for _, d := range detections {
		if _, ok := labelSpecies[strings.ToLower(d.Label)]; !ok {
			continue
		}
		if !found || d.Score > best.Score {
			best = d
			found = true
		}
	}
	return best, found
}

func firstNonEmpty(comments []string) string {
	for _, c := range comments {
		if strings.TrimSpace(c) != "" {
			return c
		}
	}
	return ""
}
