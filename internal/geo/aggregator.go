package geo

import "github.com/spec-kit/rescue-report-service/internal/domain"

// Marker is one map feature per located report.
type Marker struct {
	ID       string         `json:"id"`
	Lat      float64        `json:"lat"`
	Lng      float64        `json:"lng"`
	Species  domain.Species `json:"especie"`
	Comment  string         `json:"comentario"`
	Photo    string         `json:"foto,omitempty"`
	Resolved bool           `json:"resuelto"`
}

// DensityPoint is a weight-1 sample for heat rendering.
type DensityPoint struct {
	Lat    float64 `json:"lat"`
	Lng    float64 `json:"lng"`
	Weight int     `json:"weight"`
}

// RampStop pairs a relative density breakpoint with its color.
type RampStop struct {
	Density float64 `json:"density"`
	Color   string  `json:"color"`
}

// RampSpec carries the fixed rendering parameters for density mode.
type RampSpec struct {
	Stops     []RampStop `json:"stops"`
	Intensity float64    `json:"intensity"`
	Radius    float64    `json:"radius"`
	Opacity   float64    `json:"opacity"`
}

// DensityView is the density-mode projection plus its ramp.
type DensityView struct {
	Points []DensityPoint `json:"points"`
	Ramp   RampSpec       `json:"ramp"`
}

const placeholderComment = "Sin comentario"

// fixedRamp matches the five-stop color ramp the map clients render.
var fixedRamp = RampSpec{
	Stops: []RampStop{
		{Density: 0, Color: "rgba(0, 255, 0, 0)"},
		{Density: 0.2, Color: "rgba(173, 255, 47, 0.4)"},
		{Density: 0.4, Color: "rgba(255, 255, 0, 0.6)"},
		{Density: 0.6, Color: "rgba(255, 165, 0, 0.8)"},
		{Density: 0.9, Color: "rgba(255, 0, 0, 0.9)"},
	},
	Intensity: 1.2,
	Radius:    35,
	Opacity:   0.8,
}

// BuildMarkers projects the report set into marker mode. Reports without a
// finite location are excluded.
func BuildMarkers(reports []domain.Report) []Marker {
	markers := make([]Marker, 0, len(reports))
	for i := range reports {
		r := &reports[i]
		if !r.HasLocation() {
			continue
		}
		comment := r.FirstComment()
		if comment == "" {
			comment = placeholderComment
		}
		markers = append(markers, Marker{
			ID:       r.ID,
			Lat:      r.Location.Lat,
			Lng:      r.Location.Lng,
			Species:  r.Species,
			Comment:  comment,
			Photo:    r.FirstPhoto(),
			Resolved: r.State == domain.ReportStateResolved,
		})
	}
	return markers
}

// BuildDensity projects the report set into density mode. The view is
// recomputed in full from the given set on every call.
func BuildDensity(reports []domain.Report) DensityView {
	points := make([]DensityPoint, 0, len(reports))
	for i := range reports {
		r := &reports[i]
		if !r.HasLocation() {
			continue
		}
		points = append(points, DensityPoint{Lat: r.Location.Lat, Lng: r.Location.Lng, Weight: 1})
	}
	return DensityView{Points: points, Ramp: fixedRamp}
}
