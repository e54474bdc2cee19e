package domain

import (
	"math"
	"strings"
	"time"
)

// Species enumerates the animals a report may concern. Stored values keep
// the Spanish wire vocabulary the clients already speak.
type Species string

const (
	SpeciesDog Species = "Perro"
	SpeciesCat Species = "Gato"
)

// ParseSpecies normalizes user input, accepting English and Spanish aliases.
func ParseSpecies(raw string) (Species, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "perro", "dog":
		return SpeciesDog, true
	case "gato", "cat":
		return SpeciesCat, true
	default:
		return "", false
	}
}

// ReportState enumerates lifecycle states for reports.
type ReportState string

const (
	ReportStatePending   ReportState = "pendiente"
	ReportStateResolved  ReportState = "resuelto"
	ReportStateCancelled ReportState = "cancelado"
)

// ParseReportState normalizes a state filter value.
func ParseReportState(raw string) (ReportState, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "pendiente", "pending":
		return ReportStatePending, true
	case "resuelto", "resolved":
		return ReportStateResolved, true
	case "cancelado", "cancelled":
		return ReportStateCancelled, true
	default:
		return "", false
	}
}

// Terminal reports whether no further transition is possible.
func (s ReportState) Terminal() bool {
	return s == ReportStateResolved || s == ReportStateCancelled
}

// Location is a latitude/longitude pair. A nil or non-finite location is
// treated as "no location" by every consumer.
type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Valid reports whether the coordinates are finite and within range.
func (l *Location) Valid() bool {
	if l == nil {
		return false
	}
	if math.IsNaN(l.Lat) || math.IsInf(l.Lat, 0) || math.IsNaN(l.Lng) || math.IsInf(l.Lng, 0) {
		return false
	}
	return l.Lat >= -90 && l.Lat <= 90 && l.Lng >= -180 && l.Lng <= 180
}

// UserRef is the expanded creator/resolver/canceller reference attached to
// report reads. Password data is never part of it.
type UserRef struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Report is the aggregate for animal-welfare submissions.
type Report struct {
	ID       string
	Species  Species
	Comments []string
	Photos   []string
	Location *Location
	State    ReportState

	CreatedBy *string
	Creator   *UserRef

	ResolvedBy       *string
	ResolvedComment  *string
	ResolvedAt       *time.Time
	Resolver         *UserRef
	CancelledBy      *string
	CancelledComment *string
	CancelledAt      *time.Time
	Canceller        *UserRef

	CreatedAt time.Time
	UpdatedAt time.Time
}

// FirstComment returns the visible comment for map and list views.
func (r *Report) FirstComment() string {
	for _, c := range r.Comments {
		if strings.TrimSpace(c) != "" {
			return c
		}
	}
	return ""
}

// FirstPhoto returns the primary photo reference, if any.
func (r *Report) FirstPhoto() string {
	if len(r.Photos) == 0 {
		return ""
	}
	return r.Photos[0]
}

// HasLocation reports whether the report carries usable coordinates.
func (r *Report) HasLocation() bool {
	return r.Location.Valid()
}
