package events

import (
	"time"

	"github.com/spec-kit/rescue-report-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventReportCreated   EventType = "report_created"
	EventReportResolved  EventType = "report_resolved"
	EventReportCancelled EventType = "report_cancelled"
	EventUserBanned      EventType = "user_banned"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	ReportID  string      `json:"report_id,omitempty"`
	ActorID   *string     `json:"actor_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// ReportCreatedPayload payload.
type ReportCreatedPayload struct {
	Species     domain.Species `json:"especie"`
	HasLocation bool           `json:"has_location"`
	PhotoCount  int            `json:"photo_count"`
	Anonymous   bool           `json:"anonymous"`
}

// ReportStateChangedPayload payload for resolve/cancel events.
type ReportStateChangedPayload struct {
	OldState domain.ReportState `json:"old_state"`
	NewState domain.ReportState `json:"new_state"`
	Comment  string             `json:"comment,omitempty"`
}

// UserBannedPayload payload.
type UserBannedPayload struct {
	UserID string `json:"user_id"`
	Banned bool   `json:"banned"`
}
