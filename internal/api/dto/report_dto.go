package dto

import (
	"time"

	"github.com/spec-kit/rescue-report-service/internal/domain"
	"github.com/spec-kit/rescue-report-service/internal/service"
	"github.com/spec-kit/rescue-report-service/internal/storage"
)

// TransitionRequest is the body for the cerrar/cancelar endpoints.
type TransitionRequest struct {
	Comment string `json:"comentario"`
}

// ReportResponse keeps the Spanish wire vocabulary the clients speak.
type ReportResponse struct {
	ID               string             `json:"id"`
	Species          domain.Species     `json:"especie"`
	Comments         []string           `json:"comentarios"`
	Photos           []string           `json:"fotos"`
	PhotoURLs        []string           `json:"fotoUrls"`
	Location         *domain.Location   `json:"ubicacion,omitempty"`
	State            domain.ReportState `json:"estado"`
	CreatedBy        *domain.UserRef    `json:"creadoPor,omitempty"`
	ResolvedBy       *domain.UserRef    `json:"resueltoPor,omitempty"`
	ResolvedComment  *string            `json:"resueltoComentario,omitempty"`
	ResolvedAt       *time.Time         `json:"resueltoEn,omitempty"`
	CancelledBy      *domain.UserRef    `json:"canceladoPor,omitempty"`
	CancelledComment *string            `json:"canceladoComentario,omitempty"`
	CancelledAt      *time.Time         `json:"canceladoEn,omitempty"`
	CreatedAt        time.Time          `json:"createdAt"`
	UpdatedAt        time.Time          `json:"updatedAt"`
}

// ReportListResponse is the envelope for every report collection.
type ReportListResponse struct {
	Data       []ReportResponse   `json:"data"`
	Pagination service.Pagination `json:"pagination"`
}

// NewReportResponse maps a domain report.
func NewReportResponse(report *domain.Report) ReportResponse {
	urls := make([]string, 0, len(report.Photos))
	for _, photo := range report.Photos {
		urls = append(urls, storage.URLPath(photo))
	}

	resp := ReportResponse{
		ID:               report.ID,
		Species:          report.Species,
		Comments:         report.Comments,
		Photos:           report.Photos,
		PhotoURLs:        urls,
		State:            report.State,
		CreatedBy:        report.Creator,
		ResolvedBy:       report.Resolver,
		ResolvedComment:  report.ResolvedComment,
		ResolvedAt:       report.ResolvedAt,
		CancelledBy:      report.Canceller,
		CancelledComment: report.CancelledComment,
		CancelledAt:      report.CancelledAt,
		CreatedAt:        report.CreatedAt,
		UpdatedAt:        report.UpdatedAt,
	}
	if report.HasLocation() {
		resp.Location = report.Location
	}
	return resp
}

// NewReportListResponse maps a page of reports.
func NewReportListResponse(reports []domain.Report, pagination service.Pagination) ReportListResponse {
	items := make([]ReportResponse, 0, len(reports))
	for i := range reports {
		items = append(items, NewReportResponse(&reports[i]))
	}
	return ReportListResponse{Data: items, Pagination: pagination}
}
