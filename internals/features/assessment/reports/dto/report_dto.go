// file: internals/features/assessment/reports/dto/report_dto.go
package dto

import (
	"time"

	"github.com/google/uuid"

	"reviewdesk_backend/internals/features/assessment/reports/model"
)

type CreateReportRequest struct {
	Code  string `json:"code" validate:"required,max=50"`
	Title string `json:"title" validate:"required,max=500"`
	Type  string `json:"type" validate:"omitempty,oneof=self_assessment external_review audit"`
}

type UpdateReportRequest struct {
	Title  *string `json:"title" validate:"omitempty,max=500"`
	Status *string `json:"status" validate:"omitempty,oneof=draft approved in_evaluation"`
}

type ReportResponse struct {
	ReportID  uuid.UUID `json:"report_id"`
	Code      string    `json:"code"`
	Title     string    `json:"title"`
	Type      string    `json:"type"`
	Status    string    `json:"status"`
	CreatedBy uuid.UUID `json:"created_by"`

	EvaluationIDs   []string `json:"evaluation_ids"`
	EvaluationCount int      `json:"evaluation_count"`
	AverageScore    float64  `json:"average_score"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func FromReportModel(r *model.ReportModel) ReportResponse {
	return ReportResponse{
		ReportID:        r.ReportID,
		Code:            r.ReportCode,
		Title:           r.ReportTitle,
		Type:            r.ReportType,
		Status:          string(r.ReportStatus),
		CreatedBy:       r.ReportCreatedBy,
		EvaluationIDs:   r.ReportEvaluationIDs,
		EvaluationCount: r.ReportEvaluationCount,
		AverageScore:    r.ReportAverageScore,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}

func FromReportModels(rows []model.ReportModel) []ReportResponse {
	out := make([]ReportResponse, 0, len(rows))
	for i := range rows {
		out = append(out, FromReportModel(&rows[i]))
	}
	return out
}
