// file: internals/features/assessment/assignments/dto/assignment_dto.go
package dto

import (
	"time"

	"github.com/google/uuid"

	"reviewdesk_backend/internals/features/assessment/assignments/model"
)

/* =========================================================
   REQUEST DTOS
   ========================================================= */

type CriterionRequest struct {
	Name        string  `json:"name" validate:"required,max=200"`
	Description string  `json:"description" validate:"omitempty,max=1000"`
	MaxScore    float64 `json:"max_score" validate:"required,gt=0"`
	Weight      float64 `json:"weight" validate:"gte=0,lte=1"`
}

type CreateAssignmentRequest struct {
	ReportID uuid.UUID          `json:"report_id" validate:"required"`
	ExpertID uuid.UUID          `json:"expert_id" validate:"required"`
	Note     *string            `json:"note" validate:"omitempty,max=2000"`
	Deadline time.Time          `json:"deadline" validate:"required"`
	Priority string             `json:"priority" validate:"omitempty,oneof=low normal high urgent"`
	Criteria []CriterionRequest `json:"criteria" validate:"omitempty,dive"`
}

type UpdateAssignmentRequest struct {
	Note     *string            `json:"note" validate:"omitempty,max=2000"`
	Deadline *time.Time         `json:"deadline"`
	Priority *string            `json:"priority" validate:"omitempty,oneof=low normal high urgent"`
	Criteria []CriterionRequest `json:"criteria" validate:"omitempty,dive"`
}

type RespondAssignmentRequest struct {
	Note string `json:"note" validate:"omitempty,max=2000"`
}

type CancelAssignmentRequest struct {
	Reason string `json:"reason" validate:"required,max=2000"`
}

func (r CreateAssignmentRequest) CriteriaModels() []model.Criterion {
	return toCriteria(r.Criteria)
}

func (r UpdateAssignmentRequest) CriteriaModels() []model.Criterion {
	return toCriteria(r.Criteria)
}

func toCriteria(in []CriterionRequest) []model.Criterion {
	if in == nil {
		return nil
	}
	out := make([]model.Criterion, 0, len(in))
	for _, cr := range in {
		out = append(out, model.Criterion{
			Name:        cr.Name,
			Description: cr.Description,
			MaxScore:    cr.MaxScore,
			Weight:      cr.Weight,
		})
	}
	return out
}

/* =========================================================
   RESPONSE DTOS
   ========================================================= */

type AssignmentResponse struct {
	AssignmentID uuid.UUID `json:"assignment_id"`
	ReportID     uuid.UUID `json:"report_id"`
	ExpertID     uuid.UUID `json:"expert_id"`
	AssignedBy   uuid.UUID `json:"assigned_by"`

	Note     *string           `json:"note,omitempty"`
	Deadline time.Time         `json:"deadline"`
	Priority string            `json:"priority"`
	Criteria []model.Criterion `json:"criteria"`
	Status   string            `json:"status"`

	RespondedAt  *time.Time `json:"responded_at,omitempty"`
	ResponseNote *string    `json:"response_note,omitempty"`
	StartedAt    *time.Time `json:"started_at,omitempty"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`

	EvaluationID   *uuid.UUID `json:"evaluation_id,omitempty"`
	ActualDuration *float64   `json:"actual_duration,omitempty"`

	DaysUntilDeadline int  `json:"days_until_deadline"`
	IsOverdue         bool `json:"is_overdue"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func FromAssignmentModel(a *model.AssignmentModel, now time.Time) AssignmentResponse {
	return AssignmentResponse{
		AssignmentID:      a.AssignmentID,
		ReportID:          a.AssignmentReportID,
		ExpertID:          a.AssignmentExpertID,
		AssignedBy:        a.AssignmentAssignedBy,
		Note:              a.AssignmentNote,
		Deadline:          a.AssignmentDeadline,
		Priority:          string(a.AssignmentPriority),
		Criteria:          a.AssignmentCriteria,
		Status:            string(a.AssignmentStatus),
		RespondedAt:       a.AssignmentRespondedAt,
		ResponseNote:      a.AssignmentResponseNote,
		StartedAt:         a.AssignmentStartedAt,
		CompletedAt:       a.AssignmentCompletedAt,
		EvaluationID:      a.AssignmentEvaluationID,
		ActualDuration:    a.AssignmentActualDuration,
		DaysUntilDeadline: a.DaysUntilDeadline(now),
		IsOverdue:         a.IsOverdue(now),
		CreatedAt:         a.CreatedAt,
		UpdatedAt:         a.UpdatedAt,
	}
}

func FromAssignmentModels(rows []model.AssignmentModel, now time.Time) []AssignmentResponse {
	out := make([]AssignmentResponse, 0, len(rows))
	for i := range rows {
		out = append(out, FromAssignmentModel(&rows[i], now))
	}
	return out
}
