// file: internals/features/assessment/assignments/model/assignment_model.go
package model

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"reviewdesk_backend/internals/helpers/apperr"
)

/* =========================================================
   ENUMS
   ========================================================= */

type AssignmentStatus string

const (
	AssignmentPending    AssignmentStatus = "pending"
	AssignmentAccepted   AssignmentStatus = "accepted"
	AssignmentInProgress AssignmentStatus = "in_progress"
	AssignmentCompleted  AssignmentStatus = "completed"
	AssignmentOverdue    AssignmentStatus = "overdue"
	AssignmentCancelled  AssignmentStatus = "cancelled"
)

func (s AssignmentStatus) IsTerminal() bool {
	return s == AssignmentCompleted || s == AssignmentCancelled
}

type AssignmentPriority string

const (
	PriorityLow    AssignmentPriority = "low"
	PriorityNormal AssignmentPriority = "normal"
	PriorityHigh   AssignmentPriority = "high"
	PriorityUrgent AssignmentPriority = "urgent"
)

func ValidPriority(p AssignmentPriority) bool {
	switch p {
	case PriorityLow, PriorityNormal, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

/* =========================================================
   CRITERION (ordered, weighted sub-score dimension)
   ========================================================= */

type Criterion struct {
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	MaxScore    float64 `json:"max_score"`
	Weight      float64 `json:"weight"`
}

// ValidateCriteria enforces max_score > 0 and weight in [0,1].
func ValidateCriteria(criteria []Criterion) error {
	for i, cr := range criteria {
		if cr.Name == "" {
			return apperr.Validation(fmt.Sprintf("criterion %d: name is required", i+1))
		}
		if cr.MaxScore <= 0 {
			return apperr.Validation(fmt.Sprintf("criterion %q: max score must be positive", cr.Name))
		}
		if cr.Weight < 0 || cr.Weight > 1 {
			return apperr.Validation(fmt.Sprintf("criterion %q: weight must be within [0,1]", cr.Name))
		}
	}
	return nil
}

/* =========================================================
   MODEL
   ========================================================= */

// AssignmentModel is the work order binding one report, one expert, one
// assigner and a deadline. Active uniqueness per (report, expert) is enforced
// by a partial unique index (see databases.Migrate).
type AssignmentModel struct {
	AssignmentID         uuid.UUID `json:"assignment_id" gorm:"type:uuid;default:gen_random_uuid();primaryKey;column:assignment_id"`
	AssignmentReportID   uuid.UUID `json:"assignment_report_id" gorm:"type:uuid;not null;index;column:assignment_report_id"`
	AssignmentExpertID   uuid.UUID `json:"assignment_expert_id" gorm:"type:uuid;not null;index;column:assignment_expert_id"`
	AssignmentAssignedBy uuid.UUID `json:"assignment_assigned_by" gorm:"type:uuid;not null;index;column:assignment_assigned_by"`

	AssignmentNote     *string            `json:"assignment_note,omitempty" gorm:"type:text;column:assignment_note"`
	AssignmentDeadline time.Time          `json:"assignment_deadline" gorm:"not null;index;column:assignment_deadline"`
	AssignmentPriority AssignmentPriority `json:"assignment_priority" gorm:"type:varchar(10);not null;default:'normal';column:assignment_priority"`

	AssignmentCriteria datatypes.JSONSlice[Criterion] `json:"assignment_criteria" gorm:"type:jsonb;not null;default:'[]';column:assignment_criteria"`

	AssignmentStatus AssignmentStatus `json:"assignment_status" gorm:"type:varchar(15);not null;default:'pending';index;column:assignment_status"`

	AssignmentRespondedAt  *time.Time `json:"assignment_responded_at,omitempty" gorm:"column:assignment_responded_at"`
	AssignmentResponseNote *string    `json:"assignment_response_note,omitempty" gorm:"type:text;column:assignment_response_note"`

	AssignmentStartedAt   *time.Time `json:"assignment_started_at,omitempty" gorm:"column:assignment_started_at"`
	AssignmentCompletedAt *time.Time `json:"assignment_completed_at,omitempty" gorm:"column:assignment_completed_at"`

	AssignmentEvaluationID *uuid.UUID `json:"assignment_evaluation_id,omitempty" gorm:"type:uuid;column:assignment_evaluation_id"`

	// Hours between started and completed, 2dp.
	AssignmentActualDuration *float64 `json:"assignment_actual_duration,omitempty" gorm:"column:assignment_actual_duration"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime;column:created_at"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime;column:updated_at"`
}

func (AssignmentModel) TableName() string { return "assignments" }

/* =========================================================
   TRANSITIONS (pure; service layer persists with a
   conditional UPDATE on the old status)
   ========================================================= */

func (a *AssignmentModel) Accept(note string, now time.Time) error {
	if a.AssignmentStatus != AssignmentPending {
		return apperr.Conflict("assignment has already been responded to")
	}
	a.AssignmentStatus = AssignmentAccepted
	a.AssignmentRespondedAt = &now
	if note != "" {
		a.AssignmentResponseNote = &note
	}
	return nil
}

// Reject is modeled as a transition to cancelled with the reason recorded.
func (a *AssignmentModel) Reject(note string, now time.Time) error {
	if a.AssignmentStatus != AssignmentPending {
		return apperr.Conflict("assignment has already been responded to")
	}
	a.AssignmentStatus = AssignmentCancelled
	a.AssignmentRespondedAt = &now
	if note != "" {
		a.AssignmentResponseNote = &note
	}
	return nil
}

func (a *AssignmentModel) Start(now time.Time) error {
	switch a.AssignmentStatus {
	case AssignmentAccepted:
		a.AssignmentStatus = AssignmentInProgress
		if a.AssignmentStartedAt == nil {
			a.AssignmentStartedAt = &now
		}
		return nil
	case AssignmentInProgress:
		// already started; no-op
		return nil
	default:
		return apperr.Conflict(fmt.Sprintf("assignment cannot be started from status %s", a.AssignmentStatus))
	}
}

// Complete is invoked exclusively by the approval pipeline when the linked
// evaluation is submitted; never by a direct user action. An overdue
// assignment may still complete: the deadline miss is a state, not an abort.
func (a *AssignmentModel) Complete(evaluationID uuid.UUID, now time.Time) error {
	switch a.AssignmentStatus {
	case AssignmentAccepted, AssignmentInProgress, AssignmentOverdue:
	default:
		return apperr.Conflict(fmt.Sprintf("assignment cannot be completed from status %s", a.AssignmentStatus))
	}
	a.AssignmentStatus = AssignmentCompleted
	a.AssignmentCompletedAt = &now
	a.AssignmentEvaluationID = &evaluationID
	if a.AssignmentStartedAt != nil {
		hours := round2(now.Sub(*a.AssignmentStartedAt).Hours())
		a.AssignmentActualDuration = &hours
	}
	return nil
}

func (a *AssignmentModel) Cancel(reason string, now time.Time) error {
	if a.AssignmentStatus.IsTerminal() {
		return apperr.Conflict(fmt.Sprintf("assignment is already %s", a.AssignmentStatus))
	}
	a.AssignmentStatus = AssignmentCancelled
	if reason != "" {
		a.AssignmentResponseNote = &reason
	}
	a.AssignmentRespondedAt = &now
	return nil
}

// MarkOverdue flips a non-terminal, past-deadline assignment to overdue.
// Idempotent: returns false when nothing changed.
func (a *AssignmentModel) MarkOverdue(now time.Time) bool {
	if a.AssignmentStatus.IsTerminal() || a.AssignmentStatus == AssignmentOverdue {
		return false
	}
	if !a.AssignmentDeadline.Before(now) {
		return false
	}
	a.AssignmentStatus = AssignmentOverdue
	return true
}

/* =========================================================
   PREDICATES
   ========================================================= */

func (a *AssignmentModel) IsOverdue(now time.Time) bool {
	return a.AssignmentDeadline.Before(now) && !a.AssignmentStatus.IsTerminal()
}

func (a *AssignmentModel) DaysUntilDeadline(now time.Time) int {
	return int(math.Ceil(a.AssignmentDeadline.Sub(now).Hours() / 24))
}

// CanModify: admin always; the assigner only while still pending.
func (a *AssignmentModel) CanModify(userID uuid.UUID, role string) bool {
	if role == "admin" {
		return true
	}
	return a.AssignmentAssignedBy == userID && a.AssignmentStatus == AssignmentPending
}

// CanEvaluate: the assigned expert, only from accepted or in_progress.
func (a *AssignmentModel) CanEvaluate(userID uuid.UUID) bool {
	if a.AssignmentExpertID != userID {
		return false
	}
	return a.AssignmentStatus == AssignmentAccepted || a.AssignmentStatus == AssignmentInProgress
}

// CanCancel: admin always; assigner or expert while still pending.
func (a *AssignmentModel) CanCancel(userID uuid.UUID, role string) bool {
	if role == "admin" {
		return true
	}
	if a.AssignmentStatus != AssignmentPending {
		return false
	}
	return a.AssignmentAssignedBy == userID || a.AssignmentExpertID == userID
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
