// file: internals/features/assessment/evaluations/model/evaluation_model.go
package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"reviewdesk_backend/internals/constants"
	"reviewdesk_backend/internals/helpers/apperr"
)

/* =========================================================
   ENUMS
   ========================================================= */

type EvaluationStatus string

const (
	EvaluationDraft      EvaluationStatus = "draft"
	EvaluationSubmitted  EvaluationStatus = "submitted"
	EvaluationSupervised EvaluationStatus = "supervised"
	EvaluationFinal      EvaluationStatus = "final"
)

type Rating string

const (
	RatingExcellent        Rating = "excellent"
	RatingGood             Rating = "good"
	RatingSatisfactory     Rating = "satisfactory"
	RatingNeedsImprovement Rating = "needs_improvement"
	RatingPoor             Rating = "poor"
	RatingUnset            Rating = ""
)

func ValidRating(r Rating) bool {
	switch r {
	case RatingExcellent, RatingGood, RatingSatisfactory, RatingNeedsImprovement, RatingPoor:
		return true
	}
	return false
}

// Evidence assessment value sets (empty string = unset).
func ValidAdequacy(v string) bool {
	switch v {
	case "insufficient", "adequate", "comprehensive":
		return true
	}
	return false
}

func ValidEvidenceGrade(v string) bool {
	switch v {
	case "poor", "fair", "good", "excellent":
		return true
	}
	return false
}

/* =========================================================
   EMBEDDED JSON SHAPES
   ========================================================= */

// CriteriaScore is one scored dimension, copied from the assignment's
// criteria at evaluation creation and filled in by the expert.
type CriteriaScore struct {
	Name     string  `json:"name"`
	MaxScore float64 `json:"max_score"`
	Score    float64 `json:"score"`
	Weight   float64 `json:"weight"`
	Comment  string  `json:"comment,omitempty"`
}

type Strength struct {
	Point             string `json:"point"`
	EvidenceReference string `json:"evidence_reference,omitempty"`
}

type ImprovementArea struct {
	Area           string `json:"area"`
	Recommendation string `json:"recommendation,omitempty"`
	Priority       string `json:"priority,omitempty"` // low|medium|high
}

type Recommendation struct {
	Text     string `json:"text"`
	Type     string `json:"type,omitempty"`     // immediate|short_term|long_term
	Priority string `json:"priority,omitempty"` // low|medium|high
}

// HistoryEntry is one element of the append-only audit trail. Entries are
// only ever appended; nothing mutates or removes them.
type HistoryEntry struct {
	Action    string         `json:"action"`
	ActorID   uuid.UUID      `json:"actor_id"`
	Timestamp time.Time      `json:"timestamp"`
	Changes   map[string]any `json:"changes,omitempty"`
	Note      string         `json:"note,omitempty"`
}

/* =========================================================
   MODEL
   ========================================================= */

// EvaluationModel is the scored, commented assessment one expert produces
// against one assignment (1:1, unique index on the assignment reference).
// The derived fields total/max/average/rating are always a pure function of
// criteria scores; every path that mutates the scores recomputes them in the
// same transaction.
type EvaluationModel struct {
	EvaluationID           uuid.UUID `json:"evaluation_id" gorm:"type:uuid;default:gen_random_uuid();primaryKey;column:evaluation_id"`
	EvaluationAssignmentID uuid.UUID `json:"evaluation_assignment_id" gorm:"type:uuid;not null;uniqueIndex;column:evaluation_assignment_id"`
	EvaluationReportID     uuid.UUID `json:"evaluation_report_id" gorm:"type:uuid;not null;index;column:evaluation_report_id"`
	EvaluationEvaluatorID  uuid.UUID `json:"evaluation_evaluator_id" gorm:"type:uuid;not null;index;column:evaluation_evaluator_id"`

	EvaluationCriteriaScores datatypes.JSONSlice[CriteriaScore] `json:"evaluation_criteria_scores" gorm:"type:jsonb;not null;default:'[]';column:evaluation_criteria_scores"`

	// Derived (see service scoring engine).
	EvaluationTotalScore    float64 `json:"evaluation_total_score" gorm:"not null;default:0;column:evaluation_total_score"`
	EvaluationMaxTotalScore float64 `json:"evaluation_max_total_score" gorm:"not null;default:0;column:evaluation_max_total_score"`
	EvaluationAverageScore  float64 `json:"evaluation_average_score" gorm:"not null;default:0;column:evaluation_average_score"`
	EvaluationRating        Rating  `json:"evaluation_rating" gorm:"type:varchar(20);not null;default:'';column:evaluation_rating"`

	EvaluationOverallComment string `json:"evaluation_overall_comment" gorm:"type:text;not null;default:'';column:evaluation_overall_comment"`

	EvaluationStrengths        datatypes.JSONSlice[Strength]        `json:"evaluation_strengths" gorm:"type:jsonb;not null;default:'[]';column:evaluation_strengths"`
	EvaluationImprovementAreas datatypes.JSONSlice[ImprovementArea] `json:"evaluation_improvement_areas" gorm:"type:jsonb;not null;default:'[]';column:evaluation_improvement_areas"`
	EvaluationRecommendations  datatypes.JSONSlice[Recommendation]  `json:"evaluation_recommendations" gorm:"type:jsonb;not null;default:'[]';column:evaluation_recommendations"`

	EvaluationEvidenceAdequacy  string `json:"evaluation_evidence_adequacy" gorm:"type:varchar(15);not null;default:'';column:evaluation_evidence_adequacy"`
	EvaluationEvidenceRelevance string `json:"evaluation_evidence_relevance" gorm:"type:varchar(10);not null;default:'';column:evaluation_evidence_relevance"`
	EvaluationEvidenceQuality   string `json:"evaluation_evidence_quality" gorm:"type:varchar(10);not null;default:'';column:evaluation_evidence_quality"`

	EvaluationSupervisorComments *string    `json:"evaluation_supervisor_comments,omitempty" gorm:"type:text;column:evaluation_supervisor_comments"`
	EvaluationSupervisedBy       *uuid.UUID `json:"evaluation_supervised_by,omitempty" gorm:"type:uuid;column:evaluation_supervised_by"`

	EvaluationStatus EvaluationStatus `json:"evaluation_status" gorm:"type:varchar(12);not null;default:'draft';index;column:evaluation_status"`

	EvaluationSubmittedAt  *time.Time `json:"evaluation_submitted_at,omitempty" gorm:"column:evaluation_submitted_at"`
	EvaluationSupervisedAt *time.Time `json:"evaluation_supervised_at,omitempty" gorm:"column:evaluation_supervised_at"`
	EvaluationFinalizedAt  *time.Time `json:"evaluation_finalized_at,omitempty" gorm:"column:evaluation_finalized_at"`

	EvaluationWordCount     int        `json:"evaluation_word_count" gorm:"not null;default:0;column:evaluation_word_count"`
	EvaluationLastSaved     *time.Time `json:"evaluation_last_saved,omitempty" gorm:"column:evaluation_last_saved"`
	EvaluationAutosaveCount int        `json:"evaluation_autosave_count" gorm:"not null;default:0;column:evaluation_autosave_count"`

	EvaluationHistory datatypes.JSONSlice[HistoryEntry] `json:"evaluation_history" gorm:"type:jsonb;not null;default:'[]';column:evaluation_history"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime;column:created_at"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime;column:updated_at"`
}

func (EvaluationModel) TableName() string { return "evaluations" }

/* =========================================================
   HISTORY (append-only)
   ========================================================= */

func (e *EvaluationModel) AddHistory(action string, actorID uuid.UUID, now time.Time, changes map[string]any, note string) {
	e.EvaluationHistory = append(e.EvaluationHistory, HistoryEntry{
		Action:    action,
		ActorID:   actorID,
		Timestamp: now,
		Changes:   changes,
		Note:      note,
	})
}

/* =========================================================
   TRANSITIONS (pure guards; service persists with a
   conditional UPDATE on the old status)
   ========================================================= */

func (e *EvaluationModel) Submit(actorID uuid.UUID, now time.Time) error {
	if e.EvaluationStatus != EvaluationDraft {
		return apperr.Conflict(fmt.Sprintf("evaluation is already %s; it cannot be submitted again", e.EvaluationStatus))
	}
	e.EvaluationStatus = EvaluationSubmitted
	e.EvaluationSubmittedAt = &now
	e.AddHistory("submitted", actorID, now, map[string]any{"status": string(EvaluationSubmitted)}, "")
	return nil
}

func (e *EvaluationModel) Supervise(actorID uuid.UUID, comments string, now time.Time) error {
	if e.EvaluationStatus != EvaluationSubmitted {
		return apperr.Conflict("only a submitted evaluation can be supervised")
	}
	e.EvaluationStatus = EvaluationSupervised
	e.EvaluationSupervisedAt = &now
	e.EvaluationSupervisedBy = &actorID
	if comments == "" {
		comments = "Evaluation approved"
	}
	e.EvaluationSupervisorComments = &comments
	e.AddHistory("supervised", actorID, now, map[string]any{"status": string(EvaluationSupervised)}, comments)
	return nil
}

func (e *EvaluationModel) Finalize(actorID uuid.UUID, now time.Time) error {
	if e.EvaluationStatus != EvaluationSupervised {
		return apperr.Conflict("only a supervised evaluation can be finalized")
	}
	e.EvaluationStatus = EvaluationFinal
	e.EvaluationFinalizedAt = &now
	e.AddHistory("finalized", actorID, now, map[string]any{"status": string(EvaluationFinal)}, "")
	return nil
}

/* =========================================================
   PERMISSION PREDICATES
   ========================================================= */

// CanEdit: admin always; the owning evaluator only while draft.
func (e *EvaluationModel) CanEdit(userID uuid.UUID, role string) bool {
	if role == constants.RoleAdmin {
		return true
	}
	return e.EvaluationEvaluatorID == userID && e.EvaluationStatus == EvaluationDraft
}

// CanListForeignDrafts mirrors CanView's role axis for list queries: the
// roles that may view another evaluator's draft may also list it.
func CanListForeignDrafts(role string) bool {
	return role == constants.RoleAdmin || role == constants.RoleSupervisor
}

// CanView: admin, the owner and supervisors always; a manager only once the
// evaluation has left draft (managers may not see drafts).
func (e *EvaluationModel) CanView(userID uuid.UUID, role string) bool {
	switch {
	case role == constants.RoleAdmin:
		return true
	case e.EvaluationEvaluatorID == userID:
		return true
	case role == constants.RoleSupervisor:
		return true
	case role == constants.RoleManager:
		return e.EvaluationStatus != EvaluationDraft
	}
	return false
}
