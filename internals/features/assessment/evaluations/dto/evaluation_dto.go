// file: internals/features/assessment/evaluations/dto/evaluation_dto.go
package dto

import (
	"time"

	"github.com/google/uuid"

	"reviewdesk_backend/internals/features/assessment/evaluations/model"
)

/* =========================================================
   REQUEST DTOS
   ========================================================= */

type CreateEvaluationRequest struct {
	AssignmentID uuid.UUID `json:"assignment_id" validate:"required"`
}

type CriteriaScoreRequest struct {
	Name     string  `json:"name" validate:"required,max=200"`
	MaxScore float64 `json:"max_score" validate:"required,gt=0"`
	Score    float64 `json:"score" validate:"gte=0"`
	Weight   float64 `json:"weight" validate:"gte=0,lte=1"`
	Comment  string  `json:"comment" validate:"omitempty,max=2000"`
}

type StrengthRequest struct {
	Point             string `json:"point" validate:"required,max=1000"`
	EvidenceReference string `json:"evidence_reference" validate:"omitempty,max=500"`
}

type ImprovementAreaRequest struct {
	Area           string `json:"area" validate:"required,max=1000"`
	Recommendation string `json:"recommendation" validate:"omitempty,max=2000"`
	Priority       string `json:"priority" validate:"omitempty,oneof=low medium high"`
}

type RecommendationRequest struct {
	Text     string `json:"text" validate:"required,max=2000"`
	Type     string `json:"type" validate:"omitempty,oneof=immediate short_term long_term"`
	Priority string `json:"priority" validate:"omitempty,oneof=low medium high"`
}

// UpdateEvaluationRequest carries the editable surface of a draft. Nil
// pointers and nil slices mean "leave unchanged".
type UpdateEvaluationRequest struct {
	CriteriaScores []CriteriaScoreRequest `json:"criteria_scores" validate:"omitempty,dive"`

	OverallComment *string `json:"overall_comment" validate:"omitempty,max=10000"`
	Rating         *string `json:"rating" validate:"omitempty,oneof=excellent good satisfactory needs_improvement poor"`

	Strengths        []StrengthRequest        `json:"strengths" validate:"omitempty,dive"`
	ImprovementAreas []ImprovementAreaRequest `json:"improvement_areas" validate:"omitempty,dive"`
	Recommendations  []RecommendationRequest  `json:"recommendations" validate:"omitempty,dive"`

	EvidenceAdequacy  *string `json:"evidence_adequacy" validate:"omitempty,oneof=insufficient adequate comprehensive"`
	EvidenceRelevance *string `json:"evidence_relevance" validate:"omitempty,oneof=poor fair good excellent"`
	EvidenceQuality   *string `json:"evidence_quality" validate:"omitempty,oneof=poor fair good excellent"`
}

type SuperviseEvaluationRequest struct {
	Comments string `json:"comments" validate:"omitempty,max=10000"`
}

func (r UpdateEvaluationRequest) ScoreModels() []model.CriteriaScore {
	if r.CriteriaScores == nil {
		return nil
	}
	out := make([]model.CriteriaScore, 0, len(r.CriteriaScores))
	for _, cs := range r.CriteriaScores {
		out = append(out, model.CriteriaScore{
			Name:     cs.Name,
			MaxScore: cs.MaxScore,
			Score:    cs.Score,
			Weight:   cs.Weight,
			Comment:  cs.Comment,
		})
	}
	return out
}

func (r UpdateEvaluationRequest) StrengthModels() []model.Strength {
	if r.Strengths == nil {
		return nil
	}
	out := make([]model.Strength, 0, len(r.Strengths))
	for _, s := range r.Strengths {
		out = append(out, model.Strength{Point: s.Point, EvidenceReference: s.EvidenceReference})
	}
	return out
}

func (r UpdateEvaluationRequest) ImprovementAreaModels() []model.ImprovementArea {
	if r.ImprovementAreas == nil {
		return nil
	}
	out := make([]model.ImprovementArea, 0, len(r.ImprovementAreas))
	for _, a := range r.ImprovementAreas {
		out = append(out, model.ImprovementArea{Area: a.Area, Recommendation: a.Recommendation, Priority: a.Priority})
	}
	return out
}

func (r UpdateEvaluationRequest) RecommendationModels() []model.Recommendation {
	if r.Recommendations == nil {
		return nil
	}
	out := make([]model.Recommendation, 0, len(r.Recommendations))
	for _, rec := range r.Recommendations {
		out = append(out, model.Recommendation{Text: rec.Text, Type: rec.Type, Priority: rec.Priority})
	}
	return out
}

/* =========================================================
   RESPONSE DTOS
   ========================================================= */

type EvaluationResponse struct {
	EvaluationID uuid.UUID `json:"evaluation_id"`
	AssignmentID uuid.UUID `json:"assignment_id"`
	ReportID     uuid.UUID `json:"report_id"`
	EvaluatorID  uuid.UUID `json:"evaluator_id"`

	CriteriaScores []model.CriteriaScore `json:"criteria_scores"`

	TotalScore    float64 `json:"total_score"`
	MaxTotalScore float64 `json:"max_total_score"`
	AverageScore  float64 `json:"average_score"`
	Rating        string  `json:"rating"`

	OverallComment   string                  `json:"overall_comment"`
	Strengths        []model.Strength        `json:"strengths"`
	ImprovementAreas []model.ImprovementArea `json:"improvement_areas"`
	Recommendations  []model.Recommendation  `json:"recommendations"`

	EvidenceAdequacy  string `json:"evidence_adequacy"`
	EvidenceRelevance string `json:"evidence_relevance"`
	EvidenceQuality   string `json:"evidence_quality"`

	SupervisorComments *string    `json:"supervisor_comments,omitempty"`
	SupervisedBy       *uuid.UUID `json:"supervised_by,omitempty"`

	Status string `json:"status"`

	SubmittedAt  *time.Time `json:"submitted_at,omitempty"`
	SupervisedAt *time.Time `json:"supervised_at,omitempty"`
	FinalizedAt  *time.Time `json:"finalized_at,omitempty"`

	WordCount     int        `json:"word_count"`
	LastSaved     *time.Time `json:"last_saved,omitempty"`
	AutosaveCount int        `json:"autosave_count"`

	History []model.HistoryEntry `json:"history"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type EvaluationProgressResponse struct {
	EvaluationID  uuid.UUID `json:"evaluation_id"`
	Progress      int       `json:"progress"`
	IsComplete    bool      `json:"is_complete"`
	MissingFields []string  `json:"missing_fields"`
}

func FromEvaluationModel(e *model.EvaluationModel) EvaluationResponse {
	return EvaluationResponse{
		EvaluationID:       e.EvaluationID,
		AssignmentID:       e.EvaluationAssignmentID,
		ReportID:           e.EvaluationReportID,
		EvaluatorID:        e.EvaluationEvaluatorID,
		CriteriaScores:     e.EvaluationCriteriaScores,
		TotalScore:         e.EvaluationTotalScore,
		MaxTotalScore:      e.EvaluationMaxTotalScore,
		AverageScore:       e.EvaluationAverageScore,
		Rating:             string(e.EvaluationRating),
		OverallComment:     e.EvaluationOverallComment,
		Strengths:          e.EvaluationStrengths,
		ImprovementAreas:   e.EvaluationImprovementAreas,
		Recommendations:    e.EvaluationRecommendations,
		EvidenceAdequacy:   e.EvaluationEvidenceAdequacy,
		EvidenceRelevance:  e.EvaluationEvidenceRelevance,
		EvidenceQuality:    e.EvaluationEvidenceQuality,
		SupervisorComments: e.EvaluationSupervisorComments,
		SupervisedBy:       e.EvaluationSupervisedBy,
		Status:             string(e.EvaluationStatus),
		SubmittedAt:        e.EvaluationSubmittedAt,
		SupervisedAt:       e.EvaluationSupervisedAt,
		FinalizedAt:        e.EvaluationFinalizedAt,
		WordCount:          e.EvaluationWordCount,
		LastSaved:          e.EvaluationLastSaved,
		AutosaveCount:      e.EvaluationAutosaveCount,
		History:            e.EvaluationHistory,
		CreatedAt:          e.CreatedAt,
		UpdatedAt:          e.UpdatedAt,
	}
}

func FromEvaluationModels(rows []model.EvaluationModel) []EvaluationResponse {
	out := make([]EvaluationResponse, 0, len(rows))
	for i := range rows {
		out = append(out, FromEvaluationModel(&rows[i]))
	}
	return out
}
