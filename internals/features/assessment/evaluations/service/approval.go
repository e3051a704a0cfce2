// file: internals/features/assessment/evaluations/service/approval.go
package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"reviewdesk_backend/internals/constants"
	assignmentModel "reviewdesk_backend/internals/features/assessment/assignments/model"
	assignmentService "reviewdesk_backend/internals/features/assessment/assignments/service"
	evaluationModel "reviewdesk_backend/internals/features/assessment/evaluations/model"
	notificationModel "reviewdesk_backend/internals/features/assessment/notifications/model"
	notificationService "reviewdesk_backend/internals/features/assessment/notifications/service"
	reportService "reviewdesk_backend/internals/features/assessment/reports/service"
	"reviewdesk_backend/internals/helpers/apperr"
)

// ApprovalPipeline drives the draft -> submitted -> supervised -> final
// progression. Transitions only ever move forward; each step persists with a
// conditional UPDATE on the previous status so concurrent approvals cannot
// double-apply.
type ApprovalPipeline struct {
	DB         *gorm.DB
	Now        func() time.Time
	Aggregator *reportService.Aggregator
}

func NewApprovalPipeline(db *gorm.DB) *ApprovalPipeline {
	return &ApprovalPipeline{
		DB:         db,
		Now:        time.Now,
		Aggregator: reportService.NewAggregator(db),
	}
}

/* =========================================================
   CREATE (expert opens a draft against an assignment)
   ========================================================= */

func (p *ApprovalPipeline) Create(assignmentID, actorID uuid.UUID) (*evaluationModel.EvaluationModel, error) {
	var assignment assignmentModel.AssignmentModel
	if err := p.DB.First(&assignment, "assignment_id = ?", assignmentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("assignment not found")
		}
		return nil, err
	}

	if assignment.AssignmentExpertID != actorID {
		return nil, apperr.Authorization("only the assigned expert may evaluate this assignment")
	}
	if !assignment.CanEvaluate(actorID) {
		return nil, apperr.Conflict(fmt.Sprintf("assignment in status %s cannot be evaluated", assignment.AssignmentStatus))
	}

	now := p.Now()

	scores := make([]evaluationModel.CriteriaScore, 0, len(assignment.AssignmentCriteria))
	for _, cr := range assignment.AssignmentCriteria {
		scores = append(scores, evaluationModel.CriteriaScore{
			Name:     cr.Name,
			MaxScore: cr.MaxScore,
			Weight:   cr.Weight,
		})
	}

	evaluation := evaluationModel.EvaluationModel{
		EvaluationAssignmentID:   assignmentID,
		EvaluationReportID:       assignment.AssignmentReportID,
		EvaluationEvaluatorID:    actorID,
		EvaluationCriteriaScores: scores,
		EvaluationStatus:         evaluationModel.EvaluationDraft,
	}
	evaluation.AddHistory("created", actorID, now, nil, "")
	Recompute(&evaluation)

	err := p.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&evaluation).Error; err != nil {
			if isUniqueViolation(err) {
				return apperr.Conflict("an evaluation already exists for this assignment")
			}
			return err
		}
		return assignmentService.StartTx(tx, &assignment, now)
	})
	if err != nil {
		return nil, err
	}
	return &evaluation, nil
}

/* =========================================================
   DRAFT EDITING
   ========================================================= */

type UpdateEvaluationInput struct {
	CriteriaScores []evaluationModel.CriteriaScore

	OverallComment *string
	Rating         *evaluationModel.Rating

	Strengths        []evaluationModel.Strength
	ImprovementAreas []evaluationModel.ImprovementArea
	Recommendations  []evaluationModel.Recommendation

	EvidenceAdequacy  *string
	EvidenceRelevance *string
	EvidenceQuality   *string
}

func (p *ApprovalPipeline) Update(id, actorID uuid.UUID, role string, in UpdateEvaluationInput) (*evaluationModel.EvaluationModel, error) {
	return p.edit(id, actorID, role, in, false)
}

// Autosave is the high-frequency variant of Update: owner-only, draft-only,
// bumps the autosave counter and skips the audit trail.
func (p *ApprovalPipeline) Autosave(id, actorID uuid.UUID, in UpdateEvaluationInput) (*evaluationModel.EvaluationModel, error) {
	return p.edit(id, actorID, "", in, true)
}

func (p *ApprovalPipeline) edit(id, actorID uuid.UUID, role string, in UpdateEvaluationInput, autosave bool) (*evaluationModel.EvaluationModel, error) {
	evaluation, err := p.getByID(p.DB, id)
	if err != nil {
		return nil, err
	}

	if autosave {
		if evaluation.EvaluationEvaluatorID != actorID || evaluation.EvaluationStatus != evaluationModel.EvaluationDraft {
			return nil, apperr.Authorization("only the evaluator may autosave a draft evaluation")
		}
	} else if !evaluation.CanEdit(actorID, role) {
		return nil, apperr.Authorization("this evaluation can no longer be edited")
	}

	now := p.Now()
	old := evaluation.EvaluationStatus
	var changed []string

	if in.CriteriaScores != nil {
		if err := ValidateScores(in.CriteriaScores); err != nil {
			return nil, err
		}
		evaluation.EvaluationCriteriaScores = in.CriteriaScores
		changed = append(changed, "criteria_scores")
	}
	if in.OverallComment != nil {
		evaluation.EvaluationOverallComment = *in.OverallComment
		evaluation.EvaluationWordCount = WordCount(*in.OverallComment)
		changed = append(changed, "overall_comment")
	}
	if in.Rating != nil {
		if !evaluationModel.ValidRating(*in.Rating) {
			return nil, apperr.Validation(fmt.Sprintf("invalid rating %q", *in.Rating))
		}
		evaluation.EvaluationRating = *in.Rating
		changed = append(changed, "rating")
	}
	if in.Strengths != nil {
		evaluation.EvaluationStrengths = in.Strengths
		changed = append(changed, "strengths")
	}
	if in.ImprovementAreas != nil {
		evaluation.EvaluationImprovementAreas = in.ImprovementAreas
		changed = append(changed, "improvement_areas")
	}
	if in.Recommendations != nil {
		evaluation.EvaluationRecommendations = in.Recommendations
		changed = append(changed, "recommendations")
	}
	if in.EvidenceAdequacy != nil {
		if *in.EvidenceAdequacy != "" && !evaluationModel.ValidAdequacy(*in.EvidenceAdequacy) {
			return nil, apperr.Validation(fmt.Sprintf("invalid evidence adequacy %q", *in.EvidenceAdequacy))
		}
		evaluation.EvaluationEvidenceAdequacy = *in.EvidenceAdequacy
		changed = append(changed, "evidence_adequacy")
	}
	if in.EvidenceRelevance != nil {
		if *in.EvidenceRelevance != "" && !evaluationModel.ValidEvidenceGrade(*in.EvidenceRelevance) {
			return nil, apperr.Validation(fmt.Sprintf("invalid evidence relevance %q", *in.EvidenceRelevance))
		}
		evaluation.EvaluationEvidenceRelevance = *in.EvidenceRelevance
		changed = append(changed, "evidence_relevance")
	}
	if in.EvidenceQuality != nil {
		if *in.EvidenceQuality != "" && !evaluationModel.ValidEvidenceGrade(*in.EvidenceQuality) {
			return nil, apperr.Validation(fmt.Sprintf("invalid evidence quality %q", *in.EvidenceQuality))
		}
		evaluation.EvaluationEvidenceQuality = *in.EvidenceQuality
		changed = append(changed, "evidence_quality")
	}

	if len(changed) == 0 && !autosave {
		return evaluation, nil
	}

	// Scores changed (or not): derived fields are always refreshed so they
	// can never drift from the criteria scores on disk.
	Recompute(evaluation)

	updates := map[string]interface{}{
		"evaluation_criteria_scores":    evaluation.EvaluationCriteriaScores,
		"evaluation_total_score":        evaluation.EvaluationTotalScore,
		"evaluation_max_total_score":    evaluation.EvaluationMaxTotalScore,
		"evaluation_average_score":      evaluation.EvaluationAverageScore,
		"evaluation_rating":             evaluation.EvaluationRating,
		"evaluation_overall_comment":    evaluation.EvaluationOverallComment,
		"evaluation_word_count":         evaluation.EvaluationWordCount,
		"evaluation_strengths":          evaluation.EvaluationStrengths,
		"evaluation_improvement_areas":  evaluation.EvaluationImprovementAreas,
		"evaluation_recommendations":    evaluation.EvaluationRecommendations,
		"evaluation_evidence_adequacy":  evaluation.EvaluationEvidenceAdequacy,
		"evaluation_evidence_relevance": evaluation.EvaluationEvidenceRelevance,
		"evaluation_evidence_quality":   evaluation.EvaluationEvidenceQuality,
	}

	if autosave {
		evaluation.EvaluationAutosaveCount++
		evaluation.EvaluationLastSaved = &now
		updates["evaluation_autosave_count"] = evaluation.EvaluationAutosaveCount
		updates["evaluation_last_saved"] = evaluation.EvaluationLastSaved
	} else {
		evaluation.AddHistory("updated", actorID, now, map[string]any{"fields": changed}, "")
		updates["evaluation_history"] = evaluation.EvaluationHistory
	}

	res := p.DB.Model(&evaluationModel.EvaluationModel{}).
		Where("evaluation_id = ? AND evaluation_status = ?", id, old).
		Updates(updates)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, apperr.Conflict("evaluation was modified concurrently")
	}
	return evaluation, nil
}

/* =========================================================
   PIPELINE STEPS
   ========================================================= */

// submitLocked applies the submission guards and transition to the row the
// transaction holds locked. Recompute runs on the locked row's scores, so the
// derived fields frozen by submission always derive from the scores on disk.
func submitLocked(e *evaluationModel.EvaluationModel, actorID uuid.UUID, now time.Time) error {
	if e.EvaluationEvaluatorID != actorID {
		return apperr.Authorization("only the evaluator may submit this evaluation")
	}
	if !IsComplete(e) {
		missing := MissingFields(e)
		return apperr.Validation(fmt.Sprintf("evaluation is incomplete; missing: %s", strings.Join(missing, ", ")))
	}
	if err := e.Submit(actorID, now); err != nil {
		return err
	}
	Recompute(e)
	return nil
}

// Submit freezes the draft, completes the paired assignment in the same
// transaction and notifies the assigner.
func (p *ApprovalPipeline) Submit(id, actorID uuid.UUID) (*evaluationModel.EvaluationModel, []notificationService.Event, error) {
	now := p.Now()

	var evaluation *evaluationModel.EvaluationModel
	var assignment assignmentModel.AssignmentModel
	err := p.DB.Transaction(func(tx *gorm.DB) error {
		locked, err := p.getLocked(tx, id)
		if err != nil {
			return err
		}
		old := locked.EvaluationStatus
		if err := submitLocked(locked, actorID, now); err != nil {
			return err
		}
		if err := p.persistTransition(tx, locked, old, map[string]interface{}{
			"evaluation_status":          locked.EvaluationStatus,
			"evaluation_submitted_at":    locked.EvaluationSubmittedAt,
			"evaluation_total_score":     locked.EvaluationTotalScore,
			"evaluation_max_total_score": locked.EvaluationMaxTotalScore,
			"evaluation_average_score":   locked.EvaluationAverageScore,
			"evaluation_rating":          locked.EvaluationRating,
			"evaluation_history":         locked.EvaluationHistory,
		}); err != nil {
			return err
		}
		if err := tx.First(&assignment, "assignment_id = ?", locked.EvaluationAssignmentID).Error; err != nil {
			return err
		}
		if err := assignmentService.CompleteTx(tx, locked.EvaluationAssignmentID, locked.EvaluationID, now); err != nil {
			return err
		}
		evaluation = locked
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	events := []notificationService.Event{{
		Type:       notificationModel.KindEvaluationSubmitted,
		Recipient:  assignment.AssignmentAssignedBy,
		Sender:     &actorID,
		EntityType: notificationModel.EntityEvaluation,
		EntityID:   evaluation.EvaluationID,
		Title:      "Evaluation submitted",
		Message:    fmt.Sprintf("An evaluation was submitted with an average score of %.2f.", evaluation.EvaluationAverageScore),
	}}
	return evaluation, events, nil
}

func (p *ApprovalPipeline) Supervise(id, actorID uuid.UUID, comments string) (*evaluationModel.EvaluationModel, []notificationService.Event, error) {
	evaluation, err := p.getByID(p.DB, id)
	if err != nil {
		return nil, nil, err
	}

	now := p.Now()
	old := evaluation.EvaluationStatus
	if err := evaluation.Supervise(actorID, comments, now); err != nil {
		return nil, nil, err
	}

	if err := p.persistTransition(p.DB, evaluation, old, map[string]interface{}{
		"evaluation_status":              evaluation.EvaluationStatus,
		"evaluation_supervised_at":       evaluation.EvaluationSupervisedAt,
		"evaluation_supervised_by":       evaluation.EvaluationSupervisedBy,
		"evaluation_supervisor_comments": evaluation.EvaluationSupervisorComments,
		"evaluation_history":             evaluation.EvaluationHistory,
	}); err != nil {
		return nil, nil, err
	}

	events := []notificationService.Event{{
		Type:       notificationModel.KindEvaluationSupervised,
		Recipient:  evaluation.EvaluationEvaluatorID,
		Sender:     &actorID,
		EntityType: notificationModel.EntityEvaluation,
		EntityID:   evaluation.EvaluationID,
		Title:      "Evaluation approved by supervisor",
		Message:    "Your evaluation passed supervisory review.",
	}}
	return evaluation, events, nil
}

// Finalize locks the evaluation and folds its score into the parent
// report's aggregate, both inside one transaction.
func (p *ApprovalPipeline) Finalize(id, actorID uuid.UUID) (*evaluationModel.EvaluationModel, []notificationService.Event, error) {
	evaluation, err := p.getByID(p.DB, id)
	if err != nil {
		return nil, nil, err
	}

	now := p.Now()
	old := evaluation.EvaluationStatus
	if err := evaluation.Finalize(actorID, now); err != nil {
		return nil, nil, err
	}

	err = p.DB.Transaction(func(tx *gorm.DB) error {
		if err := p.persistTransition(tx, evaluation, old, map[string]interface{}{
			"evaluation_status":       evaluation.EvaluationStatus,
			"evaluation_finalized_at": evaluation.EvaluationFinalizedAt,
			"evaluation_history":      evaluation.EvaluationHistory,
		}); err != nil {
			return err
		}
		return p.Aggregator.OnFinalizedTx(tx, evaluation.EvaluationReportID, evaluation.EvaluationID)
	})
	if err != nil {
		return nil, nil, err
	}

	events := []notificationService.Event{{
		Type:       notificationModel.KindEvaluationFinalized,
		Recipient:  evaluation.EvaluationEvaluatorID,
		Sender:     &actorID,
		EntityType: notificationModel.EntityEvaluation,
		EntityID:   evaluation.EvaluationID,
		Title:      "Evaluation finalized",
		Message:    "Your evaluation has been finalized and counted toward the report score.",
	}}
	return evaluation, events, nil
}

/* =========================================================
   DELETE (drafts only)
   ========================================================= */

func (p *ApprovalPipeline) DeleteDraft(id, actorID uuid.UUID, role string) error {
	evaluation, err := p.getByID(p.DB, id)
	if err != nil {
		return err
	}
	if evaluation.EvaluationEvaluatorID != actorID && role != constants.RoleAdmin {
		return apperr.Authorization("only the evaluator may delete this evaluation")
	}
	if evaluation.EvaluationStatus != evaluationModel.EvaluationDraft {
		return apperr.Conflict("only a draft evaluation can be deleted")
	}

	res := p.DB.
		Where("evaluation_id = ? AND evaluation_status = ?", id, evaluationModel.EvaluationDraft).
		Delete(&evaluationModel.EvaluationModel{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.Conflict("evaluation was modified concurrently")
	}
	return nil
}

/* =========================================================
   READS
   ========================================================= */

func (p *ApprovalPipeline) Get(id, actorID uuid.UUID, role string) (*evaluationModel.EvaluationModel, error) {
	evaluation, err := p.getByID(p.DB, id)
	if err != nil {
		return nil, err
	}
	if !evaluation.CanView(actorID, role) {
		return nil, apperr.Authorization("you are not allowed to view this evaluation")
	}
	return evaluation, nil
}

/* =========================================================
   INTERNAL
   ========================================================= */

func (p *ApprovalPipeline) getByID(db *gorm.DB, id uuid.UUID) (*evaluationModel.EvaluationModel, error) {
	var evaluation evaluationModel.EvaluationModel
	if err := db.First(&evaluation, "evaluation_id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("evaluation not found")
		}
		return nil, err
	}
	return &evaluation, nil
}

// getLocked takes the row FOR UPDATE inside the caller's transaction.
func (p *ApprovalPipeline) getLocked(tx *gorm.DB, id uuid.UUID) (*evaluationModel.EvaluationModel, error) {
	var evaluation evaluationModel.EvaluationModel
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&evaluation, "evaluation_id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("evaluation not found")
		}
		return nil, err
	}
	return &evaluation, nil
}

func (p *ApprovalPipeline) persistTransition(db *gorm.DB, e *evaluationModel.EvaluationModel, old evaluationModel.EvaluationStatus, updates map[string]interface{}) error {
	res := db.Model(&evaluationModel.EvaluationModel{}).
		Where("evaluation_id = ? AND evaluation_status = ?", e.EvaluationID, old).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.Conflict("evaluation was modified concurrently")
	}
	return nil
}

func isUniqueViolation(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") || strings.Contains(msg, "unique")
}
