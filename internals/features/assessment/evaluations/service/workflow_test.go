// file: internals/features/assessment/evaluations/service/workflow_test.go
package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	assignmentModel "reviewdesk_backend/internals/features/assessment/assignments/model"
	evaluationModel "reviewdesk_backend/internals/features/assessment/evaluations/model"
)

// Full happy path over in-memory entities with a fixed clock:
// accept -> start -> score -> submit -> supervise -> finalize.
func TestWorkflow_AcceptThroughFinalize(t *testing.T) {
	clock := time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)
	expert := uuid.New()
	supervisor := uuid.New()

	assignment := &assignmentModel.AssignmentModel{
		AssignmentID:         uuid.New(),
		AssignmentReportID:   uuid.New(),
		AssignmentExpertID:   expert,
		AssignmentAssignedBy: uuid.New(),
		AssignmentDeadline:   clock.AddDate(0, 0, 14),
		AssignmentStatus:     assignmentModel.AssignmentPending,
		AssignmentCriteria: []assignmentModel.Criterion{
			{Name: "Content", MaxScore: 10, Weight: 0.6},
			{Name: "Evidence", MaxScore: 10, Weight: 0.4},
		},
	}

	require.NoError(t, assignment.Accept("on it", clock))
	require.True(t, assignment.CanEvaluate(expert))
	require.NoError(t, assignment.Start(clock.Add(time.Hour)))

	// draft opens with scores copied from the assignment's criteria
	evaluation := &evaluationModel.EvaluationModel{
		EvaluationID:           uuid.New(),
		EvaluationAssignmentID: assignment.AssignmentID,
		EvaluationReportID:     assignment.AssignmentReportID,
		EvaluationEvaluatorID:  expert,
		EvaluationStatus:       evaluationModel.EvaluationDraft,
	}
	for _, cr := range assignment.AssignmentCriteria {
		evaluation.EvaluationCriteriaScores = append(evaluation.EvaluationCriteriaScores,
			evaluationModel.CriteriaScore{Name: cr.Name, MaxScore: cr.MaxScore, Weight: cr.Weight})
	}
	evaluation.AddHistory("created", expert, clock.Add(time.Hour), nil, "")
	Recompute(evaluation)
	assert.Zero(t, evaluation.EvaluationAverageScore)

	// incomplete drafts cannot pass the submission gate
	assert.False(t, IsComplete(evaluation))

	// expert fills in scores and the five checkpoints
	evaluation.EvaluationCriteriaScores[0].Score = 8
	evaluation.EvaluationCriteriaScores[1].Score = 7.75
	evaluation.EvaluationOverallComment = "Well argued with minor gaps in evidence."
	evaluation.EvaluationRating = evaluationModel.RatingGood
	evaluation.EvaluationEvidenceAdequacy = "adequate"
	evaluation.EvaluationEvidenceRelevance = "good"
	evaluation.EvaluationEvidenceQuality = "good"
	Recompute(evaluation)

	assert.Equal(t, 7.9, evaluation.EvaluationAverageScore)
	assert.Equal(t, evaluationModel.RatingGood, evaluation.EvaluationRating)
	require.True(t, IsComplete(evaluation))

	submitAt := clock.Add(26 * time.Hour)
	require.NoError(t, evaluation.Submit(expert, submitAt))
	require.NoError(t, assignment.Complete(evaluation.EvaluationID, submitAt))

	assert.Equal(t, assignmentModel.AssignmentCompleted, assignment.AssignmentStatus)
	require.NotNil(t, assignment.AssignmentActualDuration)
	assert.Equal(t, 25.0, *assignment.AssignmentActualDuration)

	require.NoError(t, evaluation.Supervise(supervisor, "thorough work", submitAt.Add(time.Hour)))
	require.NoError(t, evaluation.Finalize(supervisor, submitAt.Add(2*time.Hour)))

	assert.Equal(t, evaluationModel.EvaluationFinal, evaluation.EvaluationStatus)
	require.Len(t, evaluation.EvaluationHistory, 4)
	assert.Equal(t, "finalized", evaluation.EvaluationHistory[3].Action)

	// pipeline is forward-only: nothing can run twice
	assert.Error(t, evaluation.Submit(expert, submitAt))
	assert.Error(t, evaluation.Supervise(supervisor, "", submitAt))
	assert.Error(t, evaluation.Finalize(supervisor, submitAt))
}
