// file: internals/features/assessment/evaluations/service/approval_test.go
package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	evaluationModel "reviewdesk_backend/internals/features/assessment/evaluations/model"
	"reviewdesk_backend/internals/helpers/apperr"
)

var submitNow = time.Date(2026, 4, 2, 10, 0, 0, 0, time.UTC)

func completeDraft() *evaluationModel.EvaluationModel {
	e := &evaluationModel.EvaluationModel{
		EvaluationID:           uuid.New(),
		EvaluationAssignmentID: uuid.New(),
		EvaluationReportID:     uuid.New(),
		EvaluationEvaluatorID:  uuid.New(),
		EvaluationStatus:       evaluationModel.EvaluationDraft,
		EvaluationCriteriaScores: []evaluationModel.CriteriaScore{
			{Name: "Content", MaxScore: 10, Score: 8, Weight: 0.6},
			{Name: "Evidence", MaxScore: 10, Score: 7.75, Weight: 0.4},
		},
		EvaluationOverallComment:    "Well argued with minor gaps.",
		EvaluationRating:            evaluationModel.RatingGood,
		EvaluationEvidenceAdequacy:  "adequate",
		EvaluationEvidenceRelevance: "good",
		EvaluationEvidenceQuality:   "good",
	}
	return e
}

// The derived fields frozen by submission must derive from the scores the
// row holds at submit time, not from an earlier read. A draft whose stored
// totals lag behind its scores (a save landed in between) gets them
// recomputed from the current scores before the status flips.
func TestSubmitLocked_RecomputesFromCurrentScores(t *testing.T) {
	e := completeDraft()
	e.EvaluationTotalScore = 1.23
	e.EvaluationMaxTotalScore = 4.56
	e.EvaluationAverageScore = 2.7
	e.EvaluationRating = evaluationModel.RatingGood

	require.NoError(t, submitLocked(e, e.EvaluationEvaluatorID, submitNow))

	assert.Equal(t, evaluationModel.EvaluationSubmitted, e.EvaluationStatus)
	assert.Equal(t, 7.9, e.EvaluationAverageScore)
	assert.Equal(t, 7.9, e.EvaluationTotalScore)
	assert.Equal(t, 10.0, e.EvaluationMaxTotalScore)
	assert.Equal(t, evaluationModel.RatingGood, e.EvaluationRating)
}

func TestSubmitLocked_OwnerOnly(t *testing.T) {
	e := completeDraft()

	err := submitLocked(e, uuid.New(), submitNow)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindAuthorization))
	assert.Equal(t, evaluationModel.EvaluationDraft, e.EvaluationStatus)
}

func TestSubmitLocked_IncompleteIsRejected(t *testing.T) {
	e := completeDraft()
	e.EvaluationOverallComment = ""

	err := submitLocked(e, e.EvaluationEvaluatorID, submitNow)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
	assert.Equal(t, evaluationModel.EvaluationDraft, e.EvaluationStatus)
}

func TestSubmitLocked_TwiceConflicts(t *testing.T) {
	e := completeDraft()
	require.NoError(t, submitLocked(e, e.EvaluationEvaluatorID, submitNow))

	err := submitLocked(e, e.EvaluationEvaluatorID, submitNow)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))
}
