// file: internals/features/assessment/evaluations/service/scoring_test.go
package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	evaluationModel "reviewdesk_backend/internals/features/assessment/evaluations/model"
	"reviewdesk_backend/internals/helpers/apperr"
)

func TestRatingForScore_Boundaries(t *testing.T) {
	cases := []struct {
		avg  float64
		want evaluationModel.Rating
	}{
		{10, evaluationModel.RatingExcellent},
		{9.0, evaluationModel.RatingExcellent},
		{8.99, evaluationModel.RatingGood},
		{7.0, evaluationModel.RatingGood},
		{6.99, evaluationModel.RatingSatisfactory},
		{5.0, evaluationModel.RatingSatisfactory},
		{4.99, evaluationModel.RatingNeedsImprovement},
		{3.0, evaluationModel.RatingNeedsImprovement},
		{2.99, evaluationModel.RatingPoor},
		{0, evaluationModel.RatingPoor},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, RatingForScore(c.avg), "avg=%v", c.avg)
	}
}

func TestRecompute_WeightedAverage(t *testing.T) {
	e := &evaluationModel.EvaluationModel{
		EvaluationCriteriaScores: []evaluationModel.CriteriaScore{
			{Name: "Content", MaxScore: 10, Score: 8, Weight: 0.6},
			{Name: "Evidence", MaxScore: 10, Score: 7.75, Weight: 0.4},
		},
	}
	Recompute(e)

	assert.Equal(t, 7.9, e.EvaluationTotalScore)
	assert.Equal(t, 10.0, e.EvaluationMaxTotalScore)
	assert.Equal(t, 7.9, e.EvaluationAverageScore)
	assert.Equal(t, evaluationModel.RatingGood, e.EvaluationRating)
}

func TestRecompute_RoundsToTwoDecimals(t *testing.T) {
	e := &evaluationModel.EvaluationModel{
		EvaluationCriteriaScores: []evaluationModel.CriteriaScore{
			{Name: "A", MaxScore: 3, Score: 1, Weight: 1},
		},
	}
	Recompute(e)

	assert.Equal(t, 3.33, e.EvaluationAverageScore)
}

func TestRecompute_ZeroWeight_LeavesRatingPlaceholder(t *testing.T) {
	e := &evaluationModel.EvaluationModel{
		EvaluationCriteriaScores: []evaluationModel.CriteriaScore{
			{Name: "A", MaxScore: 10, Score: 9, Weight: 0},
		},
		EvaluationRating: evaluationModel.RatingGood,
	}
	Recompute(e)

	assert.Zero(t, e.EvaluationAverageScore)
	assert.Zero(t, e.EvaluationTotalScore)
	assert.Zero(t, e.EvaluationMaxTotalScore)
	// evaluator-set rating stands as a non-authoritative placeholder
	assert.Equal(t, evaluationModel.RatingGood, e.EvaluationRating)
}

func TestRecompute_EmptyScores(t *testing.T) {
	e := &evaluationModel.EvaluationModel{}
	Recompute(e)

	assert.Zero(t, e.EvaluationAverageScore)
	assert.Equal(t, evaluationModel.RatingUnset, e.EvaluationRating)
}

func TestValidateScores(t *testing.T) {
	valid := []evaluationModel.CriteriaScore{
		{Name: "A", MaxScore: 10, Score: 10, Weight: 1},
		{Name: "B", MaxScore: 5, Score: 0, Weight: 0},
	}
	require.NoError(t, ValidateScores(valid))

	cases := []struct {
		name   string
		scores []evaluationModel.CriteriaScore
	}{
		{"missing name", []evaluationModel.CriteriaScore{{MaxScore: 10, Score: 5, Weight: 1}}},
		{"zero max", []evaluationModel.CriteriaScore{{Name: "A", MaxScore: 0, Score: 0, Weight: 1}}},
		{"score above max", []evaluationModel.CriteriaScore{{Name: "A", MaxScore: 10, Score: 10.01, Weight: 1}}},
		{"negative score", []evaluationModel.CriteriaScore{{Name: "A", MaxScore: 10, Score: -1, Weight: 1}}},
		{"weight above one", []evaluationModel.CriteriaScore{{Name: "A", MaxScore: 10, Score: 5, Weight: 1.5}}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := ValidateScores(c.scores)
			require.Error(t, err)
			assert.True(t, apperr.IsKind(err, apperr.KindValidation))
		})
	}
}

func TestProgress_Checkpoints(t *testing.T) {
	e := &evaluationModel.EvaluationModel{}
	assert.Equal(t, 0, Progress(e))
	assert.False(t, IsComplete(e))
	assert.Len(t, MissingFields(e), 5)

	e.EvaluationOverallComment = "Solid work overall."
	assert.Equal(t, 20, Progress(e))

	e.EvaluationRating = evaluationModel.RatingGood
	assert.Equal(t, 40, Progress(e))

	e.EvaluationEvidenceAdequacy = "adequate"
	assert.Equal(t, 60, Progress(e))

	e.EvaluationEvidenceRelevance = "good"
	assert.Equal(t, 80, Progress(e))

	e.EvaluationEvidenceQuality = "excellent"
	assert.Equal(t, 100, Progress(e))
	assert.True(t, IsComplete(e))
	assert.Empty(t, MissingFields(e))
}

func TestProgress_WhitespaceCommentDoesNotCount(t *testing.T) {
	e := &evaluationModel.EvaluationModel{EvaluationOverallComment: "   \n\t "}
	assert.Equal(t, 0, Progress(e))
	assert.Contains(t, MissingFields(e), "overall_comment")
}

func TestProgress_InvalidEvidenceValuesDoNotCount(t *testing.T) {
	e := &evaluationModel.EvaluationModel{
		EvaluationEvidenceAdequacy:  "plenty",
		EvaluationEvidenceRelevance: "amazing",
		EvaluationEvidenceQuality:   "superb",
	}
	assert.Equal(t, 0, Progress(e))
}

func TestWordCount(t *testing.T) {
	assert.Equal(t, 0, WordCount(""))
	assert.Equal(t, 0, WordCount("   "))
	assert.Equal(t, 3, WordCount("well structured report"))
	assert.Equal(t, 2, WordCount("  spaced\n\nout  "))
}
