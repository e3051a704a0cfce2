// file: internals/features/assessment/reports/service/aggregator_test.go
package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"

	evaluationModel "reviewdesk_backend/internals/features/assessment/evaluations/model"
)

func TestMeanScore_ZeroWithoutQualifyingEvaluations(t *testing.T) {
	assert.Equal(t, 0.0, MeanScore(nil))
	assert.Equal(t, 0.0, MeanScore([]float64{}))
}

func TestMeanScore_MeanAndRounding(t *testing.T) {
	assert.Equal(t, 7.9, MeanScore([]float64{7.9}))
	assert.Equal(t, 8.0, MeanScore([]float64{7.5, 8.5}))
	assert.Equal(t, 6.67, MeanScore([]float64{5, 7, 8})) // 20/3
}

func TestQualifies_DraftsNeverCount(t *testing.T) {
	assert.False(t, Qualifies(evaluationModel.EvaluationDraft))
	assert.True(t, Qualifies(evaluationModel.EvaluationSubmitted))
	assert.True(t, Qualifies(evaluationModel.EvaluationSupervised))
	assert.True(t, Qualifies(evaluationModel.EvaluationFinal))
}

func TestAppendEvaluationID(t *testing.T) {
	first := uuid.New()
	second := uuid.New()

	ids, added := AppendEvaluationID(nil, first)
	assert.True(t, added)
	assert.Equal(t, pq.StringArray{first.String()}, ids)

	ids, added = AppendEvaluationID(ids, second)
	assert.True(t, added)
	assert.Len(t, ids, 2)

	// repeat finalization for the same evaluation is a no-op
	ids, added = AppendEvaluationID(ids, first)
	assert.False(t, added)
	assert.Len(t, ids, 2)
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 7.9, round2(7.9000001))
	assert.Equal(t, 3.33, round2(10.0/3))
	assert.Equal(t, 0.0, round2(0))
}
