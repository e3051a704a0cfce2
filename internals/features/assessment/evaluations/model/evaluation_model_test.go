// file: internals/features/assessment/evaluations/model/evaluation_model_test.go
package model

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reviewdesk_backend/internals/helpers/apperr"
)

var fixedNow = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func draftEvaluation() *EvaluationModel {
	return &EvaluationModel{
		EvaluationID:           uuid.New(),
		EvaluationAssignmentID: uuid.New(),
		EvaluationReportID:     uuid.New(),
		EvaluationEvaluatorID:  uuid.New(),
		EvaluationStatus:       EvaluationDraft,
	}
}

func TestPipeline_ForwardOnly(t *testing.T) {
	e := draftEvaluation()
	expert := e.EvaluationEvaluatorID
	supervisor := uuid.New()

	require.NoError(t, e.Submit(expert, fixedNow))
	assert.Equal(t, EvaluationSubmitted, e.EvaluationStatus)
	require.NotNil(t, e.EvaluationSubmittedAt)

	require.NoError(t, e.Supervise(supervisor, "looks thorough", fixedNow.Add(time.Hour)))
	assert.Equal(t, EvaluationSupervised, e.EvaluationStatus)
	require.NotNil(t, e.EvaluationSupervisedBy)
	assert.Equal(t, supervisor, *e.EvaluationSupervisedBy)
	require.NotNil(t, e.EvaluationSupervisorComments)
	assert.Equal(t, "looks thorough", *e.EvaluationSupervisorComments)

	require.NoError(t, e.Finalize(supervisor, fixedNow.Add(2*time.Hour)))
	assert.Equal(t, EvaluationFinal, e.EvaluationStatus)
	require.NotNil(t, e.EvaluationFinalizedAt)
}

func TestSubmit_TwiceConflicts(t *testing.T) {
	e := draftEvaluation()
	require.NoError(t, e.Submit(e.EvaluationEvaluatorID, fixedNow))

	err := e.Submit(e.EvaluationEvaluatorID, fixedNow)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))
}

func TestSupervise_RequiresSubmitted(t *testing.T) {
	e := draftEvaluation()
	err := e.Supervise(uuid.New(), "", fixedNow)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))
}

func TestSupervise_DefaultComment(t *testing.T) {
	e := draftEvaluation()
	require.NoError(t, e.Submit(e.EvaluationEvaluatorID, fixedNow))
	require.NoError(t, e.Supervise(uuid.New(), "", fixedNow))

	require.NotNil(t, e.EvaluationSupervisorComments)
	assert.Equal(t, "Evaluation approved", *e.EvaluationSupervisorComments)
}

func TestFinalize_RequiresSupervised(t *testing.T) {
	e := draftEvaluation()
	err := e.Finalize(uuid.New(), fixedNow)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))

	require.NoError(t, e.Submit(e.EvaluationEvaluatorID, fixedNow))
	err = e.Finalize(uuid.New(), fixedNow)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))
}

func TestHistory_AppendsPerTransition(t *testing.T) {
	e := draftEvaluation()
	expert := e.EvaluationEvaluatorID
	supervisor := uuid.New()

	e.AddHistory("created", expert, fixedNow, nil, "")
	require.NoError(t, e.Submit(expert, fixedNow))
	require.NoError(t, e.Supervise(supervisor, "", fixedNow))
	require.NoError(t, e.Finalize(supervisor, fixedNow))

	require.Len(t, e.EvaluationHistory, 4)
	actions := make([]string, 0, len(e.EvaluationHistory))
	for _, h := range e.EvaluationHistory {
		actions = append(actions, h.Action)
	}
	assert.Equal(t, []string{"created", "submitted", "supervised", "finalized"}, actions)
	assert.Equal(t, supervisor, e.EvaluationHistory[3].ActorID)
}

func TestCanEdit(t *testing.T) {
	e := draftEvaluation()
	owner := e.EvaluationEvaluatorID

	assert.True(t, e.CanEdit(owner, "expert"))
	assert.True(t, e.CanEdit(uuid.New(), "admin"))
	assert.False(t, e.CanEdit(uuid.New(), "expert"))

	require.NoError(t, e.Submit(owner, fixedNow))
	assert.False(t, e.CanEdit(owner, "expert"), "owner loses edit after submission")
	assert.True(t, e.CanEdit(uuid.New(), "admin"))
}

func TestCanView_ManagerExcludedFromDrafts(t *testing.T) {
	e := draftEvaluation()
	owner := e.EvaluationEvaluatorID
	stranger := uuid.New()

	assert.True(t, e.CanView(owner, "expert"))
	assert.True(t, e.CanView(stranger, "admin"))
	assert.True(t, e.CanView(stranger, "supervisor"))
	assert.False(t, e.CanView(stranger, "manager"), "managers must not see drafts")
	assert.False(t, e.CanView(stranger, "expert"))

	require.NoError(t, e.Submit(owner, fixedNow))
	assert.True(t, e.CanView(stranger, "manager"))
}

// A role that can view a foreign draft must be able to list it, and vice
// versa, so list results never hide rows the detail endpoint serves.
func TestCanListForeignDrafts_MatchesCanView(t *testing.T) {
	e := draftEvaluation()
	stranger := uuid.New()

	for _, role := range []string{"admin", "manager", "supervisor", "expert"} {
		assert.Equal(t, e.CanView(stranger, role), CanListForeignDrafts(role), "role=%s", role)
	}
}
