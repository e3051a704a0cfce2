// file: internals/features/assessment/assignments/model/assignment_model_test.go
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

func pendingAssignment() *AssignmentModel {
	return &AssignmentModel{
		AssignmentID:         uuid.New(),
		AssignmentReportID:   uuid.New(),
		AssignmentExpertID:   uuid.New(),
		AssignmentAssignedBy: uuid.New(),
		AssignmentDeadline:   fixedNow.AddDate(0, 0, 7),
		AssignmentStatus:     AssignmentPending,
	}
}

func TestAccept_FromPending(t *testing.T) {
	a := pendingAssignment()
	require.NoError(t, a.Accept("will start monday", fixedNow))

	assert.Equal(t, AssignmentAccepted, a.AssignmentStatus)
	require.NotNil(t, a.AssignmentRespondedAt)
	assert.Equal(t, fixedNow, *a.AssignmentRespondedAt)
	require.NotNil(t, a.AssignmentResponseNote)
	assert.Equal(t, "will start monday", *a.AssignmentResponseNote)
}

func TestAccept_TwiceConflicts(t *testing.T) {
	a := pendingAssignment()
	require.NoError(t, a.Accept("", fixedNow))

	err := a.Accept("", fixedNow)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))
}

func TestReject_BecomesCancelled(t *testing.T) {
	a := pendingAssignment()
	require.NoError(t, a.Reject("out of my field", fixedNow))

	assert.Equal(t, AssignmentCancelled, a.AssignmentStatus)
	assert.True(t, a.AssignmentStatus.IsTerminal())
}

func TestStart_OnlyFromAccepted(t *testing.T) {
	a := pendingAssignment()
	err := a.Start(fixedNow)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))

	require.NoError(t, a.Accept("", fixedNow))
	require.NoError(t, a.Start(fixedNow))
	assert.Equal(t, AssignmentInProgress, a.AssignmentStatus)
	require.NotNil(t, a.AssignmentStartedAt)

	// second start is a no-op, started_at untouched
	first := *a.AssignmentStartedAt
	require.NoError(t, a.Start(fixedNow.Add(time.Hour)))
	assert.Equal(t, first, *a.AssignmentStartedAt)
}

func TestComplete_StampsDuration(t *testing.T) {
	a := pendingAssignment()
	require.NoError(t, a.Accept("", fixedNow))
	require.NoError(t, a.Start(fixedNow))

	evalID := uuid.New()
	done := fixedNow.Add(90 * time.Minute)
	require.NoError(t, a.Complete(evalID, done))

	assert.Equal(t, AssignmentCompleted, a.AssignmentStatus)
	require.NotNil(t, a.AssignmentEvaluationID)
	assert.Equal(t, evalID, *a.AssignmentEvaluationID)
	require.NotNil(t, a.AssignmentActualDuration)
	assert.Equal(t, 1.5, *a.AssignmentActualDuration)
}

func TestComplete_FromOverdue(t *testing.T) {
	a := pendingAssignment()
	require.NoError(t, a.Accept("", fixedNow))
	a.AssignmentStatus = AssignmentOverdue

	require.NoError(t, a.Complete(uuid.New(), fixedNow))
	assert.Equal(t, AssignmentCompleted, a.AssignmentStatus)
}

func TestComplete_FromPendingConflicts(t *testing.T) {
	a := pendingAssignment()
	err := a.Complete(uuid.New(), fixedNow)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))
}

func TestCancel_TerminalConflicts(t *testing.T) {
	a := pendingAssignment()
	require.NoError(t, a.Cancel("report withdrawn", fixedNow))
	assert.Equal(t, AssignmentCancelled, a.AssignmentStatus)

	err := a.Cancel("again", fixedNow)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))
}

func TestMarkOverdue_Idempotent(t *testing.T) {
	a := pendingAssignment()
	a.AssignmentDeadline = fixedNow.Add(-time.Hour)

	assert.True(t, a.MarkOverdue(fixedNow))
	assert.Equal(t, AssignmentOverdue, a.AssignmentStatus)
	assert.False(t, a.MarkOverdue(fixedNow))
}

func TestMarkOverdue_SkipsFutureAndTerminal(t *testing.T) {
	a := pendingAssignment()
	assert.False(t, a.MarkOverdue(fixedNow), "future deadline must not flip")

	a.AssignmentDeadline = fixedNow.Add(-time.Hour)
	a.AssignmentStatus = AssignmentCompleted
	assert.False(t, a.MarkOverdue(fixedNow), "terminal status must not flip")
}

func TestCanModify(t *testing.T) {
	a := pendingAssignment()
	other := uuid.New()

	assert.True(t, a.CanModify(a.AssignmentAssignedBy, "manager"))
	assert.True(t, a.CanModify(other, "admin"))
	assert.False(t, a.CanModify(other, "manager"))

	require.NoError(t, a.Accept("", fixedNow))
	assert.False(t, a.CanModify(a.AssignmentAssignedBy, "manager"), "assigner may only modify while pending")
	assert.True(t, a.CanModify(other, "admin"))
}

func TestCanEvaluate(t *testing.T) {
	a := pendingAssignment()
	assert.False(t, a.CanEvaluate(a.AssignmentExpertID), "pending is not evaluable")
	assert.False(t, a.CanEvaluate(uuid.New()))

	require.NoError(t, a.Accept("", fixedNow))
	assert.True(t, a.CanEvaluate(a.AssignmentExpertID))
	assert.False(t, a.CanEvaluate(uuid.New()))
}

func TestCanCancel(t *testing.T) {
	a := pendingAssignment()
	assert.True(t, a.CanCancel(a.AssignmentAssignedBy, "manager"))
	assert.True(t, a.CanCancel(a.AssignmentExpertID, "expert"))
	assert.False(t, a.CanCancel(uuid.New(), "supervisor"))

	require.NoError(t, a.Accept("", fixedNow))
	assert.False(t, a.CanCancel(a.AssignmentExpertID, "expert"), "non-pending is admin-only")
	assert.True(t, a.CanCancel(uuid.New(), "admin"))
}

func TestDaysUntilDeadline(t *testing.T) {
	a := pendingAssignment()
	a.AssignmentDeadline = fixedNow.Add(49 * time.Hour)
	assert.Equal(t, 3, a.DaysUntilDeadline(fixedNow))

	a.AssignmentDeadline = fixedNow.Add(-25 * time.Hour)
	assert.Equal(t, -1, a.DaysUntilDeadline(fixedNow))
}

func TestValidateCriteria(t *testing.T) {
	require.NoError(t, ValidateCriteria(nil))
	require.NoError(t, ValidateCriteria([]Criterion{
		{Name: "Content", MaxScore: 10, Weight: 0.5},
		{Name: "Evidence", MaxScore: 10, Weight: 0.5},
	}))

	err := ValidateCriteria([]Criterion{{Name: "", MaxScore: 10, Weight: 0.5}})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	err = ValidateCriteria([]Criterion{{Name: "A", MaxScore: 0, Weight: 0.5}})
	require.Error(t, err)

	err = ValidateCriteria([]Criterion{{Name: "A", MaxScore: 10, Weight: 1.2}})
	require.Error(t, err)
}
