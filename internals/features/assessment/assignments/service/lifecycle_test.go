// file: internals/features/assessment/assignments/service/lifecycle_test.go
package service

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	assignmentModel "reviewdesk_backend/internals/features/assessment/assignments/model"
	"reviewdesk_backend/internals/helpers/apperr"
)

var fixedNow = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

// Validation runs before any storage access, so these paths are exercised
// without a database behind the service.
func validationOnlyService() *LifecycleService {
	return &LifecycleService{Now: func() time.Time { return fixedNow }}
}

func TestCreate_RequiresDeadline(t *testing.T) {
	s := validationOnlyService()

	_, _, err := s.Create(CreateAssignmentInput{
		ReportID:   uuid.New(),
		ExpertID:   uuid.New(),
		AssignedBy: uuid.New(),
	})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}

func TestCreate_RejectsUnknownPriority(t *testing.T) {
	s := validationOnlyService()

	_, _, err := s.Create(CreateAssignmentInput{
		ReportID:   uuid.New(),
		ExpertID:   uuid.New(),
		AssignedBy: uuid.New(),
		Deadline:   fixedNow.AddDate(0, 0, 7),
		Priority:   "critical",
	})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}

func TestCreate_RejectsInvalidCriteria(t *testing.T) {
	s := validationOnlyService()

	_, _, err := s.Create(CreateAssignmentInput{
		ReportID:   uuid.New(),
		ExpertID:   uuid.New(),
		AssignedBy: uuid.New(),
		Deadline:   fixedNow.AddDate(0, 0, 7),
		Criteria:   []assignmentModel.Criterion{{Name: "Content", MaxScore: 10, Weight: 1.5}},
	})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}

// The partial unique index is the authoritative guard for one active
// assignment per (report, expert); its violation must surface as a conflict.
func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(errors.New(
		`ERROR: duplicate key value violates unique constraint "uq_assignments_active_report_expert" (SQLSTATE 23505)`)))
	assert.True(t, isUniqueViolation(errors.New("UNIQUE constraint failed: assignments")))
	assert.False(t, isUniqueViolation(errors.New("connection refused")))
	assert.False(t, isUniqueViolation(errors.New("deadline exceeded")))
}
