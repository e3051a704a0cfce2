// file: internals/features/assessment/assignments/service/lifecycle.go
package service

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"reviewdesk_backend/internals/constants"
	assignmentModel "reviewdesk_backend/internals/features/assessment/assignments/model"
	notificationModel "reviewdesk_backend/internals/features/assessment/notifications/model"
	notificationService "reviewdesk_backend/internals/features/assessment/notifications/service"
	reportModel "reviewdesk_backend/internals/features/assessment/reports/model"
	userModel "reviewdesk_backend/internals/features/users/user/model"
	"reviewdesk_backend/internals/helpers/apperr"
)

// LifecycleService owns the assignment state machine. The clock is injected
// so deadline and timestamp behavior is deterministic under test.
type LifecycleService struct {
	DB  *gorm.DB
	Now func() time.Time
}

func NewLifecycleService(db *gorm.DB) *LifecycleService {
	return &LifecycleService{DB: db, Now: time.Now}
}

/* =========================================================
   CREATE
   ========================================================= */

type CreateAssignmentInput struct {
	ReportID   uuid.UUID
	ExpertID   uuid.UUID
	AssignedBy uuid.UUID
	Note       *string
	Deadline   time.Time
	Priority   assignmentModel.AssignmentPriority
	Criteria   []assignmentModel.Criterion
}

func (s *LifecycleService) Create(in CreateAssignmentInput) (*assignmentModel.AssignmentModel, []notificationService.Event, error) {
	if in.Deadline.IsZero() {
		return nil, nil, apperr.Validation("deadline is required")
	}
	if in.Priority == "" {
		in.Priority = assignmentModel.PriorityNormal
	}
	if !assignmentModel.ValidPriority(in.Priority) {
		return nil, nil, apperr.Validation(fmt.Sprintf("invalid priority %q", in.Priority))
	}
	if err := assignmentModel.ValidateCriteria(in.Criteria); err != nil {
		return nil, nil, err
	}

	var report reportModel.ReportModel
	if err := s.DB.First(&report, "report_id = ?", in.ReportID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, apperr.NotFound("report not found")
		}
		return nil, nil, err
	}

	var expert userModel.UserModel
	if err := s.DB.First(&expert, "id = ?", in.ExpertID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, apperr.Validation("expert does not exist")
		}
		return nil, nil, err
	}
	if expert.Role != constants.RoleExpert || !expert.IsActive {
		return nil, nil, apperr.Validation("assignee is not an active expert")
	}

	// Application-level pre-check; the partial unique index catches the race.
	var cnt int64
	if err := s.DB.Model(&assignmentModel.AssignmentModel{}).
		Where("assignment_report_id = ? AND assignment_expert_id = ? AND assignment_status <> ?",
			in.ReportID, in.ExpertID, assignmentModel.AssignmentCancelled).
		Count(&cnt).Error; err != nil {
		return nil, nil, err
	}
	if cnt > 0 {
		return nil, nil, apperr.Conflict("this expert already has an active assignment for this report")
	}

	assignment := assignmentModel.AssignmentModel{
		AssignmentReportID:   in.ReportID,
		AssignmentExpertID:   in.ExpertID,
		AssignmentAssignedBy: in.AssignedBy,
		AssignmentNote:       in.Note,
		AssignmentDeadline:   in.Deadline,
		AssignmentPriority:   in.Priority,
		AssignmentCriteria:   in.Criteria,
		AssignmentStatus:     assignmentModel.AssignmentPending,
	}

	if err := s.DB.Create(&assignment).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, nil, apperr.Conflict("this expert already has an active assignment for this report")
		}
		return nil, nil, err
	}

	// Best effort: an approved report moves to in_evaluation once assigned.
	if report.ReportStatus == reportModel.ReportApproved {
		if err := s.DB.Model(&reportModel.ReportModel{}).
			Where("report_id = ? AND report_status = ?", report.ReportID, reportModel.ReportApproved).
			Update("report_status", reportModel.ReportInEvaluation).Error; err != nil {
			log.Printf("[ASSIGN] report %s status update failed: %v", report.ReportID, err)
		}
	}

	events := []notificationService.Event{{
		Type:       notificationModel.KindAssignmentNew,
		Recipient:  in.ExpertID,
		Sender:     &in.AssignedBy,
		EntityType: notificationModel.EntityAssignment,
		EntityID:   assignment.AssignmentID,
		Title:      fmt.Sprintf("New review assignment: %s", report.ReportTitle),
		Message:    fmt.Sprintf("You have been assigned to review %q. Deadline: %s.", report.ReportTitle, in.Deadline.Format("2006-01-02")),
	}}

	return &assignment, events, nil
}

/* =========================================================
   EXPERT RESPONSES
   ========================================================= */

func (s *LifecycleService) Accept(id, actorID uuid.UUID, note string) (*assignmentModel.AssignmentModel, error) {
	assignment, err := s.getByID(id)
	if err != nil {
		return nil, err
	}
	if assignment.AssignmentExpertID != actorID {
		return nil, apperr.Authorization("only the assigned expert may respond to this assignment")
	}

	old := assignment.AssignmentStatus
	if err := assignment.Accept(note, s.Now()); err != nil {
		return nil, err
	}

	if err := s.persistTransition(s.DB, assignment, old, map[string]interface{}{
		"assignment_status":        assignment.AssignmentStatus,
		"assignment_responded_at":  assignment.AssignmentRespondedAt,
		"assignment_response_note": assignment.AssignmentResponseNote,
	}); err != nil {
		return nil, err
	}
	return assignment, nil
}

func (s *LifecycleService) Reject(id, actorID uuid.UUID, note string) (*assignmentModel.AssignmentModel, []notificationService.Event, error) {
	assignment, err := s.getByID(id)
	if err != nil {
		return nil, nil, err
	}
	if assignment.AssignmentExpertID != actorID {
		return nil, nil, apperr.Authorization("only the assigned expert may respond to this assignment")
	}

	old := assignment.AssignmentStatus
	if err := assignment.Reject(note, s.Now()); err != nil {
		return nil, nil, err
	}

	if err := s.persistTransition(s.DB, assignment, old, map[string]interface{}{
		"assignment_status":        assignment.AssignmentStatus,
		"assignment_responded_at":  assignment.AssignmentRespondedAt,
		"assignment_response_note": assignment.AssignmentResponseNote,
	}); err != nil {
		return nil, nil, err
	}

	events := []notificationService.Event{{
		Type:       notificationModel.KindAssignmentCancelled,
		Recipient:  assignment.AssignmentAssignedBy,
		Sender:     &actorID,
		EntityType: notificationModel.EntityAssignment,
		EntityID:   assignment.AssignmentID,
		Title:      "Assignment rejected",
		Message:    fmt.Sprintf("The assigned expert declined the review assignment. Reason: %s", note),
	}}
	return assignment, events, nil
}

func (s *LifecycleService) Cancel(id, actorID uuid.UUID, role, reason string) (*assignmentModel.AssignmentModel, []notificationService.Event, error) {
	assignment, err := s.getByID(id)
	if err != nil {
		return nil, nil, err
	}
	if !assignment.CanCancel(actorID, role) {
		return nil, nil, apperr.Authorization("you are not allowed to cancel this assignment")
	}

	old := assignment.AssignmentStatus
	if err := assignment.Cancel(reason, s.Now()); err != nil {
		return nil, nil, err
	}

	if err := s.persistTransition(s.DB, assignment, old, map[string]interface{}{
		"assignment_status":        assignment.AssignmentStatus,
		"assignment_responded_at":  assignment.AssignmentRespondedAt,
		"assignment_response_note": assignment.AssignmentResponseNote,
	}); err != nil {
		return nil, nil, err
	}

	events := []notificationService.Event{{
		Type:       notificationModel.KindAssignmentCancelled,
		Recipient:  assignment.AssignmentExpertID,
		Sender:     &actorID,
		EntityType: notificationModel.EntityAssignment,
		EntityID:   assignment.AssignmentID,
		Title:      "Assignment cancelled",
		Message:    fmt.Sprintf("Your review assignment has been cancelled. Reason: %s", reason),
	}}
	return assignment, events, nil
}

/* =========================================================
   UPDATE (assigner while pending, admin anytime)
   ========================================================= */

type UpdateAssignmentInput struct {
	Note     *string
	Deadline *time.Time
	Priority *assignmentModel.AssignmentPriority
	Criteria []assignmentModel.Criterion
}

func (s *LifecycleService) Update(id, actorID uuid.UUID, role string, in UpdateAssignmentInput) (*assignmentModel.AssignmentModel, error) {
	assignment, err := s.getByID(id)
	if err != nil {
		return nil, err
	}
	if !assignment.CanModify(actorID, role) {
		return nil, apperr.Authorization("you are not allowed to modify this assignment")
	}

	updates := map[string]interface{}{}
	if in.Note != nil {
		updates["assignment_note"] = *in.Note
	}
	if in.Deadline != nil {
		if in.Deadline.IsZero() {
			return nil, apperr.Validation("deadline is required")
		}
		updates["assignment_deadline"] = *in.Deadline
	}
	if in.Priority != nil {
		if !assignmentModel.ValidPriority(*in.Priority) {
			return nil, apperr.Validation(fmt.Sprintf("invalid priority %q", *in.Priority))
		}
		updates["assignment_priority"] = *in.Priority
	}
	if in.Criteria != nil {
		if err := assignmentModel.ValidateCriteria(in.Criteria); err != nil {
			return nil, err
		}
		updates["assignment_criteria"] = datatypes.JSONSlice[assignmentModel.Criterion](in.Criteria)
	}

	if len(updates) == 0 {
		return assignment, nil
	}

	if err := s.DB.Model(&assignmentModel.AssignmentModel{}).
		Where("assignment_id = ?", id).
		Updates(updates).Error; err != nil {
		return nil, err
	}
	return s.getByID(id)
}

/* =========================================================
   IN-TRANSACTION HOOKS (called by the approval pipeline)
   ========================================================= */

// StartTx moves an accepted assignment to in_progress inside the caller's
// transaction, stamping started_at exactly once.
func StartTx(tx *gorm.DB, assignment *assignmentModel.AssignmentModel, now time.Time) error {
	old := assignment.AssignmentStatus
	if err := assignment.Start(now); err != nil {
		return err
	}
	if assignment.AssignmentStatus == old {
		return nil // already in progress
	}
	res := tx.Model(&assignmentModel.AssignmentModel{}).
		Where("assignment_id = ? AND assignment_status = ?", assignment.AssignmentID, old).
		Updates(map[string]interface{}{
			"assignment_status":     assignment.AssignmentStatus,
			"assignment_started_at": assignment.AssignmentStartedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.Conflict("assignment was modified concurrently")
	}
	return nil
}

// CompleteTx completes the paired assignment when its evaluation is
// submitted. Never reachable from a direct user action.
func CompleteTx(tx *gorm.DB, assignmentID, evaluationID uuid.UUID, now time.Time) error {
	var assignment assignmentModel.AssignmentModel
	if err := tx.First(&assignment, "assignment_id = ?", assignmentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("assignment not found")
		}
		return err
	}

	old := assignment.AssignmentStatus
	if err := assignment.Complete(evaluationID, now); err != nil {
		return err
	}

	res := tx.Model(&assignmentModel.AssignmentModel{}).
		Where("assignment_id = ? AND assignment_status = ?", assignmentID, old).
		Updates(map[string]interface{}{
			"assignment_status":          assignment.AssignmentStatus,
			"assignment_completed_at":    assignment.AssignmentCompletedAt,
			"assignment_evaluation_id":   assignment.AssignmentEvaluationID,
			"assignment_actual_duration": assignment.AssignmentActualDuration,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.Conflict("assignment was modified concurrently")
	}
	return nil
}

/* =========================================================
   OVERDUE SWEEP
   ========================================================= */

// MarkOverdue flips every non-terminal, past-deadline assignment to overdue.
// Safe to re-run and to run concurrently with user transitions: the
// conditional WHERE only ever moves rows forward, never off a terminal state.
func (s *LifecycleService) MarkOverdue() (int64, []notificationService.Event, error) {
	now := s.Now()

	var candidates []assignmentModel.AssignmentModel
	if err := s.DB.
		Where("assignment_deadline < ? AND assignment_status IN ?", now, []assignmentModel.AssignmentStatus{
			assignmentModel.AssignmentPending,
			assignmentModel.AssignmentAccepted,
			assignmentModel.AssignmentInProgress,
		}).
		Find(&candidates).Error; err != nil {
		return 0, nil, err
	}

	var flipped int64
	var events []notificationService.Event
	for i := range candidates {
		a := &candidates[i]
		old := a.AssignmentStatus
		if !a.MarkOverdue(now) {
			continue
		}
		res := s.DB.Model(&assignmentModel.AssignmentModel{}).
			Where("assignment_id = ? AND assignment_status = ?", a.AssignmentID, old).
			Update("assignment_status", assignmentModel.AssignmentOverdue)
		if res.Error != nil {
			return flipped, events, res.Error
		}
		if res.RowsAffected == 0 {
			continue // lost the race to a legitimate transition; leave it be
		}
		flipped++
		events = append(events, notificationService.Event{
			Type:       notificationModel.KindAssignmentOverdue,
			Recipient:  a.AssignmentExpertID,
			EntityType: notificationModel.EntityAssignment,
			EntityID:   a.AssignmentID,
			Title:      "Review assignment overdue",
			Message:    fmt.Sprintf("Your review assignment passed its deadline (%s).", a.AssignmentDeadline.Format("2006-01-02")),
		})
	}

	return flipped, events, nil
}

/* =========================================================
   QUERIES
   ========================================================= */

type Workload struct {
	Total      int64 `json:"total"`
	Accepted   int64 `json:"accepted"`
	InProgress int64 `json:"in_progress"`
	Overdue    int64 `json:"overdue"`
}

func (s *LifecycleService) ExpertWorkload(expertID uuid.UUID) (Workload, error) {
	var w Workload
	counts := map[assignmentModel.AssignmentStatus]*int64{
		assignmentModel.AssignmentAccepted:   &w.Accepted,
		assignmentModel.AssignmentInProgress: &w.InProgress,
		assignmentModel.AssignmentOverdue:    &w.Overdue,
	}
	for status, dst := range counts {
		if err := s.DB.Model(&assignmentModel.AssignmentModel{}).
			Where("assignment_expert_id = ? AND assignment_status = ?", expertID, status).
			Count(dst).Error; err != nil {
			return w, err
		}
	}
	w.Total = w.Accepted + w.InProgress + w.Overdue
	return w, nil
}

type Stats struct {
	Total      int64 `json:"total"`
	Pending    int64 `json:"pending"`
	Accepted   int64 `json:"accepted"`
	InProgress int64 `json:"in_progress"`
	Completed  int64 `json:"completed"`
	Overdue    int64 `json:"overdue"`
	Cancelled  int64 `json:"cancelled"`
}

func (s *LifecycleService) AssignmentStats() (Stats, error) {
	type row struct {
		Status assignmentModel.AssignmentStatus
		N      int64
	}
	var rows []row
	if err := s.DB.Model(&assignmentModel.AssignmentModel{}).
		Select("assignment_status AS status, COUNT(*) AS n").
		Group("assignment_status").
		Scan(&rows).Error; err != nil {
		return Stats{}, err
	}

	var st Stats
	for _, r := range rows {
		st.Total += r.N
		switch r.Status {
		case assignmentModel.AssignmentPending:
			st.Pending = r.N
		case assignmentModel.AssignmentAccepted:
			st.Accepted = r.N
		case assignmentModel.AssignmentInProgress:
			st.InProgress = r.N
		case assignmentModel.AssignmentCompleted:
			st.Completed = r.N
		case assignmentModel.AssignmentOverdue:
			st.Overdue = r.N
		case assignmentModel.AssignmentCancelled:
			st.Cancelled = r.N
		}
	}
	return st, nil
}

func (s *LifecycleService) UpcomingDeadlines(days int) ([]assignmentModel.AssignmentModel, error) {
	if days <= 0 {
		days = 7
	}
	until := s.Now().AddDate(0, 0, days)

	var rows []assignmentModel.AssignmentModel
	err := s.DB.
		Where("assignment_deadline <= ? AND assignment_status IN ?", until, []assignmentModel.AssignmentStatus{
			assignmentModel.AssignmentPending,
			assignmentModel.AssignmentAccepted,
			assignmentModel.AssignmentInProgress,
		}).
		Order("assignment_deadline ASC").
		Find(&rows).Error
	return rows, err
}

/* =========================================================
   INTERNAL
   ========================================================= */

func (s *LifecycleService) getByID(id uuid.UUID) (*assignmentModel.AssignmentModel, error) {
	var assignment assignmentModel.AssignmentModel
	if err := s.DB.First(&assignment, "assignment_id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("assignment not found")
		}
		return nil, err
	}
	return &assignment, nil
}

// persistTransition writes a transition with an optimistic conditional
// UPDATE; 0 rows affected means a concurrent transition won.
func (s *LifecycleService) persistTransition(db *gorm.DB, a *assignmentModel.AssignmentModel, old assignmentModel.AssignmentStatus, updates map[string]interface{}) error {
	res := db.Model(&assignmentModel.AssignmentModel{}).
		Where("assignment_id = ? AND assignment_status = ?", a.AssignmentID, old).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.Conflict("assignment was modified concurrently")
	}
	return nil
}

func isUniqueViolation(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") || strings.Contains(msg, "unique")
}
