// file: internals/features/assessment/assignments/controller/assignment_controller.go
package controller

import (
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"reviewdesk_backend/internals/constants"
	"reviewdesk_backend/internals/features/assessment/assignments/dto"
	"reviewdesk_backend/internals/features/assessment/assignments/model"
	"reviewdesk_backend/internals/features/assessment/assignments/service"
	notificationService "reviewdesk_backend/internals/features/assessment/notifications/service"
	helper "reviewdesk_backend/internals/helpers"
)

type AssignmentController struct {
	DB         *gorm.DB
	Lifecycle  *service.LifecycleService
	Dispatcher *notificationService.Dispatcher
}

func NewAssignmentController(db *gorm.DB) *AssignmentController {
	return &AssignmentController{
		DB:         db,
		Lifecycle:  service.NewLifecycleService(db),
		Dispatcher: notificationService.NewDispatcher(db),
	}
}

var validate = validator.New()

var assignmentSortColumns = map[string]string{
	"created_at": "created_at",
	"deadline":   "assignment_deadline",
	"priority":   "assignment_priority",
	"status":     "assignment_status",
}

/* =========================================================
   WRITE ENDPOINTS
   ========================================================= */

// POST /api/a/assignments (admin, manager)
func (ctrl *AssignmentController) Create(c *fiber.Ctx) error {
	var req dto.CreateAssignmentRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid payload")
	}
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
	}

	actorID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return err
	}

	assignment, events, err := ctrl.Lifecycle.Create(service.CreateAssignmentInput{
		ReportID:   req.ReportID,
		ExpertID:   req.ExpertID,
		AssignedBy: actorID,
		Note:       req.Note,
		Deadline:   req.Deadline,
		Priority:   model.AssignmentPriority(req.Priority),
		Criteria:   req.CriteriaModels(),
	})
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	ctrl.Dispatcher.Dispatch(events)

	return helper.JsonCreated(c, "Assignment created", dto.FromAssignmentModel(assignment, ctrl.Lifecycle.Now()))
}

// PUT /api/a/assignments/:id (assigner while pending, admin)
func (ctrl *AssignmentController) Update(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid assignment id")
	}

	var req dto.UpdateAssignmentRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid payload")
	}
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
	}

	actorID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return err
	}
	role, err := helper.GetUserRoleFromToken(c)
	if err != nil {
		return err
	}

	var priority *model.AssignmentPriority
	if req.Priority != nil {
		p := model.AssignmentPriority(*req.Priority)
		priority = &p
	}

	assignment, err := ctrl.Lifecycle.Update(id, actorID, role, service.UpdateAssignmentInput{
		Note:     req.Note,
		Deadline: req.Deadline,
		Priority: priority,
		Criteria: req.CriteriaModels(),
	})
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonUpdated(c, "Assignment updated", dto.FromAssignmentModel(assignment, ctrl.Lifecycle.Now()))
}

// PATCH /api/a/assignments/:id/accept (assigned expert)
func (ctrl *AssignmentController) Accept(c *fiber.Ctx) error {
	return ctrl.respond(c, true)
}

// PATCH /api/a/assignments/:id/reject (assigned expert)
func (ctrl *AssignmentController) Reject(c *fiber.Ctx) error {
	return ctrl.respond(c, false)
}

func (ctrl *AssignmentController) respond(c *fiber.Ctx, accept bool) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid assignment id")
	}

	var req dto.RespondAssignmentRequest
	if err := c.BodyParser(&req); err != nil && err != fiber.ErrUnprocessableEntity {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid payload")
	}
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
	}

	actorID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return err
	}

	if accept {
		assignment, err := ctrl.Lifecycle.Accept(id, actorID, req.Note)
		if err != nil {
			return helper.JsonAppError(c, err)
		}
		return helper.JsonUpdated(c, "Assignment accepted", dto.FromAssignmentModel(assignment, ctrl.Lifecycle.Now()))
	}

	if strings.TrimSpace(req.Note) == "" {
		return helper.JsonAppError(c, fiber.NewError(fiber.StatusUnprocessableEntity, "A reason is required when rejecting"))
	}
	assignment, events, err := ctrl.Lifecycle.Reject(id, actorID, req.Note)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	ctrl.Dispatcher.Dispatch(events)
	return helper.JsonUpdated(c, "Assignment rejected", dto.FromAssignmentModel(assignment, ctrl.Lifecycle.Now()))
}

// PATCH /api/a/assignments/:id/cancel (admin; assigner/expert while pending)
func (ctrl *AssignmentController) Cancel(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid assignment id")
	}

	var req dto.CancelAssignmentRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid payload")
	}
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
	}

	actorID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return err
	}
	role, err := helper.GetUserRoleFromToken(c)
	if err != nil {
		return err
	}

	assignment, events, err := ctrl.Lifecycle.Cancel(id, actorID, role, req.Reason)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	ctrl.Dispatcher.Dispatch(events)
	return helper.JsonUpdated(c, "Assignment cancelled", dto.FromAssignmentModel(assignment, ctrl.Lifecycle.Now()))
}

// PATCH /api/a/assignments/mark-overdue (admin)
// Manual trigger for the sweep the scheduler runs periodically.
func (ctrl *AssignmentController) MarkOverdue(c *fiber.Ctx) error {
	flipped, events, err := ctrl.Lifecycle.MarkOverdue()
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	ctrl.Dispatcher.Dispatch(events)
	return helper.JsonOK(c, "Overdue sweep completed", fiber.Map{"marked": flipped})
}

/* =========================================================
   READ ENDPOINTS
   ========================================================= */

// GET /api/a/assignments
// Filters: ?status= &expert_id= &report_id= &priority= . Experts only see
// their own rows; managers only the assignments they made.
func (ctrl *AssignmentController) List(c *fiber.Ctx) error {
	actorID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return err
	}
	role, err := helper.GetUserRoleFromToken(c)
	if err != nil {
		return err
	}

	paging := helper.ResolvePaging(c, 20, 100)

	order, err := helper.SafeOrderClause(assignmentSortColumns, c.Query("sort_by"), c.Query("sort_order"), "created_at")
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}

	q := ctrl.DB.Model(&model.AssignmentModel{})
	switch role {
	case constants.RoleExpert:
		q = q.Where("assignment_expert_id = ?", actorID)
	case constants.RoleManager:
		q = q.Where("assignment_assigned_by = ?", actorID)
	}

	if v := c.Query("status"); v != "" {
		q = q.Where("assignment_status = ?", v)
	}
	if v := c.Query("expert_id"); v != "" {
		expertID, err := uuid.Parse(v)
		if err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "Invalid expert_id")
		}
		q = q.Where("assignment_expert_id = ?", expertID)
	}
	if v := c.Query("report_id"); v != "" {
		reportID, err := uuid.Parse(v)
		if err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "Invalid report_id")
		}
		q = q.Where("assignment_report_id = ?", reportID)
	}
	if v := c.Query("priority"); v != "" {
		q = q.Where("assignment_priority = ?", v)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return helper.JsonAppError(c, err)
	}

	var rows []model.AssignmentModel
	if err := q.Order(order).Limit(paging.Limit).Offset(paging.Offset).Find(&rows).Error; err != nil {
		return helper.JsonAppError(c, err)
	}

	return helper.JsonList(c, "Assignments fetched",
		dto.FromAssignmentModels(rows, ctrl.Lifecycle.Now()),
		helper.BuildPaginationFromPage(total, paging.Page, paging.PerPage))
}

// GET /api/a/assignments/my (assigned expert's own queue)
func (ctrl *AssignmentController) ListMine(c *fiber.Ctx) error {
	actorID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return err
	}

	paging := helper.ResolvePaging(c, 20, 100)
	q := ctrl.DB.Model(&model.AssignmentModel{}).Where("assignment_expert_id = ?", actorID)
	if v := c.Query("status"); v != "" {
		q = q.Where("assignment_status = ?", v)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return helper.JsonAppError(c, err)
	}

	var rows []model.AssignmentModel
	if err := q.Order("assignment_deadline ASC").Limit(paging.Limit).Offset(paging.Offset).Find(&rows).Error; err != nil {
		return helper.JsonAppError(c, err)
	}

	return helper.JsonList(c, "Assignments fetched",
		dto.FromAssignmentModels(rows, ctrl.Lifecycle.Now()),
		helper.BuildPaginationFromPage(total, paging.Page, paging.PerPage))
}

// GET /api/a/assignments/:id
func (ctrl *AssignmentController) GetByID(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid assignment id")
	}

	var assignment model.AssignmentModel
	if err := ctrl.DB.First(&assignment, "assignment_id = ?", id).Error; err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonOK(c, "Assignment fetched", dto.FromAssignmentModel(&assignment, ctrl.Lifecycle.Now()))
}

// GET /api/a/assignments/workload/:expertId
func (ctrl *AssignmentController) Workload(c *fiber.Ctx) error {
	expertID, err := uuid.Parse(c.Params("expertId"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid expert id")
	}

	w, err := ctrl.Lifecycle.ExpertWorkload(expertID)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonOK(c, "Workload fetched", w)
}

// GET /api/a/assignments/stats
func (ctrl *AssignmentController) Stats(c *fiber.Ctx) error {
	st, err := ctrl.Lifecycle.AssignmentStats()
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonOK(c, "Assignment statistics fetched", st)
}

// GET /api/a/assignments/upcoming-deadlines?days=7
func (ctrl *AssignmentController) UpcomingDeadlines(c *fiber.Ctx) error {
	days, _ := strconv.Atoi(c.Query("days", "7"))

	rows, err := ctrl.Lifecycle.UpcomingDeadlines(days)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonOK(c, "Upcoming deadlines fetched", dto.FromAssignmentModels(rows, ctrl.Lifecycle.Now()))
}
