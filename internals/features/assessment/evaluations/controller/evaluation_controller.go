// file: internals/features/assessment/evaluations/controller/evaluation_controller.go
package controller

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"reviewdesk_backend/internals/constants"
	"reviewdesk_backend/internals/features/assessment/evaluations/dto"
	"reviewdesk_backend/internals/features/assessment/evaluations/model"
	"reviewdesk_backend/internals/features/assessment/evaluations/service"
	notificationService "reviewdesk_backend/internals/features/assessment/notifications/service"
	helper "reviewdesk_backend/internals/helpers"
)

type EvaluationController struct {
	DB         *gorm.DB
	Pipeline   *service.ApprovalPipeline
	Dispatcher *notificationService.Dispatcher
}

func NewEvaluationController(db *gorm.DB) *EvaluationController {
	return &EvaluationController{
		DB:         db,
		Pipeline:   service.NewApprovalPipeline(db),
		Dispatcher: notificationService.NewDispatcher(db),
	}
}

var validate = validator.New()

/* =========================================================
   DRAFT LIFECYCLE
   ========================================================= */

// POST /api/a/evaluations (expert)
func (ctrl *EvaluationController) Create(c *fiber.Ctx) error {
	var req dto.CreateEvaluationRequest
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

	evaluation, err := ctrl.Pipeline.Create(req.AssignmentID, actorID)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonCreated(c, "Evaluation created", dto.FromEvaluationModel(evaluation))
}

// PUT /api/a/evaluations/:id
func (ctrl *EvaluationController) Update(c *fiber.Ctx) error {
	return ctrl.save(c, false)
}

// PATCH /api/a/evaluations/:id/autosave
func (ctrl *EvaluationController) Autosave(c *fiber.Ctx) error {
	return ctrl.save(c, true)
}

func (ctrl *EvaluationController) save(c *fiber.Ctx, autosave bool) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid evaluation id")
	}

	var req dto.UpdateEvaluationRequest
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

	var rating *model.Rating
	if req.Rating != nil {
		r := model.Rating(*req.Rating)
		rating = &r
	}

	in := service.UpdateEvaluationInput{
		CriteriaScores:    req.ScoreModels(),
		OverallComment:    req.OverallComment,
		Rating:            rating,
		Strengths:         req.StrengthModels(),
		ImprovementAreas:  req.ImprovementAreaModels(),
		Recommendations:   req.RecommendationModels(),
		EvidenceAdequacy:  req.EvidenceAdequacy,
		EvidenceRelevance: req.EvidenceRelevance,
		EvidenceQuality:   req.EvidenceQuality,
	}

	var evaluation *model.EvaluationModel
	if autosave {
		evaluation, err = ctrl.Pipeline.Autosave(id, actorID, in)
	} else {
		evaluation, err = ctrl.Pipeline.Update(id, actorID, role, in)
	}
	if err != nil {
		return helper.JsonAppError(c, err)
	}

	if autosave {
		return helper.JsonOK(c, "Draft saved", dto.FromEvaluationModel(evaluation))
	}
	return helper.JsonUpdated(c, "Evaluation updated", dto.FromEvaluationModel(evaluation))
}

// DELETE /api/a/evaluations/:id (drafts only)
func (ctrl *EvaluationController) Delete(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid evaluation id")
	}

	actorID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return err
	}
	role, err := helper.GetUserRoleFromToken(c)
	if err != nil {
		return err
	}

	if err := ctrl.Pipeline.DeleteDraft(id, actorID, role); err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonDeleted(c, "Evaluation deleted", fiber.Map{"evaluation_id": id})
}

/* =========================================================
   PIPELINE STEPS
   ========================================================= */

// PATCH /api/a/evaluations/:id/submit (evaluator)
func (ctrl *EvaluationController) Submit(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid evaluation id")
	}

	actorID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return err
	}

	evaluation, events, err := ctrl.Pipeline.Submit(id, actorID)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	ctrl.Dispatcher.Dispatch(events)
	return helper.JsonUpdated(c, "Evaluation submitted", dto.FromEvaluationModel(evaluation))
}

// PATCH /api/a/evaluations/:id/supervise (admin, manager, supervisor)
func (ctrl *EvaluationController) Supervise(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid evaluation id")
	}

	var req dto.SuperviseEvaluationRequest
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

	evaluation, events, err := ctrl.Pipeline.Supervise(id, actorID, req.Comments)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	ctrl.Dispatcher.Dispatch(events)
	return helper.JsonUpdated(c, "Evaluation supervised", dto.FromEvaluationModel(evaluation))
}

// PATCH /api/a/evaluations/:id/finalize (admin, supervisor)
func (ctrl *EvaluationController) Finalize(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid evaluation id")
	}

	actorID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return err
	}

	evaluation, events, err := ctrl.Pipeline.Finalize(id, actorID)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	ctrl.Dispatcher.Dispatch(events)
	return helper.JsonUpdated(c, "Evaluation finalized", dto.FromEvaluationModel(evaluation))
}

/* =========================================================
   READS
   ========================================================= */

// GET /api/a/evaluations
// Filters: ?status= &report_id= &evaluator_id= . Managers and supervisors do
// not see other evaluators' drafts; experts only ever see their own rows.
func (ctrl *EvaluationController) List(c *fiber.Ctx) error {
	actorID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return err
	}
	role, err := helper.GetUserRoleFromToken(c)
	if err != nil {
		return err
	}

	paging := helper.ResolvePaging(c, 20, 100)

	// Mirrors CanView: admins and supervisors list everything, experts only
	// their own rows, managers everything except other users' drafts.
	q := ctrl.DB.Model(&model.EvaluationModel{})
	switch {
	case model.CanListForeignDrafts(role):
		// unrestricted
	case role == constants.RoleExpert:
		q = q.Where("evaluation_evaluator_id = ?", actorID)
	default:
		q = q.Where("(evaluation_status <> ? OR evaluation_evaluator_id = ?)", model.EvaluationDraft, actorID)
	}

	if v := c.Query("status"); v != "" {
		q = q.Where("evaluation_status = ?", v)
	}
	if v := c.Query("report_id"); v != "" {
		reportID, err := uuid.Parse(v)
		if err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "Invalid report_id")
		}
		q = q.Where("evaluation_report_id = ?", reportID)
	}
	if v := c.Query("evaluator_id"); v != "" {
		evaluatorID, err := uuid.Parse(v)
		if err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "Invalid evaluator_id")
		}
		q = q.Where("evaluation_evaluator_id = ?", evaluatorID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return helper.JsonAppError(c, err)
	}

	var rows []model.EvaluationModel
	if err := q.Order("created_at DESC").Limit(paging.Limit).Offset(paging.Offset).Find(&rows).Error; err != nil {
		return helper.JsonAppError(c, err)
	}

	return helper.JsonList(c, "Evaluations fetched",
		dto.FromEvaluationModels(rows),
		helper.BuildPaginationFromPage(total, paging.Page, paging.PerPage))
}

// GET /api/a/evaluations/:id
func (ctrl *EvaluationController) GetByID(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid evaluation id")
	}

	actorID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return err
	}
	role, err := helper.GetUserRoleFromToken(c)
	if err != nil {
		return err
	}

	evaluation, err := ctrl.Pipeline.Get(id, actorID, role)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonOK(c, "Evaluation fetched", dto.FromEvaluationModel(evaluation))
}

// GET /api/a/evaluations/:id/progress
func (ctrl *EvaluationController) Progress(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid evaluation id")
	}

	actorID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return err
	}
	role, err := helper.GetUserRoleFromToken(c)
	if err != nil {
		return err
	}

	evaluation, err := ctrl.Pipeline.Get(id, actorID, role)
	if err != nil {
		return helper.JsonAppError(c, err)
	}

	return helper.JsonOK(c, "Evaluation progress fetched", dto.EvaluationProgressResponse{
		EvaluationID:  evaluation.EvaluationID,
		Progress:      service.Progress(evaluation),
		IsComplete:    service.IsComplete(evaluation),
		MissingFields: service.MissingFields(evaluation),
	})
}
