// file: internals/features/assessment/reports/controller/report_controller.go
package controller

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"reviewdesk_backend/internals/features/assessment/reports/dto"
	"reviewdesk_backend/internals/features/assessment/reports/model"
	"reviewdesk_backend/internals/features/assessment/reports/service"
	helper "reviewdesk_backend/internals/helpers"
)

type ReportController struct {
	DB         *gorm.DB
	Aggregator *service.Aggregator
}

func NewReportController(db *gorm.DB) *ReportController {
	return &ReportController{DB: db, Aggregator: service.NewAggregator(db)}
}

var validate = validator.New()

// POST /api/a/reports (admin, manager)
func (ctrl *ReportController) Create(c *fiber.Ctx) error {
	var req dto.CreateReportRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid payload")
	}
	req.Code = strings.TrimSpace(req.Code)
	req.Title = strings.TrimSpace(req.Title)

	if err := validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
	}

	actorID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return err
	}

	report := model.ReportModel{
		ReportCode:      req.Code,
		ReportTitle:     req.Title,
		ReportCreatedBy: actorID,
		ReportStatus:    model.ReportDraft,
	}
	if req.Type != "" {
		report.ReportType = req.Type
	}

	if err := ctrl.DB.Create(&report).Error; err != nil {
		msg := strings.ToLower(err.Error())
		if strings.Contains(msg, "duplicate") || strings.Contains(msg, "unique") {
			return helper.JsonError(c, fiber.StatusConflict, "Report code already in use")
		}
		return helper.JsonAppError(c, err)
	}
	return helper.JsonCreated(c, "Report created", dto.FromReportModel(&report))
}

// PUT /api/a/reports/:id (admin, manager)
func (ctrl *ReportController) Update(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid report id")
	}

	var req dto.UpdateReportRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid payload")
	}
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
	}

	updates := map[string]interface{}{}
	if req.Title != nil {
		updates["report_title"] = strings.TrimSpace(*req.Title)
	}
	if req.Status != nil {
		updates["report_status"] = *req.Status
	}

	var report model.ReportModel
	if err := ctrl.DB.First(&report, "report_id = ?", id).Error; err != nil {
		return helper.JsonAppError(c, err)
	}

	if len(updates) > 0 {
		if err := ctrl.DB.Model(&report).Updates(updates).Error; err != nil {
			return helper.JsonAppError(c, err)
		}
	}
	return helper.JsonUpdated(c, "Report updated", dto.FromReportModel(&report))
}

// GET /api/a/reports
func (ctrl *ReportController) List(c *fiber.Ctx) error {
	paging := helper.ResolvePaging(c, 20, 100)

	q := ctrl.DB.Model(&model.ReportModel{})
	if v := c.Query("status"); v != "" {
		q = q.Where("report_status = ?", v)
	}
	if v := c.Query("type"); v != "" {
		q = q.Where("report_type = ?", v)
	}
	if v := c.Query("search"); v != "" {
		like := "%" + v + "%"
		q = q.Where("report_title ILIKE ? OR report_code ILIKE ?", like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return helper.JsonAppError(c, err)
	}

	var rows []model.ReportModel
	if err := q.Order("created_at DESC").Limit(paging.Limit).Offset(paging.Offset).Find(&rows).Error; err != nil {
		return helper.JsonAppError(c, err)
	}

	return helper.JsonList(c, "Reports fetched",
		dto.FromReportModels(rows),
		helper.BuildPaginationFromPage(total, paging.Page, paging.PerPage))
}

// GET /api/a/reports/:id
func (ctrl *ReportController) GetByID(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid report id")
	}

	var report model.ReportModel
	if err := ctrl.DB.First(&report, "report_id = ?", id).Error; err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonOK(c, "Report fetched", dto.FromReportModel(&report))
}

// GET /api/a/reports/:id/average-score
// Live recomputation over qualifying evaluations; the stored aggregate is
// only refreshed on the finalize path.
func (ctrl *ReportController) AverageScore(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid report id")
	}

	var report model.ReportModel
	if err := ctrl.DB.First(&report, "report_id = ?", id).Error; err != nil {
		return helper.JsonAppError(c, err)
	}

	avg, err := ctrl.Aggregator.AverageScoreByReport(id)
	if err != nil {
		return helper.JsonAppError(c, err)
	}

	return helper.JsonOK(c, "Report average score fetched", fiber.Map{
		"report_id":     id,
		"average_score": avg,
	})
}
