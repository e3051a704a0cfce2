// file: internals/features/assessment/reports/route/report_route.go
package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"reviewdesk_backend/internals/constants"
	reportController "reviewdesk_backend/internals/features/assessment/reports/controller"
	"reviewdesk_backend/internals/middlewares/auth"
)

// ReportRoutes mounts the report endpoints under the given (already
// authenticated) router group.
func ReportRoutes(r fiber.Router, db *gorm.DB) {
	ctrl := reportController.NewReportController(db)

	reports := r.Group("/reports")

	reports.Get("/", ctrl.List)
	reports.Get("/:id", ctrl.GetByID)
	reports.Get("/:id/average-score", ctrl.AverageScore)

	reports.Post("/",
		auth.OnlyRoles(constants.RoleErrorAssigner("create reports"), constants.AssignerRoles...),
		ctrl.Create)
	reports.Put("/:id",
		auth.OnlyRoles(constants.RoleErrorAssigner("modify reports"), constants.AssignerRoles...),
		ctrl.Update)
}
