// file: internals/route/index.go
package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	assignmentRoute "reviewdesk_backend/internals/features/assessment/assignments/route"
	evaluationRoute "reviewdesk_backend/internals/features/assessment/evaluations/route"
	notificationRoute "reviewdesk_backend/internals/features/assessment/notifications/route"
	reportRoute "reviewdesk_backend/internals/features/assessment/reports/route"
	authRoute "reviewdesk_backend/internals/features/users/auth/route"
	authMw "reviewdesk_backend/internals/middlewares/auth"
)

// SetupRoutes wires every feature group.
//
//	/api/auth  public auth endpoints
//	/api/u     any authenticated user (profile, notifications)
//	/api/a     assessment workspace (role gates per endpoint)
func SetupRoutes(app *fiber.App, db *gorm.DB) {
	authRoute.AuthRoutes(app, db)

	user := app.Group("/api/u", authMw.AuthMiddleware(db))
	notificationRoute.NotificationUserRoutes(user, db)

	assessment := app.Group("/api/a", authMw.AuthMiddleware(db))
	reportRoute.ReportRoutes(assessment, db)
	assignmentRoute.AssignmentAdminRoutes(assessment, db)
	evaluationRoute.EvaluationRoutes(assessment, db)
}
