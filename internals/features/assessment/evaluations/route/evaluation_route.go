// file: internals/features/assessment/evaluations/route/evaluation_route.go
package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"reviewdesk_backend/internals/constants"
	evaluationController "reviewdesk_backend/internals/features/assessment/evaluations/controller"
	"reviewdesk_backend/internals/middlewares/auth"
)

// EvaluationRoutes mounts the evaluation endpoints under the given
// (already authenticated) router group.
func EvaluationRoutes(r fiber.Router, db *gorm.DB) {
	ctrl := evaluationController.NewEvaluationController(db)

	evaluations := r.Group("/evaluations")

	// reads (row-level visibility enforced in the service layer)
	evaluations.Get("/", ctrl.List)
	evaluations.Get("/:id", ctrl.GetByID)
	evaluations.Get("/:id/progress", ctrl.Progress)

	// draft lifecycle (experts own their drafts; admin override in service)
	evaluations.Post("/",
		auth.OnlyRoles(constants.RoleErrorExpert("create evaluations"), constants.ExpertOnly...),
		ctrl.Create)
	evaluations.Put("/:id", ctrl.Update)
	evaluations.Patch("/:id/autosave",
		auth.OnlyRoles(constants.RoleErrorExpert("autosave evaluations"), constants.ExpertOnly...),
		ctrl.Autosave)
	evaluations.Delete("/:id", ctrl.Delete)

	// approval pipeline
	evaluations.Patch("/:id/submit", ctrl.Submit)
	evaluations.Patch("/:id/supervise",
		auth.OnlyRoles(constants.RoleErrorSupervisor("supervise evaluations"), constants.SupervisorRoles...),
		ctrl.Supervise)
	evaluations.Patch("/:id/finalize",
		auth.OnlyRoles(constants.RoleErrorSupervisor("finalize evaluations"), constants.FinalizerRoles...),
		ctrl.Finalize)
}
