// file: internals/features/assessment/assignments/route/assignment_route.go
package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"reviewdesk_backend/internals/constants"
	assignmentController "reviewdesk_backend/internals/features/assessment/assignments/controller"
	"reviewdesk_backend/internals/middlewares/auth"
)

// AssignmentAdminRoutes mounts the assignment endpoints under the given
// (already authenticated) router group.
func AssignmentAdminRoutes(r fiber.Router, db *gorm.DB) {
	ctrl := assignmentController.NewAssignmentController(db)

	assignments := r.Group("/assignments")

	// read (any authenticated role)
	assignments.Get("/my", ctrl.ListMine)
	assignments.Get("/stats",
		auth.OnlyRoles(constants.RoleErrorAssigner("view assignment statistics"), constants.AssignerRoles...),
		ctrl.Stats)
	assignments.Get("/upcoming-deadlines", ctrl.UpcomingDeadlines)
	assignments.Get("/workload/:expertId",
		auth.OnlyRoles(constants.RoleErrorAssigner("view expert workload"), constants.AssignerRoles...),
		ctrl.Workload)
	assignments.Get("/", ctrl.List)
	assignments.Get("/:id", ctrl.GetByID)

	// write (assigner roles)
	assignments.Post("/",
		auth.OnlyRoles(constants.RoleErrorAssigner("create assignments"), constants.AssignerRoles...),
		ctrl.Create)
	assignments.Put("/:id",
		auth.OnlyRoles(constants.RoleErrorAssigner("modify assignments"), constants.AssignerRoles...),
		ctrl.Update)

	// expert responses
	assignments.Patch("/:id/accept",
		auth.OnlyRoles(constants.RoleErrorExpert("accept assignments"), constants.ExpertOnly...),
		ctrl.Accept)
	assignments.Patch("/:id/reject",
		auth.OnlyRoles(constants.RoleErrorExpert("reject assignments"), constants.ExpertOnly...),
		ctrl.Reject)

	// cancel (service layer re-checks ownership per status)
	assignments.Patch("/:id/cancel", ctrl.Cancel)

	// manual overdue sweep
	assignments.Patch("/mark-overdue",
		auth.OnlyRoles(constants.RoleErrorAdmin("the overdue sweep"), constants.AdminOnly...),
		ctrl.MarkOverdue)
}
