package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"reviewdesk_backend/internals/constants"
	authController "reviewdesk_backend/internals/features/users/auth/controller"
	"reviewdesk_backend/internals/middlewares"
	authMw "reviewdesk_backend/internals/middlewares/auth"
)

// AuthRoutes mounts public auth endpoints plus /me.
func AuthRoutes(app *fiber.App, db *gorm.DB) {
	ctl := authController.NewAuthController(db)

	auth := app.Group("/api/auth")
	auth.Post("/login", middlewares.LoginRateLimiter(), ctl.Login)
	auth.Post("/register",
		middlewares.RegisterRateLimiter(),
		authMw.AuthMiddleware(db),
		authMw.OnlyRoles(constants.RoleErrorAdmin("user registration"), constants.AdminOnly...),
		ctl.Register,
	)

	me := app.Group("/api/u", authMw.AuthMiddleware(db))
	me.Get("/me", ctl.Me)
}
