package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	notificationController "reviewdesk_backend/internals/features/assessment/notifications/controller"
)

// NotificationUserRoutes: every authenticated user reads their own inbox.
func NotificationUserRoutes(r fiber.Router, db *gorm.DB) {
	ctl := notificationController.NewNotificationController(db)

	notifications := r.Group("/notifications")
	notifications.Get("/", ctl.List)                    // GET   /api/u/notifications
	notifications.Get("/unread-count", ctl.UnreadCount) // GET   /api/u/notifications/unread-count
	notifications.Patch("/:id/read", ctl.MarkAsRead)    // PATCH /api/u/notifications/:id/read
}
