package controller

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	notificationModel "reviewdesk_backend/internals/features/assessment/notifications/model"
	helper "reviewdesk_backend/internals/helpers"
)

type NotificationController struct {
	DB *gorm.DB
}

func NewNotificationController(db *gorm.DB) *NotificationController {
	return &NotificationController{DB: db}
}

// GET /api/u/notifications?unread_only=true
func (ctl *NotificationController) List(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return err
	}

	paging := helper.ResolvePaging(c, 20, 100)

	q := ctl.DB.Model(&notificationModel.NotificationModel{}).
		Where("notification_recipient_id = ?", userID)

	if strings.EqualFold(c.Query("unread_only"), "true") {
		q = q.Where("notification_is_read = false")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return helper.JsonAppError(c, err)
	}

	var rows []notificationModel.NotificationModel
	if err := q.Order("created_at DESC").
		Offset(paging.Offset).Limit(paging.Limit).
		Find(&rows).Error; err != nil {
		return helper.JsonAppError(c, err)
	}

	return helper.JsonList(c, "", rows, helper.BuildPaginationFromPage(total, paging.Page, paging.PerPage))
}

// GET /api/u/notifications/unread-count
func (ctl *NotificationController) UnreadCount(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return err
	}

	var count int64
	if err := ctl.DB.Model(&notificationModel.NotificationModel{}).
		Where("notification_recipient_id = ? AND notification_is_read = false", userID).
		Count(&count).Error; err != nil {
		return helper.JsonAppError(c, err)
	}

	return helper.JsonOK(c, "", fiber.Map{"unread": count})
}

// PATCH /api/u/notifications/:id/read
func (ctl *NotificationController) MarkAsRead(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return err
	}

	id, err := uuid.Parse(strings.TrimSpace(c.Params("id")))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid notification ID")
	}

	res := ctl.DB.Model(&notificationModel.NotificationModel{}).
		Where("notification_id = ? AND notification_recipient_id = ?", id, userID).
		Updates(map[string]interface{}{
			"notification_is_read": true,
			"notification_read_at": gorm.Expr("now()"),
		})
	if res.Error != nil {
		return helper.JsonAppError(c, res.Error)
	}
	if res.RowsAffected == 0 {
		return helper.JsonError(c, fiber.StatusNotFound, "Notification not found")
	}

	return helper.JsonUpdated(c, "Notification marked as read", nil)
}
