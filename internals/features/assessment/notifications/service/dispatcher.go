// file: internals/features/assessment/notifications/service/dispatcher.go
package service

import (
	"log"

	"github.com/google/uuid"
	"gorm.io/gorm"

	notificationModel "reviewdesk_backend/internals/features/assessment/notifications/model"
)

// Event is a notification a workflow transition wants delivered. Services
// collect events during a transaction and hand them to the dispatcher only
// after the state change has committed, so a delivery failure can never
// roll back the workflow.
type Event struct {
	Type       string
	Recipient  uuid.UUID
	Sender     *uuid.UUID
	EntityType string
	EntityID   uuid.UUID
	Title      string
	Message    string
}

type Dispatcher struct {
	DB *gorm.DB
}

func NewDispatcher(db *gorm.DB) *Dispatcher {
	return &Dispatcher{DB: db}
}

// Dispatch persists the queued events as in-app notifications.
// Fire-and-forget: failures are logged, never propagated.
func (d *Dispatcher) Dispatch(events []Event) {
	for _, ev := range events {
		row := notificationModel.NotificationModel{
			NotificationRecipientID: ev.Recipient,
			NotificationSenderID:    ev.Sender,
			NotificationType:        ev.Type,
			NotificationTitle:       ev.Title,
			NotificationMessage:     ev.Message,
			NotificationEntityType:  ev.EntityType,
			NotificationEntityID:    ev.EntityID,
		}
		if err := d.DB.Create(&row).Error; err != nil {
			log.Printf("[NOTIFY] dispatch %s to %s failed: %v", ev.Type, ev.Recipient, err)
			continue
		}
		log.Printf("[NOTIFY] %s -> %s (%s %s)", ev.Type, ev.Recipient, ev.EntityType, ev.EntityID)
	}
}
