// file: internals/features/assessment/notifications/model/notification_model.go
package model

import (
	"time"

	"github.com/google/uuid"
)

// Notification kinds emitted at workflow transition points.
const (
	KindAssignmentNew       = "assignment_new"
	KindAssignmentCancelled = "assignment_cancelled"
	KindAssignmentOverdue   = "assignment_overdue"
	KindEvaluationSubmitted  = "evaluation_submitted"
	KindEvaluationSupervised = "evaluation_supervised"
	KindEvaluationFinalized  = "evaluation_finalized"
)

const (
	EntityAssignment = "assignment"
	EntityEvaluation = "evaluation"
)

type NotificationModel struct {
	NotificationID          uuid.UUID  `json:"notification_id" gorm:"type:uuid;default:gen_random_uuid();primaryKey;column:notification_id"`
	NotificationRecipientID uuid.UUID  `json:"notification_recipient_id" gorm:"type:uuid;not null;index;column:notification_recipient_id"`
	NotificationSenderID    *uuid.UUID `json:"notification_sender_id,omitempty" gorm:"type:uuid;column:notification_sender_id"`

	NotificationType    string `json:"notification_type" gorm:"type:varchar(40);not null;index;column:notification_type"`
	NotificationTitle   string `json:"notification_title" gorm:"type:text;not null;column:notification_title"`
	NotificationMessage string `json:"notification_message" gorm:"type:text;not null;column:notification_message"`

	NotificationEntityType string    `json:"notification_entity_type" gorm:"type:varchar(20);not null;column:notification_entity_type"`
	NotificationEntityID   uuid.UUID `json:"notification_entity_id" gorm:"type:uuid;not null;column:notification_entity_id"`

	NotificationIsRead bool       `json:"notification_is_read" gorm:"not null;default:false;column:notification_is_read"`
	NotificationReadAt *time.Time `json:"notification_read_at,omitempty" gorm:"column:notification_read_at"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime;column:created_at"`
}

func (NotificationModel) TableName() string { return "notifications" }
