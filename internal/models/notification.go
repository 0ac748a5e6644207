package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// NotificationType categorizes in-app notifications.
type NotificationType string

const (
	NotificationSchedule NotificationType = "schedule"
	NotificationNotice   NotificationType = "notice"
	NotificationReminder NotificationType = "reminder"
)

// Notification is an in-app notification row. Data carries the id of the
// schedule or notice it refers to, as json, for client-side deep links.
type Notification struct {
	ID        uuid.UUID        `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID    uuid.UUID        `gorm:"type:uuid;not null;index" json:"user_id"`
	Title     string           `gorm:"size:255;not null" json:"title"`
	Body      string           `gorm:"type:text;not null" json:"body"`
	Type      NotificationType `gorm:"size:20;default:'schedule'" json:"type"`
	IsRead    bool             `gorm:"default:false" json:"is_read"`
	Data      datatypes.JSON   `gorm:"type:jsonb;default:'{}'" json:"data"`
	CreatedAt time.Time        `json:"created_at"`
}
