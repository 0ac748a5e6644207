package models

import (
	"time"

	"github.com/google/uuid"
)

// ApplicationStatus tracks whether a sign-up is active or withdrawn.
type ApplicationStatus string

const (
	ApplicationApplied   ApplicationStatus = "applied"
	ApplicationCancelled ApplicationStatus = "cancelled"
)

// Application is a user's sign-up for a schedule. One row per
// (user, schedule); cancelling flips the status instead of deleting.
type Application struct {
	ID          uuid.UUID         `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID      uuid.UUID         `gorm:"type:uuid;not null;uniqueIndex:idx_applications_user_schedule" json:"user_id"`
	ScheduleID  uuid.UUID         `gorm:"type:uuid;not null;uniqueIndex:idx_applications_user_schedule" json:"schedule_id"`
	Status      ApplicationStatus `gorm:"size:20;default:'applied'" json:"status"`
	AppliedAt   time.Time         `gorm:"autoCreateTime" json:"applied_at"`
	CancelledAt *time.Time        `json:"cancelled_at,omitempty"`
}
