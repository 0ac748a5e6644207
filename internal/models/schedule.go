package models

import (
	"time"

	"github.com/google/uuid"
)

// Schedule is a volunteer time slot users can apply to.
type Schedule struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	Date        time.Time `gorm:"type:date;not null;index" json:"date"`
	StartTime   string    `gorm:"size:5;not null" json:"start_time"` // "HH:MM"
	EndTime     string    `gorm:"size:5;not null" json:"end_time"`
	Location    string    `gorm:"size:255" json:"location"`
	CreatedBy   uuid.UUID `gorm:"type:uuid;not null" json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Applications []Application `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}
