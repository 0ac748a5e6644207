package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/jangbuk/volunteer-backend/internal/models"
)

type ScheduleCreateRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Date        string `json:"date"` // "2006-01-02"
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	Location    string `json:"location"`
}

type ScheduleUpdateRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Date        *string `json:"date,omitempty"`
	StartTime   *string `json:"start_time,omitempty"`
	EndTime     *string `json:"end_time,omitempty"`
	Location    *string `json:"location,omitempty"`
}

type ScheduleResponse struct {
	ID             uuid.UUID `json:"id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Date           string    `json:"date"`
	StartTime      string    `json:"start_time"`
	EndTime        string    `json:"end_time"`
	Location       string    `json:"location"`
	CreatedBy      uuid.UUID `json:"created_by"`
	ApplicantCount int       `json:"applicant_count"`
	Applied        bool      `json:"applied"`
	CreatedAt      time.Time `json:"created_at"`
}

func NewScheduleResponse(s *models.Schedule, applicantCount int, applied bool) ScheduleResponse {
	return ScheduleResponse{
		ID:             s.ID,
		Title:          s.Title,
		Description:    s.Description,
		Date:           s.Date.Format("2006-01-02"),
		StartTime:      s.StartTime,
		EndTime:        s.EndTime,
		Location:       s.Location,
		CreatedBy:      s.CreatedBy,
		ApplicantCount: applicantCount,
		Applied:        applied,
		CreatedAt:      s.CreatedAt,
	}
}

type ApplicationResponse struct {
	ID          uuid.UUID                `json:"id"`
	ScheduleID  uuid.UUID                `json:"schedule_id"`
	Status      models.ApplicationStatus `json:"status"`
	AppliedAt   time.Time                `json:"applied_at"`
	CancelledAt *time.Time               `json:"cancelled_at,omitempty"`
	Schedule    *ScheduleResponse        `json:"schedule,omitempty"`
}
