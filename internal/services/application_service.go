package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jangbuk/volunteer-backend/internal/dto"
	"github.com/jangbuk/volunteer-backend/internal/models"
)

var (
	ErrAlreadyApplied     = errors.New("already applied to this schedule")
	ErrApplicationMissing = errors.New("no active application for this schedule")
)

type ApplicationService struct {
	db *gorm.DB
}

func NewApplicationService(db *gorm.DB) *ApplicationService {
	return &ApplicationService{db: db}
}

// Apply signs the user up for a schedule. A previously cancelled
// application is re-activated instead of inserting a second row.
func (s *ApplicationService) Apply(userID, scheduleID uuid.UUID) (*models.Application, error) {
	var schedule models.Schedule
	if err := s.db.First(&schedule, "id = ?", scheduleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrScheduleNotFound
		}
		return nil, fmt.Errorf("failed to load schedule: %w", err)
	}

	var existing models.Application
	err := s.db.Where("user_id = ? AND schedule_id = ?", userID, scheduleID).First(&existing).Error
	if err == nil {
		if existing.Status == models.ApplicationApplied {
			return nil, ErrAlreadyApplied
		}
		existing.Status = models.ApplicationApplied
		existing.CancelledAt = nil
		if err := s.db.Save(&existing).Error; err != nil {
			return nil, fmt.Errorf("failed to re-apply: %w", err)
		}
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check application: %w", err)
	}

	application := models.Application{
		ID:         uuid.New(),
		UserID:     userID,
		ScheduleID: scheduleID,
		Status:     models.ApplicationApplied,
	}
	if err := s.db.Create(&application).Error; err != nil {
		// Concurrent duplicate applies race on the unique index.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadyApplied
		}
		return nil, fmt.Errorf("failed to create application: %w", err)
	}
	return &application, nil
}

func (s *ApplicationService) Cancel(userID, scheduleID uuid.UUID) error {
	var application models.Application
	err := s.db.Where("user_id = ? AND schedule_id = ? AND status = ?",
		userID, scheduleID, models.ApplicationApplied).First(&application).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrApplicationMissing
		}
		return fmt.Errorf("failed to load application: %w", err)
	}

	now := time.Now()
	application.Status = models.ApplicationCancelled
	application.CancelledAt = &now
	if err := s.db.Save(&application).Error; err != nil {
		return fmt.Errorf("failed to cancel application: %w", err)
	}
	return nil
}

// Mine lists the user's applications, newest first, with their schedules.
func (s *ApplicationService) Mine(userID uuid.UUID) ([]dto.ApplicationResponse, error) {
	var applications []models.Application
	err := s.db.Where("user_id = ?", userID).Order("applied_at DESC").Find(&applications).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}

	out := make([]dto.ApplicationResponse, 0, len(applications))
	for i := range applications {
		a := applications[i]
		resp := dto.ApplicationResponse{
			ID:          a.ID,
			ScheduleID:  a.ScheduleID,
			Status:      a.Status,
			AppliedAt:   a.AppliedAt,
			CancelledAt: a.CancelledAt,
		}

		var schedule models.Schedule
		if err := s.db.First(&schedule, "id = ?", a.ScheduleID).Error; err == nil {
			sr := dto.NewScheduleResponse(&schedule, 0, a.Status == models.ApplicationApplied)
			resp.Schedule = &sr
		}
		out = append(out, resp)
	}
	return out, nil
}
