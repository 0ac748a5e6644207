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
	ErrScheduleNotFound      = errors.New("schedule not found")
	ErrBadScheduleDate       = errors.New("date must be formatted as YYYY-MM-DD")
	ErrMissingScheduleFields = errors.New("title, date, start_time and end_time are required")
)

type ScheduleService struct {
	db            *gorm.DB
	notifications *NotificationService
}

func NewScheduleService(db *gorm.DB, notifications *NotificationService) *ScheduleService {
	return &ScheduleService{db: db, notifications: notifications}
}

// List returns all schedules with applicant counts. When a principal is
// present, each entry carries whether that user has an active application.
func (s *ScheduleService) List(currentUser *uuid.UUID) ([]dto.ScheduleResponse, error) {
	var schedules []models.Schedule
	if err := s.db.Order("date ASC, start_time ASC").Find(&schedules).Error; err != nil {
		return nil, fmt.Errorf("failed to list schedules: %w", err)
	}

	out := make([]dto.ScheduleResponse, 0, len(schedules))
	for i := range schedules {
		resp, err := s.describe(&schedules[i], currentUser)
		if err != nil {
			return nil, err
		}
		out = append(out, *resp)
	}
	return out, nil
}

func (s *ScheduleService) Get(id uuid.UUID, currentUser *uuid.UUID) (*dto.ScheduleResponse, error) {
	var schedule models.Schedule
	if err := s.db.First(&schedule, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrScheduleNotFound
		}
		return nil, fmt.Errorf("failed to load schedule: %w", err)
	}
	return s.describe(&schedule, currentUser)
}

func (s *ScheduleService) describe(schedule *models.Schedule, currentUser *uuid.UUID) (*dto.ScheduleResponse, error) {
	var count int64
	err := s.db.Model(&models.Application{}).
		Where("schedule_id = ? AND status = ?", schedule.ID, models.ApplicationApplied).
		Count(&count).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count applicants: %w", err)
	}

	applied := false
	if currentUser != nil {
		var mine int64
		err := s.db.Model(&models.Application{}).
			Where("schedule_id = ? AND user_id = ? AND status = ?",
				schedule.ID, *currentUser, models.ApplicationApplied).
			Count(&mine).Error
		if err != nil {
			return nil, fmt.Errorf("failed to check application: %w", err)
		}
		applied = mine > 0
	}

	resp := dto.NewScheduleResponse(schedule, int(count), applied)
	return &resp, nil
}

func (s *ScheduleService) Create(createdBy uuid.UUID, req *dto.ScheduleCreateRequest) (*models.Schedule, error) {
	if req.Title == "" || req.Date == "" || req.StartTime == "" || req.EndTime == "" {
		return nil, ErrMissingScheduleFields
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, ErrBadScheduleDate
	}

	schedule := models.Schedule{
		ID:          uuid.New(),
		Title:       req.Title,
		Description: req.Description,
		Date:        date,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Location:    req.Location,
		CreatedBy:   createdBy,
	}
	if err := s.db.Create(&schedule).Error; err != nil {
		return nil, fmt.Errorf("failed to create schedule: %w", err)
	}

	s.notifications.NotifyAll(
		"New volunteer schedule",
		fmt.Sprintf("%s (%s %s-%s)", schedule.Title, req.Date, schedule.StartTime, schedule.EndTime),
		models.NotificationSchedule,
		map[string]any{"schedule_id": schedule.ID},
	)

	return &schedule, nil
}

func (s *ScheduleService) Update(id uuid.UUID, req *dto.ScheduleUpdateRequest) (*models.Schedule, error) {
	var schedule models.Schedule
	if err := s.db.First(&schedule, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrScheduleNotFound
		}
		return nil, fmt.Errorf("failed to load schedule: %w", err)
	}

	if req.Title != nil {
		schedule.Title = *req.Title
	}
	if req.Description != nil {
		schedule.Description = *req.Description
	}
	if req.Date != nil {
		date, err := time.Parse("2006-01-02", *req.Date)
		if err != nil {
			return nil, ErrBadScheduleDate
		}
		schedule.Date = date
	}
	if req.StartTime != nil {
		schedule.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		schedule.EndTime = *req.EndTime
	}
	if req.Location != nil {
		schedule.Location = *req.Location
	}

	if err := s.db.Save(&schedule).Error; err != nil {
		return nil, fmt.Errorf("failed to update schedule: %w", err)
	}
	return &schedule, nil
}

func (s *ScheduleService) Delete(id uuid.UUID) error {
	result := s.db.Delete(&models.Schedule{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete schedule: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrScheduleNotFound
	}
	return nil
}

// Applicants lists users with an active application for a schedule.
func (s *ScheduleService) Applicants(id uuid.UUID) ([]dto.UserResponse, error) {
	var schedule models.Schedule
	if err := s.db.First(&schedule, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrScheduleNotFound
		}
		return nil, fmt.Errorf("failed to load schedule: %w", err)
	}

	var users []models.User
	err := s.db.
		Joins("JOIN applications ON applications.user_id = users.id").
		Where("applications.schedule_id = ? AND applications.status = ?", id, models.ApplicationApplied).
		Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list applicants: %w", err)
	}

	out := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		out = append(out, dto.NewUserResponse(&users[i]))
	}
	return out, nil
}
