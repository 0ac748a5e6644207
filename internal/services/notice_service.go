package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jangbuk/volunteer-backend/internal/dto"
	"github.com/jangbuk/volunteer-backend/internal/models"
)

var (
	ErrNoticeNotFound      = errors.New("notice not found")
	ErrMissingNoticeFields = errors.New("title and content are required")
)

type NoticeService struct {
	db            *gorm.DB
	notifications *NotificationService
}

func NewNoticeService(db *gorm.DB, notifications *NotificationService) *NoticeService {
	return &NoticeService{db: db, notifications: notifications}
}

// List returns all notices, important ones first, newest within each group.
func (s *NoticeService) List() ([]models.Notice, error) {
	var notices []models.Notice
	err := s.db.Order("is_important DESC, created_at DESC").Find(&notices).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list notices: %w", err)
	}
	return notices, nil
}

func (s *NoticeService) Get(id uuid.UUID) (*models.Notice, error) {
	var notice models.Notice
	if err := s.db.First(&notice, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoticeNotFound
		}
		return nil, fmt.Errorf("failed to load notice: %w", err)
	}
	return &notice, nil
}

func (s *NoticeService) Create(createdBy uuid.UUID, req *dto.NoticeCreateRequest) (*models.Notice, error) {
	if req.Title == "" || req.Content == "" {
		return nil, ErrMissingNoticeFields
	}

	notice := models.Notice{
		ID:          uuid.New(),
		Title:       req.Title,
		Content:     req.Content,
		IsImportant: req.IsImportant,
		CreatedBy:   createdBy,
	}
	if err := s.db.Create(&notice).Error; err != nil {
		return nil, fmt.Errorf("failed to create notice: %w", err)
	}

	if notice.IsImportant {
		s.notifications.NotifyAll(notice.Title, notice.Content,
			models.NotificationNotice, map[string]any{"notice_id": notice.ID})
	}

	return &notice, nil
}

func (s *NoticeService) Update(id uuid.UUID, req *dto.NoticeUpdateRequest) (*models.Notice, error) {
	notice, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		notice.Title = *req.Title
	}
	if req.Content != nil {
		notice.Content = *req.Content
	}
	if req.IsImportant != nil {
		notice.IsImportant = *req.IsImportant
	}

	if err := s.db.Save(notice).Error; err != nil {
		return nil, fmt.Errorf("failed to update notice: %w", err)
	}
	return notice, nil
}

func (s *NoticeService) Delete(id uuid.UUID) error {
	result := s.db.Delete(&models.Notice{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete notice: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNoticeNotFound
	}
	return nil
}
