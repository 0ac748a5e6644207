package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/jangbuk/volunteer-backend/internal/models"
)

var ErrNotificationNotFound = errors.New("notification not found")

type NotificationService struct {
	db *gorm.DB
}

func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{db: db}
}

// Mine returns the user's latest 50 notifications, newest first.
func (s *NotificationService) Mine(userID uuid.UUID) ([]models.Notification, error) {
	var notifications []models.Notification
	err := s.db.Where("user_id = ?", userID).
		Order("created_at DESC").Limit(50).
		Find(&notifications).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return notifications, nil
}

// MarkRead marks one of the user's notifications as read. Rows belonging
// to other users are invisible here.
func (s *NotificationService) MarkRead(userID, notificationID uuid.UUID) error {
	result := s.db.Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", notificationID, userID).
		Update("is_read", true)
	if result.Error != nil {
		return fmt.Errorf("failed to mark notification read: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

func (s *NotificationService) MarkAllRead(userID uuid.UUID) error {
	err := s.db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = false", userID).
		Update("is_read", true).Error
	if err != nil {
		return fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return nil
}

// NotifyAll fans a notification out to every user. Push delivery to the
// stored fcm tokens happens out of band; this only records the rows.
// Failures are logged, never surfaced to the triggering request.
func (s *NotificationService) NotifyAll(title, body string, kind models.NotificationType, data map[string]any) {
	payload := datatypes.JSON("{}")
	if data != nil {
		if b, err := json.Marshal(data); err == nil {
			payload = datatypes.JSON(b)
		}
	}

	var users []models.User
	if err := s.db.Select("id").Find(&users).Error; err != nil {
		slog.Error("notification fan-out failed to list users", "error", err)
		return
	}

	rows := make([]models.Notification, 0, len(users))
	for _, u := range users {
		rows = append(rows, models.Notification{
			ID:     uuid.New(),
			UserID: u.ID,
			Title:  title,
			Body:   body,
			Type:   kind,
			Data:   payload,
		})
	}
	if len(rows) == 0 {
		return
	}

	if err := s.db.CreateInBatches(rows, 100).Error; err != nil {
		slog.Error("notification fan-out failed", "error", err, "count", len(rows))
	}
}
