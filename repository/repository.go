// Package repository implements data access for per-user settings
package repository

import (
	stderrors "errors"
	"log/slog"
	"time"

	"gorm.io/gorm"
	"weatherbot.app/errors"
	"weatherbot.app/models"
)

// UserRepository handles persistence of user settings
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new repository for user settings
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByChatID retrieves settings for a chat user, or nil when none exist
func (r *UserRepository) FindByChatID(chatID int64) (*models.UserSettings, error) {
	var settings models.UserSettings
	result := r.db.Where("chat_id = ?", chatID).First(&settings)
	if result.Error != nil {
		if stderrors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		slog.Error("find user settings", "chat_id", chatID, "error", result.Error)
		return nil, errors.NewDatabaseError("find user settings", result.Error)
	}

	return &settings, nil
}

// Save creates or updates the settings row
func (r *UserRepository) Save(settings *models.UserSettings) error {
	if result := r.db.Save(settings); result.Error != nil {
		slog.Error("save user settings", "chat_id", settings.ChatID, "error", result.Error)
		return errors.NewDatabaseError("save user settings", result.Error)
	}
	return nil
}

// GetNotifiable retrieves every user with notifications enabled
func (r *UserRepository) GetNotifiable() ([]models.UserSettings, error) {
	var users []models.UserSettings
	result := r.db.Where("notifications_enabled = ?", true).Find(&users)
	if result.Error != nil {
		slog.Error("list notifiable users", "error", result.Error)
		return nil, errors.NewDatabaseError("list notifiable users", result.Error)
	}

	return users, nil
}

// MarkNotified records when the user last received a weather update
func (r *UserRepository) MarkNotified(chatID int64, at time.Time) error {
	result := r.db.Model(&models.UserSettings{}).
		Where("chat_id = ?", chatID).
		Update("last_notified_at", at)
	if result.Error != nil {
		slog.Error("mark user notified", "chat_id", chatID, "error", result.Error)
		return errors.NewDatabaseError("mark user notified", result.Error)
	}
	return nil
}
