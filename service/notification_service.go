package service

import (
	"fmt"
	"log/slog"
	"time"

	"weatherbot.app/models"
	"weatherbot.app/providers"
	"weatherbot.app/repository"
)

// NotificationService periodically delivers weather updates to users who
// opted in. Each sweep fetches fresh conditions for every due user and
// records the delivery time.
type NotificationService struct {
	users    *repository.UserRepository
	weather  WeatherServiceInterface
	notifier providers.Notifier
	now      func() time.Time
}

// NewNotificationService creates a notification service
func NewNotificationService(users *repository.UserRepository, weather WeatherServiceInterface, notifier providers.Notifier) *NotificationService {
	return &NotificationService{
		users:    users,
		weather:  weather,
		notifier: notifier,
		now:      time.Now,
	}
}

// RunDueNotifications sends a weather update to every user whose interval has
// elapsed. Per-user failures are logged and skipped so one bad user does not
// block the rest of the sweep.
func (s *NotificationService) RunDueNotifications() error {
	users, err := s.users.GetNotifiable()
	if err != nil {
		return err
	}

	now := s.now()
	sent := 0
	for i := range users {
		user := &users[i]
		if !s.isDue(user, now) {
			continue
		}

		if err := s.notifyUser(user, now); err != nil {
			slog.Error("weather notification failed", "chat_id", user.ChatID, "error", err)
			continue
		}
		sent++
	}

	slog.Info("notification sweep complete", "candidates", len(users), "sent", sent)
	return nil
}

func (s *NotificationService) isDue(user *models.UserSettings, now time.Time) bool {
	if user.City == "" {
		return false
	}
	if user.LastNotifiedAt == nil {
		return true
	}

	interval := time.Duration(user.IntervalHours) * time.Hour
	return now.Sub(*user.LastNotifiedAt) >= interval
}

func (s *NotificationService) notifyUser(user *models.UserSettings, now time.Time) error {
	weather, err := s.weather.GetCurrentWeatherByCity(user.City)
	if err != nil {
		return err
	}

	subject := fmt.Sprintf("Weather update for %s", weather.Name)
	if err := s.notifier.Notify(user, subject, FormatCurrentWeather(weather)); err != nil {
		return err
	}

	return s.users.MarkNotified(user.ChatID, now)
}
