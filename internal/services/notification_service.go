package services

import (
	"fmt"

	"github.com/containrrr/shoutrrr"
	"gorm.io/gorm"

	"github.com/k12fleet/assetdesk/internal/logger"
	"github.com/k12fleet/assetdesk/internal/models"
)

type NotificationService struct {
	DB *gorm.DB
}

func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{DB: db}
}

// Internal Notifications (DB)

func (s *NotificationService) Create(nType models.NotificationType, title, message string) (*models.Notification, error) {
	notification := &models.Notification{
		Type:    nType,
		Title:   title,
		Message: message,
		Read:    false,
	}
	result := s.DB.Create(notification)
	return notification, result.Error
}

func (s *NotificationService) List(unreadOnly bool) ([]models.Notification, error) {
	var notifications []models.Notification
	query := s.DB.Order("created_at desc")
	if unreadOnly {
		query = query.Where("read = ?", false)
	}
	result := query.Find(&notifications)
	return notifications, result.Error
}

func (s *NotificationService) MarkAsRead(id string) error {
	return s.DB.Model(&models.Notification{}).Where("id = ?", id).Update("read", true).Error
}

func (s *NotificationService) MarkAllAsRead() error {
	return s.DB.Model(&models.Notification{}).Where("read = ?", false).Update("read", true).Error
}

// External Notifications (shoutrrr)

// SendExternal delivers a message to every enabled provider whose preferences
// include the event type. Delivery is fire and forget.
func (s *NotificationService) SendExternal(eventType, title, message string) {
	var providers []models.NotificationProvider
	if err := s.DB.Where("enabled = ?", true).Find(&providers).Error; err != nil {
		logger.Log().WithError(err).Error("failed to fetch notification providers")
		return
	}

	for _, provider := range providers {
		shouldSend := false
		switch eventType {
		case "import":
			shouldSend = provider.NotifyImports
		case "audit":
			shouldSend = provider.NotifyAudits
		case "test":
			shouldSend = true
		default:
			shouldSend = true
		}

		if !shouldSend {
			continue
		}

		go func(p models.NotificationProvider) {
			if err := shoutrrr.Send(p.URL, fmt.Sprintf("%s: %s", title, message)); err != nil {
				logger.WithFields(map[string]interface{}{
					"provider": p.Name,
					"type":     p.Type,
				}).WithError(err).Error("external notification failed")
			}
		}(provider)
	}
}
