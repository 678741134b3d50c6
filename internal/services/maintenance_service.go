package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/k12fleet/assetdesk/internal/logger"
	"github.com/k12fleet/assetdesk/internal/models"
)

// MaintenanceService holds explicitly triggered cleanup operations. Nothing
// here runs on a schedule; an operator decides when history can go.
type MaintenanceService struct {
	DB *gorm.DB
}

func NewMaintenanceService(db *gorm.DB) *MaintenanceService {
	return &MaintenanceService{DB: db}
}

// PurgeSessions deletes sessions created more than olderThanDays ago, along
// with their persons, device records and notes, in one transaction.
func (s *MaintenanceService) PurgeSessions(olderThanDays int) (int64, error) {
	if olderThanDays < 1 {
		return 0, errors.New("older_than_days must be at least 1")
	}

	cutoff := time.Now().AddDate(0, 0, -olderThanDays)
	var purged int64

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var sessionIDs []uint
		if err := tx.Model(&models.AuditSession{}).
			Where("created_at < ?", cutoff).
			Pluck("id", &sessionIDs).Error; err != nil {
			return err
		}
		if len(sessionIDs) == 0 {
			return nil
		}

		personIDs := tx.Model(&models.AuditPerson{}).
			Where("session_id IN ?", sessionIDs).
			Select("id")

		if err := tx.Where("person_id IN (?)", personIDs).Delete(&models.DeviceRecord{}).Error; err != nil {
			return err
		}
		if err := tx.Where("person_id IN (?)", personIDs).Delete(&models.Note{}).Error; err != nil {
			return err
		}
		if err := tx.Where("session_id IN ?", sessionIDs).Delete(&models.AuditPerson{}).Error; err != nil {
			return err
		}

		result := tx.Where("id IN ?", sessionIDs).Delete(&models.AuditSession{})
		if result.Error != nil {
			return result.Error
		}
		purged = result.RowsAffected
		return nil
	})
	if err != nil {
		return 0, err
	}

	if purged > 0 {
		logger.WithFields(map[string]interface{}{
			"purged": purged,
			"cutoff": cutoff.Format(time.RFC3339),
		}).Info("old audit sessions purged")
	}

	return purged, nil
}
