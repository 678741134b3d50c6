package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/k12fleet/assetdesk/internal/directory"
	"github.com/k12fleet/assetdesk/internal/logger"
	"github.com/k12fleet/assetdesk/internal/metrics"
	"github.com/k12fleet/assetdesk/internal/models"
	"github.com/k12fleet/assetdesk/internal/util"
)

// DirectoryClient is the slice of the asset directory this service consumes.
type DirectoryClient interface {
	ResolveIdentity(ctx context.Context, name string) (string, error)
	FetchAssignedDevices(ctx context.Context, externalID string) ([]directory.DeviceDescriptor, error)
}

// VerificationService runs one person's audit pass: fetch assigned equipment,
// accept a confirmation with optional note, commit an atomic outcome, and
// restore completed persons for re-audit.
type VerificationService struct {
	DB            *gorm.DB
	Directory     DirectoryClient
	Notifications *NotificationService
}

func NewVerificationService(db *gorm.DB, dir DirectoryClient, ns *NotificationService) *VerificationService {
	return &VerificationService{DB: db, Directory: dir, Notifications: ns}
}

// Begin resolves the person's external identity and fetches their currently
// assigned equipment. An empty list is a valid outcome: the person simply has
// nothing to account for. No state is written; abandoning the result is free.
func (s *VerificationService) Begin(ctx context.Context, personID uint) ([]directory.DeviceDescriptor, error) {
	var person models.AuditPerson
	if err := s.DB.First(&person, personID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPersonNotFound
		}
		return nil, err
	}

	externalID, err := s.Directory.ResolveIdentity(ctx, person.Name)
	if err != nil {
		return nil, err
	}

	devices, err := s.Directory.FetchAssignedDevices(ctx, externalID)
	if err != nil {
		return nil, err
	}

	logger.WithFields(map[string]interface{}{
		"person":  util.SanitizeForLog(person.Name),
		"devices": len(devices),
	}).Debug("verification began")

	return devices, nil
}

// Submit records the verification outcome atomically: device records, optional
// note, and the audited flag commit together or not at all.
//
// When the fetched device list is non-empty, every device must appear in
// confirmedIDs; the auditor accounts for all items or none. The audited flag
// is re-validated at write time so a racing second auditor loses cleanly.
func (s *VerificationService) Submit(personID uint, devices []directory.DeviceDescriptor, confirmedIDs []string, noteText, auditor string) error {
	if len(noteText) > models.NoteMaxLength {
		return ErrNoteTooLong
	}

	if len(devices) > 0 {
		confirmed := make(map[string]bool, len(confirmedIDs))
		for _, id := range confirmedIDs {
			confirmed[id] = true
		}
		var missing []string
		for _, d := range devices {
			if !confirmed[d.AssetID] {
				missing = append(missing, d.AssetID)
			}
		}
		if len(missing) > 0 {
			return &IncompleteVerificationError{
				Expected:  len(devices),
				Confirmed: len(devices) - len(missing),
				Missing:   missing,
			}
		}
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		now := time.Now()

		// Conditional update is the single-writer-wins gate: the precondition
		// (still unaudited) is checked at write time, not just at read time.
		result := tx.Model(&models.AuditPerson{}).
			Where("id = ? AND audited = ?", personID, false).
			Updates(map[string]interface{}{
				"audited":    true,
				"audited_at": now,
				"auditor":    auditor,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			var person models.AuditPerson
			if err := tx.First(&person, personID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrPersonNotFound
				}
				return err
			}
			auditedAt := now
			if person.AuditedAt != nil {
				auditedAt = *person.AuditedAt
			}
			metrics.IncVerificationConflict()
			return &ConflictError{AuditedBy: person.Auditor, AuditedAt: auditedAt}
		}

		if len(devices) > 0 {
			records := make([]models.DeviceRecord, 0, len(devices))
			for _, d := range devices {
				records = append(records, models.DeviceRecord{
					PersonID:     personID,
					AssetID:      d.AssetID,
					AssetTag:     d.AssetTag,
					SerialNumber: d.SerialNumber,
					DeviceType:   d.DeviceType,
					Verified:     true,
				})
			}
			if err := tx.Create(&records).Error; err != nil {
				return err
			}
		}

		if strings.TrimSpace(noteText) != "" {
			note := models.Note{PersonID: personID, Body: noteText, Author: auditor}
			if err := tx.Create(&note).Error; err != nil {
				return err
			}
		}

		return s.refreshSessionStatus(tx, personID)
	})
	if err != nil {
		return err
	}

	metrics.IncVerification()
	return nil
}

// RestoreForReaudit returns a completed person to the active queue. History is
// untouched: prior device records and notes remain, and the next submission
// appends a fresh generation of rows.
func (s *VerificationService) RestoreForReaudit(personID uint, requestedBy string) error {
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.AuditPerson{}).
			Where("id = ? AND audited = ?", personID, true).
			Updates(map[string]interface{}{
				"audited":    false,
				"audited_at": nil,
				"auditor":    "",
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			var person models.AuditPerson
			if err := tx.First(&person, personID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrPersonNotFound
				}
				return err
			}
			return &InvalidStateError{PersonID: personID, Detail: "not audited yet, nothing to restore"}
		}

		return s.refreshSessionStatus(tx, personID)
	})
	if err != nil {
		return err
	}

	logger.WithFields(map[string]interface{}{
		"person_id":    personID,
		"requested_by": util.SanitizeForLog(requestedBy),
	}).Info("person restored for re-audit")

	if s.Notifications != nil {
		s.Notifications.Create(
			models.NotificationTypeWarning,
			"Person restored for re-audit",
			fmt.Sprintf("Person %d was returned to the active queue by %s", personID, requestedBy),
		)
		s.Notifications.SendExternal("audit", "Re-audit requested",
			fmt.Sprintf("Person %d was returned to the active queue by %s", personID, requestedBy))
	}

	return nil
}

// refreshSessionStatus derives the informational session status from person
// state. It never gates anything; re-audit flips a completed session back.
func (s *VerificationService) refreshSessionStatus(tx *gorm.DB, personID uint) error {
	var person models.AuditPerson
	if err := tx.First(&person, personID).Error; err != nil {
		return err
	}

	var remaining int64
	if err := tx.Model(&models.AuditPerson{}).
		Where("session_id = ? AND audited = ?", person.SessionID, false).
		Count(&remaining).Error; err != nil {
		return err
	}

	status := models.SessionStatusActive
	if remaining == 0 {
		status = models.SessionStatusCompleted
	}

	return tx.Model(&models.AuditSession{}).
		Where("id = ?", person.SessionID).
		Update("status", status).Error
}
