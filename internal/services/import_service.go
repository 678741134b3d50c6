package services

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/k12fleet/assetdesk/internal/logger"
	"github.com/k12fleet/assetdesk/internal/metrics"
	"github.com/k12fleet/assetdesk/internal/models"
	"github.com/k12fleet/assetdesk/internal/roster"
	"github.com/k12fleet/assetdesk/internal/util"
)

// ImportService turns validated rosters into seeded audit sessions. Parsing is
// pure; Finalize is the only step that writes anything.
type ImportService struct {
	DB            *gorm.DB
	Importer      *roster.Importer
	Notifications *NotificationService
}

func NewImportService(db *gorm.DB, importer *roster.Importer, ns *NotificationService) *ImportService {
	return &ImportService{DB: db, Importer: importer, Notifications: ns}
}

// Preview parses and validates a roster without committing anything. The
// result surfaces duplicate groups for confirm-or-reject review.
func (s *ImportService) Preview(data []byte, hint roster.Encoding) (*roster.ParseResult, error) {
	return s.Importer.Parse(data, hint)
}

// Finalize creates an audit session and seeds its persons in one transaction.
// Rosters with unconfirmed duplicate groups are refused; with confirmation,
// only the first occurrence of each group is retained.
func (s *ImportService) Finalize(data []byte, hint roster.Encoding, confirmDuplicates bool, creator string) (*models.AuditSession, error) {
	result, err := s.Importer.Parse(data, hint)
	if err != nil {
		return nil, err
	}

	if result.HasDuplicates() && !confirmDuplicates {
		return nil, &DuplicateReviewError{Groups: result.Duplicates}
	}

	records := result.Persons
	if result.HasDuplicates() {
		records = result.Deduplicated()
	}

	session := &models.AuditSession{Creator: creator}
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(session).Error; err != nil {
			return err
		}

		people := make([]models.AuditPerson, 0, len(records))
		for _, r := range records {
			people = append(people, models.AuditPerson{
				SessionID: session.ID,
				Name:      r.Name,
				Grade:     r.Grade,
				Advisor:   r.Advisor,
			})
		}
		if err := tx.Create(&people).Error; err != nil {
			return err
		}

		session.PersonCount = len(people)
		return tx.Model(session).Update("person_count", session.PersonCount).Error
	})
	if err != nil {
		return nil, err
	}

	metrics.IncImport()
	logger.WithFields(map[string]interface{}{
		"session": session.UUID,
		"creator": util.SanitizeForLog(creator),
		"persons": session.PersonCount,
	}).Info("roster import finalized")

	if s.Notifications != nil {
		s.Notifications.Create(
			models.NotificationTypeSuccess,
			"Roster imported",
			fmt.Sprintf("Session %s seeded with %d persons by %s", session.UUID, session.PersonCount, creator),
		)
		s.Notifications.SendExternal("import", "Roster imported",
			fmt.Sprintf("Session %s seeded with %d persons", session.UUID, session.PersonCount))
	}

	return session, nil
}
