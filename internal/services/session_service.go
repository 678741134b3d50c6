package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/k12fleet/assetdesk/internal/models"
	"github.com/k12fleet/assetdesk/internal/roster"
)

// SessionService owns the lifecycle of audit sessions and the per-person
// verification state within them.
type SessionService struct {
	DB *gorm.DB
}

func NewSessionService(db *gorm.DB) *SessionService {
	return &SessionService{DB: db}
}

// CreateSession creates an empty active session for the given creator.
func (s *SessionService) CreateSession(creator string) (*models.AuditSession, error) {
	session := &models.AuditSession{Creator: creator}
	if err := s.DB.Create(session).Error; err != nil {
		return nil, err
	}
	return session, nil
}

// SeedPersons inserts the roster records into a session, all or nothing.
func (s *SessionService) SeedPersons(sessionToken string, records []roster.PersonRecord) (int, error) {
	var count int
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var session models.AuditSession
		if err := tx.Where("uuid = ?", sessionToken).First(&session).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSessionNotFound
			}
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
		if len(people) > 0 {
			if err := tx.Create(&people).Error; err != nil {
				return err
			}
		}

		count = len(people)
		return tx.Model(&session).Update("person_count", gorm.Expr("person_count + ?", count)).Error
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

// GetSession fetches a session by its opaque token.
func (s *SessionService) GetSession(sessionToken string) (*models.AuditSession, error) {
	var session models.AuditSession
	if err := s.DB.Where("uuid = ?", sessionToken).First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return &session, nil
}

// ListSessions returns all sessions, newest first.
func (s *SessionService) ListSessions() ([]models.AuditSession, error) {
	var sessions []models.AuditSession
	result := s.DB.Order("created_at DESC").Find(&sessions)
	return sessions, result.Error
}

// ListActivePersons returns the not-yet-audited persons of a session. A search
// term matches a case-insensitive substring on any of the three identity fields.
func (s *SessionService) ListActivePersons(sessionToken, search string) ([]models.AuditPerson, error) {
	return s.listPersons(sessionToken, search, false)
}

// ListCompletedPersons returns the audited complement of the active view.
func (s *SessionService) ListCompletedPersons(sessionToken string) ([]models.AuditPerson, error) {
	return s.listPersons(sessionToken, "", true)
}

func (s *SessionService) listPersons(sessionToken, search string, audited bool) ([]models.AuditPerson, error) {
	session, err := s.GetSession(sessionToken)
	if err != nil {
		return nil, err
	}

	query := s.DB.Where("session_id = ? AND audited = ?", session.ID, audited)
	if search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(grade) LIKE ? OR LOWER(advisor) LIKE ?",
			pattern, pattern, pattern)
	}

	var people []models.AuditPerson
	result := query.Order("name ASC").Find(&people)
	return people, result.Error
}

// GetPerson fetches one person with their full device and note history.
func (s *SessionService) GetPerson(personID uint) (*models.AuditPerson, error) {
	var person models.AuditPerson
	err := s.DB.Preload("DeviceRecords").Preload("Notes").First(&person, personID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPersonNotFound
		}
		return nil, err
	}
	return &person, nil
}

// Progress summarizes how far a session has come.
type Progress struct {
	Seeded    int64 `json:"seeded"`
	Audited   int64 `json:"audited"`
	Completed bool  `json:"completed"`
}

// SessionProgress derives completion from person state rather than storing it
// transactionally; the session status column follows it informationally.
func (s *SessionService) SessionProgress(sessionToken string) (*Progress, error) {
	session, err := s.GetSession(sessionToken)
	if err != nil {
		return nil, err
	}

	var seeded, audited int64
	if err := s.DB.Model(&models.AuditPerson{}).Where("session_id = ?", session.ID).Count(&seeded).Error; err != nil {
		return nil, err
	}
	if err := s.DB.Model(&models.AuditPerson{}).Where("session_id = ? AND audited = ?", session.ID, true).Count(&audited).Error; err != nil {
		return nil, err
	}

	return &Progress{
		Seeded:    seeded,
		Audited:   audited,
		Completed: seeded > 0 && seeded == audited,
	}, nil
}
