package services

import (
	"bytes"
	"encoding/csv"
	"strconv"
	"time"

	"gorm.io/gorm"
)

// NoteFilters narrows the ledger by session and/or creation date range.
type NoteFilters struct {
	SessionToken string
	From         *time.Time
	To           *time.Time
}

// NoteEntry is one ledger row: a note joined to its person, with the number of
// device records on file so a reviewer sees the equipment context at a glance.
type NoteEntry struct {
	NoteID      uint      `json:"note_id"`
	PersonID    uint      `json:"person_id"`
	Name        string    `json:"name"`
	Grade       string    `json:"grade"`
	Advisor     string    `json:"advisor"`
	Body        string    `json:"body"`
	Author      string    `json:"author"`
	DeviceCount int64     `json:"device_count"`
	CreatedAt   time.Time `json:"created_at"`
}

// NotesService is the read-only ledger aggregating notes across sessions for
// the reviewing role.
type NotesService struct {
	DB *gorm.DB
}

func NewNotesService(db *gorm.DB) *NotesService {
	return &NotesService{DB: db}
}

// ListNotes returns ledger entries matching the filters, newest first.
func (s *NotesService) ListNotes(filters NoteFilters) ([]NoteEntry, error) {
	query := s.DB.Table("notes").
		Select(`notes.id AS note_id, notes.person_id, notes.body, notes.author, notes.created_at,
			audit_people.name, audit_people.grade, audit_people.advisor,
			(SELECT COUNT(*) FROM device_records WHERE device_records.person_id = notes.person_id) AS device_count`).
		Joins("JOIN audit_people ON audit_people.id = notes.person_id")

	if filters.SessionToken != "" {
		query = query.
			Joins("JOIN audit_sessions ON audit_sessions.id = audit_people.session_id").
			Where("audit_sessions.uuid = ?", filters.SessionToken)
	}
	if filters.From != nil {
		query = query.Where("notes.created_at >= ?", *filters.From)
	}
	if filters.To != nil {
		query = query.Where("notes.created_at <= ?", *filters.To)
	}

	var entries []NoteEntry
	err := query.Order("notes.created_at DESC").Scan(&entries).Error
	return entries, err
}

// ExportNotes serializes the same filtered view as a CSV byte stream for
// offline review.
func (s *NotesService) ExportNotes(filters NoteFilters) ([]byte, error) {
	entries, err := s.ListNotes(filters)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"name", "grade", "advisor", "note", "author", "device_count", "created_at"}); err != nil {
		return nil, err
	}
	for _, e := range entries {
		row := []string{
			e.Name,
			e.Grade,
			e.Advisor,
			e.Body,
			e.Author,
			strconv.FormatInt(e.DeviceCount, 10),
			e.CreatedAt.Format(time.RFC3339),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
