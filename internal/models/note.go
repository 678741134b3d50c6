package models

import (
	"time"
)

// NoteMaxLength bounds the free-text body of a note.
const NoteMaxLength = 2000

// Note is a free-text remark recorded at verification submission time.
// Immutable once written; read by the notes ledger.
type Note struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	PersonID  uint      `json:"person_id" gorm:"index"`
	Body      string    `json:"body" gorm:"type:text"`
	Author    string    `json:"author"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`
}
