package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/k12fleet/assetdesk/internal/roster"
)

var (
	// ErrSessionNotFound means the session token matches no audit session.
	ErrSessionNotFound = errors.New("audit session not found")
	// ErrPersonNotFound means the person id matches no roster entry.
	ErrPersonNotFound = errors.New("audit person not found")
	// ErrNoteTooLong means the submitted note body exceeds the bound.
	ErrNoteTooLong = errors.New("note exceeds the maximum length")
)

// DuplicateReviewError blocks finalization until the caller confirms how
// duplicate roster rows should be resolved.
type DuplicateReviewError struct {
	Groups []roster.DuplicateGroup
}

func (e *DuplicateReviewError) Error() string {
	return fmt.Sprintf("roster contains %d duplicate group(s) awaiting confirmation", len(e.Groups))
}

// IncompleteVerificationError rejects a submission that does not account for
// every fetched device. The auditor must explicitly confirm each item.
type IncompleteVerificationError struct {
	Expected  int
	Confirmed int
	Missing   []string // asset ids absent from the confirmation set
}

func (e *IncompleteVerificationError) Error() string {
	return fmt.Sprintf("verification confirmed %d of %d devices; unaccounted: %s",
		e.Confirmed, e.Expected, strings.Join(e.Missing, ", "))
}

// ConflictError means another auditor completed this person first. The
// conditional write at submission time is the serialization point.
type ConflictError struct {
	AuditedBy string
	AuditedAt time.Time
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("already audited by %s", e.AuditedBy)
}

// InvalidStateError rejects an operation the person's current state does not
// allow, such as restoring someone who was never audited.
type InvalidStateError struct {
	PersonID uint
	Detail   string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("person %d: %s", e.PersonID, e.Detail)
}
