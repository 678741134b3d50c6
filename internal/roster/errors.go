package roster

import (
	"fmt"
	"strings"
)

// SchemaError reports a roster whose shape cannot be imported: missing required
// columns or a malformed row. Nothing is committed when it is returned.
type SchemaError struct {
	MissingColumns []string
	Row            int // 1-based data row, 0 when the error is file-level
	Detail         string
}

func (e *SchemaError) Error() string {
	if len(e.MissingColumns) > 0 {
		return fmt.Sprintf("roster is missing required column(s): %s", strings.Join(e.MissingColumns, ", "))
	}
	if e.Row > 0 {
		return fmt.Sprintf("roster row %d: %s", e.Row, e.Detail)
	}
	return e.Detail
}

// EncodingError reports input bytes that could not be decoded into text.
type EncodingError struct {
	Detail string
}

func (e *EncodingError) Error() string {
	return "roster encoding: " + e.Detail
}

// CapacityError reports a roster exceeding the row ceiling. Raised before any
// parsing work so oversized uploads never cost memory.
type CapacityError struct {
	Rows  int
	Limit int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("roster has ~%d rows, exceeding the limit of %d", e.Rows, e.Limit)
}
