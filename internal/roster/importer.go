package roster

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Encoding is a caller-declared hint for the uploaded roster's text encoding.
type Encoding string

const (
	// EncodingAuto sniffs BOMs and falls back to UTF-8, then Latin-1.
	EncodingAuto   Encoding = "auto"
	EncodingUTF8   Encoding = "utf-8"
	EncodingUTF16  Encoding = "utf-16"
	EncodingLatin1 Encoding = "latin-1"
)

// PersonRecord is one validated roster entry. The triple is the person's
// identity within a session.
type PersonRecord struct {
	Name    string `json:"name"`
	Grade   string `json:"grade"`
	Advisor string `json:"advisor"`
}

// DuplicateGroup describes rows sharing an identical identity triple.
type DuplicateGroup struct {
	PersonRecord
	Count int `json:"count"`
}

// ParseResult is a pure preview of an import: nothing has been committed.
type ParseResult struct {
	Persons    []PersonRecord   `json:"persons"` // file order, duplicates included
	Duplicates []DuplicateGroup `json:"duplicates,omitempty"`
}

// HasDuplicates reports whether the roster needs duplicate confirmation
// before it can be finalized.
func (r *ParseResult) HasDuplicates() bool {
	return len(r.Duplicates) > 0
}

// Deduplicated returns the person list with only the first occurrence of each
// identity triple retained. Used when the caller confirms duplicate groups.
func (r *ParseResult) Deduplicated() []PersonRecord {
	seen := make(map[string]bool, len(r.Persons))
	out := make([]PersonRecord, 0, len(r.Persons))
	for _, p := range r.Persons {
		k := identityKey(p)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, p)
	}
	return out
}

// Importer parses uploaded tabular rosters into validated person records.
type Importer struct {
	maxRows int
}

// NewImporter creates a roster importer with the given row ceiling.
func NewImporter(maxRows int) *Importer {
	if maxRows <= 0 {
		maxRows = 1000
	}
	return &Importer{maxRows: maxRows}
}

// Column aliases accepted for the three required headers, lowercased.
var columnAliases = map[string][]string{
	"name":    {"name", "student", "student name", "full name"},
	"grade":   {"grade", "grade level", "year", "cohort"},
	"advisor": {"advisor", "adviser", "homeroom", "advisory", "teacher"},
}

// Parse validates raw roster bytes and returns person records plus any
// duplicate groups for confirm-or-reject review. Parsing is pure: no rows are
// committed until the caller finalizes the import.
func (im *Importer) Parse(data []byte, hint Encoding) (*ParseResult, error) {
	if len(data) == 0 {
		return nil, &SchemaError{Detail: "roster file is empty"}
	}

	// Cheap newline count bounds memory before any decoding or CSV work.
	if rows := bytes.Count(data, []byte{'\n'}); rows > im.maxRows {
		return nil, &CapacityError{Rows: rows, Limit: im.maxRows}
	}

	text, err := decode(data, hint)
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(strings.NewReader(text))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, &SchemaError{Detail: "roster file has no header row"}
	}
	if err != nil {
		return nil, &SchemaError{Detail: fmt.Sprintf("unreadable header row: %v", err)}
	}

	cols, missing := matchColumns(header)
	if len(missing) > 0 {
		return nil, &SchemaError{MissingColumns: missing}
	}

	result := &ParseResult{}
	groups := make(map[string]*DuplicateGroup)
	row := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		row++
		if err != nil {
			return nil, &SchemaError{Row: row, Detail: fmt.Sprintf("malformed row: %v", err)}
		}
		if isBlankRow(record) {
			continue
		}

		person, err := extractPerson(record, cols, row)
		if err != nil {
			return nil, err
		}
		result.Persons = append(result.Persons, person)

		k := identityKey(person)
		if g, ok := groups[k]; ok {
			g.Count++
			if g.Count == 2 {
				result.Duplicates = append(result.Duplicates, *g)
			}
		} else {
			groups[k] = &DuplicateGroup{PersonRecord: person, Count: 1}
		}
	}

	// Counts recorded in result.Duplicates were snapshotted at 2; refresh them.
	for i := range result.Duplicates {
		result.Duplicates[i].Count = groups[identityKey(result.Duplicates[i].PersonRecord)].Count
	}

	if len(result.Persons) == 0 {
		return nil, &SchemaError{Detail: "roster contains no data rows"}
	}

	return result, nil
}

func extractPerson(record []string, cols map[string]int, row int) (PersonRecord, error) {
	get := func(col string) (string, error) {
		idx := cols[col]
		if idx >= len(record) {
			return "", &SchemaError{Row: row, Detail: fmt.Sprintf("row has no %q value", col)}
		}
		v := strings.TrimSpace(record[idx])
		if v == "" {
			return "", &SchemaError{Row: row, Detail: fmt.Sprintf("blank %q value", col)}
		}
		return v, nil
	}

	name, err := get("name")
	if err != nil {
		return PersonRecord{}, err
	}
	grade, err := get("grade")
	if err != nil {
		return PersonRecord{}, err
	}
	advisor, err := get("advisor")
	if err != nil {
		return PersonRecord{}, err
	}

	return PersonRecord{Name: name, Grade: grade, Advisor: advisor}, nil
}

func matchColumns(header []string) (map[string]int, []string) {
	cols := make(map[string]int, 3)
	for col, aliases := range columnAliases {
		for i, h := range header {
			h = strings.ToLower(strings.TrimSpace(h))
			for _, alias := range aliases {
				if h == alias {
					cols[col] = i
				}
			}
		}
	}

	var missing []string
	for _, col := range []string{"name", "grade", "advisor"} {
		if _, ok := cols[col]; !ok {
			missing = append(missing, col)
		}
	}
	return cols, missing
}

func isBlankRow(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

func identityKey(p PersonRecord) string {
	return strings.ToLower(p.Name) + "\x1f" + strings.ToLower(p.Grade) + "\x1f" + strings.ToLower(p.Advisor)
}

// decode converts raw upload bytes to UTF-8 text, honoring the caller's hint
// or sniffing BOMs. Inputs that survive decoding but still contain NUL bytes
// are treated as binary, not text.
func decode(data []byte, hint Encoding) (string, error) {
	var (
		out []byte
		err error
	)

	switch hint {
	case EncodingUTF8:
		out = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})
		if !utf8.Valid(out) {
			return "", &EncodingError{Detail: "declared UTF-8 but contains invalid byte sequences"}
		}
	case EncodingUTF16:
		out, err = decodeUTF16(data)
		if err != nil {
			return "", err
		}
	case EncodingLatin1:
		out, _, err = transform.Bytes(charmap.ISO8859_1.NewDecoder(), data)
		if err != nil {
			return "", &EncodingError{Detail: err.Error()}
		}
	default: // EncodingAuto
		switch {
		case hasUTF16BOM(data):
			out, err = decodeUTF16(data)
			if err != nil {
				return "", err
			}
		case utf8.Valid(bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})):
			out = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})
		default:
			out, _, err = transform.Bytes(charmap.ISO8859_1.NewDecoder(), data)
			if err != nil {
				return "", &EncodingError{Detail: "unable to detect a supported encoding"}
			}
		}
	}

	if bytes.IndexByte(out, 0x00) >= 0 {
		return "", &EncodingError{Detail: "input looks binary, not tabular text"}
	}

	return string(out), nil
}

func hasUTF16BOM(data []byte) bool {
	return len(data) >= 2 &&
		((data[0] == 0xFF && data[1] == 0xFE) || (data[0] == 0xFE && data[1] == 0xFF))
}

func decodeUTF16(data []byte) ([]byte, error) {
	if len(data)%2 != 0 {
		return nil, &EncodingError{Detail: "UTF-16 input has odd byte length"}
	}
	dec := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()
	out, _, err := transform.Bytes(dec, data)
	if err != nil {
		return nil, &EncodingError{Detail: err.Error()}
	}
	return out, nil
}
