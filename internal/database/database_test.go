package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOpen(t *testing.T) {
	// Test with memory DB
	db, err := Open("file::memory:?cache=shared")
	assert.NoError(t, err)
	assert.NotNil(t, db)

	// Test with file DB
	tempDir := t.TempDir()
	dbPath := filepath.Join(tempDir, "assetdesk.db")
	db, err = Open(dbPath)
	assert.NoError(t, err)
	assert.NotNil(t, db)
}
