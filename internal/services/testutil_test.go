package services

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/k12fleet/assetdesk/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.AuditSession{},
		&models.AuditPerson{},
		&models.DeviceRecord{},
		&models.Note{},
		&models.Notification{},
		&models.NotificationProvider{},
	))

	return db
}

func seedSession(t *testing.T, db *gorm.DB, people ...models.AuditPerson) *models.AuditSession {
	t.Helper()
	session := &models.AuditSession{Creator: "tester"}
	require.NoError(t, db.Create(session).Error)

	for i := range people {
		people[i].SessionID = session.ID
	}
	if len(people) > 0 {
		require.NoError(t, db.Create(&people).Error)
		require.NoError(t, db.Model(session).Update("person_count", len(people)).Error)
	}

	return session
}
