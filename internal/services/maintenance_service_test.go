package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/k12fleet/assetdesk/internal/models"
)

func TestMaintenanceService_PurgeSessions(t *testing.T) {
	db := setupTestDB(t)
	service := NewMaintenanceService(db)

	t.Run("rejects non-positive retention", func(t *testing.T) {
		_, err := service.PurgeSessions(0)
		assert.Error(t, err)
	})

	t.Run("purges old sessions with all children", func(t *testing.T) {
		old := seedSession(t, db, models.AuditPerson{Name: "Jo Lee", Grade: "9", Advisor: "Smith"})
		recent := seedSession(t, db, models.AuditPerson{Name: "A Kim", Grade: "10", Advisor: "Jones"})

		var person models.AuditPerson
		require.NoError(t, db.Where("session_id = ?", old.ID).First(&person).Error)
		require.NoError(t, db.Create(&models.DeviceRecord{PersonID: person.ID, AssetID: "D1", Verified: true}).Error)
		require.NoError(t, db.Create(&models.Note{PersonID: person.ID, Body: "old note", Author: "tech1"}).Error)

		// backdate the old session past the cutoff
		backdated := time.Now().AddDate(0, 0, -120)
		require.NoError(t, db.Model(&models.AuditSession{}).Where("id = ?", old.ID).Update("created_at", backdated).Error)

		purged, err := service.PurgeSessions(90)
		require.NoError(t, err)
		assert.Equal(t, int64(1), purged)

		var sessions, people, records, notes int64
		db.Model(&models.AuditSession{}).Count(&sessions)
		db.Model(&models.AuditPerson{}).Count(&people)
		db.Model(&models.DeviceRecord{}).Count(&records)
		db.Model(&models.Note{}).Count(&notes)
		assert.Equal(t, int64(1), sessions)
		assert.Equal(t, int64(1), people)
		assert.Zero(t, records)
		assert.Zero(t, notes)

		var remaining models.AuditSession
		require.NoError(t, db.First(&remaining).Error)
		assert.Equal(t, recent.ID, remaining.ID)
	})

	t.Run("nothing to purge", func(t *testing.T) {
		purged, err := service.PurgeSessions(90)
		require.NoError(t, err)
		assert.Zero(t, purged)
	})
}
