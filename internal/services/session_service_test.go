package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/k12fleet/assetdesk/internal/models"
	"github.com/k12fleet/assetdesk/internal/roster"
)

func TestSessionService_SeedPersons(t *testing.T) {
	db := setupTestDB(t)
	service := NewSessionService(db)

	t.Run("seeds all records and updates count", func(t *testing.T) {
		session, err := service.CreateSession("it-admin")
		require.NoError(t, err)
		assert.NotEmpty(t, session.UUID)

		count, err := service.SeedPersons(session.UUID, []roster.PersonRecord{
			{Name: "Jo Lee", Grade: "9", Advisor: "Smith"},
			{Name: "A Kim", Grade: "10", Advisor: "Jones"},
		})
		require.NoError(t, err)
		assert.Equal(t, 2, count)

		reloaded, err := service.GetSession(session.UUID)
		require.NoError(t, err)
		assert.Equal(t, 2, reloaded.PersonCount)
		assert.Equal(t, models.SessionStatusActive, reloaded.Status)
	})

	t.Run("unknown session", func(t *testing.T) {
		_, err := service.SeedPersons("no-such-token", []roster.PersonRecord{
			{Name: "Jo Lee", Grade: "9", Advisor: "Smith"},
		})
		assert.ErrorIs(t, err, ErrSessionNotFound)
	})

	t.Run("all or nothing on identity collision", func(t *testing.T) {
		session, err := service.CreateSession("it-admin")
		require.NoError(t, err)

		_, err = service.SeedPersons(session.UUID, []roster.PersonRecord{
			{Name: "Jo Lee", Grade: "9", Advisor: "Smith"},
			{Name: "Jo Lee", Grade: "9", Advisor: "Smith"},
		})
		require.Error(t, err)

		var count int64
		db.Model(&models.AuditPerson{}).Where("session_id = ?", session.ID).Count(&count)
		assert.Zero(t, count, "failed seed must not leave partial rows")
	})

	t.Run("same roster into two sessions stays independent", func(t *testing.T) {
		records := []roster.PersonRecord{
			{Name: "Pat Cruz", Grade: "11", Advisor: "Diaz"},
			{Name: "Lee Park", Grade: "12", Advisor: "Cho"},
		}

		first, err := service.CreateSession("it-admin")
		require.NoError(t, err)
		second, err := service.CreateSession("it-admin")
		require.NoError(t, err)

		n1, err := service.SeedPersons(first.UUID, records)
		require.NoError(t, err)
		n2, err := service.SeedPersons(second.UUID, records)
		require.NoError(t, err)
		assert.Equal(t, n1, n2)

		active1, err := service.ListActivePersons(first.UUID, "")
		require.NoError(t, err)
		active2, err := service.ListActivePersons(second.UUID, "")
		require.NoError(t, err)
		assert.Len(t, active1, 2)
		assert.Len(t, active2, 2)
		for i := range active1 {
			assert.NotEqual(t, active1[i].ID, active2[i].ID)
		}
	})
}

func TestSessionService_Views(t *testing.T) {
	db := setupTestDB(t)
	service := NewSessionService(db)

	now := time.Now()
	session := seedSession(t, db,
		models.AuditPerson{Name: "Jo Lee", Grade: "9", Advisor: "Smith"},
		models.AuditPerson{Name: "A Kim", Grade: "10", Advisor: "Jones", Audited: true, AuditedAt: &now, Auditor: "tech1"},
		models.AuditPerson{Name: "Sam Reyes", Grade: "9", Advisor: "Smith"},
	)

	t.Run("active view excludes audited", func(t *testing.T) {
		people, err := service.ListActivePersons(session.UUID, "")
		require.NoError(t, err)
		require.Len(t, people, 2)
		for _, p := range people {
			assert.False(t, p.Audited)
		}
	})

	t.Run("completed view is the complement", func(t *testing.T) {
		people, err := service.ListCompletedPersons(session.UUID)
		require.NoError(t, err)
		require.Len(t, people, 1)
		assert.Equal(t, "A Kim", people[0].Name)
	})

	t.Run("search matches any identity field, case-insensitive", func(t *testing.T) {
		people, err := service.ListActivePersons(session.UUID, "smith")
		require.NoError(t, err)
		assert.Len(t, people, 2)

		people, err = service.ListActivePersons(session.UUID, "reyes")
		require.NoError(t, err)
		require.Len(t, people, 1)
		assert.Equal(t, "Sam Reyes", people[0].Name)

		people, err = service.ListActivePersons(session.UUID, "zzz")
		require.NoError(t, err)
		assert.Empty(t, people)
	})

	t.Run("progress derives completion from person state", func(t *testing.T) {
		progress, err := service.SessionProgress(session.UUID)
		require.NoError(t, err)
		assert.Equal(t, int64(3), progress.Seeded)
		assert.Equal(t, int64(1), progress.Audited)
		assert.False(t, progress.Completed)
	})
}

func TestSessionService_GetPerson(t *testing.T) {
	db := setupTestDB(t)
	service := NewSessionService(db)

	session := seedSession(t, db, models.AuditPerson{Name: "Jo Lee", Grade: "9", Advisor: "Smith"})
	people, err := service.ListActivePersons(session.UUID, "")
	require.NoError(t, err)
	personID := people[0].ID

	require.NoError(t, db.Create(&models.DeviceRecord{PersonID: personID, AssetID: "a-1", Verified: true}).Error)
	require.NoError(t, db.Create(&models.Note{PersonID: personID, Body: "cracked lid", Author: "tech1"}).Error)

	t.Run("loads history", func(t *testing.T) {
		person, err := service.GetPerson(personID)
		require.NoError(t, err)
		assert.Len(t, person.DeviceRecords, 1)
		assert.Len(t, person.Notes, 1)
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := service.GetPerson(99999)
		assert.ErrorIs(t, err, ErrPersonNotFound)
	})
}
