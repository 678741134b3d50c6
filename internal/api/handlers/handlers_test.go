package handlers_test

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/k12fleet/assetdesk/internal/api/handlers"
	"github.com/k12fleet/assetdesk/internal/api/middleware"
	"github.com/k12fleet/assetdesk/internal/directory"
	"github.com/k12fleet/assetdesk/internal/models"
	"github.com/k12fleet/assetdesk/internal/roster"
	"github.com/k12fleet/assetdesk/internal/services"
)

// fakeDirectory satisfies services.DirectoryClient for handler tests.
type fakeDirectory struct {
	identities map[string]string
	devices    map[string][]directory.DeviceDescriptor
	err        error
}

func (f *fakeDirectory) ResolveIdentity(_ context.Context, name string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	id, ok := f.identities[name]
	if !ok {
		return "", &directory.NotFoundError{Query: name}
	}
	return id, nil
}

func (f *fakeDirectory) FetchAssignedDevices(_ context.Context, externalID string) ([]directory.DeviceDescriptor, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.devices[externalID], nil
}

func setupRouter(t *testing.T, dir *fakeDirectory) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

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

	if dir == nil {
		dir = &fakeDirectory{}
	}

	r := gin.New()
	api := r.Group("/api/v1")
	acting := api.Group("/")
	acting.Use(middleware.Identity(""))

	importHandler := handlers.NewImportHandler(services.NewImportService(db, roster.NewImporter(1000), nil), 5*1024*1024)
	importHandler.RegisterRoutes(acting)

	sessionHandler := handlers.NewSessionHandler(services.NewSessionService(db))
	sessionHandler.RegisterRoutes(acting)

	verificationHandler := handlers.NewVerificationHandler(services.NewVerificationService(db, dir, nil))
	verificationHandler.RegisterRoutes(acting)

	notesHandler := handlers.NewNotesHandler(services.NewNotesService(db))
	notesHandler.RegisterRoutes(acting)

	maintenanceHandler := handlers.NewMaintenanceHandler(services.NewMaintenanceService(db))
	maintenanceHandler.RegisterRoutes(acting)

	return r, db
}

// uploadRequest builds a multipart roster upload with the auditor header set.
func uploadRequest(t *testing.T, path string, csvBody string, fields map[string]string) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", "roster.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte(csvBody))
	require.NoError(t, err)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set(middleware.ActorHeader, "it-admin")
	return req
}
