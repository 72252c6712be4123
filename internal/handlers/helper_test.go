package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/example/storeadmin/internal/config"
	"github.com/example/storeadmin/internal/database"
	"github.com/example/storeadmin/internal/routes"
	"github.com/example/storeadmin/internal/utils"
)

const testSecret = "test-secret"

// fakeStore is an in-memory ObjectStore. Uploading a payload whose body is
// exactly "bad" fails, which lets tests trigger partial upload failures.
type fakeStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	failAll bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: map[string][]byte{}}
}

func (s *fakeStore) Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failAll || string(data) == "bad" {
		return errors.New("provider unavailable")
	}

	s.objects[key] = data
	return nil
}

func (s *fakeStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

func (s *fakeStore) PublicURL(key string) string {
	return "https://test-bucket.s3.amazonaws.com/" + key
}

func (s *fakeStore) object(key string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.objects[key]
	return data, ok
}

func (s *fakeStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func newTestApp(t *testing.T) (*fiber.App, *gorm.DB, *fakeStore, string) {
	t.Helper()

	cfg := &config.Config{
		JWTSecret:     testSecret,
		TokenExpires:  time.Hour,
		AdminEmail:    "admin@example.com",
		AdminPassword: "secret",
	}

	db := newTestDB(t)
	store := newFakeStore()

	app := fiber.New()
	app.Use(recover.New())
	routes.Register(app, db, store, cfg)

	token, err := utils.GenerateToken(testSecret, cfg.AdminEmail, time.Hour)
	require.NoError(t, err)

	return app, db, store, "Bearer " + token
}

func doJSON(t *testing.T, app *fiber.App, method, path, auth string, body interface{}) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()

	defer resp.Body.Close()
	var payload map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	return payload
}

// multipartBody builds a multipart form from field values and file parts.
func multipartBody(t *testing.T, fields map[string]string, files map[string]fileSpec) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for key, value := range fields {
		require.NoError(t, w.WriteField(key, value))
	}
	for field, spec := range files {
		part, err := w.CreateFormFile(field, spec.name)
		require.NoError(t, err)
		_, err = part.Write([]byte(spec.content))
		require.NoError(t, err)
	}

	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

type fileSpec struct {
	name    string
	content string
}

func doMultipart(t *testing.T, app *fiber.App, method, path, auth string, fields map[string]string, files map[string]fileSpec) *http.Response {
	t.Helper()

	body, contentType := multipartBody(t, fields, files)
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", contentType)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}
