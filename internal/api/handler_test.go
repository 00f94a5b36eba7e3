package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"visitor-registry-backend/internal/auth"
	"visitor-registry-backend/internal/checkin"
	"visitor-registry-backend/internal/model"
	"visitor-registry-backend/internal/schedule"
	"visitor-registry-backend/internal/store"
)

func setupTestRouter(t *testing.T) (*gin.Engine, store.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&model.Visitor{},
		&model.Visit{},
		&model.Admin{},
		&model.AdminSession{},
		&model.Settings{},
		&model.VisitorReport{},
		&model.SystemLog{},
		&model.PushSubscription{},
	))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	appStore := store.NewGormStore(db)
	checkinSvc := checkin.NewService(appStore, "243", nil, nil)
	scheduler, err := schedule.New(checkinSvc, appStore, "UTC")
	require.NoError(t, err)
	sessions := auth.NewSessionStore(db, time.Hour)

	handler := NewHandler(appStore, checkinSvc, scheduler, sessions, nil, nil)
	router := NewRouter(handler, RouterConfig{
		RateLimitPerSec: 1000,
		RateLimitBurst:  1000,
		CacheTTL:        time.Minute,
	})
	return router, appStore
}

func postJSON(t *testing.T, router *gin.Engine, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	router.ServeHTTP(w, req)
	return w
}

func TestPostCheckInValidation(t *testing.T) {
	router, _ := setupTestRouter(t)

	// Missing required fields.
	w := postJSON(t, router, "/api/visitors/check-in", gin.H{"fullName": "No Phone"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Malformed email.
	w = postJSON(t, router, "/api/visitors/check-in", gin.H{
		"fullName":    "Jean Mukendi",
		"yearOfBirth": 1988,
		"phoneNumber": "0812345678",
		"email":       "not-an-email",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCheckInCheckOutFlow(t *testing.T) {
	router, _ := setupTestRouter(t)

	w := postJSON(t, router, "/api/visitors/check-in", gin.H{
		"fullName":    "Jean Mukendi",
		"yearOfBirth": 1988,
		"phoneNumber": "0812345678",
		"purpose":     "Meeting",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var created struct {
		Visitor model.Visitor `json:"visitor"`
		Visit   model.Visit   `json:"visit"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.True(t, created.Visit.Active)
	assert.Equal(t, "Meeting", created.Visit.Purpose)

	// Check out, then try again: the second attempt is a state conflict.
	w = postJSON(t, router, "/api/visitors/check-out", gin.H{"visitId": created.Visit.ID})
	assert.Equal(t, http.StatusOK, w.Code)

	w = postJSON(t, router, "/api/visitors/check-out", gin.H{"visitId": created.Visit.ID})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Unknown visit id.
	w = postJSON(t, router, "/api/visitors/check-out", gin.H{"visitId": 99999})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdminRoutesRequireSession(t *testing.T) {
	router, _ := setupTestRouter(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/admin/visitors", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLoginAndAdminFlow(t *testing.T) {
	router, appStore := setupTestRouter(t)

	require.NoError(t, auth.SeedInitialAdmin(
		context.Background(), appStore.DB(), "frontdesk", "s3cret"))

	// Wrong password.
	w := postJSON(t, router, "/api/admin/login", gin.H{"username": "frontdesk", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Successful login yields a session cookie.
	w = postJSON(t, router, "/api/admin/login", gin.H{"username": "frontdesk", "password": "s3cret"})
	require.Equal(t, http.StatusOK, w.Code)
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)

	// The cookie opens the admin surface.
	rec := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/admin/visitors", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	// Manual auto-checkout is logged with the acting admin id.
	w = postJSON(t, router, "/api/admin/auto-checkout", gin.H{}, cookies...)
	require.Equal(t, http.StatusOK, w.Code)

	logs, err := appStore.ListSystemLogs(context.Background(), 0, 0)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, model.ActionManualCheckout, logs[0].Action)
	require.NotNil(t, logs[0].AdminID)
}

func TestPutSettingsRefreshesCachedResponse(t *testing.T) {
	router, appStore := setupTestRouter(t)

	require.NoError(t, auth.SeedInitialAdmin(
		context.Background(), appStore.DB(), "frontdesk", "s3cret"))
	w := postJSON(t, router, "/api/admin/login", gin.H{"username": "frontdesk", "password": "s3cret"})
	require.Equal(t, http.StatusOK, w.Code)
	cookies := w.Result().Cookies()

	getSettings := func() string {
		rec := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/api/settings", nil)
		router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		return rec.Body.String()
	}

	// First read populates the response cache with the defaults.
	assert.Contains(t, getSettings(), "Visitor Registry")

	payload, err := json.Marshal(gin.H{"appName": "Front Desk"})
	require.NoError(t, err)
	rec := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPut, "/api/admin/settings", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	// The next public read reflects the update, not the cached body.
	assert.Contains(t, getSettings(), "Front Desk")
}

func TestVerifyVisitor(t *testing.T) {
	router, appStore := setupTestRouter(t)

	require.NoError(t, auth.SeedInitialAdmin(
		context.Background(), appStore.DB(), "frontdesk", "s3cret"))
	w := postJSON(t, router, "/api/admin/login", gin.H{"username": "frontdesk", "password": "s3cret"})
	require.Equal(t, http.StatusOK, w.Code)
	cookies := w.Result().Cookies()

	visitor := model.Visitor{FullName: "Jean Mukendi", YearOfBirth: 1988, PhoneNumber: "0812345678"}
	require.NoError(t, appStore.CreateVisitor(context.Background(), &visitor))

	w = postJSON(t, router, "/api/admin/verify-visitor",
		gin.H{"visitorId": visitor.ID, "verified": true}, cookies...)
	require.Equal(t, http.StatusOK, w.Code)

	stored, err := appStore.GetVisitor(context.Background(), visitor.ID, false)
	require.NoError(t, err)
	assert.True(t, stored.Verified)

	w = postJSON(t, router, "/api/admin/verify-visitor",
		gin.H{"visitorId": 99999, "verified": true}, cookies...)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
