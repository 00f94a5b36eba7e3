package auth

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"visitor-registry-backend/internal/model"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.Admin{}, &model.AdminSession{}))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	return db
}

func requestWithCookie(w *httptest.ResponseRecorder) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range w.Result().Cookies() {
		req.AddCookie(c)
	}
	return req
}

func TestSessionLifecycle(t *testing.T) {
	db := newTestDB(t)
	sessions := NewSessionStore(db, time.Hour)

	w := httptest.NewRecorder()
	require.NoError(t, sessions.Create(context.Background(), w, 7))

	req := requestWithCookie(w)
	adminID, err := sessions.Validate(req)
	require.NoError(t, err)
	assert.Equal(t, int64(7), adminID)

	// Destroy invalidates the session server-side.
	w2 := httptest.NewRecorder()
	require.NoError(t, sessions.Destroy(w2, req))

	_, err = sessions.Validate(req)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestExpiredSessionRejected(t *testing.T) {
	db := newTestDB(t)
	sessions := NewSessionStore(db, -time.Minute) // already expired

	w := httptest.NewRecorder()
	require.NoError(t, sessions.Create(context.Background(), w, 7))

	_, err := sessions.Validate(requestWithCookie(w))
	assert.ErrorIs(t, err, ErrNoSession)

	// The expired row was removed on validation.
	var count int64
	db.Model(&model.AdminSession{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestMissingCookieRejected(t *testing.T) {
	db := newTestDB(t)
	sessions := NewSessionStore(db, time.Hour)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, err := sessions.Validate(req)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestCleanupRemovesExpiredSessions(t *testing.T) {
	db := newTestDB(t)

	require.NoError(t, db.Create(&model.AdminSession{
		ID: "expired", AdminID: 1, ExpiresAt: time.Now().Add(-time.Hour),
	}).Error)
	require.NoError(t, db.Create(&model.AdminSession{
		ID: "live", AdminID: 1, ExpiresAt: time.Now().Add(time.Hour),
	}).Error)

	sessions := NewSessionStore(db, time.Hour)
	require.NoError(t, sessions.Cleanup(context.Background()))

	var remaining []model.AdminSession
	require.NoError(t, db.Find(&remaining).Error)
	require.Len(t, remaining, 1)
	assert.Equal(t, "live", remaining[0].ID)
}

func TestAuthenticate(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	require.NoError(t, SeedInitialAdmin(ctx, db, "frontdesk", "s3cret"))

	admin, err := Authenticate(ctx, db, "frontdesk", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "frontdesk", admin.Username)

	_, err = Authenticate(ctx, db, "frontdesk", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = Authenticate(ctx, db, "nobody", "s3cret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestSeedInitialAdminIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	require.NoError(t, SeedInitialAdmin(ctx, db, "frontdesk", "s3cret"))
	require.NoError(t, SeedInitialAdmin(ctx, db, "other", "pw"))

	var count int64
	db.Model(&model.Admin{}).Count(&count)
	assert.Equal(t, int64(1), count)
}
