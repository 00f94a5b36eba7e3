package checkin

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"visitor-registry-backend/internal/model"
	"visitor-registry-backend/internal/store"
)

// recordingBroadcaster captures broadcast calls for assertions.
type recordingBroadcaster struct {
	events []broadcastEvent
}

type broadcastEvent struct {
	visitorID int64
	purpose   string
	returning bool
}

func (r *recordingBroadcaster) BroadcastCheckIn(v *model.Visitor, purpose string, returning bool) {
	r.events = append(r.events, broadcastEvent{visitorID: v.ID, purpose: purpose, returning: returning})
}

// recordingDispatcher captures push dispatches.
type recordingDispatcher struct {
	visitorIDs []int64
}

func (r *recordingDispatcher) Dispatch(visitorID int64) {
	r.visitorIDs = append(r.visitorIDs, visitorID)
}

func newTestService(t *testing.T) (*Service, store.Store, *recordingBroadcaster, *recordingDispatcher) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.Visitor{}, &model.Visit{}, &model.Settings{}))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	s := store.NewGormStore(db)
	b := &recordingBroadcaster{}
	d := &recordingDispatcher{}
	return NewService(s, "243", b, d), s, b, d
}

func TestCheckInCreatesNewVisitor(t *testing.T) {
	svc, s, broadcaster, dispatcher := newTestService(t)
	ctx := context.Background()

	result, err := svc.CheckIn(ctx, Request{
		FullName:    "Jean Mukendi",
		YearOfBirth: 1988,
		PhoneNumber: "0812345678",
		Purpose:     "Meeting",
	})
	require.NoError(t, err)

	assert.False(t, result.Returning)
	assert.False(t, result.Visitor.Verified)
	assert.False(t, result.Visitor.Deleted)
	assert.Equal(t, 1, result.Visitor.VisitCount)
	assert.True(t, result.Visit.Active)
	assert.Equal(t, "Meeting", result.Visit.Purpose)

	stored, err := s.GetVisitor(ctx, result.Visitor.ID, false)
	require.NoError(t, err)
	assert.Equal(t, "Jean Mukendi", stored.FullName)

	require.Len(t, broadcaster.events, 1)
	assert.Equal(t, result.Visitor.ID, broadcaster.events[0].visitorID)
	assert.Equal(t, "Meeting", broadcaster.events[0].purpose)
	assert.False(t, broadcaster.events[0].returning)
	assert.Equal(t, []int64{result.Visitor.ID}, dispatcher.visitorIDs)
}

func TestCheckInMatchesByEmailEvenWithDifferentPhone(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	ctx := context.Background()

	first, err := svc.CheckIn(ctx, Request{
		FullName:    "Marie Kabila",
		YearOfBirth: 1979,
		Email:       "marie@example.cd",
		PhoneNumber: "0811111111",
	})
	require.NoError(t, err)

	second, err := svc.CheckIn(ctx, Request{
		FullName:    "Marie Kabila",
		YearOfBirth: 1979,
		Email:       "marie@example.cd",
		PhoneNumber: "0899999999", // different phone, same email
	})
	require.NoError(t, err)

	assert.True(t, second.Returning)
	assert.Equal(t, first.Visitor.ID, second.Visitor.ID)
	// The profile refresh stores the newly submitted phone.
	assert.Equal(t, "0899999999", second.Visitor.PhoneNumber)
	assert.Equal(t, 2, second.Visitor.VisitCount)
	assert.NotEqual(t, first.Visit.ID, second.Visit.ID)
}

func TestCheckInMatchesByNormalizedPhone(t *testing.T) {
	svc, _, broadcaster, _ := newTestService(t)
	ctx := context.Background()

	first, err := svc.CheckIn(ctx, Request{
		FullName:    "Jean Mukendi",
		YearOfBirth: 1988,
		PhoneNumber: "0812345678",
		Purpose:     "Meeting",
	})
	require.NoError(t, err)

	// Same underlying number, international format.
	second, err := svc.CheckIn(ctx, Request{
		FullName:    "Jean Mukendi",
		YearOfBirth: 1988,
		PhoneNumber: "+243812345678",
		Purpose:     "Follow-up",
	})
	require.NoError(t, err)

	assert.True(t, second.Returning)
	assert.Equal(t, first.Visitor.ID, second.Visitor.ID)
	assert.Equal(t, 2, second.Visitor.VisitCount)

	require.Len(t, broadcaster.events, 2)
	assert.True(t, broadcaster.events[1].returning)
}

func TestCheckInCountryCodeFollowsSettings(t *testing.T) {
	svc, s, _, _ := newTestService(t)
	ctx := context.Background()

	first, err := svc.CheckIn(ctx, Request{
		FullName:    "Nadia Janssen",
		YearOfBirth: 1984,
		PhoneNumber: "0161234567",
	})
	require.NoError(t, err)

	// The admin moves the deployment to country code 31.
	_, err = s.UpdateSettings(ctx, &model.Settings{AppName: "Front Desk", CountryCode: "31"})
	require.NoError(t, err)

	// Under code 31 this candidate normalizes to eight digits and must be
	// rejected as too short instead of suffix-matching the stored number.
	second, err := svc.CheckIn(ctx, Request{
		FullName:    "Pieter de Vries",
		YearOfBirth: 1970,
		PhoneNumber: "+31 61234567",
	})
	require.NoError(t, err)

	assert.False(t, second.Returning)
	assert.NotEqual(t, first.Visitor.ID, second.Visitor.ID)

	// The first visitor's record is untouched by the second check-in.
	stored, err := s.GetVisitor(ctx, first.Visitor.ID, false)
	require.NoError(t, err)
	assert.Equal(t, "Nadia Janssen", stored.FullName)
	assert.Equal(t, "0161234567", stored.PhoneNumber)
}

func TestCheckInRefreshesChangedProfileFields(t *testing.T) {
	svc, s, _, _ := newTestService(t)
	ctx := context.Background()

	first, err := svc.CheckIn(ctx, Request{
		FullName:    "J. Mukendi",
		YearOfBirth: 1988,
		PhoneNumber: "0812345678",
	})
	require.NoError(t, err)

	_, err = svc.CheckIn(ctx, Request{
		FullName:    "Jean Mukendi",
		YearOfBirth: 1989,
		Email:       "jean@example.cd",
		PhoneNumber: "0812345678",
	})
	require.NoError(t, err)

	stored, err := s.GetVisitor(ctx, first.Visitor.ID, false)
	require.NoError(t, err)
	assert.Equal(t, "Jean Mukendi", stored.FullName)
	assert.Equal(t, 1989, stored.YearOfBirth)
	assert.Equal(t, "jean@example.cd", stored.Email)
}

func TestCheckInRestoresTrashedVisitor(t *testing.T) {
	svc, s, _, _ := newTestService(t)
	ctx := context.Background()

	first, err := svc.CheckIn(ctx, Request{
		FullName:    "Paul Ilunga",
		YearOfBirth: 1995,
		PhoneNumber: "0823456789",
	})
	require.NoError(t, err)

	_, err = svc.CheckOut(ctx, first.Visit.ID)
	require.NoError(t, err)
	deleted, err := s.SoftDeleteVisitor(ctx, first.Visitor.ID)
	require.NoError(t, err)
	require.True(t, deleted)

	second, err := svc.CheckIn(ctx, Request{
		FullName:    "Paul Ilunga",
		YearOfBirth: 1995,
		PhoneNumber: "0823456789",
	})
	require.NoError(t, err)

	assert.True(t, second.Returning)
	assert.Equal(t, first.Visitor.ID, second.Visitor.ID)
	assert.False(t, second.Visitor.Deleted)

	stored, err := s.GetVisitor(ctx, first.Visitor.ID, false)
	require.NoError(t, err)
	assert.False(t, stored.Deleted)
}

func TestCheckOutDelegatesStateErrors(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	ctx := context.Background()

	result, err := svc.CheckIn(ctx, Request{
		FullName:    "Visitor",
		YearOfBirth: 1990,
		PhoneNumber: "0834567890",
	})
	require.NoError(t, err)

	_, err = svc.CheckOut(ctx, result.Visit.ID)
	require.NoError(t, err)

	_, err = svc.CheckOut(ctx, result.Visit.ID)
	assert.ErrorIs(t, err, store.ErrVisitNotActive)

	_, err = svc.CheckOut(ctx, 99999)
	assert.ErrorIs(t, err, store.ErrVisitNotFound)
}
