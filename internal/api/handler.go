package api

import (
	"github.com/SherClockHolmes/webpush-go"
	"github.com/patrickmn/go-cache"

	"visitor-registry-backend/internal/auth"
	"visitor-registry-backend/internal/checkin"
	"visitor-registry-backend/internal/schedule"
	"visitor-registry-backend/internal/store"
	"visitor-registry-backend/internal/ws"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store     store.Store
	checkin   *checkin.Service
	scheduler *schedule.Scheduler
	sessions  *auth.SessionStore
	hub       *ws.Hub
	webpush   *webpush.Options

	// settingsCache is the response cache in front of GET /api/settings,
	// assigned by NewRouter so settings updates can invalidate it.
	settingsCache *cache.Cache
}

// NewHandler creates a new API handler.
func NewHandler(
	s store.Store,
	checkinSvc *checkin.Service,
	scheduler *schedule.Scheduler,
	sessions *auth.SessionStore,
	hub *ws.Hub,
	webpushOptions *webpush.Options,
) *Handler {
	return &Handler{
		store:     s,
		checkin:   checkinSvc,
		scheduler: scheduler,
		sessions:  sessions,
		hub:       hub,
		webpush:   webpushOptions,
	}
}
