package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"visitor-registry-backend/internal/mw"
)

// RouterConfig tunes the public-surface middleware.
type RouterConfig struct {
	RateLimitPerSec float64
	RateLimitBurst  int
	CacheTTL        time.Duration
}

// NewRouter creates and configures a new Gin router around the handler.
func NewRouter(h *Handler, cfg RouterConfig) *gin.Engine {
	r := gin.Default()

	rateLimiter := mw.RateLimiter(rate.Limit(cfg.RateLimitPerSec), cfg.RateLimitBurst)

	cacheStore := cache.New(cfg.CacheTTL, 2*cfg.CacheTTL)
	caching := mw.Cache(cacheStore, cfg.CacheTTL)
	h.settingsCache = cacheStore

	// Public kiosk surface, rate limited per IP.
	public := r.Group("/api")
	public.Use(rateLimiter)
	{
		public.POST("/visitors/check-in", h.PostCheckIn)
		public.POST("/visitors/check-out", h.PostCheckOut)
		public.GET("/settings", caching, h.GetSettings)
		public.GET("/vapid_public_key", h.GetVAPIDPublicKey)
		public.POST("/admin/login", h.PostLogin)
	}

	// Admin dashboard surface, gated by session cookie.
	admin := r.Group("/api/admin")
	admin.Use(mw.RequireAdmin(h.sessions))
	{
		admin.POST("/logout", h.PostLogout)
		admin.GET("/me", h.GetMe)

		admin.GET("/visitors", h.GetVisitors)
		admin.GET("/visitors/:id", h.GetVisitor)
		admin.PATCH("/visitors/:id", h.PatchVisitor)
		admin.POST("/verify-visitor", h.PostVerifyVisitor)

		admin.GET("/visits", h.GetVisits)
		admin.POST("/check-out-visitor", h.PostAdminCheckOutVisitor)
		admin.POST("/auto-checkout", h.PostAutoCheckout)
		admin.POST("/set-visit-partner", h.PostSetVisitPartner)

		admin.DELETE("/delete-visitor/:id", h.DeleteVisitor)
		admin.POST("/restore-visitor/:id", h.PostRestoreVisitor)
		admin.DELETE("/permanently-delete/:id", h.DeleteVisitorPermanently)
		admin.DELETE("/empty-bin", h.DeleteEmptyBin)

		admin.PUT("/settings", h.PutSettings)

		admin.POST("/reports", h.PostReport)
		admin.GET("/reports", h.GetReports)
		admin.PATCH("/reports/:id", h.PatchReport)
		admin.GET("/logs", h.GetSystemLogs)

		admin.GET("/subscriptions", h.GetSubscription)
		admin.PUT("/subscriptions", h.PutSubscription)
		admin.DELETE("/subscriptions", h.DeleteSubscription)

		admin.GET("/ws", h.GetWS)
	}

	return r
}
