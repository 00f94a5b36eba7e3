package api

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"visitor-registry-backend/internal/model"
)

// GetSettings returns the process-wide settings. Public: the kiosk needs
// app name, theme and language before anyone is logged in.
// GET /api/settings.
func (h *Handler) GetSettings(c *gin.Context) {
	settings, err := h.store.GetSettings(c.Request.Context())
	if err != nil {
		log.Printf("get settings failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get settings"})
		return
	}
	c.JSON(http.StatusOK, settings)
}

type updateSettingsRequest struct {
	AppName         string `json:"appName" binding:"required"`
	AppNameShort    string `json:"appNameShort"`
	LogoData        string `json:"logoData"`
	CountryCode     string `json:"countryCode"`
	AdminTheme      string `json:"adminTheme"`
	KioskTheme      string `json:"kioskTheme"`
	DefaultLanguage string `json:"defaultLanguage"`
}

// PutSettings replaces the settings row, creating it on first write:
// PUT /api/admin/settings.
func (h *Handler) PutSettings(c *gin.Context) {
	var req updateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	settings, err := h.store.UpdateSettings(c.Request.Context(), &model.Settings{
		AppName:         req.AppName,
		AppNameShort:    req.AppNameShort,
		LogoData:        req.LogoData,
		CountryCode:     req.CountryCode,
		AdminTheme:      req.AdminTheme,
		KioskTheme:      req.KioskTheme,
		DefaultLanguage: req.DefaultLanguage,
	})
	if err != nil {
		log.Printf("update settings failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update settings"})
		return
	}

	// The kiosk must see the update immediately, not after the cache TTL.
	if h.settingsCache != nil {
		h.settingsCache.Flush()
	}
	c.JSON(http.StatusOK, settings)
}
