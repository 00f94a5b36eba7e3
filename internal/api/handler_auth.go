package api

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"visitor-registry-backend/internal/auth"
	"visitor-registry-backend/internal/model"
)

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// PostLogin authenticates an admin and starts a session:
// POST /api/admin/login.
func (h *Handler) PostLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	admin, err := auth.Authenticate(c.Request.Context(), h.store.DB(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid username or password"})
			return
		}
		log.Printf("login failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}

	if err := h.sessions.Create(c.Request.Context(), c.Writer, admin.ID); err != nil {
		log.Printf("session creation failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}
	c.JSON(http.StatusOK, admin)
}

// PostLogout destroys the current session: POST /api/admin/logout.
func (h *Handler) PostLogout(c *gin.Context) {
	if err := h.sessions.Destroy(c.Writer, c.Request); err != nil {
		log.Printf("logout failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "logout failed"})
		return
	}
	c.Status(http.StatusNoContent)
}

// GetMe returns the authenticated admin: GET /api/admin/me.
func (h *Handler) GetMe(c *gin.Context) {
	adminID, ok := adminIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	var admin model.Admin
	err := h.store.DB().WithContext(c.Request.Context()).First(&admin, adminID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	if err != nil {
		log.Printf("fetch admin failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch admin"})
		return
	}
	c.JSON(http.StatusOK, admin)
}
