package api

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"visitor-registry-backend/internal/mw"
	"visitor-registry-backend/internal/store"
)

func paginationParams(c *gin.Context) (limit, offset int) {
	limit, _ = strconv.Atoi(c.Query("limit"))
	offset, _ = strconv.Atoi(c.Query("offset"))
	return limit, offset
}

func adminIDFromContext(c *gin.Context) (int64, bool) {
	return mw.AdminID(c)
}

func idParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

// GetVisitors lists visitors for the dashboard, or the trash bin with
// ?trash=true: GET /api/admin/visitors.
func (h *Handler) GetVisitors(c *gin.Context) {
	limit, offset := paginationParams(c)
	opts := store.ListVisitorsOptions{
		Trash:  c.Query("trash") == "true",
		Query:  c.Query("q"),
		Limit:  limit,
		Offset: offset,
	}

	visitors, err := h.store.ListVisitors(c.Request.Context(), opts)
	if err != nil {
		log.Printf("list visitors failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list visitors"})
		return
	}
	c.JSON(http.StatusOK, visitors)
}

// GetVisitor returns one visitor with its visit history:
// GET /api/admin/visitors/:id.
func (h *Handler) GetVisitor(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	visitor, err := h.store.GetVisitor(c.Request.Context(), id, true)
	if err != nil {
		if errors.Is(err, store.ErrVisitorNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "visitor not found"})
			return
		}
		log.Printf("get visitor failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get visitor"})
		return
	}
	c.JSON(http.StatusOK, visitor)
}

type updateVisitorRequest struct {
	FullName     *string `json:"fullName"`
	YearOfBirth  *int    `json:"yearOfBirth"`
	Sex          *string `json:"sex"`
	Municipality *string `json:"municipality"`
	Email        *string `json:"email" binding:"omitempty,email"`
	PhoneNumber  *string `json:"phoneNumber"`
}

// PatchVisitor applies a partial update to a visitor record:
// PATCH /api/admin/visitors/:id.
func (h *Handler) PatchVisitor(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	var req updateVisitorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	visitor, err := h.store.UpdateVisitor(c.Request.Context(), id, store.VisitorPatch{
		FullName:     req.FullName,
		YearOfBirth:  req.YearOfBirth,
		Sex:          req.Sex,
		Municipality: req.Municipality,
		Email:        req.Email,
		PhoneNumber:  req.PhoneNumber,
	})
	if err != nil {
		if errors.Is(err, store.ErrVisitorNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "visitor not found"})
			return
		}
		log.Printf("update visitor failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update visitor"})
		return
	}
	c.JSON(http.StatusOK, visitor)
}

type verifyVisitorRequest struct {
	VisitorID int64 `json:"visitorId" binding:"required"`
	Verified  *bool `json:"verified" binding:"required"`
}

// PostVerifyVisitor sets the admin-controlled trust marker:
// POST /api/admin/verify-visitor.
func (h *Handler) PostVerifyVisitor(c *gin.Context) {
	var req verifyVisitorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	visitor, err := h.store.SetVisitorVerified(c.Request.Context(), req.VisitorID, *req.Verified)
	if err != nil {
		if errors.Is(err, store.ErrVisitorNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "visitor not found"})
			return
		}
		log.Printf("verify visitor failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to verify visitor"})
		return
	}
	c.JSON(http.StatusOK, visitor)
}
