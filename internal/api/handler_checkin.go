package api

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"visitor-registry-backend/internal/checkin"
	"visitor-registry-backend/internal/store"
)

type checkInRequest struct {
	FullName     string `json:"fullName" binding:"required"`
	YearOfBirth  int    `json:"yearOfBirth" binding:"required"`
	Sex          string `json:"sex"`
	Municipality string `json:"municipality"`
	Email        string `json:"email" binding:"omitempty,email"`
	PhoneNumber  string `json:"phoneNumber" binding:"required"`
	Purpose      string `json:"purpose"`
}

// PostCheckIn handles the public kiosk check-in:
// POST /api/visitors/check-in.
func (h *Handler) PostCheckIn(c *gin.Context) {
	var req checkInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.checkin.CheckIn(c.Request.Context(), checkin.Request{
		FullName:     req.FullName,
		YearOfBirth:  req.YearOfBirth,
		Sex:          req.Sex,
		Municipality: req.Municipality,
		Email:        req.Email,
		PhoneNumber:  req.PhoneNumber,
		Purpose:      req.Purpose,
	})
	if err != nil {
		log.Printf("check-in failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "check-in failed"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"visitor":   result.Visitor,
		"visit":     result.Visit,
		"returning": result.Returning,
	})
}

type checkOutRequest struct {
	VisitID int64 `json:"visitId" binding:"required"`
}

// PostCheckOut handles the public kiosk check-out:
// POST /api/visitors/check-out.
func (h *Handler) PostCheckOut(c *gin.Context) {
	var req checkOutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	visit, err := h.checkin.CheckOut(c.Request.Context(), req.VisitID)
	if err != nil {
		respondCheckOutError(c, err)
		return
	}
	c.JSON(http.StatusOK, visit)
}

// PostAdminCheckOutVisitor force-closes a single visit:
// POST /api/admin/check-out-visitor.
func (h *Handler) PostAdminCheckOutVisitor(c *gin.Context) {
	var req checkOutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	visit, err := h.checkin.CheckOut(c.Request.Context(), req.VisitID)
	if err != nil {
		respondCheckOutError(c, err)
		return
	}
	c.JSON(http.StatusOK, visit)
}

func respondCheckOutError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, store.ErrVisitNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "visit not found"})
	case errors.Is(err, store.ErrVisitNotActive):
		c.JSON(http.StatusBadRequest, gin.H{"error": "visit is not active"})
	default:
		log.Printf("check-out failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "check-out failed"})
	}
}

// PostAutoCheckout triggers the bulk checkout manually and logs it with the
// acting admin id: POST /api/admin/auto-checkout.
func (h *Handler) PostAutoCheckout(c *gin.Context) {
	var adminID *int64
	if id, ok := adminIDFromContext(c); ok {
		adminID = &id
	}

	count, err := h.scheduler.RunManual(c.Request.Context(), adminID)
	if err != nil {
		log.Printf("manual auto-checkout failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "auto-checkout failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"checkedOut": count})
}

type setPartnerRequest struct {
	VisitID   int64  `json:"visitId" binding:"required"`
	PartnerID *int64 `json:"partnerId"`
}

// PostSetVisitPartner links or unlinks two visits as companions:
// POST /api/admin/set-visit-partner.
func (h *Handler) PostSetVisitPartner(c *gin.Context) {
	var req setPartnerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.PartnerID != nil && *req.PartnerID == req.VisitID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "a visit cannot partner with itself"})
		return
	}

	if err := h.store.SetVisitPartner(c.Request.Context(), req.VisitID, req.PartnerID); err != nil {
		if errors.Is(err, store.ErrVisitNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "visit not found"})
			return
		}
		log.Printf("set visit partner failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to set visit partner"})
		return
	}
	c.Status(http.StatusNoContent)
}

// GetVisits lists visits for the dashboard: GET /api/admin/visits.
func (h *Handler) GetVisits(c *gin.Context) {
	activeOnly := c.Query("active") == "true"
	limit, offset := paginationParams(c)

	visits, err := h.store.ListVisits(c.Request.Context(), activeOnly, limit, offset)
	if err != nil {
		log.Printf("list visits failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list visits"})
		return
	}
	c.JSON(http.StatusOK, visits)
}
