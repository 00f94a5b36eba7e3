package api

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"visitor-registry-backend/internal/model"
	"visitor-registry-backend/internal/store"
)

type createReportRequest struct {
	VisitorID   int64  `json:"visitorId" binding:"required"`
	Type        string `json:"type" binding:"required"`
	Description string `json:"description" binding:"required"`
	Severity    string `json:"severity" binding:"required,oneof=low medium high"`
}

// PostReport attaches an incident report to a visitor:
// POST /api/admin/reports.
func (h *Handler) PostReport(c *gin.Context) {
	var req createReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	report := model.VisitorReport{
		VisitorID:   req.VisitorID,
		Type:        req.Type,
		Description: req.Description,
		Severity:    req.Severity,
		Status:      model.ReportStatusOpen,
	}
	if err := h.store.CreateReport(c.Request.Context(), &report); err != nil {
		log.Printf("create report failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create report"})
		return
	}
	c.JSON(http.StatusCreated, report)
}

// GetReports lists reports, optionally for one visitor (?visitorId=):
// GET /api/admin/reports.
func (h *Handler) GetReports(c *gin.Context) {
	var visitorID *int64
	if raw := c.Query("visitorId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid visitorId"})
			return
		}
		visitorID = &id
	}

	reports, err := h.store.ListReports(c.Request.Context(), visitorID)
	if err != nil {
		log.Printf("list reports failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list reports"})
		return
	}
	c.JSON(http.StatusOK, reports)
}

type updateReportRequest struct {
	Status          *string `json:"status" binding:"omitempty,oneof=open under_review resolved"`
	ResolutionNotes *string `json:"resolutionNotes"`
}

// PatchReport updates a report's status or resolution notes:
// PATCH /api/admin/reports/:id.
func (h *Handler) PatchReport(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	var req updateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	report, err := h.store.UpdateReport(c.Request.Context(), id, store.ReportPatch{
		Status:          req.Status,
		ResolutionNotes: req.ResolutionNotes,
	})
	if err != nil {
		if errors.Is(err, store.ErrReportNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "report not found"})
			return
		}
		log.Printf("update report failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update report"})
		return
	}
	c.JSON(http.StatusOK, report)
}

// GetSystemLogs lists audit trail entries: GET /api/admin/logs.
func (h *Handler) GetSystemLogs(c *gin.Context) {
	limit, offset := paginationParams(c)
	logs, err := h.store.ListSystemLogs(c.Request.Context(), limit, offset)
	if err != nil {
		log.Printf("list system logs failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list system logs"})
		return
	}
	c.JSON(http.StatusOK, logs)
}
