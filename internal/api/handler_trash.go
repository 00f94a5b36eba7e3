package api

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"visitor-registry-backend/internal/model"
	"visitor-registry-backend/internal/store"
)

// DeleteVisitor soft-deletes a visitor: DELETE /api/admin/delete-visitor/:id.
// The deletion is refused while the visitor has an active visit.
func (h *Handler) DeleteVisitor(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	deleted, err := h.store.SoftDeleteVisitor(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrVisitorNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "visitor not found"})
			return
		}
		log.Printf("delete visitor failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete visitor"})
		return
	}
	if !deleted {
		c.JSON(http.StatusBadRequest, gin.H{"error": "visitor has an active visit"})
		return
	}
	c.Status(http.StatusNoContent)
}

// PostRestoreVisitor clears the soft-delete flag:
// POST /api/admin/restore-visitor/:id.
func (h *Handler) PostRestoreVisitor(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	if err := h.store.RestoreVisitor(c.Request.Context(), id); err != nil {
		if errors.Is(err, store.ErrVisitorNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "visitor not found"})
			return
		}
		log.Printf("restore visitor failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to restore visitor"})
		return
	}
	c.Status(http.StatusNoContent)
}

// DeleteVisitorPermanently removes the visitor and all of its visits:
// DELETE /api/admin/permanently-delete/:id. Irreversible.
func (h *Handler) DeleteVisitorPermanently(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	if err := h.store.PermanentlyDeleteVisitor(c.Request.Context(), id); err != nil {
		if errors.Is(err, store.ErrVisitorNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "visitor not found"})
			return
		}
		log.Printf("permanent delete failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to permanently delete visitor"})
		return
	}
	c.Status(http.StatusNoContent)
}

// DeleteEmptyBin permanently deletes every trashed visitor:
// DELETE /api/admin/empty-bin.
func (h *Handler) DeleteEmptyBin(c *gin.Context) {
	count, err := h.store.EmptyBin(c.Request.Context())
	if err != nil {
		log.Printf("empty bin failed after %d deletions: %v", count, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to empty bin"})
		return
	}

	var adminID *int64
	if id, ok := adminIDFromContext(c); ok {
		adminID = &id
	}
	if err := h.store.AppendSystemLog(c.Request.Context(), &model.SystemLog{
		Action:        model.ActionEmptyBin,
		Details:       "emptied the visitor bin",
		AdminID:       adminID,
		AffectedCount: count,
	}); err != nil {
		log.Printf("failed to log empty-bin action: %v", err)
	}

	c.JSON(http.StatusOK, gin.H{"deleted": count})
}
