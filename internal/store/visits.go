package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"visitor-registry-backend/internal/model"
)

// CreateVisit opens a new active visit for a visitor and bumps the
// visitor's visit counter in the same transaction.
func (s *gormStore) CreateVisit(ctx context.Context, visitorID int64, purpose string) (*model.Visit, error) {
	visit := model.Visit{
		VisitorID:   visitorID,
		CheckInTime: time.Now().UTC(),
		Active:      true,
		Purpose:     purpose,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&visit).Error; err != nil {
			return fmt.Errorf("failed to create visit: %w", err)
		}
		res := tx.Model(&model.Visitor{}).Where("id = ?", visitorID).
			Update("visit_count", gorm.Expr("visit_count + 1"))
		if res.Error != nil {
			return fmt.Errorf("failed to increment visit count: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrVisitorNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &visit, nil
}

// GetVisit fetches a visit by id with its visitor preloaded.
func (s *gormStore) GetVisit(ctx context.Context, id int64) (*model.Visit, error) {
	var v model.Visit
	err := s.db.WithContext(ctx).Preload("Visitor").First(&v, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrVisitNotFound
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// ListVisits returns visits newest first, optionally only active ones.
func (s *gormStore) ListVisits(ctx context.Context, activeOnly bool, limit, offset int) ([]model.Visit, error) {
	q := s.db.WithContext(ctx).Preload("Visitor").Order("check_in_time DESC")
	if activeOnly {
		q = q.Where("active = ?", true)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	if offset > 0 {
		q = q.Offset(offset)
	}
	var visits []model.Visit
	if err := q.Find(&visits).Error; err != nil {
		return nil, err
	}
	return visits, nil
}

// CheckOutVisit transitions an active visit to completed. The transition is
// one-shot: checking out an already completed visit fails with
// ErrVisitNotActive and never overwrites the original checkout time.
func (s *gormStore) CheckOutVisit(ctx context.Context, id int64) (*model.Visit, error) {
	now := time.Now().UTC()
	var visit model.Visit
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&visit, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrVisitNotFound
			}
			return err
		}
		if !visit.Active {
			return ErrVisitNotActive
		}
		visit.Active = false
		visit.CheckOutTime = &now
		if err := tx.Model(&visit).Updates(map[string]any{
			"active":         false,
			"check_out_time": now,
		}).Error; err != nil {
			return fmt.Errorf("failed to check out visit %d: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &visit, nil
}

// CheckOutAllVisits closes every currently active visit with a shared
// checkout timestamp and returns the number of visits transitioned.
func (s *gormStore) CheckOutAllVisits(ctx context.Context) (int64, error) {
	now := time.Now().UTC()
	res := s.db.WithContext(ctx).Model(&model.Visit{}).
		Where("active = ?", true).
		Updates(map[string]any{
			"active":         false,
			"check_out_time": now,
		})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to check out all visits: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// SetVisitPartner links or unlinks two visits as partners. The link is
// symmetric: both pointer writes happen in one transaction, and any stale
// reciprocal pointer on either side is cleared first so the link never ends
// up one-sided.
func (s *gormStore) SetVisitPartner(ctx context.Context, visitID int64, partnerID *int64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var visit model.Visit
		if err := tx.First(&visit, visitID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrVisitNotFound
			}
			return err
		}

		// Clear whichever visits currently point back at this one.
		if err := tx.Model(&model.Visit{}).Where("partner_id = ?", visitID).
			Update("partner_id", nil).Error; err != nil {
			return fmt.Errorf("failed to clear reciprocal partner links: %w", err)
		}

		if partnerID == nil {
			return tx.Model(&visit).Update("partner_id", nil).Error
		}

		var partner model.Visit
		if err := tx.First(&partner, *partnerID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrVisitNotFound
			}
			return err
		}

		// Drop stale links on the partner's side as well.
		if err := tx.Model(&model.Visit{}).Where("partner_id = ?", partner.ID).
			Update("partner_id", nil).Error; err != nil {
			return fmt.Errorf("failed to clear partner's reciprocal links: %w", err)
		}

		if err := tx.Model(&visit).Update("partner_id", partner.ID).Error; err != nil {
			return fmt.Errorf("failed to set partner on visit %d: %w", visitID, err)
		}
		if err := tx.Model(&partner).Update("partner_id", visit.ID).Error; err != nil {
			return fmt.Errorf("failed to mirror partner on visit %d: %w", partner.ID, err)
		}
		return nil
	})
}
