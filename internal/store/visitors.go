package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"visitor-registry-backend/internal/model"
	"visitor-registry-backend/internal/phone"
)

// FindVisitorByEmail looks up a visitor by exact email match. Trashed
// visitors are included so a returning visitor never resolves to a
// duplicate record.
func (s *gormStore) FindVisitorByEmail(ctx context.Context, email string) (*model.Visitor, error) {
	var v model.Visitor
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&v).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrVisitorNotFound
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// FindVisitorByPhone looks up a visitor by exact phone string match.
func (s *gormStore) FindVisitorByPhone(ctx context.Context, phoneNumber string) (*model.Visitor, error) {
	var v model.Visitor
	err := s.db.WithContext(ctx).Where("phone_number = ?", phoneNumber).First(&v).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrVisitorNotFound
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// FindVisitorByNormalizedPhone compares the candidate number against every
// stored number in normalized form. There is no normalized index, so this
// is a linear scan; it is only attempted when the candidate normalizes to
// at least nine digits.
func (s *gormStore) FindVisitorByNormalizedPhone(ctx context.Context, phoneNumber, countryCode string) (*model.Visitor, error) {
	if _, err := phone.Normalize(phoneNumber, countryCode); err != nil {
		return nil, ErrVisitorNotFound
	}

	var visitors []model.Visitor
	if err := s.db.WithContext(ctx).Find(&visitors).Error; err != nil {
		return nil, err
	}
	for i := range visitors {
		if phone.Match(phoneNumber, visitors[i].PhoneNumber, countryCode) {
			return &visitors[i], nil
		}
	}
	return nil, ErrVisitorNotFound
}

// GetVisitor fetches a visitor by id, optionally preloading its visits
// newest first.
func (s *gormStore) GetVisitor(ctx context.Context, id int64, withVisits bool) (*model.Visitor, error) {
	q := s.db.WithContext(ctx)
	if withVisits {
		q = q.Preload("Visits", func(db *gorm.DB) *gorm.DB {
			return db.Order("check_in_time DESC")
		})
	}
	var v model.Visitor
	err := q.First(&v, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrVisitorNotFound
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// ListVisitors returns visitors newest first, filtered by trash flag and
// optional substring query.
func (s *gormStore) ListVisitors(ctx context.Context, opts ListVisitorsOptions) ([]model.Visitor, error) {
	q := s.db.WithContext(ctx).Where("deleted = ?", opts.Trash).Order("created_at DESC")
	if opts.Query != "" {
		pattern := "%" + opts.Query + "%"
		q = q.Where("full_name LIKE ? OR email LIKE ? OR phone_number LIKE ?", pattern, pattern, pattern)
	}
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		q = q.Offset(opts.Offset)
	}
	var visitors []model.Visitor
	if err := q.Find(&visitors).Error; err != nil {
		return nil, err
	}
	return visitors, nil
}

// CreateVisitor inserts a new visitor record.
func (s *gormStore) CreateVisitor(ctx context.Context, v *model.Visitor) error {
	if err := s.db.WithContext(ctx).Create(v).Error; err != nil {
		return fmt.Errorf("failed to create visitor: %w", err)
	}
	return nil
}

// UpdateVisitor applies a tagged partial update and returns the updated row.
func (s *gormStore) UpdateVisitor(ctx context.Context, id int64, patch VisitorPatch) (*model.Visitor, error) {
	updates := map[string]any{}
	if patch.FullName != nil {
		updates["full_name"] = *patch.FullName
	}
	if patch.YearOfBirth != nil {
		updates["year_of_birth"] = *patch.YearOfBirth
	}
	if patch.Sex != nil {
		updates["sex"] = *patch.Sex
	}
	if patch.Municipality != nil {
		updates["municipality"] = *patch.Municipality
	}
	if patch.Email != nil {
		updates["email"] = *patch.Email
	}
	if patch.PhoneNumber != nil {
		updates["phone_number"] = *patch.PhoneNumber
	}

	if len(updates) > 0 {
		res := s.db.WithContext(ctx).Model(&model.Visitor{}).Where("id = ?", id).Updates(updates)
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			return nil, ErrVisitorNotFound
		}
	}
	return s.GetVisitor(ctx, id, false)
}

// SetVisitorVerified flips the admin-controlled trust marker.
func (s *gormStore) SetVisitorVerified(ctx context.Context, id int64, verified bool) (*model.Visitor, error) {
	res := s.db.WithContext(ctx).Model(&model.Visitor{}).Where("id = ?", id).Update("verified", verified)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrVisitorNotFound
	}
	return s.GetVisitor(ctx, id, false)
}

// SetVisitorDeleted writes the soft-delete flag without any guard. The
// guarded path is SoftDeleteVisitor; this is used by restore and by the
// check-in resolver when a trashed visitor returns.
func (s *gormStore) SetVisitorDeleted(ctx context.Context, id int64, deleted bool) error {
	res := s.db.WithContext(ctx).Model(&model.Visitor{}).Where("id = ?", id).Update("deleted", deleted)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrVisitorNotFound
	}
	return nil
}

// SoftDeleteVisitor flags a visitor as trashed. It returns false without an
// error when the visitor still has an active visit, so a live check-in can
// never be orphaned.
func (s *gormStore) SoftDeleteVisitor(ctx context.Context, id int64) (bool, error) {
	var activeCount int64
	if err := s.db.WithContext(ctx).Model(&model.Visit{}).
		Where("visitor_id = ? AND active = ?", id, true).
		Count(&activeCount).Error; err != nil {
		return false, err
	}
	if activeCount > 0 {
		return false, nil
	}
	if err := s.SetVisitorDeleted(ctx, id, true); err != nil {
		return false, err
	}
	return true, nil
}

// RestoreVisitor clears the soft-delete flag unconditionally.
func (s *gormStore) RestoreVisitor(ctx context.Context, id int64) error {
	return s.SetVisitorDeleted(ctx, id, false)
}

// PermanentlyDeleteVisitor removes the visitor and every one of its visits.
// Irreversible.
func (s *gormStore) PermanentlyDeleteVisitor(ctx context.Context, id int64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("visitor_id = ?", id).Delete(&model.Visit{}).Error; err != nil {
			return fmt.Errorf("failed to delete visits for visitor %d: %w", id, err)
		}
		res := tx.Delete(&model.Visitor{}, id)
		if res.Error != nil {
			return fmt.Errorf("failed to delete visitor %d: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrVisitorNotFound
		}
		return nil
	})
}

// EmptyBin permanently deletes every trashed visitor and returns the count.
func (s *gormStore) EmptyBin(ctx context.Context) (int64, error) {
	var trashed []model.Visitor
	if err := s.db.WithContext(ctx).Where("deleted = ?", true).Find(&trashed).Error; err != nil {
		return 0, err
	}
	var deleted int64
	for _, v := range trashed {
		if err := s.PermanentlyDeleteVisitor(ctx, v.ID); err != nil {
			return deleted, err
		}
		deleted++
	}
	return deleted, nil
}
