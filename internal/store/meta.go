package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"visitor-registry-backend/internal/model"
)

// defaultSettings is returned while no settings row exists yet. The row is
// created lazily on first write.
func defaultSettings() *model.Settings {
	return &model.Settings{
		AppName:         "Visitor Registry",
		AppNameShort:    "Registry",
		CountryCode:     "243",
		AdminTheme:      "light",
		KioskTheme:      "light",
		DefaultLanguage: "fr",
	}
}

// GetSettings returns the singleton settings row, or defaults if absent.
func (s *gormStore) GetSettings(ctx context.Context) (*model.Settings, error) {
	var settings model.Settings
	err := s.db.WithContext(ctx).Order("id").First(&settings).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return defaultSettings(), nil
	}
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

// UpdateSettings writes the settings row, creating it on first write.
func (s *gormStore) UpdateSettings(ctx context.Context, in *model.Settings) (*model.Settings, error) {
	var updated model.Settings
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing model.Settings
		err := tx.Order("id").First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			updated = *in
			updated.ID = 0
			return tx.Create(&updated).Error
		}
		if err != nil {
			return err
		}
		in.ID = existing.ID
		in.CreatedAt = existing.CreatedAt
		if err := tx.Save(in).Error; err != nil {
			return err
		}
		updated = *in
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update settings: %w", err)
	}
	return &updated, nil
}

// CountryCode returns the calling code stored in the settings row, or ""
// while no row has been saved yet. Callers fall back to their configured
// default in that case.
func (s *gormStore) CountryCode(ctx context.Context) (string, error) {
	var settings model.Settings
	err := s.db.WithContext(ctx).Select("country_code").Order("id").First(&settings).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return settings.CountryCode, nil
}

// CreateReport attaches a new incident report to a visitor.
func (s *gormStore) CreateReport(ctx context.Context, r *model.VisitorReport) error {
	if r.Status == "" {
		r.Status = model.ReportStatusOpen
	}
	if err := s.db.WithContext(ctx).Create(r).Error; err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}
	return nil
}

// ListReports returns reports newest first, optionally for one visitor.
func (s *gormStore) ListReports(ctx context.Context, visitorID *int64) ([]model.VisitorReport, error) {
	q := s.db.WithContext(ctx).Preload("Visitor").Order("created_at DESC")
	if visitorID != nil {
		q = q.Where("visitor_id = ?", *visitorID)
	}
	var reports []model.VisitorReport
	if err := q.Find(&reports).Error; err != nil {
		return nil, err
	}
	return reports, nil
}

// UpdateReport applies a status/resolution patch. Moving a report to
// resolved stamps the resolution date.
func (s *gormStore) UpdateReport(ctx context.Context, id int64, patch ReportPatch) (*model.VisitorReport, error) {
	updates := map[string]any{}
	if patch.Status != nil {
		updates["status"] = *patch.Status
		if *patch.Status == model.ReportStatusResolved {
			updates["resolved_at"] = time.Now().UTC()
		}
	}
	if patch.ResolutionNotes != nil {
		updates["resolution_notes"] = *patch.ResolutionNotes
	}

	if len(updates) > 0 {
		res := s.db.WithContext(ctx).Model(&model.VisitorReport{}).Where("id = ?", id).Updates(updates)
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			return nil, ErrReportNotFound
		}
	}

	var report model.VisitorReport
	err := s.db.WithContext(ctx).First(&report, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrReportNotFound
	}
	if err != nil {
		return nil, err
	}
	return &report, nil
}

// AppendSystemLog writes an audit trail entry.
func (s *gormStore) AppendSystemLog(ctx context.Context, entry *model.SystemLog) error {
	if err := s.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("failed to append system log: %w", err)
	}
	return nil
}

// ListSystemLogs returns audit entries newest first.
func (s *gormStore) ListSystemLogs(ctx context.Context, limit, offset int) ([]model.SystemLog, error) {
	q := s.db.WithContext(ctx).Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if offset > 0 {
		q = q.Offset(offset)
	}
	var logs []model.SystemLog
	if err := q.Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

// UpsertPushSubscription creates or refreshes a push subscription keyed by
// its endpoint.
func (s *gormStore) UpsertPushSubscription(ctx context.Context, sub *model.PushSubscription) error {
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "endpoint"}},
		DoUpdates: clause.AssignmentColumns([]string{"p256dh", "auth"}),
	}).Create(sub).Error
}

// DeletePushSubscription removes a push subscription by endpoint.
func (s *gormStore) DeletePushSubscription(ctx context.Context, endpoint string) error {
	return s.db.WithContext(ctx).Delete(&model.PushSubscription{Endpoint: endpoint}).Error
}

// ListPushSubscriptions returns every registered push subscription.
func (s *gormStore) ListPushSubscriptions(ctx context.Context) ([]model.PushSubscription, error) {
	var subs []model.PushSubscription
	if err := s.db.WithContext(ctx).Find(&subs).Error; err != nil {
		return nil, err
	}
	return subs, nil
}
