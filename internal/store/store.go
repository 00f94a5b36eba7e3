package store

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"visitor-registry-backend/internal/model"
)

// Sentinel errors translated to HTTP statuses at the handler boundary.
var (
	ErrVisitorNotFound = errors.New("visitor not found")
	ErrVisitNotFound   = errors.New("visit not found")
	ErrVisitNotActive  = errors.New("visit is not active")
	ErrReportNotFound  = errors.New("report not found")
)

// ListVisitorsOptions controls visitor listing. Trash selects the bin view
// (deleted visitors only); Query filters by name, email or phone substring.
type ListVisitorsOptions struct {
	Trash  bool
	Query  string
	Limit  int
	Offset int
}

// VisitorPatch is a tagged partial update for a visitor. Nil fields are
// left untouched.
type VisitorPatch struct {
	FullName     *string
	YearOfBirth  *int
	Sex          *string
	Municipality *string
	Email        *string
	PhoneNumber  *string
}

// ReportPatch is a tagged partial update for a visitor report.
type ReportPatch struct {
	Status          *string
	ResolutionNotes *string
}

// Store defines the interface for all database operations.
type Store interface {
	DB() *gorm.DB

	// Visitors
	FindVisitorByEmail(ctx context.Context, email string) (*model.Visitor, error)
	FindVisitorByPhone(ctx context.Context, phoneNumber string) (*model.Visitor, error)
	FindVisitorByNormalizedPhone(ctx context.Context, phoneNumber, countryCode string) (*model.Visitor, error)
	GetVisitor(ctx context.Context, id int64, withVisits bool) (*model.Visitor, error)
	ListVisitors(ctx context.Context, opts ListVisitorsOptions) ([]model.Visitor, error)
	CreateVisitor(ctx context.Context, v *model.Visitor) error
	UpdateVisitor(ctx context.Context, id int64, patch VisitorPatch) (*model.Visitor, error)
	SetVisitorVerified(ctx context.Context, id int64, verified bool) (*model.Visitor, error)
	SetVisitorDeleted(ctx context.Context, id int64, deleted bool) error

	// Trash lifecycle
	SoftDeleteVisitor(ctx context.Context, id int64) (bool, error)
	RestoreVisitor(ctx context.Context, id int64) error
	PermanentlyDeleteVisitor(ctx context.Context, id int64) error
	EmptyBin(ctx context.Context) (int64, error)

	// Visits
	CreateVisit(ctx context.Context, visitorID int64, purpose string) (*model.Visit, error)
	GetVisit(ctx context.Context, id int64) (*model.Visit, error)
	ListVisits(ctx context.Context, activeOnly bool, limit, offset int) ([]model.Visit, error)
	CheckOutVisit(ctx context.Context, id int64) (*model.Visit, error)
	CheckOutAllVisits(ctx context.Context) (int64, error)
	SetVisitPartner(ctx context.Context, visitID int64, partnerID *int64) error

	// Settings
	GetSettings(ctx context.Context) (*model.Settings, error)
	UpdateSettings(ctx context.Context, s *model.Settings) (*model.Settings, error)
	CountryCode(ctx context.Context) (string, error)

	// Reports
	CreateReport(ctx context.Context, r *model.VisitorReport) error
	ListReports(ctx context.Context, visitorID *int64) ([]model.VisitorReport, error)
	UpdateReport(ctx context.Context, id int64, patch ReportPatch) (*model.VisitorReport, error)

	// System log
	AppendSystemLog(ctx context.Context, entry *model.SystemLog) error
	ListSystemLogs(ctx context.Context, limit, offset int) ([]model.SystemLog, error)

	// Push subscriptions
	UpsertPushSubscription(ctx context.Context, sub *model.PushSubscription) error
	DeletePushSubscription(ctx context.Context, endpoint string) error
	ListPushSubscriptions(ctx context.Context) ([]model.PushSubscription, error)
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

// DB exposes the underlying gorm handle for collaborators that need direct
// access (session store, notification worker).
func (s *gormStore) DB() *gorm.DB {
	return s.db
}
