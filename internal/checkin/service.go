package checkin

import (
	"context"
	"errors"
	"fmt"
	"log"

	"visitor-registry-backend/internal/model"
	"visitor-registry-backend/internal/store"
)

// Broadcaster is the live notification hook fired after a successful
// check-in. Fire-and-forget; no delivery guarantee.
type Broadcaster interface {
	BroadcastCheckIn(visitor *model.Visitor, purpose string, returning bool)
}

// Dispatcher queues a push notification job for a visitor check-in.
type Dispatcher interface {
	Dispatch(visitorID int64)
}

// Request carries the kiosk check-in form data.
type Request struct {
	FullName     string
	YearOfBirth  int
	Sex          string
	Municipality string
	Email        string
	PhoneNumber  string
	Purpose      string
}

// Result is the outcome of a check-in: the resolved (or created) visitor
// and the newly opened visit. Returning is true when an existing visitor
// record was matched.
type Result struct {
	Visitor   *model.Visitor
	Visit     *model.Visit
	Returning bool
}

// Service resolves visitor identity and manages the visit lifecycle.
type Service struct {
	store       store.Store
	countryCode string
	broadcaster Broadcaster
	dispatcher  Dispatcher
}

// NewService creates a check-in service. countryCode is the default calling
// code, used until a settings row overrides it. The broadcaster and
// dispatcher hooks may be nil (they are in most tests).
func NewService(s store.Store, countryCode string, b Broadcaster, d Dispatcher) *Service {
	return &Service{
		store:       s,
		countryCode: countryCode,
		broadcaster: b,
		dispatcher:  d,
	}
}

// CheckIn resolves the submitted identity to a visitor record, refreshing
// the stored profile if the submitted details differ, creating the visitor
// when no match exists, and opens a new active visit. Resolution order is
// fixed: exact email, exact phone, then normalized-phone comparison using
// the country code from the settings row.
func (s *Service) CheckIn(ctx context.Context, req Request) (*Result, error) {
	visitor, err := s.resolveVisitor(ctx, req, s.resolveCountryCode(ctx))
	if err != nil {
		return nil, err
	}

	returning := visitor != nil
	if returning {
		visitor, err = s.refreshProfile(ctx, visitor, req)
		if err != nil {
			return nil, err
		}
		// A trashed visitor who shows up at the kiosk is live again.
		if visitor.Deleted {
			if err := s.store.SetVisitorDeleted(ctx, visitor.ID, false); err != nil {
				return nil, err
			}
			visitor.Deleted = false
		}
	} else {
		visitor = &model.Visitor{
			FullName:     req.FullName,
			YearOfBirth:  req.YearOfBirth,
			Sex:          req.Sex,
			Municipality: req.Municipality,
			Email:        req.Email,
			PhoneNumber:  req.PhoneNumber,
			Verified:     false,
			Deleted:      false,
		}
		if err := s.store.CreateVisitor(ctx, visitor); err != nil {
			return nil, err
		}
	}

	visit, err := s.store.CreateVisit(ctx, visitor.ID, req.Purpose)
	if err != nil {
		return nil, err
	}

	// CreateVisit bumped the counter; reflect it without a re-read.
	visitor.VisitCount++

	if s.broadcaster != nil {
		s.broadcaster.BroadcastCheckIn(visitor, req.Purpose, returning)
	}
	if s.dispatcher != nil {
		s.dispatcher.Dispatch(visitor.ID)
	}

	return &Result{Visitor: visitor, Visit: visit, Returning: returning}, nil
}

// resolveCountryCode prefers the admin-editable settings row; the
// configured default applies until one is saved. A settings read failure
// must not block check-in.
func (s *Service) resolveCountryCode(ctx context.Context) string {
	cc, err := s.store.CountryCode(ctx)
	if err != nil {
		log.Printf("failed to read country code from settings: %v", err)
		return s.countryCode
	}
	if cc == "" {
		return s.countryCode
	}
	return cc
}

// resolveVisitor applies the ordered identity resolution. It returns
// (nil, nil) when no visitor matches.
func (s *Service) resolveVisitor(ctx context.Context, req Request, countryCode string) (*model.Visitor, error) {
	if req.Email != "" {
		v, err := s.store.FindVisitorByEmail(ctx, req.Email)
		if err == nil {
			return v, nil
		}
		if !errors.Is(err, store.ErrVisitorNotFound) {
			return nil, err
		}
	}

	v, err := s.store.FindVisitorByPhone(ctx, req.PhoneNumber)
	if err == nil {
		return v, nil
	}
	if !errors.Is(err, store.ErrVisitorNotFound) {
		return nil, err
	}

	v, err = s.store.FindVisitorByNormalizedPhone(ctx, req.PhoneNumber, countryCode)
	if err == nil {
		return v, nil
	}
	if !errors.Is(err, store.ErrVisitorNotFound) {
		return nil, err
	}
	return nil, nil
}

// refreshProfile updates the stored record in place when any submitted
// identity field differs. This is an implicit profile refresh on re-visit,
// not a separate opt-in.
func (s *Service) refreshProfile(ctx context.Context, visitor *model.Visitor, req Request) (*model.Visitor, error) {
	var patch store.VisitorPatch
	changed := false
	if req.FullName != "" && req.FullName != visitor.FullName {
		patch.FullName = &req.FullName
		changed = true
	}
	if req.YearOfBirth != 0 && req.YearOfBirth != visitor.YearOfBirth {
		patch.YearOfBirth = &req.YearOfBirth
		changed = true
	}
	if req.Email != "" && req.Email != visitor.Email {
		patch.Email = &req.Email
		changed = true
	}
	if req.PhoneNumber != "" && req.PhoneNumber != visitor.PhoneNumber {
		patch.PhoneNumber = &req.PhoneNumber
		changed = true
	}
	if !changed {
		return visitor, nil
	}

	updated, err := s.store.UpdateVisitor(ctx, visitor.ID, patch)
	if err != nil {
		return nil, fmt.Errorf("failed to refresh visitor profile: %w", err)
	}
	log.Printf("refreshed profile for visitor %d on re-visit", visitor.ID)
	return updated, nil
}

// CheckOut completes a single visit. It fails with store.ErrVisitNotFound
// or store.ErrVisitNotActive, which the handler layer maps to 404/400.
func (s *Service) CheckOut(ctx context.Context, visitID int64) (*model.Visit, error) {
	return s.store.CheckOutVisit(ctx, visitID)
}

// CheckOutAll completes every active visit and returns the count. Used by
// the admin bulk action and the midnight scheduler.
func (s *Service) CheckOutAll(ctx context.Context) (int64, error) {
	return s.store.CheckOutAllVisits(ctx)
}
