package selection

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/wonderpark/storefront/internal/domain"
	"github.com/wonderpark/storefront/pkg/telemetry"
)

// Service applies the explicit user actions that are allowed to mutate a
// selection. Everything else reads snapshots.
type Service struct {
	repo Repository
}

// NewService creates a Service over the given repository.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Get returns the current record for sid.
func (s *Service) Get(ctx context.Context, sid string) (*Record, error) {
	return s.repo.Get(ctx, sid)
}

// SelectRide adds a ride id to the selection. Adding an already selected
// ride is a no-op.
func (s *Service) SelectRide(ctx context.Context, sid, rideID string) (*Record, error) {
	ctx, span := telemetry.StartSpan(ctx, "selection.select_ride")
	defer span.End()
	span.SetAttributes(attribute.String("ride_id", rideID))

	rec, err := s.repo.Get(ctx, sid)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	for _, id := range rec.Selection.RideIDs {
		if id == rideID {
			span.SetStatus(codes.Ok, "already selected")
			return rec, nil
		}
	}
	rec.Selection.RideIDs = append(rec.Selection.RideIDs, rideID)

	if err := s.repo.Save(ctx, sid, rec); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetStatus(codes.Ok, "")
	return rec, nil
}

// DeselectRide removes a ride id from the selection.
func (s *Service) DeselectRide(ctx context.Context, sid, rideID string) (*Record, error) {
	ctx, span := telemetry.StartSpan(ctx, "selection.deselect_ride")
	defer span.End()
	span.SetAttributes(attribute.String("ride_id", rideID))

	rec, err := s.repo.Get(ctx, sid)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	kept := rec.Selection.RideIDs[:0]
	for _, id := range rec.Selection.RideIDs {
		if id != rideID {
			kept = append(kept, id)
		}
	}
	rec.Selection.RideIDs = kept

	if err := s.repo.Save(ctx, sid, rec); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetStatus(codes.Ok, "")
	return rec, nil
}

// AdjustTier changes a tier quantity by delta. Quantities are clamped at
// zero: decrementing an empty tier leaves it at zero rather than going
// negative.
func (s *Service) AdjustTier(ctx context.Context, sid, tierID string, delta int) (*Record, error) {
	ctx, span := telemetry.StartSpan(ctx, "selection.adjust_tier")
	defer span.End()
	span.SetAttributes(
		attribute.String("tier_id", tierID),
		attribute.Int("delta", delta),
	)

	rec, err := s.repo.Get(ctx, sid)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	next := rec.Selection.TierQuantities[tierID] + delta
	if next < 0 {
		next = 0
	}
	if next == 0 {
		delete(rec.Selection.TierQuantities, tierID)
	} else {
		rec.Selection.TierQuantities[tierID] = next
	}

	if err := s.repo.Save(ctx, sid, rec); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("quantity", next))
	span.SetStatus(codes.Ok, "")
	return rec, nil
}

// SetContact replaces the booking contact fields.
func (s *Service) SetContact(ctx context.Context, sid string, contact domain.PersonalInfo) (*Record, error) {
	ctx, span := telemetry.StartSpan(ctx, "selection.set_contact")
	defer span.End()

	rec, err := s.repo.Get(ctx, sid)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	rec.Contact = contact

	if err := s.repo.Save(ctx, sid, rec); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetStatus(codes.Ok, "")
	return rec, nil
}

// Reset clears the selection and contact fields. Called after a successful
// booking submission.
func (s *Service) Reset(ctx context.Context, sid string) error {
	ctx, span := telemetry.StartSpan(ctx, "selection.reset")
	defer span.End()

	if err := s.repo.Clear(ctx, sid); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	span.SetStatus(codes.Ok, "")
	return nil
}
