// Package booking turns the visitor's selection, contact fields and session
// identity into one purchase request against the park API.
package booking

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/wonderpark/storefront/internal/domain"
	"github.com/wonderpark/storefront/internal/parkapi"
	"github.com/wonderpark/storefront/internal/pricing"
	"github.com/wonderpark/storefront/internal/selection"
	"github.com/wonderpark/storefront/pkg/logger"
	"github.com/wonderpark/storefront/pkg/telemetry"
)

// Catalog is the price source the submitter quotes against. EnsureLoaded
// must be callable before every quote: a booking may be the first catalog
// consumer in a process lifetime, since the selection outlives restarts.
type Catalog interface {
	pricing.Catalog
	EnsureLoaded(ctx context.Context)
}

// Submitter assembles and sends booking requests.
type Submitter struct {
	api        parkapi.Client
	selections *selection.Service
	catalog    Catalog
	log        *logger.Logger
}

// NewSubmitter creates a Submitter.
func NewSubmitter(api parkapi.Client, selections *selection.Service, catalog Catalog, log *logger.Logger) *Submitter {
	return &Submitter{
		api:        api,
		selections: selections,
		catalog:    catalog,
		log:        log,
	}
}

// Submit books the current selection for the session sid belongs to.
//
// An empty selection is rejected locally without touching the network. On
// success the selection and contact fields are cleared; on remote failure
// they are left intact so the visitor retries without re-entering anything.
func (s *Submitter) Submit(ctx context.Context, sess domain.Session, sid string) (*domain.BookingConfirmation, error) {
	ctx, span := telemetry.StartSpan(ctx, "booking.submit")
	defer span.End()

	if !sess.Authenticated {
		span.SetStatus(codes.Error, "not authenticated")
		return nil, domain.ErrNotAuthenticated
	}
	span.SetAttributes(attribute.String("user_id", sess.UserID()))

	rec, err := s.selections.Get(ctx, sid)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("%w: %s", domain.ErrBookingFailed, "Failed to book ticket. Please try again.")
	}

	if rec.Selection.Empty() {
		span.SetStatus(codes.Error, "empty selection")
		return nil, domain.ErrNoSelection
	}
	if rec.Selection.Mixed() {
		span.SetStatus(codes.Error, "mixed selection")
		return nil, domain.ErrMixedSelection
	}

	s.catalog.EnsureLoaded(ctx)
	quote := pricing.QuoteSelection(s.catalog, rec.Selection)
	req := domain.BookingRequest{
		UserID:     sess.UserID(),
		UserName:   rec.Contact.Name,
		Email:      rec.Contact.Email,
		Phone:      rec.Contact.Phone,
		TotalPrice: quote.Total,
	}
	switch quote.Mode {
	case pricing.ModeRides:
		req.RideIDs = rec.Selection.RideIDs
		req.EntryFee = quote.EntryFee
	case pricing.ModeTiers:
		req.TicketTypes = rec.Selection.TierQuantities
		req.TotalRidesAllowed = quote.TotalRidesAllowed
	}

	span.SetAttributes(
		attribute.String("mode", quote.Mode),
		attribute.Float64("total_price", quote.Total),
	)

	conf, err := s.api.SubmitBooking(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("%w: %s", domain.ErrBookingFailed,
			parkapi.RemoteMessage(err, "Failed to book ticket. Please try again."))
	}

	// The purchase went through; a failed reset only leaves a stale form.
	if err := s.selections.Reset(ctx, sid); err != nil {
		s.log.Warn("failed to reset selection after booking",
			zap.String("sid", sid), zap.Error(err))
		span.RecordError(err)
	}

	span.SetAttributes(attribute.String("booking_id", conf.ID))
	span.SetStatus(codes.Ok, "")
	return conf, nil
}
