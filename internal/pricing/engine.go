// Package pricing derives the amount owed from the catalog and the current
// selection. It is stateless: every quote is recomputed from scratch, so a
// stale total cannot exist.
package pricing

import "github.com/wonderpark/storefront/internal/domain"

// BaseEntryFee is the park entry fee charged once per ride-mode booking, on
// top of the selected rides. It is not part of the catalog.
const BaseEntryFee = 25.00

// Booking modes.
const (
	ModeNone  = "none"
	ModeRides = "rides"
	ModeTiers = "tiers"
)

// Catalog is the lookup surface the engine prices against.
type Catalog interface {
	RideByID(id string) (domain.Ride, bool)
	TierByID(id string) (domain.TicketTier, bool)
}

// Quote is a priced selection.
type Quote struct {
	Mode string `json:"mode"`
	// EntryFee is BaseEntryFee in ride mode, 0 in tier mode (tiers already
	// include entry).
	EntryFee float64 `json:"entryFee"`
	Total    float64 `json:"total"`
	// TicketCount is the summed tier quantity; 0 in ride mode.
	TicketCount int `json:"ticketCount"`
	// TotalRidesAllowed is the ride allowance granted by the selected tiers;
	// 0 in ride mode.
	TotalRidesAllowed int `json:"totalRidesAllowed"`
}

// QuoteSelection prices sel against cat. An empty selection quotes zero.
// Contributions are never negative and ids missing from the catalog are
// worth nothing, so the total cannot go below zero.
func QuoteSelection(cat Catalog, sel domain.Selection) Quote {
	if sel.TotalTierQuantity() > 0 {
		total, rides, count := TierTotal(cat, sel.TierQuantities)
		return Quote{
			Mode:              ModeTiers,
			Total:             total,
			TicketCount:       count,
			TotalRidesAllowed: rides,
		}
	}
	if len(sel.RideIDs) > 0 {
		return Quote{
			Mode:     ModeRides,
			EntryFee: BaseEntryFee,
			Total:    RideTotal(cat, sel.RideIDs),
		}
	}
	return Quote{Mode: ModeNone}
}

// RideTotal prices a per-ride selection: entry fee plus the price of every
// selected ride that still exists in the catalog. A selection referencing a
// since-removed ride id contributes nothing.
func RideTotal(cat Catalog, rideIDs []string) float64 {
	total := BaseEntryFee
	for _, id := range rideIDs {
		if ride, ok := cat.RideByID(id); ok {
			total += ride.Price
		}
	}
	return total
}

// TierTotal prices a tier-quantity selection and sums the granted ride
// allowance. Non-positive quantities and unknown tier ids contribute
// nothing.
func TierTotal(cat Catalog, quantities map[string]int) (total float64, ridesAllowed, ticketCount int) {
	for id, qty := range quantities {
		if qty <= 0 {
			continue
		}
		tier, ok := cat.TierByID(id)
		if !ok {
			continue
		}
		total += tier.Price * float64(qty)
		ridesAllowed += tier.RideLimit * qty
		ticketCount += qty
	}
	return total, ridesAllowed, ticketCount
}
