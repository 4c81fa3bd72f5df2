package domain

// Ride is a single purchasable ride. JSON field names follow the park API
// wire format.
type Ride struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Category    string  `json:"category,omitempty"` // THRILL, FAMILY, KIDS, THEMED
	Price       float64 `json:"price"`
	Active      bool    `json:"active"`
}

// TicketTier is a bundled entry ticket (entry fee plus a ride allowance).
type TicketTier struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Description     string  `json:"description"`
	RideLimit       int     `json:"rideLimit"`
	Price           float64 `json:"price"`
	FreeForChildren bool    `json:"freeForChildren"`
}
