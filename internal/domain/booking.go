package domain

// PersonalInfo holds the visitor contact fields entered on the booking form.
type PersonalInfo struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// Empty reports whether no contact field has been filled in.
func (p PersonalInfo) Empty() bool {
	return p.Name == "" && p.Email == "" && p.Phone == ""
}

// Selection is the visitor's current pick: either a set of ride ids or a
// map of ticket-tier id to quantity. Mixing both in one booking is invalid.
type Selection struct {
	RideIDs        []string       `json:"rideIds,omitempty"`
	TierQuantities map[string]int `json:"tierQuantities,omitempty"`
}

// TotalTierQuantity sums the tier quantities.
func (s Selection) TotalTierQuantity() int {
	total := 0
	for _, q := range s.TierQuantities {
		total += q
	}
	return total
}

// Empty reports whether nothing has been selected.
func (s Selection) Empty() bool {
	return len(s.RideIDs) == 0 && s.TotalTierQuantity() == 0
}

// Mixed reports whether the selection spans both modes.
func (s Selection) Mixed() bool {
	return len(s.RideIDs) > 0 && s.TotalTierQuantity() > 0
}

// BookingRequest is the outbound purchase request sent to the park API.
// Exactly one of RideIDs / TicketTypes is populated, matching the two
// booking modes. Constructed fresh per submission attempt, never stored.
type BookingRequest struct {
	UserID            string         `json:"userId"`
	UserName          string         `json:"userName"`
	Email             string         `json:"email"`
	Phone             string         `json:"phone"`
	RideIDs           []string       `json:"rideIds,omitempty"`
	TicketTypes       map[string]int `json:"ticketTypes,omitempty"`
	EntryFee          float64        `json:"entryFee,omitempty"`
	TotalRidesAllowed int            `json:"totalRidesAllowed,omitempty"`
	TotalPrice        float64        `json:"totalPrice"`
}

// BookingConfirmation is the park API's acknowledgement of a purchase.
type BookingConfirmation struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}
