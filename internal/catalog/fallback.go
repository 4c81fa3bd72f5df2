package catalog

import "github.com/wonderpark/storefront/internal/domain"

// Sample catalogs served when the park API is unreachable, so the booking
// form is never empty. Prices and ride limits mirror the park's published
// rate card; this is demo data, not live inventory.

// FallbackRides returns the sample ride list.
func FallbackRides() []domain.Ride {
	return []domain.Ride{
		{ID: "1", Name: "Roller Coaster", Description: "Thrilling high-speed ride", Category: "THRILL", Price: 10.00, Active: true},
		{ID: "2", Name: "Ferris Wheel", Description: "Scenic view of the park", Category: "FAMILY", Price: 8.00, Active: true},
		{ID: "3", Name: "Water Slide", Description: "Cool water adventure", Category: "THRILL", Price: 12.00, Active: true},
		{ID: "4", Name: "Bumper Cars", Description: "Fun driving experience", Category: "FAMILY", Price: 7.00, Active: true},
		{ID: "5", Name: "Haunted House", Description: "Spooky adventure", Category: "THEMED", Price: 9.00, Active: true},
	}
}

// FallbackTicketTiers returns the sample ticket tier list.
func FallbackTicketTiers() []domain.TicketTier {
	return []domain.TicketTier{
		{ID: "silver", Name: "Silver", Description: "Amusement park entry fee with 3 rides", RideLimit: 3, Price: 299, FreeForChildren: true},
		{ID: "gold", Name: "Gold", Description: "Amusement park entry fee with 6 rides", RideLimit: 6, Price: 499, FreeForChildren: true},
		{ID: "diamond", Name: "Diamond", Description: "Amusement park entry fee with 12 rides", RideLimit: 12, Price: 899, FreeForChildren: true},
	}
}
