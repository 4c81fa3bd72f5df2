package dto

// ContactRequest carries the personal-info fields of the booking form.
type ContactRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required"`
	Phone string `json:"phone" binding:"required"`
}

// TierAdjustRequest optionally overrides the default step of 1 when
// changing a tier quantity.
type TierAdjustRequest struct {
	Count int `json:"count"`
}
