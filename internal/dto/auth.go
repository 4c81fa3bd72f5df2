package dto

import "strings"

// RegisterRequest is the storefront registration form payload.
type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// ValidateUsername checks the username field.
func (r *RegisterRequest) ValidateUsername() (bool, string) {
	if len(strings.TrimSpace(r.Username)) < 3 {
		return false, "Username must be at least 3 characters"
	}
	return true, ""
}

// ValidateEmail checks the email field shape.
func (r *RegisterRequest) ValidateEmail() (bool, string) {
	email := strings.TrimSpace(r.Email)
	at := strings.Index(email, "@")
	if at < 1 || at == len(email)-1 || !strings.Contains(email[at:], ".") {
		return false, "Invalid email address"
	}
	return true, ""
}

// ValidatePassword checks minimum password strength.
func (r *RegisterRequest) ValidatePassword() (bool, string) {
	if len(r.Password) < 8 {
		return false, "Password must be at least 8 characters"
	}
	return true, ""
}

// LoginRequest is the storefront login form payload.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}
