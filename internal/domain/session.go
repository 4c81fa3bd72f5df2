package domain

// UserRecord is the identity object returned by the park API on login.
// The storefront treats it as opaque apart from the ID.
type UserRecord struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
}

// Session is the authentication state for one browser session.
//
// Invariant: Authenticated == (User != nil). Loading is true only between
// application start and the completion of the restore step; no access
// decision may be trusted while it is set.
type Session struct {
	Authenticated bool
	User          *UserRecord
	Loading       bool
}

// NewSession returns the unresolved initial state.
func NewSession() Session {
	return Session{Loading: true}
}

// UserID returns the authenticated user's id, or the empty string.
func (s Session) UserID() string {
	if s.User == nil {
		return ""
	}
	return s.User.ID
}
