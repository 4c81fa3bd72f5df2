// Package gate decides whether a protected view may be rendered for the
// current session. It is a pure function of the session snapshot and holds
// no state, so it can be re-evaluated on every session change.
package gate

import "github.com/wonderpark/storefront/internal/domain"

// LoginPath is the login entry point redirects target. The original
// navigation is discarded; there is no return-to memory.
const LoginPath = "/login"

// Decision is the gate's verdict for a protected view.
type Decision int

const (
	// DecisionPending renders a neutral waiting state: the restore step has
	// not finished, so neither content nor a redirect would be correct.
	DecisionPending Decision = iota
	// DecisionRedirect sends the visitor to the login entry point.
	DecisionRedirect
	// DecisionAllow renders the requested view unchanged.
	DecisionAllow
)

func (d Decision) String() string {
	switch d {
	case DecisionPending:
		return "pending"
	case DecisionRedirect:
		return "redirect"
	case DecisionAllow:
		return "allow"
	default:
		return "unknown"
	}
}

// Decide maps a session snapshot to a Decision. Loading always wins so a
// half-restored session can never flash the login page at an already
// authenticated visitor.
func Decide(s domain.Session) Decision {
	if s.Loading {
		return DecisionPending
	}
	if !s.Authenticated {
		return DecisionRedirect
	}
	return DecisionAllow
}
