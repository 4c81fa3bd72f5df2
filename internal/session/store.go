// Package session owns the authentication lifecycle of one browser session:
// restore from the durable vault slot, register, login, logout. It is the
// single source of truth for "who is logged in".
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/wonderpark/storefront/internal/domain"
	"github.com/wonderpark/storefront/internal/parkapi"
	"github.com/wonderpark/storefront/pkg/logger"
	"github.com/wonderpark/storefront/pkg/telemetry"
)

// Store holds the session state for a single browser session.
//
// State machine: Unresolved -> {Authenticated, Unauthenticated} via Restore,
// Unauthenticated -> Authenticated only via a successful Login,
// Authenticated -> Unauthenticated only via Logout. Register never
// transitions state.
type Store struct {
	mu          sync.Mutex
	sid         string
	session     domain.Session
	restored    bool
	vault       Vault
	api         parkapi.Client
	log         *logger.Logger
	subscribers []func(domain.Session)
}

// NewStore creates a Store in the unresolved initial state. Restore must be
// called before any access decision is trusted.
func NewStore(sid string, vault Vault, api parkapi.Client, log *logger.Logger) *Store {
	return &Store{
		sid:     sid,
		session: domain.NewSession(),
		vault:   vault,
		api:     api,
		log:     log,
	}
}

// SID returns the browser session id this store belongs to.
func (s *Store) SID() string {
	return s.sid
}

// Snapshot returns the current session state.
func (s *Store) Snapshot() domain.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session
}

// Subscribe registers a callback invoked synchronously on every state
// change, with the new state. Dependents re-evaluate from the snapshot they
// receive; there is no ambient shared state.
func (s *Store) Subscribe(fn func(domain.Session)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers = append(s.subscribers, fn)
}

// setSession mutates state and notifies subscribers. Callers must not hold mu.
func (s *Store) setSession(next domain.Session) {
	s.mu.Lock()
	s.session = next
	subs := make([]func(domain.Session), len(s.subscribers))
	copy(subs, s.subscribers)
	s.mu.Unlock()

	for _, fn := range subs {
		fn(next)
	}
}

// Restore reads the vault slot back and resolves the session state. It runs
// exactly once per Store; later calls are no-ops. A malformed or unreadable
// slot is discarded and the state falls back to unauthenticated - nothing
// escapes this boundary. Loading is false afterwards in every case.
func (s *Store) Restore(ctx context.Context) domain.Session {
	ctx, span := telemetry.StartSpan(ctx, "session.restore")
	defer span.End()

	s.mu.Lock()
	if s.restored {
		current := s.session
		s.mu.Unlock()
		span.SetStatus(codes.Ok, "already restored")
		return current
	}
	s.restored = true
	s.mu.Unlock()

	next := domain.Session{}

	data, err := s.vault.Load(ctx, s.sid)
	switch {
	case err != nil:
		s.log.Warn("failed to read session slot, treating as logged out",
			zap.String("sid", s.sid), zap.Error(err))
		span.RecordError(err)
	case data != nil:
		var user domain.UserRecord
		if uerr := json.Unmarshal(data, &user); uerr != nil || user.ID == "" {
			s.log.Warn("discarding corrupted session record",
				zap.String("sid", s.sid), zap.Error(fmt.Errorf("%w: %v", domain.ErrCorruptedSession, uerr)))
			if cerr := s.vault.Clear(ctx, s.sid); cerr != nil {
				s.log.Warn("failed to clear corrupted session slot", zap.Error(cerr))
			}
			span.RecordError(domain.ErrCorruptedSession)
		} else {
			next = domain.Session{Authenticated: true, User: &user}
			span.SetAttributes(attribute.String("user_id", user.ID))
		}
	}

	s.setSession(next)
	span.SetAttributes(attribute.Bool("authenticated", next.Authenticated))
	span.SetStatus(codes.Ok, "")
	return next
}

// Register creates an account with the park API. It returns the created
// account payload and never changes the session state: registering is not
// logging in.
func (s *Store) Register(ctx context.Context, req parkapi.RegisterRequest) (parkapi.AccountPayload, error) {
	ctx, span := telemetry.StartSpan(ctx, "session.register")
	defer span.End()
	span.SetAttributes(attribute.String("username", req.Username))

	payload, err := s.api.Register(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("%w: %s", domain.ErrRegistrationFailed,
			parkapi.RemoteMessage(err, "Registration failed"))
	}

	span.SetStatus(codes.Ok, "")
	return payload, nil
}

// Login authenticates against the park API. On success the returned user
// record is written to the vault slot and adopted as the in-memory state.
// On failure the session is left exactly as it was.
func (s *Store) Login(ctx context.Context, req parkapi.LoginRequest) (*domain.UserRecord, error) {
	ctx, span := telemetry.StartSpan(ctx, "session.login")
	defer span.End()
	span.SetAttributes(attribute.String("username", req.Username))

	user, err := s.api.Login(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("%w: %s", domain.ErrAuthenticationFailed,
			parkapi.RemoteMessage(err, "Login failed"))
	}

	data, err := json.Marshal(user)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("%w: %s", domain.ErrAuthenticationFailed, "Login failed")
	}
	if err := s.vault.Save(ctx, s.sid, data); err != nil {
		// The login itself succeeded; a vault write failure only costs
		// durability across reloads. Keep going.
		s.log.Warn("failed to persist session slot", zap.String("sid", s.sid), zap.Error(err))
		span.RecordError(err)
	}

	s.setSession(domain.Session{Authenticated: true, User: user})

	span.SetAttributes(attribute.String("user_id", user.ID))
	span.SetStatus(codes.Ok, "")
	return user, nil
}

// Logout notifies the park API best-effort, then unconditionally clears the
// vault slot and resets the session. From the caller's point of view logout
// always succeeds; remote failures are logged and swallowed.
func (s *Store) Logout(ctx context.Context) {
	ctx, span := telemetry.StartSpan(ctx, "session.logout")
	defer span.End()

	if err := s.api.Logout(ctx); err != nil {
		s.log.Warn("park api logout failed, clearing local session anyway",
			zap.String("sid", s.sid), zap.Error(err))
		span.RecordError(err)
	}

	if err := s.vault.Clear(ctx, s.sid); err != nil {
		s.log.Warn("failed to clear session slot", zap.String("sid", s.sid), zap.Error(err))
		span.RecordError(err)
	}

	s.setSession(domain.Session{})
	span.SetStatus(codes.Ok, "")
}
