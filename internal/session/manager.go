package session

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/wonderpark/storefront/internal/parkapi"
	"github.com/wonderpark/storefront/pkg/logger"
)

const (
	// managerIdleTTL bounds how long an untouched store stays resident.
	// A store is cheap to rebuild from the vault, so evicting an idle
	// authenticated session loses nothing.
	managerIdleTTL       = 30 * time.Minute
	managerSweepInterval = 5 * time.Minute
)

type managerEntry struct {
	store    *Store
	lastSeen time.Time
}

// Manager hands out one Store per browser session id. The first request for
// a sid creates the store and runs Restore before anyone can read it, so a
// store obtained from the manager is always past the loading state.
//
// Resident stores are evicted after managerIdleTTL without a request;
// otherwise cookie-less traffic minting fresh sids would grow the map
// without bound. The vault slot is the durable record, the store is not.
type Manager struct {
	mu        sync.Mutex
	entries   map[string]*managerEntry
	vault     Vault
	api       parkapi.Client
	log       *logger.Logger
	idleTTL   time.Duration
	closeOnce sync.Once
	done      chan struct{}
}

// NewManager creates a Manager backed by the given vault and park API client
// and starts its idle-store sweeper. Call Close on shutdown.
func NewManager(vault Vault, api parkapi.Client, log *logger.Logger) *Manager {
	m := &Manager{
		entries: make(map[string]*managerEntry),
		vault:   vault,
		api:     api,
		log:     log,
		idleTTL: managerIdleTTL,
		done:    make(chan struct{}),
	}
	go m.sweep(managerSweepInterval)
	return m
}

// Get returns the store for sid, creating and restoring it on first sight.
func (m *Manager) Get(ctx context.Context, sid string) *Store {
	m.mu.Lock()
	e, ok := m.entries[sid]
	if !ok {
		e = &managerEntry{store: NewStore(sid, m.vault, m.api, m.log)}
		m.entries[sid] = e
	}
	e.lastSeen = time.Now()
	m.mu.Unlock()

	// Restore is a no-op after the first call, so racing requests for a
	// fresh sid are safe.
	e.store.Restore(ctx)
	return e.store
}

// Drop evicts the store for sid. Used after logout so a returning cookie
// starts from a clean restore.
func (m *Manager) Drop(sid string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, sid)
}

// Close stops the idle-store sweeper.
func (m *Manager) Close() {
	m.closeOnce.Do(func() { close(m.done) })
}

// Len reports how many sessions are resident. Test helper.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

func (m *Manager) sweep(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
			if n := m.evictIdle(time.Now()); n > 0 {
				m.log.Debug("evicted idle session stores", zap.Int("count", n))
			}
		}
	}
}

func (m *Manager) evictIdle(now time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	evicted := 0
	for sid, e := range m.entries {
		if now.Sub(e.lastSeen) > m.idleTTL {
			delete(m.entries, sid)
			evicted++
		}
	}
	return evicted
}
