// Package session provides per-user conversation state managers.
//
// The active dialogue state is an explicit, injected dependency of the
// conversation engine rather than ambient process-wide state; every manager
// holds at most one session per user.
package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/vitality-lab/VitaTrack/internal/models"
	"github.com/vitality-lab/VitaTrack/internal/store"
)

// Manager is the session store contract consumed by the conversation engine.
type Manager interface {
	// Get returns the user's active session, or nil when none exists.
	Get(ctx context.Context, userID int64) (*models.Session, error)
	// Save stores or replaces the user's session.
	Save(ctx context.Context, s models.Session) error
	// Clear removes the user's session. Clearing a missing session is a no-op.
	Clear(ctx context.Context, userID int64) error
}

// StoreManager implements Manager using a Store backend, so sessions survive
// process restarts alongside the rest of the data.
type StoreManager struct {
	store store.Store
}

// NewStoreManager creates a new Manager backed by a Store.
func NewStoreManager(st store.Store) *StoreManager {
	slog.Debug("Creating store-backed session manager")
	return &StoreManager{store: st}
}

func (m *StoreManager) Get(ctx context.Context, userID int64) (*models.Session, error) {
	sess, err := m.store.GetSession(userID)
	if err != nil {
		slog.Error("SessionManager Get error", "error", err, "userID", userID)
		return nil, err
	}
	return sess, nil
}

func (m *StoreManager) Save(ctx context.Context, s models.Session) error {
	now := time.Now()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	s.UpdatedAt = now
	if err := m.store.SaveSession(s); err != nil {
		slog.Error("SessionManager Save error", "error", err, "userID", s.UserID, "flow", s.Flow)
		return err
	}
	slog.Debug("SessionManager Save succeeded", "userID", s.UserID, "flow", s.Flow, "step", s.Step)
	return nil
}

func (m *StoreManager) Clear(ctx context.Context, userID int64) error {
	if err := m.store.DeleteSession(userID); err != nil {
		slog.Error("SessionManager Clear error", "error", err, "userID", userID)
		return err
	}
	slog.Debug("SessionManager Clear succeeded", "userID", userID)
	return nil
}

// MemoryManager is an in-memory Manager for tests.
type MemoryManager struct {
	mu       sync.RWMutex
	sessions map[int64]models.Session
}

// NewMemoryManager creates an empty in-memory session manager.
func NewMemoryManager() *MemoryManager {
	return &MemoryManager{sessions: make(map[int64]models.Session)}
}

func (m *MemoryManager) Get(ctx context.Context, userID int64) (*models.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[userID]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (m *MemoryManager) Save(ctx context.Context, s models.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	s.UpdatedAt = now
	m.sessions[s.UserID] = s
	return nil
}

func (m *MemoryManager) Clear(ctx context.Context, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, userID)
	return nil
}
