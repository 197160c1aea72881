// Package store provides storage backends for VitaTrack.
//
// It includes an in-memory store for tests and short-lived deployments, plus
// SQLite and PostgreSQL backends sharing one embedded-migration contract.
package store

import (
	"sort"
	"sync"

	"github.com/vitality-lab/VitaTrack/internal/models"
)

// Store is the narrow persistence contract consumed by the core components:
// a single-row-per-user profile, three append-only per-category logs, and
// the per-user conversation session row.
type Store interface {
	// UpsertProfile replaces the user's profile wholesale.
	UpsertProfile(p models.UserProfile) error
	// GetProfile returns the stored profile, or nil when none exists.
	GetProfile(userID int64) (*models.UserProfile, error)

	AddWaterEntry(e models.WaterEntry) error
	AddFoodEntry(e models.FoodEntry) error
	AddWorkoutEntry(e models.WorkoutEntry) error

	// SumWater returns total ml logged on the given local date (YYYY-MM-DD).
	SumWater(userID int64, date string) (float64, error)
	// SumFoodCalories returns total kcal consumed on the given local date.
	SumFoodCalories(userID int64, date string) (float64, error)
	// SumBurnedCalories returns total kcal burned on the given local date.
	SumBurnedCalories(userID int64, date string) (float64, error)

	SaveSession(s models.Session) error
	// GetSession returns the user's active session, or nil when none exists.
	GetSession(userID int64) (*models.Session, error)
	DeleteSession(userID int64) error

	Close() error
}

// InMemoryStore is a simple in-memory Store used by tests and as a fallback
// when no database DSN is configured.
type InMemoryStore struct {
	mu       sync.RWMutex
	profiles map[int64]models.UserProfile
	water    []models.WaterEntry
	food     []models.FoodEntry
	workouts []models.WorkoutEntry
	sessions map[int64]models.Session
}

// NewInMemoryStore creates an empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		profiles: make(map[int64]models.UserProfile),
		sessions: make(map[int64]models.Session),
	}
}

func (s *InMemoryStore) UpsertProfile(p models.UserProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[p.UserID] = p
	return nil
}

func (s *InMemoryStore) GetProfile(userID int64) (*models.UserProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[userID]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (s *InMemoryStore) AddWaterEntry(e models.WaterEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.water = append(s.water, e)
	return nil
}

func (s *InMemoryStore) AddFoodEntry(e models.FoodEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.food = append(s.food, e)
	return nil
}

func (s *InMemoryStore) AddWorkoutEntry(e models.WorkoutEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.workouts = append(s.workouts, e)
	return nil
}

func (s *InMemoryStore) SumWater(userID int64, date string) (float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var total float64
	for _, e := range s.water {
		if e.UserID == userID && e.LogDate == date {
			total += float64(e.AmountML)
		}
	}
	return total, nil
}

func (s *InMemoryStore) SumFoodCalories(userID int64, date string) (float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var total float64
	for _, e := range s.food {
		if e.UserID == userID && e.LogDate == date {
			total += e.CaloriesKcal
		}
	}
	return total, nil
}

func (s *InMemoryStore) SumBurnedCalories(userID int64, date string) (float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var total float64
	for _, e := range s.workouts {
		if e.UserID == userID && e.LogDate == date {
			total += e.CaloriesBurned
		}
	}
	return total, nil
}

func (s *InMemoryStore) SaveSession(sess models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.UserID] = sess
	return nil
}

func (s *InMemoryStore) GetSession(userID int64) (*models.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[userID]
	if !ok {
		return nil, nil
	}
	return &sess, nil
}

func (s *InMemoryStore) DeleteSession(userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, userID)
	return nil
}

func (s *InMemoryStore) Close() error { return nil }

// WaterEntries returns the user's water entries for a date, oldest first (for tests).
func (s *InMemoryStore) WaterEntries(userID int64, date string) []models.WaterEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.WaterEntry
	for _, e := range s.water {
		if e.UserID == userID && e.LogDate == date {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LoggedAt.Before(out[j].LoggedAt) })
	return out
}
