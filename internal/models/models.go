// Package models defines the core data structures for VitaTrack.
//
// It includes types for user profiles, log entries, and progress snapshots,
// which are shared across modules.
package models

import (
	"errors"
	"time"
)

// WorkoutKind identifies the kind of workout being logged.
type WorkoutKind string

const (
	// WorkoutCardio is a cardio workout.
	WorkoutCardio WorkoutKind = "cardio"
	// WorkoutStrength is a strength workout.
	WorkoutStrength WorkoutKind = "strength"
	// WorkoutOther covers everything else (yoga, walking, ...).
	WorkoutOther WorkoutKind = "other"
)

// Burn rates in kcal per minute for each workout kind.
const (
	CardioBurnRate   = 10
	StrengthBurnRate = 8
	OtherBurnRate    = 5
)

// Shared constants for goals and fallbacks.
const (
	// MaxWaterGoalML caps the derived daily water goal.
	MaxWaterGoalML = 4000
	// BurnedGoalKcal is the fixed daily calories-burned goal, independent of profile.
	BurnedGoalKcal = 500
	// DefaultTemperatureC substitutes for an unavailable weather lookup.
	DefaultTemperatureC = 20
	// FallbackWaterGoalML is used in post-log summaries before a profile exists.
	FallbackWaterGoalML = 2000
	// FallbackCalorieGoalKcal is used in post-log summaries before a profile exists.
	FallbackCalorieGoalKcal = 2000
)

// Error variables for better error handling and testability.
var (
	ErrNoProfile      = errors.New("no profile stored for user")
	ErrInvalidWorkout = errors.New("invalid workout kind")
)

// IsValidWorkoutKind checks if the given workout kind is supported.
func IsValidWorkoutKind(k WorkoutKind) bool {
	switch k {
	case WorkoutCardio, WorkoutStrength, WorkoutOther:
		return true
	default:
		return false
	}
}

// BurnRate returns the kcal-per-minute rate for the workout kind.
// Unknown kinds fall back to the "other" rate.
func (k WorkoutKind) BurnRate() int {
	switch k {
	case WorkoutCardio:
		return CardioBurnRate
	case WorkoutStrength:
		return StrengthBurnRate
	default:
		return OtherBurnRate
	}
}

// UserProfile is the single-row-per-user profile and derived targets record.
// A new profile submission fully replaces the prior one.
type UserProfile struct {
	UserID          int64     `json:"user_id"`
	WeightKg        int       `json:"weight_kg"`
	HeightCm        int       `json:"height_cm"`
	AgeYears        int       `json:"age_years"`
	ActivityMinutes int       `json:"activity_minutes"` // daily activity, minutes
	City            string    `json:"city"`
	WaterGoalML     float64   `json:"water_goal_ml"`
	CalorieGoalKcal float64   `json:"calorie_goal_kcal"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// WaterEntry is one immutable logged water intake.
type WaterEntry struct {
	UserID   int64     `json:"user_id"`
	LoggedAt time.Time `json:"logged_at"`
	LogDate  string    `json:"log_date"` // local calendar date, YYYY-MM-DD
	AmountML int       `json:"amount_ml"`
}

// FoodEntry is one immutable logged food intake.
type FoodEntry struct {
	UserID       int64     `json:"user_id"`
	LoggedAt     time.Time `json:"logged_at"`
	LogDate      string    `json:"log_date"`
	FoodName     string    `json:"food_name"`
	CaloriesKcal float64   `json:"calories_kcal"`
}

// WorkoutEntry is one immutable logged workout.
type WorkoutEntry struct {
	UserID          int64       `json:"user_id"`
	LoggedAt        time.Time   `json:"logged_at"`
	LogDate         string      `json:"log_date"`
	Kind            WorkoutKind `json:"kind"`
	DurationMinutes int         `json:"duration_minutes"`
	CaloriesBurned  float64     `json:"calories_burned"`
}

// ProgressSnapshot is a computed, non-persisted view of a user's progress
// for one calendar date.
type ProgressSnapshot struct {
	Date             string  `json:"date"` // YYYY-MM-DD
	WaterConsumedML  float64 `json:"water_consumed_ml"`
	WaterGoalML      float64 `json:"water_goal_ml"`
	CaloriesConsumed float64 `json:"calories_consumed"`
	CalorieGoalKcal  float64 `json:"calorie_goal_kcal"`
	CaloriesBurned   float64 `json:"calories_burned"`
	BurnedGoalKcal   float64 `json:"burned_goal_kcal"`
	Balance          float64 `json:"balance"` // consumed - burned, may be negative
}
