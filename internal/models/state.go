// Package models defines state management structures for VitaTrack dialogues.
package models

import "time"

// FlowType identifies a multi-step data-collection dialogue.
type FlowType string

const (
	// FlowProfileSetup collects weight, height, age, activity and city.
	FlowProfileSetup FlowType = "profile_setup"
	// FlowLogWater collects a single water amount.
	FlowLogWater FlowType = "log_water"
	// FlowLogFood collects a product name and a gram weight.
	FlowLogFood FlowType = "log_food"
	// FlowLogWorkout collects a workout kind and a duration.
	FlowLogWorkout FlowType = "log_workout"
	// FlowCustomDate collects a report date in DD-MM-YYYY form.
	FlowCustomDate FlowType = "custom_date"
)

// IsValidFlowType checks if the given flow type is supported.
func IsValidFlowType(ft FlowType) bool {
	switch ft {
	case FlowProfileSetup, FlowLogWater, FlowLogFood, FlowLogWorkout, FlowCustomDate:
		return true
	default:
		return false
	}
}

// Session is the per-user conversation state: which flow is in progress,
// which step it is on, and the validated answers collected so far.
// A user has at most one active Session; starting a new flow replaces it.
type Session struct {
	UserID    int64             `json:"user_id"`
	Flow      FlowType          `json:"flow"`
	Step      string            `json:"step"`
	Data      map[string]string `json:"data,omitempty"` // step name -> validated value
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}
