package models

import "testing"

func TestIsValidWorkoutKind(t *testing.T) {
	for _, k := range []WorkoutKind{WorkoutCardio, WorkoutStrength, WorkoutOther} {
		if !IsValidWorkoutKind(k) {
			t.Errorf("IsValidWorkoutKind(%q) = false, want true", k)
		}
	}
	for _, k := range []WorkoutKind{"", "swimming", "Cardio"} {
		if IsValidWorkoutKind(k) {
			t.Errorf("IsValidWorkoutKind(%q) = true, want false", k)
		}
	}
}

func TestBurnRate(t *testing.T) {
	tests := []struct {
		kind WorkoutKind
		want int
	}{
		{kind: WorkoutCardio, want: 10},
		{kind: WorkoutStrength, want: 8},
		{kind: WorkoutOther, want: 5},
		{kind: "unknown", want: 5},
	}
	for _, tt := range tests {
		if got := tt.kind.BurnRate(); got != tt.want {
			t.Errorf("BurnRate(%q) = %d, want %d", tt.kind, got, tt.want)
		}
	}
}

func TestIsValidFlowType(t *testing.T) {
	valid := []FlowType{FlowProfileSetup, FlowLogWater, FlowLogFood, FlowLogWorkout, FlowCustomDate}
	for _, ft := range valid {
		if !IsValidFlowType(ft) {
			t.Errorf("IsValidFlowType(%q) = false, want true", ft)
		}
	}
	if IsValidFlowType("report") {
		t.Error(`IsValidFlowType("report") = true, want false`)
	}
}
