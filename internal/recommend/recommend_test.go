package recommend

import (
	"strings"
	"testing"

	"github.com/vitality-lab/VitaTrack/internal/models"
)

// pickFirst pins the suggestion choice to index 0.
func pickFirst(n int) int { return 0 }

func TestFoodNoteOverBudget(t *testing.T) {
	e := NewEngine(pickFirst)
	snap := &models.ProgressSnapshot{CaloriesConsumed: 2500, CalorieGoalKcal: 2000}

	note := e.FoodNote(snap)
	if !strings.Contains(note, "over your calorie budget") {
		t.Errorf("FoodNote = %q, want over-budget warning", note)
	}
	if !strings.Contains(note, LowCalorieFoods[0]) {
		t.Errorf("FoodNote = %q, want suggestion %q", note, LowCalorieFoods[0])
	}
}

func TestFoodNoteWithinBudget(t *testing.T) {
	e := NewEngine(pickFirst)
	tests := []struct {
		name     string
		consumed float64
	}{
		{name: "under goal", consumed: 1500},
		{name: "exactly at goal", consumed: 2000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := &models.ProgressSnapshot{CaloriesConsumed: tt.consumed, CalorieGoalKcal: 2000}
			note := e.FoodNote(snap)
			if !strings.Contains(note, "within your budget") {
				t.Errorf("FoodNote = %q, want affirmative note", note)
			}
		})
	}
}

func TestWorkoutNoteLowBurn(t *testing.T) {
	e := NewEngine(pickFirst)
	snap := &models.ProgressSnapshot{CaloriesBurned: 150}

	note := e.WorkoutNote(snap)
	if !strings.Contains(note, LowIntensityWorkouts[0]) {
		t.Errorf("WorkoutNote = %q, want suggestion %q", note, LowIntensityWorkouts[0])
	}
}

func TestWorkoutNoteThresholdIsExclusive(t *testing.T) {
	e := NewEngine(pickFirst)
	snap := &models.ProgressSnapshot{CaloriesBurned: LowBurnThresholdKcal}

	note := e.WorkoutNote(snap)
	if !strings.Contains(note, "Great workout") {
		t.Errorf("WorkoutNote at threshold = %q, want affirmative note", note)
	}
}

func TestPickerSelectsSuggestion(t *testing.T) {
	for i := range LowCalorieFoods {
		idx := i
		e := NewEngine(func(n int) int { return idx % n })
		snap := &models.ProgressSnapshot{CaloriesConsumed: 3000, CalorieGoalKcal: 2000}
		note := e.FoodNote(snap)
		if !strings.Contains(note, LowCalorieFoods[idx]) {
			t.Errorf("FoodNote with picker %d = %q, want %q", idx, note, LowCalorieFoods[idx])
		}
	}
}

func TestRecommendReturnsBothNotes(t *testing.T) {
	e := NewEngine(pickFirst)
	snap := &models.ProgressSnapshot{
		CaloriesConsumed: 2500,
		CalorieGoalKcal:  2000,
		CaloriesBurned:   100,
	}

	foodNote, workoutNote := e.Recommend(snap)
	if !strings.Contains(foodNote, LowCalorieFoods[0]) {
		t.Errorf("Recommend food note = %q, want %q", foodNote, LowCalorieFoods[0])
	}
	if !strings.Contains(workoutNote, LowIntensityWorkouts[0]) {
		t.Errorf("Recommend workout note = %q, want %q", workoutNote, LowIntensityWorkouts[0])
	}
}

func TestNilPickerDefaultsToRandom(t *testing.T) {
	e := NewEngine(nil)
	snap := &models.ProgressSnapshot{CaloriesConsumed: 2500, CalorieGoalKcal: 2000}

	note := e.FoodNote(snap)
	var found bool
	for _, food := range LowCalorieFoods {
		if strings.Contains(note, food) {
			found = true
			break
		}
	}
	if !found {
		t.Errorf("FoodNote = %q, want one of the low-calorie suggestions", note)
	}
}
