// Package recommend maps a progress snapshot to rule-based suggestions.
package recommend

import (
	"fmt"
	"math/rand"

	"github.com/vitality-lab/VitaTrack/internal/models"
)

// LowBurnThresholdKcal is the burned-calories level below which a workout is
// suggested.
const LowBurnThresholdKcal = 300

// LowCalorieFoods are the swap suggestions for an over-budget day.
var LowCalorieFoods = []string{
	"🥒 cucumber (15 kcal / 100 g)",
	"🥦 broccoli (34 kcal / 100 g)",
	"🍏 apple (52 kcal / 100 g)",
	"🥗 green salad (25 kcal / 100 g)",
	"🍓 strawberries (33 kcal / 100 g)",
	"🍊 orange (47 kcal / 100 g)",
	"🍅 tomato (18 kcal / 100 g)",
}

// LowIntensityWorkouts are the nudge suggestions for a low-burn day.
var LowIntensityWorkouts = []string{
	"🚶 a 30-minute walk",
	"🧘 20 minutes of yoga",
	"🏊 15 minutes of swimming",
	"🚴 a 20-minute bike ride",
	"🏋 a 10-minute strength session",
}

// Picker selects an index in [0, n). Injected so tests can pin the choice;
// production uses math/rand/v2.
type Picker func(n int) int

// Engine produces food and workout notes from a snapshot.
type Engine struct {
	pick Picker
}

// NewEngine creates an Engine with the given picker. A nil picker falls back
// to uniform randomness.
func NewEngine(pick Picker) *Engine {
	if pick == nil {
		pick = rand.Intn
	}
	return &Engine{pick: pick}
}

// FoodNote returns a warning with a low-calorie swap when the day's consumed
// calories exceed the goal, otherwise an affirmative note.
func (e *Engine) FoodNote(snap *models.ProgressSnapshot) string {
	if snap.CaloriesConsumed > snap.CalorieGoalKcal {
		food := LowCalorieFoods[e.pick(len(LowCalorieFoods))]
		return fmt.Sprintf("⚠️ You went over your calorie budget! Next time try %s instead.", food)
	}
	return "✅ Calories are within your budget!"
}

// WorkoutNote returns a low-intensity workout suggestion when the day's
// burned calories are below LowBurnThresholdKcal, otherwise an affirmative
// note.
func (e *Engine) WorkoutNote(snap *models.ProgressSnapshot) string {
	if snap.CaloriesBurned < LowBurnThresholdKcal {
		workout := LowIntensityWorkouts[e.pick(len(LowIntensityWorkouts))]
		return fmt.Sprintf("💡 To balance things out, try %s!", workout)
	}
	return "✅ Great workout today!"
}

// Recommend returns both notes for a snapshot.
func (e *Engine) Recommend(snap *models.ProgressSnapshot) (foodNote, workoutNote string) {
	return e.FoodNote(snap), e.WorkoutNote(snap)
}
