// Package targets derives daily water and calorie goals from a user's
// physical profile and the ambient temperature in their city.
package targets

import "math"

// Water goal adjustments, all in ml.
const (
	waterPerKg       = 25
	waterPerBlock    = 150 // per complete 30-minute activity block
	activityBlockMin = 30
	hotWeatherBonus  = 250 // above hotThresholdC
	coldWeatherMalus = 200 // below coldThresholdC
	hotThresholdC    = 25
	coldThresholdC   = 0
	maxWaterGoalML   = 4000
)

// Calorie multiplier bands over daily activity minutes. Bands are half-open:
// [0,30) [30,60) [60,120) [120,180) [180,inf).
const (
	bandLight    = 30
	bandModerate = 60
	bandActive   = 120
	bandIntense  = 180
)

// round2 rounds to 2 decimal places.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// WaterGoal computes the daily water goal in ml.
// Base is weight×25; each complete 30-minute activity block adds 150;
// heat above 25°C adds 250 and frost below 0°C removes 200. The result is
// capped at 4000 ml. There is deliberately no floor above zero beyond the
// formula itself.
func WaterGoal(weightKg, activityMinutes int, temperatureC float64) float64 {
	goal := float64(weightKg * waterPerKg)
	goal += float64(activityMinutes/activityBlockMin) * waterPerBlock

	if temperatureC > hotThresholdC {
		goal += hotWeatherBonus
	} else if temperatureC < coldThresholdC {
		goal -= coldWeatherMalus
	}

	return round2(math.Min(goal, maxWaterGoalML))
}

// CalorieGoal computes the daily calorie goal in kcal using the
// Mifflin-St Jeor basal rate scaled by an activity multiplier.
func CalorieGoal(weightKg, heightCm, ageYears, activityMinutes int) float64 {
	bmr := 10*float64(weightKg) + 6.25*float64(heightCm) - 5*float64(ageYears) + 5

	var multiplier float64
	switch {
	case activityMinutes < bandLight:
		multiplier = 1.2
	case activityMinutes < bandModerate:
		multiplier = 1.375
	case activityMinutes < bandActive:
		multiplier = 1.55
	case activityMinutes < bandIntense:
		multiplier = 1.725
	default:
		multiplier = 1.9
	}

	return round2(bmr * multiplier)
}

// Compute returns both daily goals for the given profile inputs.
func Compute(weightKg, heightCm, ageYears, activityMinutes int, temperatureC float64) (waterGoalML, calorieGoalKcal float64) {
	return WaterGoal(weightKg, activityMinutes, temperatureC), CalorieGoal(weightKg, heightCm, ageYears, activityMinutes)
}
