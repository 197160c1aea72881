package flow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/vitality-lab/VitaTrack/internal/models"
	"github.com/vitality-lab/VitaTrack/internal/targets"
)

// TemperatureFallbackNote is surfaced when the weather lookup fails and the
// water goal is computed with the default temperature instead.
const TemperatureFallbackNote = "⚠ Couldn't fetch the temperature. Your water goal was computed without the weather adjustment."

// advanceProfile handles the five profile-setup steps. The final step (city)
// performs the temperature lookup, computes both targets, and replaces the
// stored profile wholesale.
func (e *Engine) advanceProfile(ctx context.Context, sess *models.Session, input string) (Outcome, error) {
	switch sess.Step {
	case StepProfileWeight:
		n, ok := parsePositiveInt(input)
		if !ok {
			return reprompt("❌ Please enter your weight as a positive whole number (kg)."), nil
		}
		sess.Data[dataWeight] = strconv.Itoa(n)
		sess.Step = StepProfileHeight
		if err := e.sessions.Save(ctx, *sess); err != nil {
			return Outcome{}, err
		}
		return Outcome{Kind: OutcomePrompt, Message: "Enter your height (cm):"}, nil

	case StepProfileHeight:
		n, ok := parsePositiveInt(input)
		if !ok {
			return reprompt("❌ Please enter your height as a positive whole number (cm)."), nil
		}
		sess.Data[dataHeight] = strconv.Itoa(n)
		sess.Step = StepProfileAge
		if err := e.sessions.Save(ctx, *sess); err != nil {
			return Outcome{}, err
		}
		return Outcome{Kind: OutcomePrompt, Message: "Enter your age:"}, nil

	case StepProfileAge:
		n, ok := parsePositiveInt(input)
		if !ok {
			return reprompt("❌ Please enter your age as a positive whole number."), nil
		}
		sess.Data[dataAge] = strconv.Itoa(n)
		sess.Step = StepProfileActivity
		if err := e.sessions.Save(ctx, *sess); err != nil {
			return Outcome{}, err
		}
		return Outcome{Kind: OutcomePrompt, Message: "How many minutes of activity do you get per day?"}, nil

	case StepProfileActivity:
		n, ok := parseNonNegativeInt(input)
		if !ok {
			return reprompt("❌ Please enter your daily activity in minutes (0 or more)."), nil
		}
		sess.Data[dataActivity] = strconv.Itoa(n)
		sess.Step = StepProfileCity
		if err := e.sessions.Save(ctx, *sess); err != nil {
			return Outcome{}, err
		}
		return Outcome{Kind: OutcomePrompt, Message: "Which city are you in?"}, nil

	case StepProfileCity:
		if input == "" {
			return reprompt("❌ Please enter a city name."), nil
		}
		return e.completeProfile(ctx, sess, input)

	default:
		return Outcome{}, errors.New("unknown profile step " + sess.Step)
	}
}

func (e *Engine) completeProfile(ctx context.Context, sess *models.Session, city string) (Outcome, error) {
	weight, _ := strconv.Atoi(sess.Data[dataWeight])
	height, _ := strconv.Atoi(sess.Data[dataHeight])
	age, _ := strconv.Atoi(sess.Data[dataAge])
	activity, _ := strconv.Atoi(sess.Data[dataActivity])

	var note string
	temp, err := e.weather.Temperature(ctx, city)
	if err != nil {
		slog.Warn("Profile completion using default temperature", "error", err, "userID", sess.UserID, "city", city)
		temp = models.DefaultTemperatureC
		note = TemperatureFallbackNote
	}

	waterGoal, calorieGoal := targets.Compute(weight, height, age, activity, temp)

	profile := models.UserProfile{
		UserID:          sess.UserID,
		WeightKg:        weight,
		HeightCm:        height,
		AgeYears:        age,
		ActivityMinutes: activity,
		City:            city,
		WaterGoalML:     waterGoal,
		CalorieGoalKcal: calorieGoal,
		UpdatedAt:       e.now(),
	}
	if err := e.store.UpsertProfile(profile); err != nil {
		// Session stays so the user can resubmit the city.
		return Outcome{}, fmt.Errorf("failed to save profile: %w", err)
	}
	if err := e.sessions.Clear(ctx, sess.UserID); err != nil {
		return Outcome{}, err
	}
	slog.Info("Profile flow completed", "userID", sess.UserID, "city", city,
		"water_goal_ml", waterGoal, "calorie_goal_kcal", calorieGoal)

	msg := fmt.Sprintf(
		"✅ Profile saved!\n"+
			"📍 City: %s (temperature: %.1f°C)\n"+
			"💧 Your daily water goal: %.2f ml\n"+
			"🔥 Your daily calorie goal: %.2f kcal",
		city, temp, waterGoal, calorieGoal)
	return Outcome{Kind: OutcomeCompleted, Message: msg, Note: note}, nil
}
