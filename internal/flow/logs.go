package flow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/vitality-lab/VitaTrack/internal/models"
	"github.com/vitality-lab/VitaTrack/internal/nutrition"
)

// advanceWater handles the single-step water flow. Zero is a valid amount.
func (e *Engine) advanceWater(ctx context.Context, sess *models.Session, input string) (Outcome, error) {
	amount, ok := parseNonNegativeInt(input)
	if !ok {
		return reprompt("❌ Please enter a number (ml of water)."), nil
	}

	now := e.now().In(e.loc)
	date := now.Format(StoreDateLayout)
	entry := models.WaterEntry{
		UserID:   sess.UserID,
		LoggedAt: now,
		LogDate:  date,
		AmountML: amount,
	}
	if err := e.store.AddWaterEntry(entry); err != nil {
		return Outcome{}, fmt.Errorf("failed to log water: %w", err)
	}
	if err := e.sessions.Clear(ctx, sess.UserID); err != nil {
		return Outcome{}, err
	}

	total, err := e.store.SumWater(sess.UserID, date)
	if err != nil {
		return Outcome{}, err
	}
	goal := float64(models.FallbackWaterGoalML)
	if profile, err := e.store.GetProfile(sess.UserID); err == nil && profile != nil {
		goal = profile.WaterGoalML
	}
	remaining := math.Max(0, goal-total)

	slog.Info("Water flow completed", "userID", sess.UserID, "amount_ml", amount, "total_ml", total)
	msg := fmt.Sprintf(
		"💦 Water progress (%s):\n"+
			"✅ Added: %d ml\n"+
			"💧 Total today: %.0f ml / %.0f ml\n"+
			"🔹 Remaining: %.0f ml",
		date, amount, total, goal, remaining)
	return Outcome{Kind: OutcomeCompleted, Message: msg}, nil
}

// advanceFood handles the two-step food flow: name lookup, then gram weight.
// A lookup miss terminates the flow; it is not a typo the user can fix.
func (e *Engine) advanceFood(ctx context.Context, sess *models.Session, input string) (Outcome, error) {
	switch sess.Step {
	case StepFoodName:
		if input == "" {
			return reprompt("❌ Please enter the product name."), nil
		}
		info, err := e.nutrition.Lookup(ctx, input)
		if err != nil {
			if !errors.Is(err, nutrition.ErrNotFound) {
				slog.Error("Food flow lookup failed", "error", err, "userID", sess.UserID, "query", input)
			}
			if clearErr := e.sessions.Clear(ctx, sess.UserID); clearErr != nil {
				return Outcome{}, clearErr
			}
			return Outcome{Kind: OutcomeAborted, Message: "❌ Couldn't find that product. Try /log_food again."}, nil
		}

		sess.Data[dataFoodName] = info.Name
		sess.Data[dataCaloriesPer100] = strconv.FormatFloat(info.CaloriesPer100g, 'f', -1, 64)
		sess.Step = StepFoodWeight
		if err := e.sessions.Save(ctx, *sess); err != nil {
			return Outcome{}, err
		}
		msg := fmt.Sprintf("🍏 %s has %.1f kcal per 100 g.\nEnter the weight (g):", info.Name, info.CaloriesPer100g)
		return Outcome{Kind: OutcomePrompt, Message: msg}, nil

	case StepFoodWeight:
		grams, ok := parsePositiveInt(input)
		if !ok {
			return reprompt("❌ Please enter a number (weight in grams)."), nil
		}
		per100, _ := strconv.ParseFloat(sess.Data[dataCaloriesPer100], 64)
		name := sess.Data[dataFoodName]
		calories := per100 * float64(grams) / 100

		now := e.now().In(e.loc)
		date := now.Format(StoreDateLayout)
		entry := models.FoodEntry{
			UserID:       sess.UserID,
			LoggedAt:     now,
			LogDate:      date,
			FoodName:     name,
			CaloriesKcal: calories,
		}
		if err := e.store.AddFoodEntry(entry); err != nil {
			return Outcome{}, fmt.Errorf("failed to log food: %w", err)
		}
		if err := e.sessions.Clear(ctx, sess.UserID); err != nil {
			return Outcome{}, err
		}

		total, err := e.store.SumFoodCalories(sess.UserID, date)
		if err != nil {
			return Outcome{}, err
		}
		goal := float64(models.FallbackCalorieGoalKcal)
		if profile, err := e.store.GetProfile(sess.UserID); err == nil && profile != nil {
			goal = profile.CalorieGoalKcal
		}
		remaining := math.Max(0, goal-total)

		slog.Info("Food flow completed", "userID", sess.UserID, "food", name, "kcal", calories)
		msg := fmt.Sprintf(
			"🍽 Calorie progress (%s):\n"+
				"✅ Added: %.2f kcal (%d g of %s)\n"+
				"🔥 Consumed today: %.2f kcal / %.0f kcal\n"+
				"🔹 Remaining: %.2f kcal",
			date, calories, grams, name, total, goal, remaining)
		return Outcome{Kind: OutcomeCompleted, Message: msg}, nil

	default:
		return Outcome{}, errors.New("unknown food step " + sess.Step)
	}
}

// advanceWorkout handles the two-step workout flow: kind from the fixed menu,
// then a duration in minutes.
func (e *Engine) advanceWorkout(ctx context.Context, sess *models.Session, input string) (Outcome, error) {
	switch sess.Step {
	case StepWorkoutKind:
		kind := models.WorkoutKind(strings.ToLower(input))
		if !models.IsValidWorkoutKind(kind) {
			return reprompt("❌ Please choose a workout type from the menu."), nil
		}
		sess.Data[dataWorkoutKind] = string(kind)
		sess.Step = StepWorkoutDuration
		if err := e.sessions.Save(ctx, *sess); err != nil {
			return Outcome{}, err
		}
		msg := fmt.Sprintf("⏳ Enter the %s workout duration (in minutes):", kind)
		return Outcome{Kind: OutcomePrompt, Message: msg}, nil

	case StepWorkoutDuration:
		minutes, ok := parsePositiveInt(input)
		if !ok {
			return reprompt("❌ Please enter a number (workout duration in minutes)."), nil
		}
		kind := models.WorkoutKind(sess.Data[dataWorkoutKind])
		burned := float64(minutes * kind.BurnRate())

		now := e.now().In(e.loc)
		date := now.Format(StoreDateLayout)
		entry := models.WorkoutEntry{
			UserID:          sess.UserID,
			LoggedAt:        now,
			LogDate:         date,
			Kind:            kind,
			DurationMinutes: minutes,
			CaloriesBurned:  burned,
		}
		if err := e.store.AddWorkoutEntry(entry); err != nil {
			return Outcome{}, fmt.Errorf("failed to log workout: %w", err)
		}
		if err := e.sessions.Clear(ctx, sess.UserID); err != nil {
			return Outcome{}, err
		}

		total, err := e.store.SumBurnedCalories(sess.UserID, date)
		if err != nil {
			return Outcome{}, err
		}

		slog.Info("Workout flow completed", "userID", sess.UserID, "kind", kind, "minutes", minutes, "burned", burned)
		msg := fmt.Sprintf(
			"🔥 Workout progress:\n"+
				"✅ Added: %.0f kcal (%d min of %s)\n"+
				"🏋 Burned today: %.0f kcal",
			burned, minutes, kind, total)
		return Outcome{Kind: OutcomeCompleted, Message: msg}, nil

	default:
		return Outcome{}, errors.New("unknown workout step " + sess.Step)
	}
}
