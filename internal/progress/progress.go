// Package progress aggregates logged entries into per-date snapshots.
package progress

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vitality-lab/VitaTrack/internal/models"
	"github.com/vitality-lab/VitaTrack/internal/store"
)

// Aggregator computes progress snapshots from stored targets and log sums.
type Aggregator struct {
	store store.Store
}

// NewAggregator creates an Aggregator backed by the given store.
func NewAggregator(st store.Store) *Aggregator {
	return &Aggregator{store: st}
}

// Snapshot computes the user's progress for one local calendar date
// (YYYY-MM-DD). It returns models.ErrNoProfile when the user has no stored
// profile; a date with no entries yields zero totals, not an error.
func (a *Aggregator) Snapshot(ctx context.Context, userID int64, date string) (*models.ProgressSnapshot, error) {
	slog.Debug("Aggregator Snapshot invoked", "userID", userID, "date", date)

	profile, err := a.store.GetProfile(userID)
	if err != nil {
		slog.Error("Aggregator Snapshot profile lookup failed", "error", err, "userID", userID)
		return nil, fmt.Errorf("failed to load profile for %d: %w", userID, err)
	}
	if profile == nil {
		slog.Debug("Aggregator Snapshot no profile", "userID", userID)
		return nil, models.ErrNoProfile
	}

	water, err := a.store.SumWater(userID, date)
	if err != nil {
		return nil, err
	}
	consumed, err := a.store.SumFoodCalories(userID, date)
	if err != nil {
		return nil, err
	}
	burned, err := a.store.SumBurnedCalories(userID, date)
	if err != nil {
		return nil, err
	}

	snap := &models.ProgressSnapshot{
		Date:             date,
		WaterConsumedML:  water,
		WaterGoalML:      profile.WaterGoalML,
		CaloriesConsumed: consumed,
		CalorieGoalKcal:  profile.CalorieGoalKcal,
		CaloriesBurned:   burned,
		BurnedGoalKcal:   models.BurnedGoalKcal,
		Balance:          consumed - burned,
	}
	slog.Debug("Aggregator Snapshot computed", "userID", userID, "date", date,
		"water", water, "consumed", consumed, "burned", burned)
	return snap, nil
}

// ChartSeries is the tuple handed to the chart renderer.
type ChartSeries struct {
	Labels  []string
	Goals   []float64
	Actuals []float64
	Title   string
}

// BuildChartSeries assembles the renderer input from a snapshot.
func BuildChartSeries(snap *models.ProgressSnapshot) ChartSeries {
	return ChartSeries{
		Labels:  []string{"Water (ml)", "Calories in", "Calories burned"},
		Goals:   []float64{snap.WaterGoalML, snap.CalorieGoalKcal, snap.BurnedGoalKcal},
		Actuals: []float64{snap.WaterConsumedML, snap.CaloriesConsumed, snap.CaloriesBurned},
		Title:   fmt.Sprintf("Progress for %s", snap.Date),
	}
}
