// Package store provides storage backends for VitaTrack.
//
// This file implements the PostgreSQL-backed store.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	_ "embed"

	"github.com/vitality-lab/VitaTrack/internal/models"
	_ "github.com/lib/pq"
)

//go:embed migrations_postgres.sql
var postgresMigrations string

// PostgresStore is a Store backed by a PostgreSQL database.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new PostgreSQL store with the given DSN.
func NewPostgresStore(opts ...Option) (*PostgresStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("NewPostgresStore invoked", "DSN_set", cfg.DSN != "")

	if cfg.DSN == "" {
		slog.Error("PostgresStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		slog.Error("Failed to open Postgres connection", "error", err)
		return nil, err
	}
	if err := db.Ping(); err != nil {
		slog.Error("Postgres ping failed", "error", err)
		return nil, err
	}

	slog.Debug("Running Postgres migrations")
	if _, err := db.Exec(postgresMigrations); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) UpsertProfile(p models.UserProfile) error {
	_, err := s.db.Exec(`
		INSERT INTO profiles
			(user_id, weight_kg, height_cm, age_years, activity_minutes, city, water_goal_ml, calorie_goal_kcal, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (user_id) DO UPDATE SET
			weight_kg = EXCLUDED.weight_kg,
			height_cm = EXCLUDED.height_cm,
			age_years = EXCLUDED.age_years,
			activity_minutes = EXCLUDED.activity_minutes,
			city = EXCLUDED.city,
			water_goal_ml = EXCLUDED.water_goal_ml,
			calorie_goal_kcal = EXCLUDED.calorie_goal_kcal,
			updated_at = EXCLUDED.updated_at`,
		p.UserID, p.WeightKg, p.HeightCm, p.AgeYears, p.ActivityMinutes, p.City, p.WaterGoalML, p.CalorieGoalKcal, p.UpdatedAt)
	if err != nil {
		slog.Error("PostgresStore UpsertProfile failed", "error", err, "userID", p.UserID)
		return fmt.Errorf("failed to upsert profile for %d: %w", p.UserID, err)
	}
	slog.Debug("PostgresStore UpsertProfile succeeded", "userID", p.UserID)
	return nil
}

func (s *PostgresStore) GetProfile(userID int64) (*models.UserProfile, error) {
	var p models.UserProfile
	err := s.db.QueryRow(`
		SELECT user_id, weight_kg, height_cm, age_years, activity_minutes, city, water_goal_ml, calorie_goal_kcal, updated_at
		FROM profiles WHERE user_id = $1`, userID).Scan(
		&p.UserID, &p.WeightKg, &p.HeightCm, &p.AgeYears, &p.ActivityMinutes, &p.City, &p.WaterGoalML, &p.CalorieGoalKcal, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		slog.Debug("PostgresStore GetProfile not found", "userID", userID)
		return nil, nil
	}
	if err != nil {
		slog.Error("PostgresStore GetProfile failed", "error", err, "userID", userID)
		return nil, err
	}
	return &p, nil
}

func (s *PostgresStore) AddWaterEntry(e models.WaterEntry) error {
	_, err := s.db.Exec(`INSERT INTO water_logs (user_id, logged_at, log_date, amount_ml) VALUES ($1, $2, $3, $4)`,
		e.UserID, e.LoggedAt, e.LogDate, e.AmountML)
	if err != nil {
		slog.Error("PostgresStore AddWaterEntry failed", "error", err, "userID", e.UserID)
		return fmt.Errorf("failed to insert water entry for %d: %w", e.UserID, err)
	}
	return nil
}

func (s *PostgresStore) AddFoodEntry(e models.FoodEntry) error {
	_, err := s.db.Exec(`INSERT INTO food_logs (user_id, logged_at, log_date, food_name, calories_kcal) VALUES ($1, $2, $3, $4, $5)`,
		e.UserID, e.LoggedAt, e.LogDate, e.FoodName, e.CaloriesKcal)
	if err != nil {
		slog.Error("PostgresStore AddFoodEntry failed", "error", err, "userID", e.UserID)
		return fmt.Errorf("failed to insert food entry for %d: %w", e.UserID, err)
	}
	return nil
}

func (s *PostgresStore) AddWorkoutEntry(e models.WorkoutEntry) error {
	_, err := s.db.Exec(`INSERT INTO workout_logs (user_id, logged_at, log_date, kind, duration_minutes, calories_burned) VALUES ($1, $2, $3, $4, $5, $6)`,
		e.UserID, e.LoggedAt, e.LogDate, string(e.Kind), e.DurationMinutes, e.CaloriesBurned)
	if err != nil {
		slog.Error("PostgresStore AddWorkoutEntry failed", "error", err, "userID", e.UserID)
		return fmt.Errorf("failed to insert workout entry for %d: %w", e.UserID, err)
	}
	return nil
}

func (s *PostgresStore) sumColumn(query string, userID int64, date string) (float64, error) {
	var total float64
	if err := s.db.QueryRow(query, userID, date).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func (s *PostgresStore) SumWater(userID int64, date string) (float64, error) {
	total, err := s.sumColumn(`SELECT COALESCE(SUM(amount_ml), 0) FROM water_logs WHERE user_id = $1 AND log_date = $2`, userID, date)
	if err != nil {
		slog.Error("PostgresStore SumWater failed", "error", err, "userID", userID, "date", date)
		return 0, fmt.Errorf("failed to sum water for %d on %s: %w", userID, date, err)
	}
	return total, nil
}

func (s *PostgresStore) SumFoodCalories(userID int64, date string) (float64, error) {
	total, err := s.sumColumn(`SELECT COALESCE(SUM(calories_kcal), 0) FROM food_logs WHERE user_id = $1 AND log_date = $2`, userID, date)
	if err != nil {
		slog.Error("PostgresStore SumFoodCalories failed", "error", err, "userID", userID, "date", date)
		return 0, fmt.Errorf("failed to sum food calories for %d on %s: %w", userID, date, err)
	}
	return total, nil
}

func (s *PostgresStore) SumBurnedCalories(userID int64, date string) (float64, error) {
	total, err := s.sumColumn(`SELECT COALESCE(SUM(calories_burned), 0) FROM workout_logs WHERE user_id = $1 AND log_date = $2`, userID, date)
	if err != nil {
		slog.Error("PostgresStore SumBurnedCalories failed", "error", err, "userID", userID, "date", date)
		return 0, fmt.Errorf("failed to sum burned calories for %d on %s: %w", userID, date, err)
	}
	return total, nil
}

// SaveSession stores or replaces the conversation session for a user.
func (s *PostgresStore) SaveSession(sess models.Session) error {
	var dataJSON string
	if len(sess.Data) > 0 {
		jsonBytes, err := json.Marshal(sess.Data)
		if err != nil {
			slog.Error("PostgresStore SaveSession JSON marshal failed", "error", err, "userID", sess.UserID)
			return err
		}
		dataJSON = string(jsonBytes)
	}

	_, err := s.db.Exec(`
		INSERT INTO sessions (user_id, flow, step, data, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id) DO UPDATE SET
			flow = EXCLUDED.flow,
			step = EXCLUDED.step,
			data = EXCLUDED.data,
			updated_at = EXCLUDED.updated_at`,
		sess.UserID, string(sess.Flow), sess.Step, dataJSON, sess.CreatedAt, sess.UpdatedAt)
	if err != nil {
		slog.Error("PostgresStore SaveSession failed", "error", err, "userID", sess.UserID, "flow", sess.Flow)
		return err
	}
	return nil
}

// GetSession retrieves the conversation session for a user.
func (s *PostgresStore) GetSession(userID int64) (*models.Session, error) {
	var sess models.Session
	var flow string
	var dataJSON sql.NullString

	err := s.db.QueryRow(`SELECT user_id, flow, step, data, created_at, updated_at FROM sessions WHERE user_id = $1`, userID).Scan(
		&sess.UserID, &flow, &sess.Step, &dataJSON, &sess.CreatedAt, &sess.UpdatedAt)
	if err == sql.ErrNoRows {
		slog.Debug("PostgresStore GetSession not found", "userID", userID)
		return nil, nil
	}
	if err != nil {
		slog.Error("PostgresStore GetSession failed", "error", err, "userID", userID)
		return nil, err
	}

	sess.Flow = models.FlowType(flow)
	if dataJSON.Valid && dataJSON.String != "" {
		sess.Data = make(map[string]string)
		if err := json.Unmarshal([]byte(dataJSON.String), &sess.Data); err != nil {
			slog.Error("PostgresStore GetSession JSON unmarshal failed", "error", err, "userID", userID)
			sess.Data = make(map[string]string)
		}
	}
	return &sess, nil
}

// DeleteSession removes the conversation session for a user.
func (s *PostgresStore) DeleteSession(userID int64) error {
	_, err := s.db.Exec(`DELETE FROM sessions WHERE user_id = $1`, userID)
	if err != nil {
		slog.Error("PostgresStore DeleteSession failed", "error", err, "userID", userID)
		return err
	}
	return nil
}

// Close closes the PostgreSQL database connection.
func (s *PostgresStore) Close() error {
	slog.Debug("Closing Postgres database connection")
	return s.db.Close()
}
