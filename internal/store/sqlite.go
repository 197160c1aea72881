// Package store provides storage backends for VitaTrack.
//
// This file implements the SQLite-backed store.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "embed"

	"github.com/vitality-lab/VitaTrack/internal/models"
	_ "github.com/mattn/go-sqlite3"
)

// DefaultDirPermissions defines the default permissions for database directories.
const DefaultDirPermissions = 0755

//go:embed migrations_sqlite.sql
var sqliteMigrations string

// SQLiteStore is a Store backed by a local SQLite database file.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store with the given DSN.
// The DSN should be a file path to the SQLite database file.
// If the directory doesn't exist, it will be created.
func NewSQLiteStore(opts ...Option) (*SQLiteStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("NewSQLiteStore invoked", "DSN_set", cfg.DSN != "")

	dsn := cfg.DSN
	if dsn == "" {
		slog.Error("SQLiteStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	dir := filepath.Dir(dsn)
	if err := os.MkdirAll(dir, DefaultDirPermissions); err != nil {
		slog.Error("Failed to create database directory", "error", err, "dir", dir)
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		slog.Error("Failed to open SQLite connection", "error", err)
		return nil, err
	}
	if err := db.Ping(); err != nil {
		slog.Error("SQLite ping failed", "error", err)
		return nil, err
	}

	slog.Debug("Running SQLite migrations")
	if _, err := db.Exec(sqliteMigrations); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("SQLite migrations applied successfully")

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) UpsertProfile(p models.UserProfile) error {
	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO profiles
			(user_id, weight_kg, height_cm, age_years, activity_minutes, city, water_goal_ml, calorie_goal_kcal, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.UserID, p.WeightKg, p.HeightCm, p.AgeYears, p.ActivityMinutes, p.City, p.WaterGoalML, p.CalorieGoalKcal, p.UpdatedAt)
	if err != nil {
		slog.Error("SQLiteStore UpsertProfile failed", "error", err, "userID", p.UserID)
		return fmt.Errorf("failed to upsert profile for %d: %w", p.UserID, err)
	}
	slog.Debug("SQLiteStore UpsertProfile succeeded", "userID", p.UserID)
	return nil
}

func (s *SQLiteStore) GetProfile(userID int64) (*models.UserProfile, error) {
	var p models.UserProfile
	err := s.db.QueryRow(`
		SELECT user_id, weight_kg, height_cm, age_years, activity_minutes, city, water_goal_ml, calorie_goal_kcal, updated_at
		FROM profiles WHERE user_id = ?`, userID).Scan(
		&p.UserID, &p.WeightKg, &p.HeightCm, &p.AgeYears, &p.ActivityMinutes, &p.City, &p.WaterGoalML, &p.CalorieGoalKcal, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		slog.Debug("SQLiteStore GetProfile not found", "userID", userID)
		return nil, nil
	}
	if err != nil {
		slog.Error("SQLiteStore GetProfile failed", "error", err, "userID", userID)
		return nil, err
	}
	return &p, nil
}

func (s *SQLiteStore) AddWaterEntry(e models.WaterEntry) error {
	_, err := s.db.Exec(`INSERT INTO water_logs (user_id, logged_at, log_date, amount_ml) VALUES (?, ?, ?, ?)`,
		e.UserID, e.LoggedAt, e.LogDate, e.AmountML)
	if err != nil {
		slog.Error("SQLiteStore AddWaterEntry failed", "error", err, "userID", e.UserID)
		return fmt.Errorf("failed to insert water entry for %d: %w", e.UserID, err)
	}
	slog.Debug("SQLiteStore AddWaterEntry succeeded", "userID", e.UserID, "amount_ml", e.AmountML)
	return nil
}

func (s *SQLiteStore) AddFoodEntry(e models.FoodEntry) error {
	_, err := s.db.Exec(`INSERT INTO food_logs (user_id, logged_at, log_date, food_name, calories_kcal) VALUES (?, ?, ?, ?, ?)`,
		e.UserID, e.LoggedAt, e.LogDate, e.FoodName, e.CaloriesKcal)
	if err != nil {
		slog.Error("SQLiteStore AddFoodEntry failed", "error", err, "userID", e.UserID)
		return fmt.Errorf("failed to insert food entry for %d: %w", e.UserID, err)
	}
	slog.Debug("SQLiteStore AddFoodEntry succeeded", "userID", e.UserID, "food", e.FoodName)
	return nil
}

func (s *SQLiteStore) AddWorkoutEntry(e models.WorkoutEntry) error {
	_, err := s.db.Exec(`INSERT INTO workout_logs (user_id, logged_at, log_date, kind, duration_minutes, calories_burned) VALUES (?, ?, ?, ?, ?, ?)`,
		e.UserID, e.LoggedAt, e.LogDate, string(e.Kind), e.DurationMinutes, e.CaloriesBurned)
	if err != nil {
		slog.Error("SQLiteStore AddWorkoutEntry failed", "error", err, "userID", e.UserID)
		return fmt.Errorf("failed to insert workout entry for %d: %w", e.UserID, err)
	}
	slog.Debug("SQLiteStore AddWorkoutEntry succeeded", "userID", e.UserID, "kind", e.Kind)
	return nil
}

func (s *SQLiteStore) sumColumn(query string, userID int64, date string) (float64, error) {
	var total float64
	if err := s.db.QueryRow(query, userID, date).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func (s *SQLiteStore) SumWater(userID int64, date string) (float64, error) {
	total, err := s.sumColumn(`SELECT COALESCE(SUM(amount_ml), 0) FROM water_logs WHERE user_id = ? AND log_date = ?`, userID, date)
	if err != nil {
		slog.Error("SQLiteStore SumWater failed", "error", err, "userID", userID, "date", date)
		return 0, fmt.Errorf("failed to sum water for %d on %s: %w", userID, date, err)
	}
	return total, nil
}

func (s *SQLiteStore) SumFoodCalories(userID int64, date string) (float64, error) {
	total, err := s.sumColumn(`SELECT COALESCE(SUM(calories_kcal), 0) FROM food_logs WHERE user_id = ? AND log_date = ?`, userID, date)
	if err != nil {
		slog.Error("SQLiteStore SumFoodCalories failed", "error", err, "userID", userID, "date", date)
		return 0, fmt.Errorf("failed to sum food calories for %d on %s: %w", userID, date, err)
	}
	return total, nil
}

func (s *SQLiteStore) SumBurnedCalories(userID int64, date string) (float64, error) {
	total, err := s.sumColumn(`SELECT COALESCE(SUM(calories_burned), 0) FROM workout_logs WHERE user_id = ? AND log_date = ?`, userID, date)
	if err != nil {
		slog.Error("SQLiteStore SumBurnedCalories failed", "error", err, "userID", userID, "date", date)
		return 0, fmt.Errorf("failed to sum burned calories for %d on %s: %w", userID, date, err)
	}
	return total, nil
}

// SaveSession stores or replaces the conversation session for a user.
func (s *SQLiteStore) SaveSession(sess models.Session) error {
	var dataJSON string
	if len(sess.Data) > 0 {
		jsonBytes, err := json.Marshal(sess.Data)
		if err != nil {
			slog.Error("SQLiteStore SaveSession JSON marshal failed", "error", err, "userID", sess.UserID)
			return err
		}
		dataJSON = string(jsonBytes)
	}

	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO sessions (user_id, flow, step, data, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		sess.UserID, string(sess.Flow), sess.Step, dataJSON, sess.CreatedAt, sess.UpdatedAt)
	if err != nil {
		slog.Error("SQLiteStore SaveSession failed", "error", err, "userID", sess.UserID, "flow", sess.Flow)
		return err
	}
	slog.Debug("SQLiteStore SaveSession succeeded", "userID", sess.UserID, "flow", sess.Flow, "step", sess.Step)
	return nil
}

// GetSession retrieves the conversation session for a user.
func (s *SQLiteStore) GetSession(userID int64) (*models.Session, error) {
	var sess models.Session
	var flow, dataJSON string

	err := s.db.QueryRow(`SELECT user_id, flow, step, data, created_at, updated_at FROM sessions WHERE user_id = ?`, userID).Scan(
		&sess.UserID, &flow, &sess.Step, &dataJSON, &sess.CreatedAt, &sess.UpdatedAt)
	if err == sql.ErrNoRows {
		slog.Debug("SQLiteStore GetSession not found", "userID", userID)
		return nil, nil
	}
	if err != nil {
		slog.Error("SQLiteStore GetSession failed", "error", err, "userID", userID)
		return nil, err
	}

	sess.Flow = models.FlowType(flow)
	if dataJSON != "" {
		sess.Data = make(map[string]string)
		if err := json.Unmarshal([]byte(dataJSON), &sess.Data); err != nil {
			slog.Error("SQLiteStore GetSession JSON unmarshal failed", "error", err, "userID", userID)
			// Continue with empty map rather than failing
			sess.Data = make(map[string]string)
		}
	}
	return &sess, nil
}

// DeleteSession removes the conversation session for a user.
func (s *SQLiteStore) DeleteSession(userID int64) error {
	_, err := s.db.Exec(`DELETE FROM sessions WHERE user_id = ?`, userID)
	if err != nil {
		slog.Error("SQLiteStore DeleteSession failed", "error", err, "userID", userID)
		return err
	}
	slog.Debug("SQLiteStore DeleteSession succeeded", "userID", userID)
	return nil
}

// Close closes the SQLite database connection.
func (s *SQLiteStore) Close() error {
	slog.Debug("Closing SQLite database connection")
	err := s.db.Close()
	if err != nil {
		slog.Error("Failed to close SQLite database", "error", err)
	}
	return err
}
