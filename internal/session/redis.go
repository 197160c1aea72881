// Package session provides per-user conversation state managers.
//
// This file implements a Redis-backed manager for deployments where dialogue
// state should live outside the relational store.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vitality-lab/VitaTrack/internal/models"
)

// DefaultSessionTTL bounds how long an abandoned dialogue survives in Redis.
const DefaultSessionTTL = 24 * time.Hour

// RedisConfig holds connection settings for the Redis session manager.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration // zero means DefaultSessionTTL
}

// RedisManager implements Manager on top of a Redis client. Sessions are
// stored as JSON under one key per user.
type RedisManager struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisManager creates a Redis-backed session manager and verifies the
// connection with a ping.
func NewRedisManager(ctx context.Context, cfg RedisConfig) (*RedisManager, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if _, err := client.Ping(ctx).Result(); err != nil {
		slog.Error("Redis session manager ping failed", "error", err, "addr", cfg.Addr)
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	slog.Debug("Redis session manager connected", "addr", cfg.Addr, "ttl", ttl)
	return &RedisManager{client: client, ttl: ttl}, nil
}

func sessionKey(userID int64) string {
	return fmt.Sprintf("vitatrack:session:%d", userID)
}

func (m *RedisManager) Get(ctx context.Context, userID int64) (*models.Session, error) {
	raw, err := m.client.Get(ctx, sessionKey(userID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		slog.Error("RedisManager Get failed", "error", err, "userID", userID)
		return nil, err
	}

	var s models.Session
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		slog.Error("RedisManager Get unmarshal failed", "error", err, "userID", userID)
		return nil, fmt.Errorf("failed to decode session for %d: %w", userID, err)
	}
	return &s, nil
}

func (m *RedisManager) Save(ctx context.Context, s models.Session) error {
	now := time.Now()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	s.UpdatedAt = now

	raw, err := json.Marshal(s)
	if err != nil {
		slog.Error("RedisManager Save marshal failed", "error", err, "userID", s.UserID)
		return err
	}
	if err := m.client.Set(ctx, sessionKey(s.UserID), raw, m.ttl).Err(); err != nil {
		slog.Error("RedisManager Save failed", "error", err, "userID", s.UserID, "flow", s.Flow)
		return err
	}
	slog.Debug("RedisManager Save succeeded", "userID", s.UserID, "flow", s.Flow, "step", s.Step)
	return nil
}

func (m *RedisManager) Clear(ctx context.Context, userID int64) error {
	if err := m.client.Del(ctx, sessionKey(userID)).Err(); err != nil {
		slog.Error("RedisManager Clear failed", "error", err, "userID", userID)
		return err
	}
	return nil
}

// Close closes the underlying Redis client.
func (m *RedisManager) Close() error {
	return m.client.Close()
}
