package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"

	"github.com/vitality-lab/VitaTrack/internal/bot"
	"github.com/vitality-lab/VitaTrack/internal/chart"
	"github.com/vitality-lab/VitaTrack/internal/flow"
	"github.com/vitality-lab/VitaTrack/internal/nutrition"
	"github.com/vitality-lab/VitaTrack/internal/progress"
	"github.com/vitality-lab/VitaTrack/internal/recommend"
	"github.com/vitality-lab/VitaTrack/internal/session"
	"github.com/vitality-lab/VitaTrack/internal/store"
	"github.com/vitality-lab/VitaTrack/internal/weather"
)

// Default configuration constants
const (
	// DefaultStateDir is the default directory for VitaTrack state data
	DefaultStateDir = "/var/lib/vitatrack"
	// DefaultDBFileName is the default SQLite database filename
	DefaultDBFileName = "vitatrack.db"
	// DefaultTimezone keys the per-day aggregation of log entries
	DefaultTimezone = "Europe/Moscow"
)

func main() {
	initializeLogger()

	config := loadEnvironmentConfig()
	flags := parseCommandLineFlags(config)

	if err := run(flags); err != nil {
		slog.Error("VitaTrack failed to run", "error", err)
		os.Exit(1)
	}
	slog.Info("VitaTrack exited successfully")
}

// Config holds environment configuration
type Config struct {
	BotToken    string
	WeatherKey  string
	DatabaseURL string
	StateDir    string
	Timezone    string
	RedisAddr   string
	MetricsAddr string
}

// Flags holds command line flag values
type Flags struct {
	botToken    *string
	weatherKey  *string
	dbDSN       *string
	stateDir    *string
	timezone    *string
	redisAddr   *string
	metricsAddr *string
}

// initializeLogger sets up structured logging
func initializeLogger() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)
}

// loadEnvironmentConfig loads configuration from environment variables and .env file
func loadEnvironmentConfig() Config {
	if err := godotenv.Load(); err != nil {
		slog.Debug("failed to load .env file", "error", err)
	}

	config := Config{
		BotToken:    os.Getenv("BOT_TOKEN"),
		WeatherKey:  os.Getenv("OPENWEATHER_API_KEY"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		StateDir:    os.Getenv("VITATRACK_STATE_DIR"),
		Timezone:    os.Getenv("VITATRACK_TZ"),
		RedisAddr:   os.Getenv("REDIS_ADDR"),
		MetricsAddr: os.Getenv("METRICS_ADDR"),
	}

	if config.StateDir == "" {
		config.StateDir = DefaultStateDir
	}
	if config.Timezone == "" {
		config.Timezone = DefaultTimezone
	}
	// If no database URL is provided, default to SQLite in the state directory
	if config.DatabaseURL == "" {
		config.DatabaseURL = filepath.Join(config.StateDir, DefaultDBFileName)
		slog.Debug("No database DSN provided, defaulting to SQLite", "sqlite_path", config.DatabaseURL)
	}

	slog.Debug("environment variables loaded",
		"BOT_TOKEN_SET", config.BotToken != "",
		"OPENWEATHER_API_KEY_SET", config.WeatherKey != "",
		"DATABASE_URL_SET", config.DatabaseURL != "",
		"VITATRACK_STATE_DIR", config.StateDir,
		"VITATRACK_TZ", config.Timezone,
		"REDIS_ADDR", config.RedisAddr,
		"METRICS_ADDR", config.MetricsAddr)

	return config
}

// parseCommandLineFlags parses command line arguments with environment defaults
func parseCommandLineFlags(config Config) Flags {
	flags := Flags{
		botToken:    flag.String("bot-token", config.BotToken, "Telegram bot token (overrides $BOT_TOKEN)"),
		weatherKey:  flag.String("openweather-api-key", config.WeatherKey, "OpenWeatherMap API key (overrides $OPENWEATHER_API_KEY)"),
		dbDSN:       flag.String("db-dsn", config.DatabaseURL, "database DSN: SQLite path or Postgres URL (overrides $DATABASE_URL)"),
		stateDir:    flag.String("state-dir", config.StateDir, "state directory for VitaTrack data (overrides $VITATRACK_STATE_DIR)"),
		timezone:    flag.String("timezone", config.Timezone, "IANA time zone for daily aggregation (overrides $VITATRACK_TZ)"),
		redisAddr:   flag.String("redis-addr", config.RedisAddr, "Redis address for session storage; empty keeps sessions in the database (overrides $REDIS_ADDR)"),
		metricsAddr: flag.String("metrics-addr", config.MetricsAddr, "address for the Prometheus /metrics endpoint; empty disables it (overrides $METRICS_ADDR)"),
	}
	flag.Parse()
	return flags
}

// buildStore selects a storage backend from the DSN.
func buildStore(dsn string) (store.Store, error) {
	if dsn == "" {
		slog.Debug("No database DSN provided, using in-memory store")
		return store.NewInMemoryStore(), nil
	}
	if store.DetectDSNType(dsn) == "postgres" {
		slog.Debug("Detected PostgreSQL DSN", "dsn_type", "postgresql")
		return store.NewPostgresStore(store.WithPostgresDSN(dsn))
	}
	slog.Debug("Detected SQLite DSN", "dsn_type", "sqlite", "db_path", dsn)
	return store.NewSQLiteStore(store.WithSQLiteDSN(dsn))
}

// buildSessionManager prefers Redis when configured, otherwise keeps
// sessions alongside the rest of the data.
func buildSessionManager(ctx context.Context, redisAddr string, st store.Store) (session.Manager, error) {
	if redisAddr == "" {
		return session.NewStoreManager(st), nil
	}
	return session.NewRedisManager(ctx, session.RedisConfig{Addr: redisAddr})
}

func run(flags Flags) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	loc, err := time.LoadLocation(*flags.timezone)
	if err != nil {
		slog.Warn("Invalid time zone, falling back to UTC", "timezone", *flags.timezone, "error", err)
		loc = time.UTC
	}

	st, err := buildStore(*flags.dbDSN)
	if err != nil {
		return err
	}
	defer st.Close()

	sessions, err := buildSessionManager(ctx, *flags.redisAddr, st)
	if err != nil {
		return err
	}

	weatherClient := weather.NewClient(weather.WithAPIKey(*flags.weatherKey))
	nutritionClient := nutrition.NewClient()

	engine := flow.NewEngine(sessions, st, weatherClient, nutritionClient, loc)
	aggregator := progress.NewAggregator(st)
	recommender := recommend.NewEngine(nil)
	renderer := chart.NewRenderer()
	metrics := bot.NewMetrics()

	if *flags.metricsAddr != "" {
		go bot.ServeMetrics(*flags.metricsAddr)
	}

	api, err := tgbotapi.NewBotAPI(*flags.botToken)
	if err != nil {
		return err
	}
	slog.Info("Telegram bot authorized", "username", api.Self.UserName)

	b := bot.New(api, engine, aggregator, recommender, st, renderer, metrics, loc)
	if err := b.Run(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}
