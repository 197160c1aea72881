// Package bot wires the Telegram transport to the conversation engine and
// the reporting components.
//
// Routing: commands and menu-button texts go to stateless handlers; any
// other text goes to the active dialogue flow when one exists. Callback
// queries carry date and workout-kind selections.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/vitality-lab/VitaTrack/internal/chart"
	"github.com/vitality-lab/VitaTrack/internal/flow"
	"github.com/vitality-lab/VitaTrack/internal/models"
	"github.com/vitality-lab/VitaTrack/internal/progress"
	"github.com/vitality-lab/VitaTrack/internal/recommend"
	"github.com/vitality-lab/VitaTrack/internal/store"
)

// Fixed user-facing texts.
const (
	greetingText = "👋 Hi! I'm your healthy-lifestyle assistant!\n" +
		"Fill out your profile so I can compute your daily water and calorie goals."
	noProfileText      = "❌ You don't have a profile yet. Use /set_profile."
	noFlowHintText     = "🤖 I didn't catch that. Use the menu or /start."
	genericFailureText = "⚠️ Something went wrong. Please try again."
	datePickText       = "📊 Pick a date to view your progress:"
)

// Bot is the Telegram front end.
type Bot struct {
	api         *tgbotapi.BotAPI
	engine      *flow.Engine
	aggregator  *progress.Aggregator
	recommender *recommend.Engine
	store       store.Store
	renderer    *chart.Renderer
	metrics     *Metrics
	loc         *time.Location
}

// New creates a Bot from an authorized Telegram API client and the core
// components.
func New(api *tgbotapi.BotAPI, engine *flow.Engine, aggregator *progress.Aggregator,
	recommender *recommend.Engine, st store.Store, renderer *chart.Renderer,
	metrics *Metrics, loc *time.Location) *Bot {
	if loc == nil {
		loc = time.Local
	}
	return &Bot{
		api:         api,
		engine:      engine,
		aggregator:  aggregator,
		recommender: recommender,
		store:       st,
		renderer:    renderer,
		metrics:     metrics,
		loc:         loc,
	}
}

// Run processes updates until the context is cancelled. Updates arrive in
// Telegram's per-chat order, so one user's dialogue is advanced sequentially.
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.api.GetUpdatesChan(u)

	slog.Info("Bot update loop started", "username", b.api.Self.UserName)
	for {
		select {
		case <-ctx.Done():
			slog.Info("Bot update loop stopping")
			b.api.StopReceivingUpdates()
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	start := time.Now()
	b.metrics.UpdatesProcessed.Inc()
	defer func() {
		b.metrics.UpdateProcessingTime.Observe(time.Since(start).Seconds())
	}()

	switch {
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil:
		b.handleMessage(ctx, update.Message)
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	userID := msg.From.ID
	chatID := msg.Chat.ID

	if msg.IsCommand() {
		b.handleCommand(ctx, msg)
		return
	}

	// Menu buttons behave like commands even mid-flow.
	switch msg.Text {
	case buttonRecommendations:
		b.metrics.CommandsProcessed.WithLabelValues("recommendations").Inc()
		b.sendRecommendations(ctx, chatID, userID)
		return
	case buttonProfile:
		b.metrics.CommandsProcessed.WithLabelValues("profile").Inc()
		b.sendProfile(chatID, userID)
		return
	case buttonRestart:
		b.metrics.CommandsProcessed.WithLabelValues("restart").Inc()
		b.restart(ctx, chatID, userID)
		return
	}

	outcome, err := b.engine.Advance(ctx, userID, msg.Text)
	if err != nil {
		if errors.Is(err, flow.ErrNoActiveFlow) {
			b.send(chatID, noFlowHintText)
			return
		}
		slog.Error("Bot flow advance failed", "error", err, "userID", userID)
		b.metrics.ErrorsTotal.Inc()
		b.send(chatID, genericFailureText)
		return
	}
	b.deliverOutcome(ctx, chatID, userID, outcome)
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	userID := msg.From.ID
	chatID := msg.Chat.ID
	command := msg.Command()
	b.metrics.CommandsProcessed.WithLabelValues(command).Inc()
	slog.Debug("Bot command received", "command", command, "userID", userID)

	switch command {
	case "start":
		reply := tgbotapi.NewMessage(chatID, greetingText)
		reply.ReplyMarkup = startKeyboard()
		b.sendMessage(reply)
	case "set_profile":
		b.startFlow(ctx, chatID, userID, models.FlowProfileSetup)
	case "log_water":
		b.startFlow(ctx, chatID, userID, models.FlowLogWater)
	case "log_food":
		b.startFlow(ctx, chatID, userID, models.FlowLogFood)
	case "log_workout":
		outcome, err := b.engine.Start(ctx, userID, models.FlowLogWorkout)
		if err != nil {
			slog.Error("Bot flow start failed", "error", err, "userID", userID, "flow", models.FlowLogWorkout)
			b.metrics.ErrorsTotal.Inc()
			b.send(chatID, genericFailureText)
			return
		}
		reply := tgbotapi.NewMessage(chatID, outcome.Message)
		reply.ReplyMarkup = workoutKeyboard()
		b.sendMessage(reply)
	case "check_progress":
		reply := tgbotapi.NewMessage(chatID, datePickText)
		reply.ReplyMarkup = dateKeyboard(time.Now().In(b.loc))
		b.sendMessage(reply)
	case "profile":
		b.sendProfile(chatID, userID)
	case "id":
		b.send(chatID, fmt.Sprintf("Your ID: %d", userID))
	default:
		b.send(chatID, noFlowHintText)
	}
}

func (b *Bot) handleCallback(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	// Acknowledge first so the client stops its spinner.
	if _, err := b.api.Request(tgbotapi.NewCallback(cq.ID, "")); err != nil {
		slog.Debug("Bot callback ack failed", "error", err)
	}
	if cq.Message == nil {
		return
	}
	userID := cq.From.ID
	chatID := cq.Message.Chat.ID
	data := cq.Data
	slog.Debug("Bot callback received", "data", data, "userID", userID)

	switch {
	case data == "set_profile":
		b.startFlow(ctx, chatID, userID, models.FlowProfileSetup)

	case data == "progress:custom":
		b.startFlow(ctx, chatID, userID, models.FlowCustomDate)

	case len(data) > len("progress:") && data[:len("progress:")] == "progress:":
		picked, err := time.ParseInLocation(flow.InputDateLayout, data[len("progress:"):], b.loc)
		if err != nil {
			b.send(chatID, genericFailureText)
			return
		}
		b.sendReport(ctx, chatID, userID, picked.Format(flow.StoreDateLayout))

	case len(data) > len("workout:") && data[:len("workout:")] == "workout:":
		outcome, err := b.engine.Advance(ctx, userID, data[len("workout:"):])
		if err != nil {
			if errors.Is(err, flow.ErrNoActiveFlow) {
				b.send(chatID, "🏋 Use /log_workout to start logging a workout.")
				return
			}
			slog.Error("Bot workout callback failed", "error", err, "userID", userID)
			b.metrics.ErrorsTotal.Inc()
			b.send(chatID, genericFailureText)
			return
		}
		b.deliverOutcome(ctx, chatID, userID, outcome)
	}
}

// startFlow begins a dialogue and sends its first prompt.
func (b *Bot) startFlow(ctx context.Context, chatID, userID int64, flowType models.FlowType) {
	outcome, err := b.engine.Start(ctx, userID, flowType)
	if err != nil {
		slog.Error("Bot flow start failed", "error", err, "userID", userID, "flow", flowType)
		b.metrics.ErrorsTotal.Inc()
		b.send(chatID, genericFailureText)
		return
	}
	b.send(chatID, outcome.Message)
}

// deliverOutcome surfaces a flow outcome to the chat and follows up on
// completions that request a report.
func (b *Bot) deliverOutcome(ctx context.Context, chatID, userID int64, outcome flow.Outcome) {
	if outcome.Note != "" {
		b.send(chatID, outcome.Note)
	}
	if outcome.Kind == flow.OutcomeCompleted {
		if outcome.ReportDate != "" {
			b.metrics.FlowCompletions.WithLabelValues(string(outcome.Flow)).Inc()
			b.sendReport(ctx, chatID, userID, outcome.ReportDate)
			return
		}
		b.metrics.FlowCompletions.WithLabelValues(string(outcome.Flow)).Inc()
		reply := tgbotapi.NewMessage(chatID, outcome.Message)
		reply.ReplyMarkup = mainMenuKeyboard()
		b.sendMessage(reply)
		return
	}
	if outcome.Message != "" {
		b.send(chatID, outcome.Message)
	}
}

// sendReport sends the progress text, the rendered chart, and the
// rule-based recommendations for the date (YYYY-MM-DD).
func (b *Bot) sendReport(ctx context.Context, chatID, userID int64, date string) {
	snap, err := b.aggregator.Snapshot(ctx, userID, date)
	if err != nil {
		if errors.Is(err, models.ErrNoProfile) {
			b.send(chatID, noProfileText)
			return
		}
		slog.Error("Bot report failed", "error", err, "userID", userID, "date", date)
		b.metrics.ErrorsTotal.Inc()
		b.send(chatID, genericFailureText)
		return
	}

	displayDate := date
	if parsed, err := time.ParseInLocation(flow.StoreDateLayout, date, b.loc); err == nil {
		displayDate = parsed.Format(flow.InputDateLayout)
	}

	foodNote, workoutNote := b.recommender.Recommend(snap)
	text := fmt.Sprintf(
		"📊 Progress for %s:\n"+
			"💧 Water: %.0f ml / %.0f ml\n"+
			"🍏 Calories eaten: %.2f kcal / %.2f kcal\n"+
			"🔥 Calories burned: %.0f kcal / %.0f kcal\n"+
			"⚖ Balance: %.2f kcal\n\n"+
			"🍏 Food: %s\n"+
			"🏋 Workouts: %s",
		displayDate,
		snap.WaterConsumedML, snap.WaterGoalML,
		snap.CaloriesConsumed, snap.CalorieGoalKcal,
		snap.CaloriesBurned, snap.BurnedGoalKcal,
		snap.Balance,
		foodNote, workoutNote)
	b.send(chatID, text)

	series := progress.BuildChartSeries(snap)
	png, err := b.renderer.Render(series.Labels, series.Goals, series.Actuals, series.Title)
	if err != nil {
		slog.Error("Bot chart render failed", "error", err, "userID", userID, "date", date)
		b.metrics.ErrorsTotal.Inc()
		return
	}
	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{Name: "progress.png", Bytes: png})
	photo.Caption = fmt.Sprintf("📊 Progress chart for %s", displayDate)
	if _, err := b.api.Send(photo); err != nil {
		slog.Error("Bot photo send failed", "error", err, "chatID", chatID)
		b.metrics.ErrorsTotal.Inc()
	}
}

// sendRecommendations sends today's food and workout notes.
func (b *Bot) sendRecommendations(ctx context.Context, chatID, userID int64) {
	date := time.Now().In(b.loc).Format(flow.StoreDateLayout)
	snap, err := b.aggregator.Snapshot(ctx, userID, date)
	if err != nil {
		if errors.Is(err, models.ErrNoProfile) {
			b.send(chatID, noProfileText)
			return
		}
		slog.Error("Bot recommendations failed", "error", err, "userID", userID)
		b.metrics.ErrorsTotal.Inc()
		b.send(chatID, genericFailureText)
		return
	}

	foodNote, workoutNote := b.recommender.Recommend(snap)
	b.send(chatID, fmt.Sprintf("📋 Recommendations for %s:\n🍏 Food: %s\n🏋 Workouts: %s", date, foodNote, workoutNote))
}

// sendProfile renders the stored profile.
func (b *Bot) sendProfile(chatID, userID int64) {
	profile, err := b.store.GetProfile(userID)
	if err != nil {
		slog.Error("Bot profile lookup failed", "error", err, "userID", userID)
		b.metrics.ErrorsTotal.Inc()
		b.send(chatID, genericFailureText)
		return
	}
	if profile == nil {
		b.send(chatID, noProfileText)
		return
	}

	text := fmt.Sprintf(
		"👤 YOUR PROFILE\n"+
			"━━━━━━━━━━━━━━━━━━━━\n"+
			"⚖️ Weight: %d kg\n"+
			"📏 Height: %d cm\n"+
			"🎂 Age: %d\n"+
			"🚴 Activity: %d min/day\n"+
			"📍 City: %s\n"+
			"━━━━━━━━━━━━━━━━━━━━\n"+
			"🍽 Calorie goal: %.2f kcal\n"+
			"💦 Water goal: %.2f ml",
		profile.WeightKg, profile.HeightCm, profile.AgeYears,
		profile.ActivityMinutes, profile.City,
		profile.CalorieGoalKcal, profile.WaterGoalML)
	b.send(chatID, text)
}

// restart drops any active dialogue and replays the greeting.
func (b *Bot) restart(ctx context.Context, chatID, userID int64) {
	if err := b.engine.Abort(ctx, userID); err != nil {
		slog.Error("Bot restart abort failed", "error", err, "userID", userID)
	}
	b.send(chatID, "🔄 Restarting...")
	reply := tgbotapi.NewMessage(chatID, greetingText)
	reply.ReplyMarkup = startKeyboard()
	b.sendMessage(reply)
}

func (b *Bot) send(chatID int64, text string) {
	b.sendMessage(tgbotapi.NewMessage(chatID, text))
}

func (b *Bot) sendMessage(msg tgbotapi.MessageConfig) {
	if _, err := b.api.Send(msg); err != nil {
		slog.Error("Bot message send failed", "error", err, "chatID", msg.ChatID)
		b.metrics.ErrorsTotal.Inc()
	}
}
