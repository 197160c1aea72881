// Package flow implements the multi-step dialogue state machine that drives
// profile setup, intake logging, and report-date collection.
//
// Each flow is a fixed sequence of steps; every step validates and parses one
// answer. Invalid input re-prompts in place without touching the session.
// Completion persists the result and then clears the session, in that order.
package flow

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/vitality-lab/VitaTrack/internal/models"
	"github.com/vitality-lab/VitaTrack/internal/nutrition"
	"github.com/vitality-lab/VitaTrack/internal/session"
	"github.com/vitality-lab/VitaTrack/internal/store"
	"github.com/vitality-lab/VitaTrack/internal/weather"
)

// Step constants for all flows.
const (
	StepProfileWeight   = "PROFILE_WEIGHT"
	StepProfileHeight   = "PROFILE_HEIGHT"
	StepProfileAge      = "PROFILE_AGE"
	StepProfileActivity = "PROFILE_ACTIVITY"
	StepProfileCity     = "PROFILE_CITY"
	StepWaterAmount     = "WATER_AMOUNT"
	StepFoodName        = "FOOD_NAME"
	StepFoodWeight      = "FOOD_WEIGHT"
	StepWorkoutKind     = "WORKOUT_KIND"
	StepWorkoutDuration = "WORKOUT_DURATION"
	StepReportDate      = "REPORT_DATE"
)

// Keys for collected answers in session data.
const (
	dataWeight         = "weight"
	dataHeight         = "height"
	dataAge            = "age"
	dataActivity       = "activity"
	dataFoodName       = "food_name"
	dataCaloriesPer100 = "calories_per_100g"
	dataWorkoutKind    = "workout_kind"
)

// Date layouts: what users type and what the store keys sums by.
const (
	InputDateLayout = "02-01-2006"
	StoreDateLayout = "2006-01-02"
)

// ErrNoActiveFlow is returned by Advance when the user has no session; the
// caller should route the input to stateless command handling instead.
var ErrNoActiveFlow = errors.New("no active flow for user")

// OutcomeKind classifies the result of one engine step.
type OutcomeKind string

const (
	// OutcomePrompt means the flow advanced and Message asks the next question.
	OutcomePrompt OutcomeKind = "prompt"
	// OutcomeReprompt means validation failed; state is unchanged and Message
	// repeats the step's fixed error text.
	OutcomeReprompt OutcomeKind = "reprompt"
	// OutcomeCompleted means the flow finished and its result was persisted.
	OutcomeCompleted OutcomeKind = "completed"
	// OutcomeAborted means the flow terminated early without a result.
	OutcomeAborted OutcomeKind = "aborted"
)

// Outcome is the engine's answer to one inbound message.
type Outcome struct {
	Kind    OutcomeKind
	Flow    models.FlowType
	Message string
	// Note carries an advisory the transport should surface before Message
	// (e.g. the weather-fallback warning). Empty for most outcomes.
	Note string
	// ReportDate is set only when the custom-date flow completes; it holds
	// the requested date in StoreDateLayout for report generation.
	ReportDate string
}

// Engine advances per-user dialogues. It owns no ambient state: sessions,
// storage, and lookups are all injected.
type Engine struct {
	sessions  session.Manager
	store     store.Store
	weather   weather.Service
	nutrition nutrition.Service
	loc       *time.Location
	now       func() time.Time
}

// NewEngine creates a conversation engine.
func NewEngine(sessions session.Manager, st store.Store, w weather.Service, n nutrition.Service, loc *time.Location) *Engine {
	if loc == nil {
		loc = time.Local
	}
	return &Engine{
		sessions:  sessions,
		store:     st,
		weather:   w,
		nutrition: n,
		loc:       loc,
		now:       time.Now,
	}
}

// HasActiveFlow reports whether the user has a dialogue in progress.
func (e *Engine) HasActiveFlow(ctx context.Context, userID int64) (bool, error) {
	sess, err := e.sessions.Get(ctx, userID)
	if err != nil {
		return false, err
	}
	return sess != nil, nil
}

// Start begins a flow for the user, replacing any active session (last
// command wins), and returns the first prompt.
func (e *Engine) Start(ctx context.Context, userID int64, flowType models.FlowType) (Outcome, error) {
	if !models.IsValidFlowType(flowType) {
		return Outcome{}, errors.New("unknown flow type " + string(flowType))
	}
	slog.Debug("Flow Start", "userID", userID, "flow", flowType)

	sess := models.Session{
		UserID: userID,
		Flow:   flowType,
		Step:   firstStep(flowType),
		Data:   make(map[string]string),
	}
	if err := e.sessions.Save(ctx, sess); err != nil {
		return Outcome{}, err
	}
	return Outcome{Kind: OutcomePrompt, Flow: flowType, Message: firstPrompt(flowType)}, nil
}

// Advance feeds one answer into the user's active flow. It returns
// ErrNoActiveFlow when no dialogue is in progress.
func (e *Engine) Advance(ctx context.Context, userID int64, input string) (Outcome, error) {
	sess, err := e.sessions.Get(ctx, userID)
	if err != nil {
		return Outcome{}, err
	}
	if sess == nil {
		return Outcome{}, ErrNoActiveFlow
	}
	slog.Debug("Flow Advance", "userID", userID, "flow", sess.Flow, "step", sess.Step)

	input = strings.TrimSpace(input)
	var outcome Outcome
	switch sess.Flow {
	case models.FlowProfileSetup:
		outcome, err = e.advanceProfile(ctx, sess, input)
	case models.FlowLogWater:
		outcome, err = e.advanceWater(ctx, sess, input)
	case models.FlowLogFood:
		outcome, err = e.advanceFood(ctx, sess, input)
	case models.FlowLogWorkout:
		outcome, err = e.advanceWorkout(ctx, sess, input)
	case models.FlowCustomDate:
		outcome, err = e.advanceCustomDate(ctx, sess, input)
	default:
		// Unknown flow in storage; drop it rather than wedging the user.
		slog.Error("Flow Advance unknown flow in session", "userID", userID, "flow", sess.Flow)
		if err := e.sessions.Clear(ctx, userID); err != nil {
			return Outcome{}, err
		}
		return Outcome{}, ErrNoActiveFlow
	}
	if err != nil {
		return Outcome{}, err
	}
	outcome.Flow = sess.Flow
	return outcome, nil
}

// Abort discards the user's active session, if any.
func (e *Engine) Abort(ctx context.Context, userID int64) error {
	return e.sessions.Clear(ctx, userID)
}

func firstStep(ft models.FlowType) string {
	switch ft {
	case models.FlowProfileSetup:
		return StepProfileWeight
	case models.FlowLogWater:
		return StepWaterAmount
	case models.FlowLogFood:
		return StepFoodName
	case models.FlowLogWorkout:
		return StepWorkoutKind
	default:
		return StepReportDate
	}
}

func firstPrompt(ft models.FlowType) string {
	switch ft {
	case models.FlowProfileSetup:
		return "Enter your weight (kg):"
	case models.FlowLogWater:
		return "💦 How many ml of water did you drink?"
	case models.FlowLogFood:
		return "🍽 Enter the product name:"
	case models.FlowLogWorkout:
		return "🏋 Choose a workout type:"
	default:
		return "📅 Enter a date in DD-MM-YYYY format (e.g., 05-02-2025):"
	}
}

// parsePositiveInt parses a strictly positive integer.
func parsePositiveInt(s string) (int, bool) {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// parseNonNegativeInt parses a zero-or-positive integer.
func parseNonNegativeInt(s string) (int, bool) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// today returns the current local calendar date in StoreDateLayout.
func (e *Engine) today() string {
	return e.now().In(e.loc).Format(StoreDateLayout)
}

// reprompt leaves the session untouched and repeats the step's error text.
func reprompt(msg string) Outcome {
	return Outcome{Kind: OutcomeReprompt, Message: msg}
}
