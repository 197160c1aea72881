package flow

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/vitality-lab/VitaTrack/internal/models"
	"github.com/vitality-lab/VitaTrack/internal/nutrition"
	"github.com/vitality-lab/VitaTrack/internal/session"
	"github.com/vitality-lab/VitaTrack/internal/store"
)

const testUserID int64 = 42

// fixedNow keeps log dates deterministic: 2025-02-05 in UTC.
var fixedNow = time.Date(2025, 2, 5, 12, 0, 0, 0, time.UTC)

type stubWeather struct {
	temp float64
	err  error
}

func (s stubWeather) Temperature(ctx context.Context, city string) (float64, error) {
	if s.err != nil {
		return 0, s.err
	}
	return s.temp, nil
}

type stubNutrition struct {
	info *nutrition.FoodInfo
	err  error
}

func (s stubNutrition) Lookup(ctx context.Context, query string) (*nutrition.FoodInfo, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.info, nil
}

func newTestEngine(w stubWeather, n stubNutrition) (*Engine, *store.InMemoryStore, session.Manager) {
	st := store.NewInMemoryStore()
	sessions := session.NewMemoryManager()
	e := NewEngine(sessions, st, w, n, time.UTC)
	e.now = func() time.Time { return fixedNow }
	return e, st, sessions
}

// advanceAll feeds inputs in order and returns the last outcome.
func advanceAll(t *testing.T, e *Engine, inputs ...string) Outcome {
	t.Helper()
	ctx := context.Background()
	var out Outcome
	var err error
	for _, in := range inputs {
		out, err = e.Advance(ctx, testUserID, in)
		if err != nil {
			t.Fatalf("Advance(%q) failed: %v", in, err)
		}
	}
	return out
}

func TestAdvanceWithoutSession(t *testing.T) {
	e, _, _ := newTestEngine(stubWeather{temp: 20}, stubNutrition{})

	_, err := e.Advance(context.Background(), testUserID, "hello")
	if !errors.Is(err, ErrNoActiveFlow) {
		t.Errorf("Advance without session: err = %v, want ErrNoActiveFlow", err)
	}
}

func TestStartUnknownFlow(t *testing.T) {
	e, _, _ := newTestEngine(stubWeather{temp: 20}, stubNutrition{})

	if _, err := e.Start(context.Background(), testUserID, models.FlowType("bogus")); err == nil {
		t.Error("Start with unknown flow type succeeded, want error")
	}
}

func TestStartReplacesActiveFlow(t *testing.T) {
	e, st, _ := newTestEngine(stubWeather{temp: 20}, stubNutrition{})
	ctx := context.Background()

	if _, err := e.Start(ctx, testUserID, models.FlowLogFood); err != nil {
		t.Fatalf("Start food failed: %v", err)
	}
	if _, err := e.Start(ctx, testUserID, models.FlowLogWater); err != nil {
		t.Fatalf("Start water failed: %v", err)
	}

	out := advanceAll(t, e, "250")
	if out.Kind != OutcomeCompleted {
		t.Fatalf("outcome kind = %v, want completed", out.Kind)
	}
	if out.Flow != models.FlowLogWater {
		t.Errorf("outcome flow = %v, want %v", out.Flow, models.FlowLogWater)
	}
	total, err := st.SumWater(testUserID, "2025-02-05")
	if err != nil {
		t.Fatalf("SumWater failed: %v", err)
	}
	if total != 250 {
		t.Errorf("SumWater = %v, want 250", total)
	}
}

func TestProfileFlowCompletes(t *testing.T) {
	e, st, sessions := newTestEngine(stubWeather{temp: 20}, stubNutrition{})
	ctx := context.Background()

	out, err := e.Start(ctx, testUserID, models.FlowProfileSetup)
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if out.Kind != OutcomePrompt {
		t.Fatalf("Start outcome kind = %v, want prompt", out.Kind)
	}

	out = advanceAll(t, e, "70", "175", "25", "45", "Berlin")
	if out.Kind != OutcomeCompleted {
		t.Fatalf("final outcome kind = %v, want completed", out.Kind)
	}
	if out.Note != "" {
		t.Errorf("Note = %q, want empty on successful weather lookup", out.Note)
	}

	profile, err := st.GetProfile(testUserID)
	if err != nil {
		t.Fatalf("GetProfile failed: %v", err)
	}
	if profile == nil {
		t.Fatal("profile not stored after completion")
	}
	if profile.WaterGoalML != 1900 {
		t.Errorf("WaterGoalML = %v, want 1900", profile.WaterGoalML)
	}
	if profile.CalorieGoalKcal != 2301.41 {
		t.Errorf("CalorieGoalKcal = %v, want 2301.41", profile.CalorieGoalKcal)
	}
	if profile.City != "Berlin" {
		t.Errorf("City = %q, want Berlin", profile.City)
	}

	sess, err := sessions.Get(ctx, testUserID)
	if err != nil {
		t.Fatalf("Get session failed: %v", err)
	}
	if sess != nil {
		t.Error("session not cleared after completion")
	}
}

func TestProfileFlowRepromptKeepsState(t *testing.T) {
	e, _, sessions := newTestEngine(stubWeather{temp: 20}, stubNutrition{})
	ctx := context.Background()

	if _, err := e.Start(ctx, testUserID, models.FlowProfileSetup); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	advanceAll(t, e, "70") // now at height

	out := advanceAll(t, e, "not a number")
	if out.Kind != OutcomeReprompt {
		t.Fatalf("outcome kind = %v, want reprompt", out.Kind)
	}

	sess, err := sessions.Get(ctx, testUserID)
	if err != nil {
		t.Fatalf("Get session failed: %v", err)
	}
	if sess == nil {
		t.Fatal("session gone after reprompt")
	}
	if sess.Step != StepProfileHeight {
		t.Errorf("step after reprompt = %q, want %q", sess.Step, StepProfileHeight)
	}
	if sess.Data[dataWeight] != "70" {
		t.Errorf("weight after reprompt = %q, want 70", sess.Data[dataWeight])
	}
	if _, ok := sess.Data[dataHeight]; ok {
		t.Error("height stored despite invalid input")
	}

	// The same step accepts a corrected answer.
	out = advanceAll(t, e, "175")
	if out.Kind != OutcomePrompt {
		t.Errorf("outcome after correction = %v, want prompt", out.Kind)
	}
}

func TestProfileFlowNegativeInputsReprompt(t *testing.T) {
	e, _, _ := newTestEngine(stubWeather{temp: 20}, stubNutrition{})
	ctx := context.Background()

	if _, err := e.Start(ctx, testUserID, models.FlowProfileSetup); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if out := advanceAll(t, e, "-5"); out.Kind != OutcomeReprompt {
		t.Errorf("negative weight: outcome = %v, want reprompt", out.Kind)
	}
	if out := advanceAll(t, e, "0"); out.Kind != OutcomeReprompt {
		t.Errorf("zero weight: outcome = %v, want reprompt", out.Kind)
	}

	// Activity accepts zero.
	out := advanceAll(t, e, "70", "175", "25", "0")
	if out.Kind != OutcomePrompt {
		t.Errorf("zero activity: outcome = %v, want prompt", out.Kind)
	}
}

func TestProfileFlowWeatherFallback(t *testing.T) {
	e, st, _ := newTestEngine(stubWeather{err: errors.New("upstream down")}, stubNutrition{})
	ctx := context.Background()

	if _, err := e.Start(ctx, testUserID, models.FlowProfileSetup); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	out := advanceAll(t, e, "70", "175", "25", "45", "Berlin")
	if out.Kind != OutcomeCompleted {
		t.Fatalf("outcome kind = %v, want completed", out.Kind)
	}
	if out.Note != TemperatureFallbackNote {
		t.Errorf("Note = %q, want temperature fallback note", out.Note)
	}

	// 20°C default means no hot or cold adjustment.
	profile, err := st.GetProfile(testUserID)
	if err != nil || profile == nil {
		t.Fatalf("GetProfile = %v, %v", profile, err)
	}
	if profile.WaterGoalML != 1900 {
		t.Errorf("WaterGoalML with fallback temp = %v, want 1900", profile.WaterGoalML)
	}
}

func TestWaterFlow(t *testing.T) {
	e, st, _ := newTestEngine(stubWeather{temp: 20}, stubNutrition{})
	ctx := context.Background()

	if _, err := e.Start(ctx, testUserID, models.FlowLogWater); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	out := advanceAll(t, e, "250")
	if out.Kind != OutcomeCompleted {
		t.Fatalf("outcome kind = %v, want completed", out.Kind)
	}

	entries := st.WaterEntries(testUserID, "2025-02-05")
	if len(entries) != 1 {
		t.Fatalf("stored %d water entries, want 1", len(entries))
	}
	if entries[0].AmountML != 250 {
		t.Errorf("AmountML = %d, want 250", entries[0].AmountML)
	}
	if !strings.Contains(out.Message, "250 ml") {
		t.Errorf("summary %q does not mention the added amount", out.Message)
	}
	// No profile yet, so the summary uses the fallback goal.
	if !strings.Contains(out.Message, "2000 ml") {
		t.Errorf("summary %q does not use the fallback goal", out.Message)
	}
}

func TestWaterFlowZeroAllowed(t *testing.T) {
	e, st, _ := newTestEngine(stubWeather{temp: 20}, stubNutrition{})
	ctx := context.Background()

	if _, err := e.Start(ctx, testUserID, models.FlowLogWater); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	out := advanceAll(t, e, "0")
	if out.Kind != OutcomeCompleted {
		t.Fatalf("outcome kind = %v, want completed", out.Kind)
	}
	if got := len(st.WaterEntries(testUserID, "2025-02-05")); got != 1 {
		t.Errorf("stored %d water entries, want 1", got)
	}
}

func TestWaterFlowRepromptOnGarbage(t *testing.T) {
	e, st, _ := newTestEngine(stubWeather{temp: 20}, stubNutrition{})
	ctx := context.Background()

	if _, err := e.Start(ctx, testUserID, models.FlowLogWater); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	for _, bad := range []string{"abc", "-10", "1.5"} {
		out := advanceAll(t, e, bad)
		if out.Kind != OutcomeReprompt {
			t.Errorf("input %q: outcome = %v, want reprompt", bad, out.Kind)
		}
	}
	if got := len(st.WaterEntries(testUserID, "2025-02-05")); got != 0 {
		t.Errorf("stored %d water entries after rejected input, want 0", got)
	}
}

func TestFoodFlow(t *testing.T) {
	e, st, _ := newTestEngine(stubWeather{temp: 20},
		stubNutrition{info: &nutrition.FoodInfo{Name: "Apple", CaloriesPer100g: 52}})
	ctx := context.Background()

	if _, err := e.Start(ctx, testUserID, models.FlowLogFood); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	out := advanceAll(t, e, "apple")
	if out.Kind != OutcomePrompt {
		t.Fatalf("outcome after lookup = %v, want prompt", out.Kind)
	}
	if !strings.Contains(out.Message, "Apple") || !strings.Contains(out.Message, "52.0") {
		t.Errorf("lookup prompt = %q, want product name and kcal", out.Message)
	}

	out = advanceAll(t, e, "150")
	if out.Kind != OutcomeCompleted {
		t.Fatalf("final outcome kind = %v, want completed", out.Kind)
	}
	total, err := st.SumFoodCalories(testUserID, "2025-02-05")
	if err != nil {
		t.Fatalf("SumFoodCalories failed: %v", err)
	}
	if total != 78 {
		t.Errorf("SumFoodCalories = %v, want 78 (52 kcal/100g × 150g)", total)
	}
}

func TestFoodFlowNotFoundAborts(t *testing.T) {
	e, _, sessions := newTestEngine(stubWeather{temp: 20},
		stubNutrition{err: nutrition.ErrNotFound})
	ctx := context.Background()

	if _, err := e.Start(ctx, testUserID, models.FlowLogFood); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	out := advanceAll(t, e, "xyzzy")
	if out.Kind != OutcomeAborted {
		t.Fatalf("outcome kind = %v, want aborted", out.Kind)
	}

	sess, err := sessions.Get(ctx, testUserID)
	if err != nil {
		t.Fatalf("Get session failed: %v", err)
	}
	if sess != nil {
		t.Error("session not cleared after aborted lookup")
	}
	// The flow is over; further input is not part of any dialogue.
	if _, err := e.Advance(ctx, testUserID, "150"); !errors.Is(err, ErrNoActiveFlow) {
		t.Errorf("Advance after abort: err = %v, want ErrNoActiveFlow", err)
	}
}

func TestFoodFlowLookupFailureAborts(t *testing.T) {
	e, _, sessions := newTestEngine(stubWeather{temp: 20},
		stubNutrition{err: errors.New("network down")})
	ctx := context.Background()

	if _, err := e.Start(ctx, testUserID, models.FlowLogFood); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	out := advanceAll(t, e, "apple")
	if out.Kind != OutcomeAborted {
		t.Fatalf("outcome kind = %v, want aborted", out.Kind)
	}
	if sess, _ := sessions.Get(ctx, testUserID); sess != nil {
		t.Error("session not cleared after failed lookup")
	}
}

func TestWorkoutFlow(t *testing.T) {
	e, st, _ := newTestEngine(stubWeather{temp: 20}, stubNutrition{})
	ctx := context.Background()

	tests := []struct {
		kind    string
		minutes string
		burned  float64
	}{
		{kind: "cardio", minutes: "20", burned: 200},
		{kind: "strength", minutes: "30", burned: 240},
		{kind: "other", minutes: "60", burned: 300},
	}

	var want float64
	for _, tt := range tests {
		if _, err := e.Start(ctx, testUserID, models.FlowLogWorkout); err != nil {
			t.Fatalf("Start failed: %v", err)
		}
		out := advanceAll(t, e, tt.kind, tt.minutes)
		if out.Kind != OutcomeCompleted {
			t.Fatalf("%s: outcome kind = %v, want completed", tt.kind, out.Kind)
		}
		want += tt.burned
		total, err := st.SumBurnedCalories(testUserID, "2025-02-05")
		if err != nil {
			t.Fatalf("SumBurnedCalories failed: %v", err)
		}
		if total != want {
			t.Errorf("after %s: SumBurnedCalories = %v, want %v", tt.kind, total, want)
		}
	}
}

func TestWorkoutFlowUnknownKindReprompts(t *testing.T) {
	e, _, sessions := newTestEngine(stubWeather{temp: 20}, stubNutrition{})
	ctx := context.Background()

	if _, err := e.Start(ctx, testUserID, models.FlowLogWorkout); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	out := advanceAll(t, e, "swimming")
	if out.Kind != OutcomeReprompt {
		t.Fatalf("outcome kind = %v, want reprompt", out.Kind)
	}
	sess, _ := sessions.Get(ctx, testUserID)
	if sess == nil || sess.Step != StepWorkoutKind {
		t.Errorf("session step = %v, want unchanged %q", sess, StepWorkoutKind)
	}

	// Kind matching is case-insensitive.
	out = advanceAll(t, e, "Cardio")
	if out.Kind != OutcomePrompt {
		t.Errorf("outcome for mixed-case kind = %v, want prompt", out.Kind)
	}
}

func TestCustomDateFlow(t *testing.T) {
	e, _, sessions := newTestEngine(stubWeather{temp: 20}, stubNutrition{})
	ctx := context.Background()

	if _, err := e.Start(ctx, testUserID, models.FlowCustomDate); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	out := advanceAll(t, e, "05-02-2025")
	if out.Kind != OutcomeCompleted {
		t.Fatalf("outcome kind = %v, want completed", out.Kind)
	}
	if out.ReportDate != "2025-02-05" {
		t.Errorf("ReportDate = %q, want 2025-02-05", out.ReportDate)
	}
	if sess, _ := sessions.Get(ctx, testUserID); sess != nil {
		t.Error("session not cleared after date completion")
	}
}

func TestCustomDateFlowRejectsMalformedInput(t *testing.T) {
	e, _, _ := newTestEngine(stubWeather{temp: 20}, stubNutrition{})
	ctx := context.Background()

	if _, err := e.Start(ctx, testUserID, models.FlowCustomDate); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	for _, bad := range []string{"2025-02-05", "5 Feb 2025", "32-01-2025", "hello"} {
		out := advanceAll(t, e, bad)
		if out.Kind != OutcomeReprompt {
			t.Errorf("input %q: outcome = %v, want reprompt", bad, out.Kind)
		}
	}
}

func TestAbortClearsSession(t *testing.T) {
	e, _, sessions := newTestEngine(stubWeather{temp: 20}, stubNutrition{})
	ctx := context.Background()

	if _, err := e.Start(ctx, testUserID, models.FlowLogWater); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := e.Abort(ctx, testUserID); err != nil {
		t.Fatalf("Abort failed: %v", err)
	}
	if sess, _ := sessions.Get(ctx, testUserID); sess != nil {
		t.Error("session survives Abort")
	}

	active, err := e.HasActiveFlow(ctx, testUserID)
	if err != nil {
		t.Fatalf("HasActiveFlow failed: %v", err)
	}
	if active {
		t.Error("HasActiveFlow = true after Abort")
	}
}
