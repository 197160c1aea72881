package flow

import (
	"context"
	"time"

	"github.com/vitality-lab/VitaTrack/internal/models"
)

// advanceCustomDate handles the single-step report-date flow. The input must
// match InputDateLayout exactly; success hands the date off for report
// generation via Outcome.ReportDate.
func (e *Engine) advanceCustomDate(ctx context.Context, sess *models.Session, input string) (Outcome, error) {
	parsed, err := time.ParseInLocation(InputDateLayout, input, e.loc)
	if err != nil {
		return reprompt("❌ Invalid date format. Use DD-MM-YYYY (e.g., 05-02-2025):"), nil
	}

	if err := e.sessions.Clear(ctx, sess.UserID); err != nil {
		return Outcome{}, err
	}
	return Outcome{
		Kind:       OutcomeCompleted,
		ReportDate: parsed.Format(StoreDateLayout),
	}, nil
}
