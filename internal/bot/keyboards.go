package bot

import (
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Menu button labels doubling as command aliases.
const (
	buttonRecommendations = "📋 Recommendations"
	buttonProfile         = "📋 Profile"
	buttonRestart         = "🔄 Restart"
)

// mainMenuKeyboard is the persistent reply keyboard shown after profile setup.
func mainMenuKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("/set_profile"),
			tgbotapi.NewKeyboardButton("/log_water"),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("/log_food"),
			tgbotapi.NewKeyboardButton("/log_workout"),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("/check_progress"),
			tgbotapi.NewKeyboardButton(buttonRecommendations),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(buttonProfile),
			tgbotapi.NewKeyboardButton(buttonRestart),
		),
	)
}

// startKeyboard offers profile setup from the greeting message.
func startKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📝 Fill out your profile", "set_profile"),
		),
	)
}

// dateKeyboard offers today, yesterday, or a typed date for reports.
// The concrete dates are baked into the callback data.
func dateKeyboard(now time.Time) tgbotapi.InlineKeyboardMarkup {
	today := now.Format("02-01-2006")
	yesterday := now.AddDate(0, 0, -1).Format("02-01-2006")

	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📅 Today", "progress:"+today),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📆 Yesterday", "progress:"+yesterday),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📅 Enter a date", "progress:custom"),
		),
	)
}

// workoutKeyboard offers the fixed workout kinds.
func workoutKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🏃 Cardio", "workout:cardio"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🏋 Strength", "workout:strength"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🧘 Other", "workout:other"),
		),
	)
}
