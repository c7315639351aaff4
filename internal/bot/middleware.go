package bot

import (
	"context"

	"github.com/djetflex/reward_bot/internal/models"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// withUserCheck makes sure the sender has a user record before the handler
// runs, and drops banned users before any flow.
func (b *Bot) withUserCheck(handler func(context.Context, tgbotapi.Update, *models.User)) func(tgbotapi.Update) {
	return func(update tgbotapi.Update) {
		ctx := context.Background()
		from := update.Message.From

		user, err := b.service.RegisterUser(ctx, from.ID, from.UserName, fullName(from), "")
		if err != nil {
			b.logger.Errorf("Failed to register user %d: %v", from.ID, err)
			b.sendMessage(update.Message.Chat.ID, "❌ Une erreur est survenue. Veuillez réessayer.", nil)
			return
		}

		if user.Banned {
			b.sendMessage(update.Message.Chat.ID, "⛔ Votre accès au bot a été suspendu.", nil)
			return
		}

		handler(ctx, update, user)
	}
}

func fullName(from *tgbotapi.User) string {
	name := from.FirstName
	if from.LastName != "" {
		name += " " + from.LastName
	}
	return name
}
