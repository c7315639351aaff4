package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/djetflex/reward_bot/internal/models"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// checkChannels verifies membership of every required channel. Admins
// bypass the gate. An API error counts as not joined (the bot is usually
// missing admin rights on the channel in that case).
func (b *Bot) checkChannels(ctx context.Context, userID int64) (bool, error) {
	if b.service.IsAdmin(strconv.FormatInt(userID, 10)) {
		return true, nil
	}

	channels, err := b.service.GetChannels(ctx)
	if err != nil {
		return false, err
	}

	for _, ch := range channels {
		cfg := tgbotapi.GetChatMemberConfig{
			ChatConfigWithUser: tgbotapi.ChatConfigWithUser{UserID: userID},
		}
		if strings.HasPrefix(ch.ChannelID, "@") {
			cfg.SuperGroupUsername = ch.ChannelID
		} else {
			chatID, err := strconv.ParseInt(ch.ChannelID, 10, 64)
			if err != nil {
				b.logger.Errorf("Invalid channel ID %s: %v", ch.ChannelID, err)
				return false, nil
			}
			cfg.ChatID = chatID
		}

		member, err := b.API.GetChatMember(cfg)
		if err != nil {
			b.logger.Warnf("Failed to check channel %s for user %d: %v", ch.ChannelID, userID, err)
			return false, nil
		}
		if member.Status == "left" || member.Status == "kicked" {
			return false, nil
		}
	}

	return true, nil
}

// sendJoinPrompt shows one join button per required channel plus a recheck
// button.
func (b *Bot) sendJoinPrompt(chatID int64, channels []models.Channel) {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(channels)+1)
	for i, ch := range channels {
		link := ch.Link
		if link == "" && strings.HasPrefix(ch.ChannelID, "@") {
			link = "https://t.me/" + strings.TrimPrefix(ch.ChannelID, "@")
		}
		if link == "" {
			continue
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL(fmt.Sprintf("📢 Rejoindre canal %d", i+1), link),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("🔄 J'ai rejoint", "check_channels"),
	))

	text := "⚠️ <b>Veuillez rejoindre tous les canaux obligatoires pour continuer</b>\n\n" +
		"Pour utiliser ce bot, vous devez d'abord rejoindre nos canaux officiels."
	b.sendMessage(chatID, text, tgbotapi.NewInlineKeyboardMarkup(rows...))
}

func (b *Bot) handleCheckChannelsCallback(ctx context.Context, callback *tgbotapi.CallbackQuery) {
	ok, err := b.checkChannels(ctx, callback.From.ID)
	if err != nil {
		b.logger.Errorf("Channel check failed for user %d: %v", callback.From.ID, err)
		b.answerCallbackAlert(callback.ID, "❌ Une erreur est survenue. Veuillez réessayer.")
		return
	}

	if ok {
		b.answerCallback(callback.ID, "✅ Merci ! Vous avez rejoint tous les canaux")
		b.sendMessage(callback.Message.Chat.ID, "Bienvenue ! Voici le menu principal :", mainMenu())
		return
	}
	b.answerCallbackAlert(callback.ID, "❌ Vous devez rejoindre tous les canaux obligatoires")
}
