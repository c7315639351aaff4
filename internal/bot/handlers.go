package bot

import (
	"context"
	"fmt"
	"strings"

	"github.com/djetflex/reward_bot/internal/models"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (b *Bot) HandleUpdate(update tgbotapi.Update) {
	if update.Message.IsCommand() && update.Message.Command() == "start" {
		b.handleStart(update)
		return
	}

	b.withUserCheck(func(ctx context.Context, update tgbotapi.Update, user *models.User) {
		userID := user.TelegramID
		chatID := update.Message.Chat.ID

		// Admin collection flows capture whole messages, text or media.
		if b.isAdmin(userID) {
			if b.handleAdminFlowMessage(ctx, update) {
				return
			}
		}

		// Withdrawal flow text capture.
		if session := b.sessions.get(userID); session != nil {
			switch session.Step {
			case stepWaitingName:
				b.handleNameInput(chatID, userID, session, update.Message.Text)
				return
			case stepWaitingPhone:
				b.handlePhoneInput(chatID, userID, session, update.Message.Text)
				return
			}
		}

		if update.Message.IsCommand() {
			if b.isAdmin(userID) && b.handleAdminCommand(ctx, update) {
				return
			}
			b.sendMessage(chatID, "Commande inconnue. Utilisez le menu.", mainMenu())
			return
		}

		b.handleMenuButton(ctx, update, user)
	})(update)
}

func (b *Bot) handleStart(update tgbotapi.Update) {
	ctx := context.Background()
	from := update.Message.From
	chatID := update.Message.Chat.ID

	user, err := b.service.RegisterUser(ctx, from.ID, from.UserName, fullName(from), update.Message.CommandArguments())
	if err != nil {
		b.logger.Errorf("Failed to register user %d: %v", from.ID, err)
		b.sendMessage(chatID, "❌ Une erreur est survenue. Veuillez réessayer.", nil)
		return
	}
	if user.Banned {
		b.sendMessage(chatID, "⛔ Votre accès au bot a été suspendu.", nil)
		return
	}

	ok, err := b.checkChannels(ctx, from.ID)
	if err != nil {
		b.logger.Errorf("Channel check failed for user %d: %v", from.ID, err)
		b.sendMessage(chatID, "❌ Une erreur est survenue. Veuillez réessayer.", nil)
		return
	}
	if !ok {
		channels, err := b.service.GetChannels(ctx)
		if err != nil {
			b.logger.Errorf("Failed to get channels: %v", err)
			return
		}
		b.sendJoinPrompt(chatID, channels)
		return
	}

	welcome := fmt.Sprintf("Bienvenue <b>%s</b> 👋\n\nUtilisez le menu ci-dessous pour naviguer.", from.FirstName)
	b.sendMessage(chatID, welcome, mainMenu())
}

func (b *Bot) handleMenuButton(ctx context.Context, update tgbotapi.Update, user *models.User) {
	text := update.Message.Text
	chatID := update.Message.Chat.ID

	switch text {
	case "🏆 GAGNER DE L'ARGENT":
		b.sendMessage(chatID, "💸 <b>GAGNER DE L'ARGENT</b>", gagnerMenu())
		return
	case "🔙 Retour":
		b.sendMessage(chatID, "🔙 Retour au menu", mainMenu())
		return
	case "💰 Mon Solde":
		b.handleBalance(ctx, chatID, user)
		return
	case "🧑‍🤝‍🧑 Lien de parrainage":
		b.handleReferralLink(ctx, chatID, user)
		return
	case "🏧 Retirer de l'argent":
		b.handleWithdrawEntry(ctx, chatID, user)
		return
	}

	if category, ok := buttonToCategory[text]; ok {
		items, err := b.service.GetContents(ctx, category)
		if err != nil {
			b.logger.Errorf("Failed to get contents for %s: %v", category, err)
			b.sendMessage(chatID, "❌ Une erreur est survenue. Veuillez réessayer.", nil)
			return
		}
		if len(items) == 0 {
			b.sendMessage(chatID, "Aucun contenu pour le moment. Revenez plus tard ou contactez l'administrateur.", nil)
			return
		}
		b.sendContents(chatID, items)
		return
	}

	b.sendMessage(chatID, "Commande inconnue. Utilisez le menu.", mainMenu())
}

func (b *Bot) handleBalance(ctx context.Context, chatID int64, user *models.User) {
	minWithdraw, err := b.service.MinWithdraw(ctx)
	if err != nil {
		b.logger.Errorf("Failed to get min_withdraw: %v", err)
		b.sendMessage(chatID, "❌ Une erreur est survenue. Veuillez réessayer.", nil)
		return
	}

	message := fmt.Sprintf(
		"💰 <b>SOLDE</b> 💰\n\n"+
			"💵 Votre solde actuel est de %d FCFA 💵\n\n"+
			"👥 Vous avez actuellement %d membres dans votre équipe 👥\n\n"+
			"📌 Le retrait minimum est de %d FCFA 🏧\n\n"+
			"Invitez vos amis pour augmenter vos chances de gagner énormément d'argent et de pouvoir retirer sans problème 🔥",
		user.Balance, len(user.Referrals), minWithdraw,
	)
	b.sendMessage(chatID, message, gagnerMenu())
}

func (b *Bot) handleReferralLink(ctx context.Context, chatID int64, user *models.User) {
	refBonus, err := b.service.RefBonus(ctx)
	if err != nil {
		b.logger.Errorf("Failed to get ref_bonus: %v", err)
		b.sendMessage(chatID, "❌ Une erreur est survenue. Veuillez réessayer.", nil)
		return
	}

	link := b.referralLink(user.ID)
	message := fmt.Sprintf(
		"👥 <b>Lien de parrainage 🔗</b>\n\n"+
			"DJETFLEX™ 🔥 Voici votre lien de parrainage\n\n"+
			"%s\n\n"+
			"💰 Vous gagnerez %d FCFA pour chaque personne invitée 👥\n\n"+
			"Actuellement vous avez %d membres dans votre équipe 👥\n\n"+
			"Invitez au moins 20 personnes pour lancer votre premier retrait 🔥",
		link, refBonus, len(user.Referrals),
	)
	b.sendMessage(chatID, message, gagnerMenu())
}

func (b *Bot) referralLink(userID string) string {
	return fmt.Sprintf("https://t.me/%s?start=%s", b.API.Self.UserName, userID)
}

func (b *Bot) isAdmin(userID int64) bool {
	return b.service.IsAdmin(fmt.Sprintf("%d", userID))
}

func (b *Bot) handleCallbackQuery(callback *tgbotapi.CallbackQuery) {
	ctx := context.Background()
	data := callback.Data

	switch {
	case data == "check_channels":
		b.handleCheckChannelsCallback(ctx, callback)
	case strings.HasPrefix(data, "method_"):
		b.handleMethodCallback(callback)
	case data == "confirm_withdraw":
		b.handleConfirmWithdrawCallback(ctx, callback)
	case data == "cancel_withdraw":
		b.handleCancelWithdrawCallback(callback)
	case strings.HasPrefix(data, "approve_"):
		b.handleDecisionCallback(ctx, callback, strings.TrimPrefix(data, "approve_"), true)
	case strings.HasPrefix(data, "reject_"):
		b.handleDecisionCallback(ctx, callback, strings.TrimPrefix(data, "reject_"), false)
	default:
		b.logger.Debugf("Unhandled callback: %s", data)
		b.answerCallback(callback.ID, "")
	}
}
