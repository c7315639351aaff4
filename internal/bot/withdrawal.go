package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/djetflex/reward_bot/internal/models"
	"github.com/djetflex/reward_bot/internal/service"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// handleWithdrawEntry runs the eligibility guard. No session exists until
// both thresholds pass; the amount is frozen here as the current balance.
func (b *Bot) handleWithdrawEntry(ctx context.Context, chatID int64, user *models.User) {
	ok, err := b.checkChannels(ctx, user.TelegramID)
	if err != nil {
		b.logger.Errorf("Channel check failed for user %s: %v", user.ID, err)
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

	elig, err := b.service.CheckEligibility(ctx, user.ID)
	if err != nil {
		b.logger.Errorf("Eligibility check failed for user %s: %v", user.ID, err)
		b.sendMessage(chatID, "❌ Une erreur est survenue. Veuillez réessayer.", nil)
		return
	}

	if !elig.Eligible {
		refBonus, err := b.service.RefBonus(ctx)
		if err != nil {
			b.logger.Errorf("Failed to get ref_bonus: %v", err)
			b.sendMessage(chatID, "❌ Une erreur est survenue. Veuillez réessayer.", nil)
			return
		}

		message := fmt.Sprintf(
			"🏧 <b><i>LANCER UN RETRAIT</i></b> 🏧\n\n"+
				"❌ <b>accès refusé</b>\n\n"+
				"💰 Votre solde actuel est de %d FCFA 💵\n\n"+
				"🎁 Le retrait minimum est de %d FCFA 🏧\n\n"+
				"👥 Vous avez %d filleuls (minimum requis: %d)\n\n"+
				"Invitez vos amis pour augmenter vos chances de gagner énormément d'argent et de pouvoir retirer sans problème 🔥\n\n"+
				"✈️ <b>Voici votre lien de parrainage</b>\n\n"+
				"%s\n\n"+
				"%d FCFA pour chaque personne invitée",
			elig.Balance, elig.MinWithdraw, elig.ReferralCount, service.MinReferrals,
			b.referralLink(user.ID), refBonus,
		)
		b.sendMessage(chatID, message, gagnerMenu())
		return
	}

	b.sessions.create(user.TelegramID, elig.Balance)
	b.sendMessage(chatID,
		"🏧 <b>RETRAIT</b>\n\nVeuillez entrer votre nom complet pour le paiement :",
		tgbotapi.NewRemoveKeyboard(true))
}

func (b *Bot) handleNameInput(chatID, userID int64, session *withdrawSession, text string) {
	if !validInput(text) {
		b.sendMessage(chatID, "❌ Nom invalide. Veuillez entrer votre nom complet (au moins 8 caractères) :", nil)
		return
	}

	session.Fullname = strings.TrimSpace(text)
	session.Step = stepWaitingPhone
	b.sendMessage(chatID,
		"📱 Veuillez entrer votre numéro de téléphone Mobile Money (MoMo) ou Orange Money (OM) pour recevoir votre paiement :",
		nil)
}

func (b *Bot) handlePhoneInput(chatID, userID int64, session *withdrawSession, text string) {
	if !validInput(text) {
		b.sendMessage(chatID, "❌ Numéro invalide. Veuillez entrer un numéro valide (au moins 8 chiffres) :", nil)
		return
	}

	session.Phone = strings.TrimSpace(text)
	session.Step = stepWaitingMethod

	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(methodOrder)+1)
	for _, code := range methodOrder {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(paymentMethods[code], "method_"+code),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("❌ Annuler", "method_cancel"),
	))

	b.sendMessage(chatID, "💳 Choisissez votre méthode de paiement :", tgbotapi.NewInlineKeyboardMarkup(rows...))
}

func (b *Bot) handleMethodCallback(callback *tgbotapi.CallbackQuery) {
	session := b.sessions.get(callback.From.ID)
	if session == nil {
		b.answerCallbackAlert(callback.ID, "❌ Session expirée. Veuillez recommencer.")
		return
	}

	code := strings.TrimPrefix(callback.Data, "method_")
	if code == "cancel" {
		b.sessions.destroy(callback.From.ID)
		b.answerCallback(callback.ID, "❌ Retrait annulé")
		b.editText(callback.Message.Chat.ID, callback.Message.MessageID, "❌ Demande de retrait annulée.")
		return
	}

	label, ok := paymentMethods[code]
	if !ok {
		b.answerCallback(callback.ID, "")
		return
	}

	session.Method = label
	session.Step = stepConfirming

	confirmation := fmt.Sprintf(
		"📋 <b>VÉRIFICATION DES INFORMATIONS</b>\n\n"+
			"👤 Nom: %s\n"+
			"💰 Montant: %d FCFA\n"+
			"📱 Téléphone: %s\n"+
			"💳 Méthode: %s\n\n"+
			"Vérifiez que toutes les informations sont correctes avant de confirmer.",
		session.Fullname, session.Amount, session.Phone, session.Method,
	)
	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("✅ Confirmer", "confirm_withdraw")),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("❌ Annuler", "cancel_withdraw")),
	)

	b.answerCallback(callback.ID, "")
	b.editTextWithMarkup(callback.Message.Chat.ID, callback.Message.MessageID, confirmation, keyboard)
}

func (b *Bot) handleConfirmWithdrawCallback(ctx context.Context, callback *tgbotapi.CallbackQuery) {
	userID := callback.From.ID
	session := b.sessions.get(userID)
	if session == nil || session.Step != stepConfirming {
		b.answerCallbackAlert(callback.ID, "❌ Session expirée. Veuillez recommencer.")
		return
	}

	username := callback.From.UserName
	if username == "" {
		username = "N/A"
	}

	withdrawal, err := b.service.CommitWithdrawal(ctx, service.WithdrawalRequest{
		UserID:   userID,
		Username: username,
		Fullname: session.Fullname,
		Amount:   session.Amount,
		Phone:    session.Phone,
		Method:   session.Method,
	})

	// The session dies either way: a failed commit must not be retryable
	// from a stale confirmation button.
	b.sessions.destroy(userID)

	if err != nil {
		b.logger.Errorf("Failed to commit withdrawal for user %d: %v", userID, err)
		b.answerCallbackAlert(callback.ID, "❌ Erreur")
		b.editText(callback.Message.Chat.ID, callback.Message.MessageID, "❌ Une erreur est survenue. Veuillez réessayer.")
		return
	}

	b.answerCallback(callback.ID, "✅ Retrait créé")
	recap := fmt.Sprintf(
		"✅ <b>Demande de retrait créée</b>\n\n"+
			"📋 Récapitulatif:\n"+
			"👤 Nom: %s\n"+
			"📱 Téléphone: %s\n"+
			"💰 Montant: %d FCFA\n"+
			"💳 Méthode: %s\n\n"+
			"Un administrateur traitera votre demande bientôt. Vous recevrez une notification une fois le paiement effectué.",
		withdrawal.Fullname, withdrawal.Phone, withdrawal.Amount, withdrawal.Method,
	)
	b.editText(callback.Message.Chat.ID, callback.Message.MessageID, recap)

	b.notifyWithdrawalCreated(withdrawal)
}

func (b *Bot) handleCancelWithdrawCallback(callback *tgbotapi.CallbackQuery) {
	if b.sessions.get(callback.From.ID) == nil {
		b.answerCallbackAlert(callback.ID, "❌ Session expirée.")
		return
	}

	b.sessions.destroy(callback.From.ID)
	b.answerCallback(callback.ID, "❌ Retrait annulé")
	b.editText(callback.Message.Chat.ID, callback.Message.MessageID, "❌ Demande de retrait annulée.")
}

// notifyWithdrawalCreated fans the new request out to the withdrawal
// channel (plain) and to every admin (with decision buttons). The ledger
// commit already succeeded; failures here are logged and nothing more.
func (b *Bot) notifyWithdrawalCreated(w *models.Withdrawal) {
	adminMsg := fmt.Sprintf(
		"🏧 <b>NOUVELLE DEMANDE DE RETRAIT</b>\n\n"+
			"👤 Nom: %s\n"+
			"💰 Montant: %d FCFA\n"+
			"📱 Téléphone: %s\n"+
			"💳 Méthode: %s\n"+
			"🆔 ID: %s",
		w.Fullname, w.Amount, w.Phone, w.Method, w.ID,
	)
	channelMsg := fmt.Sprintf(
		"🏧 <b>NOUVELLE DEMANDE</b>\n\n"+
			"👤 %s\n"+
			"💰 %d FCFA\n"+
			"💳 %s\n"+
			"⏱️ En attente\n"+
			"🆔 %s",
		w.Fullname, w.Amount, w.Method, w.ID,
	)
	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("✅ Approuver", "approve_"+w.ID)),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("❌ Rejeter", "reject_"+w.ID)),
	)

	if channel := b.service.WithdrawChannel(); channel != "" {
		if err := b.sendToChannel(channel, channelMsg, nil); err != nil {
			b.logger.Errorf("Failed to notify withdraw channel: %v", err)
		}
	}

	for _, adminID := range b.service.AdminIDs() {
		chatID, err := strconv.ParseInt(adminID, 10, 64)
		if err != nil {
			b.logger.Errorf("Invalid admin ID %s: %v", adminID, err)
			continue
		}
		msg := tgbotapi.NewMessage(chatID, adminMsg)
		msg.ParseMode = tgbotapi.ModeHTML
		msg.ReplyMarkup = keyboard
		if _, err := b.API.Send(msg); err != nil {
			b.logger.Errorf("Failed to notify admin %s: %v", adminID, err)
		}
	}
}

// handleDecisionCallback applies an admin approve/reject. Non-admins are
// refused before any ledger access.
func (b *Bot) handleDecisionCallback(ctx context.Context, callback *tgbotapi.CallbackQuery, withdrawalID string, approve bool) {
	if !b.isAdmin(callback.From.ID) {
		b.answerCallbackAlert(callback.ID, "❌ Accès refusé")
		return
	}

	var (
		withdrawal *models.Withdrawal
		err        error
	)
	if approve {
		withdrawal, err = b.service.ApproveWithdrawal(ctx, withdrawalID)
	} else {
		withdrawal, err = b.service.RejectWithdrawal(ctx, withdrawalID)
	}

	if err != nil {
		switch {
		case errors.Is(err, service.ErrWithdrawalNotFound):
			b.answerCallbackAlert(callback.ID, "❌ Retrait non trouvé")
		case errors.Is(err, service.ErrAlreadyProcessed):
			b.answerCallbackAlert(callback.ID, "⚠️ Retrait déjà traité")
		default:
			b.logger.Errorf("Failed to process withdrawal %s: %v", withdrawalID, err)
			b.answerCallbackAlert(callback.ID, "❌ Une erreur est survenue. Veuillez réessayer.")
		}
		return
	}

	processedAt := time.UnixMilli(withdrawal.ProcessedAt).Format("02/01/2006 15:04")

	if approve {
		userMsg := fmt.Sprintf(
			"✅ <b>Retrait approuvé!</b>\n\n💰 Montant: %d FCFA\n📱 Numéro: %s\n\n"+
				"Votre paiement a été envoyé. Vous devriez le recevoir dans quelques minutes.",
			withdrawal.Amount, withdrawal.Phone,
		)
		b.sendMessage(withdrawal.UserID, userMsg, nil)

		if channel := b.service.WithdrawChannel(); channel != "" {
			channelMsg := fmt.Sprintf(
				"✅ <b>RETRAIT APPROUVÉ</b>\n\n👤 %s\n💰 %d FCFA\n🆔 %s\n📅 %s",
				withdrawal.Fullname, withdrawal.Amount, withdrawal.ID, processedAt,
			)
			if err := b.sendToChannel(channel, channelMsg, nil); err != nil {
				b.logger.Errorf("Failed to notify withdraw channel: %v", err)
			}
		}

		b.editText(callback.Message.Chat.ID, callback.Message.MessageID, fmt.Sprintf(
			"✅ <b>RETRAIT APPROUVÉ</b>\n\n👤 Nom: %s\n💰 Montant: %d FCFA\n📱 Téléphone: %s\n🆔 ID: %s\n📅 Traité le: %s",
			withdrawal.Fullname, withdrawal.Amount, withdrawal.Phone, withdrawal.ID, processedAt,
		))
		b.answerCallback(callback.ID, "✅ Retrait approuvé")
		return
	}

	userMsg := fmt.Sprintf(
		"❌ <b>Retrait rejeté</b>\n\n💰 Montant: %d FCFA\n\nVotre montant a été crédité à votre compte.",
		withdrawal.Amount,
	)
	b.sendMessage(withdrawal.UserID, userMsg, nil)

	b.editText(callback.Message.Chat.ID, callback.Message.MessageID, fmt.Sprintf(
		"❌ <b>RETRAIT REJETÉ</b>\n\n👤 Nom: %s\n💰 Montant: %d FCFA (remboursé)\n📱 Téléphone: %s\n🆔 ID: %s\n📅 Traité le: %s",
		withdrawal.Fullname, withdrawal.Amount, withdrawal.Phone, withdrawal.ID, processedAt,
	))
	b.answerCallback(callback.ID, "❌ Retrait rejeté")
}

func (b *Bot) editText(chatID int64, messageID int, text string) {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	edit.ParseMode = tgbotapi.ModeHTML
	if _, err := b.API.Send(edit); err != nil {
		b.logger.Errorf("Failed to edit message: %v", err)
	}
}

func (b *Bot) editTextWithMarkup(chatID int64, messageID int, text string, markup tgbotapi.InlineKeyboardMarkup) {
	edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, text, markup)
	edit.ParseMode = tgbotapi.ModeHTML
	if _, err := b.API.Send(edit); err != nil {
		b.logger.Errorf("Failed to edit message: %v", err)
	}
}
