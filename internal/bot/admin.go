package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/djetflex/reward_bot/internal/models"
	"github.com/djetflex/reward_bot/internal/service"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// addFlow collects content items for one category until /done.
type addFlow struct {
	Category string
	Items    []models.ContentItem
}

// handleAdminFlowMessage consumes messages belonging to an active admin
// collection flow. Returns false when no flow is active for this admin.
func (b *Bot) handleAdminFlowMessage(ctx context.Context, update tgbotapi.Update) bool {
	adminID := update.Message.From.ID
	chatID := update.Message.Chat.ID

	b.flowMutex.Lock()
	announcing := b.announceFlows[adminID]
	flow := b.addFlows[adminID]
	b.flowMutex.Unlock()

	if announcing {
		item, ok := itemFromMessage(update.Message)
		if !ok {
			b.sendMessage(chatID, "Type non supporté. Envoyez texte, photo, vidéo, audio ou vocal.", nil)
			return true
		}

		b.flowMutex.Lock()
		delete(b.announceFlows, adminID)
		b.flowMutex.Unlock()

		sent, failed := b.broadcast(ctx, item)
		b.sendMessage(chatID, fmt.Sprintf("📢 Diffusion terminée: %d envoyés, %d échecs.", sent, failed), nil)
		return true
	}

	if flow == nil {
		return false
	}

	if update.Message.Text == "/done" {
		b.flowMutex.Lock()
		delete(b.addFlows, adminID)
		b.flowMutex.Unlock()

		if err := b.service.AddContents(ctx, flow.Category, flow.Items); err != nil {
			b.logger.Errorf("Failed to add contents to %s: %v", flow.Category, err)
			b.sendMessage(chatID, "❌ Échec de l'enregistrement du contenu.", nil)
			return true
		}
		b.sendMessage(chatID, fmt.Sprintf("✅ Contenu ajouté dans \"%s\" (%d éléments).", flow.Category, len(flow.Items)), nil)
		return true
	}

	item, ok := itemFromMessage(update.Message)
	if !ok {
		b.sendMessage(chatID, "Type non supporté. Envoie texte, photo, vidéo, audio ou /done pour terminer.", nil)
		return true
	}

	flow.Items = append(flow.Items, item)
	b.sendMessage(chatID, "Message ajouté au flow. Envoie d'autres éléments ou /done pour terminer.", nil)
	return true
}

// handleAdminCommand runs admin-only commands. Returns false for commands
// it does not own.
func (b *Bot) handleAdminCommand(ctx context.Context, update tgbotapi.Update) bool {
	chatID := update.Message.Chat.ID
	adminID := update.Message.From.ID
	args := update.Message.CommandArguments()

	switch update.Message.Command() {
	case "add":
		category := strings.TrimSpace(args)
		if category == "" {
			b.sendMessage(chatID, "Usage: /add &lt;catégorie&gt;", nil)
			return true
		}
		b.flowMutex.Lock()
		b.addFlows[adminID] = &addFlow{Category: category}
		b.flowMutex.Unlock()
		b.sendMessage(chatID, fmt.Sprintf("📝 Envoyez les éléments pour \"%s\", puis /done pour terminer.", category), nil)

	case "clear":
		category := strings.TrimSpace(args)
		if category == "" {
			b.sendMessage(chatID, "Usage: /clear &lt;catégorie&gt;", nil)
			return true
		}
		if err := b.service.ClearContents(ctx, category); err != nil {
			b.logger.Errorf("Failed to clear contents %s: %v", category, err)
			b.sendMessage(chatID, "❌ Échec de la suppression.", nil)
			return true
		}
		b.sendMessage(chatID, fmt.Sprintf("🗑 Contenu de \"%s\" supprimé.", category), nil)

	case "annonce":
		b.flowMutex.Lock()
		b.announceFlows[adminID] = true
		b.flowMutex.Unlock()
		b.sendMessage(chatID, "📢 Envoyez le message à diffuser à tous les utilisateurs.", nil)

	case "setmin":
		b.handleSetSetting(ctx, chatID, models.SettingMinWithdraw, args, "Retrait minimum")

	case "setbonus":
		b.handleSetSetting(ctx, chatID, models.SettingRefBonus, args, "Bonus de parrainage")

	case "ban":
		b.handleBanCommand(ctx, chatID, args, true)

	case "unban":
		b.handleBanCommand(ctx, chatID, args, false)

	case "addchannel":
		parts := strings.Fields(args)
		if len(parts) == 0 {
			b.sendMessage(chatID, "Usage: /addchannel &lt;canal&gt; [lien]", nil)
			return true
		}
		link := ""
		if len(parts) > 1 {
			link = parts[1]
		}
		if err := b.service.AddChannel(ctx, parts[0], link); err != nil {
			b.logger.Errorf("Failed to add channel: %v", err)
			b.sendMessage(chatID, "❌ Échec de l'ajout du canal.", nil)
			return true
		}
		b.sendMessage(chatID, fmt.Sprintf("✅ Canal %s ajouté.", parts[0]), nil)

	case "delchannel":
		channel := strings.TrimSpace(args)
		if channel == "" {
			b.sendMessage(chatID, "Usage: /delchannel &lt;canal&gt;", nil)
			return true
		}
		if err := b.service.RemoveChannel(ctx, channel); err != nil {
			b.logger.Errorf("Failed to remove channel: %v", err)
			b.sendMessage(chatID, "❌ Échec de la suppression du canal.", nil)
			return true
		}
		b.sendMessage(chatID, fmt.Sprintf("✅ Canal %s supprimé.", channel), nil)

	case "retraits":
		b.handlePendingList(ctx, chatID)

	case "reglages":
		settings, err := b.service.Settings(ctx)
		if err != nil {
			b.logger.Errorf("Failed to get settings: %v", err)
			b.sendMessage(chatID, "❌ Échec de la lecture des réglages.", nil)
			return true
		}
		var sb strings.Builder
		sb.WriteString("⚙️ <b>Réglages</b>\n\n")
		for key, value := range settings {
			sb.WriteString(fmt.Sprintf("%s = %d\n", key, value))
		}
		b.sendMessage(chatID, sb.String(), nil)

	default:
		return false
	}

	return true
}

func (b *Bot) handleSetSetting(ctx context.Context, chatID int64, key, args, label string) {
	value, err := strconv.ParseInt(strings.TrimSpace(args), 10, 64)
	if err != nil || value < 0 {
		b.sendMessage(chatID, "❌ Valeur invalide. Entrez un nombre positif.", nil)
		return
	}

	if err := b.service.SetSetting(ctx, key, value); err != nil {
		b.logger.Errorf("Failed to set %s: %v", key, err)
		b.sendMessage(chatID, "❌ Échec de la mise à jour.", nil)
		return
	}
	b.sendMessage(chatID, fmt.Sprintf("✅ %s mis à jour: %d FCFA.", label, value), nil)
}

func (b *Bot) handleBanCommand(ctx context.Context, chatID int64, args string, banned bool) {
	userID := strings.TrimSpace(args)
	if userID == "" {
		b.sendMessage(chatID, "Usage: /ban ou /unban &lt;id&gt;", nil)
		return
	}

	if err := b.service.SetBanned(ctx, userID, banned); err != nil {
		if err == service.ErrUserNotFound {
			b.sendMessage(chatID, "❌ Utilisateur non trouvé.", nil)
			return
		}
		b.logger.Errorf("Failed to update ban flag for %s: %v", userID, err)
		b.sendMessage(chatID, "❌ Échec de la mise à jour.", nil)
		return
	}

	if banned {
		b.sendMessage(chatID, fmt.Sprintf("⛔ Utilisateur %s banni.", userID), nil)
		return
	}
	b.sendMessage(chatID, fmt.Sprintf("✅ Utilisateur %s débanni.", userID), nil)
}

func (b *Bot) handlePendingList(ctx context.Context, chatID int64) {
	withdrawals, err := b.service.GetPendingWithdrawals(ctx)
	if err != nil {
		b.logger.Errorf("Failed to get pending withdrawals: %v", err)
		b.sendMessage(chatID, "❌ Échec de la lecture des retraits.", nil)
		return
	}
	if len(withdrawals) == 0 {
		b.sendMessage(chatID, "ℹ️ Aucun retrait en attente.", nil)
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📋 <b>Retraits en attente (%d)</b>\n\n", len(withdrawals)))
	for _, w := range withdrawals {
		sb.WriteString(fmt.Sprintf(
			"🆔 %s\n👤 %s\n💰 %d FCFA\n📱 %s\n💳 %s\n\n",
			w.ID, w.Fullname, w.Amount, w.Phone, w.Method,
		))
	}
	b.sendMessage(chatID, sb.String(), nil)
}

// broadcast fans one item out to every user. Per-user failures are counted
// and never retried.
func (b *Bot) broadcast(ctx context.Context, item models.ContentItem) (sent, failed int) {
	users, err := b.service.GetAllUsers(ctx)
	if err != nil {
		b.logger.Errorf("Failed to get users for broadcast: %v", err)
		return 0, 0
	}

	b.logger.Infof("📢 Broadcast: %d utilisateurs", len(users))
	for _, u := range users {
		if b.sendItem(u.TelegramID, item) {
			sent++
		} else {
			failed++
		}
	}
	return sent, failed
}

func (b *Bot) sendItem(chatID int64, item models.ContentItem) bool {
	var c tgbotapi.Chattable
	switch item.Type {
	case "text":
		msg := tgbotapi.NewMessage(chatID, item.Text)
		c = msg
	case "photo":
		photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileID(item.FileID))
		photo.Caption = item.Caption
		c = photo
	case "video":
		video := tgbotapi.NewVideo(chatID, tgbotapi.FileID(item.FileID))
		video.Caption = item.Caption
		c = video
	case "audio":
		c = tgbotapi.NewAudio(chatID, tgbotapi.FileID(item.FileID))
	case "voice":
		c = tgbotapi.NewVoice(chatID, tgbotapi.FileID(item.FileID))
	default:
		return false
	}

	if _, err := b.API.Send(c); err != nil {
		return false
	}
	return true
}

func itemFromMessage(msg *tgbotapi.Message) (models.ContentItem, bool) {
	switch {
	case len(msg.Photo) > 0:
		return models.ContentItem{
			Type:    "photo",
			FileID:  msg.Photo[len(msg.Photo)-1].FileID,
			Caption: msg.Caption,
		}, true
	case msg.Video != nil:
		return models.ContentItem{Type: "video", FileID: msg.Video.FileID, Caption: msg.Caption}, true
	case msg.Audio != nil:
		return models.ContentItem{Type: "audio", FileID: msg.Audio.FileID}, true
	case msg.Voice != nil:
		return models.ContentItem{Type: "voice", FileID: msg.Voice.FileID}, true
	case msg.Text != "":
		return models.ContentItem{Type: "text", Text: msg.Text}, true
	}
	return models.ContentItem{}, false
}
