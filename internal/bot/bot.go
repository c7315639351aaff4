package bot

import (
	"sync"

	"github.com/djetflex/reward_bot/internal/models"
	"github.com/djetflex/reward_bot/internal/service"
	"github.com/djetflex/reward_bot/utils"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type Bot struct {
	API     *tgbotapi.BotAPI
	service *service.Service
	logger  *utils.Logger

	sessions *sessionStore

	// Admin content collection and announce flows, keyed by admin ID.
	flowMutex     *sync.Mutex
	addFlows      map[int64]*addFlow
	announceFlows map[int64]bool
}

func NewBot(
	api *tgbotapi.BotAPI,
	service *service.Service,
	logger *utils.Logger,
) *Bot {
	return &Bot{
		API:           api,
		service:       service,
		logger:        logger,
		sessions:      newSessionStore(),
		flowMutex:     &sync.Mutex{},
		addFlows:      make(map[int64]*addFlow),
		announceFlows: make(map[int64]bool),
	}
}

func (b *Bot) Start() {
	b.logger.Info("Starting bot...")
	updates := b.API.GetUpdatesChan(tgbotapi.NewUpdate(0))
	for update := range updates {
		if update.CallbackQuery != nil {
			b.handleCallbackQuery(update.CallbackQuery)
			continue
		}
		if update.Message != nil {
			b.HandleUpdate(update)
		}
	}
}

// sendMessage is the unified outbound helper. Send failures are logged and
// never propagate: ledger state is already settled by the time we notify.
func (b *Bot) sendMessage(chatID int64, text string, replyMarkup interface{}) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if replyMarkup != nil {
		msg.ReplyMarkup = replyMarkup
	}
	if _, err := b.API.Send(msg); err != nil {
		b.logger.Errorf("Failed to send message to %d: %v", chatID, err)
	}
}

func (b *Bot) sendToChannel(channel string, text string, replyMarkup interface{}) error {
	msg := tgbotapi.NewMessageToChannel(channel, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if replyMarkup != nil {
		msg.ReplyMarkup = replyMarkup
	}
	_, err := b.API.Send(msg)
	return err
}

func (b *Bot) answerCallback(callbackID string, text string) {
	callback := tgbotapi.NewCallback(callbackID, text)
	if _, err := b.API.Request(callback); err != nil {
		b.logger.Errorf("Failed to answer callback: %v", err)
	}
}

func (b *Bot) answerCallbackAlert(callbackID string, text string) {
	callback := tgbotapi.NewCallbackWithAlert(callbackID, text)
	if _, err := b.API.Request(callback); err != nil {
		b.logger.Errorf("Failed to answer callback: %v", err)
	}
}

// --- Menus ---

func mainMenu() tgbotapi.ReplyKeyboardMarkup {
	menu := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton("🏆 GAGNER DE L'ARGENT")),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("⚽ Coupon grosses côtes"),
			tgbotapi.NewKeyboardButton("🥇 Safe du jour"),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("🎯 Failles du jour"),
			tgbotapi.NewKeyboardButton("🎥 Comment faire ?"),
		),
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton("📢 Canal Officiel")),
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton("🔙 Retour")),
	)
	menu.ResizeKeyboard = true
	return menu
}

func gagnerMenu() tgbotapi.ReplyKeyboardMarkup {
	menu := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton("💰 Mon Solde")),
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton("🧑‍🤝‍🧑 Lien de parrainage")),
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton("🏧 Retirer de l'argent")),
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton("🔙 Retour")),
	)
	menu.ResizeKeyboard = true
	return menu
}

// buttonToCategory maps content menu buttons to content library categories.
var buttonToCategory = map[string]string{
	"⚽ Coupon grosses côtes": "grosse",
	"🥇 Safe du jour":         "safe",
	"🎯 Failles du jour":      "failles",
	"🎥 Comment faire ?":      "comment",
	"📢 Canal Officiel":       "canal",
}

func (b *Bot) sendContents(chatID int64, items []models.ContentItem) {
	for _, item := range items {
		var c tgbotapi.Chattable
		switch item.Type {
		case "text":
			msg := tgbotapi.NewMessage(chatID, item.Text)
			msg.ParseMode = tgbotapi.ModeHTML
			c = msg
		case "photo":
			photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileID(item.FileID))
			photo.Caption = item.Caption
			photo.ParseMode = tgbotapi.ModeHTML
			c = photo
		case "video":
			video := tgbotapi.NewVideo(chatID, tgbotapi.FileID(item.FileID))
			video.Caption = item.Caption
			video.ParseMode = tgbotapi.ModeHTML
			c = video
		case "audio":
			c = tgbotapi.NewAudio(chatID, tgbotapi.FileID(item.FileID))
		case "voice":
			c = tgbotapi.NewVoice(chatID, tgbotapi.FileID(item.FileID))
		default:
			b.logger.Warnf("Unknown content type: %s", item.Type)
			continue
		}
		if _, err := b.API.Send(c); err != nil {
			b.logger.Errorf("Failed to send content item: %v", err)
		}
	}
}
