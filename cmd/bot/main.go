package main

import (
	"context"

	"github.com/djetflex/reward_bot/config"
	"github.com/djetflex/reward_bot/db"
	"github.com/djetflex/reward_bot/internal/bot"
	"github.com/djetflex/reward_bot/internal/repository"
	"github.com/djetflex/reward_bot/internal/service"
	"github.com/djetflex/reward_bot/utils"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func main() {
	logger := utils.InitLogger()
	cfg, err := config.LoadConfig(".env")
	if err != nil {
		logger.Fatal("Failed to load config: ", err)
	}

	database, err := db.ConnectDb(cfg.DB_URL, logger)
	if err != nil {
		logger.Fatal(err)
	}

	if err := db.Migrate(database, true, logger); err != nil {
		logger.Fatal(err)
	}

	repo := repository.NewRepository(database, logger)
	svc := service.NewService(repo, &cfg, logger)

	if err := svc.SeedDefaults(context.Background()); err != nil {
		logger.Fatal("Failed to seed defaults: ", err)
	}

	telegramBot, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		logger.Fatal("Failed to create bot API: ", err)
	}

	rewardBot := bot.NewBot(telegramBot, svc, logger)
	rewardBot.Start()
}
