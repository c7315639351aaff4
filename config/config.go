package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	TelegramBotToken string `mapstructure:"TELEGRAM_BOT_TOKEN"`
	DB_URL           string `mapstructure:"DB_URL"`

	// Comma-separated list of Telegram user IDs allowed to run admin actions.
	AdminIDs string `mapstructure:"ADMIN_IDS"`

	// Channel (e.g. @djetflex_retraits) receiving withdrawal notifications.
	WithdrawChannel string `mapstructure:"WITHDRAW_CHANNEL"`

	// Comma-separated channels the user must join before using the bot,
	// with optional invite links in the same order.
	RequiredChannels string `mapstructure:"REQUIRED_CHANNELS"`
	ChannelLinks     string `mapstructure:"CHANNEL_LINKS"`

	// Static defaults, seeded into the settings table once at startup.
	// The settings table is authoritative after that.
	MinWithdraw int64 `mapstructure:"MIN_WITHDRAW"`
	RefBonus    int64 `mapstructure:"REF_BONUS"`
}

func LoadConfig(path string) (config Config, err error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return config, fmt.Errorf("failed to resolve config path: %w", err)
	}

	viper.AddConfigPath(filepath.Dir(absPath))
	viper.SetConfigName(filepath.Base(absPath))
	viper.SetConfigType("env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return config, fmt.Errorf("failed to read config: %w", err)
	}

	if err := viper.Unmarshal(&config); err != nil {
		return config, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return config, nil
}

func (c *Config) AdminIDList() []string {
	return splitList(c.AdminIDs)
}

func (c *Config) RequiredChannelList() []string {
	return splitList(c.RequiredChannels)
}

func (c *Config) ChannelLinkList() []string {
	return splitList(c.ChannelLinks)
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
