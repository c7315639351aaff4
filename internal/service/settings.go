package service

import (
	"context"

	"github.com/djetflex/reward_bot/internal/models"
)

// SeedDefaults populates settings and required channels from the static
// config, only where nothing is stored yet. Operator-adjusted values are
// never overwritten; after this runs once the database is authoritative.
func (s *Service) SeedDefaults(ctx context.Context) error {
	channels, err := s.repo.GetChannels(ctx)
	if err != nil {
		return err
	}
	if len(channels) == 0 {
		links := s.config.ChannelLinkList()
		for i, ch := range s.config.RequiredChannelList() {
			link := ""
			if i < len(links) {
				link = links[i]
			}
			if err := s.repo.AddChannel(ctx, ch, link); err != nil {
				return err
			}
		}
	}

	settings, err := s.repo.GetSettings(ctx)
	if err != nil {
		return err
	}
	if _, ok := settings[models.SettingMinWithdraw]; !ok {
		if err := s.repo.SetSetting(ctx, models.SettingMinWithdraw, s.config.MinWithdraw); err != nil {
			return err
		}
	}
	if _, ok := settings[models.SettingRefBonus]; !ok {
		if err := s.repo.SetSetting(ctx, models.SettingRefBonus, s.config.RefBonus); err != nil {
			return err
		}
	}

	return nil
}

func (s *Service) MinWithdraw(ctx context.Context) (int64, error) {
	return s.settingOr(ctx, models.SettingMinWithdraw, s.config.MinWithdraw)
}

func (s *Service) RefBonus(ctx context.Context) (int64, error) {
	return s.settingOr(ctx, models.SettingRefBonus, s.config.RefBonus)
}

func (s *Service) SetSetting(ctx context.Context, key string, value int64) error {
	return s.repo.SetSetting(ctx, key, value)
}

func (s *Service) Settings(ctx context.Context) (map[string]int64, error) {
	return s.repo.GetSettings(ctx)
}

func (s *Service) settingOr(ctx context.Context, key string, fallback int64) (int64, error) {
	setting, err := s.repo.GetSetting(ctx, key)
	if err != nil {
		return 0, err
	}
	if setting == nil {
		return fallback, nil
	}
	return setting.Value, nil
}
