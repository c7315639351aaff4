package service

import (
	"context"

	"github.com/djetflex/reward_bot/internal/models"
)

func (s *Service) GetContents(ctx context.Context, category string) ([]models.ContentItem, error) {
	return s.repo.GetContents(ctx, category)
}

func (s *Service) AddContents(ctx context.Context, category string, items []models.ContentItem) error {
	return s.repo.AddContents(ctx, category, items)
}

func (s *Service) ClearContents(ctx context.Context, category string) error {
	return s.repo.ClearContents(ctx, category)
}

func (s *Service) GetChannels(ctx context.Context) ([]models.Channel, error) {
	return s.repo.GetChannels(ctx)
}

func (s *Service) AddChannel(ctx context.Context, channelID, link string) error {
	return s.repo.AddChannel(ctx, channelID, link)
}

func (s *Service) RemoveChannel(ctx context.Context, channelID string) error {
	return s.repo.RemoveChannel(ctx, channelID)
}
