package repository

import (
	"context"
	"fmt"

	"github.com/djetflex/reward_bot/internal/models"
	"gorm.io/gorm/clause"
)

func (r *Repository) GetChannels(ctx context.Context) ([]models.Channel, error) {
	var channels []models.Channel
	if err := r.db.WithContext(ctx).Find(&channels).Error; err != nil {
		return nil, err
	}
	return channels, nil
}

func (r *Repository) AddChannel(ctx context.Context, channelID, link string) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "channel_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"link"}),
		}).
		Create(&models.Channel{ChannelID: channelID, Link: link}).Error

	if err != nil {
		return fmt.Errorf("failed to add channel %s: %w", channelID, err)
	}
	return nil
}

func (r *Repository) RemoveChannel(ctx context.Context, channelID string) error {
	return r.db.WithContext(ctx).Delete(&models.Channel{}, "channel_id = ?", channelID).Error
}
