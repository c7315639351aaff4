package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/djetflex/reward_bot/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func (r *Repository) GetSetting(ctx context.Context, key string) (*models.Setting, error) {
	var setting models.Setting
	err := r.db.WithContext(ctx).First(&setting, "key = ?", key).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get setting %s: %w", key, err)
	}
	return &setting, nil
}

func (r *Repository) SetSetting(ctx context.Context, key string, value int64) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value"}),
		}).
		Create(&models.Setting{Key: key, Value: value}).Error

	if err != nil {
		return fmt.Errorf("failed to set setting %s: %w", key, err)
	}
	return nil
}

func (r *Repository) GetSettings(ctx context.Context) (map[string]int64, error) {
	var list []models.Setting
	if err := r.db.WithContext(ctx).Find(&list).Error; err != nil {
		return nil, err
	}

	settings := make(map[string]int64, len(list))
	for _, s := range list {
		settings[s.Key] = s.Value
	}
	return settings, nil
}
