package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/djetflex/reward_bot/internal/models"
	"gorm.io/gorm"
)

func (r *Repository) GetContents(ctx context.Context, category string) ([]models.ContentItem, error) {
	var items []models.ContentItem
	err := r.db.WithContext(ctx).
		Where("category = ?", category).
		Order("created_at ASC").
		Find(&items).
		Error

	if err != nil {
		return nil, fmt.Errorf("failed to get contents for %s: %w", category, err)
	}
	return items, nil
}

// AddContents stores a batch of collected items under one category; all
// rows land together or not at all.
func (r *Repository) AddContents(ctx context.Context, category string, items []models.ContentItem) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now().UnixMilli()
		for i := range items {
			items[i].ID = 0
			items[i].Category = category
			items[i].CreatedAt = now
			if err := tx.Create(&items[i]).Error; err != nil {
				return fmt.Errorf("failed to add content item: %w", err)
			}
		}
		return nil
	})
}

func (r *Repository) ClearContents(ctx context.Context, category string) error {
	return r.db.WithContext(ctx).Delete(&models.ContentItem{}, "category = ?", category).Error
}
