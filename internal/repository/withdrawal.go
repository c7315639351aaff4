package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/djetflex/reward_bot/internal/models"
	"gorm.io/gorm"
)

func (r *Repository) GetWithdrawal(ctx context.Context, id string) (*models.Withdrawal, error) {
	var withdrawal models.Withdrawal
	err := r.db.WithContext(ctx).First(&withdrawal, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get withdrawal %s: %w", id, err)
	}
	return &withdrawal, nil
}

func (r *Repository) CreateWithdrawal(ctx context.Context, withdrawal *models.Withdrawal, tx *gorm.DB) error {
	db := tx
	if tx == nil {
		db = r.db
	}

	return db.WithContext(ctx).Create(withdrawal).Error
}

// UpdateWithdrawalStatus stamps the terminal status and processed time.
// The caller is responsible for only transitioning pending records.
func (r *Repository) UpdateWithdrawalStatus(ctx context.Context, id, status string, processedAt int64, tx *gorm.DB) error {
	db := tx
	if tx == nil {
		db = r.db
	}

	res := db.WithContext(ctx).
		Model(&models.Withdrawal{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":       status,
			"processed_at": processedAt,
		})

	if res.Error != nil {
		return fmt.Errorf("failed to update withdrawal status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("withdrawal %s not found", id)
	}
	return nil
}

// GetAllWithdrawals returns every request keyed by ID, for admin review.
func (r *Repository) GetAllWithdrawals(ctx context.Context) (map[string]*models.Withdrawal, error) {
	var list []*models.Withdrawal
	err := r.db.WithContext(ctx).Find(&list).Error
	if err != nil {
		return nil, err
	}

	withdrawals := make(map[string]*models.Withdrawal, len(list))
	for _, w := range list {
		withdrawals[w.ID] = w
	}
	return withdrawals, nil
}

func (r *Repository) GetPendingWithdrawals(ctx context.Context) ([]*models.Withdrawal, error) {
	var withdrawals []*models.Withdrawal
	err := r.db.WithContext(ctx).
		Where("status = ?", models.WithdrawalStatusPending).
		Order("created_at ASC").
		Find(&withdrawals).
		Error

	if err != nil {
		return nil, fmt.Errorf("failed to get pending withdrawals: %w", err)
	}
	return withdrawals, nil
}
