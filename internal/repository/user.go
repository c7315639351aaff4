package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/djetflex/reward_bot/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func (r *Repository) GetUser(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// CreateUser inserts the user only if the ID is not taken yet. A repeated
// signup for the same ID is silently ignored; the returned bool reports
// whether a row was actually inserted.
func (r *Repository) CreateUser(ctx context.Context, user *models.User) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(user)
	if res.Error != nil {
		return false, fmt.Errorf("failed to create user %s: %w", user.ID, res.Error)
	}
	return res.RowsAffected > 0, nil
}

// UpdateUser replaces the full mutable field set; the caller supplies the
// complete post-update snapshot.
func (r *Repository) UpdateUser(ctx context.Context, user *models.User, tx *gorm.DB) error {
	db := tx
	if tx == nil {
		db = r.db
	}

	return db.WithContext(ctx).Save(user).Error
}

func (r *Repository) GetAllUsers(ctx context.Context) ([]*models.User, error) {
	var users []*models.User
	err := r.db.WithContext(ctx).Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

// CreditReferralBonus increments the sponsor's balance and appends the new
// user to the sponsor's referral list in one transaction. A concurrent read
// sees either both effects or neither.
func (r *Repository) CreditReferralBonus(ctx context.Context, sponsorID, newUserID string, amount int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var sponsor models.User
		if err := tx.First(&sponsor, "id = ?", sponsorID).Error; err != nil {
			return fmt.Errorf("failed to load sponsor %s: %w", sponsorID, err)
		}

		sponsor.Balance += amount
		sponsor.Referrals = append(sponsor.Referrals, newUserID)

		if err := tx.Save(&sponsor).Error; err != nil {
			return fmt.Errorf("failed to credit sponsor %s: %w", sponsorID, err)
		}
		return nil
	})
}
