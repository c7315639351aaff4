package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/djetflex/reward_bot/internal/models"
)

var ErrUserNotFound = errors.New("user not found")

// RegisterUser creates the user on first contact. The referral payload is
// the raw /start argument; its first underscore-separated segment is the
// sponsor ID. A valid, distinct, existing sponsor is credited the referral
// bonus exactly once — repeated signups for the same ID insert nothing and
// credit nothing.
func (s *Service) RegisterUser(ctx context.Context, telegramID int64, username, fullname, refPayload string) (*models.User, error) {
	id := fmt.Sprintf("%d", telegramID)

	existing, err := s.repo.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	sponsorID := ""
	if refPayload != "" {
		refID := strings.SplitN(refPayload, "_", 2)[0]
		if refID != "" && refID != id {
			sponsor, err := s.repo.GetUser(ctx, refID)
			if err != nil {
				return nil, err
			}
			if sponsor != nil {
				sponsorID = refID
			}
		}
	}

	user := &models.User{
		ID:         id,
		TelegramID: telegramID,
		Username:   username,
		Fullname:   fullname,
		Balance:    0,
		Referrals:  []string{},
		ReferredBy: sponsorID,
		JoinedAt:   time.Now().UnixMilli(),
		Banned:     false,
	}

	created, err := s.repo.CreateUser(ctx, user)
	if err != nil {
		return nil, err
	}
	if !created {
		// Lost a race with another signup for the same ID. The stored
		// record wins and no bonus is credited here.
		return s.repo.GetUser(ctx, id)
	}

	if sponsorID != "" {
		bonus, err := s.RefBonus(ctx)
		if err != nil {
			return nil, err
		}
		if err := s.repo.CreditReferralBonus(ctx, sponsorID, id, bonus); err != nil {
			s.logger.Errorf("Failed to credit referral bonus to %s: %v", sponsorID, err)
			return nil, err
		}
		s.logger.Infof("Referral bonus %d credited to %s for new user %s", bonus, sponsorID, id)
	}

	return user, nil
}

func (s *Service) GetUser(ctx context.Context, id string) (*models.User, error) {
	return s.repo.GetUser(ctx, id)
}

func (s *Service) GetAllUsers(ctx context.Context) ([]*models.User, error) {
	return s.repo.GetAllUsers(ctx)
}

// SetBanned toggles the ban flag; banned users are refused before any flow.
func (s *Service) SetBanned(ctx context.Context, id string, banned bool) error {
	user, err := s.repo.GetUser(ctx, id)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}

	user.Banned = banned
	return s.repo.UpdateUser(ctx, user, nil)
}
