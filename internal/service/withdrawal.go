package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/djetflex/reward_bot/internal/models"
)

// MinReferrals is the fixed referral count required before any withdrawal,
// independent of the tunable minimum amount.
const MinReferrals = 20

var (
	ErrWithdrawalNotFound = errors.New("withdrawal not found")
	ErrAlreadyProcessed   = errors.New("withdrawal already processed")
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrUserBanned         = errors.New("user is banned")
)

// Eligibility is the standing evaluated before a withdrawal session is
// created. Amount is the balance snapshot the whole flow carries.
type Eligibility struct {
	Balance       int64
	ReferralCount int
	MinWithdraw   int64
	Eligible      bool
}

func (s *Service) CheckEligibility(ctx context.Context, userID string) (*Eligibility, error) {
	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	if user.Banned {
		return nil, ErrUserBanned
	}

	minWithdraw, err := s.MinWithdraw(ctx)
	if err != nil {
		return nil, err
	}

	return &Eligibility{
		Balance:       user.Balance,
		ReferralCount: len(user.Referrals),
		MinWithdraw:   minWithdraw,
		Eligible:      user.Balance >= minWithdraw && len(user.Referrals) >= MinReferrals,
	}, nil
}

// WithdrawalRequest is the tuple collected by the interactive flow.
type WithdrawalRequest struct {
	UserID   int64
	Username string
	Fullname string
	Amount   int64
	Phone    string
	Method   string
}

// CommitWithdrawal inserts the pending request and debits the balance in
// one transaction; a failure leaves both ledgers untouched.
func (s *Service) CommitWithdrawal(ctx context.Context, req WithdrawalRequest) (*models.Withdrawal, error) {
	userID := fmt.Sprintf("%d", req.UserID)

	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	if user.Balance < req.Amount {
		return nil, ErrInsufficientFunds
	}

	withdrawal := &models.Withdrawal{
		ID:        fmt.Sprintf("%d", time.Now().UnixMilli()),
		UserID:    req.UserID,
		Username:  req.Username,
		Fullname:  req.Fullname,
		Amount:    req.Amount,
		Phone:     req.Phone,
		Method:    req.Method,
		Status:    models.WithdrawalStatusPending,
		CreatedAt: time.Now().UnixMilli(),
	}

	tx, err := s.repo.BeginTransaction(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := s.repo.CreateWithdrawal(ctx, withdrawal, tx); err != nil {
		s.repo.Rollback(tx)
		return nil, fmt.Errorf("failed to create withdrawal: %w", err)
	}

	user.Balance -= req.Amount
	if err := s.repo.UpdateUser(ctx, user, tx); err != nil {
		s.repo.Rollback(tx)
		return nil, fmt.Errorf("failed to debit user balance: %w", err)
	}

	if err := s.repo.Commit(tx); err != nil {
		return nil, fmt.Errorf("failed to commit withdrawal: %w", err)
	}

	s.logger.Infof("Withdrawal %s created: user %s, amount %d", withdrawal.ID, userID, req.Amount)
	return withdrawal, nil
}

// ApproveWithdrawal marks a pending request approved. The balance was
// already debited at commit time, so no funds move here.
func (s *Service) ApproveWithdrawal(ctx context.Context, id string) (*models.Withdrawal, error) {
	withdrawal, err := s.repo.GetWithdrawal(ctx, id)
	if err != nil {
		return nil, err
	}
	if withdrawal == nil {
		return nil, ErrWithdrawalNotFound
	}
	if withdrawal.Status != models.WithdrawalStatusPending {
		return nil, ErrAlreadyProcessed
	}

	processedAt := time.Now().UnixMilli()
	if err := s.repo.UpdateWithdrawalStatus(ctx, id, models.WithdrawalStatusApproved, processedAt, nil); err != nil {
		return nil, err
	}

	withdrawal.Status = models.WithdrawalStatusApproved
	withdrawal.ProcessedAt = processedAt
	return withdrawal, nil
}

// RejectWithdrawal marks a pending request rejected and credits the amount
// back, both in one transaction. If the refund cannot be applied the
// status stays pending.
func (s *Service) RejectWithdrawal(ctx context.Context, id string) (*models.Withdrawal, error) {
	withdrawal, err := s.repo.GetWithdrawal(ctx, id)
	if err != nil {
		return nil, err
	}
	if withdrawal == nil {
		return nil, ErrWithdrawalNotFound
	}
	if withdrawal.Status != models.WithdrawalStatusPending {
		return nil, ErrAlreadyProcessed
	}

	userID := fmt.Sprintf("%d", withdrawal.UserID)
	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user for refund: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("refund impossible: %w", ErrUserNotFound)
	}

	tx, err := s.repo.BeginTransaction(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	processedAt := time.Now().UnixMilli()
	if err := s.repo.UpdateWithdrawalStatus(ctx, id, models.WithdrawalStatusRejected, processedAt, tx); err != nil {
		s.repo.Rollback(tx)
		return nil, err
	}

	user.Balance += withdrawal.Amount
	if err := s.repo.UpdateUser(ctx, user, tx); err != nil {
		s.repo.Rollback(tx)
		return nil, fmt.Errorf("failed to refund user balance: %w", err)
	}

	if err := s.repo.Commit(tx); err != nil {
		return nil, fmt.Errorf("failed to commit rejection: %w", err)
	}

	withdrawal.Status = models.WithdrawalStatusRejected
	withdrawal.ProcessedAt = processedAt
	s.logger.Infof("Withdrawal %s rejected, %d refunded to user %s", id, withdrawal.Amount, userID)
	return withdrawal, nil
}

func (s *Service) GetWithdrawal(ctx context.Context, id string) (*models.Withdrawal, error) {
	return s.repo.GetWithdrawal(ctx, id)
}

func (s *Service) GetAllWithdrawals(ctx context.Context) (map[string]*models.Withdrawal, error) {
	return s.repo.GetAllWithdrawals(ctx)
}

func (s *Service) GetPendingWithdrawals(ctx context.Context) ([]*models.Withdrawal, error) {
	return s.repo.GetPendingWithdrawals(ctx)
}
