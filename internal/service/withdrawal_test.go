package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/djetflex/reward_bot/config"
	"github.com/djetflex/reward_bot/internal/models"
	"github.com/djetflex/reward_bot/internal/repository"
	"github.com/djetflex/reward_bot/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

func newTestService(t *testing.T) *Service {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Withdrawal{},
		&models.Setting{},
		&models.Channel{},
		&models.ContentItem{},
	))

	logger := utils.InitLogger()
	cfg := &config.Config{
		AdminIDs:    "999",
		MinWithdraw: 10000,
		RefBonus:    500,
	}
	return NewService(repository.NewRepository(db, logger), cfg, logger)
}

func seedUser(t *testing.T, s *Service, telegramID int64, balance int64, referralCount int) *models.User {
	t.Helper()

	referrals := make([]string, referralCount)
	for i := range referrals {
		referrals[i] = fmt.Sprintf("ref%d", i)
	}

	user := &models.User{
		ID:         fmt.Sprintf("%d", telegramID),
		TelegramID: telegramID,
		Username:   "tester",
		Fullname:   "Afi Mensah",
		Balance:    balance,
		Referrals:  referrals,
		JoinedAt:   1700000000000,
	}
	created, err := s.repo.CreateUser(context.Background(), user)
	require.NoError(t, err)
	require.True(t, created)
	return user
}

func TestCommitWithdrawalDebitsAtCommit(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	seedUser(t, s, 100, 50000, 25)

	elig, err := s.CheckEligibility(ctx, "100")
	require.NoError(t, err)
	require.True(t, elig.Eligible)
	assert.Equal(t, int64(50000), elig.Balance)

	withdrawal, err := s.CommitWithdrawal(ctx, WithdrawalRequest{
		UserID:   100,
		Username: "tester",
		Fullname: "Afi Mensah",
		Amount:   elig.Balance,
		Phone:    "90123456",
		Method:   "Wave",
	})
	require.NoError(t, err)

	assert.Equal(t, models.WithdrawalStatusPending, withdrawal.Status)
	assert.Equal(t, int64(50000), withdrawal.Amount)
	assert.Equal(t, "Wave", withdrawal.Method)
	assert.Zero(t, withdrawal.ProcessedAt)

	// The debit happens at commit, not at approval.
	user, err := s.GetUser(ctx, "100")
	require.NoError(t, err)
	assert.Equal(t, int64(0), user.Balance)
}

func TestRejectRestoresBalanceExactly(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	seedUser(t, s, 100, 50000, 25)

	withdrawal, err := s.CommitWithdrawal(ctx, WithdrawalRequest{
		UserID: 100, Username: "tester", Fullname: "Afi Mensah",
		Amount: 50000, Phone: "90123456", Method: "Wave",
	})
	require.NoError(t, err)

	rejected, err := s.RejectWithdrawal(ctx, withdrawal.ID)
	require.NoError(t, err)
	assert.Equal(t, models.WithdrawalStatusRejected, rejected.Status)
	assert.NotZero(t, rejected.ProcessedAt)

	user, err := s.GetUser(ctx, "100")
	require.NoError(t, err)
	assert.Equal(t, int64(50000), user.Balance)

	// Rejecting twice must not refund twice.
	_, err = s.RejectWithdrawal(ctx, withdrawal.ID)
	assert.ErrorIs(t, err, ErrAlreadyProcessed)

	user, err = s.GetUser(ctx, "100")
	require.NoError(t, err)
	assert.Equal(t, int64(50000), user.Balance)
}

func TestApproveIsTerminal(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	seedUser(t, s, 100, 50000, 25)

	withdrawal, err := s.CommitWithdrawal(ctx, WithdrawalRequest{
		UserID: 100, Username: "tester", Fullname: "Afi Mensah",
		Amount: 50000, Phone: "90123456", Method: "Wave",
	})
	require.NoError(t, err)

	approved, err := s.ApproveWithdrawal(ctx, withdrawal.ID)
	require.NoError(t, err)
	assert.Equal(t, models.WithdrawalStatusApproved, approved.Status)
	assert.NotZero(t, approved.ProcessedAt)

	// Approval moves no funds: the debit already happened at commit.
	user, err := s.GetUser(ctx, "100")
	require.NoError(t, err)
	assert.Equal(t, int64(0), user.Balance)

	_, err = s.ApproveWithdrawal(ctx, withdrawal.ID)
	assert.ErrorIs(t, err, ErrAlreadyProcessed)

	// A terminal record cannot be rejected either.
	_, err = s.RejectWithdrawal(ctx, withdrawal.ID)
	assert.ErrorIs(t, err, ErrAlreadyProcessed)
}

func TestApproveUnknownWithdrawal(t *testing.T) {
	s := newTestService(t)

	_, err := s.ApproveWithdrawal(context.Background(), "1699999999999")
	assert.ErrorIs(t, err, ErrWithdrawalNotFound)
}

func TestEligibilityGate(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	// Enough balance, not enough referrals.
	seedUser(t, s, 100, 50000, 19)
	elig, err := s.CheckEligibility(ctx, "100")
	require.NoError(t, err)
	assert.False(t, elig.Eligible)

	// Enough referrals, not enough balance.
	seedUser(t, s, 200, 9999, 25)
	elig, err = s.CheckEligibility(ctx, "200")
	require.NoError(t, err)
	assert.False(t, elig.Eligible)

	// No pending withdrawal may exist for either.
	withdrawals, err := s.GetAllWithdrawals(ctx)
	require.NoError(t, err)
	assert.Empty(t, withdrawals)
}

func TestEligibilityBannedUser(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	seedUser(t, s, 100, 50000, 25)

	require.NoError(t, s.SetBanned(ctx, "100", true))

	_, err := s.CheckEligibility(ctx, "100")
	assert.ErrorIs(t, err, ErrUserBanned)
}

func TestCommitInsufficientFunds(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	seedUser(t, s, 100, 4000, 25)

	_, err := s.CommitWithdrawal(ctx, WithdrawalRequest{
		UserID: 100, Username: "tester", Fullname: "Afi Mensah",
		Amount: 50000, Phone: "90123456", Method: "Wave",
	})
	assert.ErrorIs(t, err, ErrInsufficientFunds)

	// No partial effects: balance intact, no orphan record.
	user, err := s.GetUser(ctx, "100")
	require.NoError(t, err)
	assert.Equal(t, int64(4000), user.Balance)

	withdrawals, err := s.GetAllWithdrawals(ctx)
	require.NoError(t, err)
	assert.Empty(t, withdrawals)
}

func TestRegisterUserWithReferral(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	seedUser(t, s, 1, 0, 0)

	user, err := s.RegisterUser(ctx, 42, "nouveau", "Yao Kossi", "1")
	require.NoError(t, err)
	assert.Equal(t, "1", user.ReferredBy)

	sponsor, err := s.GetUser(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, int64(500), sponsor.Balance)
	assert.Equal(t, []string{"42"}, sponsor.Referrals)

	// Repeating the signup credits nothing more.
	_, err = s.RegisterUser(ctx, 42, "nouveau", "Yao Kossi", "1")
	require.NoError(t, err)

	sponsor, err = s.GetUser(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, int64(500), sponsor.Balance)
	assert.Equal(t, []string{"42"}, sponsor.Referrals)
}

func TestRegisterUserSelfReferral(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	user, err := s.RegisterUser(ctx, 42, "nouveau", "Yao Kossi", "42")
	require.NoError(t, err)
	assert.Empty(t, user.ReferredBy)
	assert.Equal(t, int64(0), user.Balance)
}

func TestRegisterUserUnknownSponsor(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	user, err := s.RegisterUser(ctx, 42, "nouveau", "Yao Kossi", "12345")
	require.NoError(t, err)
	assert.Empty(t, user.ReferredBy)
}

func TestSeedDefaultsNeverOverwrites(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	require.NoError(t, s.SeedDefaults(ctx))

	minWithdraw, err := s.MinWithdraw(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(10000), minWithdraw)

	// Operator adjustment survives a reseed (e.g. restart).
	require.NoError(t, s.SetSetting(ctx, models.SettingMinWithdraw, 20000))
	require.NoError(t, s.SeedDefaults(ctx))

	minWithdraw, err = s.MinWithdraw(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(20000), minWithdraw)
}

func TestIsAdmin(t *testing.T) {
	s := newTestService(t)

	assert.True(t, s.IsAdmin("999"))
	assert.False(t, s.IsAdmin("100"))
}
