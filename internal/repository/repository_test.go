package repository

import (
	"context"
	"testing"

	"github.com/djetflex/reward_bot/internal/models"
	"github.com/djetflex/reward_bot/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

func newTestRepository(t *testing.T) *Repository {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// A second connection would see its own empty in-memory database.
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Withdrawal{},
		&models.Setting{},
		&models.Channel{},
		&models.ContentItem{},
	))

	return NewRepository(db, utils.InitLogger())
}

func TestCreateUserIdempotent(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	created, err := repo.CreateUser(ctx, &models.User{
		ID:         "100",
		TelegramID: 100,
		Fullname:   "Kodjo Agbeko",
		Balance:    500,
		Referrals:  []string{},
	})
	require.NoError(t, err)
	assert.True(t, created)

	// A second signup attempt must neither error nor overwrite.
	created, err = repo.CreateUser(ctx, &models.User{
		ID:         "100",
		TelegramID: 100,
		Fullname:   "Quelqu'un D'autre",
		Balance:    999999,
	})
	require.NoError(t, err)
	assert.False(t, created)

	user, err := repo.GetUser(ctx, "100")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "Kodjo Agbeko", user.Fullname)
	assert.Equal(t, int64(500), user.Balance)
}

func TestGetUserAbsent(t *testing.T) {
	repo := newTestRepository(t)

	user, err := repo.GetUser(context.Background(), "404")
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestCreditReferralBonus(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	_, err := repo.CreateUser(ctx, &models.User{
		ID:         "1",
		TelegramID: 1,
		Balance:    1000,
		Referrals:  []string{"7"},
	})
	require.NoError(t, err)

	require.NoError(t, repo.CreditReferralBonus(ctx, "1", "42", 500))

	sponsor, err := repo.GetUser(ctx, "1")
	require.NoError(t, err)
	require.NotNil(t, sponsor)
	assert.Equal(t, int64(1500), sponsor.Balance)
	assert.Equal(t, []string{"7", "42"}, sponsor.Referrals)
}

func TestCreditReferralBonusMissingSponsor(t *testing.T) {
	repo := newTestRepository(t)

	err := repo.CreditReferralBonus(context.Background(), "777", "42", 500)
	assert.Error(t, err)
}

func TestSetSettingUpsert(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	require.NoError(t, repo.SetSetting(ctx, models.SettingMinWithdraw, 10000))
	require.NoError(t, repo.SetSetting(ctx, models.SettingMinWithdraw, 15000))

	setting, err := repo.GetSetting(ctx, models.SettingMinWithdraw)
	require.NoError(t, err)
	require.NotNil(t, setting)
	assert.Equal(t, int64(15000), setting.Value)

	settings, err := repo.GetSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{models.SettingMinWithdraw: 15000}, settings)
}

func TestGetSettingAbsent(t *testing.T) {
	repo := newTestRepository(t)

	setting, err := repo.GetSetting(context.Background(), models.SettingRefBonus)
	require.NoError(t, err)
	assert.Nil(t, setting)
}

func TestUpdateWithdrawalStatus(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	require.NoError(t, repo.CreateWithdrawal(ctx, &models.Withdrawal{
		ID:        "1700000000000",
		UserID:    100,
		Amount:    50000,
		Phone:     "90123456",
		Status:    models.WithdrawalStatusPending,
		CreatedAt: 1700000000000,
	}, nil))

	require.NoError(t, repo.UpdateWithdrawalStatus(ctx, "1700000000000", models.WithdrawalStatusApproved, 1700000001000, nil))

	withdrawal, err := repo.GetWithdrawal(ctx, "1700000000000")
	require.NoError(t, err)
	require.NotNil(t, withdrawal)
	assert.Equal(t, models.WithdrawalStatusApproved, withdrawal.Status)
	assert.Equal(t, int64(1700000001000), withdrawal.ProcessedAt)
}

func TestUpdateWithdrawalStatusMissing(t *testing.T) {
	repo := newTestRepository(t)

	err := repo.UpdateWithdrawalStatus(context.Background(), "nope", models.WithdrawalStatusApproved, 1, nil)
	assert.Error(t, err)
}

func TestGetAllWithdrawals(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	require.NoError(t, repo.CreateWithdrawal(ctx, &models.Withdrawal{ID: "a", UserID: 1, Status: models.WithdrawalStatusPending}, nil))
	require.NoError(t, repo.CreateWithdrawal(ctx, &models.Withdrawal{ID: "b", UserID: 2, Status: models.WithdrawalStatusPending}, nil))

	withdrawals, err := repo.GetAllWithdrawals(ctx)
	require.NoError(t, err)
	assert.Len(t, withdrawals, 2)
	assert.Equal(t, int64(1), withdrawals["a"].UserID)
	assert.Equal(t, int64(2), withdrawals["b"].UserID)
}

func TestContentsRoundTrip(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	items := []models.ContentItem{
		{Type: "text", Text: "Coupon du jour"},
		{Type: "photo", FileID: "abc", Caption: "Safe"},
	}
	require.NoError(t, repo.AddContents(ctx, "grosse", items))

	stored, err := repo.GetContents(ctx, "grosse")
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.Equal(t, "grosse", stored[0].Category)

	require.NoError(t, repo.ClearContents(ctx, "grosse"))
	stored, err = repo.GetContents(ctx, "grosse")
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestChannels(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	require.NoError(t, repo.AddChannel(ctx, "@canal1", "https://t.me/canal1"))
	require.NoError(t, repo.AddChannel(ctx, "@canal1", "https://t.me/nouveau"))

	channels, err := repo.GetChannels(ctx)
	require.NoError(t, err)
	require.Len(t, channels, 1)
	assert.Equal(t, "https://t.me/nouveau", channels[0].Link)

	require.NoError(t, repo.RemoveChannel(ctx, "@canal1"))
	channels, err = repo.GetChannels(ctx)
	require.NoError(t, err)
	assert.Empty(t, channels)
}
