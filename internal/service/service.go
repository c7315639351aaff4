package service

import (
	"context"

	"github.com/djetflex/reward_bot/config"
	"github.com/djetflex/reward_bot/internal/models"
	"github.com/djetflex/reward_bot/utils"
	"gorm.io/gorm"
)

type Service struct {
	repo   Repository
	config *config.Config
	logger *utils.Logger

	adminIDs map[string]bool
}

type Repository interface {
	GetUser(ctx context.Context, id string) (*models.User, error)
	CreateUser(ctx context.Context, user *models.User) (bool, error)
	UpdateUser(ctx context.Context, user *models.User, tx *gorm.DB) error
	GetAllUsers(ctx context.Context) ([]*models.User, error)
	CreditReferralBonus(ctx context.Context, sponsorID, newUserID string, amount int64) error

	GetWithdrawal(ctx context.Context, id string) (*models.Withdrawal, error)
	CreateWithdrawal(ctx context.Context, withdrawal *models.Withdrawal, tx *gorm.DB) error
	UpdateWithdrawalStatus(ctx context.Context, id, status string, processedAt int64, tx *gorm.DB) error
	GetAllWithdrawals(ctx context.Context) (map[string]*models.Withdrawal, error)
	GetPendingWithdrawals(ctx context.Context) ([]*models.Withdrawal, error)

	GetSetting(ctx context.Context, key string) (*models.Setting, error)
	SetSetting(ctx context.Context, key string, value int64) error
	GetSettings(ctx context.Context) (map[string]int64, error)

	GetChannels(ctx context.Context) ([]models.Channel, error)
	AddChannel(ctx context.Context, channelID, link string) error
	RemoveChannel(ctx context.Context, channelID string) error

	GetContents(ctx context.Context, category string) ([]models.ContentItem, error)
	AddContents(ctx context.Context, category string, items []models.ContentItem) error
	ClearContents(ctx context.Context, category string) error

	BeginTransaction(ctx context.Context) (*gorm.DB, error)
	Commit(tx *gorm.DB) error
	Rollback(tx *gorm.DB)
	WithTransaction(tx *gorm.DB) *gorm.DB
}

func NewService(repo Repository, cfg *config.Config, logger *utils.Logger) *Service {
	adminIDs := make(map[string]bool)
	for _, id := range cfg.AdminIDList() {
		adminIDs[id] = true
	}

	return &Service{
		repo:     repo,
		config:   cfg,
		logger:   logger,
		adminIDs: adminIDs,
	}
}

func (s *Service) IsAdmin(userID string) bool {
	return s.adminIDs[userID]
}

func (s *Service) WithdrawChannel() string {
	return s.config.WithdrawChannel
}

func (s *Service) AdminIDs() []string {
	return s.config.AdminIDList()
}
