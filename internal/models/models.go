package models

// User is keyed by the string form of the Telegram user ID. Balance is in
// whole FCFA. Referrals holds the IDs of users this user sponsored, in
// signup order.
type User struct {
	ID         string   `gorm:"primaryKey" json:"id"`
	TelegramID int64    `gorm:"uniqueIndex" json:"telegram_id"`
	Username   string   `json:"username"`
	Fullname   string   `json:"fullname"`
	Balance    int64    `gorm:"default:0" json:"balance"`
	Referrals  []string `gorm:"serializer:json" json:"referrals"`
	ReferredBy string   `json:"referred_by"`
	JoinedAt   int64    `json:"joined_at"`
	Banned     bool     `gorm:"default:false" json:"banned"`
}

const (
	WithdrawalStatusPending  = "pending"
	WithdrawalStatusApproved = "approved"
	WithdrawalStatusRejected = "rejected"
)

// Withdrawal carries a snapshot of the requester's identity taken at
// request time. Username and Fullname are deliberately never re-read from
// the user record afterwards.
type Withdrawal struct {
	ID          string `gorm:"primaryKey" json:"id"`
	UserID      int64  `gorm:"index" json:"user_id"`
	Username    string `json:"username"`
	Fullname    string `json:"fullname"`
	Amount      int64  `json:"amount"`
	Phone       string `json:"phone"`
	Method      string `json:"method"`
	Status      string `gorm:"default:pending" json:"status"`
	CreatedAt   int64  `json:"created_at"`
	ProcessedAt int64  `json:"processed_at"` // 0 while pending
}

// Setting keys.
const (
	SettingMinWithdraw = "min_withdraw"
	SettingRefBonus    = "ref_bonus"
)

type Setting struct {
	Key   string `gorm:"primaryKey" json:"key"`
	Value int64  `json:"value"`
}

type Channel struct {
	ChannelID string `gorm:"primaryKey" json:"channel_id"`
	Link      string `json:"link"`
}

// ContentItem is one broadcastable element of a category (menu key).
type ContentItem struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	Category  string `gorm:"index" json:"category"`
	Type      string `json:"type"` // text, photo, video, audio, voice
	FileID    string `json:"file_id"`
	Text      string `json:"text"`
	Caption   string `json:"caption"`
	CreatedAt int64  `json:"created_at"`
}
