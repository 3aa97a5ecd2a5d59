package contribution

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound      = errors.New("contribution not found")
	ErrInvalidAmount = errors.New("contribution amount must be strictly positive")
)

// Contribution is a member's periodic payment into their caisse. Recording
// one credits the caisse fund and counts toward the member's loan
// eligibility.
type Contribution struct {
	ID         uint64          `gorm:"primaryKey;column:id" json:"id"`
	CaisseID   uint64          `gorm:"index" json:"caisse_id"`
	MemberID   uint64          `gorm:"index" json:"member_id"`
	Amount     decimal.Decimal `gorm:"type:decimal(15,2)" json:"amount"`
	MovementID *uint64         `json:"movement_id,omitempty"`
	Period     string          `gorm:"size:20" json:"period"`
	Actor      string          `gorm:"size:100" json:"actor"`
	CreatedAt  time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

func (Contribution) TableName() string { return "contributions" }
