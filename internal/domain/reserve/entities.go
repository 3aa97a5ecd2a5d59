package reserve

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrInsufficientFunds = errors.New("insufficient reserve funds")
	ErrInvalidAmount     = errors.New("reserve amount must be strictly positive")
)

// Account is the singleton central reserve (caisse générale). It holds its
// own balance plus a cached sum of every caisse's available funds.
type Account struct {
	ID                uint64          `gorm:"primaryKey;column:id" json:"-"`
	Name              string          `gorm:"size:100;default:'Caisse Générale'" json:"name"`
	ReserveBalance    decimal.Decimal `gorm:"type:decimal(15,2)" json:"reserve_balance"`
	AggregatedCaisses decimal.Decimal `gorm:"type:decimal(15,2);column:aggregated_caisses_balance" json:"aggregated_caisses_balance"`
	UpdatedAt         time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Account) TableName() string { return "reserve_account" }

// SystemBalance is derived, never stored.
func (a *Account) SystemBalance() decimal.Decimal {
	return a.ReserveBalance.Add(a.AggregatedCaisses)
}

type MovementKind string

const (
	KindCredit     MovementKind = "ENTREE"
	KindDebit      MovementKind = "SORTIE"
	KindFundCaisse MovementKind = "ALIMENTATION_CAISSE"
)

// Credits reports whether the kind adds to the reserve balance.
func (k MovementKind) Credits() bool { return k == KindCredit }

// Movement mirrors ledger.Movement but scoped to the reserve account.
type Movement struct {
	ID            uint64          `gorm:"primaryKey;column:id" json:"-"`
	Kind          MovementKind    `gorm:"size:30" json:"kind"`
	Amount        decimal.Decimal `gorm:"type:decimal(15,2)" json:"amount"`
	BalanceBefore decimal.Decimal `gorm:"type:decimal(15,2)" json:"balance_before"`
	BalanceAfter  decimal.Decimal `gorm:"type:decimal(15,2)" json:"balance_after"`
	// CaisseID is the destination caisse for fund-caisse movements.
	CaisseID  *uint64   `json:"caisse_id,omitempty"`
	Actor     string    `gorm:"size:100" json:"actor"`
	Note      string    `gorm:"type:text" json:"note"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Movement) TableName() string { return "reserve_movements" }
