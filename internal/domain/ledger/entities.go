package ledger

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound          = errors.New("ledger entry not found")
	ErrInvalidAmount     = errors.New("ledger amount must be strictly positive")
	ErrInsufficientFunds = errors.New("insufficient funds")
)

// Kind classifies a fund movement and fixes its sign convention.
type Kind string

const (
	KindAlimentation Kind = "ALIMENTATION"      // inflow: funding / contribution
	KindDisbursement Kind = "DECAISSEMENT"      // outflow: loan disbursement
	KindRepayment    Kind = "REMBOURSEMENT"     // inflow: loan repayment
	KindFee          Kind = "FRAIS"             // outflow
	KindOther        Kind = "AUTRE"             // outflow
	KindTransferOut  Kind = "TRANSFERT_SORTANT" // outflow: transfer to caisse or reserve
	KindTransferIn   Kind = "TRANSFERT_ENTRANT" // inflow: transfer received
)

// Credits reports whether the kind adds to the balance.
func (k Kind) Credits() bool {
	switch k {
	case KindAlimentation, KindRepayment, KindTransferIn:
		return true
	default:
		return false
	}
}

// Movement is an immutable balance-affecting entry for one caisse. The
// before/after snapshot must satisfy after = before ± amount per the kind.
type Movement struct {
	ID            uint64          `gorm:"primaryKey;column:id" json:"-"`
	CaisseID      uint64          `gorm:"index" json:"caisse_id"`
	Kind          Kind            `gorm:"size:30" json:"kind"`
	Amount        decimal.Decimal `gorm:"type:decimal(15,2)" json:"amount"`
	BalanceBefore decimal.Decimal `gorm:"type:decimal(15,2)" json:"balance_before"`
	BalanceAfter  decimal.Decimal `gorm:"type:decimal(15,2)" json:"balance_after"`
	LoanID        *uint64         `gorm:"index" json:"loan_id,omitempty"`
	// CounterpartyCaisseID records the other caisse of a transfer movement.
	CounterpartyCaisseID *uint64   `json:"counterparty_caisse_id,omitempty"`
	Actor                string    `gorm:"size:100" json:"actor"`
	Note                 string    `gorm:"type:text" json:"note"`
	CreatedAt            time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Movement) TableName() string { return "fund_movements" }
