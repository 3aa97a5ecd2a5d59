package transfer

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound          = errors.New("transfer not found")
	ErrInvalidTransition = errors.New("operation not permitted in the transfer's current state")
	ErrInvalidEndpoints  = errors.New("transfer endpoints do not match its kind")
)

type Kind string

const (
	KindCaisseToCaisse  Kind = "CAISSE_VERS_CAISSE"
	KindCaisseToReserve Kind = "CAISSE_VERS_GENERALE"
	KindReserveToCaisse Kind = "GENERALE_VERS_CAISSE"
)

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusExecuted  Status = "EXECUTED"
	StatusCancelled Status = "CANCELLED"
)

// Transfer moves funds between two caisses, or between a caisse and the
// reserve. Execution produces one or two ledger entries; both sides commit in
// the same transaction or not at all.
type Transfer struct {
	ID             uint64          `gorm:"primaryKey;column:id" json:"id"`
	Kind           Kind            `gorm:"size:30" json:"kind"`
	Amount         decimal.Decimal `gorm:"type:decimal(15,2)" json:"amount"`
	SourceCaisseID *uint64         `gorm:"index" json:"source_caisse_id,omitempty"`
	DestCaisseID   *uint64         `gorm:"index" json:"dest_caisse_id,omitempty"`
	Status         Status          `gorm:"size:20;default:'PENDING'" json:"status"`

	// Links to the ledger entries execution produced.
	SourceMovementID *uint64 `json:"source_movement_id,omitempty"`
	DestMovementID   *uint64 `json:"dest_movement_id,omitempty"`

	Actor       string     `gorm:"size:100" json:"actor"`
	Note        string     `gorm:"type:text" json:"note"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	ExecutedAt  *time.Time `json:"executed_at,omitempty"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
}

func (Transfer) TableName() string { return "transfers" }
