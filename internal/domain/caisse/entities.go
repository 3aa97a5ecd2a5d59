package caisse

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound            = errors.New("caisse not found")
	ErrUniquenessViolation = errors.New("caisse code or association name already taken")
	ErrHasDependents       = errors.New("caisse still has members or loans")
)

type Status string

const (
	StatusActive    Status = "ACTIVE"
	StatusInactive  Status = "INACTIVE"
	StatusSuspended Status = "SUSPENDED"
)

// Caisse is a local savings-and-loan group's fund account. Its balance
// (FundAvailable) is mutated exclusively through the fund ledger.
type Caisse struct {
	ID              uint64          `gorm:"primaryKey;column:id" json:"-"`
	Code            string          `gorm:"size:50;uniqueIndex:ux_caisses_code" json:"code"`
	AssociationName string          `gorm:"size:200;uniqueIndex:ux_caisses_name" json:"association_name"`
	Status          Status          `gorm:"size:20;default:'INACTIVE'" json:"status"`
	FundInitial     decimal.Decimal `gorm:"type:decimal(15,2)" json:"fund_initial"`
	FundAvailable   decimal.Decimal `gorm:"type:decimal(15,2)" json:"fund_available"`
	TotalDisbursed  decimal.Decimal `gorm:"type:decimal(15,2)" json:"total_loans_disbursed"`
	TotalRepaid     decimal.Decimal `gorm:"type:decimal(15,2)" json:"total_repayments_received"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Caisse) TableName() string { return "caisses" }
