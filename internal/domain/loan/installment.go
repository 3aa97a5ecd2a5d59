package loan

import (
	"time"

	"github.com/shopspring/decimal"
)

type InstallmentStatus string

const (
	InstallmentDue           InstallmentStatus = "A_PAYER"
	InstallmentPartiallyPaid InstallmentStatus = "PARTIELLEMENT_PAYE"
	InstallmentPaid          InstallmentStatus = "PAYE"
	InstallmentOverdue       InstallmentStatus = "EN_RETARD"
)

// Installment is one scheduled repayment slice of a loan. The schedule is
// generated in bulk at disbursement; sequence numbers are unique per loan.
type Installment struct {
	ID         uint64            `gorm:"primaryKey;column:id" json:"-"`
	LoanID     uint64            `gorm:"uniqueIndex:ux_installments_loan_seq" json:"loan_id"`
	Sequence   int               `gorm:"uniqueIndex:ux_installments_loan_seq" json:"sequence"`
	AmountDue  decimal.Decimal   `gorm:"type:decimal(15,2)" json:"amount_due"`
	AmountPaid decimal.Decimal   `gorm:"type:decimal(15,2)" json:"amount_paid"`
	DueDate    time.Time         `gorm:"type:date" json:"due_date"`
	Status     InstallmentStatus `gorm:"size:20;default:'A_PAYER'" json:"status"`
	PaidAt     *time.Time        `json:"paid_at,omitempty"`
}

func (Installment) TableName() string { return "installments" }

// Outstanding is the unpaid part of the installment.
func (i *Installment) Outstanding() decimal.Decimal {
	o := i.AmountDue.Sub(i.AmountPaid)
	if o.IsNegative() {
		return decimal.Zero
	}
	return o
}
