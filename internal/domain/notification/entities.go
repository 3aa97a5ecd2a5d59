package notification

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("notification not found")

type Kind string

const (
	KindLoanSubmitted Kind = "PRET_SOUMIS"
	KindLoanApproved  Kind = "PRET_VALIDE"
	KindLoanRejected  Kind = "PRET_REJETE"
	KindLoanBlocked   Kind = "PRET_BLOQUE"
	KindLoanDisbursed Kind = "PRET_DECAISSE"
	KindLoanRepaid    Kind = "PRET_REMBOURSE"
	KindLoanOverdue   Kind = "PRET_EN_RETARD"
)

// Notification is a persisted message addressed to a caisse. Loan
// notifications carry the loan id so they can be cascaded when a rejected
// loan is deleted.
type Notification struct {
	ID        uint64    `gorm:"primaryKey;column:id" json:"id"`
	CaisseID  uint64    `gorm:"index" json:"caisse_id"`
	LoanID    *uint64   `gorm:"index" json:"loan_id,omitempty"`
	Kind      Kind      `gorm:"size:30" json:"kind"`
	Message   string    `gorm:"type:text" json:"message"`
	Read      bool      `gorm:"default:false" json:"read"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Notification) TableName() string { return "notifications" }
