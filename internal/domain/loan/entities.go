package loan

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound             = errors.New("loan not found")
	ErrInvalidTransition    = errors.New("operation not permitted in the loan's current state")
	ErrInvalidAmount        = errors.New("invalid loan amount")
	ErrCapExceeded          = errors.New("approved amount exceeds the member's contribution cap")
	ErrEligibilityDenied    = errors.New("member does not meet the minimum-contribution eligibility rule")
	ErrOpenLoanExists       = errors.New("member already has an open loan")
	ErrUniquenessViolation  = errors.New("loan number already exists")
	ErrAmountExceedsBalance = errors.New("repayment exceeds the remaining loan balance")
)

// MinContributionForLoan is the minimum cumulative contribution a member must
// have before submitting a loan request.
var MinContributionForLoan = decimal.NewFromInt(3000)

// CapMultiplier bounds the approved amount at 2x the member's cumulative
// contributions.
var CapMultiplier = decimal.NewFromInt(2)

type Status string

const (
	StatusSubmitted    Status = "SUBMITTED"
	StatusPendingAdmin Status = "PENDING_ADMIN_REVIEW"
	StatusApproved     Status = "APPROVED"
	StatusRejected     Status = "REJECTED"
	StatusBlocked      Status = "BLOCKED"
	StatusActive       Status = "ACTIVE"
	StatusRepaid       Status = "REPAID"
	StatusOverdue      Status = "OVERDUE"
)

// OpenStatuses are the states that block the member from submitting another
// loan. Repaid and rejected loans do not.
var OpenStatuses = []Status{
	StatusSubmitted, StatusPendingAdmin, StatusApproved,
	StatusBlocked, StatusActive, StatusOverdue,
}

type Loan struct {
	ID              uint64          `gorm:"primaryKey;column:id" json:"-"`
	Number          string          `gorm:"size:20;uniqueIndex:ux_loans_number" json:"number"`
	MemberID        uint64          `gorm:"index" json:"member_id"`
	CaisseID        uint64          `gorm:"index" json:"caisse_id"`
	AmountRequested decimal.Decimal `gorm:"type:decimal(15,2)" json:"amount_requested"`
	AmountApproved  decimal.Decimal `gorm:"type:decimal(15,2)" json:"amount_approved"`
	InterestRatePct decimal.Decimal `gorm:"type:decimal(5,2)" json:"interest_rate_pct"`
	TermMonths      int             `gorm:"column:term_months" json:"term_months"`
	Status          Status          `gorm:"size:20;default:'SUBMITTED'" json:"status"`
	Purpose         string          `gorm:"type:text" json:"purpose"`
	StatusReason    string          `gorm:"type:text" json:"status_reason"`

	AmountRepaid      decimal.Decimal `gorm:"type:decimal(15,2)" json:"amount_repaid"`
	InstallmentsTotal int             `json:"installments_total"`
	InstallmentsPaid  int             `json:"installments_paid"`

	SubmittedAt time.Time  `gorm:"autoCreateTime" json:"submitted_at"`
	ReviewedAt  *time.Time `json:"reviewed_at,omitempty"`
	DisbursedAt *time.Time `json:"disbursed_at,omitempty"`
	RepaidAt    *time.Time `json:"repaid_at,omitempty"`
	EndDate     *time.Time `gorm:"type:date" json:"end_date,omitempty"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Loan) TableName() string { return "loans" }

// EffectiveAmount is the approved amount, falling back to the requested one
// while approval has not fixed it yet.
func (l *Loan) EffectiveAmount() decimal.Decimal {
	if l.AmountApproved.IsPositive() {
		return l.AmountApproved
	}
	return l.AmountRequested
}

// InterestAmount is the flat interest on the approved principal.
func (l *Loan) InterestAmount() decimal.Decimal {
	return l.EffectiveAmount().Mul(l.InterestRatePct).Div(decimal.NewFromInt(100))
}

// TotalDue is principal plus flat interest: P * (1 + r/100).
func (l *Loan) TotalDue() decimal.Decimal {
	return l.EffectiveAmount().Add(l.InterestAmount())
}

// Remaining is what is still owed against TotalDue.
func (l *Loan) Remaining() decimal.Decimal {
	r := l.TotalDue().Sub(l.AmountRepaid)
	if r.IsNegative() {
		return decimal.Zero
	}
	return r
}
