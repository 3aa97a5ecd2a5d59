package loan

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, l *Loan) error
	GetByNumber(ctx context.Context, number string) (*Loan, error)
	// GetByNumberForUpdate locks the loan row for the enclosing transaction.
	GetByNumberForUpdate(ctx context.Context, number string) (*Loan, error)
	Save(ctx context.Context, l *Loan) error
	Delete(ctx context.Context, l *Loan) error
	ExistsNumber(ctx context.Context, number string) (bool, error)
	ExistsOpenByMember(ctx context.Context, memberID uint64) (bool, error)
	ListByCaisse(ctx context.Context, caisseID uint64) ([]Loan, error)
	CountByCaisse(ctx context.Context, caisseID uint64) (int64, error)
	// ListActiveNumbers returns numbers of loans in the given statuses,
	// used by the overdue sweep and the stats rollup.
	ListByStatus(ctx context.Context, statuses ...Status) ([]Loan, error)
}

type InstallmentRepository interface {
	BulkCreate(ctx context.Context, installments []Installment) error
	ListByLoan(ctx context.Context, loanID uint64) ([]Installment, error)
	Save(ctx context.Context, i *Installment) error
	DeleteByLoan(ctx context.Context, loanID uint64) error
	CountByLoan(ctx context.Context, loanID uint64) (int64, error)
	// HasUnpaidDueBefore reports an unpaid (due or partially paid)
	// installment with a due date strictly before the given day.
	HasUnpaidDueBefore(ctx context.Context, loanID uint64, day time.Time) (bool, error)
	// MarkOverdueDueBefore flips unpaid installments past their due date to
	// the overdue status; safe to re-run.
	MarkOverdueDueBefore(ctx context.Context, loanID uint64, day time.Time) error
}
