package ledger

import "context"

type Repository interface {
	Create(ctx context.Context, m *Movement) error
	GetByID(ctx context.Context, id uint64) (*Movement, error)
	ListByCaisse(ctx context.Context, caisseID uint64, limit, offset int) ([]Movement, error)
	ListByLoan(ctx context.Context, loanID uint64) ([]Movement, error)
	// UnlinkLoan clears the loan reference on movements pointing at a loan
	// about to be deleted; the entries themselves stay immutable.
	UnlinkLoan(ctx context.Context, loanID uint64) error
}
