package notification

import "context"

type Repository interface {
	Create(ctx context.Context, n *Notification) error
	ListByCaisse(ctx context.Context, caisseID uint64, limit, offset int) ([]Notification, error)
	MarkRead(ctx context.Context, id uint64) error
	DeleteByLoan(ctx context.Context, loanID uint64) error
}
