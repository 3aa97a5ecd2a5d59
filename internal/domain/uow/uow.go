package uow

import (
	"context"

	"caisse-core/internal/domain/audit"
	"caisse-core/internal/domain/caisse"
	"caisse-core/internal/domain/contribution"
	"caisse-core/internal/domain/ledger"
	"caisse-core/internal/domain/loan"
	"caisse-core/internal/domain/member"
	"caisse-core/internal/domain/notification"
	"caisse-core/internal/domain/reserve"
	"caisse-core/internal/domain/transfer"
)

// Repos bundles every repository bound to one transaction.
type Repos struct {
	Caisses       caisse.Repository
	Members       member.Repository
	Loans         loan.Repository
	Installments  loan.InstallmentRepository
	Movements     ledger.Repository
	Reserve       reserve.Repository
	Transfers     transfer.Repository
	Contributions contribution.Repository
	Notifications notification.Repository
	Audits        audit.Repository
}

// UnitOfWork runs a function inside a single database transaction. The
// function receives repositories scoped to that transaction; returning an
// error rolls everything back.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(r Repos) error) error

	// WithinLoanTx locks the loan row identified by number for the duration
	// of the transaction, serializing concurrent operations on the same loan.
	WithinLoanTx(ctx context.Context, number string, fn func(r Repos, l *loan.Loan) error) error

	// WithinCaisseTx locks the caisse row identified by code, serializing
	// concurrent balance mutations on the same caisse.
	WithinCaisseTx(ctx context.Context, code string, fn func(r Repos, c *caisse.Caisse) error) error
}
