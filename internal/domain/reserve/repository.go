package reserve

import (
	"context"

	"github.com/shopspring/decimal"
)

type Repository interface {
	// Get returns the singleton account, creating it on first use.
	Get(ctx context.Context) (*Account, error)
	// GetForUpdate locks the singleton row for the enclosing transaction.
	GetForUpdate(ctx context.Context) (*Account, error)
	Save(ctx context.Context, a *Account) error
	CreateMovement(ctx context.Context, m *Movement) error
	ListMovements(ctx context.Context) ([]Movement, error)
	// RefreshAggregate overwrites the cached sum of caisse balances with the
	// given live total and returns the updated account.
	RefreshAggregate(ctx context.Context, total decimal.Decimal) (*Account, error)
}
