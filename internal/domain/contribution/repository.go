package contribution

import (
	"context"

	"github.com/shopspring/decimal"
)

type Repository interface {
	Create(ctx context.Context, c *Contribution) error
	ListByMember(ctx context.Context, memberID uint64, limit, offset int) ([]Contribution, error)
	ListByCaisse(ctx context.Context, caisseID uint64, limit, offset int) ([]Contribution, error)
	SumByMember(ctx context.Context, memberID uint64) (decimal.Decimal, error)
}
