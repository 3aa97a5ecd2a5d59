package caisse

import (
	"context"

	"github.com/shopspring/decimal"
)

type Repository interface {
	Create(ctx context.Context, c *Caisse) error
	GetByCode(ctx context.Context, code string) (*Caisse, error)
	// GetByCodeForUpdate locks the caisse row for the rest of the enclosing
	// transaction. Balance mutations must go through this.
	GetByCodeForUpdate(ctx context.Context, code string) (*Caisse, error)
	GetByID(ctx context.Context, id uint64) (*Caisse, error)
	// GetByIDForUpdate locks the caisse row, used when the caisse is reached
	// through a loan rather than by code.
	GetByIDForUpdate(ctx context.Context, id uint64) (*Caisse, error)
	Save(ctx context.Context, c *Caisse) error
	Delete(ctx context.Context, c *Caisse) error
	List(ctx context.Context, limit, offset int) ([]Caisse, error)
	Count(ctx context.Context) (int64, error)
	ExistsName(ctx context.Context, associationName string) (bool, error)
	// SumFundAvailable is the live sum the reserve consolidator aggregates.
	SumFundAvailable(ctx context.Context) (decimal.Decimal, error)
}
