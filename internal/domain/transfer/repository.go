package transfer

import "context"

type Repository interface {
	Create(ctx context.Context, t *Transfer) error
	GetByID(ctx context.Context, id uint64) (*Transfer, error)
	GetByIDForUpdate(ctx context.Context, id uint64) (*Transfer, error)
	Save(ctx context.Context, t *Transfer) error
	List(ctx context.Context, limit, offset int) ([]Transfer, error)
	ListByCaisse(ctx context.Context, caisseID uint64, limit, offset int) ([]Transfer, error)
}
