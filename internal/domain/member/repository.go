package member

import "context"

type Repository interface {
	Create(ctx context.Context, m *Member) error
	GetByID(ctx context.Context, id uint64) (*Member, error)
	Save(ctx context.Context, m *Member) error
	ListByCaisse(ctx context.Context, caisseID uint64, limit, offset int) ([]Member, error)
	CountActiveByCaisse(ctx context.Context, caisseID uint64) (int64, error)
	CountByCaisse(ctx context.Context, caisseID uint64) (int64, error)
	ExistsIdentityInCaisse(ctx context.Context, caisseID uint64, identity string) (bool, error)
	// ExistsOfficerIdentity checks identity uniqueness across all caisses,
	// applied to officer roles only.
	ExistsOfficerIdentity(ctx context.Context, identity string) (bool, error)
}
