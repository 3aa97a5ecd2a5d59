package mysql

import (
	"context"

	"gorm.io/gorm"

	ledgerDomain "caisse-core/internal/domain/ledger"
)

type MovementRepository struct{ db *gorm.DB }

func NewMovementRepository(db *gorm.DB) *MovementRepository { return &MovementRepository{db: db} }

func (r *MovementRepository) Create(ctx context.Context, m *ledgerDomain.Movement) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *MovementRepository) GetByID(ctx context.Context, id uint64) (*ledgerDomain.Movement, error) {
	var out ledgerDomain.Movement
	res := r.db.WithContext(ctx).First(&out, id)
	if res.Error != nil {
		return nil, asDomain(res.Error, ledgerDomain.ErrNotFound)
	}
	return &out, nil
}

func (r *MovementRepository) ListByCaisse(ctx context.Context, caisseID uint64, limit, offset int) ([]ledgerDomain.Movement, error) {
	var out []ledgerDomain.Movement
	res := r.db.WithContext(ctx).
		Where("caisse_id = ?", caisseID).
		Order("id DESC").Limit(limit).Offset(offset).
		Find(&out)
	return out, res.Error
}

func (r *MovementRepository) ListByLoan(ctx context.Context, loanID uint64) ([]ledgerDomain.Movement, error) {
	var out []ledgerDomain.Movement
	res := r.db.WithContext(ctx).
		Where("loan_id = ?", loanID).
		Order("id").
		Find(&out)
	return out, res.Error
}

func (r *MovementRepository) UnlinkLoan(ctx context.Context, loanID uint64) error {
	return r.db.WithContext(ctx).Model(&ledgerDomain.Movement{}).
		Where("loan_id = ?", loanID).
		Update("loan_id", nil).Error
}
