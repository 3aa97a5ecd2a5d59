package mysql

import (
	"context"

	"gorm.io/gorm"

	transferDomain "caisse-core/internal/domain/transfer"
)

type TransferRepository struct{ db *gorm.DB }

func NewTransferRepository(db *gorm.DB) *TransferRepository { return &TransferRepository{db: db} }

func (r *TransferRepository) Create(ctx context.Context, t *transferDomain.Transfer) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *TransferRepository) GetByID(ctx context.Context, id uint64) (*transferDomain.Transfer, error) {
	var out transferDomain.Transfer
	res := r.db.WithContext(ctx).First(&out, id)
	if res.Error != nil {
		return nil, asDomain(res.Error, transferDomain.ErrNotFound)
	}
	return &out, nil
}

func (r *TransferRepository) GetByIDForUpdate(ctx context.Context, id uint64) (*transferDomain.Transfer, error) {
	var out transferDomain.Transfer
	res := withLock(r.db.WithContext(ctx)).
		First(&out, id)
	if res.Error != nil {
		return nil, asDomain(res.Error, transferDomain.ErrNotFound)
	}
	return &out, nil
}

func (r *TransferRepository) Save(ctx context.Context, t *transferDomain.Transfer) error {
	return r.db.WithContext(ctx).Save(t).Error
}

func (r *TransferRepository) List(ctx context.Context, limit, offset int) ([]transferDomain.Transfer, error) {
	var out []transferDomain.Transfer
	res := r.db.WithContext(ctx).Order("id DESC").Limit(limit).Offset(offset).Find(&out)
	return out, res.Error
}

func (r *TransferRepository) ListByCaisse(ctx context.Context, caisseID uint64, limit, offset int) ([]transferDomain.Transfer, error) {
	var out []transferDomain.Transfer
	res := r.db.WithContext(ctx).
		Where("source_caisse_id = ? OR dest_caisse_id = ?", caisseID, caisseID).
		Order("id DESC").Limit(limit).Offset(offset).
		Find(&out)
	return out, res.Error
}
