package mysql

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	caisseDomain "caisse-core/internal/domain/caisse"
)

type CaisseRepository struct{ db *gorm.DB }

func NewCaisseRepository(db *gorm.DB) *CaisseRepository { return &CaisseRepository{db: db} }

func (r *CaisseRepository) Create(ctx context.Context, c *caisseDomain.Caisse) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *CaisseRepository) GetByCode(ctx context.Context, code string) (*caisseDomain.Caisse, error) {
	var out caisseDomain.Caisse
	res := r.db.WithContext(ctx).Where("code = ?", code).First(&out)
	if res.Error != nil {
		return nil, asDomain(res.Error, caisseDomain.ErrNotFound)
	}
	return &out, nil
}

func (r *CaisseRepository) GetByCodeForUpdate(ctx context.Context, code string) (*caisseDomain.Caisse, error) {
	var out caisseDomain.Caisse
	res := withLock(r.db.WithContext(ctx)).
		Where("code = ?", code).
		First(&out)
	if res.Error != nil {
		return nil, asDomain(res.Error, caisseDomain.ErrNotFound)
	}
	return &out, nil
}

func (r *CaisseRepository) GetByID(ctx context.Context, id uint64) (*caisseDomain.Caisse, error) {
	var out caisseDomain.Caisse
	res := r.db.WithContext(ctx).First(&out, id)
	if res.Error != nil {
		return nil, asDomain(res.Error, caisseDomain.ErrNotFound)
	}
	return &out, nil
}

func (r *CaisseRepository) GetByIDForUpdate(ctx context.Context, id uint64) (*caisseDomain.Caisse, error) {
	var out caisseDomain.Caisse
	res := withLock(r.db.WithContext(ctx)).
		First(&out, id)
	if res.Error != nil {
		return nil, asDomain(res.Error, caisseDomain.ErrNotFound)
	}
	return &out, nil
}

func (r *CaisseRepository) Save(ctx context.Context, c *caisseDomain.Caisse) error {
	return r.db.WithContext(ctx).Save(c).Error
}

func (r *CaisseRepository) Delete(ctx context.Context, c *caisseDomain.Caisse) error {
	return r.db.WithContext(ctx).Delete(c).Error
}

func (r *CaisseRepository) List(ctx context.Context, limit, offset int) ([]caisseDomain.Caisse, error) {
	var out []caisseDomain.Caisse
	res := r.db.WithContext(ctx).Order("id").Limit(limit).Offset(offset).Find(&out)
	return out, res.Error
}

func (r *CaisseRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	res := r.db.WithContext(ctx).Model(&caisseDomain.Caisse{}).Count(&n)
	return n, res.Error
}

func (r *CaisseRepository) ExistsName(ctx context.Context, associationName string) (bool, error) {
	var n int64
	res := r.db.WithContext(ctx).Model(&caisseDomain.Caisse{}).
		Where("association_name = ?", associationName).
		Count(&n)
	return n > 0, res.Error
}

func (r *CaisseRepository) SumFundAvailable(ctx context.Context) (decimal.Decimal, error) {
	var sum decimal.NullDecimal
	res := r.db.WithContext(ctx).Model(&caisseDomain.Caisse{}).
		Select("COALESCE(SUM(fund_available), 0)").
		Scan(&sum)
	if res.Error != nil {
		return decimal.Zero, res.Error
	}
	if !sum.Valid {
		return decimal.Zero, nil
	}
	return sum.Decimal, nil
}
