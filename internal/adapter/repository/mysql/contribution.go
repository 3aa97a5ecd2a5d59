package mysql

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	contributionDomain "caisse-core/internal/domain/contribution"
)

type ContributionRepository struct{ db *gorm.DB }

func NewContributionRepository(db *gorm.DB) *ContributionRepository {
	return &ContributionRepository{db: db}
}

func (r *ContributionRepository) Create(ctx context.Context, c *contributionDomain.Contribution) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *ContributionRepository) ListByMember(ctx context.Context, memberID uint64, limit, offset int) ([]contributionDomain.Contribution, error) {
	var out []contributionDomain.Contribution
	res := r.db.WithContext(ctx).
		Where("member_id = ?", memberID).
		Order("id DESC").Limit(limit).Offset(offset).
		Find(&out)
	return out, res.Error
}

func (r *ContributionRepository) ListByCaisse(ctx context.Context, caisseID uint64, limit, offset int) ([]contributionDomain.Contribution, error) {
	var out []contributionDomain.Contribution
	res := r.db.WithContext(ctx).
		Where("caisse_id = ?", caisseID).
		Order("id DESC").Limit(limit).Offset(offset).
		Find(&out)
	return out, res.Error
}

func (r *ContributionRepository) SumByMember(ctx context.Context, memberID uint64) (decimal.Decimal, error) {
	var sum decimal.NullDecimal
	res := r.db.WithContext(ctx).Model(&contributionDomain.Contribution{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("member_id = ?", memberID).
		Scan(&sum)
	if res.Error != nil {
		return decimal.Zero, res.Error
	}
	if !sum.Valid {
		return decimal.Zero, nil
	}
	return sum.Decimal, nil
}
