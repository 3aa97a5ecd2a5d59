package mysql

import (
	"context"

	"gorm.io/gorm"

	memberDomain "caisse-core/internal/domain/member"
)

type MemberRepository struct{ db *gorm.DB }

func NewMemberRepository(db *gorm.DB) *MemberRepository { return &MemberRepository{db: db} }

func (r *MemberRepository) Create(ctx context.Context, m *memberDomain.Member) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *MemberRepository) GetByID(ctx context.Context, id uint64) (*memberDomain.Member, error) {
	var out memberDomain.Member
	res := r.db.WithContext(ctx).First(&out, id)
	if res.Error != nil {
		return nil, asDomain(res.Error, memberDomain.ErrNotFound)
	}
	return &out, nil
}

func (r *MemberRepository) Save(ctx context.Context, m *memberDomain.Member) error {
	return r.db.WithContext(ctx).Save(m).Error
}

func (r *MemberRepository) ListByCaisse(ctx context.Context, caisseID uint64, limit, offset int) ([]memberDomain.Member, error) {
	var out []memberDomain.Member
	res := r.db.WithContext(ctx).
		Where("caisse_id = ?", caisseID).
		Order("id").Limit(limit).Offset(offset).
		Find(&out)
	return out, res.Error
}

func (r *MemberRepository) CountActiveByCaisse(ctx context.Context, caisseID uint64) (int64, error) {
	var n int64
	res := r.db.WithContext(ctx).Model(&memberDomain.Member{}).
		Where("caisse_id = ? AND status = ?", caisseID, memberDomain.StatusActive).
		Count(&n)
	return n, res.Error
}

func (r *MemberRepository) CountByCaisse(ctx context.Context, caisseID uint64) (int64, error) {
	var n int64
	res := r.db.WithContext(ctx).Model(&memberDomain.Member{}).
		Where("caisse_id = ?", caisseID).
		Count(&n)
	return n, res.Error
}

func (r *MemberRepository) ExistsIdentityInCaisse(ctx context.Context, caisseID uint64, identity string) (bool, error) {
	var n int64
	res := r.db.WithContext(ctx).Model(&memberDomain.Member{}).
		Where("caisse_id = ? AND identity_number = ?", caisseID, identity).
		Count(&n)
	return n > 0, res.Error
}

func (r *MemberRepository) ExistsOfficerIdentity(ctx context.Context, identity string) (bool, error) {
	var n int64
	res := r.db.WithContext(ctx).Model(&memberDomain.Member{}).
		Where("identity_number = ? AND role IN ?", identity, []memberDomain.Role{
			memberDomain.RolePresident, memberDomain.RoleSecretary, memberDomain.RoleTreasurer,
		}).
		Count(&n)
	return n > 0, res.Error
}
