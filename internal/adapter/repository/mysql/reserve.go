package mysql

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	reserveDomain "caisse-core/internal/domain/reserve"
)

type ReserveRepository struct{ db *gorm.DB }

func NewReserveRepository(db *gorm.DB) *ReserveRepository { return &ReserveRepository{db: db} }

func (r *ReserveRepository) Get(ctx context.Context) (*reserveDomain.Account, error) {
	var out reserveDomain.Account
	res := r.db.WithContext(ctx).Order("id").First(&out)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		out = reserveDomain.Account{Name: "Caisse Générale"}
		if err := r.db.WithContext(ctx).Create(&out).Error; err != nil {
			return nil, err
		}
		return &out, nil
	}
	if res.Error != nil {
		return nil, res.Error
	}
	return &out, nil
}

func (r *ReserveRepository) GetForUpdate(ctx context.Context) (*reserveDomain.Account, error) {
	a, err := r.Get(ctx)
	if err != nil {
		return nil, err
	}
	var out reserveDomain.Account
	res := withLock(r.db.WithContext(ctx)).
		First(&out, a.ID)
	if res.Error != nil {
		return nil, res.Error
	}
	return &out, nil
}

func (r *ReserveRepository) Save(ctx context.Context, a *reserveDomain.Account) error {
	return r.db.WithContext(ctx).Save(a).Error
}

func (r *ReserveRepository) CreateMovement(ctx context.Context, m *reserveDomain.Movement) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *ReserveRepository) ListMovements(ctx context.Context) ([]reserveDomain.Movement, error) {
	var out []reserveDomain.Movement
	res := r.db.WithContext(ctx).Order("id DESC").Find(&out)
	return out, res.Error
}

func (r *ReserveRepository) RefreshAggregate(ctx context.Context, total decimal.Decimal) (*reserveDomain.Account, error) {
	a, err := r.Get(ctx)
	if err != nil {
		return nil, err
	}
	a.AggregatedCaisses = total
	if err := r.db.WithContext(ctx).Model(a).
		Update("aggregated_caisses_balance", total).Error; err != nil {
		return nil, err
	}
	return a, nil
}
