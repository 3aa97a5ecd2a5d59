package mysql

import (
	"context"

	"gorm.io/gorm"

	loanDomain "caisse-core/internal/domain/loan"
)

type LoanRepository struct{ db *gorm.DB }

func NewLoanRepository(db *gorm.DB) *LoanRepository { return &LoanRepository{db: db} }

func (r *LoanRepository) Create(ctx context.Context, l *loanDomain.Loan) error {
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *LoanRepository) GetByNumber(ctx context.Context, number string) (*loanDomain.Loan, error) {
	var out loanDomain.Loan
	res := r.db.WithContext(ctx).Where("number = ?", number).First(&out)
	if res.Error != nil {
		return nil, asDomain(res.Error, loanDomain.ErrNotFound)
	}
	return &out, nil
}

func (r *LoanRepository) GetByNumberForUpdate(ctx context.Context, number string) (*loanDomain.Loan, error) {
	var out loanDomain.Loan
	res := withLock(r.db.WithContext(ctx)).
		Where("number = ?", number).
		First(&out)
	if res.Error != nil {
		return nil, asDomain(res.Error, loanDomain.ErrNotFound)
	}
	return &out, nil
}

func (r *LoanRepository) Save(ctx context.Context, l *loanDomain.Loan) error {
	return r.db.WithContext(ctx).Save(l).Error
}

func (r *LoanRepository) Delete(ctx context.Context, l *loanDomain.Loan) error {
	return r.db.WithContext(ctx).Delete(l).Error
}

func (r *LoanRepository) ExistsNumber(ctx context.Context, number string) (bool, error) {
	var n int64
	res := r.db.WithContext(ctx).Model(&loanDomain.Loan{}).
		Where("number = ?", number).
		Count(&n)
	return n > 0, res.Error
}

func (r *LoanRepository) ExistsOpenByMember(ctx context.Context, memberID uint64) (bool, error) {
	var n int64
	res := r.db.WithContext(ctx).Model(&loanDomain.Loan{}).
		Where("member_id = ? AND status IN ?", memberID, loanDomain.OpenStatuses).
		Count(&n)
	return n > 0, res.Error
}

func (r *LoanRepository) ListByCaisse(ctx context.Context, caisseID uint64) ([]loanDomain.Loan, error) {
	var out []loanDomain.Loan
	res := r.db.WithContext(ctx).
		Where("caisse_id = ?", caisseID).
		Order("id DESC").
		Find(&out)
	return out, res.Error
}

func (r *LoanRepository) CountByCaisse(ctx context.Context, caisseID uint64) (int64, error) {
	var n int64
	res := r.db.WithContext(ctx).Model(&loanDomain.Loan{}).
		Where("caisse_id = ?", caisseID).
		Count(&n)
	return n, res.Error
}

func (r *LoanRepository) ListByStatus(ctx context.Context, statuses ...loanDomain.Status) ([]loanDomain.Loan, error) {
	var out []loanDomain.Loan
	res := r.db.WithContext(ctx).
		Where("status IN ?", statuses).
		Order("id").
		Find(&out)
	return out, res.Error
}
