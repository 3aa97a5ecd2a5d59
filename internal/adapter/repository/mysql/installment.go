package mysql

import (
	"context"
	"time"

	"gorm.io/gorm"

	loanDomain "caisse-core/internal/domain/loan"
)

type InstallmentRepository struct{ db *gorm.DB }

func NewInstallmentRepository(db *gorm.DB) *InstallmentRepository {
	return &InstallmentRepository{db: db}
}

func (r *InstallmentRepository) BulkCreate(ctx context.Context, installments []loanDomain.Installment) error {
	if len(installments) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&installments).Error
}

func (r *InstallmentRepository) ListByLoan(ctx context.Context, loanID uint64) ([]loanDomain.Installment, error) {
	var out []loanDomain.Installment
	res := r.db.WithContext(ctx).
		Where("loan_id = ?", loanID).
		Order("sequence").
		Find(&out)
	return out, res.Error
}

func (r *InstallmentRepository) Save(ctx context.Context, i *loanDomain.Installment) error {
	return r.db.WithContext(ctx).Save(i).Error
}

func (r *InstallmentRepository) DeleteByLoan(ctx context.Context, loanID uint64) error {
	return r.db.WithContext(ctx).
		Where("loan_id = ?", loanID).
		Delete(&loanDomain.Installment{}).Error
}

func (r *InstallmentRepository) CountByLoan(ctx context.Context, loanID uint64) (int64, error) {
	var n int64
	res := r.db.WithContext(ctx).Model(&loanDomain.Installment{}).
		Where("loan_id = ?", loanID).
		Count(&n)
	return n, res.Error
}

func (r *InstallmentRepository) HasUnpaidDueBefore(ctx context.Context, loanID uint64, day time.Time) (bool, error) {
	var n int64
	res := r.db.WithContext(ctx).Model(&loanDomain.Installment{}).
		Where("loan_id = ? AND status <> ? AND due_date < ?", loanID, loanDomain.InstallmentPaid, day).
		Count(&n)
	return n > 0, res.Error
}

func (r *InstallmentRepository) MarkOverdueDueBefore(ctx context.Context, loanID uint64, day time.Time) error {
	return r.db.WithContext(ctx).Model(&loanDomain.Installment{}).
		Where("loan_id = ? AND due_date < ? AND status IN ?", loanID, day, []loanDomain.InstallmentStatus{
			loanDomain.InstallmentDue, loanDomain.InstallmentPartiallyPaid,
		}).
		Update("status", loanDomain.InstallmentOverdue).Error
}
