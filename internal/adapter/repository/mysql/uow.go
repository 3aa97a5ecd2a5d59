package mysql

import (
	"context"

	"gorm.io/gorm"

	"caisse-core/internal/domain/caisse"
	"caisse-core/internal/domain/loan"
	"caisse-core/internal/domain/uow"
)

type GormUoW struct{ db *gorm.DB }

func NewGormUoW(db *gorm.DB) *GormUoW { return &GormUoW{db: db} }

func repos(tx *gorm.DB) uow.Repos {
	return uow.Repos{
		Caisses:       &CaisseRepository{db: tx},
		Members:       &MemberRepository{db: tx},
		Loans:         &LoanRepository{db: tx},
		Installments:  &InstallmentRepository{db: tx},
		Movements:     &MovementRepository{db: tx},
		Reserve:       &ReserveRepository{db: tx},
		Transfers:     &TransferRepository{db: tx},
		Contributions: &ContributionRepository{db: tx},
		Notifications: &NotificationRepository{db: tx},
		Audits:        &AuditRepository{db: tx},
	}
}

func (u *GormUoW) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(repos(tx))
	})
}

func (u *GormUoW) WithinLoanTx(ctx context.Context, number string, fn func(r uow.Repos, l *loan.Loan) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := repos(tx)
		// lock the loan row up-front to serialize concurrent operations
		l, err := r.Loans.GetByNumberForUpdate(ctx, number)
		if err != nil {
			return err
		}
		return fn(r, l)
	})
}

func (u *GormUoW) WithinCaisseTx(ctx context.Context, code string, fn func(r uow.Repos, c *caisse.Caisse) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := repos(tx)
		c, err := r.Caisses.GetByCodeForUpdate(ctx, code)
		if err != nil {
			return err
		}
		return fn(r, c)
	})
}
