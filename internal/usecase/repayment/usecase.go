package repayment

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"caisse-core/internal/domain/event"
	"caisse-core/internal/domain/ledger"
	"caisse-core/internal/domain/loan"
	"caisse-core/internal/domain/notification"
	"caisse-core/internal/domain/uow"
	"caisse-core/internal/usecase/fundledger"
)

type Usecase struct{ uow uow.UnitOfWork }

func NewUsecase(u uow.UnitOfWork) *Usecase { return &Usecase{uow: u} }

type RepayInput struct {
	Number    string          `json:"number" validate:"required"`
	Principal decimal.Decimal `json:"principal"`
	Interest  decimal.Decimal `json:"interest"`
	Actor     string          `json:"actor" validate:"required"`
}

// Repay books a repayment against an active or overdue loan. The full sum
// credits the caisse fund through the ledger; only the principal part
// accumulates on the loan, interest lives in the ledger entry alone. The sum
// may not exceed what is still owed.
func (u *Usecase) Repay(ctx context.Context, in RepayInput) (*loan.Loan, *ledger.Movement, []event.Event, error) {
	if in.Principal.IsNegative() || in.Interest.IsNegative() {
		return nil, nil, nil, loan.ErrInvalidAmount
	}
	paid := in.Principal.Add(in.Interest)
	if !paid.IsPositive() {
		return nil, nil, nil, loan.ErrInvalidAmount
	}

	var (
		out    *loan.Loan
		mv     *ledger.Movement
		repaid bool
	)
	err := u.uow.WithinLoanTx(ctx, in.Number, func(r uow.Repos, l *loan.Loan) error {
		if l.Status != loan.StatusActive && l.Status != loan.StatusOverdue {
			return fmt.Errorf("loan %s is %s: %w", l.Number, l.Status, loan.ErrInvalidTransition)
		}

		remaining := l.Remaining()
		if paid.GreaterThan(remaining) {
			return fmt.Errorf("payment %s against remaining %s: %w",
				paid.StringFixed(2), remaining.StringFixed(2), loan.ErrAmountExceedsBalance)
		}

		c, err := r.Caisses.GetByIDForUpdate(ctx, l.CaisseID)
		if err != nil {
			return err
		}
		mv, err = fundledger.Record(ctx, r, c, fundledger.Entry{
			Kind:   ledger.KindRepayment,
			Amount: paid,
			LoanID: &l.ID,
			Actor:  in.Actor,
			Note:   fmt.Sprintf("remboursement pret %s", l.Number),
		})
		if err != nil {
			return err
		}

		settled, err := u.allocate(ctx, r, l, paid)
		if err != nil {
			return err
		}
		l.InstallmentsPaid += settled

		l.AmountRepaid = l.AmountRepaid.Add(in.Principal)
		if remaining.Sub(paid).LessThanOrEqual(decimal.Zero) {
			repaid = true
			now := time.Now().UTC()
			l.Status = loan.StatusRepaid
			l.RepaidAt = &now
		}
		out = l
		return r.Loans.Save(ctx, l)
	})
	if err != nil {
		return nil, nil, nil, err
	}

	evs := []event.Event{
		event.Audit{Action: "REMBOURSEMENT", Entity: "loan", EntityRef: out.Number, Actor: in.Actor, Detail: paid.StringFixed(2)},
		event.BalanceChanged{CaisseID: out.CaisseID, Kind: string(ledger.KindRepayment), Amount: mv.Amount, After: mv.BalanceAfter},
	}
	if repaid {
		evs = append(evs, event.Notice{
			CaisseID: out.CaisseID, LoanID: &out.ID,
			Kind: notification.KindLoanRepaid, Message: fmt.Sprintf("Pret %s entierement rembourse", out.Number),
		})
	}
	return out, mv, evs, nil
}

// allocate spreads a payment over unpaid installments in sequence order and
// returns how many it fully settled.
func (u *Usecase) allocate(ctx context.Context, r uow.Repos, l *loan.Loan, amount decimal.Decimal) (int, error) {
	items, err := r.Installments.ListByLoan(ctx, l.ID)
	if err != nil {
		return 0, err
	}

	settled := 0
	left := amount
	for i := range items {
		if !left.IsPositive() {
			break
		}
		it := &items[i]
		if it.Status == loan.InstallmentPaid {
			continue
		}

		out := it.Outstanding()
		take := left
		if take.GreaterThan(out) {
			take = out
		}
		it.AmountPaid = it.AmountPaid.Add(take)
		left = left.Sub(take)

		if it.Outstanding().IsZero() {
			now := time.Now().UTC()
			it.Status = loan.InstallmentPaid
			it.PaidAt = &now
			settled++
		} else {
			it.Status = loan.InstallmentPartiallyPaid
		}
		if err := r.Installments.Save(ctx, it); err != nil {
			return 0, err
		}
	}
	return settled, nil
}
