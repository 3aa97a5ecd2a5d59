package reserve

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"caisse-core/internal/domain/event"
	"caisse-core/internal/domain/ledger"
	"caisse-core/internal/domain/reserve"
	"caisse-core/internal/domain/uow"
	"caisse-core/internal/usecase/fundledger"
)

type Usecase struct{ uow uow.UnitOfWork }

func NewUsecase(u uow.UnitOfWork) *Usecase { return &Usecase{uow: u} }

// Overview returns the reserve account with its cached aggregate refreshed
// from the live caisse balances.
func (u *Usecase) Overview(ctx context.Context) (*reserve.Account, error) {
	var a *reserve.Account
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		total, err := r.Caisses.SumFundAvailable(ctx)
		if err != nil {
			return err
		}
		a, err = r.Reserve.RefreshAggregate(ctx, total)
		return err
	})
	return a, err
}

// Credit adds funds to the reserve balance.
func (u *Usecase) Credit(ctx context.Context, amount decimal.Decimal, actor, note string) (*reserve.Account, []event.Event, error) {
	return u.move(ctx, reserve.KindCredit, amount, nil, actor, note)
}

// Debit takes funds out of the reserve balance, failing when the balance
// cannot cover the amount.
func (u *Usecase) Debit(ctx context.Context, amount decimal.Decimal, actor, note string) (*reserve.Account, []event.Event, error) {
	return u.move(ctx, reserve.KindDebit, amount, nil, actor, note)
}

func (u *Usecase) move(ctx context.Context, kind reserve.MovementKind, amount decimal.Decimal, caisseID *uint64, actor, note string) (*reserve.Account, []event.Event, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, nil, reserve.ErrInvalidAmount
	}

	var a *reserve.Account
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		var err error
		a, err = r.Reserve.GetForUpdate(ctx)
		if err != nil {
			return err
		}
		_, err = Apply(ctx, r, a, kind, amount, caisseID, actor, note)
		return err
	})
	if err != nil {
		return nil, nil, err
	}

	evs := []event.Event{event.Audit{
		Action: string(kind), Entity: "reserve", EntityRef: "caisse_generale",
		Actor: actor, Detail: amount.StringFixed(2),
	}}
	return a, evs, nil
}

// FundCaisse moves reserve money into a caisse fund. The reserve debit and
// the caisse alimentation commit in the same transaction or not at all.
func (u *Usecase) FundCaisse(ctx context.Context, caisseCode string, amount decimal.Decimal, actor, note string) (*reserve.Account, []event.Event, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, nil, reserve.ErrInvalidAmount
	}

	var (
		a     *reserve.Account
		after decimal.Decimal
		cid   uint64
	)
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		c, err := r.Caisses.GetByCodeForUpdate(ctx, caisseCode)
		if err != nil {
			return err
		}
		cid = c.ID

		a, err = r.Reserve.GetForUpdate(ctx)
		if err != nil {
			return err
		}
		if _, err = Apply(ctx, r, a, reserve.KindFundCaisse, amount, &c.ID, actor, note); err != nil {
			return err
		}

		mv, err := fundledger.Record(ctx, r, c, fundledger.Entry{
			Kind:   ledger.KindAlimentation,
			Amount: amount,
			Actor:  actor,
			Note:   fmt.Sprintf("alimentation depuis la caisse generale: %s", note),
		})
		if err != nil {
			return err
		}
		after = mv.BalanceAfter
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	evs := []event.Event{
		event.Audit{Action: "ALIMENTATION_CAISSE", Entity: "caisse", EntityRef: caisseCode, Actor: actor, Detail: amount.StringFixed(2)},
		event.BalanceChanged{CaisseID: cid, Kind: string(ledger.KindAlimentation), Amount: amount, After: after},
	}
	return a, evs, nil
}

func (u *Usecase) Movements(ctx context.Context) ([]reserve.Movement, error) {
	var out []reserve.Movement
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		var err error
		out, err = r.Reserve.ListMovements(ctx)
		return err
	})
	return out, err
}

// Apply appends a reserve movement with balance snapshots and saves the
// account. The account row must already be locked by the enclosing unit of
// work; the transfer coordinator calls this for the reserve side of its
// operations.
func Apply(ctx context.Context, r uow.Repos, a *reserve.Account, kind reserve.MovementKind, amount decimal.Decimal, caisseID *uint64, actor, note string) (*reserve.Movement, error) {
	before := a.ReserveBalance
	var balanceAfter decimal.Decimal
	if kind.Credits() {
		balanceAfter = before.Add(amount)
	} else {
		if amount.GreaterThan(before) {
			return nil, reserve.ErrInsufficientFunds
		}
		balanceAfter = before.Sub(amount)
	}

	m := &reserve.Movement{
		Kind:          kind,
		Amount:        amount,
		BalanceBefore: before,
		BalanceAfter:  balanceAfter,
		CaisseID:      caisseID,
		Actor:         actor,
		Note:          note,
	}
	if err := r.Reserve.CreateMovement(ctx, m); err != nil {
		return nil, err
	}
	a.ReserveBalance = balanceAfter
	if err := r.Reserve.Save(ctx, a); err != nil {
		return nil, err
	}
	return m, nil
}
