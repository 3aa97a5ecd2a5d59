package fundledger

import (
	"context"

	"github.com/shopspring/decimal"

	"caisse-core/internal/domain/caisse"
	"caisse-core/internal/domain/event"
	"caisse-core/internal/domain/ledger"
	"caisse-core/internal/domain/uow"
)

// Entry describes one balance mutation to record.
type Entry struct {
	Kind                 ledger.Kind
	Amount               decimal.Decimal
	LoanID               *uint64
	CounterpartyCaisseID *uint64
	Actor                string
	Note                 string
}

// Record is the only path that mutates a caisse balance. It validates the
// amount, snapshots the balance before and after, appends the movement,
// updates the caisse running totals and refreshes the reserve's cached
// aggregate, all inside the caller's transaction. The caisse row must
// already be locked by the surrounding unit of work.
func Record(ctx context.Context, r uow.Repos, c *caisse.Caisse, e Entry) (*ledger.Movement, error) {
	if e.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, ledger.ErrInvalidAmount
	}

	before := c.FundAvailable
	var after decimal.Decimal
	if e.Kind.Credits() {
		after = before.Add(e.Amount)
	} else {
		if e.Amount.GreaterThan(before) {
			return nil, ledger.ErrInsufficientFunds
		}
		after = before.Sub(e.Amount)
	}

	m := &ledger.Movement{
		CaisseID:             c.ID,
		Kind:                 e.Kind,
		Amount:               e.Amount,
		BalanceBefore:        before,
		BalanceAfter:         after,
		LoanID:               e.LoanID,
		CounterpartyCaisseID: e.CounterpartyCaisseID,
		Actor:                e.Actor,
		Note:                 e.Note,
	}
	if err := r.Movements.Create(ctx, m); err != nil {
		return nil, err
	}

	c.FundAvailable = after
	switch e.Kind {
	case ledger.KindDisbursement:
		c.TotalDisbursed = c.TotalDisbursed.Add(e.Amount)
	case ledger.KindRepayment:
		c.TotalRepaid = c.TotalRepaid.Add(e.Amount)
	}
	if err := r.Caisses.Save(ctx, c); err != nil {
		return nil, err
	}

	if err := refreshReserveAggregate(ctx, r); err != nil {
		return nil, err
	}
	return m, nil
}

// refreshReserveAggregate recomputes the sum of every caisse balance and
// caches it on the reserve account. Runs in the same transaction as the
// movement that changed a balance.
func refreshReserveAggregate(ctx context.Context, r uow.Repos) error {
	total, err := r.Caisses.SumFundAvailable(ctx)
	if err != nil {
		return err
	}
	_, err = r.Reserve.RefreshAggregate(ctx, total)
	return err
}

type Usecase struct{ uow uow.UnitOfWork }

func NewUsecase(u uow.UnitOfWork) *Usecase { return &Usecase{uow: u} }

// Deposit credits a caisse fund directly (an "alimentation" outside the
// contribution flow, such as an external grant).
func (u *Usecase) Deposit(ctx context.Context, code string, amount decimal.Decimal, actor, note string) (*ledger.Movement, []event.Event, error) {
	return u.record(ctx, code, ledger.KindAlimentation, amount, actor, note)
}

// Charge debits a caisse fund for fees.
func (u *Usecase) Charge(ctx context.Context, code string, amount decimal.Decimal, actor, note string) (*ledger.Movement, []event.Event, error) {
	return u.record(ctx, code, ledger.KindFee, amount, actor, note)
}

func (u *Usecase) record(ctx context.Context, code string, kind ledger.Kind, amount decimal.Decimal, actor, note string) (*ledger.Movement, []event.Event, error) {
	var m *ledger.Movement
	err := u.uow.WithinCaisseTx(ctx, code, func(r uow.Repos, c *caisse.Caisse) error {
		var err error
		m, err = Record(ctx, r, c, Entry{Kind: kind, Amount: amount, Actor: actor, Note: note})
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	evs := []event.Event{
		event.Audit{Action: string(kind), Entity: "caisse", EntityRef: code, Actor: actor, Detail: note},
		event.BalanceChanged{CaisseID: m.CaisseID, Kind: string(kind), Amount: m.Amount, After: m.BalanceAfter},
	}
	return m, evs, nil
}

// Movements lists a caisse's ledger, newest first.
func (u *Usecase) Movements(ctx context.Context, code string, limit, offset int) ([]ledger.Movement, error) {
	var out []ledger.Movement
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		c, err := r.Caisses.GetByCode(ctx, code)
		if err != nil {
			return err
		}
		out, err = r.Movements.ListByCaisse(ctx, c.ID, limit, offset)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
