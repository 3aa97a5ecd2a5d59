package contribution

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"caisse-core/internal/domain/caisse"
	"caisse-core/internal/domain/contribution"
	"caisse-core/internal/domain/event"
	"caisse-core/internal/domain/ledger"
	"caisse-core/internal/domain/member"
	"caisse-core/internal/domain/uow"
	"caisse-core/internal/usecase/fundledger"
)

type Usecase struct{ uow uow.UnitOfWork }

func NewUsecase(u uow.UnitOfWork) *Usecase { return &Usecase{uow: u} }

type RecordInput struct {
	CaisseCode string          `json:"caisse_code" validate:"required"`
	MemberID   uint64          `json:"member_id" validate:"required"`
	Amount     decimal.Decimal `json:"amount"`
	Period     string          `json:"period" validate:"omitempty,max=20"`
	Actor      string          `json:"actor" validate:"required"`
}

// Record books a member's contribution. The caisse fund is credited through
// the ledger and the contribution row keeps a link to that movement.
func (u *Usecase) Record(ctx context.Context, in RecordInput) (*contribution.Contribution, []event.Event, error) {
	if in.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, nil, contribution.ErrInvalidAmount
	}

	var (
		ct *contribution.Contribution
		mv *ledger.Movement
	)
	err := u.uow.WithinCaisseTx(ctx, in.CaisseCode, func(r uow.Repos, c *caisse.Caisse) error {
		m, err := r.Members.GetByID(ctx, in.MemberID)
		if err != nil {
			return err
		}
		if m.CaisseID != c.ID {
			return member.ErrNotFound
		}
		if m.Status != member.StatusActive {
			return fmt.Errorf("member %d is %s: %w", m.ID, m.Status, member.ErrNotFound)
		}

		mv, err = fundledger.Record(ctx, r, c, fundledger.Entry{
			Kind:   ledger.KindAlimentation,
			Amount: in.Amount,
			Actor:  in.Actor,
			Note:   fmt.Sprintf("cotisation membre %d", m.ID),
		})
		if err != nil {
			return err
		}

		ct = &contribution.Contribution{
			CaisseID:   c.ID,
			MemberID:   m.ID,
			Amount:     in.Amount,
			MovementID: &mv.ID,
			Period:     in.Period,
			Actor:      in.Actor,
		}
		return r.Contributions.Create(ctx, ct)
	})
	if err != nil {
		return nil, nil, err
	}

	evs := []event.Event{
		event.Audit{
			Action: "COTISATION", Entity: "contribution",
			EntityRef: fmt.Sprintf("%d", ct.ID), Actor: in.Actor,
			Detail: in.Amount.StringFixed(2),
		},
		event.BalanceChanged{CaisseID: ct.CaisseID, Kind: string(ledger.KindAlimentation), Amount: in.Amount, After: mv.BalanceAfter},
	}
	return ct, evs, nil
}

func (u *Usecase) ListByMember(ctx context.Context, memberID uint64, limit, offset int) ([]contribution.Contribution, error) {
	var out []contribution.Contribution
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		var err error
		out, err = r.Contributions.ListByMember(ctx, memberID, limit, offset)
		return err
	})
	return out, err
}
