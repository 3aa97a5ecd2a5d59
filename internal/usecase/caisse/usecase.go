package caisse

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"caisse-core/internal/domain/caisse"
	"caisse-core/internal/domain/event"
	"caisse-core/internal/domain/ledger"
	"caisse-core/internal/domain/uow"
	"caisse-core/pkg/id"
)

type Usecase struct{ uow uow.UnitOfWork }

func NewUsecase(u uow.UnitOfWork) *Usecase { return &Usecase{uow: u} }

type CreateInput struct {
	AssociationName string          `json:"association_name" validate:"required,min=2,max=100"`
	FundInitial     decimal.Decimal `json:"fund_initial"`
	Actor           string          `json:"actor" validate:"required"`
}

// Create registers a caisse. The code is derived from the registration order
// and the association name; both code and name must be unique, which is
// checked up front and backed by database constraints.
func (u *Usecase) Create(ctx context.Context, in CreateInput) (*caisse.Caisse, []event.Event, error) {
	if in.FundInitial.IsNegative() {
		return nil, nil, ledger.ErrInvalidAmount
	}

	var c *caisse.Caisse
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		taken, err := r.Caisses.ExistsName(ctx, in.AssociationName)
		if err != nil {
			return err
		}
		if taken {
			return fmt.Errorf("association %q: %w", in.AssociationName, caisse.ErrUniquenessViolation)
		}

		n, err := r.Caisses.Count(ctx)
		if err != nil {
			return err
		}
		// The initial fund seeds the balance directly; movements only record
		// what happens after registration, so available stays equal to
		// initial plus the net of the entries.
		c = &caisse.Caisse{
			Code:            id.CaisseCode(int(n)+1, in.AssociationName),
			AssociationName: in.AssociationName,
			Status:          caisse.StatusActive,
			FundInitial:     in.FundInitial,
			FundAvailable:   in.FundInitial,
		}
		return r.Caisses.Create(ctx, c)
	})
	if err != nil {
		return nil, nil, err
	}

	evs := []event.Event{event.Audit{
		Action: "CAISSE_CREEE", Entity: "caisse", EntityRef: c.Code,
		Actor: in.Actor, Detail: in.AssociationName,
	}}
	return c, evs, nil
}

func (u *Usecase) Get(ctx context.Context, code string) (*caisse.Caisse, error) {
	var c *caisse.Caisse
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		var err error
		c, err = r.Caisses.GetByCode(ctx, code)
		return err
	})
	return c, err
}

func (u *Usecase) List(ctx context.Context, limit, offset int) ([]caisse.Caisse, error) {
	var out []caisse.Caisse
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		var err error
		out, err = r.Caisses.List(ctx, limit, offset)
		return err
	})
	return out, err
}

// Delete removes a caisse that has no members and no loans.
func (u *Usecase) Delete(ctx context.Context, code, actor string) ([]event.Event, error) {
	err := u.uow.WithinCaisseTx(ctx, code, func(r uow.Repos, c *caisse.Caisse) error {
		members, err := r.Members.CountByCaisse(ctx, c.ID)
		if err != nil {
			return err
		}
		loans, err := r.Loans.CountByCaisse(ctx, c.ID)
		if err != nil {
			return err
		}
		if members > 0 || loans > 0 {
			return caisse.ErrHasDependents
		}
		return r.Caisses.Delete(ctx, c)
	})
	if err != nil {
		return nil, err
	}
	return []event.Event{event.Audit{
		Action: "CAISSE_SUPPRIMEE", Entity: "caisse", EntityRef: code, Actor: actor,
	}}, nil
}
