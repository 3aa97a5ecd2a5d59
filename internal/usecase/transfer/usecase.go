package transfer

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"caisse-core/internal/domain/caisse"
	"caisse-core/internal/domain/event"
	"caisse-core/internal/domain/ledger"
	"caisse-core/internal/domain/reserve"
	"caisse-core/internal/domain/transfer"
	"caisse-core/internal/domain/uow"
	"caisse-core/internal/usecase/fundledger"
	reserveuc "caisse-core/internal/usecase/reserve"
)

type Usecase struct{ uow uow.UnitOfWork }

func NewUsecase(u uow.UnitOfWork) *Usecase { return &Usecase{uow: u} }

type CreateInput struct {
	Kind             transfer.Kind   `json:"kind" validate:"required,oneof=CAISSE_VERS_CAISSE CAISSE_VERS_GENERALE GENERALE_VERS_CAISSE"`
	Amount           decimal.Decimal `json:"amount"`
	SourceCaisseCode string          `json:"source_caisse_code"`
	DestCaisseCode   string          `json:"dest_caisse_code"`
	Actor            string          `json:"actor" validate:"required"`
	Note             string          `json:"note" validate:"omitempty,max=500"`
}

// Create registers a pending transfer after validating that its endpoints
// match the kind. Balances are only checked at execution time.
func (u *Usecase) Create(ctx context.Context, in CreateInput) (*transfer.Transfer, []event.Event, error) {
	if in.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, nil, ledger.ErrInvalidAmount
	}

	var t *transfer.Transfer
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		var srcID, dstID *uint64

		needSource := in.Kind == transfer.KindCaisseToCaisse || in.Kind == transfer.KindCaisseToReserve
		needDest := in.Kind == transfer.KindCaisseToCaisse || in.Kind == transfer.KindReserveToCaisse

		if needSource {
			if in.SourceCaisseCode == "" {
				return transfer.ErrInvalidEndpoints
			}
			c, err := r.Caisses.GetByCode(ctx, in.SourceCaisseCode)
			if err != nil {
				return err
			}
			srcID = &c.ID
		}
		if needDest {
			if in.DestCaisseCode == "" {
				return transfer.ErrInvalidEndpoints
			}
			c, err := r.Caisses.GetByCode(ctx, in.DestCaisseCode)
			if err != nil {
				return err
			}
			dstID = &c.ID
		}
		if in.Kind == transfer.KindCaisseToCaisse && *srcID == *dstID {
			return transfer.ErrInvalidEndpoints
		}

		t = &transfer.Transfer{
			Kind:           in.Kind,
			Amount:         in.Amount,
			SourceCaisseID: srcID,
			DestCaisseID:   dstID,
			Status:         transfer.StatusPending,
			Actor:          in.Actor,
			Note:           in.Note,
		}
		return r.Transfers.Create(ctx, t)
	})
	if err != nil {
		return nil, nil, err
	}

	evs := []event.Event{event.Audit{
		Action: "TRANSFERT_CREE", Entity: "transfer",
		EntityRef: fmt.Sprintf("%d", t.ID), Actor: in.Actor, Detail: in.Amount.StringFixed(2),
	}}
	return t, evs, nil
}

// Execute posts the pending transfer: the debit and credit entries are
// created in one transaction, so a failure on either side leaves no entry
// behind.
func (u *Usecase) Execute(ctx context.Context, id uint64, actor string) (*transfer.Transfer, []event.Event, error) {
	var t *transfer.Transfer
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		var err error
		t, err = r.Transfers.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if t.Status != transfer.StatusPending {
			return fmt.Errorf("transfer %d is %s: %w", t.ID, t.Status, transfer.ErrInvalidTransition)
		}
		if err := u.post(ctx, r, t, false); err != nil {
			return err
		}
		now := nowUTC()
		t.Status = transfer.StatusExecuted
		t.ExecutedAt = &now
		return r.Transfers.Save(ctx, t)
	})
	if err != nil {
		return nil, nil, err
	}

	evs := []event.Event{event.Audit{
		Action: "TRANSFERT_EXECUTE", Entity: "transfer",
		EntityRef: fmt.Sprintf("%d", t.ID), Actor: actor, Detail: t.Amount.StringFixed(2),
	}}
	return t, evs, nil
}

// Cancel reverses an executed transfer with inverse entries. The original
// entries stay in the ledger untouched.
func (u *Usecase) Cancel(ctx context.Context, id uint64, actor string) (*transfer.Transfer, []event.Event, error) {
	var t *transfer.Transfer
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		var err error
		t, err = r.Transfers.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if t.Status != transfer.StatusExecuted {
			return fmt.Errorf("transfer %d is %s: %w", t.ID, t.Status, transfer.ErrInvalidTransition)
		}
		if err := u.post(ctx, r, t, true); err != nil {
			return err
		}
		now := nowUTC()
		t.Status = transfer.StatusCancelled
		t.CancelledAt = &now
		return r.Transfers.Save(ctx, t)
	})
	if err != nil {
		return nil, nil, err
	}

	evs := []event.Event{event.Audit{
		Action: "TRANSFERT_ANNULE", Entity: "transfer",
		EntityRef: fmt.Sprintf("%d", t.ID), Actor: actor, Detail: t.Amount.StringFixed(2),
	}}
	return t, evs, nil
}

// post writes the two sides of the transfer. With inverse set the flow
// reverses, which is how cancellation restores balances.
func (u *Usecase) post(ctx context.Context, r uow.Repos, t *transfer.Transfer, inverse bool) error {
	debitCaisse := func(id uint64, counterparty *uint64, note string) (*ledger.Movement, error) {
		c, err := r.Caisses.GetByIDForUpdate(ctx, id)
		if err != nil {
			return nil, err
		}
		return fundledger.Record(ctx, r, c, fundledger.Entry{
			Kind: ledger.KindTransferOut, Amount: t.Amount,
			CounterpartyCaisseID: counterparty, Actor: t.Actor, Note: note,
		})
	}
	creditCaisse := func(id uint64, counterparty *uint64, note string) (*ledger.Movement, error) {
		c, err := r.Caisses.GetByIDForUpdate(ctx, id)
		if err != nil {
			return nil, err
		}
		return fundledger.Record(ctx, r, c, fundledger.Entry{
			Kind: ledger.KindTransferIn, Amount: t.Amount,
			CounterpartyCaisseID: counterparty, Actor: t.Actor, Note: note,
		})
	}
	reserveMove := func(kind reserve.MovementKind, note string) error {
		a, err := r.Reserve.GetForUpdate(ctx)
		if err != nil {
			return err
		}
		_, err = reserveuc.Apply(ctx, r, a, kind, t.Amount, t.SourceCaisseID, t.Actor, note)
		return err
	}

	srcOut, dstIn := t.SourceCaisseID, t.DestCaisseID
	if inverse {
		srcOut, dstIn = t.DestCaisseID, t.SourceCaisseID
	}

	switch t.Kind {
	case transfer.KindCaisseToCaisse:
		// Lock both rows in ascending id order so two opposite transfers
		// cannot deadlock.
		lo, hi := *srcOut, *dstIn
		if hi < lo {
			lo, hi = hi, lo
		}
		if _, err := lockCaisse(ctx, r, lo); err != nil {
			return err
		}
		if _, err := lockCaisse(ctx, r, hi); err != nil {
			return err
		}
		mvOut, err := debitCaisse(*srcOut, dstIn, t.Note)
		if err != nil {
			return err
		}
		mvIn, err := creditCaisse(*dstIn, srcOut, t.Note)
		if err != nil {
			return err
		}
		if !inverse {
			t.SourceMovementID = &mvOut.ID
			t.DestMovementID = &mvIn.ID
		}
		return nil

	case transfer.KindCaisseToReserve:
		reserveKind, caisseSide := reserve.KindCredit, debitCaisse
		if inverse {
			reserveKind, caisseSide = reserve.KindDebit, creditCaisse
		}
		mv, err := caisseSide(*t.SourceCaisseID, nil, t.Note)
		if err != nil {
			return err
		}
		if err := reserveMove(reserveKind, t.Note); err != nil {
			return err
		}
		if !inverse {
			t.SourceMovementID = &mv.ID
		}
		return nil

	case transfer.KindReserveToCaisse:
		reserveKind, caisseSide := reserve.KindFundCaisse, creditCaisse
		if inverse {
			reserveKind, caisseSide = reserve.KindCredit, debitCaisse
		}
		if err := reserveMove(reserveKind, t.Note); err != nil {
			return err
		}
		mv, err := caisseSide(*t.DestCaisseID, nil, t.Note)
		if err != nil {
			return err
		}
		if !inverse {
			t.DestMovementID = &mv.ID
		}
		return nil
	}
	return transfer.ErrInvalidEndpoints
}

func lockCaisse(ctx context.Context, r uow.Repos, id uint64) (*caisse.Caisse, error) {
	return r.Caisses.GetByIDForUpdate(ctx, id)
}

func nowUTC() time.Time { return time.Now().UTC() }

func (u *Usecase) Get(ctx context.Context, id uint64) (*transfer.Transfer, error) {
	var t *transfer.Transfer
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		var err error
		t, err = r.Transfers.GetByID(ctx, id)
		return err
	})
	return t, err
}

func (u *Usecase) List(ctx context.Context, limit, offset int) ([]transfer.Transfer, error) {
	var out []transfer.Transfer
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		var err error
		out, err = r.Transfers.List(ctx, limit, offset)
		return err
	})
	return out, err
}
