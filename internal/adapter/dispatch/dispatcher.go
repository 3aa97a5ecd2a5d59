package dispatch

import (
	"context"

	"github.com/rs/zerolog"

	"caisse-core/internal/domain/audit"
	"caisse-core/internal/domain/event"
	"caisse-core/internal/domain/notification"
	"caisse-core/internal/domain/uow"
)

// Dispatcher turns the events a usecase returns into persisted audit
// entries and notifications, and logs balance movements. It runs after the
// usecase transaction has committed, so a dispatch failure never undoes
// business state; it is logged and the loop moves on.
type Dispatcher struct {
	uow uow.UnitOfWork
	log zerolog.Logger
}

func NewDispatcher(u uow.UnitOfWork, log zerolog.Logger) *Dispatcher {
	return &Dispatcher{uow: u, log: log}
}

func (d *Dispatcher) Dispatch(ctx context.Context, evs []event.Event) {
	for _, ev := range evs {
		if err := d.handle(ctx, ev); err != nil {
			d.log.Error().Err(err).Str("event", ev.Name()).Msg("dispatch failed")
		}
	}
}

func (d *Dispatcher) handle(ctx context.Context, ev event.Event) error {
	switch e := ev.(type) {
	case event.Audit:
		return d.uow.WithinTx(ctx, func(r uow.Repos) error {
			return r.Audits.Create(ctx, &audit.Entry{
				Action:    e.Action,
				Entity:    e.Entity,
				EntityRef: e.EntityRef,
				Actor:     e.Actor,
				Detail:    e.Detail,
			})
		})
	case event.Notice:
		return d.uow.WithinTx(ctx, func(r uow.Repos) error {
			return r.Notifications.Create(ctx, &notification.Notification{
				CaisseID: e.CaisseID,
				LoanID:   e.LoanID,
				Kind:     e.Kind,
				Message:  e.Message,
			})
		})
	case event.BalanceChanged:
		d.log.Info().
			Uint64("caisse_id", e.CaisseID).
			Str("kind", e.Kind).
			Str("amount", e.Amount.StringFixed(2)).
			Str("balance_after", e.After.StringFixed(2)).
			Msg("balance changed")
		return nil
	default:
		d.log.Warn().Str("event", ev.Name()).Msg("unknown event kind")
		return nil
	}
}
