package member

import (
	"context"
	"fmt"

	"caisse-core/internal/domain/event"
	"caisse-core/internal/domain/member"
	"caisse-core/internal/domain/uow"
)

type Usecase struct{ uow uow.UnitOfWork }

func NewUsecase(u uow.UnitOfWork) *Usecase { return &Usecase{uow: u} }

type CreateInput struct {
	CaisseCode     string      `json:"caisse_code" validate:"required"`
	FullName       string      `json:"full_name" validate:"required,min=2,max=100"`
	IdentityNumber string      `json:"identity_number" validate:"required,min=5,max=50"`
	Phone          string      `json:"phone" validate:"omitempty,max=20"`
	Role           member.Role `json:"role" validate:"required,oneof=MEMBRE PRESIDENTE SECRETAIRE TRESORIERE"`
	Actor          string      `json:"actor" validate:"required"`
}

// Create enrolls a member. A caisse holds at most thirty active members, an
// identity number may appear once per caisse, and officers must carry an
// identity number unused by any other officer system-wide.
func (u *Usecase) Create(ctx context.Context, in CreateInput) (*member.Member, []event.Event, error) {
	var m *member.Member
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		c, err := r.Caisses.GetByCode(ctx, in.CaisseCode)
		if err != nil {
			return err
		}

		active, err := r.Members.CountActiveByCaisse(ctx, c.ID)
		if err != nil {
			return err
		}
		if active >= member.MaxActivePerCaisse {
			return member.ErrActiveCapReached
		}

		dup, err := r.Members.ExistsIdentityInCaisse(ctx, c.ID, in.IdentityNumber)
		if err != nil {
			return err
		}
		if dup {
			return fmt.Errorf("identity %s in caisse %s: %w", in.IdentityNumber, c.Code, member.ErrUniquenessViolation)
		}

		if in.Role.IsOfficer() {
			dup, err = r.Members.ExistsOfficerIdentity(ctx, in.IdentityNumber)
			if err != nil {
				return err
			}
			if dup {
				return fmt.Errorf("officer identity %s: %w", in.IdentityNumber, member.ErrUniquenessViolation)
			}
		}

		m = &member.Member{
			CaisseID:       c.ID,
			FullName:       in.FullName,
			IdentityNumber: in.IdentityNumber,
			Phone:          in.Phone,
			Role:           in.Role,
			Status:         member.StatusActive,
		}
		return r.Members.Create(ctx, m)
	})
	if err != nil {
		return nil, nil, err
	}

	evs := []event.Event{event.Audit{
		Action: "MEMBRE_AJOUTE", Entity: "member",
		EntityRef: fmt.Sprintf("%d", m.ID), Actor: in.Actor, Detail: in.FullName,
	}}
	return m, evs, nil
}

func (u *Usecase) ListByCaisse(ctx context.Context, caisseCode string, limit, offset int) ([]member.Member, error) {
	var out []member.Member
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		c, err := r.Caisses.GetByCode(ctx, caisseCode)
		if err != nil {
			return err
		}
		out, err = r.Members.ListByCaisse(ctx, c.ID, limit, offset)
		return err
	})
	return out, err
}

// SetStatus transitions a member between ACTIF, INACTIF, SUSPENDU and
// RETRAITE. Reactivation is subject to the same active-member cap as
// enrollment.
func (u *Usecase) SetStatus(ctx context.Context, memberID uint64, status member.Status, actor string) (*member.Member, []event.Event, error) {
	var m *member.Member
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		var err error
		m, err = r.Members.GetByID(ctx, memberID)
		if err != nil {
			return err
		}
		if status == member.StatusActive && m.Status != member.StatusActive {
			active, err := r.Members.CountActiveByCaisse(ctx, m.CaisseID)
			if err != nil {
				return err
			}
			if active >= member.MaxActivePerCaisse {
				return member.ErrActiveCapReached
			}
		}
		m.Status = status
		return r.Members.Save(ctx, m)
	})
	if err != nil {
		return nil, nil, err
	}
	evs := []event.Event{event.Audit{
		Action: "MEMBRE_STATUT", Entity: "member",
		EntityRef: fmt.Sprintf("%d", m.ID), Actor: actor, Detail: string(status),
	}}
	return m, evs, nil
}
