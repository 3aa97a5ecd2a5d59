package loan

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"caisse-core/internal/domain/event"
	"caisse-core/internal/domain/ledger"
	"caisse-core/internal/domain/loan"
	"caisse-core/internal/domain/member"
	"caisse-core/internal/domain/notification"
	"caisse-core/internal/domain/uow"
	"caisse-core/internal/usecase/fundledger"
	"caisse-core/internal/usecase/schedule"
	"caisse-core/pkg/id"
)

type Usecase struct{ uow uow.UnitOfWork }

func NewUsecase(u uow.UnitOfWork) *Usecase { return &Usecase{uow: u} }

type SubmitInput struct {
	CaisseCode      string          `json:"caisse_code" validate:"required"`
	MemberID        uint64          `json:"member_id" validate:"required"`
	AmountRequested decimal.Decimal `json:"amount_requested"`
	InterestRatePct decimal.Decimal `json:"interest_rate_pct"`
	TermMonths      int             `json:"term_months" validate:"required,min=1,max=60"`
	Purpose         string          `json:"purpose" validate:"omitempty,max=500"`
	Actor           string          `json:"actor" validate:"required"`
}

// Submit registers a loan request. The member must be active, hold the
// minimum cumulative contribution, have no other open loan, and the request
// may not exceed twice their contributions. The loan number is checked for
// uniqueness before insert; the database constraint backs the check up.
func (u *Usecase) Submit(ctx context.Context, in SubmitInput) (*loan.Loan, []event.Event, error) {
	if in.AmountRequested.LessThanOrEqual(decimal.Zero) || in.InterestRatePct.IsNegative() {
		return nil, nil, loan.ErrInvalidAmount
	}
	if in.TermMonths <= 0 {
		return nil, nil, loan.ErrInvalidAmount
	}

	var l *loan.Loan
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		c, err := r.Caisses.GetByCode(ctx, in.CaisseCode)
		if err != nil {
			return err
		}
		m, err := r.Members.GetByID(ctx, in.MemberID)
		if err != nil {
			return err
		}
		if m.CaisseID != c.ID || m.Status != member.StatusActive {
			return member.ErrNotFound
		}

		contributed, err := r.Contributions.SumByMember(ctx, m.ID)
		if err != nil {
			return err
		}
		if contributed.LessThan(loan.MinContributionForLoan) {
			return fmt.Errorf("member %d contributed %s: %w", m.ID, contributed.StringFixed(2), loan.ErrEligibilityDenied)
		}
		if in.AmountRequested.GreaterThan(contributed.Mul(loan.CapMultiplier)) {
			return loan.ErrCapExceeded
		}

		open, err := r.Loans.ExistsOpenByMember(ctx, m.ID)
		if err != nil {
			return err
		}
		if open {
			return loan.ErrOpenLoanExists
		}

		number, err := uniqueLoanNumber(ctx, r)
		if err != nil {
			return err
		}

		l = &loan.Loan{
			Number:          number,
			MemberID:        m.ID,
			CaisseID:        c.ID,
			AmountRequested: in.AmountRequested,
			InterestRatePct: in.InterestRatePct,
			TermMonths:      in.TermMonths,
			Status:          loan.StatusSubmitted,
			Purpose:         in.Purpose,
		}
		return r.Loans.Create(ctx, l)
	})
	if err != nil {
		return nil, nil, err
	}

	evs := []event.Event{
		event.Audit{Action: "PRET_CREE", Entity: "loan", EntityRef: l.Number, Actor: in.Actor, Detail: in.AmountRequested.StringFixed(2)},
	}
	return l, evs, nil
}

// SendToReview forwards a submitted loan to the administrators' queue and
// notifies the caisse that a review is requested.
func (u *Usecase) SendToReview(ctx context.Context, number, actor string) (*loan.Loan, []event.Event, error) {
	var out *loan.Loan
	err := u.uow.WithinLoanTx(ctx, number, func(r uow.Repos, l *loan.Loan) error {
		if l.Status != loan.StatusSubmitted {
			return fmt.Errorf("loan %s is %s: %w", l.Number, l.Status, loan.ErrInvalidTransition)
		}
		l.Status = loan.StatusPendingAdmin
		out = l
		return r.Loans.Save(ctx, l)
	})
	if err != nil {
		return nil, nil, err
	}
	evs := []event.Event{
		event.Audit{Action: "PRET_SOUMIS", Entity: "loan", EntityRef: number, Actor: actor},
		event.Notice{CaisseID: out.CaisseID, LoanID: &out.ID, Kind: notification.KindLoanSubmitted, Message: fmt.Sprintf("Pret %s soumis pour validation", number)},
	}
	return out, evs, nil
}

type ReviewInput struct {
	Number         string          `json:"number" validate:"required"`
	AmountApproved decimal.Decimal `json:"amount_approved"`
	Actor          string          `json:"actor" validate:"required"`
}

// Approve fixes the approved amount on a loan under review, defaulting to
// the requested amount when none is given. When the caisse fund cannot cover
// the amount the loan parks in BLOCKED instead of failing, and a later
// Approve retries once funds arrive. Blocking leaves no ledger entry behind.
func (u *Usecase) Approve(ctx context.Context, in ReviewInput) (*loan.Loan, []event.Event, error) {
	if in.AmountApproved.IsNegative() {
		return nil, nil, loan.ErrInvalidAmount
	}

	var (
		out     *loan.Loan
		blocked bool
	)
	err := u.uow.WithinLoanTx(ctx, in.Number, func(r uow.Repos, l *loan.Loan) error {
		if l.Status != loan.StatusPendingAdmin && l.Status != loan.StatusBlocked {
			return fmt.Errorf("loan %s is %s: %w", l.Number, l.Status, loan.ErrInvalidTransition)
		}

		approved := in.AmountApproved
		if approved.IsZero() {
			approved = l.AmountRequested
		}
		if approved.GreaterThan(l.AmountRequested) {
			return loan.ErrInvalidAmount
		}

		contributed, err := r.Contributions.SumByMember(ctx, l.MemberID)
		if err != nil {
			return err
		}
		if approved.GreaterThan(contributed.Mul(loan.CapMultiplier)) {
			return loan.ErrCapExceeded
		}

		c, err := r.Caisses.GetByID(ctx, l.CaisseID)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		l.AmountApproved = approved
		l.ReviewedAt = &now
		if c.FundAvailable.LessThan(approved) {
			blocked = true
			l.Status = loan.StatusBlocked
			l.StatusReason = fmt.Sprintf("fonds disponibles %s insuffisants pour %s",
				c.FundAvailable.StringFixed(2), approved.StringFixed(2))
		} else {
			l.Status = loan.StatusApproved
			l.StatusReason = ""
		}
		out = l
		return r.Loans.Save(ctx, l)
	})
	if err != nil {
		return nil, nil, err
	}

	if blocked {
		return out, []event.Event{
			event.Audit{Action: "PRET_BLOQUE", Entity: "loan", EntityRef: out.Number, Actor: in.Actor, Detail: out.StatusReason},
			event.Notice{CaisseID: out.CaisseID, LoanID: &out.ID, Kind: notification.KindLoanBlocked, Message: fmt.Sprintf("Pret %s bloque: fonds insuffisants", out.Number)},
		}, nil
	}
	return out, []event.Event{
		event.Audit{Action: "PRET_VALIDE", Entity: "loan", EntityRef: out.Number, Actor: in.Actor, Detail: out.AmountApproved.StringFixed(2)},
		event.Notice{CaisseID: out.CaisseID, LoanID: &out.ID, Kind: notification.KindLoanApproved, Message: fmt.Sprintf("Pret %s valide pour %s", out.Number, out.AmountApproved.StringFixed(2))},
	}, nil
}

// Hold sends a loan back to the submission queue with a note, typically when
// the file needs completing before review.
func (u *Usecase) Hold(ctx context.Context, number, reason, actor string) (*loan.Loan, []event.Event, error) {
	var out *loan.Loan
	err := u.uow.WithinLoanTx(ctx, number, func(r uow.Repos, l *loan.Loan) error {
		if l.Status != loan.StatusSubmitted && l.Status != loan.StatusPendingAdmin {
			return fmt.Errorf("loan %s is %s: %w", l.Number, l.Status, loan.ErrInvalidTransition)
		}
		l.Status = loan.StatusSubmitted
		l.StatusReason = reason
		out = l
		return r.Loans.Save(ctx, l)
	})
	if err != nil {
		return nil, nil, err
	}
	evs := []event.Event{event.Audit{
		Action: "PRET_AJOURNE", Entity: "loan", EntityRef: number, Actor: actor, Detail: reason,
	}}
	return out, evs, nil
}

// Reject closes a loan before approval. Rejected loans are the only ones
// that can later be deleted.
func (u *Usecase) Reject(ctx context.Context, number, reason, actor string) (*loan.Loan, []event.Event, error) {
	var out *loan.Loan
	err := u.uow.WithinLoanTx(ctx, number, func(r uow.Repos, l *loan.Loan) error {
		if l.Status != loan.StatusSubmitted && l.Status != loan.StatusPendingAdmin {
			return fmt.Errorf("loan %s is %s: %w", l.Number, l.Status, loan.ErrInvalidTransition)
		}
		now := time.Now().UTC()
		l.Status = loan.StatusRejected
		l.StatusReason = reason
		l.ReviewedAt = &now
		out = l
		return r.Loans.Save(ctx, l)
	})
	if err != nil {
		return nil, nil, err
	}
	evs := []event.Event{
		event.Audit{Action: "PRET_REJETE", Entity: "loan", EntityRef: number, Actor: actor, Detail: reason},
		event.Notice{CaisseID: out.CaisseID, LoanID: &out.ID, Kind: notification.KindLoanRejected, Message: fmt.Sprintf("Pret %s rejete", number)},
	}
	return out, evs, nil
}

// Disburse releases the approved amount from the caisse fund and activates
// the loan. The installment schedule is generated from the disbursement
// moment, the ledger records the outflow and both commit together.
func (u *Usecase) Disburse(ctx context.Context, number, actor string) (*loan.Loan, []event.Event, error) {
	var (
		out *loan.Loan
		mv  *ledger.Movement
	)
	err := u.uow.WithinLoanTx(ctx, number, func(r uow.Repos, l *loan.Loan) error {
		if l.Status != loan.StatusApproved {
			return fmt.Errorf("loan %s is %s: %w", l.Number, l.Status, loan.ErrInvalidTransition)
		}

		c, err := r.Caisses.GetByIDForUpdate(ctx, l.CaisseID)
		if err != nil {
			return err
		}

		mv, err = fundledger.Record(ctx, r, c, fundledger.Entry{
			Kind:   ledger.KindDisbursement,
			Amount: l.AmountApproved,
			LoanID: &l.ID,
			Actor:  actor,
			Note:   fmt.Sprintf("decaissement pret %s", l.Number),
		})
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		total := schedule.TotalDue(l.AmountApproved, l.InterestRatePct)
		items := schedule.Generate(total, l.TermMonths, now)

		installments := make([]loan.Installment, 0, len(items))
		for _, it := range items {
			installments = append(installments, loan.Installment{
				LoanID:    l.ID,
				Sequence:  it.Sequence,
				AmountDue: it.Amount,
				DueDate:   it.DueDate,
				Status:    loan.InstallmentDue,
			})
		}
		if err := r.Installments.BulkCreate(ctx, installments); err != nil {
			return err
		}

		end := items[len(items)-1].DueDate
		l.Status = loan.StatusActive
		l.DisbursedAt = &now
		l.InstallmentsTotal = len(items)
		l.EndDate = &end
		out = l
		return r.Loans.Save(ctx, l)
	})
	if err != nil {
		return nil, nil, err
	}

	evs := []event.Event{
		event.Audit{Action: "PRET_DECAISSE", Entity: "loan", EntityRef: number, Actor: actor, Detail: out.AmountApproved.StringFixed(2)},
		event.Notice{CaisseID: out.CaisseID, LoanID: &out.ID, Kind: notification.KindLoanDisbursed, Message: fmt.Sprintf("Pret %s decaisse", number)},
		event.BalanceChanged{CaisseID: out.CaisseID, Kind: string(ledger.KindDisbursement), Amount: mv.Amount, After: mv.BalanceAfter},
	}
	return out, evs, nil
}

// Delete removes a rejected loan and cascades to its installments and
// notifications. Ledger entries are immutable, so movements that referenced
// the loan only lose the reference.
func (u *Usecase) Delete(ctx context.Context, number, actor string) ([]event.Event, error) {
	err := u.uow.WithinLoanTx(ctx, number, func(r uow.Repos, l *loan.Loan) error {
		if l.Status != loan.StatusRejected {
			return fmt.Errorf("loan %s is %s: %w", l.Number, l.Status, loan.ErrInvalidTransition)
		}
		if err := r.Installments.DeleteByLoan(ctx, l.ID); err != nil {
			return err
		}
		if err := r.Notifications.DeleteByLoan(ctx, l.ID); err != nil {
			return err
		}
		if err := r.Movements.UnlinkLoan(ctx, l.ID); err != nil {
			return err
		}
		return r.Loans.Delete(ctx, l)
	})
	if err != nil {
		return nil, err
	}
	return []event.Event{event.Audit{
		Action: "PRET_SUPPRIME", Entity: "loan", EntityRef: number, Actor: actor,
	}}, nil
}

func (u *Usecase) Get(ctx context.Context, number string) (*loan.Loan, []loan.Installment, error) {
	var (
		l     *loan.Loan
		items []loan.Installment
	)
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		var err error
		l, err = r.Loans.GetByNumber(ctx, number)
		if err != nil {
			return err
		}
		items, err = r.Installments.ListByLoan(ctx, l.ID)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return l, items, nil
}

func (u *Usecase) ListByCaisse(ctx context.Context, caisseCode string) ([]loan.Loan, error) {
	var out []loan.Loan
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		c, err := r.Caisses.GetByCode(ctx, caisseCode)
		if err != nil {
			return err
		}
		out, err = r.Loans.ListByCaisse(ctx, c.ID)
		return err
	})
	return out, err
}

// SweepOverdue flags active loans with an unpaid installment past its due
// date. Meant to run daily; re-running is harmless.
func (u *Usecase) SweepOverdue(ctx context.Context, day time.Time) ([]event.Event, error) {
	var numbers []string
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		active, err := r.Loans.ListByStatus(ctx, loan.StatusActive)
		if err != nil {
			return err
		}
		for i := range active {
			numbers = append(numbers, active[i].Number)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	var evs []event.Event
	for _, number := range numbers {
		err := u.uow.WithinLoanTx(ctx, number, func(r uow.Repos, l *loan.Loan) error {
			if l.Status != loan.StatusActive {
				return nil
			}
			if err := r.Installments.MarkOverdueDueBefore(ctx, l.ID, day); err != nil {
				return err
			}
			late, err := r.Installments.HasUnpaidDueBefore(ctx, l.ID, day)
			if err != nil {
				return err
			}
			if !late {
				return nil
			}
			l.Status = loan.StatusOverdue
			if err := r.Loans.Save(ctx, l); err != nil {
				return err
			}
			evs = append(evs,
				event.Audit{Action: "PRET_EN_RETARD", Entity: "loan", EntityRef: l.Number, Actor: "system"},
				event.Notice{CaisseID: l.CaisseID, LoanID: &l.ID, Kind: notification.KindLoanOverdue, Message: fmt.Sprintf("Pret %s en retard", l.Number)},
			)
			return nil
		})
		if err != nil {
			return evs, err
		}
	}
	return evs, nil
}

// EnsureSchedule backfills the installment plan of an active loan that lost
// it, regenerating from the recorded disbursement date.
func (u *Usecase) EnsureSchedule(ctx context.Context, number string) error {
	return u.uow.WithinLoanTx(ctx, number, func(r uow.Repos, l *loan.Loan) error {
		if l.Status != loan.StatusActive && l.Status != loan.StatusOverdue {
			return fmt.Errorf("loan %s is %s: %w", l.Number, l.Status, loan.ErrInvalidTransition)
		}
		n, err := r.Installments.CountByLoan(ctx, l.ID)
		if err != nil {
			return err
		}
		if n > 0 || l.DisbursedAt == nil {
			return nil
		}

		total := schedule.TotalDue(l.AmountApproved, l.InterestRatePct)
		items := schedule.Generate(total, l.TermMonths, *l.DisbursedAt)
		installments := make([]loan.Installment, 0, len(items))
		for _, it := range items {
			installments = append(installments, loan.Installment{
				LoanID:    l.ID,
				Sequence:  it.Sequence,
				AmountDue: it.Amount,
				DueDate:   it.DueDate,
				Status:    loan.InstallmentDue,
			})
		}
		if err := r.Installments.BulkCreate(ctx, installments); err != nil {
			return err
		}
		l.InstallmentsTotal = len(installments)
		return r.Loans.Save(ctx, l)
	})
}

// uniqueLoanNumber draws numbers until one clears the pre-check. Collisions
// are vanishingly rare; the retry bound guards against a broken generator.
func uniqueLoanNumber(ctx context.Context, r uow.Repos) (string, error) {
	for i := 0; i < 5; i++ {
		number := id.LoanNumber(time.Now().UTC())
		exists, err := r.Loans.ExistsNumber(ctx, number)
		if err != nil {
			return "", err
		}
		if !exists {
			return number, nil
		}
	}
	return "", loan.ErrUniquenessViolation
}
