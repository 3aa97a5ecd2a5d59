// Package memuow is an in-memory uow.UnitOfWork for usecase tests. State
// lives in maps, transactions snapshot everything up front and restore on
// error, and row locks degrade to the store-wide mutex.
package memuow

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"caisse-core/internal/domain/audit"
	"caisse-core/internal/domain/caisse"
	"caisse-core/internal/domain/contribution"
	"caisse-core/internal/domain/ledger"
	"caisse-core/internal/domain/loan"
	"caisse-core/internal/domain/member"
	"caisse-core/internal/domain/notification"
	"caisse-core/internal/domain/reserve"
	"caisse-core/internal/domain/transfer"
	"caisse-core/internal/domain/uow"
)

type Store struct {
	mu  sync.Mutex
	seq uint64

	Caisses       map[uint64]*caisse.Caisse
	Members       map[uint64]*member.Member
	Loans         map[uint64]*loan.Loan
	Installments  map[uint64]*loan.Installment
	Movements     map[uint64]*ledger.Movement
	Transfers     map[uint64]*transfer.Transfer
	Contributions map[uint64]*contribution.Contribution
	Notifications map[uint64]*notification.Notification
	Audits        map[uint64]*audit.Entry
	ReserveAcct   *reserve.Account
	ReserveMoves  map[uint64]*reserve.Movement
}

func New() *Store {
	return &Store{
		Caisses:       map[uint64]*caisse.Caisse{},
		Members:       map[uint64]*member.Member{},
		Loans:         map[uint64]*loan.Loan{},
		Installments:  map[uint64]*loan.Installment{},
		Movements:     map[uint64]*ledger.Movement{},
		Transfers:     map[uint64]*transfer.Transfer{},
		Contributions: map[uint64]*contribution.Contribution{},
		Notifications: map[uint64]*notification.Notification{},
		Audits:        map[uint64]*audit.Entry{},
		ReserveMoves:  map[uint64]*reserve.Movement{},
	}
}

func (s *Store) nextID() uint64 {
	s.seq++
	return s.seq
}

// Repos returns repositories bound to the store. Tests seeding data outside
// a transaction can use these directly.
func (s *Store) Repos() uow.Repos {
	return uow.Repos{
		Caisses:       &caisseRepo{s},
		Members:       &memberRepo{s},
		Loans:         &loanRepo{s},
		Installments:  &installmentRepo{s},
		Movements:     &movementRepo{s},
		Reserve:       &reserveRepo{s},
		Transfers:     &transferRepo{s},
		Contributions: &contributionRepo{s},
		Notifications: &notificationRepo{s},
		Audits:        &auditRepo{s},
	}
}

func cloneMap[V any](m map[uint64]*V) map[uint64]*V {
	out := make(map[uint64]*V, len(m))
	for k, v := range m {
		c := *v
		out[k] = &c
	}
	return out
}

type snapshot struct {
	seq           uint64
	caisses       map[uint64]*caisse.Caisse
	members       map[uint64]*member.Member
	loans         map[uint64]*loan.Loan
	installments  map[uint64]*loan.Installment
	movements     map[uint64]*ledger.Movement
	transfers     map[uint64]*transfer.Transfer
	contributions map[uint64]*contribution.Contribution
	notifications map[uint64]*notification.Notification
	audits        map[uint64]*audit.Entry
	reserveAcct   *reserve.Account
	reserveMoves  map[uint64]*reserve.Movement
}

func (s *Store) take() snapshot {
	snap := snapshot{
		seq:           s.seq,
		caisses:       cloneMap(s.Caisses),
		members:       cloneMap(s.Members),
		loans:         cloneMap(s.Loans),
		installments:  cloneMap(s.Installments),
		movements:     cloneMap(s.Movements),
		transfers:     cloneMap(s.Transfers),
		contributions: cloneMap(s.Contributions),
		notifications: cloneMap(s.Notifications),
		audits:        cloneMap(s.Audits),
		reserveMoves:  cloneMap(s.ReserveMoves),
	}
	if s.ReserveAcct != nil {
		c := *s.ReserveAcct
		snap.reserveAcct = &c
	}
	return snap
}

func (s *Store) restore(snap snapshot) {
	s.seq = snap.seq
	s.Caisses = snap.caisses
	s.Members = snap.members
	s.Loans = snap.loans
	s.Installments = snap.installments
	s.Movements = snap.movements
	s.Transfers = snap.transfers
	s.Contributions = snap.contributions
	s.Notifications = snap.notifications
	s.Audits = snap.audits
	s.ReserveAcct = snap.reserveAcct
	s.ReserveMoves = snap.reserveMoves
}

func (s *Store) WithinTx(_ context.Context, fn func(r uow.Repos) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.take()
	if err := fn(s.Repos()); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

func (s *Store) WithinLoanTx(ctx context.Context, number string, fn func(r uow.Repos, l *loan.Loan) error) error {
	return s.WithinTx(ctx, func(r uow.Repos) error {
		l, err := r.Loans.GetByNumberForUpdate(ctx, number)
		if err != nil {
			return err
		}
		return fn(r, l)
	})
}

func (s *Store) WithinCaisseTx(ctx context.Context, code string, fn func(r uow.Repos, c *caisse.Caisse) error) error {
	return s.WithinTx(ctx, func(r uow.Repos) error {
		c, err := r.Caisses.GetByCodeForUpdate(ctx, code)
		if err != nil {
			return err
		}
		return fn(r, c)
	})
}

// ----- caisse -----

type caisseRepo struct{ s *Store }

func (r *caisseRepo) Create(_ context.Context, c *caisse.Caisse) error {
	for _, ex := range r.s.Caisses {
		if ex.Code == c.Code || ex.AssociationName == c.AssociationName {
			return caisse.ErrUniquenessViolation
		}
	}
	c.ID = r.s.nextID()
	c.CreatedAt = time.Now().UTC()
	r.s.Caisses[c.ID] = c
	return nil
}

func (r *caisseRepo) GetByCode(_ context.Context, code string) (*caisse.Caisse, error) {
	for _, c := range r.s.Caisses {
		if c.Code == code {
			return c, nil
		}
	}
	return nil, caisse.ErrNotFound
}

func (r *caisseRepo) GetByCodeForUpdate(ctx context.Context, code string) (*caisse.Caisse, error) {
	return r.GetByCode(ctx, code)
}

func (r *caisseRepo) GetByID(_ context.Context, id uint64) (*caisse.Caisse, error) {
	c, ok := r.s.Caisses[id]
	if !ok {
		return nil, caisse.ErrNotFound
	}
	return c, nil
}

func (r *caisseRepo) GetByIDForUpdate(ctx context.Context, id uint64) (*caisse.Caisse, error) {
	return r.GetByID(ctx, id)
}

func (r *caisseRepo) Save(_ context.Context, c *caisse.Caisse) error {
	r.s.Caisses[c.ID] = c
	return nil
}

func (r *caisseRepo) Delete(_ context.Context, c *caisse.Caisse) error {
	delete(r.s.Caisses, c.ID)
	return nil
}

func (r *caisseRepo) List(_ context.Context, limit, offset int) ([]caisse.Caisse, error) {
	out := make([]caisse.Caisse, 0, len(r.s.Caisses))
	for _, c := range r.s.Caisses {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return page(out, limit, offset), nil
}

func (r *caisseRepo) Count(_ context.Context) (int64, error) {
	return int64(len(r.s.Caisses)), nil
}

func (r *caisseRepo) ExistsName(_ context.Context, name string) (bool, error) {
	for _, c := range r.s.Caisses {
		if strings.EqualFold(c.AssociationName, name) {
			return true, nil
		}
	}
	return false, nil
}

func (r *caisseRepo) SumFundAvailable(_ context.Context) (decimal.Decimal, error) {
	var sum decimal.Decimal
	for _, c := range r.s.Caisses {
		sum = sum.Add(c.FundAvailable)
	}
	return sum, nil
}

// ----- member -----

type memberRepo struct{ s *Store }

func (r *memberRepo) Create(_ context.Context, m *member.Member) error {
	m.ID = r.s.nextID()
	m.JoinedAt = time.Now().UTC()
	r.s.Members[m.ID] = m
	return nil
}

func (r *memberRepo) GetByID(_ context.Context, id uint64) (*member.Member, error) {
	m, ok := r.s.Members[id]
	if !ok {
		return nil, member.ErrNotFound
	}
	return m, nil
}

func (r *memberRepo) Save(_ context.Context, m *member.Member) error {
	r.s.Members[m.ID] = m
	return nil
}

func (r *memberRepo) ListByCaisse(_ context.Context, caisseID uint64, limit, offset int) ([]member.Member, error) {
	var out []member.Member
	for _, m := range r.s.Members {
		if m.CaisseID == caisseID {
			out = append(out, *m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return page(out, limit, offset), nil
}

func (r *memberRepo) CountActiveByCaisse(_ context.Context, caisseID uint64) (int64, error) {
	var n int64
	for _, m := range r.s.Members {
		if m.CaisseID == caisseID && m.Status == member.StatusActive {
			n++
		}
	}
	return n, nil
}

func (r *memberRepo) CountByCaisse(_ context.Context, caisseID uint64) (int64, error) {
	var n int64
	for _, m := range r.s.Members {
		if m.CaisseID == caisseID {
			n++
		}
	}
	return n, nil
}

func (r *memberRepo) ExistsIdentityInCaisse(_ context.Context, caisseID uint64, identity string) (bool, error) {
	for _, m := range r.s.Members {
		if m.CaisseID == caisseID && m.IdentityNumber == identity {
			return true, nil
		}
	}
	return false, nil
}

func (r *memberRepo) ExistsOfficerIdentity(_ context.Context, identity string) (bool, error) {
	for _, m := range r.s.Members {
		if m.Role.IsOfficer() && m.IdentityNumber == identity {
			return true, nil
		}
	}
	return false, nil
}

// ----- loan -----

type loanRepo struct{ s *Store }

func (r *loanRepo) Create(_ context.Context, l *loan.Loan) error {
	for _, ex := range r.s.Loans {
		if ex.Number == l.Number {
			return loan.ErrUniquenessViolation
		}
	}
	l.ID = r.s.nextID()
	l.SubmittedAt = time.Now().UTC()
	r.s.Loans[l.ID] = l
	return nil
}

func (r *loanRepo) GetByNumber(_ context.Context, number string) (*loan.Loan, error) {
	for _, l := range r.s.Loans {
		if l.Number == number {
			return l, nil
		}
	}
	return nil, loan.ErrNotFound
}

func (r *loanRepo) GetByNumberForUpdate(ctx context.Context, number string) (*loan.Loan, error) {
	return r.GetByNumber(ctx, number)
}

func (r *loanRepo) Save(_ context.Context, l *loan.Loan) error {
	r.s.Loans[l.ID] = l
	return nil
}

func (r *loanRepo) Delete(_ context.Context, l *loan.Loan) error {
	delete(r.s.Loans, l.ID)
	return nil
}

func (r *loanRepo) ExistsNumber(_ context.Context, number string) (bool, error) {
	for _, l := range r.s.Loans {
		if l.Number == number {
			return true, nil
		}
	}
	return false, nil
}

func (r *loanRepo) ExistsOpenByMember(_ context.Context, memberID uint64) (bool, error) {
	for _, l := range r.s.Loans {
		if l.MemberID != memberID {
			continue
		}
		for _, st := range loan.OpenStatuses {
			if l.Status == st {
				return true, nil
			}
		}
	}
	return false, nil
}

func (r *loanRepo) ListByCaisse(_ context.Context, caisseID uint64) ([]loan.Loan, error) {
	var out []loan.Loan
	for _, l := range r.s.Loans {
		if l.CaisseID == caisseID {
			out = append(out, *l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *loanRepo) CountByCaisse(_ context.Context, caisseID uint64) (int64, error) {
	var n int64
	for _, l := range r.s.Loans {
		if l.CaisseID == caisseID {
			n++
		}
	}
	return n, nil
}

func (r *loanRepo) ListByStatus(_ context.Context, statuses ...loan.Status) ([]loan.Loan, error) {
	var out []loan.Loan
	for _, l := range r.s.Loans {
		for _, st := range statuses {
			if l.Status == st {
				out = append(out, *l)
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ----- installments -----

type installmentRepo struct{ s *Store }

func (r *installmentRepo) BulkCreate(_ context.Context, installments []loan.Installment) error {
	for i := range installments {
		it := installments[i]
		it.ID = r.s.nextID()
		r.s.Installments[it.ID] = &it
	}
	return nil
}

func (r *installmentRepo) ListByLoan(_ context.Context, loanID uint64) ([]loan.Installment, error) {
	var out []loan.Installment
	for _, it := range r.s.Installments {
		if it.LoanID == loanID {
			out = append(out, *it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Sequence < out[j].Sequence })
	return out, nil
}

func (r *installmentRepo) Save(_ context.Context, it *loan.Installment) error {
	c := *it
	r.s.Installments[c.ID] = &c
	return nil
}

func (r *installmentRepo) DeleteByLoan(_ context.Context, loanID uint64) error {
	for id, it := range r.s.Installments {
		if it.LoanID == loanID {
			delete(r.s.Installments, id)
		}
	}
	return nil
}

func (r *installmentRepo) CountByLoan(_ context.Context, loanID uint64) (int64, error) {
	var n int64
	for _, it := range r.s.Installments {
		if it.LoanID == loanID {
			n++
		}
	}
	return n, nil
}

func (r *installmentRepo) HasUnpaidDueBefore(_ context.Context, loanID uint64, day time.Time) (bool, error) {
	for _, it := range r.s.Installments {
		if it.LoanID == loanID && it.Status != loan.InstallmentPaid && it.DueDate.Before(day) {
			return true, nil
		}
	}
	return false, nil
}

func (r *installmentRepo) MarkOverdueDueBefore(_ context.Context, loanID uint64, day time.Time) error {
	for _, it := range r.s.Installments {
		if it.LoanID == loanID && it.DueDate.Before(day) &&
			(it.Status == loan.InstallmentDue || it.Status == loan.InstallmentPartiallyPaid) {
			it.Status = loan.InstallmentOverdue
		}
	}
	return nil
}

// ----- movements -----

type movementRepo struct{ s *Store }

func (r *movementRepo) Create(_ context.Context, m *ledger.Movement) error {
	m.ID = r.s.nextID()
	m.CreatedAt = time.Now().UTC()
	r.s.Movements[m.ID] = m
	return nil
}

func (r *movementRepo) GetByID(_ context.Context, id uint64) (*ledger.Movement, error) {
	m, ok := r.s.Movements[id]
	if !ok {
		return nil, ledger.ErrNotFound
	}
	return m, nil
}

func (r *movementRepo) ListByCaisse(_ context.Context, caisseID uint64, limit, offset int) ([]ledger.Movement, error) {
	var out []ledger.Movement
	for _, m := range r.s.Movements {
		if m.CaisseID == caisseID {
			out = append(out, *m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return page(out, limit, offset), nil
}

func (r *movementRepo) ListByLoan(_ context.Context, loanID uint64) ([]ledger.Movement, error) {
	var out []ledger.Movement
	for _, m := range r.s.Movements {
		if m.LoanID != nil && *m.LoanID == loanID {
			out = append(out, *m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *movementRepo) UnlinkLoan(_ context.Context, loanID uint64) error {
	for _, m := range r.s.Movements {
		if m.LoanID != nil && *m.LoanID == loanID {
			m.LoanID = nil
		}
	}
	return nil
}

// ----- reserve -----

type reserveRepo struct{ s *Store }

func (r *reserveRepo) Get(_ context.Context) (*reserve.Account, error) {
	if r.s.ReserveAcct == nil {
		r.s.ReserveAcct = &reserve.Account{ID: r.s.nextID(), Name: "Caisse Générale"}
	}
	return r.s.ReserveAcct, nil
}

func (r *reserveRepo) GetForUpdate(ctx context.Context) (*reserve.Account, error) {
	return r.Get(ctx)
}

func (r *reserveRepo) Save(_ context.Context, a *reserve.Account) error {
	r.s.ReserveAcct = a
	return nil
}

func (r *reserveRepo) CreateMovement(_ context.Context, m *reserve.Movement) error {
	m.ID = r.s.nextID()
	m.CreatedAt = time.Now().UTC()
	r.s.ReserveMoves[m.ID] = m
	return nil
}

func (r *reserveRepo) ListMovements(_ context.Context) ([]reserve.Movement, error) {
	var out []reserve.Movement
	for _, m := range r.s.ReserveMoves {
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *reserveRepo) RefreshAggregate(ctx context.Context, total decimal.Decimal) (*reserve.Account, error) {
	a, err := r.Get(ctx)
	if err != nil {
		return nil, err
	}
	a.AggregatedCaisses = total
	return a, nil
}

// ----- transfers -----

type transferRepo struct{ s *Store }

func (r *transferRepo) Create(_ context.Context, t *transfer.Transfer) error {
	t.ID = r.s.nextID()
	t.CreatedAt = time.Now().UTC()
	r.s.Transfers[t.ID] = t
	return nil
}

func (r *transferRepo) GetByID(_ context.Context, id uint64) (*transfer.Transfer, error) {
	t, ok := r.s.Transfers[id]
	if !ok {
		return nil, transfer.ErrNotFound
	}
	return t, nil
}

func (r *transferRepo) GetByIDForUpdate(ctx context.Context, id uint64) (*transfer.Transfer, error) {
	return r.GetByID(ctx, id)
}

func (r *transferRepo) Save(_ context.Context, t *transfer.Transfer) error {
	r.s.Transfers[t.ID] = t
	return nil
}

func (r *transferRepo) List(_ context.Context, limit, offset int) ([]transfer.Transfer, error) {
	var out []transfer.Transfer
	for _, t := range r.s.Transfers {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return page(out, limit, offset), nil
}

func (r *transferRepo) ListByCaisse(_ context.Context, caisseID uint64, limit, offset int) ([]transfer.Transfer, error) {
	var out []transfer.Transfer
	for _, t := range r.s.Transfers {
		if (t.SourceCaisseID != nil && *t.SourceCaisseID == caisseID) ||
			(t.DestCaisseID != nil && *t.DestCaisseID == caisseID) {
			out = append(out, *t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return page(out, limit, offset), nil
}

// ----- contributions -----

type contributionRepo struct{ s *Store }

func (r *contributionRepo) Create(_ context.Context, c *contribution.Contribution) error {
	c.ID = r.s.nextID()
	c.CreatedAt = time.Now().UTC()
	r.s.Contributions[c.ID] = c
	return nil
}

func (r *contributionRepo) ListByMember(_ context.Context, memberID uint64, limit, offset int) ([]contribution.Contribution, error) {
	var out []contribution.Contribution
	for _, c := range r.s.Contributions {
		if c.MemberID == memberID {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return page(out, limit, offset), nil
}

func (r *contributionRepo) ListByCaisse(_ context.Context, caisseID uint64, limit, offset int) ([]contribution.Contribution, error) {
	var out []contribution.Contribution
	for _, c := range r.s.Contributions {
		if c.CaisseID == caisseID {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return page(out, limit, offset), nil
}

func (r *contributionRepo) SumByMember(_ context.Context, memberID uint64) (decimal.Decimal, error) {
	var sum decimal.Decimal
	for _, c := range r.s.Contributions {
		if c.MemberID == memberID {
			sum = sum.Add(c.Amount)
		}
	}
	return sum, nil
}

// ----- notifications -----

type notificationRepo struct{ s *Store }

func (r *notificationRepo) Create(_ context.Context, n *notification.Notification) error {
	n.ID = r.s.nextID()
	n.CreatedAt = time.Now().UTC()
	r.s.Notifications[n.ID] = n
	return nil
}

func (r *notificationRepo) ListByCaisse(_ context.Context, caisseID uint64, limit, offset int) ([]notification.Notification, error) {
	var out []notification.Notification
	for _, n := range r.s.Notifications {
		if n.CaisseID == caisseID {
			out = append(out, *n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return page(out, limit, offset), nil
}

func (r *notificationRepo) MarkRead(_ context.Context, id uint64) error {
	n, ok := r.s.Notifications[id]
	if !ok {
		return notification.ErrNotFound
	}
	n.Read = true
	return nil
}

func (r *notificationRepo) DeleteByLoan(_ context.Context, loanID uint64) error {
	for id, n := range r.s.Notifications {
		if n.LoanID != nil && *n.LoanID == loanID {
			delete(r.s.Notifications, id)
		}
	}
	return nil
}

// ----- audit -----

type auditRepo struct{ s *Store }

func (r *auditRepo) Create(_ context.Context, e *audit.Entry) error {
	e.ID = r.s.nextID()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	r.s.Audits[e.ID] = e
	return nil
}

func (r *auditRepo) ListByEntity(_ context.Context, entity, entityRef string, limit, offset int) ([]audit.Entry, error) {
	var out []audit.Entry
	for _, e := range r.s.Audits {
		if e.Entity == entity && e.EntityRef == entityRef {
			out = append(out, *e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return page(out, limit, offset), nil
}

func (r *auditRepo) DeleteOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	var n int64
	for id, e := range r.s.Audits {
		if e.CreatedAt.Before(cutoff) {
			delete(r.s.Audits, id)
			n++
		}
	}
	return n, nil
}

func page[T any](in []T, limit, offset int) []T {
	if offset >= len(in) {
		return nil
	}
	in = in[offset:]
	if limit > 0 && limit < len(in) {
		in = in[:limit]
	}
	return in
}
