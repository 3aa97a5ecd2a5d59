package repayment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"caisse-core/internal/domain/caisse"
	"caisse-core/internal/domain/loan"
	"caisse-core/internal/testutil/memuow"
	"caisse-core/internal/usecase/schedule"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

// seedActiveLoan wires a caisse and an already-disbursed loan with its
// schedule in place.
func seedActiveLoan(t *testing.T, store *memuow.Store, principal, ratePct string, term int) *loan.Loan {
	t.Helper()
	ctx := context.Background()
	r := store.Repos()

	c := &caisse.Caisse{
		Code: "FKM01NOVISSI", AssociationName: "Novissi",
		Status: caisse.StatusActive, FundInitial: d("0"), FundAvailable: d("0"),
	}
	if err := r.Caisses.Create(ctx, c); err != nil {
		t.Fatalf("seed caisse: %v", err)
	}

	now := time.Now().UTC()
	l := &loan.Loan{
		Number: "PRT20250300000001", MemberID: 99, CaisseID: c.ID,
		AmountRequested: d(principal), AmountApproved: d(principal),
		InterestRatePct: d(ratePct), TermMonths: term,
		Status: loan.StatusActive, DisbursedAt: &now, InstallmentsTotal: term,
	}
	if err := r.Loans.Create(ctx, l); err != nil {
		t.Fatalf("seed loan: %v", err)
	}

	items := schedule.Generate(schedule.TotalDue(d(principal), d(ratePct)), term, now)
	installments := make([]loan.Installment, 0, len(items))
	for _, it := range items {
		installments = append(installments, loan.Installment{
			LoanID: l.ID, Sequence: it.Sequence, AmountDue: it.Amount,
			DueDate: it.DueDate, Status: loan.InstallmentDue,
		})
	}
	if err := r.Installments.BulkCreate(ctx, installments); err != nil {
		t.Fatalf("seed installments: %v", err)
	}
	return l
}

func TestRepay_SplitsPrincipalAndInterest(t *testing.T) {
	store := memuow.New()
	l := seedActiveLoan(t, store, "100000", "10", 5)
	uc := NewUsecase(store)

	out, mv, _, err := uc.Repay(context.Background(), RepayInput{
		Number: l.Number, Principal: d("20000"), Interest: d("2000"), Actor: "tresoriere",
	})
	if err != nil {
		t.Fatalf("Repay err: %v", err)
	}

	// The ledger takes the full sum, the loan only accumulates principal.
	if !mv.Amount.Equal(d("22000")) {
		t.Fatalf("ledger amount %s, want 22000", mv.Amount)
	}
	if !out.AmountRepaid.Equal(d("20000")) {
		t.Fatalf("amount repaid %s, want 20000", out.AmountRepaid)
	}
	if got := store.Caisses[l.CaisseID].FundAvailable; !got.Equal(d("22000")) {
		t.Fatalf("caisse balance %s, want 22000", got)
	}
	if out.InstallmentsPaid != 1 {
		t.Fatalf("expected 1 settled installment, got %d", out.InstallmentsPaid)
	}
}

func TestRepay_AmountExceedsBalance(t *testing.T) {
	store := memuow.New()
	l := seedActiveLoan(t, store, "100000", "10", 5)
	l.AmountRepaid = d("80000") // remaining = 110000 - 80000 = 30000
	uc := NewUsecase(store)

	_, _, _, err := uc.Repay(context.Background(), RepayInput{
		Number: l.Number, Principal: d("30000"), Interest: d("5000"), Actor: "t",
	})
	if !errors.Is(err, loan.ErrAmountExceedsBalance) {
		t.Fatalf("expected ErrAmountExceedsBalance, got %v", err)
	}
	if n := len(store.Movements); n != 0 {
		t.Fatalf("expected no ledger entry, got %d", n)
	}
}

func TestRepay_FullSettlement(t *testing.T) {
	store := memuow.New()
	l := seedActiveLoan(t, store, "100000", "10", 5)
	uc := NewUsecase(store)

	out, _, evs, err := uc.Repay(context.Background(), RepayInput{
		Number: l.Number, Principal: d("100000"), Interest: d("10000"), Actor: "t",
	})
	if err != nil {
		t.Fatalf("Repay err: %v", err)
	}
	if out.Status != loan.StatusRepaid {
		t.Fatalf("expected REPAID, got %s", out.Status)
	}
	if out.RepaidAt == nil {
		t.Fatal("RepaidAt not set")
	}
	if out.InstallmentsPaid != 5 {
		t.Fatalf("expected all 5 installments settled, got %d", out.InstallmentsPaid)
	}
	if len(evs) < 3 {
		t.Fatalf("expected audit, balance and completion events, got %d", len(evs))
	}
}

func TestRepay_PartialInstallment(t *testing.T) {
	store := memuow.New()
	l := seedActiveLoan(t, store, "100000", "10", 5)
	uc := NewUsecase(store)

	// 22000 per slice; 10000 leaves the first partially paid.
	out, _, _, err := uc.Repay(context.Background(), RepayInput{
		Number: l.Number, Principal: d("10000"), Interest: d("0"), Actor: "t",
	})
	if err != nil {
		t.Fatalf("Repay err: %v", err)
	}
	if out.InstallmentsPaid != 0 {
		t.Fatalf("expected no settled installment, got %d", out.InstallmentsPaid)
	}
	items, _ := store.Repos().Installments.ListByLoan(context.Background(), l.ID)
	if items[0].Status != loan.InstallmentPartiallyPaid || !items[0].AmountPaid.Equal(d("10000")) {
		t.Fatalf("first installment %s paid=%s", items[0].Status, items[0].AmountPaid)
	}
}

func TestRepay_ClosedLoan(t *testing.T) {
	store := memuow.New()
	l := seedActiveLoan(t, store, "100000", "10", 5)
	l.Status = loan.StatusRepaid
	uc := NewUsecase(store)

	_, _, _, err := uc.Repay(context.Background(), RepayInput{
		Number: l.Number, Principal: d("100"), Interest: d("0"), Actor: "t",
	})
	if !errors.Is(err, loan.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestRepay_InvalidAmounts(t *testing.T) {
	store := memuow.New()
	l := seedActiveLoan(t, store, "100000", "10", 5)
	uc := NewUsecase(store)

	cases := []struct{ principal, interest string }{
		{"0", "0"},
		{"-1", "5"},
		{"5", "-1"},
	}
	for _, tc := range cases {
		_, _, _, err := uc.Repay(context.Background(), RepayInput{
			Number: l.Number, Principal: d(tc.principal), Interest: d(tc.interest), Actor: "t",
		})
		if !errors.Is(err, loan.ErrInvalidAmount) {
			t.Fatalf("p=%s i=%s: expected ErrInvalidAmount, got %v", tc.principal, tc.interest, err)
		}
	}
}

func TestRepay_OverdueLoanAccepted(t *testing.T) {
	store := memuow.New()
	l := seedActiveLoan(t, store, "100000", "10", 5)
	l.Status = loan.StatusOverdue
	uc := NewUsecase(store)

	if _, _, _, err := uc.Repay(context.Background(), RepayInput{
		Number: l.Number, Principal: d("22000"), Interest: d("0"), Actor: "t",
	}); err != nil {
		t.Fatalf("Repay err: %v", err)
	}
}
