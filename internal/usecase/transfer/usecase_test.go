package transfer

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"caisse-core/internal/domain/caisse"
	"caisse-core/internal/domain/ledger"
	"caisse-core/internal/domain/reserve"
	"caisse-core/internal/domain/transfer"
	"caisse-core/internal/testutil/memuow"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func seedCaisse(t *testing.T, store *memuow.Store, code, balance string) *caisse.Caisse {
	t.Helper()
	c := &caisse.Caisse{
		Code: code, AssociationName: "Association " + code,
		Status: caisse.StatusActive, FundInitial: d(balance), FundAvailable: d(balance),
	}
	if err := store.Repos().Caisses.Create(context.Background(), c); err != nil {
		t.Fatalf("seed caisse: %v", err)
	}
	return c
}

func seedReserve(t *testing.T, store *memuow.Store, balance string) *reserve.Account {
	t.Helper()
	a, err := store.Repos().Reserve.Get(context.Background())
	if err != nil {
		t.Fatalf("seed reserve: %v", err)
	}
	a.ReserveBalance = d(balance)
	return a
}

func TestExecute_CaisseToCaisse(t *testing.T) {
	ctx := context.Background()
	store := memuow.New()
	a := seedCaisse(t, store, "FKM01AAA", "80000")
	b := seedCaisse(t, store, "FKM02BBB", "20000")
	uc := NewUsecase(store)

	tr, _, err := uc.Create(ctx, CreateInput{
		Kind: transfer.KindCaisseToCaisse, Amount: d("50000"),
		SourceCaisseCode: a.Code, DestCaisseCode: b.Code, Actor: "admin",
	})
	if err != nil {
		t.Fatalf("Create err: %v", err)
	}

	out, _, err := uc.Execute(ctx, tr.ID, "admin")
	if err != nil {
		t.Fatalf("Execute err: %v", err)
	}
	if out.Status != transfer.StatusExecuted || out.ExecutedAt == nil {
		t.Fatalf("unexpected state %s", out.Status)
	}
	if got := store.Caisses[a.ID].FundAvailable; !got.Equal(d("30000")) {
		t.Fatalf("source balance %s, want 30000", got)
	}
	if got := store.Caisses[b.ID].FundAvailable; !got.Equal(d("70000")) {
		t.Fatalf("dest balance %s, want 70000", got)
	}

	// Both sides left an entry, linked from the transfer.
	if out.SourceMovementID == nil || out.DestMovementID == nil {
		t.Fatal("movement links not set")
	}
	src := store.Movements[*out.SourceMovementID]
	dst := store.Movements[*out.DestMovementID]
	if src.Kind != ledger.KindTransferOut || dst.Kind != ledger.KindTransferIn {
		t.Fatalf("unexpected kinds %s / %s", src.Kind, dst.Kind)
	}
}

func TestExecute_InsufficientSourceRollsBack(t *testing.T) {
	ctx := context.Background()
	store := memuow.New()
	a := seedCaisse(t, store, "FKM01AAA", "100")
	b := seedCaisse(t, store, "FKM02BBB", "0")
	uc := NewUsecase(store)

	tr, _, err := uc.Create(ctx, CreateInput{
		Kind: transfer.KindCaisseToCaisse, Amount: d("100.01"),
		SourceCaisseCode: a.Code, DestCaisseCode: b.Code, Actor: "admin",
	})
	if err != nil {
		t.Fatalf("Create err: %v", err)
	}

	_, _, err = uc.Execute(ctx, tr.ID, "admin")
	if !errors.Is(err, ledger.ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}
	if n := len(store.Movements); n != 0 {
		t.Fatalf("no entry may survive a failed execution, got %d", n)
	}
	if store.Transfers[tr.ID].Status != transfer.StatusPending {
		t.Fatalf("transfer must stay PENDING, got %s", store.Transfers[tr.ID].Status)
	}
}

func TestCancel_RestoresBalances(t *testing.T) {
	ctx := context.Background()
	store := memuow.New()
	a := seedCaisse(t, store, "FKM01AAA", "80000")
	b := seedCaisse(t, store, "FKM02BBB", "20000")
	uc := NewUsecase(store)

	tr, _, _ := uc.Create(ctx, CreateInput{
		Kind: transfer.KindCaisseToCaisse, Amount: d("50000"),
		SourceCaisseCode: a.Code, DestCaisseCode: b.Code, Actor: "admin",
	})
	if _, _, err := uc.Execute(ctx, tr.ID, "admin"); err != nil {
		t.Fatalf("Execute err: %v", err)
	}

	out, _, err := uc.Cancel(ctx, tr.ID, "admin")
	if err != nil {
		t.Fatalf("Cancel err: %v", err)
	}
	if out.Status != transfer.StatusCancelled || out.CancelledAt == nil {
		t.Fatalf("unexpected state %s", out.Status)
	}
	if got := store.Caisses[a.ID].FundAvailable; !got.Equal(d("80000")) {
		t.Fatalf("source balance %s, want 80000", got)
	}
	if got := store.Caisses[b.ID].FundAvailable; !got.Equal(d("20000")) {
		t.Fatalf("dest balance %s, want 20000", got)
	}
	// Four entries total: the original pair plus the inverse pair.
	if n := len(store.Movements); n != 4 {
		t.Fatalf("expected 4 ledger entries, got %d", n)
	}
	// Every entry names the other caisse as its counterparty, including the
	// inverse pair where the flow direction is swapped.
	for _, mv := range store.Movements {
		if mv.CounterpartyCaisseID == nil {
			t.Fatalf("entry %d has no counterparty", mv.ID)
		}
		want := a.ID
		if mv.CaisseID == a.ID {
			want = b.ID
		}
		if *mv.CounterpartyCaisseID != want {
			t.Fatalf("entry %d on caisse %d: counterparty %d, want %d",
				mv.ID, mv.CaisseID, *mv.CounterpartyCaisseID, want)
		}
	}
}

func TestCancel_OnlyExecuted(t *testing.T) {
	ctx := context.Background()
	store := memuow.New()
	a := seedCaisse(t, store, "FKM01AAA", "1000")
	b := seedCaisse(t, store, "FKM02BBB", "0")
	uc := NewUsecase(store)

	tr, _, _ := uc.Create(ctx, CreateInput{
		Kind: transfer.KindCaisseToCaisse, Amount: d("10"),
		SourceCaisseCode: a.Code, DestCaisseCode: b.Code, Actor: "admin",
	})
	if _, _, err := uc.Cancel(ctx, tr.ID, "admin"); !errors.Is(err, transfer.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestExecute_CaisseToReserve(t *testing.T) {
	ctx := context.Background()
	store := memuow.New()
	a := seedCaisse(t, store, "FKM01AAA", "5000")
	seedReserve(t, store, "1000")
	uc := NewUsecase(store)

	tr, _, _ := uc.Create(ctx, CreateInput{
		Kind: transfer.KindCaisseToReserve, Amount: d("2000"),
		SourceCaisseCode: a.Code, Actor: "admin",
	})
	if _, _, err := uc.Execute(ctx, tr.ID, "admin"); err != nil {
		t.Fatalf("Execute err: %v", err)
	}
	if got := store.Caisses[a.ID].FundAvailable; !got.Equal(d("3000")) {
		t.Fatalf("caisse balance %s, want 3000", got)
	}
	if got := store.ReserveAcct.ReserveBalance; !got.Equal(d("3000")) {
		t.Fatalf("reserve balance %s, want 3000", got)
	}
}

func TestExecute_ReserveToCaisse(t *testing.T) {
	ctx := context.Background()
	store := memuow.New()
	a := seedCaisse(t, store, "FKM01AAA", "0")
	seedReserve(t, store, "10000")
	uc := NewUsecase(store)

	tr, _, _ := uc.Create(ctx, CreateInput{
		Kind: transfer.KindReserveToCaisse, Amount: d("4000"),
		DestCaisseCode: a.Code, Actor: "admin",
	})
	if _, _, err := uc.Execute(ctx, tr.ID, "admin"); err != nil {
		t.Fatalf("Execute err: %v", err)
	}
	if got := store.ReserveAcct.ReserveBalance; !got.Equal(d("6000")) {
		t.Fatalf("reserve balance %s, want 6000", got)
	}
	if got := store.Caisses[a.ID].FundAvailable; !got.Equal(d("4000")) {
		t.Fatalf("caisse balance %s, want 4000", got)
	}
}

func TestExecute_ReserveToCaisse_InsufficientReserve(t *testing.T) {
	ctx := context.Background()
	store := memuow.New()
	a := seedCaisse(t, store, "FKM01AAA", "0")
	seedReserve(t, store, "100")
	uc := NewUsecase(store)

	tr, _, _ := uc.Create(ctx, CreateInput{
		Kind: transfer.KindReserveToCaisse, Amount: d("500"),
		DestCaisseCode: a.Code, Actor: "admin",
	})
	_, _, err := uc.Execute(ctx, tr.ID, "admin")
	if !errors.Is(err, reserve.ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}
	if got := store.Caisses[a.ID].FundAvailable; !got.Equal(d("0")) {
		t.Fatalf("caisse balance must stay 0, got %s", got)
	}
}

func TestCreate_ValidatesEndpoints(t *testing.T) {
	ctx := context.Background()
	store := memuow.New()
	a := seedCaisse(t, store, "FKM01AAA", "100")
	uc := NewUsecase(store)

	cases := []CreateInput{
		{Kind: transfer.KindCaisseToCaisse, Amount: d("10"), SourceCaisseCode: a.Code, DestCaisseCode: a.Code, Actor: "x"},
		{Kind: transfer.KindCaisseToCaisse, Amount: d("10"), SourceCaisseCode: a.Code, Actor: "x"},
		{Kind: transfer.KindCaisseToReserve, Amount: d("10"), Actor: "x"},
		{Kind: transfer.KindReserveToCaisse, Amount: d("10"), Actor: "x"},
	}
	for i, in := range cases {
		if _, _, err := uc.Create(ctx, in); !errors.Is(err, transfer.ErrInvalidEndpoints) {
			t.Fatalf("case %d: expected ErrInvalidEndpoints, got %v", i, err)
		}
	}
}
