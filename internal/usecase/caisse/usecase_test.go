package caisse

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"caisse-core/internal/domain/caisse"
	"caisse-core/internal/domain/ledger"
	"caisse-core/internal/domain/member"
	"caisse-core/internal/testutil/memuow"
	"caisse-core/internal/usecase/fundledger"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func TestCreate_GeneratesCode(t *testing.T) {
	store := memuow.New()
	uc := NewUsecase(store)

	c, _, err := uc.Create(context.Background(), CreateInput{
		AssociationName: "Femme Novissi", FundInitial: d("5000"), Actor: "admin",
	})
	if err != nil {
		t.Fatalf("Create err: %v", err)
	}
	if c.Code != "FKM01FEMMENOVISSI" {
		t.Fatalf("unexpected code %q", c.Code)
	}
	if !c.FundAvailable.Equal(d("5000")) {
		t.Fatalf("fund available %s, want 5000", c.FundAvailable)
	}

	// The initial fund seeds the balance without a ledger entry; movements
	// only record post-registration activity.
	mvs, err := store.Repos().Movements.ListByCaisse(context.Background(), c.ID, 10, 0)
	if err != nil {
		t.Fatalf("ListByCaisse err: %v", err)
	}
	if len(mvs) != 0 {
		t.Fatalf("expected no seed entry, got %+v", mvs)
	}

	// Registration order feeds the next code.
	c2, _, err := uc.Create(context.Background(), CreateInput{
		AssociationName: "Espoir", Actor: "admin",
	})
	if err != nil {
		t.Fatalf("Create err: %v", err)
	}
	if c2.Code != "FKM02ESPOIR" {
		t.Fatalf("unexpected code %q", c2.Code)
	}
}

func TestCreate_DuplicateName(t *testing.T) {
	store := memuow.New()
	uc := NewUsecase(store)
	ctx := context.Background()

	if _, _, err := uc.Create(ctx, CreateInput{AssociationName: "Novissi", Actor: "a"}); err != nil {
		t.Fatalf("Create err: %v", err)
	}
	_, _, err := uc.Create(ctx, CreateInput{AssociationName: "Novissi", Actor: "a"})
	if !errors.Is(err, caisse.ErrUniquenessViolation) {
		t.Fatalf("expected ErrUniquenessViolation, got %v", err)
	}
}

func TestCreate_InitialFundBalanceEquation(t *testing.T) {
	store := memuow.New()
	uc := NewUsecase(store)
	ctx := context.Background()

	c, _, err := uc.Create(ctx, CreateInput{
		AssociationName: "Novissi", FundInitial: d("5000"), Actor: "admin",
	})
	if err != nil {
		t.Fatalf("Create err: %v", err)
	}

	if _, _, err := fundledger.NewUsecase(store).Deposit(ctx, c.Code, d("1000"), "admin", "dotation"); err != nil {
		t.Fatalf("Deposit err: %v", err)
	}

	got, err := uc.Get(ctx, c.Code)
	if err != nil {
		t.Fatalf("Get err: %v", err)
	}
	mvs, err := store.Repos().Movements.ListByCaisse(ctx, c.ID, 10, 0)
	if err != nil {
		t.Fatalf("ListByCaisse err: %v", err)
	}
	net := decimal.Zero
	for _, m := range mvs {
		if m.Kind.Credits() {
			net = net.Add(m.Amount)
		} else {
			net = net.Sub(m.Amount)
		}
	}
	if !got.FundAvailable.Equal(got.FundInitial.Add(net)) {
		t.Fatalf("available %s != initial %s + net %s", got.FundAvailable, got.FundInitial, net)
	}
	if !got.FundAvailable.Equal(d("6000")) {
		t.Fatalf("available %s, want 6000", got.FundAvailable)
	}
}

func TestCreate_NegativeInitialFund(t *testing.T) {
	uc := NewUsecase(memuow.New())

	_, _, err := uc.Create(context.Background(), CreateInput{
		AssociationName: "Novissi", FundInitial: d("-1"), Actor: "a",
	})
	if !errors.Is(err, ledger.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestDelete_GuardsDependents(t *testing.T) {
	store := memuow.New()
	uc := NewUsecase(store)
	ctx := context.Background()

	c, _, err := uc.Create(ctx, CreateInput{AssociationName: "Novissi", Actor: "a"})
	if err != nil {
		t.Fatalf("Create err: %v", err)
	}
	m := &member.Member{CaisseID: c.ID, FullName: "Afi", IdentityNumber: "ID-1", Role: member.RoleOrdinary, Status: member.StatusActive}
	if err := store.Repos().Members.Create(ctx, m); err != nil {
		t.Fatalf("seed member: %v", err)
	}

	if _, err := uc.Delete(ctx, c.Code, "a"); !errors.Is(err, caisse.ErrHasDependents) {
		t.Fatalf("expected ErrHasDependents, got %v", err)
	}

	// Without dependents the caisse goes away.
	m.Status = member.StatusRetired
	delete(store.Members, m.ID)
	if _, err := uc.Delete(ctx, c.Code, "a"); err != nil {
		t.Fatalf("Delete err: %v", err)
	}
	if _, err := uc.Get(ctx, c.Code); !errors.Is(err, caisse.ErrNotFound) {
		t.Fatalf("caisse should be gone, got %v", err)
	}
}
