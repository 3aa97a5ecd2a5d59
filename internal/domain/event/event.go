package event

import (
	"github.com/shopspring/decimal"

	"caisse-core/internal/domain/notification"
)

// Event is something a usecase wants acted upon after its transaction
// commits. Usecases return events instead of firing side effects mid
// transaction; the dispatcher runs them once the commit succeeds.
type Event interface {
	Name() string
}

// Audit asks for an audit entry to be recorded.
type Audit struct {
	Action    string
	Entity    string
	EntityRef string
	Actor     string
	Detail    string
}

func (Audit) Name() string { return "audit" }

// Notice asks for a caisse notification to be persisted.
type Notice struct {
	CaisseID uint64
	LoanID   *uint64
	Kind     notification.Kind
	Message  string
}

func (Notice) Name() string { return "notice" }

// BalanceChanged reports a caisse balance mutation, mostly for logging.
type BalanceChanged struct {
	CaisseID uint64
	Kind     string
	Amount   decimal.Decimal
	After    decimal.Decimal
}

func (BalanceChanged) Name() string { return "balance_changed" }
