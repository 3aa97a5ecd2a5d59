package schedule

import (
	"time"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Item is one planned installment.
type Item struct {
	Sequence int
	Amount   decimal.Decimal
	DueDate  time.Time
}

// TotalDue is the flat-interest total for a loan: principal plus
// principal * rate / 100, rounded to the cent.
func TotalDue(principal, ratePct decimal.Decimal) decimal.Decimal {
	return principal.Add(principal.Mul(ratePct).Div(hundred)).Round(2)
}

// Generate splits totalDue into n installments. Every installment carries the
// rounded even share; the last one absorbs the rounding remainder so the
// schedule sums exactly to totalDue.
//
// The first due date falls one calendar month after disbursement, clamped to
// the last day of the target month when needed. Each later due date is a
// fixed 30 days after the previous one, so schedules drift relative to
// calendar months over long terms.
func Generate(totalDue decimal.Decimal, n int, disbursedAt time.Time) []Item {
	if n <= 0 {
		return nil
	}

	base := totalDue.Div(decimal.NewFromInt(int64(n))).Round(2)
	items := make([]Item, 0, n)

	due := addMonths(disbursedAt, 1)
	var allocated decimal.Decimal
	for seq := 1; seq <= n; seq++ {
		amount := base
		if seq == n {
			amount = totalDue.Sub(allocated)
		}
		allocated = allocated.Add(amount)
		items = append(items, Item{Sequence: seq, Amount: amount, DueDate: due})
		due = due.AddDate(0, 0, 30)
	}
	return items
}

// addMonths advances t by months, clamping the day to the end of the target
// month (Jan 31 + 1 month = Feb 28/29) instead of letting time.AddDate roll
// over into the next month.
func addMonths(t time.Time, months int) time.Time {
	y, m, d := t.Date()
	firstOfTarget := time.Date(y, m+time.Month(months), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	lastDay := firstOfTarget.AddDate(0, 1, -1).Day()
	if d > lastDay {
		d = lastDay
	}
	return time.Date(firstOfTarget.Year(), firstOfTarget.Month(), d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}
