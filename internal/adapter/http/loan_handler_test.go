package http

import (
	"bytes"
	"context"
	"encoding/json"
	stdhttp "net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"caisse-core/internal/domain/caisse"
	"caisse-core/internal/domain/contribution"
	"caisse-core/internal/domain/member"
	"caisse-core/internal/testutil/memuow"
	loanuc "caisse-core/internal/usecase/loan"
	repayuc "caisse-core/internal/usecase/repayment"
)

func newEchoWithValidator() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

func mustJSON(v any) *bytes.Reader {
	b, _ := json.Marshal(v)
	return bytes.NewReader(b)
}

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

// seedCaisse creates one caisse with an active, eligible member.
func seedCaisse(t *testing.T, store *memuow.Store, fund, contributed string) (*caisse.Caisse, *member.Member) {
	t.Helper()
	ctx := context.Background()
	r := store.Repos()

	c := &caisse.Caisse{
		Code: "FKM01NOVISSI", AssociationName: "Novissi",
		Status: caisse.StatusActive, FundInitial: d(fund), FundAvailable: d(fund),
	}
	require.NoError(t, r.Caisses.Create(ctx, c))
	m := &member.Member{
		CaisseID: c.ID, FullName: "Afi Mensah", IdentityNumber: "ID-0001",
		Role: member.RoleOrdinary, Status: member.StatusActive,
	}
	require.NoError(t, r.Members.Create(ctx, m))
	if d(contributed).IsPositive() {
		ct := &contribution.Contribution{CaisseID: c.ID, MemberID: m.ID, Amount: d(contributed)}
		require.NoError(t, r.Contributions.Create(ctx, ct))
	}
	return c, m
}

func newLoanHandler(store *memuow.Store) *LoanHandler {
	return NewLoanHandler(loanuc.NewUsecase(store), repayuc.NewUsecase(store), nil)
}

func TestSubmitLoan_Created(t *testing.T) {
	e := newEchoWithValidator()
	store := memuow.New()
	c, m := seedCaisse(t, store, "100000", "60000")
	h := newLoanHandler(store)

	body := map[string]any{
		"caisse_code":       c.Code,
		"member_id":         m.ID,
		"amount_requested":  "50000",
		"interest_rate_pct": "10",
		"term_months":       5,
	}
	req := httptest.NewRequest(stdhttp.MethodPost, "/loans", mustJSON(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set("Cx-Actor", "presidente")
	rec := httptest.NewRecorder()
	ctx := e.NewContext(req, rec)

	require.NoError(t, h.Submit(ctx))
	require.Equal(t, stdhttp.StatusCreated, rec.Code)

	var got map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Equal(t, "SUBMITTED", got["status"])
	require.Regexp(t, `^PRT\d{6}[A-F0-9]{8}$`, got["number"])
}

func TestSubmitLoan_EligibilityMapsTo422(t *testing.T) {
	e := newEchoWithValidator()
	store := memuow.New()
	c, m := seedCaisse(t, store, "100000", "100")
	h := newLoanHandler(store)

	body := map[string]any{
		"caisse_code":       c.Code,
		"member_id":         m.ID,
		"amount_requested":  "50000",
		"interest_rate_pct": "10",
		"term_months":       5,
		"actor":             "presidente",
	}
	req := httptest.NewRequest(stdhttp.MethodPost, "/loans", mustJSON(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	ctx := e.NewContext(req, rec)

	require.NoError(t, h.Submit(ctx))
	require.Equal(t, stdhttp.StatusUnprocessableEntity, rec.Code)
}

func TestSubmitLoan_MissingTermFailsValidation(t *testing.T) {
	e := newEchoWithValidator()
	store := memuow.New()
	c, m := seedCaisse(t, store, "100000", "60000")
	h := newLoanHandler(store)

	body := map[string]any{
		"caisse_code":      c.Code,
		"member_id":        m.ID,
		"amount_requested": "50000",
		"actor":            "presidente",
	}
	req := httptest.NewRequest(stdhttp.MethodPost, "/loans", mustJSON(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	ctx := e.NewContext(req, rec)

	require.NoError(t, h.Submit(ctx))
	require.Equal(t, stdhttp.StatusUnprocessableEntity, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "validation failed", resp.Error)
}

func TestGetLoan_UnknownMapsTo404(t *testing.T) {
	e := newEchoWithValidator()
	h := newLoanHandler(memuow.New())

	req := httptest.NewRequest(stdhttp.MethodGet, "/loans/PRT202601DEADBEEF", nil)
	rec := httptest.NewRecorder()
	ctx := e.NewContext(req, rec)
	ctx.SetParamNames("number")
	ctx.SetParamValues("PRT202601DEADBEEF")

	require.NoError(t, h.Get(ctx))
	require.Equal(t, stdhttp.StatusNotFound, rec.Code)
}

func TestApproveLoan_WrongStateMapsTo409(t *testing.T) {
	e := newEchoWithValidator()
	store := memuow.New()
	c, m := seedCaisse(t, store, "100000", "60000")
	h := newLoanHandler(store)

	l, _, err := loanuc.NewUsecase(store).Submit(context.Background(), loanuc.SubmitInput{
		CaisseCode: c.Code, MemberID: m.ID,
		AmountRequested: d("50000"), InterestRatePct: d("10"), TermMonths: 5,
		Actor: "presidente",
	})
	require.NoError(t, err)

	// Still SUBMITTED, approval needs the review stage first.
	req := httptest.NewRequest(stdhttp.MethodPost, "/loans/"+l.Number+"/approve", mustJSON(map[string]any{"actor": "admin"}))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	ctx := e.NewContext(req, rec)
	ctx.SetParamNames("number")
	ctx.SetParamValues(l.Number)

	require.NoError(t, h.Approve(ctx))
	require.Equal(t, stdhttp.StatusConflict, rec.Code)
}

func TestRepay_ClosedLoanMapsTo409(t *testing.T) {
	e := newEchoWithValidator()
	store := memuow.New()
	c, m := seedCaisse(t, store, "100000", "60000")
	h := newLoanHandler(store)

	l, _, err := loanuc.NewUsecase(store).Submit(context.Background(), loanuc.SubmitInput{
		CaisseCode: c.Code, MemberID: m.ID,
		AmountRequested: d("50000"), InterestRatePct: d("10"), TermMonths: 5,
		Actor: "presidente",
	})
	require.NoError(t, err)

	body := map[string]any{"principal": "1000", "interest": "100", "actor": "tresoriere"}
	req := httptest.NewRequest(stdhttp.MethodPost, "/loans/"+l.Number+"/repayments", mustJSON(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	ctx := e.NewContext(req, rec)
	ctx.SetParamNames("number")
	ctx.SetParamValues(l.Number)

	require.NoError(t, h.Repay(ctx))
	require.Equal(t, stdhttp.StatusConflict, rec.Code)
}
