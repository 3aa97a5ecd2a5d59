package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"caisse-core/internal/domain/caisse"
	"caisse-core/internal/domain/contribution"
	"caisse-core/internal/domain/ledger"
	"caisse-core/internal/domain/loan"
	"caisse-core/internal/domain/member"
	"caisse-core/internal/domain/notification"
	"caisse-core/internal/domain/reserve"
	"caisse-core/internal/domain/transfer"
)

// statusOf maps domain errors to HTTP status codes. Unknown errors become
// 500 without leaking their text.
func statusOf(err error) int {
	switch {
	case errors.Is(err, caisse.ErrNotFound),
		errors.Is(err, member.ErrNotFound),
		errors.Is(err, loan.ErrNotFound),
		errors.Is(err, transfer.ErrNotFound),
		errors.Is(err, contribution.ErrNotFound),
		errors.Is(err, notification.ErrNotFound),
		errors.Is(err, ledger.ErrNotFound):
		return http.StatusNotFound

	case errors.Is(err, caisse.ErrUniquenessViolation),
		errors.Is(err, member.ErrUniquenessViolation),
		errors.Is(err, loan.ErrUniquenessViolation),
		errors.Is(err, loan.ErrOpenLoanExists),
		errors.Is(err, loan.ErrInvalidTransition),
		errors.Is(err, transfer.ErrInvalidTransition),
		errors.Is(err, caisse.ErrHasDependents):
		return http.StatusConflict

	case errors.Is(err, ledger.ErrInvalidAmount),
		errors.Is(err, loan.ErrInvalidAmount),
		errors.Is(err, reserve.ErrInvalidAmount),
		errors.Is(err, contribution.ErrInvalidAmount),
		errors.Is(err, transfer.ErrInvalidEndpoints):
		return http.StatusBadRequest

	case errors.Is(err, ledger.ErrInsufficientFunds),
		errors.Is(err, reserve.ErrInsufficientFunds),
		errors.Is(err, loan.ErrAmountExceedsBalance),
		errors.Is(err, loan.ErrCapExceeded),
		errors.Is(err, loan.ErrEligibilityDenied),
		errors.Is(err, member.ErrActiveCapReached):
		return http.StatusUnprocessableEntity

	default:
		return http.StatusInternalServerError
	}
}

func writeErr(c echo.Context, err error) error {
	code := statusOf(err)
	if code == http.StatusInternalServerError {
		return c.JSON(code, ErrorResponse{Error: "internal error"})
	}
	return c.JSON(code, ErrorResponse{Error: err.Error()})
}
