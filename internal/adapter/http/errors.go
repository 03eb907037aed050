package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"abcampus-finance/internal/adapter/gateway/fedapay"
	"abcampus-finance/internal/adapter/sms/vonage"
	"abcampus-finance/internal/domain/loan"
	"abcampus-finance/internal/domain/notification"
	"abcampus-finance/internal/domain/savings"
	"abcampus-finance/internal/usecase/checkout"
	"abcampus-finance/internal/usecase/otp"
	"abcampus-finance/internal/usecase/reconcile"
	savingsuc "abcampus-finance/internal/usecase/savings"
)

var errStatus = []struct {
	err  error
	code int
}{
	{loan.ErrNotFound, http.StatusNotFound},
	{savings.ErrNotFound, http.StatusNotFound},
	{savings.ErrTransactionAbsent, http.StatusNotFound},
	{notification.ErrNotFound, http.StatusNotFound},

	{loan.ErrInvalidTransition, http.StatusConflict},
	{loan.ErrAlreadyReviewed, http.StatusConflict},
	{loan.ErrOpenLoanExists, http.StatusConflict},
	{loan.ErrNotRepayable, http.StatusConflict},
	{savings.ErrPlanClosed, http.StatusConflict},
	{savings.ErrReferenceInUse, http.StatusConflict},

	{loan.ErrNotOwner, http.StatusForbidden},
	{savingsuc.ErrNotOwner, http.StatusForbidden},

	{loan.ErrOutOfPolicy, http.StatusUnprocessableEntity},
	{loan.ErrInvalidUserID, http.StatusUnprocessableEntity},
	{savings.ErrInvalidPlan, http.StatusUnprocessableEntity},
	{savings.ErrInvalidAmount, http.StatusUnprocessableEntity},
	{checkout.ErrInvalidCheckout, http.StatusUnprocessableEntity},
	{reconcile.ErrInvalidTransaction, http.StatusUnprocessableEntity},
	{fedapay.ErrMalformedEvent, http.StatusUnprocessableEntity},
	{otp.ErrInvalidPhone, http.StatusUnprocessableEntity},

	{fedapay.ErrInvalidSignature, http.StatusUnauthorized},
	{otp.ErrThrottled, http.StatusTooManyRequests},
	{fedapay.ErrUpstream, http.StatusBadGateway},
	{vonage.ErrUpstream, http.StatusBadGateway},
	{otp.ErrSMSDisabled, http.StatusServiceUnavailable},
}

// statusOf maps a domain error to its HTTP status; 500 when unknown.
func statusOf(err error) int {
	for _, m := range errStatus {
		if errors.Is(err, m.err) {
			return m.code
		}
	}
	return http.StatusInternalServerError
}

// fail writes the error body. Unknown errors are logged and hidden.
func fail(c echo.Context, log *zap.Logger, err error) error {
	code := statusOf(err)
	if code == http.StatusInternalServerError {
		log.Error("request failed",
			zap.String("method", c.Request().Method),
			zap.String("path", c.Path()),
			zap.Error(err))
		return c.JSON(code, ErrorResponse{Error: "internal error"})
	}
	if code == http.StatusBadGateway {
		log.Warn("upstream failure", zap.String("path", c.Path()), zap.Error(err))
	}
	return c.JSON(code, ErrorResponse{Error: err.Error()})
}

// bindAndValidate writes the 400/422 response itself and reports whether
// the handler should continue.
func bindAndValidate(c echo.Context, req any) (bool, error) {
	if err := c.Bind(req); err != nil {
		return false, c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(req); err != nil {
		return false, c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	return true, nil
}
