package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"abcampus-finance/internal/adapter/middleware"
	"abcampus-finance/internal/infrastructure/logger"
	"abcampus-finance/internal/usecase/review"
)

// ReviewHandler serves the admin approve/reject actions.
type ReviewHandler struct {
	uc  *review.Usecase
	log *zap.Logger
}

func NewReviewHandler(uc *review.Usecase, log *zap.Logger) *ReviewHandler {
	return &ReviewHandler{uc: uc, log: logger.OrNop(log)}
}

func (h *ReviewHandler) ApproveLoan(c echo.Context) error {
	in, ok, err := h.input(c)
	if !ok {
		return err
	}
	dto, err := h.uc.Approve(c.Request().Context(), in)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *ReviewHandler) RejectLoan(c echo.Context) error {
	in, ok, err := h.input(c)
	if !ok {
		return err
	}
	dto, err := h.uc.Reject(c.Request().Context(), in)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusOK, dto)
}

// input accepts an empty body; the reason is optional.
func (h *ReviewHandler) input(c echo.Context) (review.ReviewInput, bool, error) {
	var in review.ReviewInput
	if ok, err := bindAndValidate(c, &in); !ok {
		return in, false, err
	}
	in.LoanID = c.Param("loan_id")
	in.ReviewerID = middleware.Subject(c)
	return in, true, nil
}
