package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"abcampus-finance/internal/infrastructure/logger"
	"abcampus-finance/internal/usecase/loan"
)

type LoanHandler struct {
	uc  *loan.Usecase
	log *zap.Logger
}

func NewLoanHandler(uc *loan.Usecase, log *zap.Logger) *LoanHandler {
	return &LoanHandler{uc: uc, log: logger.OrNop(log)}
}

func (h *LoanHandler) SubmitLoan(c echo.Context) error {
	var req loan.SubmitLoanInput
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	dto, err := h.uc.Submit(c.Request().Context(), req)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *LoanHandler) GetLoan(c echo.Context) error {
	dto, err := h.uc.Get(c.Request().Context(), c.Param("loan_id"))
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *LoanHandler) ListUserLoans(c echo.Context) error {
	list, err := h.uc.ListByUser(c.Request().Context(), userParam(c))
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"loans": list})
}

func (h *LoanHandler) Eligibility(c echo.Context) error {
	dto, err := h.uc.CanRequestNewLoan(c.Request().Context(), userParam(c))
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *LoanHandler) ListPayments(c echo.Context) error {
	list, err := h.uc.ListPayments(c.Request().Context(), c.Param("loan_id"))
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"payments": list})
}

func (h *LoanHandler) MarkOverdue(c echo.Context) error {
	ids, err := h.uc.MarkOverdue(c.Request().Context())
	if err != nil {
		return fail(c, h.log, err)
	}
	if ids == nil {
		ids = []string{}
	}
	return c.JSON(http.StatusOK, map[string]any{"loan_ids": ids, "count": len(ids)})
}
