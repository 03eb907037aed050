package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"abcampus-finance/internal/infrastructure/logger"
	"abcampus-finance/internal/usecase/savings"
)

type SavingsHandler struct {
	uc  *savings.Usecase
	log *zap.Logger
}

func NewSavingsHandler(uc *savings.Usecase, log *zap.Logger) *SavingsHandler {
	return &SavingsHandler{uc: uc, log: logger.OrNop(log)}
}

func (h *SavingsHandler) CreatePlan(c echo.Context) error {
	var req savings.CreatePlanInput
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	dto, err := h.uc.CreatePlan(c.Request().Context(), req)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *SavingsHandler) GetPlan(c echo.Context) error {
	dto, err := h.uc.Get(c.Request().Context(), c.Param("plan_id"))
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *SavingsHandler) ListUserPlans(c echo.Context) error {
	list, err := h.uc.ListByUser(c.Request().Context(), userParam(c))
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"plans": list})
}

// Deposit answers 201 for a new deposit and 200 when the reference was
// already recorded.
func (h *SavingsHandler) Deposit(c echo.Context) error {
	var req savings.DepositInput
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	req.PlanID = c.Param("plan_id")
	dto, err := h.uc.Deposit(c.Request().Context(), req)
	if err != nil {
		return fail(c, h.log, err)
	}
	if dto.Duplicate {
		return c.JSON(http.StatusOK, dto)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *SavingsHandler) ListTransactions(c echo.Context) error {
	list, err := h.uc.ListTransactions(c.Request().Context(), c.Param("plan_id"))
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"transactions": list})
}

func (h *SavingsHandler) RecomputeBalance(c echo.Context) error {
	dto, err := h.uc.RecomputeBalance(c.Request().Context(), c.Param("plan_id"))
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusOK, dto)
}
