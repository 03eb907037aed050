package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"abcampus-finance/internal/infrastructure/logger"
	"abcampus-finance/internal/usecase/otp"
)

type SMSHandler struct {
	uc  *otp.Usecase
	log *zap.Logger
}

func NewSMSHandler(uc *otp.Usecase, log *zap.Logger) *SMSHandler {
	return &SMSHandler{uc: uc, log: logger.OrNop(log)}
}

func (h *SMSHandler) SendOTP(c echo.Context) error {
	var req otp.SendOTPInput
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	res, err := h.uc.SendOTP(c.Request().Context(), req)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusOK, res)
}
