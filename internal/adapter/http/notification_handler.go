package http

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"abcampus-finance/internal/infrastructure/logger"
	"abcampus-finance/internal/usecase/notification"
)

type NotificationHandler struct {
	uc  *notification.Usecase
	log *zap.Logger
}

func NewNotificationHandler(uc *notification.Usecase, log *zap.Logger) *NotificationHandler {
	return &NotificationHandler{uc: uc, log: logger.OrNop(log)}
}

type markReadReq struct {
	UserID string `json:"user_id" validate:"required,uuid"`
}

func (h *NotificationHandler) ListUserNotifications(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	list, err := h.uc.List(c.Request().Context(), userParam(c), limit)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"notifications": list})
}

func (h *NotificationHandler) MarkRead(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid notification id"})
	}
	var req markReadReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	if err := h.uc.MarkRead(c.Request().Context(), id, strings.ToLower(req.UserID)); err != nil {
		return fail(c, h.log, err)
	}
	return c.NoContent(http.StatusNoContent)
}
