package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
)

type Handler struct{}

func NewHandler() *Handler { return &Handler{} }

func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339Nano),
	})
}

// userParam reads :user_id; stored ids are lower-case UUIDs.
func userParam(c echo.Context) string {
	return strings.ToLower(strings.TrimSpace(c.Param("user_id")))
}
