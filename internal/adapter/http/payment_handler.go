package http

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"abcampus-finance/internal/adapter/gateway/fedapay"
	"abcampus-finance/internal/infrastructure/logger"
	"abcampus-finance/internal/usecase/checkout"
	"abcampus-finance/internal/usecase/reconcile"
)

const maxWebhookBody = 1 << 20

// TransactionFetcher reads a transaction back from FedaPay.
type TransactionFetcher interface {
	GetTransaction(ctx context.Context, id string) (*fedapay.Transaction, error)
}

// PaymentHandler serves the FedaPay checkout, webhook and verify routes.
type PaymentHandler struct {
	checkout      *checkout.Usecase
	reconcile     *reconcile.Usecase
	fetcher       TransactionFetcher
	webhookSecret string
	log           *zap.Logger
	now           func() time.Time
}

func NewPaymentHandler(co *checkout.Usecase, rc *reconcile.Usecase, f TransactionFetcher, webhookSecret string, log *zap.Logger) *PaymentHandler {
	return &PaymentHandler{
		checkout:      co,
		reconcile:     rc,
		fetcher:       f,
		webhookSecret: webhookSecret,
		log:           logger.OrNop(log),
		now:           time.Now,
	}
}

func (h *PaymentHandler) CreateTransaction(c echo.Context) error {
	var req checkout.CreateInput
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	dto, err := h.checkout.Create(c.Request().Context(), req)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusOK, dto)
}

// Webhook verifies the signature over the raw body before anything is
// decoded or written.
func (h *PaymentHandler) Webhook(c echo.Context) error {
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxWebhookBody))
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	sig := c.Request().Header.Get(fedapay.SignatureHeader)
	if err := fedapay.VerifySignature(h.webhookSecret, sig, body, h.now()); err != nil {
		h.log.Warn("webhook signature rejected", zap.String("remote_ip", c.RealIP()))
		return fail(c, h.log, err)
	}

	ev, err := fedapay.ParseEvent(body)
	if err != nil {
		return fail(c, h.log, err)
	}
	h.log.Info("webhook received",
		zap.String("event", ev.Name),
		zap.String("transaction_id", ev.Entity.ID.String()),
		zap.String("status", ev.Entity.Status))

	res, err := h.reconcile.Apply(c.Request().Context(), toReconcile(&ev.Entity))
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusOK, res)
}

// Verify is the client poll callback: the transaction is fetched from
// FedaPay, never taken from the caller.
func (h *PaymentHandler) Verify(c echo.Context) error {
	id := strings.TrimSpace(c.Param("transaction_id"))
	if id == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing transaction id"})
	}
	t, err := h.fetcher.GetTransaction(c.Request().Context(), id)
	if err != nil {
		return fail(c, h.log, err)
	}
	res, err := h.reconcile.Apply(c.Request().Context(), toReconcile(t))
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusOK, res)
}

func toReconcile(t *fedapay.Transaction) reconcile.Transaction {
	refs := t.References()
	return reconcile.Transaction{
		ExternalID: t.ID.String(),
		Status:     t.Status,
		Amount:     t.Amount,
		LoanID:     refs.LoanID,
		PlanID:     refs.PlanID,
		UserID:     strings.ToLower(refs.UserID),
		PaidAt:     t.SettledAt(),
	}
}
