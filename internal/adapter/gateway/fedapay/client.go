package fedapay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"abcampus-finance/internal/config"
	"abcampus-finance/internal/infrastructure/logger"
	"abcampus-finance/internal/usecase/checkout"
)

// ErrUpstream wraps every failure talking to FedaPay.
var ErrUpstream = errors.New("fedapay request failed")

const maxBody = 1 << 20

var _ checkout.Gateway = (*Client)(nil)

type Client struct {
	secretKey   string
	baseURL     string
	currency    string
	country     string
	callbackURL string
	client      *http.Client
	log         *zap.Logger
}

func NewClient(cfg config.FedaPayConfig, timeout time.Duration, log *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		secretKey:   cfg.SecretKey,
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		currency:    cfg.Currency,
		country:     cfg.Country,
		callbackURL: cfg.CallbackURL,
		client:      &http.Client{Timeout: timeout},
		log:         logger.OrNop(log),
	}
}

// StartCheckout creates the transaction then its hosted payment token.
func (c *Client) StartCheckout(ctx context.Context, o checkout.Order) (*checkout.Session, error) {
	req := createTransactionRequest{
		Description:    o.Description,
		Amount:         o.Amount.Round(0).IntPart(),
		Currency:       currency{Iso: c.currency},
		CallbackURL:    c.callbackURL,
		Customer:       c.customer(o.Customer),
		CustomMetadata: o.Metadata,
	}

	var created transactionEnvelope
	if err := c.do(ctx, http.MethodPost, "/v1/transactions", req, &created); err != nil {
		return nil, err
	}
	txID := created.Transaction.ID.String()
	if txID == "" {
		return nil, fmt.Errorf("%w: transaction id missing from response", ErrUpstream)
	}

	var tok tokenResponse
	if err := c.do(ctx, http.MethodPost, "/v1/transactions/"+url.PathEscape(txID)+"/token", struct{}{}, &tok); err != nil {
		return nil, err
	}
	if tok.URL == "" {
		return nil, fmt.Errorf("%w: checkout url missing from response", ErrUpstream)
	}

	c.log.Debug("fedapay checkout opened", zap.String("transaction_id", txID))
	return &checkout.Session{TransactionID: txID, Token: tok.Token, URL: tok.URL}, nil
}

func (c *Client) GetTransaction(ctx context.Context, id string) (*Transaction, error) {
	var out transactionEnvelope
	if err := c.do(ctx, http.MethodGet, "/v1/transactions/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out.Transaction, nil
}

func (c *Client) customer(in checkout.Customer) *customer {
	if in == (checkout.Customer{}) {
		return nil
	}
	out := &customer{Firstname: in.FirstName, Lastname: in.LastName, Email: in.Email}
	if in.Phone != "" {
		out.PhoneNumber = &phoneNumber{Number: in.Phone, Country: c.country}
	}
	return out
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return fmt.Errorf("%w: read response: %v", ErrUpstream, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr apiError
		msg := strings.TrimSpace(string(raw))
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Message != "" {
			msg = apiErr.Message
		}
		c.log.Warn("fedapay error response",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("message", msg))
		return fmt.Errorf("%w: status %d: %s", ErrUpstream, resp.StatusCode, msg)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: decode response: %v", ErrUpstream, err)
	}
	return nil
}
