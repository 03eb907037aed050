package vonage

import (
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
)

var ErrUpstream = errors.New("vonage request failed")

type Client struct {
	apiKey    string
	apiSecret string
	from      string
	baseURL   string
	client    *http.Client
	log       *zap.Logger
}

type smsResponse struct {
	MessageCount string `json:"message-count"`
	Messages     []struct {
		To        string `json:"to"`
		MessageID string `json:"message-id"`
		Status    string `json:"status"`
		ErrorText string `json:"error-text"`
	} `json:"messages"`
}

func NewClient(cfg config.VonageConfig, timeout time.Duration, log *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		apiKey:    cfg.APIKey,
		apiSecret: cfg.APISecret,
		from:      cfg.From,
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		client:    &http.Client{Timeout: timeout},
		log:       logger.OrNop(log),
	}
}

// Send delivers one text message and returns the Vonage message id.
func (c *Client) Send(ctx context.Context, to, text string) (string, error) {
	form := url.Values{}
	form.Set("api_key", c.apiKey)
	form.Set("api_secret", c.apiSecret)
	form.Set("from", c.from)
	form.Set("to", normalize(to))
	form.Set("text", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/sms/json", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return "", fmt.Errorf("%w: read response: %v", ErrUpstream, err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d: %s", ErrUpstream, resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var out smsResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", ErrUpstream, err)
	}
	if len(out.Messages) == 0 {
		return "", fmt.Errorf("%w: empty message list", ErrUpstream)
	}
	m := out.Messages[0]
	if m.Status != "0" {
		c.log.Warn("vonage rejected message", zap.String("status", m.Status), zap.String("error", m.ErrorText))
		return "", fmt.Errorf("%w: status %s: %s", ErrUpstream, m.Status, m.ErrorText)
	}
	return m.MessageID, nil
}

// normalize strips the formatting Vonage does not accept in numbers.
func normalize(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
