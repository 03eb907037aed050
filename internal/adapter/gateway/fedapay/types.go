package fedapay

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ExternalID accepts the numeric ids FedaPay sends as well as strings.
type ExternalID string

func (e *ExternalID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*e = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*e = ExternalID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*e = ExternalID(n.String())
	return nil
}

func (e ExternalID) String() string { return string(e) }

type Metadata struct {
	LoanID string `json:"loan_id"`
	UserID string `json:"user_id"`
	PlanID string `json:"plan_id"`
	Type   string `json:"type"`
}

func (m Metadata) empty() bool { return m.LoanID == "" && m.PlanID == "" }

type Transaction struct {
	ID             ExternalID      `json:"id"`
	Reference      string          `json:"reference"`
	Description    string          `json:"description"`
	Amount         decimal.Decimal `json:"amount"`
	Status         string          `json:"status"`
	Mode           string          `json:"mode"`
	CustomMetadata Metadata        `json:"custom_metadata"`
	Metadata       json.RawMessage `json:"metadata"`
	ApprovedAt     string          `json:"approved_at"`
	PaidAt         string          `json:"paid_at"`
	CreatedAt      string          `json:"created_at"`
}

// References prefers custom_metadata and falls back to metadata.
func (t *Transaction) References() Metadata {
	if !t.CustomMetadata.empty() || len(t.Metadata) == 0 {
		return t.CustomMetadata
	}
	var m Metadata
	if err := json.Unmarshal(t.Metadata, &m); err != nil {
		return t.CustomMetadata
	}
	return m
}

var timeLayouts = []string{time.RFC3339Nano, "2006-01-02 15:04:05", "2006-01-02T15:04:05"}

// SettledAt is when the payment was approved, if FedaPay says so.
func (t *Transaction) SettledAt() *time.Time {
	for _, raw := range []string{t.ApprovedAt, t.PaidAt} {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		for _, layout := range timeLayouts {
			if at, err := time.Parse(layout, raw); err == nil {
				at = at.UTC()
				return &at
			}
		}
		if sec, err := strconv.ParseInt(raw, 10, 64); err == nil {
			at := time.Unix(sec, 0).UTC()
			return &at
		}
	}
	return nil
}

// Event is the webhook envelope.
type Event struct {
	ID     ExternalID  `json:"id"`
	Name   string      `json:"name"`
	Entity Transaction `json:"entity"`
}

type currency struct {
	Iso string `json:"iso"`
}

type phoneNumber struct {
	Number  string `json:"number"`
	Country string `json:"country"`
}

type customer struct {
	Firstname   string       `json:"firstname,omitempty"`
	Lastname    string       `json:"lastname,omitempty"`
	Email       string       `json:"email,omitempty"`
	PhoneNumber *phoneNumber `json:"phone_number,omitempty"`
}

type createTransactionRequest struct {
	Description    string            `json:"description"`
	Amount         int64             `json:"amount"`
	Currency       currency          `json:"currency"`
	CallbackURL    string            `json:"callback_url,omitempty"`
	Customer       *customer         `json:"customer,omitempty"`
	CustomMetadata map[string]string `json:"custom_metadata,omitempty"`
}

type transactionEnvelope struct {
	Transaction Transaction `json:"v1/transaction"`
}

type tokenResponse struct {
	Token string `json:"token"`
	URL   string `json:"url"`
}

type apiError struct {
	Message string          `json:"message"`
	Errors  json.RawMessage `json:"errors"`
}
