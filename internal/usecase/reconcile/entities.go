package reconcile

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Outcome string

const (
	OutcomePending   Outcome = "pending"
	OutcomeSucceeded Outcome = "succeeded"
	OutcomeFailed    Outcome = "failed"
)

const (
	PurposeLoanRepayment  = "loan_repayment"
	PurposeSavingsDeposit = "savings_deposit"
)

// Transaction is a processor transaction reduced to what reconciliation needs.
type Transaction struct {
	ExternalID string
	Status     string
	Amount     decimal.Decimal
	LoanID     string
	PlanID     string
	UserID     string
	PaidAt     *time.Time
}

// OutcomeOf maps a processor status onto the three outcomes we act on.
func OutcomeOf(status string) Outcome {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "approved", "transferred", "successful", "success":
		return OutcomeSucceeded
	case "declined", "canceled", "cancelled", "failed", "refunded", "expired":
		return OutcomeFailed
	default:
		return OutcomePending
	}
}

type Result struct {
	ExternalID string `json:"transaction_id"`
	Outcome    string `json:"outcome"`
	Applied    bool   `json:"applied"`
	Duplicate  bool   `json:"duplicate,omitempty"`
	Ignored    bool   `json:"ignored,omitempty"`
	PaymentID  string `json:"payment_id,omitempty"`
	LoanID     string `json:"loan_id,omitempty"`
	LoanStatus string `json:"loan_status,omitempty"`
	PlanID     string `json:"plan_id,omitempty"`
	PlanStatus string `json:"plan_status,omitempty"`
	// Flagged marks money taken on a loan that was not open for repayment.
	Flagged bool `json:"flagged,omitempty"`
	// Overpaid marks money credited to a plan that was already closed.
	Overpaid bool `json:"overpaid,omitempty"`
}
