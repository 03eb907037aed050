package payment

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound         = errors.New("payment not found")
	ErrAlreadyProcessed = errors.New("transaction already processed")
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

const MethodMobileMoney = "mobile_money"

type Payment struct {
	ID        uint64 `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	PaymentID string `gorm:"column:payment_id;size:32;not null;uniqueIndex:ux_payments_payment_id" json:"payment_id"`
	// FK to loans.id (numeric)
	LoanID        uint64          `gorm:"column:loan_id;not null;index:idx_payments_loan" json:"-"`
	UserID        string          `gorm:"column:user_id;size:36;not null" json:"user_id"`
	Amount        decimal.Decimal `gorm:"column:amount;type:decimal(18,2);not null" json:"amount"`
	TransactionID string          `gorm:"column:transaction_id;size:64;not null;uniqueIndex:ux_payments_transaction_id" json:"transaction_id"`
	Method        string          `gorm:"column:method;size:32;not null" json:"method"`
	Status        Status          `gorm:"column:status;size:16;not null;check:chk_payments_status,status IN ('pending','completed','failed')" json:"status"`
	PaidAt        *time.Time      `gorm:"column:paid_at" json:"paid_at,omitempty"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Payment) TableName() string { return "payments" }

// ProcessedTransaction marks an external gateway transaction whose final
// outcome has been applied. The unique key makes reconciliation insert-if-absent.
type ProcessedTransaction struct {
	ID          uint64    `gorm:"column:id;primaryKey;autoIncrement"`
	ExternalID  string    `gorm:"column:external_id;size:64;not null;uniqueIndex:ux_processed_transactions_external_id"`
	Purpose     string    `gorm:"column:purpose;size:32;not null"`
	Outcome     string    `gorm:"column:outcome;size:32;not null"`
	ProcessedAt time.Time `gorm:"column:processed_at;not null"`
}

func (ProcessedTransaction) TableName() string { return "processed_transactions" }
