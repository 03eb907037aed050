package loan

import (
	"time"

	"github.com/shopspring/decimal"

	"abcampus-finance/internal/domain/loan"
	"abcampus-finance/internal/domain/payment"
)

type SubmitLoanInput struct {
	UserID       string          `json:"user_id" validate:"required,uuid"`
	Amount       decimal.Decimal `json:"amount" validate:"gt=0,dec2"`
	DurationDays int             `json:"duration_days" validate:"required,min=1"`
	Purpose      string          `json:"purpose" validate:"required,max=500"`
}

type LoanDTO struct {
	LoanID       string          `json:"loan_id"`
	UserID       string          `json:"user_id"`
	Amount       decimal.Decimal `json:"amount"`
	InterestRate decimal.Decimal `json:"interest_rate"`
	TotalDue     decimal.Decimal `json:"total_due"`
	DurationDays int             `json:"duration_days"`
	Purpose      string          `json:"purpose"`
	Status       string          `json:"status"`
	ApprovedAt   *time.Time      `json:"approved_at,omitempty"`
	DueAt        *time.Time      `json:"due_at,omitempty"`
	CompletedAt  *time.Time      `json:"completed_at,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

type PaymentDTO struct {
	PaymentID     string          `json:"payment_id"`
	Amount        decimal.Decimal `json:"amount"`
	TransactionID string          `json:"transaction_id"`
	Method        string          `json:"method"`
	Status        string          `json:"status"`
	PaidAt        *time.Time      `json:"paid_at,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

type EligibilityDTO struct {
	UserID         string `json:"user_id"`
	CanRequest     bool   `json:"can_request"`
	OpenLoanID     string `json:"open_loan_id,omitempty"`
	OpenLoanStatus string `json:"open_loan_status,omitempty"`
}

func toDTO(l *loan.Loan) *LoanDTO {
	return &LoanDTO{
		LoanID:       l.LoanID,
		UserID:       l.UserID,
		Amount:       l.Principal,
		InterestRate: l.InterestRate,
		TotalDue:     l.TotalDue(),
		DurationDays: l.DurationDays,
		Purpose:      l.Purpose,
		Status:       string(l.Status),
		ApprovedAt:   l.ApprovedAt,
		DueAt:        l.DueAt,
		CompletedAt:  l.CompletedAt,
		CreatedAt:    l.CreatedAt,
	}
}

func toPaymentDTO(p *payment.Payment) PaymentDTO {
	return PaymentDTO{
		PaymentID:     p.PaymentID,
		Amount:        p.Amount,
		TransactionID: p.TransactionID,
		Method:        p.Method,
		Status:        string(p.Status),
		PaidAt:        p.PaidAt,
		CreatedAt:     p.CreatedAt,
	}
}
