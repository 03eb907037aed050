package checkout

import (
	"github.com/shopspring/decimal"
)

type Customer struct {
	FirstName string `json:"firstname" validate:"omitempty,max=80"`
	LastName  string `json:"lastname" validate:"omitempty,max=80"`
	Email     string `json:"email" validate:"omitempty,email"`
	Phone     string `json:"phone_number" validate:"omitempty,max=20"`
}

// CreateInput targets either a loan repayment or a savings deposit.
type CreateInput struct {
	Amount      decimal.Decimal `json:"amount" validate:"gt=0,intlike"`
	LoanID      string          `json:"loanId" validate:"required_without=PlanID"`
	PlanID      string          `json:"planId"`
	UserID      string          `json:"userId" validate:"required,uuid"`
	Description string          `json:"description" validate:"max=255"`
	Customer    Customer        `json:"customer"`
}

// Order is what the payment processor is asked to collect.
type Order struct {
	Description string
	Amount      decimal.Decimal
	Customer    Customer
	Metadata    map[string]string
}

type Session struct {
	TransactionID string
	Token         string
	URL           string
}

type CheckoutDTO struct {
	Success       bool   `json:"success"`
	URL           string `json:"url"`
	TransactionID string `json:"transaction_id"`
	PublicKey     string `json:"public_key"`
}
