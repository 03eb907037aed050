package review

import (
	"time"
)

type ReviewInput struct {
	LoanID     string `json:"-"`
	ReviewerID string `json:"-"` // admin subject from the JWT
	Reason     string `json:"reason" validate:"max=500"`
}

type ReviewDTO struct {
	ReviewID   string    `json:"review_id"`
	LoanID     string    `json:"loan_id"`
	Decision   string    `json:"decision"`
	LoanStatus string    `json:"loan_status"`
	Reason     string    `json:"reason,omitempty"`
	DecidedAt  time.Time `json:"decided_at"`
}
