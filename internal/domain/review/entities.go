package review

import (
	"errors"
	"time"
)

var (
	ErrNotFound = errors.New("review not found")
)

type Decision string

const (
	DecisionApproved Decision = "approved"
	DecisionRejected Decision = "rejected"
)

// Table: loan_reviews, one admin decision per loan.
type Review struct {
	ID       uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	ReviewID string `gorm:"column:review_id;size:32;not null;uniqueIndex:ux_loan_reviews_review_id"`
	// FK to loans.id (numeric)
	LoanID     uint64    `gorm:"column:loan_id;not null;uniqueIndex:ux_loan_reviews_loan"`
	Decision   Decision  `gorm:"column:decision;size:16;not null;check:chk_loan_reviews_decision,decision IN ('approved','rejected')"`
	ReviewerID string    `gorm:"column:reviewer_id;size:64;not null"`
	Reason     string    `gorm:"column:reason;type:text"`
	DecidedAt  time.Time `gorm:"column:decided_at;not null"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (Review) TableName() string { return "loan_reviews" }
