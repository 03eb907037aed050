package loan

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound          = errors.New("loan not found")
	ErrInvalidTransition = errors.New("invalid loan status transition")
	ErrAlreadyReviewed   = errors.New("loan already reviewed")
	ErrOpenLoanExists    = errors.New("user already has an open loan")
	ErrNotOwner          = errors.New("loan does not belong to user")
	ErrNotRepayable      = errors.New("loan is not open for repayment")
	ErrOutOfPolicy       = errors.New("loan request outside policy limits")
	ErrInvalidUserID     = errors.New("user id must be a UUID")
)

type Loan struct {
	ID           uint64          `gorm:"primaryKey;column:id;autoIncrement" json:"-"`
	LoanID       string          `gorm:"column:loan_id;size:32;not null;uniqueIndex:ux_loans_loan_id" json:"loan_id"`
	UserID       string          `gorm:"column:user_id;size:36;not null;index:idx_loans_user" json:"user_id"`
	Principal    decimal.Decimal `gorm:"column:principal;type:decimal(18,2);not null" json:"principal"`
	InterestRate decimal.Decimal `gorm:"column:interest_rate;type:decimal(6,4);not null" json:"interest_rate"`
	DurationDays int             `gorm:"column:duration_days;not null" json:"duration_days"`
	Purpose      string          `gorm:"column:purpose;type:text" json:"purpose"`
	Status       Status          `gorm:"column:status;size:16;not null;check:chk_loans_status,status IN ('pending','approved','rejected','active','completed','overdue')" json:"status"`
	// OpenSlot holds UserID while the loan is non-terminal and NULL afterwards.
	// Its unique index is the portable form of a partial unique index on
	// (user_id) WHERE status is non-terminal.
	OpenSlot        *string    `gorm:"column:open_slot;size:36;uniqueIndex:ux_loans_open_slot" json:"-"`
	StatusUpdatedAt time.Time  `gorm:"column:status_updated_at" json:"status_updated_at"`
	ApprovedAt      *time.Time `gorm:"column:approved_at" json:"approved_at,omitempty"`
	ActivatedAt     *time.Time `gorm:"column:activated_at" json:"activated_at,omitempty"`
	DueAt           *time.Time `gorm:"column:due_at;index:idx_loans_due" json:"due_at,omitempty"`
	CompletedAt     *time.Time `gorm:"column:completed_at" json:"completed_at,omitempty"`
	CreatedAt       time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Loan) TableName() string { return "loans" }

// TotalDue is principal plus simple interest.
func (l *Loan) TotalDue() decimal.Decimal {
	return l.Principal.Add(l.Principal.Mul(l.InterestRate)).Round(2)
}

// Transition moves the loan along one edge of the status graph and keeps
// the timestamps and open slot in step with the new status.
func (l *Loan) Transition(to Status, at time.Time) error {
	if !CanTransition(l.Status, to) {
		return ErrInvalidTransition
	}
	at = at.UTC()
	l.Status = to
	l.StatusUpdatedAt = at
	switch to {
	case StatusApproved:
		l.ApprovedAt = &at
	case StatusActive:
		l.ActivatedAt = &at
		due := at.AddDate(0, 0, l.DurationDays)
		l.DueAt = &due
	case StatusCompleted:
		l.CompletedAt = &at
	}
	if to.Terminal() {
		l.OpenSlot = nil
	}
	return nil
}

// Repayable reports whether a payment can be taken against the loan.
func (l *Loan) Repayable() bool {
	switch l.Status {
	case StatusApproved, StatusActive, StatusOverdue:
		return true
	}
	return false
}
