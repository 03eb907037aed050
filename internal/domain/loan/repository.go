package loan

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, l *Loan) error
	GetByLoanID(ctx context.Context, loanID string) (*Loan, error)
	// GetByLoanIDForUpdate locks the row for the rest of the transaction.
	GetByLoanIDForUpdate(ctx context.Context, loanID string) (*Loan, error)
	GetOpenLoanByUserID(ctx context.Context, userID string) (*Loan, error)
	ListByUserID(ctx context.Context, userID string) ([]Loan, error)
	ListActiveDueBefore(ctx context.Context, t time.Time) ([]Loan, error)
	Save(ctx context.Context, l *Loan) error
}
