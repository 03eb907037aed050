package uow

import (
	"context"

	"abcampus-finance/internal/domain/loan"
	"abcampus-finance/internal/domain/notification"
	"abcampus-finance/internal/domain/payment"
	"abcampus-finance/internal/domain/review"
	"abcampus-finance/internal/domain/savings"
)

// Repos are bound to the same transaction.
type Repos struct {
	Loans         loan.Repository
	Reviews       review.Repository
	Payments      payment.Repository
	Ledger        payment.Ledger
	Savings       savings.Repository
	Notifications notification.Repository
}

type UnitOfWork interface {
	// plain tx
	WithinTx(ctx context.Context, fn func(r Repos) error) error
	// convenience: lock loan first, then pass it in
	WithinLoanTx(ctx context.Context, loanID string, fn func(r Repos, l *loan.Loan) error) error
}
