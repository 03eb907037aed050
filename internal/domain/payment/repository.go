package payment

import (
	"context"

	"github.com/shopspring/decimal"
)

type Repository interface {
	Create(ctx context.Context, p *Payment) error
	GetByTransactionID(ctx context.Context, transactionID string) (*Payment, error)
	ListByLoan(ctx context.Context, loanID uint64) ([]Payment, error)
	SumCompletedByLoan(ctx context.Context, loanID uint64) (decimal.Decimal, error)
}

type Ledger interface {
	// MarkProcessed returns ErrAlreadyProcessed when the external id was seen before.
	MarkProcessed(ctx context.Context, t *ProcessedTransaction) error
}
