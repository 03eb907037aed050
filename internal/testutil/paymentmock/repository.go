package paymentmock

import (
	"context"

	"github.com/shopspring/decimal"

	domain "abcampus-finance/internal/domain/payment"
)

var (
	_ domain.Repository = (*Repo)(nil)
	_ domain.Ledger     = (*Ledger)(nil)
)

// Repo is a function-backed mock that satisfies domain.Repository.
type Repo struct {
	CreateFn             func(ctx context.Context, p *domain.Payment) error
	GetByTransactionIDFn func(ctx context.Context, transactionID string) (*domain.Payment, error)
	ListByLoanFn         func(ctx context.Context, loanID uint64) ([]domain.Payment, error)
	SumCompletedByLoanFn func(ctx context.Context, loanID uint64) (decimal.Decimal, error)
}

func (m *Repo) Create(ctx context.Context, p *domain.Payment) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, p)
	}
	return nil
}

func (m *Repo) GetByTransactionID(ctx context.Context, transactionID string) (*domain.Payment, error) {
	if m.GetByTransactionIDFn != nil {
		return m.GetByTransactionIDFn(ctx, transactionID)
	}
	return nil, context.Canceled
}

func (m *Repo) ListByLoan(ctx context.Context, loanID uint64) ([]domain.Payment, error) {
	if m.ListByLoanFn != nil {
		return m.ListByLoanFn(ctx, loanID)
	}
	return nil, context.Canceled
}

func (m *Repo) SumCompletedByLoan(ctx context.Context, loanID uint64) (decimal.Decimal, error) {
	if m.SumCompletedByLoanFn != nil {
		return m.SumCompletedByLoanFn(ctx, loanID)
	}
	return decimal.Zero, context.Canceled
}

// Ledger is a function-backed mock that satisfies domain.Ledger.
type Ledger struct {
	MarkProcessedFn func(ctx context.Context, t *domain.ProcessedTransaction) error
}

func (m *Ledger) MarkProcessed(ctx context.Context, t *domain.ProcessedTransaction) error {
	if m.MarkProcessedFn != nil {
		return m.MarkProcessedFn(ctx, t)
	}
	return nil
}
