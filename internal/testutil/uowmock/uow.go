package uowmock

import (
	"context"
	"errors"

	"abcampus-finance/internal/domain/loan"
	"abcampus-finance/internal/domain/uow"
)

var _ uow.UnitOfWork = (*UoW)(nil)

var ErrUnimplemented = errors.New("uowmock: method not implemented")

// UoW is a function-backed uow.UnitOfWork; unset fields return ErrUnimplemented.
type UoW struct {
	WithinTxFn     func(ctx context.Context, fn func(r uow.Repos) error) error
	WithinLoanTxFn func(ctx context.Context, loanID string, fn func(r uow.Repos, l *loan.Loan) error) error
}

// Fixed runs every transaction body against repos. WithinLoanTx hands in
// l, or loan.ErrNotFound when l is nil or its LoanID differs.
func Fixed(repos uow.Repos, l *loan.Loan) *UoW {
	return &UoW{
		WithinTxFn: func(_ context.Context, fn func(uow.Repos) error) error {
			return fn(repos)
		},
		WithinLoanTxFn: func(_ context.Context, loanID string, fn func(uow.Repos, *loan.Loan) error) error {
			if l == nil || l.LoanID != loanID {
				return loan.ErrNotFound
			}
			return fn(repos, l)
		},
	}
}

func (m *UoW) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	if m.WithinTxFn == nil {
		return ErrUnimplemented
	}
	return m.WithinTxFn(ctx, fn)
}

func (m *UoW) WithinLoanTx(ctx context.Context, loanID string, fn func(r uow.Repos, l *loan.Loan) error) error {
	if m.WithinLoanTxFn == nil {
		return ErrUnimplemented
	}
	return m.WithinLoanTxFn(ctx, loanID, fn)
}
