package gormrepo

import (
	"context"

	"gorm.io/gorm"

	"abcampus-finance/internal/domain/loan"
	"abcampus-finance/internal/domain/uow"
)

type GormUoW struct{ db *gorm.DB }

func NewGormUoW(db *gorm.DB) *GormUoW { return &GormUoW{db: db} }

// NewRepos binds every repository to db, which may be a transaction.
func NewRepos(db *gorm.DB) uow.Repos {
	return uow.Repos{
		Loans:         &LoanRepository{db: db},
		Reviews:       &ReviewRepository{db: db},
		Payments:      &PaymentRepository{db: db},
		Ledger:        &LedgerRepository{db: db},
		Savings:       &SavingsRepository{db: db},
		Notifications: &NotificationRepository{db: db},
	}
}

func (u *GormUoW) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepos(tx))
	})
}

func (u *GormUoW) WithinLoanTx(ctx context.Context, loanID string, fn func(r uow.Repos, l *loan.Loan) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := NewRepos(tx)
		// lock the loan row up-front to prevent races
		l, err := r.Loans.GetByLoanIDForUpdate(ctx, loanID)
		if err != nil {
			return err
		}
		return fn(r, l)
	})
}
