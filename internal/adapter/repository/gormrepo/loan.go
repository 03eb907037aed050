package gormrepo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	loanDomain "abcampus-finance/internal/domain/loan"
)

type LoanRepository struct{ db *gorm.DB }

func NewLoanRepository(db *gorm.DB) *LoanRepository { return &LoanRepository{db: db} }

// Create maps a clash on the open-slot index to ErrOpenLoanExists.
func (r *LoanRepository) Create(ctx context.Context, l *loanDomain.Loan) error {
	err := r.db.WithContext(ctx).Create(l).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) && l.OpenSlot != nil {
		return loanDomain.ErrOpenLoanExists
	}
	return err
}

func (r *LoanRepository) Save(ctx context.Context, l *loanDomain.Loan) error {
	return r.db.WithContext(ctx).Save(l).Error
}

func (r *LoanRepository) GetByLoanID(ctx context.Context, loanID string) (*loanDomain.Loan, error) {
	var out loanDomain.Loan
	res := r.db.WithContext(ctx).Where("loan_id = ?", loanID).First(&out)
	return notFound(&out, res.Error, loanDomain.ErrNotFound)
}

func (r *LoanRepository) GetByLoanIDForUpdate(ctx context.Context, loanID string) (*loanDomain.Loan, error) {
	var out loanDomain.Loan
	res := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("loan_id = ?", loanID).
		First(&out)
	return notFound(&out, res.Error, loanDomain.ErrNotFound)
}

func (r *LoanRepository) GetOpenLoanByUserID(ctx context.Context, userID string) (*loanDomain.Loan, error) {
	var out loanDomain.Loan
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND status IN ?", userID, []loanDomain.Status{
			loanDomain.StatusPending, loanDomain.StatusApproved, loanDomain.StatusActive, loanDomain.StatusOverdue,
		}).
		Order("status_updated_at DESC, id DESC").
		First(&out)
	return notFound(&out, res.Error, loanDomain.ErrNotFound)
}

func (r *LoanRepository) ListByUserID(ctx context.Context, userID string) ([]loanDomain.Loan, error) {
	var out []loanDomain.Loan
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&out).Error
	return out, err
}

func (r *LoanRepository) ListActiveDueBefore(ctx context.Context, t time.Time) ([]loanDomain.Loan, error) {
	var out []loanDomain.Loan
	err := r.db.WithContext(ctx).
		Where("status = ? AND due_at IS NOT NULL AND due_at < ?", loanDomain.StatusActive, t.UTC()).
		Order("due_at ASC, id ASC").
		Find(&out).Error
	return out, err
}

// notFound translates gorm's not-found into the domain sentinel.
func notFound[T any](out *T, err, sentinel error) (*T, error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, sentinel
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}
