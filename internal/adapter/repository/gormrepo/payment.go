package gormrepo

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	paymentDomain "abcampus-finance/internal/domain/payment"
)

type PaymentRepository struct{ db *gorm.DB }

func NewPaymentRepository(db *gorm.DB) *PaymentRepository { return &PaymentRepository{db: db} }

func (r *PaymentRepository) Create(ctx context.Context, p *paymentDomain.Payment) error {
	err := r.db.WithContext(ctx).Create(p).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return paymentDomain.ErrAlreadyProcessed
	}
	return err
}

func (r *PaymentRepository) GetByTransactionID(ctx context.Context, transactionID string) (*paymentDomain.Payment, error) {
	var out paymentDomain.Payment
	res := r.db.WithContext(ctx).Where("transaction_id = ?", transactionID).First(&out)
	return notFound(&out, res.Error, paymentDomain.ErrNotFound)
}

func (r *PaymentRepository) ListByLoan(ctx context.Context, loanID uint64) ([]paymentDomain.Payment, error) {
	var out []paymentDomain.Payment
	err := r.db.WithContext(ctx).
		Where("loan_id = ?", loanID).
		Order("created_at ASC, id ASC").
		Find(&out).Error
	return out, err
}

// SumCompletedByLoan adds amounts in Go so decimals survive every dialect.
func (r *PaymentRepository) SumCompletedByLoan(ctx context.Context, loanID uint64) (decimal.Decimal, error) {
	var amounts []decimal.Decimal
	err := r.db.WithContext(ctx).
		Model(&paymentDomain.Payment{}).
		Where("loan_id = ? AND status = ?", loanID, paymentDomain.StatusCompleted).
		Pluck("amount", &amounts).Error
	if err != nil {
		return decimal.Zero, err
	}
	return decimal.Sum(decimal.Zero, amounts...), nil
}

type LedgerRepository struct{ db *gorm.DB }

func NewLedgerRepository(db *gorm.DB) *LedgerRepository { return &LedgerRepository{db: db} }

func (r *LedgerRepository) MarkProcessed(ctx context.Context, t *paymentDomain.ProcessedTransaction) error {
	err := r.db.WithContext(ctx).Create(t).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return paymentDomain.ErrAlreadyProcessed
	}
	return err
}
