package gormrepo

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	savingsDomain "abcampus-finance/internal/domain/savings"
)

type SavingsRepository struct{ db *gorm.DB }

func NewSavingsRepository(db *gorm.DB) *SavingsRepository { return &SavingsRepository{db: db} }

func (r *SavingsRepository) CreatePlan(ctx context.Context, p *savingsDomain.Plan) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *SavingsRepository) GetByPlanID(ctx context.Context, planID string) (*savingsDomain.Plan, error) {
	var out savingsDomain.Plan
	res := r.db.WithContext(ctx).Where("plan_id = ?", planID).First(&out)
	return notFound(&out, res.Error, savingsDomain.ErrNotFound)
}

func (r *SavingsRepository) GetByID(ctx context.Context, id uint64) (*savingsDomain.Plan, error) {
	var out savingsDomain.Plan
	res := r.db.WithContext(ctx).First(&out, id)
	return notFound(&out, res.Error, savingsDomain.ErrNotFound)
}

func (r *SavingsRepository) ListByUserID(ctx context.Context, userID string) ([]savingsDomain.Plan, error) {
	var out []savingsDomain.Plan
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&out).Error
	return out, err
}

func (r *SavingsRepository) UpdateBalance(ctx context.Context, p *savingsDomain.Plan, expectedVersion int) error {
	res := r.db.WithContext(ctx).
		Model(&savingsDomain.Plan{}).
		Where("id = ? AND version = ?", p.ID, expectedVersion).
		Updates(map[string]any{
			"total_deposited":    p.TotalDeposited,
			"completed_deposits": p.CompletedDeposits,
			"current_balance":    p.CurrentBalance,
			"next_deposit_date":  p.NextDepositDate,
			"status":             p.Status,
			"version":            expectedVersion + 1,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return savingsDomain.ErrVersionConflict
	}
	p.Version = expectedVersion + 1
	return nil
}

func (r *SavingsRepository) CreateTransaction(ctx context.Context, t *savingsDomain.Transaction) error {
	err := r.db.WithContext(ctx).Create(t).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return savingsDomain.ErrDuplicateDeposit
	}
	return err
}

func (r *SavingsRepository) GetTransactionByReference(ctx context.Context, reference string) (*savingsDomain.Transaction, error) {
	var out savingsDomain.Transaction
	res := r.db.WithContext(ctx).Where("reference = ?", reference).First(&out)
	return notFound(&out, res.Error, savingsDomain.ErrTransactionAbsent)
}

func (r *SavingsRepository) ListTransactions(ctx context.Context, planID uint64) ([]savingsDomain.Transaction, error) {
	var out []savingsDomain.Transaction
	err := r.db.WithContext(ctx).
		Where("plan_id = ?", planID).
		Order("created_at ASC, id ASC").
		Find(&out).Error
	return out, err
}

// SumCompleted derives the balance and deposit count from the transaction log.
func (r *SavingsRepository) SumCompleted(ctx context.Context, planID uint64) (decimal.Decimal, int, error) {
	var amounts []decimal.Decimal
	err := r.db.WithContext(ctx).
		Model(&savingsDomain.Transaction{}).
		Where("plan_id = ? AND status = ?", planID, savingsDomain.TxCompleted).
		Pluck("amount", &amounts).Error
	if err != nil {
		return decimal.Zero, 0, err
	}
	return decimal.Sum(decimal.Zero, amounts...), len(amounts), nil
}
