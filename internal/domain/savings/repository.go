package savings

import (
	"context"

	"github.com/shopspring/decimal"
)

type Repository interface {
	CreatePlan(ctx context.Context, p *Plan) error
	GetByPlanID(ctx context.Context, planID string) (*Plan, error)
	GetByID(ctx context.Context, id uint64) (*Plan, error)
	ListByUserID(ctx context.Context, userID string) ([]Plan, error)
	// UpdateBalance writes the plan only if its stored version still equals
	// expectedVersion, bumping the version; otherwise ErrVersionConflict.
	UpdateBalance(ctx context.Context, p *Plan, expectedVersion int) error

	CreateTransaction(ctx context.Context, t *Transaction) error
	GetTransactionByReference(ctx context.Context, reference string) (*Transaction, error)
	ListTransactions(ctx context.Context, planID uint64) ([]Transaction, error)
	SumCompleted(ctx context.Context, planID uint64) (decimal.Decimal, int, error)
}
