package savings

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound          = errors.New("savings plan not found")
	ErrPlanClosed        = errors.New("savings plan is not accepting deposits")
	ErrInvalidAmount     = errors.New("deposit amount must be positive")
	ErrVersionConflict   = errors.New("savings plan was modified concurrently")
	ErrDuplicateDeposit  = errors.New("deposit reference already recorded")
	ErrReferenceInUse    = errors.New("deposit reference belongs to another plan")
	ErrTransactionAbsent = errors.New("savings transaction not found")
	ErrInvalidPlan       = errors.New("invalid savings plan")
)

type PlanStatus string

const (
	PlanActive    PlanStatus = "active"
	PlanCompleted PlanStatus = "completed"
	PlanCancelled PlanStatus = "cancelled"
)

type TxStatus string

const (
	TxPending   TxStatus = "pending"
	TxCompleted TxStatus = "completed"
	TxFailed    TxStatus = "failed"
)

const TxTypeDeposit = "deposit"

type Plan struct {
	ID                 uint64          `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	PlanID             string          `gorm:"column:plan_id;size:32;not null;uniqueIndex:ux_savings_plans_plan_id" json:"plan_id"`
	UserID             string          `gorm:"column:user_id;size:36;not null;index:idx_savings_plans_user" json:"user_id"`
	Name               string          `gorm:"column:name;size:120;not null" json:"name"`
	TargetAmount       decimal.Decimal `gorm:"column:target_amount;type:decimal(18,2);not null" json:"target_amount"`
	FixedDepositAmount decimal.Decimal `gorm:"column:fixed_deposit_amount;type:decimal(18,2);not null" json:"fixed_deposit_amount"`
	FrequencyDays      int             `gorm:"column:frequency_days;not null" json:"frequency_days"`
	NextDepositDate    time.Time       `gorm:"column:next_deposit_date" json:"next_deposit_date"`
	TotalDeposited     decimal.Decimal `gorm:"column:total_deposited;type:decimal(18,2);not null" json:"total_deposited"`
	CompletedDeposits  int             `gorm:"column:completed_deposits;not null" json:"completed_deposits"`
	CurrentBalance     decimal.Decimal `gorm:"column:current_balance;type:decimal(18,2);not null" json:"current_balance"`
	Status             PlanStatus      `gorm:"column:status;size:16;not null;check:chk_savings_plans_status,status IN ('active','completed','cancelled')" json:"status"`
	// Version guards every balance write (compare-and-swap).
	Version   int       `gorm:"column:version;not null" json:"version"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Plan) TableName() string { return "savings_plans" }

// Credit applies a completed deposit to the running totals.
func (p *Plan) Credit(amount decimal.Decimal, at time.Time) error {
	if p.Status != PlanActive {
		return ErrPlanClosed
	}
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}
	p.add(amount)
	p.NextDepositDate = at.UTC().AddDate(0, 0, p.FrequencyDays)
	if p.CurrentBalance.GreaterThanOrEqual(p.TargetAmount) {
		p.Status = PlanCompleted
	}
	return nil
}

// Settle credits money the processor has already collected. A plan that is
// no longer active still records it and overpaid is true, so the surplus
// can be refunded.
func (p *Plan) Settle(amount decimal.Decimal, at time.Time) (overpaid bool, err error) {
	if p.Status == PlanActive {
		return false, p.Credit(amount, at)
	}
	if !amount.IsPositive() {
		return false, ErrInvalidAmount
	}
	p.add(amount)
	return true, nil
}

func (p *Plan) add(amount decimal.Decimal) {
	p.TotalDeposited = p.TotalDeposited.Add(amount)
	p.CurrentBalance = p.CurrentBalance.Add(amount)
	p.CompletedDeposits++
}

// Progress is the share of the target reached, capped at 1.
func (p *Plan) Progress() decimal.Decimal {
	if !p.TargetAmount.IsPositive() {
		return decimal.Zero
	}
	r := p.CurrentBalance.Div(p.TargetAmount)
	if r.GreaterThan(decimal.NewFromInt(1)) {
		return decimal.NewFromInt(1)
	}
	return r.Round(4)
}

type Transaction struct {
	ID            uint64 `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	TransactionID string `gorm:"column:transaction_id;size:32;not null;uniqueIndex:ux_savings_transactions_tx_id" json:"transaction_id"`
	// FK to savings_plans.id (numeric)
	PlanID    uint64          `gorm:"column:plan_id;not null;index:idx_savings_transactions_plan" json:"-"`
	UserID    string          `gorm:"column:user_id;size:36;not null" json:"user_id"`
	Amount    decimal.Decimal `gorm:"column:amount;type:decimal(18,2);not null" json:"amount"`
	Type      string          `gorm:"column:type;size:16;not null" json:"type"`
	Reference string          `gorm:"column:reference;size:64;not null;uniqueIndex:ux_savings_transactions_reference" json:"reference"`
	Status    TxStatus        `gorm:"column:status;size:16;not null;check:chk_savings_transactions_status,status IN ('pending','completed','failed')" json:"status"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Transaction) TableName() string { return "savings_transactions" }
