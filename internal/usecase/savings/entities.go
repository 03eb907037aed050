package savings

import (
	"time"

	"github.com/shopspring/decimal"

	domain "abcampus-finance/internal/domain/savings"
)

type CreatePlanInput struct {
	UserID             string          `json:"user_id" validate:"required,uuid"`
	Name               string          `json:"name" validate:"required,max=120"`
	TargetAmount       decimal.Decimal `json:"target_amount" validate:"gt=0,dec2"`
	FixedDepositAmount decimal.Decimal `json:"fixed_deposit_amount" validate:"gt=0,dec2"`
	FrequencyDays      int             `json:"frequency_days" validate:"required,min=1,max=366"`
	StartDate          *time.Time      `json:"start_date,omitempty"`
}

// DepositInput credits a plan once per external reference.
type DepositInput struct {
	PlanID    string          `json:"-"`
	UserID    string          `json:"user_id" validate:"required,uuid"`
	Amount    decimal.Decimal `json:"amount" validate:"gt=0,dec2"`
	Reference string          `json:"reference" validate:"required,max=64"`
}

type PlanDTO struct {
	PlanID             string          `json:"plan_id"`
	UserID             string          `json:"user_id"`
	Name               string          `json:"name"`
	TargetAmount       decimal.Decimal `json:"target_amount"`
	FixedDepositAmount decimal.Decimal `json:"fixed_deposit_amount"`
	FrequencyDays      int             `json:"frequency_days"`
	NextDepositDate    time.Time       `json:"next_deposit_date"`
	TotalDeposited     decimal.Decimal `json:"total_deposited"`
	CompletedDeposits  int             `json:"completed_deposits"`
	CurrentBalance     decimal.Decimal `json:"current_balance"`
	Progress           decimal.Decimal `json:"progress"`
	Status             string          `json:"status"`
	CreatedAt          time.Time       `json:"created_at"`
}

type DepositDTO struct {
	TransactionID string          `json:"transaction_id"`
	Reference     string          `json:"reference"`
	Amount        decimal.Decimal `json:"amount"`
	Status        string          `json:"status"`
	Duplicate     bool            `json:"duplicate"`
	Plan          *PlanDTO        `json:"plan"`
}

type TransactionDTO struct {
	TransactionID string          `json:"transaction_id"`
	PlanID        string          `json:"plan_id"`
	Amount        decimal.Decimal `json:"amount"`
	Type          string          `json:"type"`
	Reference     string          `json:"reference"`
	Status        string          `json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
}

func toPlanDTO(p *domain.Plan) *PlanDTO {
	return &PlanDTO{
		PlanID:             p.PlanID,
		UserID:             p.UserID,
		Name:               p.Name,
		TargetAmount:       p.TargetAmount,
		FixedDepositAmount: p.FixedDepositAmount,
		FrequencyDays:      p.FrequencyDays,
		NextDepositDate:    p.NextDepositDate,
		TotalDeposited:     p.TotalDeposited,
		CompletedDeposits:  p.CompletedDeposits,
		CurrentBalance:     p.CurrentBalance,
		Progress:           p.Progress(),
		Status:             string(p.Status),
		CreatedAt:          p.CreatedAt,
	}
}
