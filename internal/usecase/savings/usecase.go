package savings

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"abcampus-finance/internal/domain/notification"
	domain "abcampus-finance/internal/domain/savings"
	"abcampus-finance/internal/domain/uow"
	"abcampus-finance/internal/infrastructure/logger"
	"abcampus-finance/pkg/id"
)

// MaxAttempts bounds the compare-and-swap retries on a contended plan.
const MaxAttempts = 5

var ErrNotOwner = errors.New("savings plan does not belong to user")

type Usecase struct {
	repo     domain.Repository
	uow      uow.UnitOfWork
	notifier notification.Notifier
	log      *zap.Logger
	now      func() time.Time
}

func NewUsecase(r domain.Repository, tx uow.UnitOfWork, n notification.Notifier, log *zap.Logger) *Usecase {
	if n == nil {
		n = notification.Nop{}
	}
	return &Usecase{repo: r, uow: tx, notifier: n, log: logger.OrNop(log), now: time.Now}
}

func (u *Usecase) CreatePlan(ctx context.Context, in CreatePlanInput) (*PlanDTO, error) {
	uid, err := uuid.Parse(in.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: user id must be a UUID", domain.ErrInvalidPlan)
	}
	if !in.TargetAmount.IsPositive() || !in.FixedDepositAmount.IsPositive() {
		return nil, fmt.Errorf("%w: amounts must be positive", domain.ErrInvalidPlan)
	}
	if in.FixedDepositAmount.GreaterThan(in.TargetAmount) {
		return nil, fmt.Errorf("%w: deposit exceeds target", domain.ErrInvalidPlan)
	}
	if in.FrequencyDays < 1 {
		return nil, fmt.Errorf("%w: frequency must be at least one day", domain.ErrInvalidPlan)
	}

	start := u.now().UTC()
	if in.StartDate != nil {
		start = in.StartDate.UTC()
	}
	p := &domain.Plan{
		PlanID:             id.NewID32(),
		UserID:             uid.String(),
		Name:               in.Name,
		TargetAmount:       in.TargetAmount.Round(2),
		FixedDepositAmount: in.FixedDepositAmount.Round(2),
		FrequencyDays:      in.FrequencyDays,
		NextDepositDate:    start,
		Status:             domain.PlanActive,
	}
	if err := u.repo.CreatePlan(ctx, p); err != nil {
		return nil, err
	}
	u.log.Info("savings plan created", zap.String("plan_id", p.PlanID), zap.String("user_id", p.UserID))
	return toPlanDTO(p), nil
}

func (u *Usecase) Get(ctx context.Context, planID string) (*PlanDTO, error) {
	p, err := u.repo.GetByPlanID(ctx, planID)
	if err != nil {
		return nil, err
	}
	return toPlanDTO(p), nil
}

func (u *Usecase) ListByUser(ctx context.Context, userID string) ([]PlanDTO, error) {
	plans, err := u.repo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]PlanDTO, 0, len(plans))
	for i := range plans {
		out = append(out, *toPlanDTO(&plans[i]))
	}
	return out, nil
}

// Deposit records a completed deposit and credits the plan in one
// transaction. A reference reused on the same plan returns the stored
// transaction; one recorded elsewhere is ErrReferenceInUse.
func (u *Usecase) Deposit(ctx context.Context, in DepositInput) (*DepositDTO, error) {
	var (
		tx   *domain.Transaction
		plan *domain.Plan
	)
	in.UserID = normalizeUser(in.UserID)
	err := WithRetry(ctx, func() error {
		return u.uow.WithinTx(ctx, func(r uow.Repos) error {
			var err error
			tx, plan, err = ApplyDeposit(ctx, r.Savings, in, domain.TxCompleted, u.now())
			return err
		})
	})

	switch {
	case errors.Is(err, domain.ErrDuplicateDeposit):
		return u.existing(ctx, in)
	case err != nil:
		return nil, err
	}

	u.log.Info("savings deposit applied",
		zap.String("plan_id", plan.PlanID),
		zap.String("reference", in.Reference),
		zap.String("balance", plan.CurrentBalance.String()))
	u.notifier.Notify(ctx, plan.UserID, notification.KindSavingsDeposit, "Dépôt reçu",
		fmt.Sprintf("Dépôt de %s reçu sur votre plan %s.", tx.Amount.StringFixed(0), plan.Name))

	return &DepositDTO{
		TransactionID: tx.TransactionID,
		Reference:     tx.Reference,
		Amount:        tx.Amount,
		Status:        string(tx.Status),
		Plan:          toPlanDTO(plan),
	}, nil
}

// existing replays the deposit stored under in.Reference, provided it was
// made on the same plan by the same user.
func (u *Usecase) existing(ctx context.Context, in DepositInput) (*DepositDTO, error) {
	tx, err := u.repo.GetTransactionByReference(ctx, in.Reference)
	if err != nil {
		return nil, err
	}
	p, err := u.repo.GetByID(ctx, tx.PlanID)
	if err != nil {
		return nil, err
	}
	if p.PlanID != in.PlanID || (in.UserID != "" && tx.UserID != in.UserID) {
		u.log.Warn("deposit reference reused across plans",
			zap.String("reference", in.Reference),
			zap.String("plan_id", in.PlanID))
		return nil, domain.ErrReferenceInUse
	}
	out := &DepositDTO{
		TransactionID: tx.TransactionID,
		Reference:     tx.Reference,
		Amount:        tx.Amount,
		Status:        string(tx.Status),
		Duplicate:     true,
		Plan:          toPlanDTO(p),
	}
	return out, nil
}

// ListTransactions returns the plan's deposit log, oldest first.
func (u *Usecase) ListTransactions(ctx context.Context, planID string) ([]TransactionDTO, error) {
	p, err := u.repo.GetByPlanID(ctx, planID)
	if err != nil {
		return nil, err
	}
	txs, err := u.repo.ListTransactions(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	out := make([]TransactionDTO, 0, len(txs))
	for _, t := range txs {
		out = append(out, TransactionDTO{
			TransactionID: t.TransactionID,
			PlanID:        p.PlanID,
			Amount:        t.Amount,
			Type:          t.Type,
			Reference:     t.Reference,
			Status:        string(t.Status),
			CreatedAt:     t.CreatedAt,
		})
	}
	return out, nil
}

// RecomputeBalance re-derives the running totals from the completed
// transaction log.
func (u *Usecase) RecomputeBalance(ctx context.Context, planID string) (*PlanDTO, error) {
	var plan *domain.Plan
	err := WithRetry(ctx, func() error {
		return u.uow.WithinTx(ctx, func(r uow.Repos) error {
			p, err := r.Savings.GetByPlanID(ctx, planID)
			if err != nil {
				return err
			}
			sum, n, err := r.Savings.SumCompleted(ctx, p.ID)
			if err != nil {
				return err
			}
			expected := p.Version
			p.CurrentBalance = sum
			p.TotalDeposited = sum
			p.CompletedDeposits = n
			if p.Status == domain.PlanActive && sum.GreaterThanOrEqual(p.TargetAmount) {
				p.Status = domain.PlanCompleted
			}
			if err := r.Savings.UpdateBalance(ctx, p, expected); err != nil {
				return err
			}
			plan = p
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	u.log.Info("savings balance recomputed", zap.String("plan_id", planID), zap.String("balance", plan.CurrentBalance.String()))
	return toPlanDTO(plan), nil
}

// ApplyDeposit writes the transaction row and, for completed deposits, the
// credited plan through repo, which must be bound to the caller's transaction.
// Deposits on a plan that is no longer active fail with ErrPlanClosed.
func ApplyDeposit(ctx context.Context, repo domain.Repository, in DepositInput, status domain.TxStatus, at time.Time) (*domain.Transaction, *domain.Plan, error) {
	tx, p, _, err := applyDeposit(ctx, repo, in, status, at, false)
	return tx, p, err
}

// ApplySettledDeposit is ApplyDeposit for money the processor already
// collected: a closed plan is still credited and overpaid reports it.
func ApplySettledDeposit(ctx context.Context, repo domain.Repository, in DepositInput, status domain.TxStatus, at time.Time) (tx *domain.Transaction, p *domain.Plan, overpaid bool, err error) {
	return applyDeposit(ctx, repo, in, status, at, true)
}

func applyDeposit(ctx context.Context, repo domain.Repository, in DepositInput, status domain.TxStatus, at time.Time, settled bool) (*domain.Transaction, *domain.Plan, bool, error) {
	if !in.Amount.IsPositive() {
		return nil, nil, false, domain.ErrInvalidAmount
	}
	in.UserID = normalizeUser(in.UserID)
	if _, err := repo.GetTransactionByReference(ctx, in.Reference); err == nil {
		return nil, nil, false, domain.ErrDuplicateDeposit
	} else if !errors.Is(err, domain.ErrTransactionAbsent) {
		return nil, nil, false, err
	}
	p, err := repo.GetByPlanID(ctx, in.PlanID)
	if err != nil {
		return nil, nil, false, err
	}
	if in.UserID != "" && p.UserID != in.UserID {
		return nil, nil, false, ErrNotOwner
	}

	tx := &domain.Transaction{
		TransactionID: id.NewID32(),
		PlanID:        p.ID,
		UserID:        p.UserID,
		Amount:        in.Amount.Round(2),
		Type:          domain.TxTypeDeposit,
		Reference:     in.Reference,
		Status:        status,
	}
	overpaid := false
	if status == domain.TxCompleted {
		expected := p.Version
		if settled {
			overpaid, err = p.Settle(tx.Amount, at)
		} else {
			err = p.Credit(tx.Amount, at)
		}
		if err != nil {
			return nil, nil, false, err
		}
		if err := repo.UpdateBalance(ctx, p, expected); err != nil {
			return nil, nil, false, err
		}
	}
	if err := repo.CreateTransaction(ctx, tx); err != nil {
		return nil, nil, false, err
	}
	return tx, p, overpaid, nil
}

// normalizeUser lower-cases UUIDs the way they are stored.
func normalizeUser(s string) string {
	s = strings.TrimSpace(s)
	if uid, err := uuid.Parse(s); err == nil {
		return uid.String()
	}
	return strings.ToLower(s)
}

// WithRetry reruns fn while it fails with a version conflict.
func WithRetry(ctx context.Context, fn func() error) error {
	var err error
	for attempt := 0; attempt < MaxAttempts; attempt++ {
		if err = fn(); !errors.Is(err, domain.ErrVersionConflict) {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
	}
	return err
}
