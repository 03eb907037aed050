package loan

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"abcampus-finance/internal/config"
	"abcampus-finance/internal/domain/loan"
	"abcampus-finance/internal/domain/notification"
	"abcampus-finance/internal/domain/payment"
	"abcampus-finance/internal/domain/uow"
	"abcampus-finance/internal/infrastructure/logger"
	"abcampus-finance/pkg/id"
)

type Usecase struct {
	repo     loan.Repository
	payments payment.Repository
	uow      uow.UnitOfWork
	notifier notification.Notifier
	policy   config.LoanPolicy
	log      *zap.Logger
	now      func() time.Time
}

func NewUsecase(r loan.Repository, p payment.Repository, tx uow.UnitOfWork, n notification.Notifier, policy config.LoanPolicy, log *zap.Logger) *Usecase {
	if n == nil {
		n = notification.Nop{}
	}
	return &Usecase{
		repo:     r,
		payments: p,
		uow:      tx,
		notifier: n,
		policy:   policy,
		log:      logger.OrNop(log),
		now:      time.Now,
	}
}

// Submit files a new pending loan. The open-slot unique index settles
// concurrent submissions for the same user.
func (u *Usecase) Submit(ctx context.Context, in SubmitLoanInput) (*LoanDTO, error) {
	uid, err := uuid.Parse(in.UserID)
	if err != nil {
		return nil, loan.ErrInvalidUserID
	}
	userID := uid.String()

	if err := u.checkPolicy(in); err != nil {
		return nil, err
	}

	open, err := u.repo.GetOpenLoanByUserID(ctx, userID)
	switch {
	case err == nil:
		return nil, fmt.Errorf("%w: %s", loan.ErrOpenLoanExists, open.LoanID)
	case !errors.Is(err, loan.ErrNotFound):
		return nil, err
	}

	now := u.now().UTC()
	l := &loan.Loan{
		LoanID:          id.NewID32(),
		UserID:          userID,
		Principal:       in.Amount.Round(2),
		InterestRate:    u.policy.InterestRate,
		DurationDays:    in.DurationDays,
		Purpose:         in.Purpose,
		Status:          loan.StatusPending,
		OpenSlot:        &userID,
		StatusUpdatedAt: now,
	}
	if err := u.repo.Create(ctx, l); err != nil {
		return nil, err
	}

	u.log.Info("loan submitted",
		zap.String("loan_id", l.LoanID),
		zap.String("user_id", userID),
		zap.String("amount", l.Principal.String()))
	return toDTO(l), nil
}

func (u *Usecase) checkPolicy(in SubmitLoanInput) error {
	if !in.Amount.IsPositive() {
		return fmt.Errorf("%w: amount must be positive", loan.ErrOutOfPolicy)
	}
	if in.Amount.LessThan(u.policy.MinAmount) || in.Amount.GreaterThan(u.policy.MaxAmount) {
		return fmt.Errorf("%w: amount must be between %s and %s", loan.ErrOutOfPolicy, u.policy.MinAmount, u.policy.MaxAmount)
	}
	if in.DurationDays < 1 || (u.policy.MaxDurationDays > 0 && in.DurationDays > u.policy.MaxDurationDays) {
		return fmt.Errorf("%w: duration must be between 1 and %d days", loan.ErrOutOfPolicy, u.policy.MaxDurationDays)
	}
	return nil
}

func (u *Usecase) Get(ctx context.Context, loanID string) (*LoanDTO, error) {
	l, err := u.repo.GetByLoanID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	return toDTO(l), nil
}

func (u *Usecase) ListByUser(ctx context.Context, userID string) ([]LoanDTO, error) {
	loans, err := u.repo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]LoanDTO, 0, len(loans))
	for i := range loans {
		out = append(out, *toDTO(&loans[i]))
	}
	return out, nil
}

// CanRequestNewLoan is false while the user holds a pending, approved,
// active or overdue loan.
func (u *Usecase) CanRequestNewLoan(ctx context.Context, userID string) (*EligibilityDTO, error) {
	out := &EligibilityDTO{UserID: userID, CanRequest: true}
	open, err := u.repo.GetOpenLoanByUserID(ctx, userID)
	switch {
	case err == nil:
		out.CanRequest = false
		out.OpenLoanID = open.LoanID
		out.OpenLoanStatus = string(open.Status)
	case !errors.Is(err, loan.ErrNotFound):
		return nil, err
	}
	return out, nil
}

func (u *Usecase) ListPayments(ctx context.Context, loanID string) ([]PaymentDTO, error) {
	l, err := u.repo.GetByLoanID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	ps, err := u.payments.ListByLoan(ctx, l.ID)
	if err != nil {
		return nil, err
	}
	out := make([]PaymentDTO, 0, len(ps))
	for i := range ps {
		out = append(out, toPaymentDTO(&ps[i]))
	}
	return out, nil
}

// MarkOverdue moves active loans past their due date to overdue and
// returns the ids it moved. Each loan is re-read under lock.
func (u *Usecase) MarkOverdue(ctx context.Context) ([]string, error) {
	now := u.now().UTC()
	due, err := u.repo.ListActiveDueBefore(ctx, now)
	if err != nil {
		return nil, err
	}

	moved := make([]string, 0, len(due))
	for _, candidate := range due {
		var owner string
		err := u.uow.WithinLoanTx(ctx, candidate.LoanID, func(r uow.Repos, l *loan.Loan) error {
			if l.Status != loan.StatusActive || l.DueAt == nil || !l.DueAt.Before(now) {
				return nil
			}
			if err := l.Transition(loan.StatusOverdue, now); err != nil {
				return err
			}
			owner = l.UserID
			return r.Loans.Save(ctx, l)
		})
		if err != nil {
			u.log.Error("mark overdue failed", zap.String("loan_id", candidate.LoanID), zap.Error(err))
			return moved, err
		}
		if owner == "" {
			continue
		}
		moved = append(moved, candidate.LoanID)
		u.notifier.Notify(ctx, owner, notification.KindLoanOverdue,
			"Prêt en retard",
			fmt.Sprintf("Votre prêt %s a dépassé sa date d'échéance.", candidate.LoanID))
	}

	if len(moved) > 0 {
		u.log.Info("loans marked overdue", zap.Int("count", len(moved)))
	}
	return moved, nil
}
