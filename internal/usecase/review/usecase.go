package review

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	domainLoan "abcampus-finance/internal/domain/loan"
	"abcampus-finance/internal/domain/notification"
	domainReview "abcampus-finance/internal/domain/review"
	"abcampus-finance/internal/domain/uow"
	"abcampus-finance/internal/infrastructure/logger"
	"abcampus-finance/pkg/id"
)

type Usecase struct {
	uow      uow.UnitOfWork
	notifier notification.Notifier
	log      *zap.Logger
	now      func() time.Time
}

func NewUsecase(tx uow.UnitOfWork, n notification.Notifier, log *zap.Logger) *Usecase {
	if n == nil {
		n = notification.Nop{}
	}
	return &Usecase{uow: tx, notifier: n, log: logger.OrNop(log), now: time.Now}
}

func (u *Usecase) Approve(ctx context.Context, in ReviewInput) (*ReviewDTO, error) {
	return u.decide(ctx, in, domainReview.DecisionApproved)
}

func (u *Usecase) Reject(ctx context.Context, in ReviewInput) (*ReviewDTO, error) {
	return u.decide(ctx, in, domainReview.DecisionRejected)
}

func (u *Usecase) decide(ctx context.Context, in ReviewInput, decision domainReview.Decision) (*ReviewDTO, error) {
	target := domainLoan.StatusApproved
	if decision == domainReview.DecisionRejected {
		target = domainLoan.StatusRejected
	}

	var (
		dto   *ReviewDTO
		owner string
	)
	err := u.uow.WithinLoanTx(ctx, in.LoanID, func(r uow.Repos, l *domainLoan.Loan) error {
		// a stored decision wins over the status check so repeats read as "already reviewed"
		if _, err := r.Reviews.GetByLoanID(ctx, l.ID); err == nil {
			return domainLoan.ErrAlreadyReviewed
		} else if !errors.Is(err, domainReview.ErrNotFound) {
			return err
		}

		now := u.now().UTC()
		if err := l.Transition(target, now); err != nil {
			return err
		}

		rv := &domainReview.Review{
			ReviewID:   id.NewID32(),
			LoanID:     l.ID, // numeric FK
			Decision:   decision,
			ReviewerID: in.ReviewerID,
			Reason:     in.Reason,
			DecidedAt:  now,
		}
		if err := r.Reviews.Create(ctx, rv); err != nil {
			return err
		}
		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}

		owner = l.UserID
		dto = &ReviewDTO{
			ReviewID:   rv.ReviewID,
			LoanID:     l.LoanID, // public id
			Decision:   string(decision),
			LoanStatus: string(l.Status),
			Reason:     rv.Reason,
			DecidedAt:  rv.DecidedAt,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	u.log.Info("loan reviewed",
		zap.String("loan_id", dto.LoanID),
		zap.String("decision", dto.Decision),
		zap.String("reviewer_id", in.ReviewerID))

	if decision == domainReview.DecisionApproved {
		u.notifier.Notify(ctx, owner, notification.KindLoanApproved, "Prêt approuvé",
			fmt.Sprintf("Votre demande de prêt %s a été approuvée.", dto.LoanID))
	} else {
		u.notifier.Notify(ctx, owner, notification.KindLoanRejected, "Prêt refusé",
			fmt.Sprintf("Votre demande de prêt %s a été refusée.", dto.LoanID))
	}
	return dto, nil
}
