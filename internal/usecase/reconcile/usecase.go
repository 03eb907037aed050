package reconcile

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	domainLoan "abcampus-finance/internal/domain/loan"
	"abcampus-finance/internal/domain/notification"
	domainPayment "abcampus-finance/internal/domain/payment"
	domainSavings "abcampus-finance/internal/domain/savings"
	"abcampus-finance/internal/domain/uow"
	"abcampus-finance/internal/infrastructure/logger"
	savingsuc "abcampus-finance/internal/usecase/savings"
	"abcampus-finance/pkg/id"
)

var ErrInvalidTransaction = errors.New("transaction carries no loan or plan reference")

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

// Apply records the final outcome of a processor transaction exactly once.
// Non-final statuses are acknowledged without any write.
func (u *Usecase) Apply(ctx context.Context, t Transaction) (*Result, error) {
	if t.ExternalID == "" {
		return nil, fmt.Errorf("%w: missing transaction id", ErrInvalidTransaction)
	}
	outcome := OutcomeOf(t.Status)
	res := &Result{ExternalID: t.ExternalID, Outcome: string(outcome), LoanID: t.LoanID, PlanID: t.PlanID}
	if outcome == OutcomePending {
		res.Ignored = true
		u.log.Debug("non-final transaction ignored", zap.String("transaction_id", t.ExternalID), zap.String("status", t.Status))
		return res, nil
	}

	if outcome == OutcomeSucceeded && !t.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: settled amount must be positive", ErrInvalidTransaction)
	}

	var err error
	switch {
	case t.LoanID != "":
		err = u.applyLoan(ctx, t, outcome, res)
	case t.PlanID != "":
		err = u.applyDeposit(ctx, t, outcome, res)
	default:
		return nil, ErrInvalidTransaction
	}

	switch {
	case errors.Is(err, domainPayment.ErrAlreadyProcessed), errors.Is(err, domainSavings.ErrDuplicateDeposit):
		res.Duplicate = true
		u.log.Info("transaction already reconciled", zap.String("transaction_id", t.ExternalID))
		return res, nil
	case err != nil:
		u.log.Error("reconciliation failed", zap.String("transaction_id", t.ExternalID), zap.Error(err))
		return nil, err
	}
	res.Applied = true
	u.log.Info("transaction reconciled",
		zap.String("transaction_id", t.ExternalID),
		zap.String("outcome", res.Outcome),
		zap.String("loan_status", res.LoanStatus),
		zap.String("plan_status", res.PlanStatus))
	return res, nil
}

func (u *Usecase) mark(ctx context.Context, r uow.Repos, t Transaction, purpose string, outcome Outcome, at time.Time) error {
	return r.Ledger.MarkProcessed(ctx, &domainPayment.ProcessedTransaction{
		ExternalID:  t.ExternalID,
		Purpose:     purpose,
		Outcome:     string(outcome),
		ProcessedAt: at,
	})
}

func (u *Usecase) applyLoan(ctx context.Context, t Transaction, outcome Outcome, res *Result) error {
	now := u.now().UTC()
	var (
		owner      string
		completed  bool
		prevStatus domainLoan.Status
	)
	err := u.uow.WithinLoanTx(ctx, t.LoanID, func(r uow.Repos, l *domainLoan.Loan) error {
		if err := u.mark(ctx, r, t, PurposeLoanRepayment, outcome, now); err != nil {
			if errors.Is(err, domainPayment.ErrAlreadyProcessed) {
				if p, perr := r.Payments.GetByTransactionID(ctx, t.ExternalID); perr == nil {
					res.PaymentID = p.PaymentID
				}
			}
			return err
		}
		if t.UserID != "" && !strings.EqualFold(t.UserID, l.UserID) {
			return domainLoan.ErrNotOwner
		}
		prevStatus = l.Status
		res.Flagged = outcome == OutcomeSucceeded && !l.Repayable()

		p := &domainPayment.Payment{
			PaymentID:     id.NewID32(),
			LoanID:        l.ID, // numeric FK
			UserID:        l.UserID,
			Amount:        t.Amount.Round(2),
			TransactionID: t.ExternalID,
			Method:        domainPayment.MethodMobileMoney,
			Status:        domainPayment.StatusFailed,
		}
		if outcome == OutcomeSucceeded {
			p.Status = domainPayment.StatusCompleted
			paid := now
			if t.PaidAt != nil {
				paid = t.PaidAt.UTC()
			}
			p.PaidAt = &paid
		}
		if err := r.Payments.Create(ctx, p); err != nil {
			return err
		}
		res.PaymentID = p.PaymentID
		owner = l.UserID

		if outcome == OutcomeSucceeded {
			changed, err := settle(ctx, r, l, now)
			if err != nil {
				return err
			}
			if changed {
				if err := r.Loans.Save(ctx, l); err != nil {
					return err
				}
			}
			completed = l.Status == domainLoan.StatusCompleted
		}
		res.LoanStatus = string(l.Status)
		return nil
	})
	if err != nil {
		return err
	}
	if res.Flagged {
		u.log.Warn("payment settled on a loan not open for repayment",
			zap.String("transaction_id", t.ExternalID),
			zap.String("loan_id", t.LoanID),
			zap.String("loan_status", string(prevStatus)),
			zap.String("amount", t.Amount.String()))
	}

	switch {
	case outcome == OutcomeFailed:
		u.notifier.Notify(ctx, owner, notification.KindPaymentFailed, "Paiement échoué",
			fmt.Sprintf("Le paiement %s pour le prêt %s n'a pas abouti.", t.ExternalID, t.LoanID))
	case completed:
		u.notifier.Notify(ctx, owner, notification.KindLoanCompleted, "Prêt remboursé",
			fmt.Sprintf("Votre prêt %s est entièrement remboursé.", t.LoanID))
	default:
		u.notifier.Notify(ctx, owner, notification.KindPaymentReceived, "Paiement reçu",
			fmt.Sprintf("Paiement de %s reçu pour le prêt %s.", t.Amount.StringFixed(0), t.LoanID))
	}
	return nil
}

// settle advances the loan after a successful payment: an approved loan
// becomes active, and an active loan whose completed payments reach the
// total due becomes completed. Overdue loans keep their status.
func settle(ctx context.Context, r uow.Repos, l *domainLoan.Loan, at time.Time) (bool, error) {
	changed := false
	if l.Status == domainLoan.StatusApproved {
		if err := l.Transition(domainLoan.StatusActive, at); err != nil {
			return false, err
		}
		changed = true
	}
	if l.Status != domainLoan.StatusActive {
		return changed, nil
	}
	paid, err := r.Payments.SumCompletedByLoan(ctx, l.ID)
	if err != nil {
		return false, err
	}
	if paid.GreaterThanOrEqual(l.TotalDue()) {
		if err := l.Transition(domainLoan.StatusCompleted, at); err != nil {
			return false, err
		}
		changed = true
	}
	return changed, nil
}

func (u *Usecase) applyDeposit(ctx context.Context, t Transaction, outcome Outcome, res *Result) error {
	status := domainSavings.TxFailed
	if outcome == OutcomeSucceeded {
		status = domainSavings.TxCompleted
	}
	var (
		plan     *domainSavings.Plan
		overpaid bool
	)
	err := savingsuc.WithRetry(ctx, func() error {
		return u.uow.WithinTx(ctx, func(r uow.Repos) error {
			now := u.now().UTC()
			if err := u.mark(ctx, r, t, PurposeSavingsDeposit, outcome, now); err != nil {
				return err
			}
			_, p, over, err := savingsuc.ApplySettledDeposit(ctx, r.Savings, savingsuc.DepositInput{
				PlanID:    t.PlanID,
				UserID:    t.UserID,
				Amount:    t.Amount,
				Reference: t.ExternalID,
			}, status, now)
			if err != nil {
				return err
			}
			plan, overpaid = p, over
			return nil
		})
	})
	if err != nil {
		return err
	}
	res.PlanStatus = string(plan.Status)
	res.Overpaid = overpaid

	if overpaid {
		u.log.Warn("deposit settled on a closed savings plan",
			zap.String("transaction_id", t.ExternalID),
			zap.String("plan_id", plan.PlanID),
			zap.String("plan_status", string(plan.Status)),
			zap.String("amount", t.Amount.String()))
		u.notifier.Notify(ctx, plan.UserID, notification.KindSavingsDeposit, "Dépôt reçu sur un plan clôturé",
			fmt.Sprintf("Dépôt de %s reçu sur votre plan %s, déjà clôturé. Il vous sera remboursé.", t.Amount.StringFixed(0), plan.Name))
	} else if outcome == OutcomeSucceeded {
		u.notifier.Notify(ctx, plan.UserID, notification.KindSavingsDeposit, "Dépôt reçu",
			fmt.Sprintf("Dépôt de %s reçu sur votre plan %s.", t.Amount.StringFixed(0), plan.Name))
	} else {
		u.notifier.Notify(ctx, plan.UserID, notification.KindPaymentFailed, "Dépôt échoué",
			fmt.Sprintf("Le dépôt %s sur votre plan %s n'a pas abouti.", t.ExternalID, plan.Name))
	}
	return nil
}
