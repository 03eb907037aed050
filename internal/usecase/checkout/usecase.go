package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"abcampus-finance/internal/domain/loan"
	"abcampus-finance/internal/domain/savings"
	"abcampus-finance/internal/infrastructure/logger"
	"abcampus-finance/internal/usecase/reconcile"
)

var ErrInvalidCheckout = errors.New("invalid checkout request")

// Gateway opens a hosted checkout with the payment processor.
type Gateway interface {
	StartCheckout(ctx context.Context, o Order) (*Session, error)
}

type Usecase struct {
	loans     loan.Repository
	plans     savings.Repository
	gateway   Gateway
	publicKey string
	log       *zap.Logger
}

func NewUsecase(loans loan.Repository, plans savings.Repository, gw Gateway, publicKey string, log *zap.Logger) *Usecase {
	return &Usecase{loans: loans, plans: plans, gateway: gw, publicKey: publicKey, log: logger.OrNop(log)}
}

func (u *Usecase) Create(ctx context.Context, in CreateInput) (*CheckoutDTO, error) {
	if !in.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be positive", ErrInvalidCheckout)
	}
	// stored owners are lower-case UUIDs
	if uid, err := uuid.Parse(strings.TrimSpace(in.UserID)); err == nil {
		in.UserID = uid.String()
	}

	var (
		order Order
		err   error
	)
	switch {
	case in.LoanID != "" && in.PlanID != "":
		return nil, fmt.Errorf("%w: loanId and planId are exclusive", ErrInvalidCheckout)
	case in.LoanID != "":
		order, err = u.loanOrder(ctx, in)
	case in.PlanID != "":
		order, err = u.planOrder(ctx, in)
	default:
		return nil, fmt.Errorf("%w: loanId or planId required", ErrInvalidCheckout)
	}
	if err != nil {
		return nil, err
	}

	s, err := u.gateway.StartCheckout(ctx, order)
	if err != nil {
		u.log.Error("checkout creation failed",
			zap.String("user_id", in.UserID),
			zap.String("loan_id", in.LoanID),
			zap.String("plan_id", in.PlanID),
			zap.Error(err))
		return nil, err
	}
	u.log.Info("checkout created",
		zap.String("transaction_id", s.TransactionID),
		zap.String("user_id", in.UserID),
		zap.String("amount", in.Amount.String()))

	return &CheckoutDTO{
		Success:       true,
		URL:           s.URL,
		TransactionID: s.TransactionID,
		PublicKey:     u.publicKey,
	}, nil
}

func (u *Usecase) loanOrder(ctx context.Context, in CreateInput) (Order, error) {
	l, err := u.loans.GetByLoanID(ctx, in.LoanID)
	if err != nil {
		return Order{}, err
	}
	if l.UserID != in.UserID {
		return Order{}, loan.ErrNotOwner
	}
	if !l.Repayable() {
		return Order{}, loan.ErrNotRepayable
	}
	desc := in.Description
	if desc == "" {
		desc = fmt.Sprintf("Remboursement prêt %s", l.LoanID)
	}
	return Order{
		Description: desc,
		Amount:      in.Amount,
		Customer:    in.Customer,
		Metadata: map[string]string{
			"loan_id": l.LoanID,
			"user_id": l.UserID,
			"type":    reconcile.PurposeLoanRepayment,
		},
	}, nil
}

func (u *Usecase) planOrder(ctx context.Context, in CreateInput) (Order, error) {
	p, err := u.plans.GetByPlanID(ctx, in.PlanID)
	if err != nil {
		return Order{}, err
	}
	if p.UserID != in.UserID {
		return Order{}, loan.ErrNotOwner
	}
	if p.Status != savings.PlanActive {
		return Order{}, savings.ErrPlanClosed
	}
	desc := in.Description
	if desc == "" {
		desc = fmt.Sprintf("Épargne %s", p.Name)
	}
	return Order{
		Description: desc,
		Amount:      in.Amount,
		Customer:    in.Customer,
		Metadata: map[string]string{
			"plan_id": p.PlanID,
			"user_id": p.UserID,
			"type":    reconcile.PurposeSavingsDeposit,
		},
	}, nil
}
