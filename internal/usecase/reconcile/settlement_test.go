package reconcile

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	domainPayment "abcampus-finance/internal/domain/payment"
	domainSavings "abcampus-finance/internal/domain/savings"
	loanuc "abcampus-finance/internal/usecase/loan"
	savingsuc "abcampus-finance/internal/usecase/savings"
)

func (f *fixture) count(t *testing.T, model any, where string, args ...any) int64 {
	t.Helper()
	var n int64
	if err := f.db.Model(model).Where(where, args...).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

func TestApply_DepositOnClosedPlanIsRecordedOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	plan, err := f.savings.CreatePlan(ctx, savingsuc.CreatePlanInput{
		UserID:             userA,
		Name:               "fees",
		TargetAmount:       decimal.NewFromInt(10000),
		FixedDepositAmount: decimal.NewFromInt(5000),
		FrequencyDays:      30,
	})
	if err != nil {
		t.Fatalf("CreatePlan: %v", err)
	}
	deposit := func(id string, amount int64) Transaction {
		return Transaction{ExternalID: id, Status: "approved", Amount: decimal.NewFromInt(amount), PlanID: plan.PlanID, UserID: userA}
	}

	res, err := f.uc.Apply(ctx, deposit("a", 10000))
	if err != nil || res.PlanStatus != "completed" || res.Overpaid {
		t.Fatalf("closing deposit = %+v, %v", res, err)
	}

	res, err = f.uc.Apply(ctx, deposit("b", 5000))
	if err != nil || !res.Applied || !res.Overpaid || res.PlanStatus != "completed" {
		t.Fatalf("late deposit = %+v, %v", res, err)
	}
	res, err = f.uc.Apply(ctx, deposit("b", 5000))
	if err != nil || !res.Duplicate {
		t.Fatalf("redelivered late deposit = %+v, %v", res, err)
	}

	if n := f.count(t, &domainSavings.Transaction{}, "reference = ?", "b"); n != 1 {
		t.Fatalf("savings transactions for b = %d, want 1", n)
	}
	if n := f.count(t, &domainPayment.ProcessedTransaction{}, "external_id = ?", "b"); n != 1 {
		t.Fatalf("ledger rows for b = %d, want 1", n)
	}
	got, err := f.savings.Get(ctx, plan.PlanID)
	if err != nil || !got.CurrentBalance.Equal(decimal.NewFromInt(15000)) || got.CompletedDeposits != 2 {
		t.Fatalf("plan = %+v, %v", got, err)
	}
}

func TestApply_RejectsNonPositiveSettledAmount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	loanID := f.approvedLoan(t)

	for _, amount := range []int64{0, -100} {
		if _, err := f.uc.Apply(ctx, approvedTx("zero", loanID, amount)); !errors.Is(err, ErrInvalidTransaction) {
			t.Fatalf("amount %d err = %v", amount, err)
		}
	}
	if n := f.paymentCount(t); n != 0 {
		t.Fatalf("payments = %d", n)
	}
	if n := f.count(t, &domainPayment.ProcessedTransaction{}, "external_id = ?", "zero"); n != 0 {
		t.Fatalf("ledger rows = %d", n)
	}
}

func TestApply_FlagsPaymentOnPendingLoan(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	dto, err := f.loans.Submit(ctx, loanuc.SubmitLoanInput{
		UserID:       userA,
		Amount:       decimal.NewFromInt(50000),
		DurationDays: 30,
		Purpose:      "books",
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	tx := approvedTx("early-1", dto.LoanID, 1000)
	tx.UserID = strings.ToUpper(userA)
	res, err := f.uc.Apply(ctx, tx)
	if err != nil || !res.Applied || !res.Flagged || res.LoanStatus != "pending" {
		t.Fatalf("result = %+v, %v", res, err)
	}
	if n := f.paymentCount(t); n != 1 {
		t.Fatalf("payments = %d, want 1", n)
	}
}
