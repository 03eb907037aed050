package savings

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	domain "abcampus-finance/internal/domain/savings"
)

func TestDeposit_ReferenceOwnedByAnotherPlan(t *testing.T) {
	uc, repo := newUsecase(t)
	ctx := context.Background()
	planA := createPlan(t, uc)
	planB, err := uc.CreatePlan(ctx, CreatePlanInput{
		UserID:             userB,
		Name:               "phone",
		TargetAmount:       decimal.NewFromInt(20000),
		FixedDepositAmount: decimal.NewFromInt(5000),
		FrequencyDays:      7,
	})
	if err != nil {
		t.Fatalf("CreatePlan B: %v", err)
	}

	if _, err := uc.Deposit(ctx, deposit(planA.PlanID, "ref-x", 5000)); err != nil {
		t.Fatalf("deposit A: %v", err)
	}
	in := DepositInput{PlanID: planB.PlanID, UserID: userB, Amount: decimal.NewFromInt(5000), Reference: "ref-x"}
	got, err := uc.Deposit(ctx, in)
	if !errors.Is(err, domain.ErrReferenceInUse) || got != nil {
		t.Fatalf("reused reference = %+v, %v", got, err)
	}

	b, err := repo.GetByPlanID(ctx, planB.PlanID)
	if err != nil || !b.CurrentBalance.IsZero() {
		t.Fatalf("plan B = %+v, %v", b, err)
	}
}

func TestDeposit_UpperCaseUserID(t *testing.T) {
	uc, _ := newUsecase(t)
	ctx := context.Background()
	plan := createPlan(t, uc)

	in := deposit(plan.PlanID, "up-1", 5000)
	in.UserID = strings.ToUpper(userA)
	first, err := uc.Deposit(ctx, in)
	if err != nil || first.Duplicate {
		t.Fatalf("first = %+v, %v", first, err)
	}
	again, err := uc.Deposit(ctx, in)
	if err != nil || !again.Duplicate || again.TransactionID != first.TransactionID {
		t.Fatalf("replay = %+v, %v", again, err)
	}
}

func TestApplySettledDeposit_ClosedPlanKeepsTheMoney(t *testing.T) {
	uc, repo := newUsecase(t)
	ctx := context.Background()
	plan := createPlan(t, uc)
	for _, ref := range []string{"s1", "s2", "s3", "s4"} {
		if _, err := uc.Deposit(ctx, deposit(plan.PlanID, ref, 5000)); err != nil {
			t.Fatalf("deposit %s: %v", ref, err)
		}
	}

	tx, p, overpaid, err := ApplySettledDeposit(ctx, repo, deposit(plan.PlanID, "late", 5000), domain.TxCompleted, time.Now())
	if err != nil {
		t.Fatalf("ApplySettledDeposit: %v", err)
	}
	if !overpaid || tx.Status != domain.TxCompleted || p.Status != domain.PlanCompleted {
		t.Fatalf("overpaid=%v tx=%+v plan status=%s", overpaid, tx, p.Status)
	}

	stored, err := repo.GetByPlanID(ctx, plan.PlanID)
	if err != nil {
		t.Fatalf("GetByPlanID: %v", err)
	}
	sum, n, err := repo.SumCompleted(ctx, stored.ID)
	if err != nil || n != 5 || !sum.Equal(stored.CurrentBalance) || !sum.Equal(decimal.NewFromInt(25000)) {
		t.Fatalf("log sum %s (%d) vs balance %s: %v", sum, n, stored.CurrentBalance, err)
	}

	// client deposits are still refused
	if _, _, err := ApplyDeposit(ctx, repo, deposit(plan.PlanID, "late-2", 5000), domain.TxCompleted, time.Now()); !errors.Is(err, domain.ErrPlanClosed) {
		t.Fatalf("ApplyDeposit on closed plan err = %v", err)
	}
}

func TestListTransactions(t *testing.T) {
	uc, _ := newUsecase(t)
	ctx := context.Background()
	plan := createPlan(t, uc)
	for _, ref := range []string{"l1", "l2"} {
		if _, err := uc.Deposit(ctx, deposit(plan.PlanID, ref, 1000)); err != nil {
			t.Fatalf("deposit %s: %v", ref, err)
		}
	}

	list, err := uc.ListTransactions(ctx, plan.PlanID)
	if err != nil || len(list) != 2 {
		t.Fatalf("ListTransactions = %+v, %v", list, err)
	}
	if list[0].Reference != "l1" || list[1].PlanID != plan.PlanID || list[0].Status != string(domain.TxCompleted) {
		t.Fatalf("list = %+v", list)
	}
	if _, err := uc.ListTransactions(ctx, "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("missing plan err = %v", err)
	}
}
