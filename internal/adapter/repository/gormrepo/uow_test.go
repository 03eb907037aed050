package gormrepo

import (
	"context"
	"errors"
	"testing"
	"time"

	loanDomain "abcampus-finance/internal/domain/loan"
	reviewDomain "abcampus-finance/internal/domain/review"
	"abcampus-finance/internal/domain/uow"
)

func makeReview(reviewID string, loanNumericID uint64, decision reviewDomain.Decision) *reviewDomain.Review {
	return &reviewDomain.Review{
		ReviewID:   reviewID,
		LoanID:     loanNumericID,
		Decision:   decision,
		ReviewerID: "admin-1",
		DecidedAt:  time.Now().UTC(),
	}
}

// ----------------------------- Tests -----------------------------

func TestGormUoW_WithinTx_Commit(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	guow := NewGormUoW(db)
	loanRepo := NewLoanRepository(db)
	reviewRepo := NewReviewRepository(db)

	err := guow.WithinTx(ctx, func(r uow.Repos) error {
		l := makeLoan("LN-COMMIT", userA, loanDomain.StatusPending)
		if err := r.Loans.Create(ctx, l); err != nil {
			return err
		}
		if l.ID == 0 {
			t.Fatalf("loan auto ID not set")
		}
		return r.Reviews.Create(ctx, makeReview("RV-COMMIT", l.ID, reviewDomain.DecisionApproved))
	})
	if err != nil {
		t.Fatalf("WithinTx commit err: %v", err)
	}

	if _, err := loanRepo.GetByLoanID(ctx, "LN-COMMIT"); err != nil {
		t.Fatalf("loan not visible after commit: %v", err)
	}
	if _, err := reviewRepo.GetByReviewID(ctx, "RV-COMMIT"); err != nil {
		t.Fatalf("review not visible after commit: %v", err)
	}
}

func TestGormUoW_WithinTx_Rollback(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	guow := NewGormUoW(db)
	loanRepo := NewLoanRepository(db)
	reviewRepo := NewReviewRepository(db)

	sentinel := errors.New("boom")

	_ = guow.WithinTx(ctx, func(r uow.Repos) error {
		l := makeLoan("LN-ROLL", userB, loanDomain.StatusPending)
		if err := r.Loans.Create(ctx, l); err != nil {
			return err
		}
		if err := r.Reviews.Create(ctx, makeReview("RV-ROLL", l.ID, reviewDomain.DecisionRejected)); err != nil {
			return err
		}
		return sentinel // force rollback
	})

	if _, err := loanRepo.GetByLoanID(ctx, "LN-ROLL"); !errors.Is(err, loanDomain.ErrNotFound) {
		t.Fatalf("expected loan not found after rollback, got %v", err)
	}
	if _, err := reviewRepo.GetByReviewID(ctx, "RV-ROLL"); !errors.Is(err, reviewDomain.ErrNotFound) {
		t.Fatalf("expected review not found after rollback, got %v", err)
	}
}

func TestGormUoW_WithinLoanTx_Commit(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	guow := NewGormUoW(db)
	loanRepo := NewLoanRepository(db)
	reviewRepo := NewReviewRepository(db)

	if err := loanRepo.Create(ctx, makeLoan("LN-TARGET", userA, loanDomain.StatusPending)); err != nil {
		t.Fatalf("seed loan: %v", err)
	}

	if err := guow.WithinLoanTx(ctx, "LN-TARGET", func(r uow.Repos, l *loanDomain.Loan) error {
		if l == nil || l.LoanID != "LN-TARGET" || l.Status != loanDomain.StatusPending {
			t.Fatalf("unexpected loan passed to fn: %+v", l)
		}
		if err := r.Reviews.Create(ctx, makeReview("RV-LOCK", l.ID, reviewDomain.DecisionApproved)); err != nil {
			return err
		}
		if err := l.Transition(loanDomain.StatusApproved, time.Now()); err != nil {
			return err
		}
		return r.Loans.Save(ctx, l)
	}); err != nil {
		t.Fatalf("WithinLoanTx commit err: %v", err)
	}

	gotLoan, err := loanRepo.GetByLoanID(ctx, "LN-TARGET")
	if err != nil {
		t.Fatalf("GetByLoanID post-commit: %v", err)
	}
	if gotLoan.Status != loanDomain.StatusApproved || gotLoan.ApprovedAt == nil {
		t.Fatalf("loan not approved, got=%s", gotLoan.Status)
	}
	rv, err := reviewRepo.GetByLoanID(ctx, gotLoan.ID)
	if err != nil || rv.ReviewID != "RV-LOCK" {
		t.Fatalf("review by loan: %+v %v", rv, err)
	}
}

func TestGormUoW_WithinLoanTx_Rollback(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	guow := NewGormUoW(db)
	loanRepo := NewLoanRepository(db)
	reviewRepo := NewReviewRepository(db)

	if err := loanRepo.Create(ctx, makeLoan("LN-RB-TGT", userB, loanDomain.StatusPending)); err != nil {
		t.Fatalf("seed loan: %v", err)
	}

	sentinel := errors.New("stop")

	_ = guow.WithinLoanTx(ctx, "LN-RB-TGT", func(r uow.Repos, l *loanDomain.Loan) error {
		if err := r.Reviews.Create(ctx, makeReview("RV-RB", l.ID, reviewDomain.DecisionApproved)); err != nil {
			return err
		}
		l.Status = loanDomain.StatusApproved
		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}
		return sentinel // force rollback
	})

	gotLoan, err := loanRepo.GetByLoanID(ctx, "LN-RB-TGT")
	if err != nil {
		t.Fatalf("post-rollback GetByLoanID: %v", err)
	}
	if gotLoan.Status != loanDomain.StatusPending {
		t.Fatalf("expected pending after rollback, got %s", gotLoan.Status)
	}
	if _, err := reviewRepo.GetByReviewID(ctx, "RV-RB"); !errors.Is(err, reviewDomain.ErrNotFound) {
		t.Fatalf("expected review absent after rollback, got %v", err)
	}
}

func TestGormUoW_WithinLoanTx_LoanNotFound(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	guow := NewGormUoW(db)

	err := guow.WithinLoanTx(ctx, "LN-NOPE", func(r uow.Repos, l *loanDomain.Loan) error {
		t.Fatalf("callback should not be called when loan missing")
		return nil
	})
	if !errors.Is(err, loanDomain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestReview_OnePerLoan(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	repo := NewReviewRepository(db)

	if err := repo.Create(ctx, makeReview("RV-1", 42, reviewDomain.DecisionApproved)); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := repo.Create(ctx, makeReview("RV-2", 42, reviewDomain.DecisionRejected)); err == nil {
		t.Fatalf("second review for the same loan must fail")
	}
	if _, err := repo.GetByLoanID(ctx, 7); !errors.Is(err, reviewDomain.ErrNotFound) {
		t.Fatalf("GetByLoanID missing: %v", err)
	}
}
