package gormrepo

import (
	"context"

	"gorm.io/gorm"

	reviewDomain "abcampus-finance/internal/domain/review"
)

type ReviewRepository struct{ db *gorm.DB }

func NewReviewRepository(db *gorm.DB) *ReviewRepository { return &ReviewRepository{db: db} }

func (r *ReviewRepository) Create(ctx context.Context, rv *reviewDomain.Review) error {
	return r.db.WithContext(ctx).Create(rv).Error
}

func (r *ReviewRepository) GetByLoanID(ctx context.Context, loanNumericID uint64) (*reviewDomain.Review, error) {
	var out reviewDomain.Review
	res := r.db.WithContext(ctx).Where("loan_id = ?", loanNumericID).First(&out)
	return notFound(&out, res.Error, reviewDomain.ErrNotFound)
}

func (r *ReviewRepository) GetByReviewID(ctx context.Context, reviewID string) (*reviewDomain.Review, error) {
	var out reviewDomain.Review
	res := r.db.WithContext(ctx).Where("review_id = ?", reviewID).First(&out)
	return notFound(&out, res.Error, reviewDomain.ErrNotFound)
}
