package service

import (
	"context"
	"fmt"

	"speedgarage/internal/models"
	"speedgarage/internal/observability"
	"speedgarage/internal/repository"
)

// ReviewService implements review CRUD with author-only mutation and the
// idempotent like toggle.
type ReviewService struct {
	reviewRepo repository.ReviewRepository
	carRepo    repository.CarRepository
}

// NewReviewService creates a new review service.
func NewReviewService(reviewRepo repository.ReviewRepository, carRepo repository.CarRepository) *ReviewService {
	return &ReviewService{
		reviewRepo: reviewRepo,
		carRepo:    carRepo,
	}
}

// CreateReviewInput is the payload for creating a review. AuthorID is always
// the caller's identity; any author supplied by the client is discarded
// before this point.
type CreateReviewInput struct {
	AuthorID uint
	CarID    uint
	Rating   int
	Text     string
}

// UpdateReviewInput is the payload for editing a review. Nil fields are left
// unchanged.
type UpdateReviewInput struct {
	CallerID uint
	ReviewID uint
	Rating   *int
	Text     *string
}

func validateReviewFields(rating int, text string) error {
	if !models.ValidRating(rating) {
		return models.NewValidationError(fmt.Sprintf("Rating must be between %d and %d", models.MinRating, models.MaxRating))
	}
	if len(text) > models.MaxReviewTextLen {
		return models.NewValidationError(fmt.Sprintf("Review text must not exceed %d characters", models.MaxReviewTextLen))
	}
	return nil
}

// authorizeWrite is the ownership guard: a pure decision over the caller and
// the stored author. It never mutates anything.
func authorizeWrite(callerID uint, review *models.Review) error {
	if callerID != review.AuthorID {
		return models.NewForbiddenError("Only the author may modify this review")
	}
	return nil
}

// CreateReview validates rating and text before anything is persisted and
// force-sets the author to the caller.
func (s *ReviewService) CreateReview(ctx context.Context, in CreateReviewInput) (*models.Review, error) {
	if err := validateReviewFields(in.Rating, in.Text); err != nil {
		return nil, err
	}

	if _, err := s.carRepo.GetByID(ctx, in.CarID); err != nil {
		if repository.IsNotFound(err) {
			return nil, models.NewNotFoundError("Car", in.CarID)
		}
		return nil, err
	}

	review := &models.Review{
		AuthorID: in.AuthorID,
		CarID:    in.CarID,
		Rating:   in.Rating,
		Text:     in.Text,
	}
	if err := s.reviewRepo.Create(ctx, review); err != nil {
		return nil, err
	}
	return s.reviewRepo.GetByID(ctx, review.ID, in.AuthorID)
}

// GetReview loads a review with its computed like fields.
func (s *ReviewService) GetReview(ctx context.Context, id uint, currentUserID uint) (*models.Review, error) {
	review, err := s.reviewRepo.GetByID(ctx, id, currentUserID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, models.NewNotFoundError("Review", id)
		}
		return nil, err
	}
	return review, nil
}

// ListReviews is public: anonymous callers get liked_by_me=false.
func (s *ReviewService) ListReviews(ctx context.Context, query repository.ListReviewsQuery) ([]*models.Review, int64, error) {
	return s.reviewRepo.List(ctx, query)
}

// UpdateReview edits rating/text. Only the stored author may proceed; anyone
// else gets Forbidden and nothing is written. created_at never changes.
func (s *ReviewService) UpdateReview(ctx context.Context, in UpdateReviewInput) (*models.Review, error) {
	review, err := s.GetReview(ctx, in.ReviewID, in.CallerID)
	if err != nil {
		return nil, err
	}
	if err := authorizeWrite(in.CallerID, review); err != nil {
		return nil, err
	}

	if in.Rating != nil {
		review.Rating = *in.Rating
	}
	if in.Text != nil {
		review.Text = *in.Text
	}
	if err := validateReviewFields(review.Rating, review.Text); err != nil {
		return nil, err
	}

	if err := s.reviewRepo.Update(ctx, review); err != nil {
		return nil, err
	}
	return s.reviewRepo.GetByID(ctx, review.ID, in.CallerID)
}

// DeleteReview removes a review; only the stored author may proceed.
func (s *ReviewService) DeleteReview(ctx context.Context, callerID, reviewID uint) error {
	review, err := s.GetReview(ctx, reviewID, callerID)
	if err != nil {
		return err
	}
	if err := authorizeWrite(callerID, review); err != nil {
		return err
	}
	return s.reviewRepo.Delete(ctx, reviewID)
}

// LikeReview adds the caller to the review's liked-by set. Liking twice is
// the same as liking once.
func (s *ReviewService) LikeReview(ctx context.Context, callerID, reviewID uint) (*models.Review, error) {
	if _, err := s.GetReview(ctx, reviewID, callerID); err != nil {
		return nil, err
	}
	if err := s.reviewRepo.Like(ctx, callerID, reviewID); err != nil {
		return nil, err
	}
	observability.RecordLikeToggle("like")
	return s.reviewRepo.GetByID(ctx, reviewID, callerID)
}

// UnlikeReview removes the caller from the liked-by set; unliking a review
// the caller never liked is a no-op, not an error.
func (s *ReviewService) UnlikeReview(ctx context.Context, callerID, reviewID uint) (*models.Review, error) {
	if _, err := s.GetReview(ctx, reviewID, callerID); err != nil {
		return nil, err
	}
	if err := s.reviewRepo.Unlike(ctx, callerID, reviewID); err != nil {
		return nil, err
	}
	observability.RecordLikeToggle("unlike")
	return s.reviewRepo.GetByID(ctx, reviewID, callerID)
}
