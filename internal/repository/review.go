package repository

import (
	"context"
	"strings"

	"speedgarage/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ListReviewsQuery carries filtering, ordering and pagination for review listings.
// CurrentUserID feeds the computed liked_by_me field; zero means anonymous.
type ListReviewsQuery struct {
	Limit         int
	Offset        int
	CarID         uint // 0 = all cars
	AuthorID      uint // 0 = all authors
	Search        string
	Ordering      string // "rating", "created_at", "car_year"; "-" prefix for descending
	CurrentUserID uint
}

// ReviewRepository defines the interface for review data operations
type ReviewRepository interface {
	Create(ctx context.Context, review *models.Review) error
	GetByID(ctx context.Context, id uint, currentUserID uint) (*models.Review, error)
	List(ctx context.Context, query ListReviewsQuery) ([]*models.Review, int64, error)
	Update(ctx context.Context, review *models.Review) error
	Delete(ctx context.Context, id uint) error
	IsLiked(ctx context.Context, userID, reviewID uint) (bool, error)
	Like(ctx context.Context, userID, reviewID uint) error
	Unlike(ctx context.Context, userID, reviewID uint) error
}

// reviewRepository implements ReviewRepository
type reviewRepository struct {
	db *gorm.DB
}

// NewReviewRepository creates a new review repository
func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

// applyReviewDetails selects the review row plus the computed like fields.
// total_likes is a COUNT subquery and liked_by_me an EXISTS subquery, both
// evaluated per request so concurrent toggles are always visible.
func (r *reviewRepository) applyReviewDetails(db *gorm.DB, currentUserID uint) *gorm.DB {
	selectQuery := "reviews.*, " +
		"(SELECT COUNT(*) FROM review_likes WHERE review_likes.review_id = reviews.id) as total_likes"

	if currentUserID != 0 {
		return db.Select(selectQuery+
			", EXISTS(SELECT 1 FROM review_likes WHERE review_likes.review_id = reviews.id AND review_likes.user_id = ?) as liked_by_me",
			currentUserID)
	}

	return db.Select(selectQuery + ", false as liked_by_me")
}

var reviewOrderings = map[string]string{
	"rating":     "reviews.rating",
	"created_at": "reviews.created_at",
	"car_year":   "cars.year",
}

func (r *reviewRepository) applyOrdering(db *gorm.DB, ordering string) *gorm.DB {
	direction := "ASC"
	if strings.HasPrefix(ordering, "-") {
		direction = "DESC"
		ordering = ordering[1:]
	}

	column, ok := reviewOrderings[ordering]
	if !ok {
		return db.Order("reviews.created_at DESC")
	}
	return db.Order(column + " " + direction)
}

// applyFilters adds the car/author/search constraints shared by the listing
// and its count query. The cars join is only added when a filter needs it.
func (r *reviewRepository) applyFilters(db *gorm.DB, query ListReviewsQuery) *gorm.DB {
	needsCarJoin := query.Search != "" || strings.TrimPrefix(query.Ordering, "-") == "car_year"
	if needsCarJoin {
		db = db.Joins("JOIN cars ON cars.id = reviews.car_id")
	}
	if query.CarID != 0 {
		db = db.Where("reviews.car_id = ?", query.CarID)
	}
	if query.AuthorID != 0 {
		db = db.Where("reviews.author_id = ?", query.AuthorID)
	}
	if query.Search != "" {
		pattern := "%" + strings.ToLower(query.Search) + "%"
		db = db.Where(
			"LOWER(cars.brand) LIKE ? OR LOWER(cars.model) LIKE ? OR LOWER(reviews.text) LIKE ?",
			pattern, pattern, pattern,
		)
	}
	return db
}

func (r *reviewRepository) Create(ctx context.Context, review *models.Review) error {
	return r.db.WithContext(ctx).Create(review).Error
}

func (r *reviewRepository) GetByID(ctx context.Context, id uint, currentUserID uint) (*models.Review, error) {
	var review models.Review
	err := r.applyReviewDetails(r.db.WithContext(ctx), currentUserID).
		Preload("Author").
		Preload("Car").
		Preload("Car.Images").
		First(&review, id).Error
	if err != nil {
		return nil, err
	}
	decorateReviews([]*models.Review{&review})
	return &review, nil
}

func (r *reviewRepository) List(ctx context.Context, query ListReviewsQuery) ([]*models.Review, int64, error) {
	var count int64
	countQuery := r.applyFilters(r.db.WithContext(ctx).Model(&models.Review{}), query)
	if err := countQuery.Count(&count).Error; err != nil {
		return nil, 0, err
	}

	var reviews []*models.Review
	q := r.applyReviewDetails(r.db.WithContext(ctx), query.CurrentUserID).
		Preload("Author").
		Preload("Car").
		Preload("Car.Images")
	q = r.applyFilters(q, query)
	q = r.applyOrdering(q, query.Ordering)
	err := q.Limit(query.Limit).
		Offset(query.Offset).
		Find(&reviews).Error
	if err != nil {
		return nil, 0, err
	}
	decorateReviews(reviews)
	return reviews, count, nil
}

func (r *reviewRepository) Update(ctx context.Context, review *models.Review) error {
	// Save rewrites the row but created_at stays untouched: GORM never
	// updates the CreatedAt field on existing records. Associations are
	// omitted so a preloaded Author or Car is never written back.
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(review).Error
}

func (r *reviewRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("review_id = ?", id).Delete(&models.ReviewLike{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Review{}, id).Error
	})
}

func (r *reviewRepository) IsLiked(ctx context.Context, userID, reviewID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.ReviewLike{}).
		Where("user_id = ? AND review_id = ?", userID, reviewID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Like inserts the membership row if absent. ON CONFLICT DO NOTHING makes the
// toggle idempotent and race-free under the unique (user_id, review_id) index.
func (r *reviewRepository) Like(ctx context.Context, userID, reviewID uint) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.ReviewLike{UserID: userID, ReviewID: reviewID}).Error
}

// Unlike removes the membership row; deleting a non-member is a no-op.
func (r *reviewRepository) Unlike(ctx context.Context, userID, reviewID uint) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND review_id = ?", userID, reviewID).
		Delete(&models.ReviewLike{}).Error
}

// decorateReviews fills each embedded car's computed representative image.
func decorateReviews(reviews []*models.Review) {
	for _, review := range reviews {
		review.Car.Image = review.Car.RepresentativeImage()
	}
}
