package repository

import (
	"math"

	"github.com/mukhammadalimk/natours/entity"
	"github.com/mukhammadalimk/natours/utils"

	"gorm.io/gorm"
)

var ReviewFields = utils.FieldMap{
	"rating":    "rating",
	"tour":      "tour_id",
	"tourId":    "tour_id",
	"user":      "user_id",
	"userId":    "user_id",
	"createdAt": "created_at",
}

type ReviewRepository struct {
	DB *gorm.DB
}

func NewReviewRepository(db *gorm.DB) *ReviewRepository {
	return &ReviewRepository{DB: db}
}

// List returns reviews (of one tour when tourID != 0) with the author's name and photo.
func (r *ReviewRepository) List(f *utils.APIFeatures, tourID uint) ([]entity.Review, error) {
	db := r.DB.Model(&entity.Review{})
	if tourID != 0 {
		db = db.Where("tour_id = ?", tourID)
	}
	var reviews []entity.Review
	err := f.Apply(db).Preload("User", reviewAuthorPreload).Find(&reviews).Error
	return reviews, err
}

func (r *ReviewRepository) FindByID(id uint) (*entity.Review, error) {
	var rv entity.Review
	if err := r.DB.Preload("User", reviewAuthorPreload).First(&rv, id).Error; err != nil {
		return nil, err
	}
	return &rv, nil
}

// ListByUser returns a user's reviews with the reviewed tour's name and slug.
func (r *ReviewRepository) ListByUser(userID uint) ([]entity.Review, error) {
	var reviews []entity.Review
	err := r.DB.Where("user_id = ?", userID).
		Preload("Tour", func(db *gorm.DB) *gorm.DB { return db.Select("id", "name", "slug", "image_cover") }).
		Order("created_at DESC").
		Find(&reviews).Error
	return reviews, err
}

func (r *ReviewRepository) Exists(tourID, userID uint) (bool, error) {
	var count int64
	err := r.DB.Model(&entity.Review{}).Where("tour_id = ? AND user_id = ?", tourID, userID).Count(&count).Error
	return count > 0, err
}

// TourIDsByUser lists the tours a user has reviewed.
func (r *ReviewRepository) TourIDsByUser(userID uint) ([]uint, error) {
	var ids []uint
	err := r.DB.Model(&entity.Review{}).Where("user_id = ?", userID).Pluck("tour_id", &ids).Error
	return ids, err
}

func (r *ReviewRepository) Create(tx *gorm.DB, rv *entity.Review) error {
	return tx.Omit("Tour", "User").Create(rv).Error
}

func (r *ReviewRepository) Update(tx *gorm.DB, id uint, updates map[string]any) error {
	return tx.Model(&entity.Review{}).Where("id = ?", id).Updates(updates).Error
}

func (r *ReviewRepository) Delete(tx *gorm.DB, id uint) error {
	res := tx.Delete(&entity.Review{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// CalcAverageRatings counts and averages the ratings of a tour. With no
// reviews it returns 0 and the default average.
func (r *ReviewRepository) CalcAverageRatings(tx *gorm.DB, tourID uint) (int, float64, error) {
	var agg struct {
		Count int
		Avg   *float64
	}
	err := tx.Model(&entity.Review{}).
		Select("COUNT(*) AS count, AVG(rating) AS avg").
		Where("tour_id = ?", tourID).
		Scan(&agg).Error
	if err != nil {
		return 0, 0, err
	}
	if agg.Count == 0 || agg.Avg == nil {
		return 0, entity.DefaultRatingsAverage, nil
	}
	return agg.Count, math.Round(*agg.Avg*10) / 10, nil
}
