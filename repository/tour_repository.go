package repository

import (
	"time"

	"github.com/mukhammadalimk/natours/entity"
	"github.com/mukhammadalimk/natours/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var TourFields = utils.FieldMap{
	"name":            "name",
	"slug":            "slug",
	"duration":        "duration",
	"maxGroupSize":    "max_group_size",
	"difficulty":      "difficulty",
	"ratingsAverage":  "ratings_average",
	"ratingsQuantity": "ratings_quantity",
	"price":           "price",
	"priceDiscount":   "price_discount",
	"createdAt":       "created_at",
}

type TourRepository struct {
	DB *gorm.DB
}

func NewTourRepository(db *gorm.DB) *TourRepository {
	return &TourRepository{DB: db}
}

// visible hides secret tours.
func (r *TourRepository) visible() *gorm.DB {
	return r.DB.Model(&entity.Tour{}).Where("secret_tour = ?", false)
}

func guidesPreload(db *gorm.DB) *gorm.DB {
	return db.Where("active = ?", true)
}

func reviewAuthorPreload(db *gorm.DB) *gorm.DB {
	return db.Select("id", "name", "photo")
}

func (r *TourRepository) List(f *utils.APIFeatures) ([]entity.Tour, error) {
	var tours []entity.Tour
	err := f.Apply(r.visible()).
		Preload("Guides", guidesPreload).
		Find(&tours).Error
	return tours, err
}

func (r *TourRepository) detail() *gorm.DB {
	return r.visible().
		Preload("Guides", guidesPreload).
		Preload("Reviews", func(db *gorm.DB) *gorm.DB { return db.Order("created_at DESC") }).
		Preload("Reviews.User", reviewAuthorPreload)
}

// FindByID loads a visible tour with guides and reviews.
func (r *TourRepository) FindByID(id uint) (*entity.Tour, error) {
	var t entity.Tour
	if err := r.detail().First(&t, id).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TourRepository) FindBySlug(slug string) (*entity.Tour, error) {
	var t entity.Tour
	if err := r.detail().Where("slug = ?", slug).First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

// FindAny loads any tour, secret or not, without relations.
func (r *TourRepository) FindAny(id uint) (*entity.Tour, error) {
	var t entity.Tour
	if err := r.DB.First(&t, id).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

// Create inserts the tour and its guide references.
func (r *TourRepository) Create(t *entity.Tour, guideIDs []uint) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(t).Error; err != nil {
			return err
		}
		return replaceGuides(tx, t.ID, guideIDs)
	})
}

// Update saves every column of t; guide references are replaced when
// guideIDs is non-nil.
func (r *TourRepository) Update(t *entity.Tour, guideIDs []uint) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(t).Error; err != nil {
			return err
		}
		if guideIDs == nil {
			return nil
		}
		return replaceGuides(tx, t.ID, guideIDs)
	})
}

func replaceGuides(tx *gorm.DB, tourID uint, guideIDs []uint) error {
	if err := tx.Exec("DELETE FROM tour_guides WHERE tour_id = ?", tourID).Error; err != nil {
		return err
	}
	if len(guideIDs) == 0 {
		return nil
	}
	rows := make([]map[string]any, 0, len(guideIDs))
	for _, id := range guideIDs {
		rows = append(rows, map[string]any{"tour_id": tourID, "user_id": id})
	}
	return tx.Table("tour_guides").Create(rows).Error
}

// LockRatings takes the tour's row lock inside tx. Review writers call it
// first so aggregate recomputes for one tour run one at a time.
func (r *TourRepository) LockRatings(tx *gorm.DB, tourID uint) error {
	return lockTour(tx, tourID).Error
}

func lockTour(tx *gorm.DB, tourID uint) *gorm.DB {
	return tx.Clauses(clause.Locking{Strength: "UPDATE"}).Select("id").First(&entity.Tour{}, tourID)
}

// UpdateRatings writes the recomputed aggregate. Only the review service calls it.
func (r *TourRepository) UpdateRatings(tx *gorm.DB, tourID uint, quantity int, average float64) error {
	return tx.Model(&entity.Tour{}).Where("id = ?", tourID).
		Updates(map[string]any{"ratings_quantity": quantity, "ratings_average": average}).Error
}

// Delete removes the tour together with its reviews, bookings and guide links.
func (r *TourRepository) Delete(id uint) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("tour_id = ?", id).Delete(&entity.Review{}).Error; err != nil {
			return err
		}
		if err := tx.Where("tour_id = ?", id).Delete(&entity.Booking{}).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM tour_guides WHERE tour_id = ?", id).Error; err != nil {
			return err
		}
		res := tx.Delete(&entity.Tour{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// TourStat is one difficulty bucket of the tour statistics report.
type TourStat struct {
	Difficulty string  `json:"difficulty"`
	NumTours   int     `json:"numTours"`
	NumRatings int     `json:"numRatings"`
	AvgRating  float64 `json:"avgRating"`
	AvgPrice   float64 `json:"avgPrice"`
	MinPrice   float64 `json:"minPrice"`
	MaxPrice   float64 `json:"maxPrice"`
}

func (r *TourRepository) Stats(minRating float64) ([]TourStat, error) {
	var stats []TourStat
	err := r.visible().
		Select(`UPPER(difficulty) AS difficulty,
			COUNT(*) AS num_tours,
			COALESCE(SUM(ratings_quantity), 0) AS num_ratings,
			AVG(ratings_average) AS avg_rating,
			AVG(price) AS avg_price,
			MIN(price) AS min_price,
			MAX(price) AS max_price`).
		Where("ratings_average >= ?", minRating).
		Group("UPPER(difficulty)").
		Order("avg_price DESC").
		Scan(&stats).Error
	return stats, err
}

// TourDates is the name and start dates of a tour, for the monthly plan.
type TourDates struct {
	Name       string
	StartDates []time.Time
}

func (r *TourRepository) StartDates() ([]TourDates, error) {
	var tours []entity.Tour
	if err := r.visible().Select("id", "name", "start_dates").Find(&tours).Error; err != nil {
		return nil, err
	}
	out := make([]TourDates, 0, len(tours))
	for _, t := range tours {
		out = append(out, TourDates{Name: t.Name, StartDates: t.StartDates})
	}
	return out, nil
}

// WithinBox returns visible tours whose start location lies in the box.
func (r *TourRepository) WithinBox(minLat, maxLat, minLng, maxLng float64) ([]entity.Tour, error) {
	var tours []entity.Tour
	err := r.visible().
		Where("start_lat BETWEEN ? AND ?", minLat, maxLat).
		Where("start_lng BETWEEN ? AND ?", minLng, maxLng).
		Preload("Guides", guidesPreload).
		Find(&tours).Error
	return tours, err
}

// Locations returns id, name and start location of every visible tour.
func (r *TourRepository) Locations() ([]entity.Tour, error) {
	var tours []entity.Tour
	err := r.visible().Select("id", "name", "start_lat", "start_lng").Find(&tours).Error
	return tours, err
}
