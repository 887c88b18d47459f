package repository

import (
	"github.com/mukhammadalimk/natours/entity"
	"github.com/mukhammadalimk/natours/utils"

	"gorm.io/gorm"
)

var BookingFields = utils.FieldMap{
	"price":     "price",
	"paid":      "paid",
	"tour":      "tour_id",
	"tourId":    "tour_id",
	"user":      "user_id",
	"userId":    "user_id",
	"createdAt": "created_at",
}

type BookingRepository struct {
	DB *gorm.DB
}

func NewBookingRepository(db *gorm.DB) *BookingRepository {
	return &BookingRepository{DB: db}
}

func bookingPreloads(db *gorm.DB) *gorm.DB {
	return db.
		Preload("User").
		Preload("Tour", func(db *gorm.DB) *gorm.DB { return db.Select("id", "name") })
}

func (r *BookingRepository) List(f *utils.APIFeatures) ([]entity.Booking, error) {
	var bookings []entity.Booking
	err := bookingPreloads(f.Apply(r.DB.Model(&entity.Booking{}))).Find(&bookings).Error
	return bookings, err
}

func (r *BookingRepository) FindByID(id uint) (*entity.Booking, error) {
	var b entity.Booking
	if err := bookingPreloads(r.DB).First(&b, id).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BookingRepository) FindBySessionID(sessionID string) (*entity.Booking, error) {
	var b entity.Booking
	if err := r.DB.Where("checkout_session_id = ?", sessionID).First(&b).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

// TourIDsByUser lists the distinct tours a user has booked.
func (r *BookingRepository) TourIDsByUser(userID uint) ([]uint, error) {
	var ids []uint
	err := r.DB.Model(&entity.Booking{}).Where("user_id = ?", userID).Distinct("tour_id").Pluck("tour_id", &ids).Error
	return ids, err
}

func (r *BookingRepository) Exists(tourID, userID uint) (bool, error) {
	var count int64
	err := r.DB.Model(&entity.Booking{}).Where("tour_id = ? AND user_id = ?", tourID, userID).Count(&count).Error
	return count > 0, err
}

func (r *BookingRepository) Create(b *entity.Booking) error {
	return r.DB.Omit("Tour", "User").Create(b).Error
}

func (r *BookingRepository) Update(id uint, updates map[string]any) error {
	res := r.DB.Model(&entity.Booking{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *BookingRepository) Delete(id uint) error {
	res := r.DB.Delete(&entity.Booking{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
