package entity

import (
	"time"
)

// Review is unique per (tour, user); its rating feeds the tour aggregate.
type Review struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Review    string    `gorm:"type:text;not null" json:"review" validate:"required"`
	Rating    int       `gorm:"not null;check:rating >= 1 AND rating <= 5" json:"rating" validate:"required,min=1,max=5"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"-"`

	TourID uint  `gorm:"not null;uniqueIndex:idx_reviews_tour_user,priority:1" json:"tourId" validate:"required"`
	Tour   *Tour `json:"tour,omitempty"`
	UserID uint  `gorm:"not null;uniqueIndex:idx_reviews_tour_user,priority:2;index" json:"userId" validate:"required"`
	User   *User `json:"user,omitempty"`
}
