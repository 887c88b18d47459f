package entity

import (
	"time"
)

type Booking struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Price     float64   `gorm:"not null" json:"price" validate:"required,gt=0"`
	Paid      *bool     `gorm:"not null;default:true" json:"paid"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"-"`

	// set for bookings reconciled from the payment processor
	CheckoutSessionID *string `gorm:"uniqueIndex" json:"checkoutSessionId,omitempty"`

	TourID uint  `gorm:"not null;index" json:"tourId" validate:"required"`
	Tour   *Tour `json:"tour,omitempty"`
	UserID uint  `gorm:"not null;index" json:"userId" validate:"required"`
	User   *User `json:"user,omitempty"`
}
