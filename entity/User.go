package entity

import (
	"time"
)

const (
	RoleUser      = "user"
	RoleGuide     = "guide"
	RoleLeadGuide = "lead-guide"
	RoleAdmin     = "admin"
)

type User struct {
	ID                uint       `gorm:"primaryKey" json:"id"`
	Name              string     `gorm:"not null" json:"name" validate:"required"`
	Email             string     `gorm:"uniqueIndex;not null" json:"email" validate:"required,email"`
	Photo             string     `gorm:"not null;default:default.jpg" json:"photo"`
	Role              string     `gorm:"not null;default:user" json:"role" validate:"oneof=user guide lead-guide admin"`
	Password          string     `gorm:"not null" json:"-"`
	PasswordChangedAt *time.Time `json:"-"`
	Active            *bool      `gorm:"not null;default:true" json:"-"` // pointer so gorm does not skip false
	CreatedAt         time.Time  `json:"-"`
	UpdatedAt         time.Time  `json:"-"`

	// Relations - preload only when needed
	Reviews  []Review  `json:"-"`
	Bookings []Booking `json:"-"`
}

// ChangedPasswordAfter reports whether the password was changed after a
// token issued at issuedAt was signed.
func (u *User) ChangedPasswordAfter(issuedAt time.Time) bool {
	if u.PasswordChangedAt == nil {
		return false
	}
	return u.PasswordChangedAt.Truncate(time.Second).After(issuedAt)
}

func (u *User) IsActive() bool {
	return u.Active == nil || *u.Active
}
