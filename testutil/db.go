// Package testutil opens throwaway databases and inserts fixtures for tests.
package testutil

import (
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mukhammadalimk/natours/configs"
	"github.com/mukhammadalimk/natours/entity"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

const Password = "test1234"

var dbSeq int64

// NewDB opens a private in-memory SQLite database with the full schema.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, atomic.AddInt64(&dbSeq, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := configs.SetupDatabase(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

var passwordHash []byte

// CreateUser inserts an active user whose password is Password.
func CreateUser(t *testing.T, db *gorm.DB, name, email, role string) *entity.User {
	t.Helper()
	if passwordHash == nil {
		h, err := bcrypt.GenerateFromPassword([]byte(Password), bcrypt.MinCost)
		if err != nil {
			t.Fatalf("hash: %v", err)
		}
		passwordHash = h
	}
	u := &entity.User{Name: name, Email: email, Role: role, Password: string(passwordHash)}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("create user %s: %v", email, err)
	}
	return u
}

// TourOption tweaks a fixture tour before it is inserted.
type TourOption func(*entity.Tour)

func WithPrice(price float64) TourOption {
	return func(tr *entity.Tour) { tr.Price = price }
}

func WithStart(lat, lng float64) TourOption {
	return func(tr *entity.Tour) { tr.StartLocation.Lat, tr.StartLocation.Lng = lat, lng }
}

func WithDates(dates ...time.Time) TourOption {
	return func(tr *entity.Tour) { tr.StartDates = datatypes.JSONSlice[time.Time](dates) }
}

func WithDifficulty(d string) TourOption {
	return func(tr *entity.Tour) { tr.Difficulty = d }
}

func Secret() TourOption {
	return func(tr *entity.Tour) { tr.SecretTour = true }
}

// CreateTour inserts a valid tour named name.
func CreateTour(t *testing.T, db *gorm.DB, name string, opts ...TourOption) *entity.Tour {
	t.Helper()
	tr := &entity.Tour{
		Name:           name,
		Duration:       5,
		MaxGroupSize:   10,
		Difficulty:     entity.DifficultyEasy,
		RatingsAverage: entity.DefaultRatingsAverage,
		Price:          497,
		Summary:        "A test tour",
		ImageCover:     "tour-1-cover.jpg",
		StartLocation:  entity.GeoPoint{Lat: 25.781842, Lng: -80.128473, Description: "Miami, USA"},
	}
	for _, o := range opts {
		o(tr)
	}
	if err := db.Omit(clause.Associations).Create(tr).Error; err != nil {
		t.Fatalf("create tour %s: %v", name, err)
	}
	return tr
}

// CreateReview inserts a review without touching the tour aggregate.
func CreateReview(t *testing.T, db *gorm.DB, tourID, userID uint, rating int) *entity.Review {
	t.Helper()
	rv := &entity.Review{Review: "Lovely", Rating: rating, TourID: tourID, UserID: userID}
	if err := db.Omit(clause.Associations).Create(rv).Error; err != nil {
		t.Fatalf("create review: %v", err)
	}
	return rv
}
