package services

import (
	"errors"
	"testing"

	"github.com/mukhammadalimk/natours/repository"
	"github.com/mukhammadalimk/natours/testutil"
	"github.com/mukhammadalimk/natours/utils"
	"gorm.io/gorm"
)

type fakeNotifier struct {
	updates []RatingUpdate
}

func (f *fakeNotifier) PublishRating(u RatingUpdate) {
	f.updates = append(f.updates, u)
}

type fixture struct {
	db       *gorm.DB
	users    *repository.UserRepository
	tours    *repository.TourRepository
	reviews  *ReviewService
	notifier *fakeNotifier
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewDB(t)
	n := &fakeNotifier{}
	tours := repository.NewTourRepository(db)
	return &fixture{
		db:       db,
		users:    repository.NewUserRepository(db),
		tours:    tours,
		reviews:  NewReviewService(db, repository.NewReviewRepository(db), tours, n),
		notifier: n,
	}
}

// wantAppError fails unless err is an AppError with the given status and message.
func wantAppError(t *testing.T, err error, status int, message string) {
	t.Helper()
	ae, ok := utils.AsAppError(err)
	if !ok {
		t.Fatalf("expected AppError %d %q, got %v", status, message, err)
	}
	if ae.StatusCode != status || (message != "" && ae.Message != message) {
		t.Fatalf("got %d %q, want %d %q", ae.StatusCode, ae.Message, status, message)
	}
}

func wantIs(t *testing.T, err, target error) {
	t.Helper()
	if !errors.Is(err, target) {
		t.Fatalf("err = %v, want %v", err, target)
	}
}
