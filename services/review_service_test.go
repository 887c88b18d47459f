package services

import (
	"net/http"
	"testing"

	"github.com/mukhammadalimk/natours/entity"
	"github.com/mukhammadalimk/natours/testutil"
)

func (f *fixture) tourRatings(t *testing.T, id uint) (float64, int) {
	t.Helper()
	tour, err := f.tours.FindAny(id)
	if err != nil {
		t.Fatal(err)
	}
	return tour.RatingsAverage, tour.RatingsQuantity
}

func TestReviewCreateRecomputesAggregate(t *testing.T) {
	f := newFixture(t)
	tour := testutil.CreateTour(t, f.db, "The Forest Hiker")
	alice := testutil.CreateUser(t, f.db, "Alice", "alice@example.com", entity.RoleUser)
	bob := testutil.CreateUser(t, f.db, "Bob", "bob@example.com", entity.RoleUser)

	if _, err := f.reviews.Create(&CreateReviewReq{Review: "Great", Rating: 4, TourID: tour.ID, UserID: alice.ID}); err != nil {
		t.Fatal(err)
	}
	if _, err := f.reviews.Create(&CreateReviewReq{Review: "Meh", Rating: 3, TourID: tour.ID, UserID: bob.ID}); err != nil {
		t.Fatal(err)
	}

	avg, qty := f.tourRatings(t, tour.ID)
	if avg != 3.5 || qty != 2 {
		t.Errorf("aggregate = %v/%d, want 3.5/2", avg, qty)
	}
	if len(f.notifier.updates) != 2 {
		t.Fatalf("published %d updates", len(f.notifier.updates))
	}
	last := f.notifier.updates[1]
	if last != (RatingUpdate{TourID: tour.ID, RatingsAverage: 3.5, RatingsQuantity: 2}) {
		t.Errorf("last update = %+v", last)
	}
}

func TestReviewAverageIsRoundedToOneDecimal(t *testing.T) {
	f := newFixture(t)
	tour := testutil.CreateTour(t, f.db, "The Sea Explorer")
	for i, r := range []int{5, 4, 4} {
		u := testutil.CreateUser(t, f.db, "User", string(rune('a'+i))+"@example.com", entity.RoleUser)
		if _, err := f.reviews.Create(&CreateReviewReq{Review: "ok", Rating: r, TourID: tour.ID, UserID: u.ID}); err != nil {
			t.Fatal(err)
		}
	}
	if avg, qty := f.tourRatings(t, tour.ID); avg != 4.3 || qty != 3 {
		t.Errorf("aggregate = %v/%d, want 4.3/3", avg, qty)
	}
}

func TestReviewCreateRejectsSecondReview(t *testing.T) {
	f := newFixture(t)
	tour := testutil.CreateTour(t, f.db, "The Snow Adventurer")
	u := testutil.CreateUser(t, f.db, "Alice", "alice@example.com", entity.RoleUser)

	req := &CreateReviewReq{Review: "Great", Rating: 5, TourID: tour.ID, UserID: u.ID}
	if _, err := f.reviews.Create(req); err != nil {
		t.Fatal(err)
	}
	_, err := f.reviews.Create(req)
	wantIs(t, err, ErrAlreadyReviewed)
	if len(f.notifier.updates) != 1 {
		t.Errorf("rejected review published an update")
	}
}

func TestReviewCreateValidation(t *testing.T) {
	f := newFixture(t)
	tour := testutil.CreateTour(t, f.db, "The City Wanderer")
	u := testutil.CreateUser(t, f.db, "Alice", "alice@example.com", entity.RoleUser)

	_, err := f.reviews.Create(&CreateReviewReq{Review: "Great", Rating: 6, TourID: tour.ID, UserID: u.ID})
	wantAppError(t, err, http.StatusBadRequest, "Invalid input data. rating must be at most 5")

	_, err = f.reviews.Create(&CreateReviewReq{Review: "Great", Rating: 5, TourID: 999, UserID: u.ID})
	wantAppError(t, err, http.StatusNotFound, "No tour found with that ID")
}

func TestReviewUpdateOwnership(t *testing.T) {
	f := newFixture(t)
	tour := testutil.CreateTour(t, f.db, "The Park Camper")
	alice := testutil.CreateUser(t, f.db, "Alice", "alice@example.com", entity.RoleUser)
	bob := testutil.CreateUser(t, f.db, "Bob", "bob@example.com", entity.RoleUser)
	admin := testutil.CreateUser(t, f.db, "Admin", "admin@example.com", entity.RoleAdmin)

	rv, err := f.reviews.Create(&CreateReviewReq{Review: "Great", Rating: 5, TourID: tour.ID, UserID: alice.ID})
	if err != nil {
		t.Fatal(err)
	}

	two := 2
	_, err = f.reviews.Update(rv.ID, bob, &UpdateReviewReq{Rating: &two})
	wantAppError(t, err, http.StatusForbidden, "")

	updated, err := f.reviews.Update(rv.ID, admin, &UpdateReviewReq{Rating: &two})
	if err != nil {
		t.Fatal(err)
	}
	if updated.Rating != 2 {
		t.Errorf("rating = %d", updated.Rating)
	}
	if avg, qty := f.tourRatings(t, tour.ID); avg != 2 || qty != 1 {
		t.Errorf("aggregate = %v/%d", avg, qty)
	}

	text := "Changed my mind"
	if _, err := f.reviews.Update(rv.ID, alice, &UpdateReviewReq{Review: &text}); err != nil {
		t.Fatalf("owner update: %v", err)
	}
}

func TestReviewDeleteLastResetsDefaults(t *testing.T) {
	f := newFixture(t)
	tour := testutil.CreateTour(t, f.db, "The Wine Taster")
	alice := testutil.CreateUser(t, f.db, "Alice", "alice@example.com", entity.RoleUser)
	bob := testutil.CreateUser(t, f.db, "Bob", "bob@example.com", entity.RoleUser)

	rv, err := f.reviews.Create(&CreateReviewReq{Review: "Bad", Rating: 1, TourID: tour.ID, UserID: alice.ID})
	if err != nil {
		t.Fatal(err)
	}
	wantAppError(t, f.reviews.Delete(rv.ID, bob), http.StatusForbidden, "")

	if err := f.reviews.Delete(rv.ID, alice); err != nil {
		t.Fatal(err)
	}
	if avg, qty := f.tourRatings(t, tour.ID); avg != entity.DefaultRatingsAverage || qty != 0 {
		t.Errorf("aggregate = %v/%d, want defaults", avg, qty)
	}
	last := f.notifier.updates[len(f.notifier.updates)-1]
	if last.RatingsQuantity != 0 || last.RatingsAverage != 4.5 {
		t.Errorf("last update = %+v", last)
	}
}

func TestRecalcToursSkipsMissingTours(t *testing.T) {
	f := newFixture(t)
	tour := testutil.CreateTour(t, f.db, "The Forest Hiker")
	alice := testutil.CreateUser(t, f.db, "Alice", "alice@example.com", entity.RoleUser)
	testutil.CreateReview(t, f.db, tour.ID, alice.ID, 2)

	if err := f.reviews.RecalcTours([]uint{tour.ID + 100, tour.ID}); err != nil {
		t.Fatal(err)
	}
	if avg, qty := f.tourRatings(t, tour.ID); avg != 2 || qty != 1 {
		t.Errorf("ratings = %v/%d", avg, qty)
	}
}
