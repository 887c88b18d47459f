package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/mukhammadalimk/natours/entity"
	"github.com/mukhammadalimk/natours/payments"
	"github.com/mukhammadalimk/natours/repository"
	"github.com/mukhammadalimk/natours/utils"

	"gorm.io/gorm"
)

var errNoBooking = utils.NewAppError("No booking found with that ID", http.StatusNotFound)

type BookingService struct {
	Repo     *repository.BookingRepository
	TourRepo *repository.TourRepository
	UserRepo *repository.UserRepository
	Gateway  payments.Gateway
}

func NewBookingService(
	repo *repository.BookingRepository,
	tourRepo *repository.TourRepository,
	userRepo *repository.UserRepository,
	gateway payments.Gateway,
) *BookingService {
	return &BookingService{Repo: repo, TourRepo: tourRepo, UserRepo: userRepo, Gateway: gateway}
}

// ----- DTOs from Controller -----
type BookingReq struct {
	TourID uint    `json:"tour"`
	UserID uint    `json:"user"`
	Price  float64 `json:"price"`
	Paid   *bool   `json:"paid"`
}

// CheckoutSession opens a payment session for one seat on the tour.
// baseURL is scheme://host of the incoming request.
func (s *BookingService) CheckoutSession(ctx context.Context, tourID uint, user *entity.User, baseURL string) (*payments.Session, error) {
	tour, err := s.TourRepo.FindByID(tourID)
	if err != nil {
		return nil, notFoundAs(err, errNoTour)
	}
	return s.Gateway.CreateCheckoutSession(ctx, &payments.CheckoutRequest{
		TourID:        tour.ID,
		TourName:      tour.Name,
		Summary:       tour.Summary,
		ImageURL:      baseURL + utils.TourImageURL(tour.ImageCover),
		Price:         tour.Price,
		CustomerEmail: user.Email,
		SuccessURL:    baseURL + "/my-tours?alert=booking",
		CancelURL:     baseURL + "/tour/" + tour.Slug,
	})
}

// HandleWebhook verifies the event and books the tour for completed
// checkouts. Redelivered events do not create a second booking.
func (s *BookingService) HandleWebhook(payload []byte, signature string) error {
	ev, err := s.Gateway.ParseWebhook(payload, signature)
	if err != nil {
		return utils.Wrap(err, "Webhook error: "+err.Error(), http.StatusBadRequest)
	}
	if ev.Type != payments.EventCheckoutCompleted || ev.Checkout == nil {
		return nil
	}
	b, err := s.bookFromCheckout(ev.Checkout)
	if err != nil {
		// acknowledged anyway so the processor stops retrying
		log.Printf("⚠️ checkout %s not booked: %v", ev.Checkout.SessionID, err)
		return nil
	}
	if b != nil {
		log.Printf("✅ booking %d created from checkout %s", b.ID, ev.Checkout.SessionID)
	}
	return nil
}

func (s *BookingService) bookFromCheckout(c *payments.CompletedCheckout) (*entity.Booking, error) {
	if c.SessionID != "" {
		if _, err := s.Repo.FindBySessionID(c.SessionID); err == nil {
			return nil, nil
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}
	if _, err := s.TourRepo.FindAny(c.TourID); err != nil {
		return nil, fmt.Errorf("tour %d: %w", c.TourID, err)
	}
	user, err := s.UserRepo.FindByEmail(c.CustomerEmail)
	if err != nil {
		return nil, fmt.Errorf("user %s: %w", c.CustomerEmail, err)
	}

	paid := true
	b := &entity.Booking{
		TourID: c.TourID,
		UserID: user.ID,
		Price:  payments.FromCents(c.AmountTotal),
		Paid:   &paid,
	}
	if c.SessionID != "" {
		id := c.SessionID
		b.CheckoutSessionID = &id
	}
	if err := s.Repo.Create(b); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, nil
		}
		return nil, err
	}
	return b, nil
}

// MyTours lists the tours the user has booked.
func (s *BookingService) MyTours(userID uint) ([]entity.Tour, error) {
	ids, err := s.Repo.TourIDsByUser(userID)
	if err != nil {
		return nil, err
	}
	tours := make([]entity.Tour, 0, len(ids))
	for _, id := range ids {
		t, err := s.TourRepo.FindByID(id)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		tours = append(tours, *t)
	}
	return tours, nil
}

func (s *BookingService) HasBooked(tourID, userID uint) (bool, error) {
	return s.Repo.Exists(tourID, userID)
}

// ----- admin CRUD -----

func (s *BookingService) List(f *utils.APIFeatures) ([]entity.Booking, error) {
	return s.Repo.List(f)
}

func (s *BookingService) Get(id uint) (*entity.Booking, error) {
	b, err := s.Repo.FindByID(id)
	if err != nil {
		return nil, notFoundAs(err, errNoBooking)
	}
	return b, nil
}

func (s *BookingService) Create(req *BookingReq) (*entity.Booking, error) {
	b := &entity.Booking{TourID: req.TourID, UserID: req.UserID, Price: req.Price, Paid: req.Paid}
	if b.Paid == nil {
		paid := true
		b.Paid = &paid
	}
	if err := Validate(b); err != nil {
		return nil, err
	}
	if _, err := s.TourRepo.FindAny(b.TourID); err != nil {
		return nil, notFoundAs(err, errNoTour)
	}
	if _, err := s.UserRepo.FindByID(b.UserID); err != nil {
		return nil, notFoundAs(err, errNoUser)
	}
	if err := s.Repo.Create(b); err != nil {
		return nil, err
	}
	return s.Repo.FindByID(b.ID)
}

func (s *BookingService) Update(id uint, req *BookingReq) (*entity.Booking, error) {
	updates := map[string]any{}
	if req.Price != 0 {
		if req.Price < 0 {
			return nil, utils.NewAppError("Invalid input data. price must be greater than 0", http.StatusBadRequest)
		}
		updates["price"] = req.Price
	}
	if req.Paid != nil {
		updates["paid"] = *req.Paid
	}
	if req.TourID != 0 {
		if _, err := s.TourRepo.FindAny(req.TourID); err != nil {
			return nil, notFoundAs(err, errNoTour)
		}
		updates["tour_id"] = req.TourID
	}
	if req.UserID != 0 {
		if _, err := s.UserRepo.FindByID(req.UserID); err != nil {
			return nil, notFoundAs(err, errNoUser)
		}
		updates["user_id"] = req.UserID
	}
	if len(updates) > 0 {
		if err := s.Repo.Update(id, updates); err != nil {
			return nil, notFoundAs(err, errNoBooking)
		}
	}
	return s.Get(id)
}

func (s *BookingService) Delete(id uint) error {
	return notFoundAs(s.Repo.Delete(id), errNoBooking)
}
