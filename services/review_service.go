package services

import (
	"errors"
	"log"
	"net/http"

	"github.com/mukhammadalimk/natours/entity"
	"github.com/mukhammadalimk/natours/repository"
	"github.com/mukhammadalimk/natours/utils"

	"gorm.io/gorm"
)

var ErrAlreadyReviewed = utils.NewAppError("You have already reviewed this tour.", http.StatusBadRequest)

// RatingUpdate is the recomputed aggregate of one tour.
type RatingUpdate struct {
	TourID          uint    `json:"tourId"`
	RatingsAverage  float64 `json:"ratingsAverage"`
	RatingsQuantity int     `json:"ratingsQuantity"`
}

// RatingNotifier receives every committed aggregate change.
type RatingNotifier interface {
	PublishRating(RatingUpdate)
}

type ReviewService struct {
	DB       *gorm.DB
	Repo     *repository.ReviewRepository
	TourRepo *repository.TourRepository
	Notifier RatingNotifier
}

func NewReviewService(db *gorm.DB, repo *repository.ReviewRepository, tourRepo *repository.TourRepository, notifier RatingNotifier) *ReviewService {
	return &ReviewService{DB: db, Repo: repo, TourRepo: tourRepo, Notifier: notifier}
}

// ----- DTOs from Controller -----
type CreateReviewReq struct {
	Review string `json:"review"`
	Rating int    `json:"rating"`
	TourID uint   `json:"tour"`
	UserID uint   `json:"user"`
}

type UpdateReviewReq struct {
	Review *string `json:"review"`
	Rating *int    `json:"rating" validate:"omitempty,min=1,max=5"`
}

func (s *ReviewService) List(f *utils.APIFeatures, tourID uint) ([]entity.Review, error) {
	return s.Repo.List(f, tourID)
}

func (s *ReviewService) Get(id uint) (*entity.Review, error) {
	return s.Repo.FindByID(id)
}

func (s *ReviewService) ListByUser(userID uint) ([]entity.Review, error) {
	return s.Repo.ListByUser(userID)
}

func (s *ReviewService) HasReviewed(tourID, userID uint) (bool, error) {
	return s.Repo.Exists(tourID, userID)
}

func (s *ReviewService) Create(req *CreateReviewReq) (*entity.Review, error) {
	rv := &entity.Review{
		Review: req.Review,
		Rating: req.Rating,
		TourID: req.TourID,
		UserID: req.UserID,
	}
	if err := Validate(rv); err != nil {
		return nil, err
	}
	if _, err := s.TourRepo.FindAny(rv.TourID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NewAppError("No tour found with that ID", http.StatusNotFound)
		}
		return nil, err
	}
	exists, err := s.Repo.Exists(rv.TourID, rv.UserID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrAlreadyReviewed
	}

	var update RatingUpdate
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := s.TourRepo.LockRatings(tx, rv.TourID); err != nil {
			return err
		}
		if err := s.Repo.Create(tx, rv); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrAlreadyReviewed
			}
			return err
		}
		update, err = s.recalc(tx, rv.TourID)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.publish(update)
	return rv, nil
}

// Update edits text and/or rating. A plain user may only edit their own review.
func (s *ReviewService) Update(id uint, actor *entity.User, req *UpdateReviewReq) (*entity.Review, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}
	rv, err := s.owned(id, actor)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if req.Review != nil {
		if *req.Review == "" {
			return nil, utils.NewAppError("Invalid input data. review is required", http.StatusBadRequest)
		}
		updates["review"] = *req.Review
	}
	if req.Rating != nil {
		updates["rating"] = *req.Rating
	}
	if len(updates) == 0 {
		return rv, nil
	}

	var update RatingUpdate
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := s.TourRepo.LockRatings(tx, rv.TourID); err != nil {
			return err
		}
		if err := s.Repo.Update(tx, id, updates); err != nil {
			return err
		}
		update, err = s.recalc(tx, rv.TourID)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.publish(update)
	return s.Repo.FindByID(id)
}

func (s *ReviewService) Delete(id uint, actor *entity.User) error {
	rv, err := s.owned(id, actor)
	if err != nil {
		return err
	}
	var update RatingUpdate
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := s.TourRepo.LockRatings(tx, rv.TourID); err != nil {
			return err
		}
		if err := s.Repo.Delete(tx, id); err != nil {
			return err
		}
		update, err = s.recalc(tx, rv.TourID)
		return err
	})
	if err != nil {
		return err
	}
	s.publish(update)
	return nil
}

// RecalcTours recomputes the aggregate of each tour, e.g. after a bulk import
// or after a user's reviews were removed.
func (s *ReviewService) RecalcTours(tourIDs []uint) error {
	for _, id := range tourIDs {
		var update RatingUpdate
		err := s.DB.Transaction(func(tx *gorm.DB) error {
			if err := s.TourRepo.LockRatings(tx, id); err != nil {
				return err
			}
			var err error
			update, err = s.recalc(tx, id)
			return err
		})
		if errors.Is(err, gorm.ErrRecordNotFound) {
			continue
		}
		if err != nil {
			return err
		}
		s.publish(update)
	}
	return nil
}

func (s *ReviewService) owned(id uint, actor *entity.User) (*entity.Review, error) {
	rv, err := s.Repo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if actor != nil && actor.Role == entity.RoleUser && rv.UserID != actor.ID {
		return nil, utils.ErrForbidden
	}
	return rv, nil
}

func (s *ReviewService) recalc(tx *gorm.DB, tourID uint) (RatingUpdate, error) {
	qty, avg, err := s.Repo.CalcAverageRatings(tx, tourID)
	if err != nil {
		return RatingUpdate{}, err
	}
	if err := s.TourRepo.UpdateRatings(tx, tourID, qty, avg); err != nil {
		return RatingUpdate{}, err
	}
	return RatingUpdate{TourID: tourID, RatingsAverage: avg, RatingsQuantity: qty}, nil
}

func (s *ReviewService) publish(u RatingUpdate) {
	if s.Notifier == nil {
		return
	}
	log.Printf("⭐ tour %d rating %.1f (%d reviews)", u.TourID, u.RatingsAverage, u.RatingsQuantity)
	s.Notifier.PublishRating(u)
}
