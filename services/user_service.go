package services

import (
	"net/http"
	"strings"

	"github.com/mukhammadalimk/natours/entity"
	"github.com/mukhammadalimk/natours/repository"
	"github.com/mukhammadalimk/natours/utils"
)

var (
	ErrNotForPasswords = utils.NewAppError("This route is not for password updates. Please use /updateMyPassword.", http.StatusBadRequest)
	ErrUseSignup       = utils.NewAppError("This route is not defined! Please use /signup instead", http.StatusInternalServerError)
	errNoUser          = utils.NewAppError("No user found with that ID", http.StatusNotFound)
)

type UserService struct {
	Repo    *repository.UserRepository
	Reviews *ReviewService
}

func NewUserService(repo *repository.UserRepository, reviews *ReviewService) *UserService {
	return &UserService{Repo: repo, Reviews: reviews}
}

// UpdateUserReq carries the fields a user (or an admin) may change.
// Role is ignored for self-service updates.
type UpdateUserReq struct {
	Name            *string `json:"name"`
	Email           *string `json:"email"`
	Role            *string `json:"role"`
	Photo           string  `json:"-"`
	Password        string  `json:"password"`
	PasswordConfirm string  `json:"passwordConfirm"`
}

func (s *UserService) List(f *utils.APIFeatures) ([]entity.User, error) {
	return s.Repo.List(f)
}

func (s *UserService) Get(id uint) (*entity.User, error) {
	u, err := s.Repo.FindByID(id)
	if err != nil {
		return nil, notFoundAs(err, errNoUser)
	}
	return u, nil
}

// UpdateMe applies the filtered self-service fields: name, email and photo.
func (s *UserService) UpdateMe(userID uint, req *UpdateUserReq) (*entity.User, error) {
	if req.Password != "" || req.PasswordConfirm != "" {
		return nil, ErrNotForPasswords
	}
	req.Role = nil
	return s.update(userID, req)
}

// Update is the admin edit. It never touches passwords.
func (s *UserService) Update(userID uint, req *UpdateUserReq) (*entity.User, error) {
	req.Password, req.PasswordConfirm = "", ""
	return s.update(userID, req)
}

func (s *UserService) update(userID uint, req *UpdateUserReq) (*entity.User, error) {
	u, err := s.Repo.FindByID(userID)
	if err != nil {
		return nil, notFoundAs(err, errNoUser)
	}
	updates := map[string]any{}
	if req.Name != nil {
		u.Name = strings.TrimSpace(*req.Name)
		updates["name"] = u.Name
	}
	if req.Email != nil {
		u.Email = strings.ToLower(strings.TrimSpace(*req.Email))
		updates["email"] = u.Email
	}
	if req.Role != nil {
		u.Role = *req.Role
		updates["role"] = u.Role
	}
	if req.Photo != "" {
		u.Photo = req.Photo
		updates["photo"] = u.Photo
	}
	if len(updates) == 0 {
		return u, nil
	}
	if err := Validate(u); err != nil {
		return nil, err
	}
	if err := s.Repo.Update(userID, updates); err != nil {
		return nil, err
	}
	return u, nil
}

// DeleteMe deactivates the account; the user disappears from every lookup.
func (s *UserService) DeleteMe(userID uint) error {
	return s.Repo.Deactivate(userID)
}

// Delete removes the user for good and refreshes the ratings of every tour
// they had reviewed.
func (s *UserService) Delete(userID uint) error {
	tourIDs, err := s.Reviews.Repo.TourIDsByUser(userID)
	if err != nil {
		return err
	}
	if err := s.Repo.Delete(userID); err != nil {
		return notFoundAs(err, errNoUser)
	}
	return s.Reviews.RecalcTours(tourIDs)
}
