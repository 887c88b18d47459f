package services

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/mukhammadalimk/natours/entity"
	"github.com/mukhammadalimk/natours/repository"
	"github.com/mukhammadalimk/natours/utils"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrMissingCredentials  = utils.NewAppError("Please provide email and password!", http.StatusBadRequest)
	ErrBadCredentials      = utils.NewAppError("Incorrect email or password", http.StatusUnauthorized)
	ErrWrongPassword       = utils.NewAppError("Your current password is wrong.", http.StatusUnauthorized)
	ErrUserGone            = utils.NewAppError("The user belonging to this token does no longer exist.", http.StatusUnauthorized)
	ErrPasswordChanged     = utils.NewAppError("User recently changed password! Please log in again.", http.StatusUnauthorized)
	ErrPasswordsNotSame    = utils.NewAppError("Invalid input data. Passwords are not the same!", http.StatusBadRequest)
	ErrPasswordTooShort    = utils.NewAppError("Invalid input data. password must have at least 8 characters", http.StatusBadRequest)
	errHashPasswordFailure = errors.New("hash password failed")
)

const minPasswordLength = 8

// AuthService handles signup, login and the token checks behind protect.
type AuthService struct {
	userRepo  *repository.UserRepository
	jwtSecret string
	jwtTTL    time.Duration
	now       func() time.Time
}

func NewAuthService(repo *repository.UserRepository, secret string, ttl time.Duration) *AuthService {
	return &AuthService{
		userRepo:  repo,
		jwtSecret: secret,
		jwtTTL:    ttl,
		now:       time.Now,
	}
}

type SignupReq struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"passwordConfirm"`
}

type UpdatePasswordReq struct {
	PasswordCurrent string `json:"passwordCurrent"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"passwordConfirm"`
}

func checkNewPassword(password, confirm string) error {
	if len(password) < minPasswordLength {
		return ErrPasswordTooShort
	}
	if password != confirm {
		return ErrPasswordsNotSame
	}
	return nil
}

func hashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", errHashPasswordFailure
	}
	return string(hashed), nil
}

// Signup creates a plain user; the role cannot be chosen here.
func (s *AuthService) Signup(req *SignupReq) (string, *entity.User, error) {
	user := &entity.User{
		Name:  strings.TrimSpace(req.Name),
		Email: strings.ToLower(strings.TrimSpace(req.Email)),
		Role:  entity.RoleUser,
		Photo: "default.jpg",
	}
	if err := Validate(user); err != nil {
		return "", nil, err
	}
	if err := checkNewPassword(req.Password, req.PasswordConfirm); err != nil {
		return "", nil, err
	}

	hashed, err := hashPassword(req.Password)
	if err != nil {
		return "", nil, err
	}
	user.Password = hashed

	if err := s.userRepo.Create(user); err != nil {
		return "", nil, err
	}
	token, err := s.IssueToken(user)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// Login checks the credentials of an active user and issues a token.
func (s *AuthService) Login(email, password string) (string, *entity.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return "", nil, ErrMissingCredentials
	}
	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, ErrBadCredentials
		}
		return "", nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", nil, ErrBadCredentials
	}

	token, err := s.IssueToken(user)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

func (s *AuthService) IssueToken(user *entity.User) (string, error) {
	return utils.GenerateToken(user.ID, s.jwtSecret, s.jwtTTL)
}

// Authenticate resolves a token to its still-valid user.
func (s *AuthService) Authenticate(token string) (*entity.User, error) {
	claims, err := utils.ParseToken(token, s.jwtSecret)
	if err != nil {
		return nil, err
	}
	user, err := s.userRepo.FindByID(claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserGone
		}
		return nil, err
	}
	if user.ChangedPasswordAfter(claims.IssuedAtTime()) {
		return nil, ErrPasswordChanged
	}
	return user, nil
}

// UpdatePassword verifies the current password, stores the new one and
// returns a fresh token. passwordChangedAt is backdated a second so the
// new token is not rejected by its own iat.
func (s *AuthService) UpdatePassword(userID uint, req *UpdatePasswordReq) (string, *entity.User, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return "", nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.PasswordCurrent)) != nil {
		return "", nil, ErrWrongPassword
	}
	if err := checkNewPassword(req.Password, req.PasswordConfirm); err != nil {
		return "", nil, err
	}
	hashed, err := hashPassword(req.Password)
	if err != nil {
		return "", nil, err
	}
	changedAt := s.now().Add(-time.Second)
	if err := s.userRepo.Update(userID, map[string]any{
		"password":            hashed,
		"password_changed_at": changedAt,
	}); err != nil {
		return "", nil, err
	}
	user.Password = hashed
	user.PasswordChangedAt = &changedAt

	token, err := s.IssueToken(user)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}
