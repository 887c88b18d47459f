package services

import (
	"testing"
	"time"

	"github.com/mukhammadalimk/natours/entity"
	"github.com/mukhammadalimk/natours/testutil"
	"gorm.io/gorm"
)

func newAuthService(f *fixture) *AuthService {
	return NewAuthService(f.users, "test-secret", time.Hour)
}

func TestSignup(t *testing.T) {
	f := newFixture(t)
	s := newAuthService(f)

	token, user, err := s.Signup(&SignupReq{
		Name:            " Jonas ",
		Email:           "Jonas@Example.com",
		Password:        "pass1234",
		PasswordConfirm: "pass1234",
	})
	if err != nil {
		t.Fatal(err)
	}
	if user.Role != entity.RoleUser || user.Email != "jonas@example.com" || user.Name != "Jonas" {
		t.Errorf("user = %+v", user)
	}
	if user.Password == "pass1234" {
		t.Error("password stored in clear text")
	}
	got, err := s.Authenticate(token)
	if err != nil || got.ID != user.ID {
		t.Fatalf("authenticate: %v %v", got, err)
	}

	_, _, err = s.Signup(&SignupReq{Name: "Other", Email: "jonas@example.com", Password: "pass1234", PasswordConfirm: "pass1234"})
	wantIs(t, err, gorm.ErrDuplicatedKey)
}

func TestSignupPasswordRules(t *testing.T) {
	f := newFixture(t)
	s := newAuthService(f)

	_, _, err := s.Signup(&SignupReq{Name: "A", Email: "a@example.com", Password: "pass1234", PasswordConfirm: "pass4321"})
	wantIs(t, err, ErrPasswordsNotSame)
	_, _, err = s.Signup(&SignupReq{Name: "A", Email: "a@example.com", Password: "short", PasswordConfirm: "short"})
	wantIs(t, err, ErrPasswordTooShort)
	_, _, err = s.Signup(&SignupReq{Name: "A", Email: "not-an-email", Password: "pass1234", PasswordConfirm: "pass1234"})
	wantAppError(t, err, 400, "Invalid input data. Please provide a valid email")
}

func TestLogin(t *testing.T) {
	f := newFixture(t)
	s := newAuthService(f)
	u := testutil.CreateUser(t, f.db, "Alice", "alice@example.com", entity.RoleUser)

	_, _, err := s.Login("", "")
	wantIs(t, err, ErrMissingCredentials)
	_, _, err = s.Login("alice@example.com", "wrong-password")
	wantIs(t, err, ErrBadCredentials)
	_, _, err = s.Login("nobody@example.com", testutil.Password)
	wantIs(t, err, ErrBadCredentials)

	token, got, err := s.Login("ALICE@example.com", testutil.Password)
	if err != nil || got.ID != u.ID || token == "" {
		t.Fatalf("login: %v %v", got, err)
	}

	if err := f.users.Deactivate(u.ID); err != nil {
		t.Fatal(err)
	}
	_, _, err = s.Login("alice@example.com", testutil.Password)
	wantIs(t, err, ErrBadCredentials)
}

func TestAuthenticateRejectsStaleTokens(t *testing.T) {
	f := newFixture(t)
	s := newAuthService(f)
	u := testutil.CreateUser(t, f.db, "Alice", "alice@example.com", entity.RoleUser)
	token, err := s.IssueToken(u)
	if err != nil {
		t.Fatal(err)
	}

	later := time.Now().Add(time.Hour)
	if err := f.users.Update(u.ID, map[string]any{"password_changed_at": later}); err != nil {
		t.Fatal(err)
	}
	_, err = s.Authenticate(token)
	wantIs(t, err, ErrPasswordChanged)

	if err := f.users.Delete(u.ID); err != nil {
		t.Fatal(err)
	}
	_, err = s.Authenticate(token)
	wantIs(t, err, ErrUserGone)

	_, err = s.Authenticate("garbage")
	wantAppError(t, err, 401, "Invalid token. Please log in again!")
}

func TestUpdatePassword(t *testing.T) {
	f := newFixture(t)
	s := newAuthService(f)
	u := testutil.CreateUser(t, f.db, "Alice", "alice@example.com", entity.RoleUser)

	_, _, err := s.UpdatePassword(u.ID, &UpdatePasswordReq{PasswordCurrent: "nope", Password: "newpass123", PasswordConfirm: "newpass123"})
	wantIs(t, err, ErrWrongPassword)

	token, _, err := s.UpdatePassword(u.ID, &UpdatePasswordReq{PasswordCurrent: testutil.Password, Password: "newpass123", PasswordConfirm: "newpass123"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Authenticate(token); err != nil {
		t.Errorf("fresh token rejected: %v", err)
	}
	if _, _, err := s.Login("alice@example.com", "newpass123"); err != nil {
		t.Errorf("login with new password: %v", err)
	}
}
