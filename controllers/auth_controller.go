package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mukhammadalimk/natours/entity"
	"github.com/mukhammadalimk/natours/middlewares"
	"github.com/mukhammadalimk/natours/pkg/resp"
	"github.com/mukhammadalimk/natours/services"
	"github.com/mukhammadalimk/natours/utils"
)

type AuthController struct {
	Auth      *services.AuthService
	CookieTTL time.Duration
}

func NewAuthController(auth *services.AuthService, cookieTTL time.Duration) *AuthController {
	return &AuthController{Auth: auth, CookieTTL: cookieTTL}
}

// sendToken sets the jwt cookie and writes the token envelope.
func (ac *AuthController) sendToken(c *gin.Context, code int, token string, user *entity.User) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middlewares.TokenCookie, token, int(ac.CookieTTL.Seconds()), "/", "", isSecure(c), true)
	resp.Token(c, code, token, user)
}

// POST /users/signup
func (ac *AuthController) Signup(c *gin.Context) {
	var req services.SignupReq
	if err := bindJSON(c, &req); err != nil {
		resp.Fail(c, err)
		return
	}
	token, user, err := ac.Auth.Signup(&req)
	if err != nil {
		resp.Fail(c, err)
		return
	}
	ac.sendToken(c, http.StatusCreated, token, user)
}

// POST /users/login
func (ac *AuthController) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := bindJSON(c, &req); err != nil {
		resp.Fail(c, err)
		return
	}
	token, user, err := ac.Auth.Login(req.Email, req.Password)
	if err != nil {
		resp.Fail(c, err)
		return
	}
	ac.sendToken(c, http.StatusOK, token, user)
}

// GET /users/logout
func (ac *AuthController) Logout(c *gin.Context) {
	c.SetCookie(middlewares.TokenCookie, middlewares.LoggedOutCookie, 10, "/", "", isSecure(c), true)
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

// PATCH /users/updateMyPassword
func (ac *AuthController) UpdatePassword(c *gin.Context) {
	var req services.UpdatePasswordReq
	if err := bindJSON(c, &req); err != nil {
		resp.Fail(c, err)
		return
	}
	token, user, err := ac.Auth.UpdatePassword(utils.CurrentUserID(c), &req)
	if err != nil {
		resp.Fail(c, err)
		return
	}
	ac.sendToken(c, http.StatusOK, token, user)
}
