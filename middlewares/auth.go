package middlewares

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/mukhammadalimk/natours/entity"
	"github.com/mukhammadalimk/natours/pkg/resp"
	"github.com/mukhammadalimk/natours/utils"
)

const (
	TokenCookie     = "jwt"
	LoggedOutCookie = "loggedout"
)

// Authenticator resolves a JWT to its user.
type Authenticator interface {
	Authenticate(token string) (*entity.User, error)
}

// tokenFromRequest reads a Bearer header first, then the jwt cookie.
func tokenFromRequest(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	if v, err := c.Cookie(TokenCookie); err == nil && v != LoggedOutCookie {
		return v
	}
	return ""
}

// Protect rejects requests without a valid token for a still-valid user.
func Protect(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := tokenFromRequest(c)
		if token == "" {
			resp.Fail(c, utils.ErrNotLoggedIn)
			return
		}
		user, err := auth.Authenticate(token)
		if err != nil {
			resp.Fail(c, err)
			return
		}
		utils.SetCurrentUser(c, user)
		c.Next()
	}
}

// RestrictTo must run after Protect.
func RestrictTo(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := utils.CurrentRole(c)
		for _, r := range roles {
			if role == r {
				c.Next()
				return
			}
		}
		resp.Fail(c, utils.ErrForbidden)
	}
}

// IsLoggedIn exposes the user to templates when the cookie is valid. It never fails.
func IsLoggedIn(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if v, err := c.Cookie(TokenCookie); err == nil && v != "" && v != LoggedOutCookie {
			if user, err := auth.Authenticate(v); err == nil {
				utils.SetCurrentUser(c, user)
			}
		}
		c.Next()
	}
}
