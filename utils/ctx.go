package utils

import (
	"github.com/gin-gonic/gin"
	"github.com/mukhammadalimk/natours/entity"
)

const (
	userKey = "user"
)

// SetCurrentUser stores the authenticated user for handlers and templates.
func SetCurrentUser(c *gin.Context, u *entity.User) {
	c.Set(userKey, u)
}

func CurrentUser(c *gin.Context) *entity.User {
	if v, ok := c.Get(userKey); ok {
		if u, ok := v.(*entity.User); ok {
			return u
		}
	}
	return nil
}

func CurrentUserID(c *gin.Context) uint {
	if u := CurrentUser(c); u != nil {
		return u.ID
	}
	return 0
}

func CurrentRole(c *gin.Context) string {
	if u := CurrentUser(c); u != nil {
		return u.Role
	}
	return ""
}
