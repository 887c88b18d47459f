package middlewares

import "github.com/gin-gonic/gin"

// HPP collapses repeated query parameters to their last value, except for
// the whitelisted keys which may legitimately repeat (?duration=5&duration=9).
func HPP(whitelist ...string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(whitelist))
	for _, k := range whitelist {
		allowed[k] = true
	}
	return func(c *gin.Context) {
		q := c.Request.URL.Query()
		changed := false
		for k, vs := range q {
			if len(vs) > 1 && !allowed[k] {
				q[k] = vs[len(vs)-1:]
				changed = true
			}
		}
		if changed {
			c.Request.URL.RawQuery = q.Encode()
		}
		c.Next()
	}
}
