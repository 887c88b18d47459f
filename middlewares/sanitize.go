package middlewares

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/microcosm-cc/bluemonday"
	"github.com/mukhammadalimk/natours/pkg/resp"
	"github.com/mukhammadalimk/natours/utils"
)

const MaxJSONBody = 10 << 10

var ErrBodyTooLarge = utils.NewAppError("Request body too large", http.StatusRequestEntityTooLarge)

func isJSON(c *gin.Context) bool {
	return strings.HasPrefix(c.ContentType(), "application/json")
}

// BodyLimit caps JSON bodies at limit bytes.
func BodyLimit(limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Body == nil || !isJSON(c) {
			c.Next()
			return
		}
		if c.Request.ContentLength > limit {
			resp.Fail(c, ErrBodyTooLarge)
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		c.Next()
	}
}

var passwordFields = map[string]bool{
	"password":        true,
	"passwordConfirm": true,
	"passwordCurrent": true,
}

// Sanitize rewrites JSON bodies: keys that could act as query operators
// ($-prefixed or dotted) are dropped and HTML is stripped from strings.
// Bodies that are not valid JSON are left for the handler to reject.
func Sanitize() gin.HandlerFunc {
	policy := bluemonday.StrictPolicy()
	return func(c *gin.Context) {
		if c.Request.Body == nil || !isJSON(c) {
			c.Next()
			return
		}
		raw, err := io.ReadAll(c.Request.Body)
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				resp.Fail(c, ErrBodyTooLarge)
				return
			}
			resp.Fail(c, err)
			return
		}

		body := raw
		var doc any
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.UseNumber()
		if len(bytes.TrimSpace(raw)) > 0 && dec.Decode(&doc) == nil {
			if cleaned, err := json.Marshal(sanitizeValue(policy, "", doc)); err == nil {
				body = cleaned
			}
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))
		c.Request.ContentLength = int64(len(body))
		c.Next()
	}
}

func sanitizeValue(p *bluemonday.Policy, key string, v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			if strings.HasPrefix(k, "$") || strings.Contains(k, ".") {
				continue
			}
			out[k] = sanitizeValue(p, k, val)
		}
		return out
	case []any:
		for i := range t {
			t[i] = sanitizeValue(p, key, t[i])
		}
		return t
	case string:
		if passwordFields[key] || !strings.ContainsAny(t, "<>") {
			return t
		}
		return p.Sanitize(t)
	}
	return v
}
