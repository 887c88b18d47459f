package controllers

import (
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/mukhammadalimk/natours/utils"
)

func paramID(c *gin.Context, name string) (uint, error) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, utils.Errorf(http.StatusBadRequest, "Invalid %s: %s.", name, raw)
	}
	return uint(id), nil
}

func isSecure(c *gin.Context) bool {
	return c.Request.TLS != nil || c.GetHeader("X-Forwarded-Proto") == "https"
}

// baseURL is scheme://host of the current request.
func baseURL(c *gin.Context) string {
	scheme := "http"
	if isSecure(c) {
		scheme = "https"
	}
	return scheme + "://" + c.Request.Host
}

func isMultipart(c *gin.Context) bool {
	return c.ContentType() == "multipart/form-data"
}

// formPatch turns multipart text fields into a JSON object, typing numbers
// and booleans the way a JSON client would have sent them.
func formPatch(form *multipart.Form) ([]byte, error) {
	patch := map[string]any{}
	for k, vs := range form.Value {
		if len(vs) == 0 {
			continue
		}
		v := vs[len(vs)-1]
		if n, err := strconv.ParseFloat(v, 64); err == nil {
			patch[k] = n
		} else if b, err := strconv.ParseBool(v); err == nil {
			patch[k] = b
		} else {
			patch[k] = v
		}
	}
	return json.Marshal(patch)
}

func firstFile(form *multipart.Form, field string) *multipart.FileHeader {
	if fs := form.File[field]; len(fs) > 0 {
		return fs[0]
	}
	return nil
}

// bindJSON decodes the body into dst; an empty body leaves dst untouched.
func bindJSON(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return utils.Wrap(err, "Invalid input data. "+err.Error(), http.StatusBadRequest)
	}
	return nil
}
