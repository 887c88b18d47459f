package middlewares

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/mukhammadalimk/natours/pkg/resp"
	"github.com/mukhammadalimk/natours/utils"
	"gorm.io/gorm"
)

type ErrorOptions struct {
	Production bool
	// RenderPages renders the "error" template for requests outside /api.
	RenderPages bool
}

// ErrorHandler renders the last error recorded on the context.
func ErrorHandler(opts ErrorOptions) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err
		appErr, operational := Translate(err)

		if appErr.StatusCode >= http.StatusInternalServerError {
			log.Printf("💥 ERROR %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		}

		message := appErr.Message
		if opts.Production && !operational {
			appErr = utils.ErrSomethingWrong
			message = appErr.Message
		}

		if opts.RenderPages && !strings.HasPrefix(c.Request.URL.Path, "/api") {
			if !operational && opts.Production {
				message = "Please try again later."
			}
			c.HTML(appErr.StatusCode, "error", gin.H{
				"title": "Something went wrong!",
				"msg":   message,
				"user":  utils.CurrentUser(c),
			})
			return
		}

		var extra gin.H
		if !opts.Production {
			extra = gin.H{"error": err.Error()}
		}
		resp.Error(c, appErr.StatusCode, appErr.Status(), message, extra)
	}
}

// Translate maps known library errors to client-facing AppErrors. The bool
// reports whether the error is operational (safe to show as is).
func Translate(err error) (*utils.AppError, bool) {
	if ae, ok := utils.AsAppError(err); ok {
		return ae, true
	}
	var (
		ve        validator.ValidationErrors
		syntaxErr *json.SyntaxError
		typeErr   *json.UnmarshalTypeError
		tooLarge  *http.MaxBytesError
	)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return utils.ErrNotFound, true
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return utils.ErrDuplicateField, true
	case errors.As(err, &ve):
		msgs := make([]string, 0, len(ve))
		for _, fe := range ve {
			msgs = append(msgs, fmt.Sprintf("%s failed on %s", fe.Field(), fe.Tag()))
		}
		return utils.NewAppError("Invalid input data. "+strings.Join(msgs, ". "), http.StatusBadRequest), true
	case errors.As(err, &syntaxErr), errors.As(err, &typeErr):
		return utils.NewAppError("Invalid input data. "+err.Error(), http.StatusBadRequest), true
	case errors.As(err, &tooLarge):
		return ErrBodyTooLarge, true
	}
	return utils.Wrap(err, err.Error(), http.StatusInternalServerError), false
}

// NotFound answers every unmatched route.
func NotFound(c *gin.Context) {
	resp.Fail(c, utils.Errorf(http.StatusNotFound, "Can't find %s on this server!", c.Request.URL.RequestURI()))
}
