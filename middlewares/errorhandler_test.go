package middlewares

import (
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/mukhammadalimk/natours/pkg/resp"
	"github.com/mukhammadalimk/natours/utils"
	"github.com/mukhammadalimk/natours/views"
	"gorm.io/gorm"
)

func failWith(err error) gin.HandlerFunc {
	return func(c *gin.Context) { resp.Fail(c, err) }
}

func TestErrorHandlerTranslates(t *testing.T) {
	r := newEngine(false)
	r.GET("/app", failWith(utils.NewAppError("No tour found with that ID", http.StatusNotFound)))
	r.GET("/missing", failWith(gorm.ErrRecordNotFound))
	r.GET("/dup", failWith(gorm.ErrDuplicatedKey))
	r.GET("/expired", failWith(utils.ErrExpiredToken))
	r.GET("/boom", failWith(errors.New("boom")))

	w := do(r, http.MethodGet, "/app", nil)
	wantMessage(t, w, http.StatusNotFound, "No tour found with that ID")
	if body := decode(t, w); body["status"] != "fail" {
		t.Errorf("status field = %v", body["status"])
	}

	wantMessage(t, do(r, http.MethodGet, "/missing", nil), http.StatusNotFound, "No document found with that ID")
	wantMessage(t, do(r, http.MethodGet, "/dup", nil), http.StatusBadRequest, "Duplicate field value. Please use another value!")
	wantMessage(t, do(r, http.MethodGet, "/expired", nil), http.StatusUnauthorized, "Your token has expired! Please log in again.")

	w = do(r, http.MethodGet, "/boom", nil)
	wantMessage(t, w, http.StatusInternalServerError, "boom")
	body := decode(t, w)
	if body["status"] != "error" || body["error"] != "boom" {
		t.Errorf("development body = %v", body)
	}
}

func TestErrorHandlerProductionHidesInternals(t *testing.T) {
	r := newEngine(true)
	r.GET("/boom", failWith(errors.New("pq: connection refused")))
	r.GET("/app", failWith(utils.ErrForbidden))

	w := do(r, http.MethodGet, "/boom", nil)
	wantMessage(t, w, http.StatusInternalServerError, "Something went very wrong!")
	if _, ok := decode(t, w)["error"]; ok {
		t.Error("production response leaks the error")
	}
	wantMessage(t, do(r, http.MethodGet, "/app", nil), http.StatusForbidden, "You do not have permission to perform this action")
}

func TestNotFound(t *testing.T) {
	r := newEngine(false)
	r.NoRoute(NotFound)
	wantMessage(t, do(r, http.MethodGet, "/api/v1/nope?x=1", nil), http.StatusNotFound, "Can't find /api/v1/nope?x=1 on this server!")
}

func TestErrorHandlerRendersPages(t *testing.T) {
	renderer, err := views.Renderer()
	if err != nil {
		t.Fatal(err)
	}
	r := gin.New()
	r.HTMLRender = renderer
	r.Use(ErrorHandler(ErrorOptions{RenderPages: true}))
	r.GET("/tour/:slug", failWith(utils.NewAppError("There is no tour with that name.", http.StatusNotFound)))
	r.GET("/api/v1/tours/:id", failWith(utils.ErrNotFound))

	w := do(r, http.MethodGet, "/tour/nope", nil)
	if w.Code != http.StatusNotFound || !strings.Contains(w.Body.String(), "There is no tour with that name.") {
		t.Errorf("page: %d %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Header().Get("Content-Type"), "text/html") {
		t.Errorf("content type = %s", w.Header().Get("Content-Type"))
	}

	w = do(r, http.MethodGet, "/api/v1/tours/1", nil)
	wantMessage(t, w, http.StatusNotFound, "No document found with that ID")
}
