package routes

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mukhammadalimk/natours/configs"
	"github.com/mukhammadalimk/natours/entity"
	"github.com/mukhammadalimk/natours/middlewares"
	"github.com/mukhammadalimk/natours/payments"
	"github.com/mukhammadalimk/natours/testutil"
	"gorm.io/gorm"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type fakeGateway struct {
	event *payments.Event
}

func (g *fakeGateway) CreateCheckoutSession(_ context.Context, req *payments.CheckoutRequest) (*payments.Session, error) {
	return &payments.Session{ID: "cs_test_1", URL: "https://checkout.example/" + req.TourName}, nil
}

func (g *fakeGateway) ParseWebhook(_ []byte, signature string) (*payments.Event, error) {
	if signature != "valid" {
		return nil, errors.New("no valid signature found")
	}
	return g.event, nil
}

type server struct {
	r       *gin.Engine
	db      *gorm.DB
	gateway *fakeGateway
}

func newServer(t *testing.T, rateLimit int) *server {
	t.Helper()
	db := testutil.NewDB(t)
	cfg := &configs.Config{
		Env:             "development",
		PublicDir:       t.TempDir(),
		JWTSecret:       "test-secret",
		JWTTTL:          time.Hour,
		JWTCookieTTL:    time.Hour,
		RateLimitMax:    rateLimit,
		RateLimitWindow: time.Hour,
	}
	gw := &fakeGateway{}
	r := gin.New()
	if _, err := RegisterRoutes(r, App{Config: cfg, DB: db, Limiter: middlewares.NewMemoryStore(), Gateway: gw}); err != nil {
		t.Fatal(err)
	}
	return &server{r: r, db: db, gateway: gw}
}

func (s *server) do(method, target, body, token string) *httptest.ResponseRecorder {
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return body
}

func (s *server) signup(t *testing.T, email string) string {
	t.Helper()
	w := s.do(http.MethodPost, "/api/v1/users/signup",
		`{"name":"Jonas Test","email":"`+email+`","password":"pass1234","passwordConfirm":"pass1234"}`, "")
	if w.Code != http.StatusCreated {
		t.Fatalf("signup: %d %s", w.Code, w.Body.String())
	}
	token, _ := decode(t, w)["token"].(string)
	if token == "" {
		t.Fatal("signup returned no token")
	}
	if !strings.Contains(w.Header().Get("Set-Cookie"), middlewares.TokenCookie+"="+token) {
		t.Errorf("cookie = %q", w.Header().Get("Set-Cookie"))
	}
	return token
}

func TestAuthFlow(t *testing.T) {
	s := newServer(t, 100)
	token := s.signup(t, "jonas@example.com")

	w := s.do(http.MethodGet, "/api/v1/users/me", "", "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("anonymous /me = %d", w.Code)
	}

	w = s.do(http.MethodGet, "/api/v1/users/me", "", token)
	if w.Code != http.StatusOK {
		t.Fatalf("/me: %d %s", w.Code, w.Body.String())
	}
	doc := decode(t, w)["data"].(map[string]any)["data"].(map[string]any)
	if doc["email"] != "jonas@example.com" || doc["role"] != entity.RoleUser {
		t.Errorf("me = %v", doc)
	}
	if _, leaked := doc["password"]; leaked {
		t.Error("password serialized")
	}

	w = s.do(http.MethodPost, "/api/v1/tours", `{"name":"A Brand New Tour"}`, token)
	if w.Code != http.StatusForbidden {
		t.Errorf("user creating a tour = %d", w.Code)
	}
	w = s.do(http.MethodGet, "/api/v1/users", "", token)
	if w.Code != http.StatusForbidden {
		t.Errorf("user listing users = %d", w.Code)
	}

	w = s.do(http.MethodGet, "/api/v1/users/logout", "", "")
	if !strings.Contains(w.Header().Get("Set-Cookie"), middlewares.TokenCookie+"="+middlewares.LoggedOutCookie) {
		t.Errorf("logout cookie = %q", w.Header().Get("Set-Cookie"))
	}
}

func TestPublicTourRoutes(t *testing.T) {
	s := newServer(t, 100)
	testutil.CreateTour(t, s.db, "The Forest Hiker", testutil.WithPrice(397))
	testutil.CreateTour(t, s.db, "The Sea Explorer", testutil.WithPrice(497))

	w := s.do(http.MethodGet, "/api/v1/tours?price[lt]=400", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("list: %d %s", w.Code, w.Body.String())
	}
	if n := decode(t, w)["results"]; n != float64(1) {
		t.Errorf("results = %v", n)
	}

	w = s.do(http.MethodGet, "/api/v1/tours/top-5-cheap", "", "")
	if n := decode(t, w)["results"]; n != float64(2) {
		t.Errorf("top-5-cheap results = %v", n)
	}

	w = s.do(http.MethodGet, "/api/v1/nope?x=1", "", "")
	if w.Code != http.StatusNotFound || decode(t, w)["message"] != "Can't find /api/v1/nope?x=1 on this server!" {
		t.Errorf("unknown route: %d %s", w.Code, w.Body.String())
	}
	if w.Header().Get("X-Frame-Options") != "DENY" || w.Header().Get(middlewares.RequestIDHeader) == "" {
		t.Errorf("headers = %v", w.Header())
	}
}

func TestPages(t *testing.T) {
	s := newServer(t, 100)
	testutil.CreateTour(t, s.db, "The Forest Hiker")

	w := s.do(http.MethodGet, "/", "", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "The Forest Hiker") {
		t.Fatalf("overview: %d %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Header().Get("Content-Type"), "text/html") {
		t.Errorf("content type = %s", w.Header().Get("Content-Type"))
	}

	w = s.do(http.MethodGet, "/tour/the-forest-hiker", "", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "The Forest Hiker Tour") {
		t.Errorf("tour page: %d", w.Code)
	}

	w = s.do(http.MethodGet, "/tour/no-such-tour", "", "")
	if w.Code != http.StatusNotFound || !strings.Contains(w.Header().Get("Content-Type"), "text/html") {
		t.Errorf("missing tour page: %d %s", w.Code, w.Header().Get("Content-Type"))
	}

	w = s.do(http.MethodGet, "/login", "", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "Log into your account") {
		t.Errorf("login page: %d", w.Code)
	}

	w = s.do(http.MethodGet, "/js/app.js", "", "")
	if w.Code != http.StatusOK {
		t.Errorf("app.js: %d", w.Code)
	}
}

func TestCheckoutAndWebhook(t *testing.T) {
	s := newServer(t, 100)
	tour := testutil.CreateTour(t, s.db, "The Forest Hiker", testutil.WithPrice(397))
	token := s.signup(t, "buyer@example.com")

	w := s.do(http.MethodGet, "/api/v1/bookings/checkout-session/"+itoa(tour.ID), "", token)
	if w.Code != http.StatusOK {
		t.Fatalf("checkout: %d %s", w.Code, w.Body.String())
	}
	session := decode(t, w)["session"].(map[string]any)
	if session["url"] != "https://checkout.example/The Forest Hiker" {
		t.Errorf("session = %v", session)
	}

	s.gateway.event = &payments.Event{
		ID:   "evt_1",
		Type: payments.EventCheckoutCompleted,
		Checkout: &payments.CompletedCheckout{
			SessionID:     "cs_test_1",
			TourID:        tour.ID,
			CustomerEmail: "buyer@example.com",
			AmountTotal:   39700,
		},
	}
	webhook := func(signature string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/webhook-checkout", strings.NewReader(`{"id":"evt_1"}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Stripe-Signature", signature)
		w := httptest.NewRecorder()
		s.r.ServeHTTP(w, req)
		return w
	}

	w = webhook("forged")
	if w.Code != http.StatusBadRequest || w.Body.String() != "Webhook error: no valid signature found" {
		t.Errorf("forged webhook = %d %q", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("forged webhook content type = %q", ct)
	}
	for i := 0; i < 2; i++ {
		w = webhook("valid")
		if w.Code != http.StatusOK || decode(t, w)["received"] != true {
			t.Fatalf("webhook: %d %s", w.Code, w.Body.String())
		}
	}

	var bookings []entity.Booking
	s.db.Find(&bookings)
	if len(bookings) != 1 || bookings[0].Price != 397 || bookings[0].TourID != tour.ID {
		t.Fatalf("bookings = %+v", bookings)
	}
}

func TestRateLimitOnlyGuardsAPI(t *testing.T) {
	s := newServer(t, 2)

	for i := 0; i < 2; i++ {
		if w := s.do(http.MethodGet, "/api/v1/tours", "", ""); w.Code != http.StatusOK {
			t.Fatalf("request %d: %d", i, w.Code)
		}
	}
	w := s.do(http.MethodGet, "/api/v1/tours", "", "")
	if w.Code != http.StatusTooManyRequests {
		t.Errorf("third request = %d", w.Code)
	}
	if w := s.do(http.MethodGet, "/", "", ""); w.Code != http.StatusOK {
		t.Errorf("page after limit = %d", w.Code)
	}
}

func itoa(id uint) string {
	b, _ := json.Marshal(id)
	return string(b)
}
