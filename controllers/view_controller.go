package controllers

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/mukhammadalimk/natours/pkg/resp"
	"github.com/mukhammadalimk/natours/repository"
	"github.com/mukhammadalimk/natours/services"
	"github.com/mukhammadalimk/natours/utils"
)

const bookingAlert = "Your booking was successful! Please check your email for a confirmation. " +
	"If your booking doesn't show up here immediately, please come back later."

const alertKey = "alert"

type ViewController struct {
	Tours    *services.TourService
	Reviews  *services.ReviewService
	Bookings *services.BookingService
}

func NewViewController(tours *services.TourService, reviews *services.ReviewService, bookings *services.BookingService) *ViewController {
	return &ViewController{Tours: tours, Reviews: reviews, Bookings: bookings}
}

// Alerts turns ?alert=booking into the banner shown after checkout.
func Alerts(c *gin.Context) {
	if c.Query("alert") == "booking" {
		c.Set(alertKey, bookingAlert)
	}
	c.Next()
}

func render(c *gin.Context, page, title string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["title"] = title
	if u := utils.CurrentUser(c); u != nil {
		data["user"] = u
	}
	if a := c.GetString(alertKey); a != "" {
		data[alertKey] = a
	}
	c.HTML(http.StatusOK, page, data)
}

// GET /
func (vc *ViewController) Overview(c *gin.Context) {
	tours, err := vc.Tours.List(utils.ParseQuery(url.Values{}, repository.TourFields))
	if err != nil {
		resp.Fail(c, err)
		return
	}
	render(c, "overview", "All Tours", gin.H{"tours": tours})
}

// GET /tour/:slug
func (vc *ViewController) Tour(c *gin.Context) {
	tour, err := vc.Tours.GetBySlug(c.Param("slug"))
	if err != nil {
		resp.Fail(c, err)
		return
	}
	booked, reviewed := false, false
	if uid := utils.CurrentUserID(c); uid != 0 {
		if booked, err = vc.Bookings.HasBooked(tour.ID, uid); err != nil {
			resp.Fail(c, err)
			return
		}
		if reviewed, err = vc.Reviews.HasReviewed(tour.ID, uid); err != nil {
			resp.Fail(c, err)
			return
		}
	}
	render(c, "tour", tour.Name+" Tour", gin.H{
		"tour":         tour,
		"booked":       booked,
		"commentExist": reviewed,
	})
}

func (vc *ViewController) Login(c *gin.Context) {
	render(c, "login", "Log into your account", nil)
}

func (vc *ViewController) Signup(c *gin.Context) {
	render(c, "signup", "Create your account", nil)
}

// GET /me
func (vc *ViewController) Account(c *gin.Context) {
	render(c, "account", "Your account", nil)
}

// GET /my-tours renders the overview with the booked tours only.
func (vc *ViewController) MyTours(c *gin.Context) {
	tours, err := vc.Bookings.MyTours(utils.CurrentUserID(c))
	if err != nil {
		resp.Fail(c, err)
		return
	}
	render(c, "overview", "My Tours", gin.H{"tours": tours})
}

// GET /my-reviews
func (vc *ViewController) MyReviews(c *gin.Context) {
	reviews, err := vc.Reviews.ListByUser(utils.CurrentUserID(c))
	if err != nil {
		resp.Fail(c, err)
		return
	}
	render(c, "reviews", "My reviews", gin.H{"reviews": reviews})
}
