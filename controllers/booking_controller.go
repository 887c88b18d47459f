package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mukhammadalimk/natours/pkg/resp"
	"github.com/mukhammadalimk/natours/repository"
	"github.com/mukhammadalimk/natours/services"
	"github.com/mukhammadalimk/natours/utils"
)

type BookingController struct {
	Service *services.BookingService
}

func NewBookingController(service *services.BookingService) *BookingController {
	return &BookingController{Service: service}
}

// GET /bookings/checkout-session/:tourId
func (bc *BookingController) CheckoutSession(c *gin.Context) {
	tourID, err := paramID(c, "tourId")
	if err != nil {
		resp.Fail(c, err)
		return
	}
	session, err := bc.Service.CheckoutSession(c.Request.Context(), tourID, utils.CurrentUser(c), baseURL(c))
	if err != nil {
		resp.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "session": session})
}

// POST /webhook-checkout. Must see the raw body, so it is mounted before
// any body-rewriting middleware.
// Rejections are plain text for the processor, not an error page.
func (bc *BookingController) Webhook(c *gin.Context) {
	payload, err := c.GetRawData()
	if err != nil {
		c.String(http.StatusBadRequest, "Webhook error: %s", err.Error())
		return
	}
	if err := bc.Service.HandleWebhook(payload, c.GetHeader("Stripe-Signature")); err != nil {
		if ae, ok := utils.AsAppError(err); ok && ae.StatusCode == http.StatusBadRequest {
			c.String(ae.StatusCode, "%s", ae.Message)
			return
		}
		resp.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}

// ===== admin =====

// GET /bookings
func (bc *BookingController) List(c *gin.Context) {
	f := utils.ParseQuery(c.Request.URL.Query(), repository.BookingFields)
	bookings, err := bc.Service.List(f)
	if err != nil {
		resp.Fail(c, err)
		return
	}
	out, err := f.Project(bookings)
	if err != nil {
		resp.Fail(c, err)
		return
	}
	resp.List(c, out, len(bookings))
}

// GET /bookings/:id
func (bc *BookingController) Get(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		resp.Fail(c, err)
		return
	}
	booking, err := bc.Service.Get(id)
	if err != nil {
		resp.Fail(c, err)
		return
	}
	resp.Doc(c, booking)
}

// POST /bookings
func (bc *BookingController) Create(c *gin.Context) {
	var req services.BookingReq
	if err := bindJSON(c, &req); err != nil {
		resp.Fail(c, err)
		return
	}
	booking, err := bc.Service.Create(&req)
	if err != nil {
		resp.Fail(c, err)
		return
	}
	resp.Created(c, booking)
}

// PATCH /bookings/:id
func (bc *BookingController) Update(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		resp.Fail(c, err)
		return
	}
	var req services.BookingReq
	if err := bindJSON(c, &req); err != nil {
		resp.Fail(c, err)
		return
	}
	booking, err := bc.Service.Update(id, &req)
	if err != nil {
		resp.Fail(c, err)
		return
	}
	resp.Doc(c, booking)
}

// DELETE /bookings/:id
func (bc *BookingController) Delete(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		resp.Fail(c, err)
		return
	}
	if err := bc.Service.Delete(id); err != nil {
		resp.Fail(c, err)
		return
	}
	resp.NoContent(c)
}
