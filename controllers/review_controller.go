package controllers

import (
	"github.com/gin-gonic/gin"
	"github.com/mukhammadalimk/natours/pkg/resp"
	"github.com/mukhammadalimk/natours/repository"
	"github.com/mukhammadalimk/natours/services"
	"github.com/mukhammadalimk/natours/utils"
)

type ReviewController struct {
	Service *services.ReviewService
}

func NewReviewController(service *services.ReviewService) *ReviewController {
	return &ReviewController{Service: service}
}

// nestedTourID is the :id of /tours/:id/reviews, or 0 on /reviews.
func nestedTourID(c *gin.Context) (uint, error) {
	if c.Param("id") == "" {
		return 0, nil
	}
	return paramID(c, "id")
}

// GET /reviews, GET /tours/:id/reviews
func (rc *ReviewController) List(c *gin.Context) {
	tourID, err := nestedTourID(c)
	if err != nil {
		resp.Fail(c, err)
		return
	}
	f := utils.ParseQuery(c.Request.URL.Query(), repository.ReviewFields)
	reviews, err := rc.Service.List(f, tourID)
	if err != nil {
		resp.Fail(c, err)
		return
	}
	out, err := f.Project(reviews)
	if err != nil {
		resp.Fail(c, err)
		return
	}
	resp.List(c, out, len(reviews))
}

// POST /reviews, POST /tours/:id/reviews
// tour and user default to the nested tour and the logged-in user.
func (rc *ReviewController) Create(c *gin.Context) {
	var req services.CreateReviewReq
	if err := bindJSON(c, &req); err != nil {
		resp.Fail(c, err)
		return
	}
	tourID, err := nestedTourID(c)
	if err != nil {
		resp.Fail(c, err)
		return
	}
	if req.TourID == 0 {
		req.TourID = tourID
	}
	if req.UserID == 0 {
		req.UserID = utils.CurrentUserID(c)
	}
	review, err := rc.Service.Create(&req)
	if err != nil {
		resp.Fail(c, err)
		return
	}
	resp.Created(c, review)
}

// GET /reviews/:id
func (rc *ReviewController) Get(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		resp.Fail(c, err)
		return
	}
	review, err := rc.Service.Get(id)
	if err != nil {
		resp.Fail(c, err)
		return
	}
	resp.Doc(c, review)
}

// PATCH /reviews/:id
func (rc *ReviewController) Update(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		resp.Fail(c, err)
		return
	}
	var req services.UpdateReviewReq
	if err := bindJSON(c, &req); err != nil {
		resp.Fail(c, err)
		return
	}
	review, err := rc.Service.Update(id, utils.CurrentUser(c), &req)
	if err != nil {
		resp.Fail(c, err)
		return
	}
	resp.Doc(c, review)
}

// DELETE /reviews/:id
func (rc *ReviewController) Delete(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		resp.Fail(c, err)
		return
	}
	if err := rc.Service.Delete(id, utils.CurrentUser(c)); err != nil {
		resp.Fail(c, err)
		return
	}
	resp.NoContent(c)
}
