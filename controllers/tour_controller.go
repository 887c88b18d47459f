package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/mukhammadalimk/natours/pkg/resp"
	"github.com/mukhammadalimk/natours/repository"
	"github.com/mukhammadalimk/natours/services"
	"github.com/mukhammadalimk/natours/utils"
)

type TourController struct {
	Service *services.TourService
	Images  *services.ImageService
}

func NewTourController(service *services.TourService, images *services.ImageService) *TourController {
	return &TourController{Service: service, Images: images}
}

// AliasTopTours presets the query of /top-5-cheap.
func AliasTopTours(c *gin.Context) {
	q := c.Request.URL.Query()
	q.Set("limit", "5")
	q.Set("sort", "-ratingsAverage,price")
	q.Set("fields", "name,price,ratingsAverage,summary,difficulty")
	c.Request.URL.RawQuery = q.Encode()
	c.Next()
}

// GET /tours
func (tc *TourController) List(c *gin.Context) {
	f := utils.ParseQuery(c.Request.URL.Query(), repository.TourFields)
	tours, err := tc.Service.List(f)
	if err != nil {
		resp.Fail(c, err)
		return
	}
	out, err := f.Project(tours)
	if err != nil {
		resp.Fail(c, err)
		return
	}
	resp.List(c, out, len(tours))
}

// GET /tours/:id
func (tc *TourController) Get(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		resp.Fail(c, err)
		return
	}
	tour, err := tc.Service.Get(id)
	if err != nil {
		resp.Fail(c, err)
		return
	}
	resp.Doc(c, tour)
}

// POST /tours
func (tc *TourController) Create(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		resp.Fail(c, err)
		return
	}
	tour, err := tc.Service.Create(body)
	if err != nil {
		resp.Fail(c, err)
		return
	}
	resp.Created(c, tour)
}

// PATCH /tours/:id (JSON, or multipart with imageCover / images)
func (tc *TourController) Update(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		resp.Fail(c, err)
		return
	}

	if !isMultipart(c) {
		body, err := c.GetRawData()
		if err != nil {
			resp.Fail(c, err)
			return
		}
		tour, err := tc.Service.Update(id, body)
		if err != nil {
			resp.Fail(c, err)
			return
		}
		resp.Doc(c, tour)
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		resp.Fail(c, utils.Wrap(err, "Invalid input data. "+err.Error(), http.StatusBadRequest))
		return
	}
	patch, err := formPatch(form)
	if err != nil {
		resp.Fail(c, err)
		return
	}
	if _, err := tc.Service.Update(id, patch); err != nil {
		resp.Fail(c, err)
		return
	}
	cover, images, err := tc.Images.SaveTourImages(id, firstFile(form, "imageCover"), form.File["images"])
	if err != nil {
		resp.Fail(c, err)
		return
	}
	tour, err := tc.Service.SetImages(id, cover, images)
	if err != nil {
		resp.Fail(c, err)
		return
	}
	resp.Doc(c, tour)
}

// DELETE /tours/:id
func (tc *TourController) Delete(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		resp.Fail(c, err)
		return
	}
	if err := tc.Service.Delete(id); err != nil {
		resp.Fail(c, err)
		return
	}
	resp.NoContent(c)
}

// GET /tours/tour-stats
func (tc *TourController) Stats(c *gin.Context) {
	stats, err := tc.Service.Stats()
	if err != nil {
		resp.Fail(c, err)
		return
	}
	resp.OK(c, gin.H{"stats": stats})
}

// GET /tours/monthly-plan/:year
func (tc *TourController) MonthlyPlan(c *gin.Context) {
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil {
		resp.Fail(c, utils.NewAppError("Please provide a valid year.", http.StatusBadRequest))
		return
	}
	plan, err := tc.Service.MonthlyPlan(year)
	if err != nil {
		resp.Fail(c, err)
		return
	}
	resp.OK(c, gin.H{"plan": plan})
}

// GET /tours/tours-within/:distance/center/:latlng/unit/:unit
func (tc *TourController) ToursWithin(c *gin.Context) {
	tours, err := tc.Service.ToursWithin(c.Param("distance"), c.Param("latlng"), c.Param("unit"))
	if err != nil {
		resp.Fail(c, err)
		return
	}
	resp.List(c, tours, len(tours))
}

// GET /tours/distances/:latlng/unit/:unit
func (tc *TourController) Distances(c *gin.Context) {
	distances, err := tc.Service.Distances(c.Param("latlng"), c.Param("unit"))
	if err != nil {
		resp.Fail(c, err)
		return
	}
	resp.OK(c, gin.H{"data": distances})
}
