package services

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/mukhammadalimk/natours/entity"
	"github.com/mukhammadalimk/natours/repository"
	"github.com/mukhammadalimk/natours/utils"

	"gorm.io/gorm"
)

type TourService struct {
	Repo     *repository.TourRepository
	UserRepo *repository.UserRepository
}

func NewTourService(repo *repository.TourRepository, userRepo *repository.UserRepository) *TourService {
	return &TourService{Repo: repo, UserRepo: userRepo}
}

// TourReq is the create/patch body: a tour plus guide user ids.
type TourReq struct {
	entity.Tour
	GuideIDs []uint `json:"guides"`
}

var errNoTour = utils.NewAppError("No tour found with that ID", http.StatusNotFound)

func notFoundAs(err error, appErr *utils.AppError) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return appErr
	}
	return err
}

func (s *TourService) List(f *utils.APIFeatures) ([]entity.Tour, error) {
	return s.Repo.List(f)
}

func (s *TourService) Get(id uint) (*entity.Tour, error) {
	t, err := s.Repo.FindByID(id)
	if err != nil {
		return nil, notFoundAs(err, errNoTour)
	}
	return t, nil
}

func (s *TourService) GetBySlug(slug string) (*entity.Tour, error) {
	t, err := s.Repo.FindBySlug(slug)
	if err != nil {
		return nil, notFoundAs(err, utils.NewAppError("There is no tour with that name.", http.StatusNotFound))
	}
	return t, nil
}

func (s *TourService) Create(body []byte) (*entity.Tour, error) {
	var req TourReq
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, badJSON(err)
	}
	t := req.Tour
	t.ID = 0
	t.RatingsAverage = entity.DefaultRatingsAverage
	t.RatingsQuantity = 0
	if err := s.check(&t, req.GuideIDs); err != nil {
		return nil, err
	}
	if req.GuideIDs == nil {
		req.GuideIDs = []uint{}
	}
	if err := s.Repo.Create(&t, req.GuideIDs); err != nil {
		return nil, err
	}
	return s.reload(t.ID)
}

// Update merges a JSON patch onto the stored tour. Aggregate fields cannot
// be patched; they belong to the review recomputation.
func (s *TourService) Update(id uint, patch []byte) (*entity.Tour, error) {
	current, err := s.Repo.FindAny(id)
	if err != nil {
		return nil, notFoundAs(err, errNoTour)
	}
	req := TourReq{Tour: *current}
	if err := json.Unmarshal(patch, &req); err != nil {
		return nil, badJSON(err)
	}
	t := req.Tour
	t.ID = current.ID
	t.RatingsAverage = current.RatingsAverage
	t.RatingsQuantity = current.RatingsQuantity
	t.CreatedAt = current.CreatedAt
	if err := s.check(&t, req.GuideIDs); err != nil {
		return nil, err
	}
	if err := s.Repo.Update(&t, req.GuideIDs); err != nil {
		return nil, err
	}
	return s.reload(t.ID)
}

// SetImages records uploaded image names on the tour.
func (s *TourService) SetImages(id uint, cover string, images []string) (*entity.Tour, error) {
	t, err := s.Repo.FindAny(id)
	if err != nil {
		return nil, notFoundAs(err, errNoTour)
	}
	if cover != "" {
		t.ImageCover = cover
	}
	if len(images) > 0 {
		t.Images = images
	}
	if err := s.Repo.Update(t, nil); err != nil {
		return nil, err
	}
	return s.reload(id)
}

func (s *TourService) Delete(id uint) error {
	return notFoundAs(s.Repo.Delete(id), errNoTour)
}

// reload returns the stored tour, falling back to the bare row for secret tours.
func (s *TourService) reload(id uint) (*entity.Tour, error) {
	if t, err := s.Repo.FindByID(id); err == nil {
		return t, nil
	}
	return s.Repo.FindAny(id)
}

func (s *TourService) check(t *entity.Tour, guideIDs []uint) error {
	t.Name = strings.TrimSpace(t.Name)
	t.Summary = strings.TrimSpace(t.Summary)
	t.Description = strings.TrimSpace(t.Description)
	if err := Validate(t); err != nil {
		return err
	}
	if t.PriceDiscount > 0 && t.PriceDiscount >= t.Price {
		return utils.Errorf(http.StatusBadRequest,
			"Invalid input data. Discount price (%s) should be below regular price", formatNumber(t.PriceDiscount))
	}
	if len(guideIDs) == 0 {
		return nil
	}
	guides, err := s.UserRepo.FindByIDs(guideIDs)
	if err != nil {
		return err
	}
	found := map[uint]bool{}
	for _, g := range guides {
		if g.Role == entity.RoleGuide || g.Role == entity.RoleLeadGuide {
			found[g.ID] = true
		}
	}
	for _, id := range guideIDs {
		if !found[id] {
			return utils.Errorf(http.StatusBadRequest, "Invalid input data. User %d is not a guide", id)
		}
	}
	return nil
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func badJSON(err error) error {
	return utils.Wrap(err, "Invalid input data. "+err.Error(), http.StatusBadRequest)
}

// ----- Reports -----

const statsMinRating = 4.5

func (s *TourService) Stats() ([]repository.TourStat, error) {
	return s.Repo.Stats(statsMinRating)
}

// MonthPlan is one month of the busiest-months report.
type MonthPlan struct {
	Month         int      `json:"month"`
	NumTourStarts int      `json:"numTourStarts"`
	Tours         []string `json:"tours"`
}

const monthlyPlanLimit = 5

// MonthlyPlan counts tour starts per month of year, busiest first.
func (s *TourService) MonthlyPlan(year int) ([]MonthPlan, error) {
	if year < 1 || year > 9999 {
		return nil, utils.NewAppError("Please provide a valid year.", http.StatusBadRequest)
	}
	tours, err := s.Repo.StartDates()
	if err != nil {
		return nil, err
	}
	return monthlyPlan(tours, year), nil
}

func monthlyPlan(tours []repository.TourDates, year int) []MonthPlan {
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)

	byMonth := map[int]*MonthPlan{}
	for _, t := range tours {
		for _, d := range t.StartDates {
			d = d.UTC()
			if d.Before(from) || d.After(to) {
				continue
			}
			m := int(d.Month())
			p, ok := byMonth[m]
			if !ok {
				p = &MonthPlan{Month: m}
				byMonth[m] = p
			}
			p.NumTourStarts++
			p.Tours = append(p.Tours, t.Name)
		}
	}

	plan := make([]MonthPlan, 0, len(byMonth))
	for _, p := range byMonth {
		plan = append(plan, *p)
	}
	sort.Slice(plan, func(i, j int) bool {
		if plan[i].NumTourStarts != plan[j].NumTourStarts {
			return plan[i].NumTourStarts > plan[j].NumTourStarts
		}
		return plan[i].Month < plan[j].Month
	})
	if len(plan) > monthlyPlanLimit {
		plan = plan[:monthlyPlanLimit]
	}
	return plan
}

// ToursWithin returns tours starting within distance (mi or km) of latlng.
func (s *TourService) ToursWithin(distanceParam, latlng, unit string) ([]entity.Tour, error) {
	lat, lng, err := utils.ParseLatLng(latlng)
	if err != nil {
		return nil, err
	}
	distance, err := strconv.ParseFloat(distanceParam, 64)
	if err != nil || distance < 0 {
		return nil, utils.NewAppError("Please provide a valid distance.", http.StatusBadRequest)
	}
	radius := utils.RadiusInRadians(distance, unit)

	minLat, maxLat, minLng, maxLng := utils.BoundingBox(lat, lng, radius)
	candidates, err := s.Repo.WithinBox(minLat, maxLat, minLng, maxLng)
	if err != nil {
		return nil, err
	}
	tours := make([]entity.Tour, 0, len(candidates))
	for _, t := range candidates {
		if utils.CentralAngle(lat, lng, t.StartLocation.Lat, t.StartLocation.Lng) <= radius {
			tours = append(tours, t)
		}
	}
	return tours, nil
}

// TourDistance is a tour's distance from a reference point.
type TourDistance struct {
	ID       uint    `json:"id"`
	Name     string  `json:"name"`
	Distance float64 `json:"distance"`
}

// Distances lists every tour by distance from latlng, nearest first.
func (s *TourService) Distances(latlng, unit string) ([]TourDistance, error) {
	lat, lng, err := utils.ParseLatLng(latlng)
	if err != nil {
		return nil, err
	}
	tours, err := s.Repo.Locations()
	if err != nil {
		return nil, err
	}
	multiplier := utils.DistanceMultiplier(unit)
	out := make([]TourDistance, 0, len(tours))
	for _, t := range tours {
		meters := utils.DistanceMeters(lat, lng, t.StartLocation.Lat, t.StartLocation.Lng)
		out = append(out, TourDistance{ID: t.ID, Name: t.Name, Distance: meters * multiplier})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Distance < out[j].Distance })
	return out, nil
}
