package entity

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/gosimple/slug"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	DifficultyEasy      = "easy"
	DifficultyMedium    = "medium"
	DifficultyDifficult = "difficult"

	DefaultRatingsAverage = 4.5
)

type Tour struct {
	ID              uint    `gorm:"primaryKey" json:"id"`
	Name            string  `gorm:"uniqueIndex;size:40;not null" json:"name" validate:"required,min=10,max=40"`
	Slug            string  `gorm:"index" json:"slug"`
	Duration        int     `gorm:"not null" json:"duration" validate:"required,gt=0"`
	MaxGroupSize    int     `gorm:"not null" json:"maxGroupSize" validate:"required,gt=0"`
	Difficulty      string  `gorm:"not null" json:"difficulty" validate:"required,oneof=easy medium difficult"`
	RatingsAverage  float64 `gorm:"not null;default:4.5;index:idx_tours_price_rating,priority:2,sort:desc" json:"ratingsAverage" validate:"gte=1,lte=5"`
	RatingsQuantity int     `gorm:"not null;default:0" json:"ratingsQuantity" validate:"gte=0"`
	Price           float64 `gorm:"not null;index:idx_tours_price_rating,priority:1" json:"price" validate:"required,gt=0"`
	PriceDiscount   float64 `json:"priceDiscount,omitempty" validate:"gte=0"`
	Summary         string  `gorm:"not null" json:"summary" validate:"required"`
	Description     string  `json:"description"`
	ImageCover      string  `gorm:"not null" json:"imageCover" validate:"required"`
	SecretTour      bool    `gorm:"not null;default:false" json:"secretTour"`

	Images     datatypes.JSONSlice[string]       `json:"images"`
	StartDates datatypes.JSONSlice[time.Time]    `json:"startDates"`
	Locations  datatypes.JSONSlice[TourLocation] `json:"locations"`

	StartLocation GeoPoint `gorm:"embedded;embeddedPrefix:start_" json:"startLocation"`

	Guides  []User   `gorm:"many2many:tour_guides" json:"guides"`
	Reviews []Review `json:"reviews,omitempty"`

	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// MarshalJSON adds the durationWeeks virtual field.
func (t Tour) MarshalJSON() ([]byte, error) {
	type alias Tour
	return json.Marshal(struct {
		alias
		DurationWeeks float64 `json:"durationWeeks"`
	}{
		alias:         alias(t),
		DurationWeeks: float64(t.Duration) / 7,
	})
}

// GeoPoint is stored as flat lat/lng columns but speaks GeoJSON on the wire.
type GeoPoint struct {
	Lat         float64 `gorm:"index:idx_tours_start_location,priority:1" json:"-"`
	Lng         float64 `gorm:"index:idx_tours_start_location,priority:2" json:"-"`
	Address     string  `json:"-"`
	Description string  `json:"-"`
}

type geoJSONPoint struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"`
	Address     string    `json:"address,omitempty"`
	Description string    `json:"description,omitempty"`
	Day         int       `json:"day,omitempty"`
}

var errBadPoint = errors.New("location must be a Point with [lng, lat] coordinates")

func (p GeoPoint) MarshalJSON() ([]byte, error) {
	return json.Marshal(geoJSONPoint{
		Type:        "Point",
		Coordinates: []float64{p.Lng, p.Lat},
		Address:     p.Address,
		Description: p.Description,
	})
}

func (p *GeoPoint) UnmarshalJSON(b []byte) error {
	var g geoJSONPoint
	if err := json.Unmarshal(b, &g); err != nil {
		return err
	}
	if g.Type != "" && g.Type != "Point" || len(g.Coordinates) != 2 {
		return errBadPoint
	}
	*p = GeoPoint{Lng: g.Coordinates[0], Lat: g.Coordinates[1], Address: g.Address, Description: g.Description}
	return nil
}

// TourLocation is one waypoint of the itinerary, embedded in the tour row.
type TourLocation struct {
	GeoPoint
	Day int `json:"day"`
}

func (l TourLocation) MarshalJSON() ([]byte, error) {
	return json.Marshal(geoJSONPoint{
		Type:        "Point",
		Coordinates: []float64{l.Lng, l.Lat},
		Address:     l.Address,
		Description: l.Description,
		Day:         l.Day,
	})
}

func (l *TourLocation) UnmarshalJSON(b []byte) error {
	if err := l.GeoPoint.UnmarshalJSON(b); err != nil {
		return err
	}
	var d struct {
		Day int `json:"day"`
	}
	if err := json.Unmarshal(b, &d); err != nil {
		return err
	}
	l.Day = d.Day
	return nil
}

// BeforeSave keeps the slug in step with the name.
func (t *Tour) BeforeSave(tx *gorm.DB) error {
	if t.Name != "" {
		t.Slug = slug.Make(t.Name)
	}
	return nil
}
