package configs

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/mukhammadalimk/natours/entity"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

// SeedAdmin creates the first admin account from ADMIN_EMAIL/ADMIN_PASSWORD.
func SeedAdmin(db *gorm.DB, cfg *Config) error {
	email := strings.ToLower(strings.TrimSpace(cfg.AdminEmail))
	pass := cfg.AdminPassword
	if email == "" || pass == "" {
		log.Println("⚠️ skip seeding admin: missing ADMIN_EMAIL/ADMIN_PASSWORD")
		return nil
	}

	var count int64
	if err := db.Model(&entity.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return fmt.Errorf("check admin %s: %w", email, err)
	}
	if count > 0 {
		log.Println("ℹ️ admin already exists:", email)
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(pass), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	admin := entity.User{
		Name:     "Admin",
		Email:    email,
		Password: string(hash),
		Role:     entity.RoleAdmin,
	}
	return db.Create(&admin).Error
}

// DevData is the YAML layout read by `natours seed`.
type DevData struct {
	Users   []SeedUser   `yaml:"users"`
	Tours   []SeedTour   `yaml:"tours"`
	Reviews []SeedReview `yaml:"reviews"`
}

type SeedUser struct {
	Name     string `yaml:"name"`
	Email    string `yaml:"email"`
	Role     string `yaml:"role"`
	Photo    string `yaml:"photo"`
	Password string `yaml:"password"`
}

type SeedPoint struct {
	Coordinates []float64 `yaml:"coordinates"`
	Address     string    `yaml:"address"`
	Description string    `yaml:"description"`
	Day         int       `yaml:"day"`
}

type SeedTour struct {
	Name            string      `yaml:"name"`
	Duration        int         `yaml:"duration"`
	MaxGroupSize    int         `yaml:"maxGroupSize"`
	Difficulty      string      `yaml:"difficulty"`
	RatingsAverage  float64     `yaml:"ratingsAverage"`
	RatingsQuantity int         `yaml:"ratingsQuantity"`
	Price           float64     `yaml:"price"`
	PriceDiscount   float64     `yaml:"priceDiscount"`
	Summary         string      `yaml:"summary"`
	Description     string      `yaml:"description"`
	ImageCover      string      `yaml:"imageCover"`
	Images          []string    `yaml:"images"`
	StartDates      []time.Time `yaml:"startDates"`
	SecretTour      bool        `yaml:"secretTour"`
	StartLocation   SeedPoint   `yaml:"startLocation"`
	Locations       []SeedPoint `yaml:"locations"`
	Guides          []string    `yaml:"guides"` // user emails
}

type SeedReview struct {
	Tour   string `yaml:"tour"` // tour name
	User   string `yaml:"user"` // user email
	Rating int    `yaml:"rating"`
	Review string `yaml:"review"`
}

func LoadDevData(path string) (*DevData, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var data DevData
	if err := yaml.Unmarshal(b, &data); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &data, nil
}

func (p SeedPoint) geoPoint() entity.GeoPoint {
	g := entity.GeoPoint{Address: p.Address, Description: p.Description}
	if len(p.Coordinates) == 2 {
		g.Lng, g.Lat = p.Coordinates[0], p.Coordinates[1]
	}
	return g
}

// ImportDevData loads users, then tours (resolving guides by email), then
// reviews, inside one transaction. Tour aggregates are recomputed afterwards
// by the caller.
func ImportDevData(db *gorm.DB, data *DevData) error {
	return db.Transaction(func(tx *gorm.DB) error {
		users := map[string]*entity.User{}
		for _, su := range data.Users {
			hash, err := bcrypt.GenerateFromPassword([]byte(su.Password), bcrypt.DefaultCost)
			if err != nil {
				return err
			}
			u := &entity.User{
				Name:     su.Name,
				Email:    strings.ToLower(su.Email),
				Role:     su.Role,
				Photo:    su.Photo,
				Password: string(hash),
			}
			if u.Role == "" {
				u.Role = entity.RoleUser
			}
			if u.Photo == "" {
				u.Photo = "default.jpg"
			}
			if err := tx.Create(u).Error; err != nil {
				return fmt.Errorf("user %s: %w", su.Email, err)
			}
			users[u.Email] = u
		}

		tours := map[string]*entity.Tour{}
		for _, st := range data.Tours {
			t := &entity.Tour{
				Name:            st.Name,
				Duration:        st.Duration,
				MaxGroupSize:    st.MaxGroupSize,
				Difficulty:      st.Difficulty,
				RatingsAverage:  st.RatingsAverage,
				RatingsQuantity: st.RatingsQuantity,
				Price:           st.Price,
				PriceDiscount:   st.PriceDiscount,
				Summary:         st.Summary,
				Description:     st.Description,
				ImageCover:      st.ImageCover,
				Images:          st.Images,
				StartDates:      st.StartDates,
				SecretTour:      st.SecretTour,
				StartLocation:   st.StartLocation.geoPoint(),
			}
			if t.RatingsAverage == 0 {
				t.RatingsAverage = entity.DefaultRatingsAverage
			}
			for _, l := range st.Locations {
				t.Locations = append(t.Locations, entity.TourLocation{GeoPoint: l.geoPoint(), Day: l.Day})
			}
			for _, email := range st.Guides {
				g, ok := users[strings.ToLower(email)]
				if !ok {
					return fmt.Errorf("tour %s: unknown guide %s", st.Name, email)
				}
				t.Guides = append(t.Guides, *g)
			}
			if err := tx.Create(t).Error; err != nil {
				return fmt.Errorf("tour %s: %w", st.Name, err)
			}
			tours[t.Name] = t
		}

		for _, sr := range data.Reviews {
			t, ok := tours[sr.Tour]
			if !ok {
				return fmt.Errorf("review: unknown tour %s", sr.Tour)
			}
			u, ok := users[strings.ToLower(sr.User)]
			if !ok {
				return fmt.Errorf("review: unknown user %s", sr.User)
			}
			r := &entity.Review{TourID: t.ID, UserID: u.ID, Rating: sr.Rating, Review: sr.Review}
			if err := tx.Create(r).Error; err != nil {
				return fmt.Errorf("review %s/%s: %w", sr.Tour, sr.User, err)
			}
		}
		log.Printf("✅ Imported %d users, %d tours, %d reviews", len(data.Users), len(data.Tours), len(data.Reviews))
		return nil
	})
}

// DeleteDevData wipes every tour, user, review and booking.
func DeleteDevData(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		all := tx.Session(&gorm.Session{AllowGlobalUpdate: true})
		if err := all.Delete(&entity.Booking{}).Error; err != nil {
			return err
		}
		if err := all.Delete(&entity.Review{}).Error; err != nil {
			return err
		}
		if err := all.Exec("DELETE FROM tour_guides").Error; err != nil {
			return err
		}
		if err := all.Delete(&entity.Tour{}).Error; err != nil {
			return err
		}
		if err := all.Delete(&entity.User{}).Error; err != nil {
			return err
		}
		log.Println("🗑️ Dev data deleted")
		return nil
	})
}
