package routes

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/mukhammadalimk/natours/configs"
	"github.com/mukhammadalimk/natours/controllers"
	"github.com/mukhammadalimk/natours/entity"
	"github.com/mukhammadalimk/natours/middlewares"
	"github.com/mukhammadalimk/natours/payments"
	"github.com/mukhammadalimk/natours/repository"
	"github.com/mukhammadalimk/natours/services"
	"github.com/mukhammadalimk/natours/views"
	"github.com/mukhammadalimk/natours/ws"
	"gorm.io/gorm"
)

// query keys allowed to repeat
var hppWhitelist = []string{"duration", "maxGroupSize", "difficulty", "ratingsAverage", "ratingsQuantity", "price"}

// App is what the router needs from the process.
type App struct {
	Config  *configs.Config
	DB      *gorm.DB
	Limiter middlewares.LimitStore
	Gateway payments.Gateway
}

// onlyUnder runs h for paths below prefix and skips it elsewhere.
func onlyUnder(prefix string, h gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, prefix) {
			h(c)
			return
		}
		c.Next()
	}
}

// RegisterRoutes mounts middleware, the API, the pages and the rating feed.
// The returned feed must be started with Run.
func RegisterRoutes(r *gin.Engine, app App) (*ws.TourFeed, error) {
	cfg := app.Config
	db := app.DB

	renderer, err := views.Renderer()
	if err != nil {
		return nil, err
	}
	r.HTMLRender = renderer

	// Repositories
	userRepo := repository.NewUserRepository(db)
	tourRepo := repository.NewTourRepository(db)
	reviewRepo := repository.NewReviewRepository(db)
	bookingRepo := repository.NewBookingRepository(db)

	// Services
	images := services.NewImageService(cfg.PublicDir)
	authSvc := services.NewAuthService(userRepo, cfg.JWTSecret, cfg.JWTTTL)
	tourSvc := services.NewTourService(tourRepo, userRepo)
	feed := ws.NewTourFeed(tourSvc)
	reviewSvc := services.NewReviewService(db, reviewRepo, tourRepo, feed)
	userSvc := services.NewUserService(userRepo, reviewSvc)
	bookingSvc := services.NewBookingService(bookingRepo, tourRepo, userRepo, app.Gateway)

	// Controllers
	authCtrl := controllers.NewAuthController(authSvc, cfg.JWTCookieTTL)
	tourCtrl := controllers.NewTourController(tourSvc, images)
	userCtrl := controllers.NewUserController(userSvc, images)
	reviewCtrl := controllers.NewReviewController(reviewSvc)
	bookingCtrl := controllers.NewBookingController(bookingSvc)
	viewCtrl := controllers.NewViewController(tourSvc, reviewSvc, bookingSvc)

	protect := middlewares.Protect(authSvc)
	restrictTo := middlewares.RestrictTo

	r.Use(
		middlewares.ErrorHandler(middlewares.ErrorOptions{Production: cfg.IsProduction(), RenderPages: true}),
		middlewares.RequestID(),
		middlewares.CORSMiddleware(),
	)

	// ✅ Static assets
	r.StaticFS("/js", views.Static("js"))
	r.StaticFS("/css", views.Static("css"))
	r.Static("/img", filepath.Join(cfg.PublicDir, "img"))

	r.Use(
		middlewares.SecurityHeaders(cfg.IsProduction()),
		onlyUnder("/api", middlewares.RateLimit(app.Limiter, cfg.RateLimitMax, cfg.RateLimitWindow)),
	)

	// Stripe signs the raw body, so this route is mounted before the body middlewares
	r.POST("/webhook-checkout", bookingCtrl.Webhook)

	r.Use(
		middlewares.BodyLimit(middlewares.MaxJSONBody),
		middlewares.Sanitize(),
		middlewares.HPP(hppWhitelist...),
		gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/ws/"})),
	)

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) })
	r.GET("/ws/tours/:id", feed.HandleWebSocket)

	v1 := r.Group("/api/v1")

	// Tours
	tours := v1.Group("/tours")
	{
		tours.GET("", tourCtrl.List)
		tours.GET("/top-5-cheap", controllers.AliasTopTours, tourCtrl.List)
		tours.GET("/tour-stats", tourCtrl.Stats)
		tours.GET("/monthly-plan/:year", protect,
			restrictTo(entity.RoleAdmin, entity.RoleLeadGuide, entity.RoleGuide), tourCtrl.MonthlyPlan)
		tours.GET("/tours-within/:distance/center/:latlng/unit/:unit", tourCtrl.ToursWithin)
		tours.GET("/distances/:latlng/unit/:unit", tourCtrl.Distances)
		tours.GET("/:id", tourCtrl.Get)

		tours.POST("", protect, restrictTo(entity.RoleAdmin, entity.RoleLeadGuide), tourCtrl.Create)
		tours.PATCH("/:id", protect, restrictTo(entity.RoleAdmin, entity.RoleLeadGuide), tourCtrl.Update)
		tours.DELETE("/:id", protect, restrictTo(entity.RoleAdmin, entity.RoleLeadGuide), tourCtrl.Delete)

		// nested reviews
		tours.GET("/:id/reviews", protect, reviewCtrl.List)
		tours.POST("/:id/reviews", protect, restrictTo(entity.RoleUser), reviewCtrl.Create)
	}

	// Users (public)
	users := v1.Group("/users")
	{
		users.POST("/signup", authCtrl.Signup)
		users.POST("/login", authCtrl.Login)
		users.GET("/logout", authCtrl.Logout)
	}

	// Users (protected)
	me := users.Group("", protect)
	{
		me.PATCH("/updateMyPassword", authCtrl.UpdatePassword)
		me.GET("/me", userCtrl.GetMe)
		me.PATCH("/updateMe", userCtrl.UpdateMe)
		me.DELETE("/deleteMe", userCtrl.DeleteMe)
	}

	// Users (admin only)
	usersAdmin := users.Group("", protect, restrictTo(entity.RoleAdmin))
	{
		usersAdmin.GET("", userCtrl.List)
		usersAdmin.POST("", userCtrl.Create)
		usersAdmin.GET("/:id", userCtrl.Get)
		usersAdmin.PATCH("/:id", userCtrl.Update)
		usersAdmin.DELETE("/:id", userCtrl.Delete)
	}

	// Reviews
	reviews := v1.Group("/reviews", protect)
	{
		reviews.GET("", reviewCtrl.List)
		reviews.POST("", restrictTo(entity.RoleUser), reviewCtrl.Create)
		reviews.GET("/:id", reviewCtrl.Get)
		reviews.PATCH("/:id", restrictTo(entity.RoleUser, entity.RoleAdmin), reviewCtrl.Update)
		reviews.DELETE("/:id", restrictTo(entity.RoleUser, entity.RoleAdmin), reviewCtrl.Delete)
	}

	// Bookings
	bookings := v1.Group("/bookings", protect)
	{
		bookings.GET("/checkout-session/:tourId", bookingCtrl.CheckoutSession)
	}
	bookingsAdmin := bookings.Group("", restrictTo(entity.RoleAdmin, entity.RoleLeadGuide))
	{
		bookingsAdmin.GET("", bookingCtrl.List)
		bookingsAdmin.POST("", bookingCtrl.Create)
		bookingsAdmin.GET("/:id", bookingCtrl.Get)
		bookingsAdmin.PATCH("/:id", bookingCtrl.Update)
		bookingsAdmin.DELETE("/:id", bookingCtrl.Delete)
	}

	// Pages
	pages := r.Group("/", controllers.Alerts, middlewares.IsLoggedIn(authSvc))
	{
		pages.GET("", viewCtrl.Overview)
		pages.GET("/tour/:slug", viewCtrl.Tour)
		pages.GET("/login", viewCtrl.Login)
		pages.GET("/signup", viewCtrl.Signup)
		pages.GET("/me", protect, viewCtrl.Account)
		pages.GET("/my-tours", protect, viewCtrl.MyTours)
		pages.GET("/my-reviews", protect, viewCtrl.MyReviews)
	}

	r.NoRoute(middlewares.NotFound)
	return feed, nil
}
