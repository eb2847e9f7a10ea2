package http

import (
	"github.com/gin-gonic/gin"

	"github.com/libtrary/libtrary/internal/auth"
	"github.com/libtrary/libtrary/internal/config"
	"github.com/libtrary/libtrary/internal/database"
	"github.com/libtrary/libtrary/internal/database/books"
	"github.com/libtrary/libtrary/internal/database/wishlists"
	"github.com/libtrary/libtrary/internal/rentals"
)

// RouterConfig carries every dependency the router needs, improving
// testability and reducing parameter count.
type RouterConfig struct {
	Database       *database.Database
	AuthService    *auth.Service
	AuthMiddleware *auth.Middleware
	RentalService  *rentals.Service
	BookRepo       *books.Repository
	WishlistRepo   *wishlists.Repository
	Notifier       Notifier
	HTTPConfig     config.HTTP
	MailConfig     config.Mail
	MaxUploadBytes int64
	Version        string
}

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	health := NewHealthController(cfg.Database, cfg.Version)
	authController := NewAuthController(cfg.AuthService, cfg.Notifier, cfg.HTTPConfig.PublicURL)
	adminController := NewAdminController(cfg.AuthService, cfg.RentalService, cfg.BookRepo, cfg.MaxUploadBytes)
	wishlistController := NewWishlistController(cfg.WishlistRepo)
	searchController := NewSearchController(cfg.BookRepo)
	staffAccessController := NewStaffAccessController(cfg.AuthService, cfg.Notifier, cfg.HTTPConfig.PublicURL, cfg.MailConfig.AdminEmail)

	router.GET("/health", health.Status)

	authRoutes := router.Group("/auth")
	{
		authRoutes.POST("/register", authController.Register)
		authRoutes.GET("/confirm-email", authController.ConfirmEmail)
		authRoutes.POST("/login", authController.Login)
		authRoutes.POST("/resend-confirmation", authController.ResendConfirmation)
	}

	adminRoutes := router.Group("/admin")
	{
		// Token possession is the only gate for staff confirmation.
		adminRoutes.GET("/confirm-staff-access", adminController.ConfirmStaffAccess)

		staffOnly := adminRoutes.Group("", cfg.AuthMiddleware.RequireStaff())
		{
			staffOnly.POST("/rental", adminController.Rent)
			staffOnly.POST("/rental/return", adminController.Return)
			staffOnly.POST("/rental/extend", adminController.Extend)
			staffOnly.GET("/rental/report", adminController.Report)
			staffOnly.POST("/books/bulk-create", adminController.BulkCreateBooks)
		}
	}

	userRoutes := router.Group("/user")
	{
		userRoutes.GET("/search", searchController.Search)

		authenticated := userRoutes.Group("", cfg.AuthMiddleware.RequireUser())
		{
			authenticated.GET("/wishlist", wishlistController.Get)
			authenticated.POST("/wishlist", wishlistController.Add)
			authenticated.DELETE("/wishlist/:bookId", wishlistController.Remove)
			authenticated.POST("/request-staff-access", staffAccessController.Request)
		}
	}

	return router
}
