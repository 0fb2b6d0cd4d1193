// Package api contains the API routes for the NSE Platform API
package api

import (
	"github.com/labstack/echo/v4"

	"github.com/nsvirk/bhavapi/internal/api/handlers"
	"github.com/nsvirk/bhavapi/internal/api/middleware"
	"github.com/nsvirk/bhavapi/internal/config"
	"github.com/nsvirk/bhavapi/internal/service"
)

// AuthService verifies tokens and runs the Google login
type AuthService interface {
	service.Authenticator
	handlers.LoginService
}

// Services are the collaborators behind the routes
type Services struct {
	Auth          AuthService
	Stocks        handlers.StockService
	Derivatives   handlers.DerivativesService
	Announcements handlers.AnnouncementsService
}

// SetupRoutes configures the routes for the API
func SetupRoutes(e *echo.Echo, cfg *config.Config, s Services) {
	indexHandler := handlers.NewIndexHandler(cfg.APIName, cfg.APIVersion)
	e.GET("/health", indexHandler.Health)

	// Create a group for all API routes
	api := e.Group("/api")

	// Index route
	api.GET("/", indexHandler.Index)

	authMiddleware := middleware.AuthMiddleware(s.Auth)

	// Auth routes (login unprotected)
	authHandler := handlers.NewAuthHandler(s.Auth, cfg.FrontendURL)
	authGroup := api.Group("/auth")
	authGroup.GET("/google/login", authHandler.GoogleLogin)
	authGroup.GET("/google/callback", authHandler.GoogleCallback)
	authGroup.GET("/me", authHandler.Me, authMiddleware)
	authGroup.POST("/logout", authHandler.Logout, authMiddleware)

	// Stock routes (protected)
	stocksHandler := handlers.NewStocksHandler(s.Stocks)
	stocksGroup := api.Group("/stocks")
	stocksGroup.Use(authMiddleware)
	stocksGroup.GET("/bhavcopy/:date", stocksHandler.GetBhavcopy)
	stocksGroup.GET("/compare", stocksHandler.CompareDates)
	stocksGroup.GET("/live-search", stocksHandler.LiveSearch)
	stocksGroup.GET("/search", stocksHandler.SearchSymbols)
	stocksGroup.GET("/symbols", stocksHandler.GetSymbols)

	// F&O routes (protected)
	foHandler := handlers.NewFOHandler(s.Derivatives)
	foGroup := api.Group("/fo")
	foGroup.Use(authMiddleware)
	foGroup.GET("/data/:date", foHandler.GetData)
	foGroup.GET("/futures/:symbol", foHandler.GetFutures)
	foGroup.GET("/options/:symbol", foHandler.GetOptions)
	foGroup.GET("/nifty", foHandler.GetNifty)

	// Announcement routes (protected)
	announcementHandler := handlers.NewAnnouncementHandler(s.Announcements)
	announcementGroup := api.Group("/announcements")
	announcementGroup.Use(authMiddleware)
	announcementGroup.GET("/nse/:symbol", announcementHandler.GetNSEAnnouncements)
	announcementGroup.GET("/bse/scrip-codes", announcementHandler.GetBSEScripCodes)
	announcementGroup.GET("/bse", announcementHandler.GetBSEAnnouncements)
}
