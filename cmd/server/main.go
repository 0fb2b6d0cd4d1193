// Package main is the entry point for the NSE Platform API
package main

import (
	"fmt"
	"log"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/nsvirk/bhavapi/internal/api"
	"github.com/nsvirk/bhavapi/internal/api/middleware"
	"github.com/nsvirk/bhavapi/internal/bhavcopy"
	"github.com/nsvirk/bhavapi/internal/cache"
	"github.com/nsvirk/bhavapi/internal/config"
	"github.com/nsvirk/bhavapi/internal/fetcher"
	"github.com/nsvirk/bhavapi/internal/repository"
	"github.com/nsvirk/bhavapi/internal/service"
	"github.com/nsvirk/bhavapi/pkg/utils/zaplogger"
)

func main() {
	// Load configuration
	cfg, err := config.Get()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Print the configuration
	fmt.Println(cfg.String())

	// Connect to Postgres
	db, err := repository.ConnectPostgres(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to Postgres: %v", err)
	}

	// Connect Redis
	redisClient, err := repository.ConnectRedis(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}

	// Init logger
	err = zaplogger.InitLogger(db)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	// Setup logger
	defer zaplogger.Sync()
	zaplogger.SetLogLevel(cfg.ServerLogLevel)

	// startUpMessage
	zaplogger.Info(cfg.APIName + " - " + cfg.APIVersion + " initialized")
	zaplogger.Info("Postgres initialized")
	zaplogger.Info("Redis initialized")

	loc := cfg.GetLocation()
	now := func() time.Time { return time.Now().In(loc) }

	// Upstream client and bhavcopy source
	client := fetcher.NewClient(
		fetcher.WithPrimeTimeout(cfg.GetPrimeTimeout()),
		fetcher.WithFetchTimeout(cfg.GetFetchTimeout()),
		fetcher.WithPoliteDelay(cfg.GetPoliteDelay()),
	)
	source := bhavcopy.NewSource(client)

	// Caches
	foCache := cache.New[*bhavcopy.Table](cfg.GetFOCacheTTL(), cache.WithName[*bhavcopy.Table]("fo"))
	latestCache := cache.New[*bhavcopy.Table](cfg.GetSymbolsCacheTTL(), cache.WithName[*bhavcopy.Table]("latest"))

	// Services
	equityService := service.NewEquityService(source, latestCache, cfg.GetLookbackDays(), now)
	foService := service.NewFOService(source, foCache, cfg.GetLookbackDays(), now)
	announcementService := service.NewAnnouncementService(client, now, cfg.BSEScripCodesFile)
	authService := service.NewAuthService(cfg,
		repository.NewUserRepository(db),
		repository.NewSessionRepository(db),
		repository.NewRevocationRepository(redisClient),
	)

	// Create a new Echo instance
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Setup middleware
	middleware.SetupLoggerMiddleware(e)
	middleware.SetupCORSMiddleware(e, cfg.FrontendURL)

	// Setup routes
	api.SetupRoutes(e, cfg, api.Services{
		Auth:          authService,
		Stocks:        equityService,
		Derivatives:   foService,
		Announcements: announcementService,
	})

	// Setup and start cron jobs
	cronService := service.NewCronService(cfg, map[string]service.Pruner{
		"fo":     foService,
		"latest": equityService,
	})
	cronService.Start()

	// Start the server
	startServer(e, cfg)
}

// startServer starts the Echo server on the specified port
func startServer(e *echo.Echo, cfg *config.Config) {
	port := cfg.ServerPort
	if port == "" {
		port = "8000"
	}
	zaplogger.Info("SERVER STARTED ON PORT " + port)
	e.Logger.Fatal(e.Start(":" + port))
}
