package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	appconfig "github.com/openpark/parking-reservation/internal/config"
	"github.com/openpark/parking-reservation/internal/database"
	"github.com/openpark/parking-reservation/internal/duration"
	"github.com/openpark/parking-reservation/internal/handler"
	"github.com/openpark/parking-reservation/internal/middleware"
	"github.com/openpark/parking-reservation/internal/queue"
	"github.com/openpark/parking-reservation/internal/repository"
	"github.com/openpark/parking-reservation/internal/router"
	"github.com/openpark/parking-reservation/internal/service"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := appconfig.Load()

	// The reference timezone drives every entry/exit timestamp and all
	// billing arithmetic.
	if err := duration.SetZone(cfg.Timezone); err != nil {
		log.Fatalf("invalid DEFAULT_TIMEZONE %q: %v", cfg.Timezone, err)
	}

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName, cfg.Timezone)
	if err != nil {
		log.Fatalf("database connect failed: %v", err)
	}
	defer db.Close()

	// Repositories
	userRepo := repository.NewUserRepo(db)
	tokenRepo := repository.NewTokenRepo(db)
	lotRepo := repository.NewLotRepo(db)
	spotRepo := repository.NewSpotRepo(db)
	reservationRepo := repository.NewReservationRepo(db)

	// Seed the default administrator so a fresh deployment has a login.
	seedCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := userRepo.EnsureAdmin(seedCtx, cfg.AdminEmail, cfg.AdminPassword, cfg.BcryptCost); err != nil {
		cancel()
		log.Fatalf("seed admin failed: %v", err)
	}
	cancel()

	// Services
	parkingSvc := service.NewParkingService(db, lotRepo, spotRepo, reservationRepo)
	lotSvc := service.NewLotService(db, lotRepo, spotRepo, reservationRepo)

	// Handlers
	authHandler := handler.NewAuthHandler(cfg, userRepo, tokenRepo)
	publicHandler := handler.NewPublicHandler(lotSvc)
	driverHandler := handler.NewDriverHandler(parkingSvc)
	adminHandler := handler.NewAdminHandler(lotSvc)

	// Redis backs rate limiting and the public response cache; both
	// degrade to no-ops when the client is nil.
	rdb := appconfig.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable; rate limiting and caching disabled")
	}

	e := echo.New()
	e.Use(middleware.NewTokenBucket(appconfig.LoadRateLimitConfig(), rdb))

	router.RegisterRoutes(e)
	router.RegisterAuth(e, authHandler, cfg.JWTSecret)
	router.RegisterPublic(e, publicHandler, middleware.NewRedisCache(appconfig.LoadCacheConfig(), rdb))
	router.RegisterDriver(e, driverHandler, cfg.JWTSecret)
	router.RegisterAdmin(e, adminHandler, cfg.JWTSecret)

	// Background consumer keeps appending booked/released events to the
	// parking log; it runs its own reconnect loop.
	go func() {
		if err := queue.StartParkingConsumer(); err != nil {
			log.Printf("parking consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s, tz=%s)", addr, cfg.Env, cfg.Timezone)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
