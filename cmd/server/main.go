package main // Entry point package

import (
	"log" // Logging library

	"github.com/joho/godotenv"    // .env loader for local development
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/iliyamo/store-reservation/internal/config"
	"github.com/iliyamo/store-reservation/internal/database"
	"github.com/iliyamo/store-reservation/internal/handler"
	"github.com/iliyamo/store-reservation/internal/middleware"
	"github.com/iliyamo/store-reservation/internal/queue"
	"github.com/iliyamo/store-reservation/internal/repository"
	"github.com/iliyamo/store-reservation/internal/router"
	"github.com/iliyamo/store-reservation/internal/service"
)

func main() {
	// Load .env when present; real deployments set env vars directly.
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file loaded, relying on environment")
	}
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database connect failed: %v", err)
	}
	defer db.Close()

	// Redis backs rate limiting and the response cache.  A nil client
	// disables both instead of failing startup.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable, rate limiting and caching disabled")
	}

	// Repositories
	members := repository.NewMemberRepo(db)
	tokens := repository.NewTokenRepo(db)
	stores := repository.NewStoreRepo(db)
	reservations := repository.NewReservationRepo(db)
	reviews := repository.NewReviewRepo(db)

	// Services enforce the booking and review rules on top of the
	// repositories.
	reservationSvc := service.NewReservationService(members, stores, reservations)
	reviewSvc := service.NewReviewService(members, stores, reviews, reservationSvc)

	// Handlers
	authH := handler.NewAuthHandler(cfg, members, tokens)
	ownerStoreH := handler.NewOwnerStoreHandler(stores)
	ownerResH := handler.NewOwnerReservationHandler(reservationSvc, stores)
	memberResH := handler.NewMemberReservationHandler(reservationSvc)
	reviewH := handler.NewReviewHandler(reviewSvc)
	publicH := &handler.PublicHandler{StoreRepo: stores, ReviewRepo: reviews}

	e := echo.New()
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
	e.Use(middleware.NewRedisCache(config.LoadCacheConfig(), rdb))

	router.RegisterRoutes(e)
	router.RegisterAuth(e, authH, cfg.JWTSecret)
	router.RegisterPublic(e, publicH)
	router.RegisterMember(e, memberResH, reviewH, cfg.JWTSecret)
	router.RegisterOwner(e, ownerStoreH, ownerResH, cfg.JWTSecret)

	// Consume confirmation events in the background; the consumer keeps
	// its own reconnect loop.
	go func() {
		if err := queue.StartReservationConsumer(); err != nil {
			log.Printf("reservation consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
