package main // Entry point package

import (
	"log" // Logging library

	"github.com/joho/godotenv"    // .env loader for local development
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/hanriver/taxi-booking/internal/config"     // Internal config loader
	"github.com/hanriver/taxi-booking/internal/database"   // MySQL connection pool
	"github.com/hanriver/taxi-booking/internal/handler"    // HTTP handlers
	"github.com/hanriver/taxi-booking/internal/kakao"      // kakao open API client
	"github.com/hanriver/taxi-booking/internal/middleware" // rate limiting and caching
	"github.com/hanriver/taxi-booking/internal/queue"      // order event consumer
	"github.com/hanriver/taxi-booking/internal/repository" // DB repositories
	"github.com/hanriver/taxi-booking/internal/router"     // Internal router setup
)

func main() {
	// Load .env when present; real deployments set env vars directly.
	_ = godotenv.Load()

	cfg := config.Load() // Load environment config

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Repositories share the single pool.
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	schedules := repository.NewScheduleRepo(db)
	orders := repository.NewOrderRepo(db)
	locations := repository.NewLocationRepo(db)
	drivers := repository.NewDriverRepo(db)
	reviews := repository.NewReviewRepo(db)
	coupons := repository.NewCouponRepo(db)

	authH := handler.NewAuthHandler(cfg, users, tokens, kakao.New(cfg.KakaoAPIBase))
	orderH := handler.NewOrderHandler(schedules, orders)
	browseH := handler.NewBrowseHandler(locations, drivers, coupons, schedules)
	reviewH := handler.NewReviewHandler(reviews, drivers)

	e := echo.New()
	router.RegisterRoutes(e) // health check

	// Browse endpoints are read-heavy; shield them with the Redis token
	// bucket and response cache when Redis is configured.  Order routes
	// get the bucket too, but never the cache: their payloads are
	// per-user.
	var browseMW, orderMW []echo.MiddlewareFunc
	if rdb := config.NewRedisClient(); rdb != nil {
		bucket := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
		browseMW = append(browseMW,
			bucket,
			middleware.NewRedisCache(config.LoadCacheConfig(), rdb),
		)
		orderMW = append(orderMW, bucket)
	}
	router.RegisterPublic(e, browseH, reviewH, browseMW...)
	router.RegisterAuth(e, authH, cfg.JWTSecret)
	router.RegisterOrders(e, orderH, cfg.JWTSecret, orderMW...)
	router.RegisterReviews(e, reviewH, cfg.JWTSecret)

	// Consume booking lifecycle events in the background.  The consumer
	// reconnects on its own; a missing broker must not take the API down.
	go func() {
		if err := queue.StartOrderConsumer(); err != nil {
			log.Printf("order consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port                                // Address string with port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env) // Print startup info

	if err := e.Start(addr); err != nil { // Start HTTP server
		log.Fatal(err) // Log and exit if server fails
	}
}
