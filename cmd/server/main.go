package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/sambali01/lessonlink/internal/config"
	"github.com/sambali01/lessonlink/internal/database"
	"github.com/sambali01/lessonlink/internal/handler"
	"github.com/sambali01/lessonlink/internal/middleware"
	"github.com/sambali01/lessonlink/internal/queue"
	"github.com/sambali01/lessonlink/internal/repository"
	"github.com/sambali01/lessonlink/internal/router"
	"github.com/sambali01/lessonlink/internal/service"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	slots := repository.NewSlotRepo(db)
	bookings := repository.NewBookingRepo(db)
	subjects := repository.NewSubjectRepo(db)

	sched := service.NewScheduler(db, slots, bookings)

	authHandler := handler.NewAuthHandler(cfg, users, tokens)
	slotHandler := handler.NewSlotHandler(sched, slots)
	bookingHandler := handler.NewBookingHandler(sched, bookings)
	subjectHandler := handler.NewSubjectHandler(subjects)
	publicHandler := handler.NewPublicHandler(slots, subjects)

	// Redis is optional: a nil client turns both middlewares into
	// pass-throughs.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable; rate limiting and response cache disabled")
	}
	limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	// Booking lifecycle consumer; reconnects on its own until the
	// process exits.
	go func() {
		if err := queue.StartBookingConsumer(); err != nil {
			log.Printf("booking consumer: %v", err)
		}
	}()

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterAuth(e, authHandler, cfg.JWTSecret)
	router.RegisterTeacher(e, slotHandler, bookingHandler, subjectHandler, cfg.JWTSecret, limiter)
	router.RegisterStudent(e, bookingHandler, cfg.JWTSecret, limiter)
	router.RegisterBookingParties(e, bookingHandler, cfg.JWTSecret, limiter)
	router.RegisterPublic(e, publicHandler, cache)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
