package main // Entry point package

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/Grizz0o0/DA-KHMT-sub000/internal/config"
	"github.com/Grizz0o0/DA-KHMT-sub000/internal/database"
	"github.com/Grizz0o0/DA-KHMT-sub000/internal/handler"
	"github.com/Grizz0o0/DA-KHMT-sub000/internal/middleware"
	"github.com/Grizz0o0/DA-KHMT-sub000/internal/queue"
	"github.com/Grizz0o0/DA-KHMT-sub000/internal/repository"
	"github.com/Grizz0o0/DA-KHMT-sub000/internal/router"
	"github.com/Grizz0o0/DA-KHMT-sub000/internal/service"
)

func main() {
	// A missing .env is fine in containers, where the environment is
	// injected directly.
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, relying on process environment")
	}
	cfg := config.Load()

	db, err := database.Open(cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		log.Fatalf("mongo connect: %v", err)
	}
	idxCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := database.EnsureIndexes(idxCtx, db); err != nil {
		cancel()
		log.Fatalf("ensure indexes: %v", err)
	}
	cancel()

	// Redis is optional: when unreachable, caching and rate limiting
	// degrade to pass-through middleware.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable, caching and rate limiting disabled")
	}

	// Repositories.
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	flights := repository.NewFlightRepo(db)
	bookings := repository.NewBookingRepo(db)
	tickets := repository.NewTicketRepo(db)
	airlines := repository.NewAirlineRepo(db)
	airports := repository.NewAirportRepo(db)
	aircraft := repository.NewAircraftRepo(db)
	payments := repository.NewPaymentRepo(db)
	promos := repository.NewPromoRepo(db)

	// Services.
	publisher := queue.NewPublisher()
	bookingSvc := service.NewBookingService(flights, bookings, users, promos, publisher)
	ticketSvc := service.NewTicketService(tickets, bookings, flights)

	// Handlers.
	authH := handler.NewAuthHandler(cfg, users, tokens)
	flightH := handler.NewFlightHandler(flights, bookings, aircraft)
	fleetH := handler.NewFleetHandler(airlines, airports, aircraft)
	bookingH := handler.NewBookingHandler(bookingSvc)
	ticketH := handler.NewTicketHandler(ticketSvc)
	paymentH := handler.NewPaymentHandler(payments, bookingSvc)
	promoH := handler.NewPromoHandler(promos)

	e := echo.New()
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
	cacheMW := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	router.RegisterRoutes(e, flightH, fleetH, cacheMW)
	router.RegisterAuth(e, authH, cfg.JWTSecret)
	router.RegisterCustomer(e, bookingH, ticketH, paymentH, promoH, cfg.JWTSecret)
	router.RegisterAdmin(e, flightH, fleetH, bookingH, ticketH, paymentH, promoH, cfg.JWTSecret)

	// The consumer reconnects on its own; a hard error here only means
	// the broker URL is unusable.
	go func() {
		if err := queue.StartBookingConsumer(); err != nil {
			log.Printf("booking consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
