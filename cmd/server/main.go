package main // Entry point package

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinematick/internal/booking"
	"github.com/iliyamo/cinematick/internal/config"
	"github.com/iliyamo/cinematick/internal/database"
	"github.com/iliyamo/cinematick/internal/handler"
	"github.com/iliyamo/cinematick/internal/inventory"
	"github.com/iliyamo/cinematick/internal/middleware"
	"github.com/iliyamo/cinematick/internal/queue"
	"github.com/iliyamo/cinematick/internal/repository"
	"github.com/iliyamo/cinematick/internal/router"
	queue_publisher "github.com/iliyamo/cinematick/internal/service"
)

func main() {
	cfg := config.Load() // Load environment config

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	events := repository.NewEventRepo(db)
	bookings := repository.NewBookingRepo(db)
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)

	// Rebuild the in-memory seat index from the ledger before serving.
	// Every event row gets an entry; held seats come from its CONFIRMED
	// bookings.
	inv := inventory.NewStore()
	if err := hydrateInventory(context.Background(), inv, events, bookings); err != nil {
		log.Fatalf("inventory hydration: %v", err)
	}

	coord := booking.NewCoordinator(events, bookings, inv, queue_publisher.NewQueueNotifier())

	// Notification consumer runs for the lifetime of the process and
	// reconnects on broker failures.
	go func() {
		if err := queue.StartNotificationConsumer(); err != nil {
			log.Printf("notification consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	e.HideBanner = true

	// Redis is optional: without it rate limiting and response caching
	// are simply skipped.
	rdb := config.NewRedisClient()
	if rdb != nil {
		e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
	}
	var cacheMw echo.MiddlewareFunc
	if rdb != nil {
		if cacheCfg := config.LoadCacheConfig(); cacheCfg.Enabled {
			cacheMw = middleware.NewRedisCache(cacheCfg, rdb)
		}
	}

	authH := handler.NewAuthHandler(cfg, users, tokens)
	eventH := handler.NewEventHandler(events, inv)
	bookingH := handler.NewBookingHandler(coord, users, bookings)

	router.RegisterRoutes(e)
	router.RegisterAuth(e, authH, cfg.JWTSecret)
	router.RegisterPublic(e, eventH, bookingH, cacheMw)
	router.RegisterBooking(e, bookingH, cfg.JWTSecret)
	router.RegisterAdminEvents(e, eventH, cfg.JWTSecret)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	go func() {
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server: %v", err)
		}
	}()

	// Block until interrupted, then drain in-flight requests.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}

// hydrateInventory registers every event in the seat index and
// re-reserves the seats of its confirmed bookings.
func hydrateInventory(ctx context.Context, inv *inventory.Store, events *repository.EventRepo, bookings *repository.BookingRepo) error {
	all, err := events.ListAll(ctx)
	if err != nil {
		return err
	}
	for _, ev := range all {
		held, err := bookings.HeldSeats(ctx, ev.ID)
		if err != nil {
			return err
		}
		inv.Register(ev.ID, int(ev.TotalSeats), held)
	}
	log.Printf("inventory hydrated for %d events", len(all))
	return nil
}
