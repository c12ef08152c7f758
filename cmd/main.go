// cmd/main.go is the application entry point.
// It wires together all layers and starts the HTTP server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Vaishnavi-Kahar/FloorPlanManagementSystem/internal/config"
	"github.com/Vaishnavi-Kahar/FloorPlanManagementSystem/internal/database"
	"github.com/Vaishnavi-Kahar/FloorPlanManagementSystem/internal/handler"
	"github.com/Vaishnavi-Kahar/FloorPlanManagementSystem/internal/repository"
	"github.com/Vaishnavi-Kahar/FloorPlanManagementSystem/internal/service"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()
	cfg := config.Load()

	var logger *zap.Logger
	var err error
	if cfg.Log.Format == "console" {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	// ── 1. Stores ─────────────────────────────────────────────────────────
	// The in-memory store backs everything when the external backends are
	// disabled, so `go run ./cmd` works without containers.
	mem := repository.NewMemoryStore()

	var rooms repository.RoomRepository = mem
	var bookings repository.BookingRepository = mem
	if cfg.DBEnabled {
		pool, err := database.NewPool(ctx, cfg.Database)
		if err != nil {
			logger.Fatal("database", zap.Error(err))
		}
		defer pool.Close()
		logger.Info("connected to postgres", zap.String("db", cfg.Database.DBName))
		rooms = repository.NewPostgresRoomRepository(pool)
		bookings = repository.NewPostgresBookingRepository(pool)
	} else {
		logger.Warn("DB disabled, using in-memory store")
	}

	var layouts repository.LayoutRepository = mem
	if cfg.RedisEnabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Fatal("redis", zap.Error(err))
		}
		logger.Info("connected to redis", zap.String("addr", cfg.Redis.Addr))
		layouts = repository.NewRedisLayoutRepository(rdb)
	} else {
		logger.Warn("redis disabled, layouts held in memory")
	}

	// ── 2. Wire up layers ─────────────────────────────────────────────────
	allocSvc := service.NewAllocationService(rooms, bookings, cfg.LockWait, logger)
	layoutSvc := service.NewLayoutService(layouts, logger)
	api := handler.NewAPI(allocSvc, layoutSvc)

	// ── 3. Build the router ───────────────────────────────────────────────
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(handler.AccessLog(logger))
	r.Use(handler.CORS)

	r.Get("/health", handler.HealthCheck)

	r.Route("/rooms", func(r chi.Router) {
		r.Post("/", api.CreateRoom)
		r.Get("/", api.ListRooms)
		r.Get("/suggest", api.SuggestRoom)
		r.Get("/{id}", api.GetRoom)
		r.Post("/{id}/bookings", api.BookRoom)
		r.Get("/{id}/bookings", api.ListBookings)
	})
	r.Post("/bookings", api.CreateBooking)
	r.Route("/layouts", func(r chi.Router) {
		r.Post("/merge", api.MergeLayouts)
		r.Get("/{id}", api.GetLayout)
		r.Post("/{id}/sync", api.SyncLayout)
	})

	// ── 4. Start server with graceful shutdown ────────────────────────────
	srv := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("addr", cfg.HTTP.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("graceful shutdown failed", zap.Error(err))
	}
	logger.Info("server stopped")
}
