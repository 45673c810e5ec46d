package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog/log"

	"github.com/venora-platform/booking-engine/internal/audit"
	"github.com/venora-platform/booking-engine/internal/config"
	dbpkg "github.com/venora-platform/booking-engine/internal/db"
	"github.com/venora-platform/booking-engine/internal/dispatcher"
	"github.com/venora-platform/booking-engine/internal/infra/lock"
	"github.com/venora-platform/booking-engine/internal/infra/repository"
	"github.com/venora-platform/booking-engine/internal/middleware"
	"github.com/venora-platform/booking-engine/internal/ratelimit"
	"github.com/venora-platform/booking-engine/internal/routes"
	"github.com/venora-platform/booking-engine/internal/usecase/reservation"
	"github.com/venora-platform/booking-engine/internal/usecase/timeslot"
)

func main() {
	cfg := config.Load()
	db := dbpkg.NewDB(cfg)

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid REDIS_URL")
	}
	redisClient := redis.NewClient(redisOpts)

	storeLck := lock.NewStoreLock(redisClient, 0)

	webhookRepo := repository.NewWebhookGormRepository(db)
	spill := dispatcher.NewSpillQueue(redisClient)
	dsp := dispatcher.New(webhookRepo, cfg.WebhookQueueSize, spill)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	go dsp.Run(ctx, cfg.WebhookWorkers)

	uow := repository.NewReservationUnitOfWork(db, storeLck)
	engine := reservation.New(uow, dsp)
	slotGen := timeslot.NewGenerator(db, storeLck, dsp)

	auditDispatcher := audit.NewDispatcher(audit.New(db))
	limiter := ratelimit.New(cfg.RateLimitPerWindow, cfg.RateLimitWindow)

	r := gin.Default()
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))
	r.Use(middleware.RateLimitMiddleware(limiter))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	routes.RegisterRoutes(r, routes.Dependencies{
		DB:              db,
		Config:          cfg,
		Engine:          engine,
		SlotGenerator:   slotGen,
		AuditDispatcher: auditDispatcher,
	})

	log.Info().Str("addr", cfg.Addr()).Msg("server starting")
	if err := r.Run(cfg.Addr()); err != nil {
		log.Fatal().Err(err).Msg("failed to start server")
	}
}
