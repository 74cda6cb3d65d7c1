package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"

	"github.com/ebetcoin/backend/internal/config"
	"github.com/ebetcoin/backend/internal/events"
	"github.com/ebetcoin/backend/internal/handler"
	"github.com/ebetcoin/backend/internal/lock"
	"github.com/ebetcoin/backend/internal/middleware"
	"github.com/ebetcoin/backend/internal/repository"
	"github.com/ebetcoin/backend/internal/service"
	"github.com/ebetcoin/backend/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Global().Fatal().Err(err).Msg("failed to load config")
	}

	logger.Init(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		File:   cfg.Log.File,
	})
	log := logger.Global()

	// Connect to database
	repo, err := repository.New(cfg.Database.DSN(), cfg.Ledger.SnowflakeNode)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer repo.Close()

	// Optional infrastructure
	var locker lock.Locker = lock.NopLocker{}
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()

		pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			log.Fatal().Err(err).Str("addr", cfg.Redis.Addr).Msg("failed to connect to redis")
		}
		cancel()
		locker = lock.NewRedisLocker(rdb, cfg.Redis.LockTTL)
		log.Info().Str("addr", cfg.Redis.Addr).Msg("intake locking enabled")
	}

	var publisher events.Publisher = events.NopPublisher{}
	if cfg.RabbitMQ.URL != "" {
		p, err := events.NewAMQPPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to rabbitmq")
		}
		publisher = p
		log.Info().Str("exchange", cfg.RabbitMQ.Exchange).Msg("event publishing enabled")
	}
	defer publisher.Close()

	// Create services
	userSvc := service.NewUserService(repo)
	walletSvc := service.NewWalletService(repo)
	bonusSvc := service.NewBonusService(repo)

	depositSvc := service.NewDepositService(repo, cfg.Ledger)
	depositSvc.SetLocker(locker)
	depositSvc.SetPublisher(publisher)

	withdrawalSvc := service.NewWithdrawalService(repo, cfg.Ledger)
	withdrawalSvc.SetLocker(locker)
	withdrawalSvc.SetPublisher(publisher)

	promoCodeSvc := service.NewPromoCodeService(repo)
	promoCodeSvc.SetPublisher(publisher)

	adminSvc := service.NewAdminService(repo, cfg.Ledger)
	adminSvc.SetPublisher(publisher)

	// Create handlers
	h := handler.New(userSvc, walletSvc, depositSvc, withdrawalSvc, bonusSvc, promoCodeSvc)
	adminHandler := handler.NewAdminHandler(adminSvc, promoCodeSvc)

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: handler.ErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(middleware.RequestLogger())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.Server.AllowOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, " + middleware.RequestIDHeader,
	}))

	handler.Register(app, h, adminHandler,
		middleware.JWTAuth(cfg.Auth), middleware.AdminAuth(adminSvc), middleware.BanCheck(adminSvc))

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Info().Msg("shutting down server")
		_ = app.ShutdownWithTimeout(10 * time.Second)
	}()

	// Start server
	log.Info().
		Str("port", cfg.Server.Port).
		Str("environment", cfg.Server.Environment).
		Str("ebt_per_usd", cfg.Ledger.EBTPerUSD.String()).
		Bool("hold_withdrawals", cfg.Ledger.HoldWithdrawals).
		Msg("server starting")
	if err := app.Listen(":" + cfg.Server.Port); err != nil {
		log.Fatal().Err(err).Msg("failed to start server")
	}
}
