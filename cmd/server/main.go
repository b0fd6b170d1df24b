package main

import (
	"context"
	"database/sql"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/egabank/ledger/internal/auth"
	"github.com/egabank/ledger/internal/clients"
	"github.com/egabank/ledger/internal/config"
	"github.com/egabank/ledger/internal/engine"
	"github.com/egabank/ledger/internal/events"
	"github.com/egabank/ledger/internal/handler"
	"github.com/egabank/ledger/internal/middleware"
	"github.com/egabank/ledger/internal/service"
	"github.com/egabank/ledger/internal/store/postgres"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("failed to open database", zap.Error(err))
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Fatal("failed to ping database", zap.Error(err))
	}

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer redisClient.Close()
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		logger.Warn("redis unreachable, events will be dropped", zap.Error(err))
	}
	publisher := events.NewStreamPublisher(redisClient)

	st := postgres.New(db)
	registry := clients.NewPostgresRegistry(db)

	ledger := engine.New(st, engine.Limits{
		MaxWithdrawal: cfg.MaxWithdrawal,
		MaxTransfer:   cfg.MaxTransfer,
	}, publisher, logger)
	accounts := service.NewAccountService(st, registry, cfg.CountryCode, cfg.BankCode, cfg.Currency, publisher, logger)

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)
	revoker := auth.NewRevoker()
	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	go revoker.Sweep(sweepCtx, time.Minute)

	authHandler := handler.NewAuthHandler(registry, tokens, revoker)
	accountHandler := handler.NewAccountHandler(accounts)
	transactionHandler := handler.NewTransactionHandler(ledger, accounts)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(logger))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	v1 := router.Group("/v1")
	{
		authGroup := v1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/logout", middleware.AuthRequired(tokens, revoker), authHandler.Logout)
		}

		protected := v1.Group("", middleware.AuthRequired(tokens, revoker))
		{
			protected.POST("/accounts", accountHandler.CreateAccount)
			protected.GET("/accounts", accountHandler.ListAccounts)
			protected.GET("/accounts/:accountNumber", accountHandler.GetAccount)
			protected.DELETE("/accounts/:accountNumber", accountHandler.DeleteAccount)
			protected.GET("/accounts/:accountNumber/balance", accountHandler.GetBalance)

			protected.POST("/accounts/:accountNumber/transactions", transactionHandler.CreateTransaction)
			protected.GET("/accounts/:accountNumber/transactions", transactionHandler.ListTransactions)

			protected.POST("/transfers", transactionHandler.Transfer)
		}
	}

	logger.Info("ledger server starting", zap.String("port", cfg.Port))
	if err := router.Run(":" + cfg.Port); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}
