package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"costedge/backend/config"
	"costedge/backend/internal/api/handler"
	"costedge/backend/internal/api/router"
	"costedge/backend/internal/model"
	"costedge/backend/internal/repository"
	"costedge/backend/internal/service"
	"costedge/backend/pkg/database"
	"costedge/backend/pkg/jwt"
	applogger "costedge/backend/pkg/logger"
	"costedge/backend/pkg/redis"
	"costedge/backend/pkg/tracing"
)

func main() {
	configPath := flag.String("config", "", "path to a config file")
	flag.Parse()

	// 1. environment and config
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "load .env: %v\n", err)
	}
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	// 2. logger
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting costedge backend",
		zap.Int("port", cfg.Server.Port),
		zap.String("db_driver", cfg.Database.Driver),
		zap.Bool("auth", cfg.Auth.Enabled()),
	)

	// 3. tracing
	shutdownTracing, err := tracing.Init(context.Background(), &cfg.Tracing, logger)
	if err != nil {
		logger.Fatal("init tracing", zap.Error(err))
	}

	// 4. database and schema
	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		logger.Fatal("connect database", zap.Error(err))
	}
	if cfg.Tracing.Enabled {
		if err := database.EnableTracing(db); err != nil {
			logger.Warn("database tracing disabled", zap.Error(err))
		}
	}
	if cfg.Database.AutoMigrate {
		if cfg.Database.Driver == "sqlite" {
			if err := db.AutoMigrate(model.All()...); err != nil {
				logger.Fatal("auto migrate", zap.Error(err))
			}
		} else {
			sqlDB, err := db.DB()
			if err != nil {
				logger.Fatal("get sql.DB", zap.Error(err))
			}
			if err := database.RunMigrations(sqlDB, logger); err != nil {
				logger.Fatal("run migrations", zap.Error(err))
			}
		}
	}

	// 5. redis (optional: reports go uncached and rate limiting is off without it)
	rdb, err := redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		logger.Warn("redis unavailable, running without report cache and rate limit", zap.Error(err))
		rdb = nil
	}
	var cache service.ReportCache
	if rdb != nil {
		cache = rdb
	}

	// 6. Repository → Service → Handler
	repo := repository.NewRepository(db)
	svc := service.NewService(cfg, repo, cache, logger)
	h := handler.NewHandler(svc, repo)
	jwtMgr := jwt.NewManager(&cfg.Auth)

	engine := router.Setup(cfg, h, jwtMgr, rdb, logger)

	// 7. HTTP server with graceful shutdown
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("http server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("shutting down", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	if err := shutdownTracing(ctx); err != nil {
		logger.Error("tracing shutdown", zap.Error(err))
	}
	if sqlDB, _ := db.DB(); sqlDB != nil {
		sqlDB.Close()
	}
	if rdb != nil {
		rdb.Close()
	}

	logger.Info("server stopped")
}
