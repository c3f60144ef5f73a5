package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/d60-Lab/quote-inbox/config"
	"github.com/d60-Lab/quote-inbox/internal/api/handler"
	"github.com/d60-Lab/quote-inbox/internal/api/router"
	"github.com/d60-Lab/quote-inbox/internal/cache"
	"github.com/d60-Lab/quote-inbox/internal/diagnostics"
	"github.com/d60-Lab/quote-inbox/internal/repository"
	"github.com/d60-Lab/quote-inbox/internal/service"
	"github.com/d60-Lab/quote-inbox/pkg/database"
	"github.com/d60-Lab/quote-inbox/pkg/logger"
	"github.com/d60-Lab/quote-inbox/pkg/tracing"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("load config: " + err.Error() + "\n")
		os.Exit(1)
	}
	if err := logger.Init(cfg.Log.Level, cfg.Log.Format); err != nil {
		os.Stderr.WriteString("init logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer logger.Sync()

	shutdownTracing, err := tracing.Init(ctx, cfg.Tracing)
	if err != nil {
		logger.Fatal("init tracing failed", zap.Error(err))
	}

	if cfg.Sentry.DSN != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: cfg.Sentry.DSN, Environment: cfg.Sentry.Environment}); err != nil {
			logger.Fatal("init sentry failed", zap.Error(err))
		}
		defer sentry.Flush(2 * time.Second)
	}

	db, err := database.InitDB(cfg)
	if err != nil {
		logger.Fatal("connect database failed", zap.Error(err))
	}

	caps := repository.NewNegotiator(db, logger.L()).Capabilities(ctx)
	messages := repository.NewMessageStore(db, caps)

	var unread repository.UnreadReader = repository.NewUnreadRepository(db, messages, caps)
	if cfg.Redis.Enabled {
		client := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		defer client.Close()
		if err := client.Ping(ctx).Err(); err != nil {
			logger.Warn("redis unavailable, unread cache disabled", zap.Error(err))
		} else {
			unread = cache.NewUnreadCache(unread, client, cfg.Redis.UnreadTTL)
		}
	}

	inbox := service.NewInboxService(service.InboxDeps{
		Quotes:          repository.NewQuoteRepository(db, caps),
		Parties:         repository.NewPartyRepository(db),
		SupplierSignals: repository.NewSupplierSignalRepository(db, caps),
		Messages:        messages,
		Aggregator:      repository.NewSignalAggregator(db, caps),
		Kickoff:         repository.NewKickoffRepository(db, caps),
		Unread:          unread,
		Diagnostics:     diagnostics.NewOnce(logger.L()),
	}, service.InboxOptions{
		AdminWorkingSet:     cfg.Inbox.AdminWorkingSet,
		ScanFloor:           cfg.Inbox.ScanFloor,
		ScanCeiling:         cfg.Inbox.ScanCeiling,
		ScanPerThread:       cfg.Inbox.ScanPerThread,
		OptionalCallTimeout: cfg.Inbox.OptionalCallTimeout,
	})

	gin.SetMode(cfg.Server.Mode)
	engine := router.New(handler.NewHandler(inbox), router.Config{
		JWTSecret:   cfg.JWT.Secret,
		RateLimit:   cfg.Server.RateLimit,
		RateBurst:   cfg.Server.RateBurst,
		ServiceName: cfg.Tracing.ServiceName,
		Tracing:     cfg.Tracing.Enabled,
		Sentry:      cfg.Sentry.DSN != "",
		Swagger:     cfg.Server.Mode != gin.ReleaseMode,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		logger.Info("http server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("http server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", zap.Error(err))
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Error("tracing shutdown error", zap.Error(err))
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
