package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"event-dashboard-api/internal/config"
	"event-dashboard-api/internal/handler"
	"event-dashboard-api/internal/logger"
	"event-dashboard-api/internal/middleware"
	"event-dashboard-api/internal/notify"
	"event-dashboard-api/internal/push"
	"event-dashboard-api/internal/scheduler"
	"event-dashboard-api/internal/stats"
	"event-dashboard-api/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	zlog, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer zlog.Sync()

	// database
	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		zlog.Fatal("db", zap.Error(err))
	}
	defer pool.Close()
	if err := pool.Ping(context.Background()); err != nil {
		zlog.Fatal("db ping", zap.Error(err))
	}
	zlog.Info("connected to postgres")

	// run migrations
	if migration, err := os.ReadFile("db/migrations/001_init.sql"); err != nil {
		zlog.Warn("migration file not found, skipping", zap.Error(err))
	} else if _, err := pool.Exec(context.Background(), string(migration)); err != nil {
		zlog.Warn("migration warning", zap.Error(err))
	} else {
		zlog.Info("migration applied")
	}

	st := store.New(pool)
	pushClient := push.NewClient(cfg.PushEndpoint, cfg.PushProjectID, cfg.ResolvePushKey(""))
	if !pushClient.HasKey() {
		zlog.Warn("no push api key configured, relying on X-Api-Key header")
	}

	agg := stats.NewAggregator(st, zlog)
	h := handler.New(st, st, pushClient, agg, zlog)

	// reminder sweep on cron
	dispatcher := notify.NewDispatcher(st, pushClient, zlog)
	sched, err := scheduler.New(cfg.ReminderCron, dispatcher, zlog)
	if err != nil {
		zlog.Fatal("scheduler", zap.Error(err))
	}
	sched.Start()
	zlog.Info("reminder sweep scheduled", zap.String("cron", cfg.ReminderCron))

	rl := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	httpSrv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: rl.Limit(h.Routes()),
	}
	go func() {
		zlog.Info("http listening", zap.String("port", cfg.Port))
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zlog.Error("http", zap.Error(err))
		}
	}()

	// graceful shutdown
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	<-ch
	zlog.Info("shutting down")

	<-sched.Stop().Done()
	shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shCtx); err != nil {
		zlog.Warn("http shutdown", zap.Error(err))
	}
}
