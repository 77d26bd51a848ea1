package main // Entry point package

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/iliyamo/theater-seating/internal/config"
	"github.com/iliyamo/theater-seating/internal/database"
	"github.com/iliyamo/theater-seating/internal/handler"
	"github.com/iliyamo/theater-seating/internal/logger"
	"github.com/iliyamo/theater-seating/internal/middleware"
	"github.com/iliyamo/theater-seating/internal/queue"
	"github.com/iliyamo/theater-seating/internal/repository"
	"github.com/iliyamo/theater-seating/internal/router"
	"github.com/iliyamo/theater-seating/internal/seating"
	"github.com/iliyamo/theater-seating/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log, err := logger.New(cfg.Log.Level, cfg.Log.Format, "theater-seating")
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	l, err := cfg.Layout()
	if err != nil {
		return err
	}

	// Redis serves the rate limiter whatever the store driver is.
	rdb := config.NewRedisClient(cfg.Redis)
	if rdb == nil {
		log.Warn("redis unavailable; rate limiting disabled", zap.String("addr", cfg.Redis.Addr))
	} else {
		defer rdb.Close()
	}

	st, db, err := openStore(ctx, cfg, rdb, log)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}

	ctrl, err := seating.New(ctx, l, st, seating.WithLogger(log.Named("seating")))
	if err != nil {
		return fmt.Errorf("restore chart: %w", err)
	}

	var pub queue.Publisher = queue.NopPublisher{}
	if cfg.Queue.Enabled {
		pub = queue.NewAMQPPublisher(cfg.Queue.URL, cfg.Queue.Name, log.Named("queue"))
		if cfg.Queue.Consumer {
			consumer := &queue.AuditConsumer{
				URL:   cfg.Queue.URL,
				Queue: cfg.Queue.Name,
				Path:  cfg.Queue.AuditLog,
				Log:   log.Named("audit"),
			}
			go func() {
				if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
					log.Error("audit consumer stopped", zap.Error(err))
				}
			}()
		}
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.RequestID())
	e.Use(echomw.Recover())
	e.Use(middleware.RequestLogger(log.Named("http")))
	e.Use(echomw.BodyLimit(fmt.Sprintf("%dK", cfg.MaxUploadBytes>>10+64)))

	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg), cfg.JWTSecret)
	router.RegisterChart(e,
		handler.NewChartHandler(ctrl, pub, cfg.Store.ChartID, log.Named("chart")),
		cfg.JWTSecret,
		middleware.NewTokenBucket(cfg.RateLimit, rdb, log.Named("ratelimit")),
		cfg.MaxUploadBytes,
	)

	addr := ":" + cfg.Port
	log.Info("listening",
		zap.String("addr", addr),
		zap.String("env", cfg.Env),
		zap.String("store", cfg.Store.Driver),
		zap.String("chart", cfg.Store.ChartID),
		zap.Int("capacity", l.TotalCapacity()))

	errCh := make(chan error, 1)
	go func() { errCh <- e.Start(addr) }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

// openStore builds the chart store for the configured driver. A redis
// store falls back to memory when Redis could not be reached.
func openStore(ctx context.Context, cfg config.Config, rdb *redis.Client, log *zap.Logger) (store.Store, *sql.DB, error) {
	keys := store.NewKeys(cfg.Store.Prefix, cfg.Store.ChartID)
	storeLog := log.Named("store")

	switch cfg.Store.Driver {
	case config.StoreMySQL:
		db, err := database.Open(ctx, cfg.DB)
		if err != nil {
			return nil, nil, fmt.Errorf("open mysql: %w", err)
		}
		if err := repository.NewChartStateRepo(db).EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("ensure chart_state schema: %w", err)
		}
		return store.NewMySQL(db, keys, storeLog), db, nil
	case config.StoreRedis:
		if rdb != nil {
			return store.NewRedis(rdb, keys, storeLog), nil, nil
		}
		log.Warn("redis store unavailable; chart state will not survive a restart")
	}
	return store.NewMemory(keys, storeLog), nil, nil
}
