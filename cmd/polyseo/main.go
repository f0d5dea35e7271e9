package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go_polyseo/internal/app"
	"go_polyseo/internal/cache"
	"go_polyseo/internal/config"
	"go_polyseo/internal/db"
	"go_polyseo/internal/metrics"
	"go_polyseo/internal/redirect"
	"go_polyseo/internal/sitecache"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", os.Getenv("POLYSEO_CONFIG"), "path to config.ini (environment only when empty)")
	flag.Parse()

	// 1. Load configuration
	cfg, err := loadConfig(configPath)
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}
	log := newLogger(cfg.Log)
	log.Info("✓ Configuration loaded")

	// 2. Initialize database
	gdb, err := db.Open(cfg.DB.Driver, cfg.DSN(), log)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close(gdb)
	if cfg.Migrate {
		if err := db.Migrate(gdb, log); err != nil {
			log.Fatalf("Failed to migrate database: %v", err)
		}
	}

	// 3. Initialize sitemap cache
	store, rdb, err := openCache(cfg, log)
	if err != nil {
		log.Fatalf("Failed to initialize cache: %v", err)
	}
	if rdb != nil {
		defer rdb.Close()
	}

	// 4. Initialize metrics
	pub, err := metrics.NewPublisher(cfg.DataDog.Enabled, cfg.DataDog.Addr, cfg.DataDog.Prefix, log)
	if err != nil {
		log.Fatalf("Failed to initialize metrics: %v", err)
	}
	defer pub.Close()

	// 5. Assemble services and workers
	gin.SetMode(gin.ReleaseMode)
	a, err := app.New(context.Background(), app.Options{
		SiteURL: cfg.SiteURL,
		DB:      gdb,
		Cache:   store,
		Metrics: pub,
		Log:     log,
		Sweeper: sitecache.SweeperConfig{
			Enabled:     cfg.CacheSweeper.Enabled,
			IntervalSec: cfg.CacheSweeper.IntervalSec,
		},
		Verifier: redirect.VerifierConfig{
			Enabled:     cfg.RedirectVerifier.Enabled,
			IntervalSec: cfg.RedirectVerifier.IntervalSec,
			BatchSize:   cfg.RedirectVerifier.BatchSize,
			TimeoutSec:  cfg.RedirectVerifier.TimeoutSec,
			Concurrency: cfg.RedirectVerifier.Concurrency,
		},
		Cleaner: redirect.CleanerConfig{
			Enabled:       cfg.RedirectCleaner.Enabled,
			IntervalSec:   cfg.RedirectCleaner.IntervalSec,
			RetentionDays: cfg.RedirectCleaner.RetentionDays,
		},
	})
	if err != nil {
		log.Fatalf("Failed to initialize app: %v", err)
	}
	a.Start()
	defer a.Stop()

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           a.Engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Infof("✓ Server starting on %s, site=%s", cfg.HTTPAddr, cfg.SiteURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("Server error")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("Graceful shutdown failed")
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFromINI(path)
	}
	return config.Load()
}

func newLogger(cfg config.LogConfig) *logrus.Entry {
	l := logrus.New()
	l.SetOutput(os.Stdout)
	if strings.EqualFold(cfg.Format, "json") {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	l.SetLevel(level)
	return logrus.NewEntry(l)
}

func openCache(cfg *config.Config, log *logrus.Entry) (sitecache.Store, *redis.Client, error) {
	if cfg.Cache.Driver == "redis" {
		rdb, err := cache.OpenRedis(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, log)
		if err != nil {
			return nil, nil, err
		}
		return sitecache.NewRedisStore(rdb, log), rdb, nil
	}
	store, err := sitecache.NewFileStore(cfg.Cache.Dir, log)
	return store, nil, err
}
