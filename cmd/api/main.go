package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/geocoder89/taskhub/internal/auth"
	"github.com/geocoder89/taskhub/internal/config"
	"github.com/geocoder89/taskhub/internal/db"
	httpx "github.com/geocoder89/taskhub/internal/http"
	"github.com/geocoder89/taskhub/internal/observability"
	"github.com/geocoder89/taskhub/internal/redisclient"
	"github.com/geocoder89/taskhub/internal/repo/sqlstore"
	"github.com/geocoder89/taskhub/internal/security"
	"github.com/geocoder89/taskhub/internal/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/pflag"
)

func main() {
	envFile := pflag.String("env-file", ".env", "dotenv file to load before reading the environment")
	port := pflag.Int("port", 0, "listen port (overrides PORT)")
	dbPath := pflag.String("db-path", "", "sqlite database file (overrides DB_PATH)")
	pflag.Parse()

	// Load the config set up
	cfg := config.Load(*envFile)
	if *port != 0 {
		cfg.Port = *port
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}

	log := observability.NewLogger(cfg.Env, os.Stdout)
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("server failed", "err", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx := context.Background()

	shutdownTracer, err := observability.InitTracer(ctx, "taskhub", cfg.Env, cfg.OTelEndpoint)
	if err != nil {
		return err
	}
	defer func() {
		tctx, cancel := config.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracer(tctx)
	}()

	openCtx, cancel := config.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	sqlDB, dialect, err := db.Open(openCtx, cfg.DBDriver, cfg.DBPath, cfg.DBURL)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer sqlDB.Close()

	if err := db.Migrate(openCtx, sqlDB, dialect); err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	prom := observability.NewProm(reg)

	store := sqlstore.New(sqlDB, dialect, prom)
	hasher := security.NewHasher(cfg.BcryptCost)

	seed := db.AdminSeed{Name: cfg.AdminName, Email: cfg.AdminEmail, Password: cfg.AdminPassword}
	if err := db.EnsureAdminUser(openCtx, sqlstore.NewUsersRepo(store), hasher, seed); err != nil {
		return err
	}

	var revoker session.Revoker = session.NewMemory()
	if cfg.RedisAddr != "" {
		rdb := redisclient.New(redisclient.Config{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
		defer rdb.Close()

		if err := rdb.Ping(openCtx); err != nil {
			return fmt.Errorf("redis ping: %w", err)
		}
		revoker = session.NewRedis(rdb)
		log.Info("session revocations stored in redis", "addr", cfg.RedisAddr)
	}

	router := httpx.NewRouter(httpx.Deps{
		Config:   cfg,
		Store:    store,
		Sessions: auth.NewManager(cfg.SessionSecret, cfg.SessionTTL),
		Revoker:  revoker,
		Hasher:   hasher,
		Registry: reg,
		Prom:     prom,
	})

	// server set up
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("Server starting", "port", cfg.Port, "env", cfg.Env, "db", string(dialect))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-stop:
	}
	log.Info("server shutting down")

	shutdownCtx, cancelShutdown := config.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}

	log.Info("shutdown complete")
	return nil
}
