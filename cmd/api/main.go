package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/clinic-scheduler/internal/audit"
	"github.com/BruksfildServices01/clinic-scheduler/internal/config"
	dbpkg "github.com/BruksfildServices01/clinic-scheduler/internal/db"
	"github.com/BruksfildServices01/clinic-scheduler/internal/idempotency"
	"github.com/BruksfildServices01/clinic-scheduler/internal/infra/memory"
	infraRepo "github.com/BruksfildServices01/clinic-scheduler/internal/infra/repository"
	"github.com/BruksfildServices01/clinic-scheduler/internal/logger"
	"github.com/BruksfildServices01/clinic-scheduler/internal/metrics"
	"github.com/BruksfildServices01/clinic-scheduler/internal/routes"
	"github.com/BruksfildServices01/clinic-scheduler/internal/timezone"
	ucAuth "github.com/BruksfildServices01/clinic-scheduler/internal/usecase/auth"
)

const shutdownTimeout = 15 * time.Second

func main() {
	rootCmd := &cobra.Command{
		Use:          "clinic",
		Short:        "Clinic booking and payment API",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	var inMemory bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(config.Load(), inMemory)
		},
	}
	cmd.Flags().BoolVar(&inMemory, "memory", false, "keep all data in process memory instead of PostgreSQL")
	return cmd
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the schema and create the bootstrap admin",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			log, err := logger.New(cfg.LogLevel, cfg.LogFormat, "clinic-migrate")
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			db, err := dbpkg.NewDB(cfg)
			if err != nil {
				return err
			}
			if err := dbpkg.Migrate(db); err != nil {
				return err
			}
			created, err := ucAuth.EnsureAdmin(cmd.Context(), infraRepo.NewUserGormRepository(db), cfg.AdminUsername, cfg.AdminPassword)
			if err != nil {
				return err
			}
			log.Info("schema up to date", zap.Bool("admin_created", created))
			return nil
		},
	}
}

func runServer(cfg *config.Config, inMemory bool) error {
	log, err := logger.New(cfg.LogLevel, cfg.LogFormat, "clinic-api")
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx := context.Background()
	clock := timezone.NewClock(cfg.TZOffsetHours)

	// ======================================================
	// STORAGE
	// ======================================================
	var (
		repos  routes.Repositories
		health func(context.Context) error
	)
	if inMemory {
		store := memory.New()
		repos = routes.Repositories{
			Bookings: store,
			Billing:  store,
			Clients:  store,
			Catalog:  store,
			Users:    store,
			Audit:    store,
		}
		log.Warn("running with in-memory storage, data is lost on exit")
	} else {
		db, err := dbpkg.NewDB(cfg)
		if err != nil {
			return err
		}
		if err := dbpkg.Migrate(db); err != nil {
			return err
		}
		repos = gormRepositories(db)
		health = func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		}
	}

	if _, err := ucAuth.EnsureAdmin(ctx, repos.Users, cfg.AdminUsername, cfg.AdminPassword); err != nil {
		return fmt.Errorf("bootstrap admin: %w", err)
	}

	// ======================================================
	// INFRA (SINGLETONS)
	// ======================================================
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	var guard *idempotency.Guard
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Warn("redis unreachable, in-flight markers degrade to no-ops", zap.Error(err))
		}
		guard = idempotency.New(rdb, cfg.IdempotencyTTL, log)
	}

	dispatcher := audit.NewDispatcher(repos.Audit, cfg.AuditQueueSize, clock, log, m)

	// ======================================================
	// HTTP
	// ======================================================
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	routes.RegisterRoutes(r, routes.Deps{
		Config:   cfg,
		Repos:    repos,
		Recorder: dispatcher,
		Guard:    guard,
		Clock:    clock,
		Log:      log,
		Metrics:  m,
		Gatherer: reg,
		Health:   health,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server running", zap.String("addr", cfg.Addr()), zap.Bool("memory", inMemory))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		dispatcher.Close()
		return err
	case sig := <-quit:
		log.Info("shutting down", zap.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown", zap.Error(err))
	}

	// pending audit events are written before exit
	dispatcher.Close()
	return nil
}

func gormRepositories(db *gorm.DB) routes.Repositories {
	return routes.Repositories{
		Bookings: infraRepo.NewBookingGormRepository(db),
		Billing:  infraRepo.NewBillingGormRepository(db),
		Clients:  infraRepo.NewClientGormRepository(db),
		Catalog:  infraRepo.NewCatalogGormRepository(db),
		Users:    infraRepo.NewUserGormRepository(db),
		Audit:    audit.New(db),
	}
}
