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

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/example/reservation-scheduler/internal/application"
	"github.com/example/reservation-scheduler/internal/audit"
	"github.com/example/reservation-scheduler/internal/config"
	httptransport "github.com/example/reservation-scheduler/internal/http"
	"github.com/example/reservation-scheduler/internal/jobs"
	"github.com/example/reservation-scheduler/internal/lifecycle"
	"github.com/example/reservation-scheduler/internal/lock"
	"github.com/example/reservation-scheduler/internal/logging"
	"github.com/example/reservation-scheduler/internal/persistence"
	"github.com/example/reservation-scheduler/internal/persistence/postgres"
	"github.com/example/reservation-scheduler/internal/persistence/sqlite"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger, err := logging.New(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("scheduler stopped with error", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
}

// store is what both database backends provide.
type store interface {
	persistence.ReservationRepository
	persistence.CatalogRepository
	persistence.StateRepository
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}

func run(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	db, err := openStore(cfg.Storage, logger)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			logger.Error("failed to close storage", zap.Error(cerr))
		}
	}()

	if err := db.Migrate(ctx); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	if err := verifyStateCatalog(ctx, db); err != nil {
		return err
	}

	hours, err := operatingHours(cfg.Scheduling)
	if err != nil {
		return err
	}

	var locker application.Locker
	if cfg.Redis.Enabled {
		client, err := lock.Dial(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return err
		}
		defer func() { _ = client.Close() }()
		locker = lock.NewRedisLocker(client, lock.Options{TTL: cfg.Redis.LockTTL}, logger)
		logger.Info("redis reservation locks enabled", zap.String("addr", cfg.Redis.Addr))
	}

	recorders := audit.Multi{audit.NewLogRecorder(logger)}
	if cfg.AMQP.Enabled {
		conn, publisher, err := audit.DialAMQP(cfg.AMQP.URL, cfg.AMQP.Exchange)
		if err != nil {
			return err
		}
		defer func() { _ = conn.Close() }()
		recorders = append(recorders, publisher)
		logger.Info("audit events published to amqp", zap.String("exchange", cfg.AMQP.Exchange))
	}

	catalogs := newCatalogAdapter(db)
	scheduler := application.NewReservationScheduler(application.SchedulerConfig{
		Reservations:  newReservationStoreAdapter(db, time.Now),
		Rooms:         catalogs,
		Teachers:      catalogs,
		Activities:    catalogs,
		People:        catalogs,
		States:        newStateCatalogAdapter(db),
		StateCacheTTL: cfg.Scheduling.StateCacheTTL,
		Locker:        locker,
		Audit:         recorders,
		Hours:         hours,
		IDGenerator:   uuid.NewString,
		Logger:        logger,
	})
	catalogService := application.NewCatalogService(catalogs, uuid.NewString, logger)

	sweep, err := jobs.NewCompletionSweep(scheduler, jobs.SweepConfig{
		Spec:     cfg.Scheduling.SweepSpec,
		Limit:    cfg.Scheduling.SweepLimit,
		Location: hours.Location,
	}, logger)
	if err != nil {
		return err
	}
	sweep.Start()

	reload := make(chan os.Signal, 1)
	signal.Notify(reload, syscall.SIGHUP)
	defer signal.Stop(reload)
	go func() {
		for range reload {
			scheduler.InvalidateStateCache()
			logger.Info("state catalog cache invalidated")
		}
	}()

	gin.SetMode(gin.ReleaseMode)
	router := httptransport.NewRouter(httptransport.RouterConfig{
		Reservations: httptransport.NewReservationHandler(scheduler, logger),
		Catalog:      httptransport.NewCatalogHandler(catalogService, logger),
		Calendars:    httptransport.NewCalendarHandler(scheduler, logger),
		Tokens:       httptransport.NewTokenAuthority(cfg.Auth.JWTSecret, cfg.Auth.Issuer),
		Logger:       logger,
		Health:       db.Ping,
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("scheduler API listening", zap.String("addr", server.Addr), zap.String("storage", cfg.Storage.Driver))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("serve http: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("failed to shutdown server", zap.Error(err))
	}
	sweep.Stop(shutdownCtx)
	logger.Info("scheduler stopped")
	return nil
}

func openStore(cfg config.StorageConfig, logger *zap.Logger) (store, error) {
	switch cfg.Driver {
	case "postgres":
		return postgres.Open(postgres.Config{
			DSN:             cfg.Postgres.DSN(),
			MaxOpenConns:    cfg.Postgres.MaxOpenConns,
			MaxIdleConns:    cfg.Postgres.MaxIdleConns,
			ConnMaxLifetime: cfg.Postgres.ConnMaxLifetime,
		}, logger)
	case "sqlite":
		sqliteCfg := sqlite.DefaultConfig(cfg.SQLite.DSN)
		if cfg.SQLite.BusyTimeout > 0 {
			sqliteCfg.BusyTimeout = cfg.SQLite.BusyTimeout
		}
		if cfg.SQLite.JournalMode != "" {
			sqliteCfg.JournalMode = cfg.SQLite.JournalMode
		}
		if cfg.SQLite.MaxOpenConns > 0 {
			sqliteCfg.MaxOpenConns = cfg.SQLite.MaxOpenConns
			sqliteCfg.MaxIdleConns = cfg.SQLite.MaxOpenConns
		}
		return sqlite.Open(sqliteCfg, logger)
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.Driver)
	}
}

// verifyStateCatalog fails startup when a lifecycle state is missing from
// the stored catalog.
func verifyStateCatalog(ctx context.Context, states persistence.StateRepository) error {
	stored, err := states.ListStates(ctx)
	if err != nil {
		return fmt.Errorf("load state catalog: %w", err)
	}
	present := make(map[string]struct{}, len(stored))
	for _, state := range stored {
		present[state.Code] = struct{}{}
	}
	for _, state := range lifecycle.States() {
		if _, ok := present[string(state)]; !ok {
			return fmt.Errorf("state catalog is missing %s", state)
		}
	}
	return nil
}

func operatingHours(cfg config.SchedulingConfig) (application.OperatingHours, error) {
	loc, err := cfg.Location()
	if err != nil {
		return application.OperatingHours{}, fmt.Errorf("scheduling timezone: %w", err)
	}
	def, err := application.ParseDailyWindow(cfg.Open, cfg.Close)
	if err != nil {
		return application.OperatingHours{}, fmt.Errorf("scheduling window: %w", err)
	}

	hours := application.OperatingHours{Location: loc, Default: def}
	if len(cfg.Rooms) > 0 {
		hours.Rooms = make(map[string]application.DailyWindow, len(cfg.Rooms))
		for roomID, window := range cfg.Rooms {
			parsed, err := application.ParseDailyWindow(window.Open, window.Close)
			if err != nil {
				return application.OperatingHours{}, fmt.Errorf("scheduling window for room %s: %w", roomID, err)
			}
			hours.Rooms[roomID] = parsed
		}
	}
	return hours, nil
}
