package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rogerio-castellano/stock-ledger/internal/alerts"
	"github.com/rogerio-castellano/stock-ledger/internal/auth"
	"github.com/rogerio-castellano/stock-ledger/internal/catalog"
	"github.com/rogerio-castellano/stock-ledger/internal/config"
	"github.com/rogerio-castellano/stock-ledger/internal/db"
	"github.com/rogerio-castellano/stock-ledger/internal/http/handlers"
	rl "github.com/rogerio-castellano/stock-ledger/internal/http/rate_limiter"
	"github.com/rogerio-castellano/stock-ledger/internal/http/router"
	"github.com/rogerio-castellano/stock-ledger/internal/logger"
	"github.com/rogerio-castellano/stock-ledger/internal/metrics"
	"github.com/rogerio-castellano/stock-ledger/internal/redissvc"
	"github.com/rogerio-castellano/stock-ledger/internal/remote"
	"github.com/rogerio-castellano/stock-ledger/internal/repo"
	"github.com/rogerio-castellano/stock-ledger/internal/report"
)

// @title Stock Ledger API
// @version 1.0
// @description REST API for the inventory ledger: products, stock movements and movement reports.
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.New(logger.Config{Env: "development"}).Fatal().Err(err).Msg("could not load configuration")
	}

	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ledger := repo.NewInMemoryLedger()

	var archive repo.LedgerArchive
	if cfg.DB.Enabled() {
		database, err := db.Connect(ctx, cfg.DB.URL)
		if err != nil {
			log.Fatal().Err(err).Msg("could not connect to database")
		}
		defer database.Close()

		archive, err = restoreLedger(ctx, database, ledger, log)
		if err != nil {
			log.Fatal().Err(err).Msg("could not restore ledger")
		}
		go runSnapshots(ctx, archive, ledger, cfg.DB.SnapshotInterval, log)
	}

	var (
		notifier    alerts.Notifier
		revocations auth.Revocations
	)
	if cfg.Redis.Enabled() {
		rdb, err := redissvc.Connect(ctx, redissvc.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("could not connect to redis")
		}
		defer rdb.Close()

		notifier = alerts.NewRedisNotifier(rdb, cfg.Alerts.Key, int64(cfg.Alerts.Max))
		revocations = auth.NewRedisRevocations(rdb)
	} else {
		log.Warn().Msg("REDIS_ADDR not set, alerts and token revocations are kept in memory")
		notifier = alerts.NewLogNotifier(log, cfg.Alerts.Max)
		revocations = auth.NewMemoryRevocations()
	}

	m := metrics.New(ledger)

	opts := []catalog.Option{catalog.WithObserver(m)}
	if cfg.Remote.Enabled() {
		opts = append(opts, catalog.WithRemote(remote.NewClient(cfg.Remote.BaseURL, cfg.Remote.Timeout).WithUnitID(cfg.Remote.UnitID)))
	} else {
		log.Warn().Msg("REMOTE_BASE_URL not set, running without the remote catalog")
	}
	catalogSvc := catalog.NewService(ledger, notifier, log, opts...)

	issuer := auth.NewTokenIssuer(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.Expiration)

	limiter := rl.New(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	go limiter.StartCleanupLoop(ctx, time.Minute, 3*time.Minute)

	server := handlers.NewServer(handlers.Deps{
		Ledger:      ledger,
		Reports:     report.NewEngine(ledger),
		Catalog:     catalogSvc,
		Notifier:    notifier,
		Issuer:      issuer,
		Revocations: revocations,
		Log:         log,
	})

	srv := &http.Server{
		Addr: cfg.HTTP.Addr(),
		Handler: router.NewRouter(router.Config{
			Server:      server,
			Tokens:      issuer,
			Revocations: revocations,
			Metrics:     m,
			Limiter:     limiter,
			Log:         log,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Str("env", cfg.App.Env).Msg("server running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}

	if archive != nil {
		if err := archive.Save(shutdownCtx, ledger.Snapshot()); err != nil {
			log.Error().Err(err).Msg("final snapshot failed")
		} else {
			log.Info().Msg("final snapshot saved")
		}
	}
}

func restoreLedger(ctx context.Context, database *sql.DB, ledger *repo.InMemoryLedger, log *logger.Logger) (repo.LedgerArchive, error) {
	if err := db.Migrate(ctx, database); err != nil {
		return nil, err
	}

	archive := repo.NewPostgresLedgerArchive(database)
	products, err := archive.Load(ctx)
	if err != nil {
		return nil, err
	}
	if err := ledger.Restore(products); err != nil {
		return nil, err
	}
	log.Info().Int("products", len(products)).Msg("ledger restored from archive")
	return archive, nil
}

func runSnapshots(ctx context.Context, archive repo.LedgerArchive, ledger repo.Ledger, interval time.Duration, log *logger.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := archive.Save(ctx, ledger.Snapshot()); err != nil {
				log.Error().Err(err).Msg("snapshot failed")
				continue
			}
			log.Debug().Msg("snapshot saved")
		}
	}
}
