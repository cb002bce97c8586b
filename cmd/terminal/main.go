package main

import (
	"context"
	"net/http"
	"os"

	"github.com/GaelCM/Hermes-Pos-Lite-sub000/api/routes"
	"github.com/GaelCM/Hermes-Pos-Lite-sub000/internal/backend"
	"github.com/GaelCM/Hermes-Pos-Lite-sub000/internal/cart"
	"github.com/GaelCM/Hermes-Pos-Lite-sub000/internal/catalog"
	"github.com/GaelCM/Hermes-Pos-Lite-sub000/internal/connectivity"
	"github.com/GaelCM/Hermes-Pos-Lite-sub000/internal/printer"
	"github.com/GaelCM/Hermes-Pos-Lite-sub000/internal/shift"
	"github.com/GaelCM/Hermes-Pos-Lite-sub000/internal/state"
	syncsvc "github.com/GaelCM/Hermes-Pos-Lite-sub000/internal/sync"
	"github.com/GaelCM/Hermes-Pos-Lite-sub000/pkg/config"
	"github.com/GaelCM/Hermes-Pos-Lite-sub000/pkg/db"
	"github.com/GaelCM/Hermes-Pos-Lite-sub000/pkg/logger"
	"github.com/GaelCM/Hermes-Pos-Lite-sub000/pkg/metrics"
	"github.com/GaelCM/Hermes-Pos-Lite-sub000/pkg/migrate"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "terminal"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "terminal",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to open local store", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing local store", err)
		}
	}()

	if err := migrate.MaybeRun(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to migrate local store", err)
		os.Exit(1)
	}

	backendClient, err := backend.NewClient(cfg.Backend, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to build backend client", err)
		os.Exit(1)
	}

	syncMetrics := metrics.NewSyncMetrics(prometheus.DefaultRegisterer)
	stateRepo := state.NewRepository(dbClient.DB())

	catalogService, err := catalog.NewService(
		catalog.NewRepository(dbClient.DB()),
		backendClient,
		stateRepo,
		cfg.Terminal.BranchID,
		logg,
		syncMetrics,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to build catalog service", err)
		os.Exit(1)
	}

	shiftService, err := shift.NewService(backendClient, stateRepo, cfg.Terminal.CashierID, cfg.Terminal.BranchID, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to build shift service", err)
		os.Exit(1)
	}

	var ticketPrinter printer.Printer
	if cfg.Printer.Enabled {
		ticketPrinter = printer.NewLogPrinter(logg)
	}
	notifier := printer.NewNotifier(ticketPrinter, cfg.Printer.ID, logg)

	monitor := connectivity.NewMonitor(backendClient, cfg.Sync.ProbeInterval, logg)

	syncService, err := syncsvc.NewService(
		syncsvc.NewRepository(dbClient.DB()),
		backendClient,
		catalogService,
		shiftService,
		monitor,
		notifier,
		logg,
		syncMetrics,
		cfg.Sync.DrainBatch,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to build sync service", err)
		os.Exit(1)
	}

	monitor.OnReconnect(func(ctx context.Context) {
		if err := syncService.DrainQueue(ctx); err != nil {
			logg.Error(ctx, "drain after reconnect failed", err)
		}
	})

	cartEngine := cart.NewEngine()

	ctx := logg.WithBranchID(context.Background(), cfg.Terminal.BranchID)

	// warm the local snapshot; the terminal still boots when the backend is
	// away, it just sells from whatever snapshot it already has
	if _, err := catalogService.Sync(ctx); err != nil {
		monitor.SetOnline(ctx, false)
		logg.Warn(logg.WithField(ctx, "error", err.Error()), "initial catalog sync failed, continuing offline")
	}

	// sales queued before the last shutdown must not wait for a connectivity
	// blip; replay them now if the backend answers
	if err := syncService.DrainQueue(ctx); err != nil {
		logg.Warn(logg.WithField(ctx, "error", err.Error()), "boot queue drain failed, will retry on reconnect")
	}

	monitorCtx, stopMonitor := context.WithCancel(context.Background())
	defer stopMonitor()
	monitor.Start(monitorCtx)

	addr := ":" + cfg.App.Port
	bootCtx := logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"terminal": cfg.Terminal.Label,
	})
	logg.Info(bootCtx, "starting terminal core")

	server := &http.Server{
		Addr:    addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, monitor, catalogService, cartEngine, syncService, shiftService),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(bootCtx, "terminal core stopped unexpectedly", err)
		os.Exit(1)
	}
}
