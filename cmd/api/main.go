package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/miguelgarza/comanda-backend/api/routes"
	"github.com/miguelgarza/comanda-backend/internal/notify"
	"github.com/miguelgarza/comanda-backend/internal/orders"
	"github.com/miguelgarza/comanda-backend/internal/products"
	"github.com/miguelgarza/comanda-backend/internal/reservations"
	"github.com/miguelgarza/comanda-backend/internal/scheduler"
	"github.com/miguelgarza/comanda-backend/internal/tables"
	"github.com/miguelgarza/comanda-backend/pkg/config"
	"github.com/miguelgarza/comanda-backend/pkg/db"
	"github.com/miguelgarza/comanda-backend/pkg/logger"
	"github.com/miguelgarza/comanda-backend/pkg/metrics"
	"github.com/miguelgarza/comanda-backend/pkg/migrate"
	"github.com/miguelgarza/comanda-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	notifier, err := notify.NewRedisNotifier(redisClient, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create notifier", err)
		os.Exit(1)
	}

	reservationsRepo := reservations.NewRepository(dbClient.DB())
	tablesRepo := tables.NewRepository(dbClient.DB())
	ordersRepo := orders.NewRepository(dbClient.DB())
	productsRepo := products.NewRepository(dbClient.DB())

	tableService, err := tables.NewService(tables.ServiceParams{
		Repo:     tablesRepo,
		Coverage: reservationsRepo,
		Orders:   ordersRepo,
		Notifier: notifier,
		Logger:   logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create table service", err)
		os.Exit(1)
	}

	productService, err := products.NewService(productsRepo, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create product service", err)
		os.Exit(1)
	}

	orderService, err := orders.NewService(orders.ServiceParams{
		Repo:    ordersRepo,
		Catalog: productsRepo,
		Tables:  tableService,
		Logger:  logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create order service", err)
		os.Exit(1)
	}

	checker, err := reservations.NewAvailabilityChecker(reservationsRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create availability checker", err)
		os.Exit(1)
	}

	// The scheduler and the coordinator reference each other, so the scheduler
	// is built against a relay and the coordinator is bound afterwards.
	relay := scheduler.NewRelay()
	sched, err := scheduler.New(
		scheduler.NewRealClock(),
		relay,
		logg,
		metrics.NewSchedulerMetrics(prometheus.DefaultRegisterer),
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create deadline scheduler", err)
		os.Exit(1)
	}

	reservationService, err := reservations.NewService(reservations.ServiceParams{
		Repo:      reservationsRepo,
		Checker:   checker,
		Scheduler: sched,
		Tables:    tableService,
		Logger:    logg,
		MaxWindow: cfg.Reservations.MaxWindow,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create reservation service", err)
		os.Exit(1)
	}
	relay.Bind(reservationService)

	bootstrapper, err := reservations.NewBootstrapper(reservationsRepo, sched, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create bootstrapper", err)
		os.Exit(1)
	}
	bootstrapCtx, cancel := context.WithTimeout(context.Background(), cfg.Reservations.BootstrapTimeout)
	if err := bootstrapper.Run(bootstrapCtx); err != nil {
		cancel()
		logg.Error(context.Background(), "failed to rebuild reservation deadlines", err)
		os.Exit(1)
	}
	cancel()

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			reservationService,
			tableService,
			orderService,
			productService,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
