// File: fieldservice/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fieldservice/config"
	"fieldservice/cron"
	"fieldservice/database"
	"fieldservice/database/airtable"
	recordsRepo "fieldservice/database/repository/records"
	"fieldservice/handlers"
	"fieldservice/middleware"
	"fieldservice/routes"
	"fieldservice/services/scheduling"
	"fieldservice/utils"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()
	defer logger.Sync()
	cfg := config.AppConfig

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	shutdownTracing, err := utils.SetupTracing(context.Background(), cfg.ServiceName, cfg.OTLPEndpoint)
	if err != nil {
		logger.Sugar().Fatalf("main: failed to set up tracing: %v", err)
	}

	// record store.
	store, err := newRecordStore(cfg, logger)
	if err != nil {
		logger.Sugar().Fatalf("main: failed to initialize record store: %v", err)
	}

	// scheduling core.
	clock, err := scheduling.NewClock(cfg.BusinessTimezone)
	if err != nil {
		logger.Sugar().Fatalf("main: %v", err)
	}
	policies, err := scheduling.PolicySetFromConfig(cfg.DefaultPolicy, cfg.Policies)
	if err != nil {
		logger.Sugar().Fatalf("main: invalid booking policies: %v", err)
	}

	if err := utils.InitLockCache(); err != nil {
		logger.Sugar().Fatalf("main: %v", err)
	}
	var locker scheduling.SlotLocker = scheduling.NewLocalLocker()
	if utils.LockClient != nil {
		locker = scheduling.NewRedisLocker(utils.LockClient, "fieldservice:booking")
	} else {
		logger.Warn("REDIS_ADDR not set, booking locks are local to this instance")
	}

	schedulingService := &scheduling.DefaultSchedulingService{
		Store:    store,
		Clock:    clock,
		Policies: policies,
		LeadTime: cfg.MinLeadTime,
		Locker:   locker,
		Logger:   logger.Named("scheduling"),
	}

	adminAuthorizer, err := middleware.NewAdminAuthorizer(cfg.AdminAuthMode, cfg.AdminPassword, cfg.AdminPasswordHash, cfg.JWTSecret)
	if err != nil {
		logger.Sugar().Fatalf("main: %v", err)
	}
	if cfg.AdminAuthMode != "jwt" && cfg.AdminPassword == "" && cfg.AdminPasswordHash == "" {
		logger.Warn("no admin password configured, blackout management is locked")
	}

	// background jobs.
	monitorCtx, stopMonitor := context.WithCancel(context.Background())
	deps := map[string]utils.Pinger{"store": store}
	if utils.LockClient != nil {
		deps["redis"] = utils.PingFunc(func(ctx context.Context) error { return utils.LockClient.Ping(ctx).Err() })
	}
	utils.StartHealthMonitor(monitorCtx, 60*time.Second, deps)

	sweeper, err := cron.StartRetentionSweep(schedulingService, cfg.BlackoutRetentionDays, cfg.RetentionSchedule, logger.Named("retention"))
	if err != nil {
		logger.Sugar().Fatalf("main: invalid RETENTION_SCHEDULE: %v", err)
	}

	// Create the Gin router.
	router := gin.New()
	router.Use(utils.ErrorHandler())
	router.Use(middleware.RequestContext())
	router.Use(utils.MetricsMiddleware())
	router.Use(middleware.RateLimitMiddleware(cfg.MaxRequestsPerMin))

	handlerBundle := &handlers.HandlerBundle{
		Availability: handlers.NewAvailabilityHandler(schedulingService),
		Blackouts:    handlers.NewBlackoutHandler(schedulingService, clock.Location),
		Appointments: handlers.NewAppointmentHandler(schedulingService),
		AdminAuth:    middleware.AdminAuthMiddleware(adminAuthorizer),
	}
	routes.RegisterRoutes(router, handlerBundle, cfg.CORSOrigins)

	// Start the HTTP server.
	port := cfg.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:              "0.0.0.0:" + port,
		Handler:           otelhttp.NewHandler(router, "fieldservice"),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Sugar().Infof("Starting server on %s (store=%s, zone=%s)...", srv.Addr, cfg.StoreDriver, clock.Location)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Errorf("main: server forced to shutdown: %v", err)
	}
	if sweeper != nil {
		<-sweeper.Stop().Done()
	}
	stopMonitor()
	if utils.LockClient != nil {
		_ = utils.LockClient.Close()
	}
	if err := database.CloseDB(ctx); err != nil {
		logger.Sugar().Warnf("main: mongo disconnect: %v", err)
	}
	if err := shutdownTracing(ctx); err != nil {
		logger.Sugar().Warnf("main: tracing shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}

// newRecordStore builds the backend selected by STORE_DRIVER.
func newRecordStore(cfg config.Config, logger *zap.Logger) (recordsRepo.RecordStore, error) {
	switch cfg.StoreDriver {
	case "", "airtable":
		if cfg.AirtableBaseID == "" || cfg.AirtableToken == "" {
			return nil, fmt.Errorf("AIRTABLE_BASE_ID and AIRTABLE_TOKEN are required")
		}
		client := airtable.NewClient(airtable.Config{
			BaseURL: cfg.AirtableBaseURL,
			BaseID:  cfg.AirtableBaseID,
			Token:   cfg.AirtableToken,
			Timeout: cfg.UpstreamTimeout,
			Retries: cfg.UpstreamRetries,
		}, logger.Named("airtable"))

		tables := recordsRepo.DefaultAirtableTables()
		tables.Services = cfg.AirtableServicesTable
		tables.AppointmentField = cfg.AirtableAppointmentField
		tables.Blackouts = cfg.AirtableBlackoutsTable
		return recordsRepo.NewAirtableStore(client, tables, logger.Named("airtable")), nil

	case "mongo":
		db, err := database.InitDB()
		if err != nil {
			return nil, err
		}
		store := recordsRepo.NewMongoRecordStore(db)
		if err := store.EnsureIndexes(); err != nil {
			return nil, err
		}
		logger.Info("connected to MongoDB", zap.String("database", db.Name()))
		return store, nil

	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}
}
