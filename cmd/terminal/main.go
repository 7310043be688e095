package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	checkoutapp "github.com/erp/pos/internal/application/checkout"
	"github.com/erp/pos/internal/domain/shared"
	"github.com/erp/pos/internal/infrastructure/backend"
	"github.com/erp/pos/internal/infrastructure/config"
	"github.com/erp/pos/internal/infrastructure/localstore"
	"github.com/erp/pos/internal/infrastructure/logger"
	"github.com/erp/pos/internal/infrastructure/printing"
	"github.com/erp/pos/internal/infrastructure/scheduler"
	"github.com/erp/pos/internal/infrastructure/telemetry"
	"github.com/erp/pos/internal/interfaces/http/handler"
	"github.com/erp/pos/internal/interfaces/http/router"
	"github.com/erp/pos/internal/interfaces/input"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
		Compress:   cfg.Log.Compress,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()
	log = log.With(zap.String("terminal_id", cfg.App.TerminalID))

	log.Info("Starting POS terminal",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("backend", cfg.Backend.BaseURL),
	)

	// Metrics
	meterProvider, err := telemetry.NewMeterProvider(context.Background(), telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.ExportInterval,
		ServiceName:       cfg.Telemetry.ServiceName,
		TerminalID:        cfg.App.TerminalID,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize metrics", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := meterProvider.Shutdown(ctx); err != nil {
			log.Error("Error shutting down metrics", zap.Error(err))
		}
	}()
	meter := meterProvider.Meter("pos-terminal")
	checkoutMetrics, err := telemetry.NewCheckoutMetrics(meter)
	if err != nil {
		log.Fatal("Failed to create checkout metrics", zap.Error(err))
	}

	// Crash-recovery store
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level), 200*time.Millisecond)
	store, err := localstore.NewFactory(shared.DurableStoreConfig{
		Driver:    cfg.Recovery.Driver,
		Path:      cfg.Recovery.Path,
		Namespace: cfg.Recovery.Namespace,
	},
		localstore.WithLogger(log),
		localstore.WithGormLogger(gormLog),
		localstore.WithRedis(localstore.RedisConfig{
			Addr:     cfg.Redis.RedisAddr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}),
	).CreateStore()
	if err != nil {
		log.Fatal("Failed to open recovery store", zap.Error(err))
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Error("Error closing recovery store", zap.Error(err))
		}
	}()

	// ERP backend
	client := backend.NewClient(backend.Config{
		BaseURL:        cfg.Backend.BaseURL,
		APIToken:       cfg.Backend.APIToken,
		RequestTimeout: cfg.Backend.RequestTimeout,
		Breaker: backend.BreakerConfig{
			Name:             "erp-lookups",
			MaxRequests:      cfg.Backend.BreakerMaxRequests,
			Interval:         cfg.Backend.BreakerInterval,
			Timeout:          cfg.Backend.BreakerTimeout,
			FailureThreshold: cfg.Backend.BreakerFailureThreshold,
		},
	}, backend.WithLogger(log.Named("backend")))

	// Checkout service
	svc := checkoutapp.NewService(checkoutapp.Dependencies{
		Catalog:   client,
		Customers: client,
		Sessions:  client,
		Sales:     client,
		Store:     store,
	}, checkoutapp.Config{
		TerminalID:       cfg.App.TerminalID,
		SubmitTimeout:    cfg.Checkout.SubmitTimeout,
		RecoveryInterval: cfg.Recovery.Interval,
		RecoveryKey:      cfg.Recovery.Key,
	},
		checkoutapp.WithLogger(log.Named("checkout")),
		checkoutapp.WithMetrics(checkoutMetrics),
	)

	// A missing backend is not fatal: the terminal starts with the session gate closed
	state, err := svc.Start(context.Background())
	if err != nil {
		log.Warn("Checkout started degraded", zap.Error(err))
	}
	if state != nil {
		log.Info("Checkout ready",
			zap.String("session", state.Session.Status),
			zap.Bool("recovery_pending", state.PendingRecovery != nil),
		)
	}

	// Background jobs. The session watch adopts a drawer closed from the back office.
	jobs := scheduler.NewScheduler(scheduler.SchedulerConfig{
		JobTimeout: cfg.Backend.RequestTimeout,
	}, log.Named("scheduler"))
	if err := jobs.Register(scheduler.Job{
		Name:     "session-watch",
		Interval: cfg.Checkout.SessionPollInterval,
		Run:      svc.RefreshSession,
	}); err != nil {
		log.Fatal("Failed to register session watch", zap.Error(err))
	}
	if err := jobs.Start(context.Background()); err != nil {
		log.Fatal("Failed to start scheduler", zap.Error(err))
	}

	// Keyboard and scanner input
	keymap, err := input.NewKeymap(cfg.Input.Keymap)
	if err != nil {
		log.Fatal("Invalid keymap", zap.Error(err))
	}
	dispatcher := input.NewDispatcher(
		input.CheckoutHandlers(svc, log.Named("input")),
		input.WithKeymap(keymap),
		input.WithScanGap(cfg.Input.ScanGap),
		input.WithScanIdleTimeout(cfg.Input.ScanIdleTimeout),
		input.WithMinBarcodeLength(cfg.Input.MinBarcodeLength),
		input.WithSearchDebounce(cfg.Input.SearchDebounce),
		input.WithLogger(log.Named("input")),
	)

	// Receipt printing
	receiptLoc, _ := cfg.Receipt.Location() // validated by config.Load
	paper, err := printing.ParsePaperSize(cfg.Receipt.Paper)
	if err != nil {
		log.Fatal("Invalid receipt paper", zap.Error(err))
	}
	receipts, err := printing.NewReceiptRenderer(printing.ReceiptConfig{
		Store: printing.StoreInfo{
			Name:    cfg.Receipt.StoreName,
			Address: cfg.Receipt.StoreAddress,
			Phone:   cfg.Receipt.StorePhone,
			Footer:  cfg.Receipt.Footer,
		},
		DefaultPaper:   paper,
		CurrencySymbol: cfg.Receipt.CurrencySymbol,
		Location:       receiptLoc,
	})
	if err != nil {
		log.Fatal("Failed to load receipt templates", zap.Error(err))
	}

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := router.NewEngine(router.EngineConfig{
		Logger:       log,
		Meter:        meter,
		AllowOrigins: cfg.HTTP.AllowOrigins,
		MaxBodyBytes: cfg.HTTP.MaxBodyBytes,
	})
	engine.GET("/health", healthHandler(client, svc, jobs))

	router.NewRouter(engine, router.WithAPIVersion("v1")).
		Register(router.TerminalRoutes(
			handler.NewTerminalHandler(svc),
			handler.NewKeyHandler(dispatcher, svc),
			handler.NewReceiptHandler(svc, receipts),
		)).
		Setup()

	srv := &http.Server{
		Addr:           cfg.HTTP.Addr,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Local API listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down terminal...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := jobs.Stop(ctx); err != nil {
		log.Error("Error stopping scheduler", zap.Error(err))
	}
	dispatcher.Close()
	if err := svc.Close(); err != nil {
		log.Error("Error closing checkout service", zap.Error(err))
	}

	log.Info("Terminal exited gracefully")
}

// healthHandler reports the backend breaker, the session gate and background jobs
func healthHandler(client *backend.Client, svc *checkoutapp.Service, jobs *scheduler.Scheduler) gin.HandlerFunc {
	return func(c *gin.Context) {
		state := svc.State()
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"time":    time.Now().Format(time.RFC3339),
			"backend": client.BreakerState().String(),
			"session": state.Session.Status,
			"jobs":    jobs.Stats(),
		})
	}
}
