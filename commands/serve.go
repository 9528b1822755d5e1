package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fadhlanhapp/manpower-backend/backend"
	"github.com/fadhlanhapp/manpower-backend/config"
	"github.com/fadhlanhapp/manpower-backend/handlers"
	"github.com/fadhlanhapp/manpower-backend/logger"
	"github.com/fadhlanhapp/manpower-backend/repository"
	"github.com/fadhlanhapp/manpower-backend/routes"
	"github.com/fadhlanhapp/manpower-backend/scheduler"
	"github.com/fadhlanhapp/manpower-backend/services"
)

func newServeCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			return runServe(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to a YAML config file (default $CONFIG_FILE)")

	return cmd
}

func runServe(ctx context.Context, cfg *config.Config) error {
	if err := logger.Initialize(cfg.Log.Level, cfg.Log.Format); err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer logger.Sync()

	// The app reads amounts as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true

	// Initialize New Relic
	app, err := newrelic.NewApplication(
		newrelic.ConfigAppName(cfg.NewRelic.AppName),
		newrelic.ConfigLicense(cfg.NewRelic.LicenseKey),
		newrelic.ConfigDistributedTracerEnabled(true),
		newrelic.ConfigEnabled(cfg.NewRelic.LicenseKey != ""),
	)
	if err != nil {
		logger.Warn("Failed to initialize New Relic", zap.Error(err))
	}

	// Initialize database
	db, err := repository.InitDB(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer repository.CloseDB()

	if err := repository.EnsureSchema(ctx, db); err != nil {
		return err
	}

	// Initialize services
	client := backend.NewClient(cfg.Backend.BaseURL, cfg.Backend.Timeout(), nil)
	sessions := repository.NewPaymentSessionRepository(db)

	eligibilityService := services.NewEligibilityService(services.EligibilityPolicy{
		MinContributionForLoan: cfg.Eligibility.MinContributionForLoan,
		MaxLoanFactor:          cfg.Eligibility.MaxLoanFactor,
	}, client)
	scheduleService := services.NewScheduleService(client, cfg.Loan.RepaymentMonths)
	loanService := services.NewLoanService(client, eligibilityService, services.LoanDefaults{
		InterestRatePercent: cfg.Loan.InterestRatePercent,
		RepaymentMonths:     cfg.Loan.RepaymentMonths,
	})
	pollerConfig := services.PollerConfig{
		Interval:    cfg.Payment.PollInterval(),
		MaxAttempts: cfg.Payment.MaxAttempts,
	}
	poller := services.NewPaymentPoller(client, client, sessions, pollerConfig)
	paymentService := services.NewPaymentService(client, sessions, poller)
	defer paymentService.StopAll()

	sched, err := scheduler.NewScheduler(cfg.Scheduler.SweepStaleSessions, sessions,
		pollerConfig.Interval*time.Duration(pollerConfig.MaxAttempts))
	if err != nil {
		return err
	}
	sched.Start()
	defer sched.Stop()

	// Set up Gin router
	router := gin.New()
	router.Use(gin.Recovery())

	// Add New Relic middleware
	if app != nil {
		router.Use(nrgin.Middleware(app))
	}

	// Configure CORS
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Set up routes
	routes.SetupRoutes(router, routes.Handlers{
		Loans:    handlers.NewLoanHandler(eligibilityService, scheduleService, loanService, services.NewExcelService()),
		Payments: handlers.NewPaymentHandler(paymentService),
		DB:       db,
	})

	server := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Server starting", zap.String("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-quit:
	}

	logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	if app != nil {
		app.Shutdown(5 * time.Second)
	}
	return nil
}
