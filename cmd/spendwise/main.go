package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"spendwise/internal/auth"
	"spendwise/internal/cli"
	"spendwise/internal/config"
	apphttp "spendwise/internal/http"
	"spendwise/internal/log"
	"spendwise/internal/services"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cli.LoadEnvFile()

	cfg := config.Load()
	logger := cli.SetupLogger(cfg)
	cli.MustValidate(logger, cfg)

	if err := run(cfg, logger); err != nil {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}

func run(cfg *config.Config, logger *log.Logger) error {
	be, bcfg := cli.InitBackend(context.Background(), logger, cfg)
	defer func() {
		if err := be.Cleanup(); err != nil {
			logger.Error("Backend cleanup failed", log.FieldError, err)
		}
	}()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	loc := cfg.Location()
	tokens := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)
	st := be.Store

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Services{
		Expenses:      services.NewExpenseService(st, loc, logger),
		Bills:         services.NewBillService(st, logger),
		Savings:       services.NewSavingsService(st, logger),
		Transactions:  services.NewTransactionService(st, loc),
		Insights:      services.NewInsightService(st, loc, logger),
		Notifications: services.NewNotificationService(st, be.Publisher, logger),
		Dashboard:     services.NewDashboardService(st, loc, logger),
		Accounts:      services.NewAccountService(st, tokens, logger),
	}, apphttp.Options{
		Production:         cfg.IsProduction(),
		ClientOrigin:       cfg.ClientOrigin,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		TrustedProxies:     cfg.TrustedProxies,
		Location:           loc,
		Tokens:             tokens,
		Registry:           reg,
		Logger:             logger,
	})

	done := cli.GracefulShutdown(logger, shutdownTimeout, srv.Shutdown)

	logger.Info("Starting spendwise server",
		log.FieldOperation, log.OpStartup,
		"port", cfg.Port,
		"env", cfg.AppEnv,
		"backend", bcfg.Type.String(),
		"amqp", be.Publisher != nil)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	<-done
	return nil
}
