package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Enochthedev/Oink-bot-sub001/internal/app"
	"github.com/Enochthedev/Oink-bot-sub001/internal/clock"
	"github.com/Enochthedev/Oink-bot-sub001/internal/config"
	"github.com/Enochthedev/Oink-bot-sub001/internal/directory"
	"github.com/Enochthedev/Oink-bot-sub001/internal/logging"
	"github.com/Enochthedev/Oink-bot-sub001/internal/processor"
	"github.com/Enochthedev/Oink-bot-sub001/internal/storage/postgres"
	transporthttp "github.com/Enochthedev/Oink-bot-sub001/internal/transport/http"
	"github.com/Enochthedev/Oink-bot-sub001/migrations"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat)

	startupCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pool, err := postgres.NewPool(startupCtx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("connect to db", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := pool.Ping(startupCtx); err != nil {
		logger.Error("db ping", "error", err)
		os.Exit(1)
	}
	if err := migrations.Apply(startupCtx, pool); err != nil {
		logger.Error("apply migrations", "error", err)
		os.Exit(1)
	}

	methods := directory.NewStatic()
	if cfg.MethodsFile != "" {
		methods, err = directory.LoadFile(cfg.MethodsFile)
		if err != nil {
			logger.Error("load methods file", "error", err)
			os.Exit(1)
		}
	}

	clk := clock.NewSystem()
	rails := processor.NewRegistry()
	txRepo := postgres.NewTransactionRepository(pool)
	escrowRepo := postgres.NewEscrowRepository(pool)

	fees := app.NewFeeCalculator(rails, logger,
		app.WithEscrowFeeRate(cfg.EscrowFeeRate),
		app.WithDefaultProcessingFee(cfg.DefaultProcessingFee))
	escrowSvc := app.NewEscrowService(escrowRepo, rails, clk, logger,
		app.WithEscrowTimeout(cfg.EscrowTimeout))
	paymentSvc := app.NewPaymentService(txRepo, escrowSvc, fees, methods, clk, logger)
	ledgerSvc := app.NewLedgerService(txRepo)

	mux := http.NewServeMux()
	mux.HandleFunc("/health", transporthttp.HealthHandler)
	mux.Handle("/payments", transporthttp.HandleCreatePayment(paymentSvc))
	mux.Handle("/payments/", transporthttp.HandlePayment(ledgerSvc, paymentSvc))
	mux.Handle("/accounts/", transporthttp.HandleAccounts(ledgerSvc))
	mux.Handle("/", transporthttp.NotFoundHandler())

	handler := transporthttp.RequestLogger(transporthttp.CORS(cfg.CORSOrigins, mux), logger)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: handler,
	}

	stopCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sweeper := app.NewSweeper(escrowSvc, cfg.SweepInterval, cfg.RetentionDays, logger)
	go sweeper.Run(stopCtx)

	logger.Info("api listening", "port", cfg.Port)

	srvErr := make(chan error, 1)
	go func() {
		srvErr <- server.ListenAndServe()
	}()

	select {
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
		}
	case <-stopCtx.Done():
		logger.Info("shutdown signal received, stopping server")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server shutdown error", "error", err)
	}
	logger.Info("server stopped")
}
