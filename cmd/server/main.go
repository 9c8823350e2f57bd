package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"go.uber.org/zap"

	"github.com/eugenenazirov/cash-change/internal/application"
	"github.com/eugenenazirov/cash-change/internal/calculator"
	"github.com/eugenenazirov/cash-change/internal/config"
	"github.com/eugenenazirov/cash-change/internal/logging"
)

var signalNotify = signal.Notify

type cli struct {
	app  *kingpin.Application
	calc *kingpin.CmdClause

	configFile     *string
	envFile        *string
	port           *string
	logLevel       *string
	historySize    *int
	rateLimitRPS   *float64
	rateLimitBurst *int

	totalPrice   *float64
	cashInserted *float64
}

func newCLI() *cli {
	c := &cli{}
	c.app = kingpin.New("cash-change", "Cash Change Calculator - breaks change down into bills and coins")

	serveCmd := c.app.Command("serve", "Run the HTTP API").Default()
	c.configFile = serveCmd.Flag("config", "Path to YAML configuration file").String()
	c.envFile = serveCmd.Flag("env-file", "Path to a .env file loaded before reading the environment").String()
	c.port = serveCmd.Flag("port", "HTTP port exposed by the service").String()
	c.logLevel = serveCmd.Flag("log-level", "Log level (debug, info, warn, error)").String()
	c.historySize = serveCmd.Flag("history-size", "Number of recent transactions kept in memory (0 disables)").Default("-1").Int()
	c.rateLimitRPS = serveCmd.Flag("rate-limit-rps", "Requests per second allowed (set 0 to disable)").Default("-1").Float64()
	c.rateLimitBurst = serveCmd.Flag("rate-limit-burst", "Burst capacity for rate limiter (set 0 to disable)").Default("-1").Int()

	c.calc = c.app.Command("calc", "Calculate change once and print it as JSON. Put -- before the amounts when either is negative.")
	c.totalPrice = c.calc.Arg("total-price", "Total price of the purchase").Required().Float64()
	c.cashInserted = c.calc.Arg("cash-inserted", "Cash handed over by the customer").Required().Float64()

	return c
}

func main() {
	c := newCLI()

	switch kingpin.MustParse(c.app.Parse(os.Args[1:])) {
	case c.calc.FullCommand():
		if err := runCalc(os.Stdout, *c.totalPrice, *c.cashInserted); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	overrides := &config.CLIOverrides{
		ConfigFile: *c.configFile,
		EnvFile:    *c.envFile,
	}
	if *c.port != "" {
		overrides.Port = c.port
	}
	if *c.logLevel != "" {
		overrides.LogLevel = c.logLevel
	}
	if *c.historySize >= 0 {
		overrides.HistorySize = c.historySize
	}
	if *c.rateLimitRPS >= 0 {
		overrides.RateLimitRPS = c.rateLimitRPS
	}
	if *c.rateLimitBurst >= 0 {
		overrides.RateLimitBurst = c.rateLimitBurst
	}

	cfg, err := config.Load(overrides)
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer func() {
		_ = logger.Sync()
	}()

	app, err := application.New(cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize application", zap.Error(err))
	}

	if err := app.Start(); err != nil {
		logger.Fatal("failed to start server", zap.Error(err))
	}

	shutdown(app, cfg.ShutdownGracePeriod, logger)
}

// runCalc writes the calculation result for a single transaction to w.
func runCalc(w io.Writer, totalPrice, cashInserted float64) error {
	result, err := calculator.Calculate(totalPrice, cashInserted)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	return nil
}

type gracefulStopper interface {
	Shutdown(ctx context.Context) error
}

func shutdown(target gracefulStopper, timeout time.Duration, logger *zap.Logger) {
	quit := make(chan os.Signal, 1)
	signalNotify(quit, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	sig := <-quit
	logger.Info("shutting down server", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := target.Shutdown(ctx); err != nil {
		logger.Error("shutdown failed", zap.Error(err))
	}
}
