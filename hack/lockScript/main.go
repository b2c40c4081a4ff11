package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/filswan/swan-tx-runner/internal/bootstrap"
	"github.com/filswan/swan-tx-runner/pkg/config"
	"github.com/filswan/swan-tx-runner/pkg/logger"
	"github.com/filswan/swan-tx-runner/pkg/procedures"
)

// Approves the Mumbai payment gateway for 1000 USDC and locks 10 USDC
func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	l, _ := logger.NewLogger(&logger.LoggerConfig{Debug: false})

	if err := config.LoadDotEnv(config.DefaultEnvFile); err != nil {
		l.Sugar().Fatalf("Failed to load env: %v", err)
	}
	cfg, err := bootstrap.RunnerConfigFromEnv()
	if err != nil {
		l.Sugar().Fatalf("Failed to read config: %v", err)
	}
	if cfg.ChainID == 0 {
		cfg.ChainID = config.ChainId_PolygonMumbai
	}

	contracts, err := config.GetContractsForChainId(cfg.ChainID)
	if err != nil {
		l.Sugar().Fatalf("Failed to get contracts: %v", err)
	}
	plan, err := procedures.NewLockPaymentPlan(procedures.DefaultLockPaymentParams(contracts))
	if err != nil {
		l.Sugar().Fatalf("Invalid lock payment: %v", err)
	}

	env, err := bootstrap.Open(cfg, l)
	if err != nil {
		l.Sugar().Fatalf("Failed to set up runner: %v", err)
	}
	defer env.Close()

	if _, err := env.Runner.Run(ctx, plan); err != nil {
		_ = env.Close()
		l.Sugar().Fatalf("Lock payment failed: %v", err)
	}
}
