package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/filswan/swan-tx-runner/internal/bootstrap"
	"github.com/filswan/swan-tx-runner/pkg/config"
	"github.com/filswan/swan-tx-runner/pkg/logger"
	"github.com/filswan/swan-tx-runner/pkg/procedures"
	"github.com/filswan/swan-tx-runner/pkg/runner"
)

// Usage: upgradeOracle <implementation> [--admin]
//
// Upgrades the FilswanOracle proxy to an implementation deployed beforehand.
// With --admin it also sets the Filink oracle and a threshold of 2.
func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	l, _ := logger.NewLogger(&logger.LoggerConfig{Debug: false})

	if len(os.Args) < 2 {
		l.Sugar().Fatal("Usage: upgradeOracle <implementation> [--admin]")
	}
	implementation := os.Args[1]
	withAdmin := len(os.Args) > 2 && os.Args[2] == "--admin"

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

	upgrade, err := procedures.NewUpgradeProxyPlan(&procedures.UpgradeProxyParams{
		Proxy:          contracts.OracleDAOProxy,
		Implementation: implementation,
	})
	if err != nil {
		l.Sugar().Fatalf("Invalid upgrade: %v", err)
	}
	plans := []*runner.Plan{upgrade}

	if withAdmin {
		setFilink, err := procedures.NewSetFilinkOraclePlan(&procedures.SetFilinkOracleParams{
			Oracle:       contracts.OracleDAOProxy,
			FilinkOracle: procedures.DefaultFilinkOracle,
		})
		if err != nil {
			l.Sugar().Fatalf("Invalid setFilinkOracle: %v", err)
		}
		threshold, err := procedures.NewUpdateThresholdPlan(&procedures.UpdateThresholdParams{
			Oracle:    contracts.OracleDAOProxy,
			Threshold: procedures.DefaultOracleThreshold,
		})
		if err != nil {
			l.Sugar().Fatalf("Invalid updateThreshold: %v", err)
		}
		plans = append(plans, setFilink, threshold)
	}

	env, err := bootstrap.Open(cfg, l)
	if err != nil {
		l.Sugar().Fatalf("Failed to set up runner: %v", err)
	}
	defer env.Close()

	if _, err := env.Runner.Run(ctx, plans...); err != nil {
		_ = env.Close()
		l.Sugar().Fatalf("Upgrade failed: %v", err)
	}
}
