package main

import (
	"fmt"

	"github.com/filswan/swan-tx-runner/internal/bootstrap"
	"github.com/filswan/swan-tx-runner/pkg/config"
	"github.com/filswan/swan-tx-runner/pkg/logger"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

var runnerFlags = []cli.Flag{
	&cli.StringFlag{
		Name:    "rpc-url",
		Aliases: []string{"rpc"},
		Usage:   "Ethereum RPC endpoint URL",
		Value:   "http://localhost:8545",
		EnvVars: []string{config.EnvRPCURL},
	},
	&cli.Uint64Flag{
		Name:    "chain-id",
		Aliases: []string{"chain"},
		Usage:   fmt.Sprintf("Chain ID, selects default contract addresses: %s", config.GetSupportedChainIDsString()),
		Value:   uint64(config.ChainId_PolygonMumbai),
		EnvVars: []string{config.EnvChainID},
	},
	&cli.DurationFlag{
		Name:    "confirm-timeout",
		Usage:   "Maximum time to wait for each transaction to be confirmed (0 uses the chain default)",
		EnvVars: []string{config.EnvConfirmTimeout},
	},
	&cli.Uint64Flag{
		Name:    "confirmations",
		Usage:   "Blocks required, including the inclusion block",
		Value:   config.DefaultConfirmations,
		EnvVars: []string{config.EnvConfirmations},
	},
	&cli.StringFlag{
		Name:    "journal",
		Usage:   "Submission journal backend: memory, badger or redis",
		Value:   string(config.JournalType_Memory),
		EnvVars: []string{config.EnvJournalType},
	},
	&cli.StringFlag{
		Name:    "journal-path",
		Usage:   "Directory of the badger journal",
		EnvVars: []string{config.EnvJournalPath},
	},
	&cli.StringFlag{
		Name:    "journal-redis-address",
		Usage:   "host:port of the redis journal",
		EnvVars: []string{config.EnvJournalRedisAddr},
	},
	&cli.BoolFlag{
		Name:    "verbose",
		Usage:   "Enable verbose logging",
		EnvVars: []string{config.EnvVerbose},
	},
}

var gasLimitFlag = &cli.Uint64Flag{
	Name:  "gas-limit",
	Usage: "Pin the gas limit instead of estimating it",
}

func newLogger(c *cli.Context) (*zap.Logger, error) {
	l, err := logger.NewLogger(&logger.LoggerConfig{Debug: c.Bool("verbose")})
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return l, nil
}

func parseRunnerConfig(c *cli.Context) *config.RunnerConfig {
	return &config.RunnerConfig{
		RpcUrl:  c.String("rpc-url"),
		ChainID: config.ChainId(c.Uint64("chain-id")),
		Signer:  bootstrap.SignerConfigFromEnv(),
		Confirmation: &config.ConfirmationConfig{
			Timeout:       c.Duration("confirm-timeout"),
			Confirmations: c.Uint64("confirmations"),
		},
		Journal: &config.JournalConfig{
			Type:         config.JournalType(c.String("journal")),
			Path:         c.String("journal-path"),
			RedisAddress: c.String("journal-redis-address"),
		},
		Debug: c.Bool("verbose"),
	}
}

// chainContracts returns the known contracts of the selected chain, or an
// empty set so that every address has to be given explicitly
func chainContracts(chainId config.ChainId) *config.ContractAddresses {
	contracts, err := config.GetContractsForChainId(chainId)
	if err != nil {
		return &config.ContractAddresses{}
	}
	return contracts
}
