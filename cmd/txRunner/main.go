package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/filswan/swan-tx-runner/pkg/config"
	"github.com/filswan/swan-tx-runner/pkg/runner"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := config.LoadDotEnv(config.DefaultEnvFile); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	app := &cli.App{
		Name:  "tx-runner",
		Usage: "Submit Swan payment and oracle administration transactions",
		Description: `Runs one procedure against the configured chain, waits for every
transaction to be confirmed and exits 0, or exits 1 on the first failure.

The signer is taken from the environment (or a .env file in the working
directory): SWAN_WEB3SIGNER_URL, SWAN_KMS_KEY_ID, SWAN_KEYRING_ITEM or
SWAN_PRIVATE_KEY, in that order of preference.`,
		Version: "1.0.0",
		Flags:   runnerFlags,
		Commands: []*cli.Command{
			lockPaymentCommand,
			signTransactionCommand,
			upgradeProxyCommand,
			setFilinkOracleCommand,
			updateThresholdCommand,
			runPlanCommand,
			historyCommand,
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := app.RunContext(ctx, os.Args)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if runner.IsSignerUnavailable(err) {
			fmt.Fprintln(os.Stderr, "Set SWAN_PRIVATE_KEY or configure a remote signer.")
		}
	}
	os.Exit(runner.ExitCode(err))
}
