package main

import (
	"fmt"

	"github.com/filswan/swan-tx-runner/internal/bootstrap"
	"github.com/filswan/swan-tx-runner/pkg/config"
	"github.com/filswan/swan-tx-runner/pkg/procedures"
	"github.com/filswan/swan-tx-runner/pkg/runner"
	"github.com/filswan/swan-tx-runner/pkg/txerrors"
	"github.com/urfave/cli/v2"
)

type planBuilder func(c *cli.Context, contracts *config.ContractAddresses) ([]*runner.Plan, error)

var lockPaymentCommand = &cli.Command{
	Name:  "lock-payment",
	Usage: "Approve the payment gateway and lock a token payment",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "token", Usage: "ERC20 token address (default: chain USDC)"},
		&cli.StringFlag{Name: "gateway", Usage: "Payment gateway address (default: chain gateway)"},
		&cli.StringFlag{Name: "approve-amount", Usage: "Allowance granted to the gateway (default: amount)"},
		&cli.StringFlag{Name: "id", Usage: "Payment id, usually a content id", Required: true},
		&cli.StringFlag{Name: "min-payment", Usage: "Minimum payment in token base units", Required: true},
		&cli.StringFlag{Name: "amount", Usage: "Locked amount in token base units", Required: true},
		&cli.StringFlag{Name: "lock-time", Usage: "Lock duration in seconds", Required: true},
		&cli.StringFlag{Name: "recipient", Usage: "Payment recipient", Required: true},
		&cli.StringFlag{Name: "size", Usage: "Payload size", Value: "0"},
		gasLimitFlag,
	},
	Action: procedureAction(func(c *cli.Context, contracts *config.ContractAddresses) ([]*runner.Plan, error) {
		plan, err := procedures.NewLockPaymentPlan(&procedures.LockPaymentParams{
			Token:         orDefault(c.String("token"), contracts.USDC),
			Gateway:       orDefault(c.String("gateway"), contracts.PaymentGateway),
			ApproveAmount: c.String("approve-amount"),
			Id:            c.String("id"),
			MinPayment:    c.String("min-payment"),
			Amount:        c.String("amount"),
			LockTime:      c.String("lock-time"),
			Recipient:     c.String("recipient"),
			Size:          c.String("size"),
			GasLimit:      c.Uint64("gas-limit"),
		})
		return single(plan, err)
	}),
}

var signTransactionCommand = &cli.Command{
	Name:  "sign-transaction",
	Usage: "Attest a deal on the oracle DAO",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "oracle", Usage: "Oracle DAO address (default: chain oracle)"},
		&cli.StringFlag{Name: "cid", Usage: "Content id of the payment", Required: true},
		&cli.StringFlag{Name: "deal-id", Usage: "Deal id", Required: true},
		&cli.StringFlag{Name: "recipient", Usage: "Payment recipient", Required: true},
		gasLimitFlag,
	},
	Action: procedureAction(func(c *cli.Context, contracts *config.ContractAddresses) ([]*runner.Plan, error) {
		plan, err := procedures.NewSignTransactionPlan(&procedures.SignTransactionParams{
			Oracle:    orDefault(c.String("oracle"), contracts.OracleDAO),
			Cid:       c.String("cid"),
			DealId:    c.String("deal-id"),
			Recipient: c.String("recipient"),
			GasLimit:  c.Uint64("gas-limit"),
		})
		return single(plan, err)
	}),
}

var upgradeProxyCommand = &cli.Command{
	Name:  "upgrade-proxy",
	Usage: "Point a transparent proxy at a deployed implementation",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "proxy", Usage: "Proxy address (default: chain oracle proxy)"},
		&cli.StringFlag{Name: "proxy-admin", Usage: "ProxyAdmin address (default: read from the proxy)"},
		&cli.StringFlag{Name: "implementation", Usage: "New implementation address", Required: true},
		gasLimitFlag,
	},
	Action: procedureAction(func(c *cli.Context, contracts *config.ContractAddresses) ([]*runner.Plan, error) {
		plan, err := procedures.NewUpgradeProxyPlan(&procedures.UpgradeProxyParams{
			Proxy:          orDefault(c.String("proxy"), contracts.OracleDAOProxy),
			ProxyAdmin:     c.String("proxy-admin"),
			Implementation: c.String("implementation"),
			GasLimit:       c.Uint64("gas-limit"),
		})
		return single(plan, err)
	}),
}

var setFilinkOracleCommand = &cli.Command{
	Name:  "set-filink-oracle",
	Usage: "Set the Filink oracle of the oracle DAO",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "oracle", Usage: "Oracle DAO address (default: chain oracle)"},
		&cli.StringFlag{Name: "filink-oracle", Usage: "Filink oracle address", Required: true},
		gasLimitFlag,
	},
	Action: procedureAction(func(c *cli.Context, contracts *config.ContractAddresses) ([]*runner.Plan, error) {
		plan, err := procedures.NewSetFilinkOraclePlan(&procedures.SetFilinkOracleParams{
			Oracle:       orDefault(c.String("oracle"), contracts.OracleDAO),
			FilinkOracle: c.String("filink-oracle"),
			GasLimit:     c.Uint64("gas-limit"),
		})
		return single(plan, err)
	}),
}

var updateThresholdCommand = &cli.Command{
	Name:  "update-threshold",
	Usage: "Change how many oracle signatures a deal needs",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "oracle", Usage: "Oracle DAO address (default: chain oracle)"},
		&cli.UintFlag{Name: "threshold", Usage: "Required signatures (1-255)", Required: true},
		gasLimitFlag,
	},
	Action: procedureAction(func(c *cli.Context, contracts *config.ContractAddresses) ([]*runner.Plan, error) {
		threshold := c.Uint("threshold")
		if threshold > 255 {
			return nil, txerrors.Configuration("", fmt.Errorf("threshold %d does not fit in a uint8", threshold))
		}
		plan, err := procedures.NewUpdateThresholdPlan(&procedures.UpdateThresholdParams{
			Oracle:    orDefault(c.String("oracle"), contracts.OracleDAO),
			Threshold: uint8(threshold),
			GasLimit:  c.Uint64("gas-limit"),
		})
		return single(plan, err)
	}),
}

// procedureAction builds and validates the plans before anything touches the
// network, then runs them with the configured signer
func procedureAction(build planBuilder) cli.ActionFunc {
	return func(c *cli.Context) error {
		cfg := parseRunnerConfig(c)
		plans, err := build(c, chainContracts(cfg.ChainID))
		if err != nil {
			return err
		}
		return runPlans(c, cfg, plans)
	}
}

func runPlans(c *cli.Context, cfg *config.RunnerConfig, plans []*runner.Plan) error {
	l, err := newLogger(c)
	if err != nil {
		return err
	}
	defer func() { _ = l.Sync() }()

	env, err := bootstrap.Open(cfg, l)
	if err != nil {
		return err
	}
	defer func() {
		if err := env.Close(); err != nil {
			l.Sugar().Warnw("Failed to close journal", "error", err)
		}
	}()

	res, err := env.Runner.Run(c.Context, plans...)
	if err != nil {
		return err
	}
	l.Sugar().Infow("Run finished", "runId", res.RunId, "transactions", len(res.Receipts))
	return nil
}

func single(plan *runner.Plan, err error) ([]*runner.Plan, error) {
	if err != nil {
		return nil, err
	}
	return []*runner.Plan{plan}, nil
}

func orDefault(v, def string) string {
	if v != "" {
		return v
	}
	return def
}
