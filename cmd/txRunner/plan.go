package main

import (
	"github.com/filswan/swan-tx-runner/pkg/config"
	"github.com/filswan/swan-tx-runner/pkg/procedures"
	"github.com/urfave/cli/v2"
)

var runPlanCommand = &cli.Command{
	Name:      "run",
	Usage:     "Run every procedure of a TOML plan file in order with one signer",
	ArgsUsage: "--plan <file>",
	Flags: []cli.Flag{
		&cli.PathFlag{Name: "plan", Usage: "Plan file", Required: true},
	},
	Action: func(c *cli.Context) error {
		pf, err := config.LoadPlanFile(c.Path("plan"))
		if err != nil {
			return err
		}
		cfg := applyPlanFile(parseRunnerConfig(c), pf)

		plans, err := procedures.FromPlanFile(pf, chainContracts(cfg.ChainID))
		if err != nil {
			return err
		}
		return runPlans(c, cfg, plans)
	},
}

// applyPlanFile lets a plan file override the connection settings given by
// flags. A private key is never read from the plan itself.
func applyPlanFile(cfg *config.RunnerConfig, pf *config.PlanFile) *config.RunnerConfig {
	if pf.RpcUrl != "" {
		cfg.RpcUrl = pf.RpcUrl
	}
	if pf.ChainID != 0 {
		cfg.ChainID = pf.ChainID
	}
	if pf.Signer != nil && pf.Signer.Type != "" {
		signer := *pf.Signer
		if signer.Type == config.SignerType_PrivateKey {
			signer.PrivateKey = config.PrivateKeyFromEnv()
		}
		cfg.Signer = &signer
	}
	if pf.Journal != nil && pf.Journal.Type != "" {
		cfg.Journal = pf.Journal
	}
	return cfg
}
