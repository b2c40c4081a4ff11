// Package bootstrap wires a runner to a live chain for the command line tools.
package bootstrap

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/Layr-Labs/chain-indexer/pkg/clients/ethereum"
	"github.com/filswan/swan-tx-runner/pkg/config"
	"github.com/filswan/swan-tx-runner/pkg/persistence"
	"github.com/filswan/swan-tx-runner/pkg/persistence/journalFactory"
	"github.com/filswan/swan-tx-runner/pkg/runner"
	"github.com/filswan/swan-tx-runner/pkg/transactionSigner"
	"go.uber.org/zap"
)

type Environment struct {
	Config    *config.RunnerConfig
	Runner    *runner.Runner
	Journal   persistence.ISubmissionJournal
	Contracts *config.ContractAddresses
}

func (e *Environment) Close() error {
	if e == nil || e.Journal == nil {
		return nil
	}
	return e.Journal.Close()
}

// SignerConfigFromEnv picks the signer backend from the environment. A remote
// signer wins over KMS, KMS over the keyring and the keyring over a raw key.
func SignerConfigFromEnv() *config.SignerConfig {
	switch {
	case os.Getenv(config.EnvWeb3SignerURL) != "":
		return &config.SignerConfig{
			Type: config.SignerType_Web3Signer,
			Remote: &config.RemoteSignerConfig{
				Url:         os.Getenv(config.EnvWeb3SignerURL),
				FromAddress: os.Getenv(config.EnvSignerAddress),
			},
		}
	case os.Getenv(config.EnvKMSKeyID) != "":
		return &config.SignerConfig{
			Type: config.SignerType_AWSKMS,
			KMS: &config.KMSSignerConfig{
				KeyId:  os.Getenv(config.EnvKMSKeyID),
				Region: os.Getenv(config.EnvKMSRegion),
			},
		}
	case os.Getenv(config.EnvKeyringItem) != "":
		return &config.SignerConfig{
			Type:        config.SignerType_Keyring,
			KeyringItem: os.Getenv(config.EnvKeyringItem),
		}
	default:
		return &config.SignerConfig{
			Type:       config.SignerType_PrivateKey,
			PrivateKey: config.PrivateKeyFromEnv(),
		}
	}
}

// RunnerConfigFromEnv reads the runner configuration used by the hack scripts
func RunnerConfigFromEnv() (*config.RunnerConfig, error) {
	cfg := &config.RunnerConfig{
		RpcUrl:       os.Getenv(config.EnvRPCURL),
		Signer:       SignerConfigFromEnv(),
		Confirmation: &config.ConfirmationConfig{},
		Journal: &config.JournalConfig{
			Type:         config.JournalType(os.Getenv(config.EnvJournalType)),
			Path:         os.Getenv(config.EnvJournalPath),
			RedisAddress: os.Getenv(config.EnvJournalRedisAddr),
		},
	}
	if v := os.Getenv(config.EnvChainID); v != "" {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", config.EnvChainID, v, err)
		}
		cfg.ChainID = config.ChainId(id)
	}
	if v := os.Getenv(config.EnvConfirmTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", config.EnvConfirmTimeout, v, err)
		}
		cfg.Confirmation.Timeout = d
	}
	if v := os.Getenv(config.EnvConfirmations); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", config.EnvConfirmations, v, err)
		}
		cfg.Confirmation.Confirmations = n
	}
	cfg.Debug, _ = strconv.ParseBool(os.Getenv(config.EnvVerbose))
	return cfg, nil
}

// Open validates cfg, connects to the RPC endpoint and opens the journal.
// The caller owns the returned environment and must Close it.
func Open(cfg *config.RunnerConfig, l *zap.Logger) (*Environment, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	var contracts *config.ContractAddresses
	if cfg.ChainID != 0 {
		if c, err := config.GetContractsForChainId(cfg.ChainID); err == nil {
			contracts = c
		}
	}

	ethClient := ethereum.NewEthereumClient(&ethereum.EthereumClientConfig{
		BaseUrl:   cfg.RpcUrl,
		BlockType: ethereum.BlockType_Latest,
	}, l)
	client, err := ethClient.GetEthereumContractCaller()
	if err != nil {
		return nil, fmt.Errorf("failed to get Ethereum contract caller: %w", err)
	}

	journal, err := journalFactory.NewJournal(cfg.Journal, l)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}

	var providerOpts []transactionSigner.ConfigSignerProviderOption
	if cfg.Signer != nil && cfg.Signer.Type == config.SignerType_Keyring {
		ring, err := transactionSigner.OpenDefaultKeyring(config.DefaultKeyringName)
		if err != nil {
			// surfaces as SignerUnavailable when the run asks for a signer
			l.Sugar().Warnw("Failed to open keyring", "error", err)
		} else {
			providerOpts = append(providerOpts, transactionSigner.WithKeyring(ring))
		}
	}
	signers := transactionSigner.NewConfigSignerProvider(cfg.Signer, client, l, providerOpts...)

	r := runner.NewRunnerForBackend(client, signers, cfg.Confirmation, l, runner.WithJournal(journal))

	l.Sugar().Infow("Runner ready",
		"chain", cfg.ChainName,
		"chainId", cfg.ChainID,
		"journal", cfg.Journal.Type,
		"confirmTimeout", cfg.Confirmation.Timeout,
	)

	return &Environment{
		Config:    cfg,
		Runner:    r,
		Journal:   journal,
		Contracts: contracts,
	}, nil
}
