package transactionSigner

import (
	"context"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/filswan/swan-tx-runner/internal/aws"
	"github.com/filswan/swan-tx-runner/internal/keyGenerator"
	"github.com/filswan/swan-tx-runner/internal/keyGenerator/awsKms"
	"github.com/filswan/swan-tx-runner/pkg/clients/web3signer"
	"github.com/filswan/swan-tx-runner/pkg/config"
	"github.com/filswan/swan-tx-runner/pkg/txerrors"
	"go.uber.org/zap"
)

// SignerProvider hands out the signer a run submits with. Every failure is
// reported as txerrors.KindSignerUnavailable.
type SignerProvider interface {
	GetSigner(ctx context.Context) (ITransactionSigner, error)
}

// StaticSignerProvider returns a signer that was built up front
type StaticSignerProvider struct {
	Signer ITransactionSigner
}

func (s *StaticSignerProvider) GetSigner(ctx context.Context) (ITransactionSigner, error) {
	if s == nil || s.Signer == nil {
		return nil, txerrors.SignerUnavailable(nil)
	}
	return s.Signer, nil
}

// KeyGeneratorFactory builds the key manager for digest signing
type KeyGeneratorFactory func(ctx context.Context, cfg *config.KMSSignerConfig) (keyGenerator.IKeyGenerator, error)

// ConfigSignerProvider builds the signer described by a SignerConfig
type ConfigSignerProvider struct {
	cfg     *config.SignerConfig
	backend EthBackend
	logger  *zap.Logger

	keyring      *KeyringKeySource
	web3Signer   web3signer.IWeb3Signer
	keyGenerator KeyGeneratorFactory
}

type ConfigSignerProviderOption func(*ConfigSignerProvider)

// WithKeyring sets where SignerType_Keyring looks up private keys
func WithKeyring(k *KeyringKeySource) ConfigSignerProviderOption {
	return func(p *ConfigSignerProvider) { p.keyring = k }
}

// WithWeb3SignerClient overrides the client built from the remote signer config
func WithWeb3SignerClient(c web3signer.IWeb3Signer) ConfigSignerProviderOption {
	return func(p *ConfigSignerProvider) { p.web3Signer = c }
}

func WithKeyGeneratorFactory(f KeyGeneratorFactory) ConfigSignerProviderOption {
	return func(p *ConfigSignerProvider) { p.keyGenerator = f }
}

func NewConfigSignerProvider(cfg *config.SignerConfig, backend EthBackend, logger *zap.Logger, opts ...ConfigSignerProviderOption) *ConfigSignerProvider {
	p := &ConfigSignerProvider{
		cfg:          cfg,
		backend:      backend,
		logger:       logger,
		keyGenerator: newAWSKeyGenerator(logger),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *ConfigSignerProvider) GetSigner(ctx context.Context) (ITransactionSigner, error) {
	if !p.cfg.IsConfigured() {
		return nil, txerrors.SignerUnavailable(nil)
	}

	signer, err := p.buildSigner(ctx)
	if err != nil {
		return nil, txerrors.SignerUnavailable(err)
	}

	p.logger.Sugar().Infow("Acquired signer",
		"type", p.cfg.Type,
		"address", signer.GetFromAddress().Hex(),
	)
	return signer, nil
}

func (p *ConfigSignerProvider) buildSigner(ctx context.Context) (ITransactionSigner, error) {
	switch p.cfg.Type {
	case config.SignerType_PrivateKey:
		return NewPrivateKeySigner(p.cfg.PrivateKey, p.backend, p.logger)

	case config.SignerType_Keyring:
		if p.keyring == nil {
			return nil, fmt.Errorf("no keyring available: %w", txerrors.ErrNoSigner)
		}
		privateKey, err := p.keyring.PrivateKey(p.cfg.KeyringItem)
		if err != nil {
			return nil, err
		}
		return NewPrivateKeySigner(privateKey, p.backend, p.logger)

	case config.SignerType_Web3Signer:
		client := p.web3Signer
		if client == nil {
			c, err := web3signer.NewWeb3SignerClientFromRemoteSignerConfig(p.cfg.Remote, p.logger)
			if err != nil {
				return nil, err
			}
			client = c
		}
		if err := client.Upcheck(ctx); err != nil {
			return nil, err
		}
		from, err := p.resolveWeb3SignerAddress(ctx, client)
		if err != nil {
			return nil, err
		}
		return NewWeb3TransactionSigner(client, from, p.backend, p.logger)

	case config.SignerType_AWSKMS:
		keyGen, err := p.keyGenerator(ctx, p.cfg.KMS)
		if err != nil {
			return nil, err
		}
		return NewDigestTransactionSigner(ctx, keyGen, p.cfg.KMS.KeyId, p.backend, p.logger)

	default:
		return nil, fmt.Errorf("unsupported signer type %q", p.cfg.Type)
	}
}

// resolveWeb3SignerAddress uses the configured address, or the first account
// the signer holds when none is configured.
func (p *ConfigSignerProvider) resolveWeb3SignerAddress(ctx context.Context, client web3signer.IWeb3Signer) (common.Address, error) {
	accounts, err := client.EthAccounts(ctx)
	if err != nil {
		return common.Address{}, err
	}
	if len(accounts) == 0 {
		return common.Address{}, fmt.Errorf("web3signer holds no keys: %w", txerrors.ErrNoSigner)
	}

	if p.cfg.Remote == nil || p.cfg.Remote.FromAddress == "" {
		return common.HexToAddress(accounts[0]), nil
	}
	for _, a := range accounts {
		if strings.EqualFold(a, p.cfg.Remote.FromAddress) {
			return common.HexToAddress(a), nil
		}
	}
	return common.Address{}, fmt.Errorf("web3signer does not hold a key for %s: %w", p.cfg.Remote.FromAddress, txerrors.ErrNoSigner)
}

func newAWSKeyGenerator(logger *zap.Logger) KeyGeneratorFactory {
	return func(ctx context.Context, cfg *config.KMSSignerConfig) (keyGenerator.IKeyGenerator, error) {
		awsCfg, err := aws.LoadAWSConfig(ctx, cfg.Region)
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS config: %w", err)
		}
		identity, err := aws.GetCallerIdentity(ctx, awsCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to verify AWS credentials: %w", err)
		}
		if identity.Arn != nil {
			logger.Sugar().Debugw("Using AWS identity", "arn", *identity.Arn)
		}
		return awsKms.NewAWSKMSKeyGenerator(awsCfg, awsCfg.Region, "", logger), nil
	}
}
