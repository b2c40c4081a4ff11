package transactionSigner

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/filswan/swan-tx-runner/pkg/config"
	"go.uber.org/zap"
)

// ITransactionSigner provides methods for signing Ethereum transactions
type ITransactionSigner interface {
	// GetTransactOpts returns transaction options that make bindings build,
	// but not send, a transaction. Setting GasLimit on the returned opts pins
	// the gas limit; otherwise it is estimated at send time.
	GetTransactOpts(ctx context.Context) (*bind.TransactOpts, error)

	// SignAndSendTransaction fills in fees and nonce, signs the transaction and
	// broadcasts it. It does not wait for the transaction to be mined.
	SignAndSendTransaction(ctx context.Context, tx *types.Transaction) (*types.Transaction, error)

	// GetFromAddress returns the address that will be used for signing
	GetFromAddress() common.Address
}

// EthBackend is the part of an Ethereum client the signers need. Both
// *ethclient.Client and the simulated backend's client satisfy it.
type EthBackend interface {
	bind.ContractBackend
	ChainID(ctx context.Context) (*big.Int, error)
}

type baseSigner struct {
	backend     EthBackend
	logger      *zap.Logger
	chainID     *big.Int
	fromAddress common.Address
	feeParams   *config.FeeParams
}

func newBaseSigner(backend EthBackend, fromAddress common.Address, logger *zap.Logger) (*baseSigner, error) {
	chainID, err := backend.ChainID(context.Background())
	if err != nil {
		return nil, fmt.Errorf("failed to get chain ID: %w", err)
	}
	return &baseSigner{
		backend:     backend,
		logger:      logger,
		chainID:     chainID,
		fromAddress: fromAddress,
		feeParams:   config.GetFeeParamsForChain(config.ChainId(chainID.Uint64())),
	}, nil
}

// GetFromAddress returns the address that will be used for signing
func (b *baseSigner) GetFromAddress() common.Address {
	return b.fromAddress
}

// GetTransactOpts returns transaction options for creating unsigned transactions
func (b *baseSigner) GetTransactOpts(ctx context.Context) (*bind.TransactOpts, error) {
	opts := &bind.TransactOpts{
		From:    b.fromAddress,
		Context: ctx,
		NoSend:  true,
	}
	// The binding has already estimated gas when it calls Signer. Drop that
	// estimate unless the caller pinned a limit, so SignAndSendTransaction
	// re-estimates with a buffer.
	opts.Signer = func(address common.Address, tx *types.Transaction) (*types.Transaction, error) {
		if opts.GasLimit != 0 {
			return tx, nil
		}
		return withoutGasLimit(tx), nil
	}
	return opts, nil
}

func withoutGasLimit(tx *types.Transaction) *types.Transaction {
	return types.NewTx(&types.DynamicFeeTx{
		ChainID:    tx.ChainId(),
		Nonce:      tx.Nonce(),
		GasTipCap:  tx.GasTipCap(),
		GasFeeCap:  tx.GasFeeCap(),
		To:         tx.To(),
		Value:      tx.Value(),
		Data:       tx.Data(),
		AccessList: tx.AccessList(),
	})
}

// prepareTransaction builds the EIP-1559 transaction that will be signed:
// fresh fees, the pending nonce, and either the given gas limit or an
// estimate with a 20% buffer.
func (b *baseSigner) prepareTransaction(ctx context.Context, tx *types.Transaction) (*types.DynamicFeeTx, error) {
	if tx.To() == nil {
		return nil, fmt.Errorf("contract creation transactions are not supported")
	}

	gasTipCap, err := b.backend.SuggestGasTipCap(ctx)
	if err != nil {
		// If the transaction failed because the backend does not support
		// eth_maxPriorityFeePerGas, fallback to using the default constant.
		b.logger.Sugar().Warnw("SignAndSendTransaction: cannot get gasTipCap, using fallback",
			zap.Error(err),
		)
		gasTipCap = new(big.Int).Set(b.feeParams.FallbackGasTipCap)
	}

	header, err := b.backend.HeaderByNumber(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest block header: %w", err)
	}
	if header.BaseFee == nil {
		return nil, fmt.Errorf("chain %s does not support EIP-1559 transactions", b.chainID)
	}

	maxFeePerGas := new(big.Int).Add(
		new(big.Int).Mul(header.BaseFee, big.NewInt(b.feeParams.BaseFeeMultiplier)),
		gasTipCap,
	)

	gasLimit := tx.Gas()
	if gasLimit == 0 {
		estimated, err := b.backend.EstimateGas(ctx, ethereum.CallMsg{
			From:      b.fromAddress,
			To:        tx.To(),
			GasTipCap: gasTipCap,
			GasFeeCap: maxFeePerGas,
			Value:     tx.Value(),
			Data:      tx.Data(),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to estimate gas: %w", err)
		}
		gasLimit = addGasBuffer(estimated)
	}

	// Always fetch the nonce from the network; a zero nonce on the incoming
	// tx is indistinguishable from "unset".
	nonce, err := b.backend.PendingNonceAt(ctx, b.fromAddress)
	if err != nil {
		return nil, fmt.Errorf("failed to get nonce: %w", err)
	}

	b.logger.Info("SignAndSendTransaction: prepared transaction",
		zap.String("to", tx.To().Hex()),
		zap.String("maxPriorityFeePerGas", gasTipCap.String()),
		zap.String("maxFeePerGas", maxFeePerGas.String()),
		zap.String("baseFee", header.BaseFee.String()),
		zap.Uint64("gasLimit", gasLimit),
		zap.Uint64("nonce", nonce),
	)

	return &types.DynamicFeeTx{
		ChainID:   b.chainID,
		Nonce:     nonce,
		GasTipCap: gasTipCap,
		GasFeeCap: maxFeePerGas,
		Gas:       gasLimit,
		To:        tx.To(),
		Value:     tx.Value(),
		Data:      tx.Data(),
	}, nil
}

func (b *baseSigner) send(ctx context.Context, signedTx *types.Transaction) (*types.Transaction, error) {
	if err := b.backend.SendTransaction(ctx, signedTx); err != nil {
		return nil, fmt.Errorf("failed to send transaction: %w", err)
	}

	b.logger.Info("SignAndSendTransaction: transaction sent",
		zap.String("txHash", signedTx.Hash().Hex()),
		zap.Uint64("nonce", signedTx.Nonce()),
	)
	return signedTx, nil
}

// addGasBuffer adds 20% headroom to a gas estimate
func addGasBuffer(gasLimit uint64) uint64 {
	return gasLimit * 12 / 10
}
