package confirmation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/filswan/swan-tx-runner/pkg/config"
	"github.com/filswan/swan-tx-runner/pkg/txerrors"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	DefaultTimeout       = 2 * time.Minute
	DefaultPollInterval  = 2 * time.Second
	DefaultConfirmations = 1
)

// Backend is what the waiter needs from an Ethereum client
type Backend interface {
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
	BlockNumber(ctx context.Context) (uint64, error)
}

func DefaultConfig() *config.ConfirmationConfig {
	return &config.ConfirmationConfig{
		Timeout:       DefaultTimeout,
		PollInterval:  DefaultPollInterval,
		Confirmations: DefaultConfirmations,
	}
}

type Waiter struct {
	backend Backend
	config  *config.ConfirmationConfig
	logger  *zap.Logger
}

// NewWaiter copies cfg, filling unset fields with defaults.
func NewWaiter(backend Backend, c *config.ConfirmationConfig, logger *zap.Logger) *Waiter {
	cfg := DefaultConfig()
	if c != nil {
		copied := *c
		cfg = &copied
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.Confirmations == 0 {
		cfg.Confirmations = DefaultConfirmations
	}
	return &Waiter{
		backend: backend,
		config:  cfg,
		logger:  logger,
	}
}

// Wait polls for the receipt of tx until it has the configured number of
// confirmations. It fails with KindExecutionReverted when the transaction was
// mined with a failed status, KindTimeout when the timeout passes or ctx is
// done, and KindTransport when the node cannot be queried.
func (w *Waiter) Wait(ctx context.Context, step string, tx *types.Transaction) (*types.Receipt, error) {
	waitCtx, cancel := context.WithTimeout(ctx, w.config.Timeout)
	defer cancel()

	hash := tx.Hash()
	limiter := rate.NewLimiter(rate.Every(w.config.PollInterval), 1)

	w.logger.Sugar().Infow("Waiting for transaction confirmation",
		"step", step,
		"txHash", hash.Hex(),
		"confirmations", w.config.Confirmations,
		"timeout", w.config.Timeout.String(),
	)

	for {
		if err := limiter.Wait(waitCtx); err != nil {
			// ctx is done or the next poll would land past the deadline
			<-waitCtx.Done()
			if receipt, err := w.lastCheck(ctx, step, hash); receipt != nil {
				return receipt, err
			}
			return nil, w.stopped(waitCtx, step, hash)
		}

		receipt, err := w.check(waitCtx, step, hash)
		if err != nil {
			if waitCtx.Err() != nil && !txerrors.Is(err, txerrors.KindExecutionReverted) {
				return nil, w.stopped(waitCtx, step, hash)
			}
			return receipt, err
		}
		if receipt != nil {
			return receipt, nil
		}
	}
}

// check fetches the receipt once. A nil receipt with a nil error means the
// transaction is not mined or not yet confirmed.
func (w *Waiter) check(ctx context.Context, step string, hash common.Hash) (*types.Receipt, error) {
	receipt, err := w.backend.TransactionReceipt(ctx, hash)
	if err != nil {
		if errors.Is(err, ethereum.NotFound) {
			return nil, nil
		}
		return nil, txerrors.New(txerrors.KindTransport, step, fmt.Errorf("failed to fetch receipt for %s: %w", hash.Hex(), err))
	}

	if receipt.Status != types.ReceiptStatusSuccessful {
		w.logger.Error("Transaction reverted",
			zap.String("step", step),
			zap.String("txHash", hash.Hex()),
			zap.Uint64("gasUsed", receipt.GasUsed),
			zap.Uint64("blockNumber", receipt.BlockNumber.Uint64()),
		)
		return receipt, txerrors.ExecutionReverted(step, hash.Hex())
	}

	confirmed, err := w.hasConfirmations(ctx, receipt)
	if err != nil {
		return nil, txerrors.New(txerrors.KindTransport, step, fmt.Errorf("failed to fetch block number: %w", err))
	}
	if !confirmed {
		return nil, nil
	}

	w.logger.Info("Transaction confirmed",
		zap.String("step", step),
		zap.String("txHash", hash.Hex()),
		zap.Uint64("gasUsed", receipt.GasUsed),
		zap.Uint64("blockNumber", receipt.BlockNumber.Uint64()),
	)
	return receipt, nil
}

// lastCheck polls once more after the timeout elapsed, unless the caller
// cancelled the wait. It returns a nil receipt when the outcome is still unknown.
func (w *Waiter) lastCheck(ctx context.Context, step string, hash common.Hash) (*types.Receipt, error) {
	if ctx.Err() != nil {
		return nil, nil
	}
	ctx, cancel := context.WithTimeout(ctx, w.config.PollInterval)
	defer cancel()

	receipt, err := w.check(ctx, step, hash)
	if receipt == nil || (err != nil && !txerrors.Is(err, txerrors.KindExecutionReverted)) {
		return nil, nil
	}
	return receipt, err
}

func (w *Waiter) hasConfirmations(ctx context.Context, receipt *types.Receipt) (bool, error) {
	if w.config.Confirmations <= 1 {
		return true, nil
	}
	latest, err := w.backend.BlockNumber(ctx)
	if err != nil {
		return false, err
	}
	mined := receipt.BlockNumber.Uint64()
	if latest < mined {
		return false, nil
	}
	return latest-mined+1 >= w.config.Confirmations, nil
}

// stopped reports a wait that ended before the receipt was confirmed. A
// cancelled parent context is reported the same way as an elapsed timeout:
// in both cases the outcome of the transaction is unknown.
func (w *Waiter) stopped(ctx context.Context, step string, hash common.Hash) error {
	err := ctx.Err()
	if err == nil {
		err = context.DeadlineExceeded
	}
	w.logger.Warn("Stopped waiting for transaction",
		zap.String("step", step),
		zap.String("txHash", hash.Hex()),
		zap.Error(err),
	)
	return txerrors.Timeout(step, fmt.Errorf("transaction %s not confirmed: %w", hash.Hex(), err))
}
