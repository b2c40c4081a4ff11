package caller

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/filswan/swan-tx-runner/pkg/bindings/SwanPayment"
	"go.uber.org/zap"
)

// LockTokenPayment locks param.Amount of the gateway's token for param.Recipient.
// The gateway pulls the tokens with transferFrom, so an allowance of at least
// param.Amount must already be confirmed.
func (cc *ContractCaller) LockTokenPayment(
	ctx context.Context,
	gateway common.Address,
	param SwanPayment.IPaymentMinimalLockPaymentParam,
	gasLimit uint64,
) (*types.Transaction, error) {
	payment, err := SwanPayment.NewSwanPayment(gateway, cc.ethclient)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment gateway instance: %w", err)
	}

	txOpts, err := cc.buildTransactionOpts(ctx, gasLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to build transaction options: %w", err)
	}

	tx, err := payment.LockTokenPayment(txOpts, param)
	if err != nil {
		return nil, fmt.Errorf("failed to create lockTokenPayment transaction for %q: %w", param.Id, err)
	}

	cc.logger.Sugar().Infow("Locking token payment",
		zap.String("gateway", gateway.Hex()),
		zap.String("id", param.Id),
		zap.String("amount", param.Amount.String()),
		zap.String("minPayment", param.MinPayment.String()),
		zap.String("lockTime", param.LockTime.String()),
		zap.String("recipient", param.Recipient.Hex()),
		zap.Uint64("gasLimit", gasLimit),
	)
	return cc.signAndSendTransaction(ctx, tx, "lockTokenPayment")
}
