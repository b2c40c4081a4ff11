package caller

import (
	"context"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	ethereumTypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/filswan/swan-tx-runner/pkg/txerrors"
	"go.uber.org/zap"
)

func (cc *ContractCaller) buildTransactionOpts(ctx context.Context, gasLimit uint64) (*bind.TransactOpts, error) {
	if cc.signer == nil {
		return nil, txerrors.SignerUnavailable(nil)
	}
	opts, err := cc.signer.GetTransactOpts(ctx)
	if err != nil {
		return nil, err
	}
	opts.GasLimit = gasLimit
	return opts, nil
}

func (cc *ContractCaller) signAndSendTransaction(ctx context.Context, tx *ethereumTypes.Transaction, operation string) (*ethereumTypes.Transaction, error) {
	cc.logger.Sugar().Infow("Signing and sending transaction",
		zap.String("operation", operation),
		zap.String("from", cc.signer.GetFromAddress().Hex()),
		zap.String("to", tx.To().Hex()),
	)

	return cc.signer.SignAndSendTransaction(ctx, tx)
}
