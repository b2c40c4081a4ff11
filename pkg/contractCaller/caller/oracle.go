package caller

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/filswan/swan-tx-runner/pkg/bindings/FilswanOracle"
	"go.uber.org/zap"
)

func (cc *ContractCaller) oracleTransactor(oracle common.Address) (*FilswanOracle.FilswanOracleTransactor, error) {
	t, err := FilswanOracle.NewFilswanOracleTransactor(oracle, cc.ethclient)
	if err != nil {
		return nil, fmt.Errorf("failed to create oracle instance: %w", err)
	}
	return t, nil
}

// SignTransaction records the caller's attestation that the deal orderId for
// cid pays recipient
func (cc *ContractCaller) SignTransaction(
	ctx context.Context,
	oracle common.Address,
	cid string,
	orderId string,
	recipient common.Address,
	gasLimit uint64,
) (*types.Transaction, error) {
	o, err := cc.oracleTransactor(oracle)
	if err != nil {
		return nil, err
	}

	txOpts, err := cc.buildTransactionOpts(ctx, gasLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to build transaction options: %w", err)
	}

	tx, err := o.SignTransaction(txOpts, cid, orderId, recipient)
	if err != nil {
		return nil, fmt.Errorf("failed to create signTransaction transaction for cid %s: %w", cid, err)
	}

	cc.logger.Sugar().Infow("Signing oracle transaction",
		zap.String("oracle", oracle.Hex()),
		zap.String("cid", cid),
		zap.String("orderId", orderId),
		zap.String("recipient", recipient.Hex()),
	)
	return cc.signAndSendTransaction(ctx, tx, "signTransaction")
}

func (cc *ContractCaller) SetFilinkOracle(
	ctx context.Context,
	oracle common.Address,
	filinkOracle common.Address,
	gasLimit uint64,
) (*types.Transaction, error) {
	o, err := cc.oracleTransactor(oracle)
	if err != nil {
		return nil, err
	}

	txOpts, err := cc.buildTransactionOpts(ctx, gasLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to build transaction options: %w", err)
	}

	tx, err := o.SetFilinkOracle(txOpts, filinkOracle)
	if err != nil {
		return nil, fmt.Errorf("failed to create setFilinkOracle transaction: %w", err)
	}

	cc.logger.Sugar().Infow("Setting Filink oracle",
		zap.String("oracle", oracle.Hex()),
		zap.String("filinkOracle", filinkOracle.Hex()),
	)
	return cc.signAndSendTransaction(ctx, tx, "setFilinkOracle")
}

func (cc *ContractCaller) UpdateThreshold(
	ctx context.Context,
	oracle common.Address,
	threshold uint8,
	gasLimit uint64,
) (*types.Transaction, error) {
	o, err := cc.oracleTransactor(oracle)
	if err != nil {
		return nil, err
	}

	txOpts, err := cc.buildTransactionOpts(ctx, gasLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to build transaction options: %w", err)
	}

	tx, err := o.UpdateThreshold(txOpts, threshold)
	if err != nil {
		return nil, fmt.Errorf("failed to create updateThreshold transaction: %w", err)
	}

	cc.logger.Sugar().Infow("Updating oracle threshold",
		zap.String("oracle", oracle.Hex()),
		zap.Uint8("threshold", threshold),
	)
	return cc.signAndSendTransaction(ctx, tx, "updateThreshold")
}
