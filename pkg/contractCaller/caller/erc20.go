package caller

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/filswan/swan-tx-runner/pkg/bindings/IERC20"
	"go.uber.org/zap"
)

// ApproveToken lets spender move up to amount of the caller's token balance
func (cc *ContractCaller) ApproveToken(
	ctx context.Context,
	token common.Address,
	spender common.Address,
	amount *big.Int,
	gasLimit uint64,
) (*types.Transaction, error) {
	erc20, err := IERC20.NewIERC20(token, cc.ethclient)
	if err != nil {
		return nil, fmt.Errorf("failed to create token instance: %w", err)
	}

	txOpts, err := cc.buildTransactionOpts(ctx, gasLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to build transaction options: %w", err)
	}

	tx, err := erc20.Approve(txOpts, spender, amount)
	if err != nil {
		return nil, fmt.Errorf("failed to create approve transaction for spender %s: %w", spender.Hex(), err)
	}

	cc.logger.Sugar().Infow("Approving token allowance",
		zap.String("token", token.Hex()),
		zap.String("spender", spender.Hex()),
		zap.String("amount", amount.String()),
	)
	return cc.signAndSendTransaction(ctx, tx, "approve")
}

func (cc *ContractCaller) Allowance(ctx context.Context, token common.Address, owner common.Address, spender common.Address) (*big.Int, error) {
	erc20, err := IERC20.NewIERC20Caller(token, cc.ethclient)
	if err != nil {
		return nil, fmt.Errorf("failed to create token caller: %w", err)
	}
	allowance, err := erc20.Allowance(&bind.CallOpts{Context: ctx}, owner, spender)
	if err != nil {
		return nil, fmt.Errorf("failed to get allowance of %s for %s: %w", owner.Hex(), spender.Hex(), err)
	}
	return allowance, nil
}

func (cc *ContractCaller) BalanceOf(ctx context.Context, token common.Address, account common.Address) (*big.Int, error) {
	erc20, err := IERC20.NewIERC20Caller(token, cc.ethclient)
	if err != nil {
		return nil, fmt.Errorf("failed to create token caller: %w", err)
	}
	balance, err := erc20.BalanceOf(&bind.CallOpts{Context: ctx}, account)
	if err != nil {
		return nil, fmt.Errorf("failed to get token balance of %s: %w", account.Hex(), err)
	}
	return balance, nil
}
