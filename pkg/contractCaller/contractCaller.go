package contractCaller

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	ethereumTypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/filswan/swan-tx-runner/pkg/bindings/SwanPayment"
)

// IContractCaller wraps the contracts the scripts talk to. Write methods sign
// and broadcast the call and return the signed transaction without waiting for
// it to be mined. A gasLimit of 0 means estimate.
type IContractCaller interface {
	GetFromAddress() common.Address

	// ERC20
	ApproveToken(ctx context.Context, token common.Address, spender common.Address, amount *big.Int, gasLimit uint64) (*ethereumTypes.Transaction, error)
	Allowance(ctx context.Context, token common.Address, owner common.Address, spender common.Address) (*big.Int, error)
	BalanceOf(ctx context.Context, token common.Address, account common.Address) (*big.Int, error)

	// SwanPayment
	LockTokenPayment(ctx context.Context, gateway common.Address, param SwanPayment.IPaymentMinimalLockPaymentParam, gasLimit uint64) (*ethereumTypes.Transaction, error)

	// FilswanOracle
	SignTransaction(ctx context.Context, oracle common.Address, cid string, orderId string, recipient common.Address, gasLimit uint64) (*ethereumTypes.Transaction, error)
	SetFilinkOracle(ctx context.Context, oracle common.Address, filinkOracle common.Address, gasLimit uint64) (*ethereumTypes.Transaction, error)
	UpdateThreshold(ctx context.Context, oracle common.Address, threshold uint8, gasLimit uint64) (*ethereumTypes.Transaction, error)

	// ProxyAdmin and EIP-1967 proxies
	UpgradeProxy(ctx context.Context, proxyAdmin common.Address, proxy common.Address, implementation common.Address, gasLimit uint64) (*ethereumTypes.Transaction, error)
	GetProxyImplementation(ctx context.Context, proxy common.Address) (common.Address, error)
	GetProxyAdmin(ctx context.Context, proxy common.Address) (common.Address, error)
}
