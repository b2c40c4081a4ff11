package caller

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/filswan/swan-tx-runner/pkg/bindings/ProxyAdmin"
	"go.uber.org/zap"
)

// EIP-1967 storage slots: keccak256("eip1967.proxy.implementation") - 1 and
// keccak256("eip1967.proxy.admin") - 1
var (
	ImplementationSlot = common.HexToHash("0x360894a13ba1a3210667c828492db98dca3e2076cc3735a920a3ca505d382bbc")
	AdminSlot          = common.HexToHash("0xb53127684a568b3173ae13b9f8a6016e243e63b6e8ee1178d6a717850b5d6103")
)

// UpgradeProxy points a transparent proxy at a new implementation through its
// ProxyAdmin. The implementation must already be deployed.
func (cc *ContractCaller) UpgradeProxy(
	ctx context.Context,
	proxyAdmin common.Address,
	proxy common.Address,
	implementation common.Address,
	gasLimit uint64,
) (*types.Transaction, error) {
	admin, err := ProxyAdmin.NewProxyAdminTransactor(proxyAdmin, cc.ethclient)
	if err != nil {
		return nil, fmt.Errorf("failed to create proxy admin instance: %w", err)
	}

	txOpts, err := cc.buildTransactionOpts(ctx, gasLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to build transaction options: %w", err)
	}

	tx, err := admin.Upgrade(txOpts, proxy, implementation)
	if err != nil {
		return nil, fmt.Errorf("failed to create upgrade transaction for proxy %s: %w", proxy.Hex(), err)
	}

	cc.logger.Sugar().Infow("Upgrading proxy",
		zap.String("proxyAdmin", proxyAdmin.Hex()),
		zap.String("proxy", proxy.Hex()),
		zap.String("implementation", implementation.Hex()),
	)
	return cc.signAndSendTransaction(ctx, tx, "upgrade")
}

func (cc *ContractCaller) GetProxyImplementation(ctx context.Context, proxy common.Address) (common.Address, error) {
	return cc.readAddressSlot(ctx, proxy, ImplementationSlot)
}

func (cc *ContractCaller) GetProxyAdmin(ctx context.Context, proxy common.Address) (common.Address, error) {
	return cc.readAddressSlot(ctx, proxy, AdminSlot)
}

// readAddressSlot returns the address held in the low 20 bytes of slot. An
// unset slot is an error since the contract is then not an EIP-1967 proxy.
func (cc *ContractCaller) readAddressSlot(ctx context.Context, proxy common.Address, slot common.Hash) (common.Address, error) {
	value, err := cc.ethclient.StorageAt(ctx, proxy, slot, nil)
	if err != nil {
		return common.Address{}, fmt.Errorf("failed to read storage slot %s of %s: %w", slot.Hex(), proxy.Hex(), err)
	}
	addr := common.BytesToAddress(value)
	if addr == (common.Address{}) {
		return common.Address{}, fmt.Errorf("storage slot %s of %s is empty, %s is not an EIP-1967 proxy", slot.Hex(), proxy.Hex(), proxy.Hex())
	}
	return addr, nil
}
