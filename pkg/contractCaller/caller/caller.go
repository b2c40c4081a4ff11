package caller

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/filswan/swan-tx-runner/pkg/contractCaller"
	"github.com/filswan/swan-tx-runner/pkg/transactionSigner"
	"go.uber.org/zap"
)

// Backend is what the caller needs from an Ethereum client: everything the
// bindings and signers use, plus raw storage reads for proxy slots.
type Backend interface {
	transactionSigner.EthBackend
	StorageAt(ctx context.Context, account common.Address, key common.Hash, blockNumber *big.Int) ([]byte, error)
}

var _ contractCaller.IContractCaller = (*ContractCaller)(nil)

type ContractCaller struct {
	ethclient Backend
	signer    transactionSigner.ITransactionSigner
	logger    *zap.Logger
}

// NewContractCaller builds a caller. signer may be nil for read-only use, in
// which case every write method fails with txerrors.KindSignerUnavailable.
func NewContractCaller(
	ethclient Backend,
	signer transactionSigner.ITransactionSigner,
	logger *zap.Logger,
) (*ContractCaller, error) {
	if ethclient == nil {
		return nil, fmt.Errorf("ethereum client is required")
	}
	return &ContractCaller{
		ethclient: ethclient,
		signer:    signer,
		logger:    logger,
	}, nil
}

func (cc *ContractCaller) GetFromAddress() common.Address {
	if cc.signer == nil {
		return common.Address{}
	}
	return cc.signer.GetFromAddress()
}
