package transactionSigner

import (
	"context"
	"crypto/ecdsa"
	"fmt"

	"github.com/ethereum/go-ethereum/core/types"
	"github.com/filswan/swan-tx-runner/pkg/util"
	"go.uber.org/zap"
)

// PrivateKeySigner signs locally with a hex encoded secp256k1 key
type PrivateKeySigner struct {
	*baseSigner
	privateKey *ecdsa.PrivateKey
	signer     types.Signer
}

func NewPrivateKeySigner(privateKey string, backend EthBackend, logger *zap.Logger) (*PrivateKeySigner, error) {
	pk, err := util.StringToECDSAPrivateKey(privateKey)
	if err != nil {
		return nil, err
	}
	from, err := util.DeriveAddressFromECDSAPrivateKey(pk)
	if err != nil {
		return nil, err
	}

	base, err := newBaseSigner(backend, from, logger)
	if err != nil {
		return nil, err
	}

	return &PrivateKeySigner{
		baseSigner: base,
		privateKey: pk,
		signer:     types.LatestSignerForChainID(base.chainID),
	}, nil
}

// SignAndSendTransaction signs a transaction and sends it to the network
func (pks *PrivateKeySigner) SignAndSendTransaction(ctx context.Context, tx *types.Transaction) (*types.Transaction, error) {
	inner, err := pks.prepareTransaction(ctx, tx)
	if err != nil {
		return nil, err
	}

	signedTx, err := types.SignNewTx(pks.privateKey, pks.signer, inner)
	if err != nil {
		return nil, fmt.Errorf("failed to sign transaction: %w", err)
	}
	return pks.send(ctx, signedTx)
}
