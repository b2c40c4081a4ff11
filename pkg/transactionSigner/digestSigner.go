package transactionSigner

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/core/types"
	"github.com/filswan/swan-tx-runner/internal/keyGenerator"
	"go.uber.org/zap"
)

// DigestTransactionSigner signs transactions with a key that never leaves its
// key manager, e.g. AWS KMS. Only the transaction hash is sent for signing.
type DigestTransactionSigner struct {
	*baseSigner
	keyGen keyGenerator.IKeyGenerator
	keyId  string
	signer types.Signer
}

func NewDigestTransactionSigner(ctx context.Context, keyGen keyGenerator.IKeyGenerator, keyId string, backend EthBackend, logger *zap.Logger) (*DigestTransactionSigner, error) {
	key, err := keyGen.GetECDSAKeyById(ctx, keyId)
	if err != nil {
		return nil, fmt.Errorf("failed to load signing key %s: %w", keyId, err)
	}

	base, err := newBaseSigner(backend, key.GetAddress(), logger)
	if err != nil {
		return nil, err
	}

	logger.Sugar().Infow("Using key manager signer",
		"keyId", keyId,
		"address", key.Address,
	)

	return &DigestTransactionSigner{
		baseSigner: base,
		keyGen:     keyGen,
		keyId:      keyId,
		signer:     types.LatestSignerForChainID(base.chainID),
	}, nil
}

// SignAndSendTransaction signs a transaction and sends it to the network
func (ds *DigestTransactionSigner) SignAndSendTransaction(ctx context.Context, tx *types.Transaction) (*types.Transaction, error) {
	inner, err := ds.prepareTransaction(ctx, tx)
	if err != nil {
		return nil, err
	}

	unsignedTx := types.NewTx(inner)
	digest := ds.signer.Hash(unsignedTx)

	sig, err := ds.keyGen.SignDigest(ctx, ds.keyId, digest.Bytes())
	if err != nil {
		return nil, fmt.Errorf("failed to sign transaction digest: %w", err)
	}

	signedTx, err := unsignedTx.WithSignature(ds.signer, sig)
	if err != nil {
		return nil, fmt.Errorf("failed to attach signature: %w", err)
	}

	sender, err := types.Sender(ds.signer, signedTx)
	if err != nil {
		return nil, fmt.Errorf("failed to recover sender: %w", err)
	}
	if sender != ds.fromAddress {
		return nil, fmt.Errorf("signature recovers to %s, expected %s", sender.Hex(), ds.fromAddress.Hex())
	}

	return ds.send(ctx, signedTx)
}
