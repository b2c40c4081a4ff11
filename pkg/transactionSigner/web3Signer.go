package transactionSigner

import (
	"bytes"
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/filswan/swan-tx-runner/pkg/clients/web3signer"
	"go.uber.org/zap"
)

// Web3TransactionSigner implements ITransactionSigner using a Web3Signer service
type Web3TransactionSigner struct {
	*baseSigner
	web3SignerClient web3signer.IWeb3Signer
}

// NewWeb3TransactionSigner creates a new Web3TransactionSigner
func NewWeb3TransactionSigner(web3SignerClient web3signer.IWeb3Signer, fromAddress common.Address, backend EthBackend, logger *zap.Logger) (*Web3TransactionSigner, error) {
	base, err := newBaseSigner(backend, fromAddress, logger)
	if err != nil {
		return nil, err
	}

	return &Web3TransactionSigner{
		baseSigner:       base,
		web3SignerClient: web3SignerClient,
	}, nil
}

// SignAndSendTransaction signs a transaction and sends it to the network
func (w3s *Web3TransactionSigner) SignAndSendTransaction(ctx context.Context, tx *types.Transaction) (*types.Transaction, error) {
	inner, err := w3s.prepareTransaction(ctx, tx)
	if err != nil {
		return nil, err
	}

	// Convert transaction to Web3Signer format with EIP-1559 parameters
	txData := map[string]interface{}{
		"to":                   inner.To.Hex(),
		"value":                hexutil.EncodeBig(inner.Value),
		"gas":                  hexutil.EncodeUint64(inner.Gas),
		"maxPriorityFeePerGas": hexutil.EncodeBig(inner.GasTipCap),
		"maxFeePerGas":         hexutil.EncodeBig(inner.GasFeeCap),
		"nonce":                hexutil.EncodeUint64(inner.Nonce),
		"data":                 hexutil.Encode(inner.Data),
		"type":                 "0x2", // EIP-1559 transaction type
		"chainId":              hexutil.EncodeUint64(w3s.chainID.Uint64()),
	}

	signedTxHex, err := w3s.web3SignerClient.EthSignTransaction(ctx, w3s.fromAddress.Hex(), txData)
	if err != nil {
		return nil, fmt.Errorf("failed to sign transaction with Web3Signer: %w", err)
	}

	signedTxBytes, err := hexutil.Decode(signedTxHex)
	if err != nil {
		return nil, fmt.Errorf("failed to decode signed transaction: %w", err)
	}

	var signedTx types.Transaction
	if err := signedTx.UnmarshalBinary(signedTxBytes); err != nil {
		return nil, fmt.Errorf("failed to unmarshal signed transaction: %w", err)
	}

	if err := w3s.matchesRequest(&signedTx, inner); err != nil {
		return nil, fmt.Errorf("web3signer returned a transaction that does not match the request: %w", err)
	}

	return w3s.send(ctx, &signedTx)
}

func (w3s *Web3TransactionSigner) matchesRequest(signed *types.Transaction, inner *types.DynamicFeeTx) error {
	switch {
	case signed.Nonce() != inner.Nonce:
		return fmt.Errorf("nonce %d, expected %d", signed.Nonce(), inner.Nonce)
	case signed.To() == nil || *signed.To() != *inner.To:
		return fmt.Errorf("recipient differs")
	case signed.Value().Cmp(inner.Value) != 0:
		return fmt.Errorf("value %s, expected %s", signed.Value(), inner.Value)
	case !bytes.Equal(signed.Data(), inner.Data):
		return fmt.Errorf("call data differs")
	case signed.Gas() != inner.Gas:
		return fmt.Errorf("gas %d, expected %d", signed.Gas(), inner.Gas)
	}

	sender, err := types.Sender(types.LatestSignerForChainID(w3s.chainID), signed)
	if err != nil {
		return fmt.Errorf("failed to recover sender: %w", err)
	}
	if sender != w3s.fromAddress {
		return fmt.Errorf("signed by %s, expected %s", sender.Hex(), w3s.fromAddress.Hex())
	}
	return nil
}
