package transactionSigner

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/filswan/swan-tx-runner/internal/keyGenerator/localKeyGenerator"
	"github.com/filswan/swan-tx-runner/internal/tests"
	"github.com/filswan/swan-tx-runner/pkg/bindings/IERC20"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func mineAndGetReceipt(t *testing.T, chain *tests.SimulatedChain, tx *types.Transaction) *types.Receipt {
	t.Helper()
	chain.Backend.Commit()
	receipt, err := chain.Client.TransactionReceipt(context.Background(), tx.Hash())
	require.NoError(t, err)
	return receipt
}

func Test_PrivateKeySigner_SendTransaction(t *testing.T) {
	chain := tests.NewSimulatedChain(t, 2)
	ctx := context.Background()

	signer, err := NewPrivateKeySigner(chain.PrivateKeyHex(0), chain.Client, zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.Equal(t, chain.Addresses[0], signer.GetFromAddress())

	// the nonce and fees on the incoming tx are placeholders
	tx := types.NewTransaction(42, chain.Addresses[1], big.NewInt(1), 0, big.NewInt(0), nil)

	sent, err := signer.SignAndSendTransaction(ctx, tx)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), sent.Nonce())
	assert.Equal(t, uint8(types.DynamicFeeTxType), sent.Type())
	assert.Equal(t, addGasBuffer(21000), sent.Gas())

	receipt := mineAndGetReceipt(t, chain, sent)
	assert.Equal(t, types.ReceiptStatusSuccessful, receipt.Status)

	nonce, err := chain.Client.PendingNonceAt(ctx, chain.Addresses[0])
	require.NoError(t, err)
	assert.Equal(t, uint64(1), nonce)
}

func Test_PrivateKeySigner_InvalidKey(t *testing.T) {
	chain := tests.NewSimulatedChain(t, 1)
	_, err := NewPrivateKeySigner("0x1234", chain.Client, zaptest.NewLogger(t))
	require.Error(t, err)
	_, err = NewPrivateKeySigner("", chain.Client, zaptest.NewLogger(t))
	require.Error(t, err)
}

func Test_GetTransactOpts_GasLimit(t *testing.T) {
	chain := tests.NewSimulatedChain(t, 2)
	ctx := context.Background()

	signer, err := NewPrivateKeySigner(chain.PrivateKeyHex(0), chain.Client, zaptest.NewLogger(t))
	require.NoError(t, err)

	// an EOA accepts any calldata, which is enough to exercise the binding path
	token, err := IERC20.NewIERC20(chain.Addresses[1], chain.Client)
	require.NoError(t, err)

	t.Run("pinned gas limit is kept", func(t *testing.T) {
		opts, err := signer.GetTransactOpts(ctx)
		require.NoError(t, err)
		opts.GasLimit = 9999999

		tx, err := token.Approve(opts, chain.Addresses[0], big.NewInt(1000))
		require.NoError(t, err)
		assert.Equal(t, uint64(9999999), tx.Gas())

		sent, err := signer.SignAndSendTransaction(ctx, tx)
		require.NoError(t, err)
		assert.Equal(t, uint64(9999999), sent.Gas())
		mineAndGetReceipt(t, chain, sent)
	})

	t.Run("unpinned gas limit is re-estimated with buffer", func(t *testing.T) {
		opts, err := signer.GetTransactOpts(ctx)
		require.NoError(t, err)

		tx, err := token.Approve(opts, chain.Addresses[0], big.NewInt(1000))
		require.NoError(t, err)
		assert.Equal(t, uint64(0), tx.Gas())

		estimate, err := chain.Client.EstimateGas(ctx, ethereum.CallMsg{
			From: chain.Addresses[0],
			To:   tx.To(),
			Data: tx.Data(),
		})
		require.NoError(t, err)

		sent, err := signer.SignAndSendTransaction(ctx, tx)
		require.NoError(t, err)
		assert.Equal(t, addGasBuffer(estimate), sent.Gas())
		assert.Equal(t, tx.Data(), sent.Data())
		mineAndGetReceipt(t, chain, sent)
	})
}

func Test_DigestTransactionSigner_SendTransaction(t *testing.T) {
	chain := tests.NewSimulatedChain(t, 2)
	ctx := context.Background()
	l := zaptest.NewLogger(t)

	keyGen := localKeyGenerator.NewLocalKeyGenerator(l)
	require.NoError(t, keyGen.LoadPrivateKey("kms-key", chain.Keys[0], "payer", "payer"))

	signer, err := NewDigestTransactionSigner(ctx, keyGen, "kms-key", chain.Client, l)
	require.NoError(t, err)
	assert.Equal(t, chain.Addresses[0], signer.GetFromAddress())

	tx := types.NewTransaction(0, chain.Addresses[1], big.NewInt(5), 0, big.NewInt(0), nil)
	sent, err := signer.SignAndSendTransaction(ctx, tx)
	require.NoError(t, err)

	sender, err := types.Sender(types.LatestSignerForChainID(sent.ChainId()), sent)
	require.NoError(t, err)
	assert.Equal(t, chain.Addresses[0], sender)

	receipt := mineAndGetReceipt(t, chain, sent)
	assert.Equal(t, types.ReceiptStatusSuccessful, receipt.Status)
}

func Test_DigestTransactionSigner_UnknownKey(t *testing.T) {
	chain := tests.NewSimulatedChain(t, 1)
	l := zaptest.NewLogger(t)

	_, err := NewDigestTransactionSigner(context.Background(), localKeyGenerator.NewLocalKeyGenerator(l), "missing", chain.Client, l)
	require.Error(t, err)
}

func Test_SignAndSend_RejectsContractCreation(t *testing.T) {
	chain := tests.NewSimulatedChain(t, 1)
	signer, err := NewPrivateKeySigner(chain.PrivateKeyHex(0), chain.Client, zaptest.NewLogger(t))
	require.NoError(t, err)

	tx := types.NewContractCreation(0, big.NewInt(0), 0, big.NewInt(0), common.FromHex("0x00"))
	_, err = signer.SignAndSendTransaction(context.Background(), tx)
	require.Error(t, err)
}
