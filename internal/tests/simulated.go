package tests

import (
	"context"
	"crypto/ecdsa"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient/simulated"
	"github.com/ethereum/go-ethereum/params"
	"github.com/stretchr/testify/require"
)

// revertingContractInitCode deploys runtime code that reverts on every call:
// PUSH1 0 PUSH1 0 REVERT
var revertingContractInitCode = common.FromHex("0x6460006000fd6000526005601bf3")

// SimulatedChain is an in-process chain with pre-funded accounts
type SimulatedChain struct {
	Backend   *simulated.Backend
	Client    simulated.Client
	Keys      []*ecdsa.PrivateKey
	Addresses []common.Address
}

func NewSimulatedChain(t *testing.T, accounts int) *SimulatedChain {
	t.Helper()
	return NewSimulatedChainWithAlloc(t, accounts, nil)
}

// NewSimulatedChainWithAlloc also places extra in the genesis state, for
// accounts that need preset code or storage.
func NewSimulatedChainWithAlloc(t *testing.T, accounts int, extra types.GenesisAlloc) *SimulatedChain {
	t.Helper()
	chain := &SimulatedChain{}
	alloc := types.GenesisAlloc{}
	for addr, account := range extra {
		alloc[addr] = account
	}
	balance := new(big.Int).Mul(big.NewInt(1000), big.NewInt(params.Ether))
	for i := 0; i < accounts; i++ {
		key, err := crypto.GenerateKey()
		require.NoError(t, err)
		addr := crypto.PubkeyToAddress(key.PublicKey)
		alloc[addr] = types.Account{Balance: balance}
		chain.Keys = append(chain.Keys, key)
		chain.Addresses = append(chain.Addresses, addr)
	}

	chain.Backend = simulated.NewBackend(alloc)
	chain.Client = chain.Backend.Client()
	t.Cleanup(func() {
		_ = chain.Backend.Close()
	})
	return chain
}

// PrivateKeyHex returns account i's key in the format signers accept
func (c *SimulatedChain) PrivateKeyHex(i int) string {
	return "0x" + common.Bytes2Hex(crypto.FromECDSA(c.Keys[i]))
}

// AutoCommit mines a block at every interval until the test ends, standing in
// for a live chain while code under test waits for receipts.
func (c *SimulatedChain) AutoCommit(t *testing.T, interval time.Duration) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.Backend.Commit()
			}
		}
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
}

// SendTx signs a dynamic fee transaction from account i and submits it
// without mining it.
func (c *SimulatedChain) SendTx(t *testing.T, i int, to common.Address, value *big.Int, data []byte, gas uint64) *types.Transaction {
	t.Helper()
	ctx := context.Background()

	nonce, err := c.Client.PendingNonceAt(ctx, c.Addresses[i])
	require.NoError(t, err)
	chainID, err := c.Client.ChainID(ctx)
	require.NoError(t, err)
	head, err := c.Client.HeaderByNumber(ctx, nil)
	require.NoError(t, err)

	tx, err := types.SignNewTx(c.Keys[i], types.LatestSignerForChainID(chainID), &types.DynamicFeeTx{
		ChainID:   chainID,
		Nonce:     nonce,
		GasTipCap: big.NewInt(params.GWei),
		GasFeeCap: new(big.Int).Add(new(big.Int).Mul(head.BaseFee, big.NewInt(2)), big.NewInt(params.GWei)),
		Gas:       gas,
		To:        &to,
		Value:     value,
		Data:      data,
	})
	require.NoError(t, err)
	require.NoError(t, c.Client.SendTransaction(ctx, tx))
	return tx
}

// DeployRevertingContract deploys a contract whose every call reverts, signed
// by account 0, and mines it.
func (c *SimulatedChain) DeployRevertingContract(t *testing.T) common.Address {
	t.Helper()
	ctx := context.Background()
	from := c.Addresses[0]

	nonce, err := c.Client.PendingNonceAt(ctx, from)
	require.NoError(t, err)
	chainID, err := c.Client.ChainID(ctx)
	require.NoError(t, err)
	head, err := c.Client.HeaderByNumber(ctx, nil)
	require.NoError(t, err)

	tx, err := types.SignNewTx(c.Keys[0], types.LatestSignerForChainID(chainID), &types.DynamicFeeTx{
		ChainID:   chainID,
		Nonce:     nonce,
		GasTipCap: big.NewInt(params.GWei),
		GasFeeCap: new(big.Int).Add(new(big.Int).Mul(head.BaseFee, big.NewInt(2)), big.NewInt(params.GWei)),
		Gas:       100_000,
		Data:      revertingContractInitCode,
	})
	require.NoError(t, err)
	require.NoError(t, c.Client.SendTransaction(ctx, tx))
	c.Backend.Commit()

	receipt, err := c.Client.TransactionReceipt(ctx, tx.Hash())
	require.NoError(t, err)
	require.Equal(t, types.ReceiptStatusSuccessful, receipt.Status)

	code, err := c.Client.CodeAt(ctx, receipt.ContractAddress, nil)
	require.NoError(t, err)
	require.NotEmpty(t, code)
	return receipt.ContractAddress
}
