package confirmation

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/filswan/swan-tx-runner/internal/tests"
	"github.com/filswan/swan-tx-runner/pkg/config"
	"github.com/filswan/swan-tx-runner/pkg/txerrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func fastConfig(timeout time.Duration, confirmations uint64) *config.ConfirmationConfig {
	return &config.ConfirmationConfig{
		Timeout:       timeout,
		PollInterval:  10 * time.Millisecond,
		Confirmations: confirmations,
	}
}

func Test_Waiter(t *testing.T) {
	logger := zaptest.NewLogger(t)

	t.Run("mined transfer is confirmed", func(t *testing.T) {
		chain := tests.NewSimulatedChain(t, 2)
		chain.AutoCommit(t, 20*time.Millisecond)

		tx := chain.SendTx(t, 0, chain.Addresses[1], big.NewInt(1), nil, 21000)
		w := NewWaiter(chain.Client, fastConfig(5*time.Second, 1), logger)

		receipt, err := w.Wait(context.Background(), "transfer", tx)
		require.NoError(t, err)
		assert.Equal(t, types.ReceiptStatusSuccessful, receipt.Status)
		assert.Equal(t, tx.Hash(), receipt.TxHash)
	})

	t.Run("waits for the configured confirmations", func(t *testing.T) {
		chain := tests.NewSimulatedChain(t, 2)
		chain.AutoCommit(t, 20*time.Millisecond)

		tx := chain.SendTx(t, 0, chain.Addresses[1], big.NewInt(1), nil, 21000)
		w := NewWaiter(chain.Client, fastConfig(5*time.Second, 3), logger)

		receipt, err := w.Wait(context.Background(), "transfer", tx)
		require.NoError(t, err)

		latest, err := chain.Client.BlockNumber(context.Background())
		require.NoError(t, err)
		assert.GreaterOrEqual(t, latest, receipt.BlockNumber.Uint64()+2)
	})

	t.Run("reverted transaction", func(t *testing.T) {
		chain := tests.NewSimulatedChain(t, 1)
		target := chain.DeployRevertingContract(t)
		chain.AutoCommit(t, 20*time.Millisecond)

		tx := chain.SendTx(t, 0, target, nil, []byte{0x01}, 100_000)
		w := NewWaiter(chain.Client, fastConfig(5*time.Second, 1), logger)

		receipt, err := w.Wait(context.Background(), "lockTokenPayment", tx)
		require.Error(t, err)
		assert.True(t, txerrors.Is(err, txerrors.KindExecutionReverted))
		assert.Contains(t, err.Error(), "lockTokenPayment")
		require.NotNil(t, receipt)
		assert.Equal(t, types.ReceiptStatusFailed, receipt.Status)
	})

	t.Run("times out when nothing is mined", func(t *testing.T) {
		chain := tests.NewSimulatedChain(t, 2)
		tx := chain.SendTx(t, 0, chain.Addresses[1], big.NewInt(1), nil, 21000)
		w := NewWaiter(chain.Client, fastConfig(150*time.Millisecond, 1), logger)

		start := time.Now()
		_, err := w.Wait(context.Background(), "approve", tx)
		require.Error(t, err)
		assert.True(t, txerrors.Is(err, txerrors.KindTimeout))
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Less(t, time.Since(start), 2*time.Second)
	})

	t.Run("cancelled context stops the wait", func(t *testing.T) {
		chain := tests.NewSimulatedChain(t, 2)
		tx := chain.SendTx(t, 0, chain.Addresses[1], big.NewInt(1), nil, 21000)
		w := NewWaiter(chain.Client, fastConfig(time.Minute, 1), logger)

		ctx, cancel := context.WithCancel(context.Background())
		go func() {
			time.Sleep(50 * time.Millisecond)
			cancel()
		}()

		_, err := w.Wait(ctx, "approve", tx)
		require.Error(t, err)
		assert.True(t, txerrors.Is(err, txerrors.KindTimeout))
		assert.ErrorIs(t, err, context.Canceled)
	})
}

type fakeBackend struct {
	receipts   []*types.Receipt
	receiptErr error
	blocks     []uint64
	calls      int
}

func (f *fakeBackend) TransactionReceipt(_ context.Context, _ common.Hash) (*types.Receipt, error) {
	if f.receiptErr != nil {
		return nil, f.receiptErr
	}
	i := f.calls
	f.calls++
	if i >= len(f.receipts) {
		i = len(f.receipts) - 1
	}
	if f.receipts[i] == nil {
		return nil, ethereum.NotFound
	}
	return f.receipts[i], nil
}

func (f *fakeBackend) BlockNumber(_ context.Context) (uint64, error) {
	if len(f.blocks) == 0 {
		return 0, errors.New("no blocks")
	}
	b := f.blocks[0]
	if len(f.blocks) > 1 {
		f.blocks = f.blocks[1:]
	}
	return b, nil
}

func Test_WaiterWithFakeBackend(t *testing.T) {
	logger := zaptest.NewLogger(t)
	tx := types.NewTx(&types.DynamicFeeTx{Nonce: 1})
	mined := &types.Receipt{Status: types.ReceiptStatusSuccessful, BlockNumber: big.NewInt(100), TxHash: tx.Hash()}

	t.Run("pending then mined", func(t *testing.T) {
		backend := &fakeBackend{receipts: []*types.Receipt{nil, nil, mined}}
		w := NewWaiter(backend, fastConfig(time.Second, 1), logger)

		receipt, err := w.Wait(context.Background(), "approve", tx)
		require.NoError(t, err)
		assert.Same(t, mined, receipt)
		assert.Equal(t, 3, backend.calls)
	})

	t.Run("counts confirmations from the receipt block", func(t *testing.T) {
		backend := &fakeBackend{receipts: []*types.Receipt{mined}, blocks: []uint64{100, 101, 102}}
		w := NewWaiter(backend, fastConfig(time.Second, 3), logger)

		_, err := w.Wait(context.Background(), "approve", tx)
		require.NoError(t, err)
		assert.Equal(t, 3, backend.calls)
	})

	t.Run("receipt errors are transport failures", func(t *testing.T) {
		backend := &fakeBackend{receiptErr: errors.New("connection refused")}
		w := NewWaiter(backend, fastConfig(time.Second, 1), logger)

		_, err := w.Wait(context.Background(), "approve", tx)
		require.Error(t, err)
		assert.True(t, txerrors.Is(err, txerrors.KindTransport))
		assert.True(t, txerrors.IsRetryable(err))
	})

	t.Run("receipt mined just before the deadline is still seen", func(t *testing.T) {
		// polls at 0 and 200ms; the third would fall after the 300ms deadline
		backend := &fakeBackend{receipts: []*types.Receipt{nil, nil, mined}}
		w := NewWaiter(backend, &config.ConfirmationConfig{
			Timeout:       300 * time.Millisecond,
			PollInterval:  200 * time.Millisecond,
			Confirmations: 1,
		}, logger)

		receipt, err := w.Wait(context.Background(), "approve", tx)
		require.NoError(t, err)
		assert.Same(t, mined, receipt)
		assert.Equal(t, 3, backend.calls)
	})

	t.Run("timeout is not reported before it elapses", func(t *testing.T) {
		backend := &fakeBackend{receipts: []*types.Receipt{nil}}
		w := NewWaiter(backend, &config.ConfirmationConfig{
			Timeout:       300 * time.Millisecond,
			PollInterval:  200 * time.Millisecond,
			Confirmations: 1,
		}, logger)

		start := time.Now()
		_, err := w.Wait(context.Background(), "approve", tx)
		require.Error(t, err)
		assert.True(t, txerrors.Is(err, txerrors.KindTimeout))
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.GreaterOrEqual(t, time.Since(start), 300*time.Millisecond)
		assert.Equal(t, 3, backend.calls)
	})

	t.Run("defaults fill an empty config", func(t *testing.T) {
		w := NewWaiter(&fakeBackend{}, &config.ConfirmationConfig{}, logger)
		assert.Equal(t, DefaultTimeout, w.config.Timeout)
		assert.Equal(t, DefaultPollInterval, w.config.PollInterval)
		assert.Equal(t, uint64(DefaultConfirmations), w.config.Confirmations)
	})
}
