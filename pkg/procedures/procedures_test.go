package procedures

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/filswan/swan-tx-runner/pkg/bindings/SwanPayment"
	"github.com/filswan/swan-tx-runner/pkg/config"
	"github.com/filswan/swan-tx-runner/pkg/contractCaller"
	"github.com/filswan/swan-tx-runner/pkg/runner"
	"github.com/filswan/swan-tx-runner/pkg/transactionSigner"
	"github.com/filswan/swan-tx-runner/pkg/txerrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

var fromAddr = common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")

type stubSigner struct{}

func (stubSigner) GetTransactOpts(ctx context.Context) (*bind.TransactOpts, error) {
	return &bind.TransactOpts{From: fromAddr, Context: ctx, NoSend: true}, nil
}

func (stubSigner) SignAndSendTransaction(ctx context.Context, tx *types.Transaction) (*types.Transaction, error) {
	return tx, nil
}

func (stubSigner) GetFromAddress() common.Address { return fromAddr }

// orderingConfirmer notes how many calls had been submitted when each step
// was confirmed
type orderingConfirmer struct {
	caller *contractCaller.FakeContractCaller
	errs   map[string]error

	mu        sync.Mutex
	submitted map[string]int
	block     int64
}

func (o *orderingConfirmer) Wait(_ context.Context, step string, tx *types.Transaction) (*types.Receipt, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.block++
	receipt := &types.Receipt{
		Status:      types.ReceiptStatusSuccessful,
		TxHash:      tx.Hash(),
		BlockNumber: big.NewInt(o.block),
	}
	if err := o.errs[step]; err != nil {
		receipt.Status = types.ReceiptStatusFailed
		return receipt, err
	}
	o.submitted[step] = len(o.caller.Calls())
	return receipt, nil
}

type harness struct {
	caller    *contractCaller.FakeContractCaller
	confirmer *orderingConfirmer
	runner    *runner.Runner
	logs      *observer.ObservedLogs
}

func newHarness(t *testing.T, signer transactionSigner.ITransactionSigner) *harness {
	t.Helper()
	core, logs := observer.New(zapcore.InfoLevel)
	logger := zap.New(zapcore.NewTee(zaptest.NewLogger(t).Core(), core))

	fake := contractCaller.NewFakeContractCaller(fromAddr)
	confirmer := &orderingConfirmer{caller: fake, errs: map[string]error{}, submitted: map[string]int{}}
	newCaller := func(transactionSigner.ITransactionSigner) (contractCaller.IContractCaller, error) {
		return fake, nil
	}
	r := runner.NewRunner(&transactionSigner.StaticSignerProvider{Signer: signer}, newCaller, confirmer, logger)
	return &harness{caller: fake, confirmer: confirmer, runner: r, logs: logs}
}

func (h *harness) completions(msg string) int {
	return h.logs.FilterMessage(msg).Len()
}

func callsTo(calls []contractCaller.RecordedCall, contract common.Address) []contractCaller.RecordedCall {
	var out []contractCaller.RecordedCall
	for _, c := range calls {
		if c.Contract == contract {
			out = append(out, c)
		}
	}
	return out
}

func Test_LockPaymentPlan(t *testing.T) {
	gateway := common.HexToAddress(mumbai.PaymentGateway)
	token := common.HexToAddress(mumbai.USDC)

	t.Run("one lock submission to the gateway and exit 0", func(t *testing.T) {
		h := newHarness(t, stubSigner{})
		plan, err := NewLockPaymentPlan(DefaultLockPaymentParams(mumbai))
		require.NoError(t, err)

		res, err := h.runner.Run(context.Background(), plan)
		require.NoError(t, err)
		assert.Equal(t, 0, runner.ExitCode(err))
		assert.Len(t, res.Receipts, 2)

		locks := callsTo(h.caller.Calls(), gateway)
		require.Len(t, locks, 1)
		assert.Equal(t, "lockTokenPayment", locks[0].Method)
		assert.Equal(t, uint64(DefaultLockGasLimit), locks[0].GasLimit)

		param, ok := locks[0].Args[0].(SwanPayment.IPaymentMinimalLockPaymentParam)
		require.True(t, ok)
		assert.Equal(t, DefaultPaymentId, param.Id)
		assert.Equal(t, DefaultMinPayment, param.MinPayment.String())
		assert.Equal(t, DefaultLockAmount, param.Amount.String())
		assert.Equal(t, int64(60), param.LockTime.Int64())
		assert.Equal(t, common.HexToAddress(DefaultLockRecipient), param.Recipient)
		assert.Equal(t, int64(0), param.Size.Int64())

		approvals := callsTo(h.caller.Calls(), token)
		require.Len(t, approvals, 1)
		assert.Equal(t, gateway, approvals[0].Args[0])
		assert.Equal(t, DefaultApproveAmount, approvals[0].Args[1].(*big.Int).String())

		assert.Equal(t, 1, h.completions(MessageLockPayment))
	})

	t.Run("approval confirmed before lock is submitted", func(t *testing.T) {
		h := newHarness(t, stubSigner{})
		plan, err := NewLockPaymentPlan(DefaultLockPaymentParams(mumbai))
		require.NoError(t, err)

		_, err = h.runner.Run(context.Background(), plan)
		require.NoError(t, err)

		calls := h.caller.Calls()
		require.Len(t, calls, 2)
		assert.Equal(t, "approve", calls[0].Method)
		assert.Equal(t, "lockTokenPayment", calls[1].Method)
		assert.Less(t, calls[0].Tx.Nonce(), calls[1].Tx.Nonce())
		// only the approval existed when it was confirmed
		assert.Equal(t, 1, h.confirmer.submitted[StepApprove])
		assert.Equal(t, 2, h.confirmer.submitted[StepLockTokenPayment])
	})

	t.Run("approval is a prerequisite step", func(t *testing.T) {
		plan, err := NewLockPaymentPlan(DefaultLockPaymentParams(mumbai))
		require.NoError(t, err)
		require.Len(t, plan.Steps, 2)
		assert.True(t, plan.Steps[0].Prerequisite)
		assert.False(t, plan.Steps[1].Prerequisite)
	})

	t.Run("revert of the lock exits 1 without completion", func(t *testing.T) {
		h := newHarness(t, stubSigner{})
		h.caller.Errors["lockTokenPayment"] = errors.New("execution reverted: insufficient allowance")
		plan, err := NewLockPaymentPlan(DefaultLockPaymentParams(mumbai))
		require.NoError(t, err)

		_, err = h.runner.Run(context.Background(), plan)
		require.Error(t, err)
		assert.True(t, txerrors.Is(err, txerrors.KindExecutionReverted))
		assert.Equal(t, 1, runner.ExitCode(err))
		assert.Equal(t, 0, h.completions(MessageLockPayment))
	})

	t.Run("reverted approval stops before the lock", func(t *testing.T) {
		h := newHarness(t, stubSigner{})
		h.confirmer.errs[StepApprove] = txerrors.ExecutionReverted(StepApprove, "0x01")
		plan, err := NewLockPaymentPlan(DefaultLockPaymentParams(mumbai))
		require.NoError(t, err)

		_, err = h.runner.Run(context.Background(), plan)
		require.Error(t, err)
		assert.Empty(t, callsTo(h.caller.Calls(), gateway))
		assert.Equal(t, 0, h.completions(MessageLockPayment))
	})

	t.Run("invalid params never reach the network", func(t *testing.T) {
		p := DefaultLockPaymentParams(mumbai)
		p.LockTime = "0"
		_, err := NewLockPaymentPlan(p)
		require.Error(t, err)
		assert.True(t, txerrors.Is(err, txerrors.KindConfiguration))

		_, err = NewLockPaymentPlan(nil)
		assert.True(t, txerrors.Is(err, txerrors.KindConfiguration))
	})
}

func Test_SignTransactionPlan(t *testing.T) {
	oracle := common.HexToAddress(mumbai.OracleDAO)

	t.Run("one submission to the oracle and exit 0", func(t *testing.T) {
		h := newHarness(t, stubSigner{})
		plan, err := NewSignTransactionPlan(DefaultSignTransactionParams(mumbai))
		require.NoError(t, err)

		_, err = h.runner.Run(context.Background(), plan)
		require.NoError(t, err)
		assert.Equal(t, 0, runner.ExitCode(err))

		calls := h.caller.Calls()
		require.Len(t, calls, 1)
		assert.Equal(t, oracle, calls[0].Contract)
		assert.Equal(t, []interface{}{DefaultPaymentId, DefaultDealId, common.HexToAddress(DefaultSignRecipient)}, calls[0].Args)
		assert.Equal(t, 1, h.completions(MessageSignTransaction))
	})

	t.Run("no signer exits 1 before any submission", func(t *testing.T) {
		h := newHarness(t, nil)
		plan, err := NewSignTransactionPlan(DefaultSignTransactionParams(mumbai))
		require.NoError(t, err)

		_, err = h.runner.Run(context.Background(), plan)
		require.Error(t, err)
		assert.True(t, runner.IsSignerUnavailable(err))
		assert.Equal(t, 1, runner.ExitCode(err))
		assert.Empty(t, h.caller.Calls())
		assert.Equal(t, 0, h.completions(MessageSignTransaction))
	})

	t.Run("running twice submits twice", func(t *testing.T) {
		h := newHarness(t, stubSigner{})
		for i := 0; i < 2; i++ {
			plan, err := NewSignTransactionPlan(DefaultSignTransactionParams(mumbai))
			require.NoError(t, err)
			_, err = h.runner.Run(context.Background(), plan)
			require.NoError(t, err)
		}

		calls := h.caller.Calls()
		require.Len(t, calls, 2)
		assert.Equal(t, calls[0].Args, calls[1].Args)
		assert.NotEqual(t, calls[0].Tx.Hash(), calls[1].Tx.Hash())
		assert.Equal(t, 2, h.completions(MessageSignTransaction))

		records, err := h.runner.Journal().ListSubmissions()
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.NotEqual(t, records[0].RunId, records[1].RunId)
	})
}

func Test_UpgradeProxyPlan(t *testing.T) {
	proxy := common.HexToAddress(mumbai.OracleDAOProxy)
	admin := common.HexToAddress("0xcE9A9e594db39dCD449E392d68F60959533c0D75")
	impl := common.HexToAddress("0xE53AEd6DEA9e44116D4551a93eEeE28bC8684916")

	t.Run("resolves the admin from the proxy", func(t *testing.T) {
		h := newHarness(t, stubSigner{})
		h.caller.ProxyAdmins[proxy] = admin
		plan, err := NewUpgradeProxyPlan(&UpgradeProxyParams{Proxy: proxy.Hex(), Implementation: impl.Hex()})
		require.NoError(t, err)

		_, err = h.runner.Run(context.Background(), plan)
		require.NoError(t, err)

		calls := h.caller.Calls()
		require.Len(t, calls, 1)
		assert.Equal(t, "upgrade", calls[0].Method)
		assert.Equal(t, admin, calls[0].Contract)
		assert.Equal(t, []interface{}{proxy, impl}, calls[0].Args)
		assert.Equal(t, 1, h.completions(MessageUpgradeProxy))

		records, err := h.runner.Journal().ListSubmissions()
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, admin.Hex(), records[0].Contract)
	})

	t.Run("explicit admin skips the lookup", func(t *testing.T) {
		h := newHarness(t, stubSigner{})
		h.caller.Errors["getProxyAdmin"] = errors.New("should not be called")
		plan, err := NewUpgradeProxyPlan(&UpgradeProxyParams{Proxy: proxy.Hex(), ProxyAdmin: admin.Hex(), Implementation: impl.Hex()})
		require.NoError(t, err)

		_, err = h.runner.Run(context.Background(), plan)
		require.NoError(t, err)
		require.Len(t, h.caller.Calls(), 1)
	})

	t.Run("unreadable admin fails without submitting", func(t *testing.T) {
		h := newHarness(t, stubSigner{})
		plan, err := NewUpgradeProxyPlan(&UpgradeProxyParams{Proxy: proxy.Hex(), Implementation: impl.Hex()})
		require.NoError(t, err)

		_, err = h.runner.Run(context.Background(), plan)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "proxy admin")
		assert.Empty(t, h.caller.Calls())
		assert.Equal(t, 0, h.completions(MessageUpgradeProxy))
	})
}

func Test_OracleAdminPlans(t *testing.T) {
	oracle := common.HexToAddress(mumbai.OracleDAO)
	h := newHarness(t, stubSigner{})

	setPlan, err := NewSetFilinkOraclePlan(&SetFilinkOracleParams{Oracle: mumbai.OracleDAO, FilinkOracle: DefaultFilinkOracle})
	require.NoError(t, err)
	thresholdPlan, err := NewUpdateThresholdPlan(&UpdateThresholdParams{Oracle: mumbai.OracleDAO, Threshold: DefaultOracleThreshold})
	require.NoError(t, err)

	_, err = h.runner.Run(context.Background(), setPlan, thresholdPlan)
	require.NoError(t, err)

	calls := h.caller.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, "setFilinkOracle", calls[0].Method)
	assert.Equal(t, oracle, calls[0].Contract)
	assert.Equal(t, []interface{}{common.HexToAddress(DefaultFilinkOracle)}, calls[0].Args)
	assert.Equal(t, "updateThreshold", calls[1].Method)
	assert.Equal(t, []interface{}{uint8(2)}, calls[1].Args)
	assert.Equal(t, 1, h.completions(MessageSetFilinkOracle))
	assert.Equal(t, 1, h.completions(MessageUpdateThreshold))
}

func Test_FromProcedurePlan(t *testing.T) {
	t.Run("fills contracts from the chain", func(t *testing.T) {
		plan, err := FromProcedurePlan(&config.ProcedurePlan{
			Type:       config.ProcedureType_LockPayment,
			Id:         "abcd",
			Amount:     "10",
			MinPayment: "1",
			LockTime:   "60",
			Recipient:  DefaultLockRecipient,
		}, mumbai)
		require.NoError(t, err)
		assert.Equal(t, common.HexToAddress(mumbai.USDC), plan.Steps[0].Contract)
		assert.Equal(t, common.HexToAddress(mumbai.PaymentGateway), plan.Steps[1].Contract)
	})

	t.Run("explicit oracle wins", func(t *testing.T) {
		plan, err := FromProcedurePlan(&config.ProcedurePlan{
			Type:      config.ProcedureType_UpdateThreshold,
			Oracle:    DefaultFilinkOracle,
			Threshold: 3,
		}, mumbai)
		require.NoError(t, err)
		assert.Equal(t, common.HexToAddress(DefaultFilinkOracle), plan.Steps[0].Contract)
	})

	t.Run("missing contracts are a configuration error", func(t *testing.T) {
		_, err := FromProcedurePlan(&config.ProcedurePlan{Type: config.ProcedureType_SignTransaction, Cid: "a", DealId: "1", Recipient: DefaultSignRecipient}, nil)
		require.Error(t, err)
		assert.True(t, txerrors.Is(err, txerrors.KindConfiguration))
	})

	t.Run("unknown type", func(t *testing.T) {
		_, err := FromProcedurePlan(&config.ProcedurePlan{Type: "deploy"}, mumbai)
		require.ErrorContains(t, err, "unsupported procedure type")
	})

	t.Run("plan file keeps order", func(t *testing.T) {
		plans, err := FromPlanFile(&config.PlanFile{
			Name: "oracle admin",
			Procedures: []*config.ProcedurePlan{
				{Type: config.ProcedureType_SetFilinkOracle, FilinkOracle: DefaultFilinkOracle},
				{Type: config.ProcedureType_UpdateThreshold, Threshold: 2},
			},
		}, mumbai)
		require.NoError(t, err)
		require.Len(t, plans, 2)
		assert.Equal(t, MessageSetFilinkOracle, plans[0].CompletionMessage)
		assert.Equal(t, MessageUpdateThreshold, plans[1].CompletionMessage)
	})

	t.Run("plan file reports the failing procedure", func(t *testing.T) {
		_, err := FromPlanFile(&config.PlanFile{
			Name:       "bad",
			Procedures: []*config.ProcedurePlan{{Type: config.ProcedureType_UpdateThreshold}},
		}, mumbai)
		require.ErrorContains(t, err, "procedure 0")
	})
}
