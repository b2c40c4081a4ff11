package runner

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/filswan/swan-tx-runner/internal/tests"
	"github.com/filswan/swan-tx-runner/pkg/bindings/SwanPayment"
	"github.com/filswan/swan-tx-runner/pkg/config"
	"github.com/filswan/swan-tx-runner/pkg/contractCaller"
	"github.com/filswan/swan-tx-runner/pkg/persistence"
	"github.com/filswan/swan-tx-runner/pkg/persistence/memory"
	"github.com/filswan/swan-tx-runner/pkg/transactionSigner"
	"github.com/filswan/swan-tx-runner/pkg/txerrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

var (
	tokenAddr   = common.HexToAddress("0xe11A86849d99F524cAC3E7A0Ec1241828e332C62")
	gatewayAddr = common.HexToAddress("0x12EDC75CE16d778Dc450960d5f1a744477ee49a0")
	fromAddr    = common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")
)

const completion = "Lock payment completed."

var testNow = time.Date(2023, 3, 1, 12, 0, 0, 0, time.UTC)

type stubSigner struct{}

func (stubSigner) GetTransactOpts(ctx context.Context) (*bind.TransactOpts, error) {
	return &bind.TransactOpts{From: fromAddr, Context: ctx, NoSend: true}, nil
}

func (stubSigner) SignAndSendTransaction(ctx context.Context, tx *types.Transaction) (*types.Transaction, error) {
	return tx, nil
}

func (stubSigner) GetFromAddress() common.Address { return fromAddr }

// eventLog collects submissions and confirmations in the order they happen
type eventLog struct {
	mu     sync.Mutex
	events []string
}

func (e *eventLog) add(event string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, event)
}

func (e *eventLog) list() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string{}, e.events...)
}

// submittedAfterConfirmed reports whether dependent was submitted only after
// prerequisite was confirmed
func submittedAfterConfirmed(events []string, prerequisite, dependent string) bool {
	confirmedAt, submittedAt := -1, -1
	for i, e := range events {
		switch e {
		case "confirm:" + prerequisite:
			if confirmedAt < 0 {
				confirmedAt = i
			}
		case "submit:" + dependent:
			if submittedAt < 0 {
				submittedAt = i
			}
		}
	}
	return confirmedAt >= 0 && submittedAt > confirmedAt
}

type fakeConfirmer struct {
	log    *eventLog
	errs   map[string]error
	block  int64
	waited int
}

func (f *fakeConfirmer) Wait(_ context.Context, step string, tx *types.Transaction) (*types.Receipt, error) {
	f.waited++
	f.block++
	receipt := &types.Receipt{
		Status:      types.ReceiptStatusSuccessful,
		TxHash:      tx.Hash(),
		BlockNumber: big.NewInt(f.block),
		GasUsed:     21000,
	}
	if err := f.errs[step]; err != nil {
		if txerrors.Is(err, txerrors.KindExecutionReverted) {
			receipt.Status = types.ReceiptStatusFailed
			return receipt, err
		}
		return nil, err
	}
	f.log.add("confirm:" + step)
	return receipt, nil
}

func lockPlan(log *eventLog, approvePrerequisite bool) *Plan {
	return &Plan{
		Name:              "lock payment",
		CompletionMessage: completion,
		Steps: []*Step{
			{
				Name:         "approve",
				Contract:     tokenAddr,
				Method:       "approve",
				Prerequisite: approvePrerequisite,
				Submit: func(ctx context.Context, cc contractCaller.IContractCaller, gasLimit uint64) (*types.Transaction, error) {
					tx, err := cc.ApproveToken(ctx, tokenAddr, gatewayAddr, big.NewInt(10), gasLimit)
					if err == nil {
						log.add("submit:approve")
					}
					return tx, err
				},
			},
			{
				Name:     "lockTokenPayment",
				Contract: gatewayAddr,
				Method:   "lockTokenPayment",
				GasLimit: 9999999,
				Submit: func(ctx context.Context, cc contractCaller.IContractCaller, gasLimit uint64) (*types.Transaction, error) {
					tx, err := cc.LockTokenPayment(ctx, gatewayAddr, SwanPayment.IPaymentMinimalLockPaymentParam{
						Id:         "abcd",
						MinPayment: big.NewInt(1),
						Amount:     big.NewInt(10),
						LockTime:   big.NewInt(60),
						Recipient:  fromAddr,
						Size:       big.NewInt(0),
					}, gasLimit)
					if err == nil {
						log.add("submit:lockTokenPayment")
					}
					return tx, err
				},
			},
		},
	}
}

type harness struct {
	runner    *Runner
	caller    *contractCaller.FakeContractCaller
	confirmer *fakeConfirmer
	journal   *memory.MemoryPersistence
	log       *eventLog
	logs      *observer.ObservedLogs
	callerNew int
}

func newHarness(t *testing.T, signer transactionSigner.ITransactionSigner) *harness {
	t.Helper()
	core, logs := observer.New(zapcore.InfoLevel)
	l := zap.New(zapcore.NewTee(core, zaptest.NewLogger(t).Core()))

	h := &harness{
		caller:  contractCaller.NewFakeContractCaller(fromAddr),
		log:     &eventLog{},
		logs:    logs,
		journal: memory.NewMemoryPersistence(l),
	}
	h.confirmer = &fakeConfirmer{log: h.log, errs: map[string]error{}}
	newCaller := func(transactionSigner.ITransactionSigner) (contractCaller.IContractCaller, error) {
		h.callerNew++
		return h.caller, nil
	}
	h.runner = NewRunner(&transactionSigner.StaticSignerProvider{Signer: signer}, newCaller, h.confirmer, l,
		WithJournal(h.journal),
		WithClock(func() time.Time { return testNow }),
	)
	return h
}

func (h *harness) completed() bool {
	return h.logs.FilterMessage(completion).Len() > 0
}

func Test_Runner(t *testing.T) {
	ctx := context.Background()

	t.Run("approval is confirmed before the lock is submitted", func(t *testing.T) {
		h := newHarness(t, stubSigner{})

		result, err := h.runner.Run(ctx, lockPlan(h.log, true))
		require.NoError(t, err)
		assert.Equal(t, 0, ExitCode(err))
		assert.Len(t, result.Receipts, 2)

		events := h.log.list()
		assert.Equal(t, []string{"submit:approve", "confirm:approve", "submit:lockTokenPayment", "confirm:lockTokenPayment"}, events)
		assert.True(t, submittedAfterConfirmed(events, "approve", "lockTokenPayment"))

		calls := h.caller.Calls()
		require.Len(t, calls, 2)
		assert.Equal(t, "lockTokenPayment", calls[1].Method)
		assert.Equal(t, gatewayAddr, calls[1].Contract)
		assert.Equal(t, uint64(9999999), calls[1].GasLimit)
		assert.Equal(t, uint64(0), calls[0].GasLimit)

		assert.True(t, h.completed())

		records, err := h.journal.ListRunSubmissions(result.RunId)
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, "approve", records[0].Step)
		assert.Equal(t, persistence.SubmissionStatus_Confirmed, records[0].Status)
		assert.Equal(t, persistence.SubmissionStatus_Confirmed, records[1].Status)
		assert.Equal(t, fromAddr.Hex(), records[1].From)
		assert.Equal(t, uint64(2), records[1].BlockNumber)
		assert.True(t, records[0].SubmittedAt.Equal(testNow))
	})

	t.Run("ordering check catches a lock submitted before its approval confirms", func(t *testing.T) {
		h := newHarness(t, stubSigner{})

		_, err := h.runner.Run(ctx, lockPlan(h.log, false))
		require.NoError(t, err)

		events := h.log.list()
		assert.Equal(t, "submit:lockTokenPayment", events[1])
		assert.False(t, submittedAfterConfirmed(events, "approve", "lockTokenPayment"))
		assert.False(t, submittedAfterConfirmed([]string{"submit:lockTokenPayment", "submit:approve", "confirm:approve"}, "approve", "lockTokenPayment"))
	})

	t.Run("no signer fails before any submission", func(t *testing.T) {
		h := newHarness(t, nil)

		result, err := h.runner.Run(ctx, lockPlan(h.log, true))
		require.Error(t, err)
		assert.Nil(t, result)
		assert.True(t, txerrors.Is(err, txerrors.KindSignerUnavailable))
		assert.ErrorIs(t, err, txerrors.ErrNoSigner)
		assert.True(t, IsSignerUnavailable(err))
		assert.Equal(t, 1, ExitCode(err))

		assert.Equal(t, 0, h.callerNew)
		assert.Empty(t, h.caller.Calls())
		assert.False(t, h.completed())
		all, err := h.journal.ListSubmissions()
		require.NoError(t, err)
		assert.Empty(t, all)
	})

	t.Run("revert on submission aborts the remaining steps", func(t *testing.T) {
		h := newHarness(t, stubSigner{})
		h.caller.Errors["approve"] = errors.New("execution reverted: ERC20: approve to the zero address")

		_, err := h.runner.Run(ctx, lockPlan(h.log, true))
		require.Error(t, err)
		assert.True(t, txerrors.Is(err, txerrors.KindExecutionReverted))
		assert.Contains(t, err.Error(), `step "approve"`)
		assert.Equal(t, 1, ExitCode(err))
		assert.Empty(t, h.caller.Calls())
		assert.False(t, h.completed())
	})

	t.Run("revert on chain is journaled and not completed", func(t *testing.T) {
		h := newHarness(t, stubSigner{})
		h.confirmer.errs["lockTokenPayment"] = txerrors.ExecutionReverted("lockTokenPayment", "0x01")

		result, err := h.runner.Run(ctx, lockPlan(h.log, true))
		require.Error(t, err)
		assert.True(t, txerrors.Is(err, txerrors.KindExecutionReverted))
		assert.Equal(t, 1, ExitCode(err))
		assert.False(t, h.completed())

		records, err := h.journal.ListRunSubmissions(result.RunId)
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, persistence.SubmissionStatus_Confirmed, records[0].Status)
		assert.Equal(t, persistence.SubmissionStatus_Reverted, records[1].Status)
		assert.NotEmpty(t, records[1].Error)
	})

	t.Run("approval timeout stops before the lock", func(t *testing.T) {
		h := newHarness(t, stubSigner{})
		h.confirmer.errs["approve"] = txerrors.Timeout("approve", context.DeadlineExceeded)

		result, err := h.runner.Run(ctx, lockPlan(h.log, true))
		require.Error(t, err)
		assert.True(t, txerrors.Is(err, txerrors.KindTimeout))
		assert.True(t, txerrors.IsRetryable(err))
		require.Len(t, h.caller.Calls(), 1)

		records, err := h.journal.ListRunSubmissions(result.RunId)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, persistence.SubmissionStatus_Unknown, records[0].Status)
	})

	t.Run("same plan twice submits twice", func(t *testing.T) {
		h := newHarness(t, stubSigner{})

		first, err := h.runner.Run(ctx, lockPlan(h.log, true))
		require.NoError(t, err)
		second, err := h.runner.Run(ctx, lockPlan(h.log, true))
		require.NoError(t, err)

		assert.NotEqual(t, first.RunId, second.RunId)
		assert.Len(t, h.caller.Calls(), 4)

		all, err := h.journal.ListSubmissions()
		require.NoError(t, err)
		assert.Len(t, all, 4)
		assert.Equal(t, 2, h.logs.FilterMessage(completion).Len())
	})

	t.Run("several plans share one signer and run id", func(t *testing.T) {
		h := newHarness(t, stubSigner{})
		second := lockPlan(h.log, true)
		second.Name = "again"
		for _, s := range second.Steps {
			s.Name += "-again"
		}

		result, err := h.runner.Run(ctx, lockPlan(h.log, true), second)
		require.NoError(t, err)
		assert.Equal(t, 1, h.callerNew)

		records, err := h.journal.ListRunSubmissions(result.RunId)
		require.NoError(t, err)
		require.Len(t, records, 4)
		for i, r := range records {
			assert.Equal(t, i, r.Sequence)
		}
	})

	t.Run("invalid plan is a configuration error", func(t *testing.T) {
		h := newHarness(t, stubSigner{})

		_, err := h.runner.Run(ctx, &Plan{Name: "empty"})
		require.Error(t, err)
		assert.True(t, txerrors.Is(err, txerrors.KindConfiguration))

		_, err = h.runner.Run(ctx)
		require.Error(t, err)
		assert.Equal(t, 0, h.callerNew)
	})
}

func Test_PlanValidate(t *testing.T) {
	submit := func(context.Context, contractCaller.IContractCaller, uint64) (*types.Transaction, error) { return nil, nil }

	var nilPlan *Plan
	assert.Error(t, nilPlan.Validate())
	assert.Error(t, (&Plan{Steps: []*Step{nil}}).Validate())
	assert.Error(t, (&Plan{Steps: []*Step{{Submit: submit}}}).Validate())
	assert.Error(t, (&Plan{Steps: []*Step{{Name: "a"}}}).Validate())
	assert.Error(t, (&Plan{Steps: []*Step{{Name: "a", Submit: submit}, {Name: "a", Submit: submit}}}).Validate())
	assert.NoError(t, (&Plan{Steps: []*Step{{Name: "a", Submit: submit}}}).Validate())
}

func Test_RunnerOnSimulatedChain(t *testing.T) {
	ctx := context.Background()
	l := zaptest.NewLogger(t)
	confirmCfg := &config.ConfirmationConfig{Timeout: 10 * time.Second, PollInterval: 10 * time.Millisecond, Confirmations: 1}

	newChainRunner := func(t *testing.T, chain *tests.SimulatedChain) (*Runner, *memory.MemoryPersistence) {
		signer, err := transactionSigner.NewPrivateKeySigner(chain.PrivateKeyHex(0), chain.Client, l)
		require.NoError(t, err)
		journal := memory.NewMemoryPersistence(l)
		return NewRunnerForBackend(chain.Client, &transactionSigner.StaticSignerProvider{Signer: signer}, confirmCfg, l, WithJournal(journal)), journal
	}

	t.Run("approval lands in an earlier block than the lock", func(t *testing.T) {
		chain := tests.NewSimulatedChain(t, 2)
		chain.AutoCommit(t, 20*time.Millisecond)
		r, journal := newChainRunner(t, chain)

		// both contracts are plain accounts here, so every call succeeds
		plan := &Plan{
			Name: "lock",
			Steps: []*Step{
				{
					Name: "approve", Prerequisite: true,
					Submit: func(ctx context.Context, cc contractCaller.IContractCaller, gasLimit uint64) (*types.Transaction, error) {
						return cc.ApproveToken(ctx, chain.Addresses[1], chain.Addresses[1], big.NewInt(10), gasLimit)
					},
				},
				{
					Name: "lockTokenPayment", GasLimit: 9999999,
					Submit: func(ctx context.Context, cc contractCaller.IContractCaller, gasLimit uint64) (*types.Transaction, error) {
						return cc.LockTokenPayment(ctx, chain.Addresses[1], SwanPayment.IPaymentMinimalLockPaymentParam{
							Id: "abcd", MinPayment: big.NewInt(1), Amount: big.NewInt(10), LockTime: big.NewInt(60),
							Recipient: chain.Addresses[0], Size: big.NewInt(0),
						}, gasLimit)
					},
				},
			},
		}

		result, err := r.Run(ctx, plan)
		require.NoError(t, err)
		require.Len(t, result.Receipts, 2)
		assert.Less(t, result.Receipts[0].BlockNumber.Uint64(), result.Receipts[1].BlockNumber.Uint64())

		records, err := journal.ListRunSubmissions(result.RunId)
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, uint64(0), records[0].Nonce)
		assert.Equal(t, uint64(1), records[1].Nonce)
	})

	t.Run("reverting call", func(t *testing.T) {
		chain := tests.NewSimulatedChain(t, 1)
		target := chain.DeployRevertingContract(t)
		chain.AutoCommit(t, 20*time.Millisecond)
		r, journal := newChainRunner(t, chain)

		plan := &Plan{
			Name:              "sign",
			CompletionMessage: "Sign transaction completed.",
			Steps: []*Step{{
				// a pinned gas limit skips estimation, so the revert happens on chain
				Name: "signTransaction", GasLimit: 100_000,
				Submit: func(ctx context.Context, cc contractCaller.IContractCaller, gasLimit uint64) (*types.Transaction, error) {
					return cc.SignTransaction(ctx, target, "cid", "'4109'", chain.Addresses[0], gasLimit)
				},
			}},
		}

		result, err := r.Run(ctx, plan)
		require.Error(t, err)
		assert.True(t, txerrors.Is(err, txerrors.KindExecutionReverted), fmt.Sprintf("got %v", err))

		records, err := journal.ListRunSubmissions(result.RunId)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, persistence.SubmissionStatus_Reverted, records[0].Status)
	})
}
