package runner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/core/types"
	"github.com/filswan/swan-tx-runner/pkg/config"
	"github.com/filswan/swan-tx-runner/pkg/confirmation"
	"github.com/filswan/swan-tx-runner/pkg/contractCaller"
	"github.com/filswan/swan-tx-runner/pkg/contractCaller/caller"
	"github.com/filswan/swan-tx-runner/pkg/persistence"
	"github.com/filswan/swan-tx-runner/pkg/persistence/memory"
	"github.com/filswan/swan-tx-runner/pkg/transactionSigner"
	"github.com/filswan/swan-tx-runner/pkg/txerrors"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Confirmer blocks until a submitted transaction is confirmed
type Confirmer interface {
	Wait(ctx context.Context, step string, tx *types.Transaction) (*types.Receipt, error)
}

// CallerFactory binds the contract caller to the signer of a run
type CallerFactory func(signer transactionSigner.ITransactionSigner) (contractCaller.IContractCaller, error)

type Runner struct {
	signers   transactionSigner.SignerProvider
	newCaller CallerFactory
	confirmer Confirmer
	journal   persistence.ISubmissionJournal
	logger    *zap.Logger
	now       func() time.Time
}

type Option func(*Runner)

// WithJournal records every submission in j. Without it submissions are
// kept in memory for the lifetime of the runner.
func WithJournal(j persistence.ISubmissionJournal) Option {
	return func(r *Runner) {
		r.journal = j
	}
}

func WithClock(now func() time.Time) Option {
	return func(r *Runner) {
		r.now = now
	}
}

func NewRunner(
	signers transactionSigner.SignerProvider,
	newCaller CallerFactory,
	confirmer Confirmer,
	logger *zap.Logger,
	opts ...Option,
) *Runner {
	r := &Runner{
		signers:   signers,
		newCaller: newCaller,
		confirmer: confirmer,
		logger:    logger,
		now:       time.Now,
	}
	for _, o := range opts {
		o(r)
	}
	if r.journal == nil {
		r.journal = memory.NewMemoryPersistence(logger)
	}
	return r
}

// NewRunnerForBackend wires the contract caller and the confirmation waiter to
// a single Ethereum client
func NewRunnerForBackend(
	backend caller.Backend,
	signers transactionSigner.SignerProvider,
	confirmCfg *config.ConfirmationConfig,
	logger *zap.Logger,
	opts ...Option,
) *Runner {
	newCaller := func(signer transactionSigner.ITransactionSigner) (contractCaller.IContractCaller, error) {
		return caller.NewContractCaller(backend, signer, logger)
	}
	return NewRunner(signers, newCaller, confirmation.NewWaiter(backend, confirmCfg, logger), logger, opts...)
}

// Result describes a run that got as far as acquiring a signer
type Result struct {
	RunId    string
	Receipts []*types.Receipt
}

type pendingStep struct {
	step   *Step
	tx     *types.Transaction
	record *persistence.SubmissionRecord
}

// Run executes the plans in order with one signer. Each step is submitted at
// most once. A prerequisite step, and the last step of every plan, is
// confirmed before anything after it is submitted. The first failure aborts
// the run; earlier submissions are not undone. A plan's completion message is
// logged only once all of its steps are confirmed.
func (r *Runner) Run(ctx context.Context, plans ...*Plan) (*Result, error) {
	if len(plans) == 0 {
		return nil, txerrors.Configuration("", fmt.Errorf("nothing to run"))
	}
	for _, p := range plans {
		if err := p.Validate(); err != nil {
			return nil, txerrors.Configuration("", err)
		}
	}

	signer, err := r.signers.GetSigner(ctx)
	if err != nil {
		if _, tagged := txerrors.KindOf(err); !tagged {
			err = txerrors.SignerUnavailable(err)
		}
		r.logger.Sugar().Errorw("No signer available", "error", err)
		return nil, err
	}
	if signer == nil {
		return nil, txerrors.SignerUnavailable(nil)
	}

	cc, err := r.newCaller(signer)
	if err != nil {
		return nil, txerrors.Configuration("", fmt.Errorf("failed to create contract caller: %w", err))
	}

	result := &Result{RunId: uuid.NewString()}
	r.logger.Sugar().Infow("Starting run",
		"runId", result.RunId,
		"from", signer.GetFromAddress().Hex(),
		"plans", len(plans),
	)

	sequence := 0
	for _, plan := range plans {
		var pending []*pendingStep
		for i, step := range plan.Steps {
			p, err := r.submit(ctx, cc, result.RunId, sequence, step)
			if err != nil {
				return result, err
			}
			sequence++
			pending = append(pending, p)

			if !step.Prerequisite && i != len(plan.Steps)-1 {
				continue
			}
			for _, p := range pending {
				receipt, err := r.confirm(ctx, p)
				if err != nil {
					return result, err
				}
				result.Receipts = append(result.Receipts, receipt)
			}
			pending = nil
		}

		if plan.CompletionMessage != "" {
			r.logger.Info(plan.CompletionMessage, zap.String("runId", result.RunId), zap.String("plan", plan.Name))
		}
	}
	return result, nil
}

func (r *Runner) submit(ctx context.Context, cc contractCaller.IContractCaller, runId string, sequence int, step *Step) (*pendingStep, error) {
	r.logger.Sugar().Infow("Submitting step",
		"runId", runId,
		"step", step.Name,
		"method", step.Method,
		"contract", step.Contract.Hex(),
	)

	tx, err := step.Submit(ctx, cc, step.GasLimit)
	if err != nil {
		err = txerrors.Classify(step.Name, err)
		r.logger.Sugar().Errorw("Failed to submit step", "runId", runId, "step", step.Name, "error", err)
		return nil, err
	}
	if tx == nil {
		return nil, txerrors.Configuration(step.Name, fmt.Errorf("step returned no transaction"))
	}

	contract := step.Contract
	if to := tx.To(); to != nil {
		contract = *to
	}

	now := r.now()
	record := &persistence.SubmissionRecord{
		RunId:       runId,
		Sequence:    sequence,
		Step:        step.Name,
		Method:      step.Method,
		Contract:    contract.Hex(),
		TxHash:      tx.Hash().Hex(),
		Nonce:       tx.Nonce(),
		From:        cc.GetFromAddress().Hex(),
		SubmittedAt: now,
		UpdatedAt:   now,
		Status:      persistence.SubmissionStatus_Submitted,
	}
	if err := r.journal.RecordSubmission(record); err != nil {
		// the transaction is already broadcast
		r.logger.Sugar().Warnw("Failed to record submission", "txHash", record.TxHash, "error", err)
	}

	r.logger.Sugar().Infow("Step submitted",
		"runId", runId,
		"step", step.Name,
		"txHash", record.TxHash,
		"nonce", record.Nonce,
	)
	return &pendingStep{step: step, tx: tx, record: record}, nil
}

func (r *Runner) confirm(ctx context.Context, p *pendingStep) (*types.Receipt, error) {
	receipt, err := r.confirmer.Wait(ctx, p.step.Name, p.tx)
	if err != nil {
		err = txerrors.Classify(p.step.Name, err)
	}

	p.record.UpdatedAt = r.now()
	switch {
	case err == nil:
		p.record.Status = persistence.SubmissionStatus_Confirmed
	case txerrors.Is(err, txerrors.KindExecutionReverted):
		p.record.Status = persistence.SubmissionStatus_Reverted
	default:
		p.record.Status = persistence.SubmissionStatus_Unknown
	}
	if receipt != nil {
		p.record.BlockNumber = receipt.BlockNumber.Uint64()
		p.record.GasUsed = receipt.GasUsed
	}
	if err != nil {
		p.record.Error = err.Error()
	}
	if jerr := r.journal.UpdateSubmission(p.record); jerr != nil {
		r.logger.Sugar().Warnw("Failed to update submission", "txHash", p.record.TxHash, "error", jerr)
	}

	if err != nil {
		r.logger.Sugar().Errorw("Step failed", "step", p.step.Name, "txHash", p.record.TxHash, "error", err)
		return receipt, err
	}
	return receipt, nil
}

// Journal returns the journal the runner records into
func (r *Runner) Journal() persistence.ISubmissionJournal {
	return r.journal
}

// ExitCode maps the outcome of a run to the process exit status: 0 on success,
// 1 for every error kind
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	return 1
}

// IsSignerUnavailable is a shorthand used by the entry points to print a hint
func IsSignerUnavailable(err error) bool {
	return errors.Is(err, txerrors.ErrNoSigner) || txerrors.Is(err, txerrors.KindSignerUnavailable)
}
