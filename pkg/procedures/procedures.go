// Package procedures turns validated parameters into runner plans, one plan
// per operator procedure.
package procedures

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/filswan/swan-tx-runner/pkg/bindings/SwanPayment"
	"github.com/filswan/swan-tx-runner/pkg/config"
	"github.com/filswan/swan-tx-runner/pkg/contractCaller"
	"github.com/filswan/swan-tx-runner/pkg/runner"
	"github.com/filswan/swan-tx-runner/pkg/txerrors"
)

const (
	StepApprove          = "approve"
	StepLockTokenPayment = "lockTokenPayment"
	StepSignTransaction  = "signTransaction"
	StepUpgrade          = "upgrade"
	StepSetFilinkOracle  = "setFilinkOracle"
	StepUpdateThreshold  = "updateThreshold"
)

const (
	MessageLockPayment     = "Lock payment completed."
	MessageSignTransaction = "Sign transaction completed."
	MessageUpgradeProxy    = "FilswanOracle upgraded"
	MessageSetFilinkOracle = "Set Filink Oracle completed."
	MessageUpdateThreshold = "update threshold completed."
)

// NewLockPaymentPlan approves the gateway to pull the payment and then locks
// it. The approval is confirmed before lockTokenPayment is submitted.
func NewLockPaymentPlan(p *LockPaymentParams) (*runner.Plan, error) {
	if p == nil {
		return nil, txerrors.Configuration("", fmt.Errorf("lock payment params are nil"))
	}
	lp, errs := p.parse()
	if err := errs.ToAggregate(); err != nil {
		return nil, txerrors.Configuration("", fmt.Errorf("invalid lock payment params: %w", err))
	}

	param := SwanPayment.IPaymentMinimalLockPaymentParam{
		Id:         lp.id,
		MinPayment: lp.minPayment,
		Amount:     lp.amount,
		LockTime:   lp.lockTime,
		Recipient:  lp.recipient,
		Size:       lp.size,
	}

	return &runner.Plan{
		Name: string(config.ProcedureType_LockPayment),
		Steps: []*runner.Step{
			{
				Name:         StepApprove,
				Contract:     lp.token,
				Method:       "approve",
				Prerequisite: true,
				Submit: func(ctx context.Context, cc contractCaller.IContractCaller, gasLimit uint64) (*types.Transaction, error) {
					return cc.ApproveToken(ctx, lp.token, lp.gateway, lp.approveAmount, gasLimit)
				},
			},
			{
				Name:     StepLockTokenPayment,
				Contract: lp.gateway,
				Method:   "lockTokenPayment",
				GasLimit: lp.gasLimit,
				Submit: func(ctx context.Context, cc contractCaller.IContractCaller, gasLimit uint64) (*types.Transaction, error) {
					return cc.LockTokenPayment(ctx, lp.gateway, param, gasLimit)
				},
			},
		},
		CompletionMessage: MessageLockPayment,
	}, nil
}

func NewSignTransactionPlan(p *SignTransactionParams) (*runner.Plan, error) {
	if p == nil {
		return nil, txerrors.Configuration("", fmt.Errorf("sign transaction params are nil"))
	}
	st, errs := p.parse()
	if err := errs.ToAggregate(); err != nil {
		return nil, txerrors.Configuration("", fmt.Errorf("invalid sign transaction params: %w", err))
	}

	return &runner.Plan{
		Name: string(config.ProcedureType_SignTransaction),
		Steps: []*runner.Step{{
			Name:     StepSignTransaction,
			Contract: st.oracle,
			Method:   "signTransaction",
			GasLimit: st.gasLimit,
			Submit: func(ctx context.Context, cc contractCaller.IContractCaller, gasLimit uint64) (*types.Transaction, error) {
				return cc.SignTransaction(ctx, st.oracle, st.cid, st.dealId, st.recipient, gasLimit)
			},
		}},
		CompletionMessage: MessageSignTransaction,
	}, nil
}

// NewUpgradeProxyPlan points a transparent proxy at an already deployed
// implementation. Without an explicit ProxyAdmin the admin is read from the
// proxy when the step runs.
func NewUpgradeProxyPlan(p *UpgradeProxyParams) (*runner.Plan, error) {
	if p == nil {
		return nil, txerrors.Configuration("", fmt.Errorf("upgrade proxy params are nil"))
	}
	up, errs := p.parse()
	if err := errs.ToAggregate(); err != nil {
		return nil, txerrors.Configuration("", fmt.Errorf("invalid upgrade proxy params: %w", err))
	}

	contract := up.proxy
	if up.proxyAdmin != nil {
		contract = *up.proxyAdmin
	}

	return &runner.Plan{
		Name: string(config.ProcedureType_UpgradeProxy),
		Steps: []*runner.Step{{
			Name:     StepUpgrade,
			Contract: contract,
			Method:   "upgrade",
			GasLimit: up.gasLimit,
			Submit: func(ctx context.Context, cc contractCaller.IContractCaller, gasLimit uint64) (*types.Transaction, error) {
				admin, err := resolveProxyAdmin(ctx, cc, up)
				if err != nil {
					return nil, err
				}
				return cc.UpgradeProxy(ctx, admin, up.proxy, up.implementation, gasLimit)
			},
		}},
		CompletionMessage: MessageUpgradeProxy,
	}, nil
}

func resolveProxyAdmin(ctx context.Context, cc contractCaller.IContractCaller, up *upgradeProxy) (common.Address, error) {
	if up.proxyAdmin != nil {
		return *up.proxyAdmin, nil
	}
	admin, err := cc.GetProxyAdmin(ctx, up.proxy)
	if err != nil {
		return common.Address{}, fmt.Errorf("failed to resolve proxy admin of %s: %w", up.proxy.Hex(), err)
	}
	if admin == (common.Address{}) {
		return common.Address{}, txerrors.Configuration(StepUpgrade, fmt.Errorf("proxy %s has no admin", up.proxy.Hex()))
	}
	return admin, nil
}

func NewSetFilinkOraclePlan(p *SetFilinkOracleParams) (*runner.Plan, error) {
	if p == nil {
		return nil, txerrors.Configuration("", fmt.Errorf("set filink oracle params are nil"))
	}
	oracle, filink, errs := p.parse()
	if err := errs.ToAggregate(); err != nil {
		return nil, txerrors.Configuration("", fmt.Errorf("invalid set filink oracle params: %w", err))
	}

	return &runner.Plan{
		Name: string(config.ProcedureType_SetFilinkOracle),
		Steps: []*runner.Step{{
			Name:     StepSetFilinkOracle,
			Contract: oracle,
			Method:   "setFilinkOracle",
			GasLimit: p.GasLimit,
			Submit: func(ctx context.Context, cc contractCaller.IContractCaller, gasLimit uint64) (*types.Transaction, error) {
				return cc.SetFilinkOracle(ctx, oracle, filink, gasLimit)
			},
		}},
		CompletionMessage: MessageSetFilinkOracle,
	}, nil
}

func NewUpdateThresholdPlan(p *UpdateThresholdParams) (*runner.Plan, error) {
	if p == nil {
		return nil, txerrors.Configuration("", fmt.Errorf("update threshold params are nil"))
	}
	oracle, errs := p.parse()
	if err := errs.ToAggregate(); err != nil {
		return nil, txerrors.Configuration("", fmt.Errorf("invalid update threshold params: %w", err))
	}
	threshold := p.Threshold

	return &runner.Plan{
		Name: string(config.ProcedureType_UpdateThreshold),
		Steps: []*runner.Step{{
			Name:     StepUpdateThreshold,
			Contract: oracle,
			Method:   "updateThreshold",
			GasLimit: p.GasLimit,
			Submit: func(ctx context.Context, cc contractCaller.IContractCaller, gasLimit uint64) (*types.Transaction, error) {
				return cc.UpdateThreshold(ctx, oracle, threshold, gasLimit)
			},
		}},
		CompletionMessage: MessageUpdateThreshold,
	}, nil
}
