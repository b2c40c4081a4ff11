package procedures

import (
	"fmt"

	"github.com/filswan/swan-tx-runner/pkg/config"
	"github.com/filswan/swan-tx-runner/pkg/runner"
	"github.com/filswan/swan-tx-runner/pkg/txerrors"
)

// FromProcedurePlan builds the plan described by one [[procedure]] table.
// Contract addresses left empty are taken from contracts when it is non-nil.
func FromProcedurePlan(pp *config.ProcedurePlan, contracts *config.ContractAddresses) (*runner.Plan, error) {
	if pp == nil {
		return nil, txerrors.Configuration("", fmt.Errorf("procedure is nil"))
	}
	if contracts == nil {
		contracts = &config.ContractAddresses{}
	}

	switch pp.Type {
	case config.ProcedureType_LockPayment:
		return NewLockPaymentPlan(&LockPaymentParams{
			Token:         orDefault(pp.Token, contracts.USDC),
			Gateway:       orDefault(pp.Gateway, contracts.PaymentGateway),
			ApproveAmount: pp.ApproveAmount,
			Id:            pp.Id,
			MinPayment:    pp.MinPayment,
			Amount:        pp.Amount,
			LockTime:      pp.LockTime,
			Recipient:     pp.Recipient,
			Size:          pp.Size,
			GasLimit:      pp.GasLimit,
		})
	case config.ProcedureType_SignTransaction:
		return NewSignTransactionPlan(&SignTransactionParams{
			Oracle:    orDefault(pp.Oracle, contracts.OracleDAO),
			Cid:       pp.Cid,
			DealId:    pp.DealId,
			Recipient: pp.Recipient,
			GasLimit:  pp.GasLimit,
		})
	case config.ProcedureType_UpgradeProxy:
		return NewUpgradeProxyPlan(&UpgradeProxyParams{
			Proxy:          orDefault(pp.Proxy, contracts.OracleDAOProxy),
			ProxyAdmin:     pp.ProxyAdmin,
			Implementation: pp.Implementation,
			GasLimit:       pp.GasLimit,
		})
	case config.ProcedureType_SetFilinkOracle:
		return NewSetFilinkOraclePlan(&SetFilinkOracleParams{
			Oracle:       orDefault(pp.Oracle, contracts.OracleDAO),
			FilinkOracle: pp.FilinkOracle,
			GasLimit:     pp.GasLimit,
		})
	case config.ProcedureType_UpdateThreshold:
		return NewUpdateThresholdPlan(&UpdateThresholdParams{
			Oracle:    orDefault(pp.Oracle, contracts.OracleDAO),
			Threshold: pp.Threshold,
			GasLimit:  pp.GasLimit,
		})
	default:
		return nil, txerrors.Configuration("", fmt.Errorf("unsupported procedure type %q", pp.Type))
	}
}

// FromPlanFile builds every procedure of a plan file in order
func FromPlanFile(pf *config.PlanFile, contracts *config.ContractAddresses) ([]*runner.Plan, error) {
	if pf == nil {
		return nil, txerrors.Configuration("", fmt.Errorf("plan file is nil"))
	}
	plans := make([]*runner.Plan, 0, len(pf.Procedures))
	for i, pp := range pf.Procedures {
		plan, err := FromProcedurePlan(pp, contracts)
		if err != nil {
			return nil, fmt.Errorf("procedure %d: %w", i, err)
		}
		plans = append(plans, plan)
	}
	return plans, nil
}

func orDefault(v, def string) string {
	if v != "" {
		return v
	}
	return def
}
