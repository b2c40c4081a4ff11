package procedures

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/filswan/swan-tx-runner/pkg/util"
	"k8s.io/apimachinery/pkg/util/validation/field"
)

// MaxGasLimit bounds gas overrides to a typical block gas limit
const MaxGasLimit = 30_000_000

// LockPaymentParams are the inputs of an approve + lockTokenPayment run.
// Amounts are base-10 integers in the token's smallest unit.
type LockPaymentParams struct {
	Token   string
	Gateway string

	// ApproveAmount defaults to Amount
	ApproveAmount string

	Id         string
	MinPayment string
	Amount     string
	LockTime   string // seconds
	Recipient  string
	Size       string

	GasLimit uint64
}

type lockPayment struct {
	token         common.Address
	gateway       common.Address
	approveAmount *big.Int
	id            string
	minPayment    *big.Int
	amount        *big.Int
	lockTime      *big.Int
	recipient     common.Address
	size          *big.Int
	gasLimit      uint64
}

func (p *LockPaymentParams) Validate() error {
	_, errs := p.parse()
	return errs.ToAggregate()
}

func (p *LockPaymentParams) parse() (*lockPayment, field.ErrorList) {
	var allErrors field.ErrorList
	out := &lockPayment{id: p.Id, gasLimit: p.GasLimit}

	out.token = parseAddress(field.NewPath("token"), p.Token, &allErrors)
	out.gateway = parseAddress(field.NewPath("gateway"), p.Gateway, &allErrors)
	out.recipient = parseAddress(field.NewPath("recipient"), p.Recipient, &allErrors)

	if p.Id == "" {
		allErrors = append(allErrors, field.Required(field.NewPath("id"), "payment id is required"))
	}
	out.amount = parseAmount(field.NewPath("amount"), p.Amount, &allErrors)
	out.minPayment = parseAmount(field.NewPath("minPayment"), p.MinPayment, &allErrors)

	approve := p.ApproveAmount
	if approve == "" {
		approve = p.Amount
	}
	out.approveAmount = parseAmount(field.NewPath("approveAmount"), approve, &allErrors)

	out.lockTime = parseAmount(field.NewPath("lockTime"), p.LockTime, &allErrors)
	if out.lockTime != nil && out.lockTime.Sign() == 0 {
		allErrors = append(allErrors, field.Invalid(field.NewPath("lockTime"), p.LockTime, "must be positive"))
	}

	size := p.Size
	if size == "" {
		size = "0"
	}
	out.size = parseAmount(field.NewPath("size"), size, &allErrors)

	if out.amount != nil && out.minPayment != nil && out.minPayment.Cmp(out.amount) > 0 {
		allErrors = append(allErrors, field.Invalid(field.NewPath("minPayment"), p.MinPayment, "must not exceed amount"))
	}
	if out.amount != nil && out.approveAmount != nil && out.approveAmount.Cmp(out.amount) < 0 {
		allErrors = append(allErrors, field.Invalid(field.NewPath("approveAmount"), approve, "must cover amount"))
	}
	validateGasLimit(field.NewPath("gasLimit"), p.GasLimit, &allErrors)

	return out, allErrors
}

type SignTransactionParams struct {
	Oracle    string
	Cid       string
	DealId    string
	Recipient string
	GasLimit  uint64
}

type signTransaction struct {
	oracle    common.Address
	cid       string
	dealId    string
	recipient common.Address
	gasLimit  uint64
}

func (p *SignTransactionParams) Validate() error {
	_, errs := p.parse()
	return errs.ToAggregate()
}

func (p *SignTransactionParams) parse() (*signTransaction, field.ErrorList) {
	var allErrors field.ErrorList
	out := &signTransaction{cid: p.Cid, dealId: p.DealId, gasLimit: p.GasLimit}

	out.oracle = parseAddress(field.NewPath("oracle"), p.Oracle, &allErrors)
	out.recipient = parseAddress(field.NewPath("recipient"), p.Recipient, &allErrors)
	if p.Cid == "" {
		allErrors = append(allErrors, field.Required(field.NewPath("cid"), "cid is required"))
	}
	if p.DealId == "" {
		allErrors = append(allErrors, field.Required(field.NewPath("dealId"), "deal id is required"))
	}
	validateGasLimit(field.NewPath("gasLimit"), p.GasLimit, &allErrors)

	return out, allErrors
}

type UpgradeProxyParams struct {
	Proxy string
	// ProxyAdmin is read from the proxy's EIP-1967 admin slot when empty
	ProxyAdmin     string
	Implementation string
	GasLimit       uint64
}

type upgradeProxy struct {
	proxy          common.Address
	proxyAdmin     *common.Address
	implementation common.Address
	gasLimit       uint64
}

func (p *UpgradeProxyParams) Validate() error {
	_, errs := p.parse()
	return errs.ToAggregate()
}

func (p *UpgradeProxyParams) parse() (*upgradeProxy, field.ErrorList) {
	var allErrors field.ErrorList
	out := &upgradeProxy{gasLimit: p.GasLimit}

	out.proxy = parseAddress(field.NewPath("proxy"), p.Proxy, &allErrors)
	out.implementation = parseAddress(field.NewPath("implementation"), p.Implementation, &allErrors)
	if p.ProxyAdmin != "" {
		admin := parseAddress(field.NewPath("proxyAdmin"), p.ProxyAdmin, &allErrors)
		out.proxyAdmin = &admin
	}
	if out.implementation != (common.Address{}) && out.implementation == out.proxy {
		allErrors = append(allErrors, field.Invalid(field.NewPath("implementation"), p.Implementation, "must differ from the proxy"))
	}
	validateGasLimit(field.NewPath("gasLimit"), p.GasLimit, &allErrors)

	return out, allErrors
}

type SetFilinkOracleParams struct {
	Oracle       string
	FilinkOracle string
	GasLimit     uint64
}

func (p *SetFilinkOracleParams) Validate() error {
	_, _, errs := p.parse()
	return errs.ToAggregate()
}

func (p *SetFilinkOracleParams) parse() (oracle common.Address, filink common.Address, allErrors field.ErrorList) {
	oracle = parseAddress(field.NewPath("oracle"), p.Oracle, &allErrors)
	filink = parseAddress(field.NewPath("filinkOracle"), p.FilinkOracle, &allErrors)
	validateGasLimit(field.NewPath("gasLimit"), p.GasLimit, &allErrors)
	return oracle, filink, allErrors
}

type UpdateThresholdParams struct {
	Oracle    string
	Threshold uint8
	GasLimit  uint64
}

func (p *UpdateThresholdParams) Validate() error {
	_, errs := p.parse()
	return errs.ToAggregate()
}

func (p *UpdateThresholdParams) parse() (common.Address, field.ErrorList) {
	var allErrors field.ErrorList
	oracle := parseAddress(field.NewPath("oracle"), p.Oracle, &allErrors)
	if p.Threshold == 0 {
		allErrors = append(allErrors, field.Invalid(field.NewPath("threshold"), p.Threshold, "must be at least 1"))
	}
	validateGasLimit(field.NewPath("gasLimit"), p.GasLimit, &allErrors)
	return oracle, allErrors
}

func parseAddress(path *field.Path, value string, allErrors *field.ErrorList) common.Address {
	if value == "" {
		*allErrors = append(*allErrors, field.Required(path, "address is required"))
		return common.Address{}
	}
	addr, err := util.ParseAddress(value)
	if err != nil {
		*allErrors = append(*allErrors, field.Invalid(path, value, err.Error()))
		return common.Address{}
	}
	return addr
}

func parseAmount(path *field.Path, value string, allErrors *field.ErrorList) *big.Int {
	v, err := util.ParseAmount(value)
	if err != nil {
		*allErrors = append(*allErrors, field.Invalid(path, value, err.Error()))
		return nil
	}
	return v
}

func validateGasLimit(path *field.Path, gasLimit uint64, allErrors *field.ErrorList) {
	if gasLimit > MaxGasLimit {
		*allErrors = append(*allErrors, field.Invalid(path, gasLimit, fmt.Sprintf("must not exceed %d", MaxGasLimit)))
	}
}
