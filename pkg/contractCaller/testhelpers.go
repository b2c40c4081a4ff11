package contractCaller

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	ethTypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/filswan/swan-tx-runner/pkg/bindings/SwanPayment"
)

// RecordedCall is one write made through a FakeContractCaller
type RecordedCall struct {
	Method   string
	Contract common.Address
	Args     []interface{}
	GasLimit uint64
	Tx       *ethTypes.Transaction
}

// FakeContractCaller implements IContractCaller without a chain. Each write
// returns an unsigned transaction with an increasing nonce and is recorded.
// Errors keyed by method name are returned instead.
type FakeContractCaller struct {
	From   common.Address
	Errors map[string]error

	Allowances      map[common.Address]*big.Int
	ProxyAdmins     map[common.Address]common.Address
	Implementations map[common.Address]common.Address

	mu    sync.Mutex
	nonce uint64
	calls []RecordedCall
}

func NewFakeContractCaller(from common.Address) *FakeContractCaller {
	return &FakeContractCaller{
		From:            from,
		Errors:          make(map[string]error),
		Allowances:      make(map[common.Address]*big.Int),
		ProxyAdmins:     make(map[common.Address]common.Address),
		Implementations: make(map[common.Address]common.Address),
	}
}

func (f *FakeContractCaller) Calls() []RecordedCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]RecordedCall{}, f.calls...)
}

func (f *FakeContractCaller) record(method string, contract common.Address, gasLimit uint64, args ...interface{}) (*ethTypes.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.Errors[method]; err != nil {
		return nil, err
	}
	tx := ethTypes.NewTx(&ethTypes.DynamicFeeTx{
		ChainID: big.NewInt(1337),
		Nonce:   f.nonce,
		Gas:     gasLimit,
		To:      &contract,
		Data:    []byte(fmt.Sprintf("%s%v", method, args)),
	})
	f.nonce++
	f.calls = append(f.calls, RecordedCall{Method: method, Contract: contract, Args: args, GasLimit: gasLimit, Tx: tx})
	return tx, nil
}

func (f *FakeContractCaller) GetFromAddress() common.Address {
	return f.From
}

func (f *FakeContractCaller) ApproveToken(ctx context.Context, token common.Address, spender common.Address, amount *big.Int, gasLimit uint64) (*ethTypes.Transaction, error) {
	return f.record("approve", token, gasLimit, spender, amount)
}

func (f *FakeContractCaller) Allowance(ctx context.Context, token common.Address, owner common.Address, spender common.Address) (*big.Int, error) {
	if a, ok := f.Allowances[token]; ok {
		return a, nil
	}
	return big.NewInt(0), nil
}

func (f *FakeContractCaller) BalanceOf(ctx context.Context, token common.Address, account common.Address) (*big.Int, error) {
	return big.NewInt(0), nil
}

func (f *FakeContractCaller) LockTokenPayment(ctx context.Context, gateway common.Address, param SwanPayment.IPaymentMinimalLockPaymentParam, gasLimit uint64) (*ethTypes.Transaction, error) {
	return f.record("lockTokenPayment", gateway, gasLimit, param)
}

func (f *FakeContractCaller) SignTransaction(ctx context.Context, oracle common.Address, cid string, orderId string, recipient common.Address, gasLimit uint64) (*ethTypes.Transaction, error) {
	return f.record("signTransaction", oracle, gasLimit, cid, orderId, recipient)
}

func (f *FakeContractCaller) SetFilinkOracle(ctx context.Context, oracle common.Address, filinkOracle common.Address, gasLimit uint64) (*ethTypes.Transaction, error) {
	return f.record("setFilinkOracle", oracle, gasLimit, filinkOracle)
}

func (f *FakeContractCaller) UpdateThreshold(ctx context.Context, oracle common.Address, threshold uint8, gasLimit uint64) (*ethTypes.Transaction, error) {
	return f.record("updateThreshold", oracle, gasLimit, threshold)
}

func (f *FakeContractCaller) UpgradeProxy(ctx context.Context, proxyAdmin common.Address, proxy common.Address, implementation common.Address, gasLimit uint64) (*ethTypes.Transaction, error) {
	return f.record("upgrade", proxyAdmin, gasLimit, proxy, implementation)
}

func (f *FakeContractCaller) GetProxyImplementation(ctx context.Context, proxy common.Address) (common.Address, error) {
	if a, ok := f.Implementations[proxy]; ok {
		return a, nil
	}
	return common.Address{}, fmt.Errorf("%s is not an EIP-1967 proxy", proxy.Hex())
}

func (f *FakeContractCaller) GetProxyAdmin(ctx context.Context, proxy common.Address) (common.Address, error) {
	if err := f.Errors["getProxyAdmin"]; err != nil {
		return common.Address{}, err
	}
	if a, ok := f.ProxyAdmins[proxy]; ok {
		return a, nil
	}
	return common.Address{}, fmt.Errorf("%s is not an EIP-1967 proxy", proxy.Hex())
}

var _ IContractCaller = (*FakeContractCaller)(nil)
