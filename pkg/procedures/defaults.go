package procedures

import (
	"github.com/filswan/swan-tx-runner/pkg/config"
)

// Values used by the historical one-shot scripts against Polygon Mumbai
const (
	DefaultPaymentId       = "abcd2bzacedh6keeksywaoa3wjryqzihqixyfekqgfljfosrcoyaja"
	DefaultApproveAmount   = "1000000000000000000000"
	DefaultMinPayment      = "10000000000000"
	DefaultLockAmount      = "10000000000000000000"
	DefaultLockTime        = "60"
	DefaultLockRecipient   = "0xE53AEd6DEA9e44116D4551a93eEeE28bC8684916"
	DefaultLockGasLimit    = 9999999
	DefaultDealId          = "'4109'"
	DefaultSignRecipient   = "0xc4fcaAdCb0b00a9501e56215c37B10fAF9e79c0a"
	DefaultFilinkOracle    = "0xcE9A9e594db39dCD449E392d68F60959533c0D75"
	DefaultOracleThreshold = 2
)

func DefaultLockPaymentParams(contracts *config.ContractAddresses) *LockPaymentParams {
	return &LockPaymentParams{
		Token:         contracts.USDC,
		Gateway:       contracts.PaymentGateway,
		ApproveAmount: DefaultApproveAmount,
		Id:            DefaultPaymentId,
		MinPayment:    DefaultMinPayment,
		Amount:        DefaultLockAmount,
		LockTime:      DefaultLockTime,
		Recipient:     DefaultLockRecipient,
		Size:          "0",
		GasLimit:      DefaultLockGasLimit,
	}
}

func DefaultSignTransactionParams(contracts *config.ContractAddresses) *SignTransactionParams {
	return &SignTransactionParams{
		Oracle:    contracts.OracleDAO,
		Cid:       DefaultPaymentId,
		DealId:    DefaultDealId,
		Recipient: DefaultSignRecipient,
	}
}
