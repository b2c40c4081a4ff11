package config

import (
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"k8s.io/apimachinery/pkg/util/validation/field"
)

// Environment variable names shared by cmd/ and hack/ programs
const (
	EnvRPCURL            = "SWAN_RPC_URL"
	EnvChainID           = "SWAN_CHAIN_ID"
	EnvPrivateKey        = "SWAN_PRIVATE_KEY"
	EnvLegacyPrivateKey  = "privateKey"
	EnvKeyringItem       = "SWAN_KEYRING_ITEM"
	EnvWeb3SignerURL     = "SWAN_WEB3SIGNER_URL"
	EnvSignerAddress     = "SWAN_SIGNER_ADDRESS"
	EnvKMSKeyID          = "SWAN_KMS_KEY_ID"
	EnvKMSRegion         = "SWAN_KMS_REGION"
	EnvJournalType       = "SWAN_JOURNAL_TYPE"
	EnvJournalPath       = "SWAN_JOURNAL_PATH"
	EnvJournalRedisAddr  = "SWAN_JOURNAL_REDIS_ADDRESS"
	EnvConfirmTimeout    = "SWAN_CONFIRM_TIMEOUT"
	EnvConfirmations     = "SWAN_CONFIRMATIONS"
	EnvVerbose           = "SWAN_VERBOSE"
	DefaultEnvFile       = ".env"
	DefaultKeyringName   = "swan-tx-runner"
	DefaultJournalPath   = "./data/journal"
	DefaultConfirmations = 1
)

type ChainId uint

const (
	ChainId_EthereumMainnet ChainId = 1
	ChainId_EthereumSepolia ChainId = 11155111
	ChainId_PolygonMainnet  ChainId = 137
	ChainId_PolygonMumbai   ChainId = 80001
	ChainId_PolygonAmoy     ChainId = 80002
	ChainId_Anvil           ChainId = 31337
	ChainId_Simulated       ChainId = 1337
)

type ChainName string

const (
	ChainName_EthereumMainnet ChainName = "mainnet"
	ChainName_EthereumSepolia ChainName = "sepolia"
	ChainName_PolygonMainnet  ChainName = "polygon"
	ChainName_PolygonMumbai   ChainName = "mumbai"
	ChainName_PolygonAmoy     ChainName = "amoy"
	ChainName_Anvil           ChainName = "devnet"
	ChainName_Simulated       ChainName = "simulated"
)

var ChainIdToName = map[ChainId]ChainName{
	ChainId_EthereumMainnet: ChainName_EthereumMainnet,
	ChainId_EthereumSepolia: ChainName_EthereumSepolia,
	ChainId_PolygonMainnet:  ChainName_PolygonMainnet,
	ChainId_PolygonMumbai:   ChainName_PolygonMumbai,
	ChainId_PolygonAmoy:     ChainName_PolygonAmoy,
	ChainId_Anvil:           ChainName_Anvil,
	ChainId_Simulated:       ChainName_Simulated,
}

func IsEthereum(chainId ChainId) bool {
	return chainId == ChainId_EthereumMainnet || chainId == ChainId_EthereumSepolia
}

func IsPolygon(chainId ChainId) bool {
	return chainId == ChainId_PolygonMainnet || chainId == ChainId_PolygonMumbai || chainId == ChainId_PolygonAmoy
}

// FeeParams controls how EIP-1559 fees are derived for a chain.
type FeeParams struct {
	// FallbackGasTipCap is used when the node does not support eth_maxPriorityFeePerGas
	FallbackGasTipCap *big.Int
	// BaseFeeMultiplier is applied to the latest base fee to absorb spikes
	BaseFeeMultiplier int64
}

// GetFeeParamsForChain returns the fee parameters for a chain
func GetFeeParamsForChain(chainId ChainId) *FeeParams {
	switch {
	case IsEthereum(chainId):
		return &FeeParams{FallbackGasTipCap: big.NewInt(1_500_000_000), BaseFeeMultiplier: 3}
	case IsPolygon(chainId):
		// polygon validators reject tips below 30 gwei
		return &FeeParams{FallbackGasTipCap: big.NewInt(30_000_000_000), BaseFeeMultiplier: 2}
	default:
		return &FeeParams{FallbackGasTipCap: big.NewInt(1_000_000), BaseFeeMultiplier: 2}
	}
}

// GetDefaultConfirmTimeoutForChain returns how long to wait for a receipt
// before giving up on a submitted transaction.
func GetDefaultConfirmTimeoutForChain(chainId ChainId) time.Duration {
	switch chainId {
	case ChainId_EthereumMainnet, ChainId_EthereumSepolia:
		return 5 * time.Minute
	case ChainId_Anvil, ChainId_Simulated:
		return 30 * time.Second
	default:
		return 2 * time.Minute
	}
}

// ContractAddresses are the deployed contracts the runner talks to on a chain
type ContractAddresses struct {
	PaymentGateway string
	USDC           string
	OracleDAO      string
	OracleDAOProxy string
}

var (
	polygonMumbaiContracts = &ContractAddresses{
		PaymentGateway: "0x12EDC75CE16d778Dc450960d5f1a744477ee49a0",
		USDC:           "0xe11A86849d99F524cAC3E7A0Ec1241828e332C62",
		OracleDAO:      "0xe3262c0848b0cc5cd43df7139103f1fbf26558cc",
		OracleDAOProxy: "0x00233B4d7A9d84b9c6440015A287DE2c5436F5D3",
	}

	Contracts = map[ChainId]*ContractAddresses{
		ChainId_PolygonMumbai: polygonMumbaiContracts,
		ChainId_Anvil:         polygonMumbaiContracts, // fork of mumbai
	}
)

func GetContractsForChainId(chainId ChainId) (*ContractAddresses, error) {
	contracts, ok := Contracts[chainId]
	if !ok {
		return nil, fmt.Errorf("no known contracts for chain ID: %d", chainId)
	}
	return contracts, nil
}

type SignerType string

const (
	SignerType_PrivateKey SignerType = "privateKey"
	SignerType_Keyring    SignerType = "keyring"
	SignerType_Web3Signer SignerType = "web3signer"
	SignerType_AWSKMS     SignerType = "awsKms"
)

type RemoteSignerConfig struct {
	Url         string `json:"url" yaml:"url" toml:"url"`
	CACert      string `json:"caCert" yaml:"caCert" toml:"ca_cert"`
	Cert        string `json:"cert" yaml:"cert" toml:"cert"`
	Key         string `json:"key" yaml:"key" toml:"key"`
	FromAddress string `json:"fromAddress" yaml:"fromAddress" toml:"from_address"`
	PublicKey   string `json:"publicKey" yaml:"publicKey" toml:"public_key"`
}

func (rsc *RemoteSignerConfig) Validate() error {
	var allErrors field.ErrorList
	if rsc.Url == "" {
		allErrors = append(allErrors, field.Required(field.NewPath("url"), "url is required"))
	}
	// an empty fromAddress selects the first account the signer holds
	if rsc.FromAddress != "" && !common.IsHexAddress(rsc.FromAddress) {
		allErrors = append(allErrors, field.Invalid(field.NewPath("fromAddress"), rsc.FromAddress, "not a hex address"))
	}
	if len(allErrors) > 0 {
		return allErrors.ToAggregate()
	}
	return nil
}

type KMSSignerConfig struct {
	KeyId  string `json:"keyId" toml:"key_id"`
	Region string `json:"region" toml:"region"`
}

// SignerConfig selects and configures exactly one signer backend
type SignerConfig struct {
	Type        SignerType          `json:"type" toml:"type"`
	PrivateKey  string              `json:"-" toml:"-"`
	KeyringItem string              `json:"keyringItem" toml:"keyring_item"`
	Remote      *RemoteSignerConfig `json:"remote,omitempty" toml:"remote"`
	KMS         *KMSSignerConfig    `json:"kms,omitempty" toml:"kms"`
}

// IsConfigured reports whether enough is set to attempt building a signer.
func (sc *SignerConfig) IsConfigured() bool {
	if sc == nil {
		return false
	}
	switch sc.Type {
	case SignerType_PrivateKey:
		return sc.PrivateKey != ""
	case SignerType_Keyring:
		return sc.KeyringItem != ""
	case SignerType_Web3Signer:
		return sc.Remote != nil && sc.Remote.Url != ""
	case SignerType_AWSKMS:
		return sc.KMS != nil && sc.KMS.KeyId != ""
	default:
		return false
	}
}

func (sc *SignerConfig) validate(path *field.Path) field.ErrorList {
	var allErrors field.ErrorList
	switch sc.Type {
	case SignerType_PrivateKey:
		key := strings.TrimPrefix(sc.PrivateKey, "0x")
		if key != "" && len(key) != 64 {
			allErrors = append(allErrors, field.Invalid(path.Child("privateKey"), "<redacted>",
				fmt.Sprintf("private key must be 32 bytes (64 hex chars), got %d chars", len(key))))
		}
	case SignerType_Keyring:
	case SignerType_Web3Signer:
		if sc.Remote == nil {
			allErrors = append(allErrors, field.Required(path.Child("remote"), "remote signer config is required"))
		} else if err := sc.Remote.Validate(); err != nil {
			allErrors = append(allErrors, field.Invalid(path.Child("remote"), sc.Remote.Url, err.Error()))
		}
	case SignerType_AWSKMS:
		if sc.KMS == nil || sc.KMS.KeyId == "" {
			allErrors = append(allErrors, field.Required(path.Child("kms", "keyId"), "KMS key id is required"))
		}
	case "":
	default:
		allErrors = append(allErrors, field.NotSupported(path.Child("type"), sc.Type,
			[]string{string(SignerType_PrivateKey), string(SignerType_Keyring), string(SignerType_Web3Signer), string(SignerType_AWSKMS)}))
	}
	return allErrors
}

type JournalType string

const (
	JournalType_Memory JournalType = "memory"
	JournalType_Badger JournalType = "badger"
	JournalType_Redis  JournalType = "redis"
)

type JournalConfig struct {
	Type         JournalType `json:"type" toml:"type"`
	Path         string      `json:"path" toml:"path"`
	RedisAddress string      `json:"redisAddress" toml:"redis_address"`
	RedisDB      int         `json:"redisDb" toml:"redis_db"`
}

type ConfirmationConfig struct {
	Timeout       time.Duration `json:"timeout" toml:"timeout"`
	PollInterval  time.Duration `json:"pollInterval" toml:"poll_interval"`
	Confirmations uint64        `json:"confirmations" toml:"confirmations"`
}

// RunnerConfig is everything a transaction runner needs besides the call itself
type RunnerConfig struct {
	RpcUrl       string              `json:"rpcUrl"`
	ChainID      ChainId             `json:"chainId"`
	ChainName    ChainName           `json:"chainName"`
	Signer       *SignerConfig       `json:"signer"`
	Confirmation *ConfirmationConfig `json:"confirmation"`
	Journal      *JournalConfig      `json:"journal"`
	Debug        bool                `json:"debug"`
}

// Validate checks the runner configuration and fills in chain derived defaults.
// A missing signer is not a validation error; it surfaces as SignerUnavailable
// when the runner tries to acquire one.
func (c *RunnerConfig) Validate() error {
	var allErrors field.ErrorList

	if c.RpcUrl == "" {
		allErrors = append(allErrors, field.Required(field.NewPath("rpcUrl"), "rpc url is required"))
	}

	if c.ChainID != 0 {
		chainName, exists := ChainIdToName[c.ChainID]
		if !exists {
			allErrors = append(allErrors, field.Invalid(field.NewPath("chainId"), c.ChainID,
				fmt.Sprintf("unsupported chain ID. Supported: %s", GetSupportedChainIDsString())))
		} else {
			c.ChainName = chainName
		}
	}

	if c.Signer != nil {
		allErrors = append(allErrors, c.Signer.validate(field.NewPath("signer"))...)
	}

	if c.Confirmation == nil {
		c.Confirmation = &ConfirmationConfig{}
	}
	if c.Confirmation.Timeout < 0 {
		allErrors = append(allErrors, field.Invalid(field.NewPath("confirmation", "timeout"), c.Confirmation.Timeout, "must not be negative"))
	}
	if c.Confirmation.Timeout == 0 {
		c.Confirmation.Timeout = GetDefaultConfirmTimeoutForChain(c.ChainID)
	}
	if c.Confirmation.Confirmations == 0 {
		c.Confirmation.Confirmations = DefaultConfirmations
	}

	if c.Journal == nil {
		c.Journal = &JournalConfig{Type: JournalType_Memory}
	}
	switch c.Journal.Type {
	case "", JournalType_Memory:
		c.Journal.Type = JournalType_Memory
	case JournalType_Badger:
		if c.Journal.Path == "" {
			c.Journal.Path = DefaultJournalPath
		}
	case JournalType_Redis:
		if c.Journal.RedisAddress == "" {
			allErrors = append(allErrors, field.Required(field.NewPath("journal", "redisAddress"), "redis address is required for the redis journal"))
		}
	default:
		allErrors = append(allErrors, field.NotSupported(field.NewPath("journal", "type"), c.Journal.Type,
			[]string{string(JournalType_Memory), string(JournalType_Badger), string(JournalType_Redis)}))
	}

	if len(allErrors) > 0 {
		return allErrors.ToAggregate()
	}
	return nil
}

// GetSupportedChainIDs returns all supported chain IDs
func GetSupportedChainIDs() []ChainId {
	return []ChainId{
		ChainId_EthereumMainnet,
		ChainId_EthereumSepolia,
		ChainId_PolygonMainnet,
		ChainId_PolygonMumbai,
		ChainId_PolygonAmoy,
		ChainId_Anvil,
	}
}

// GetSupportedChainIDsString returns supported chain IDs as strings for CLI help
func GetSupportedChainIDsString() string {
	parts := make([]string, 0, len(GetSupportedChainIDs()))
	for _, id := range GetSupportedChainIDs() {
		parts = append(parts, fmt.Sprintf("%d (%s)", id, ChainIdToName[id]))
	}
	return strings.Join(parts, ", ")
}
