package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

type ProcedureType string

const (
	ProcedureType_LockPayment     ProcedureType = "lock-payment"
	ProcedureType_SignTransaction ProcedureType = "sign-transaction"
	ProcedureType_UpgradeProxy    ProcedureType = "upgrade-proxy"
	ProcedureType_SetFilinkOracle ProcedureType = "set-filink-oracle"
	ProcedureType_UpdateThreshold ProcedureType = "update-threshold"
)

// ProcedurePlan is one [[procedure]] table of a plan file. Only the fields
// relevant to Type are read.
type ProcedurePlan struct {
	Type     ProcedureType `toml:"type"`
	GasLimit uint64        `toml:"gas_limit"`

	// lock-payment
	Token         string `toml:"token"`
	Gateway       string `toml:"gateway"`
	ApproveAmount string `toml:"approve_amount"`
	Id            string `toml:"id"`
	MinPayment    string `toml:"min_payment"`
	Amount        string `toml:"amount"`
	LockTime      string `toml:"lock_time"`
	Recipient     string `toml:"recipient"`
	Size          string `toml:"size"`

	// sign-transaction, set-filink-oracle, update-threshold
	Oracle       string `toml:"oracle"`
	Cid          string `toml:"cid"`
	DealId       string `toml:"deal_id"`
	FilinkOracle string `toml:"filink_oracle"`
	Threshold    uint8  `toml:"threshold"`

	// upgrade-proxy
	Proxy          string `toml:"proxy"`
	ProxyAdmin     string `toml:"proxy_admin"`
	Implementation string `toml:"implementation"`
}

type PlanFile struct {
	Name       string           `toml:"name"`
	RpcUrl     string           `toml:"rpc_url"`
	ChainID    ChainId          `toml:"chain_id"`
	Signer     *SignerConfig    `toml:"signer"`
	Journal    *JournalConfig   `toml:"journal"`
	Procedures []*ProcedurePlan `toml:"procedure"`
}

var requiredPlanKeys = [][]string{
	{"name"},
	{"procedure"},
}

// LoadPlanFile decodes a TOML plan and checks that the required keys are present.
func LoadPlanFile(path string) (*PlanFile, error) {
	plan := &PlanFile{}
	md, err := toml.DecodeFile(path, plan)
	if err != nil {
		return nil, fmt.Errorf("failed to decode plan file %s: %w", path, err)
	}
	if err := requiredFieldsAreGiven(md); err != nil {
		return nil, fmt.Errorf("invalid plan file %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return nil, fmt.Errorf("invalid plan file %s: unknown keys %s", path, strings.Join(keys, ", "))
	}
	for i, p := range plan.Procedures {
		if p.Type == "" {
			return nil, fmt.Errorf("invalid plan file %s: procedure %d has no type", path, i)
		}
	}
	return plan, nil
}

func requiredFieldsAreGiven(md toml.MetaData) error {
	var missing []string
	for _, key := range requiredPlanKeys {
		if !md.IsDefined(key...) {
			missing = append(missing, strings.Join(key, "."))
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("required fields not given: %s", strings.Join(missing, ", "))
	}
	return nil
}

// LoadDotEnv loads KEY=value pairs from path into the process environment.
// Variables already set in the environment win. A missing file is not an error.
func LoadDotEnv(path string) error {
	if path == "" {
		path = DefaultEnvFile
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

// PrivateKeyFromEnv returns the configured hex private key, accepting the
// legacy lowercase variable used by older .env files.
func PrivateKeyFromEnv() string {
	if v := os.Getenv(EnvPrivateKey); v != "" {
		return v
	}
	return os.Getenv(EnvLegacyPrivateKey)
}
