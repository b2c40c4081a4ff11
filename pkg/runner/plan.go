package runner

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/filswan/swan-tx-runner/pkg/contractCaller"
)

// SubmitFunc performs a step's single contract call through cc and returns
// the broadcast transaction
type SubmitFunc func(ctx context.Context, cc contractCaller.IContractCaller, gasLimit uint64) (*types.Transaction, error)

type Step struct {
	// Name identifies the step in logs, errors and the journal
	Name     string
	Contract common.Address
	Method   string
	// GasLimit pins the gas limit, 0 estimates it
	GasLimit uint64

	// Prerequisite marks a step whose on-chain effect a later step relies on,
	// such as a token approval ahead of a transferFrom. It is fully confirmed
	// before the next step is submitted.
	Prerequisite bool

	Submit SubmitFunc
}

// Plan is an ordered list of steps run with one signer
type Plan struct {
	Name  string
	Steps []*Step

	// CompletionMessage is logged once every step is confirmed
	CompletionMessage string
}

func (p *Plan) Validate() error {
	if p == nil {
		return fmt.Errorf("plan is nil")
	}
	if len(p.Steps) == 0 {
		return fmt.Errorf("plan %q has no steps", p.Name)
	}
	seen := make(map[string]struct{}, len(p.Steps))
	for i, s := range p.Steps {
		if s == nil {
			return fmt.Errorf("plan %q: step %d is nil", p.Name, i)
		}
		if s.Name == "" {
			return fmt.Errorf("plan %q: step %d has no name", p.Name, i)
		}
		if _, ok := seen[s.Name]; ok {
			return fmt.Errorf("plan %q: duplicate step name %q", p.Name, s.Name)
		}
		seen[s.Name] = struct{}{}
		if s.Submit == nil {
			return fmt.Errorf("plan %q: step %q has nothing to submit", p.Name, s.Name)
		}
	}
	return nil
}
