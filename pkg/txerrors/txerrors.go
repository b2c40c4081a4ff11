package txerrors

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/ethereum/go-ethereum/rpc"
)

// Kind is the closed set of failure categories a run can end with
type Kind string

const (
	KindSignerUnavailable Kind = "SignerUnavailable"
	KindConfiguration     Kind = "Configuration"
	KindTransport         Kind = "Transport"
	KindExecutionReverted Kind = "ExecutionReverted"
	KindTimeout           Kind = "Timeout"
)

var ErrNoSigner = errors.New("no signer configured")

// Error tags an underlying error with its kind and the step that produced it
type Error struct {
	Kind Kind
	Step string
	Err  error
}

func (e *Error) Error() string {
	if e.Step == "" {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: step %q: %v", e.Kind, e.Step, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(kind Kind, step string, err error) *Error {
	return &Error{Kind: kind, Step: step, Err: err}
}

func SignerUnavailable(err error) *Error {
	if err == nil {
		err = ErrNoSigner
	}
	return New(KindSignerUnavailable, "", err)
}

func Configuration(step string, err error) *Error {
	return New(KindConfiguration, step, err)
}

func Timeout(step string, err error) *Error {
	return New(KindTimeout, step, err)
}

// ExecutionReverted reports a transaction that was mined with a failed status
func ExecutionReverted(step string, txHash string) *Error {
	return New(KindExecutionReverted, step, fmt.Errorf("transaction %s reverted", txHash))
}

// KindOf returns the kind of the first tagged error in err's chain
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}

func Is(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}

// IsRetryable reports whether a fresh run could reasonably succeed. The runner
// itself never retries.
func IsRetryable(err error) bool {
	k, ok := KindOf(err)
	if !ok {
		return false
	}
	return k == KindTransport || k == KindTimeout
}

// Classify tags a raw error with a kind. Already tagged errors keep their
// kind; one without a step is returned as a copy with step filled in.
func Classify(step string, err error) error {
	if err == nil {
		return nil
	}
	var tagged *Error
	if errors.As(err, &tagged) {
		if tagged.Step != "" || step == "" {
			return err
		}
		if err == error(tagged) {
			return New(tagged.Kind, step, tagged.Err)
		}
		return New(tagged.Kind, step, err)
	}
	return New(classifyKind(err), step, err)
}

func classifyKind(err error) Kind {
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	if errors.Is(err, ErrNoSigner) {
		return KindSignerUnavailable
	}

	var dataErr rpc.DataError
	if errors.As(err, &dataErr) && dataErr.ErrorData() != nil {
		return KindExecutionReverted
	}
	if isRevertMessage(err.Error()) {
		return KindExecutionReverted
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return KindTimeout
		}
		return KindTransport
	}
	// anything else came back from the node or the dialer
	return KindTransport
}

func isRevertMessage(msg string) bool {
	return strings.Contains(strings.ToLower(msg), "execution reverted")
}
