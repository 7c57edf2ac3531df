package plan

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// SequenceViolationError reports a reference to a spec that is not deployed
// before the referencing step runs.
type SequenceViolationError struct {
	Step      int
	Reference int
	Reason    string
}

func (e *SequenceViolationError) Error() string {
	return fmt.Sprintf("sequence violation at step %d: reference to #%d %s", e.Step, e.Reference, e.Reason)
}

// ErrUnknownAccount is returned when an argument names a signer that does not exist.
var ErrUnknownAccount = errors.New("unknown account")

// Resolve substitutes placeholders in args. deployed is the append-only arena
// of confirmed deployments; step is the index of the step being resolved and
// is only used for error reporting.
func Resolve(step int, args []Arg, deployed []Deployed, accounts []common.Address) ([]any, error) {
	resolved := make([]any, 0, len(args))

	for _, arg := range args {
		switch arg.kind {
		case argLiteral:
			resolved = append(resolved, arg.value)

		case argAddressOf:
			if arg.index < 0 || arg.index >= len(deployed) {
				return nil, &SequenceViolationError{Step: step, Reference: arg.index, Reason: "is not deployed yet"}
			}
			d := deployed[arg.index]
			if d.Index != arg.index {
				return nil, fmt.Errorf("deployment arena is out of order: slot %d holds step %d", arg.index, d.Index)
			}
			resolved = append(resolved, d.Address)

		case argAccount:
			if arg.index < 0 || arg.index >= len(accounts) {
				return nil, fmt.Errorf("%w: %d", ErrUnknownAccount, arg.index)
			}
			resolved = append(resolved, accounts[arg.index])
		}
	}

	return resolved, nil
}
