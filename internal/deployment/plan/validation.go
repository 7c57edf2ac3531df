package plan

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks that the plan can run against accounts signers: every
// address reference points at an earlier spec, every call targets a spec of
// the plan and every account index exists. All problems are reported at once.
func (p Plan) Validate(accounts int) error {
	var errs []error

	if len(p.Specs) == 0 {
		errs = append(errs, errors.New("plan must have at least one deployment"))
	}

	for i, spec := range p.Specs {
		if strings.TrimSpace(string(spec.Name)) == "" {
			errs = append(errs, fmt.Errorf("deployment %d has an empty contract name", i))
		}
		if spec.Account < 0 || spec.Account >= accounts {
			errs = append(errs, fmt.Errorf("deployment %d (%s) uses unknown account %d", i, spec.Name, spec.Account))
		}

		// A deployment may only consume addresses produced strictly before it.
		errs = append(errs, validateArgs(i, spec.Args, i, accounts)...)
	}

	for i, call := range p.Calls {
		step := len(p.Specs) + i
		if call.Target < 0 || call.Target >= len(p.Specs) {
			errs = append(errs, &SequenceViolationError{Step: step, Reference: call.Target, Reason: "is not a deployment of this plan"})
		}
		if strings.TrimSpace(call.Method) == "" {
			errs = append(errs, fmt.Errorf("call %d has an empty method name", i))
		}
		if call.Account < 0 || call.Account >= accounts {
			errs = append(errs, fmt.Errorf("call %d (%s) uses unknown account %d", i, call.Method, call.Account))
		}

		errs = append(errs, validateArgs(step, call.Args, len(p.Specs), accounts)...)
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid deployment plan: %w", errors.Join(errs...))
	}

	return nil
}

// validateArgs checks args of the step against the number of specs that are
// deployed by the time the step runs.
func validateArgs(step int, args []Arg, available, accounts int) []error {
	var errs []error

	for _, arg := range args {
		if ref, ok := arg.Reference(); ok && (ref < 0 || ref >= available) {
			errs = append(errs, &SequenceViolationError{Step: step, Reference: ref, Reason: "is not deployed before this step"})
		}
		if acc, ok := arg.Account(); ok && (acc < 0 || acc >= accounts) {
			errs = append(errs, fmt.Errorf("step %d: %w: %d", step, ErrUnknownAccount, acc))
		}
	}

	return errs
}
