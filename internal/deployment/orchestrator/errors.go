package orchestrator

import (
	"errors"
	"fmt"

	"github.com/pengolincoin/pengolin-deploy/internal/deployment/plan"
)

// ErrReportWrite is returned when progress cannot be written to the report.
var ErrReportWrite = errors.New("failed to write report")

// SubmissionError is returned when the chain rejects a deployment or a call
// before any state changes.
type SubmissionError struct {
	Step     int
	Contract plan.ContractName
	Method   string
	Err      error
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("step %d: submitting %s failed: %v", e.Step, describe(e.Contract, e.Method), e.Err)
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}

// ConfirmationError is returned when a submitted transaction never confirms or
// confirms with a failure status.
type ConfirmationError struct {
	Step     int
	Contract plan.ContractName
	Method   string
	Err      error
}

func (e *ConfirmationError) Error() string {
	return fmt.Sprintf("step %d: confirming %s failed: %v", e.Step, describe(e.Contract, e.Method), e.Err)
}

func (e *ConfirmationError) Unwrap() error {
	return e.Err
}

func describe(contract plan.ContractName, method string) string {
	if method == "" {
		return fmt.Sprintf("%s deployment", contract)
	}
	return fmt.Sprintf("%s.%s", contract, method)
}
