// Package planner adapts an external decision service into the test
// loop: it submits screen state and test context, enforces call spacing
// and bounded retries, and always hands back a well-formed action.
package planner

import (
	"context"
	"fmt"
	"time"

	"github.com/devicelab-dev/qapilot/pkg/core"
)

// ErrorKind classifies a decision-service failure. The service
// implementation owns this classification; the adapter only switches on it.
type ErrorKind int

const (
	// ErrTransient means the call may succeed if retried (rate limit,
	// quota, momentary unavailability).
	ErrTransient ErrorKind = iota
	// ErrFatal means retrying is pointless (auth failure, bad request,
	// service misconfiguration).
	ErrFatal
)

// ServiceError is the structured failure contract at the decision-service
// boundary.
type ServiceError struct {
	Kind       ErrorKind
	RetryAfter time.Duration // service-suggested delay, 0 if none given
	Message    string
	Cause      error
}

// Error implements the error interface.
func (e *ServiceError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *ServiceError) Unwrap() error {
	return e.Cause
}

// Request carries everything the decision service needs for one planning
// call: current screen, test intent, and full prior-step history.
type Request struct {
	Screenshot      []byte
	TestDescription string
	ExpectedResult  string
	ShouldPass      bool
	History         []core.StepSummary
	Step            int
	StepBudget      int
}

// Service is the decision-service collaborator. Decide submits a rendered
// screen plus a context block and returns the service's raw text reply.
// Failures must be reported as *ServiceError so the adapter can apply its
// retry policy without inspecting message text.
type Service interface {
	Decide(ctx context.Context, contextBlock string, screenshot []byte) (string, error)
}
