package planner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff"

	"github.com/devicelab-dev/qapilot/pkg/core"
	"github.com/devicelab-dev/qapilot/pkg/logger"
)

// retryBuffer is added on top of a service-suggested retry delay.
const retryBuffer = 2 * time.Second

// Config tunes the adapter's rate control and retry discipline.
type Config struct {
	MinInterval   time.Duration // minimum spacing between planning calls
	MaxRetries    int           // retry ceiling for transient service errors
	FallbackDelay time.Duration // initial backoff when the service suggests no delay

	// Injectable clock for tests. Nil means real time.
	Now   func() time.Time
	Sleep func(time.Duration)
}

// Adapter drives the decision service for one test run. It owns the
// most-recent-call timestamp used for rate limiting; the zero value of
// lastCall disables the wait before the first call.
type Adapter struct {
	service Service
	cfg     Config

	lastCall time.Time
	now      func() time.Time
	sleep    func(time.Duration)
}

// New creates a planning adapter around a decision service.
func New(service Service, cfg Config) *Adapter {
	a := &Adapter{
		service: service,
		cfg:     cfg,
		now:     cfg.Now,
		sleep:   cfg.Sleep,
	}
	if a.now == nil {
		a.now = time.Now
	}
	if a.sleep == nil {
		a.sleep = time.Sleep
	}
	return a
}

// Reset clears the rate-limiter state for a new test.
func (a *Adapter) Reset() {
	a.lastCall = time.Time{}
}

// Plan asks the decision service for the next action. It never returns an
// error: a malformed response degrades to a safe wait action, and a fatal
// or retry-exhausted service failure becomes a terminal test_failed action
// carrying the error text.
func (a *Adapter) Plan(ctx context.Context, req Request) core.Action {
	logger.Info("planning step %d/%d", req.Step, req.StepBudget)

	contextBlock := buildContext(req)

	// Fallback delay ladder for transient errors without a suggested delay.
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = a.cfg.FallbackDelay
	bo.MaxElapsedTime = 0
	bo.Reset()

	var lastErr error
	for attempt := 0; attempt <= a.cfg.MaxRetries; attempt++ {
		a.waitForRateLimit()
		a.lastCall = a.now()

		raw, err := a.service.Decide(ctx, contextBlock, req.Screenshot)
		if err == nil {
			action, perr := ParseResponse(raw)
			if perr != nil {
				// Fail open on format noise: do not retry against the
				// service, surface a wait so the loop continues.
				logger.Error("planner response unparseable: %v", perr)
				return core.Action{
					Kind:        core.ActionWait,
					Seconds:     1,
					Description: "Waiting due to planning error, will retry",
				}
			}
			logger.Info("planned action: %s", action)
			return action
		}

		lastErr = err
		var serr *ServiceError
		if errors.As(err, &serr) && serr.Kind == ErrTransient && attempt < a.cfg.MaxRetries {
			delay := bo.NextBackOff()
			if serr.RetryAfter > 0 {
				delay = serr.RetryAfter + retryBuffer
			}
			logger.Warn("transient planner error (attempt %d/%d), retrying in %v: %v",
				attempt+1, a.cfg.MaxRetries+1, delay, err)
			a.sleep(delay)
			continue
		}

		logger.Error("planner error: %v", err)
		break
	}

	return core.Action{
		Kind:        core.ActionTestFailed,
		Result:      "fail",
		Reason:      fmt.Sprintf("Planner error after retries: %v", lastErr),
		Description: "Internal planner error",
	}
}

// waitForRateLimit blocks until at least MinInterval has elapsed since the
// previous planning call.
func (a *Adapter) waitForRateLimit() {
	if a.lastCall.IsZero() || a.cfg.MinInterval <= 0 {
		return
	}
	elapsed := a.now().Sub(a.lastCall)
	if elapsed < a.cfg.MinInterval {
		wait := a.cfg.MinInterval - elapsed
		logger.Debug("rate limiting: waiting %v before next planning call", wait)
		a.sleep(wait)
	}
}
