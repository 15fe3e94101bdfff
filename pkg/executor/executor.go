// Package executor executes planned actions on the device backend and
// drives the plan→execute orchestration loop for test runs.
package executor

import (
	"fmt"
	"time"

	"github.com/devicelab-dev/qapilot/pkg/core"
	"github.com/devicelab-dev/qapilot/pkg/hierarchy"
	"github.com/devicelab-dev/qapilot/pkg/logger"
)

// NotFoundPrefix marks messages for symbolic taps whose target element
// could not be resolved, so callers can tell resolution failures apart
// from device primitive failures.
const NotFoundPrefix = "element not found"

// Result is the outcome of executing a single action.
type Result struct {
	Success    bool
	Message    string
	Screenshot []byte // nil when capture failed or was skipped
}

// Executor dispatches actions to the device backend, waits for the UI to
// settle, and captures the resulting screen state.
type Executor struct {
	backend core.Backend
	settle  time.Duration
	sleep   func(time.Duration)

	actionCount int
}

// NewExecutor creates an Executor over a device backend. settle is the
// fixed delay between an action and the screenshot that follows it.
func NewExecutor(backend core.Backend, settle time.Duration) *Executor {
	return &Executor{
		backend: backend,
		settle:  settle,
		sleep:   time.Sleep,
	}
}

// ActionCount returns the number of actions executed so far.
func (e *Executor) ActionCount() int {
	return e.actionCount
}

// Reset clears executor state for a new test.
func (e *Executor) Reset() {
	e.actionCount = 0
}

// CurrentScreenshot captures the screen without executing an action.
func (e *Executor) CurrentScreenshot() ([]byte, error) {
	return e.backend.Screenshot()
}

// Prepare brings the device to a known state before a test: home screen,
// app force-stopped, then relaunched. Individual step failures are logged
// and tolerated; only the caller's initial screenshot decides whether the
// run can proceed.
func (e *Executor) Prepare(appPackage string) {
	logger.Info("preparing device for test")

	if err := e.backend.PressKey(core.KeyHome); err != nil {
		logger.Warn("press home failed: %v", err)
	}
	e.sleep(1 * time.Second)

	if appPackage == "" {
		return
	}
	if err := e.backend.CloseApp(appPackage); err != nil {
		logger.Warn("close %s failed: %v", appPackage, err)
	}
	e.sleep(500 * time.Millisecond)

	if err := e.backend.LaunchApp(appPackage); err != nil {
		logger.Warn("launch %s failed: %v", appPackage, err)
	}
	e.sleep(2 * time.Second)
}

// Execute runs a single planned action and returns its outcome with the
// new screen state. Terminal actions are not dispatched to the device;
// they only settle and capture a final screenshot. Unknown action kinds
// fail explicitly with no screenshot.
func (e *Executor) Execute(action core.Action) *Result {
	e.actionCount++
	logger.Info("executing action %d: %s", e.actionCount, action)

	switch action.Kind {
	case core.ActionTestComplete:
		e.sleep(e.settle)
		return &Result{
			Success:    true,
			Message:    "Test completed with result: pass",
			Screenshot: e.tryScreenshot(),
		}
	case core.ActionTestFailed:
		reason := action.Reason
		if reason == "" {
			reason = "Unknown reason"
		}
		e.sleep(e.settle)
		return &Result{
			Success:    true,
			Message:    fmt.Sprintf("Test failed: %s", reason),
			Screenshot: e.tryScreenshot(),
		}
	case core.ActionTapByText, core.ActionTapByResourceID, core.ActionTapByHint:
		return e.executeSymbolicTap(action)
	}

	message, err := e.dispatch(action)
	if err != nil {
		if message == "" {
			message = fmt.Sprintf("Execution error: %v", err)
		}
		return &Result{Success: false, Message: message, Screenshot: e.tryScreenshot()}
	}
	if message == "" {
		// dispatch returns empty only for kinds outside the closed set
		return &Result{Success: false, Message: fmt.Sprintf("Unknown action type: %s", action.Kind)}
	}

	e.sleep(e.settle)
	return &Result{Success: true, Message: message, Screenshot: e.tryScreenshot()}
}

// dispatch invokes the device primitive for a non-terminal, non-symbolic
// action. An empty message with nil error marks an unknown action kind.
func (e *Executor) dispatch(action core.Action) (string, error) {
	b := e.backend

	switch action.Kind {
	case core.ActionTap:
		if err := b.Tap(action.X, action.Y); err != nil {
			return "", err
		}
		return fmt.Sprintf("Tapped at (%d, %d)", action.X, action.Y), nil

	case core.ActionDoubleTap:
		if err := b.DoubleTap(action.X, action.Y); err != nil {
			return "", err
		}
		return fmt.Sprintf("Double tapped at (%d, %d)", action.X, action.Y), nil

	case core.ActionLongPress:
		duration := time.Duration(action.DurationMS) * time.Millisecond
		if duration <= 0 {
			duration = 1 * time.Second
		}
		if err := b.LongPress(action.X, action.Y, duration); err != nil {
			return "", err
		}
		return fmt.Sprintf("Long pressed at (%d, %d) for %v", action.X, action.Y, duration), nil

	case core.ActionTypeText:
		if err := b.TypeText(action.Text); err != nil {
			return "", err
		}
		return fmt.Sprintf("Typed text: %s", action.Text), nil

	case core.ActionClearText:
		if err := b.ClearFocusedField(); err != nil {
			return "", err
		}
		return "Cleared text field", nil

	case core.ActionSwipe:
		duration := time.Duration(action.DurationMS) * time.Millisecond
		if duration <= 0 {
			duration = 300 * time.Millisecond
		}
		if err := b.Swipe(action.StartX, action.StartY, action.EndX, action.EndY, duration); err != nil {
			return "", err
		}
		return fmt.Sprintf("Swiped from (%d, %d) to (%d, %d)", action.StartX, action.StartY, action.EndX, action.EndY), nil

	case core.ActionScrollUp:
		if err := b.ScrollUp(); err != nil {
			return "", err
		}
		return "Scrolled up", nil

	case core.ActionScrollDown:
		if err := b.ScrollDown(); err != nil {
			return "", err
		}
		return "Scrolled down", nil

	case core.ActionPressBack:
		return pressKey(b, core.KeyBack)
	case core.ActionPressHome:
		return pressKey(b, core.KeyHome)
	case core.ActionPressEnter:
		return pressKey(b, core.KeyEnter)
	case core.ActionPressMenu:
		return pressKey(b, core.KeyMenu)

	case core.ActionLaunchApp:
		if err := b.LaunchApp(action.PackageName); err != nil {
			return "", err
		}
		return fmt.Sprintf("Launched app: %s", action.PackageName), nil

	case core.ActionCloseApp:
		if err := b.CloseApp(action.PackageName); err != nil {
			return "", err
		}
		return fmt.Sprintf("Closed app: %s", action.PackageName), nil

	case core.ActionWait:
		seconds := action.Seconds
		if seconds <= 0 {
			seconds = 1
		}
		e.sleep(time.Duration(seconds * float64(time.Second)))
		return fmt.Sprintf("Waited for %g seconds", seconds), nil
	}

	return "", nil
}

func pressKey(b core.Backend, k core.Key) (string, error) {
	if err := b.PressKey(k); err != nil {
		return "", err
	}
	return fmt.Sprintf("Pressed key: %s", k), nil
}

// executeSymbolicTap resolves a tap_by_* action against a fresh UI
// snapshot and taps the resolved center. Resolution failure is a step
// failure with a NotFoundPrefix message, never a crash.
func (e *Executor) executeSymbolicTap(action core.Action) *Result {
	match, query, err := e.resolve(action)
	if err != nil {
		return &Result{
			Success:    false,
			Message:    fmt.Sprintf("Execution error: %v", err),
			Screenshot: e.tryScreenshot(),
		}
	}
	if match == nil {
		logger.Warn("%s: %s", NotFoundPrefix, query)
		return &Result{
			Success:    false,
			Message:    fmt.Sprintf("%s: %s", NotFoundPrefix, query),
			Screenshot: e.tryScreenshot(),
		}
	}

	if err := e.backend.Tap(match.CenterX, match.CenterY); err != nil {
		return &Result{
			Success:    false,
			Message:    fmt.Sprintf("Execution error: %v", err),
			Screenshot: e.tryScreenshot(),
		}
	}

	e.sleep(e.settle)
	return &Result{
		Success:    true,
		Message:    fmt.Sprintf("Tapped element %q at (%d, %d)", match.MatchedOn, match.CenterX, match.CenterY),
		Screenshot: e.tryScreenshot(),
	}
}

// resolve fetches a fresh hierarchy snapshot and searches it per the
// action's query. A nil match with nil error means not found.
func (e *Executor) resolve(action core.Action) (*hierarchy.Match, string, error) {
	dump, err := e.backend.Hierarchy()
	if err != nil {
		return nil, "", err
	}
	elements, err := hierarchy.Parse(dump)
	if err != nil {
		return nil, "", err
	}

	switch action.Kind {
	case core.ActionTapByText:
		return hierarchy.FindByText(elements, action.Text, action.ExactMatch), fmt.Sprintf("text=%q", action.Text), nil
	case core.ActionTapByResourceID:
		return hierarchy.FindByResourceID(elements, action.ResourceID), fmt.Sprintf("resource-id=%q", action.ResourceID), nil
	case core.ActionTapByHint:
		return hierarchy.FindByHint(elements, action.Hint), fmt.Sprintf("hint=%q", action.Hint), nil
	}
	return nil, "", fmt.Errorf("not a symbolic tap: %s", action.Kind)
}

// tryScreenshot captures the screen, degrading to nil on failure.
func (e *Executor) tryScreenshot() []byte {
	shot, err := e.backend.Screenshot()
	if err != nil {
		logger.Warn("screenshot capture failed: %v", err)
		return nil
	}
	return shot
}
