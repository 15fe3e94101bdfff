package executor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/devicelab-dev/qapilot/pkg/core"
	"github.com/devicelab-dev/qapilot/pkg/logger"
	"github.com/devicelab-dev/qapilot/pkg/planner"
)

// Planner is the planning collaborator the runner drives once per step.
type Planner interface {
	Plan(ctx context.Context, req planner.Request) core.Action
	Reset()
}

// RunnerConfig configures the test runner.
type RunnerConfig struct {
	StepBudget     int           // max plan→execute cycles per test
	SuitePause     time.Duration // pause between tests in a suite run
	ScreenshotsDir string        // where per-step screenshots are written
	AppPackage     string        // application under test
}

// Runner drives the plan→execute loop for test cases, one at a time.
// Tests never run concurrently: the device session is a single shared
// mutable resource owned by the runner for the duration of a run.
type Runner struct {
	planner Planner
	exec    *Executor
	cfg     RunnerConfig
	sleep   func(time.Duration)

	results []core.TestResult
}

// NewRunner creates a Runner.
func NewRunner(p Planner, exec *Executor, cfg RunnerConfig) *Runner {
	if cfg.StepBudget <= 0 {
		cfg.StepBudget = 20
	}
	return &Runner{
		planner: p,
		exec:    exec,
		cfg:     cfg,
		sleep:   time.Sleep,
	}
}

// Results returns all results accumulated so far.
func (r *Runner) Results() []core.TestResult {
	return r.results
}

// RunTest runs a single test case to its verdict. Exactly one terminal
// action or step-budget exhaustion ends the run: a terminal action yields
// PASSED or FAILED, exhaustion yields ERROR. Step-level execution
// failures never abort the loop; they are recorded and surfaced to the
// next planning call so the decision service can adapt.
func (r *Runner) RunTest(ctx context.Context, tc core.TestCase) core.TestResult {
	logger.Info("starting test: %s (expected to %s)", tc.Name, expectation(tc))

	r.planner.Reset()
	r.exec.Reset()
	r.exec.Prepare(r.cfg.AppPackage)
	r.sleep(1 * time.Second)

	screenshot, err := r.exec.CurrentScreenshot()
	if err != nil {
		// Infrastructure failure: abandon the run before any steps.
		logger.Error("failed to get initial screenshot: %v", err)
		result := core.TestResult{
			TestCase:     tc,
			Status:       core.StatusError,
			ActualResult: fmt.Sprintf("Failed to get initial screenshot: %v", err),
			ErrorMessage: err.Error(),
		}
		r.results = append(r.results, result)
		return result
	}

	var (
		records []core.StepRecord
		history []core.StepSummary
		status  = core.StatusRunning
		message string
	)

	for step := 1; step <= r.cfg.StepBudget; step++ {
		logger.Info("--- step %d/%d ---", step, r.cfg.StepBudget)

		action := r.planner.Plan(ctx, planner.Request{
			Screenshot:      screenshot,
			TestDescription: tc.Description,
			ExpectedResult:  tc.ExpectedResult,
			ShouldPass:      tc.ShouldPass,
			History:         history,
			Step:            step,
			StepBudget:      r.cfg.StepBudget,
		})

		if action.IsTerminal() {
			res := r.exec.Execute(action)
			records = append(records, r.record(tc, step, action, res))
			if action.Kind == core.ActionTestComplete {
				status = core.StatusPassed
				message = action.Description
				if message == "" {
					message = "Test completed successfully"
				}
				logger.Info("test complete: %s", message)
			} else {
				status = core.StatusFailed
				message = action.Reason
				if message == "" {
					message = "Unknown reason"
				}
				logger.Warn("test failed: %s", message)
			}
			break
		}

		res := r.exec.Execute(action)
		records = append(records, r.record(tc, step, action, res))

		if !res.Success {
			// Step failure, not a test verdict: the next planning call
			// sees it in the history and decides how to proceed.
			logger.Warn("step execution failed: %s", res.Message)
		}

		if res.Screenshot != nil {
			screenshot = res.Screenshot
		}
		history = append(history, core.StepSummary{
			Step:        step,
			Action:      string(action.Kind),
			Description: action.Description,
			Success:     res.Success,
		})
	}

	if status == core.StatusRunning {
		status = core.StatusError
		message = fmt.Sprintf("Test did not complete within %d steps", r.cfg.StepBudget)
		logger.Warn("step budget exhausted: %s", message)
	}

	result := core.TestResult{
		TestCase:     tc,
		Status:       status,
		ActualResult: message,
		Steps:        records,
	}
	result.Screenshots = result.ScreenshotPaths()
	if status == core.StatusError {
		result.ErrorMessage = message
	}

	r.results = append(r.results, result)
	r.logResult(result)
	return result
}

// RunAll runs test cases sequentially with a fixed pause between them.
func (r *Runner) RunAll(ctx context.Context, cases []core.TestCase) []core.TestResult {
	logger.Info("starting test suite: %d tests", len(cases))

	results := make([]core.TestResult, 0, len(cases))
	for i, tc := range cases {
		logger.Info("[%d/%d] running: %s", i+1, len(cases), tc.Name)
		results = append(results, r.RunTest(ctx, tc))
		if i < len(cases)-1 {
			r.sleep(r.cfg.SuitePause)
		}
	}
	return results
}

// record builds a StepRecord, persisting the screenshot when present.
func (r *Runner) record(tc core.TestCase, step int, action core.Action, res *Result) core.StepRecord {
	rec := core.StepRecord{
		Step:      step,
		Action:    action,
		Success:   res.Success,
		Message:   res.Message,
		Timestamp: time.Now(),
	}

	if res.Screenshot != nil && r.cfg.ScreenshotsDir != "" {
		path := filepath.Join(r.cfg.ScreenshotsDir, fmt.Sprintf("%s_step_%d.png", tc.Name, step))
		if err := os.WriteFile(path, res.Screenshot, 0644); err != nil {
			logger.Warn("failed to save screenshot: %v", err)
		} else {
			rec.ScreenshotPath = path
		}
	}

	return rec
}

func (r *Runner) logResult(result core.TestResult) {
	correct := "NO"
	if result.IsCorrect() {
		correct = "YES"
	}
	logger.Info("test %s: status=%s expected_to_pass=%t correct=%s steps=%d",
		result.TestCase.Name, result.Status, result.TestCase.ShouldPass, correct, len(result.Steps))
}

func expectation(tc core.TestCase) string {
	if tc.ShouldPass {
		return "PASS"
	}
	return "FAIL"
}
