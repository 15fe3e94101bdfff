package core

import (
	"fmt"
	"time"
)

// StepRecord captures one plan→execute cycle of a test run. Append-only,
// one per loop iteration, owned by the run that produced it.
type StepRecord struct {
	Step           int       `json:"step"`
	Action         Action    `json:"action"`
	Success        bool      `json:"success"`
	Message        string    `json:"message"`
	ScreenshotPath string    `json:"screenshot_path,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
}

// TestResult is the immutable outcome of a single test run.
type TestResult struct {
	TestCase     TestCase     `json:"test_case"`
	Status       TestStatus   `json:"status"`
	ActualResult string       `json:"actual_result"`
	Steps        []StepRecord `json:"steps"`
	Screenshots  []string     `json:"screenshots"`
	ErrorMessage string       `json:"error_message,omitempty"`
}

// IsCorrect reports whether the run's verdict matches the test's declared
// disposition: an expected-pass test must end PASSED, an expected-fail
// test must end FAILED. ERROR is never correct.
func (r TestResult) IsCorrect() bool {
	if r.TestCase.ShouldPass {
		return r.Status == StatusPassed
	}
	return r.Status == StatusFailed
}

// StepDescriptions renders the ordered step summaries for export.
func (r TestResult) StepDescriptions() []string {
	out := make([]string, 0, len(r.Steps))
	for _, s := range r.Steps {
		out = append(out, fmt.Sprintf("Step %d: %s - %s", s.Step, s.Action.Kind, s.Action.Description))
	}
	return out
}

// ScreenshotPaths returns the saved screenshot paths in step order.
func (r TestResult) ScreenshotPaths() []string {
	var out []string
	for _, s := range r.Steps {
		if s.ScreenshotPath != "" {
			out = append(out, s.ScreenshotPath)
		}
	}
	return out
}

// SuiteSummary aggregates results across a suite run.
type SuiteSummary struct {
	Total   int
	Passed  int
	Failed  int
	Errors  int
	Correct int
}

// Summarize computes suite counts from a result list.
func Summarize(results []TestResult) SuiteSummary {
	s := SuiteSummary{Total: len(results)}
	for _, r := range results {
		switch r.Status {
		case StatusPassed:
			s.Passed++
		case StatusFailed:
			s.Failed++
		case StatusError:
			s.Errors++
		}
		if r.IsCorrect() {
			s.Correct++
		}
	}
	return s
}

// CorrectnessRate returns the is_correct ratio in percent.
func (s SuiteSummary) CorrectnessRate() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Correct) * 100 / float64(s.Total)
}
