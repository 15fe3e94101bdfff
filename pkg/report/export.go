// Package report exports suite results as JSON and renders terminal summaries.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/devicelab-dev/qapilot/pkg/core"
)

// Export is the top-level JSON document written after a suite run.
type Export struct {
	RunID      string         `json:"run_id"`
	Timestamp  time.Time      `json:"timestamp"`
	TotalTests int            `json:"total_tests"`
	Results    []ExportResult `json:"results"`
}

// ExportResult is the per-test entry of an Export.
type ExportResult struct {
	TestName       string   `json:"test_name"`
	Description    string   `json:"description"`
	ExpectedToPass bool     `json:"expected_to_pass"`
	Status         string   `json:"status"`
	ActualResult   string   `json:"actual_result"`
	IsCorrect      bool     `json:"is_correct"`
	StepsExecuted  []string `json:"steps_executed"`
	Screenshots    []string `json:"screenshots"`
	ErrorMessage   string   `json:"error_message,omitempty"`
}

// Build assembles the export document from a result list with a fresh run ID.
func Build(results []core.TestResult) Export {
	e := Export{
		RunID:      uuid.NewString(),
		Timestamp:  time.Now(),
		TotalTests: len(results),
		Results:    make([]ExportResult, 0, len(results)),
	}
	for _, r := range results {
		e.Results = append(e.Results, ExportResult{
			TestName:       r.TestCase.Name,
			Description:    r.TestCase.Description,
			ExpectedToPass: r.TestCase.ShouldPass,
			Status:         r.Status.String(),
			ActualResult:   r.ActualResult,
			IsCorrect:      r.IsCorrect(),
			StepsExecuted:  r.StepDescriptions(),
			Screenshots:    r.ScreenshotPaths(),
			ErrorMessage:   r.ErrorMessage,
		})
	}
	return e
}

// WriteJSON exports results to dir as test_results_<timestamp>.json and
// returns the file path.
func WriteJSON(dir string, results []core.TestResult) (string, error) {
	e := Build(results)

	data, err := json.MarshalIndent(e, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal results: %w", err)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create report dir: %w", err)
	}

	stamp := e.Timestamp.Format("20060102_150405")
	path := filepath.Join(dir, fmt.Sprintf("test_results_%s.json", stamp))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	return path, nil
}
