package report

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/devicelab-dev/qapilot/pkg/core"
)

func sampleResults() []core.TestResult {
	return []core.TestResult{
		{
			TestCase: core.TestCase{
				Name:        "test_create_vault",
				Description: "Create a vault",
				ShouldPass:  true,
			},
			Status:       core.StatusPassed,
			ActualResult: "Vault created",
			Steps: []core.StepRecord{
				{
					Step:           1,
					Action:         core.Action{Kind: core.ActionTapByText, Text: "Create", Description: "Tap create"},
					Success:        true,
					ScreenshotPath: "screenshots/test_create_vault_step_1.png",
				},
			},
		},
		{
			TestCase: core.TestCase{
				Name:        "test_print_to_pdf",
				Description: "Print to PDF",
				ShouldPass:  false,
			},
			Status:       core.StatusFailed,
			ActualResult: "Option not present",
		},
		{
			TestCase: core.TestCase{
				Name:        "test_search",
				Description: "Search notes",
				ShouldPass:  true,
			},
			Status:       core.StatusError,
			ErrorMessage: "Test did not complete within 20 steps",
		},
	}
}

func TestBuild(t *testing.T) {
	e := Build(sampleResults())

	if e.RunID == "" {
		t.Error("expected a run ID")
	}
	if e.TotalTests != 3 {
		t.Errorf("got total %d, want 3", e.TotalTests)
	}
	if len(e.Results) != 3 {
		t.Fatalf("got %d results", len(e.Results))
	}

	first := e.Results[0]
	if first.Status != "passed" || !first.IsCorrect {
		t.Errorf("first result: %+v", first)
	}
	if len(first.StepsExecuted) != 1 || !strings.Contains(first.StepsExecuted[0], "tap_by_text") {
		t.Errorf("steps_executed: %v", first.StepsExecuted)
	}
	if len(first.Screenshots) != 1 {
		t.Errorf("screenshots: %v", first.Screenshots)
	}

	second := e.Results[1]
	if second.Status != "failed" || !second.IsCorrect {
		t.Errorf("expected-fail test ending FAILED must be correct: %+v", second)
	}

	third := e.Results[2]
	if third.IsCorrect {
		t.Error("error outcome must never be correct")
	}
	if third.ErrorMessage == "" {
		t.Error("error message not carried into export")
	}
}

func TestBuild_DistinctRunIDs(t *testing.T) {
	a := Build(nil)
	b := Build(nil)
	if a.RunID == b.RunID {
		t.Errorf("run IDs collided: %s", a.RunID)
	}
}

func TestWriteJSON(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports")

	path, err := WriteJSON(dir, sampleResults())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	base := filepath.Base(path)
	if !strings.HasPrefix(base, "test_results_") || !strings.HasSuffix(base, ".json") {
		t.Errorf("unexpected file name %q", base)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var e Export
	if err := json.Unmarshal(data, &e); err != nil {
		t.Fatalf("exported file is not valid JSON: %v", err)
	}
	if e.TotalTests != 3 {
		t.Errorf("got total %d, want 3", e.TotalTests)
	}
}

func TestPrintSummary(t *testing.T) {
	var buf bytes.Buffer
	PrintSummary(&buf, sampleResults())
	out := buf.String()

	for _, want := range []string{
		"TEST SUITE SUMMARY",
		"Total Tests:      3",
		"Passed:           1",
		"Failed:           1",
		"Errors:           1",
		"Correct Behavior: 2/3 (66.7%)",
		"[OK] test_create_vault",
		"[OK] test_print_to_pdf",
		"[MISMATCH] test_search",
		"Expected: PASS | Actual: ERROR",
		"Test did not complete within 20 steps",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q\n%s", want, out)
		}
	}
}

func TestPrintSummary_Empty(t *testing.T) {
	var buf bytes.Buffer
	PrintSummary(&buf, nil)
	if !strings.Contains(buf.String(), "Correct Behavior: 0/0 (0.0%)") {
		t.Errorf("empty summary: %s", buf.String())
	}
}
