package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/devicelab-dev/qapilot/pkg/core"
)

// PrintSummary renders the suite outcome to w: aggregate counts, the
// correctness rate, and a per-test expected-vs-actual breakdown.
func PrintSummary(w io.Writer, results []core.TestResult) {
	s := core.Summarize(results)

	bold := color.New(color.Bold)
	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)
	yellow := color.New(color.FgYellow)

	rule := strings.Repeat("=", 60)
	fmt.Fprintln(w, rule)
	bold.Fprintln(w, "TEST SUITE SUMMARY")
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "Total Tests:      %d\n", s.Total)
	green.Fprintf(w, "Passed:           %d\n", s.Passed)
	red.Fprintf(w, "Failed:           %d\n", s.Failed)
	yellow.Fprintf(w, "Errors:           %d\n", s.Errors)
	fmt.Fprintf(w, "Correct Behavior: %d/%d (%.1f%%)\n", s.Correct, s.Total, s.CorrectnessRate())
	fmt.Fprintln(w, rule)

	fmt.Fprintln(w, "\nDetailed Results:")
	fmt.Fprintln(w, strings.Repeat("-", 60))
	for _, r := range results {
		verdict := green
		mark := "OK"
		if !r.IsCorrect() {
			verdict = red
			mark = "MISMATCH"
		}
		verdict.Fprintf(w, "[%s] %s\n", mark, r.TestCase.Name)
		fmt.Fprintf(w, "     Expected: %s | Actual: %s\n",
			expectedWord(r.TestCase.ShouldPass), strings.ToUpper(r.Status.String()))
		if r.ErrorMessage != "" {
			yellow.Fprintf(w, "     Error: %s\n", r.ErrorMessage)
		}
	}
	fmt.Fprintln(w, strings.Repeat("-", 60))
}

func expectedWord(shouldPass bool) string {
	if shouldPass {
		return "PASS"
	}
	return "FAIL"
}
