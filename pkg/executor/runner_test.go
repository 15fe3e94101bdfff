package executor

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/devicelab-dev/qapilot/pkg/core"
	"github.com/devicelab-dev/qapilot/pkg/planner"
)

// scriptedPlanner returns a fixed sequence of actions, recording the
// requests it receives.
type scriptedPlanner struct {
	actions  []core.Action
	requests []planner.Request
	resets   int
}

func (p *scriptedPlanner) Plan(_ context.Context, req planner.Request) core.Action {
	p.requests = append(p.requests, req)
	i := len(p.requests) - 1
	if i < len(p.actions) {
		return p.actions[i]
	}
	return core.Action{Kind: core.ActionWait, Seconds: 1, Description: "idle"}
}

func (p *scriptedPlanner) Reset() { p.resets++ }

func testCase(shouldPass bool) core.TestCase {
	return core.TestCase{
		Name:           "test_create_vault",
		Description:    "Create a vault named InternVault",
		ExpectedResult: "Vault created and main interface visible",
		ShouldPass:     shouldPass,
	}
}

func newTestRunner(t *testing.T, p Planner, b core.Backend, budget int) *Runner {
	t.Helper()
	e := NewExecutor(b, 0)
	e.sleep = func(time.Duration) {}
	r := NewRunner(p, e, RunnerConfig{
		StepBudget:     budget,
		ScreenshotsDir: t.TempDir(),
		AppPackage:     "md.obsidian",
	})
	r.sleep = func(time.Duration) {}
	return r
}

func TestRunTest_TerminalCompleteStopsLoop(t *testing.T) {
	p := &scriptedPlanner{actions: []core.Action{
		{Kind: core.ActionTap, X: 100, Y: 100, Description: "tap create"},
		{Kind: core.ActionTypeText, Text: "InternVault", Description: "type name"},
		{Kind: core.ActionTap, X: 200, Y: 300, Description: "confirm"},
		{Kind: core.ActionWait, Seconds: 1, Description: "settle"},
		{Kind: core.ActionTestComplete, Result: "pass", Description: "vault visible"},
		{Kind: core.ActionTap, X: 0, Y: 0, Description: "must never run"},
	}}
	r := newTestRunner(t, p, newFakeBackend(), 20)

	result := r.RunTest(context.Background(), testCase(true))

	if result.Status != core.StatusPassed {
		t.Fatalf("got status %s, want passed", result.Status)
	}
	if len(result.Steps) != 5 {
		t.Errorf("got %d step records, want 5", len(result.Steps))
	}
	if len(p.requests) != 5 {
		t.Errorf("got %d planning calls, want 5 (no call after terminal)", len(p.requests))
	}
	if !result.IsCorrect() {
		t.Error("expected-pass test that passed must be correct")
	}
	if result.ActualResult != "vault visible" {
		t.Errorf("got actual result %q", result.ActualResult)
	}
}

func TestRunTest_TerminalFailed(t *testing.T) {
	p := &scriptedPlanner{actions: []core.Action{
		{Kind: core.ActionScrollDown, Description: "look for option"},
		{Kind: core.ActionTestFailed, Result: "fail", Reason: "red icon option does not exist", Description: "option missing"},
	}}
	r := newTestRunner(t, p, newFakeBackend(), 20)

	result := r.RunTest(context.Background(), testCase(false))

	if result.Status != core.StatusFailed {
		t.Fatalf("got status %s, want failed", result.Status)
	}
	if !result.IsCorrect() {
		t.Error("expected-fail test that failed must be correct")
	}
	if result.ActualResult != "red icon option does not exist" {
		t.Errorf("got actual result %q", result.ActualResult)
	}
}

func TestRunTest_BudgetExhaustionIsError(t *testing.T) {
	p := &scriptedPlanner{} // never returns a terminal action
	r := newTestRunner(t, p, newFakeBackend(), 3)

	result := r.RunTest(context.Background(), testCase(true))

	if result.Status != core.StatusError {
		t.Fatalf("got status %s, want error", result.Status)
	}
	if len(result.Steps) != 3 {
		t.Errorf("got %d steps, want 3", len(result.Steps))
	}
	if result.ActualResult != "Test did not complete within 3 steps" {
		t.Errorf("message must name the budget, got %q", result.ActualResult)
	}
	if result.IsCorrect() {
		t.Error("ERROR is never correct")
	}
}

func TestRunTest_StepFailureDoesNotAbort(t *testing.T) {
	p := &scriptedPlanner{actions: []core.Action{
		{Kind: core.ActionTapByText, Text: "Missing", Description: "tap missing element"},
		{Kind: core.ActionTestComplete, Description: "recovered"},
	}}
	r := newTestRunner(t, p, newFakeBackend(), 20)

	result := r.RunTest(context.Background(), testCase(true))

	if result.Status != core.StatusPassed {
		t.Fatalf("got status %s, want passed", result.Status)
	}
	if result.Steps[0].Success {
		t.Error("first step should be recorded as failed")
	}

	// The failure must be visible to the next planning call.
	second := p.requests[1]
	if len(second.History) != 1 || second.History[0].Success {
		t.Errorf("history not surfaced to planner: %+v", second.History)
	}
}

func TestRunTest_InitialScreenshotFailureIsFatal(t *testing.T) {
	b := newFakeBackend()
	b.screenshotErr = fmt.Errorf("device gone")
	p := &scriptedPlanner{}
	r := newTestRunner(t, p, b, 20)

	result := r.RunTest(context.Background(), testCase(true))

	if result.Status != core.StatusError {
		t.Fatalf("got status %s, want error", result.Status)
	}
	if len(result.Steps) != 0 {
		t.Errorf("no steps may execute, got %d", len(result.Steps))
	}
	if len(p.requests) != 0 {
		t.Errorf("no planning calls may occur, got %d", len(p.requests))
	}
}

func TestRunTest_ResetsCollaborators(t *testing.T) {
	p := &scriptedPlanner{actions: []core.Action{{Kind: core.ActionTestComplete, Description: "done"}}}
	r := newTestRunner(t, p, newFakeBackend(), 20)

	r.RunTest(context.Background(), testCase(true))
	r.RunTest(context.Background(), testCase(true))

	if p.resets != 2 {
		t.Errorf("got %d planner resets, want 2", p.resets)
	}
}

func TestRunTest_ScreenshotsPersisted(t *testing.T) {
	p := &scriptedPlanner{actions: []core.Action{
		{Kind: core.ActionTap, X: 1, Y: 1, Description: "tap"},
		{Kind: core.ActionTestComplete, Description: "done"},
	}}
	r := newTestRunner(t, p, newFakeBackend(), 20)

	result := r.RunTest(context.Background(), testCase(true))

	if len(result.Screenshots) != 2 {
		t.Fatalf("got %d screenshot paths, want 2", len(result.Screenshots))
	}
	for i, path := range result.Screenshots {
		want := fmt.Sprintf("test_create_vault_step_%d.png", i+1)
		if filepath.Base(path) != want {
			t.Errorf("got path %q, want base %q", path, want)
		}
	}
}

func TestRunAll_SequentialWithResults(t *testing.T) {
	p := &scriptedPlanner{actions: []core.Action{
		{Kind: core.ActionTestComplete, Description: "one"},
		{Kind: core.ActionTestComplete, Description: "two"},
	}}
	r := newTestRunner(t, p, newFakeBackend(), 20)

	cases := []core.TestCase{testCase(true), testCase(false)}
	results := r.RunAll(context.Background(), cases)

	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if len(r.Results()) != 2 {
		t.Errorf("runner must accumulate results")
	}

	summary := core.Summarize(results)
	if summary.Passed != 2 || summary.Correct != 1 {
		t.Errorf("got summary %+v, want 2 passed / 1 correct", summary)
	}
}

