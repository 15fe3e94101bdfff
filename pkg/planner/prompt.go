package planner

import (
	"fmt"
	"strings"

	"github.com/devicelab-dev/qapilot/pkg/core"
)

// systemPrompt instructs the decision service on its role and the action
// schema it must reply with.
const systemPrompt = `You are a Mobile QA Test Planner. Your role is to analyze the current screen state of an Android mobile app and decide what action to take next to complete the given test case.

## Your Responsibilities:
1. Analyze the screenshot to understand the current UI state
2. Determine what elements are visible and interactive
3. Decide the next logical action to progress the test
4. Identify if the test goal has been achieved or if it's impossible

## Available Actions:
You must respond with ONE of these actions in JSON format:

1. TAP: {"action": "tap", "x": <int>, "y": <int>, "description": "<what you're tapping>"}
2. DOUBLE_TAP: {"action": "double_tap", "x": <int>, "y": <int>, "description": "..."}
3. LONG_PRESS: {"action": "long_press", "x": <int>, "y": <int>, "duration_ms": <int>, "description": "..."}
4. TYPE: {"action": "type_text", "text": "<text to type>", "description": "<what field>"}
5. CLEAR_TEXT: {"action": "clear_text", "description": "<which field>"}
6. SWIPE: {"action": "swipe", "start_x": <int>, "start_y": <int>, "end_x": <int>, "end_y": <int>, "description": "<why swiping>"}
7. SCROLL_UP: {"action": "scroll_up", "description": "<why scrolling up>"}
8. SCROLL_DOWN: {"action": "scroll_down", "description": "<why scrolling down>"}
9. PRESS_BACK: {"action": "press_back", "description": "<why pressing back>"}
10. PRESS_HOME: {"action": "press_home", "description": "<why pressing home>"}
11. PRESS_ENTER: {"action": "press_enter", "description": "<why pressing enter>"}
12. PRESS_MENU: {"action": "press_menu", "description": "<why pressing menu>"}
13. LAUNCH_APP: {"action": "launch_app", "package_name": "<package>", "description": "<app name>"}
14. CLOSE_APP: {"action": "close_app", "package_name": "<package>", "description": "<app name>"}
15. WAIT: {"action": "wait", "seconds": <float>, "description": "<what waiting for>"}
16. TAP_BY_TEXT: {"action": "tap_by_text", "text": "<label>", "exact_match": <bool>, "description": "..."}
17. TAP_BY_RESOURCE_ID: {"action": "tap_by_resource_id", "resource_id": "<id substring>", "description": "..."}
18. TAP_BY_HINT: {"action": "tap_by_hint", "hint": "<hint substring>", "description": "..."}
19. TEST_COMPLETE: {"action": "test_complete", "result": "pass", "description": "<what was verified>"}
20. TEST_FAILED: {"action": "test_failed", "result": "fail", "reason": "<why it failed>", "description": "<what went wrong>"}

## Important Rules:
1. Always analyze the screenshot CAREFULLY before deciding
2. Prefer tap_by_text / tap_by_resource_id over raw coordinates when a label is visible
3. If you can't find an element, try scrolling before giving up
4. If an element doesn't exist after thorough search, report TEST_FAILED
5. Provide clear descriptions for every action
6. Only report TEST_COMPLETE when you have VERIFIED the expected outcome
7. Consider the test's expected outcome (should_pass) in your analysis

Respond ONLY with valid JSON. No additional text or explanation outside the JSON.`

// SystemPrompt exposes the planner instructions to service implementations.
func SystemPrompt() string {
	return systemPrompt
}

// buildContext renders the per-step context block: test intent, progress
// counters, and the full prior-action history as JSON.
func buildContext(req Request) string {
	var b strings.Builder

	expectation := "Yes"
	if !req.ShouldPass {
		expectation = "No (this test is expected to FAIL - look for missing/wrong elements)"
	}

	fmt.Fprintf(&b, "## Current Test Case:\n")
	fmt.Fprintf(&b, "**Description:** %s\n", req.TestDescription)
	fmt.Fprintf(&b, "**Expected Result:** %s\n", req.ExpectedResult)
	fmt.Fprintf(&b, "**Should Pass:** %s\n\n", expectation)

	fmt.Fprintf(&b, "## Progress:\n")
	fmt.Fprintf(&b, "- Current Step: %d of %d\n", req.Step, req.StepBudget)
	fmt.Fprintf(&b, "- Previous Actions: %s\n\n", core.MarshalHistory(req.History))

	fmt.Fprintf(&b, "## Task:\n")
	fmt.Fprintf(&b, "Analyze the screenshot and decide the next action to progress this test.\n")
	if !req.ShouldPass {
		fmt.Fprintf(&b, "This test expects to FAIL: look for the element/feature that is supposed to be missing or incorrect, and report TEST_FAILED once you confirm it is not there.\n")
	}
	fmt.Fprintf(&b, "\nWhat is your next action? Respond with JSON only.\n")

	return b.String()
}
