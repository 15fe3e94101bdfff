// Package core defines the shared types for qapilot: actions planned by
// the decision service, device backend contracts, and test results.
package core

import (
	"encoding/json"
	"fmt"
)

// ActionKind identifies one variant of the planner's action schema.
type ActionKind string

// ActionKind values. The set is closed: the executor dispatches
// exhaustively and treats anything else as an unknown-action failure.
const (
	ActionTap             ActionKind = "tap"
	ActionDoubleTap       ActionKind = "double_tap"
	ActionLongPress       ActionKind = "long_press"
	ActionTypeText        ActionKind = "type_text"
	ActionClearText       ActionKind = "clear_text"
	ActionSwipe           ActionKind = "swipe"
	ActionScrollUp        ActionKind = "scroll_up"
	ActionScrollDown      ActionKind = "scroll_down"
	ActionPressBack       ActionKind = "press_back"
	ActionPressHome       ActionKind = "press_home"
	ActionPressEnter      ActionKind = "press_enter"
	ActionPressMenu       ActionKind = "press_menu"
	ActionLaunchApp       ActionKind = "launch_app"
	ActionCloseApp        ActionKind = "close_app"
	ActionWait            ActionKind = "wait"
	ActionTapByText       ActionKind = "tap_by_text"
	ActionTapByResourceID ActionKind = "tap_by_resource_id"
	ActionTapByHint       ActionKind = "tap_by_hint"
	ActionTestComplete    ActionKind = "test_complete"
	ActionTestFailed      ActionKind = "test_failed"
)

// Action is a single planned unit of device interaction or a terminal
// test verdict. The Kind field selects the variant; the remaining fields
// are populated per variant, matching the decision service's JSON schema.
type Action struct {
	Kind        ActionKind `json:"action"`
	Description string     `json:"description,omitempty"`

	// Coordinate actions
	X          int `json:"x,omitempty"`
	Y          int `json:"y,omitempty"`
	StartX     int `json:"start_x,omitempty"`
	StartY     int `json:"start_y,omitempty"`
	EndX       int `json:"end_x,omitempty"`
	EndY       int `json:"end_y,omitempty"`
	DurationMS int `json:"duration_ms,omitempty"`

	// Text actions
	Text       string `json:"text,omitempty"`
	ExactMatch bool   `json:"exact_match,omitempty"`
	ResourceID string `json:"resource_id,omitempty"`
	Hint       string `json:"hint,omitempty"`

	// App lifecycle
	PackageName string `json:"package_name,omitempty"`

	// Wait
	Seconds float64 `json:"seconds,omitempty"`

	// Terminal actions
	Result string `json:"result,omitempty"`
	Reason string `json:"reason,omitempty"`
}

// IsTerminal reports whether the action ends a test run.
func (a Action) IsTerminal() bool {
	return a.Kind == ActionTestComplete || a.Kind == ActionTestFailed
}

// String returns a short human-readable form for logs and step history.
func (a Action) String() string {
	if a.Description != "" {
		return fmt.Sprintf("%s (%s)", a.Kind, a.Description)
	}
	return string(a.Kind)
}

// StepSummary is one entry of the prior-action history handed back to the
// decision service on every planning call.
type StepSummary struct {
	Step        int    `json:"step"`
	Action      string `json:"action"`
	Description string `json:"description"`
	Success     bool   `json:"success"`
}

// MarshalHistory serializes prior steps for the planning context. A nil
// history serializes as an empty list, never null.
func MarshalHistory(history []StepSummary) string {
	if history == nil {
		history = []StepSummary{}
	}
	data, err := json.MarshalIndent(history, "", "  ")
	if err != nil {
		return "[]"
	}
	return string(data)
}
