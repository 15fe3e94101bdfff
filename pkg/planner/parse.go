package planner

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/devicelab-dev/qapilot/pkg/core"
)

// ParseResponse turns the decision service's raw reply into an Action.
// Markdown code fences are stripped before structural parsing; the action
// field must be present. Kind validity is the executor's concern, so an
// unrecognized kind still parses here.
func ParseResponse(raw string) (core.Action, error) {
	text := stripCodeFence(strings.TrimSpace(raw))

	var action core.Action
	if err := json.Unmarshal([]byte(text), &action); err != nil {
		return core.Action{}, fmt.Errorf("parse planner response: %w", err)
	}
	if action.Kind == "" {
		return core.Action{}, fmt.Errorf("parse planner response: missing action field")
	}
	return action, nil
}

// stripCodeFence removes a wrapping ``` or ```json block if present.
func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if idx := strings.Index(s, "```"); idx >= 0 {
		s = s[:idx]
	}
	s = strings.TrimPrefix(s, "json")
	return strings.TrimSpace(s)
}
