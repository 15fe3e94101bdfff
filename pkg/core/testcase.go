package core

// TestCase is a single QA scenario: a natural-language description of what
// to do, the outcome that should be observed, and whether the test is
// expected to reach it. Immutable once defined.
type TestCase struct {
	Name           string   `yaml:"name" json:"name"`
	Description    string   `yaml:"description" json:"description"`
	ExpectedResult string   `yaml:"expectedResult" json:"expected_result"`
	ShouldPass     bool     `yaml:"shouldPass" json:"should_pass"`
	Steps          []string `yaml:"steps,omitempty" json:"steps,omitempty"` // documentation only, not enforced
}

// TestStatus represents the lifecycle state of a test run.
type TestStatus int

const (
	StatusPending TestStatus = iota // not yet started
	StatusRunning                   // currently executing
	StatusPassed                    // planner reported test_complete
	StatusFailed                    // planner reported test_failed
	StatusError                     // infrastructure failure or step budget exhausted
)

// String returns the string representation of TestStatus.
func (s TestStatus) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusRunning:
		return "running"
	case StatusPassed:
		return "passed"
	case StatusFailed:
		return "failed"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// IsTerminal returns true if the status is a final state.
func (s TestStatus) IsTerminal() bool {
	switch s {
	case StatusPassed, StatusFailed, StatusError:
		return true
	default:
		return false
	}
}
