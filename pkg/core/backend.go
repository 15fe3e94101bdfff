package core

import "time"

// Key identifies a hardware key the backend can press.
type Key string

// Key values.
const (
	KeyBack  Key = "back"
	KeyHome  Key = "home"
	KeyEnter Key = "enter"
	KeyMenu  Key = "menu"
)

// Backend defines the device-automation collaborator. Implementations
// execute primitive UI actions on a single attached device and report
// screen state. The orchestration layer handles all test logic; a Backend
// just performs individual primitives.
type Backend interface {
	// Touch primitives
	Tap(x, y int) error
	DoubleTap(x, y int) error
	LongPress(x, y int, duration time.Duration) error
	Swipe(x1, y1, x2, y2 int, duration time.Duration) error
	ScrollUp() error
	ScrollDown() error

	// Text input
	TypeText(text string) error
	ClearFocusedField() error

	// Keys
	PressKey(k Key) error

	// App lifecycle
	LaunchApp(pkg string) error
	CloseApp(pkg string) error

	// Screen state
	Screenshot() ([]byte, error)
	Hierarchy() (string, error)
}
