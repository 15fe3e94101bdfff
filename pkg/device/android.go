// Package device provides the Android device backend via ADB.
package device

import (
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/devicelab-dev/qapilot/pkg/config"
	"github.com/devicelab-dev/qapilot/pkg/core"
	"github.com/devicelab-dev/qapilot/pkg/logger"
)

// Android keycodes used by PressKey.
const (
	keycodeHome      = 3
	keycodeBack      = 4
	keycodeEnter     = 66
	keycodeBackspace = 67
	keycodeMenu      = 82
	keycodeMoveEnd   = 123
)

// clearFieldMaxChars bounds the backspace loop when clearing a field.
const clearFieldMaxChars = 100

// AndroidDevice executes UI primitives on a device through ADB. It
// implements core.Backend.
type AndroidDevice struct {
	serial  string
	adbPath string

	screenWidth  int
	screenHeight int
}

// Option configures an AndroidDevice.
type Option func(*AndroidDevice)

// WithADBPath overrides the adb binary location.
func WithADBPath(path string) Option {
	return func(d *AndroidDevice) { d.adbPath = path }
}

// New creates an AndroidDevice for the given serial. If serial is empty,
// the first connected device is used. The screen size is probed once at
// connection time; scroll gestures are computed from it.
func New(serial string, opts ...Option) (*AndroidDevice, error) {
	d := &AndroidDevice{
		serial:       serial,
		adbPath:      "adb",
		screenWidth:  config.DefaultScreenWidth,
		screenHeight: config.DefaultScreenHeight,
	}
	for _, opt := range opts {
		opt(d)
	}

	if d.serial == "" {
		detected, err := detectDeviceSerial(d.adbPath)
		if err != nil {
			return nil, fmt.Errorf("no device specified and auto-detect failed: %w", err)
		}
		d.serial = detected
	}

	if !isAttached(d.adbPath, d.serial) {
		return nil, fmt.Errorf("device %s not attached", d.serial)
	}

	if w, h, err := d.probeScreenSize(); err == nil {
		d.screenWidth, d.screenHeight = w, h
	} else {
		logger.Warn("screen size probe failed, using %dx%d: %v", d.screenWidth, d.screenHeight, err)
	}

	return d, nil
}

// Attached returns the serials of connected devices, for pre-flight checks.
func Attached(adbPath string) ([]string, error) {
	out, err := exec.Command(adbPath, "devices").Output()
	if err != nil {
		return nil, fmt.Errorf("adb devices: %w", err)
	}

	var serials []string
	for _, line := range strings.Split(string(out), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "List of") {
			continue
		}
		parts := strings.Fields(line)
		if len(parts) >= 2 && parts[1] == "device" {
			serials = append(serials, parts[0])
		}
	}
	return serials, nil
}

func detectDeviceSerial(adbPath string) (string, error) {
	serials, err := Attached(adbPath)
	if err != nil {
		return "", err
	}
	if len(serials) == 0 {
		return "", fmt.Errorf("no connected devices found")
	}
	return serials[0], nil
}

func isAttached(adbPath, serial string) bool {
	serials, err := Attached(adbPath)
	if err != nil {
		return false
	}
	for _, s := range serials {
		if s == serial {
			return true
		}
	}
	return false
}

// Serial returns the device serial number.
func (d *AndroidDevice) Serial() string {
	return d.serial
}

// ScreenSize returns the probed screen dimensions in pixels.
func (d *AndroidDevice) ScreenSize() (int, int) {
	return d.screenWidth, d.screenHeight
}

// adb runs an adb command scoped to this device.
func (d *AndroidDevice) adb(args ...string) (string, error) {
	full := append([]string{"-s", d.serial}, args...)
	logger.Debug("adb %s", strings.Join(full, " "))

	out, err := exec.Command(d.adbPath, full...).CombinedOutput()
	if err != nil {
		return string(out), fmt.Errorf("adb %s: %w (%s)", args[0], err, strings.TrimSpace(string(out)))
	}
	return string(out), nil
}

// shell runs an adb shell command on the device.
func (d *AndroidDevice) shell(args ...string) (string, error) {
	return d.adb(append([]string{"shell"}, args...)...)
}

func (d *AndroidDevice) probeScreenSize() (int, int, error) {
	out, err := d.shell("wm", "size")
	if err != nil {
		return 0, 0, err
	}
	// Output: "Physical size: 1344x2992"
	idx := strings.Index(out, "Physical size:")
	if idx < 0 {
		return 0, 0, fmt.Errorf("unexpected wm size output: %q", strings.TrimSpace(out))
	}
	size := strings.TrimSpace(out[idx+len("Physical size:"):])
	if nl := strings.IndexByte(size, '\n'); nl >= 0 {
		size = strings.TrimSpace(size[:nl])
	}
	parts := strings.Split(size, "x")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("unexpected wm size output: %q", size)
	}
	w, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, err
	}
	h, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, err
	}
	return w, h, nil
}

// Tap taps at the given coordinates.
func (d *AndroidDevice) Tap(x, y int) error {
	_, err := d.shell("input", "tap", strconv.Itoa(x), strconv.Itoa(y))
	return err
}

// DoubleTap taps twice in quick succession.
func (d *AndroidDevice) DoubleTap(x, y int) error {
	if err := d.Tap(x, y); err != nil {
		return err
	}
	time.Sleep(100 * time.Millisecond)
	return d.Tap(x, y)
}

// LongPress holds a touch at the given coordinates. Implemented as a
// zero-distance swipe, which is how adb input expresses press duration.
func (d *AndroidDevice) LongPress(x, y int, duration time.Duration) error {
	ms := strconv.Itoa(int(duration.Milliseconds()))
	xs, ys := strconv.Itoa(x), strconv.Itoa(y)
	_, err := d.shell("input", "swipe", xs, ys, xs, ys, ms)
	return err
}

// Swipe drags from one point to another over the given duration.
func (d *AndroidDevice) Swipe(x1, y1, x2, y2 int, duration time.Duration) error {
	_, err := d.shell("input", "swipe",
		strconv.Itoa(x1), strconv.Itoa(y1),
		strconv.Itoa(x2), strconv.Itoa(y2),
		strconv.Itoa(int(duration.Milliseconds())))
	return err
}

// ScrollUp swipes from two-thirds to one-third of screen height.
func (d *AndroidDevice) ScrollUp() error {
	cx := d.screenWidth / 2
	return d.Swipe(cx, d.screenHeight*2/3, cx, d.screenHeight/3, 500*time.Millisecond)
}

// ScrollDown swipes from one-third to two-thirds of screen height.
func (d *AndroidDevice) ScrollDown() error {
	cx := d.screenWidth / 2
	return d.Swipe(cx, d.screenHeight/3, cx, d.screenHeight*2/3, 500*time.Millisecond)
}

// TypeText types text into the focused field.
func (d *AndroidDevice) TypeText(text string) error {
	_, err := d.shell("input", "text", escapeInputText(text))
	return err
}

// escapeInputText prepares text for adb shell input: spaces become %s and
// shell metacharacters are backslash-escaped.
func escapeInputText(text string) string {
	escaped := strings.ReplaceAll(text, " ", "%s")
	for _, ch := range []string{"'", `"`, "&", "<", ">", ";", "(", ")", "|"} {
		escaped = strings.ReplaceAll(escaped, ch, `\`+ch)
	}
	return escaped
}

// ClearFocusedField clears the currently focused text field by moving the
// cursor to the end and backspacing.
func (d *AndroidDevice) ClearFocusedField() error {
	if _, err := d.shell("input", "keyevent", strconv.Itoa(keycodeMoveEnd)); err != nil {
		return err
	}
	for i := 0; i < clearFieldMaxChars; i++ {
		if _, err := d.shell("input", "keyevent", strconv.Itoa(keycodeBackspace)); err != nil {
			return err
		}
	}
	return nil
}

// PressKey presses a hardware key.
func (d *AndroidDevice) PressKey(k core.Key) error {
	var code int
	switch k {
	case core.KeyBack:
		code = keycodeBack
	case core.KeyHome:
		code = keycodeHome
	case core.KeyEnter:
		code = keycodeEnter
	case core.KeyMenu:
		code = keycodeMenu
	default:
		return fmt.Errorf("unknown key: %s", k)
	}
	_, err := d.shell("input", "keyevent", strconv.Itoa(code))
	return err
}

// LaunchApp starts an application via its launcher intent.
func (d *AndroidDevice) LaunchApp(pkg string) error {
	_, err := d.shell("monkey", "-p", pkg, "-c", "android.intent.category.LAUNCHER", "1")
	return err
}

// CloseApp force-stops an application.
func (d *AndroidDevice) CloseApp(pkg string) error {
	_, err := d.shell("am", "force-stop", pkg)
	return err
}

// Screenshot captures the screen as PNG bytes using exec-out for direct
// binary output.
func (d *AndroidDevice) Screenshot() ([]byte, error) {
	cmd := exec.Command(d.adbPath, "-s", d.serial, "exec-out", "screencap", "-p")
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("capture screenshot: %w", err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("capture screenshot: empty output")
	}
	return out, nil
}

// Hierarchy dumps the UI hierarchy XML via uiautomator.
func (d *AndroidDevice) Hierarchy() (string, error) {
	if _, err := d.shell("uiautomator", "dump", "/sdcard/ui_dump.xml"); err != nil {
		return "", fmt.Errorf("dump ui hierarchy: %w", err)
	}
	out, err := d.shell("cat", "/sdcard/ui_dump.xml")
	if err != nil {
		return "", fmt.Errorf("read ui hierarchy: %w", err)
	}
	return out, nil
}

// Info returns basic device properties for reporting.
func (d *AndroidDevice) Info() (map[string]string, error) {
	info := make(map[string]string)
	for key, prop := range map[string]string{
		"model":           "ro.product.model",
		"android_version": "ro.build.version.release",
		"sdk":             "ro.build.version.sdk",
	} {
		out, err := d.shell("getprop", prop)
		if err != nil {
			return nil, err
		}
		info[key] = strings.TrimSpace(out)
	}
	return info, nil
}
