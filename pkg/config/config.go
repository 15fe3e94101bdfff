// Package config handles configuration for qapilot.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Defaults tuned for a Pixel 8 Pro emulator profile.
const (
	DefaultDeviceSerial  = "emulator-5554"
	DefaultModel         = "gemini-2.5-flash"
	DefaultStepBudget    = 20
	DefaultScreenWidth   = 1344
	DefaultScreenHeight  = 2992
	DefaultSettleDelay   = 2 * time.Second
	DefaultActionDelay   = 1 * time.Second
	DefaultPlanInterval  = 1 * time.Second
	DefaultPlanRetries   = 3
	DefaultRetryFallback = 5 * time.Second
	DefaultSuitePause    = 2 * time.Second
)

// Config represents the workspace configuration (config.yaml plus .env).
type Config struct {
	// Decision service
	APIKey        string        `yaml:"-"`             // from GEMINI_API_KEY, never from yaml
	Model         string        `yaml:"model"`         // Gemini model name
	PlanInterval  time.Duration `yaml:"planInterval"`  // min spacing between planning calls
	PlanRetries   int           `yaml:"planRetries"`   // retry ceiling for transient service errors
	RetryFallback time.Duration `yaml:"retryFallback"` // delay when the service suggests none

	// Device
	ADBPath      string `yaml:"adbPath"`
	DeviceSerial string `yaml:"device"`
	AppPackage   string `yaml:"appPackage"` // application under test

	// Run settings
	StepBudget  int           `yaml:"stepBudget"`  // max steps per test
	SettleDelay time.Duration `yaml:"settleDelay"` // wait after action before screenshot
	SuitePause  time.Duration `yaml:"suitePause"`  // pause between tests

	// Artifacts
	ScreenshotsDir string `yaml:"screenshotsDir"`
	OutputDir      string `yaml:"outputDir"`
	LogDir         string `yaml:"logDir"`
}

// defaults returns a Config populated with default values.
func defaults() *Config {
	return &Config{
		Model:          DefaultModel,
		PlanInterval:   DefaultPlanInterval,
		PlanRetries:    DefaultPlanRetries,
		RetryFallback:  DefaultRetryFallback,
		ADBPath:        "adb",
		DeviceSerial:   DefaultDeviceSerial,
		StepBudget:     DefaultStepBudget,
		SettleDelay:    DefaultSettleDelay,
		SuitePause:     DefaultSuitePause,
		ScreenshotsDir: "screenshots",
		OutputDir:      "results",
		LogDir:         "logs",
	}
}

// Load reads configuration from the working directory: .env for secrets,
// then config.yaml (or config.yml) for settings. Missing files are fine;
// defaults apply.
func Load(dir string) (*Config, error) {
	// .env is optional; environment variables win regardless.
	_ = godotenv.Load(filepath.Join(dir, ".env"))

	cfg := defaults()

	for _, name := range []string{"config.yaml", "config.yml"} {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path) //#nosec G304 -- user-provided config file
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, err
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		break
	}

	cfg.APIKey = os.Getenv("GEMINI_API_KEY")
	if cfg.APIKey == "" {
		// Older setups used the Google AI Studio variable name.
		cfg.APIKey = os.Getenv("GOOGLE_API_KEY")
	}
	if serial := os.Getenv("DEVICE_SERIAL"); serial != "" {
		cfg.DeviceSerial = serial
	}
	if adb := os.Getenv("ADB_PATH"); adb != "" {
		cfg.ADBPath = adb
	}

	return cfg, nil
}

// EnsureDirs creates the artifact directories if they do not exist.
func (c *Config) EnsureDirs() error {
	for _, dir := range []string{c.ScreenshotsDir, c.OutputDir, c.LogDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return nil
}
