package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/devicelab-dev/qapilot/pkg/config"
	"github.com/devicelab-dev/qapilot/pkg/core"
	"github.com/devicelab-dev/qapilot/pkg/device"
	"github.com/devicelab-dev/qapilot/pkg/executor"
	"github.com/devicelab-dev/qapilot/pkg/logger"
	"github.com/devicelab-dev/qapilot/pkg/planner"
	"github.com/devicelab-dev/qapilot/pkg/report"
	"github.com/devicelab-dev/qapilot/pkg/suite"
)

var testCommand = &cli.Command{
	Name:      "test",
	Usage:     "Run a test suite on a connected device",
	ArgsUsage: "<suite-file>",
	Description: `Run the test cases of a YAML suite file against the connected
Android device.

Examples:
  qapilot test suites/obsidian.yaml
  qapilot test suites/obsidian.yaml --test test_create_vault
  qapilot test suites/obsidian.yaml --demo
  qapilot test suites/obsidian.yaml --skip-checks`,
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "test",
			Aliases: []string{"t"},
			Usage:   "Run a single test case by name",
		},
		&cli.BoolFlag{
			Name:  "demo",
			Usage: "Run a small representative subset (up to 2 expected-pass and 2 expected-fail)",
		},
		&cli.IntFlag{
			Name:  "budget",
			Usage: "Override the per-test step budget",
		},
		&cli.BoolFlag{
			Name:  "skip-checks",
			Usage: "Skip pre-flight environment checks",
		},
	},
	Action: runTest,
}

func runTest(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("exactly one suite file is required")
	}

	cfg, err := config.Load(c.String("config-dir"))
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if serial := c.String("device"); serial != "" {
		cfg.DeviceSerial = serial
	}
	if budget := c.Int("budget"); budget > 0 {
		cfg.StepBudget = budget
	}
	if err := cfg.EnsureDirs(); err != nil {
		return err
	}

	logPath := filepath.Join(cfg.LogDir, fmt.Sprintf("qapilot_%s.log", time.Now().Format("20060102_150405")))
	if err := logger.Init(logPath); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Close()
	logger.SetVerbose(c.Bool("verbose"))
	logger.SetEcho(c.Bool("verbose"))

	s, err := suite.Load(c.Args().First())
	if err != nil {
		return err
	}
	if s.AppPackage != "" {
		cfg.AppPackage = s.AppPackage
	}

	cases, err := selectCases(s, c.String("test"), c.Bool("demo"))
	if err != nil {
		return err
	}

	if !c.Bool("skip-checks") {
		if err := preflight(cfg); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dev, err := device.New(cfg.DeviceSerial, device.WithADBPath(cfg.ADBPath))
	if err != nil {
		return fmt.Errorf("connect device: %w", err)
	}
	logger.Info("Connected to device %s", dev.Serial())

	svc, err := planner.NewGeminiService(ctx, cfg.APIKey, cfg.Model)
	if err != nil {
		return fmt.Errorf("init decision service: %w", err)
	}
	plan := planner.New(svc, planner.Config{
		MinInterval:   cfg.PlanInterval,
		MaxRetries:    cfg.PlanRetries,
		FallbackDelay: cfg.RetryFallback,
	})

	exec := executor.NewExecutor(dev, cfg.SettleDelay)
	runner := executor.NewRunner(plan, exec, executor.RunnerConfig{
		StepBudget:     cfg.StepBudget,
		SuitePause:     cfg.SuitePause,
		ScreenshotsDir: cfg.ScreenshotsDir,
		AppPackage:     cfg.AppPackage,
	})

	logger.Info("Running %d test case(s) from %s", len(cases), c.Args().First())
	results := runner.RunAll(ctx, cases)

	report.PrintSummary(os.Stdout, results)

	path, err := report.WriteJSON(cfg.OutputDir, results)
	if err != nil {
		logger.Error("Failed to export results: %v", err)
	} else {
		logger.Info("Results exported to %s", path)
		fmt.Printf("Results exported to: %s\n", path)
	}

	summary := core.Summarize(results)
	if summary.Correct != summary.Total {
		return cli.Exit("", 1)
	}
	return nil
}

// selectCases picks the cases to run based on the --test and --demo flags.
func selectCases(s *suite.Suite, name string, demo bool) ([]core.TestCase, error) {
	if name != "" {
		tc := s.ByName(name)
		if tc == nil {
			return nil, fmt.Errorf("test %q not found in suite %s", name, s.Name)
		}
		return []core.TestCase{*tc}, nil
	}
	if demo {
		return s.DemoSubset(), nil
	}
	return s.Tests, nil
}

// preflight verifies the environment before any test touches the device.
// A missing API key or an empty device list is fatal here rather than
// twenty steps into the first test.
func preflight(cfg *config.Config) error {
	if cfg.APIKey == "" {
		return fmt.Errorf("no API key: set GEMINI_API_KEY in the environment or .env")
	}

	serials, err := device.Attached(cfg.ADBPath)
	if err != nil {
		return fmt.Errorf("adb not available at %q: %w", cfg.ADBPath, err)
	}
	if len(serials) == 0 {
		return fmt.Errorf("no devices attached; start an emulator or connect a device")
	}
	return nil
}
