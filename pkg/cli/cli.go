// Package cli provides the command-line interface for qapilot.
package cli

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

// Version is set at build time.
var Version = "dev"

// GlobalFlags are available to all commands.
var GlobalFlags = []cli.Flag{
	&cli.StringFlag{
		Name:    "config-dir",
		Aliases: []string{"C"},
		Usage:   "Directory holding config.yaml and .env (default: current directory)",
		Value:   ".",
	},
	&cli.StringFlag{
		Name:    "device",
		Aliases: []string{"d"},
		Usage:   "ADB serial of the device to drive",
		EnvVars: []string{"DEVICE_SERIAL"},
	},
	&cli.BoolFlag{
		Name:    "verbose",
		Aliases: []string{"v"},
		Usage:   "Enable verbose logging",
		EnvVars: []string{"QAPILOT_VERBOSE"},
	},
}

// Execute runs the CLI.
func Execute() {
	app := &cli.App{
		Name:    "qapilot",
		Usage:   "AI-driven QA test runner for Android apps",
		Version: Version,
		Description: `qapilot runs natural-language QA test cases against a connected
Android device. Each step is planned by a vision model from the current
screen and executed over ADB until the test completes or the step
budget runs out.

Examples:
  qapilot test suites/obsidian.yaml
  qapilot test suites/obsidian.yaml --test test_create_vault
  qapilot test suites/obsidian.yaml --demo
  qapilot list suites/obsidian.yaml`,
		Flags: GlobalFlags,
		Commands: []*cli.Command{
			testCommand,
			listCommand,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
