package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/devicelab-dev/qapilot/pkg/core"
	"github.com/devicelab-dev/qapilot/pkg/suite"
)

var listCommand = &cli.Command{
	Name:      "list",
	Usage:     "List the test cases of a suite file",
	ArgsUsage: "<suite-file>",
	Action:    runList,
}

func runList(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("exactly one suite file is required")
	}

	s, err := suite.Load(c.Args().First())
	if err != nil {
		return err
	}

	bold := color.New(color.Bold)
	bold.Printf("Suite: %s", s.Name)
	if s.AppPackage != "" {
		fmt.Printf(" (%s)", s.AppPackage)
	}
	fmt.Printf(" - %d tests\n\n", len(s.Tests))

	printGroup("Expected to pass:", s.Passing())
	printGroup("Expected to fail:", s.Failing())
	return nil
}

func printGroup(title string, cases []core.TestCase) {
	if len(cases) == 0 {
		return
	}
	fmt.Println(title)
	for _, tc := range cases {
		fmt.Printf("  %s\n", tc.Name)
		fmt.Printf("      %s\n", tc.ExpectedResult)
	}
	fmt.Println()
}
