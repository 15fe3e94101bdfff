package main

import "github.com/devicelab-dev/qapilot/pkg/cli"

func main() {
	cli.Execute()
}
