package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/jbonatakis/accomplish/internal/cli"
)

const (
	exitError      = 1
	exitUsage      = 2
	exitTaskFailed = 3
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	err := cli.Run(args)
	if err == nil {
		return 0
	}
	var ue cli.UsageError
	switch {
	case errors.As(err, &ue):
		fmt.Fprintf(os.Stderr, "%s\n\n%s\n", ue.Error(), cli.Usage())
		return exitUsage
	case errors.Is(err, cli.ErrTaskFailed):
		fmt.Fprintln(os.Stderr, err.Error())
		return exitTaskFailed
	default:
		fmt.Fprintln(os.Stderr, err.Error())
		return exitError
	}
}
