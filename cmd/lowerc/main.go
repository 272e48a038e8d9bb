// Command lowerc translates front-end program dumps to C.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/lowerc/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "lowerc: %v\n", err)
		os.Exit(cli.GetExitCode(err))
	}
}
