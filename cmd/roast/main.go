package main

import (
	"os"
	"strings"

	"github.com/flarebyte/roast/cmd/roast/options"
	"github.com/flarebyte/roast/cmd/roast/root"
)

func main() {
	if err := root.Execute(os.Args[1:]); err != nil {
		// One line on stderr, no usage, no stack.
		msg := strings.Join(strings.Fields(err.Error()), " ")
		if msg == "" {
			msg = "error"
		}
		_, _ = os.Stderr.WriteString(msg + "\n")
		os.Exit(options.ExitCode(err))
	}
}
