package main

import (
	"os"

	"github.com/sahib/safeio/cmd"
)

func main() {
	os.Exit(cmd.RunCmdline(os.Args))
}
