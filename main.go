package main

import (
	"os"

	"chimera/cmd"
)

func main() {
	os.Exit(cmd.RunCompiler())
}
