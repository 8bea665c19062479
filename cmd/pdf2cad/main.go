package main

import (
	"os"

	"github.com/spherical/pdf2cad/cmd/pdf2cad/commands"
	"github.com/spherical/pdf2cad/cmd/pdf2cad/ui"
)

var (
	version = "1.0.0"
	commit  = "dev"
)

func main() {
	commands.SetVersion(version, commit)
	if err := commands.Execute(); err != nil {
		ui.Error("Error: %v", err)
		os.Exit(1)
	}
}
