package main

import (
	"os"

	"github.com/raysh454/ethicheck/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
